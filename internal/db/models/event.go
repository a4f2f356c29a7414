package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventStatus is the processing state of an event or job.
type EventStatus string

const (
	// EventPending marks an event nobody started working on, or a job its
	// worker released. Enroll hands pending jobs out again.
	EventPending EventStatus = "pending"
	// EventInProgress marks a job a worker enrolled for.
	EventInProgress EventStatus = "in_progress"
	// EventFinished marks a completed event.
	EventFinished EventStatus = "finished"
	// EventFailed marks a job that can be retried.
	EventFailed EventStatus = "failed"
	// EventAborted marks a job that must not be retried.
	EventAborted EventStatus = "aborted"
	// EventRestarted may be set by clients; Enroll restarts jobs in_progress.
	EventRestarted EventStatus = "restarted"
)

// Event is an entry of the event stream. Jobs are events that depend on a
// source event and are processed by services. A source has at most one job
// per topic.
type Event struct {
	ID          string         `gorm:"primaryKey;size:36"                                            json:"id"`
	Topic       string         `gorm:"index;uniqueIndex:idx_events_job,priority:1;size:255;not null" json:"topic"`
	Sender      string         `gorm:"size:255"                                                      json:"sender,omitempty"`
	Project     string         `gorm:"size:64"                                                       json:"project,omitempty"`
	User        string         `gorm:"size:100"                                                      json:"user,omitempty"`
	DependsOn   *string        `gorm:"index;uniqueIndex:idx_events_job,priority:2;size:36"           json:"dependsOn,omitempty"`
	Status      EventStatus    `gorm:"index;size:32;not null"                                        json:"status"`
	Description string         `gorm:"size:1024"                                                     json:"description"`
	Summary     map[string]any `gorm:"serializer:json"                                               json:"summary,omitempty"`
	Payload     map[string]any `gorm:"serializer:json"                                               json:"payload,omitempty"`
	Retries     int            `gorm:"default:0"                                                     json:"retries"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// BeforeCreate assigns a new id and the default status.
func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	if e.Status == "" {
		e.Status = EventPending
	}

	return nil
}
