// Package event persists events and hands out jobs to services.
package event

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/db/models"
)

var (
	// ErrEventNotFound is returned when an event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrNoJob is returned by Enroll when no source event is waiting to be processed.
	ErrNoJob = errors.New("no job available")
	// ErrTopicEmpty is returned when an event or enroll request has no topic.
	ErrTopicEmpty = errors.New("topic cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create stores a new event.
func Create(ctx context.Context, db *gorm.DB, e *models.Event) error {
	if db == nil {
		return ErrDBNil
	}

	if e.Topic == "" {
		return ErrTopicEmpty
	}

	return db.WithContext(ctx).Create(e).Error
}

// Get retrieves an event by id.
func Get(ctx context.Context, db *gorm.DB, id string) (*models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var e models.Event

	err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}

		return nil, err
	}

	return &e, nil
}

// Patch lists the event attributes a service may change. Empty members are
// left untouched.
type Patch struct {
	Sender      string             `json:"sender"`
	Project     string             `json:"projectName"`
	Status      models.EventStatus `json:"status"      validate:"omitempty,oneof=pending in_progress finished failed aborted restarted"`
	Description string             `json:"description"`
	Summary     map[string]any     `json:"summary"`
	Payload     map[string]any     `json:"payload"`
}

// Update applies p to the event and returns the stored result.
func Update(ctx context.Context, db *gorm.DB, id string, p Patch) (*models.Event, error) {
	e, err := Get(ctx, db, id)
	if err != nil {
		return nil, err
	}

	if p.Sender != "" {
		e.Sender = p.Sender
	}

	if p.Project != "" {
		e.Project = p.Project
	}

	if p.Status != "" {
		e.Status = p.Status
	}

	if p.Description != "" {
		e.Description = p.Description
	}

	if p.Summary != nil {
		e.Summary = p.Summary
	}

	if p.Payload != nil {
		e.Payload = p.Payload
	}

	if err := db.WithContext(ctx).Save(e).Error; err != nil {
		return nil, err
	}

	return e, nil
}
