package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pipelinekit/example-addon/internal/db/models"
)

const enrollBatch = 100

// Condition matches one attribute of a source event. Key is a path such as
// "payload/newValue" or "project". Operator is eq (default), ne or in.
type Condition struct {
	Key      string `json:"key"      validate:"required"`
	Value    any    `json:"value"`
	Operator string `json:"operator" validate:"omitempty,oneof=eq ne in"`
}

// Filter holds the conditions a source event must satisfy. All conditions
// must match.
type Filter struct {
	Conditions []Condition `json:"conditions" validate:"dive"`
}

// EnrollRequest asks for the next source event a service should process.
type EnrollRequest struct {
	SourceTopic string  `json:"sourceTopic" validate:"required"`
	TargetTopic string  `json:"targetTopic" validate:"required"`
	Sender      string  `json:"sender"      validate:"required"`
	Description string  `json:"description"`
	Filter      *Filter `json:"filter"`
	MaxRetries  int     `json:"maxRetries"  validate:"gte=0"`
}

// Enroll picks the oldest finished source event matching the filter that has
// no job yet, whose job failed fewer than MaxRetries times, or whose job was
// released back to pending, and returns the job (an in_progress target-topic
// event depending on the source). ErrNoJob is returned when nothing is
// waiting.
func Enroll(ctx context.Context, db *gorm.DB, req EnrollRequest) (*models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if req.SourceTopic == "" || req.TargetTopic == "" {
		return nil, ErrTopicEmpty
	}

	var job *models.Event

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Sources whose job is alive, finished or out of retries.
		taken := tx.Table("events AS jobs").Select("1").
			Where("jobs.depends_on = events.id AND jobs.topic = ?", req.TargetTopic).
			Where("jobs.status <> ? AND NOT (jobs.status = ? AND jobs.retries < ?)",
				models.EventPending, models.EventFailed, req.MaxRetries)

		for offset := 0; ; offset += enrollBatch {
			var sources []models.Event

			err := tx.Where("topic = ? AND status = ?", req.SourceTopic, models.EventFinished).
				Where("NOT EXISTS (?)", taken).
				Order("created_at, id").
				Offset(offset).
				Limit(enrollBatch).
				Find(&sources).Error
			if err != nil {
				return err
			}

			for i := range sources {
				if !req.Filter.Match(&sources[i]) {
					continue
				}

				j, err := claim(tx, &sources[i], req)
				if err != nil {
					return err
				}

				if j != nil {
					job = j
					return nil
				}
			}

			if len(sources) < enrollBatch {
				return ErrNoJob
			}
		}
	})
	if err != nil {
		return nil, err
	}

	return job, nil
}

// claim creates or restarts the job of source. It returns nil when another
// enroll got there first.
func claim(tx *gorm.DB, source *models.Event, req EnrollRequest) (*models.Event, error) {
	// Row lock on postgres and mysql; sqlite serializes writers anyway.
	var locked models.Event

	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", source.ID).Limit(1).Find(&locked)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, nil //nolint:nilnil
	}

	var existing models.Event

	result = tx.Where("topic = ? AND depends_on = ?", req.TargetTopic, source.ID).Limit(1).Find(&existing)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return create(tx, source, req)
	}

	retries := existing.Retries

	switch {
	case existing.Status == models.EventPending:
	case existing.Status == models.EventFailed && existing.Retries < req.MaxRetries:
		retries++
	default:
		return nil, nil //nolint:nilnil
	}

	description := existing.Description
	if req.Description != "" {
		description = req.Description
	}

	// Only the enroll that still sees the status it read wins the job.
	result = tx.Model(&models.Event{}).
		Where("id = ? AND status = ? AND retries = ?", existing.ID, existing.Status, existing.Retries).
		Updates(map[string]any{
			"status":      models.EventInProgress,
			"sender":      req.Sender,
			"retries":     retries,
			"description": description,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("restart job %s: %w", existing.ID, result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, nil //nolint:nilnil
	}

	var job models.Event
	if err := tx.Where("id = ?", existing.ID).Take(&job).Error; err != nil {
		return nil, fmt.Errorf("reload job %s: %w", existing.ID, err)
	}

	return &job, nil
}

func create(tx *gorm.DB, source *models.Event, req EnrollRequest) (*models.Event, error) {
	id := source.ID
	job := &models.Event{
		Topic:       req.TargetTopic,
		Sender:      req.Sender,
		Project:     source.Project,
		User:        source.User,
		DependsOn:   &id,
		Status:      models.EventInProgress,
		Description: req.Description,
	}

	// The savepoint keeps the outer transaction usable after a unique violation.
	err := tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(job).Error
	})

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, nil //nolint:nilnil
	case err != nil:
		return nil, fmt.Errorf("create job for %s: %w", source.ID, err)
	}

	return job, nil
}

// Match reports whether the event satisfies every condition. A nil filter
// matches everything.
func (f *Filter) Match(e *models.Event) bool {
	if f == nil {
		return true
	}

	for _, c := range f.Conditions {
		if !c.match(e) {
			return false
		}
	}

	return true
}

func (c Condition) match(e *models.Event) bool {
	got, ok := lookup(e, c.Key)

	switch c.Operator {
	case "ne":
		return !ok || !equal(got, c.Value)
	case "in":
		list, isList := c.Value.([]any)
		return ok && isList && slices.ContainsFunc(list, func(v any) bool { return equal(got, v) })
	default:
		return ok && equal(got, c.Value)
	}
}

func lookup(e *models.Event, key string) (any, bool) {
	parts := strings.Split(strings.Trim(key, "/"), "/")

	var root any

	switch parts[0] {
	case "payload":
		root = e.Payload
	case "summary":
		root = e.Summary
	case "topic":
		return e.Topic, len(parts) == 1
	case "project":
		return e.Project, len(parts) == 1
	case "user":
		return e.User, len(parts) == 1
	case "sender":
		return e.Sender, len(parts) == 1
	default:
		return nil, false
	}

	for _, p := range parts[1:] {
		m, ok := root.(map[string]any)
		if !ok {
			return nil, false
		}

		root, ok = m[p]
		if !ok {
			return nil, false
		}
	}

	return root, true
}

// equal compares by type. Numbers compare by value whatever their Go type,
// so 2 matches the 2.0 a JSON payload decodes to.
func equal(a, b any) bool {
	if x, ok := number(a); ok {
		y, ok := number(b)
		return ok && x == y
	}

	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
