package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/db/dbtest"
	"github.com/pipelinekit/example-addon/internal/db/models"
)

const (
	sourceTopic = "entity.folder.status_changed"
	targetTopic = "example.approval_handler"
)

func approvalRequest() EnrollRequest {
	return EnrollRequest{
		SourceTopic: sourceTopic,
		TargetTopic: targetTopic,
		Sender:      "example-service-test",
		Description: "Handling approval",
		Filter: &Filter{Conditions: []Condition{
			{Key: "payload/newValue", Value: "Approved"},
		}},
		MaxRetries: 3,
	}
}

func seedSource(t *testing.T, db *gorm.DB, user, newValue string) *models.Event {
	t.Helper()

	e := &models.Event{
		Topic:   sourceTopic,
		Project: "demo",
		User:    user,
		Status:  models.EventFinished,
		Payload: map[string]any{"oldValue": "In progress", "newValue": newValue},
	}
	require.NoError(t, Create(context.Background(), db, e))

	return e
}

func TestCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)

	require.ErrorIs(t, Create(ctx, nil, &models.Event{Topic: "x"}), ErrDBNil)
	require.ErrorIs(t, Create(ctx, db, &models.Event{}), ErrTopicEmpty)

	e := &models.Event{Topic: "entity.task.status_changed", Payload: map[string]any{"a": 1}}
	require.NoError(t, Create(ctx, db, e))
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, models.EventPending, e.Status)

	loaded, err := Get(ctx, db, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "entity.task.status_changed", loaded.Topic)
	assert.InDelta(t, 1, loaded.Payload["a"], 0)

	updated, err := Update(ctx, db, e.ID, Patch{Status: models.EventFinished, Description: "done"})
	require.NoError(t, err)
	assert.Equal(t, models.EventFinished, updated.Status)
	assert.Equal(t, "done", updated.Description)
	assert.Equal(t, "entity.task.status_changed", updated.Topic)

	_, err = Get(ctx, db, "missing")
	require.ErrorIs(t, err, ErrEventNotFound)

	_, err = Update(ctx, db, "missing", Patch{})
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)

	_, err := Enroll(ctx, db, approvalRequest())
	require.ErrorIs(t, err, ErrNoJob)

	seedSource(t, db, "ann", "In review")
	approved := seedSource(t, db, "bob", "Approved")

	job, err := Enroll(ctx, db, approvalRequest())
	require.NoError(t, err)
	assert.Equal(t, targetTopic, job.Topic)
	assert.Equal(t, models.EventInProgress, job.Status)
	require.NotNil(t, job.DependsOn)
	assert.Equal(t, approved.ID, *job.DependsOn)
	assert.Equal(t, "demo", job.Project)
	assert.Equal(t, "bob", job.User)

	_, err = Enroll(ctx, db, approvalRequest())
	require.ErrorIs(t, err, ErrNoJob, "a source is enrolled only once while its job is alive")
}

func TestEnroll_RetriesFailedJobs(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)

	seedSource(t, db, "bob", "Approved")

	req := approvalRequest()
	req.MaxRetries = 2

	job, err := Enroll(ctx, db, req)
	require.NoError(t, err)

	for retry := 1; retry <= 2; retry++ {
		_, err = Update(ctx, db, job.ID, Patch{Status: models.EventFailed})
		require.NoError(t, err)

		restarted, err := Enroll(ctx, db, req)
		require.NoError(t, err)
		assert.Equal(t, job.ID, restarted.ID)
		assert.Equal(t, models.EventInProgress, restarted.Status)
		assert.Equal(t, retry, restarted.Retries)
		assert.Equal(t, "example-service-test", restarted.Sender)
	}

	_, err = Update(ctx, db, job.ID, Patch{Status: models.EventFailed})
	require.NoError(t, err)

	_, err = Enroll(ctx, db, req)
	require.ErrorIs(t, err, ErrNoJob)
}

func TestEnroll_ReleasedJobKeepsRetries(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)

	seedSource(t, db, "bob", "Approved")

	job, err := Enroll(ctx, db, approvalRequest())
	require.NoError(t, err)

	_, err = Update(ctx, db, job.ID, Patch{Status: models.EventPending, Description: "released"})
	require.NoError(t, err)

	again, err := Enroll(ctx, db, approvalRequest())
	require.NoError(t, err)
	assert.Equal(t, job.ID, again.ID)
	assert.Equal(t, models.EventInProgress, again.Status)
	assert.Zero(t, again.Retries)
	assert.Equal(t, "Handling approval", again.Description)

	_, err = Enroll(ctx, db, approvalRequest())
	require.ErrorIs(t, err, ErrNoJob)
}

func TestEnroll_SkipsHandledSources(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)

	for range enrollBatch + 5 {
		source := seedSource(t, db, "ann", "Approved")
		id := source.ID
		require.NoError(t, Create(ctx, db, &models.Event{
			Topic: targetTopic, DependsOn: &id, Status: models.EventFinished,
		}))
	}

	waiting := seedSource(t, db, "bob", "Approved")

	job, err := Enroll(ctx, db, approvalRequest())
	require.NoError(t, err)
	assert.Equal(t, waiting.ID, *job.DependsOn)
}

func TestEnroll_OneJobPerSource(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)

	source := seedSource(t, db, "bob", "Approved")
	id := source.ID

	require.NoError(t, Create(ctx, db, &models.Event{Topic: targetTopic, DependsOn: &id, Status: models.EventInProgress}))

	err := Create(ctx, db, &models.Event{Topic: targetTopic, DependsOn: &id})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// A racing enroll that missed the first job loses on the unique index.
	err = db.Transaction(func(tx *gorm.DB) error {
		job, err := create(tx, source, approvalRequest())
		assert.Nil(t, job)

		return err
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Event{}).Where("depends_on = ?", id).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnroll_Validation(t *testing.T) {
	_, err := Enroll(context.Background(), nil, approvalRequest())
	require.ErrorIs(t, err, ErrDBNil)

	_, err = Enroll(context.Background(), dbtest.Open(t), EnrollRequest{TargetTopic: targetTopic})
	require.ErrorIs(t, err, ErrTopicEmpty)
}

func TestFilter_Match(t *testing.T) {
	e := &models.Event{
		Topic:   sourceTopic,
		Project: "demo",
		Payload: map[string]any{"newValue": "Approved", "done": true, "nested": map[string]any{"n": 2}},
	}

	testCases := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{name: "nil filter", filter: nil, want: true},
		{name: "eq", filter: &Filter{Conditions: []Condition{{Key: "payload/newValue", Value: "Approved"}}}, want: true},
		{name: "eq mismatch", filter: &Filter{Conditions: []Condition{{Key: "payload/newValue", Value: "Rejected"}}}, want: false},
		{name: "ne", filter: &Filter{Conditions: []Condition{{Key: "project", Value: "other", Operator: "ne"}}}, want: true},
		{name: "ne missing key", filter: &Filter{Conditions: []Condition{{Key: "payload/missing", Value: "x", Operator: "ne"}}}, want: true},
		{name: "in", filter: &Filter{Conditions: []Condition{{Key: "payload/newValue", Value: []any{"Approved", "Done"}, Operator: "in"}}}, want: true},
		{name: "in not a list", filter: &Filter{Conditions: []Condition{{Key: "payload/newValue", Value: "Approved", Operator: "in"}}}, want: false},
		{name: "nested number", filter: &Filter{Conditions: []Condition{{Key: "payload/nested/n", Value: 2}}}, want: true},
		{name: "json number", filter: &Filter{Conditions: []Condition{{Key: "payload/nested/n", Value: 2.0}}}, want: true},
		{name: "string is not number", filter: &Filter{Conditions: []Condition{{Key: "payload/nested/n", Value: "2"}}}, want: false},
		{name: "string is not bool", filter: &Filter{Conditions: []Condition{{Key: "payload/done", Value: "true"}}}, want: false},
		{name: "bool", filter: &Filter{Conditions: []Condition{{Key: "payload/done", Value: true}}}, want: true},
		{name: "in mixed types", filter: &Filter{Conditions: []Condition{{Key: "payload/nested/n", Value: []any{"2", 2.0}, Operator: "in"}}}, want: true},
		{name: "unknown root", filter: &Filter{Conditions: []Condition{{Key: "bogus", Value: ""}}}, want: false},
		{
			name: "all conditions must match",
			filter: &Filter{Conditions: []Condition{
				{Key: "payload/newValue", Value: "Approved"},
				{Key: "project", Value: "other"},
			}},
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Match(e))
		})
	}
}
