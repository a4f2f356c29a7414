// Package worker implements the approval service: it polls the job queue of
// the addon server and reacts to approved folders.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/pipelinekit/example-addon/internal/db/controller/event"
	"github.com/pipelinekit/example-addon/internal/db/models"
)

const (
	// DefaultSourceTopic is the topic of the events the worker reacts to.
	DefaultSourceTopic = "entity.folder.status_changed"
	// DefaultTargetTopic is the topic of the jobs the worker creates.
	DefaultTargetTopic = "example.approval_handler"
	// DefaultMaxRetries is how often a failed job is picked up again.
	DefaultMaxRetries = 3
	// DefaultPollInterval is the pause after an empty enroll.
	DefaultPollInterval = 5 * time.Second
	// DefaultProcessDelay is how long the worker pretends to work.
	DefaultProcessDelay = 2 * time.Second
)

// ErrNoDependency is returned for jobs that do not reference a source event.
var ErrNoDependency = errors.New("job has no source event")

var processedJobs = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "worker_jobs_total",
		Help: "Number of jobs handled by the worker, labelled by result.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(processedJobs)
}

// Queue is the part of the server API the worker needs.
type Queue interface {
	EnrollEventJob(ctx context.Context, req event.EnrollRequest) (*models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	UpdateEvent(ctx context.Context, id string, patch event.Patch) error
}

// Config tunes the worker. Zero members take the defaults.
type Config struct {
	Sender       string
	SourceTopic  string
	TargetTopic  string
	MaxRetries   int
	PollInterval time.Duration
	ProcessDelay time.Duration
}

// Worker processes approval jobs one at a time.
type Worker struct {
	queue Queue
	cfg   Config
}

// SenderName identifies the worker on this host.
func SenderName() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	return "example-service-" + host
}

// New creates a worker reading jobs from queue.
func New(queue Queue, cfg Config) *Worker {
	if cfg.Sender == "" {
		cfg.Sender = SenderName()
	}

	if cfg.SourceTopic == "" {
		cfg.SourceTopic = DefaultSourceTopic
	}

	if cfg.TargetTopic == "" {
		cfg.TargetTopic = DefaultTargetTopic
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.ProcessDelay == 0 {
		cfg.ProcessDelay = DefaultProcessDelay
	}

	return &Worker{queue: queue, cfg: cfg}
}

func (w *Worker) enrollRequest() event.EnrollRequest {
	return event.EnrollRequest{
		SourceTopic: w.cfg.SourceTopic,
		TargetTopic: w.cfg.TargetTopic,
		Sender:      w.cfg.Sender,
		Description: "Approved folder detected. Thinking...",
		MaxRetries:  w.cfg.MaxRetries,
		Filter: &event.Filter{Conditions: []event.Condition{
			{Key: "payload/newValue", Value: "Approved"},
		}},
	}
}

// ProcessEvent handles the next job. It waits for the poll interval and
// returns false when there is none.
func (w *Worker) ProcessEvent(ctx context.Context) (bool, error) {
	job, err := w.queue.EnrollEventJob(ctx, w.enrollRequest())
	if err != nil {
		return false, fmt.Errorf("enroll: %w", err)
	}

	if job == nil {
		return false, sleep(ctx, w.cfg.PollInterval)
	}

	if err := w.handle(ctx, job); err != nil {
		if ctx.Err() != nil {
			return true, errors.Join(err, w.release(job))
		}

		processedJobs.WithLabelValues("failed").Inc()

		failErr := w.queue.UpdateEvent(context.WithoutCancel(ctx), job.ID, event.Patch{
			Sender:      w.cfg.Sender,
			Status:      models.EventFailed,
			Description: "Failed: " + err.Error(),
		})

		return true, errors.Join(err, failErr)
	}

	processedJobs.WithLabelValues("finished").Inc()

	return true, nil
}

// release hands an interrupted job back to the queue without spending a retry.
func (w *Worker) release(job *models.Event) error {
	processedJobs.WithLabelValues("released").Inc()
	log.Info().Str("job", job.ID).Msg("releasing job on shutdown")

	return w.queue.UpdateEvent(context.Background(), job.ID, event.Patch{
		Sender:      w.cfg.Sender,
		Status:      models.EventPending,
		Description: "Interrupted, waiting for another worker",
	})
}

func (w *Worker) handle(ctx context.Context, job *models.Event) error {
	if job.DependsOn == nil {
		return fmt.Errorf("%w: %s", ErrNoDependency, job.ID)
	}

	source, err := w.queue.GetEvent(ctx, *job.DependsOn)
	if err != nil {
		return fmt.Errorf("load source event: %w", err)
	}

	log.Info().Str("job", job.ID).Str("project", source.Project).Str("user", source.User).Msg("processing approval")

	err = w.queue.UpdateEvent(ctx, job.ID, event.Patch{
		Sender:      w.cfg.Sender,
		Status:      models.EventInProgress,
		Project:     source.Project,
		Description: "Stand by. I am pretending to do something...",
	})
	if err != nil {
		return err
	}

	if err := sleep(ctx, w.cfg.ProcessDelay); err != nil {
		return err
	}

	return w.queue.UpdateEvent(ctx, job.ID, event.Patch{
		Sender:      w.cfg.Sender,
		Status:      models.EventFinished,
		Project:     source.Project,
		Description: fmt.Sprintf("Good job %s! Your folder has been approved.", source.User),
	})
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	log.Info().Str("sender", w.cfg.Sender).Str("topic", w.cfg.SourceTopic).Msg("worker started")

	for {
		_, err := w.ProcessEvent(ctx)

		switch {
		case ctx.Err() != nil:
			log.Info().Msg("worker stopped")
			return nil
		case err != nil:
			log.Error().Err(err).Msg("failed to process event")

			if err := sleep(ctx, w.cfg.PollInterval); err != nil {
				return nil
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
