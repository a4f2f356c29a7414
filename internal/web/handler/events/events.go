// Package events exposes the event stream and the job queue.
package events

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/auth"
	"github.com/pipelinekit/example-addon/internal/db/controller/event"
	"github.com/pipelinekit/example-addon/internal/db/models"
	stream "github.com/pipelinekit/example-addon/internal/events"
	"github.com/pipelinekit/example-addon/internal/web/handler"
)

const (
	// Path is the event collection below /api.
	Path = "/events"
	// ItemPath addresses one event.
	ItemPath = "/events/:id"
	// EnrollPath hands out the next job.
	EnrollPath = "/enroll"
)

// CreateRequest is the body of a new event.
type CreateRequest struct {
	Topic       string             `json:"topic"       validate:"required,max=255"`
	Sender      string             `json:"sender"`
	Project     string             `json:"project"`
	DependsOn   *string            `json:"dependsOn"   validate:"omitempty,uuid"`
	Status      models.EventStatus `json:"status"      validate:"omitempty,oneof=pending in_progress finished failed aborted restarted"`
	Description string             `json:"description"`
	Summary     map[string]any     `json:"summary"`
	Payload     map[string]any     `json:"payload"`
}

// CreateResponse returns the id of a new event.
type CreateResponse struct {
	ID string `json:"id"`
}

// Service is the events handler service.
type Service struct {
	handler.Service
	db     *gorm.DB
	stream *stream.Stream
}

// Init registers the event routes below /api.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.db = deps.DB
	s.stream = deps.Stream

	router.Post(Path, s.Create)
	router.Get(ItemPath, s.Get)
	router.Patch(ItemPath, s.Patch)
	router.Post(EnrollPath, auth.RequireAdmin(), s.Enroll)

	return nil
}

// Create stores an event and notifies its subscribers.
func (s *Service) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := handler.BindJSON(c, &req); err != nil {
		return err
	}

	if err := handler.RequireProjectAccess(c, req.Project); err != nil {
		return err
	}

	e := &models.Event{
		Topic:       req.Topic,
		Sender:      req.Sender,
		Project:     req.Project,
		User:        auth.CurrentUser(c).Name,
		DependsOn:   req.DependsOn,
		Status:      req.Status,
		Description: req.Description,
		Summary:     req.Summary,
		Payload:     req.Payload,
	}

	if e.Status == "" {
		e.Status = models.EventFinished
	}

	if err := s.stream.Dispatch(c.UserContext(), e); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(CreateResponse{ID: e.ID})
}

// Get returns an event.
func (s *Service) Get(c *fiber.Ctx) error {
	e, err := event.Get(c.UserContext(), s.db, c.Params("id"))
	if err != nil {
		return err
	}

	if err := handler.RequireProjectAccess(c, e.Project); err != nil {
		return err
	}

	return c.JSON(e)
}

// Patch changes an event.
func (s *Service) Patch(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	var p event.Patch
	if err := handler.BindJSON(c, &p); err != nil {
		return err
	}

	e, err := event.Get(ctx, s.db, id)
	if err != nil {
		return err
	}

	if err := handler.RequireProjectAccess(c, e.Project); err != nil {
		return err
	}

	if err := handler.RequireProjectAccess(c, p.Project); err != nil {
		return err
	}

	updated, err := event.Update(ctx, s.db, id, p)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// Enroll hands out the next job or answers 204 when nothing waits.
func (s *Service) Enroll(c *fiber.Ctx) error {
	var req event.EnrollRequest
	if err := handler.BindJSON(c, &req); err != nil {
		return err
	}

	job, err := event.Enroll(c.UserContext(), s.db, req)
	if errors.Is(err, event.ErrNoJob) {
		return c.SendStatus(fiber.StatusNoContent)
	}

	if err != nil {
		return err
	}

	log.Info().Str("job", job.ID).Str("sender", req.Sender).Str("topic", req.TargetTopic).Msg("Job enrolled")

	return c.JSON(job)
}
