// Package apierror renders handler errors as JSON documents.
package apierror

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/pipelinekit/example-addon/internal/auth"
	"github.com/pipelinekit/example-addon/internal/db/controller/event"
	"github.com/pipelinekit/example-addon/internal/db/controller/folder"
	"github.com/pipelinekit/example-addon/internal/db/controller/project"
	"github.com/pipelinekit/example-addon/internal/db/controller/setting"
	"github.com/pipelinekit/example-addon/internal/schema"
)

// Body is the JSON document of an error response.
type Body struct {
	Code   int      `json:"code"`
	Detail string   `json:"detail"`
	Errors []Detail `json:"errors,omitempty"`
}

// Detail describes one invalid field.
type Detail struct {
	Field   string `json:"field"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// Mapping assigns an HTTP status to errors matching Err.
type Mapping struct {
	Err    error
	Status int
}

var defaultMappings = []Mapping{
	{Err: project.ErrProjectNotFound, Status: fiber.StatusNotFound},
	{Err: folder.ErrFolderNotFound, Status: fiber.StatusNotFound},
	{Err: event.ErrEventNotFound, Status: fiber.StatusNotFound},
	{Err: setting.ErrSettingNotFound, Status: fiber.StatusNotFound},
	{Err: auth.ErrUserNotFound, Status: fiber.StatusNotFound},
	{Err: auth.ErrForbidden, Status: fiber.StatusForbidden},
	{Err: auth.ErrUnauthenticated, Status: fiber.StatusUnauthorized},
	{Err: event.ErrTopicEmpty, Status: fiber.StatusBadRequest},
}

// Handler returns a fiber error handler. extra mappings are checked before
// the built-in ones.
func Handler(extra ...Mapping) fiber.ErrorHandler {
	mappings := append(append([]Mapping{}, extra...), defaultMappings...)

	return func(c *fiber.Ctx, err error) error {
		body := build(err, mappings)

		if body.Code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		}

		return c.Status(body.Code).JSON(body)
	}
}

func build(err error, mappings []Mapping) Body {
	var (
		fe     *fiber.Error
		serrs  schema.Errors
		sfe    *schema.FieldError
		verrs  validator.ValidationErrors
		status = fiber.StatusInternalServerError
	)

	switch {
	case errors.As(err, &fe):
		return Body{Code: fe.Code, Detail: fe.Message}
	case errors.As(err, &serrs):
		return Body{Code: fiber.StatusBadRequest, Detail: "invalid settings", Errors: fieldDetails(serrs)}
	case errors.As(err, &sfe):
		return Body{Code: fiber.StatusBadRequest, Detail: "invalid settings", Errors: fieldDetails(schema.Errors{sfe})}
	case errors.As(err, &verrs):
		details := make([]Detail, len(verrs))
		for i, v := range verrs {
			details[i] = Detail{Field: v.Namespace(), Message: v.Tag()}
		}

		return Body{Code: fiber.StatusBadRequest, Detail: "invalid request", Errors: details}
	}

	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			status = m.Status
			break
		}
	}

	detail := err.Error()
	if status == fiber.StatusInternalServerError {
		detail = "internal server error"
	}

	return Body{Code: status, Detail: detail}
}

func fieldDetails(errs schema.Errors) []Detail {
	details := make([]Detail, len(errs))
	for i, e := range errs {
		details[i] = Detail{Field: e.Path, Name: e.Name, Message: e.Error()}
	}

	return details
}
