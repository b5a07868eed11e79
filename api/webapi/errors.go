package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pjecz/plataforma-web/internal/workflow"
	"github.com/pjecz/plataforma-web/storage/model"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Form        any    `json:"form,omitempty"`
	Record      any    `json:"record,omitempty"`
}

// classify maps an error returned by the workflow or the storage layer to
// its http status and response body
func classify(err error) (int, errorResponse) {
	var (
		validation    workflow.ValidationError
		eligibility   workflow.EligibilityError
		authorization workflow.AuthorizationError
		conflict      workflow.ConflictError
		partial       workflow.PartialFailureError
		notFound      model.NotFoundError
		exists        model.AlreadyExistsError
		fiberErr      *fiber.Error
	)
	switch {
	case errors.As(err, &validation):
		return fiber.StatusUnprocessableEntity, errorResponse{
			Error: "invalid_request", Description: validation.Message, Form: validation.Form,
		}
	case errors.As(err, &eligibility):
		return fiber.StatusUnprocessableEntity, errorResponse{Error: "not_eligible", Description: eligibility.Message}
	case errors.As(err, &authorization):
		return fiber.StatusForbidden, errorResponse{Error: "forbidden", Description: authorization.Message}
	case errors.As(err, &conflict):
		return fiber.StatusConflict, errorResponse{Error: "conflict", Description: conflict.Message}
	case errors.As(err, &partial):
		return fiber.StatusBadGateway, errorResponse{
			Error: "partial_failure", Description: partial.Message, Record: partial.Record,
		}
	case errors.As(err, &notFound):
		return fiber.StatusNotFound, errorResponse{Error: "not_found", Description: notFound.Error()}
	case errors.As(err, &exists):
		return fiber.StatusConflict, errorResponse{Error: "already_exists", Description: exists.Error()}
	case errors.As(err, &fiberErr):
		return fiberErr.Code, errorResponse{Error: "invalid_request", Description: fiberErr.Message}
	}
	return fiber.StatusInternalServerError, errorResponse{Error: "server_error", Description: err.Error()}
}

func writeError(c *fiber.Ctx, err error) error {
	status, res := classify(err)
	if status >= fiber.StatusInternalServerError {
		log.WithError(err).WithFields(
			log.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			},
		).Error("request failed")
	}
	return c.Status(status).JSON(res)
}

func badRequest(c *fiber.Ctx, description string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid_request", Description: description})
}

// ErrorHandler renders errors that escape the handlers as JSON
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err)
}
