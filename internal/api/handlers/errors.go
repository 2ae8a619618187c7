package handlers

import (
	"errors"

	"github.com/amaumene/cinesync/internal/controllers"
	"github.com/amaumene/cinesync/internal/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps the error taxonomy onto HTTP statuses
func writeError(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	var (
		validationErr *errs.ValidationError
		notFoundErr   *errs.NotFoundError
		forbiddenErr  *errs.ForbiddenError
		conflictErr   *errs.ConflictError
		configErr     *errs.ConfigurationError
		syncErr       *errs.SyncFailedError
		fiberErr      *fiber.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: validationErr.Error(), Field: validationErr.Field})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: notFoundErr.Error()})
	case errors.As(err, &forbiddenErr):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: forbiddenErr.Error()})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: conflictErr.Error()})
	case errors.Is(err, controllers.ErrBadCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: err.Error()})
	case errors.As(err, &configErr):
		logger.WithError(err).Warn("Sync requested without TMDB credentials")
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: configErr.Error()})
	case errors.As(err, &syncErr):
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: syncErr.Error()})
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message})
	default:
		logger.WithError(err).WithField("path", c.Path()).Error("Request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Internal server error"})
	}
}

// ErrorHandler is installed as the fiber app error handler
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeError(c, logger, err)
	}
}

// parseID reads a positive numeric path parameter
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, &errs.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return uint(id), nil
}

// parseBody decodes the JSON request body into dest
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return &errs.ValidationError{Field: "body", Message: "must be a valid JSON object"}
	}
	return nil
}
