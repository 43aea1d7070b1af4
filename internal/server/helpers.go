package server

import (
	"errors"
	"log/slog"
	"strings"

	"gighub/internal/identity"
	"gighub/internal/middleware"
	"gighub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusForCode maps an AppError code to its HTTP status.
func statusForCode(code string) int {
	switch code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondWithError writes err with the status its code maps to. Errors that
// are not AppErrors are reported as internal. Internal errors are logged here
// and only here; the client gets a generic message.
func respondWithError(c *fiber.Ctx, err error) error {
	code := models.ErrorCode(err)
	if code == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, statusForCode(code), err)
}

// errorHandler handles errors returned from handlers and Fiber itself.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	return respondWithError(c, err)
}

// parsePagination reads page, limit and sortDate.
func parsePagination(c *fiber.Ctx) models.PageRequest {
	return models.PageRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", models.DefaultPageLimit),
		Sort:  models.ParseSortOrder(c.Query("sortDate")),
	}.Normalize()
}

// queryList collects a repeated or comma-separated query parameter.
// ?tag=a&tag=b,c yields [a b c].
func queryList(c *fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, v := range strings.Split(string(raw), ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// currentIdentity returns the caller verified by AuthRequired.
func currentIdentity(c *fiber.Ctx) (*identity.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, models.NewUnauthorizedError("authentication required")
	}
	return id, nil
}

func invalidBody() error {
	return models.NewValidationError("Invalid request body")
}
