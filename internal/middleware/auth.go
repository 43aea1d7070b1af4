package middleware

import (
	"context"
	"strings"

	"gighub/internal/identity"
	"gighub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals set by AuthRequired.
const (
	LocalIdentity   = "identity"
	LocalExternalID = "externalID"
)

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
		Error: msg,
		Code:  models.CodeUnauthorized,
	})
}

// AuthRequired enforces a verified bearer token. The verified identity is
// stored in locals and the external id is added to the request context.
func AuthRequired(v identity.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Authorization header required")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return unauthorized(c, "Invalid authorization header format")
		}

		id, err := v.Verify(c.UserContext(), parts[1])
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(LocalIdentity, id)
		c.Locals(LocalExternalID, id.ExternalID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, id.ExternalID))

		return c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthRequired.
func IdentityFrom(c *fiber.Ctx) (*identity.Identity, bool) {
	id, ok := c.Locals(LocalIdentity).(*identity.Identity)
	return id, ok && id != nil
}
