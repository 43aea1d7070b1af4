package server

import (
	"gighub/internal/identity"
	"gighub/internal/models"
	"gighub/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) signedInUser(c *fiber.Ctx, id *identity.Identity) (*models.User, error) {
	return s.userService.FindOrCreateByExternalID(c.UserContext(), id.ExternalID, service.ProfileInput{
		Email:       id.Email,
		DisplayName: id.DisplayName,
		AvatarURL:   id.AvatarURL,
		Claims:      id.Claims,
	})
}

// SignIn handles POST /api/users/sign-in. The first call for an identity
// creates its user.
func (s *Server) SignIn(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	user, err := s.signedInUser(c, id)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(user)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	user, err := s.signedInUser(c, id)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PATCH /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	var req struct {
		Email       string   `json:"email"`
		DisplayName string   `json:"display_name"`
		Address     string   `json:"address"`
		Phone       string   `json:"phone"`
		Majors      []string `json:"majors"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, invalidBody())
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		ExternalID:  id.ExternalID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Address:     req.Address,
		Phone:       req.Phone,
		Majors:      req.Majors,
	})
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyAvatar handles PUT /api/users/me/avatar. The body names an already
// hosted image; uploads are not accepted.
func (s *Server) UpdateMyAvatar(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	var req struct {
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, invalidBody())
	}

	user, err := s.userService.UpdateAvatar(c.UserContext(), id.ExternalID, req.AvatarURL)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetPublicProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(profile)
}
