package service

import (
	"context"
	"net/mail"
	"net/url"
	"strings"

	"gighub/internal/models"
	"gighub/internal/repository"
)

// UserService is the User Directory.
type UserService struct {
	userRepo repository.UserRepository
}

// ProfileInput seeds a user created on first sign-in.
type ProfileInput struct {
	Email       string
	DisplayName string
	AvatarURL   string
	Claims      map[string]any
}

// UpdateProfileInput carries a profile edit. Empty strings leave a field
// unchanged; Majors are merged into the existing list.
type UpdateProfileInput struct {
	ExternalID  string
	Email       string
	DisplayName string
	Address     string
	Phone       string
	Majors      []string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// FindOrCreateByExternalID returns the user for externalID, creating it from
// profile on first sight. Safe under concurrent first sign-ins.
func (s *UserService) FindOrCreateByExternalID(ctx context.Context, externalID string, profile ProfileInput) (*models.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, models.NewValidationError("External id is required")
	}
	if strings.TrimSpace(profile.Email) == "" {
		return nil, models.NewValidationError("Email is required")
	}
	return s.userRepo.FindOrCreateByExternalID(ctx, externalID, &models.User{
		Email:       strings.TrimSpace(profile.Email),
		DisplayName: truncate(profile.DisplayName, maxDisplayNameLen),
		AvatarURL:   profile.AvatarURL,
		Claims:      profile.Claims,
	})
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.userRepo.GetByExternalID(ctx, externalID)
}

// GetPublicProfile returns only the summary fields of user id.
func (s *UserService) GetPublicProfile(ctx context.Context, id string) (*models.UserSummary, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := user.Summary()
	return &summary, nil
}

const (
	maxDisplayNameLen = 50
	maxAddressLen     = 200
	maxPhoneLen       = 32
)

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	patch := models.Patch{}

	if in.DisplayName != "" {
		if len(in.DisplayName) > maxDisplayNameLen {
			return nil, models.NewValidationError("Display name too long (max 50 characters)")
		}
		patch.SetField("display_name", in.DisplayName)
	}
	if in.Address != "" {
		if len(in.Address) > maxAddressLen {
			return nil, models.NewValidationError("Address too long (max 200 characters)")
		}
		patch.SetField("address", in.Address)
	}
	if in.Phone != "" {
		if len(in.Phone) > maxPhoneLen {
			return nil, models.NewValidationError("Phone too long (max 32 characters)")
		}
		patch.SetField("phone", in.Phone)
	}
	if in.Email != "" {
		addr, err := mail.ParseAddress(in.Email)
		if err != nil || addr.Address != in.Email {
			return nil, models.NewValidationError("Invalid email address")
		}
		patch.SetField("email", in.Email)
	}
	for _, m := range in.Majors {
		if !models.ValidMajor(m) {
			return nil, models.NewValidationError("Invalid major: " + m)
		}
	}
	if len(in.Majors) > 0 {
		patch.Add("majors", in.Majors...)
	}

	if patch.IsEmpty() {
		return s.userRepo.GetByExternalID(ctx, in.ExternalID)
	}
	return s.userRepo.Update(ctx, in.ExternalID, patch)
}

// UpdateAvatar records a new avatar URL. The image itself is hosted elsewhere.
func (s *UserService) UpdateAvatar(ctx context.Context, externalID, avatarURL string) (*models.User, error) {
	u, err := url.ParseRequestURI(strings.TrimSpace(avatarURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, models.NewValidationError("avatar_url must be an http(s) URL")
	}
	patch := models.Patch{}
	patch.SetField("avatar_url", u.String())
	return s.userRepo.Update(ctx, externalID, patch)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
