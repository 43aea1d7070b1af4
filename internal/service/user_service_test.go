package service

import (
	"context"
	"strings"
	"testing"

	"gighub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_FindOrCreateValidates(t *testing.T) {
	svc := NewUserService(noopUserRepo())

	_, err := svc.FindOrCreateByExternalID(context.Background(), " ", ProfileInput{Email: "a@b.c"})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = svc.FindOrCreateByExternalID(context.Background(), "u1", ProfileInput{})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestUserService_FindOrCreatePassesProfile(t *testing.T) {
	repo := noopUserRepo()
	var got *models.User
	repo.findOrCreateFn = func(_ context.Context, ext string, p *models.User) (*models.User, error) {
		got = p
		return &models.User{ID: "id-" + ext}, nil
	}
	svc := NewUserService(repo)

	long := strings.Repeat("é", 60)
	_, err := svc.FindOrCreateByExternalID(context.Background(), "u1", ProfileInput{
		Email:       " u1@example.com ",
		DisplayName: long,
		Claims:      map[string]any{"customRole": "admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", got.Email)
	assert.Equal(t, 50, len([]rune(got.DisplayName)))
	assert.Equal(t, "admin", got.Claims["customRole"])
}

func TestUserService_UpdateProfile(t *testing.T) {
	tests := []struct {
		name    string
		in      UpdateProfileInput
		wantErr string
		check   func(t *testing.T, p models.Patch)
	}{
		{
			name: "scalars and majors",
			in:   UpdateProfileInput{DisplayName: "Ann", Address: "Hue", Majors: []string{"backend"}},
			check: func(t *testing.T, p models.Patch) {
				assert.Equal(t, "Ann", p.Set["display_name"])
				assert.Equal(t, "Hue", p.Set["address"])
				assert.Equal(t, []string{"backend"}, p.AddToSet["majors"])
			},
		},
		{name: "display name too long", in: UpdateProfileInput{DisplayName: strings.Repeat("a", 51)}, wantErr: models.CodeValidation},
		{name: "address too long", in: UpdateProfileInput{Address: strings.Repeat("a", 201)}, wantErr: models.CodeValidation},
		{name: "bad email", in: UpdateProfileInput{Email: "not-an-email"}, wantErr: models.CodeValidation},
		{name: "email with name", in: UpdateProfileInput{Email: "Ann <ann@example.com>"}, wantErr: models.CodeValidation},
		{name: "bad major", in: UpdateProfileInput{Majors: []string{"wizard"}}, wantErr: models.CodeValidation},
		{
			name: "email",
			in:   UpdateProfileInput{Email: "ann@example.com"},
			check: func(t *testing.T, p models.Patch) {
				assert.Equal(t, "ann@example.com", p.Set["email"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopUserRepo()
			var patch models.Patch
			repo.updateFn = func(_ context.Context, ext string, p models.Patch) (*models.User, error) {
				patch = p
				return &models.User{ExternalID: ext}, nil
			}
			svc := NewUserService(repo)
			tt.in.ExternalID = "u1"

			_, err := svc.UpdateProfile(context.Background(), tt.in)
			if tt.wantErr != "" {
				assert.True(t, models.IsCode(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			tt.check(t, patch)
		})
	}
}

func TestUserService_UpdateProfileEmptyIsRead(t *testing.T) {
	repo := noopUserRepo()
	repo.updateFn = func(_ context.Context, _ string, _ models.Patch) (*models.User, error) {
		t.Fatal("update should not be called")
		return nil, nil
	}
	svc := NewUserService(repo)

	u, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{ExternalID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ExternalID)
}

func TestUserService_UpdateAvatar(t *testing.T) {
	repo := noopUserRepo()
	var patch models.Patch
	repo.updateFn = func(_ context.Context, _ string, p models.Patch) (*models.User, error) {
		patch = p
		return &models.User{}, nil
	}
	svc := NewUserService(repo)

	_, err := svc.UpdateAvatar(context.Background(), "u1", "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"avatar_url": "https://cdn.example.com/a.png"}, patch.Set)

	for _, bad := range []string{"", "not a url", "ftp://host/a.png", "/relative/a.png"} {
		_, err := svc.UpdateAvatar(context.Background(), "u1", bad)
		assert.True(t, models.IsCode(err, models.CodeValidation), bad)
	}
}

func TestUserService_GetPublicProfile(t *testing.T) {
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
		return &models.User{ID: id, Email: "a@b.c", Claims: map[string]any{"customRole": "admin"}}, nil
	}
	svc := NewUserService(repo)

	summary, err := svc.GetPublicProfile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, &models.UserSummary{ID: "u-1", Email: "a@b.c"}, summary)
}
