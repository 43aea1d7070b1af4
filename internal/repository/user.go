package repository

import (
	"context"
	"time"

	"gighub/internal/cache"
	"gighub/internal/models"
	"gighub/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository is the User Directory store.
type UserRepository interface {
	FindOrCreateByExternalID(ctx context.Context, externalID string, profile *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	Update(ctx context.Context, externalID string, patch models.Patch) (*models.User, error)
	AddToRelationSet(ctx context.Context, externalID string, rel models.Relation, postID string) error
	AddToRelationSetByID(ctx context.Context, userID string, rel models.Relation, postID string) error
}

// Scalar user columns a Patch may replace.
var userSetColumns = map[string]bool{
	"email":        true,
	"display_name": true,
	"avatar_url":   true,
	"address":      true,
	"phone":        true,
	"claims":       true,
}

// List-valued user fields a Patch may union into, mapped to their relation
// when they are stored in user_post_links.
var userSetRelations = map[string]models.Relation{
	"posts_created":  models.RelationCreated,
	"posts_offered":  models.RelationOffered,
	"posts_received": models.RelationReceived,
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindOrCreateByExternalID inserts profile under externalID unless a user with
// that external id exists, then returns the stored user. Concurrent calls
// converge on one row.
func (r *userRepository) FindOrCreateByExternalID(ctx context.Context, externalID string, profile *models.User) (*models.User, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "FindOrCreateByExternalID", "users")
	defer span.End()

	candidate := &models.User{ExternalID: externalID}
	if profile != nil {
		candidate.Email = profile.Email
		candidate.DisplayName = profile.DisplayName
		candidate.AvatarURL = profile.AvatarURL
		candidate.Claims = profile.Claims
		candidate.Address = profile.Address
		candidate.Phone = profile.Phone
		candidate.Majors = profile.Majors
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_id"}}, DoNothing: true}).
		Create(candidate).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.NewConflictError("email is already registered to another account")
		}
		return nil, models.NewInternalError(err)
	}

	return r.GetByExternalID(ctx, externalID)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
			return mapError(err, "User", id)
		}
		return r.loadRelations(ctx, r.db, []*models.User{&user})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.getByExternalID(ctx, r.db, externalID)
}

func (r *userRepository) getByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, "external_id = ?", externalID).Error; err != nil {
		return nil, mapError(err, "User", externalID)
	}
	if err := r.loadRelations(ctx, db, []*models.User{&user}); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByIDs returns the users with the given ids. Missing ids are skipped.
func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	ids = nonEmpty(ids)
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	var users []*models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Update applies patch to the user with externalID in a single transaction.
// Scalar fields are replaced; list fields are unioned.
func (r *userRepository) Update(ctx context.Context, externalID string, patch models.Patch) (*models.User, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Update", "users")
	defer span.End()

	for field := range patch.Set {
		if !userSetColumns[field] {
			return nil, models.NewValidationError("field " + field + " cannot be updated")
		}
	}
	for field := range patch.AddToSet {
		if _, ok := userSetRelations[field]; !ok && field != "majors" {
			return nil, models.NewValidationError("field " + field + " is not a list")
		}
	}

	var updated *models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "external_id = ?", externalID).Error; err != nil {
			return mapError(err, "User", externalID)
		}

		updates := make(map[string]any, len(patch.Set)+1)
		for field, value := range patch.Set {
			if field == "claims" {
				value = jsonValue(value)
			}
			updates[field] = value
		}
		if add, ok := patch.AddToSet["majors"]; ok {
			updates["majors"] = jsonValue(models.MergeUnique(user.Majors, add...))
		}
		if len(updates) > 0 {
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				if isUniqueConstraintError(err) {
					return models.NewConflictError("email is already registered to another account")
				}
				return models.NewInternalError(err)
			}
		}

		for field, postIDs := range patch.AddToSet {
			rel, ok := userSetRelations[field]
			if !ok {
				continue
			}
			for _, postID := range nonEmpty(postIDs) {
				if err := addLink(ctx, tx, user.ID, rel, postID); err != nil {
					return err
				}
			}
		}

		u, err := r.getByExternalID(ctx, tx, externalID)
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateUser(ctx, updated.ID)
	return updated, nil
}

func (r *userRepository) AddToRelationSet(ctx context.Context, externalID string, rel models.Relation, postID string) error {
	var user models.User
	if err := r.db.WithContext(ctx).Select("id").First(&user, "external_id = ?", externalID).Error; err != nil {
		return mapError(err, "User", externalID)
	}
	return r.AddToRelationSetByID(ctx, user.ID, rel, postID)
}

// AddToRelationSetByID adds postID to the user's rel set. Adding a present id is a no-op.
func (r *userRepository) AddToRelationSetByID(ctx context.Context, userID string, rel models.Relation, postID string) error {
	if !rel.Valid() {
		return models.NewValidationError("unknown relation " + string(rel))
	}
	if err := addLink(ctx, r.db, userID, rel, postID); err != nil {
		return err
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

func addLink(ctx context.Context, db *gorm.DB, userID string, rel models.Relation, postID string) error {
	link := &models.UserPostLink{UserID: userID, PostID: postID, Relation: rel, CreatedAt: time.Now()}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(link).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// loadRelations fills the three relationship sets of users, oldest membership first.
func (r *userRepository) loadRelations(ctx context.Context, db *gorm.DB, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}
	byID := make(map[string]*models.User, len(users))
	ids := make([]string, 0, len(users))
	for _, u := range users {
		byID[u.ID] = u
		ids = append(ids, u.ID)
		u.PostsCreated, u.PostsOffered, u.PostsReceived = []string{}, []string{}, []string{}
	}

	var links []models.UserPostLink
	if err := db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Order("created_at ASC").Order("post_id ASC").
		Find(&links).Error; err != nil {
		return models.NewInternalError(err)
	}

	for _, l := range links {
		u := byID[l.UserID]
		switch l.Relation {
		case models.RelationCreated:
			u.PostsCreated = append(u.PostsCreated, l.PostID)
		case models.RelationOffered:
			u.PostsOffered = append(u.PostsOffered, l.PostID)
		case models.RelationReceived:
			u.PostsReceived = append(u.PostsReceived, l.PostID)
		}
	}
	return nil
}
