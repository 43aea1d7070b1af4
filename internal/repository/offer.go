package repository

import (
	"context"

	"gighub/internal/cache"
	"gighub/internal/models"
	"gighub/internal/observability"

	"gorm.io/gorm"
)

// OfferFilter narrows offer lookups. Empty fields are ignored; Status ALL or
// empty matches every status. A non-nil empty IDs matches nothing.
type OfferFilter struct {
	PostID string
	UserID string
	IDs    []string
	Status models.OfferStatus
}

// OfferRepository is the Post Store for offers.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id string) (*models.Offer, error)
	ExistsForAuthor(ctx context.Context, postID, userID string) (bool, error)
	Find(ctx context.Context, filter OfferFilter) ([]*models.Offer, error)
	FindByAuthor(ctx context.Context, userID string, page models.PageRequest) ([]*models.Offer, int64, error)
	Update(ctx context.Context, id string, patch models.Patch) (*models.Offer, error)
	MarkAccepted(ctx context.Context, id string) error
}

// Offer columns a Patch may replace.
var offerSetColumns = map[string]bool{
	"proposal_skill":   true,
	"plan_implement":   true,
	"recommend_cost":   true,
	"phone":            true,
	"expect_date_done": true,
}

type offerRepository struct {
	db *gorm.DB
}

// NewOfferRepository returns a new OfferRepository implementation.
func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

// Create inserts offer. It joins the post's request list by virtue of its
// post_id, so the cached post is dropped. A second offer by the same author on
// the same post fails with ConflictError.
func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	ctx, span := observability.StartRepositorySpan(ctx, "Create", "offers")
	defer span.End()
	defer observability.TrackQuery("Create", "offers")()

	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("already requested")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, offer.PostID)
	return nil
}

func (r *offerRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, mapError(err, "Offer", id)
	}
	return &offer, nil
}

func (r *offerRepository) ExistsForAuthor(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func applyOfferFilter(db *gorm.DB, f OfferFilter) *gorm.DB {
	if f.PostID != "" {
		db = db.Where("post_id = ?", f.PostID)
	}
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID)
	}
	if f.IDs != nil {
		db = db.Where("id IN ?", f.IDs)
	}
	if f.Status != "" && f.Status != models.OfferStatusAll {
		db = db.Where("status = ?", f.Status)
	}
	return db
}

// Find returns every offer matching filter, oldest first.
func (r *offerRepository) Find(ctx context.Context, filter OfferFilter) ([]*models.Offer, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Find", "offers")
	defer span.End()
	defer observability.TrackQuery("Find", "offers")()

	offers := []*models.Offer{}
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return offers, nil
	}
	err := applyOfferFilter(r.db.WithContext(ctx), filter).
		Order("created_at ASC").Order("id ASC").
		Find(&offers).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return offers, nil
}

// FindByAuthor pages through the offers written by userID.
func (r *offerRepository) FindByAuthor(ctx context.Context, userID string, page models.PageRequest) ([]*models.Offer, int64, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "FindByAuthor", "offers")
	defer span.End()

	page = page.Normalize()
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Offer{}).Where("user_id = ?", userID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	offers := []*models.Offer{}
	if total == 0 {
		return offers, 0, nil
	}
	if err := base().
		Order(page.OrderBy()).Order("id ASC").
		Limit(page.Limit).Offset(page.Offset()).
		Find(&offers).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return offers, total, nil
}

// Update replaces the offer columns named in patch.Set. Offers carry no list
// fields, so AddToSet must be empty.
func (r *offerRepository) Update(ctx context.Context, id string, patch models.Patch) (*models.Offer, error) {
	for field := range patch.Set {
		if !offerSetColumns[field] {
			return nil, models.NewValidationError("field " + field + " cannot be updated")
		}
	}
	if len(patch.AddToSet) > 0 {
		return nil, models.NewValidationError("offers have no list fields")
	}

	var offer models.Offer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&offer, "id = ?", id).Error; err != nil {
			return mapError(err, "Offer", id)
		}
		if len(patch.Set) == 0 {
			return nil
		}
		if err := tx.Model(&models.Offer{}).Where("id = ?", id).Updates(patch.Set).Error; err != nil {
			return models.NewInternalError(err)
		}
		return mapError(tx.First(&offer, "id = ?", id).Error, "Offer", id)
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, offer.PostID)
	return &offer, nil
}

// MarkAccepted moves offer id to ACCEPTED. Accepting an accepted offer is a no-op.
func (r *offerRepository) MarkAccepted(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, models.OfferStatusPending).
		Update("status", models.OfferStatusAccepted)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
