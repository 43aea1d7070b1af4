package repository

import (
	"context"
	"strings"
	"time"

	"gighub/internal/cache"
	"gighub/internal/models"
	"gighub/internal/observability"

	"gorm.io/gorm"
)

// PostFilter is a conjunction of optional predicates over posts. Empty fields
// are ignored. A non-nil empty IDs matches nothing.
type PostFilter struct {
	Status          models.PostStatus
	JobType         string
	WorkType        string
	WorkingForm     string
	PayForm         string
	ServiceType     string
	TitleSearch     string
	Tags            []string
	IDs             []string
	UserID          string
	ReceivingUserID string
}

// PostRepository is the Post Store for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Find(ctx context.Context, filter PostFilter, page models.PageRequest) ([]*models.Post, int64, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.Post, error)
	ListCreatedBy(ctx context.Context, userID string, page models.PageRequest) ([]*models.Post, int64, error)
	ListReceivedBy(ctx context.Context, userID string, page models.PageRequest) ([]*models.Post, int64, error)
	Update(ctx context.Context, id string, patch models.Patch) (*models.Post, error)
	MarkReceived(ctx context.Context, postID, offerID, receiverID string, at time.Time) error
	MarkClosed(ctx context.Context, postID string) error
}

// Scalar post columns a Patch may replace.
var postSetColumns = map[string]bool{
	"title":          true,
	"description":    true,
	"location":       true,
	"tags":           true,
	"budget_from":    true,
	"budget_to":      true,
	"expired_at":     true,
	"job_type":       true,
	"work_type":      true,
	"working_form":   true,
	"pay_form":       true,
	"service_type":   true,
	"working_status": true,
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	ctx, span := observability.StartRepositorySpan(ctx, "Create", "posts")
	defer span.End()
	defer observability.TrackQuery("Create", "posts")()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	post.ListRequest = []string{}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
			return mapError(err, "Post", id)
		}
		return r.loadListRequests(ctx, r.db, []*models.Post{&post})
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func applyPostFilter(db *gorm.DB, f PostFilter) *gorm.DB {
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.JobType != "" {
		db = db.Where("job_type = ?", f.JobType)
	}
	if f.WorkType != "" {
		db = db.Where("work_type = ?", f.WorkType)
	}
	if f.WorkingForm != "" {
		db = db.Where("working_form = ?", f.WorkingForm)
	}
	if f.PayForm != "" {
		db = db.Where("pay_form = ?", f.PayForm)
	}
	if f.ServiceType != "" {
		db = db.Where("service_type = ?", f.ServiceType)
	}
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID)
	}
	if f.ReceivingUserID != "" {
		db = db.Where("receiving_user_id = ?", f.ReceivingUserID)
	}
	if q := strings.TrimSpace(f.TitleSearch); q != "" {
		db = db.Where(`LOWER(title) LIKE ? ESCAPE '\'`, containsPattern(strings.ToLower(q)))
	}
	if f.IDs != nil {
		db = db.Where("id IN ?", f.IDs)
	}
	if tags := nonEmpty(f.Tags); len(tags) > 0 {
		clauses := make([]string, 0, len(tags))
		args := make([]any, 0, len(tags))
		pg := isPostgres(db)
		for _, tag := range tags {
			if pg {
				clauses = append(clauses, "tags @> ?::jsonb")
				args = append(args, jsonValue([]string{tag}))
				continue
			}
			for _, pattern := range jsonElementPatterns(tag) {
				clauses = append(clauses, `CAST(tags AS TEXT) LIKE ? ESCAPE '\'`)
				args = append(args, pattern)
			}
		}
		db = db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	return db
}

// Find returns one page of posts matching filter plus the total match count.
// Ties on created_at are broken by id so pages never overlap.
func (r *postRepository) Find(ctx context.Context, filter PostFilter, page models.PageRequest) ([]*models.Post, int64, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Find", "posts")
	defer span.End()
	defer observability.TrackQuery("Find", "posts")()

	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []*models.Post{}, 0, nil
	}
	page = page.Normalize()

	base := func() *gorm.DB {
		return applyPostFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	posts := []*models.Post{}
	if total > 0 {
		if err := base().
			Order(page.OrderBy()).Order("id ASC").
			Limit(page.Limit).Offset(page.Offset()).
			Find(&posts).Error; err != nil {
			return nil, 0, models.NewInternalError(err)
		}
	}
	if err := r.loadListRequests(ctx, r.db, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListByIDs returns the posts with the given ids. Missing ids are skipped.
func (r *postRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Post, error) {
	ids = nonEmpty(ids)
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.loadListRequests(ctx, r.db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListCreatedBy(ctx context.Context, userID string, page models.PageRequest) ([]*models.Post, int64, error) {
	return r.Find(ctx, PostFilter{UserID: userID}, page)
}

func (r *postRepository) ListReceivedBy(ctx context.Context, userID string, page models.PageRequest) ([]*models.Post, int64, error) {
	return r.Find(ctx, PostFilter{ReceivingUserID: userID, Status: models.PostStatusReceived}, page)
}

// Update applies patch to post id. Tags in AddToSet are unioned into the
// existing tag list.
func (r *postRepository) Update(ctx context.Context, id string, patch models.Patch) (*models.Post, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Update", "posts")
	defer span.End()

	for field := range patch.Set {
		if !postSetColumns[field] {
			return nil, models.NewValidationError("field " + field + " cannot be updated")
		}
	}
	for field := range patch.AddToSet {
		if field != "tags" {
			return nil, models.NewValidationError("field " + field + " is not a list")
		}
	}

	var updated models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			return mapError(err, "Post", id)
		}

		updates := make(map[string]any, len(patch.Set)+1)
		for field, value := range patch.Set {
			if field == "tags" {
				value = jsonValue(value)
			}
			updates[field] = value
		}
		if add, ok := patch.AddToSet["tags"]; ok {
			base := updated.Tags
			if replaced, ok := patch.Set["tags"].([]string); ok {
				base = replaced
			}
			updates["tags"] = jsonValue(models.MergeUnique(base, add...))
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return mapError(err, "Post", id)
		}
		return mapError(tx.First(&updated, "id = ?", id).Error, "Post", id)
	})
	if err != nil {
		return nil, err
	}
	if err := r.loadListRequests(ctx, r.db, []*models.Post{&updated}); err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, id)
	return &updated, nil
}

// MarkReceived moves an ACTIVE post to RECEIVED with the accepted offer and
// receiver. The transition is a single conditional update: when the post is no
// longer ACTIVE it fails with ConflictError and changes nothing.
func (r *postRepository) MarkReceived(ctx context.Context, postID, offerID, receiverID string, at time.Time) error {
	ctx, span := observability.StartRepositorySpan(ctx, "MarkReceived", "posts")
	defer span.End()

	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND status = ?", postID, models.PostStatusActive).
		Updates(map[string]any{
			"status":            models.PostStatusReceived,
			"accepted_offer_id": offerID,
			"receiving_user_id": receiverID,
			"date_received":     at,
			"updated_at":        at,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	cache.InvalidatePost(ctx, postID)
	if res.RowsAffected == 0 {
		return r.transitionConflict(ctx, postID)
	}
	return nil
}

// MarkClosed moves an ACTIVE post to CLOSED.
func (r *postRepository) MarkClosed(ctx context.Context, postID string) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND status = ?", postID, models.PostStatusActive).
		Update("status", models.PostStatusClosed)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	cache.InvalidatePost(ctx, postID)
	if res.RowsAffected == 0 {
		return r.transitionConflict(ctx, postID)
	}
	return nil
}

// transitionConflict explains why a conditional transition matched no row.
func (r *postRepository) transitionConflict(ctx context.Context, postID string) error {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "status").First(&post, "id = ?", postID).Error; err != nil {
		return mapError(err, "Post", postID)
	}
	switch post.Status {
	case models.PostStatusReceived:
		return models.NewConflictError("post already received")
	case models.PostStatusClosed:
		return models.NewConflictError("post is closed")
	}
	return models.NewConflictError("post is not active")
}

// loadListRequests fills ListRequest on posts from the offers table, oldest first.
func (r *postRepository) loadListRequests(ctx context.Context, db *gorm.DB, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[string]*models.Post, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		p.ListRequest = []string{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	var rows []struct {
		ID     string
		PostID string
	}
	if err := db.WithContext(ctx).Model(&models.Offer{}).
		Select("id", "post_id").
		Where("post_id IN ?", ids).
		Order("created_at ASC").Order("id ASC").
		Scan(&rows).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, row := range rows {
		if p := byID[row.PostID]; p != nil {
			p.ListRequest = append(p.ListRequest, row.ID)
		}
	}
	return nil
}
