package service

import (
	"context"

	"gighub/internal/models"
	"gighub/internal/repository"
)

// ListingService serves the read side: per-user post listings and offers
// joined with their authors.
type ListingService struct {
	postRepo  repository.PostRepository
	offerRepo repository.OfferRepository
	userRepo  repository.UserRepository
	join      joiner
}

func NewListingService(
	postRepo repository.PostRepository,
	offerRepo repository.OfferRepository,
	userRepo repository.UserRepository,
) *ListingService {
	return &ListingService{
		postRepo:  postRepo,
		offerRepo: offerRepo,
		userRepo:  userRepo,
		join:      joiner{users: userRepo, offers: offerRepo},
	}
}

func (s *ListingService) ListPostsCreatedBy(ctx context.Context, externalID string, page models.PageRequest) (*models.Page[*models.Post], error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	posts, total, err := s.postRepo.ListCreatedBy(ctx, user.ID, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(posts, page, total), nil
}

// ListPostsOfferedBy pages through the user's offers and pairs each with its
// post. Ordering follows the offer creation time.
func (s *ListingService) ListPostsOfferedBy(ctx context.Context, externalID string, page models.PageRequest) (*models.Page[*models.OfferedPost], error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	offers, total, err := s.offerRepo.FindByAuthor(ctx, user.ID, page)
	if err != nil {
		return nil, err
	}

	postIDs := make([]string, 0, len(offers))
	for _, o := range offers {
		postIDs = append(postIDs, o.PostID)
	}
	posts, err := s.postRepo.ListByIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	items := make([]*models.OfferedPost, 0, len(offers))
	for _, o := range offers {
		items = append(items, &models.OfferedPost{Post: byID[o.PostID], MyOffer: o})
	}
	return models.NewPage(items, page, total), nil
}

func (s *ListingService) ListPostsReceivedBy(ctx context.Context, externalID string, page models.PageRequest) (*models.Page[*models.Post], error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	posts, total, err := s.postRepo.ListReceivedBy(ctx, user.ID, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(posts, page, total), nil
}

// GetOffersForPost returns the offers on postID, oldest first, with author
// summaries. status may be empty, ALL, PENDING or ACCEPTED.
func (s *ListingService) GetOffersForPost(ctx context.Context, postID, status string) ([]*models.OfferDetail, error) {
	st, ok := models.ParseOfferStatusFilter(status)
	if !ok {
		return nil, models.NewValidationError("Invalid offer status")
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	offers, err := s.offerRepo.Find(ctx, repository.OfferFilter{PostID: post.ID, Status: st})
	if err != nil {
		return nil, err
	}
	return s.join.offerDetails(ctx, offers)
}

// GetOffersByIDs batch-loads offers by id. Unknown ids are skipped.
func (s *ListingService) GetOffersByIDs(ctx context.Context, ids []string, status string) ([]*models.OfferDetail, error) {
	st, ok := models.ParseOfferStatusFilter(status)
	if !ok {
		return nil, models.NewValidationError("Invalid offer status")
	}
	if ids == nil {
		ids = []string{}
	}
	offers, err := s.offerRepo.Find(ctx, repository.OfferFilter{IDs: ids, Status: st})
	if err != nil {
		return nil, err
	}
	return s.join.offerDetails(ctx, offers)
}
