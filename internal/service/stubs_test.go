package service

import (
	"context"
	"time"

	"gighub/internal/models"
	"gighub/internal/repository"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	findOrCreateFn  func(context.Context, string, *models.User) (*models.User, error)
	getByIDFn       func(context.Context, string) (*models.User, error)
	getByExternalFn func(context.Context, string) (*models.User, error)
	listByIDsFn     func(context.Context, []string) ([]*models.User, error)
	updateFn        func(context.Context, string, models.Patch) (*models.User, error)
	addRelationFn   func(context.Context, string, models.Relation, string) error
	addRelationIDFn func(context.Context, string, models.Relation, string) error
}

func (s *userRepoStub) FindOrCreateByExternalID(ctx context.Context, externalID string, profile *models.User) (*models.User, error) {
	return s.findOrCreateFn(ctx, externalID, profile)
}
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.getByExternalFn(ctx, externalID)
}
func (s *userRepoStub) ListByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	return s.listByIDsFn(ctx, ids)
}
func (s *userRepoStub) Update(ctx context.Context, externalID string, patch models.Patch) (*models.User, error) {
	return s.updateFn(ctx, externalID, patch)
}
func (s *userRepoStub) AddToRelationSet(ctx context.Context, externalID string, rel models.Relation, postID string) error {
	return s.addRelationFn(ctx, externalID, rel, postID)
}
func (s *userRepoStub) AddToRelationSetByID(ctx context.Context, userID string, rel models.Relation, postID string) error {
	return s.addRelationIDFn(ctx, userID, rel, postID)
}

// noopUserRepo resolves every external id "x" to a user with id "id-x".
func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		findOrCreateFn: func(_ context.Context, ext string, p *models.User) (*models.User, error) {
			u := *p
			u.ID, u.ExternalID = "id-"+ext, ext
			return &u, nil
		},
		getByIDFn: func(_ context.Context, id string) (*models.User, error) { return &models.User{ID: id}, nil },
		getByExternalFn: func(_ context.Context, ext string) (*models.User, error) {
			return &models.User{ID: "id-" + ext, ExternalID: ext}, nil
		},
		listByIDsFn: func(_ context.Context, ids []string) ([]*models.User, error) {
			out := make([]*models.User, 0, len(ids))
			for _, id := range ids {
				out = append(out, &models.User{ID: id, DisplayName: "name-" + id})
			}
			return out, nil
		},
		updateFn: func(_ context.Context, ext string, _ models.Patch) (*models.User, error) {
			return &models.User{ExternalID: ext}, nil
		},
		addRelationFn:   func(_ context.Context, _ string, _ models.Relation, _ string) error { return nil },
		addRelationIDFn: func(_ context.Context, _ string, _ models.Relation, _ string) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, string) (*models.Post, error)
	findFn           func(context.Context, repository.PostFilter, models.PageRequest) ([]*models.Post, int64, error)
	listByIDsFn      func(context.Context, []string) ([]*models.Post, error)
	listCreatedByFn  func(context.Context, string, models.PageRequest) ([]*models.Post, int64, error)
	listReceivedByFn func(context.Context, string, models.PageRequest) ([]*models.Post, int64, error)
	updateFn         func(context.Context, string, models.Patch) (*models.Post, error)
	markReceivedFn   func(context.Context, string, string, string, time.Time) error
	markClosedFn     func(context.Context, string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Find(ctx context.Context, f repository.PostFilter, p models.PageRequest) ([]*models.Post, int64, error) {
	return s.findFn(ctx, f, p)
}
func (s *postRepoStub) ListByIDs(ctx context.Context, ids []string) ([]*models.Post, error) {
	return s.listByIDsFn(ctx, ids)
}
func (s *postRepoStub) ListCreatedBy(ctx context.Context, userID string, p models.PageRequest) ([]*models.Post, int64, error) {
	return s.listCreatedByFn(ctx, userID, p)
}
func (s *postRepoStub) ListReceivedBy(ctx context.Context, userID string, p models.PageRequest) ([]*models.Post, int64, error) {
	return s.listReceivedByFn(ctx, userID, p)
}
func (s *postRepoStub) Update(ctx context.Context, id string, patch models.Patch) (*models.Post, error) {
	return s.updateFn(ctx, id, patch)
}
func (s *postRepoStub) MarkReceived(ctx context.Context, postID, offerID, receiverID string, at time.Time) error {
	return s.markReceivedFn(ctx, postID, offerID, receiverID, at)
}
func (s *postRepoStub) MarkClosed(ctx context.Context, postID string) error {
	return s.markClosedFn(ctx, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = "post-1"
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*models.Post, error) {
			return &models.Post{ID: id, UserID: "id-owner", Status: models.PostStatusActive}, nil
		},
		findFn: func(_ context.Context, _ repository.PostFilter, _ models.PageRequest) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		listByIDsFn: func(_ context.Context, _ []string) ([]*models.Post, error) { return nil, nil },
		listCreatedByFn: func(_ context.Context, _ string, _ models.PageRequest) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		listReceivedByFn: func(_ context.Context, _ string, _ models.PageRequest) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		updateFn: func(_ context.Context, id string, _ models.Patch) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		markReceivedFn: func(_ context.Context, _, _, _ string, _ time.Time) error { return nil },
		markClosedFn:   func(_ context.Context, _ string) error { return nil },
	}
}

// offerRepoStub is a stub for repository.OfferRepository.
type offerRepoStub struct {
	createFn       func(context.Context, *models.Offer) error
	getByIDFn      func(context.Context, string) (*models.Offer, error)
	existsFn       func(context.Context, string, string) (bool, error)
	findFn         func(context.Context, repository.OfferFilter) ([]*models.Offer, error)
	findByAuthorFn func(context.Context, string, models.PageRequest) ([]*models.Offer, int64, error)
	updateFn       func(context.Context, string, models.Patch) (*models.Offer, error)
	markAcceptedFn func(context.Context, string) error
}

func (s *offerRepoStub) Create(ctx context.Context, offer *models.Offer) error {
	return s.createFn(ctx, offer)
}
func (s *offerRepoStub) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	return s.getByIDFn(ctx, id)
}
func (s *offerRepoStub) ExistsForAuthor(ctx context.Context, postID, userID string) (bool, error) {
	return s.existsFn(ctx, postID, userID)
}
func (s *offerRepoStub) Find(ctx context.Context, f repository.OfferFilter) ([]*models.Offer, error) {
	return s.findFn(ctx, f)
}
func (s *offerRepoStub) FindByAuthor(ctx context.Context, userID string, p models.PageRequest) ([]*models.Offer, int64, error) {
	return s.findByAuthorFn(ctx, userID, p)
}
func (s *offerRepoStub) Update(ctx context.Context, id string, patch models.Patch) (*models.Offer, error) {
	return s.updateFn(ctx, id, patch)
}
func (s *offerRepoStub) MarkAccepted(ctx context.Context, id string) error {
	return s.markAcceptedFn(ctx, id)
}

func noopOfferRepo() *offerRepoStub {
	return &offerRepoStub{
		createFn: func(_ context.Context, o *models.Offer) error {
			o.ID = "offer-1"
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*models.Offer, error) {
			return &models.Offer{ID: id, PostID: "post-1", UserID: "id-author", Status: models.OfferStatusPending}, nil
		},
		existsFn: func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		findFn:   func(_ context.Context, _ repository.OfferFilter) ([]*models.Offer, error) { return nil, nil },
		findByAuthorFn: func(_ context.Context, _ string, _ models.PageRequest) ([]*models.Offer, int64, error) {
			return nil, 0, nil
		},
		updateFn: func(_ context.Context, id string, _ models.Patch) (*models.Offer, error) {
			return &models.Offer{ID: id}, nil
		},
		markAcceptedFn: func(_ context.Context, _ string) error { return nil },
	}
}
