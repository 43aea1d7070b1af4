package service

import (
	"context"
	"strings"
	"time"

	"gighub/internal/models"
	"gighub/internal/observability"
	"gighub/internal/repository"
)

// OfferService runs the offer lifecycle: submission, acceptance and the
// repair of a partially applied acceptance.
type OfferService struct {
	postRepo  repository.PostRepository
	offerRepo repository.OfferRepository
	userRepo  repository.UserRepository
	join      joiner
	now       func() time.Time
}

// OfferInput is the body of a request to receive a post.
type OfferInput struct {
	ProposalSkill  string
	PlanImplement  string
	RecommendCost  float64
	Phone          string
	ExpectDateDone *time.Time
}

func NewOfferService(
	postRepo repository.PostRepository,
	offerRepo repository.OfferRepository,
	userRepo repository.UserRepository,
) *OfferService {
	return &OfferService{
		postRepo:  postRepo,
		offerRepo: offerRepo,
		userRepo:  userRepo,
		join:      joiner{users: userRepo, offers: offerRepo},
		now:       time.Now,
	}
}

func (in OfferInput) validate() error {
	switch {
	case strings.TrimSpace(in.ProposalSkill) == "":
		return models.NewValidationError("Proposal skill is required")
	case strings.TrimSpace(in.Phone) == "":
		return models.NewValidationError("Phone is required")
	case in.RecommendCost < 0:
		return models.NewValidationError("Recommended cost cannot be negative")
	}
	return nil
}

// RequestReceive submits an offer by the user behind authorExternalID on
// postID. Submission does not look at the post status; only acceptance is
// gated. A second offer by the same author fails with ConflictError.
func (s *OfferService) RequestReceive(ctx context.Context, postID, authorExternalID string, in OfferInput) (offer *models.Offer, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "OfferService", "RequestReceive")
	defer func() { observability.EndSpan(span, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByExternalID(ctx, authorExternalID)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	exists, err := s.offerRepo.ExistsForAuthor(ctx, post.ID, author.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("already requested")
	}

	offer = &models.Offer{
		UserID:         author.ID,
		PostID:         post.ID,
		ProposalSkill:  strings.TrimSpace(in.ProposalSkill),
		PlanImplement:  strings.TrimSpace(in.PlanImplement),
		RecommendCost:  in.RecommendCost,
		Phone:          strings.TrimSpace(in.Phone),
		ExpectDateDone: in.ExpectDateDone,
		Status:         models.OfferStatusPending,
	}
	// The unique (user_id, post_id) index turns a concurrent duplicate into a
	// ConflictError here.
	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, err
	}
	if err := s.userRepo.AddToRelationSetByID(ctx, author.ID, models.RelationOffered, post.ID); err != nil {
		return nil, err
	}
	observability.OffersSubmitted.Inc()
	return offer, nil
}

// AcceptOffer accepts offerID on postID for the post owner behind
// accepterExternalID. Writes go post, then offer, then user: the post status
// is authoritative and a failure after it is repaired by ReconcileReceived.
func (s *OfferService) AcceptOffer(ctx context.Context, postID, offerID, accepterExternalID string) (detail *models.PostDetail, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "OfferService", "AcceptOffer")
	defer func() {
		observability.OfferAcceptances.WithLabelValues(acceptOutcome(err)).Inc()
		observability.EndSpan(span, err)
	}()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	switch post.Status {
	case models.PostStatusReceived:
		return nil, models.NewConflictError("post already received")
	case models.PostStatusClosed:
		return nil, models.NewConflictError("post is closed")
	}

	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.PostID != post.ID {
		return nil, models.NewValidationError("offer does not belong to this post")
	}

	accepter, err := s.userRepo.GetByExternalID(ctx, accepterExternalID)
	if err != nil {
		return nil, err
	}
	if accepter.ID != post.UserID {
		return nil, models.NewForbiddenError("only the post owner can accept offers")
	}

	if err := s.postRepo.MarkReceived(ctx, post.ID, offer.ID, offer.UserID, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.applyAcceptance(ctx, post.ID, offer.ID, offer.UserID); err != nil {
		return nil, err
	}

	updated, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return s.join.postDetail(ctx, updated)
}

// ReconcileReceived re-applies the offer and user writes that follow a post
// becoming RECEIVED. It is idempotent and safe to run on any received post.
func (s *OfferService) ReconcileReceived(ctx context.Context, postID string) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "OfferService", "ReconcileReceived")
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.Status != models.PostStatusReceived || post.AcceptedOfferID == nil || post.ReceivingUserID == nil {
		return models.NewConflictError("post is not received")
	}
	return s.applyAcceptance(ctx, post.ID, *post.AcceptedOfferID, *post.ReceivingUserID)
}

func (s *OfferService) applyAcceptance(ctx context.Context, postID, offerID, receiverID string) error {
	if err := s.offerRepo.MarkAccepted(ctx, offerID); err != nil {
		return err
	}
	return s.userRepo.AddToRelationSetByID(ctx, receiverID, models.RelationReceived, postID)
}

// UpdateOffer lets the author revise a PENDING offer. All fields are replaced.
func (s *OfferService) UpdateOffer(ctx context.Context, authorExternalID, postID, offerID string, in OfferInput) (*models.Offer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.PostID != postID {
		return nil, models.NewValidationError("offer does not belong to this post")
	}
	author, err := s.userRepo.GetByExternalID(ctx, authorExternalID)
	if err != nil {
		return nil, err
	}
	if offer.UserID != author.ID {
		return nil, models.NewForbiddenError("You can only update your own offers")
	}
	if offer.Status != models.OfferStatusPending {
		return nil, models.NewConflictError("accepted offers cannot be changed")
	}

	patch := models.Patch{}
	patch.SetField("proposal_skill", strings.TrimSpace(in.ProposalSkill)).
		SetField("plan_implement", strings.TrimSpace(in.PlanImplement)).
		SetField("recommend_cost", in.RecommendCost).
		SetField("phone", strings.TrimSpace(in.Phone)).
		SetField("expect_date_done", in.ExpectDateDone)
	return s.offerRepo.Update(ctx, offer.ID, patch)
}

func acceptOutcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeAccepted
	case models.IsCode(err, models.CodeConflict):
		return observability.OutcomeConflict
	}
	return observability.OutcomeRejected
}
