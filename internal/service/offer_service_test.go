package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gighub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOffer() OfferInput {
	return OfferInput{ProposalSkill: "Go, Postgres", PlanImplement: "Two sprints", RecommendCost: 150, Phone: "0900000000"}
}

func TestOfferService_RequestReceiveValidation(t *testing.T) {
	svc := NewOfferService(noopPostRepo(), noopOfferRepo(), noopUserRepo())
	ctx := context.Background()

	in := validOffer()
	in.ProposalSkill = " "
	_, err := svc.RequestReceive(ctx, "post-1", "author", in)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	in = validOffer()
	in.Phone = ""
	_, err = svc.RequestReceive(ctx, "post-1", "author", in)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	in = validOffer()
	in.RecommendCost = -5
	_, err = svc.RequestReceive(ctx, "post-1", "author", in)
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestOfferService_RequestReceiveRecordsOffer(t *testing.T) {
	offers := noopOfferRepo()
	var created *models.Offer
	offers.createFn = func(_ context.Context, o *models.Offer) error {
		o.ID = "offer-1"
		created = o
		return nil
	}
	users := noopUserRepo()
	var relations []models.Relation
	users.addRelationIDFn = func(_ context.Context, userID string, rel models.Relation, postID string) error {
		assert.Equal(t, "id-author", userID)
		assert.Equal(t, "post-1", postID)
		relations = append(relations, rel)
		return nil
	}
	svc := NewOfferService(noopPostRepo(), offers, users)

	offer, err := svc.RequestReceive(context.Background(), "post-1", "author", validOffer())
	require.NoError(t, err)
	assert.Equal(t, "offer-1", offer.ID)
	assert.Equal(t, models.OfferStatusPending, created.Status)
	assert.Equal(t, "id-author", created.UserID)
	assert.Equal(t, "post-1", created.PostID)
	assert.Equal(t, []models.Relation{models.RelationOffered}, relations)
}

func TestOfferService_RequestReceiveAllowedAfterReceived(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id string) (*models.Post, error) {
		return &models.Post{ID: id, UserID: "id-owner", Status: models.PostStatusReceived}, nil
	}
	svc := NewOfferService(posts, noopOfferRepo(), noopUserRepo())

	_, err := svc.RequestReceive(context.Background(), "post-1", "late", validOffer())
	assert.NoError(t, err)
}

func TestOfferService_RequestReceiveDuplicate(t *testing.T) {
	offers := noopOfferRepo()
	offers.existsFn = func(_ context.Context, _, _ string) (bool, error) { return true, nil }
	offers.createFn = func(_ context.Context, _ *models.Offer) error {
		t.Fatal("create should not be called")
		return nil
	}
	svc := NewOfferService(noopPostRepo(), offers, noopUserRepo())

	_, err := svc.RequestReceive(context.Background(), "post-1", "author", validOffer())
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeConflict))
	assert.Equal(t, "already requested", err.Error())
}

func TestOfferService_RequestReceiveMissingEntities(t *testing.T) {
	users := noopUserRepo()
	users.getByExternalFn = func(_ context.Context, ext string) (*models.User, error) {
		return nil, models.NewNotFoundError("User", ext)
	}
	svc := NewOfferService(noopPostRepo(), noopOfferRepo(), users)
	_, err := svc.RequestReceive(context.Background(), "post-1", "ghost", validOffer())
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id string) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	svc = NewOfferService(posts, noopOfferRepo(), noopUserRepo())
	_, err = svc.RequestReceive(context.Background(), "nope", "author", validOffer())
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestOfferService_AcceptOfferWritesInOrder(t *testing.T) {
	var calls []string
	posts := noopPostRepo()
	received := false
	posts.getByIDFn = func(_ context.Context, id string) (*models.Post, error) {
		p := &models.Post{ID: id, UserID: "id-owner", Status: models.PostStatusActive}
		if received {
			offerID, user := "offer-1", "id-author"
			p.Status, p.AcceptedOfferID, p.ReceivingUserID = models.PostStatusReceived, &offerID, &user
		}
		return p, nil
	}
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	posts.markReceivedFn = func(_ context.Context, postID, offerID, receiverID string, at time.Time) error {
		calls = append(calls, "post")
		assert.Equal(t, "post-1", postID)
		assert.Equal(t, "offer-1", offerID)
		assert.Equal(t, "id-author", receiverID)
		assert.Equal(t, fixed, at)
		received = true
		return nil
	}
	offers := noopOfferRepo()
	offers.markAcceptedFn = func(_ context.Context, id string) error {
		calls = append(calls, "offer")
		return nil
	}
	users := noopUserRepo()
	users.addRelationIDFn = func(_ context.Context, userID string, rel models.Relation, postID string) error {
		calls = append(calls, "user")
		assert.Equal(t, "id-author", userID)
		assert.Equal(t, models.RelationReceived, rel)
		return nil
	}
	svc := NewOfferService(posts, offers, users)
	svc.now = func() time.Time { return fixed }

	detail, err := svc.AcceptOffer(context.Background(), "post-1", "offer-1", "owner")
	require.NoError(t, err)
	assert.Equal(t, []string{"post", "offer", "user"}, calls)
	assert.Equal(t, models.PostStatusReceived, detail.Status)
	assert.Equal(t, "id-owner", detail.Owner.ID)
	assert.Equal(t, "id-author", detail.Receiver.ID)
}

func TestOfferService_AcceptOfferPreconditions(t *testing.T) {
	tests := []struct {
		name     string
		status   models.PostStatus
		offerFor string
		accepter string
		want     string
	}{
		{"received", models.PostStatusReceived, "post-1", "owner", models.CodeConflict},
		{"closed", models.PostStatusClosed, "post-1", "owner", models.CodeConflict},
		{"offer on other post", models.PostStatusActive, "post-2", "owner", models.CodeValidation},
		{"not owner", models.PostStatusActive, "post-1", "author", models.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := noopPostRepo()
			posts.getByIDFn = func(_ context.Context, id string) (*models.Post, error) {
				return &models.Post{ID: id, UserID: "id-owner", Status: tt.status}, nil
			}
			posts.markReceivedFn = func(_ context.Context, _, _, _ string, _ time.Time) error {
				t.Fatal("mark received should not be called")
				return nil
			}
			offers := noopOfferRepo()
			offers.getByIDFn = func(_ context.Context, id string) (*models.Offer, error) {
				return &models.Offer{ID: id, PostID: tt.offerFor, UserID: "id-author"}, nil
			}
			svc := NewOfferService(posts, offers, noopUserRepo())

			_, err := svc.AcceptOffer(context.Background(), "post-1", "offer-1", tt.accepter)
			assert.True(t, models.IsCode(err, tt.want), "got %v", err)
		})
	}
}

func TestOfferService_AcceptOfferRaceLoser(t *testing.T) {
	posts := noopPostRepo()
	posts.markReceivedFn = func(_ context.Context, _, _, _ string, _ time.Time) error {
		return models.NewConflictError("post already received")
	}
	offers := noopOfferRepo()
	offers.markAcceptedFn = func(_ context.Context, _ string) error {
		t.Fatal("loser must not touch the offer")
		return nil
	}
	svc := NewOfferService(posts, offers, noopUserRepo())

	_, err := svc.AcceptOffer(context.Background(), "post-1", "offer-1", "owner")
	require.Error(t, err)
	assert.Equal(t, "post already received", err.Error())
}

func TestOfferService_ReconcileReceived(t *testing.T) {
	offerID, user := "offer-1", "id-author"
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id string) (*models.Post, error) {
		return &models.Post{ID: id, Status: models.PostStatusReceived, AcceptedOfferID: &offerID, ReceivingUserID: &user}, nil
	}
	accepted := 0
	offers := noopOfferRepo()
	offers.markAcceptedFn = func(_ context.Context, id string) error {
		assert.Equal(t, offerID, id)
		accepted++
		return nil
	}
	svc := NewOfferService(posts, offers, noopUserRepo())

	require.NoError(t, svc.ReconcileReceived(context.Background(), "post-1"))
	require.NoError(t, svc.ReconcileReceived(context.Background(), "post-1"))
	assert.Equal(t, 2, accepted)

	svc = NewOfferService(noopPostRepo(), offers, noopUserRepo())
	err := svc.ReconcileReceived(context.Background(), "post-1")
	assert.True(t, models.IsCode(err, models.CodeConflict))
}

func TestOfferService_UpdateOffer(t *testing.T) {
	offers := noopOfferRepo()
	var patch models.Patch
	offers.updateFn = func(_ context.Context, id string, p models.Patch) (*models.Offer, error) {
		patch = p
		return &models.Offer{ID: id}, nil
	}
	svc := NewOfferService(noopPostRepo(), offers, noopUserRepo())
	ctx := context.Background()

	in := validOffer()
	in.RecommendCost = 175
	_, err := svc.UpdateOffer(ctx, "author", "post-1", "offer-1", in)
	require.NoError(t, err)
	assert.Equal(t, 175.0, patch.Set["recommend_cost"])

	_, err = svc.UpdateOffer(ctx, "someone", "post-1", "offer-1", in)
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	_, err = svc.UpdateOffer(ctx, "author", "post-2", "offer-1", in)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	offers.getByIDFn = func(_ context.Context, id string) (*models.Offer, error) {
		return &models.Offer{ID: id, PostID: "post-1", UserID: "id-author", Status: models.OfferStatusAccepted}, nil
	}
	_, err = svc.UpdateOffer(ctx, "author", "post-1", "offer-1", in)
	assert.True(t, models.IsCode(err, models.CodeConflict))
}

func TestAcceptOutcome(t *testing.T) {
	assert.Equal(t, "accepted", acceptOutcome(nil))
	assert.Equal(t, "conflict", acceptOutcome(models.NewConflictError("x")))
	assert.Equal(t, "rejected", acceptOutcome(models.NewForbiddenError("x")))
	assert.Equal(t, "rejected", acceptOutcome(errors.New("x")))
}
