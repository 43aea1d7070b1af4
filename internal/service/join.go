package service

import (
	"context"

	"gighub/internal/models"
	"gighub/internal/repository"
)

// joiner stitches user summaries and accepted offers into read models. It is
// the only place posts and offers meet users.
type joiner struct {
	users  repository.UserRepository
	offers repository.OfferRepository
}

func (j joiner) summaries(ctx context.Context, ids []string) (map[string]*models.UserSummary, error) {
	users, err := j.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.UserSummary, len(users))
	for _, u := range users {
		summary := u.Summary()
		out[u.ID] = &summary
	}
	return out, nil
}

// postDetail joins post with its owner and, when received, the accepted offer
// and its author.
func (j joiner) postDetail(ctx context.Context, post *models.Post) (*models.PostDetail, error) {
	detail := &models.PostDetail{Post: post}
	ids := []string{post.UserID}

	if post.AcceptedOfferID != nil {
		offer, err := j.offers.GetByID(ctx, *post.AcceptedOfferID)
		if err != nil && !models.IsCode(err, models.CodeNotFound) {
			return nil, err
		}
		detail.AcceptedOffer = offer
	}
	if post.ReceivingUserID != nil {
		ids = append(ids, *post.ReceivingUserID)
	}

	byID, err := j.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	detail.Owner = byID[post.UserID]
	if post.ReceivingUserID != nil {
		detail.Receiver = byID[*post.ReceivingUserID]
	}
	return detail, nil
}

// offerDetails joins each offer with its author summary, keeping order.
func (j joiner) offerDetails(ctx context.Context, offers []*models.Offer) ([]*models.OfferDetail, error) {
	ids := make([]string, 0, len(offers))
	for _, o := range offers {
		ids = append(ids, o.UserID)
	}
	byID, err := j.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*models.OfferDetail, 0, len(offers))
	for _, o := range offers {
		out = append(out, &models.OfferDetail{Offer: o, Author: byID[o.UserID]})
	}
	return out, nil
}
