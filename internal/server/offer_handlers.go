package server

import (
	"time"

	"gighub/internal/service"

	"github.com/gofiber/fiber/v2"
)

type offerRequest struct {
	ProposalSkill  string     `json:"proposal_skill"`
	PlanImplement  string     `json:"plan_implement"`
	RecommendCost  float64    `json:"recommend_cost"`
	Phone          string     `json:"phone"`
	ExpectDateDone *time.Time `json:"expect_date_done"`
}

func (r offerRequest) input() service.OfferInput {
	return service.OfferInput{
		ProposalSkill:  r.ProposalSkill,
		PlanImplement:  r.PlanImplement,
		RecommendCost:  r.RecommendCost,
		Phone:          r.Phone,
		ExpectDateDone: r.ExpectDateDone,
	}
}

// RequestReceive handles POST /api/posts/:id/offers
func (s *Server) RequestReceive(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	var req offerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, invalidBody())
	}

	offer, err := s.offerService.RequestReceive(c.UserContext(), c.Params("id"), id.ExternalID, req.input())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(offer)
}

// UpdateOffer handles PATCH /api/posts/:id/offers/:offerId
func (s *Server) UpdateOffer(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	var req offerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, invalidBody())
	}

	offer, err := s.offerService.UpdateOffer(c.UserContext(), id.ExternalID, c.Params("id"), c.Params("offerId"), req.input())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(offer)
}

// AcceptOffer handles POST /api/posts/:id/offers/:offerId/accept
func (s *Server) AcceptOffer(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	detail, err := s.offerService.AcceptOffer(c.UserContext(), c.Params("id"), c.Params("offerId"), id.ExternalID)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(detail)
}

// GetPostOffers handles GET /api/posts/:id/offers?status=
func (s *Server) GetPostOffers(c *fiber.Ctx) error {
	offers, err := s.listingService.GetOffersForPost(c.UserContext(), c.Params("id"), c.Query("status"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(offers)
}

// GetOffersByIDs handles GET /api/posts/offers?ids=&status=
func (s *Server) GetOffersByIDs(c *fiber.Ctx) error {
	offers, err := s.listingService.GetOffersByIDs(c.UserContext(), queryList(c, "ids"), c.Query("status"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(offers)
}
