package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OfferStatus is the state of a request to receive a post.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "PENDING"
	OfferStatusAccepted OfferStatus = "ACCEPTED"
	// OfferStatusAll is a filter value only; it is never stored.
	OfferStatusAll OfferStatus = "ALL"
)

// ParseOfferStatusFilter normalizes a status filter. Empty means ALL.
func ParseOfferStatusFilter(s string) (OfferStatus, bool) {
	switch OfferStatus(s) {
	case "", OfferStatusAll:
		return OfferStatusAll, true
	case OfferStatusPending, OfferStatusAccepted:
		return OfferStatus(s), true
	}
	return "", false
}

// Offer is a bid by a user to perform the work described by a post.
type Offer struct {
	ID             string      `gorm:"primaryKey;size:36" json:"id"`
	UserID         string      `gorm:"not null;size:36;uniqueIndex:idx_offers_post_user" json:"user_id"`
	PostID         string      `gorm:"not null;size:36;uniqueIndex:idx_offers_post_user;index" json:"post_id"`
	ProposalSkill  string      `gorm:"type:text" json:"proposal_skill"`
	PlanImplement  string      `gorm:"type:text" json:"plan_implement"`
	RecommendCost  float64     `json:"recommend_cost"`
	Phone          string      `json:"phone"`
	ExpectDateDone *time.Time  `json:"expect_date_done,omitempty"`
	Status         OfferStatus `gorm:"size:16;not null" json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// BeforeCreate assigns a fresh id and the PENDING status.
func (o *Offer) BeforeCreate(_ *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = OfferStatusPending
	}
	return nil
}

// OfferDetail is an offer joined with its author summary.
type OfferDetail struct {
	*Offer
	Author *UserSummary `json:"author,omitempty"`
}
