package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostStatus is the lifecycle state of a post.
type PostStatus string

const (
	PostStatusActive   PostStatus = "ACTIVE"
	PostStatusReceived PostStatus = "RECEIVED"
	PostStatusClosed   PostStatus = "CLOSED"
)

// Job, work, pay and service type values. Each set is closed.
const (
	JobTypeDevelopWebsite = "developWebsite"
	JobTypeDesign         = "design"
	JobTypeTester         = "tester"
	JobTypeOther          = "other"

	WorkTypePartTime = "partTime"
	WorkTypeFullTime = "fullTime"

	WorkingFormAtOffice = "atOffice"
	WorkingFormRemote   = "remote"

	PayFormMonth = "month"
	PayFormHour  = "hour"

	ServiceTypeBuildWebApp    = "buildWebApp"
	ServiceTypeBuildMobileApp = "buildMobileApp"
	ServiceTypeDesignLogo     = "designLogo"
	ServiceTypeDesignWeb      = "designWeb"
	ServiceTypeTestWebApp     = "testWebApp"
	ServiceTypeTestMobileApp  = "testMobileApp"
	ServiceTypeOther          = "other"
)

var (
	jobTypes     = []string{JobTypeDevelopWebsite, JobTypeDesign, JobTypeTester, JobTypeOther}
	workTypes    = []string{WorkTypePartTime, WorkTypeFullTime}
	workingForms = []string{WorkingFormAtOffice, WorkingFormRemote}
	payForms     = []string{PayFormMonth, PayFormHour}
	serviceTypes = []string{
		ServiceTypeBuildWebApp, ServiceTypeBuildMobileApp, ServiceTypeDesignLogo,
		ServiceTypeDesignWeb, ServiceTypeTestWebApp, ServiceTypeTestMobileApp, ServiceTypeOther,
	}
)

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func ValidJobType(v string) bool     { return oneOf(v, jobTypes) }
func ValidWorkType(v string) bool    { return oneOf(v, workTypes) }
func ValidWorkingForm(v string) bool { return oneOf(v, workingForms) }
func ValidPayForm(v string) bool     { return oneOf(v, payForms) }
func ValidServiceType(v string) bool { return oneOf(v, serviceTypes) }

// ValidPostStatus reports whether s is a known post status.
func ValidPostStatus(s string) bool {
	switch PostStatus(s) {
	case PostStatusActive, PostStatusReceived, PostStatusClosed:
		return true
	}
	return false
}

// Post is a job listing created by a user.
type Post struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	UserID      string     `gorm:"not null;index;size:36" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Location    string     `json:"location"`
	Tags        []string   `gorm:"type:jsonb;serializer:json" json:"tags"`
	BudgetFrom  float64    `json:"budget_from"`
	BudgetTo    float64    `gorm:"check:chk_posts_budget,budget_from <= budget_to" json:"budget_to"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty"`
	JobType     string     `gorm:"size:32;index" json:"type_of_job"`
	WorkType    string     `gorm:"size:32" json:"type_of_work"`
	WorkingForm string     `gorm:"size:32" json:"working_form"`
	PayForm     string     `gorm:"size:32" json:"pay_form"`
	ServiceType string     `gorm:"size:32" json:"type_of_services"`
	Status      PostStatus `gorm:"size:16;not null;index" json:"status"`
	// WorkingStatus is free text describing delivery progress.
	WorkingStatus   string     `json:"working_status,omitempty"`
	AcceptedOfferID *string    `gorm:"size:36" json:"accepted_offer_id"`
	ReceivingUserID *string    `gorm:"size:36;index" json:"receiving_user_id"`
	DateReceived    *time.Time `json:"date_received,omitempty"`
	// ListRequest holds the ids of offers submitted against this post, oldest first.
	ListRequest []string  `gorm:"-" json:"list_request"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh id and defaults.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = PostStatusActive
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return nil
}

// PostDetail is a post joined with its owner and, once received, the accepted
// offer and its author.
type PostDetail struct {
	*Post
	Owner         *UserSummary `json:"owner,omitempty"`
	AcceptedOffer *Offer       `json:"accepted_offer,omitempty"`
	Receiver      *UserSummary `json:"receiver,omitempty"`
}

// OfferedPost pairs a post with the requesting user's own offer on it.
type OfferedPost struct {
	Post    *Post  `json:"post"`
	MyOffer *Offer `json:"my_offer"`
}
