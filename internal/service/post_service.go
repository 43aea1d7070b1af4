package service

import (
	"context"
	"strings"
	"time"

	"gighub/internal/models"
	"gighub/internal/observability"
	"gighub/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	join     joiner
}

type CreatePostInput struct {
	AuthorExternalID string
	Title            string
	Description      string
	Location         string
	Tags             []string
	BudgetFrom       float64
	BudgetTo         float64
	ExpiredAt        *time.Time
	JobType          string
	WorkType         string
	WorkingForm      string
	PayForm          string
	ServiceType      string
}

// UpdatePostInput is an owner edit. Nil and empty fields are left unchanged.
// Tags replaces the tag list; AddTags unions into it.
type UpdatePostInput struct {
	Title         string
	Description   string
	Location      string
	Tags          []string
	AddTags       []string
	BudgetFrom    *float64
	BudgetTo      *float64
	ExpiredAt     *time.Time
	JobType       string
	WorkType      string
	WorkingForm   string
	PayForm       string
	ServiceType   string
	WorkingStatus string
}

func NewPostService(
	postRepo repository.PostRepository,
	offerRepo repository.OfferRepository,
	userRepo repository.UserRepository,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		join:     joiner{users: userRepo, offers: offerRepo},
	}
}

const (
	maxTitleLen       = 200
	maxDescriptionLen = 10000
	maxTags           = 20
)

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "CreatePost")
	defer func() { observability.EndSpan(span, err) }()

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	location := strings.TrimSpace(in.Location)
	tags := cleanTags(in.Tags)

	switch {
	case title == "":
		return nil, models.NewValidationError("Title is required")
	case len(title) > maxTitleLen:
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	case description == "":
		return nil, models.NewValidationError("Description is required")
	case len(description) > maxDescriptionLen:
		return nil, models.NewValidationError("Description too long (max 10000 characters)")
	case location == "":
		return nil, models.NewValidationError("Location is required")
	case len(tags) == 0:
		return nil, models.NewValidationError("At least one tag is required")
	case len(tags) > maxTags:
		return nil, models.NewValidationError("Too many tags (max 20)")
	}
	if err := validateBudget(in.BudgetFrom, in.BudgetTo); err != nil {
		return nil, err
	}

	post = &models.Post{
		Title:       title,
		Description: description,
		Location:    location,
		Tags:        tags,
		BudgetFrom:  in.BudgetFrom,
		BudgetTo:    in.BudgetTo,
		ExpiredAt:   in.ExpiredAt,
		JobType:     orDefault(in.JobType, models.JobTypeDevelopWebsite),
		WorkType:    orDefault(in.WorkType, models.WorkTypePartTime),
		WorkingForm: orDefault(in.WorkingForm, models.WorkingFormRemote),
		PayForm:     orDefault(in.PayForm, models.PayFormMonth),
		ServiceType: orDefault(in.ServiceType, models.ServiceTypeBuildMobileApp),
	}
	if err := validateEnums(post.JobType, post.WorkType, post.WorkingForm, post.PayForm, post.ServiceType); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByExternalID(ctx, in.AuthorExternalID)
	if err != nil {
		return nil, err
	}
	post.UserID = author.ID

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	if err := s.userRepo.AddToRelationSetByID(ctx, author.ID, models.RelationCreated, post.ID); err != nil {
		return nil, err
	}
	observability.PostsCreated.Inc()
	return post, nil
}

// FindPosts lists posts matching filter. Unknown enum values are rejected
// rather than silently matching nothing.
func (s *PostService) FindPosts(ctx context.Context, filter repository.PostFilter, page models.PageRequest) (*models.Page[*models.Post], error) {
	if filter.Status != "" && !models.ValidPostStatus(string(filter.Status)) {
		return nil, models.NewValidationError("Invalid status")
	}
	if err := validateEnums(filter.JobType, filter.WorkType, filter.WorkingForm, filter.PayForm, filter.ServiceType); err != nil {
		return nil, err
	}
	filter.Tags = cleanTags(filter.Tags)

	page = page.Normalize()
	posts, total, err := s.postRepo.Find(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(posts, page, total), nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.join.postDetail(ctx, post)
}

// UpdatePost applies an owner edit to an ACTIVE post. Status and acceptance
// fields are never writable here.
func (s *PostService) UpdatePost(ctx context.Context, externalID, postID string, in UpdatePostInput) (*models.Post, error) {
	post, err := s.ownedPost(ctx, externalID, postID, "You can only update your own posts")
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostStatusActive {
		return nil, models.NewConflictError("Only active posts can be edited")
	}

	patch := models.Patch{}
	setText := func(field, value string, max int, label string) error {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil
		}
		if len(value) > max {
			return models.NewValidationError(label + " too long")
		}
		patch.SetField(field, value)
		return nil
	}
	if err := setText("title", in.Title, maxTitleLen, "Title"); err != nil {
		return nil, err
	}
	if err := setText("description", in.Description, maxDescriptionLen, "Description"); err != nil {
		return nil, err
	}
	if err := setText("location", in.Location, maxTitleLen, "Location"); err != nil {
		return nil, err
	}
	if err := setText("working_status", in.WorkingStatus, maxTitleLen, "Working status"); err != nil {
		return nil, err
	}

	tags := post.Tags
	if in.Tags != nil {
		tags = cleanTags(in.Tags)
		if len(tags) == 0 {
			return nil, models.NewValidationError("At least one tag is required")
		}
		patch.SetField("tags", tags)
	}
	if add := cleanTags(in.AddTags); len(add) > 0 {
		tags = models.MergeUnique(tags, add...)
		patch.Add("tags", add...)
	}
	if len(tags) > maxTags {
		return nil, models.NewValidationError("Too many tags (max 20)")
	}

	from, to := post.BudgetFrom, post.BudgetTo
	if in.BudgetFrom != nil {
		from = *in.BudgetFrom
		patch.SetField("budget_from", from)
	}
	if in.BudgetTo != nil {
		to = *in.BudgetTo
		patch.SetField("budget_to", to)
	}
	if err := validateBudget(from, to); err != nil {
		return nil, err
	}
	if in.ExpiredAt != nil {
		patch.SetField("expired_at", *in.ExpiredAt)
	}

	if err := validateEnums(in.JobType, in.WorkType, in.WorkingForm, in.PayForm, in.ServiceType); err != nil {
		return nil, err
	}
	for field, value := range map[string]string{
		"job_type":     in.JobType,
		"work_type":    in.WorkType,
		"working_form": in.WorkingForm,
		"pay_form":     in.PayForm,
		"service_type": in.ServiceType,
	} {
		if value != "" {
			patch.SetField(field, value)
		}
	}

	if patch.IsEmpty() {
		return post, nil
	}
	return s.postRepo.Update(ctx, post.ID, patch)
}

// ClosePost withdraws an ACTIVE post on behalf of its owner.
func (s *PostService) ClosePost(ctx context.Context, externalID, postID string) (*models.Post, error) {
	post, err := s.ownedPost(ctx, externalID, postID, "You can only close your own posts")
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.MarkClosed(ctx, post.ID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) ownedPost(ctx context.Context, externalID, postID, denied string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if post.UserID != user.ID {
		return nil, models.NewForbiddenError(denied)
	}
	return post, nil
}

func validateBudget(from, to float64) error {
	if from < 0 || to < 0 {
		return models.NewValidationError("Budget cannot be negative")
	}
	if from > to {
		return models.NewValidationError("Budget from must not exceed budget to")
	}
	return nil
}

// validateEnums checks the post classification values. Empty values pass.
func validateEnums(jobType, workType, workingForm, payForm, serviceType string) error {
	switch {
	case jobType != "" && !models.ValidJobType(jobType):
		return models.NewValidationError("Invalid type_of_job")
	case workType != "" && !models.ValidWorkType(workType):
		return models.NewValidationError("Invalid type_of_work")
	case workingForm != "" && !models.ValidWorkingForm(workingForm):
		return models.NewValidationError("Invalid working_form")
	case payForm != "" && !models.ValidPayForm(payForm):
		return models.NewValidationError("Invalid pay_form")
	case serviceType != "" && !models.ValidServiceType(serviceType):
		return models.NewValidationError("Invalid type_of_services")
	}
	return nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return models.MergeUnique(nil, out...)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
