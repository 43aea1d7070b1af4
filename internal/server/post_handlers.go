package server

import (
	"time"

	"gighub/internal/models"
	"gighub/internal/repository"
	"gighub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	filter := repository.PostFilter{
		Status:      models.PostStatus(c.Query("status")),
		JobType:     c.Query("typeOfJob"),
		WorkType:    c.Query("typeOfWork"),
		WorkingForm: c.Query("workingForm"),
		PayForm:     c.Query("payForm"),
		ServiceType: c.Query("typeOfServices"),
		TitleSearch: c.Query("titleSearch"),
		Tags:        queryList(c, "tag"),
	}

	page, err := s.postService.FindPosts(c.UserContext(), filter, parsePagination(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(page)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	var req struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Location    string     `json:"location"`
		Tags        []string   `json:"tags"`
		BudgetFrom  float64    `json:"budget_from"`
		BudgetTo    float64    `json:"budget_to"`
		ExpiredAt   *time.Time `json:"expired_at"`
		JobType     string     `json:"type_of_job"`
		WorkType    string     `json:"type_of_work"`
		WorkingForm string     `json:"working_form"`
		PayForm     string     `json:"pay_form"`
		ServiceType string     `json:"type_of_services"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, invalidBody())
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorExternalID: id.ExternalID,
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		Tags:             req.Tags,
		BudgetFrom:       req.BudgetFrom,
		BudgetTo:         req.BudgetTo,
		ExpiredAt:        req.ExpiredAt,
		JobType:          req.JobType,
		WorkType:         req.WorkType,
		WorkingForm:      req.WorkingForm,
		PayForm:          req.PayForm,
		ServiceType:      req.ServiceType,
	})
	if err != nil {
		return respondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PATCH /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	var req struct {
		Title         string     `json:"title"`
		Description   string     `json:"description"`
		Location      string     `json:"location"`
		Tags          []string   `json:"tags"`
		AddTags       []string   `json:"add_tags"`
		BudgetFrom    *float64   `json:"budget_from"`
		BudgetTo      *float64   `json:"budget_to"`
		ExpiredAt     *time.Time `json:"expired_at"`
		JobType       string     `json:"type_of_job"`
		WorkType      string     `json:"type_of_work"`
		WorkingForm   string     `json:"working_form"`
		PayForm       string     `json:"pay_form"`
		ServiceType   string     `json:"type_of_services"`
		WorkingStatus string     `json:"working_status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, invalidBody())
	}

	post, err := s.postService.UpdatePost(c.UserContext(), id.ExternalID, c.Params("id"), service.UpdatePostInput{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Tags:          req.Tags,
		AddTags:       req.AddTags,
		BudgetFrom:    req.BudgetFrom,
		BudgetTo:      req.BudgetTo,
		ExpiredAt:     req.ExpiredAt,
		JobType:       req.JobType,
		WorkType:      req.WorkType,
		WorkingForm:   req.WorkingForm,
		PayForm:       req.PayForm,
		ServiceType:   req.ServiceType,
		WorkingStatus: req.WorkingStatus,
	})
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(post)
}

// ClosePost handles POST /api/posts/:id/close
func (s *Server) ClosePost(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	post, err := s.postService.ClosePost(c.UserContext(), id.ExternalID, c.Params("id"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(post)
}

// ListMyCreatedPosts handles GET /api/posts/mine/created
func (s *Server) ListMyCreatedPosts(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	page, err := s.listingService.ListPostsCreatedBy(c.UserContext(), id.ExternalID, parsePagination(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(page)
}

// ListMyOfferedPosts handles GET /api/posts/mine/offered
func (s *Server) ListMyOfferedPosts(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	page, err := s.listingService.ListPostsOfferedBy(c.UserContext(), id.ExternalID, parsePagination(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(page)
}

// ListMyReceivedPosts handles GET /api/posts/mine/received
func (s *Server) ListMyReceivedPosts(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respondWithError(c, err)
	}

	page, err := s.listingService.ListPostsReceivedBy(c.UserContext(), id.ExternalID, parsePagination(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(page)
}
