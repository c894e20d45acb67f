package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "clubsite/internal/delivery/http/helpers"
	"clubsite/internal/domain"
)

// CreatePageRequest is the request body for POST /pages.
type CreatePageRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	NavOrder int     `json:"nav_order"`
	Status   string  `json:"status"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Validate implements Validator.
func (c CreatePageRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.NavOrder < 0 {
		errs = append(errs, "nav_order must not be negative")
	}
	if !validStatus(c.Status) {
		errs = append(errs, statusMessage)
	}
	return errs
}

func (c CreatePageRequest) toPage() *domain.Page {
	page := domain.NewPage(strings.TrimSpace(c.Title), c.Content, statusOrDraft(c.Status))
	page.NavOrder = c.NavOrder
	page.ImageURL = c.ImageURL
	return page
}

// UpdatePageRequest is the request body for PATCH /pages/{id}. Omitted fields are left unchanged.
type UpdatePageRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	NavOrder *int    `json:"nav_order,omitempty"`
	Status   *string `json:"status,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Validate implements Validator.
func (u UpdatePageRequest) Validate() []string {
	var errs []string
	if u.Title == nil && u.Content == nil && u.NavOrder == nil && u.Status == nil && u.ImageURL == nil {
		errs = append(errs, "at least one field is required")
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if u.NavOrder != nil && *u.NavOrder < 0 {
		errs = append(errs, "nav_order must not be negative")
	}
	if u.Status != nil && !domain.Status(*u.Status).Valid() {
		errs = append(errs, statusMessage)
	}
	return errs
}

func (u UpdatePageRequest) apply(p *domain.Page) {
	if u.Title != nil {
		p.Title = strings.TrimSpace(*u.Title)
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.NavOrder != nil {
		p.NavOrder = *u.NavOrder
	}
	if u.Status != nil {
		p.Status = domain.Status(*u.Status)
	}
	if u.ImageURL != nil {
		p.ImageURL = u.ImageURL
	}
}

// PageSuccessResponse is the success response envelope for a single page.
type PageSuccessResponse struct {
	Data  *domain.Page `json:"data"`
	Error *h.APIError  `json:"error"`
}

// PageListSuccessResponse is the success response envelope for GET /pages.
type PageListSuccessResponse struct {
	Data  h.ListResponse[*domain.Page] `json:"data"`
	Error *h.APIError                  `json:"error"`
}

type PageController struct {
	resourceHandlers[*domain.Page]
}

func NewPageController(logger *slog.Logger, svc domain.ResourceService[*domain.Page]) *PageController {
	return &PageController{resourceHandlers: newResourceHandlers(logger, svc, false)}
}

// ListPages godoc
// @Summary List pages
// @Description Returns pages in menu order. Anonymous callers only see published pages.
// @Tags pages
// @Produce json
// @Param status query string false "draft, published or all"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.PageListSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /pages [get]
func (c *PageController) ListPages(w http.ResponseWriter, r *http.Request) {
	c.list(w, r)
}

// GetPage godoc
// @Summary Get a page by ID
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Page ID (UUID)"
// @Success 200 {object} controllers.PageSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /pages/{id} [get]
func (c *PageController) GetPage(w http.ResponseWriter, r *http.Request) {
	c.get(w, r)
}

// GetPageBySlug godoc
// @Summary Get a page by slug
// @Tags pages
// @Produce json
// @Param slug path string true "Page slug"
// @Success 200 {object} controllers.PageSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /pages/slug/{slug} [get]
func (c *PageController) GetPageBySlug(w http.ResponseWriter, r *http.Request) {
	c.getBySlug(w, r)
}

// CreatePage godoc
// @Summary Create a page
// @Tags pages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page body CreatePageRequest true "Page data"
// @Success 201 {object} controllers.PageSuccessResponse "data contains the created page"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /pages [post]
func (c *PageController) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	c.create(w, r, req.toPage())
}

// UpdatePage godoc
// @Summary Update a page
// @Tags pages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Page ID (UUID)"
// @Param page body UpdatePageRequest true "Fields to change"
// @Success 200 {object} controllers.PageSuccessResponse "data contains the updated page"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /pages/{id} [patch]
func (c *PageController) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdatePageRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	c.update(w, r, id, req.apply)
}

// DeletePage godoc
// @Summary Delete a page
// @Tags pages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Page ID (UUID)"
// @Success 200 {object} controllers.DeleteSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /pages/{id} [delete]
func (c *PageController) DeletePage(w http.ResponseWriter, r *http.Request) {
	c.delete(w, r)
}
