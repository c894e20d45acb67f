package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "clubsite/internal/delivery/http/helpers"
	"clubsite/internal/domain"
)

const maxPostTags = 20

// CreatePostRequest is the request body for POST /posts.
type CreatePostRequest struct {
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status"`
	ImageURL *string  `json:"image_url,omitempty"`
}

// Validate implements Validator.
func (c CreatePostRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if !validStatus(c.Status) {
		errs = append(errs, statusMessage)
	}
	if len(c.Tags) > maxPostTags {
		errs = append(errs, "at most 20 tags are allowed")
	}
	return errs
}

func (c CreatePostRequest) toPost() *domain.Post {
	post := domain.NewPost(strings.TrimSpace(c.Title), c.Content, statusOrDraft(c.Status))
	post.Excerpt = c.Excerpt
	post.Tags = normalizeTags(c.Tags)
	post.ImageURL = c.ImageURL
	return post
}

// UpdatePostRequest is the request body for PATCH /posts/{id}. Omitted fields are left unchanged.
type UpdatePostRequest struct {
	Title    *string   `json:"title,omitempty"`
	Excerpt  *string   `json:"excerpt,omitempty"`
	Content  *string   `json:"content,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Status   *string   `json:"status,omitempty"`
	ImageURL *string   `json:"image_url,omitempty"`
}

// Validate implements Validator.
func (u UpdatePostRequest) Validate() []string {
	var errs []string
	if u.Title == nil && u.Excerpt == nil && u.Content == nil && u.Tags == nil && u.Status == nil && u.ImageURL == nil {
		errs = append(errs, "at least one field is required")
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if u.Status != nil && !domain.Status(*u.Status).Valid() {
		errs = append(errs, statusMessage)
	}
	if u.Tags != nil && len(*u.Tags) > maxPostTags {
		errs = append(errs, "at most 20 tags are allowed")
	}
	return errs
}

func (u UpdatePostRequest) apply(p *domain.Post) {
	if u.Title != nil {
		p.Title = strings.TrimSpace(*u.Title)
	}
	if u.Excerpt != nil {
		p.Excerpt = *u.Excerpt
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Tags != nil {
		p.Tags = normalizeTags(*u.Tags)
	}
	if u.Status != nil {
		p.Status = domain.Status(*u.Status)
	}
	if u.ImageURL != nil {
		p.ImageURL = u.ImageURL
	}
}

// normalizeTags lower-cases, trims and de-duplicates tags, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// PostSuccessResponse is the success response envelope for a single post.
type PostSuccessResponse struct {
	Data  *domain.Post `json:"data"`
	Error *h.APIError  `json:"error"`
}

// PostListSuccessResponse is the success response envelope for GET /posts.
type PostListSuccessResponse struct {
	Data  h.ListResponse[*domain.Post] `json:"data"`
	Error *h.APIError                  `json:"error"`
}

type PostController struct {
	resourceHandlers[*domain.Post]
}

func NewPostController(logger *slog.Logger, svc domain.ResourceService[*domain.Post]) *PostController {
	return &PostController{resourceHandlers: newResourceHandlers(logger, svc, false)}
}

// ListPosts godoc
// @Summary List posts
// @Description Returns a page of posts, newest first. Anonymous callers only see published posts.
// @Tags posts
// @Produce json
// @Param status query string false "draft, published or all"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.PostListSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /posts [get]
func (c *PostController) ListPosts(w http.ResponseWriter, r *http.Request) {
	c.list(w, r)
}

// GetPost godoc
// @Summary Get a post by ID
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID (UUID)"
// @Success 200 {object} controllers.PostSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{id} [get]
func (c *PostController) GetPost(w http.ResponseWriter, r *http.Request) {
	c.get(w, r)
}

// GetPostBySlug godoc
// @Summary Get a post by slug
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} controllers.PostSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/slug/{slug} [get]
func (c *PostController) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	c.getBySlug(w, r)
}

// CreatePost godoc
// @Summary Create a post
// @Description Creates a post. Publishing stamps published_at.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post body CreatePostRequest true "Post data"
// @Success 201 {object} controllers.PostSuccessResponse "data contains the created post"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /posts [post]
func (c *PostController) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	c.create(w, r, req.toPost())
}

// UpdatePost godoc
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID (UUID)"
// @Param post body UpdatePostRequest true "Fields to change"
// @Success 200 {object} controllers.PostSuccessResponse "data contains the updated post"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /posts/{id} [patch]
func (c *PostController) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdatePostRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	c.update(w, r, id, req.apply)
}

// DeletePost godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID (UUID)"
// @Success 200 {object} controllers.DeleteSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{id} [delete]
func (c *PostController) DeletePost(w http.ResponseWriter, r *http.Request) {
	c.delete(w, r)
}
