package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "clubsite/internal/delivery/http/helpers"
	"clubsite/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Status      string     `json:"status"`
	ImageURL    *string    `json:"image_url,omitempty"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.StartDate == nil {
		errs = append(errs, "start_date is required")
	}
	if !validStatus(c.Status) {
		errs = append(errs, statusMessage)
	}
	return errs
}

func (c CreateEventRequest) toEvent() *domain.Event {
	event := domain.NewEvent(strings.TrimSpace(c.Title), statusOrDraft(c.Status), *c.StartDate)
	event.Description = c.Description
	event.Location = c.Location
	event.EndDate = c.EndDate
	event.ImageURL = c.ImageURL
	return event
}

// UpdateEventRequest is the request body for PATCH /events/{id}. Omitted fields are left unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Status      *string    `json:"status,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title == nil && u.Description == nil && u.Location == nil && u.StartDate == nil &&
		u.EndDate == nil && u.Status == nil && u.ImageURL == nil {
		errs = append(errs, "at least one field is required")
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if u.Status != nil && !domain.Status(*u.Status).Valid() {
		errs = append(errs, statusMessage)
	}
	return errs
}

func (u UpdateEventRequest) apply(e *domain.Event) {
	if u.Title != nil {
		e.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.StartDate != nil {
		e.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		e.EndDate = u.EndDate
	}
	if u.Status != nil {
		e.Status = domain.Status(*u.Status)
	}
	if u.ImageURL != nil {
		e.ImageURL = u.ImageURL
	}
}

// EventSuccessResponse is the success response envelope for a single event.
type EventSuccessResponse struct {
	Data  *domain.Event `json:"data"`
	Error *h.APIError   `json:"error"`
}

// EventListSuccessResponse is the success response envelope for GET /events.
type EventListSuccessResponse struct {
	Data  h.ListResponse[*domain.Event] `json:"data"`
	Error *h.APIError                   `json:"error"`
}

type EventController struct {
	resourceHandlers[*domain.Event]
}

func NewEventController(logger *slog.Logger, svc domain.ResourceService[*domain.Event]) *EventController {
	return &EventController{resourceHandlers: newResourceHandlers(logger, svc, true)}
}

// ListEvents godoc
// @Summary List events
// @Description Returns a page of events. Anonymous callers only see published events; status=draft or status=all requires authentication. upcoming=true restricts to events starting now or later, ordered by start date ascending.
// @Tags events
// @Produce json
// @Param status query string false "draft, published or all"
// @Param upcoming query bool false "Only events that have not started yet"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.EventListSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	c.list(w, r)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event with the given ID in any status. Requires authentication.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	c.get(w, r)
}

// GetEventBySlug godoc
// @Summary Get an event by slug
// @Description Returns a published event by slug. Drafts are only visible to authenticated admins.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/slug/{slug} [get]
func (c *EventController) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	c.getBySlug(w, r)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event. The slug is derived from the title and made unique. Status defaults to draft.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	c.create(w, r, req.toEvent())
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially updates an event. Changing the title regenerates the slug.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{id} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	c.update(w, r, id, req.apply)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.DeleteSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	c.delete(w, r)
}
