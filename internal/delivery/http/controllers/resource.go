package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	h "clubsite/internal/delivery/http/helpers"
	"clubsite/internal/delivery/http/middleware"
	"clubsite/internal/domain"
)

// DeleteResponse is the data payload returned by DELETE endpoints.
type DeleteResponse struct {
	Status string `json:"status"`
}

// DeleteSuccessResponse is the success response envelope for DELETE endpoints (200).
type DeleteSuccessResponse struct {
	Data  DeleteResponse `json:"data"`
	Error *h.APIError    `json:"error"`
}

// resourceHandlers holds the HTTP flow shared by every publishable kind.
// Kind controllers decode their own request bodies and delegate here.
type resourceHandlers[T domain.Publishable] struct {
	logger  *slog.Logger
	service domain.ResourceService[T]
	// upcoming enables the upcoming query parameter.
	upcoming bool
	now      func() time.Time
}

func newResourceHandlers[T domain.Publishable](logger *slog.Logger, svc domain.ResourceService[T], upcoming bool) resourceHandlers[T] {
	return resourceHandlers[T]{logger: logger, service: svc, upcoming: upcoming, now: time.Now}
}

func (rh resourceHandlers[T]) list(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	filter, problem := rh.parseListFilter(r, session)
	if problem != "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, problem)
		return
	}
	items, total, err := rh.service.List(r.Context(), session, filter)
	if err != nil {
		h.WriteServiceError(w, r, rh.logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.NewListResponse(items, filter.Pagination, total))
}

// parseListFilter reads status, upcoming, page and limit. Without a status
// parameter anonymous callers see published resources and admins see all.
func (rh resourceHandlers[T]) parseListFilter(r *http.Request, session domain.SessionContext) (domain.ListFilter, string) {
	q := r.URL.Query()
	filter := domain.ListFilter{
		Now:        rh.now(),
		Pagination: h.ParsePagination(r),
	}

	switch raw := strings.ToLower(strings.TrimSpace(q.Get("status"))); raw {
	case "":
		if !session.Authenticated() {
			published := domain.StatusPublished
			filter.Status = &published
		}
	case "all":
	default:
		status := domain.Status(raw)
		if !status.Valid() {
			return filter, `status must be "draft", "published" or "all"`
		}
		filter.Status = &status
	}

	if raw := q.Get("upcoming"); raw != "" {
		if !rh.upcoming {
			return filter, "upcoming is not supported for this resource"
		}
		upcoming, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, "upcoming must be a boolean"
		}
		filter.Upcoming = upcoming
	}
	return filter, ""
}

func (rh resourceHandlers[T]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := rh.service.Get(r.Context(), middleware.SessionFromContext(r.Context()), id)
	if err != nil {
		h.WriteServiceError(w, r, rh.logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, item)
}

func (rh resourceHandlers[T]) getBySlug(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing slug")
		return
	}
	item, err := rh.service.GetBySlug(r.Context(), middleware.SessionFromContext(r.Context()), slug)
	if err != nil {
		h.WriteServiceError(w, r, rh.logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, item)
}

func (rh resourceHandlers[T]) create(w http.ResponseWriter, r *http.Request, item T) {
	if err := rh.service.Create(r.Context(), middleware.SessionFromContext(r.Context()), item); err != nil {
		h.WriteServiceError(w, r, rh.logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, item)
}

func (rh resourceHandlers[T]) update(w http.ResponseWriter, r *http.Request, id string, apply func(T)) {
	updated, err := rh.service.Update(r.Context(), middleware.SessionFromContext(r.Context()), id, func(item T) error {
		apply(item)
		return nil
	})
	if err != nil {
		h.WriteServiceError(w, r, rh.logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, updated)
}

func (rh resourceHandlers[T]) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := rh.service.Delete(r.Context(), middleware.SessionFromContext(r.Context()), id); err != nil {
		h.WriteServiceError(w, r, rh.logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, DeleteResponse{Status: "deleted"})
}

// pathID reads the {id} path value and rejects anything that is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing id")
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "id must be a UUID")
		return "", false
	}
	return id.String(), true
}

func validStatus(s string) bool {
	return s == "" || domain.Status(s).Valid()
}

func statusOrDraft(s string) domain.Status {
	if s == "" {
		return domain.StatusDraft
	}
	return domain.Status(s)
}

const statusMessage = `status must be "draft" or "published"`
