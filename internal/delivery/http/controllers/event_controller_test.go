package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubsite/internal/delivery/http/helpers"
	"clubsite/internal/domain"
)

func newTestEventController() (*EventController, *fakeResourceService[*domain.Event]) {
	svc := &fakeResourceService[*domain.Event]{}
	return NewEventController(testLogger, svc), svc
}

func TestEventController_CreateEvent(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		serviceErr  error
		wantStatus  int
		wantCode    string
		wantService bool
	}{
		{
			name:        "valid event",
			body:        `{"title":"  Summer Slam 2025 ","location":"Main hall","start_date":"2025-07-12T18:00:00Z"}`,
			wantStatus:  http.StatusCreated,
			wantService: true,
		},
		{
			name:       "missing title",
			body:       `{"start_date":"2025-07-12T18:00:00Z"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "missing start date",
			body:       `{"title":"Summer Slam"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "invalid status",
			body:       `{"title":"Summer Slam","start_date":"2025-07-12T18:00:00Z","status":"archived"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"title":"Summer Slam","start_date":"2025-07-12T18:00:00Z","slug":"mine"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:        "service validation error",
			body:        `{"title":"!!!","start_date":"2025-07-12T18:00:00Z"}`,
			serviceErr:  domain.NewValidationError("title", "title must contain letters or digits"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeBadRequest,
			wantService: true,
		},
		{
			name:        "slug conflict",
			body:        `{"title":"Summer Slam","start_date":"2025-07-12T18:00:00Z"}`,
			serviceErr:  domain.ErrConflict,
			wantStatus:  http.StatusConflict,
			wantCode:    helpers.ErrCodeConflict,
			wantService: true,
		},
		{
			name:        "store failure",
			body:        `{"title":"Summer Slam","start_date":"2025-07-12T18:00:00Z"}`,
			serviceErr:  fmt.Errorf("%w: create event: connection refused", domain.ErrUpstream),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    helpers.ErrCodeInternalError,
			wantService: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, svc := newTestEventController()
			svc.createErr = tt.serviceErr
			req := newRequest(http.MethodPost, "http://test/events", tt.body, adminSession)
			rr := httptest.NewRecorder()

			c.CreateEvent(rr, req)

			assert.Equal(t, tt.wantService, svc.createCalls == 1)
			if tt.wantCode != "" {
				requireErrorCode(t, rr, tt.wantStatus, tt.wantCode)
				return
			}
			require.Equal(t, tt.wantStatus, rr.Code)
			var got domain.Event
			decodeData(t, rr, &got)
			assert.Equal(t, testID, got.ID)
			assert.Equal(t, "generated-slug", got.Slug)
			assert.Equal(t, "Summer Slam 2025", svc.lastCreated.Title)
			assert.Equal(t, domain.StatusDraft, svc.lastCreated.Status)
			assert.Equal(t, "Main hall", svc.lastCreated.Location)
			assert.Equal(t, adminSession, svc.lastSession)
		})
	}
}

func TestEventController_ListEvents(t *testing.T) {
	published := domain.StatusPublished
	draft := domain.StatusDraft

	tests := []struct {
		name         string
		query        string
		session      domain.SessionContext
		wantStatus   int
		wantFilter   *domain.Status
		wantUpcoming bool
	}{
		{name: "anonymous defaults to published", session: domain.SessionContext{}, wantStatus: http.StatusOK, wantFilter: &published},
		{name: "admin defaults to all", session: adminSession, wantStatus: http.StatusOK},
		{name: "explicit draft", query: "?status=draft", session: adminSession, wantStatus: http.StatusOK, wantFilter: &draft},
		{name: "status all", query: "?status=all", session: adminSession, wantStatus: http.StatusOK},
		{name: "upcoming", query: "?upcoming=true", session: domain.SessionContext{}, wantStatus: http.StatusOK, wantFilter: &published, wantUpcoming: true},
		{name: "invalid status", query: "?status=archived", wantStatus: http.StatusBadRequest},
		{name: "invalid upcoming", query: "?upcoming=soon", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, svc := newTestEventController()
			svc.listItems = []*domain.Event{domain.NewEvent("Derby Day", domain.StatusPublished, time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC))}
			svc.listTotal = 41
			req := newRequest(http.MethodGet, "http://test/events"+tt.query, "", tt.session)
			rr := httptest.NewRecorder()

			c.ListEvents(rr, req)

			if tt.wantStatus != http.StatusOK {
				requireErrorCode(t, rr, tt.wantStatus, helpers.ErrCodeBadRequest)
				return
			}
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.wantFilter, svc.lastFilter.Status)
			assert.Equal(t, tt.wantUpcoming, svc.lastFilter.Upcoming)
			assert.False(t, svc.lastFilter.Now.IsZero())

			var got helpers.ListResponse[domain.Event]
			decodeData(t, rr, &got)
			require.Len(t, got.Items, 1)
			assert.Equal(t, "Derby Day", got.Items[0].Title)
			assert.Equal(t, helpers.PaginationMeta{Page: 1, PageSize: 20, Total: 41, TotalPages: 3}, got.Pagination)
		})
	}
}

func TestEventController_ListEvents_DraftsRequireAuth(t *testing.T) {
	c, svc := newTestEventController()
	svc.listErr = domain.ErrAuthenticationRequired
	rr := httptest.NewRecorder()

	c.ListEvents(rr, newRequest(http.MethodGet, "http://test/events?status=draft", "", domain.SessionContext{}))

	requireErrorCode(t, rr, http.StatusUnauthorized, helpers.ErrCodeUnauthorized)
}

func TestEventController_GetEvent(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		c, svc := newTestEventController()
		svc.getItem = domain.NewEvent("Club Night", domain.StatusDraft, time.Now())
		req := newRequest(http.MethodGet, "http://test/events/"+testID, "", adminSession)
		req.SetPathValue("id", testID)
		rr := httptest.NewRecorder()

		c.GetEvent(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, testID, svc.lastGetID)
	})
	t.Run("not a uuid", func(t *testing.T) {
		c, _ := newTestEventController()
		req := newRequest(http.MethodGet, "http://test/events/abc", "", adminSession)
		req.SetPathValue("id", "abc")
		rr := httptest.NewRecorder()

		c.GetEvent(rr, req)

		requireErrorCode(t, rr, http.StatusBadRequest, helpers.ErrCodeBadRequest)
	})
	t.Run("not found", func(t *testing.T) {
		c, svc := newTestEventController()
		svc.getErr = domain.ErrNotFound
		req := newRequest(http.MethodGet, "http://test/events/"+testID, "", adminSession)
		req.SetPathValue("id", testID)
		rr := httptest.NewRecorder()

		c.GetEvent(rr, req)

		requireErrorCode(t, rr, http.StatusNotFound, helpers.ErrCodeNotFound)
	})
}

func TestEventController_GetEventBySlug(t *testing.T) {
	t.Run("published", func(t *testing.T) {
		c, svc := newTestEventController()
		svc.slugItem = domain.NewEvent("Summer Slam", domain.StatusPublished, time.Now())
		req := newRequest(http.MethodGet, "http://test/events/slug/summer-slam", "", domain.SessionContext{})
		req.SetPathValue("slug", "summer-slam")
		rr := httptest.NewRecorder()

		c.GetEventBySlug(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "summer-slam", svc.lastSlug)
		assert.False(t, svc.lastSession.Authenticated())
	})
	t.Run("hidden draft", func(t *testing.T) {
		c, svc := newTestEventController()
		svc.slugErr = domain.ErrNotFound
		req := newRequest(http.MethodGet, "http://test/events/slug/secret", "", domain.SessionContext{})
		req.SetPathValue("slug", "secret")
		rr := httptest.NewRecorder()

		c.GetEventBySlug(rr, req)

		requireErrorCode(t, rr, http.StatusNotFound, helpers.ErrCodeNotFound)
	})
}

func TestEventController_UpdateEvent(t *testing.T) {
	start := time.Date(2025, 9, 1, 19, 0, 0, 0, time.UTC)

	t.Run("applies only given fields", func(t *testing.T) {
		c, svc := newTestEventController()
		svc.current = domain.NewEvent("Autumn Cup", domain.StatusDraft, start)
		svc.current.Location = "Field 2"
		req := newRequest(http.MethodPatch, "http://test/events/"+testID, `{"title":"Autumn Cup Final","status":"published"}`, adminSession)
		req.SetPathValue("id", testID)
		rr := httptest.NewRecorder()

		c.UpdateEvent(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, testID, svc.lastUpdated)
		var got domain.Event
		decodeData(t, rr, &got)
		assert.Equal(t, "Autumn Cup Final", got.Title)
		assert.Equal(t, domain.StatusPublished, got.Status)
		assert.Equal(t, "Field 2", got.Location)
		assert.True(t, start.Equal(got.StartDate))
	})

	rejected := []struct {
		name string
		body string
	}{
		{"empty patch", `{}`},
		{"blank title", `{"title":"  "}`},
		{"invalid status", `{"status":"hidden"}`},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			c, svc := newTestEventController()
			req := newRequest(http.MethodPatch, "http://test/events/"+testID, tt.body, adminSession)
			req.SetPathValue("id", testID)
			rr := httptest.NewRecorder()

			c.UpdateEvent(rr, req)

			requireErrorCode(t, rr, http.StatusBadRequest, helpers.ErrCodeBadRequest)
			assert.Zero(t, svc.updateCalls)
		})
	}

	t.Run("not found", func(t *testing.T) {
		c, svc := newTestEventController()
		svc.updateErr = domain.ErrNotFound
		req := newRequest(http.MethodPatch, "http://test/events/"+testID, `{"location":"Hall"}`, adminSession)
		req.SetPathValue("id", testID)
		rr := httptest.NewRecorder()

		c.UpdateEvent(rr, req)

		requireErrorCode(t, rr, http.StatusNotFound, helpers.ErrCodeNotFound)
	})
}

func TestEventController_DeleteEvent(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"deleted", nil, http.StatusOK},
		{"already gone", domain.ErrNotFound, http.StatusNotFound},
		{"anonymous", domain.ErrAuthenticationRequired, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, svc := newTestEventController()
			svc.deleteErr = tt.serviceErr
			req := newRequest(http.MethodDelete, "http://test/events/"+testID, "", adminSession)
			req.SetPathValue("id", testID)
			rr := httptest.NewRecorder()

			c.DeleteEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, testID, svc.lastDelete)
			if tt.serviceErr == nil {
				var got DeleteResponse
				decodeData(t, rr, &got)
				assert.Equal(t, "deleted", got.Status)
			}
		})
	}
}
