package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"clubsite/internal/delivery/http/helpers"
	"clubsite/internal/delivery/http/middleware"
	"clubsite/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var adminSession = domain.SessionContext{Actor: &domain.Actor{UserID: "admin-1", Email: "admin@club.org"}}

const testID = "3f2b8c1e-0a4d-4c6b-9e1f-2a3b4c5d6e7f"

// fakeResourceService implements domain.ResourceService for handler tests.
type fakeResourceService[T domain.Publishable] struct {
	createErr   error
	lastCreated T
	createCalls int

	current     T
	updateErr   error
	lastUpdated string
	updateCalls int

	getItem    T
	getErr     error
	slugItem   T
	slugErr    error
	lastSlug   string
	lastGetID  string
	deleteErr  error
	lastDelete string

	listItems  []T
	listTotal  int
	listErr    error
	lastFilter domain.ListFilter

	lastSession domain.SessionContext
}

func (f *fakeResourceService[T]) Create(_ context.Context, session domain.SessionContext, r T) error {
	f.createCalls++
	f.lastSession = session
	f.lastCreated = r
	if f.createErr != nil {
		return f.createErr
	}
	base := r.Base()
	base.ID = testID
	base.Slug = "generated-slug"
	return nil
}

func (f *fakeResourceService[T]) Update(_ context.Context, session domain.SessionContext, id string, mutate func(T) error) (T, error) {
	var zero T
	f.updateCalls++
	f.lastSession = session
	f.lastUpdated = id
	if f.updateErr != nil {
		return zero, f.updateErr
	}
	if err := mutate(f.current); err != nil {
		return zero, err
	}
	return f.current, nil
}

func (f *fakeResourceService[T]) Delete(_ context.Context, session domain.SessionContext, id string) error {
	f.lastSession = session
	f.lastDelete = id
	return f.deleteErr
}

func (f *fakeResourceService[T]) Get(_ context.Context, session domain.SessionContext, id string) (T, error) {
	f.lastSession = session
	f.lastGetID = id
	return f.getItem, f.getErr
}

func (f *fakeResourceService[T]) GetBySlug(_ context.Context, session domain.SessionContext, slug string) (T, error) {
	f.lastSession = session
	f.lastSlug = slug
	return f.slugItem, f.slugErr
}

func (f *fakeResourceService[T]) List(_ context.Context, session domain.SessionContext, filter domain.ListFilter) ([]T, int, error) {
	f.lastSession = session
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listItems, f.listTotal, nil
}

// envelope mirrors helpers.APIResponse with a raw data payload.
type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	env := decodeEnvelope(t, rr)
	require.Nil(t, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func requireErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rr.Code)
	env := decodeEnvelope(t, rr)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
}

// newRequest builds a request carrying session, with id set as the {id} path value when non-empty.
func newRequest(method, target, body string, session domain.SessionContext) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithSession(req.Context(), session))
}
