package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubsite/internal/domain"
)

var (
	adminSession = domain.SessionContext{Actor: &domain.Actor{UserID: "admin-1", Email: "admin@club.org"}}
	anonSession  = domain.SessionContext{}
)

func published() *domain.Status {
	s := domain.StatusPublished
	return &s
}

func TestResourceService_Create(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewResourceService(domain.EventSpec, repo, time.Second)
	start := time.Now().Add(72 * time.Hour)

	first := domain.NewEvent("Summer Slam!! 2025", domain.StatusPublished, start)
	require.NoError(t, svc.Create(ctx, adminSession, first))
	assert.Equal(t, "summer-slam-2025", first.Slug)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := domain.NewEvent("Summer Slam!! 2025", domain.StatusPublished, start)
	require.NoError(t, svc.Create(ctx, adminSession, second))
	assert.Regexp(t, regexp.MustCompile(`^summer-slam-2025-[a-z0-9]+$`), second.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestResourceService_Create_DifferentTitlesSameSlug(t *testing.T) {
	ctx := context.Background()
	repo := newFakePostRepo()
	repo.enforceUnique = false
	svc := NewResourceService(domain.PostSpec, repo, time.Second)

	a := domain.NewPost("Club News", "a", domain.StatusDraft)
	b := domain.NewPost("club news!", "b", domain.StatusDraft)
	require.NoError(t, svc.Create(ctx, adminSession, a))
	require.NoError(t, svc.Create(ctx, adminSession, b))

	assert.Equal(t, []string{"club-news", "club-news-2"}, repo.slugs())
}

func TestResourceService_Create_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		session   domain.SessionContext
		event     *domain.Event
		wantErr   error
		wantField string
	}{
		{
			name:    "anonymous",
			session: anonSession,
			event:   domain.NewEvent("Open Day", domain.StatusDraft, time.Now()),
			wantErr: domain.ErrAuthenticationRequired,
		},
		{
			name:      "missing title",
			session:   adminSession,
			event:     domain.NewEvent("", domain.StatusDraft, time.Now()),
			wantErr:   domain.ErrValidation,
			wantField: "title",
		},
		{
			name:      "punctuation only title",
			session:   adminSession,
			event:     domain.NewEvent("!!!", domain.StatusDraft, time.Now()),
			wantErr:   domain.ErrValidation,
			wantField: "title",
		},
		{
			name:      "missing start date",
			session:   adminSession,
			event:     domain.NewEvent("Open Day", domain.StatusDraft, time.Time{}),
			wantErr:   domain.ErrValidation,
			wantField: "start_date",
		},
		{
			name:      "unknown status",
			session:   adminSession,
			event:     domain.NewEvent("Open Day", domain.Status("archived"), time.Now()),
			wantErr:   domain.ErrValidation,
			wantField: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			svc := NewResourceService(domain.EventSpec, repo, time.Second)

			err := svc.Create(ctx, tt.session, tt.event)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantField != "" {
				var verr *domain.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.wantField, verr.Field)
			}
			assert.Zero(t, repo.creates, "no store mutation")
			assert.Zero(t, repo.slugExistsCalls, "no store read")
		})
	}
}

func TestResourceService_Create_RetriesOnStoreConflict(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewResourceService(domain.EventSpec, repo, time.Second)
	start := time.Now().Add(time.Hour)

	require.NoError(t, svc.Create(ctx, adminSession, domain.NewEvent("Club Night", domain.StatusPublished, start)))

	// The existence check misses the committed row; the insert hits the
	// unique constraint and the service retries with a new slug.
	repo.staleExists = map[string]bool{"club-night": true}
	racer := domain.NewEvent("Club Night", domain.StatusPublished, start)
	require.NoError(t, svc.Create(ctx, adminSession, racer))

	assert.Equal(t, "club-night-2", racer.Slug)
	assert.Equal(t, 3, repo.creates, "one rejected insert plus two successful ones")
	assert.Equal(t, []string{"club-night", "club-night-2"}, repo.slugs())
}

func TestResourceService_Create_ConflictRetryIsBounded(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.createErr = domain.ErrConflict
	svc := NewResourceService(domain.EventSpec, repo, time.Second)

	err := svc.Create(ctx, adminSession, domain.NewEvent("Club Night", domain.StatusPublished, time.Now()))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1+maxConflictRetries, repo.creates)
}

func TestResourceService_Create_StoreFailureIsUpstream(t *testing.T) {
	ctx := context.Background()
	repo := newFakePageRepo()
	repo.createErr = errors.New("connection refused")
	svc := NewResourceService(domain.PageSpec, repo, time.Second)

	err := svc.Create(ctx, adminSession, domain.NewPage("About", "", domain.StatusDraft))
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, repo.creates, "infrastructure errors are not retried")
}

func TestResourceService_Create_ConcurrentSameTitle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewResourceService(domain.EventSpec, repo, time.Second)
	start := time.Now().Add(time.Hour)

	const writers = 2
	var wg sync.WaitGroup
	gate := make(chan struct{})
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-gate
			errs[i] = svc.Create(ctx, adminSession, domain.NewEvent("Derby Day", domain.StatusPublished, start))
		}(i)
	}
	close(gate)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"derby-day", "derby-day-2"}, repo.slugs())
}

func TestResourceService_Create_ManyConcurrentWritersNeverDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newFakePostRepo()
	svc := NewResourceService(domain.PostSpec, repo, time.Second)

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Create(ctx, adminSession, domain.NewPost("Results", "", domain.StatusPublished))
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrConflict)
			continue
		}
		succeeded++
	}

	slugs := repo.slugs()
	assert.Len(t, slugs, succeeded)
	seen := make(map[string]bool)
	for _, s := range slugs {
		assert.False(t, seen[s], "duplicate slug %q", s)
		seen[s] = true
	}
}

// Without a store-side unique constraint the existence check alone keeps
// sequential writers apart, but a writer that commits between another's check
// and insert goes unnoticed. The migrations declare <kind>_slug_key UNIQUE so
// Postgres always runs with enforceUnique semantics.
func TestResourceService_Create_UniqueConstraintClosesCheckThenInsertRace(t *testing.T) {
	tests := []struct {
		name          string
		enforceUnique bool
		racing        bool
		wantSlugs     []string
	}{
		{"sequential without constraint", false, false, []string{"club-night", "club-night-2"}},
		{"sequential with constraint", true, false, []string{"club-night", "club-night-2"}},
		{"racing without constraint duplicates", false, true, []string{"club-night", "club-night"}},
		{"racing with constraint retries", true, true, []string{"club-night", "club-night-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := newFakeEventRepo()
			repo.enforceUnique = tt.enforceUnique
			svc := NewResourceService(domain.EventSpec, repo, time.Second)
			start := time.Now().Add(time.Hour)

			require.NoError(t, svc.Create(ctx, adminSession, domain.NewEvent("Club Night", domain.StatusPublished, start)))
			if tt.racing {
				repo.staleExists = map[string]bool{"club-night": true}
			}
			require.NoError(t, svc.Create(ctx, adminSession, domain.NewEvent("Club Night", domain.StatusPublished, start)))

			assert.Equal(t, tt.wantSlugs, repo.slugs())
		})
	}
}

func TestResourceService_Create_StampsPublishedAt(t *testing.T) {
	ctx := context.Background()
	svc := NewResourceService(domain.PostSpec, newFakePostRepo(), time.Second)

	draft := domain.NewPost("Draft", "", domain.StatusDraft)
	require.NoError(t, svc.Create(ctx, adminSession, draft))
	assert.Nil(t, draft.PublishedAt)

	live := domain.NewPost("Live", "", domain.StatusPublished)
	require.NoError(t, svc.Create(ctx, adminSession, live))
	require.NotNil(t, live.PublishedAt)
}

func TestResourceService_Update(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(24 * time.Hour)

	t.Run("unchanged title keeps slug without resolving", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewResourceService(domain.EventSpec, repo, time.Second)
		ev := domain.NewEvent("Spring Open", domain.StatusDraft, start)
		require.NoError(t, svc.Create(ctx, adminSession, ev))
		require.Equal(t, "spring-open", ev.Slug)
		callsBefore := repo.slugExistsCalls

		updated, err := svc.Update(ctx, adminSession, ev.ID, func(e *domain.Event) error {
			e.Title = "Spring Open"
			e.Location = "Main pitch"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "spring-open", updated.Slug)
		assert.Equal(t, "Main pitch", updated.Location)
		assert.Equal(t, callsBefore, repo.slugExistsCalls)
	})

	t.Run("title producing own slug keeps slug", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewResourceService(domain.EventSpec, repo, time.Second)
		ev := domain.NewEvent("Spring Open", domain.StatusDraft, start)
		require.NoError(t, svc.Create(ctx, adminSession, ev))

		updated, err := svc.Update(ctx, adminSession, ev.ID, func(e *domain.Event) error {
			e.Title = "SPRING open!"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "spring-open", updated.Slug)
	})

	t.Run("renamed title regenerates slug excluding self", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewResourceService(domain.EventSpec, repo, time.Second)
		ev := domain.NewEvent("Spring Open", domain.StatusDraft, start)
		require.NoError(t, svc.Create(ctx, adminSession, ev))
		other := domain.NewEvent("Autumn Cup", domain.StatusDraft, start)
		require.NoError(t, svc.Create(ctx, adminSession, other))

		updated, err := svc.Update(ctx, adminSession, ev.ID, func(e *domain.Event) error {
			e.Title = "Summer Open"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "summer-open", updated.Slug)

		collided, err := svc.Update(ctx, adminSession, ev.ID, func(e *domain.Event) error {
			e.Title = "Autumn Cup"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "autumn-cup-2", collided.Slug)
		assert.Equal(t, []string{"autumn-cup", "autumn-cup-2"}, repo.slugs())
	})

	t.Run("mutation cannot change identity", func(t *testing.T) {
		repo := newFakePageRepo()
		svc := NewResourceService(domain.PageSpec, repo, time.Second)
		pg := domain.NewPage("About", "", domain.StatusDraft)
		require.NoError(t, svc.Create(ctx, adminSession, pg))

		updated, err := svc.Update(ctx, adminSession, pg.ID, func(p *domain.Page) error {
			p.ID = "hijack"
			p.Slug = "hijack"
			p.Content = "Hello"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, pg.ID, updated.ID)
		assert.Equal(t, "about", updated.Slug)
	})

	t.Run("publishing a post stamps published_at once", func(t *testing.T) {
		repo := newFakePostRepo()
		svc := NewResourceService(domain.PostSpec, repo, time.Second)
		post := domain.NewPost("Season Review", "", domain.StatusDraft)
		require.NoError(t, svc.Create(ctx, adminSession, post))

		updated, err := svc.Update(ctx, adminSession, post.ID, func(p *domain.Post) error {
			p.Status = domain.StatusPublished
			return nil
		})
		require.NoError(t, err)
		require.NotNil(t, updated.PublishedAt)
		first := *updated.PublishedAt

		again, err := svc.Update(ctx, adminSession, post.ID, func(p *domain.Post) error {
			p.Excerpt = "A great year"
			return nil
		})
		require.NoError(t, err)
		assert.True(t, first.Equal(*again.PublishedAt))
	})
}

func TestResourceService_Update_Rejections(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewResourceService(domain.EventSpec, repo, time.Second)
	ev := domain.NewEvent("Spring Open", domain.StatusDraft, time.Now())
	require.NoError(t, svc.Create(ctx, adminSession, ev))
	updatesBefore := repo.updates

	_, err := svc.Update(ctx, anonSession, ev.ID, func(e *domain.Event) error { e.Title = "x"; return nil })
	assert.ErrorIs(t, err, domain.ErrAuthenticationRequired)

	_, err = svc.Update(ctx, adminSession, "missing", func(e *domain.Event) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(ctx, adminSession, ev.ID, func(e *domain.Event) error { e.Title = ""; return nil })
	assert.ErrorIs(t, err, domain.ErrValidation)

	end := ev.StartDate.Add(-time.Hour)
	_, err = svc.Update(ctx, adminSession, ev.ID, func(e *domain.Event) error { e.EndDate = &end; return nil })
	assert.ErrorIs(t, err, domain.ErrValidation)

	mutateErr := domain.NewValidationError("start_date", "bad date")
	_, err = svc.Update(ctx, adminSession, ev.ID, func(e *domain.Event) error { return mutateErr })
	assert.ErrorIs(t, err, mutateErr)

	assert.Equal(t, updatesBefore, repo.updates, "no store mutation")
	stored, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring Open", stored.Title)
}

func TestResourceService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newFakePostRepo()
	svc := NewResourceService(domain.PostSpec, repo, time.Second)
	post := domain.NewPost("Bye", "", domain.StatusDraft)
	keep := domain.NewPost("Stay", "", domain.StatusDraft)
	require.NoError(t, svc.Create(ctx, adminSession, post))
	require.NoError(t, svc.Create(ctx, adminSession, keep))

	assert.ErrorIs(t, svc.Delete(ctx, anonSession, post.ID), domain.ErrAuthenticationRequired)
	assert.Len(t, repo.slugs(), 2)

	require.NoError(t, svc.Delete(ctx, adminSession, post.ID))
	assert.ErrorIs(t, svc.Delete(ctx, adminSession, post.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, adminSession, post.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, adminSession, "never-existed"), domain.ErrNotFound)
	assert.Equal(t, []string{"stay"}, repo.slugs())
}

func TestResourceService_GetBySlug(t *testing.T) {
	ctx := context.Background()
	repo := newFakePageRepo()
	svc := NewResourceService(domain.PageSpec, repo, time.Second)
	draft := domain.NewPage("Membership", "", domain.StatusDraft)
	live := domain.NewPage("About", "", domain.StatusPublished)
	require.NoError(t, svc.Create(ctx, adminSession, draft))
	require.NoError(t, svc.Create(ctx, adminSession, live))

	got, err := svc.GetBySlug(ctx, anonSession, "about")
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)

	_, err = svc.GetBySlug(ctx, anonSession, "membership")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err = svc.GetBySlug(ctx, adminSession, "membership")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	_, err = svc.GetBySlug(ctx, anonSession, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResourceService_Get(t *testing.T) {
	ctx := context.Background()
	repo := newFakePageRepo()
	svc := NewResourceService(domain.PageSpec, repo, time.Second)
	pg := domain.NewPage("About", "", domain.StatusDraft)
	require.NoError(t, svc.Create(ctx, adminSession, pg))

	_, err := svc.Get(ctx, anonSession, pg.ID)
	assert.ErrorIs(t, err, domain.ErrAuthenticationRequired)

	got, err := svc.Get(ctx, adminSession, pg.ID)
	require.NoError(t, err)
	assert.Equal(t, "about", got.Slug)

	repo.getErr = errors.New("timeout")
	_, err = svc.Get(ctx, adminSession, pg.ID)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestResourceService_List_DraftsOnlyForAdmins(t *testing.T) {
	ctx := context.Background()
	repo := newFakePostRepo()
	svc := NewResourceService(domain.PostSpec, repo, time.Second)
	draft := domain.NewPost("Work in progress", "", domain.StatusDraft)
	live := domain.NewPost("Match report", "", domain.StatusPublished)
	require.NoError(t, svc.Create(ctx, adminSession, draft))
	require.NoError(t, svc.Create(ctx, adminSession, live))

	public, total, err := svc.List(ctx, anonSession, domain.ListFilter{Status: published()})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, public, 1)
	assert.Equal(t, live.ID, public[0].ID)

	_, _, err = svc.List(ctx, anonSession, domain.ListFilter{})
	assert.ErrorIs(t, err, domain.ErrAuthenticationRequired)

	all, total, err := svc.List(ctx, adminSession, domain.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)
}

func TestResourceService_List_UpcomingEvents(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewResourceService(domain.EventSpec, repo, time.Second)
	now := time.Now()

	past := domain.NewEvent("Winter Gala", domain.StatusPublished, now.Add(-30*24*time.Hour))
	later := domain.NewEvent("Summer Fair", domain.StatusPublished, now.Add(60*24*time.Hour))
	soon := domain.NewEvent("Spring Open", domain.StatusPublished, now.Add(7*24*time.Hour))
	hidden := domain.NewEvent("Secret Social", domain.StatusDraft, now.Add(24*time.Hour))
	for _, ev := range []*domain.Event{past, later, soon, hidden} {
		require.NoError(t, svc.Create(ctx, adminSession, ev))
	}

	upcoming, total, err := svc.List(ctx, anonSession, domain.ListFilter{Status: published(), Upcoming: true, Now: now})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, upcoming, 2)
	assert.Equal(t, soon.ID, upcoming[0].ID)
	assert.Equal(t, later.ID, upcoming[1].ID)

	general, _, err := svc.List(ctx, anonSession, domain.ListFilter{Status: published(), Now: now})
	require.NoError(t, err)
	require.Len(t, general, 3)
	assert.Equal(t, later.ID, general[0].ID)
	assert.Equal(t, past.ID, general[2].ID)
}

func TestResourceService_List_Errors(t *testing.T) {
	ctx := context.Background()
	repo := newFakePageRepo()
	repo.listErr = errors.New("db down")
	svc := NewResourceService(domain.PageSpec, repo, time.Second)

	_, _, err := svc.List(ctx, anonSession, domain.ListFilter{Status: published()})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
