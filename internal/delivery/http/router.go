package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "clubsite/docs"
	"clubsite/internal/delivery/http/controllers"
	"clubsite/internal/delivery/http/middleware"
	"clubsite/internal/domain"
)

// RouterDeps collects what NewRouter wires. Media may be nil when object
// storage is not configured; its routes are then not registered.
type RouterDeps struct {
	Logger      *slog.Logger
	Verifier    domain.TokenVerifier
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string

	Events  *controllers.EventController
	Posts   *controllers.PostController
	Pages   *controllers.PageController
	Auth    *controllers.AuthController
	Media   *controllers.MediaController
	Contact *controllers.ContactController
	Health  *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes and
// wraps it with the request middleware chain.
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(d.Verifier, d.Logger)
	optionalAuth := middleware.OptionalAuth(d.Verifier, d.Logger)
	limited := d.RateLimiter.Wrap

	// Events
	mux.HandleFunc("GET /events", optionalAuth(d.Events.ListEvents))
	mux.HandleFunc("GET /events/slug/{slug}", optionalAuth(d.Events.GetEventBySlug))
	mux.HandleFunc("GET /events/{id}", requireAuth(d.Events.GetEvent))
	mux.HandleFunc("POST /events", requireAuth(d.Events.CreateEvent))
	mux.HandleFunc("PATCH /events/{id}", requireAuth(d.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{id}", requireAuth(d.Events.DeleteEvent))

	// Posts
	mux.HandleFunc("GET /posts", optionalAuth(d.Posts.ListPosts))
	mux.HandleFunc("GET /posts/slug/{slug}", optionalAuth(d.Posts.GetPostBySlug))
	mux.HandleFunc("GET /posts/{id}", requireAuth(d.Posts.GetPost))
	mux.HandleFunc("POST /posts", requireAuth(d.Posts.CreatePost))
	mux.HandleFunc("PATCH /posts/{id}", requireAuth(d.Posts.UpdatePost))
	mux.HandleFunc("DELETE /posts/{id}", requireAuth(d.Posts.DeletePost))

	// Pages
	mux.HandleFunc("GET /pages", optionalAuth(d.Pages.ListPages))
	mux.HandleFunc("GET /pages/slug/{slug}", optionalAuth(d.Pages.GetPageBySlug))
	mux.HandleFunc("GET /pages/{id}", requireAuth(d.Pages.GetPage))
	mux.HandleFunc("POST /pages", requireAuth(d.Pages.CreatePage))
	mux.HandleFunc("PATCH /pages/{id}", requireAuth(d.Pages.UpdatePage))
	mux.HandleFunc("DELETE /pages/{id}", requireAuth(d.Pages.DeletePage))

	// Media
	if d.Media != nil {
		mux.HandleFunc("POST /media", requireAuth(d.Media.UploadMedia))
		mux.HandleFunc("GET /media", requireAuth(d.Media.ListMedia))
		mux.HandleFunc("DELETE /media/{id}", requireAuth(d.Media.DeleteMedia))
	}

	// Auth
	mux.HandleFunc("POST /auth/login", limited(d.Auth.Login))
	mux.HandleFunc("GET /auth/me", requireAuth(d.Auth.Me))

	// Contact
	mux.HandleFunc("POST /contact", limited(d.Contact.SubmitContact))

	// Operations
	mux.HandleFunc("GET /healthz", d.Health.Healthz)
	mux.HandleFunc("GET /readyz", d.Health.Readyz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Metrics wraps the mux directly so r.Pattern is visible after routing.
	var handler http.Handler = middleware.Metrics(mux)
	handler = middleware.CORS(d.CORSOrigins, handler)
	handler = middleware.LoggingMiddleware(d.Logger, handler)
	handler = middleware.RequestID(handler)
	return middleware.Recover(d.Logger, handler)
}
