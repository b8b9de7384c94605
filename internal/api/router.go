package api

import (
	"context"
	"net/http"
	"time"

	"legalchat-backend/internal/auth"
	"legalchat-backend/internal/handlers"
	"legalchat-backend/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	AuthHandler         *handlers.AuthHandler
	ConversationHandler *handlers.ConversationHandler
	MessageHandler      *handlers.MessageHandler

	Sessions SessionResolver
	Cookies  auth.CookieConfig
	Store    Pinger
	Metrics  *metrics.Metrics
	Logger   *zap.Logger

	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	if deps.AuthHandler == nil || deps.ConversationHandler == nil || deps.MessageHandler == nil {
		panic("handler dependency is nil in router setup")
	}
	timeout := deps.RequestTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID) // Inject request ID into context
	r.Use(middleware.RealIP)    // Use X-Forwarded-For or X-Real-IP
	r.Use(RequestLogger(deps.Logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(deps.Metrics.Middleware)
	r.Use(middleware.Timeout(timeout))

	// --- CORS Configuration ---
	// The browser client sends the session cookie cross-origin, so credentials are allowed.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// --- Public Routes ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.Store != nil {
			if err := deps.Store.Ping(r.Context()); err != nil {
				deps.Logger.Warn("Health check failed", zap.Error(err))
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK")) //nolint:errcheck
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	mountDocs(r, deps.Logger.Named("docs"))

	r.Route("/api", func(r chi.Router) {
		r.Use(SessionMiddleware(deps.Cookies, deps.Sessions, deps.Logger.Named("session")))

		r.Group(func(r chi.Router) {
			r.Use(RequireAnonymous)
			r.Post("/signup", deps.AuthHandler.HandleSignup)
			r.Post("/login", deps.AuthHandler.HandleLogin)
		})
		r.Post("/logout", deps.AuthHandler.HandleLogout)
		r.Get("/auth/status", deps.AuthHandler.HandleStatus)

		// --- Authenticated Routes ---
		r.Group(func(r chi.Router) {
			r.Use(RequireAuthenticated)

			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", deps.ConversationHandler.HandleCreateConversation)
				r.Get("/", deps.ConversationHandler.HandleListConversations)
				r.Get("/{id}", deps.ConversationHandler.HandleGetConversation)
				r.Put("/{id}", deps.ConversationHandler.HandleUpdateConversation)
				r.Delete("/{id}", deps.ConversationHandler.HandleDeleteConversation)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", deps.MessageHandler.HandleCreateMessage)
				// GET takes a conversation id, DELETE a message id; chi needs one wildcard name.
				r.Get("/{id}", deps.MessageHandler.HandleListMessages)
				r.Delete("/{id}", deps.MessageHandler.HandleDeleteMessage)
			})
		})
	})

	return r
}
