// Package httpapi exposes the DadKeeper services as a JSON HTTP API.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/dadkeeper/internal/logging"
	"github.com/dmitrijs2005/dadkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
	"github.com/dmitrijs2005/dadkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Me(ctx context.Context, caller services.Caller) (*models.User, error)
	DeleteAccount(ctx context.Context, caller services.Caller) error
}

type ProfileService interface {
	Get(ctx context.Context, caller services.Caller) (*models.Profile, error)
	Upsert(ctx context.Context, caller services.Caller, in services.UpsertProfileInput) (*models.Profile, error)
}

type JournalService interface {
	List(ctx context.Context, caller services.Caller) ([]*models.JournalEntry, error)
	Get(ctx context.Context, caller services.Caller, id string) (*models.JournalEntry, error)
	Create(ctx context.Context, caller services.Caller, in services.CreateJournalInput) (*models.JournalEntry, error)
	Update(ctx context.Context, caller services.Caller, id string, in services.UpdateJournalInput) (*models.JournalEntry, error)
	Delete(ctx context.Context, caller services.Caller, id string) error
}

type DraftService interface {
	List(ctx context.Context, caller services.Caller) ([]*models.AiDraft, error)
	Get(ctx context.Context, caller services.Caller, id string) (*models.AiDraft, error)
	Create(ctx context.Context, caller services.Caller, in services.CreateDraftInput) (*models.AiDraft, error)
	Update(ctx context.Context, caller services.Caller, id string, in services.UpdateDraftInput) (*models.AiDraft, error)
}

type RewriteService interface {
	Rewrite(ctx context.Context, caller services.Caller, in services.RewriteInput) (*services.RewriteOutput, error)
}

type TemplateService interface {
	Record(ctx context.Context, caller services.Caller, in services.RecordTemplateInput) (*services.TemplateDownload, error)
	List(ctx context.Context, caller services.Caller) ([]*models.TemplateUse, error)
}

// Services are the application services the handlers call.
type Services struct {
	Users     UserService
	Profiles  ProfileService
	Journals  JournalService
	Drafts    DraftService
	Rewrite   RewriteService
	Templates TemplateService
}

// Options configures NewRouter.
type Options struct {
	SecretKey      []byte
	CORSOrigins    []string
	RewriteLimiter *RateLimiter
	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready func(ctx context.Context) error
}

type Handler struct {
	svc    Services
	logger logging.Logger
}

// NewRouter builds the HTTP handler: public auth and ops routes plus the
// authenticated /api routes.
func NewRouter(svc Services, opts Options, logger logging.Logger) http.Handler {
	h := &Handler{svc: svc, logger: logger.With("module", "http")}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(h.logger))
	r.Use(loggingMiddleware(h.logger))
	r.Use(metrics.InstrumentHandler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}) })
	r.Get("/readyz", h.ready(opts.Ready))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
		r.Post("/auth/refresh", h.refresh)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(opts.SecretKey))

			r.Get("/auth/me", h.me)
			r.Delete("/auth/me", h.deleteAccount)

			r.Get("/profile", h.getProfile)
			r.Post("/profile", h.upsertProfile)

			r.Route("/journals", func(r chi.Router) {
				r.Get("/", h.listJournals)
				r.Post("/", h.createJournal)
				r.Get("/{id}", h.getJournal)
				r.Patch("/{id}", h.updateJournal)
				r.Delete("/{id}", h.deleteJournal)
			})

			r.Route("/drafts", func(r chi.Router) {
				r.Get("/", h.listDrafts)
				r.Post("/", h.createDraft)
				r.Get("/{id}", h.getDraft)
				r.Patch("/{id}", h.updateDraft)
			})

			r.Group(func(r chi.Router) {
				if opts.RewriteLimiter != nil {
					r.Use(opts.RewriteLimiter.Handler)
				}
				r.Post("/ai/rewrite", h.rewrite)
			})

			r.Route("/toolkit", func(r chi.Router) {
				r.Get("/phases", h.listPhases)
				r.Get("/phases/{phase}", h.getPhase)
				r.Get("/prompts", h.listPrompts)
				r.Get("/disclaimers", h.listDisclaimers)
				r.Get("/templates", h.listTemplateCatalog)
			})

			r.Get("/templates", h.listTemplateUses)
			r.Post("/templates", h.recordTemplateUse)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	return r
}

func (h *Handler) ready(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				h.logger.Warn(r.Context(), "readiness check failed", "error", err)
				writeError(w, http.StatusServiceUnavailable, "NOT_READY", "dependencies unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
