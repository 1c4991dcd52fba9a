package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pemira-app/pemira/internal/auth"
	"github.com/pemira-app/pemira/internal/dashboard"
	"github.com/pemira-app/pemira/internal/elections"
	"github.com/pemira-app/pemira/internal/observability"
	"github.com/pemira-app/pemira/internal/policy"
	"github.com/pemira-app/pemira/internal/shared"
	"github.com/pemira-app/pemira/internal/users"
	"github.com/pemira-app/pemira/internal/view"
	"github.com/pemira-app/pemira/internal/votes"
	"github.com/pemira-app/pemira/jobs"
	"github.com/pemira-app/pemira/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	Policy           *policy.Policy
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	ElectionsHandler *elections.Handler
	VotesHandler     *votes.Handler
	DashboardHandler *dashboard.Handler
	JobsHandler      *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Pemira defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		Policy:         params.Policy,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// The edge gate already sends authenticated visitors from "/" to the
	// dashboard, so the landing page only ever renders for guests.
	r.Get("/", staticPage(params, "pages/landing.html", "Pemira"))
	r.Get("/about", staticPage(params, "pages/about.html", "Tentang Pemira"))
	r.Get("/faq", staticPage(params, "pages/faq.html", "Pertanyaan Umum"))
	r.Get("/terms", staticPage(params, "pages/terms.html", "Ketentuan Layanan"))
	r.Get("/privacy", staticPage(params, "pages/privacy.html", "Kebijakan Privasi"))

	params.AuthHandler.MountRoutes(r)
	r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/profile", params.UsersHandler.MountProfileRoutes)
	r.Route("/elections", func(r chi.Router) {
		params.ElectionsHandler.MountRoutes(r)
		params.VotesHandler.MountRoutes(r)
	})
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

func staticPage(params RouterParams, template, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		data := view.TemplateData{
			Title:       title,
			CSRFToken:   params.CSRFManager.EnsureToken(sess),
			Flash:       shared.PopFlash(w, r),
			Session:     sess,
			CurrentPath: r.URL.Path,
			Data: map[string]any{
				"AppEnv": params.Config.AppEnv,
			},
		}
		if err := params.Templates.Render(w, template, data); err != nil {
			params.Logger.Error("render page", slog.String("template", template), slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers so the
// browser keeps CSS and images for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
