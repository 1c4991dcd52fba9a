package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pemira-app/pemira/internal/policy"
	"github.com/pemira-app/pemira/internal/shared"
	"github.com/pemira-app/pemira/internal/view"
)

// Handler serves the authenticated landing page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	guard     policy.Guard
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, guard policy.Guard) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		guard:     guard,
	}
}

// MountRoutes registers the dashboard route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showDashboard)
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.RequireSession(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Load(r.Context(), sess)
	data := map[string]any{"Summary": summary}
	status := http.StatusOK
	if err != nil {
		h.logger.Error("load dashboard failed", slog.Any("error", err))
		data["Errors"] = map[string]string{"general": shared.UserSafeMessage(shared.ErrStoreUnavailable)}
		status = http.StatusInternalServerError
	}
	viewData := view.TemplateData{
		Title:       "Dasbor",
		CSRFToken:   h.csrf.EnsureToken(sess),
		Flash:       shared.PopFlash(w, r),
		Session:     sess,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.logger.Error("render template", slog.String("template", "pages/dashboard.html"), slog.Any("error", err))
	}
}
