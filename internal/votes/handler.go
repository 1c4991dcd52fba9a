package votes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pemira-app/pemira/internal/policy"
	"github.com/pemira-app/pemira/internal/shared"
	"github.com/pemira-app/pemira/internal/view"
)

// Handler manages ballot casting and result pages.
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

// MountRoutes registers ballot routes under the elections subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/{id}/vote", h.castVote)
	r.Get("/{id}/results", h.showResults)
}

func (h *Handler) castVote(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.RequireSession(w, r)
	if !ok {
		return
	}
	electionID := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	candidateID := r.PostFormValue("candidate_id")
	if candidateID == "" {
		shared.SetFlash(w, shared.FlashMessage{Kind: "error", Message: "Pilih salah satu kandidat terlebih dahulu"})
		http.Redirect(w, r, "/elections/"+electionID, http.StatusSeeOther)
		return
	}

	vote, err := h.service.Cast(r.Context(), sess, electionID, candidateID)
	switch {
	case err == nil:
		h.logger.Info("suara tercatat",
			slog.String("election_id", electionID),
			slog.String("vote_id", vote.ID))
		shared.SetFlash(w, shared.FlashMessage{Kind: "success", Message: "Suara Anda telah tercatat"})
		http.Redirect(w, r, "/elections/"+electionID+"/results", http.StatusSeeOther)
	case errors.Is(err, ErrAlreadyVoted):
		shared.SetFlash(w, shared.FlashMessage{Kind: "error", Message: "Anda sudah memberikan suara pada pemilihan ini"})
		http.Redirect(w, r, "/elections/"+electionID+"/results", http.StatusSeeOther)
	case errors.Is(err, ErrElectionClosed):
		shared.SetFlash(w, shared.FlashMessage{Kind: "error", Message: "Pemilihan sedang tidak menerima suara"})
		http.Redirect(w, r, "/elections/"+electionID, http.StatusSeeOther)
	case errors.Is(err, shared.ErrNotFound):
		http.NotFound(w, r)
	default:
		h.logger.Error("cast vote failed", slog.String("election_id", electionID), slog.Any("error", err))
		shared.SetFlash(w, shared.FlashMessage{Kind: "error", Message: shared.UserSafeMessage(shared.ErrStoreUnavailable)})
		http.Redirect(w, r, "/elections/"+electionID, http.StatusSeeOther)
	}
}

func (h *Handler) showResults(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.RequireSession(w, r)
	if !ok {
		return
	}
	electionID := chi.URLParam(r, "id")
	tally, err := h.service.Results(r.Context(), electionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("load results failed", slog.String("election_id", electionID), slog.Any("error", err))
		h.render(w, r, sess, "pages/elections_results.html", map[string]any{
			"Errors": map[string]string{"general": shared.UserSafeMessage(shared.ErrStoreUnavailable)},
		}, http.StatusInternalServerError)
		return
	}
	var total int64
	for _, entry := range tally {
		total += entry.Count
	}
	h.render(w, r, sess, "pages/elections_results.html", map[string]any{
		"ElectionID": electionID,
		"Tally":      tally,
		"Total":      total,
	}, http.StatusOK)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, sess shared.Session, name string, data map[string]any, status int) {
	viewData := view.TemplateData{
		Title:       "Hasil Pemilihan",
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
	if err := h.templates.Render(w, name, viewData); err != nil {
		h.logger.Error("render template", slog.String("template", name), slog.Any("error", err))
	}
}
