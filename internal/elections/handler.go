package elections

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pemira-app/pemira/internal/platform/httpx"
	"github.com/pemira-app/pemira/internal/policy"
	"github.com/pemira-app/pemira/internal/shared"
	"github.com/pemira-app/pemira/internal/view"
)

// Handler manages election endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	guard     policy.Guard
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, guard policy.Guard) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		guard:     guard,
		validator: validator.New(),
	}
}

type formErrors map[string]string

// The datetime-local input format used by the management forms.
const formTimeLayout = "2006-01-02T15:04"

func (h *Handler) listElections(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.RequireSession(w, r)
	if !ok {
		return
	}
	list, err := h.service.ListForVoter(r.Context())
	if err != nil {
		h.logger.Error("list elections failed", slog.Any("error", err))
		h.render(w, r, sess, "pages/elections_list.html", "Pemilihan", map[string]any{"Errors": formErrors{"general": shared.UserSafeMessage(shared.ErrStoreUnavailable)}}, http.StatusInternalServerError)
		return
	}
	h.render(w, r, sess, "pages/elections_list.html", "Pemilihan", map[string]any{"Elections": list}, http.StatusOK)
}

func (h *Handler) showElection(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.RequireSession(w, r)
	if !ok {
		return
	}
	election, candidates, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("get election failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, sess, "pages/elections_detail.html", election.Title, map[string]any{
		"Election":   election,
		"Candidates": candidates,
		"Open":       h.service.IsOpen(*election),
	}, http.StatusOK)
}

func (h *Handler) listManaged(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.RequireRole(w, r, shared.RoleAdmin, shared.RoleStaff)
	if !ok {
		return
	}
	list, err := h.service.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list managed elections failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, sess, "pages/elections_manage.html", "Kelola Pemilihan", map[string]any{"Elections": list}, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.RequireRole(w, r, shared.RoleAdmin, shared.RoleStaff)
	if !ok {
		return
	}
	h.render(w, r, sess, "pages/elections_form.html", "Pemilihan Baru", map[string]any{"Errors": formErrors{}}, http.StatusOK)
}

func (h *Handler) createElection(w http.ResponseWriter, r *http.Request) {
	sess, denied := h.guard.RequireActionRole(r, shared.RoleAdmin, shared.RoleStaff)
	if denied != nil {
		httpx.JSON(w, http.StatusForbidden, denied)
		return
	}
	req, errs := h.parseElectionForm(r)
	if len(errs) > 0 {
		h.render(w, r, sess, "pages/elections_form.html", "Pemilihan Baru", map[string]any{"Errors": errs}, http.StatusBadRequest)
		return
	}
	election, err := h.service.Create(r.Context(), sess, req)
	if err != nil {
		h.logger.Error("create election failed", slog.Any("error", err))
		httpx.JSON(w, http.StatusInternalServerError, policy.ActionResult{Success: false, Error: shared.UserSafeMessage(shared.ErrStoreUnavailable)})
		return
	}
	shared.SetFlash(w, shared.FlashMessage{Kind: "success", Message: "Pemilihan berhasil dibuat"})
	http.Redirect(w, r, "/elections/manage/"+election.ID, http.StatusSeeOther)
}

func (h *Handler) showManageDetail(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.RequireRole(w, r, shared.RoleAdmin, shared.RoleStaff)
	if !ok {
		return
	}
	election, candidates, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("get election failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, sess, "pages/elections_manage_detail.html", election.Title, map[string]any{
		"Election":   election,
		"Candidates": candidates,
		"Errors":     formErrors{},
	}, http.StatusOK)
}

func (h *Handler) updateElection(w http.ResponseWriter, r *http.Request) {
	_, denied := h.guard.RequireActionRole(r, shared.RoleAdmin, shared.RoleStaff)
	if denied != nil {
		httpx.JSON(w, http.StatusForbidden, denied)
		return
	}
	req, errs := h.parseElectionForm(r)
	if len(errs) > 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "periksa kembali isian formulir")
		return
	}
	update := UpdateElectionRequest{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		IsPublished: r.PostFormValue("is_published") == "on",
	}
	id := chi.URLParam(r, "id")
	if err := h.service.Update(r.Context(), id, update); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "election not found")
			return
		}
		h.logger.Error("update election failed", slog.Any("error", err))
		httpx.JSON(w, http.StatusInternalServerError, policy.ActionResult{Success: false, Error: shared.UserSafeMessage(shared.ErrStoreUnavailable)})
		return
	}
	shared.SetFlash(w, shared.FlashMessage{Kind: "success", Message: "Pemilihan berhasil diperbarui"})
	http.Redirect(w, r, "/elections/manage/"+id, http.StatusSeeOther)
}

func (h *Handler) addCandidate(w http.ResponseWriter, r *http.Request) {
	_, denied := h.guard.RequireActionRole(r, shared.RoleAdmin, shared.RoleStaff)
	if denied != nil {
		httpx.JSON(w, http.StatusForbidden, denied)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid form payload")
		return
	}
	position, _ := strconv.Atoi(r.PostFormValue("position"))
	req := AddCandidateRequest{
		Name:     r.PostFormValue("name"),
		Vision:   r.PostFormValue("vision"),
		Position: position,
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := h.service.AddCandidate(r.Context(), id, req); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "election not found")
			return
		}
		h.logger.Error("add candidate failed", slog.Any("error", err))
		httpx.JSON(w, http.StatusInternalServerError, policy.ActionResult{Success: false, Error: shared.UserSafeMessage(shared.ErrStoreUnavailable)})
		return
	}
	shared.SetFlash(w, shared.FlashMessage{Kind: "success", Message: "Kandidat ditambahkan"})
	http.Redirect(w, r, "/elections/manage/"+id, http.StatusSeeOther)
}

func (h *Handler) parseElectionForm(r *http.Request) (CreateElectionRequest, formErrors) {
	errs := formErrors{}
	if err := r.ParseForm(); err != nil {
		errs["general"] = "formulir tidak valid"
		return CreateElectionRequest{}, errs
	}
	startsAt, err := time.Parse(formTimeLayout, r.PostFormValue("starts_at"))
	if err != nil {
		errs["StartsAt"] = "waktu mulai tidak valid"
	}
	endsAt, err := time.Parse(formTimeLayout, r.PostFormValue("ends_at"))
	if err != nil {
		errs["EndsAt"] = "waktu selesai tidak valid"
	}
	req := CreateElectionRequest{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		StartsAt:    startsAt,
		EndsAt:      endsAt,
	}
	if len(errs) == 0 {
		if err := h.validator.Struct(req); err != nil {
			for _, fieldErr := range err.(validator.ValidationErrors) {
				errs[fieldErr.Field()] = fieldErr.Error()
			}
		}
	}
	return req, errs
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, sess shared.Session, name, title string, data map[string]any, status int) {
	viewData := view.TemplateData{
		Title:       title,
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
