package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pemira-app/pemira/internal/platform/httpx"
	"github.com/pemira-app/pemira/internal/policy"
	"github.com/pemira-app/pemira/internal/shared"
	"github.com/pemira-app/pemira/internal/view"
)

// Handler manages user management and profile endpoints.
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

// MountRoutes registers the admin user management routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Get("/{id}/edit", h.showEditForm)
	r.Post("/{id}/edit", h.updateAccount)
	r.Post("/{id}/delete", h.deleteUser)
}

// MountProfileRoutes registers the self-service profile routes.
func (h *Handler) MountProfileRoutes(r chi.Router) {
	r.Get("/", h.showProfile)
	r.Post("/", h.updateProfile)
}

type formErrors map[string]string

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.RequireRole(w, r, shared.RoleAdmin)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	list, pagination, err := h.service.List(r.Context(), page, 25)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		h.render(w, r, sess, "pages/users_list.html", map[string]any{"Errors": formErrors{"general": shared.UserSafeMessage(shared.ErrStoreUnavailable)}}, http.StatusInternalServerError)
		return
	}
	h.render(w, r, sess, "pages/users_list.html", map[string]any{"Users": list, "Pagination": pagination}, http.StatusOK)
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.RequireRole(w, r, shared.RoleAdmin)
	if !ok {
		return
	}
	user, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("get user failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, sess, "pages/users_form.html", map[string]any{"User": user, "Errors": formErrors{}}, http.StatusOK)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	sess, denied := h.guard.RequireAction(r)
	if denied != nil {
		httpx.JSON(w, http.StatusUnauthorized, denied)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid form payload")
		return
	}

	update := AccountUpdate{
		Name:      r.PostFormValue("name"),
		StudentID: r.PostFormValue("student_id"),
		Role:      shared.Role(r.PostFormValue("role")),
		IsActive:  r.PostFormValue("is_active") == "on",
	}
	if err := h.validator.Struct(update); err != nil {
		// Re-render the form with field errors and the submitted values so
		// the admin does not lose their input.
		errs := formErrors{}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				errs[fieldErr.Field()] = fieldErr.Error()
			}
		} else {
			errs["general"] = "formulir tidak valid"
		}
		user := &User{
			ID:        chi.URLParam(r, "id"),
			Name:      update.Name,
			StudentID: update.StudentID,
			Role:      update.Role,
			IsActive:  update.IsActive,
		}
		h.render(w, r, sess, "pages/users_form.html", map[string]any{"User": user, "Errors": errs}, http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateAccount(r.Context(), sess, chi.URLParam(r, "id"), update); err != nil {
		h.respondActionError(w, err)
		return
	}
	shared.SetFlash(w, shared.FlashMessage{Kind: "success", Message: "Akun berhasil diperbarui"})
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	sess, denied := h.guard.RequireAction(r)
	if denied != nil {
		httpx.JSON(w, http.StatusUnauthorized, denied)
		return
	}
	if err := h.service.Delete(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		h.respondActionError(w, err)
		return
	}
	shared.SetFlash(w, shared.FlashMessage{Kind: "success", Message: "Akun telah dihapus"})
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.RequireSession(w, r)
	if !ok {
		return
	}
	user, err := h.service.Get(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Error("load profile failed", slog.Any("error", err))
		h.render(w, r, sess, "pages/profile.html", map[string]any{"Errors": formErrors{"general": shared.UserSafeMessage(err)}}, http.StatusInternalServerError)
		return
	}
	h.render(w, r, sess, "pages/profile.html", map[string]any{"User": user, "Errors": formErrors{}}, http.StatusOK)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	sess, denied := h.guard.RequireAction(r)
	if denied != nil {
		httpx.JSON(w, http.StatusUnauthorized, denied)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid form payload")
		return
	}

	update := ProfileUpdate{
		Name:      r.PostFormValue("name"),
		StudentID: r.PostFormValue("student_id"),
	}
	if err := h.validator.Struct(update); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.UpdateProfile(r.Context(), sess, sess.UserID, update); err != nil {
		h.respondActionError(w, err)
		return
	}
	shared.SetFlash(w, shared.FlashMessage{Kind: "success", Message: "Profil berhasil diperbarui"})
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// respondActionError keeps authorization failures distinct from store
// failures: a store outage must never read as a denial.
func (h *Handler) respondActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		httpx.JSON(w, http.StatusUnauthorized, policy.ActionResult{Success: false, Error: policy.MsgNotAuthenticated})
	case errors.Is(err, ErrUnauthorized):
		httpx.JSON(w, http.StatusForbidden, policy.ActionResult{Success: false, Error: policy.MsgUnauthorized})
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
	default:
		h.logger.Error("user mutation failed", slog.Any("error", err))
		httpx.JSON(w, http.StatusInternalServerError, policy.ActionResult{Success: false, Error: shared.UserSafeMessage(shared.ErrStoreUnavailable)})
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, sess shared.Session, name string, data map[string]any, status int) {
	viewData := view.TemplateData{
		Title:       "Pengguna",
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
