package policy

import (
	"log/slog"
	"net/http"

	"github.com/pemira-app/pemira/internal/shared"
)

// Action error messages returned to form-submission handlers. Actions get a
// structured result rather than a navigation.
const (
	MsgNotAuthenticated = "Not authenticated"
	MsgUnauthorized     = "Unauthorized"
)

// ActionResult is the structured outcome of a guarded mutation.
type ActionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Guard is the in-handler authorization checkpoint. It re-resolves the session
// from the request instead of trusting anything decided at the edge: the edge
// gate and the handler may run in different process contexts.
type Guard struct {
	Policy   *Policy
	Sessions *shared.SessionManager
	Logger   *slog.Logger
}

// RequireSession enforces the full policy for a page request. When the request
// is not allowed it writes the redirect and returns ok=false; handlers must
// return immediately in that case.
func (g Guard) RequireSession(w http.ResponseWriter, r *http.Request) (shared.Session, bool) {
	sess := g.Sessions.Resolve(r)
	decision := g.Policy.Decide(sess, r.URL.Path)
	if decision.Kind == Redirect {
		http.Redirect(w, r, decision.Location, http.StatusSeeOther)
		return shared.Anonymous(), false
	}
	if sess.IsAnonymous() {
		http.Redirect(w, r, LandingPath, http.StatusSeeOther)
		return shared.Anonymous(), false
	}
	return sess, true
}

// RequireRole enforces a specific role set on top of RequireSession.
// Authenticated sessions with an insufficient role are demoted to the
// dashboard rather than denied outright.
func (g Guard) RequireRole(w http.ResponseWriter, r *http.Request, roles ...shared.Role) (shared.Session, bool) {
	sess, ok := g.RequireSession(w, r)
	if !ok {
		return sess, false
	}
	if !roleIn(sess.Role, roles) {
		if g.Logger != nil {
			g.Logger.Warn("role check failed",
				slog.String("path", r.URL.Path),
				slog.String("role", string(sess.Role)))
		}
		http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
		return shared.Anonymous(), false
	}
	return sess, true
}

// RequireAction authorizes a mutating action handler. It must run before any
// repository call, regardless of what the edge gate already decided.
func (g Guard) RequireAction(r *http.Request) (shared.Session, *ActionResult) {
	sess := g.Sessions.Resolve(r)
	if sess.IsAnonymous() {
		return shared.Anonymous(), &ActionResult{Success: false, Error: MsgNotAuthenticated}
	}
	return sess, nil
}

// RequireActionRole authorizes a mutating action restricted to specific roles.
func (g Guard) RequireActionRole(r *http.Request, roles ...shared.Role) (shared.Session, *ActionResult) {
	sess, res := g.RequireAction(r)
	if res != nil {
		return sess, res
	}
	if !roleIn(sess.Role, roles) {
		return sess, &ActionResult{Success: false, Error: MsgUnauthorized}
	}
	return sess, nil
}

// CanMutateUser reports whether the session may modify the target user's
// record: admins may modify anyone, everyone else only themselves.
func CanMutateUser(sess shared.Session, targetUserID string) bool {
	if sess.IsAnonymous() {
		return false
	}
	return sess.Role == shared.RoleAdmin || sess.UserID == targetUserID
}

// CanDeleteUser reports whether the session may delete the target user's
// record. Deletion is admin-only, and an admin may not delete their own
// account through this path.
func CanDeleteUser(sess shared.Session, targetUserID string) bool {
	if sess.IsAnonymous() {
		return false
	}
	return sess.Role == shared.RoleAdmin && sess.UserID != targetUserID
}
