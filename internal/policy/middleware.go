package policy

import (
	"log/slog"
	"net/http"

	"github.com/pemira-app/pemira/internal/shared"
)

// EdgeGate returns the earliest authorization checkpoint. It runs before any
// page handler, reads only request-local cookie data, and applies the coarse
// public/authenticated policy. It never touches the database or redis, so it
// stays cheap enough to gate every request.
func EdgeGate(p *Policy, sessions *shared.SessionManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsBypassed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			sess := sessions.Resolve(r)
			decision := p.DecideEdge(sess, r.URL.Path)
			if decision.Kind == Redirect {
				if logger != nil {
					logger.Debug("edge gate redirect",
						slog.String("path", r.URL.Path),
						slog.String("to", decision.Location))
				}
				http.Redirect(w, r, decision.Location, http.StatusSeeOther)
				return
			}

			ctx := shared.ContextWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
