package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the resolved session in context.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context. Requests that never
// passed through the session middleware resolve to the anonymous session.
func SessionFromContext(ctx context.Context) Session {
	sess, ok := ctx.Value(sessionContextKey{}).(Session)
	if !ok {
		return Anonymous()
	}
	return sess
}
