package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// Notify queues a toast on the request session. It is a no-op without a session.
func Notify(ctx context.Context, kind, message, description string) {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return
	}
	sess.AddFlash(FlashMessage{Kind: kind, Message: message, Description: description})
}
