package session

import "context"

// User is the identity record carried by the ambient session.
type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Name string `json:"name"`
}

// Session holds the credential and identity attached to a request.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

type contextKey struct{}

// NewContext returns a context carrying the given session.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached to ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
