// Package auth carries the logged in user through a request's context.
package auth

import (
	"context"

	"github.com/dukerupert/homedash/internal/model"
)

type contextKey struct{}

// Session identifies who is logged in. Passwords never enter the context.
type Session struct {
	Email string
	Name  string
}

// SessionFor returns the Session of u.
func SessionFor(u model.User) Session {
	return Session{Email: u.Email, Name: u.Name}
}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

// Email returns the logged in email, or "" outside a session.
func Email(ctx context.Context) string {
	s, _ := FromContext(ctx)
	return s.Email
}

// Name returns the logged in display name, or "" outside a session.
func Name(ctx context.Context) string {
	s, _ := FromContext(ctx)
	return s.Name
}
