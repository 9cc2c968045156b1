package auth

import (
	"context"
	"testing"

	"github.com/dukerupert/homedash/internal/model"
)

func TestNewContextAndFromContext(t *testing.T) {
	s := SessionFor(model.User{Name: "Demo User", Email: "admin@example.com", Password: "1234"})

	got, ok := FromContext(NewContext(context.Background(), s))
	if !ok {
		t.Fatal("expected Session in context")
	}
	if got.Email != "admin@example.com" || got.Name != "Demo User" {
		t.Errorf("got %+v", got)
	}
}

func TestAccessors(t *testing.T) {
	ctx := NewContext(context.Background(), Session{Email: "a@example.com", Name: "Ann"})
	if Email(ctx) != "a@example.com" {
		t.Errorf("Email = %q, want a@example.com", Email(ctx))
	}
	if Name(ctx) != "Ann" {
		t.Errorf("Name = %q, want Ann", Name(ctx))
	}
}

func TestOutsideSession(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Error("expected no Session")
	}
	if Email(ctx) != "" || Name(ctx) != "" {
		t.Error("expected empty accessors outside a session")
	}
}
