package entity

import (
	"errors"
	"testing"
	"time"
)

func TestStateMarkDeleted(t *testing.T) {
	s := StateActive
	if err := s.MarkDeleted(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != StateDeleted || s.IsActive() {
		t.Fatalf("want deleted, got %q", s)
	}
	if err := s.MarkDeleted(); !errors.Is(err, ErrAlreadyDeleted) {
		t.Fatalf("want ErrAlreadyDeleted, got %v", err)
	}
}

func TestStateMarkDeleted_ZeroValueIsNotActive(t *testing.T) {
	var s State
	if err := s.MarkDeleted(); !errors.Is(err, ErrAlreadyDeleted) {
		t.Fatalf("want ErrAlreadyDeleted for zero state, got %v", err)
	}
}

func TestUserIdentityOmitsHash(t *testing.T) {
	u := User{UserID: "alice", PasswordHash: "$2a$...", Email: "a@example.com", Admin: true}
	id := u.Identity()
	if id != (Identity{UserID: "alice", Email: "a@example.com", Admin: true}) {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Minute)}
	if s.Expired(now) {
		t.Fatal("session should be live")
	}
	if !s.Expired(now.Add(time.Minute)) {
		t.Fatal("session should be expired at its deadline")
	}
}
