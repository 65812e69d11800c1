package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pergola/internal/auth"
	"pergola/internal/store"
	"pergola/internal/testsupport"
)

func newService(t *testing.T) (*auth.Service, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	return auth.NewService(st, cfg), st
}

func createUser(t *testing.T, st *store.Store, email, password string) *store.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := st.CreateUser(context.Background(), &store.User{
		Email:        email,
		FullName:     "Test User",
		Role:         store.RoleUser,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestLoginSuccess(t *testing.T) {
	svc, st := newService(t)
	created := createUser(t, st, "ana@example.com", "correct horse battery")

	user, err := svc.Login(context.Background(), "ana@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("logged in as %q, want %q", user.ID, created.ID)
	}
}

func TestLoginBadPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, st := newService(t)
	createUser(t, st, "ana@example.com", "correct horse battery")
	ctx := context.Background()

	_, errWrong := svc.Login(ctx, "ana@example.com", "wrong password")
	_, errUnknown := svc.Login(ctx, "nobody@example.com", "whatever password")

	if !errors.Is(errWrong, auth.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrong)
	}
	if !errors.Is(errUnknown, auth.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Error("login failures must be indistinguishable")
	}
}

func TestInviteRoundtrip(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	token, err := svc.Invite("New.Hire@Example.com", store.RoleUser)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	user, err := svc.AcceptInvite(ctx, token, "New Hire", "a strong password")
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}
	if user.Email != "new.hire@example.com" {
		t.Errorf("email = %q, want lowercased invite email", user.Email)
	}
	if user.Role != store.RoleUser {
		t.Errorf("role = %q, want user", user.Role)
	}
	if user.InvitedAt == nil {
		t.Error("expected invited_at stamp")
	}

	logged, err := svc.Login(ctx, "new.hire@example.com", "a strong password")
	if err != nil {
		t.Fatalf("login after invite: %v", err)
	}
	if logged.ID != user.ID {
		t.Error("invite-created user cannot log in")
	}
}

func TestAcceptInviteTwiceConflicts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	token, err := svc.Invite("dup@example.com", store.RoleUser)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := svc.AcceptInvite(ctx, token, "First", "a strong password"); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := svc.AcceptInvite(ctx, token, "Second", "a strong password"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict on replay, got %v", err)
	}
}

func TestAcceptInviteExpired(t *testing.T) {
	svc, _ := newService(t)

	base := time.Now()
	svc.SetNow(func() time.Time { return base })
	token, err := svc.Invite("late@example.com", store.RoleUser)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	svc.SetNow(func() time.Time { return base.Add(73 * time.Hour) })
	if _, err := svc.AcceptInvite(context.Background(), token, "Late", "a strong password"); !errors.Is(err, auth.ErrInviteExpired) {
		t.Fatalf("expected ErrInviteExpired, got %v", err)
	}
}

func TestAcceptInviteRejectsGarbage(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.AcceptInvite(context.Background(), "not-a-token", "X", "a strong password"); !errors.Is(err, auth.ErrInviteInvalid) {
		t.Fatalf("expected ErrInviteInvalid, got %v", err)
	}
}

func TestInviteRejectsBadRole(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.Invite("x@example.com", "superuser"); err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestChangePassword(t *testing.T) {
	svc, st := newService(t)
	user := createUser(t, st, "ana@example.com", "original password")
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, user.ID, "wrong", "replacement pw"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "original password", "replacement pw"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "replacement pw"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "original password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	if _, err := auth.HashPassword("short"); err == nil {
		t.Fatal("expected error for short password")
	}
}
