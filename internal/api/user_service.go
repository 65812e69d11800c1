package api

import (
	"context"
	"fmt"
	"strings"

	"pergola/internal/store"
)

// ListUsers returns all operator accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(users))
	for _, user := range users {
		out = append(out, FromUser(user))
	}
	return out, nil
}

// InviteUser mints an invite token for a new account.
func (s *Service) InviteUser(ctx context.Context, req InviteRequest) (string, error) {
	if strings.TrimSpace(req.Email) == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	role := req.Role
	if role == "" {
		role = store.RoleUser
	}
	if !store.ValidRole(role) {
		return "", fmt.Errorf("%w: invalid role %q", ErrValidation, role)
	}
	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return "", fmt.Errorf("user %s: %w", strings.ToLower(req.Email), store.ErrConflict)
	}
	return s.auth.Invite(req.Email, role)
}

// AcceptInvite redeems an invite token and creates the account.
func (s *Service) AcceptInvite(ctx context.Context, req AcceptInviteRequest) (*User, error) {
	if strings.TrimSpace(req.Token) == "" {
		return nil, fmt.Errorf("%w: token is required", ErrValidation)
	}
	user, err := s.auth.AcceptInvite(ctx, req.Token, req.FullName, req.Password)
	if err != nil {
		return nil, err
	}
	dto := FromUser(user)
	return &dto, nil
}

// SetUserRole changes an account's role.
func (s *Service) SetUserRole(ctx context.Context, id, role string) (*User, error) {
	if !store.ValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, role)
	}
	if err := s.store.SetUserRole(ctx, id, role); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromUser(user)
	return &dto, nil
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.store.DeleteUser(ctx, id)
}
