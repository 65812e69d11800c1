package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pergola/internal/config"
	"pergola/internal/store"
)

// Invite token errors.
var (
	// ErrInviteInvalid indicates a malformed or tampered invite token.
	ErrInviteInvalid = errors.New("invite invalid")
	// ErrInviteExpired indicates the invite's acceptance window has passed.
	ErrInviteExpired = errors.New("invite expired")
)

const invitePurpose = "invite"

type inviteClaims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// Service verifies credentials and manages invite-based onboarding.
type Service struct {
	store     *store.Store
	secret    []byte
	inviteTTL time.Duration
	now       func() time.Time
}

// NewService builds the auth service from validated configuration.
func NewService(st *store.Store, cfg *config.Config) *Service {
	return &Service{
		store:     st,
		secret:    []byte(cfg.Session.Secret),
		inviteTTL: time.Duration(cfg.Admin.InviteHours) * time.Hour,
		now:       time.Now,
	}
}

// Login verifies an email/password pair and returns the matching user.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !checkPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Invite mints a signed token inviting the email to join with the given role.
func (s *Service) Invite(email, role string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("invite email required")
	}
	if !store.ValidRole(role) {
		return "", fmt.Errorf("invalid role %q", role)
	}

	now := s.now().UTC()
	claims := inviteClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "pergola",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.inviteTTL)),
		},
		Purpose: invitePurpose,
		Email:   email,
		Role:    role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign invite token: %w", err)
	}
	return signed, nil
}

// AcceptInvite redeems an invite token, creating the user with the invited
// role and the chosen password. Redeeming the same invite twice fails with
// store.ErrConflict because the email already exists.
func (s *Service) AcceptInvite(ctx context.Context, token, fullName, password string) (*store.User, error) {
	claims, err := s.verifyInvite(token)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	invitedAt := s.now().UTC()
	if claims.IssuedAt != nil {
		invitedAt = claims.IssuedAt.Time
	}
	user, err := s.store.CreateUser(ctx, &store.User{
		Email:        claims.Email,
		FullName:     strings.TrimSpace(fullName),
		Role:         claims.Role,
		PasswordHash: hash,
		InvitedAt:    &invitedAt,
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) verifyInvite(token string) (*inviteClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInviteInvalid
	}

	var claims inviteClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("pergola"),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrInviteExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInviteInvalid, err)
	}
	if claims.Purpose != invitePurpose || claims.Email == "" || !store.ValidRole(claims.Role) {
		return nil, ErrInviteInvalid
	}
	return &claims, nil
}

// ChangePassword replaces a user's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.store.SetUserPassword(ctx, user.ID, hash)
}
