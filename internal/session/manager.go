package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pergola/internal/config"
	"pergola/internal/store"
)

const issuer = "pergola"

// Sentinel errors for session verification.
var (
	// ErrNoSession indicates the request carried no session token.
	ErrNoSession = errors.New("no session")
	// ErrSessionExpired indicates an expired or inactivity-timed-out session.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionInvalid indicates a malformed or tampered token.
	ErrSessionInvalid = errors.New("session invalid")
)

// Session is the verified identity carried by a session token.
type Session struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Manager signs and verifies session tokens.
type Manager struct {
	secret     []byte
	ttl        time.Duration
	inactivity time.Duration
	now        func() time.Time
}

// NewManager builds a session manager from configuration. The config is
// assumed validated: a non-empty secret and positive durations.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		secret:     []byte(cfg.Session.Secret),
		ttl:        time.Duration(cfg.Session.TTLHours) * time.Hour,
		inactivity: time.Duration(cfg.Session.InactivityMinutes) * time.Minute,
		now:        time.Now,
	}
}

// InactivityTimeout returns the configured idle limit.
func (m *Manager) InactivityTimeout() time.Duration {
	return m.inactivity
}

// Issue signs a session token for the user.
func (m *Manager) Issue(user *store.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("user required")
	}
	now := m.now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Email: user.Email,
		Role:  user.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token.
func (m *Manager) Verify(token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoSession
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}
	if claims.Subject == "" {
		return nil, ErrSessionInvalid
	}

	session := &Session{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
