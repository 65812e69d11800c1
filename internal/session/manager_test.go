package session_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"pergola/internal/session"
	"pergola/internal/store"
	"pergola/internal/testsupport"
)

func testUser() *store.User {
	return &store.User{
		ID:    "user-1",
		Email: "ana@example.com",
		Role:  store.RoleAdmin,
	}
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := session.NewManager(cfg)

	token, err := mgr.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	sess, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sess.UserID != "user-1" || sess.Email != "ana@example.com" || sess.Role != store.RoleAdmin {
		t.Errorf("unexpected session: %+v", sess)
	}
	if sess.ExpiresAt.IsZero() {
		t.Error("expected expiry on session")
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := session.NewManager(cfg)

	other := testsupport.NewConfig(t)
	other.Session.Secret = "a-completely-different-secret"
	foreign := session.NewManager(other)

	token, err := foreign.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := mgr.Verify(token); !errors.Is(err, session.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := session.NewManager(cfg)

	base := time.Now()
	mgr.SetNow(func() time.Time { return base })
	token, err := mgr.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour
	mgr.SetNow(func() time.Time { return base.Add(ttl + time.Minute) })
	if _, err := mgr.Verify(token); !errors.Is(err, session.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestVerifyRejectsEmptyToken(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := session.NewManager(cfg)
	if _, err := mgr.Verify(""); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func middlewareProbe(t *testing.T, mgr *session.Manager) (http.Handler, *bool, **session.Session) {
	t.Helper()
	reached := false
	var seen *session.Session
	handler := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if sess, ok := session.FromContext(r.Context()); ok {
			seen = sess
		}
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &reached, &seen
}

func TestMiddlewareRejectsAnonymousRequests(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := session.NewManager(cfg)
	handler, reached, _ := middlewareProbe(t, mgr)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if *reached {
		t.Error("handler must not run for anonymous request")
	}
}

func TestMiddlewarePassesActiveSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := session.NewManager(cfg)
	handler, reached, seen := middlewareProbe(t, mgr)

	token, err := mgr.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	req.AddCookie(&http.Cookie{
		Name:  session.ActivityCookieName,
		Value: strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10),
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !*reached {
		t.Fatal("handler did not run")
	}
	if *seen == nil || (*seen).UserID != "user-1" {
		t.Errorf("session not attached to context: %+v", *seen)
	}

	refreshed := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.ActivityCookieName && cookie.Value != "" {
			refreshed = true
		}
	}
	if !refreshed {
		t.Error("expected last-activity cookie to be refreshed")
	}
}

func TestMiddlewareEnforcesInactivityTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithInactivityMinutes(30))
	mgr := session.NewManager(cfg)
	handler, reached, _ := middlewareProbe(t, mgr)

	token, err := mgr.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	req.AddCookie(&http.Cookie{
		Name:  session.ActivityCookieName,
		Value: strconv.FormatInt(time.Now().Add(-45*time.Minute).Unix(), 10),
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if *reached {
		t.Error("handler must not run for idle session")
	}

	cleared := 0
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.CookieName || cookie.Name == session.ActivityCookieName {
			if cookie.MaxAge < 0 {
				cleared++
			}
		}
	}
	if cleared != 2 {
		t.Errorf("expected both cookies cleared, got %d", cleared)
	}
}
