package session

import (
	"net/http"
	"strconv"
	"time"
)

// Cookie names shared by the server and its clients.
const (
	CookieName         = "pergola_session"
	ActivityCookieName = "pergola_last_activity"
)

// SetCookies writes the session token and a fresh last-activity stamp.
func (m *Manager) SetCookies(w http.ResponseWriter, token string) {
	now := m.now().UTC()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	m.touch(w, now)
}

// ClearCookies expires both session cookies.
func ClearCookies(w http.ResponseWriter) {
	for _, name := range []string{CookieName, ActivityCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// touch refreshes the last-activity cookie.
func (m *Manager) touch(w http.ResponseWriter, now time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     ActivityCookieName,
		Value:    strconv.FormatInt(now.Unix(), 10),
		Path:     "/",
		Expires:  now.Add(m.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// lastActivity reads the last-activity stamp from the request. ok is false
// when the cookie is missing or unparseable.
func lastActivity(r *http.Request) (time.Time, bool) {
	cookie, err := r.Cookie(ActivityCookieName)
	if err != nil {
		return time.Time{}, false
	}
	unix, err := strconv.ParseInt(cookie.Value, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0).UTC(), true
}
