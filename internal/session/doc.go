// Package session issues and verifies browser session tokens and enforces
// the inactivity timeout. A session is two cookies: a signed JWT naming the
// user, and a last-activity timestamp refreshed on every authenticated
// request. When the gap between requests exceeds the configured timeout the
// middleware clears both cookies and rejects the request.
package session
