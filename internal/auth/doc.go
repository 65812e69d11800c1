// Package auth handles credential verification and user onboarding. Passwords
// are stored as bcrypt hashes; new users join through signed invite tokens
// minted by an admin.
package auth
