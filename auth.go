package atelier

import (
	"context"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator reports who is acting on a request.
type Authenticator interface {
	Identity(ctx context.Context) (string, bool)
}

type identityKey struct{}

// WithIdentity returns a context carrying an authenticated identity.
func WithIdentity(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// ContextAuth reads the identity stored by WithIdentity. The admin session
// middleware attaches it to every authenticated request.
type ContextAuth struct{}

// Identity implements Authenticator.
func (ContextAuth) Identity(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey{}).(string)
	return id, ok && id != ""
}

// checkPassword compares pass against the configured admin credential. A
// bcrypt hash takes precedence over the plain password.
func checkPassword(cfg SiteConfig, pass string) bool {
	if cfg.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(pass)) == nil
	}
	if cfg.AdminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(cfg.AdminPassword)) == 1
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(pass string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(pass)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
