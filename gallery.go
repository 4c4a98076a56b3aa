package atelier

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/gommon/log"

	"github.com/eringen/atelier/records"
)

// GalleryAccess is what a visitor receives after unlocking a story.
type GalleryAccess struct {
	GalleryURL string    `json:"gallery_url"`
	Token      string    `json:"token,omitempty"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
}

// galleryClaims bind a token to one project and to the code that was valid
// when it was issued. Changing the code invalidates outstanding tokens.
type galleryClaims struct {
	CodeFingerprint string `json:"cfp"`
	jwt.RegisteredClaims
}

// GalleryGate checks access codes for locked stories on the server. Codes
// never reach the browser.
type GalleryGate struct {
	projects *records.Repository[Project]
	limiter  *LoginLimiter
	metrics  *Metrics
	logger   *log.Logger
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewGalleryGate returns a gate signing tokens with secret. limiter may be
// nil to disable attempt limiting.
func NewGalleryGate(store *Store, secret string, ttl time.Duration, limiter *LoginLimiter, metrics *Metrics, logger *log.Logger) *GalleryGate {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if logger == nil {
		logger = log.New("gallery")
	}
	return &GalleryGate{
		projects: store.Projects,
		limiter:  limiter,
		metrics:  metrics,
		logger:   logger,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (g *GalleryGate) published(ctx context.Context, projectID string) (Project, error) {
	p, err := g.projects.GetOne(ctx, records.ByID(projectID), records.Eq("published", true))
	if err != nil {
		return Project{}, err
	}
	if p == nil {
		return Project{}, ErrNotFound
	}
	return *p, nil
}

// Unlock returns the gallery URL of a published story. Locked stories require
// code, compared case-insensitively; a match also yields a signed token for
// later Resolve calls. client identifies the caller for attempt limiting.
func (g *GalleryGate) Unlock(ctx context.Context, client, projectID, code string) (GalleryAccess, error) {
	if g.limiter != nil && !g.limiter.Check(client) {
		g.metrics.unlockAttempt("limited")
		return GalleryAccess{}, ErrTooManyAttempts
	}
	p, err := g.published(ctx, projectID)
	if err != nil {
		return GalleryAccess{}, err
	}
	if !p.IsLocked {
		return GalleryAccess{GalleryURL: p.GalleryURL}, nil
	}
	if !codesMatch(p.AccessCode, code) {
		if g.limiter != nil {
			g.limiter.Record(client)
		}
		g.metrics.unlockAttempt("denied")
		g.logger.Warnj(log.JSON{"msg": "gallery code rejected", "project": projectID, "client": client})
		return GalleryAccess{}, ErrInvalidAccessCode
	}

	expires := g.now().Add(g.ttl)
	claims := galleryClaims{
		CodeFingerprint: g.fingerprint(p.AccessCode),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(g.now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return GalleryAccess{}, fmt.Errorf("sign gallery token: %w", err)
	}
	g.metrics.unlockAttempt("ok")
	return GalleryAccess{GalleryURL: p.GalleryURL, Token: token, ExpiresAt: expires.UTC()}, nil
}

// Resolve returns the gallery URL for a token issued by Unlock. Unlocked
// stories need no token.
func (g *GalleryGate) Resolve(ctx context.Context, projectID, token string) (string, error) {
	p, err := g.published(ctx, projectID)
	if err != nil {
		return "", err
	}
	if !p.IsLocked {
		return p.GalleryURL, nil
	}
	if token == "" {
		return "", ErrInvalidAccessCode
	}
	var claims galleryClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAccessCode, err)
	}
	if claims.Subject != p.ID || !hmac.Equal([]byte(claims.CodeFingerprint), []byte(g.fingerprint(p.AccessCode))) {
		return "", ErrInvalidAccessCode
	}
	return p.GalleryURL, nil
}

func (g *GalleryGate) fingerprint(code string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(strings.ToLower(code)))
	return hex.EncodeToString(mac.Sum(nil))[:16]
}

// codesMatch compares access codes case-insensitively in constant time. An
// empty stored code never matches.
func codesMatch(stored, given string) bool {
	stored = strings.ToLower(strings.TrimSpace(stored))
	given = strings.ToLower(strings.TrimSpace(given))
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// IsGalleryDenied reports whether err means the visitor may not see the
// gallery.
func IsGalleryDenied(err error) bool {
	return errors.Is(err, ErrInvalidAccessCode) || errors.Is(err, ErrTooManyAttempts)
}
