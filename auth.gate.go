package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrBadSecret     = errors.New("admin secret does not match")
	ErrNotPrivileged = errors.New("caller does not hold a privileged session")
)

const adminSessionContextKey ContextKey = "session.admin"

// AdminGate grants and checks the single privileged session of the
// catalog. A successful login against the shared secret yields a signed
// session token; logout revokes its id until natural expiry. The secret
// lives in memory in clear form, which is acceptable for this
// single-user tool only.
type AdminGate struct {
	logger *zap.Logger
	secret []byte
	ttl    time.Duration
	clock  Clocker
	ids    UIDHandler

	mu      sync.Mutex
	revoked map[string]time.Time // session id -> token expiry, pruned lazily
}

// NewAdminGate provides a ready to use AdminGate.
func NewAdminGate(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler) *AdminGate {
	return &AdminGate{
		logger:  logger,
		secret:  []byte(config.Catalog.AdminSecret),
		ttl:     config.Catalog.SessionTTL,
		clock:   clock,
		ids:     ids,
		revoked: make(map[string]time.Time),
	}
}

// AttemptLogin compares the candidate against the shared secret and on
// match issues a privileged session token. On mismatch it reports
// ErrBadSecret and no session exists.
func (g *AdminGate) AttemptLogin(candidateSecret string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(candidateSecret), g.secret) != 1 {
		return "", ErrBadSecret
	}

	now := g.clock.Now()
	claims := jwt.RegisteredClaims{
		ID:        g.ids.Generate(SessionIDPrefix),
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Logout revokes the session carried by the token, unconditionally. An
// unparsable token is simply ignored: there is nothing to revoke.
func (g *AdminGate) Logout(token string) {
	claims, err := g.parse(token)
	if err != nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prune()
	g.revoked[claims.ID] = claims.ExpiresAt.Time
}

// Verify tells whether the token carries a live, non revoked session.
func (g *AdminGate) Verify(token string) bool {
	claims, err := g.parse(token)
	if err != nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	_, out := g.revoked[claims.ID]
	return !out
}

// prune drops revocation entries whose token already expired.
// Callers must hold the mutex.
func (g *AdminGate) prune() {
	now := g.clock.Now()
	for id, expiry := range g.revoked {
		if now.After(expiry) {
			delete(g.revoked, id)
		}
	}
}

func (g *AdminGate) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return g.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.clock.Now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrNotPrivileged
	}
	return claims, nil
}

// ContextWithAdminSession marks the context as carrying a verified
// privileged session. Only the auth middleware should stamp it.
func ContextWithAdminSession(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminSessionContextKey, true)
}

// IsAdminContext tells whether the context was stamped with a verified
// privileged session. The catalog store uses it to defensively reject
// mutation attempts that bypassed the auth middleware.
func IsAdminContext(ctx context.Context) bool {
	flag, ok := ctx.Value(adminSessionContextKey).(bool)
	return ok && flag
}
