// Package auth issues and verifies the access/refresh token pair used by
// the HTTP API and hashes user passwords.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"airport-service/internal/models"
)

type TokenKind string

const (
	Access  TokenKind = "access"
	Refresh TokenKind = "refresh"
)

var ErrInvalidToken = errors.New("token is invalid or expired")

type Claims struct {
	jwt.RegisteredClaims
	Kind  TokenKind `json:"token_type"`
	Staff bool      `json:"is_staff,omitempty"`
}

// UserID returns the subject as a uuid.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func NewManager(secret string, accessTTL, refreshTTL time.Duration, opts ...Option) *Manager {
	m := &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) IssuePair(u models.User) (Pair, error) {
	access, err := m.issue(u.ID, u.IsStaff, Access, m.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.issue(u.ID, u.IsStaff, Refresh, m.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// IssueAccess mints a fresh access token carrying the refresh token's identity.
func (m *Manager) IssueAccess(refresh *Claims) (string, error) {
	id, err := refresh.UserID()
	if err != nil {
		return "", ErrInvalidToken
	}
	return m.issue(id, refresh.Staff, Access, m.accessTTL)
}

func (m *Manager) issue(userID uuid.UUID, staff bool, kind TokenKind, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind:  kind,
		Staff: staff,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	return signed, errors.Wrap(err, "sign token")
}

// Parse verifies signature, expiry and kind. When kind is empty any kind is accepted.
func (m *Manager) Parse(token string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if kind != "" && claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
