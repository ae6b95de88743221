// Package auth issues and validates role tokens for the reviewer-side API.
// Accounts are static, configured as name:role:bcrypt-hash triples; applicants
// never authenticate, they prove ownership with id plus email instead.
package auth

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"admitflow/internal/platform/middleware"
	dErrors "admitflow/pkg/domain-errors"
)

// Account is one configured reviewer login.
type Account struct {
	Name         string
	Role         string
	PasswordHash string
}

// ParseAccounts parses the ACTOR_ACCOUNTS triples. Malformed entries are an
// error at startup, not at login time.
func ParseAccounts(entries []string) ([]Account, error) {
	accounts := make([]Account, 0, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			return nil, fmt.Errorf("malformed actor account %q, want name:role:hash", entry)
		}
		switch parts[1] {
		case middleware.RoleAdmin, middleware.RoleFaculty, middleware.RoleOfficer:
		default:
			return nil, fmt.Errorf("unknown role %q in actor account %q", parts[1], entry)
		}
		accounts = append(accounts, Account{Name: parts[0], Role: parts[1], PasswordHash: parts[2]})
	}
	return accounts, nil
}

// Service authenticates accounts and mints JWTs.
type Service struct {
	accounts   map[string]Account
	signingKey []byte
	tokenTTL   time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock sets the clock function for testability.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service over the configured accounts.
func New(accounts []Account, signingKey string, tokenTTL time.Duration, opts ...Option) *Service {
	byName := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byName[a.Name] = a
	}
	s := &Service{
		accounts:   byName,
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

type roleClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Login checks the password against the stored bcrypt hash and returns a
// signed token. Unknown name and wrong password are indistinguishable.
func (s *Service) Login(name, password string) (token string, expiresAt time.Time, err error) {
	account, ok := s.accounts[name]
	if !ok {
		// Burn comparable time so unknown names do not return faster.
		_ = bcrypt.CompareHashAndPassword(
			[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(password))
		return "", time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now()
	expiresAt = now.Add(s.tokenTTL)
	claims := roleClaims{
		Role: account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return token, expiresAt, nil
}

// ValidateToken implements middleware.TokenValidator.
func (s *Service) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	var claims roleClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return s.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &middleware.TokenClaims{Actor: claims.Subject, Role: claims.Role}, nil
}
