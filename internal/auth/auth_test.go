package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"admitflow/internal/platform/middleware"
	dErrors "admitflow/pkg/domain-errors"
)

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestParseAccounts(t *testing.T) {
	accounts, err := ParseAccounts([]string{
		"alice:admin:$2a$10$hash",
		"bob:faculty:$2a$10$hash",
		"carol:officer:$2a$10$hash",
	})
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	require.Equal(t, middleware.RoleFaculty, accounts[1].Role)

	_, err = ParseAccounts([]string{"alice:admin"})
	require.Error(t, err)

	_, err = ParseAccounts([]string{"alice:superuser:$2a$10$hash"})
	require.Error(t, err)
}

type AuthSuite struct {
	suite.Suite
	svc *Service
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) SetupTest() {
	s.svc = New([]Account{
		{Name: "alice", Role: middleware.RoleAdmin, PasswordHash: hash(s.T(), "correct horse")},
	}, "test-signing-key", time.Hour)
}

func (s *AuthSuite) TestLoginAndValidateRoundTrip() {
	token, expiresAt, err := s.svc.Login("alice", "correct horse")
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.True(expiresAt.After(time.Now()))

	claims, err := s.svc.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal("alice", claims.Actor)
	s.Equal(middleware.RoleAdmin, claims.Role)
}

func (s *AuthSuite) TestWrongPassword() {
	_, _, err := s.svc.Login("alice", "wrong")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AuthSuite) TestUnknownAccountIndistinguishable() {
	_, _, wrongPassword := s.svc.Login("alice", "wrong")
	_, _, unknownName := s.svc.Login("mallory", "wrong")
	s.Equal(dErrors.MessageOf(wrongPassword), dErrors.MessageOf(unknownName))
}

func (s *AuthSuite) TestExpiredTokenRejected() {
	past := time.Now().Add(-2 * time.Hour)
	expired := New([]Account{
		{Name: "alice", Role: middleware.RoleAdmin, PasswordHash: hash(s.T(), "pw")},
	}, "test-signing-key", time.Hour, WithClock(func() time.Time { return past }))

	token, _, err := expired.Login("alice", "pw")
	s.Require().NoError(err)

	_, err = s.svc.ValidateToken(token)
	s.Error(err)
}

func (s *AuthSuite) TestForeignSignatureRejected() {
	other := New([]Account{
		{Name: "alice", Role: middleware.RoleAdmin, PasswordHash: hash(s.T(), "pw")},
	}, "another-signing-key", time.Hour)

	token, _, err := other.Login("alice", "pw")
	s.Require().NoError(err)

	_, err = s.svc.ValidateToken(token)
	s.Error(err)
}
