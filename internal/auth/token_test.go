package auth

import (
	"testing"
	"time"

	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-of-sufficient-length"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	s, err := NewTokenService(testSecret, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return s
}

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short", time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestIssuePair_RoundTrip(t *testing.T) {
	s := newTestTokenService(t)
	pair, err := s.IssuePair(&models.User{ID: 42, Email: "alice@example.com"})
	require.NoError(t, err)

	access, err := s.Parse(pair.Access, models.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(42), access.UserID)
	assert.Equal(t, "alice@example.com", access.Email)
	assert.NotEmpty(t, access.ID)

	refresh, err := s.Parse(pair.Refresh, models.TokenTypeRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestParse_RejectsWrongType(t *testing.T) {
	s := newTestTokenService(t)
	pair, err := s.IssuePair(&models.User{ID: 1})
	require.NoError(t, err)

	_, err = s.Parse(pair.Refresh, models.TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = s.Parse(pair.Access, models.TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestParse_RejectsExpiredAndForeignTokens(t *testing.T) {
	s := newTestTokenService(t)
	s.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	pair, err := s.IssuePair(&models.User{ID: 1})
	require.NoError(t, err)

	_, err = s.Parse(pair.Access, models.TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewTokenService("another-secret-entirely", time.Hour, time.Hour)
	require.NoError(t, err)
	foreign, err := other.IssuePair(&models.User{ID: 1})
	require.NoError(t, err)

	_, err = newTestTokenService(t).Parse(foreign.Access, models.TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Parse("garbage", models.TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueAccess_FromRefresh(t *testing.T) {
	s := newTestTokenService(t)
	pair, err := s.IssuePair(&models.User{ID: 9, Email: "bob@example.com"})
	require.NoError(t, err)
	refresh, err := s.Parse(pair.Refresh, models.TokenTypeRefresh)
	require.NoError(t, err)

	access, err := s.IssueAccess(refresh)
	require.NoError(t, err)
	claims, err := s.Parse(access, models.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
}

func TestPasswordHasher(t *testing.T) {
	p := NewPasswordHasherWithCost(bcrypt.MinCost)

	hash, err := p.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, p.Verify(hash, "correct horse"))
	assert.ErrorIs(t, p.Verify(hash, "wrong"), ErrPasswordMismatch)

	_, err = p.Hash(string(make([]byte, 73)))
	assert.Error(t, err)
}
