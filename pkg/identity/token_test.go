package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	manager, err := NewTokenManager("test-secret-at-least-16", "lifelink-portal", "lifelink-web", time.Hour)
	require.NoError(t, err)
	return manager
}

func TestIssueAndValidateToken(t *testing.T) {
	manager := newTestManager(t)
	user := models.User{
		ID:    uuid.New(),
		Email: "donor@example.com",
		Name:  "Ali Raza",
		Role:  models.RoleDonor,
	}

	signed, jti, err := manager.IssueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.NotEmpty(t, jti)

	claims, err := manager.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, string(models.RoleDonor), claims.Role)
	assert.Equal(t, user.Email, claims.Email)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	manager := newTestManager(t)
	issuedAt := time.Now().Add(-2 * time.Hour)
	manager.nowFunc = func() time.Time { return issuedAt }

	signed, _, err := manager.IssueToken(models.User{ID: uuid.New(), Role: models.RoleDonor})
	require.NoError(t, err)

	manager.nowFunc = time.Now
	_, err = manager.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	manager := newTestManager(t)
	signed, _, err := manager.IssueToken(models.User{ID: uuid.New(), Role: models.RoleDonor})
	require.NoError(t, err)

	other, err := NewTokenManager("another-secret-entirely", "lifelink-portal", "lifelink-web", time.Hour)
	require.NoError(t, err)
	_, err = other.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongAudience(t *testing.T) {
	manager := newTestManager(t)
	signed, _, err := manager.IssueToken(models.User{ID: uuid.New(), Role: models.RoleDonor})
	require.NoError(t, err)

	other, err := NewTokenManager("test-secret-at-least-16", "lifelink-portal", "different-audience", time.Hour)
	require.NoError(t, err)
	_, err = other.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	manager := newTestManager(t)
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := manager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestNewTokenManagerRejectsShortSecret(t *testing.T) {
	_, err := NewTokenManager("short", "iss", "aud", time.Hour)
	assert.Error(t, err)
}
