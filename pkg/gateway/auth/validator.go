package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/models"
	"github.com/lifelink-health/portal/pkg/identity"
)

// Validator joins token verification with the Redis session check: a token
// is only good while its jti is still a live session.
type Validator struct {
	tokens   *identity.TokenManager
	sessions *identity.SessionStore
}

func NewValidator(tokens *identity.TokenManager, sessions *identity.SessionStore) *Validator {
	return &Validator{tokens: tokens, sessions: sessions}
}

func (v *Validator) Principal(ctx context.Context, token string) (models.Principal, string, error) {
	claims, err := v.tokens.ValidateToken(token)
	if err != nil {
		return models.Principal{}, "", err
	}

	active, err := v.sessions.Active(ctx, claims.ID)
	if err != nil {
		return models.Principal{}, "", err
	}
	if !active {
		return models.Principal{}, "", identity.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Principal{}, "", identity.ErrInvalidToken
	}

	return models.Principal{ID: userID, Email: claims.Email}, claims.ID, nil
}
