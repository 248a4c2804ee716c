package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/models"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenManager issues and validates HS256 session tokens.
type TokenManager struct {
	signingKey []byte
	issuer     string
	audience   string
	ttl        time.Duration
	nowFunc    func() time.Time
}

func NewTokenManager(secret, issuer, audience string, ttl time.Duration) (*TokenManager, error) {
	if len(secret) < 16 {
		return nil, errors.New("jwt secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{
		signingKey: []byte(secret),
		issuer:     issuer,
		audience:   audience,
		ttl:        ttl,
		nowFunc:    time.Now,
	}, nil
}

// IssueToken returns the signed token and its jti, which doubles as the
// session key in Redis.
func (m *TokenManager) IssueToken(user models.User) (string, string, error) {
	now := m.nowFunc()
	jti := uuid.NewString()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    m.issuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Role:  string(user.Role),
		Email: user.Email,
		Name:  user.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.signingKey, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
