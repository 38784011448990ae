package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

type Service struct {
	secret []byte
	ttl    time.Duration
}

// Claims identify the caller and the organization the token is scoped to.
// ContractorID is set for contractor tokens and names the roster identity.
type Claims struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	OrgID        string `json:"org_id"`
	ContractorID string `json:"contractor_id,omitempty"`
	jwtlib.RegisteredClaims
}

// Identity is the subject a token is issued for.
type Identity struct {
	UserID       string
	Role         string
	OrgID        string
	ContractorID string
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *Service) GenerateToken(id Identity) (string, error) {
	claims := Claims{
		UserID:       id.UserID,
		Role:         id.Role,
		OrgID:        id.OrgID,
		ContractorID: id.ContractorID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   id.UserID,
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return nil, errors.New("invalid claims")
	}

	return claims, nil
}
