package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"civic-trust-service/internal/model"
)

type Claims struct {
	UserID     uuid.UUID        `json:"sub"`
	Role       model.UserRole   `json:"role"`
	RoleSource model.RoleSource `json:"role_source"`
	Name       string           `json:"name,omitempty"`
	Ward       string           `json:"ward,omitempty"`
	DeviceID   string           `json:"device_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() model.Principal {
	return model.Principal{
		UserID:     c.UserID,
		Role:       c.Role,
		RoleSource: c.RoleSource,
		Name:       c.Name,
		Ward:       c.Ward,
		DeviceID:   c.DeviceID,
	}
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(principal model.Principal) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := &Claims{
		UserID:     principal.UserID,
		Role:       principal.Role,
		RoleSource: principal.RoleSource,
		Name:       principal.Name,
		Ward:       principal.Ward,
		DeviceID:   principal.DeviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
