package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/fintrack-client/users"
)

// Issuer is the iss claim of every access token the fake API mints
const Issuer = "fintrack-fakeapi"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims carried by an access token
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwtlib.RegisteredClaims
}

// Settings is the part of the fake API configuration token minting needs
type Settings interface {
	GetJWTSecret() string
	GetAccessTokenTTL() time.Duration
}

// Creator mints HS256 access tokens
type Creator struct {
	secret []byte
	ttl    time.Duration
}

func NewCreator(cfg Settings) *Creator {
	return &Creator{
		secret: []byte(cfg.GetJWTSecret()),
		ttl:    cfg.GetAccessTokenTTL(),
	}
}

// CreateAccessToken creates a short lived access token for user
func (c *Creator) CreateAccessToken(user *users.User) (string, error) {
	now := NowTimeFunc()
	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.ID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.New().String(), // jti, used for revocation
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}
