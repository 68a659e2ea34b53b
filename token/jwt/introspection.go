package jwt

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/fintrack-client/internal/errors"
)

// RevokedChecker is an interface for checking if a token has been revoked
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Inspector verifies access tokens minted by Creator
type Inspector struct {
	secret         []byte
	revokedChecker RevokedChecker
}

func NewInspector(cfg Settings, revokedChecker RevokedChecker) *Inspector {
	return &Inspector{
		secret:         []byte(cfg.GetJWTSecret()),
		revokedChecker: revokedChecker,
	}
}

// Validate verifies the signature, issuer and expiry of rawToken and checks
// it has not been revoked. Expired tokens return ErrTokenExpired, revoked ones
// ErrTokenRevoked and anything else ErrInvalidToken.
func (i *Inspector) Validate(rawToken string) (*Claims, error) {
	claims, err := i.parse(rawToken)
	if err != nil {
		return nil, err
	}
	if i.revokedChecker != nil && i.revokedChecker.IsRevoked(claims.ID) {
		return nil, errors.ErrTokenRevoked
	}
	return claims, nil
}

// ParseAndExtractJTI returns the jti and expiry of a valid token so it can be revoked
func (i *Inspector) ParseAndExtractJTI(rawToken string) (jti string, exp time.Time, err error) {
	claims, err := i.parse(rawToken)
	if err != nil {
		return "", time.Time{}, err
	}
	if claims.ID == "" {
		return "", time.Time{}, errors.Wrapf(errors.ErrInvalidToken, "token missing jti claim")
	}
	return claims.ID, claims.ExpiresAt.Time, nil
}

func (i *Inspector) parse(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(rawToken, claims, func(*jwtlib.Token) (any, error) {
		return i.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(Issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, errors.ErrTokenExpired
	case err != nil:
		return nil, errors.Wrapf(errors.ErrInvalidToken, "%v", err)
	case !token.Valid:
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}
