package credentials

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Key names a slot in durable credential storage
type Key string

const (
	KeyAccessToken  Key = "accessToken"
	KeyRefreshToken Key = "refreshToken"
	KeyUser         Key = "user"
)

// AllKeys lists every key a logout has to remove
var AllKeys = []Key{KeyAccessToken, KeyRefreshToken, KeyUser}

// Pair is the access/refresh credential pair issued by the API.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Present reports whether both halves of the pair are set
func (p Pair) Present() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// OAuth2 converts the pair into a bearer oauth2.Token. Expiry is filled in
// when the access token is a JWT carrying an exp claim.
func (p Pair) OAuth2() *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  p.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: p.RefreshToken,
	}
	if exp, ok := ExpiresAt(p.AccessToken); ok {
		t.Expiry = exp
	}
	return t
}

// ExpiresAt reads the exp claim of a JWT access token without verifying the
// signature. Opaque tokens report false.
func ExpiresAt(accessToken string) (time.Time, bool) {
	if strings.Count(accessToken, ".") != 2 {
		return time.Time{}, false
	}

	claims := jwtlib.RegisteredClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
