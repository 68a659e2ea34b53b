package config

import (
	"fmt"
	"strings"
	"time"
)

// FakeAPI holds settings for the local fake of the remote API
type FakeAPI struct {
	src *sources
}

var _ FakeAPIConfig = FakeAPI{}

func (FakeAPI) GetPort() string {
	port := GetEnv("PORT", "3000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (FakeAPI) GetJWTSecret() string {
	return GetEnv("FAKEAPI_JWT_SECRET", "fintrack-dev-secret")
}

func (FakeAPI) GetAccessTokenTTL() time.Duration {
	d, err := time.ParseDuration(GetEnv("FAKEAPI_ACCESS_TTL", "15m"))
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

func (FakeAPI) GetRefreshTokenTTL() time.Duration {
	return 7 * 24 * time.Hour
}

func (FakeAPI) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

// GetAllowedOrigins lists the browser origins allowed to call the fake API.
// The web client dev server is allowed by default.
func (FakeAPI) GetAllowedOrigins() []string {
	raw := GetEnv("FAKEAPI_ALLOWED_ORIGINS", "http://localhost:5173")
	origins := make([]string, 0)
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (FakeAPI) GetRotateRefreshTokens() bool {
	return parseBool(GetEnv("FAKEAPI_ROTATE_REFRESH", "true"), true)
}
