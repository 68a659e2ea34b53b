package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	StorageConfig
	GatewayConfig
	FakeAPIConfig
}

type EnvConfig interface {
	GetAPIURL() string
	GetAppName() string
	GetEnv() string
	IsDev() bool
	GetDataFolder() string
	GetCallbackPort() int
}

type StorageConfig interface {
	GetStorageBackend() StorageBackend
	GetValkeyAddr() string
	GetValkeyPrefix() string
}

type GatewayConfig interface {
	GetRefreshMaxTries() uint
	GetHTTPTimeout() time.Duration
	GetHTTPCacheEnabled() bool
	GetCoalesceRefresh() bool
}

type FakeAPIConfig interface {
	GetPort() string
	GetJWTSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetRefreshTokenLength() int
	GetAllowedOrigins() []string
	GetRotateRefreshTokens() bool
}

type mainConfig struct {
	EnvVars
	Storage
	Gateway
	FakeAPI
}

// Option overrides a single value. Overrides win over the environment and the config file.
type Option func(*File)

func WithAPIURL(url string) Option {
	return func(f *File) { f.APIURL = url }
}

func WithDataFolder(dir string) Option {
	return func(f *File) { f.DataDir = dir }
}

func WithStorageBackend(backend string) Option {
	return func(f *File) { f.Storage = backend }
}

func WithEnv(env string) Option {
	return func(f *File) { f.Env = env }
}

// New loads configuration from the default file location, falling back to
// environment and defaults when the file cannot be read.
func New(opts ...Option) Config {
	c, err := Load(DefaultFilePath(), opts...)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable config file")
		c, _ = Load("", opts...)
	}
	return c
}

// Load resolves configuration as defaults < yaml file < .env < environment < options.
// An empty path or a missing file is not an error.
func Load(path string, opts ...Option) (Config, error) {
	// .env never overrides variables that are already set
	_ = godotenv.Load()

	file, err := readFile(path)
	if err != nil {
		return nil, err
	}

	overrides := &File{}
	for _, opt := range opts {
		opt(overrides)
	}

	src := &sources{file: file, overrides: overrides}
	return mainConfig{
		EnvVars: EnvVars{src},
		Storage: Storage{src},
		Gateway: Gateway{src},
		FakeAPI: FakeAPI{src},
	}, nil
}
