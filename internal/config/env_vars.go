package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	apiURLEnvVar       = "FINTRACK_API_URL"
	appNameVar         = "APP_NAME"
	envVar             = "ENV"
	folderEnvVar       = "FINTRACK_DATA_DIR"
	callbackPortEnvVar = "FINTRACK_CALLBACK_PORT"

	DefaultAPIURL       = "http://localhost:3000/api/v1"
	DefaultCallbackPort = 8765
)

type EnvVars struct {
	src *sources
}

var _ EnvConfig = EnvVars{}

// GetAPIURL returns the API base URL without a trailing slash
func (e EnvVars) GetAPIURL() string {
	url := e.src.lookup(e.src.overrides.APIURL, apiURLEnvVar, e.src.file.APIURL, DefaultAPIURL)
	return strings.TrimRight(url, "/")
}

func (e EnvVars) GetAppName() string {
	return e.src.lookup("", appNameVar, e.src.file.AppName, "FinTrack")
}

func (e EnvVars) GetEnv() string {
	return e.src.lookup(e.src.overrides.Env, envVar, e.src.file.Env, "DEV")
}

func (e EnvVars) IsDev() bool {
	return strings.EqualFold(e.GetEnv(), "DEV")
}

func (e EnvVars) GetDataFolder() string {
	return e.src.lookup(e.src.overrides.DataDir, folderEnvVar, e.src.file.DataDir, defaultDataFolder())
}

func (e EnvVars) GetCallbackPort() int {
	raw := e.src.lookup("", callbackPortEnvVar, e.src.file.CallbackPort, "")
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return DefaultCallbackPort
	}
	return port
}

func defaultDataFolder() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fintrack"
	}
	return filepath.Join(home, ".fintrack")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
