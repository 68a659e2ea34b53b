package config

import (
	"strconv"
	"time"
)

type Gateway struct {
	src *sources
}

var _ GatewayConfig = Gateway{}

func (g Gateway) GetRefreshMaxTries() uint {
	raw := g.src.lookup("", "FINTRACK_REFRESH_MAX_TRIES", g.src.file.RefreshMaxTries, "3")
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 3
	}
	return uint(n)
}

func (g Gateway) GetHTTPTimeout() time.Duration {
	raw := g.src.lookup("", "FINTRACK_HTTP_TIMEOUT", g.src.file.HTTPTimeout, "30s")
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func (g Gateway) GetHTTPCacheEnabled() bool {
	return parseBool(g.src.lookup("", "FINTRACK_HTTP_CACHE", g.src.file.HTTPCache, "false"), false)
}

func (g Gateway) GetCoalesceRefresh() bool {
	return parseBool(g.src.lookup("", "FINTRACK_COALESCE_REFRESH", g.src.file.CoalesceRefresh, "true"), true)
}

func parseBool(raw string, fallback bool) bool {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}
