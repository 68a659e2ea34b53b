package fakeapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/jrsteele09/fintrack-client/token/jwt"
	"github.com/jrsteele09/fintrack-client/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
)

const (
	contextKeyUser   = "fakeapi_user"
	contextKeyClaims = "fakeapi_claims"
)

// requireBearer validates the access token and loads the account it belongs to
func (s *Server) requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			abortError(c, http.StatusUnauthorized, "Access token required")
			return
		}

		claims, err := s.verifier.Validate(raw)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, errors.ErrTokenExpired) {
				msg = "Token expired"
			}
			abortError(c, http.StatusUnauthorized, msg)
			return
		}

		user, err := s.users.GetByID(claims.Subject)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "User not found")
			return
		}

		c.Set(contextKeyUser, user)
		c.Set(contextKeyClaims, claims)
		c.Next()
	}
}

func currentUser(c *gin.Context) *users.User {
	user, _ := c.MustGet(contextKeyUser).(*users.User)
	return user
}

func currentClaims(c *gin.Context) *jwt.Claims {
	claims, _ := c.MustGet(contextKeyClaims).(*jwt.Claims)
	return claims
}

func bearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// requestLogger logs one line per request. Query strings are left out because
// the provider redirect carries tokens in them.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := s.log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = s.log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("fakeapi request")
	}
}

// withCORS answers preflights and tags replies for browser clients on the
// allowed origins.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		return h
	}
	middleware := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:           86400,
		AllowCredentials: true,
	})
	return middleware.Handler(h)
}

// securityHeaders stops the API from being framed or content-sniffed
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Content-Security-Policy", "frame-ancestors 'self'")
		h.Set("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}

type serverMetrics struct {
	requests  *prometheus.CounterVec
	refreshes *prometheus.CounterVec
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	m := &serverMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fintrack",
			Subsystem: "fakeapi",
			Name:      "requests_total",
			Help:      "Requests served by route and status code.",
		}, []string{"method", "route", "code"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fintrack",
			Subsystem: "fakeapi",
			Name:      "token_refresh_total",
			Help:      "Refresh token exchanges by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.requests, m.refreshes)
	return m
}

func (m *serverMetrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
