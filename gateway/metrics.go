package gateway

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes recorded by Metrics
const (
	OutcomeSuccess      = "success"
	OutcomeRejected     = "rejected"
	OutcomeMissingToken = "missing_token"
	OutcomeError        = "error"
	OutcomeReused       = "reused"
)

// Metrics counts gateway traffic. A nil *Metrics records nothing.
type Metrics struct {
	requests       *prometheus.CounterVec
	refreshes      *prometheus.CounterVec
	sessionExpired prometheus.Counter
}

// NewMetrics registers the gateway collectors on reg. Registering twice on the
// same registry reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fintrack",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Dispatches sent through the gateway by response status code.",
	}, []string{"code"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fintrack",
		Subsystem: "gateway",
		Name:      "refresh_total",
		Help:      "Token refresh attempts by outcome.",
	}, []string{"outcome"})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fintrack",
		Subsystem: "gateway",
		Name:      "session_expired_total",
		Help:      "Sessions torn down after an unrecoverable 401.",
	})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if refreshes, err = register(reg, refreshes); err != nil {
		return nil, err
	}
	if expired, err = register(reg, expired); err != nil {
		return nil, err
	}

	return &Metrics{requests: requests, refreshes: refreshes, sessionExpired: expired}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observeResponse(resp *http.Response, err error) {
	if m == nil {
		return
	}
	code := "error"
	if err == nil && resp != nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	m.requests.WithLabelValues(code).Inc()
}

func (m *Metrics) observeRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeSessionExpired() {
	if m == nil {
		return
	}
	m.sessionExpired.Inc()
}

// Requests exposes the request counter for a status code label
func (m *Metrics) Requests(code string) prometheus.Counter {
	return m.requests.WithLabelValues(code)
}

// Refreshes exposes the refresh counter for an outcome label
func (m *Metrics) Refreshes(outcome string) prometheus.Counter {
	return m.refreshes.WithLabelValues(outcome)
}

// SessionsExpired exposes the session teardown counter
func (m *Metrics) SessionsExpired() prometheus.Counter {
	return m.sessionExpired
}
