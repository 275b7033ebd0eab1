package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records application events. The noop implementation keeps
// instrumentation call sites unconditional.
type Recorder interface {
	RecordRegistration()
	RecordLogin(success bool)
	RecordTokenIssued()
	RecordTokenValidation(result string)
	RecordTokenRefresh(success bool)
	RecordTokenRevoked()
	RecordOAuthCallback(provider string, success bool)
	RecordHTTPRequest(method, path, status string, durationSeconds float64)
}

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	RegistrationsTotal   prometheus.Counter
	LoginsTotal          *prometheus.CounterVec
	TokensIssuedTotal    prometheus.Counter
	TokenValidationTotal *prometheus.CounterVec
	TokenRefreshTotal    *prometheus.CounterVec
	TokensRevokedTotal   prometheus.Counter
	OAuthCallbacksTotal  *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init returns the Prometheus recorder when enabled, the noop recorder
// otherwise. Prometheus collectors are registered once per process.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoop()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

func initMetrics() *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of user registrations",
		}),
		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts by result",
		}, []string{"result"}),
		TokensIssuedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of token pairs issued",
		}),
		TokenValidationTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_validations_total",
			Help: "Total number of access token validations by result",
		}, []string{"result"}),
		TokenRefreshTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_refreshes_total",
			Help: "Total number of refresh attempts by result",
		}, []string{"result"}),
		TokensRevokedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auth_tokens_revoked_total",
			Help: "Total number of revoked access tokens",
		}),
		OAuthCallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_oauth_callbacks_total",
			Help: "Total number of OAuth callbacks by provider and result",
		}, []string{"provider", "result"}),
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func (m *Metrics) RecordRegistration() {
	m.RegistrationsTotal.Inc()
}

func (m *Metrics) RecordLogin(success bool) {
	m.LoginsTotal.WithLabelValues(result(success)).Inc()
}

func (m *Metrics) RecordTokenIssued() {
	m.TokensIssuedTotal.Inc()
}

func (m *Metrics) RecordTokenValidation(outcome string) {
	m.TokenValidationTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordTokenRefresh(success bool) {
	m.TokenRefreshTotal.WithLabelValues(result(success)).Inc()
}

func (m *Metrics) RecordTokenRevoked() {
	m.TokensRevokedTotal.Inc()
}

func (m *Metrics) RecordOAuthCallback(provider string, success bool) {
	m.OAuthCallbacksTotal.WithLabelValues(provider, result(success)).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}
