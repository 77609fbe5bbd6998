// Package metrics holds the business counters exported on /metrics.
// HTTP RED metrics live in the transport middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coursehub"

var (
	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome",
		},
		[]string{"status"}, // success, email_already_exists, delivery_failed, ...
	)

	verificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_verifications_total",
			Help:      "Verification code submissions by outcome",
		},
		[]string{"status"},
	)

	resendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_resends_total",
			Help:      "Verification code resends by outcome",
		},
		[]string{"status"},
	)

	loginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome",
		},
		[]string{"status"},
	)

	rateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by a rate limiter",
		},
		[]string{"scope"},
	)

	dependencyHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dependency_health",
			Help:      "Health of dependencies (1 = healthy, 0 = unhealthy)",
		},
		[]string{"dependency"},
	)
)

func RecordRegistration(status string) { registrationsTotal.WithLabelValues(status).Inc() }

func RecordVerification(status string) { verificationsTotal.WithLabelValues(status).Inc() }

func RecordResend(status string) { resendsTotal.WithLabelValues(status).Inc() }

func RecordLogin(status string) { loginAttemptsTotal.WithLabelValues(status).Inc() }

func RecordRateLimited(scope string) { rateLimitedTotal.WithLabelValues(scope).Inc() }

// SetDependencyHealth is updated by the readiness probe.
func SetDependencyHealth(dep string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	dependencyHealth.WithLabelValues(dep).Set(v)
}

// Status turns an error into a label: "success" for nil, the domain code
// otherwise.
func Status(code string, err error) string {
	if err == nil {
		return "success"
	}
	if code == "" {
		return "internal_error"
	}
	return code
}
