package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors are created without the service label; MustRegister attaches it
// through a wrapping registerer so unregistered collectors stay usable in tests.
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	VerificationCodesRequestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xuper_verification_codes_requested_total",
			Help: "Total number of verification code requests.",
		},
		[]string{"result"},
	)

	VerificationCodesConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xuper_verification_codes_consumed_total",
			Help: "Verification code consumption attempts by outcome.",
		},
		[]string{"result"},
	)

	EmailDeliveryFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xuper_email_delivery_failures_total",
			Help: "Total number of failed verification email deliveries.",
		},
		[]string{"provider"},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xuper_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"role", "result"},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xuper_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xuper_tokens_total",
			Help: "Tokens issued and verified.",
		},
		[]string{"flow", "result"},
	)

	DownloadsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xuper_downloads_recorded_total",
			Help: "Total number of download records written.",
		},
		[]string{"status"},
	)

	VerificationCodesPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "xuper_verification_codes_purged_total",
			Help: "Expired verification codes removed by the janitor.",
		},
	)
)

func MustRegister(serviceName string) {
	reg := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, prometheus.DefaultRegisterer)
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		VerificationCodesRequestedTotal,
		VerificationCodesConsumedTotal,
		EmailDeliveryFailuresTotal,
		RegistrationsTotal,
		LoginsTotal,
		TokensIssuedTotal,
		DownloadsRecordedTotal,
		VerificationCodesPurgedTotal,
	)
}
