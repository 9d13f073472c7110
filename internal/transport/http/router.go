package http

import (
	"net/http"
	"time"

	"xuper/internal/observability/middleware"
	"xuper/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Auth         service.AuthService
	Verification service.VerificationService
	Downloads    service.DownloadService
	Tokens       service.TokenService
}

type Options struct {
	CORSOrigins []string
	// RateLimitPerMinute applies per client IP to the code request and login
	// endpoints, each with its own budget. Zero disables the limiter.
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	AuthCookie         bool
	SecureCookie       bool
	TokenTTL           time.Duration
}

func NewRouter(svc Services, opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 30 * 24 * time.Hour
	}
	h := &Handler{
		auth:         svc.Auth,
		verification: svc.Verification,
		downloads:    svc.Downloads,
		setCookie:    opts.AuthCookie,
		secureCookie: opts.SecureCookie,
		cookieTTL:    opts.TokenTTL,
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.WithRequestAndTrace)
	r.Use(middleware.WithMetrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsOrAny(opts.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	authn := EnsureAuthenticated(svc.Tokens)

	r.Route("/xuper", func(r chi.Router) {
		r.Get("/", h.handleRoot)
		r.With(rateLimit(opts.RateLimitPerMinute)).Post("/verify-email", h.handleRequestCode)
		r.Post("/register", h.handleRegister)
		r.With(rateLimit(opts.RateLimitPerMinute)).Post("/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Get("/download", h.handleDownloadLinks)
			r.Post("/download", h.handleRecordDownload)
			r.Get("/download/history", h.handleDownloadHistory)
		})

		r.Group(func(r chi.Router) {
			r.Use(authn, EnsureAdmin)
			r.Get("/users", h.handleListAccounts)
			r.Delete("/users/{id}", h.handleDeleteAccount)
			r.Post("/register/admin", h.handleRegisterAdmin)
		})
	})
	return r
}

func rateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(perMinute, time.Minute)
}

func originsOrAny(in []string) []string {
	if len(in) == 0 {
		return []string{"*"}
	}
	return in
}
