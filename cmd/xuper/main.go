package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xuper/internal/config"
	"xuper/internal/downloads"
	"xuper/internal/events"
	"xuper/internal/mail"
	"xuper/internal/observability/logging"
	"xuper/internal/observability/metrics"
	impl "xuper/internal/service/impl"
	"xuper/internal/store"
	"xuper/internal/store/mongostore"
	"xuper/internal/store/redisstore"
	httpx "xuper/internal/transport/http"
	"xuper/pkg/db"
)

const serviceName = "xuper"

// stores is the persistence wiring chosen by STORE_DRIVER and
// VERIFICATION_STORE.
type stores struct {
	accounts  store.AccountStore
	codes     store.VerificationStore
	downloads store.DownloadStore
	// janitor is set unless the backend drops expired codes on its own.
	janitor bool
	close   func(context.Context) error
}

func main() {
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	slog.SetDefault(logger)
	logger.Info("starting service", "store", cfg.StoreDriver, "verification_store", cfg.VerificationStore)

	metrics.MustRegister(serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1) Persistence
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("open stores", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			logger.Warn("close stores", "error", err)
		}
	}()
	if st.janitor {
		go store.RunJanitor(ctx, st.codes, cfg.JanitorInterval, logger)
	}

	// 2) Collaborators
	mailer, err := mail.New(cfg.Mail)
	if err != nil {
		logger.Error("mail sender", "provider", cfg.Mail.Provider, "error", err)
		os.Exit(1)
	}
	if cfg.FirebaseServiceAccount != "" {
		if sa, err := config.LoadServiceAccount(cfg.FirebaseServiceAccount); err != nil {
			logger.Error("firebase service account", "error", err)
		} else {
			logger.Info("firebase service account loaded", "project_id", sa.ProjectID)
		}
	}
	catalog, err := downloadCatalog(ctx, cfg.Downloads)
	if err != nil {
		logger.Error("download catalog", "error", err)
		os.Exit(1)
	}
	publisher := events.LogPublisher{Logger: logger}

	// 3) Services
	verification := impl.NewVerificationServiceImpl(st.accounts, st.codes, mailer, cfg.CodeTTL, cfg.Mail.Provider)
	tokens := impl.NewTokenServiceHS256(impl.TokenConfig{
		TTL:        cfg.TokenTTL,
		SigningKey: []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
	}, st.accounts)
	auth := impl.NewAuthServiceImpl(st.accounts, st.downloads, verification,
		impl.NewPasswordServiceBcrypt(impl.DefaultBcryptCost), tokens, publisher, cfg.AdminRegistrationCode)
	dl := impl.NewDownloadServiceImpl(st.downloads, catalog, publisher)

	// 4) HTTP
	router := httpx.NewRouter(httpx.Services{
		Auth:         auth,
		Verification: verification,
		Downloads:    dl,
		Tokens:       tokens,
	}, httpx.Options{
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		AuthCookie:         cfg.AuthCookie,
		SecureCookie:       cfg.SecureCookie,
		TokenTTL:           cfg.TokenTTL,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("xuper listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown", "error", err)
		}
	}
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stores, error) {
	var st *stores
	switch cfg.StoreDriver {
	case config.DriverMongo:
		m := mongostore.NewMongoDB(cfg.MongoURI, cfg.MongoDatabase)
		if err := m.Connect(ctx); err != nil {
			return nil, err
		}
		ms := mongostore.New(m.Database())
		if err := ms.EnsureIndexes(ctx); err != nil {
			_ = m.Disconnect(ctx)
			return nil, err
		}
		st = &stores{
			accounts:  ms.Accounts(),
			codes:     ms.Verifications(),
			downloads: ms.Downloads(),
			close:     m.Disconnect,
		}
	default:
		gdb, err := db.OpenGorm(db.Config{Driver: cfg.StoreDriver, DSN: cfg.SQLDSN()})
		if err != nil {
			return nil, err
		}
		gs := store.New(gdb)
		if err := gs.Migrate(ctx); err != nil {
			return nil, err
		}
		st = &stores{
			accounts:  gs.Accounts(),
			codes:     gs.Verifications(),
			downloads: gs.Downloads(),
			janitor:   true,
			close: func(context.Context) error {
				sqlDB, err := gdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}
	}

	if cfg.VerificationStore == config.CodesRedis {
		rdb, err := redisstore.NewClient(cfg.RedisURL)
		if err != nil {
			_ = st.close(ctx)
			return nil, err
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = st.close(ctx)
			return nil, err
		}
		logger.Info("verification codes kept in redis")
		primaryClose := st.close
		st.codes = redisstore.New(rdb)
		st.janitor = true
		st.close = func(ctx context.Context) error {
			return errors.Join(rdb.Close(), primaryClose(ctx))
		}
	}
	return st, nil
}

func downloadCatalog(ctx context.Context, cfg config.Downloads) (downloads.Source, error) {
	artifacts, err := downloads.ParseArtifacts(cfg.Artifacts)
	if err != nil {
		return nil, err
	}
	if cfg.S3Bucket == "" {
		return downloads.StaticSource{BaseURL: cfg.BaseURL, Artifacts: artifacts}, nil
	}
	presigner, err := downloads.NewPresignClient(ctx, downloads.S3Config{
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	return downloads.S3Source{
		Presigner: presigner,
		Bucket:    cfg.S3Bucket,
		TTL:       cfg.URLTTL,
		Artifacts: artifacts,
	}, nil
}
