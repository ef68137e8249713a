package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/clinicadmin/clinic/internal/config"
	"github.com/clinicadmin/clinic/internal/domain/appointment"
	"github.com/clinicadmin/clinic/internal/domain/auditlog"
	"github.com/clinicadmin/clinic/internal/domain/dashboard"
	"github.com/clinicadmin/clinic/internal/domain/medicalrecord"
	"github.com/clinicadmin/clinic/internal/domain/patient"
	"github.com/clinicadmin/clinic/internal/domain/profile"
	"github.com/clinicadmin/clinic/internal/domain/provider"
	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/internal/platform/auth"
	"github.com/clinicadmin/clinic/internal/platform/db"
	"github.com/clinicadmin/clinic/internal/platform/metrics"
	"github.com/clinicadmin/clinic/internal/platform/middleware"
	"github.com/clinicadmin/clinic/internal/platform/websocket"
	"github.com/clinicadmin/clinic/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic administration API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *db.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				fmt.Println("Migrations applied successfully.")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *db.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				fmt.Println("Rolled back one migration.")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *db.Migrator) error {
				st, err := m.Status()
				if err != nil {
					return err
				}
				if !st.Applied {
					fmt.Println("No migrations applied.")
					return nil
				}
				fmt.Printf("%-10s %s\n", "VERSION", "DIRTY")
				fmt.Printf("%-10d %t\n", st.Version, st.Dirty)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Force the recorded schema version after a failed migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withMigrator(func(m *db.Migrator) error {
				if err := m.Force(v); err != nil {
					return err
				}
				fmt.Printf("Forced schema version to %d.\n", v)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(fn func(*db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	m, err := db.NewMigrator(cfg.DatabaseURL, migrations.FS)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// serverDeps are the collaborators runServer opens and tests replace.
type serverDeps struct {
	conn     db.DBTX
	pinger   db.Pinger
	limiter  middleware.Limiter
	registry *prometheus.Registry
}

func runServer() error {
	logger := newLogger(os.Getenv("ENV"))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	logger = newLogger(cfg.Env)
	log.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	rlCfg := rateLimitConfig(cfg)
	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		client, err := middleware.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, using in-memory rate limiter")
		} else {
			defer client.Close()
			limiter = middleware.NewRedisLimiter(client, rlCfg)
			logger.Info().Msg("rate limiting backed by redis")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := newServer(cfg, logger, serverDeps{conn: pool, pinger: pool, limiter: limiter, registry: reg})

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Str("auth_mode", cfg.AuthMode).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func rateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rl.RequestsPerSecond <= 0 {
		rl = middleware.DefaultRateLimitConfig()
	}
	return rl
}

func newServer(cfg *config.Config, logger zerolog.Logger, deps serverDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.ErrorHandler

	httpMetrics := metrics.NewHTTPMetrics(deps.registry)
	mutationMetrics := metrics.NewMutationMetrics(deps.registry)

	auditSvc := auditlog.NewService(auditlog.NewAuditLogRepoPG(deps.conn))

	jwtCfg := auth.JWTConfig{
		Secret:   []byte(cfg.AuthJWTSecret),
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
		JWKSURL:  cfg.AuthJWKSURL,
		Skipper:  auth.AuthSkipper,
	}

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.Metrics(httpMetrics))
	e.Use(middleware.RateLimit(rateLimitConfig(cfg), deps.limiter))

	if cfg.AuthMode == "development" {
		logger.Warn().Msg("development auth mode: unauthenticated requests run as the dev user")
		e.Use(auth.DevAuthMiddleware(jwtCfg))
	} else {
		e.Use(auth.JWTMiddleware(jwtCfg))
	}

	e.Use(middleware.Audit(logger, auditSvc))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(deps.pinger))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{})))

	hub := websocket.NewHub()
	api := e.Group("/api")

	patientSvc := patient.NewService(patient.NewPatientRepoPG(deps.conn))
	patientSvc.SetPhoneRegion(cfg.PhoneRegion)
	patientSvc.SetPublisher(hub)
	patientSvc.SetMetrics(mutationMetrics)
	patient.NewHandler(patientSvc).RegisterRoutes(api)

	apptSvc := appointment.NewService(appointment.NewAppointmentRepoPG(deps.conn))
	apptSvc.SetPublisher(hub)
	apptSvc.SetMetrics(mutationMetrics)
	appointment.NewHandler(apptSvc).RegisterRoutes(api)

	recordSvc := medicalrecord.NewService(medicalrecord.NewMedicalRecordRepoPG(deps.conn))
	recordSvc.SetPublisher(hub)
	recordSvc.SetMetrics(mutationMetrics)
	medicalrecord.NewHandler(recordSvc).RegisterRoutes(api)

	provider.NewHandler(provider.NewService(provider.NewProviderRepoPG(deps.conn))).RegisterRoutes(api)
	auditlog.NewHandler(auditSvc).RegisterRoutes(api)
	dashboard.NewHandler(dashboard.NewService(dashboard.NewStatsRepoPG(deps.conn))).RegisterRoutes(api)
	profile.NewHandler(profile.NewService(profile.NewProfileRepoPG(deps.conn))).RegisterRoutes(api)
	websocket.NewHandler(hub, cfg.CORSOrigins).RegisterRoutes(api)

	return e
}
