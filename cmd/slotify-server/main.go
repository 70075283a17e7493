package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/slotify/slotify/internal/config"
	"github.com/slotify/slotify/internal/domain/booking"
	"github.com/slotify/slotify/internal/domain/catalog"
	"github.com/slotify/slotify/internal/domain/identity"
	"github.com/slotify/slotify/internal/domain/staff"
	"github.com/slotify/slotify/internal/domain/tenant"
	"github.com/slotify/slotify/internal/platform/apperr"
	"github.com/slotify/slotify/internal/platform/auth"
	"github.com/slotify/slotify/internal/platform/db"
	"github.com/slotify/slotify/internal/platform/jobs"
	"github.com/slotify/slotify/internal/platform/middleware"
)

// requestValidator plugs go-playground/validator into echo's c.Validate.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// policyAdapter sources the booking policy from the current tenant's record.
type policyAdapter struct {
	tenants *tenant.Service
}

func (a *policyAdapter) PolicyFor(ctx context.Context) (*booking.Policy, error) {
	t, err := a.tenants.Current(ctx)
	if err != nil {
		return nil, err
	}
	return &booking.Policy{
		SlotDurationMinutes: t.SlotDurationMinutes,
		AdvanceBookingDays:  t.AdvanceBookingDays,
		AutoConfirm:         t.AutoConfirm,
		WorkingHoursStart:   t.WorkingHoursStart,
		WorkingHoursEnd:     t.WorkingHoursEnd,
		Timezone:            t.Timezone,
		Active:              t.Active,
		TenantName:          t.Name,
	}, nil
}

// scheduleAdapter exposes staff records and weekly schedules to the booking
// engine.
type scheduleAdapter struct {
	staff *staff.Service
}

func (a *scheduleAdapter) StaffInfo(ctx context.Context, staffID uuid.UUID) (*booking.StaffInfo, error) {
	m, err := a.staff.Get(ctx, staffID)
	if err != nil {
		return nil, err
	}
	return &booking.StaffInfo{ID: m.ID, DisplayName: m.FullName, Active: m.Active}, nil
}

func (a *scheduleAdapter) DaySchedule(ctx context.Context, staffID uuid.UUID, dayOfWeek int) (*booking.DaySchedule, error) {
	entry, err := a.staff.ScheduleDay(ctx, staffID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	return &booking.DaySchedule{
		DayOfWeek: entry.DayOfWeek,
		Start:     entry.Start,
		End:       entry.End,
		Available: entry.Available,
	}, nil
}

// catalogAdapter exposes the service catalog to the booking engine.
type catalogAdapter struct {
	catalog *catalog.Manager
}

func (a *catalogAdapter) ServiceInfo(ctx context.Context, serviceID uuid.UUID) (*booking.ServiceInfo, error) {
	svc, err := a.catalog.Get(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return &booking.ServiceInfo{
		ID:              svc.ID,
		Name:            svc.Name,
		DurationMinutes: svc.DurationMinutes,
		Price:           svc.Price,
		Active:          svc.Active,
	}, nil
}

// schemaProvisioner creates a tenant schema and runs the per-tenant
// migrations against it.
type schemaProvisioner struct {
	pool          *pgxpool.Pool
	migrationsDir string
}

func (p *schemaProvisioner) Provision(ctx context.Context, slug string) error {
	return db.CreateTenantSchema(ctx, p.pool, slug, p.migrationsDir)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "slotify-server",
		Short: "Multi-tenant appointment scheduling API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tenantCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scheduling API server",
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

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			// The shared schema is bootstrapped here; tenant schemas are
			// created through tenant provisioning.
			if schema == "shared" {
				if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS shared"); err != nil {
					return fmt.Errorf("create shared schema: %w", err)
				}
			}

			migrator := db.NewMigrator(pool, dir)
			fmt.Printf("Running migrations on schema: %s\n", schema)

			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "shared", "Target schema for migrations")
	upCmd.Flags().String("dir", "./migrations/shared", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", schema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("schema", "shared", "Target schema for migrations")
	statusCmd.Flags().String("dir", "./migrations/shared", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Restore from a backup or write a forward migration instead.")
			return nil
		},
	})

	return cmd
}

func tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a tenant and create its schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			timezone, _ := cmd.Flags().GetString("timezone")
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
			provisioner := &schemaProvisioner{
				pool:          pool,
				migrationsDir: filepath.Join(cfg.MigrationsDir, "tenant"),
			}
			svc := tenant.NewService(tenant.NewRepo(pool), provisioner, logger)

			t, err := svc.Provision(ctx, tenant.ProvisionRequest{
				Name:     name,
				Email:    email,
				Timezone: timezone,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Tenant created: %s (slug %s, schema %s)\n", t.Name, t.Slug, db.SchemaName(t.Slug))
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Business name")
	createCmd.Flags().String("email", "", "Contact email")
	createCmd.Flags().String("timezone", "", "Display timezone label")

	cmd.AddCommand(createCmd)
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.JWTTTLMins)*time.Minute)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Tenant"},
	}))
	e.Use(middleware.RequestTimeout(30 * time.Second))

	// Auth middleware
	e.Use(auth.Middleware(issuer, auth.PublicPathSkipper))

	// Tenant middleware
	e.Use(db.TenantMiddleware(pool, cfg.DefaultTenant))

	// API groups. The public group is the unauthenticated customer surface.
	apiV1 := e.Group("/api/v1")
	public := apiV1.Group("/public")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Domain services
	provisioner := &schemaProvisioner{
		pool:          pool,
		migrationsDir: filepath.Join(cfg.MigrationsDir, "tenant"),
	}
	tenantRepo := tenant.NewRepo(pool)
	tenantSvc := tenant.NewService(tenantRepo, provisioner, logger)

	identitySvc := identity.NewService(identity.NewRepo(pool), tenantRepo, issuer, logger)

	staffSvc := staff.NewService(staff.NewRepo(pool), logger)
	catalogMgr := catalog.NewManager(catalog.NewRepo(pool), logger)

	bookingSvc := booking.NewService(
		booking.NewRepo(pool),
		&policyAdapter{tenants: tenantSvc},
		&scheduleAdapter{staff: staffSvc},
		&catalogAdapter{catalog: catalogMgr},
		logger,
	)

	// Routes
	tenant.NewHandler(tenantSvc).RegisterRoutes(apiV1, public)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1, public)
	staff.NewHandler(staffSvc).RegisterRoutes(apiV1, public)
	catalog.NewHandler(catalogMgr).RegisterRoutes(apiV1, public)
	booking.NewHandler(bookingSvc).RegisterRoutes(apiV1, public)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Reminder sweep
	reminder := jobs.NewReminder(pool, tenantSvc, cfg.ReminderCron, cfg.ReminderLeadHours, logger)
	if err := reminder.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start reminder job")
	}
	defer reminder.Stop()

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
