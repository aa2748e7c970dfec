package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/healthtracker/healthtracker/internal/config"
	"github.com/healthtracker/healthtracker/internal/domain/bloodtest"
	"github.com/healthtracker/healthtracker/internal/domain/doctor"
	"github.com/healthtracker/healthtracker/internal/domain/examtype"
	"github.com/healthtracker/healthtracker/internal/domain/patient"
	"github.com/healthtracker/healthtracker/internal/platform/db"
	"github.com/healthtracker/healthtracker/internal/platform/metrics"
	"github.com/healthtracker/healthtracker/internal/platform/middleware"
	"github.com/healthtracker/healthtracker/internal/platform/openapi"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tracker-server",
		Short: "People Health Tracker API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(indexesCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for migrations")
	}
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the relational schema (STORE_DRIVER=postgres)",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			schema, _ := cmd.Flags().GetString("schema")
			if schema == "" {
				schema = cfg.DBSchema
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, db.Migrations())
			fmt.Printf("Running migrations on schema: %s\n", schema)

			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "", "Target schema (defaults to DB_SCHEMA)")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			schema, _ := cmd.Flags().GetString("schema")
			if schema == "" {
				schema = cfg.DBSchema
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, db.Migrations()).Status(ctx, schema)
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
	statusCmd.Flags().String("schema", "", "Target schema (defaults to DB_SCHEMA)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create document store indexes (STORE_DRIVER=mongo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			client, err := db.NewMongoClient(ctx, cfg.MongoURL)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			n, err := db.EnsureIndexes(ctx, client.Database(cfg.MongoDBName))
			if err != nil {
				return err
			}
			fmt.Printf("Ensured %d index(es) on %s.\n", n, cfg.MongoDBName)
			return nil
		},
	}
}

// stores holds the repositories of the selected backend.
type stores struct {
	driver     string
	pinger     db.Pinger
	patients   patient.Repository
	doctors    doctor.Repository
	examTypes  examtype.Repository
	bloodTests bloodtest.Repository
	close      func()
}

func mongoStores(client *mongo.Client, database *mongo.Database) *stores {
	return &stores{
		driver:     config.StoreMongo,
		pinger:     db.MongoPinger{Client: client},
		patients:   patient.NewPatientRepoMongo(database),
		doctors:    doctor.NewDoctorRepoMongo(database),
		examTypes:  examtype.NewExamTypeRepoMongo(database),
		bloodTests: bloodtest.NewBloodTestRepoMongo(database),
		close:      func() { _ = client.Disconnect(context.Background()) },
	}
}

func pgStores(pool *pgxpool.Pool) *stores {
	return &stores{
		driver:     config.StorePostgres,
		pinger:     pool,
		patients:   patient.NewPatientRepoPG(pool),
		doctors:    doctor.NewDoctorRepoPG(pool),
		examTypes:  examtype.NewExamTypeRepoPG(pool),
		bloodTests: bloodtest.NewBloodTestRepoPG(pool),
		close:      pool.Close,
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		n, err := db.NewMigrator(pool, db.Migrations()).Up(ctx, cfg.DBSchema)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info().Int("applied", n).Str("schema", cfg.DBSchema).Msg("connected to postgres")
		return pgStores(pool), nil
	default:
		client, err := db.NewMongoClient(ctx, cfg.MongoURL)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.MongoDBName)
		n, err := db.EnsureIndexes(ctx, database)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		logger.Info().Int("indexes", n).Str("database", cfg.MongoDBName).Msg("connected to mongo")
		return mongoStores(client, database), nil
	}
}

// newServer builds the echo instance with middleware and every route group.
func newServer(cfg *config.Config, logger zerolog.Logger, st *stores) *echo.Echo {
	registry := metrics.NewRegistry("tracker")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)
	e.Pre(echomw.RemoveTrailingSlash())

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(registry.Middleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:  []string{echo.HeaderContentType, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
		IdleTTL:           10 * time.Minute,
	}))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "Welcome to " + cfg.ProjectName + " API",
			"status":  "operational",
		})
	})
	e.GET("/health", db.HealthHandler(st.driver, st.pinger))
	e.GET("/metrics", registry.Handler())

	api := e.Group(cfg.APIPrefix)

	patient.NewHandler(patient.NewService(st.patients)).RegisterRoutes(api)
	doctor.NewHandler(doctor.NewService(st.doctors)).RegisterRoutes(api)
	examtype.NewHandler(examtype.NewService(st.examTypes)).RegisterRoutes(api)

	validator := bloodtest.NewValidator(st.patients, st.examTypes, st.doctors)
	bloodSvc := bloodtest.NewService(st.bloodTests, validator, cfg.SummaryScanCap)
	bloodSvc.SetCounters(
		registry.NewCounter("blood_tests_created", "Blood tests stored, by test type.", "test_type"),
		registry.NewCounter("blood_test_rejections", "Blood test writes rejected by validation, by reason.", "reason"),
	)
	bloodtest.NewHandler(bloodSvc).RegisterRoutes(api)

	docs := openapi.NewGenerator(cfg.ProjectName+" API", version, cfg.APIPrefix, e.Routes)
	describeAPI(docs, cfg.APIPrefix)
	docs.RegisterRoutes(api)

	return e
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

	// Store
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := openStores(connectCtx, cfg, logger)
	cancelConnect()
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.StoreDriver).Msg("failed to open store")
	}
	defer st.close()

	e := newServer(cfg, logger, st)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("store", st.driver).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
