package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/ebooklet-admin/internal"
	"github.com/frahmantamala/ebooklet-admin/internal/auth"
	"github.com/frahmantamala/ebooklet-admin/internal/core/events"
	"github.com/frahmantamala/ebooklet-admin/internal/patient"
	patientpg "github.com/frahmantamala/ebooklet-admin/internal/patient/postgres"
	"github.com/frahmantamala/ebooklet-admin/internal/setting"
	settingpg "github.com/frahmantamala/ebooklet-admin/internal/setting/postgres"
	"github.com/frahmantamala/ebooklet-admin/internal/transport/rest"
	"github.com/frahmantamala/ebooklet-admin/internal/user"
	userpg "github.com/frahmantamala/ebooklet-admin/internal/user/postgres"
	"github.com/frahmantamala/ebooklet-admin/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(log)
	events.RegisterAuditLogger(bus, log)

	userRepo := userpg.NewUserRepository(gormDB)
	patientRepo := patientpg.NewPatientRepository(gormDB)
	settingRepo := settingpg.NewSettingRepository(gormDB)

	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.TokenDuration)

	// the static source is consulted only when enabled in config, never as
	// an implicit reaction to store errors
	var fallback auth.CredentialStore
	if config.FallbackAuth.Enabled {
		fallback = auth.NewStaticCredentialSource(config.FallbackAuth)
		log.Warn("fallback credential source enabled", "users", len(config.FallbackAuth.Users))
	}

	authService := auth.NewService(userRepo, fallback, tokenGen, config.Security.BCryptCost, log)
	userService := user.NewService(userRepo, bus, config.Security.BCryptCost, log)
	patientService := patient.NewService(patientRepo, bus, log)
	settingService := setting.NewService(settingRepo, bus, log)

	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	patientHandler := patient.NewHandler(patientService)
	settingHandler := setting.NewHandler(settingService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, authHandler, userHandler, patientHandler, settingHandler, log)

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		Router: router,
	}, nil
}

// initDB opens the pgx stdlib connection pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the existing pool so both share one set of
// connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpg.New(gormpg.Config{Conn: db.DB}), &gorm.Config{})
}
