// Package bootstrap wires configuration, storage and HTTP handlers together.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/tsegaye25/load-tracking/internal/app/controllers"
	appMigrations "github.com/tsegaye25/load-tracking/internal/app/migrations"
	"github.com/tsegaye25/load-tracking/internal/app/notify"
	appRepos "github.com/tsegaye25/load-tracking/internal/app/repositories"
	appRoutes "github.com/tsegaye25/load-tracking/internal/app/routes"
	appServices "github.com/tsegaye25/load-tracking/internal/app/services"
	"github.com/tsegaye25/load-tracking/internal/config"
	"github.com/tsegaye25/load-tracking/internal/db"
	appMiddleware "github.com/tsegaye25/load-tracking/internal/middleware"
	pkgAuth "github.com/tsegaye25/load-tracking/internal/pkg/auth"
	"github.com/tsegaye25/load-tracking/internal/pkg/email"
	"github.com/tsegaye25/load-tracking/internal/pkg/logger"
	"github.com/tsegaye25/load-tracking/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          *appServices.AuthService
	CourseService        *appServices.CourseService
	InstructorService    *appServices.InstructorService
	AuthController       *appControllers.AuthController
	CourseController     *appControllers.CourseController
	InstructorController *appControllers.InstructorController
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	Emitter              *notify.AsyncEmitter
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  strings.ToLower(cfg.Logging.Level),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds default accounts.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}
	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := seed.CreateDefaultData(ctx, dbPool, lgr); err != nil {
		lgr.Warn().Err(err).Msg("Seeding default data reported errors")
	}

	return dbPool, nil
}

// BuildDependencies constructs repositories, services and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	repos := appRepos.NewRepositories(dbPool)

	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  cfg.AccessTokenExp(),
		RefreshTokenExp: cfg.RefreshTokenExp(),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, lgr)

	emitter := notify.NewAsyncEmitter(repos.Audits, mailer)

	authService := appServices.NewAuthService(repos.Users, repos.Tokens, jwtService)
	courseService := appServices.NewCourseService(repos.Courses, repos.Audits, emitter)
	instructorService := appServices.NewInstructorService(repos.Users, repos.Courses)

	return &Dependencies{
		AuthService:          authService,
		CourseService:        courseService,
		InstructorService:    instructorService,
		AuthController:       appControllers.NewAuthController(authService, lgr),
		CourseController:     appControllers.NewCourseController(courseService, lgr),
		InstructorController: appControllers.NewInstructorController(instructorService, lgr),
		Repos:                repos,
		JWTService:           jwtService,
		Emitter:              emitter,
		Logger:               lgr,
	}, nil
}

// SetupRouter creates the gin engine and registers all routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	appRoutes.SetupRouter(
		router,
		deps.AuthController,
		deps.CourseController,
		deps.InstructorController,
		deps.JWTService,
		deps.AuthService,
	)

	return router
}
