package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-frontdesk/config"
	deliveryHttp "clinic-frontdesk/internal/delivery/http"
	"clinic-frontdesk/internal/delivery/http/handler"
	"clinic-frontdesk/internal/delivery/http/middleware"
	"clinic-frontdesk/internal/infrastructure/cache"
	"clinic-frontdesk/internal/infrastructure/cloud"
	"clinic-frontdesk/internal/infrastructure/database"
	"clinic-frontdesk/internal/infrastructure/llm"
	"clinic-frontdesk/internal/infrastructure/messaging"
	"clinic-frontdesk/internal/repository"
	"clinic-frontdesk/internal/service"
	"clinic-frontdesk/internal/usecase"
	"clinic-frontdesk/pkg/jwt"
	"clinic-frontdesk/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Log         *logrus.Logger

	tokenGate service.TokenGate
	publisher service.EventPublisher
}

// New loads configuration and opens the database and Redis connections.
// The HTTP server is built separately by InitServer so one-shot commands
// do not pay for the integrations.
func New() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg.App.LogLevel)
	app := &App{Config: cfg, Log: log}
	log.Info("Configuration loaded successfully")

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	return app, nil
}

func setupLogger(level string) *logrus.Logger {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	return logrus.StandardLogger()
}

// InitServer wires the integrations, layers and router into app.Server
func (app *App) InitServer(ctx context.Context) error {
	cfg := app.Config
	log := app.Log
	db := app.DB

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Repositories
	clinicRepo := repository.NewClinicRepository()
	doctorRepo := repository.NewDoctorRepository()
	patientRepo := repository.NewPatientRepository()
	visitRepo := repository.NewVisitRepository()
	entryRepo := repository.NewQueueEntryRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	tx := repository.NewTransactor(db)

	// Integrations
	app.publisher = service.NewEventPublisher(messaging.NewKafkaWriter(cfg.Kafka), log)

	awsClients, err := cloud.NewAWSClients(ctx, cfg.AWS)
	if err != nil {
		return fmt.Errorf("failed to initialize AWS clients: %w", err)
	}

	var llmClient llm.Client
	if c := llm.NewOpenAIClient(cfg.OpenAI); c != nil {
		llmClient = c
	}

	app.tokenGate = service.NewTokenGate(db, app.RedisClient, doctorRepo, log)
	if err := app.tokenGate.SyncOnStartup(ctx); err != nil {
		// the gate stays cold and check-in falls back to the database counter
		log.Warnf("Token gate sync failed: %v", err)
	}

	integ := usecase.Integrations{
		Audit:    service.NewAuditService(log, auditLogRepo),
		Events:   app.publisher,
		Notifier: service.NewNotifier(awsClients.SQS, awsClients.QueueURL, log),
		Advisory: service.NewAdvisoryService(llmClient, app.RedisClient, cfg.Advisory, log),
		Archiver: service.NewReportArchiver(awsClients.S3, cfg.AWS.ReportBucket, log),
		Tokens:   app.tokenGate,
	}

	// Usecases
	queueUsecase := usecase.NewQueueUsecase(db, log, tx, doctorRepo, entryRepo, visitRepo, patientRepo, integ)
	sessionUsecase := usecase.NewDoctorSessionUsecase(db, log, tx, doctorRepo, entryRepo, visitRepo, integ)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorRepo, integ)
	patientUsecase := usecase.NewPatientUsecase(db, log, patientRepo, integ)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Handlers
	queueHandler := handler.NewQueueHandler(queueUsecase, customValidator)
	sessionHandler := handler.NewSessionHandler(sessionUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, app.RedisClient)
	tenantMiddleware := middleware.NewTenantMiddleware(db, log, clinicRepo)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins)

	router := deliveryHttp.NewRouter(
		queueHandler,
		doctorHandler,
		sessionHandler,
		patientHandler,
		auditLogHandler,
		authMiddleware,
		tenantMiddleware,
		corsMiddleware,
	)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close releases the integrations before the connections they depend on
func (app *App) Close() {
	if app.tokenGate != nil {
		app.tokenGate.Stop()
	}

	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.Log.Warnf("Failed to close event publisher: %v", err)
		}
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
