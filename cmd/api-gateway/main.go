package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lms-admin-api/api/swagger"
	"github.com/noah-isme/lms-admin-api/internal/handler"
	"github.com/noah-isme/lms-admin-api/internal/middleware"
	"github.com/noah-isme/lms-admin-api/internal/repository"
	"github.com/noah-isme/lms-admin-api/internal/repository/inmem"
	"github.com/noah-isme/lms-admin-api/internal/service"
	"github.com/noah-isme/lms-admin-api/pkg/config"
	"github.com/noah-isme/lms-admin-api/pkg/database"
	"github.com/noah-isme/lms-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lms-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/lms-admin-api/pkg/notify"
)

// @title LMS Admin API
// @version 1.0.0
// @description Scheduling, course hold, attendance and leave rules for the LMS admin backend
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

type services struct {
	assignments *service.AssignmentService
	enrollments *service.EnrollmentService
	holds       *service.HoldService
	attendance  *service.AttendanceService
	leave       *service.LeaveService
	notices     *service.NoticeService
	feedback    *service.FeedbackService
	reviews     *service.ReviewService
	materials   *service.MaterialService
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	checks := map[string]handler.ReadinessCheck{}

	var redisClient *redis.Client
	if cfg.Notifications.Enabled {
		client, err := notify.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, alerts will skip pub/sub", zap.Error(err))
		} else {
			redisClient = client
			defer redisClient.Close()
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	notifier := service.NewNotificationService(buildSink(cfg.Notifications, redisClient, logr), service.NotificationConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		Retries:    cfg.Notifications.Retries,
		RetryDelay: time.Second,
	}, metricsSvc, logr)
	notifier.Start(ctx)
	defer notifier.Stop()

	validate := validator.New()
	accrual := service.MonthlyAccrual{PerPeriod: cfg.Leave.AccrualPerPeriod}
	attendanceOpts := []service.AttendanceServiceOption{
		service.WithEditWindow(cfg.Attendance.EditWindow),
		service.WithAlertMetrics(metricsSvc),
	}
	leaveOpts := []service.LeaveServiceOption{
		service.WithLeaveRetry(cfg.Leave.MaxRetries, cfg.Leave.RetryDelay),
		service.WithLeaveMetrics(metricsSvc),
	}

	var svcs services
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logr.Warn("using in-memory storage; data is lost on restart")
		db := inmem.New()
		courses := inmem.NewCourseRepository(db)
		enrollments := inmem.NewEnrollmentRepository(db)
		attendance := inmem.NewAttendanceRepository(db)
		svcs = services{
			assignments: service.NewAssignmentService(inmem.NewAssignmentRepository(db), courses, validate, logr),
			enrollments: service.NewEnrollmentService(enrollments, courses, validate, logr),
			holds:       service.NewHoldService(inmem.NewHoldRepository(db), enrollments, metricsSvc, validate, logr),
			attendance:  service.NewAttendanceService(attendance, notifier, validate, logr, attendanceOpts...),
			leave:       service.NewLeaveService(inmem.NewLeaveRepository(db), accrual, validate, logr, leaveOpts...),
			notices:     service.NewNoticeService(inmem.NewNoticeRepository(db), validate, logr),
			feedback:    service.NewFeedbackService(inmem.NewFeedbackRepository(db), courses, validate, logr, nil),
			reviews:     service.NewReviewService(inmem.NewReviewRepository(db), attendance, validate, logr, nil),
			materials:   service.NewMaterialService(inmem.NewMaterialRepository(db), courses, enrollments, validate, logr, nil),
		}
	case config.StorageDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close()
		checks["postgres"] = db.PingContext
		svcs = postgresServices(db, notifier, metricsSvc, validate, logr, accrual, attendanceOpts, leaveOpts)
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, TTL: cfg.JWT.Expiration})
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Assignments: handler.NewAssignmentHandler(svcs.assignments),
		Enrollments: handler.NewEnrollmentHandler(svcs.enrollments),
		Holds:       handler.NewHoldHandler(svcs.holds),
		Attendance:  handler.NewAttendanceHandler(svcs.attendance),
		Leave:       handler.NewLeaveHandler(svcs.leave),
		Notices:     handler.NewNoticeHandler(svcs.notices),
		Feedback:    handler.NewFeedbackHandler(svcs.feedback),
		Reviews:     handler.NewReviewHandler(svcs.reviews),
		Materials:   handler.NewMaterialHandler(svcs.materials),
	}, middleware.JWT(tokens))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func postgresServices(
	db *sqlx.DB,
	notifier *service.NotificationService,
	metricsSvc *service.MetricsService,
	validate *validator.Validate,
	logr *zap.Logger,
	accrual service.AccrualPolicy,
	attendanceOpts []service.AttendanceServiceOption,
	leaveOpts []service.LeaveServiceOption,
) services {
	courses := repository.NewCourseRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	attendance := repository.NewAttendanceRepository(db)
	return services{
		assignments: service.NewAssignmentService(repository.NewAssignmentRepository(db), courses, validate, logr),
		enrollments: service.NewEnrollmentService(enrollments, courses, validate, logr),
		holds:       service.NewHoldService(repository.NewHoldRepository(db), enrollments, metricsSvc, validate, logr),
		attendance:  service.NewAttendanceService(attendance, notifier, validate, logr, attendanceOpts...),
		leave:       service.NewLeaveService(repository.NewLeaveRepository(db), accrual, validate, logr, leaveOpts...),
		notices:     service.NewNoticeService(repository.NewNoticeRepository(db), validate, logr),
		feedback:    service.NewFeedbackService(repository.NewFeedbackRepository(db), courses, validate, logr, nil),
		reviews:     service.NewReviewService(repository.NewReviewRepository(db), attendance, validate, logr, nil),
		materials:   service.NewMaterialService(repository.NewMaterialRepository(db), courses, enrollments, validate, logr, nil),
	}
}

// buildSink returns nil when no channel is configured.
func buildSink(cfg config.NotificationConfig, redisClient *redis.Client, logr *zap.Logger) notify.Sink {
	if !cfg.Enabled {
		return nil
	}

	var sinks notify.Fanout
	if redisClient != nil {
		sinks = append(sinks, notify.NewRedisPublisher(redisClient, cfg.RedisChannel))
	}
	if cfg.SendGridAPIKey != "" && len(cfg.EmailRecipients) > 0 {
		sinks = append(sinks, notify.NewEmailSender(cfg.SendGridAPIKey, cfg.FromName, cfg.FromEmail, cfg.EmailRecipients))
	}
	if cfg.TelegramToken != "" && len(cfg.TelegramChatIDs) > 0 {
		tg, err := notify.NewTelegramSender(cfg.TelegramToken, cfg.TelegramChatIDs)
		if err != nil {
			logr.Warn("telegram sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, tg)
		}
	}

	if len(sinks) == 0 {
		logr.Warn("no notification channels configured")
		return nil
	}
	return sinks
}
