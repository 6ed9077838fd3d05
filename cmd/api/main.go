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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/gympoint/gympoint-api/api/swagger"
	"github.com/gympoint/gympoint-api/internal/handler"
	internalmiddleware "github.com/gympoint/gympoint-api/internal/middleware"
	"github.com/gympoint/gympoint-api/internal/notify"
	"github.com/gympoint/gympoint-api/internal/repository"
	"github.com/gympoint/gympoint-api/internal/service"
	"github.com/gympoint/gympoint-api/pkg/cache"
	"github.com/gympoint/gympoint-api/pkg/config"
	"github.com/gympoint/gympoint-api/pkg/database"
	"github.com/gympoint/gympoint-api/pkg/logger"
	"github.com/gympoint/gympoint-api/pkg/mail"
	corsmiddleware "github.com/gympoint/gympoint-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gympoint/gympoint-api/pkg/middleware/requestid"
	"github.com/gympoint/gympoint-api/pkg/queue"
)

// @title Gympoint API
// @version 1.0.0
// @description Gym management backend: students, plans, enrollments and help orders
// @BasePath /
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("postgres connection failed", "error", err)
	}
	defer db.Close()

	mongoDB, err := database.NewMongo(cfg.Mongo)
	if err != nil {
		logr.Sugar().Fatalw("mongo connection failed", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoDB.Client().Disconnect(ctx)
	}()

	metricsSvc := service.NewMetricsService()

	mailer, err := mail.NewMailer(cfg.Mail)
	if err != nil {
		logr.Sugar().Fatalw("mailer setup failed", "error", err)
	}
	notifier := notify.NewMailNotifier(mailer, queue.Config{
		Workers:    cfg.Notify.Workers,
		MaxRetries: cfg.Notify.MaxRetries,
		RetryDelay: cfg.Notify.RetryDelay,
		Logger:     logr,
	}, metricsSvc, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier.Start(ctx)
	defer notifier.Stop()

	studentRepo := repository.NewStudentRepository(db)
	planRepo := repository.NewPlanRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	helpOrderRepo := repository.NewHelpOrderRepository(mongoDB)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
	})
	userSvc := service.NewUserService(userRepo, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, nil, logr)
	planSvc := service.NewPlanService(planRepo, nil, logr)

	var enrollmentSvc *service.EnrollmentService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("redis connection failed", "error", err)
		}
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		enrollmentSvc = service.NewEnrollmentService(enrollmentRepo, studentRepo, planRepo, cacheRepo, cfg.Cache.TTL, notifier, nil, logr)
	} else {
		enrollmentSvc = service.NewEnrollmentService(enrollmentRepo, studentRepo, planRepo, nil, 0, notifier, nil, logr)
	}
	helpOrderSvc := service.NewHelpOrderService(helpOrderRepo, studentRepo, notifier, nil, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	planHandler := handler.NewPlanHandler(planSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	helpOrderHandler := handler.NewHelpOrderHandler(helpOrderSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/sessions", authHandler.Login)

	authorized := r.Group("/", internalmiddleware.JWT(authSvc))
	{
		authorized.POST("/users", userHandler.Create)
		authorized.PUT("/users", userHandler.Update)

		authorized.GET("/students", studentHandler.List)
		authorized.GET("/students/:id", studentHandler.Find)
		authorized.POST("/students", studentHandler.Create)
		authorized.PUT("/students/:id", studentHandler.Update)

		authorized.GET("/students/:id/help-orders", helpOrderHandler.ListOpen)
		authorized.GET("/students/:id/help-orders/all", helpOrderHandler.ListByStudent)
		authorized.POST("/students/:id/help-orders", helpOrderHandler.Create)
		authorized.POST("/help-orders/:id/answer", helpOrderHandler.Answer)

		authorized.GET("/plans", planHandler.List)
		authorized.POST("/plans", planHandler.Create)
		authorized.PUT("/plans/:id", planHandler.Update)
		authorized.DELETE("/plans/:id", planHandler.Delete)

		authorized.GET("/enrollments", enrollmentHandler.List)
		authorized.GET("/enrollments/export", enrollmentHandler.Export)
		authorized.POST("/enrollments", enrollmentHandler.Create)
		authorized.PUT("/enrollments/:id", enrollmentHandler.Update)
		authorized.DELETE("/enrollments/:id", enrollmentHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
