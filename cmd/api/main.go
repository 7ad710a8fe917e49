package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"travelink/internal/approver"
	"travelink/internal/httpapi"
	"travelink/internal/notification"
	"travelink/internal/reminder"
	"travelink/internal/request"
	"travelink/internal/user"
	"travelink/pkg/config"
	"travelink/pkg/db"
	"travelink/pkg/sms"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("db open", zap.Error(err))
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.MigrateConfig(cfg.MigrationsPath, cfg); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg: cfg,
		Log: logger,
		DB:  conn,
	})

	usersRepo := user.NewRepository(conn)
	reminderJob := &reminder.Job{
		Cfg:       cfg,
		Log:       logger,
		Requests:  request.NewRepository(conn),
		Users:     usersRepo,
		Approvers: approver.NewRepository(conn),
		Notify: &notification.Dispatcher{
			Log:   logger,
			Repo:  notification.NewRepository(conn),
			Users: usersRepo,
			SMS: sms.Client{
				GatewayURL: cfg.SMS.GatewayURL,
				APIKey:     cfg.SMS.APIKey,
				SenderName: cfg.SMS.SenderName,
			},
		},
	}
	cronRunner, err := reminderJob.Start()
	if err != nil {
		logger.Fatal("reminder schedule", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http serve", zap.Error(err))
		}
	}()

	<-ctx.Done()

	<-cronRunner.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}

func newLogger(appEnv string) (*zap.Logger, error) {
	if appEnv == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
