package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskview/api/handler"
	"github.com/fastygo/taskview/internal/app"
	"github.com/fastygo/taskview/internal/config"
	"github.com/fastygo/taskview/internal/infrastructure/monitor"
	"github.com/fastygo/taskview/internal/middleware"
	"github.com/fastygo/taskview/internal/router"
	"github.com/fastygo/taskview/internal/services"
	"github.com/fastygo/taskview/internal/services/lifecycle"
	"github.com/fastygo/taskview/pkg/httpcontext"
	"github.com/fastygo/taskview/pkg/logger"
	"github.com/fastygo/taskview/pkg/token"
	authUC "github.com/fastygo/taskview/usecase/auth"
	inviteUC "github.com/fastygo/taskview/usecase/invite"
	profileUC "github.com/fastygo/taskview/usecase/profile"
	taskUC "github.com/fastygo/taskview/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		File:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	fatal := func(msg string, err error) {
		_ = manager.Shutdown(context.Background())
		zapLogger.Fatal(msg, zap.Error(err))
	}

	mon := monitor.New(cfg.Monitor.Interval, zapLogger)

	repos, err := app.OpenStorage(appCtx, cfg, manager, mon, zapLogger)
	if err != nil {
		fatal("storage init failed", err)
	}

	if err := mon.Start(); err != nil {
		fatal("monitor start failed", err)
	}
	manager.Register("monitor", mon.Stop)

	recorder := services.NewActivityRecorder(repos.Activities, zapLogger)
	issuer := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)

	authUseCase := authUC.New(repos.Users, repos.Sessions, issuer, cfg.JWT.SessionTTL, zapLogger)
	profileUseCase := profileUC.New(repos.Users, zapLogger)
	inviteUseCase := inviteUC.New(repos.Invites, repos.Users, repos.Activities, recorder, zapLogger)
	taskUseCase := taskUC.New(repos.Tasks, repos.Invites, recorder, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Invite:  apiHandler.NewInviteHandler(inviteUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	server := &fasthttp.Server{
		Handler: router.Handler(handlers,
			middleware.CORS(cfg.HTTP.AllowedOrigin),
			middleware.Identity(issuer, authUseCase, cfg.AuthRequired(), zapLogger, router.PublicPaths...),
		),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("auth_mode", cfg.JWT.Mode))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
