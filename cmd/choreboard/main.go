package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"choreboard/internal/config"
	"choreboard/internal/display"
	"choreboard/internal/repository"
	"choreboard/internal/service"
	"choreboard/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := repository.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.Error("db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	completionRepo := repository.NewCompletionRepository(db)

	taskSvc := service.NewTaskService(db, taskRepo, completionRepo)
	todaySvc := service.NewTodayService(taskRepo, completionRepo)
	orderSvc := service.NewOrderService(db, taskRepo)

	screen := display.NewController(cfg.BacklightPath, logger)
	schedule := display.NewSchedule(time.Local, logger)
	if err := schedule.Apply(cfg.DisplayOnAt, cfg.DisplayOffAt, screen); err != nil {
		logger.Error("display schedule", slog.String("error", err.Error()))
		os.Exit(1)
	}
	schedule.Start()
	defer schedule.Stop()

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: web.NewServer(taskSvc, todaySvc, orderSvc, screen, logger).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", slog.String("error", err.Error()))
		}
	}()

	logger.Info("chore board started", slog.String("addr", cfg.ListenAddr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
