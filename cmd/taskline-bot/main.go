package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskline/taskline/internal/advisor"
	"github.com/taskline/taskline/internal/bot"
	"github.com/taskline/taskline/internal/config"
	"github.com/taskline/taskline/internal/dialog"
	projectrepo "github.com/taskline/taskline/internal/project/repositoryimpl"
	"github.com/taskline/taskline/internal/scheduler"
	"github.com/taskline/taskline/internal/session"
	taskrepo "github.com/taskline/taskline/internal/task/repositoryimpl"
	userrepo "github.com/taskline/taskline/internal/user/repositoryimpl"
	"github.com/taskline/taskline/pkg/clog"
	"github.com/taskline/taskline/pkg/storage"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup storage
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
	}

	// Setup repositories
	userRepo := userrepo.NewYAMLRepository(store)
	projectRepo := projectrepo.NewYAMLRepository(store)
	membershipRepo := projectrepo.NewMembershipYAMLRepository(store)
	taskRepo := taskrepo.NewYAMLRepository(store)
	assignmentRepo := taskrepo.NewAssignmentYAMLRepository(store)
	scheduleRepo := scheduler.NewYAMLRepository(store)

	gateway := bot.NewTelegramGateway(env.BotToken)
	sessions := session.NewStore()

	sched := scheduler.New(
		config.SchedulerEnvFromEnv(env).ReminderLead,
		scheduleRepo,
		taskRepo,
		projectRepo,
		membershipRepo,
		gateway,
	)

	svc := dialog.NewService(
		sessions,
		userRepo,
		projectRepo,
		membershipRepo,
		taskRepo,
		assignmentRepo,
		sched,
		advisor.NewClient(config.AdvisorEnvFromEnv(env)),
		gateway,
	)

	dispatcher := bot.NewDispatcher(
		svc.HandleUpdate,
		bot.LoggingMiddleware(),
		bot.RegistrationGateMiddleware(userRepo, sessions, gateway),
		bot.CommandFilterMiddleware(sessions, gateway, dialog.MenuCommands()),
	)

	srv := bot.NewServer(env.HTTPHost, env.HTTPPort, dispatcher)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Re-arm reminders persisted before the last restart.
	if err := sched.Restore(ctx); err != nil {
		slog.Error("failed to restore schedules", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	dispatcher.Close()
	sched.Stop()
}
