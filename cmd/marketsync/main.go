package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"marketsync/auth"
	"marketsync/domain"
	"marketsync/infrastructure/supabase"
	"marketsync/realtime"
	"marketsync/services"
	"marketsync/session"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "marketsync terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run signs in with the configured session, then keeps the viewer's
// notifications and unread count live until interrupted.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// The signing secret belongs to the backend; the token is only read here.
	viewer, err := auth.ViewerFromUnverifiedToken(config.AccessToken)
	if err != nil {
		return exitConfig, fmt.Errorf("access token: %w", err)
	}
	logger = logger.With("user_id", viewer.UserID, "role", viewer.Role)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := supabase.NewClient(logger, supabase.Config{
		URL:         config.SupabaseURL,
		AnonKey:     config.SupabaseAnonKey,
		AccessToken: config.AccessToken,
		Timeout:     config.RequestTimeout,
	})
	socket, err := supabase.DialRealtime(ctx, logger, supabase.RealtimeConfig{
		URL:         config.SupabaseURL,
		AnonKey:     config.SupabaseAnonKey,
		AccessToken: config.AccessToken,
		Heartbeat:   config.HeartbeatInterval,
	})
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		logger.Info("Closing realtime connection...")
		_ = socket.Close()
	}()

	registry := realtime.NewRegistry(logger, socket)
	defer registry.Cleanup(context.Background())
	readState := services.NewReadStateService(logger, client, viewer)

	if viewer.IsProfessional() {
		plans := services.NewPlanService(logger, client, client)
		if _, err := plans.Load(ctx, viewer.UserID); err != nil {
			logger.Warn("Plan not loaded", "error", err)
		}
		if entitlement, err := plans.Refresh(ctx, viewer.UserID, config.AccessToken); err == nil {
			logger.Info("Plan", "tier", entitlement.Plan.Tier,
				"services", entitlement.Usage.Services, "applications", entitlement.Usage.Applications)
		}
	}

	inbox := session.NewNotificationsView(logger, viewer, client, registry, readState)
	inbox.OnNotification(func(n domain.Notification) {
		logger.Info("Notification", "type", n.Type, "title", n.Title, "message", n.Message, "unread", inbox.Unread())
	})
	inbox.Open(ctx)
	defer inbox.Close(context.Background())

	counter := session.NewUnreadCounter(logger, viewer, client, registry)
	counter.OnChange(func(count int) {
		logger.Info("Unread messages", "count", count)
	})
	counter.Start(ctx)
	defer counter.Stop(context.Background())

	logger.Info("Listening", "notifications", len(inbox.Notifications()), "unread", counter.Count())
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		return exitOK, nil
	case <-socket.Done():
		logger.Error("Realtime connection closed by server")
		return exitRuntime, fmt.Errorf("realtime connection lost")
	}
}
