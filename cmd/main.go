/*
Package main is the entry point for the emberchat server.

It loads configuration, initializes the global logging system, restores the
chat room from the latest snapshot, starts the room and the persistence
gateway, and serves HTTP until an interrupt triggers a graceful shutdown
with a final snapshot flush.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emberchat/internal/app/chat"
	"emberchat/internal/app/snapshot"
	"emberchat/internal/configs"
	"emberchat/internal/handler"
	"emberchat/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("snapshot_backend", cfg.SnapshotBackend).
		Dur("retention_window", cfg.RetentionWindow).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The snapshot store is best-effort: when it cannot be reached the
	// process runs purely in memory and save attempts are retried on the
	// regular schedule.
	store, err := snapshot.NewStore(ctx, cfg)
	if err != nil {
		logx.Error(err, "Snapshot store unavailable; continuing without persistence")
		store = nil
	}

	room := chat.NewRoom(chat.Config{
		ReservedNickname:     cfg.ReservedNickname,
		RetentionWindow:      cfg.RetentionWindow,
		SweepInterval:        cfg.SweepInterval,
		OneNicknamePerIP:     cfg.OneNicknamePerIP,
		CheckpointMessages:   cfg.CheckpointMessages,
		SnapshotMessageLimit: cfg.SnapshotMessageLimit,
	})

	gateway := snapshot.NewGateway(store, room, cfg.SnapshotInterval)

	if doc, err := gateway.Restore(ctx); err != nil {
		logx.Error(err, "Failed to restore snapshot; starting with an empty room")
	} else if doc != nil {
		room.RestoreSnapshot(doc)
	}

	room.SetCheckpointer(gateway)
	room.Start()
	gateway.Start()

	deps := &handler.AppDeps{
		Room:   room,
		Config: cfg,
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler.Router(deps),
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Chat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	room.Shutdown()
	gateway.Stop(shutdownCtx)

	logx.Info("Server gracefully stopped.")
}
