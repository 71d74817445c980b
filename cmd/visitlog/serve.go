package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/visitlog-dev/visitlog/internal/refresh"
	"github.com/visitlog-dev/visitlog/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the service with health and metrics endpoints",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Printf("Starting visitlog v%s", Version)

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	observability.InitMetrics()
	checker := observability.NewHealthChecker()
	checker.RegisterCheck(observability.PingCheck())
	checker.RegisterCheck(observability.BackendCheck("storage", a.backend.Ping))

	obsServer := observability.NewServer(cfg.HTTPPort, checker)
	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on :%d", cfg.HTTPPort)
		if err := obsServer.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if cfg.Cache.WarmOnStart {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			stats := a.cache.WarmAll(ctx, a.guard.Entries())
			log.Printf("initial cache warm: %d ok, %d failed", stats.Warmed, stats.Failed)
		}()
	}

	scheduler := refresh.NewScheduler(a.cache, a.guard, cfg.Cache.RefreshCron)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Printf("Error: %v", err)
	case <-quit:
		log.Println("Shutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := obsServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Stopped")
	return nil
}
