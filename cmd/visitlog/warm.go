package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var warmTimeout time.Duration

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Warm the directory cache for every allowed root and exit",
	RunE:  runWarm,
}

func init() {
	warmCmd.Flags().DurationVar(&warmTimeout, "timeout", 5*time.Minute, "Overall warm timeout")
	rootCmd.AddCommand(warmCmd)
}

func runWarm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	roots := a.guard.Entries()
	if len(roots) == 0 {
		fmt.Println("allow-list is empty, nothing to warm")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	stats := a.cache.WarmAll(ctx, roots)
	fmt.Printf("warmed %d roots, %d failed\n", stats.Warmed, stats.Failed)
	if stats.Failed > 0 {
		return fmt.Errorf("%d roots failed to warm", stats.Failed)
	}
	return nil
}
