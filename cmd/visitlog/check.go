package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and backend connectivity",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	fmt.Println("configuration: ok")

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.backend.Ping(ctx); err != nil {
		return fmt.Errorf("storage backend unreachable: %w", err)
	}
	fmt.Println("storage backend: ok")

	fmt.Printf("allowed folders: %d, allowed users: %d, admins: %d\n",
		len(a.guard.Entries()), len(a.users.Users()), len(a.users.Admins()))
	return nil
}
