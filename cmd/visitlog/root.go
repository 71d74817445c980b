package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/visitlog-dev/visitlog/pkg/config"
)

// Version information (set via ldflags)
var Version = "dev"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "visitlog",
	Short: "Record visit logs into a remote storage folder tree",
	Long: `visitlog records meeting and visit notes into a hierarchical remote
storage namespace. Users navigate an allow-listed folder tree, start a
recording session in a folder, and every message, file, photo and voice
note is appended to that folder until the session ends.

Commands:
  visitlog serve     # run the service with health and metrics endpoints
  visitlog console   # drive the folder dialogue interactively
  visitlog warm      # one-shot cache warm for all allowed roots
  visitlog check     # validate configuration and backend connectivity`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file (YAML)")
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(cfgFile)
}
