package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "relay - provider-agnostic chat proxy",
	Long: `Relay is a provider-agnostic proxy that normalizes chat requests and
responses across heterogeneous AI model backends: a cloud API with
SSE-style delta streaming and a self-hosted API with newline-delimited
JSON streaming.

It exposes a single front door:
  - POST /api/chat    - bulk or streaming chat, optional image attachment
  - GET  /api/models  - model listing per backend
  - GET  /health      - liveness`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
