package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/schooltransit/dispatch/internal/config"
	"github.com/schooltransit/dispatch/internal/logging"
)

var (
	logger     zerolog.Logger
	cfg        config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "dispatchd",
	Short: "School transportation dispatch service",
	Long: "dispatchd schedules school transportation events, detects vehicle and " +
		"driver booking conflicts, and tracks student assignments.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML configuration file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and sets up the process logger. Called by
// commands that need it.
func loadConfig() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	logger = logging.Setup(cfg.Environment)
	return nil
}

// randomHex returns a hex-encoded random string of the given byte length,
// used for session tokens.
func randomHex(bytes int) string {
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
