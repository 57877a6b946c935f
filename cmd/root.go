package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/datadash-cli/internal/config"
	"github.com/KaramelBytes/datadash-cli/internal/log"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	quiet   bool
	// Backend flags (override config if set)
	flagBackendURL       string
	flagUploadTimeoutSec int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "datadash",
	Short: "datadash CLI: analyze CSV files through the dashboard backend",
	Long: `datadash uploads CSV files to the analysis backend, decides whether the result is
usable, falls back to bundled sample data when it is not, and exports the effective
dataset as CSV or XLSX. It can also serve the dashboard as a JSON API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datadash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().StringVar(&flagBackendURL, "backend", "", "analysis backend base URL (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagUploadTimeoutSec, "upload-timeout", 0, "upload timeout in seconds (overrides config)")
}

func loadConfig() {
	// .env in the working directory is optional
	_ = godotenv.Load()
	log.Setup(debug, quiet)

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("backend") && flagBackendURL != "" {
		cfg.BackendBaseURL = flagBackendURL
	}
	if f.Changed("upload-timeout") && flagUploadTimeoutSec > 0 {
		cfg.UploadTimeoutSec = flagUploadTimeoutSec
	}
}

// currentConfig returns the loaded configuration, or defaults when loading failed.
func currentConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	c := &cfgpkg.Global{
		BackendBaseURL: cfgpkg.DefaultBackendBaseURL,
		ListenAddr:     cfgpkg.DefaultListenAddr,
		ExportDir:      ".",
		PreviewRows:    cfgpkg.DefaultPreviewRows,
	}
	if flagBackendURL != "" {
		c.BackendBaseURL = flagBackendURL
	}
	c.UploadTimeoutSec = flagUploadTimeoutSec
	return c
}
