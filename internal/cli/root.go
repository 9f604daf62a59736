// Package cli provides the command-line interface for whcollect.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/whcollect/whcollect/internal/logging"
	"github.com/whcollect/whcollect/internal/version"
)

var (
	// Global flags
	cfgFile     string
	apiKey      string
	keyInQuery  bool
	apiBaseURL  string
	destination string
	flat        bool
	workers     int
	maxAttempts int
	timeoutSecs int
	dryRun      bool
	verbose     bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "whcollect USERNAME COLLECTION...",
		Short: "Download wallpapers from your wallhaven collections",
		Long: `whcollect ` + version.Version + ` - Built: ` + version.BuildTime + `
Downloads every wallpaper in one or more of a user's wallhaven collections.

USERNAME is your wallhaven username; COLLECTION... is one or more collection
labels or numeric ids, mixed freely. Throttled (429) API responses are
retried with exponential backoff; individual download failures are reported
at the end of the run without aborting it.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultLogger()
			if verbose {
				logging.SetGlobalLevel(-1) // zerolog.DebugLevel
			}
		},
		RunE: runDownload,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default ~/.config/whcollect/config)")
	rootCmd.PersistentFlags().StringVarP(&apiKey, "api-key", "a", "", "Wallhaven API key (overrides all other sources)")
	rootCmd.PersistentFlags().BoolVar(&keyInQuery, "key-in-query", false, "Send the API key as a query parameter instead of a header")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-url", "", "Wallhaven API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.Flags().StringVarP(&destination, "dest", "d", "", "Destination directory (must exist and be writable; files here may be overwritten)")
	rootCmd.Flags().BoolVarP(&flat, "flat", "f", false, "Suppress creating per-collection subdirectories")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent download workers (default 4, range 1-32)")
	rootCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Total attempts for throttled API requests (default 8)")
	rootCmd.Flags().IntVar(&timeoutSecs, "timeout", 0, "Per-request timeout in seconds (default 90)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be downloaded without downloading")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// Execute runs the CLI with SIGINT/SIGTERM cancelling the run context.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, finishing in-flight downloads...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}
