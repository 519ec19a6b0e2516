// Package cmd is the tubemd command-line surface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tubemd/internal/config"
	apperrors "tubemd/internal/errors"
	"tubemd/internal/logger"
)

var (
	verbose bool
	quiet   bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tubemd <youtube-url>",
	Short: "Turn YouTube videos into markdown transcripts",
	Long: `tubemd extracts the spoken content of a YouTube video into a markdown
document, preferring the video's caption track and falling back to local
speech recognition, with optional LLM-powered formatting.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogging()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runTranscribe(cmd, args)
	},
}

func setupLogging() {
	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	if quiet {
		logCfg.Level = "error"
	}
	logger.SetGlobal(logger.New(logCfg))
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the pipeline context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(err)
	}
	return err
}

func printError(err error) {
	var app *apperrors.AppError
	if errors.As(err, &app) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", app.Message)
		if verbose && app.Cause != nil {
			fmt.Fprintf(os.Stderr, "Cause: %v\n", app.Cause)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
}
