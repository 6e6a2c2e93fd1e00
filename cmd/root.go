// Package cmd provides the root command and CLI setup for evolve.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/evolve/internal/controller"
)

// uiFactory builds the UI for a command; tests replace it with a mock.
var uiFactory = func(cmd *cobra.Command) controller.UI {
	return controller.NewUI(cmd, uiMode)
}

var logLevelFlag string
var logFormatFlag string
var uiFlag string

var uiMode = controller.ModeAuto

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "Evolutionary computation engine",
		Long: `Evolve runs generational evolutionary searches over bitstring benchmark
problems and reports the population as it improves.

Selection can be lexicase, epsilon-lexicase, tournament, fitness-proportional
or a weighted mix, and every run is reproducible from its seed regardless of
how many workers it uses.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), logLevelFlag, logFormatFlag)
			if err != nil {
				return err
			}

			mode, err := controller.ParseMode(uiFlag)
			if err != nil {
				return err
			}

			slog.SetDefault(logger)
			uiMode = mode

			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "text", "log format: text or json")
	cmd.PersistentFlags().StringVar(&uiFlag, "ui", string(controller.ModeAuto), "display: auto, plain or tui")

	return cmd
}

// newLogger builds a slog logger writing to w at the given level and format.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return nil, fmt.Errorf("invalid log format %q: want text or json", format)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}
