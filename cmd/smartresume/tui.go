package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/smartresume/internal/session"
	"github.com/amishk599/smartresume/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Fill in the resume form in the terminal",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The form runs in the alt screen; any log line written to stdout would
	// corrupt the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl, closeProvider, err := setupController(ctx, &cfg.Inference, silentLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up inference: %v\n", err)
		os.Exit(1)
	}
	defer closeProvider()

	if err := tui.Run(ctx, ctrl, session.NewState()); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
	return nil
}
