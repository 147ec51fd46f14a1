package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/idelchi/dux/internal/config"
	"github.com/idelchi/dux/internal/report"
	"github.com/idelchi/dux/internal/scan"
)

func run(path string, cfg *config.Config, opts options) error {
	logger := zap.NewNop()

	if cfg.Verbose {
		var err error

		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
	}

	defer logger.Sync() //nolint:errcheck // Best-effort flush on exit

	enableProgress := !cfg.Verbose && isatty.IsTerminal(os.Stderr.Fd())

	// Simple progress callback that prints directly to stderr
	var progressHook func(int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(os.Stderr, "\033[?25l")
		defer fmt.Fprint(os.Stderr, "\033[?25h")

		progressHook = func(entries int64) {
			fmt.Fprintf(os.Stderr, "\r\033[2KScanning… %s entries\r", humanize.Comma(entries))
		}
	}

	mode := scan.ModeDiskUsage
	if opts.inodes {
		mode = scan.ModeInodes
	}

	result, err := scan.Scan(context.Background(), path, scan.Options{
		Mode:           mode,
		FollowSymlinks: opts.follow,
		Apparent:       cfg.Apparent,
		Workers:        cfg.Workers,
	}, logger, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(os.Stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	if err := report.Render(os.Stdout, result, report.Options{
		Reverse:      opts.reverse,
		NoIndicators: opts.noF,
		NoGrouping:   opts.noGrouping,
	}); err != nil {
		return err
	}

	// Warnings go to stderr after the full report, never interleaved with it,
	// and do not affect the exit code.
	if !cfg.Quiet && len(result.Warnings) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d entries could not be read and were counted as 0:\n", len(result.Warnings))

		for _, warning := range result.Warnings {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", warning.Path, warning.Err)
		}
	}

	return nil
}
