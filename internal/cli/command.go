// Package cli wires flags, configuration and output for the dux command.
package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/dux/internal/config"
)

// options holds the flag values before they are merged with the environment
// configuration.
type options struct {
	inodes     bool
	noGrouping bool
	noF        bool
	reverse    bool
	follow     bool
	apparent   bool
	quiet      bool
	verbose    bool
	workers    int
}

// New creates the root command with the given version.
func New(version string) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "dux [path]",
		Short: "Show disk usage statistics for a directory",
		Long: heredoc.Doc(`
			dux reports how the contents of a directory use disk space.

			Every immediate child of the given path (default: the current
			directory) gets one row with its aggregate size in kilobytes,
			its share of the total and a proportional histogram bar.
			Subtrees are walked in parallel; entries that cannot be read
			count as zero and are listed after the report.

			With --inodes the metric is the number of contained filesystem
			entries instead of kilobytes.

			Defaults can also be set through DUX_* environment variables
			(e.g. DUX_WORKERS=4); flags take precedence.
		`),
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			if cmd.Flags().Changed("workers") {
				cfg.Workers = opts.workers
			}

			if opts.apparent {
				cfg.Apparent = true
			}

			if opts.quiet {
				cfg.Quiet = true
			}

			if opts.verbose {
				cfg.Verbose = true
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			return run(path, cfg, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.inodes, "inodes", "i", false, "Count inodes instead of disk usage")
	cmd.Flags().BoolVarP(&opts.noGrouping, "nogrouping", "g", false, "Don't use thousands separators")
	cmd.Flags().BoolVarP(&opts.noF, "noF", "f", false, "Don't append file type indicators")
	cmd.Flags().BoolVarP(&opts.reverse, "reverse", "r", false, "Sort ascending instead of descending")
	cmd.Flags().BoolVarP(&opts.follow, "follow", "L", false, "Follow symlinks (cycle-safe)")
	cmd.Flags().BoolVar(&opts.apparent, "apparent", false, "Use logical file sizes instead of allocated storage")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress the warning list after the report")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of concurrent subtree tasks (0 = number of CPUs)")

	cmd.Flags().SortFlags = false

	return cmd
}
