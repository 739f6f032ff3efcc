package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/tracelen/internal/config"
	"github.com/OpenTraceLab/tracelen/internal/log"
	"github.com/OpenTraceLab/tracelen/internal/monitor"
)

// usageMessage is printed to stdout when no layout file is given
const usageMessage = "Error: Please provide a .pcb filename as an argument."

var (
	// Global flags
	verbose       bool
	configFile    string
	settle        time.Duration
	grid          float64
	skipMalformed bool
	once          bool
)

var rootCmd = &cobra.Command{
	Use:   "tracelen <layout_file>",
	Short: "Measure connected copper trace lengths in a PCB layout file",
	Long: `tracelen watches a PCB layout file and prints the length of every
selected or connected trace whenever the lengths change.

Segment lines are those containing "Line" and either "connected" or
"selected". The first four values with a mil or mm suffix on each line
are taken as (x1, y1, x2, y2). Segments sharing an endpoint are joined
into one trace.

Examples:
  tracelen board.pcb                  # Watch and report on every save
  tracelen --once board.pcb           # Measure once and exit
  tracelen --grid 0 board.pcb         # Join endpoints only on exact match
  tracelen --config tracelen.yaml -v board.pcb`,
	Version:       "0.9.0",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaults := config.DefaultConfig()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.Flags().DurationVar(&settle, "settle", defaults.Settle, "quiet time after a change before reading")
	rootCmd.Flags().Float64Var(&grid, "grid", defaults.Grid, "endpoint snapping grid in mils (0 = exact match)")
	rootCmd.Flags().BoolVar(&skipMalformed, "skip-malformed", false, "skip malformed segment lines instead of skipping the pass")
	rootCmd.Flags().BoolVar(&once, "once", false, "measure once and exit instead of watching")
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), usageMessage)
		return nil
	}

	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}

	if err := log.Init(cfg.Verbose); err != nil {
		return err
	}
	defer log.Sync()

	m, err := monitor.New(cfg, cmd.OutOrStdout(), log.GetSugaredLogger())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Once {
		return m.Pass(ctx)
	}
	return m.Run(ctx)
}

// loadConfig builds the configuration: defaults, then the config file,
// then any flags set explicitly on the command line.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Path = path
	cfg.Verbose = verbose
	cfg.Once = once

	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("settle") {
		cfg.Settle = settle
	}
	if flags.Changed("grid") {
		cfg.Grid = grid
	}
	if flags.Changed("skip-malformed") {
		if skipMalformed {
			cfg.OnMalformed = config.MalformedSkip
		} else {
			cfg.OnMalformed = config.MalformedAbort
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
