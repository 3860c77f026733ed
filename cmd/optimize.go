package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"resopt/internal/config"
	"resopt/internal/optimizer"
	"resopt/internal/ui"
)

var (
	optimizeWorkers       int
	optimizeFailOnWarning bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize [dir]",
	Short: "Optimize the resources of a directory",
	Long:  "Minify CSS and JavaScript files, inline small images and aggregate files as configured in optimizer.yaml or optimizer.properties",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ui.PrintHeader(Version)

		dir, err := projectDir(args)
		if err != nil {
			ui.PrintError("Failed to get current directory: %v", err)
			os.Exit(1)
		}

		if _, err := optimize(cmd.Context(), dir, cmd); err != nil {
			ui.PrintError("Optimization failed: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	addOptimizeFlags(optimizeCmd)
	rootCmd.AddCommand(optimizeCmd)
}

func addOptimizeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&optimizeWorkers, "workers", "w", 0, "Files optimized in parallel (default: configured value or number of CPUs)")
	cmd.Flags().BoolVar(&optimizeFailOnWarning, "fail-on-warning", false, "Treat configuration warnings as errors")
}

// loadConfig loads and validates the configuration of dir. Flags that were
// set on the command line win over the file.
func loadConfig(dir string, cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if cmd != nil {
		if cmd.Flags().Changed("workers") {
			cfg.Workers = optimizeWorkers
		}
		if cmd.Flags().Changed("fail-on-warning") {
			cfg.FailOnWarning = optimizeFailOnWarning
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// optimize runs every resource set of dir and prints the statistic.
func optimize(ctx context.Context, dir string, cmd *cobra.Command) (optimizer.Stats, error) {
	cfg, err := loadConfig(dir, cmd)
	if err != nil {
		return optimizer.Stats{}, err
	}
	if cfg.Skip {
		ui.PrintInfo("Optimization is skipped")
		return optimizer.Stats{}, nil
	}

	sets, err := cfg.Sets()
	if err != nil {
		return optimizer.Stats{}, err
	}

	start := time.Now()
	var total optimizer.Stats
	for _, set := range sets {
		ui.PrintHeaderLine(fmt.Sprintf("Optimizing %s", set.InputDir))
		stats, err := optimizer.New(set, cfg.Workers).Run(ctx)
		if err != nil {
			return total, err
		}
		total = total.Add(stats)
	}

	fmt.Println()
	if total.Original == 0 {
		ui.PrintInfo("No resources found for optimization.")
		return total, nil
	}
	ui.PrintStatistic(total.Original, total.Optimized)
	fmt.Println()
	ui.PrintSuccess("Optimization finished in %s", time.Since(start).Round(time.Millisecond))
	return total, nil
}
