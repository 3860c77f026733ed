package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"resopt/internal/config"
	"resopt/internal/ui"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Optimize resources whenever they change",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ui.PrintHeader(Version)

		dir, err := projectDir(args)
		if err != nil {
			ui.PrintError("Failed to get current directory: %v", err)
			os.Exit(1)
		}

		if err := watch(cmd.Context(), dir, cmd); err != nil {
			ui.PrintError("%v", err)
			os.Exit(1)
		}
	},
}

// watch optimizes dir once and again after every change until ctx is done.
func watch(ctx context.Context, dir string, cmd *cobra.Command) error {
	roots, err := watchRoots(dir, cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	w, err := newFSWatcher(watchDebounce)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	for _, root := range roots {
		if err := w.AddTree(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}

	run := func() {
		if _, err := optimize(ctx, dir, cmd); err != nil {
			ui.PrintWarning("Optimization failed: %v", err)
		}
		fmt.Println()
		ui.PrintInfo("Watching for changes...")
	}
	w.IsValidFile = isWatchedFile
	w.Changed = func() {
		fmt.Println()
		ui.PrintInfo("Changes detected, optimizing...")
		fmt.Println()
		run()
	}

	run()
	ui.PrintInfo("Press Ctrl+C to stop")
	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("watching failed: %w", err)
	}
	return nil
}

func init() {
	addOptimizeFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before optimizing after a change")
	rootCmd.AddCommand(watchCmd)
}

// watchRoots returns the project directory and every input directory
// outside of it.
func watchRoots(dir string, cmd *cobra.Command) ([]string, error) {
	cfg, err := loadConfig(dir, cmd)
	if err != nil {
		return nil, err
	}
	sets, err := cfg.Sets()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	roots := []string{abs}
	for _, set := range sets {
		input, err := filepath.Abs(set.InputDir)
		if err != nil {
			return nil, err
		}
		if !within(abs, input) {
			roots = append(roots, input)
		}
	}
	return roots, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// isWatchedFile accepts stylesheets, scripts and the configuration files.
// Temporary files written by the optimizer are ignored.
func isWatchedFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.Contains(name, ".source.") {
		return false
	}
	if name == config.PropertiesFile || name == config.YAMLFile {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".css", ".js":
		return true
	}
	return false
}
