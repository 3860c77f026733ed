package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"resopt/internal/ui"
)

// Version is set by ldflags during build
var Version = "dev"

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "resopt",
	Short: "CSS and JavaScript resource optimizer",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Long = ui.Divider() + "\n" + ui.Banner() + "\n" + ui.VersionLine(Version) + "\n\n" + ui.Divider() + "\n\n  Minifies, inlines and aggregates the stylesheets and scripts of a web project"
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every token and file")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print warnings and errors")
	rootCmd.AddCommand(versionCmd)
}

func configureLogging() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	switch {
	case verbose:
		log.SetLevel(log.DebugLevel)
	case quiet:
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	ui.Quiet = quiet
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("resopt %s\n", Version)
	},
}

// projectDir returns the directory given on the command line or the
// working directory.
func projectDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return os.Getwd()
}
