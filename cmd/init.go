package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resopt/internal/config"
	"resopt/internal/ui"
)

var (
	initYAML  bool
	initForce bool
)

var errConfigExists = errors.New("configuration already exists")

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a default optimizer configuration",
	Long:  "Write a commented optimizer.properties (or optimizer.yaml) with the default settings",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ui.PrintHeader(Version)

		dir, err := projectDir(args)
		if err != nil {
			ui.PrintError("Failed to get current directory: %v", err)
			os.Exit(1)
		}

		path, err := writeDefaultConfig(dir, initYAML, initForce)
		if err != nil {
			ui.PrintError("Failed to create configuration: %v", err)
			if errors.Is(err, errConfigExists) {
				ui.PrintInfo("Use --force to overwrite it")
			}
			os.Exit(1)
		}

		ui.PrintSuccess("Created %s", path)
		fmt.Println()
		ui.PrintInfo("Run 'resopt optimize' to optimize the resources")
	},
}

func init() {
	initCmd.Flags().BoolVar(&initYAML, "yaml", false, "Write optimizer.yaml instead of optimizer.properties")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

func writeDefaultConfig(dir string, yaml, force bool) (string, error) {
	name, content := config.PropertiesFile, defaultProperties
	if yaml {
		name, content = config.YAMLFile, defaultYAML
	}
	path := filepath.Join(dir, name)
	if !force && config.FileExists(path) {
		return "", fmt.Errorf("%w: %s", errConfigExists, path)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

const defaultProperties = `# Resource optimizer configuration

# Directory scanned for resources, relative to this file
input-dir=.

# Comma separated glob patterns, ** matches any number of directories
includes=**/*.css, **/*.js
excludes=

# Write name<suffix>.css next to each file instead of replacing it
suffix=

encoding=UTF-8

# Inline images smaller than 32KB as data URIs
use-data-uri=false
# Directories searched for #{resource[...]} images
images-dir=

# WHITESPACE_ONLY, SIMPLE_OPTIMIZATIONS or ADVANCED_OPTIMIZATIONS
compilation-level=SIMPLE_OPTIMIZATIONS
emit-use-strict=false
# Newest JavaScript edition of the output, e.g. ECMASCRIPT5 or ECMASCRIPT_2017
language-out=NO_TRANSPILE

# Insert a line break after the first rule past this column, 0 disables it
line-break=500

fail-on-warning=false
skip=false

# Aggregation, set either output-file or sub-dir-mode
#aggregation.output-file=all.css
#aggregation.sub-dir-mode=true
#aggregation.remove-included=true
#aggregation.remove-empty-directories=false
#aggregation.without-compress=false
#aggregation.prepended-file=license.txt
#aggregation.source-map=false
# Prefix of the sourceMappingURL and directory receiving the source maps
#source-map-root=/static/maps/
#source-map-dir=build/maps
`

const defaultYAML = `# Resource optimizer configuration
input-dir: .
includes: ["**/*.css", "**/*.js"]
excludes: []
use-data-uri: false
compilation-level: SIMPLE_OPTIMIZATIONS
language-out: NO_TRANSPILE
line-break: 500
fail-on-warning: false

# Resource sets inherit the values above
#resource-sets:
#  - input-dir: css
#    includes: ["**/*.css"]
#    aggregations:
#      - output-file: css/all.css
#        remove-empty-directories: true
#  - input-dir: js
#    includes: ["**/*.js"]
#    aggregations:
#      - sub-dir-mode: true
#        source-map: true
`
