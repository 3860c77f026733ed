// Package config loads the optimizer settings from optimizer.yaml or
// optimizer.properties.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"resopt/internal/jsmin"
	"resopt/internal/scanner"
)

const (
	PropertiesFile = "optimizer.properties"
	YAMLFile       = "optimizer.yaml"

	DefaultEncoding  = "UTF-8"
	DefaultLineBreak = 500
)

var (
	// ErrAmbiguousAggregation means an aggregation sets both an output
	// file and the sub-directory mode.
	ErrAmbiguousAggregation = errors.New("aggregation has both an output file and sub-directory mode")

	// ErrNoAggregation means an aggregation sets neither an output file
	// nor the sub-directory mode.
	ErrNoAggregation = errors.New("aggregation has neither an output file nor sub-directory mode")

	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

// Aggregation merges the optimized files of a resource set into one file.
type Aggregation struct {
	OutputFile             string `yaml:"output-file"`
	SubDirMode             bool   `yaml:"sub-dir-mode"`
	RemoveIncluded         bool   `yaml:"remove-included"`
	RemoveEmptyDirectories bool   `yaml:"remove-empty-directories"`
	WithoutCompress        bool   `yaml:"without-compress"`
	PrependedFile          string `yaml:"prepended-file"`
	SourceMap              bool   `yaml:"source-map"`
}

// DefaultAggregation returns an aggregation with its defaults applied.
func DefaultAggregation() Aggregation {
	return Aggregation{RemoveIncluded: true}
}

// UnmarshalYAML applies the defaults to fields missing from the document.
func (a *Aggregation) UnmarshalYAML(node *yaml.Node) error {
	type plain Aggregation
	p := plain(DefaultAggregation())
	if err := node.Decode(&p); err != nil {
		return err
	}
	*a = Aggregation(p)
	return nil
}

// ResourceSet is a group of files optimized with its own settings. Unset
// fields inherit the top-level values.
type ResourceSet struct {
	InputDir         string        `yaml:"input-dir"`
	ImagesDirs       []string      `yaml:"images-dir"`
	Includes         []string      `yaml:"includes"`
	Excludes         []string      `yaml:"excludes"`
	Suffix           *string       `yaml:"suffix"`
	UseDataURI       *bool         `yaml:"use-data-uri"`
	CompilationLevel string        `yaml:"compilation-level"`
	EmitUseStrict    *bool         `yaml:"emit-use-strict"`
	LanguageOut      string        `yaml:"language-out"`
	SourceMapRoot    string        `yaml:"source-map-root"`
	SourceMapDir     string        `yaml:"source-map-dir"`
	Aggregations     []Aggregation `yaml:"aggregations"`
}

// Config is the complete optimizer configuration.
type Config struct {
	// Dir is the directory the configuration was loaded from. Relative
	// paths are resolved against it.
	Dir string `yaml:"-"`

	InputDir         string        `yaml:"input-dir"`
	ImagesDirs       []string      `yaml:"images-dir"`
	Includes         []string      `yaml:"includes"`
	Excludes         []string      `yaml:"excludes"`
	Suffix           string        `yaml:"suffix"`
	Encoding         string        `yaml:"encoding"`
	UseDataURI       bool          `yaml:"use-data-uri"`
	FailOnWarning    bool          `yaml:"fail-on-warning"`
	CompilationLevel string        `yaml:"compilation-level"`
	EmitUseStrict    bool          `yaml:"emit-use-strict"`
	LanguageOut      string        `yaml:"language-out"`
	SourceMapRoot    string        `yaml:"source-map-root"`
	SourceMapDir     string        `yaml:"source-map-dir"`
	LineBreak        int           `yaml:"line-break"`
	Workers          int           `yaml:"workers"`
	Skip             bool          `yaml:"skip"`
	Aggregations     []Aggregation `yaml:"aggregations"`
	ResourceSets     []ResourceSet `yaml:"resource-sets"`
}

// Default returns the configuration used when dir has no config file.
func Default(dir string) *Config {
	return &Config{
		Dir:              dir,
		InputDir:         ".",
		Includes:         append([]string(nil), scanner.DefaultIncludes...),
		Encoding:         DefaultEncoding,
		CompilationLevel: jsmin.Simple.String(),
		LanguageOut:      jsmin.NoTranspile,
		LineBreak:        DefaultLineBreak,
		Workers:          runtime.NumCPU(),
	}
}

// Load reads optimizer.yaml or, when it is missing, optimizer.properties
// from dir. Without either file the defaults are returned.
func Load(dir string) (*Config, error) {
	if path := filepath.Join(dir, YAMLFile); FileExists(path) {
		return LoadYAML(path)
	}
	if path := filepath.Join(dir, PropertiesFile); FileExists(path) {
		props, err := ParseProperties(path)
		if err != nil {
			return nil, err
		}
		return FromProperties(dir, props)
	}
	log.Debugf("No %s or %s in %s, using defaults.", YAMLFile, PropertiesFile, dir)
	return Default(dir), nil
}

// LoadYAML reads a YAML configuration file.
func LoadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg := Default(filepath.Dir(path))
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// FromProperties builds a configuration from optimizer.properties keys.
// The properties format describes at most one aggregation.
func FromProperties(dir string, props Properties) (*Config, error) {
	cfg := Default(dir)
	cfg.InputDir = props.GetWithDefault("input-dir", cfg.InputDir)
	cfg.ImagesDirs = props.GetList("images-dir")
	if includes := props.GetList("includes"); len(includes) > 0 {
		cfg.Includes = includes
	}
	cfg.Excludes = props.GetList("excludes")
	cfg.Suffix = props.Get("suffix")
	cfg.Encoding = props.GetWithDefault("encoding", cfg.Encoding)
	cfg.UseDataURI = props.GetBool("use-data-uri")
	cfg.FailOnWarning = props.GetBool("fail-on-warning")
	cfg.CompilationLevel = props.GetWithDefault("compilation-level", cfg.CompilationLevel)
	cfg.EmitUseStrict = props.GetBool("emit-use-strict")
	cfg.LanguageOut = props.GetWithDefault("language-out", cfg.LanguageOut)
	cfg.SourceMapRoot = props.Get("source-map-root")
	cfg.SourceMapDir = props.Get("source-map-dir")
	cfg.Skip = props.GetBool("skip")

	var err error
	if cfg.LineBreak, err = props.GetInt("line-break", cfg.LineBreak); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", PropertiesFile, err)
	}
	if cfg.Workers, err = props.GetInt("workers", cfg.Workers); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", PropertiesFile, err)
	}

	output := props.Get("aggregation.output-file")
	subDirs := props.GetBool("aggregation.sub-dir-mode")
	if output != "" || subDirs {
		cfg.Aggregations = []Aggregation{{
			OutputFile:             output,
			SubDirMode:             subDirs,
			RemoveIncluded:         props.GetBoolWithDefault("aggregation.remove-included", true),
			RemoveEmptyDirectories: props.GetBool("aggregation.remove-empty-directories"),
			WithoutCompress:        props.GetBool("aggregation.without-compress"),
			PrependedFile:          props.Get("aggregation.prepended-file"),
			SourceMap:              props.GetBool("aggregation.source-map"),
		}}
	}
	return cfg, nil
}

// Validate checks the configuration. Problems the optimizer can work
// around are logged and fixed, or returned as errors when FailOnWarning
// is set.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.LineBreak < 0 {
		c.LineBreak = 0
	}

	if !isUTF8(c.Encoding) {
		if err := c.warn(fmt.Errorf("%w %q, only %s is supported", ErrUnsupportedEncoding, c.Encoding, DefaultEncoding)); err != nil {
			return err
		}
		c.Encoding = DefaultEncoding
	}

	if err := c.checkLevel(&c.CompilationLevel); err != nil {
		return err
	}
	if err := c.checkLanguage(&c.LanguageOut); err != nil {
		return err
	}
	if err := c.checkAggregations(&c.Aggregations); err != nil {
		return err
	}
	for i := range c.ResourceSets {
		set := &c.ResourceSets[i]
		if err := c.checkLevel(&set.CompilationLevel); err != nil {
			return err
		}
		if err := c.checkLanguage(&set.LanguageOut); err != nil {
			return err
		}
		if err := c.checkAggregations(&set.Aggregations); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) warn(err error) error {
	if c.FailOnWarning {
		return err
	}
	log.Warning(err)
	return nil
}

func (c *Config) checkLevel(level *string) error {
	if *level == "" {
		return nil
	}
	if _, err := jsmin.ParseLevel(*level); err != nil {
		if err := c.warn(fmt.Errorf("%w, using %s", err, jsmin.Simple)); err != nil {
			return err
		}
		*level = jsmin.Simple.String()
	}
	return nil
}

func (c *Config) checkLanguage(lang *string) error {
	if _, err := jsmin.ParseLanguage(*lang); err != nil {
		if err := c.warn(fmt.Errorf("%w, using %s", err, jsmin.NoTranspile)); err != nil {
			return err
		}
		*lang = jsmin.NoTranspile
	}
	return nil
}

func (c *Config) checkAggregations(aggs *[]Aggregation) error {
	kept := (*aggs)[:0]
	for _, a := range *aggs {
		switch {
		case a.OutputFile != "" && a.SubDirMode:
			if err := c.warn(fmt.Errorf("%w, writing %s", ErrAmbiguousAggregation, a.OutputFile)); err != nil {
				return err
			}
			a.SubDirMode = false
		case a.OutputFile == "" && !a.SubDirMode:
			if err := c.warn(fmt.Errorf("%w, files are optimized one by one", ErrNoAggregation)); err != nil {
				return err
			}
			continue
		}
		kept = append(kept, a)
	}
	*aggs = kept
	return nil
}

func isUTF8(encoding string) bool {
	switch strings.ToUpper(strings.TrimSpace(encoding)) {
	case "", "UTF-8", "UTF8":
		return true
	}
	return false
}

// Set is a resource set with every inherited value filled in and every
// path made absolute.
type Set struct {
	InputDir      string
	ImagesDirs    []string
	Includes      []string
	Excludes      []string
	Suffix        string
	UseDataURI    bool
	Level         jsmin.Level
	EmitUseStrict bool
	LanguageOut   jsmin.Language
	LineBreak     int
	Aggregations  []Aggregation

	// SourceMapRoot prefixes the sourceMappingURL of aggregated scripts.
	SourceMapRoot string
	// SourceMapDir receives the source maps instead of the directory of
	// the aggregated file when set.
	SourceMapDir string
}

// Sets resolves the resource sets. A configuration without any yields a
// single set made of the top-level values. Call Validate first.
func (c *Config) Sets() ([]Set, error) {
	if len(c.ResourceSets) == 0 {
		set, err := c.resolve(ResourceSet{})
		if err != nil {
			return nil, err
		}
		return []Set{set}, nil
	}

	sets := make([]Set, 0, len(c.ResourceSets))
	for _, rs := range c.ResourceSets {
		set, err := c.resolve(rs)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func (c *Config) resolve(rs ResourceSet) (Set, error) {
	set := Set{
		InputDir:      c.path(firstNonEmpty(rs.InputDir, c.InputDir)),
		Includes:      rs.Includes,
		Excludes:      rs.Excludes,
		Suffix:        c.Suffix,
		UseDataURI:    c.UseDataURI,
		EmitUseStrict: c.EmitUseStrict,
		LineBreak:     c.LineBreak,
		Aggregations:  rs.Aggregations,
		SourceMapRoot: firstNonEmpty(rs.SourceMapRoot, c.SourceMapRoot),
	}
	if dir := firstNonEmpty(rs.SourceMapDir, c.SourceMapDir); dir != "" {
		set.SourceMapDir = c.path(dir)
	}
	if set.Includes == nil {
		set.Includes = c.Includes
	}
	if set.Excludes == nil {
		set.Excludes = c.Excludes
	}
	if rs.Suffix != nil {
		set.Suffix = *rs.Suffix
	}
	if rs.UseDataURI != nil {
		set.UseDataURI = *rs.UseDataURI
	}
	if rs.EmitUseStrict != nil {
		set.EmitUseStrict = *rs.EmitUseStrict
	}
	if set.Aggregations == nil {
		set.Aggregations = c.Aggregations
	}

	images := rs.ImagesDirs
	if images == nil {
		images = c.ImagesDirs
	}
	for _, dir := range images {
		set.ImagesDirs = append(set.ImagesDirs, c.path(dir))
	}
	if len(set.ImagesDirs) == 0 {
		set.ImagesDirs = []string{set.InputDir}
	}

	level, err := jsmin.ParseLevel(firstNonEmpty(rs.CompilationLevel, c.CompilationLevel))
	if err != nil {
		return Set{}, err
	}
	set.Level = level

	lang, err := jsmin.ParseLanguage(firstNonEmpty(rs.LanguageOut, c.LanguageOut))
	if err != nil {
		return Set{}, err
	}
	set.LanguageOut = lang

	var aggs []Aggregation
	if set.Aggregations != nil {
		aggs = make([]Aggregation, len(set.Aggregations))
	}
	for i, a := range set.Aggregations {
		if a.OutputFile != "" {
			a.OutputFile = c.path(a.OutputFile)
		}
		if a.PrependedFile != "" {
			a.PrependedFile = c.path(a.PrependedFile)
		}
		aggs[i] = a
	}
	set.Aggregations = aggs
	return set, nil
}

// path resolves p against the configuration directory.
func (c *Config) path(p string) string {
	return resolvePath(c.Dir, p)
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
