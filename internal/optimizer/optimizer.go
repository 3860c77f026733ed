// Package optimizer minifies the stylesheets and scripts of a resource
// set in place, next to the originals or aggregated into single files.
package optimizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"resopt/internal/config"
	"resopt/internal/cssmin"
	"resopt/internal/jsmin"
	"resopt/internal/replacer"
	"resopt/internal/scanner"
)

// ErrOutputType is returned for aggregation outputs that are neither
// .css nor .js files.
var ErrOutputType = errors.New("aggregation output must be a .css or .js file")

// resourceType bundles what differs between stylesheets and scripts.
type resourceType struct {
	name string
	ext  string

	minify func(path string) ([]byte, error)
	read   func(path string) ([]byte, error)

	// separator goes between minified files, delimiter in front of every
	// raw file of an uncompressed aggregation.
	separator string
	delimiter string

	sourceMaps bool
}

// Optimizer runs the optimization of one resource set.
type Optimizer struct {
	set     config.Set
	workers int
	images  *replacer.DataURIResolver
	js      *jsmin.Minifier

	css, script resourceType
}

func New(set config.Set, workers int) *Optimizer {
	o := &Optimizer{
		set:     set,
		workers: max(workers, 1),
		images:  replacer.NewDataURIResolver(set.ImagesDirs...),
		js:      jsmin.New(jsmin.Options{
			Level:       set.Level,
			UseStrict:   set.EmitUseStrict,
			LanguageOut: set.LanguageOut,
		}),
	}
	o.css = resourceType{
		name:   "CSS",
		ext:    ".css",
		minify: o.minifyCSS,
		read:   o.readCSS,
	}
	o.script = resourceType{
		name:       "JS",
		ext:        ".js",
		minify:     o.minifyJS,
		read:       os.ReadFile,
		separator:  ";\n",
		delimiter:  ";",
		sourceMaps: true,
	}
	return o
}

// Run scans the input directory and optimizes what it finds, once per
// aggregation or file by file when there is none.
func (o *Optimizer) Run(ctx context.Context) (Stats, error) {
	if len(o.set.Aggregations) == 0 {
		files, err := o.scan()
		if err != nil {
			return Stats{}, err
		}
		css, err := o.optimizeFiles(ctx, o.css, files.CSS)
		if err != nil {
			return Stats{}, err
		}
		js, err := o.optimizeFiles(ctx, o.script, files.JS)
		if err != nil {
			return Stats{}, err
		}
		return css.Add(js), nil
	}

	var total Stats
	for _, agg := range o.set.Aggregations {
		// Earlier aggregations may have removed or created files
		files, err := o.scan()
		if err != nil {
			return Stats{}, err
		}
		var stats Stats
		if agg.SubDirMode {
			stats, err = o.aggregateSubDirs(ctx, files, agg)
		} else {
			stats, err = o.aggregateTo(ctx, files, agg)
		}
		if err != nil {
			return Stats{}, err
		}
		total = total.Add(stats)
	}
	return total, nil
}

func (o *Optimizer) scan() (scanner.Files, error) {
	files, err := scanner.Scan(o.set.InputDir, o.set.Includes, o.set.Excludes)
	if err != nil {
		return scanner.Files{}, err
	}
	if files.Empty() {
		log.Infof("No resources found in %s.", o.set.InputDir)
	}
	return files, nil
}

// optimizeFiles minifies every file on its own, in place or into a file
// with the configured suffix.
func (o *Optimizer) optimizeFiles(ctx context.Context, rt resourceType, files []string) (Stats, error) {
	stats := make([]Stats, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Infof("Optimize %s file %s ...", rt.name, filepath.Base(path))
			s, err := o.optimizeFile(rt, path)
			if err != nil {
				return err
			}
			stats[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return Sum(stats...), nil
}

func (o *Optimizer) optimizeFile(rt resourceType, path string) (Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stats{}, fmt.Errorf("optimizing %s: %w", path, err)
	}
	out, err := rt.minify(path)
	if err != nil {
		return Stats{}, err
	}

	target := path
	if o.set.Suffix != "" {
		target = withSuffix(path, o.set.Suffix)
	}
	if err := writeFile(target, out, info.Mode().Perm()); err != nil {
		return Stats{}, err
	}
	return Stats{Original: info.Size(), Optimized: int64(len(out))}, nil
}

// aggregateSubDirs aggregates the files below every immediate
// sub-directory into <dir>/<dirname>.css and <dir>/<dirname>.js.
func (o *Optimizer) aggregateSubDirs(ctx context.Context, files scanner.Files, agg config.Aggregation) (Stats, error) {
	dirs, err := scanner.SubDirs(o.set.InputDir)
	if err != nil {
		return Stats{}, err
	}

	var total Stats
	for _, dir := range dirs {
		sub := files.Under(dir)
		for _, job := range []struct {
			rt    resourceType
			files []string
		}{{o.css, sub.CSS}, {o.script, sub.JS}} {
			if len(job.files) == 0 {
				continue
			}
			a := agg
			a.OutputFile = filepath.Join(dir, filepath.Base(dir)+job.rt.ext)
			s, err := o.aggregate(ctx, job.rt, job.files, a)
			if err != nil {
				return Stats{}, err
			}
			total = total.Add(s)
		}
	}
	return total, nil
}

// aggregateTo merges the files whose type matches the output file.
func (o *Optimizer) aggregateTo(ctx context.Context, files scanner.Files, agg config.Aggregation) (Stats, error) {
	rt, list := o.css, files.CSS
	switch strings.ToLower(filepath.Ext(agg.OutputFile)) {
	case o.css.ext:
	case o.script.ext:
		rt, list = o.script, files.JS
	default:
		return Stats{}, fmt.Errorf("%w: %s", ErrOutputType, agg.OutputFile)
	}
	if len(list) == 0 {
		return Stats{}, nil
	}
	return o.aggregate(ctx, rt, list, agg)
}

// aggregate writes the optimized (or raw) files, after the prepended file,
// into <output>.source<ext> and renames it to the output file once the
// included files have been removed.
func (o *Optimizer) aggregate(ctx context.Context, rt resourceType, files []string, agg config.Aggregation) (Stats, error) {
	output := agg.OutputFile
	files = without(files, output)
	if len(files) == 0 {
		return Stats{}, nil
	}

	parts := make([][]byte, len(files))
	sizes := make([]int64, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("aggregating %s: %w", path, err)
			}
			sizes[i] = info.Size()
			if agg.WithoutCompress {
				parts[i], err = rt.read(path)
				if err != nil {
					return fmt.Errorf("aggregating %s: %w", path, err)
				}
				return nil
			}
			log.Infof("Optimize %s file %s ...", rt.name, filepath.Base(path))
			parts[i], err = rt.minify(path)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var buf bytes.Buffer
	var original int64
	for _, s := range sizes {
		original += s
	}
	if agg.PrependedFile != "" {
		data, err := os.ReadFile(agg.PrependedFile)
		if err != nil {
			return Stats{}, fmt.Errorf("reading prepended file: %w", err)
		}
		original += int64(len(data))
		buf.Write(data)
		buf.WriteString("\n")
	}

	var sm *sourceMap
	if agg.SourceMap && rt.sourceMaps && !agg.WithoutCompress {
		sm = newSourceMap(output, o.set.SourceMapDir, o.set.SourceMapRoot)
	}
	for i, part := range parts {
		switch {
		case agg.WithoutCompress:
			buf.WriteString("\n" + rt.delimiter)
		case i > 0:
			buf.WriteString(rt.separator)
		}
		if sm != nil {
			sm.add(bytes.Count(buf.Bytes(), []byte("\n"))+1, part, files[i])
		}
		buf.Write(part)
	}
	if sm != nil {
		buf.WriteString(sm.comment())
	}

	temp := withSuffix(output, sourceSuffix)
	if err := writeFile(temp, buf.Bytes(), 0644); err != nil {
		return Stats{}, err
	}
	if sm != nil {
		if err := sm.write(); err != nil {
			os.Remove(temp)
			return Stats{}, err
		}
	}

	if agg.RemoveIncluded {
		removeFiles(files)
	}
	if agg.RemoveEmptyDirectories {
		removeEmptyDirs(o.set.InputDir, files)
	}
	if err := os.Rename(temp, output); err != nil {
		return Stats{}, fmt.Errorf("renaming to %s: %w", output, err)
	}

	log.Infof("Aggregated %d %s files into %s.", len(files), rt.name, output)
	return Stats{Original: original, Optimized: int64(buf.Len())}, nil
}

func without(files []string, path string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if f != path {
			out = append(out, f)
		}
	}
	return out
}

// cssSource opens a stylesheet. With data URIs enabled, resource markers
// are resolved against the image directories and relative url() calls
// against the directory of the stylesheet.
func (o *Optimizer) cssSource(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	var r io.Reader = f
	if o.set.UseDataURI {
		r = replacer.NewFixedMarkerReader(r, replacer.ResourceStart, replacer.ResourceEnd, o.images)
		r = replacer.NewCSSURLReader(r, replacer.NewDataURIResolver(filepath.Dir(path)))
	}
	return r, f.Close, nil
}

func (o *Optimizer) readCSS(path string) ([]byte, error) {
	r, closeFn, err := o.cssSource(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (o *Optimizer) minifyCSS(path string) ([]byte, error) {
	r, closeFn, err := o.cssSource(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var buf bytes.Buffer
	if _, err := cssmin.Minify(&buf, r, o.set.LineBreak); err != nil {
		return nil, fmt.Errorf("optimizing %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

func (o *Optimizer) minifyJS(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := o.js.Minify(&buf, f); err != nil {
		return nil, fmt.Errorf("optimizing %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
