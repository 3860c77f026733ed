package optimizer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/neelance/sourcemap"

	"resopt/internal/config"
	"resopt/internal/jsmin"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func minJS(t *testing.T, src string) string {
	t.Helper()
	var out bytes.Buffer
	if err := jsmin.New(jsmin.Options{Level: jsmin.Simple}).Minify(&out, strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func newSet(dir string) config.Set {
	return config.Set{
		InputDir:   dir,
		ImagesDirs: []string{dir},
		Includes:   []string{"**/*.css", "**/*.js"},
		Level:      jsmin.Simple,
	}
}

const (
	cssA = "a{margin: 0px 0em 0.0pt 0%;color:red}"
	minA = "a{margin:0;color:red}"
	cssB = "/*! keep me */a{color:red}/* drop me */"
	minB = "/*! keep me */a{color:red}"

	jsA = "function add(value) {\n    return value + 1;\n}\n"
	jsB = "var total = 2;\n"
)

func TestRunInPlace(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.css":      cssA,
		"css/b.css":  cssB,
		"js/a.js":    jsA,
		"readme.txt": "not touched",
	})

	stats, err := New(newSet(dir), 2).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := readFile(t, filepath.Join(dir, "a.css")); got != minA {
		t.Errorf("a.css = %q, want %q", got, minA)
	}
	if got := readFile(t, filepath.Join(dir, "css", "b.css")); got != minB {
		t.Errorf("b.css = %q, want %q", got, minB)
	}
	wantJS := minJS(t, jsA)
	if got := readFile(t, filepath.Join(dir, "js", "a.js")); got != wantJS {
		t.Errorf("a.js = %q, want %q", got, wantJS)
	}

	want := Stats{
		Original:  int64(len(cssA) + len(cssB) + len(jsA)),
		Optimized: int64(len(minA) + len(minB) + len(wantJS)),
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	// Only the optimized files remain, no temp files
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"a.css", "css", "js", "readme.txt"}, names); diff != "" {
		t.Errorf("directory mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSuffix(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.css": cssA})

	set := newSet(dir)
	set.Suffix = ".min"
	if _, err := New(set, 1).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := readFile(t, filepath.Join(dir, "a.css")); got != cssA {
		t.Errorf("a.css changed to %q", got)
	}
	if got := readFile(t, filepath.Join(dir, "a.min.css")); got != minA {
		t.Errorf("a.min.css = %q, want %q", got, minA)
	}
}

func TestRunDataURI(t *testing.T) {
	dir := t.TempDir()
	images := t.TempDir()
	png := "PNGDATA"
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(png))

	writeTree(t, dir, map[string]string{
		"css/site.css":    "a{background: url(img/dot.png)}\nb{background:url(#{resource['logo.png']})}\nc{background:url(http://x/y.png)}",
		"css/img/dot.png": png,
	})
	writeTree(t, images, map[string]string{"logo.png": png})

	set := newSet(dir)
	set.UseDataURI = true
	set.ImagesDirs = []string{images}
	if _, err := New(set, 1).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "a{background:url(" + uri + ")}b{background:url(" + uri + ")}c{background:url(http://x/y.png)}"
	if got := readFile(t, filepath.Join(dir, "css", "site.css")); got != want {
		t.Errorf("site.css = %q, want %q", got, want)
	}
}

func TestRunScriptError(t *testing.T) {
	dir := t.TempDir()
	broken := "function (\n"
	writeTree(t, dir, map[string]string{"broken.js": broken})

	if _, err := New(newSet(dir), 1).Run(context.Background()); err == nil {
		t.Fatal("Run() should fail on a broken script")
	}
	if got := readFile(t, filepath.Join(dir, "broken.js")); got != broken {
		t.Errorf("broken.js changed to %q", got)
	}
}

func TestAggregateCSS(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"css/a.css":   cssA,
		"css/b/b.css": cssB,
		"js/app.js":   jsA,
		"license.txt": "/*! license */",
	})

	set := newSet(dir)
	set.Aggregations = []config.Aggregation{{
		OutputFile:             filepath.Join(dir, "all.css"),
		RemoveIncluded:         true,
		RemoveEmptyDirectories: true,
		PrependedFile:          filepath.Join(dir, "license.txt"),
	}}

	stats, err := New(set, 2).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "/*! license */\n" + minA + minB
	if got := readFile(t, filepath.Join(dir, "all.css")); got != want {
		t.Errorf("all.css = %q, want %q", got, want)
	}
	if exists(filepath.Join(dir, "css")) {
		t.Error("css directory should have been removed")
	}
	if exists(filepath.Join(dir, "all.source.css")) {
		t.Error("all.source.css should have been renamed")
	}
	if got := readFile(t, filepath.Join(dir, "js", "app.js")); got != jsA {
		t.Errorf("app.js changed to %q", got)
	}

	wantStats := Stats{
		Original:  int64(len(cssA) + len(cssB) + len("/*! license */")),
		Optimized: int64(len(want)),
	}
	if diff := cmp.Diff(wantStats, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateWithoutCompress(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		output string
		want   string
	}{
		{
			name:   "css",
			files:  map[string]string{"a.css": cssA, "b.css": cssB},
			output: "all.css",
			want:   "\n" + cssA + "\n" + cssB,
		},
		{
			name:   "js",
			files:  map[string]string{"a.js": jsA, "b.js": jsB},
			output: "all.js",
			want:   "\n;" + jsA + "\n;" + jsB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTree(t, dir, tt.files)

			set := newSet(dir)
			set.Aggregations = []config.Aggregation{{
				OutputFile:      filepath.Join(dir, tt.output),
				WithoutCompress: true,
			}}
			if _, err := New(set, 1).Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got := readFile(t, filepath.Join(dir, tt.output)); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.output, got, tt.want)
			}
			for name, content := range tt.files {
				if got := readFile(t, filepath.Join(dir, name)); got != content {
					t.Errorf("%s changed to %q", name, got)
				}
			}
		})
	}
}

func TestAggregateJSWithSourceMap(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"js/a.js": jsA, "js/b.js": jsB})

	output := filepath.Join(dir, "all.js")
	set := newSet(dir)
	set.Aggregations = []config.Aggregation{{OutputFile: output, RemoveIncluded: true, SourceMap: true}}
	if _, err := New(set, 2).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := minJS(t, jsA) + ";\n" + minJS(t, jsB) + "\n//# sourceMappingURL=all.js.map\n"
	if got := readFile(t, output); got != want {
		t.Errorf("all.js = %q, want %q", got, want)
	}
	if exists(filepath.Join(dir, "js", "a.js")) {
		t.Error("a.js should have been removed")
	}

	f, err := os.Open(output + ".map")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	m, err := sourcemap.ReadFrom(f)
	if err != nil {
		t.Fatalf("ReadFrom() error = %v", err)
	}
	if m.File != "all.js" {
		t.Errorf("File = %q", m.File)
	}

	type line struct {
		Generated int
		Source    string
	}
	var got []line
	for _, mapping := range m.DecodedMappings() {
		got = append(got, line{mapping.GeneratedLine, mapping.OriginalFile})
	}
	wantLines := []line{{1, "js/a.js"}, {2, "js/b.js"}}
	if diff := cmp.Diff(wantLines, got); diff != "" {
		t.Errorf("mappings mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateJSSourceMapDir(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"js/a.js": jsA})

	output := filepath.Join(dir, "all.js")
	maps := filepath.Join(dir, "build", "maps")
	set := newSet(dir)
	set.SourceMapDir = maps
	set.SourceMapRoot = "/static/maps/"
	set.Aggregations = []config.Aggregation{{OutputFile: output, SourceMap: true}}
	if _, err := New(set, 1).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := minJS(t, jsA) + "\n//# sourceMappingURL=/static/maps/all.js.map\n"
	if got := readFile(t, output); got != want {
		t.Errorf("all.js = %q, want %q", got, want)
	}
	if exists(output + ".map") {
		t.Error("map should not be written next to the output")
	}

	f, err := os.Open(filepath.Join(maps, "all.js.map"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	m, err := sourcemap.ReadFrom(f)
	if err != nil {
		t.Fatalf("ReadFrom() error = %v", err)
	}
	if diff := cmp.Diff([]string{"../../js/a.js"}, m.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateSubDirs(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"top.css":         cssA,
		"one/a.css":       cssA,
		"one/deep/b.css":  cssB,
		"two/app.js":      jsA,
		"three/notes.txt": "x",
	})

	set := newSet(dir)
	set.Aggregations = []config.Aggregation{{SubDirMode: true, RemoveIncluded: true, RemoveEmptyDirectories: true}}
	if _, err := New(set, 2).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := readFile(t, filepath.Join(dir, "one", "one.css")); got != minA+minB {
		t.Errorf("one.css = %q, want %q", got, minA+minB)
	}
	if got := readFile(t, filepath.Join(dir, "two", "two.js")); got != minJS(t, jsA) {
		t.Errorf("two.js = %q", got)
	}
	if exists(filepath.Join(dir, "one", "deep")) {
		t.Error("one/deep should have been removed")
	}
	if exists(filepath.Join(dir, "three", "three.css")) || exists(filepath.Join(dir, "three", "three.js")) {
		t.Error("nothing should be aggregated for three")
	}
	if got := readFile(t, filepath.Join(dir, "top.css")); got != cssA {
		t.Errorf("top.css changed to %q", got)
	}
}

func TestAggregateRerunSkipsOutput(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.css": cssA, "all.css": "old{color:red}"})

	set := newSet(dir)
	set.Aggregations = []config.Aggregation{{OutputFile: filepath.Join(dir, "all.css")}}
	if _, err := New(set, 1).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "all.css")); got != minA {
		t.Errorf("all.css = %q, want %q", got, minA)
	}
}

func TestAggregateOutputType(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.css": cssA})

	set := newSet(dir)
	set.Aggregations = []config.Aggregation{{OutputFile: filepath.Join(dir, "all.txt")}}
	_, err := New(set, 1).Run(context.Background())
	if !errors.Is(err, ErrOutputType) {
		t.Errorf("Run() error = %v, want %v", err, ErrOutputType)
	}
}

func TestRunCanceled(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.css": cssA})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(newSet(dir), 1).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want %v", err, context.Canceled)
	}
	if got := readFile(t, filepath.Join(dir, "a.css")); got != cssA {
		t.Errorf("a.css changed to %q", got)
	}
}

func TestWithSuffix(t *testing.T) {
	tests := []struct {
		path, suffix, want string
	}{
		{"/a/site.css", ".min", "/a/site.min.css"},
		{"/a/all.js", sourceSuffix, "/a/all.source.js"},
		{"/a/noext", "-x", "/a/noext-x"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := withSuffix(tt.path, tt.suffix); got != tt.want {
				t.Errorf("withSuffix(%q, %q) = %q, want %q", tt.path, tt.suffix, got, tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	s := Sum(Stats{Original: 100, Optimized: 40}, Stats{Original: 100, Optimized: 60})
	if s != (Stats{Original: 200, Optimized: 100}) {
		t.Errorf("Sum() = %+v", s)
	}
	if got := Sum(); got != (Stats{}) {
		t.Errorf("empty Sum() = %+v", got)
	}
}
