package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		path     string
		expected bool
	}{
		{"root file with **", "**/*.css", "site.css", true},
		{"nested file with **", "**/*.css", "a/b/site.css", true},
		{"wrong extension", "**/*.css", "a/site.js", false},
		{"single level", "*.css", "a/site.css", false},
		{"directory prefix", "vendor/**", "vendor/lib/x.js", true},
		{"trailing slash", "vendor/", "vendor/x.js", true},
		{"middle **", "a/**/x.js", "a/x.js", true},
		{"middle ** deep", "a/**/x.js", "a/b/c/x.js", true},
		{"middle ** other root", "a/**/x.js", "b/x.js", false},
		{"question mark", "site?.css", "site1.css", true},
		{"bad pattern", "[", "[", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.pattern, tt.path); got != tt.expected {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.expected)
			}
		})
	}
}

func TestContainsGlobChars(t *testing.T) {
	tests := []struct {
		pattern  string
		expected bool
	}{
		{"*.css", true},
		{"file?.js", true},
		{"[abc].css", true},
		{"file.css", false},
		{"src/file.js", false},
		{"**/*.js", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := containsGlobChars(tt.pattern); got != tt.expected {
				t.Errorf("containsGlobChars(%q) = %v, want %v", tt.pattern, got, tt.expected)
			}
		})
	}
}

func TestIsExcluded(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		excludes []string
		expected bool
	}{
		{"no excludes", "site.css", nil, false},
		{"exact match", "site.css", []string{"site.css"}, true},
		{"file name anywhere", "a/b/site.css", []string{"site.css"}, true},
		{"wildcard match", "site.min.js", []string{"**/*.min.js"}, true},
		{"no match", "site.css", []string{"*.js"}, false},
		{"directory exclude", "vendor/x.js", []string{"vendor/**"}, true},
		{"multiple excludes", "x.js", []string{"*.css", "*.js"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExcluded(tt.path, tt.excludes); got != tt.expected {
				t.Errorf("IsExcluded(%q, %v) = %v, want %v", tt.path, tt.excludes, got, tt.expected)
			}
		})
	}
}

func writeTree(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir,
		"b.css",
		"a.css",
		"theme/main.css",
		"theme/LOUD.CSS",
		"js/app.js",
		"js/vendor/jquery.js",
		"readme.txt",
	)

	join := func(rel ...string) []string {
		var out []string
		for _, r := range rel {
			out = append(out, filepath.Join(dir, r))
		}
		return out
	}

	tests := []struct {
		name     string
		includes []string
		excludes []string
		expected Files
	}{
		{
			name: "defaults",
			expected: Files{
				CSS: join("a.css", "b.css", "theme/main.css"),
				JS:  join("js/app.js", "js/vendor/jquery.js"),
			},
		},
		{
			name:     "upper case extension",
			includes: []string{"theme/*"},
			expected: Files{CSS: join("theme/LOUD.CSS", "theme/main.css")},
		},
		{
			name:     "exclude vendor",
			includes: []string{"**/*.js"},
			excludes: []string{"**/vendor/**"},
			expected: Files{JS: join("js/app.js")},
		},
		{
			name:     "text files are ignored",
			includes: []string{"**/*"},
			excludes: []string{"theme/**", "js/**"},
			expected: Files{CSS: join("a.css", "b.css")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Scan(dir, tt.includes, tt.excludes)
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanNotDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "a.css")

	_, err := Scan(filepath.Join(dir, "a.css"), nil, nil)
	if !errors.Is(err, ErrNotDirectory) {
		t.Errorf("Scan() error = %v, want %v", err, ErrNotDirectory)
	}
}

func TestUnderAndSubDirs(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "top.css", "one/a.css", "one/a.js", "two/deep/b.css", "one-more/c.css")

	files, err := Scan(dir, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	dirs, err := SubDirs(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "one"), filepath.Join(dir, "one-more"), filepath.Join(dir, "two")}
	if diff := cmp.Diff(want, dirs); diff != "" {
		t.Fatalf("SubDirs() mismatch (-want +got):\n%s", diff)
	}

	one := files.Under(filepath.Join(dir, "one"))
	expected := Files{
		CSS: []string{filepath.Join(dir, "one", "a.css")},
		JS:  []string{filepath.Join(dir, "one", "a.js")},
	}
	if diff := cmp.Diff(expected, one); diff != "" {
		t.Errorf("Under() mismatch (-want +got):\n%s", diff)
	}
	if !files.Under(filepath.Join(dir, "missing")).Empty() {
		t.Error("Under(missing) should be empty")
	}
}
