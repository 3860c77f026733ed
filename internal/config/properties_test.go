package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseProperties(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "props_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	content := `# Comment
! another comment
input-dir=src/main/webapp
includes=**/*.css, **/*.js, \
    theme/**
use-data-uri=true
suffix=
images-dir: img, icons
`
	propsPath := filepath.Join(tmpDir, "optimizer.properties")
	if err := os.WriteFile(propsPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	props, err := ParseProperties(propsPath)
	if err != nil {
		t.Fatalf("ParseProperties error: %v", err)
	}

	expected := Properties{
		"input-dir":    "src/main/webapp",
		"includes":     "**/*.css, **/*.js, theme/**",
		"use-data-uri": "true",
		"suffix":       "",
		"images-dir":   "img, icons",
	}
	if diff := cmp.Diff(expected, props); diff != "" {
		t.Errorf("ParseProperties mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePropertiesMissing(t *testing.T) {
	_, err := ParseProperties(filepath.Join(t.TempDir(), "none.properties"))
	if err == nil || !strings.Contains(err.Error(), "failed to open") {
		t.Errorf("ParseProperties error = %v", err)
	}
}

func TestReadPropertiesTrailingContinuation(t *testing.T) {
	props, err := ReadProperties(strings.NewReader("excludes=a.css, \\"))
	if err != nil {
		t.Fatal(err)
	}
	if got := props.Get("excludes"); got != "a.css," {
		t.Errorf("Get(excludes) = %q", got)
	}
}

func TestPropertiesGetters(t *testing.T) {
	props := Properties{
		"name":    "value",
		"empty":   "",
		"yes":     "true",
		"upper":   "FALSE",
		"no":      "no",
		"zero":    "0",
		"number":  "42",
		"garbage": "4x",
		"list":    " a, ,b ,c",
	}

	if got := props.GetWithDefault("empty", "d"); got != "d" {
		t.Errorf("GetWithDefault(empty) = %q", got)
	}
	if got := props.GetWithDefault("name", "d"); got != "value" {
		t.Errorf("GetWithDefault(name) = %q", got)
	}

	boolTests := []struct {
		key      string
		def      bool
		expected bool
	}{
		{"yes", false, true},
		{"upper", true, false},
		{"no", true, false},
		{"zero", true, false},
		{"missing", true, true},
		{"missing", false, false},
		{"name", false, true},
	}
	for _, tt := range boolTests {
		t.Run(tt.key, func(t *testing.T) {
			if got := props.GetBoolWithDefault(tt.key, tt.def); got != tt.expected {
				t.Errorf("GetBoolWithDefault(%q, %v) = %v, want %v", tt.key, tt.def, got, tt.expected)
			}
		})
	}

	if n, err := props.GetInt("number", 1); err != nil || n != 42 {
		t.Errorf("GetInt(number) = %d, %v", n, err)
	}
	if n, err := props.GetInt("missing", 7); err != nil || n != 7 {
		t.Errorf("GetInt(missing) = %d, %v", n, err)
	}
	if _, err := props.GetInt("garbage", 7); err == nil {
		t.Error("GetInt(garbage) should fail")
	}

	if diff := cmp.Diff([]string{"a", "b", "c"}, props.GetList("list")); diff != "" {
		t.Errorf("GetList mismatch (-want +got):\n%s", diff)
	}
	if got := props.GetList("missing"); got != nil {
		t.Errorf("GetList(missing) = %v", got)
	}
}
