package optimizer

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/neelance/sourcemap"
)

// sourceMap maps the lines of an aggregated script back to the files
// they were minified from. The minifier keeps no finer positions, so
// every generated line points at the start of its source file.
//
// The map is written next to the output unless dir is set. root is put
// in front of the map name in the sourceMappingURL comment.
type sourceMap struct {
	output string
	dir    string
	root   string
	m      sourcemap.Map
}

func newSourceMap(output, dir, root string) *sourceMap {
	if dir == "" {
		dir = filepath.Dir(output)
	}
	return &sourceMap{
		output: output,
		dir:    dir,
		root:   root,
		m:      sourcemap.Map{File: filepath.Base(output)},
	}
}

// add records a file whose minified text starts at the given 1-based line.
func (s *sourceMap) add(line int, part []byte, file string) {
	source := file
	if rel, err := filepath.Rel(s.dir, file); err == nil {
		source = rel
	}
	source = filepath.ToSlash(source)

	lines := bytes.Count(part, []byte("\n")) + 1
	for i := 0; i < lines; i++ {
		s.m.AddMapping(&sourcemap.Mapping{
			GeneratedLine: line + i,
			OriginalFile:  source,
			OriginalLine:  1,
		})
	}
}

func (s *sourceMap) path() string {
	return filepath.Join(s.dir, filepath.Base(s.output)+".map")
}

func (s *sourceMap) comment() string {
	return fmt.Sprintf("\n//# sourceMappingURL=%s%s\n", s.root, filepath.Base(s.path()))
}

func (s *sourceMap) write() error {
	var buf bytes.Buffer
	if err := s.m.WriteTo(&buf); err != nil {
		return fmt.Errorf("encoding source map: %w", err)
	}
	return writeFile(s.path(), buf.Bytes(), 0644)
}
