package optimizer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// sourceSuffix marks the aggregated file while it is being written, so an
// existing file with the output name is not clobbered half way.
const sourceSuffix = ".source"

// withSuffix inserts suffix between the base name and the extension:
// site.css + ".min" is site.min.css.
func withSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// writeFile writes data next to path and renames it into place.
func writeFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}

func removeFiles(files []string) {
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			log.Warningf("File %s could not be deleted after aggregation: %v", filepath.Base(f), err)
		}
	}
}

// removeEmptyDirs removes the parents of files that became empty, walking
// up while directories stay empty but never above root.
func removeEmptyDirs(root string, files []string) {
	root = filepath.Clean(root)
	for _, f := range files {
		dir := filepath.Dir(f)
		for dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)) {
			entries, err := os.ReadDir(dir)
			if err != nil || len(entries) > 0 {
				break
			}
			if err := os.Remove(dir); err != nil {
				log.Warningf("Directory %s could not be deleted after aggregation: %v", dir, err)
				break
			}
			dir = filepath.Dir(dir)
		}
	}
}
