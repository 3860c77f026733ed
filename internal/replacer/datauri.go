package replacer

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DataURILimit is the length from which a data URI is considered too
// large to inline. Old IE versions stop at 32KB.
const DataURILimit = 32 * 1024

var pathSeparators = regexp.MustCompile(`[\s'":/\\]+`)

var imageTypes = map[string]string{
	"gif":  "image/gif",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
}

// DataURIResolver inlines images as base64 data URIs. Tokens are paths
// relative to one of the image directories, which are tried in order.
// It keeps no per-file state and may be shared between readers.
type DataURIResolver struct {
	dirs []string
}

func NewDataURIResolver(dirs ...string) *DataURIResolver {
	return &DataURIResolver{dirs: dirs}
}

func (d *DataURIResolver) ResolveToken(token string) (Resolution, error) {
	var parts []string
	for _, p := range pathSeparators.Split(token, -1) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return Unresolved, nil
	}
	rel := filepath.Join(parts...)

	image, mime := d.find(rel)
	if image == "" {
		return Unresolved, nil
	}

	data, err := os.ReadFile(image)
	if err != nil {
		return Unresolved, fmt.Errorf("reading image %s: %w", image, err)
	}
	uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	if len(uri) >= DataURILimit {
		log.Debugf("Data URI for %s is %d bytes, keeping the reference.", image, len(uri))
		return Unresolved, nil
	}

	log.Infof("Data URI conversion for: %s", image)
	return Found(uri), nil
}

// find returns the first existing image for rel and its MIME type.
func (d *DataURIResolver) find(rel string) (string, string) {
	for _, dir := range d.dirs {
		full := filepath.Join(dir, rel)
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(full), "."))
		mime, ok := imageTypes[ext]
		if !ok {
			continue
		}
		return full, mime
	}
	return "", ""
}
