package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Properties holds the key/value pairs of an optimizer.properties file
type Properties map[string]string

// ParseProperties reads a properties file from disk
func ParseProperties(path string) (Properties, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	props, err := ReadProperties(file)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return props, nil
}

// ReadProperties parses key=value or key: value lines. Lines starting
// with # or ! are comments and a trailing backslash continues the value
// on the next line.
func ReadProperties(r io.Reader) (Properties, error) {
	props := make(Properties)

	var pending string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if pending != "" {
			line = pending + line
			pending = ""
		}

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		if strings.HasSuffix(line, `\`) {
			pending = strings.TrimSuffix(line, `\`)
			continue
		}

		key, value, ok := splitProperty(line)
		if !ok {
			continue
		}
		props[key] = value
	}
	if pending != "" {
		if key, value, ok := splitProperty(pending); ok {
			props[key] = value
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return props, nil
}

// splitProperty splits at the first = or, when there is none, the first :
func splitProperty(line string) (string, string, bool) {
	sep := strings.IndexByte(line, '=')
	if sep < 0 {
		sep = strings.IndexByte(line, ':')
	}
	if sep < 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:sep])
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(line[sep+1:]), true
}

// Get returns the value for a key, or empty string if not found
func (p Properties) Get(key string) string {
	return p[key]
}

// GetWithDefault returns the value for a key, or the default if not found
func (p Properties) GetWithDefault(key, defaultValue string) string {
	if val, ok := p[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

// GetBool returns true unless the value is empty, "false", "no", or "0"
func (p Properties) GetBool(key string) bool {
	return p.GetBoolWithDefault(key, false)
}

// GetBoolWithDefault is GetBool with a value for missing keys
func (p Properties) GetBoolWithDefault(key string, defaultValue bool) bool {
	val := strings.ToLower(p[key])
	if val == "" {
		return defaultValue
	}
	return !(val == "false" || val == "no" || val == "0")
}

// GetInt parses an integer value. Missing keys yield the default.
func (p Properties) GetInt(key string, defaultValue int) (int, error) {
	val := p[key]
	if val == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// GetList parses a comma-separated value into a slice
func (p Properties) GetList(key string) []string {
	val := p[key]
	if val == "" {
		return nil
	}

	var result []string
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

// FileExists checks if a file exists at the given path
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
