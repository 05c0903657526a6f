package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the per-project configuration file.
const FileName = ".transjson.yaml"

// LoadFile reads FileName from rootDir. It returns nil, nil when the file
// does not exist. Unknown keys are rejected.
func LoadFile(rootDir string) (*Config, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		if strings.Contains(err.Error(), "not found in type") {
			return nil, fmt.Errorf("parsing %s: unsupported key: %w", path, err)
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, lang := range f.Languages {
		f.Languages[i] = strings.TrimSpace(lang)
	}
	f.Engine.Type = strings.ToLower(strings.TrimSpace(f.Engine.Type))

	return &f, nil
}

// Marshal renders c as .transjson.yaml content.
func Marshal(c *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
