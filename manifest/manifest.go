package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
)

// New returns a minimal manifest of the given kind with the current
// apiVersion filled in.
func New(kind Kind, name string) *Manifest {
	return &Manifest{
		APIVersion: APIVersion,
		Kind:       kind,
		Metadata:   Metadata{Name: name},
	}
}

// Load reads and parses a manifest file. The format is chosen by
// extension: .yaml/.yml or .json.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes manifest bytes. ext selects the format (".yaml", ".yml",
// ".json"); any other value is an error.
func Parse(data []byte, ext string) (*Manifest, error) {
	var m Manifest
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse yaml manifest: %w", err)
		}
	case ".json":
		if err := sonic.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse json manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", ext)
	}
	return &m, nil
}

// Save writes the manifest to path, format chosen by extension.
func (m *Manifest) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = m.ToYAML()
	case ".json":
		data, err = m.ToJSON()
	default:
		return fmt.Errorf("unsupported manifest format %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ToJSON renders the manifest as indented JSON.
func (m *Manifest) ToJSON() ([]byte, error) {
	data, err := sonic.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json manifest: %w", err)
	}
	return data, nil
}

// ToYAML renders the manifest as YAML.
func (m *Manifest) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode yaml manifest: %w", err)
	}
	return data, nil
}
