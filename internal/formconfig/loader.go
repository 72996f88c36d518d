package formconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fadilmartias/form-evaluator/internal/util"
	"gopkg.in/yaml.v3"
)

// MaxCatalogSize caps the size of a catalogue file (8MB).
const MaxCatalogSize = 8 << 20

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the decoder from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported catalogue extension %q", filepath.Ext(path))
}

// LoadFile reads and validates a catalogue file.
func LoadFile(path string) (map[string]*FormDefinition, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	forms, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return forms, nil
}

// Decode parses a catalogue object keyed by form id. An entry without an id
// takes its key; an entry whose id differs from its key is rejected.
func Decode(r io.Reader, format Format) (map[string]*FormDefinition, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxCatalogSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxCatalogSize {
		return nil, fmt.Errorf("catalogue exceeds %d bytes", MaxCatalogSize)
	}

	forms := map[string]*FormDefinition{}
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&forms); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &forms); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalogue format %q", format)
	}

	for key, def := range forms {
		if def == nil {
			return nil, fmt.Errorf("form %q is empty", key)
		}
		if def.ID == "" {
			def.ID = key
		}
		if def.ID != key {
			return nil, fmt.Errorf("form key %q does not match id %q", key, def.ID)
		}
		if err := util.ValidateStruct(def); err != nil {
			return nil, fmt.Errorf("form %q: %w", key, err)
		}
	}
	return forms, nil
}
