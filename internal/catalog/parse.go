package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ParseYAML validates and decodes a YAML catalog document.
func ParseYAML(data []byte) (Document, error) {
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return Document{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := validateShape(gojsonschema.NewGoLoader(generic)); err != nil {
		return Document{}, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode yaml: %w", err)
	}
	return doc, nil
}

// ParseJSON validates and decodes a JSON catalog document.
func ParseJSON(data []byte) (Document, error) {
	if err := validateShape(gojsonschema.NewBytesLoader(data)); err != nil {
		return Document{}, err
	}
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode json: %w", err)
	}
	return doc, nil
}

// ParseFile picks the decoder by file extension.
func ParseFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	return Document{}, fmt.Errorf("unsupported catalog file %s", path)
}

// LoadDir parses every YAML or JSON catalog document in dir, sorted by name.
func LoadDir(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		doc, err := ParseFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
