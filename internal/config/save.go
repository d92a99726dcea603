// Package config provides configuration types, defaults, and persistence for fmark.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the settings of cfg into the config file at configPath.
// Keys already present are updated in place so comments and unrelated
// settings survive; missing keys are appended.
func Save(configPath string, cfg Config) error {
	// Read existing file content
	data, err := os.ReadFile(configPath) //nolint:gosec // G304: path is the user's config file
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	// Build the mapping holding the new values
	var values yaml.Node
	if err := values.Encode(cfg); err != nil {
		return fmt.Errorf("building config node: %w", err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		// Empty or new file - create document structure
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{&values}}
	} else if root := doc.Content[0]; root.Kind == yaml.MappingNode {
		mergeMapping(root, &values)
	} else {
		return fmt.Errorf("config root is not a mapping")
	}

	// Marshal back to YAML
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// mergeMapping sets every key of src on dst, replacing values in place.
func mergeMapping(dst, src *yaml.Node) {
	for i := 0; i+1 < len(src.Content); i += 2 {
		key, value := src.Content[i], src.Content[i+1]
		found := false
		for j := 0; j+1 < len(dst.Content); j += 2 {
			if dst.Content[j].Value == key.Value {
				// Keep the comments attached to the old value
				value.LineComment = dst.Content[j+1].LineComment
				dst.Content[j+1] = value
				found = true
				break
			}
		}
		if !found {
			dst.Content = append(dst.Content, key, value)
		}
	}
}

// writeAtomic writes to a temp file, then renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".fmark.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
