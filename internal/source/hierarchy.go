package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"filtertree/internal/services"
)

// Format selects the secondary document decoder.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadHierarchyFile opens path and decodes it with ReadHierarchy using the
// format implied by its extension.
func ReadHierarchyFile(path string) ([]Entry, []services.Warning, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open hierarchy: %w", err)
	}
	defer file.Close()
	return ReadHierarchy(file, FormatFromPath(path))
}

// ReadHierarchy decodes the curated secondary document: a list of objects
// (or an object wrapping such a list under "hierarchy"). Each object's name
// is read from the first present name key and its children from the first
// present list key; children may be plain strings. Nodes without a usable
// name are skipped with a warning.
func ReadHierarchy(r io.Reader, format Format) ([]Entry, []services.Warning, error) {
	var doc any
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, nil, services.Wrap(services.ErrMalformedInput, Stage, "decode hierarchy", "invalid YAML", err)
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, nil, services.Wrap(services.ErrMalformedInput, Stage, "decode hierarchy", "invalid JSON", err)
		}
	default:
		return nil, nil, fmt.Errorf("hierarchy format: unsupported value %q", format)
	}
	if doc == nil {
		return nil, nil, nil
	}

	list, err := topLevelList(doc)
	if err != nil {
		return nil, nil, err
	}
	c := &entryConverter{}
	entries := c.convertList(list, "")
	return entries, c.warnings, nil
}

func topLevelList(doc any) ([]any, error) {
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if list, ok := v["hierarchy"].([]any); ok {
			return list, nil
		}
		if list, _, ok := firstList(v, childrenKeys); ok {
			return list, nil
		}
	}
	return nil, services.Wrap(services.ErrMalformedInput, Stage, "decode hierarchy", fmt.Sprintf("expected a list at top level, got %T", doc), nil)
}

type entryConverter struct {
	warnings []services.Warning
}

func (c *entryConverter) warn(path, message string) {
	w := services.NewWarning(services.ErrMalformedInput, Stage, message)
	w.Path = path
	c.warnings = append(c.warnings, w)
}

func (c *entryConverter) convertList(items []any, parentPath string) []Entry {
	out := make([]Entry, 0, len(items))
	for i, item := range items {
		if entry, ok := c.convert(item, parentPath, i); ok {
			out = append(out, entry)
		}
	}
	return out
}

func (c *entryConverter) convert(item any, parentPath string, index int) (Entry, bool) {
	where := parentPath
	if where == "" {
		where = "(root)"
	}
	switch v := item.(type) {
	case string:
		name := strings.TrimSpace(v)
		if name == "" {
			c.warn(where, fmt.Sprintf("item %d is an empty string", index+1))
			return Entry{}, false
		}
		return Leaf(name), true
	case map[string]any:
		name, ok := firstString(v, nameKeys)
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			c.warn(where, fmt.Sprintf("item %d has no name key (%s); subtree skipped", index+1, strings.Join(nameKeys, ", ")))
			return Entry{}, false
		}
		children, _, ok := firstList(v, childrenKeys)
		if !ok {
			return Leaf(name), true
		}
		return Branch(name, c.convertList(children, joinPath(parentPath, name))...), true
	default:
		c.warn(where, fmt.Sprintf("item %d has unsupported type %T", index+1, item))
		return Entry{}, false
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + " > " + name
}
