package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// PrefabTemplate is the parsed form of a *.prefab.toml file. It is immutable
// once loaded and shared by every instance spawned from it.
type PrefabTemplate struct {
	Name       string           `toml:"name"`
	Tags       []string         `toml:"tags"`
	Components []ComponentDef   `toml:"components"`
	Children   []PrefabTemplate `toml:"children"`
}

type ComponentDef struct {
	Kind   string                 `toml:"kind"`
	Params map[string]interface{} `toml:"params"`
}

type PrefabLoader struct{}

func (pl *PrefabLoader) Load(path string) (interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePrefab(raw, strings.TrimSuffix(filepath.Base(path), ".prefab.toml"))
}

// ParsePrefab decodes a prefab document. fallbackName is used when the root
// has no name.
func ParsePrefab(raw []byte, fallbackName string) (*PrefabTemplate, error) {
	tmpl := &PrefabTemplate{}
	if err := toml.Unmarshal(raw, tmpl); err != nil {
		return nil, fmt.Errorf("prefab '%s': %w", fallbackName, err)
	}
	if tmpl.Name == "" {
		tmpl.Name = fallbackName
	}
	if err := tmpl.validate(tmpl.Name); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (t *PrefabTemplate) validate(path string) error {
	for i, c := range t.Components {
		if c.Kind == "" {
			return fmt.Errorf("prefab '%s': component %d has no kind", path, i)
		}
	}
	for i := range t.Children {
		child := &t.Children[i]
		if child.Name == "" {
			return fmt.Errorf("prefab '%s': child %d has no name", path, i)
		}
		if err := child.validate(path + "/" + child.Name); err != nil {
			return err
		}
	}
	return nil
}
