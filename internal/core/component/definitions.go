package component

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefinitionsFile is the YAML layout of a component definitions file:
//
//	components:
//	  - name: Transform
//	    defaults: {x: 0, y: 0}
//	  - name: Sprite
//	    dependencies: [Transform]
//	  - name: Script
//	    multiple: true
type DefinitionsFile struct {
	Components []DefinitionConfig `json:"components" yaml:"components"`
}

type DefinitionConfig struct {
	Name         string         `json:"name" yaml:"name"`
	Multiple     bool           `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Defaults     map[string]any `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

func (c DefinitionConfig) Definition() Definition {
	def := Definition{
		Name:         c.Name,
		Dependencies: c.Dependencies,
		Defaults:     Data(c.Defaults),
	}
	if c.Multiple {
		def.Multiplicity = Multiple
	}
	return def
}

// LoadDefinitions decodes a YAML definitions document.
func LoadDefinitions(r io.Reader) ([]Definition, error) {
	var file DefinitionsFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode component definitions: %w", err)
	}
	defs := make([]Definition, 0, len(file.Components))
	for _, c := range file.Components {
		defs = append(defs, c.Definition())
	}
	return defs, nil
}

// Load registers every definition found in r. Definitions already present are
// reported as ErrDuplicate.
func (r *Registry) Load(src io.Reader) error {
	defs, err := LoadDefinitions(src)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if err = r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open component definitions: %w", err)
	}
	defer func() { _ = f.Close() }()
	return r.Load(f)
}
