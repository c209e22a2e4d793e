// Package document bundles a scene graph and its asset library into a single
// project file, and converts it between the supported encodings.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/salinityengine/salinity/internal/core/assets"
	"github.com/salinityengine/salinity/internal/core/entity"
	"github.com/salinityengine/salinity/internal/core/thing"
)

// TypeProject is the meta type of a project document.
const TypeProject = "Project"

var (
	ErrUnknownFormat = errors.New("unknown document format")
	ErrWrongType     = errors.New("not a project document")
)

// Format names an encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

func (f Format) String() string { return string(f) }

// ParseFormat accepts a format name, case insensitively. "yml" is an alias
// for yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Document is a serialized project.
type Document struct {
	Meta   thing.Meta     `json:"meta" yaml:"meta"`
	Name   string         `json:"name" yaml:"name"`
	Assets assets.Library `json:"assets,omitempty" yaml:"assets,omitempty"`
	Root   entity.Record  `json:"root" yaml:"root"`
}

// Build snapshots root, recursively, and the contents of lib. lib may be nil.
func Build(name string, root *entity.Entity, lib *assets.Registry) Document {
	doc := Document{
		Meta: thing.Meta{Type: TypeProject, Version: thing.Version},
		Name: name,
	}
	if root != nil {
		doc.Root = root.ToJSON(true)
		if doc.Name == "" {
			doc.Name = root.Name()
		}
	}
	if lib != nil {
		doc.Assets = lib.ToJSON()
	}
	return doc
}

// Validate checks the document header.
func (d Document) Validate() error {
	if d.Meta.Type != TypeProject {
		return fmt.Errorf("%w: meta type %q", ErrWrongType, d.Meta.Type)
	}
	if d.Root.Meta.Type == "" {
		return fmt.Errorf("%w: root has no type", ErrWrongType)
	}
	return nil
}

// Restore rebuilds the scene graph and then loads the asset library into lib,
// when given. lib is left untouched if the graph cannot be built.
func (d Document) Restore(env *entity.Env, lib *assets.Registry) (*entity.Entity, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	root, err := entity.Load(env, d.Root)
	if err != nil {
		return nil, err
	}
	if lib != nil {
		lib.FromJSON(d.Assets)
	}
	return root, nil
}
