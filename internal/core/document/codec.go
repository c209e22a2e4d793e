package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/ohler55/ojg/jp"
	"gopkg.in/yaml.v3"
)

var cborDecMode cbor.DecMode

func init() {
	var err error
	cborDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Encode writes doc to w in format.
func Encode(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		return cbor.NewEncoder(w).Encode(doc)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Decode reads one document in format from r and validates its header.
func Decode(r io.Reader, format Format) (Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	case FormatCBOR:
		err = cborDecMode.NewDecoder(r).Decode(&doc)
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return Document{}, fmt.Errorf("decode %s document: %w", format, err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func Marshal(doc Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Unmarshal(data []byte, format Format) (Document, error) {
	return Decode(bytes.NewReader(data), format)
}

// Fingerprint hashes the compact JSON encoding of v. Map keys are sorted by
// the encoder, so equal documents hash equally whatever format they were read
// from.
func Fingerprint(v any) (uint64, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(raw), nil
}

// Generic converts doc into plain maps and slices, as produced by a JSON
// decoder.
func Generic(doc Document) (any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Query evaluates a JSONPath expression against doc.
func Query(doc Document, path string) ([]any, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", path, err)
	}
	root, err := Generic(doc)
	if err != nil {
		return nil, err
	}
	return x.Get(root), nil
}

// ReadFile decodes the document at path, choosing the format by extension.
func ReadFile(path string) (Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Document{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return Decode(f, format)
}

// WriteFile encodes doc to path. An empty format is inferred from the
// extension.
func WriteFile(path string, doc Document, format Format) error {
	if format == "" {
		var err error
		if format, err = FormatFromPath(path); err != nil {
			return err
		}
	}
	data, err := Marshal(doc, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
