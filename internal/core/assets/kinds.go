package assets

import "fmt"

// Palette is an ordered list of colors.
type Palette struct {
	Base
	Colors []string
}

func NewPalette(name string, colors ...string) *Palette {
	return &Palette{Base: NewBase(TypePalette, name), Colors: colors}
}

func (p *Palette) ToJSON() Record {
	colors := make([]any, len(p.Colors))
	for i, c := range p.Colors {
		colors[i] = c
	}
	return p.record(map[string]any{"colors": colors})
}

func (p *Palette) FromJSON(r Record) {
	p.load(r)
	if raw, ok := r.Data["colors"]; ok {
		p.Colors = toStrings(raw)
	}
}

// Script is source text plus the variables it exposes to the editor.
type Script struct {
	Base
	Source    string
	Variables map[string]any
}

func NewScript(name, source string) *Script {
	return &Script{Base: NewBase(TypeScript, name), Source: source, Variables: map[string]any{}}
}

func (s *Script) ToJSON() Record {
	vars := make(map[string]any, len(s.Variables))
	for k, v := range s.Variables {
		vars[k] = v
	}
	return s.record(map[string]any{"source": s.Source, "variables": vars})
}

func (s *Script) FromJSON(r Record) {
	s.load(r)
	if src, ok := r.Data["source"].(string); ok {
		s.Source = src
	}
	if vars := toMap(r.Data["variables"]); vars != nil {
		s.Variables = vars
	}
}

// Dispose drops the source so a removed script cannot be run by stale
// references.
func (s *Script) Dispose() {
	s.Source = ""
	s.Variables = map[string]any{}
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(e))
			}
		}
		return out
	}
	return nil
}

// toMap accepts both string-keyed maps and the any-keyed maps some decoders
// produce.
func toMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = e
		}
		return out
	}
	return nil
}
