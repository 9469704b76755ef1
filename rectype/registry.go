package rectype

import (
	"fmt"
	"io"

	"github.com/go-recdb/recdb/internal/util"
	"gopkg.in/yaml.v3"
)

// Registry is a name -> Type lookup table. Insertion order is not
// meaningful; lookup is always by exact name (spec.md section 3).
type Registry struct {
	types map[string]*Type
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register compiles descr and stores it under name, overwriting any
// existing entry. It is used both for %type declarations (name is the
// declared field's own name) and %typedef aliases (name is the alias).
func (r *Registry) Register(name, descr string) error {
	t, err := Parse(descr)
	if err != nil {
		return fmt.Errorf("rectype: registering %q: %w", name, err)
	}
	r.types[name] = t.WithName(name)
	return nil
}

// RegisterType stores an already-compiled Type under name.
func (r *Registry) RegisterType(name string, t *Type) {
	r.types[name] = t.WithName(name)
}

// Lookup returns the Type registered under name, if any.
func (r *Registry) Lookup(name string) (*Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.types) }

// Names returns the registered type names in sorted order, giving a
// deterministic listing regardless of map iteration order (e.g. for a
// debug dump or a stable diagnostic message).
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range util.CanonicalMapIter(r.types) {
		names = append(names, name)
	}
	return names
}

// Merge copies every entry of other into r, overwriting on name collision.
func (r *Registry) Merge(other *Registry) {
	for name, t := range other.types {
		r.types[name] = t
	}
}

// LoadPresetsYAML parses a YAML document mapping type name to descriptor
// string (e.g. "email: email" or "country: enum US CA MX") and merges the
// compiled result into r. This is the Go-native supplement described in
// SPEC_FULL.md's ambient stack: recutils always rebuilds a registry from a
// single record-set descriptor, but a Go caller sharing a library of named
// types across many databases benefits from an external preset file, the
// same way the teacher loads its GeneratorConfig from YAML
// (database.ParseGeneratorConfig).
func (r *Registry) LoadPresetsYAML(rd io.Reader) error {
	var presets map[string]string
	dec := yaml.NewDecoder(rd)
	if err := dec.Decode(&presets); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("rectype: decoding presets: %w", err)
	}
	for name, descr := range presets {
		if err := r.Register(name, descr); err != nil {
			return err
		}
	}
	return nil
}
