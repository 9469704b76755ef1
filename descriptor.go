package recdb

import (
	"strconv"
	"strings"

	"github.com/go-recdb/recdb/fex"
	"github.com/go-recdb/recdb/internal/util"
	"github.com/go-recdb/recdb/recfmt"
	"github.com/go-recdb/recdb/rectype"
	"github.com/go-recdb/recdb/sex"
)

// Descriptor is the set of attributes a record-set derives from its
// descriptor record's %-prefixed fields (spec.md section 3: "Descriptor-
// derived attributes"). A record-set's descriptor record is recognized
// by the presence of a %rec field; every other recognized field is
// optional and may be repeated, in which case whitespace-separated list
// fields (Mandatory, Prohibit, Unique, Allowed, Sort, Auto, Confidential)
// accumulate across occurrences.
type Descriptor struct {
	RecName      string
	Registry     *rectype.Registry
	Key          string
	Mandatory    []string
	Prohibit     []string
	Unique       []string
	Allowed      []string
	Sort         []string
	Auto         []string
	Confidential []string
	Size         int // -1 when %size is absent
	Constraint   *sex.Expr
}

// ParseDescriptor derives a Descriptor from rec, which must contain a
// %rec field (callers check this via recfmt.Record.Get("%rec") before
// calling, the same way RecordSet boundaries are recognized while
// parsing). presets, if non-nil, seeds the returned registry so that
// %type fields can reference externally-loaded type names in addition
// to this descriptor's own %typedef aliases.
func ParseDescriptor(rec *recfmt.Record, presets *rectype.Registry) (*Descriptor, error) {
	d := &Descriptor{
		Registry: rectype.NewRegistry(),
		Size:     -1,
	}
	if presets != nil {
		d.Registry.Merge(presets)
	}

	if name, ok := rec.Get("%rec"); ok {
		fields := strings.Fields(name)
		if len(fields) == 0 {
			return nil, &UsageError{Msg: "%rec: missing record type name"}
		}
		d.RecName = fields[0]
	}

	// %typedef aliases are registered before %type so that a %type field
	// can reference an alias defined anywhere in the same descriptor,
	// regardless of field order.
	for _, f := range rec.Fields() {
		if f.Name() != "%typedef" {
			continue
		}
		alias, rest, ok := splitFirstToken(f.Value())
		if !ok {
			return nil, &UsageError{Msg: "%typedef: missing alias name"}
		}
		if err := d.registerTypeDescriptor(alias, rest); err != nil {
			return nil, err
		}
	}

	for _, f := range rec.Fields() {
		switch f.Name() {
		case "%rec", "%typedef":
			// already handled above.
		case "%key":
			fields := strings.Fields(f.Value())
			if len(fields) == 0 {
				return nil, &UsageError{Msg: "%key: missing field name"}
			}
			d.Key = fields[0]
		case "%mandatory":
			d.Mandatory = append(d.Mandatory, mustFieldNames(f.Value())...)
		case "%prohibit":
			d.Prohibit = append(d.Prohibit, mustFieldNames(f.Value())...)
		case "%unique":
			d.Unique = append(d.Unique, mustFieldNames(f.Value())...)
		case "%allowed":
			d.Allowed = append(d.Allowed, mustFieldNames(f.Value())...)
		case "%sort":
			d.Sort = append(d.Sort, mustFieldNames(f.Value())...)
		case "%auto":
			d.Auto = append(d.Auto, mustFieldNames(f.Value())...)
		case "%confidential":
			d.Confidential = append(d.Confidential, mustFieldNames(f.Value())...)
		case "%size":
			n, err := strconv.Atoi(strings.TrimSpace(f.Value()))
			if err != nil {
				return nil, &UsageError{Msg: "%size: " + err.Error()}
			}
			d.Size = n
		case "%constraint":
			expr, err := sex.Compile(f.Value())
			if err != nil {
				return nil, &UsageError{Msg: "%constraint: " + err.Error()}
			}
			d.Constraint = expr
		case "%type":
			fields, rest, ok := splitFirstToken(f.Value())
			if !ok {
				return nil, &UsageError{Msg: "%type: missing field name"}
			}
			names, err := fieldNamesFromFex(fields)
			if err != nil {
				return nil, &UsageError{Msg: "%type: " + err.Error()}
			}
			for _, name := range names {
				if err := d.registerTypeDescriptor(name, rest); err != nil {
					return nil, err
				}
			}
		}
	}

	return d, nil
}

// registerTypeDescriptor registers descr under name, falling back to an
// already-registered alias lookup when descr is a single bare word that
// does not parse as a type descriptor on its own (e.g. "%type: Country
// iso_country" where iso_country was declared by an earlier %typedef).
func (d *Descriptor) registerTypeDescriptor(name, descr string) error {
	if err := d.Registry.Register(name, descr); err != nil {
		if alias, ok := d.Registry.Lookup(strings.TrimSpace(descr)); ok {
			d.Registry.RegisterType(name, alias)
			return nil
		}
		return &UsageError{Msg: err.Error()}
	}
	return nil
}

// splitFirstToken splits s on its first run of whitespace, returning the
// leading token and the (trimmed) remainder.
func splitFirstToken(s string) (first, rest string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", false
	}
	idx := strings.IndexFunc(s, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' })
	if idx < 0 {
		return s, "", true
	}
	return s[:idx], strings.TrimSpace(s[idx:]), true
}

// fieldNamesFromFex parses a %type field's field-name portion as a CSV
// fex (recutils allows "field1,field2 int" for a shared type).
func fieldNamesFromFex(s string) ([]string, error) {
	fx, err := fex.Parse(s, fex.CSV)
	if err != nil {
		return nil, err
	}
	return util.TransformSlice(fx.Elems(), func(e fex.Elem) string { return e.Name }), nil
}

// mustFieldNames splits a whitespace-separated field-name list, ignoring
// a parse error from an unexpected character: descriptor list fields are
// permissive about separators in recutils practice.
func mustFieldNames(s string) []string {
	fx, err := fex.Parse(s, fex.Simple)
	if err != nil {
		return strings.Fields(s)
	}
	return util.TransformSlice(fx.Elems(), func(e fex.Elem) string { return e.Name })
}
