// Package recdb ties the record-format data model (recfmt), the type
// registry (rectype), the field-expression language (fex), and the
// selection-expression engine (sex) together behind a descriptor-aware
// Database, the same way the teacher's top-level package glues its
// parser/schema/adapter layers behind Options/Run (spec.md section 3).
package recdb

import (
	"fmt"
	"io"

	"github.com/go-recdb/recdb/recfmt"
	"github.com/go-recdb/recdb/rectype"
	"github.com/go-recdb/recdb/sex"
)

// Database is a parsed record database together with, for every
// record-set that carries a %rec descriptor, the Descriptor derived
// from it.
type Database struct {
	raw   *recfmt.Database
	descs []*Descriptor // parallel to raw.RecordSets(); nil where no %rec
	log   Logger
}

// ParseDatabase parses r as a record database and derives a Descriptor
// for every record-set whose descriptor record carries a %rec field.
// presets, if non-nil, is merged into each derived Descriptor's registry
// before its own %typedef/%type fields are processed, letting a caller
// share a library of named types across many databases (see
// rectype.Registry.LoadPresetsYAML). The returned Database borrows
// nothing from presets after this call returns.
func ParseDatabase(r io.Reader, source string, presets *rectype.Registry) (*Database, error) {
	raw, err := recfmt.Parse(r, source)
	if err != nil {
		return nil, err
	}
	return newDatabase(raw, presets, NullLogger{})
}

// ParseDatabaseString is the in-memory convenience form of ParseDatabase.
func ParseDatabaseString(s, source string, presets *rectype.Registry) (*Database, error) {
	raw, err := recfmt.ParseString(s, source)
	if err != nil {
		return nil, err
	}
	return newDatabase(raw, presets, NullLogger{})
}

func newDatabase(raw *recfmt.Database, presets *rectype.Registry, log Logger) (*Database, error) {
	db := &Database{raw: raw, log: log}
	for _, rs := range raw.RecordSets() {
		descRec := rs.Descriptor()
		if descRec == nil {
			db.descs = append(db.descs, nil)
			continue
		}
		if _, ok := descRec.Get("%rec"); !ok {
			db.descs = append(db.descs, nil)
			continue
		}
		d, err := ParseDescriptor(descRec, presets)
		if err != nil {
			return nil, fmt.Errorf("recdb: record set %q: %w", recNameOf(descRec), err)
		}
		db.descs = append(db.descs, d)
		log.Printf("recdb: registered descriptor for record set %q (%d types)\n", d.RecName, d.Registry.Len())
	}
	return db, nil
}

func recNameOf(descRec *recfmt.Record) string {
	if name, ok := descRec.Get("%rec"); ok {
		return name
	}
	return ""
}

// SetLogger installs l as the Database's diagnostic sink, used during
// Validate to report non-fatal observations. The default is NullLogger.
func (db *Database) SetLogger(l Logger) { db.log = l }

// Len returns the number of record-sets in the database.
func (db *Database) Len() int { return db.raw.Len() }

// RecordSetAt returns the i-th record-set together with its derived
// Descriptor, which is nil when the record-set has no %rec descriptor.
func (db *Database) RecordSetAt(i int) (*recfmt.RecordSet, *Descriptor, bool) {
	rs, ok := db.raw.RecordSetAt(i)
	if !ok {
		return nil, nil, false
	}
	return rs, db.descs[i], true
}

// ByRecName returns the record-set (and its Descriptor) whose %rec name
// matches name.
func (db *Database) ByRecName(name string) (*recfmt.RecordSet, *Descriptor, bool) {
	for i := 0; i < db.Len(); i++ {
		rs, desc, _ := db.RecordSetAt(i)
		if rs.RecName() == name {
			return rs, desc, true
		}
	}
	return nil, nil, false
}

// Raw returns the underlying recfmt.Database, for callers that need the
// full parsed tree (comments, raw field order) rather than the
// descriptor-aware view.
func (db *Database) Raw() *recfmt.Database { return db.raw }

// WriteTo serializes the database in the given mode, mirroring
// recfmt.Writer.WriteDatabase.
func (db *Database) WriteTo(w io.Writer, mode recfmt.Mode) error {
	wr := recfmt.NewWriter(w, mode)
	return wr.WriteDatabase(db.raw)
}

// Validate checks every record-set against its Descriptor's mandatory,
// prohibit, unique, allowed, size, type, and constraint attributes,
// returning the first violation found as a *ValidationError. A
// record-set with no descriptor (no %rec) is never validated: it has no
// declared constraints to check against (spec.md section 3).
func (db *Database) Validate() error {
	for i := 0; i < db.Len(); i++ {
		rs, desc, _ := db.RecordSetAt(i)
		if desc == nil {
			continue
		}
		if desc.Size >= 0 && rs.Len() > desc.Size {
			return &ValidationError{RecName: rs.RecName(), Msg: fmt.Sprintf("%d records exceeds %%size %d", rs.Len(), desc.Size)}
		}
		for _, name := range desc.Unique {
			if err := validateUnique(rs, name); err != nil {
				return err
			}
		}
		for _, rec := range rs.Records() {
			if err := validateRecord(rs.RecName(), rec, desc, db.log); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateUnique(rs *recfmt.RecordSet, fieldName string) error {
	seen := make(map[string]bool)
	for _, rec := range rs.Records() {
		for _, v := range rec.GetAll(fieldName) {
			if seen[v] {
				return &ValidationError{RecName: rs.RecName(), Msg: fmt.Sprintf("duplicate value %q for unique field %q", v, fieldName)}
			}
			seen[v] = true
		}
	}
	return nil
}

func validateRecord(recName string, rec *recfmt.Record, desc *Descriptor, log Logger) error {
	for _, name := range desc.Mandatory {
		if len(rec.GetAll(name)) == 0 {
			return &ValidationError{RecName: recName, Msg: fmt.Sprintf("missing mandatory field %q", name)}
		}
	}
	for _, name := range desc.Prohibit {
		if len(rec.GetAll(name)) != 0 {
			return &ValidationError{RecName: recName, Msg: fmt.Sprintf("field %q is prohibited", name)}
		}
	}
	if len(desc.Allowed) > 0 {
		allowed := make(map[string]bool, len(desc.Allowed))
		for _, n := range desc.Allowed {
			allowed[n] = true
		}
		for _, f := range rec.Fields() {
			if !allowed[f.Name()] {
				return &ValidationError{RecName: recName, Msg: fmt.Sprintf("field %q is not in %%allowed", f.Name())}
			}
		}
	}
	for _, f := range rec.Fields() {
		t, ok := desc.Registry.Lookup(f.Name())
		if !ok {
			continue
		}
		if err := t.Validate(f.Value()); err != nil {
			return &ValidationError{RecName: recName, Msg: fmt.Sprintf("field %q: %s", f.Name(), err)}
		}
	}
	if desc.Constraint != nil {
		ok, err := sex.Matched(desc.Constraint, rec)
		if err != nil {
			return &ValidationError{RecName: recName, Msg: fmt.Sprintf("%%constraint: %s", err)}
		}
		if !ok {
			return &ValidationError{RecName: recName, Msg: "record fails %constraint"}
		}
	}
	log.Printf("recdb: validated record in %q\n", recName)
	return nil
}
