// Package recfmt implements the plain-text record-database wire format
// (spec.md section 4): a line-based parser that reads the whole input,
// splits it into physical lines, splices backslash-continued lines and
// then builds a Database tree line by line, and a Writer that serializes
// that tree back out in any of the four textual forms (NORMAL, SEXP,
// VALUES, VALUES_ROW).
//
// The line-continuation and line-splice handling is grounded on
// original_source/CVE-2019-6455/bash/readrec.c, which implements the
// same record format for bash's own config reader.
package recfmt

import "github.com/go-recdb/recdb/mset"

// Field is one "name: value" pair inside a Record.
type Field struct {
	name, value string
	line, col   int
}

// NewField builds a Field with no positional information, for programmatic
// (non-parsed) construction.
func NewField(name, value string) *Field {
	return &Field{name: name, value: value}
}

func (f *Field) Name() string  { return f.name }
func (f *Field) Value() string { return f.value }
func (f *Field) Line() int     { return f.line }
func (f *Field) Col() int      { return f.col }

// SetValue replaces the field's value in place.
func (f *Field) SetValue(v string) { f.value = v }

// Tag implements mset.Elem.
func (f *Field) Tag() mset.Tag { return mset.Field }

// Dup implements mset.Duplicable.
func (f *Field) Dup() mset.Elem {
	cp := *f
	return &cp
}

// Comment is a run of one or more consecutive '#'-prefixed lines, folded
// into a single element whose Text joins the original lines with "\n".
type Comment struct {
	text string
	line int
}

func NewComment(text string) *Comment { return &Comment{text: text} }

func (c *Comment) Text() string { return c.text }
func (c *Comment) Line() int    { return c.line }

// Tag implements mset.Elem. Comments carry the same tag regardless of
// which container (Record, RecordSet, Database) holds them.
func (c *Comment) Tag() mset.Tag { return mset.Comment }

func (c *Comment) Dup() mset.Elem {
	cp := *c
	return &cp
}

// Record is an ordered multiset of Field and Comment elements
// (spec.md section 2).
type Record struct {
	set mset.Set
}

func NewRecord() *Record { return &Record{} }

// AppendField appends a new field with no positional information.
func (r *Record) AppendField(name, value string) *Field {
	f := NewField(name, value)
	_ = r.set.Append(f)
	return f
}

// AppendComment appends a new comment.
func (r *Record) AppendComment(text string) *Comment {
	c := NewComment(text)
	_ = r.set.Append(c)
	return c
}

func (r *Record) append(e mset.Elem) error { return r.set.Append(e) }

// Len returns the total number of elements (fields plus comments).
func (r *Record) Len() int { return r.set.Len() }

// FieldCount returns the number of Field elements.
func (r *Record) FieldCount() int { return r.set.Count(mset.Field) }

// CommentCount returns the number of Comment elements.
func (r *Record) CommentCount() int { return r.set.Count(mset.Comment) }

// FieldAt returns the i-th field, in record order.
func (r *Record) FieldAt(i int) (*Field, bool) {
	e, ok := r.set.GetAt(mset.Field, i)
	if !ok {
		return nil, false
	}
	return e.(*Field), true
}

// Fields returns every field, in record order.
func (r *Record) Fields() []*Field {
	elems := r.set.AllTag(mset.Field)
	out := make([]*Field, len(elems))
	for i, e := range elems {
		out[i] = e.(*Field)
	}
	return out
}

// Comments returns every comment, in record order.
func (r *Record) Comments() []*Comment {
	elems := r.set.AllTag(mset.Comment)
	out := make([]*Comment, len(elems))
	for i, e := range elems {
		out[i] = e.(*Comment)
	}
	return out
}

// All returns every element (fields and comments interleaved) in
// original order.
func (r *Record) All() []mset.Elem { return r.set.All() }

// Get looks up the first field named name.
func (r *Record) Get(name string) (string, bool) {
	for _, f := range r.Fields() {
		if f.Name() == name {
			return f.Value(), true
		}
	}
	return "", false
}

// GetAll returns the values of every field named name, in record order.
func (r *Record) GetAll(name string) []string {
	var out []string
	for _, f := range r.Fields() {
		if f.Name() == name {
			out = append(out, f.Value())
		}
	}
	return out
}

// Tag implements mset.Elem, so a Record can itself live inside a
// RecordSet's body multiset.
func (r *Record) Tag() mset.Tag { return mset.Record }

// Dup returns a deep copy of r. It also implements mset.Duplicable,
// returning mset.Elem so a Record can be deep-copied while stored inside
// a RecordSet's body multiset.
func (r *Record) Dup() mset.Elem { return &Record{set: *r.set.Dup()} }

// RecordSet is a descriptor (an optional "%rec"-bearing Record) plus an
// ordered multiset of Record and Comment elements.
type RecordSet struct {
	descriptor *Record
	set        mset.Set
}

func NewRecordSet(descriptor *Record) *RecordSet {
	return &RecordSet{descriptor: descriptor}
}

// Descriptor returns the record-set's descriptor record, or nil if this
// is the database's implicit, type-less record-set.
func (rs *RecordSet) Descriptor() *Record { return rs.descriptor }

// RecName returns the "%rec" field value of the descriptor, or "" if
// there is no descriptor.
func (rs *RecordSet) RecName() string {
	if rs.descriptor == nil {
		return ""
	}
	v, _ := rs.descriptor.Get("%rec")
	return v
}

func (rs *RecordSet) AppendRecord(r *Record) error { return rs.set.Append(r) }
func (rs *RecordSet) AppendComment(c *Comment) error { return rs.set.Append(c) }

// Len returns the number of Record elements.
func (rs *RecordSet) Len() int { return rs.set.Count(mset.Record) }

// RecordAt returns the i-th body record.
func (rs *RecordSet) RecordAt(i int) (*Record, bool) {
	e, ok := rs.set.GetAt(mset.Record, i)
	if !ok {
		return nil, false
	}
	return e.(*Record), true
}

// Records returns every body record, in record-set order.
func (rs *RecordSet) Records() []*Record {
	elems := rs.set.AllTag(mset.Record)
	out := make([]*Record, len(elems))
	for i, e := range elems {
		out[i] = e.(*Record)
	}
	return out
}

// Comments returns the record-set's own top-level comments (not those
// nested inside a body record).
func (rs *RecordSet) Comments() []*Comment {
	elems := rs.set.AllTag(mset.Comment)
	out := make([]*Comment, len(elems))
	for i, e := range elems {
		out[i] = e.(*Comment)
	}
	return out
}

// All returns every element of the record-set body in original order.
func (rs *RecordSet) All() []mset.Elem { return rs.set.All() }

// fieldCount sums Field elements across every body record, used to
// reject comment-only record-sets (spec.md section 4.5).
func (rs *RecordSet) fieldCount() int {
	n := 0
	for _, r := range rs.Records() {
		n += r.FieldCount()
	}
	return n
}

// Tag implements mset.Elem, so a RecordSet can itself live inside a
// Database's top-level multiset.
func (rs *RecordSet) Tag() mset.Tag { return mset.RSet }

// Dup returns a deep copy, implementing mset.Duplicable.
func (rs *RecordSet) Dup() mset.Elem {
	var desc *Record
	if rs.descriptor != nil {
		desc = rs.descriptor.Dup().(*Record)
	}
	return &RecordSet{descriptor: desc, set: *rs.set.Dup()}
}

// Database is an ordered sequence of record-sets, plus any stray
// top-level comments.
type Database struct {
	set mset.Set
}

func NewDatabase() *Database { return &Database{} }

func (d *Database) AppendRecordSet(rs *RecordSet) error { return d.set.Append(rs) }
func (d *Database) AppendComment(c *Comment) error      { return d.set.Append(c) }

// Len returns the number of record-sets.
func (d *Database) Len() int { return d.set.Count(mset.RSet) }

// RecordSetAt returns the i-th record-set.
func (d *Database) RecordSetAt(i int) (*RecordSet, bool) {
	e, ok := d.set.GetAt(mset.RSet, i)
	if !ok {
		return nil, false
	}
	return e.(*RecordSet), true
}

// RecordSets returns every record-set, in database order.
func (d *Database) RecordSets() []*RecordSet {
	elems := d.set.AllTag(mset.RSet)
	out := make([]*RecordSet, len(elems))
	for i, e := range elems {
		out[i] = e.(*RecordSet)
	}
	return out
}

// ByRecName returns the first record-set whose descriptor's "%rec" value
// equals name.
func (d *Database) ByRecName(name string) (*RecordSet, bool) {
	for _, rs := range d.RecordSets() {
		if rs.RecName() == name {
			return rs, true
		}
	}
	return nil, false
}

// All returns every top-level element (record-sets and stray comments)
// in original order.
func (d *Database) All() []mset.Elem { return d.set.All() }

// Dup returns a deep copy of the whole database.
func (d *Database) Dup() *Database { return &Database{set: *d.set.Dup()} }
