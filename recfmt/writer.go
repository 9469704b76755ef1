package recfmt

import (
	"fmt"
	"io"
	"strings"
)

// Mode selects one of the four textual forms a Writer can produce
// (spec.md section 4.6).
type Mode int

const (
	// Normal renders the standard "name: value" record-database text,
	// byte-compatible with what Parse accepts.
	Normal Mode = iota
	// Sexp renders each element as a parenthesized s-expression.
	Sexp
	// Values renders only field values, unescaped, one per line, with
	// any embedded newlines preserved.
	Values
	// ValuesRow renders only field values, one record per line, values
	// joined by spaces.
	ValuesRow
)

// Writer serializes recfmt trees to an io.Writer in a chosen Mode.
type Writer struct {
	w    io.Writer
	mode Mode
	err  error
}

// NewWriter returns a Writer that writes to w in the given mode.
func NewWriter(w io.Writer, mode Mode) *Writer {
	return &Writer{w: w, mode: mode}
}

func (wr *Writer) writeString(s string) {
	if wr.err != nil {
		return
	}
	_, wr.err = io.WriteString(wr.w, s)
}

// Err returns the first write error encountered, if any.
func (wr *Writer) Err() error { return wr.err }

// WriteDatabase serializes an entire database.
func (wr *Writer) WriteDatabase(db *Database) error {
	if wr.mode == Sexp {
		wr.writeString("(db")
		for _, e := range db.All() {
			wr.writeString(" ")
			switch v := e.(type) {
			case *RecordSet:
				wr.writeRecordSetSexp(v)
			case *Comment:
				wr.writeCommentSexp(v)
			}
		}
		wr.writeString(")\n")
		return wr.err
	}
	first := true
	for _, e := range db.All() {
		if !first {
			wr.writeString("\n")
		}
		first = false
		switch v := e.(type) {
		case *RecordSet:
			wr.writeRecordSet(v)
		case *Comment:
			wr.writeComment(v)
		}
	}
	return wr.err
}

func (wr *Writer) writeRecordSet(rs *RecordSet) {
	first := true
	if d := rs.Descriptor(); d != nil {
		wr.writeRecord(d)
		first = false
	}
	for _, e := range rs.All() {
		if !first {
			wr.writeString("\n")
		}
		first = false
		switch v := e.(type) {
		case *Record:
			wr.writeRecord(v)
		case *Comment:
			wr.writeComment(v)
		}
	}
}

func (wr *Writer) writeRecordSetSexp(rs *RecordSet) {
	wr.writeString("(rset")
	if d := rs.Descriptor(); d != nil {
		wr.writeString(" ")
		wr.writeRecordSexp(d)
	}
	for _, e := range rs.All() {
		wr.writeString(" ")
		switch v := e.(type) {
		case *Record:
			wr.writeRecordSexp(v)
		case *Comment:
			wr.writeCommentSexp(v)
		}
	}
	wr.writeString(")")
}

// WriteRecordSet serializes a single record-set, including its
// descriptor if present.
func (wr *Writer) WriteRecordSet(rs *RecordSet) error {
	if wr.mode == Sexp {
		wr.writeRecordSetSexp(rs)
		wr.writeString("\n")
		return wr.err
	}
	wr.writeRecordSet(rs)
	return wr.err
}

func (wr *Writer) writeRecord(r *Record) {
	switch wr.mode {
	case Sexp:
		wr.writeRecordSexp(r)
		wr.writeString("\n")
	case Values:
		for _, f := range r.Fields() {
			wr.writeString(f.Value())
			wr.writeString("\n")
		}
	case ValuesRow:
		vals := make([]string, 0, r.FieldCount())
		for _, f := range r.Fields() {
			vals = append(vals, strings.ReplaceAll(f.Value(), "\n", " "))
		}
		wr.writeString(strings.Join(vals, " "))
		wr.writeString("\n")
	default:
		for _, e := range r.All() {
			switch v := e.(type) {
			case *Field:
				wr.writeField(v)
			case *Comment:
				wr.writeComment(v)
			}
		}
	}
}

func (wr *Writer) writeRecordSexp(r *Record) {
	wr.writeString("(record")
	for _, e := range r.All() {
		wr.writeString(" ")
		switch v := e.(type) {
		case *Field:
			wr.writeFieldSexp(v)
		case *Comment:
			wr.writeCommentSexp(v)
		}
	}
	wr.writeString(")")
}

// WriteRecord serializes a single record.
func (wr *Writer) WriteRecord(r *Record) error {
	wr.writeRecord(r)
	return wr.err
}

// normalFieldText renders f the way NORMAL mode does, without a
// trailing newline: "name:" for an empty value, "name: value" for a
// single-line value, "name: line1\n+ line2..." for a multi-line one.
func normalFieldText(f *Field) string {
	if f.Value() == "" {
		return f.Name() + ":"
	}
	lines := strings.Split(f.Value(), "\n")
	var b strings.Builder
	b.WriteString(f.Name())
	b.WriteString(": ")
	b.WriteString(lines[0])
	for _, l := range lines[1:] {
		b.WriteString("\n+ ")
		b.WriteString(l)
	}
	return b.String()
}

func (wr *Writer) writeField(f *Field) {
	wr.writeString(normalFieldText(f))
	wr.writeString("\n")
}

// writeFieldSexp renders a field per spec.md section 4.6: a field-name
// alone (empty value) writes just the quoted name; otherwise
// "(field  \"name\" \"value\")" with two spaces preserved.
func (wr *Writer) writeFieldSexp(f *Field) {
	if f.Value() == "" {
		wr.writeString(sexpQuote(f.Name()))
		return
	}
	wr.writeString("(field  ")
	wr.writeString(sexpQuote(f.Name()))
	wr.writeString(" ")
	wr.writeString(sexpQuote(f.Value()))
	wr.writeString(")")
}

func (wr *Writer) writeComment(c *Comment) {
	for _, l := range strings.Split(c.Text(), "\n") {
		wr.writeString("#")
		wr.writeString(l)
		wr.writeString("\n")
	}
}

func (wr *Writer) writeCommentSexp(c *Comment) {
	wr.writeString(fmt.Sprintf("(comment %s)", sexpQuote(c.Text())))
}

// sexpQuote double-quotes s, escaping backslash and double-quote as
// spec.md section 4.6 requires.
func sexpQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// FieldToComment converts f into a Comment whose text is the NORMAL
// serialization of f (spec.md section 4.6): "name:" for empty value,
// "name: value" for single-line, "name: line1\n+ line2…" for multi-line.
func FieldToComment(f *Field) *Comment {
	return NewComment(normalFieldText(f))
}
