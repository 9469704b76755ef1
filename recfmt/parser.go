package recfmt

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-recdb/recdb/recname"
)

// logicalLine is one value-bearing or directive line after line-splice
// merging has collapsed any backslash-continued physical lines into one.
type logicalLine struct {
	text string // raw text, without the trailing newline
	line int    // 1-based physical line number the logical line starts at
}

// Parse reads an entire record database from r, tagging any ParseError
// with source for diagnostics.
func Parse(r io.Reader, source string) (*Database, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(raw, source)
}

// ParseString parses a record database held entirely in memory.
func ParseString(s string, source string) (*Database, error) {
	return ParseBytes([]byte(s), source)
}

// ParseBytes parses a record database from a byte slice, which may but
// need not be NUL-terminated; a trailing NUL is ignored.
func ParseBytes(raw []byte, source string) (*Database, error) {
	raw = bytes.TrimSuffix(raw, []byte{0})
	p := &parser{source: source}
	lines := splitPhysicalLines(raw)
	logical := spliceLines(lines)
	return p.parse(logical)
}

// physicalLine is one line of input delimited by '\n' (exclusive),
// together with its 1-based line number.
type physicalLine struct {
	text string
	line int
}

func splitPhysicalLines(raw []byte) []physicalLine {
	s := string(raw)
	// strings.Split on a trailing-newline-terminated document produces a
	// spurious trailing "" entry; drop it so EOF isn't seen as a blank
	// separator line.
	parts := strings.Split(s, "\n")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	out := make([]physicalLine, len(parts))
	for i, p := range parts {
		out[i] = physicalLine{text: p, line: i + 1}
	}
	return out
}

// isSpliceEligible reports whether a physical line participates in
// backslash line-splicing: comment lines never do (spec.md section 4.5).
func isSpliceEligible(text string) bool {
	return !strings.HasPrefix(text, "#")
}

// spliceLines merges a physical line ending in a backslash with the line
// that follows it, joined by a single space (spaces and tabs before the
// backslash are dropped; a doubled backslash is not treated specially),
// grounded on original_source/CVE-2019-6455/bash/readrec.c's handling of
// the same escape.
func spliceLines(lines []physicalLine) []logicalLine {
	var out []logicalLine
	i := 0
	for i < len(lines) {
		cur := lines[i]
		startLine := cur.line
		text := cur.text
		for isSpliceEligible(text) && strings.HasSuffix(text, `\`) {
			i++
			trimmed := strings.TrimRight(strings.TrimSuffix(text, `\`), " \t")
			if i >= len(lines) {
				text = trimmed
				break
			}
			text = trimmed + " " + lines[i].text
		}
		out = append(out, logicalLine{text: text, line: startLine})
		i++
	}
	return out
}

type recordBuilder struct {
	rec        *Record
	lastField  *Field
	hasContent bool
}

func newRecordBuilder() *recordBuilder { return &recordBuilder{rec: NewRecord()} }

type rsetBuilder struct {
	descriptor *Record
	rs         *RecordSet
}

type parser struct {
	source string
}

// looksLikeStuckTogetherFieldName reports whether rest -- the text
// immediately following a field's first ':', with no intervening space --
// is itself shaped exactly like a second bare field name followed by a
// colon and nothing else, e.g. the "bar:" in "foo:bar:". This is the
// concrete "two colons in a single field-name line" failure described in
// spec.md section 4.5: recutils treats a name-shaped token glued directly
// to the first colon, itself ending in ':', as two field-name productions
// run together rather than a value. A value separated from the colon by
// the normal single space (e.g. "note: see:") is never ambiguous this way
// and must not be rejected, so a leading space disqualifies the match.
func looksLikeStuckTogetherFieldName(rest string) bool {
	if !strings.HasSuffix(rest, ":") {
		return false
	}
	candidate := strings.TrimSuffix(rest, ":")
	if candidate == "" || candidate[0] == ' ' || candidate[0] == '\t' {
		return false
	}
	return recname.IsValid(candidate)
}

func (p *parser) errf(line, col int, format string, args ...interface{}) error {
	return &ParseError{Source: p.source, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parse(lines []logicalLine) (*Database, error) {
	db := NewDatabase()

	var curRec *recordBuilder
	var commentBuf []string
	var commentLine int
	var curRSet *rsetBuilder

	flushComment := func() {
		if len(commentBuf) == 0 {
			return
		}
		c := &Comment{text: strings.Join(commentBuf, "\n"), line: commentLine}
		if curRec == nil {
			curRec = newRecordBuilder()
		}
		_ = curRec.rec.append(c)
		curRec.hasContent = true
		commentBuf = nil
	}

	finishRecord := func() error {
		flushComment()
		if curRec == nil || !curRec.hasContent {
			curRec = nil
			return nil
		}
		rec := curRec.rec
		curRec = nil

		if recName, ok := rec.Get("%rec"); ok {
			if curRSet != nil {
				if err := p.finishRSet(db, curRSet); err != nil {
					return err
				}
			}
			curRSet = &rsetBuilder{descriptor: rec, rs: NewRecordSet(rec)}
			_ = recName
			return nil
		}

		if curRSet == nil {
			curRSet = &rsetBuilder{rs: NewRecordSet(nil)}
		}
		return curRSet.rs.AppendRecord(rec)
	}

	for _, ll := range lines {
		text := ll.text

		switch {
		case strings.TrimSpace(text) == "":
			if err := finishRecord(); err != nil {
				return nil, err
			}

		case strings.HasPrefix(text, "#"):
			content := strings.TrimPrefix(text, "#")
			if len(commentBuf) == 0 {
				commentLine = ll.line
			}
			commentBuf = append(commentBuf, content)

		case strings.HasPrefix(text, "+"):
			flushComment()
			if curRec == nil || curRec.lastField == nil {
				return nil, p.errf(ll.line, 1, "continuation line outside a field")
			}
			rest := strings.TrimPrefix(text, "+")
			rest = strings.TrimPrefix(rest, " ")
			curRec.lastField.SetValue(curRec.lastField.Value() + "\n" + rest)

		case text[0] == ' ' || text[0] == '\t':
			return nil, p.errf(ll.line, 1, "line starts with whitespace outside a continuation")

		default:
			flushComment()
			colon := strings.IndexByte(text, ':')
			if colon < 0 {
				return nil, p.errf(ll.line, 1, "field name %q has no ':'", text)
			}
			name := text[:colon]
			if name == "" {
				return nil, p.errf(ll.line, 1, "empty field name")
			}
			if !recname.IsValid(name) {
				return nil, p.errf(ll.line, 1, "%q is not a valid field name", name)
			}
			rest := text[colon+1:]
			if looksLikeStuckTogetherFieldName(rest) {
				return nil, p.errf(ll.line, colon+1, "two colons in a single field-name line")
			}
			value := strings.TrimPrefix(rest, " ")
			if curRec == nil {
				curRec = newRecordBuilder()
			}
			f := &Field{name: name, value: value, line: ll.line, col: 1}
			if err := curRec.rec.append(f); err != nil {
				return nil, err
			}
			curRec.lastField = f
			curRec.hasContent = true
		}
	}

	if err := finishRecord(); err != nil {
		return nil, err
	}
	if curRSet != nil {
		if err := p.finishRSet(db, curRSet); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// finishRSet validates and appends the accumulated record-set to db. A
// record-set whose body records carry zero fields in total (i.e. it is
// entirely comments) is rejected, per spec.md section 4.5's "a record
// set that contains only comments is not valid" rule.
func (p *parser) finishRSet(db *Database, b *rsetBuilder) error {
	if len(b.rs.All()) > 0 && b.rs.fieldCount() == 0 {
		return p.errf(0, 0, "record set %q contains only comments", b.rs.RecName())
	}
	return db.AppendRecordSet(b.rs)
}
