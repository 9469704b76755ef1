// Package fex implements the field-expression mini-language (spec.md
// section 6): a compact way for a caller to name a subset of a record's
// fields, optionally with per-field subscripts and rewrite-to names.
package fex

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-recdb/recdb/recname"
)

// Mode selects which of the three textual fex dialects Parse accepts.
type Mode int

const (
	// Simple accepts whitespace- or tab-separated field names.
	Simple Mode = iota
	// CSV accepts comma-separated field names.
	CSV
	// Subscripts accepts CSV plus optional "[i]"/"[i-j]" subscripts and an
	// optional ":new_name" rewrite, e.g. "foo[0],bar[1-2],baz:qux".
	Subscripts
)

// Elem is one element of a parsed Fex: a field name plus optional index
// bounds and rewrite-to name.
type Elem struct {
	Name      string
	Min, Max  int // -1 if not specified
	RewriteTo string // "" if not specified
}

// Fex is a parsed field expression: an ordered list of Elem.
type Fex struct {
	elems []Elem
}

// Len returns the number of elements.
func (f *Fex) Len() int { return len(f.elems) }

// At returns the i-th element.
func (f *Fex) At(i int) Elem { return f.elems[i] }

// Elems returns a copy of the parsed elements, in parse order.
func (f *Fex) Elems() []Elem {
	out := make([]Elem, len(f.elems))
	copy(out, f.elems)
	return out
}

// Parse parses s under the given mode.
func Parse(s string, mode Mode) (*Fex, error) {
	var tokens []string
	switch mode {
	case Simple:
		tokens = strings.Fields(s)
	case CSV, Subscripts:
		for _, tok := range strings.Split(s, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			tokens = append(tokens, tok)
		}
	default:
		return nil, fmt.Errorf("fex: unknown mode %d", mode)
	}

	fx := &Fex{}
	for _, tok := range tokens {
		e, err := parseElem(tok, mode)
		if err != nil {
			return nil, err
		}
		fx.elems = append(fx.elems, e)
	}
	if err := Check(fx); err != nil {
		return nil, err
	}
	return fx, nil
}

func parseElem(tok string, mode Mode) (Elem, error) {
	e := Elem{Min: -1, Max: -1}

	name := tok
	if mode == Subscripts {
		if idx := strings.LastIndexByte(name, ':'); idx >= 0 && !strings.Contains(name[idx:], "]") {
			e.RewriteTo = name[idx+1:]
			name = name[:idx]
		}
		if open := strings.IndexByte(name, '['); open >= 0 {
			if !strings.HasSuffix(name, "]") {
				return Elem{}, fmt.Errorf("fex: %q: unterminated subscript", tok)
			}
			sub := name[open+1 : len(name)-1]
			name = name[:open]
			min, max, err := parseSubscript(sub)
			if err != nil {
				return Elem{}, fmt.Errorf("fex: %q: %w", tok, err)
			}
			e.Min, e.Max = min, max
		}
	}

	if !recname.IsValid(name) {
		return Elem{}, fmt.Errorf("fex: %q: not a valid field name", name)
	}
	e.Name = name
	return e, nil
}

func parseSubscript(s string) (min, max int, err error) {
	if dash := strings.IndexByte(s, '-'); dash > 0 {
		min, err = strconv.Atoi(s[:dash])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid subscript range %q", s)
		}
		max, err = strconv.Atoi(s[dash+1:])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid subscript range %q", s)
		}
		return min, max, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid subscript %q", s)
	}
	return n, n, nil
}

// Check validates a parsed Fex beyond individual-element syntax: every
// subscript range must have min <= max. Grounded on the rec-fex-check
// torture test in original_source/CVE-2019-6455/torture/rec-fex.
func Check(f *Fex) error {
	for _, e := range f.elems {
		if e.Min >= 0 && e.Max >= 0 && e.Min > e.Max {
			return fmt.Errorf("fex: %s: subscript min %d > max %d", e.Name, e.Min, e.Max)
		}
	}
	return nil
}

// Sort returns a new Fex with elements ordered by field name (stable: ties
// keep their original relative order), per the rec-fex-sort torture test.
func Sort(f *Fex) *Fex {
	elems := f.Elems()
	sort.SliceStable(elems, func(i, j int) bool {
		return elems[i].Name < elems[j].Name
	})
	return &Fex{elems: elems}
}

// String renders f back to text in the given mode. Subscripts and rewrite
// names are only emitted when mode == Subscripts.
func String(f *Fex, mode Mode) string {
	names := make([]string, len(f.elems))
	for i, e := range f.elems {
		if mode != Subscripts {
			names[i] = e.Name
			continue
		}
		s := e.Name
		if e.Min >= 0 {
			if e.Max > e.Min {
				s += fmt.Sprintf("[%d-%d]", e.Min, e.Max)
			} else {
				s += fmt.Sprintf("[%d]", e.Min)
			}
		}
		if e.RewriteTo != "" {
			s += ":" + e.RewriteTo
		}
		names[i] = s
	}
	switch mode {
	case CSV, Subscripts:
		return strings.Join(names, ",")
	default:
		return strings.Join(names, " ")
	}
}
