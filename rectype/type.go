// Package rectype implements the type-descriptor parser and value
// validator described in spec.md section 4.7: a small family of domain
// types (int, bool, range, real, size, line, regexp, date, enum, field,
// email), compiled once from a textual descriptor and then used to
// validate field values.
package rectype

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-recdb/recdb/recname"
)

// Kind identifies which of the fixed family of domain types a Type is.
type Kind int

const (
	Int Kind = iota
	Bool
	Range
	Real
	Size
	Line
	Regexp
	Date
	Enum
	Field
	Email
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Range:
		return "range"
	case Real:
		return "real"
	case Size:
		return "size"
	case Line:
		return "line"
	case Regexp:
		return "regexp"
	case Date:
		return "date"
	case Enum:
		return "enum"
	case Field:
		return "field"
	case Email:
		return "email"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type is an immutable, compiled type descriptor.
type Type struct {
	kind Kind
	name string // user-visible name, if any (e.g. the %typedef alias)

	// Range
	min, max int

	// Size
	sizeMax int

	// Regexp
	pattern string
	re      *regexp.Regexp

	// Enum
	enumNames []string

	// Bool case-insensitive token set is fixed, no params needed.
}

// Kind returns t's kind.
func (t *Type) Kind() Kind { return t.kind }

// Name returns t's user-visible name, or "" if it has none.
func (t *Type) Name() string { return t.name }

// WithName returns a copy of t carrying the given user-visible name
// (used when a %typedef aliases a descriptor under a new name).
func (t *Type) WithName(name string) *Type {
	cp := *t
	cp.name = name
	return &cp
}

// Range bounds, valid only when Kind() == Range.
func (t *Type) RangeBounds() (min, max int) { return t.min, t.max }

// SizeMax is the maximum byte length, valid only when Kind() == Size.
func (t *Type) SizeMax() int { return t.sizeMax }

// Pattern is the regex source, valid only when Kind() == Regexp.
func (t *Type) Pattern() string { return t.pattern }

// EnumNames is the ordered list of allowed names, valid only when
// Kind() == Enum.
func (t *Type) EnumNames() []string {
	out := make([]string, len(t.enumNames))
	copy(out, t.enumNames)
	return out
}

// Equal reports whether a and b are structurally the same type: same kind
// and same parameters (same ordered enum names, same range bounds, same
// size bound, same regex source). Names are not part of equality — two
// differently-named aliases for "int" are still equal as int.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Range:
		return a.min == b.min && a.max == b.max
	case Size:
		return a.sizeMax == b.sizeMax
	case Regexp:
		return a.pattern == b.pattern
	case Enum:
		if len(a.enumNames) != len(b.enumNames) {
			return false
		}
		for i := range a.enumNames {
			if a.enumNames[i] != b.enumNames[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Parse compiles a textual type descriptor (e.g. "range 1 10", "enum A B C",
// "regexp /^[a-z]+$/") into a Type. The parser is whitespace-insensitive
// (including embedded newlines) and rejects trailing garbage after the
// recognized form.
func Parse(descr string) (*Type, error) {
	fields := strings.Fields(descr)
	if len(fields) == 0 {
		return nil, fmt.Errorf("rectype: empty type descriptor")
	}
	kw := strings.ToLower(fields[0])
	rest := fields[1:]

	switch kw {
	case "int":
		return requireNoParams(rest, &Type{kind: Int})
	case "bool":
		return requireNoParams(rest, &Type{kind: Bool})
	case "real":
		return requireNoParams(rest, &Type{kind: Real})
	case "line":
		return requireNoParams(rest, &Type{kind: Line})
	case "date":
		return requireNoParams(rest, &Type{kind: Date})
	case "field":
		return requireNoParams(rest, &Type{kind: Field})
	case "email":
		return requireNoParams(rest, &Type{kind: Email})
	case "range":
		return parseRange(rest)
	case "size":
		return parseSize(rest)
	case "regexp":
		return parseRegexp(descr, kw)
	case "enum":
		return parseEnum(rest)
	default:
		return nil, fmt.Errorf("rectype: unknown type descriptor keyword %q", fields[0])
	}
}

func requireNoParams(rest []string, t *Type) (*Type, error) {
	if len(rest) != 0 {
		return nil, fmt.Errorf("rectype: %s type takes no parameters, got %q", t.kind, strings.Join(rest, " "))
	}
	return t, nil
}

func parseRange(rest []string) (*Type, error) {
	var min, max int
	var err error
	switch len(rest) {
	case 1:
		min = 0
		max, err = strconv.Atoi(rest[0])
	case 2:
		min, err = strconv.Atoi(rest[0])
		if err == nil {
			max, err = strconv.Atoi(rest[1])
		}
	default:
		return nil, fmt.Errorf("rectype: range expects \"[min] max\", got %d arguments", len(rest))
	}
	if err != nil {
		return nil, fmt.Errorf("rectype: range: %w", err)
	}
	if min > max {
		return nil, fmt.Errorf("rectype: range: min %d > max %d", min, max)
	}
	return &Type{kind: Range, min: min, max: max}, nil
}

func parseSize(rest []string) (*Type, error) {
	if len(rest) != 1 {
		return nil, fmt.Errorf("rectype: size expects exactly one parameter, got %d", len(rest))
	}
	n, err := strconv.Atoi(rest[0])
	if err != nil || n < 0 {
		return nil, fmt.Errorf("rectype: size: invalid bound %q", rest[0])
	}
	return &Type{kind: Size, sizeMax: n}, nil
}

// parseRegexp re-scans the original descriptor text (rather than
// whitespace-split fields) because the delimiter can be any non-alnum
// printable character and the pattern itself may contain spaces.
func parseRegexp(descr, kw string) (*Type, error) {
	trimmed := strings.TrimSpace(descr)
	rest := strings.TrimSpace(trimmed[len(kw):])
	if len(rest) < 2 {
		return nil, fmt.Errorf("rectype: regexp: missing /pattern/")
	}
	delim := rune(rest[0])
	if isAlnum(delim) {
		return nil, fmt.Errorf("rectype: regexp: delimiter must not be alphanumeric")
	}
	closeIdx := strings.LastIndexByte(rest[1:], byte(delim))
	if closeIdx < 0 {
		return nil, fmt.Errorf("rectype: regexp: unterminated pattern")
	}
	pattern := rest[1 : 1+closeIdx]
	trailing := strings.TrimSpace(rest[1+closeIdx+1:])
	if trailing != "" {
		return nil, fmt.Errorf("rectype: regexp: trailing garbage %q", trailing)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("rectype: regexp: %w", err)
	}
	return &Type{kind: Regexp, pattern: pattern, re: re}, nil
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func parseEnum(rest []string) (*Type, error) {
	if len(rest) == 0 {
		return nil, fmt.Errorf("rectype: enum requires at least one name")
	}
	names := make([]string, 0, len(rest))
	for _, tok := range rest {
		if strings.HasPrefix(tok, "(") {
			// an inline "(comment)" token following a name; skip it.
			continue
		}
		names = append(names, tok)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("rectype: enum requires at least one name")
	}
	return &Type{kind: Enum, enumNames: names}, nil
}

var boolTokens = map[string]bool{
	"0": false, "1": true,
	"no": false, "yes": true,
	"false": false, "true": true,
}

var intRe = regexp.MustCompile(`^[+-]?(0[xX][0-9A-Fa-f]+|[0-9]+)$`)
var realRe = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]*)?$|^[+-]?\.[0-9]+$`)
var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// dateLayouts are the formats Validate accepts for a Date type: at minimum
// ISO-8601 and RFC-822, per spec.md section 4.7.
var dateLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC822,
	time.RFC822Z,
	time.RFC1123,
	time.RFC1123Z,
}

// Validate reports whether value is legal for t, returning a descriptive
// error (spec.md section 7's Validation category) when it is not.
func (t *Type) Validate(value string) error {
	switch t.kind {
	case Int:
		if !intRe.MatchString(value) {
			return fmt.Errorf("rectype: %q is not a valid int", value)
		}
		return nil
	case Bool:
		if _, ok := boolTokens[strings.ToLower(value)]; !ok {
			return fmt.Errorf("rectype: %q is not a valid bool", value)
		}
		return nil
	case Range:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("rectype: %q is not an integer", value)
		}
		if n < t.min || n > t.max {
			return fmt.Errorf("rectype: %d is out of range [%d,%d]", n, t.min, t.max)
		}
		return nil
	case Real:
		if !realRe.MatchString(value) {
			return fmt.Errorf("rectype: %q is not a valid real", value)
		}
		return nil
	case Size:
		stripped := strings.TrimSuffix(value, "\n")
		if len(stripped) > t.sizeMax {
			return fmt.Errorf("rectype: value length %d exceeds size %d", len(stripped), t.sizeMax)
		}
		return nil
	case Line:
		if strings.ContainsRune(value, '\n') {
			return fmt.Errorf("rectype: line value must not contain a newline")
		}
		return nil
	case Regexp:
		if !t.re.MatchString(value) {
			return fmt.Errorf("rectype: %q does not match /%s/", value, t.pattern)
		}
		return nil
	case Date:
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, value); err == nil {
				return nil
			}
		}
		return fmt.Errorf("rectype: %q is not a recognized date", value)
	case Enum:
		lower := strings.ToLower(value)
		for _, name := range t.enumNames {
			if strings.ToLower(name) == lower {
				return nil
			}
		}
		return fmt.Errorf("rectype: %q is not one of %v", value, t.enumNames)
	case Field:
		if !recname.IsValid(value) {
			return fmt.Errorf("rectype: %q is not a valid field name", value)
		}
		return nil
	case Email:
		if !emailRe.MatchString(value) {
			return fmt.Errorf("rectype: %q is not a valid email address", value)
		}
		return nil
	default:
		return fmt.Errorf("rectype: unknown kind %v", t.kind)
	}
}
