// Package recname validates and normalizes record-database field names
// against the grammar in spec.md section 4.2:
//
//	[%][A-Za-z][A-Za-z0-9_-]*(::?[A-Za-z][A-Za-z0-9_-]*)*
package recname

import "regexp"

// grammar matches a single legal field name, including the optional leading
// "%" that marks a special/descriptor name and the "::"-or-":"-separated
// compound-name suffixes.
var grammar = regexp.MustCompile(`^%?[A-Za-z][A-Za-z0-9_-]*(:{1,2}[A-Za-z][A-Za-z0-9_-]*)*$`)

// illegalByte matches any byte that Normalize must replace with "_".
var illegalByte = regexp.MustCompile(`[^A-Za-z0-9_%-]`)

// IsValid reports whether s is a legal field name. A bare "%" (with no
// following letter) is also accepted: it is the special marker name used
// on its own by a handful of descriptor conventions, per spec.md section 8
// test 11.
func IsValid(s string) bool {
	if s == "%" {
		return true
	}
	return grammar.MatchString(s)
}

// Normalize copies s, replacing every character outside
// [A-Za-z0-9_%-] with "_", then re-validates the result. It returns
// ("", false) if the normalized string is still not a legal field name
// (e.g. it starts with a digit, or has a "%" anywhere but its first
// byte) — normalization never truncates, it only substitutes bytes.
func Normalize(s string) (string, bool) {
	out := illegalByte.ReplaceAllString(s, "_")
	if !IsValid(out) {
		return "", false
	}
	return out, true
}

// EqualOption configures Equal's notion of field-name equality.
type EqualOption func(*equalConfig)

type equalConfig struct {
	trimTrailingColon bool
}

// TrimTrailingColon opts Equal into treating "foo" and "foo:" as equal.
// spec.md section 9, open question 1, leaves this as an explicit
// configuration point rather than guessing: the upstream source carries a
// TODO proposing this behavior but never implements it, so recdb exposes it
// as an opt-in rather than changing the default.
func TrimTrailingColon(c *equalConfig) {
	c.trimTrailingColon = true
}

// Equal reports whether a and b are the same field name. The default is a
// byte-wise comparison (the documented current behavior); pass
// TrimTrailingColon to opt into stripping a trailing ":" from both sides
// before comparing.
func Equal(a, b string, opts ...EqualOption) bool {
	cfg := equalConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.trimTrailingColon {
		a = trimOneTrailingColon(a)
		b = trimOneTrailingColon(b)
	}
	return a == b
}

func trimOneTrailingColon(s string) string {
	if len(s) > 0 && s[len(s)-1] == ':' {
		return s[:len(s)-1]
	}
	return s
}
