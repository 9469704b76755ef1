// Package comment implements the opaque text blob attached to "#"-prefixed
// lines in a record database (spec.md section 4.3).
package comment

// Comment is an owned, possibly multi-line, text blob. The zero value is an
// empty comment.
type Comment struct {
	text string
}

// New returns a Comment holding text verbatim (embedded newlines allowed).
func New(text string) *Comment {
	return &Comment{text: text}
}

// Text returns the comment's text.
func (c *Comment) Text() string {
	if c == nil {
		return ""
	}
	return c.text
}

// SetText replaces the comment's text.
func (c *Comment) SetText(text string) {
	c.text = text
}

// Dup returns a deep (here, trivially disjoint) copy of c.
func (c *Comment) Dup() *Comment {
	if c == nil {
		return nil
	}
	return &Comment{text: c.text}
}

// Equal reports whether a and b hold byte-identical text. Two nil Comments
// are equal; a nil and non-nil Comment are not.
func Equal(a, b *Comment) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.text == b.text
}
