package sex

import "fmt"

// ParseError reports a lexical or grammatical problem in a selection
// expression's source text (spec.md section 7).
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sex: parse error at offset %d: %s", e.Pos, e.Msg)
}

// EvalError reports a runtime fault while evaluating a compiled
// expression: division/modulo by zero, an unparsable regex, or a
// strict type mismatch (spec.md section 7). It is distinct from a
// "false" (non-matching) result.
type EvalError struct {
	Sub string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("sex: evaluation error: %s", e.Sub)
}
