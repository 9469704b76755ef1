package sex

import (
	"regexp"
	"strings"
	"time"
)

// Record is the minimal view of a host record a selection expression
// needs: every value of the fields named name, in record order. It is
// satisfied structurally by recfmt.Record's GetAll method, so callers
// pass a *recfmt.Record directly without either package importing the
// other.
type Record interface {
	GetAll(name string) []string
}

// Eval evaluates expr against rec, returning a typed Value or an
// *EvalError for a runtime fault such as division or modulo by zero or
// an invalid regular expression (spec.md section 4.8).
func Eval(expr *Expr, rec Record) (Value, error) {
	ev := &evaluator{rec: rec, ci: expr.caseInsensitive}
	return ev.eval(expr.root)
}

// Matched evaluates expr against rec and interprets the result as a
// boolean filter decision, per Value.Truthy.
func Matched(expr *Expr, rec Record) (bool, error) {
	v, err := Eval(expr, rec)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

type evaluator struct {
	rec Record
	ci  bool
}

func (ev *evaluator) eval(n Node) (Value, error) {
	switch v := n.(type) {
	case *IntLit:
		return IntValue(v.Value), nil
	case *RealLit:
		return RealValue(v.Value), nil
	case *StrLit:
		return StringValue(v.Value), nil
	case *NameRef:
		return ev.evalName(v), nil
	case *CountRef:
		return IntValue(int64(len(ev.rec.GetAll(v.Name)))), nil
	case *UnaryOp:
		return ev.evalUnary(v)
	case *BinOp:
		return ev.evalBin(v)
	case *CondOp:
		return ev.evalCond(v)
	default:
		return Value{}, &EvalError{Sub: "unknown AST node"}
	}
}

func (ev *evaluator) evalName(ref *NameRef) Value {
	if ref.fixed != nil {
		return StringValue(*ref.fixed)
	}
	vals := ev.rec.GetAll(ref.Name)
	if ref.HasIndex {
		if ref.Index < 0 || ref.Index >= len(vals) {
			return NoValue()
		}
		return coerceNumeric(StringValue(vals[ref.Index]))
	}
	if len(vals) == 0 {
		return NoValue()
	}
	return coerceNumeric(StringValue(vals[0]))
}

func (ev *evaluator) evalUnary(u *UnaryOp) (Value, error) {
	x, err := ev.eval(u.X)
	if err != nil {
		return Value{}, err
	}
	switch u.Op {
	case "!":
		return BoolValue(!x.Truthy()), nil
	case "-":
		x = coerceNumeric(x)
		switch x.kind {
		case IntKind:
			return IntValue(-x.i), nil
		case RealKind:
			return RealValue(-x.f), nil
		default:
			return Value{}, &EvalError{Sub: "unary '-' on non-numeric operand"}
		}
	}
	return Value{}, &EvalError{Sub: "unknown unary operator"}
}

// evalBin evaluates a binary operator. For &&, || and => the right
// operand is not evaluated when the left operand already determines the
// result (spec.md section 4.8).
func (ev *evaluator) evalBin(b *BinOp) (Value, error) {
	switch b.Op {
	case "&&":
		x, err := ev.eval(b.X)
		if err != nil {
			return Value{}, err
		}
		if !x.Truthy() {
			return BoolValue(false), nil
		}
		y, err := ev.eval(b.Y)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(y.Truthy()), nil
	case "||":
		x, err := ev.eval(b.X)
		if err != nil {
			return Value{}, err
		}
		if x.Truthy() {
			return BoolValue(true), nil
		}
		y, err := ev.eval(b.Y)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(y.Truthy()), nil
	case "=>":
		x, err := ev.eval(b.X)
		if err != nil {
			return Value{}, err
		}
		if !x.Truthy() {
			return BoolValue(true), nil
		}
		y, err := ev.eval(b.Y)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(y.Truthy()), nil
	}

	x, err := ev.eval(b.X)
	if err != nil {
		return Value{}, err
	}
	y, err := ev.eval(b.Y)
	if err != nil {
		return Value{}, err
	}
	x, y = coerceNumeric(x), coerceNumeric(y)

	switch b.Op {
	case "+", "-", "*", "/", "%":
		if b.Op == "+" && x.kind == StringKind && y.kind == StringKind {
			return StringValue(x.s + y.s), nil
		}
		if !x.isNumeric() || !y.isNumeric() {
			return Value{}, &EvalError{Sub: "arithmetic on non-numeric operand"}
		}
		return numericBinOp(b.Op, x, y)
	case "=", "!=", "<", ">", "<=", ">=":
		return ev.evalCompare(b.Op, x, y), nil
	case "~":
		return ev.evalMatch(x, y)
	case "<<", ">>", "@":
		return ev.evalDate(b.Op, x, y)
	}
	return Value{}, &EvalError{Sub: "unknown binary operator"}
}

func (ev *evaluator) evalCompare(op string, x, y Value) Value {
	if ev.ci && x.kind == StringKind && y.kind == StringKind {
		return compareValues(op, StringValue(strings.ToLower(x.s)), StringValue(strings.ToLower(y.s)))
	}
	return compareValues(op, x, y)
}

func (ev *evaluator) evalMatch(x, y Value) (Value, error) {
	pattern := y.String()
	if ev.ci {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Value{}, &EvalError{Sub: "invalid regular expression: " + err.Error()}
	}
	return BoolValue(re.MatchString(x.String())), nil
}

// dateLayouts overlaps with rectype's DATE layouts but is a separate
// list: it also accepts a space-separated date-time and lacks the zoned
// ISO-8601 form. It is kept independent since this evaluator parses
// dynamic operand strings rather than validating a wire descriptor.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC822,
	time.RFC822Z,
	time.RFC1123,
	time.RFC1123Z,
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (ev *evaluator) evalDate(op string, x, y Value) (Value, error) {
	xt, ok1 := parseDate(x.String())
	yt, ok2 := parseDate(y.String())
	if !ok1 || !ok2 {
		// Non-parseable date operands: the surrounding sub-expression
		// evaluates to false, not an error (spec.md section 4.8).
		return BoolValue(false), nil
	}
	switch op {
	case "<<":
		return BoolValue(xt.Before(yt)), nil
	case ">>":
		return BoolValue(xt.After(yt)), nil
	case "@":
		return BoolValue(xt.Equal(yt)), nil
	}
	return Value{}, &EvalError{Sub: "unknown date operator"}
}

func (ev *evaluator) evalCond(c *CondOp) (Value, error) {
	cond, err := ev.eval(c.Cond)
	if err != nil {
		return Value{}, err
	}
	if cond.Truthy() {
		return ev.eval(c.Then)
	}
	return ev.eval(c.Else)
}
