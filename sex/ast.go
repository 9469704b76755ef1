// Package sex implements the selection-expression mini-language
// (spec.md section 4.8): a small C-like infix expression language with a
// lexer, recursive-descent compiler, and an evaluator that filters a
// record by name, count, arithmetic, comparison, regex, and date
// operators.
package sex

// Node is one AST node. Each concrete type implements it with an
// exhaustive type switch in the evaluator, mirroring
// original_source/CVE-2019-6455/src/rec-sex-ast.h's closed node-type
// enum as a Go sum type instead of a tagged union.
type Node interface {
	isNode()
}

// IntLit is an integer literal.
type IntLit struct{ Value int64 }

// RealLit is a floating-point literal.
type RealLit struct{ Value float64 }

// StrLit is a string literal.
type StrLit struct{ Value string }

// NameRef is a field-name reference, optionally subscripted ("NAME[i]")
// and optionally "fixed" to a literal value regardless of record
// content (spec.md section 4.8, "Fixing").
type NameRef struct {
	Name     string
	HasIndex bool
	Index    int
	fixed    *string
}

// CountRef is "#NAME": the number of fields named Name in the record.
type CountRef struct{ Name string }

// UnaryOp is a prefix operator: "!" or "-".
type UnaryOp struct {
	Op string
	X  Node
}

// BinOp is an infix operator: arithmetic, relational, ~, <<, >>, @, =>,
// &&, ||.
type BinOp struct {
	Op   string
	X, Y Node
}

// CondOp is the ternary "cond ? then : else".
type CondOp struct {
	Cond, Then, Else Node
}

func (*IntLit) isNode()   {}
func (*RealLit) isNode()  {}
func (*StrLit) isNode()   {}
func (*NameRef) isNode()  {}
func (*CountRef) isNode() {}
func (*UnaryOp) isNode()  {}
func (*BinOp) isNode()    {}
func (*CondOp) isNode()   {}

// Expr is a compiled selection expression, ready for repeated evaluation
// against different records.
type Expr struct {
	root            Node
	caseInsensitive bool
}

// Root returns the expression's top-level AST node.
func (e *Expr) Root() Node { return e.root }

// Fix pre-binds every NameRef matching name to literal, so resolution
// returns that string regardless of record content (spec.md section
// 4.8's "Fixing", used to evaluate an expression against external
// inputs instead of a record).
func (e *Expr) Fix(name, literal string) {
	walk(e.root, func(n Node) {
		if ref, ok := n.(*NameRef); ok && ref.Name == name {
			v := literal
			ref.fixed = &v
		}
	})
}

func walk(n Node, f func(Node)) {
	if n == nil {
		return
	}
	f(n)
	switch v := n.(type) {
	case *UnaryOp:
		walk(v.X, f)
	case *BinOp:
		walk(v.X, f)
		walk(v.Y, f)
	case *CondOp:
		walk(v.Cond, f)
		walk(v.Then, f)
		walk(v.Else, f)
	}
}
