// Package script implements C3: a small recursive-descent parser over
// embedded JavaScript-like expressions, plus the dependency/labeled-
// statement analysis §4.3 describes. No JS AST library is vendored in
// the example pack available to this compiler (the teacher's own
// ts_parser is an external cgo/wasm black box per spec.md §6), so this
// package forks-and-extends the same way the teacher forks-and-extends
// the HTML tokenizer: a byte scanner feeding a purpose-built expression
// tree that carries exactly the node kinds §3/§4.3 name.
package script

// Kind discriminates an Expr node.
type Kind int

const (
	Identifier Kind = iota
	MemberExpr
	CallExpr
	ArrowFunction
	FunctionDecl
	AssignmentExpr
	SequenceExpr
	BinaryExpr
	ConditionalExpr
	LabeledStatement
	Literal
	Other
)

// Expr is one node of the lightweight expression tree. Start/End are byte
// offsets into the original script source (relative to the analyzed
// snippet), letting PrepareScript rewrite source text by interval
// replacement without re-parsing.
type Expr struct {
	Kind  Kind
	Start int
	End   int

	// Identifier / MemberExpr: the flattened member path, e.g. "a.b.c" or
	// "a[b]". Also used for raw text capture on Other/Literal nodes.
	Name string

	// MemberExpr
	Object   *Expr
	Property *Expr
	Computed bool // true for a[b], false for a.b — the "isComputed" marker
	// Open Question 4 calls for; set directly by this parser rather than
	// an external AST annotation pass.

	// CallExpr
	Callee    *Expr
	Arguments []*Expr

	// ArrowFunction / FunctionDecl
	Params []*Expr
	Body   *Expr
	// FunctionDecl
	FuncName string

	// AssignmentExpr
	Left, Right *Expr
	Operator    string

	// SequenceExpr
	Expressions []*Expr

	// BinaryExpr / ConditionalExpr
	Test, Consequent, Alternate *Expr

	// LabeledStatement
	Label string
}

// FlattenMemberPath renders a MemberExpr/Identifier chain to its canonical
// dotted/bracketed string, left to right, as §3 requires.
func FlattenMemberPath(e *Expr) string {
	switch e.Kind {
	case Identifier:
		return e.Name
	case MemberExpr:
		base := FlattenMemberPath(e.Object)
		if e.Computed {
			prop := FlattenMemberPath(e.Property)
			return base + "[" + prop + "]"
		}
		return base + "." + FlattenMemberPath(e.Property)
	default:
		return e.Name
	}
}
