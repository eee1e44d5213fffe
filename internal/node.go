// Package internal holds the document tree shared by every stage of the
// pipeline: the markup parser (C2) produces it, the script/style passes
// annotate it in place, and the compiler driver (C7) walks it to build the
// Figure/Spot IR. The shape follows the teacher's internal.Node — a single
// struct with a NodeType discriminant and explicit sibling/child pointers,
// rather than a Go sum type, so that in-place rewrites (e.g. NormalizeSet-
// style passes) stay cheap.
package internal

import (
	"github.com/kodla-dev/renit-sub000/internal/loc"
	a "golang.org/x/net/html/atom"
)

type NodeType uint32

const (
	DocumentNode NodeType = iota
	FragmentNode
	ElementNode
	TextNode
	CommentNode
	ScriptNode
	StyleNode
	ComponentNode
	SlotNode
	SlotContentNode
	IfNode
	ElseIfNode
	ElseNode
	ForNode
)

func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "Document"
	case FragmentNode:
		return "Fragment"
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case ScriptNode:
		return "Script"
	case StyleNode:
		return "Style"
	case ComponentNode:
		return "Component"
	case SlotNode:
		return "Slot"
	case SlotContentNode:
		return "SlotContent"
	case IfNode:
		return "If"
	case ElseIfNode:
		return "ElseIf"
	case ElseNode:
		return "Else"
	case ForNode:
		return "For"
	}
	return "Unknown"
}

// AttributeKind distinguishes the prefix-driven attribute families from
// §4.2: ':' bind, '@' event, '|' modifier, '#' ref, '*' action, plain.
type AttributeKind uint32

const (
	PlainAttribute AttributeKind = iota
	BindAttribute
	EventAttribute
	ModifierAttribute
	RefAttribute
	ActionAttribute
	LinkAttribute
	TranslateAttribute
)

// ValuePieceKind resolves Open Question 3 from SPEC_FULL.md: one union
// covers both the {StringAttribute,CurlyBracesAttribute} and
// {StringText,BracesText} discriminant pairs the original parser kept
// separate.
type ValuePieceKind uint32

const (
	StringPiece ValuePieceKind = iota
	ExpressionPiece
)

// DirectiveTag is the leading marker recognized inside a `{…}` interpolation:
// `@html `, `>` (static), `=` (literal), `*` (dynamic). See §4.2.
type DirectiveTag uint32

const (
	NoDirective DirectiveTag = iota
	HTMLDirective
	StaticDirective
	LiteralDirective
	DynamicDirective
)

// ValuePiece is one segment of an attribute or text value that may
// alternate between literal string runs and `{…}` expression runs.
type ValuePiece struct {
	Kind       ValuePieceKind
	Data       string
	Directive  DirectiveTag
	Loc        loc.Loc
}

// Suffix is a modifier attached after an attribute name, e.g. `@click.prevent`.
type Suffix struct {
	Prefix string
	Name   string
}

type Attribute struct {
	Kind    AttributeKind
	Prefix  byte
	Key     string
	KeyLoc  loc.Loc
	Val     string // raw, un-split value text
	ValLoc  loc.Loc
	Pieces  []ValuePiece
	Suffix  []Suffix
	Static  bool // true when every piece is a literal string
}

// Node is one element of the document tree. Depending on Type, a subset of
// the fields below are meaningful; see the field comments.
type Node struct {
	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node

	Type     NodeType
	DataAtom a.Atom
	Data     string // tag/attribute name for elements; raw text for Text/Comment/Script/Style
	Attr     []Attribute
	Loc      []loc.Loc

	// ElementNode / ComponentNode
	VoidElement bool

	// ForNode
	ForValue   string
	ForAsName  string
	ForComputed []string
	ForIndex   string
	ForKey     string

	// IfNode / ElseIfNode
	Condition string

	// SlotNode / SlotContentNode / ComponentNode
	SlotName string

	// TextNode: true when this text node is a `{…}` expression interpolation
	// rather than literal markup text.
	Expression bool
	Directive  DirectiveTag

	// Reference is the id assigned by the compiler driver when this node
	// needs a live DOM handle; HasReference distinguishes id 0 from unset.
	Reference    int
	HasReference bool
}

func (n *Node) AppendChild(c *Node) {
	if c.Parent != nil || c.PrevSibling != nil || c.NextSibling != nil {
		panic("node already has parent/siblings")
	}
	last := n.LastChild
	if last != nil {
		last.NextSibling = c
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
	c.Parent = n
}

func (n *Node) InsertBefore(newChild, oldChild *Node) {
	if oldChild == nil {
		n.AppendChild(newChild)
		return
	}
	prev := oldChild.PrevSibling
	newChild.Parent = n
	newChild.PrevSibling = prev
	newChild.NextSibling = oldChild
	if prev != nil {
		prev.NextSibling = newChild
	} else {
		n.FirstChild = newChild
	}
	oldChild.PrevSibling = newChild
}

func (n *Node) RemoveChild(c *Node) {
	if c.Parent != n {
		panic("RemoveChild: node is not a child of n")
	}
	if n.FirstChild == c {
		n.FirstChild = c.NextSibling
	}
	if c.NextSibling != nil {
		c.NextSibling.PrevSibling = c.PrevSibling
	}
	if n.LastChild == c {
		n.LastChild = c.PrevSibling
	}
	if c.PrevSibling != nil {
		c.PrevSibling.NextSibling = c.NextSibling
	}
	c.Parent = nil
	c.PrevSibling = nil
	c.NextSibling = nil
}

// Closest walks up from n (inclusive) and returns the first ancestor for
// which match returns true, or nil.
func (n *Node) Closest(match func(*Node) bool) *Node {
	for p := n; p != nil; p = p.Parent {
		if match(p) {
			return p
		}
	}
	return nil
}

func (n *Node) HasAttr(key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

func (n *Node) Attribute(key string) (Attribute, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr, true
		}
	}
	return Attribute{}, false
}

func (n *Node) RemoveAttribute(key string) {
	out := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Key != key {
			out = append(out, attr)
		}
	}
	n.Attr = out
}
