package ir

import (
	"fmt"
	"strings"

	"github.com/kodla-dev/renit-sub000/internal/script"
)

// AttributeSpot is a single dynamic attribute (§4.6). ValueExpr is the
// already-lowered runtime expression (either the bare `{x}` payload when
// that expression is the attribute's only piece, or a pre-built template
// literal when it is assembled from several static/dynamic pieces).
type AttributeSpot struct {
	ParentRef    int
	Name         string
	ValueExpr    string
	Dependencies []string
	OnlyOne      bool
	IsText       bool // true for a reactive text-node interpolation rather than an attribute
}

func (s *AttributeSpot) Kind() SpotKind { return KindAttribute }

func (s *AttributeSpot) Generate(c *Component) string {
	if s.IsText {
		if c.IsSSR() {
			return fmt.Sprintf("$.escape(%s)", s.ValueExpr)
		}
		return fmt.Sprintf("$.text($%d, () => (%s))", s.ParentRef, s.ValueExpr)
	}
	if c.IsSSR() {
		return fmt.Sprintf("$.ssrAttribute(%q, %s)", s.Name, s.ValueExpr)
	}
	if c.DependsOnUpdated(s.Dependencies) {
		return fmt.Sprintf("$.attribute($%d, %q, () => (%s))", s.ParentRef, s.Name, s.ValueExpr)
	}
	return fmt.Sprintf("$.attribute($%d, %q, %s)", s.ParentRef, s.Name, s.ValueExpr)
}

// StaticSpot is a value known at compile time but not foldable into the
// literal skeleton text (e.g. an expression using only props/constants
// that never change at runtime).
type StaticSpot struct {
	ParentRef int
	Name      string
	ValueExpr string
	IsText    bool // true for a text-node interpolation rather than an attribute
}

func (s *StaticSpot) Kind() SpotKind { return KindStatic }

func (s *StaticSpot) Generate(c *Component) string {
	if c.IsSSR() {
		if s.IsText {
			return fmt.Sprintf("$.escape(%s)", s.ValueExpr)
		}
		return s.ValueExpr
	}
	if s.IsText {
		return fmt.Sprintf("$.text($%d, %s)", s.ParentRef, s.ValueExpr)
	}
	return fmt.Sprintf("$.attribute($%d, %q, %s)", s.ParentRef, s.Name, s.ValueExpr)
}

var eventGuards = map[string]string{
	"prevent": "event.preventDefault();",
	"stop":    "event.stopPropagation();",
	"ctrl":    "if (!event.ctrlKey) return;",
	"alt":     "if (!event.altKey) return;",
	"shift":   "if (!event.shiftKey) return;",
	"meta":    "if (!event.metaKey) return;",
	"enter":   `if (event.key !== "Enter") return;`,
	"tab":     `if (event.key !== "Tab") return;`,
	"esc":     `if (event.key !== "Escape") return;`,
	"space":   `if (event.key !== " ") return;`,
	"up":      `if (event.key !== "ArrowUp") return;`,
	"down":    `if (event.key !== "ArrowDown") return;`,
	"left":    `if (event.key !== "ArrowLeft") return;`,
	"right":   `if (event.key !== "ArrowRight") return;`,
	"delete":  `if (event.key !== "Delete" && event.key !== "Backspace") return;`,
}

// EventSpot produces a `$.event(...)` registration (§4.6). Handler is the
// already-lowered user expression; IsAssignment/UsesElement/Modifiers
// come from functionExpressionAnalysis and the attribute's modifier
// suffixes.
type EventSpot struct {
	ParentRef    int
	Name         string
	Handler      string
	IsAssignment bool
	UsesElement  bool
	Modifiers    []string
}

func (s *EventSpot) Kind() SpotKind { return KindEvent }

func (s *EventSpot) Generate(c *Component) string {
	if c.IsSSR() {
		return "" // events carry no server-rendered output
	}
	handler := s.Handler
	if s.UsesElement {
		handler = strings.ReplaceAll(handler, "$element", fmt.Sprintf("$%d", s.ParentRef))
	}

	var guards strings.Builder
	for _, m := range s.Modifiers {
		if g, ok := eventGuards[m]; ok {
			guards.WriteString(g)
		}
	}

	body := handler
	if guards.Len() > 0 || s.IsAssignment {
		var b strings.Builder
		b.WriteString(guards.String())
		b.WriteString(handler)
		b.WriteByte(';')
		if s.IsAssignment {
			b.WriteString("$u();")
		}
		body = "(event) => { " + b.String() + " }"
	} else if script.FunctionExpressionAnalysis(script.ParseExpression(s.Handler)).Call {
		body = "() => " + handler
	}
	return fmt.Sprintf("$.event($%d, %q, %s)", s.ParentRef, s.Name, body)
}

// InputSpot binds a form control's value to an identifier two ways: a
// getter-bound attribute and an input-event setter that writes the
// identifier and notifies dependents.
type InputSpot struct {
	ParentRef  int
	Identifier string
	Getter     string
}

func (s *InputSpot) Kind() SpotKind { return KindInput }

func (s *InputSpot) Generate(c *Component) string {
	if c.IsSSR() {
		return fmt.Sprintf("$.ssrAttribute(\"value\", %s)", s.Getter)
	}
	return fmt.Sprintf(
		"$.attribute($%d, \"value\", () => (%s)); $.event($%d, \"input\", (event) => { %s = event.target.value; $u(); })",
		s.ParentRef, s.Getter, s.ParentRef, s.Identifier,
	)
}

// ModifierSpot toggles a single class/attribute token based on a
// dependent condition (§4.6).
type ModifierSpot struct {
	ParentRef int
	Attribute string
	Token     string
	Condition string
	Dependent bool
}

func (s *ModifierSpot) Kind() SpotKind { return KindModifier }

func (s *ModifierSpot) Generate(c *Component) string {
	if c.IsSSR() {
		return fmt.Sprintf("$.ssrAttribute(%q, (%s) ? %q : \"\")", s.Attribute, s.Condition, s.Token)
	}
	if s.Dependent {
		return fmt.Sprintf("$.modifier($%d, %q, %q, () => (%s))", s.ParentRef, s.Attribute, s.Token, s.Condition)
	}
	return fmt.Sprintf("$.modifier($%d, %q, %q, %s)", s.ParentRef, s.Attribute, s.Token, s.Condition)
}

// ModifiersSpot is the multi-token form of ModifierSpot: each entry is
// independently conditioned, all targeting the same attribute.
type ModifiersSpot struct {
	ParentRef int
	Attribute string
	Entries   []ModifierEntry
}

type ModifierEntry struct {
	Token     string
	Condition string
}

func (s *ModifiersSpot) Kind() SpotKind { return KindModifiers }

func (s *ModifiersSpot) Generate(c *Component) string {
	if c.IsSSR() {
		var b strings.Builder
		for i, e := range s.Entries {
			if i > 0 {
				b.WriteString(" + \" \" + ")
			}
			b.WriteString(fmt.Sprintf("((%s) ? %q : \"\")", e.Condition, e.Token))
		}
		return fmt.Sprintf("$.ssrAttribute(%q, %s)", s.Attribute, b.String())
	}
	var list strings.Builder
	list.WriteByte('[')
	for i, e := range s.Entries {
		if i > 0 {
			list.WriteString(", ")
		}
		list.WriteString(fmt.Sprintf("[%q, () => (%s)]", e.Token, e.Condition))
	}
	list.WriteByte(']')
	return fmt.Sprintf("$.modifiers($%d, %q, %s)", s.ParentRef, s.Attribute, list.String())
}

// RefSpot assigns the element reference to a user identifier and
// registers an unmount hook that nulls it.
type RefSpot struct {
	ParentRef  int
	Identifier string
}

func (s *RefSpot) Kind() SpotKind { return KindRef }

func (s *RefSpot) Generate(c *Component) string {
	if c.IsSSR() {
		return ""
	}
	return fmt.Sprintf("%s = $%d; $.unmount(() => { %s = null; })", s.Identifier, s.ParentRef, s.Identifier)
}

// ActionSpot wires a `*`-prefixed action attribute (§4.6). Wildcard actions run an
// inline tick closure; named ones call $.Action with the argument list.
type ActionSpot struct {
	ParentRef  int
	Name       string // "" for the wildcard `*` form
	Body       string
	Args       []string
}

func (s *ActionSpot) Kind() SpotKind { return KindAction }

func (s *ActionSpot) Generate(c *Component) string {
	if c.IsSSR() {
		return ""
	}
	if s.Name == "" {
		body := strings.ReplaceAll(s.Body, "$element", fmt.Sprintf("$%d", s.ParentRef))
		return fmt.Sprintf("$.tick(() => { %s })", body)
	}
	args := "[]"
	if len(s.Args) > 0 {
		args = "[" + strings.Join(s.Args, ", ") + "]"
	}
	return fmt.Sprintf("$.Action($%d, %q, () => %s)", s.ParentRef, s.Name, args)
}

// BracketsSpot handles `[.key]` / `[:key]` translation-link attributes
// (§4.6). Literal mode returns the bare `$var(link(...))` call as the
// spot's output and does not write it into the skeleton; otherwise it
// behaves like a dynamic attribute/text spot.
type BracketsSpot struct {
	ParentRef    int
	Name         string // "" for a bare text interpolation
	Key          string
	Params       []string
	Lang         string
	Literal      bool
	Dependencies []string
}

func (s *BracketsSpot) Kind() SpotKind { return KindBrackets }

func (s *BracketsSpot) call() string {
	args := []string{fmt.Sprintf("%q", s.Key)}
	if len(s.Params) > 0 {
		args = append(args, "["+strings.Join(s.Params, ", ")+"]")
	}
	if s.Lang != "" {
		args = append(args, fmt.Sprintf("%q", s.Lang))
	}
	return fmt.Sprintf("$var(link(%s))", strings.Join(args, ", "))
}

func (s *BracketsSpot) Generate(c *Component) string {
	expr := s.call()
	if s.Literal {
		return expr
	}
	if c.IsSSR() {
		if s.Name != "" {
			return fmt.Sprintf("$.ssrAttribute(%q, %s)", s.Name, expr)
		}
		return expr
	}
	if s.Name != "" {
		return fmt.Sprintf("$.attribute($%d, %q, () => (%s))", s.ParentRef, s.Name, expr)
	}
	return fmt.Sprintf("$.text($%d, () => (%s))", s.ParentRef, expr)
}

// BlockSpot is a placeholder marker: Index is the skeleton segment that
// was just closed, and the ssr renderers splice segment Index+1 (the one
// opened after it) here. It carries no runtime action of its own and is
// meaningful only to the ssr emitter (§4.6).
type BlockSpot struct {
	Index int
}

func (s *BlockSpot) Kind() SpotKind          { return KindBlock }
func (s *BlockSpot) Generate(c *Component) string { return "" }
