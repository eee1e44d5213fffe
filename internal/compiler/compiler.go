// Package compiler implements C7: it walks the document tree C2 produced
// and, guided by C3's dependency analysis and C4's style rename table,
// builds the Figure/Spot IR that C8/C9 emit from.
package compiler

import (
	"fmt"
	"strings"

	"github.com/kodla-dev/renit-sub000/internal"
	"github.com/kodla-dev/renit-sub000/internal/handler"
	"github.com/kodla-dev/renit-sub000/internal/ir"
	"github.com/kodla-dev/renit-sub000/internal/script"
)

// domPlaceholder marks, in the csr skeleton only, where a dynamic node
// sits; the runtime's $.reference walk locates it positionally. The ssr
// skeleton never carries it — ssr splices real output at that position
// instead, via the StartBlock/EndBlock gap a dynamic spot opens.
const domPlaceholder = "<!>"

// Driver walks one document tree and produces its root Component.
type Driver struct {
	Opts    internal.Options
	Handler *handler.Handler
}

func New(opts internal.Options, h *handler.Handler) *Driver {
	return &Driver{Opts: opts, Handler: h}
}

// Compile walks doc's markup into comp, which the caller has already
// built via ir.NewComponent and populated with the script pass's results
// (UpdatedDependencies, FunctionNames, ScriptStatement, §4.3) — dependency
// classification during markup needs that analysis to already be done.
// thisHash/thisKind come from C4's scoping pass for the `this` selector
// rule (§4.4): when thisHash is set, the root markup element gets a
// class/id attribute bearing the hash.
func (d *Driver) Compile(comp *ir.Component, doc *internal.Node, thisHash string, thisKind string) {
	if root := d.rootElement(doc); root != nil && thisHash != "" {
		d.attachThis(root, thisHash, thisKind)
	}
	d.compileChildren(comp, doc, comp)
}

// rootElement finds the Document's single markup-visible child, the
// node the `this` style hash attaches to (§4.4, §4.7).
func (d *Driver) rootElement(doc *internal.Node) *internal.Node {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == internal.ElementNode || c.Type == internal.ComponentNode {
			return c
		}
	}
	return nil
}

func (d *Driver) attachThis(n *internal.Node, hash, kind string) {
	key := "class"
	if kind == "id" {
		key = "id"
	}
	if existing, ok := n.Attribute(key); ok {
		existing.Val = strings.TrimSpace(existing.Val + " " + hash)
		n.RemoveAttribute(key)
		n.Attr = append(n.Attr, existing)
		return
	}
	n.Attr = append(n.Attr, internal.Attribute{Kind: internal.PlainAttribute, Key: key, Val: hash, Static: true})
}

func (d *Driver) ssr() bool { return d.Opts.IsSSR() }

// placeholder appends the csr skeleton marker for a dynamic attachment
// point. ssr never gets one: its skeleton segments hold only the literal
// text either side of the gap a spot fills at render time.
func (d *Driver) placeholder(fig ir.Figure) {
	if !d.ssr() {
		fig.AppendBlock(domPlaceholder)
	}
}

// openGap closes the skeleton segment a dynamic spot was just added
// after and opens the next one, so ssr rendering (renderSSRFigure)
// interleaves spot output with the surrounding static text in order.
// csr never reads segment boundaries (Component.Block joins them all),
// so this is harmless bookkeeping there.
func (d *Driver) openGap(fig ir.Figure) {
	fig.EndBlock()
	fig.StartBlock()
}

// compileChildren walks n's children into fig, the enclosing figure.
func (d *Driver) compileChildren(fig ir.Figure, n *internal.Node, comp *ir.Component) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.compileNode(fig, c, comp)
	}
}

func (d *Driver) compileNode(fig ir.Figure, n *internal.Node, comp *ir.Component) {
	switch n.Type {
	case internal.ElementNode:
		d.compileElement(fig, n, comp)
	case internal.TextNode:
		d.compileText(fig, n, comp)
	case internal.CommentNode:
		// Comments carry no runtime behavior; dropped from the skeleton,
		// matching the teacher's posture for non-printed trivia nodes.
	case internal.ScriptNode, internal.StyleNode:
		// Already consumed by C3/C4 before the driver ever runs.
	case internal.IfNode:
		d.compileIf(fig, n, comp)
	case internal.ForNode:
		d.compileFor(fig, n, comp)
	case internal.ComponentNode:
		d.compileComponentInvocation(fig, n, comp)
	}
}

// slotAttrKey is the authoring convention Scenario F of the spec shows
// (`<b slot="title">`): a plain attribute on a component's child marks
// which named slot it fills, rather than a dedicated node type — the
// parser never produces SlotNode/SlotContentNode, so the compiler reads
// the convention directly off ordinary markup.
const slotAttrKey = "slot"

func (d *Driver) compileElement(fig ir.Figure, n *internal.Node, comp *ir.Component) {
	if strings.EqualFold(n.Data, "slot") {
		d.compileSlotDefinition(fig, n, comp)
		return
	}

	ref := fig.AddReference()
	n.Reference, n.HasReference = ref, true

	var open strings.Builder
	open.WriteByte('<')
	open.WriteString(n.Data)

	var dynamicAttrs []internal.Attribute
	for _, a := range n.Attr {
		if a.Kind == internal.PlainAttribute && a.Static {
			open.WriteByte(' ')
			open.WriteString(a.Key)
			if a.Val != "" {
				open.WriteString(`="` + a.Val + `"`)
			}
			continue
		}
		dynamicAttrs = append(dynamicAttrs, a)
	}
	fig.AppendBlock(open.String())

	for _, a := range dynamicAttrs {
		fig.AppendBlock(" ")
		d.compileAttribute(fig, ref, a, comp)
		d.openGap(fig)
	}
	fig.AppendBlock(">")

	d.compileChildren(fig, n, comp)

	if !n.VoidElement {
		fig.AppendBlock("</" + n.Data + ">")
	}
}

func (d *Driver) compileText(fig ir.Figure, n *internal.Node, comp *ir.Component) {
	if !n.Expression {
		fig.AppendBlock(n.Data)
		return
	}

	expr := script.ParseExpression(n.Data)
	deps := script.FindDependencies(expr, "")
	comp.Dependencies.AddAll(deps)

	ref := fig.AddReference()
	d.placeholder(fig)

	switch {
	case n.Directive == internal.StaticDirective, n.Directive == internal.LiteralDirective:
		// `>expr` and `=expr` both evaluate once at mount and never rerun,
		// differing only in how the raw/literal source is obtained — a
		// distinction the parser already resolved into n.Data.
		fig.AddSpot(&ir.StaticSpot{ParentRef: ref, ValueExpr: n.Data, IsText: true})
	case n.Directive == internal.HTMLDirective:
		fig.AddSpot(&ir.AttributeSpot{ParentRef: ref, Name: "html", ValueExpr: n.Data, Dependencies: deps, OnlyOne: true})
	case n.Directive == internal.DynamicDirective:
		// `*expr` forces the reactive path even when dependency analysis
		// finds nothing to track (e.g. a call with hidden internal state).
		fig.AddSpot(&ir.AttributeSpot{ParentRef: ref, ValueExpr: n.Data, Dependencies: deps, IsText: true})
	case comp.DependsOnUpdated(deps):
		fig.AddSpot(&ir.AttributeSpot{ParentRef: ref, ValueExpr: n.Data, Dependencies: deps, IsText: true})
	default:
		fig.AddSpot(&ir.StaticSpot{ParentRef: ref, ValueExpr: n.Data, IsText: true})
	}
	d.openGap(fig)
}

func (d *Driver) compileAttribute(fig ir.Figure, ref int, a internal.Attribute, comp *ir.Component) {
	switch a.Kind {
	case internal.EventAttribute:
		d.compileEvent(fig, ref, a, comp)
	case internal.BindAttribute:
		d.compileBind(fig, ref, a, comp)
	case internal.ModifierAttribute:
		d.compileModifier(fig, ref, a, comp)
	case internal.RefAttribute:
		fig.AddSpot(&ir.RefSpot{ParentRef: ref, Identifier: a.Key})
	case internal.ActionAttribute:
		d.compileAction(fig, ref, a, comp)
	case internal.LinkAttribute, internal.TranslateAttribute:
		d.compileBrackets(fig, ref, a, comp)
	default:
		d.compilePlainDynamicAttribute(fig, ref, a, comp)
	}
}

func (d *Driver) compilePlainDynamicAttribute(fig ir.Figure, ref int, a internal.Attribute, comp *ir.Component) {
	pieces := a.Pieces
	if len(pieces) == 0 && a.Val != "" {
		// Shorthand (`{name}`), spread (`{...expr}`), and the `[=name]`
		// bracket alias all carry their payload in Val with no Pieces
		// split — treat each as a single dynamic expression piece. A
		// spread's Key is the literal "..." and is emitted as an
		// attribute of that name; no object merge is generated.
		pieces = []internal.ValuePiece{{Kind: internal.ExpressionPiece, Data: a.Val}}
	}
	expr, deps, onlyOne := d.lowerPieces(pieces, comp)
	if len(deps) == 0 {
		fig.AddSpot(&ir.StaticSpot{ParentRef: ref, Name: a.Key, ValueExpr: expr})
		return
	}
	fig.AddSpot(&ir.AttributeSpot{ParentRef: ref, Name: a.Key, ValueExpr: expr, Dependencies: deps, OnlyOne: onlyOne})
}

// lowerPieces assembles an attribute/text value's alternating literal and
// `{…}` runs into a single runtime expression: the bare payload when it
// is the value's only piece ("onlyOne"), otherwise a template literal.
func (d *Driver) lowerPieces(pieces []internal.ValuePiece, comp *ir.Component) (expr string, deps []string, onlyOne bool) {
	if len(pieces) == 1 && pieces[0].Kind == internal.ExpressionPiece {
		e := script.ParseExpression(pieces[0].Data)
		ed := script.FindDependencies(e, pieces[0].Data)
		comp.Dependencies.AddAll(ed)
		return pieces[0].Data, ed, true
	}

	var b strings.Builder
	b.WriteByte('`')
	var allDeps []string
	seen := map[string]bool{}
	for _, p := range pieces {
		if p.Kind == internal.StringPiece {
			b.WriteString(p.Data)
			continue
		}
		e := script.ParseExpression(p.Data)
		pd := script.FindDependencies(e, p.Data)
		for _, x := range pd {
			if !seen[x] {
				seen[x] = true
				allDeps = append(allDeps, x)
			}
		}
		b.WriteString("${" + p.Data + "}")
	}
	b.WriteByte('`')
	comp.Dependencies.AddAll(allDeps)
	return b.String(), allDeps, false
}

var eventModifierNames = map[string]bool{
	"prevent": true, "stop": true, "ctrl": true, "alt": true, "shift": true, "meta": true,
	"enter": true, "tab": true, "esc": true, "space": true, "up": true, "down": true,
	"left": true, "right": true, "delete": true,
}

func (d *Driver) compileEvent(fig ir.Figure, ref int, a internal.Attribute, comp *ir.Component) {
	expr := script.ParseExpression(a.Val)
	fa := script.FunctionExpressionAnalysis(expr)
	deps := script.FindDependencies(expr, a.Val)
	comp.Dependencies.AddAll(deps)

	var mods []string
	for _, s := range a.Suffix {
		if eventModifierNames[s.Name] {
			mods = append(mods, s.Name)
		}
	}

	fig.AddSpot(&ir.EventSpot{
		ParentRef:    ref,
		Name:         a.Key,
		Handler:      a.Val,
		IsAssignment: fa.Assignment,
		UsesElement:  strings.Contains(a.Val, "$element"),
		Modifiers:    mods,
	})
}

func (d *Driver) compileBind(fig ir.Figure, ref int, a internal.Attribute, comp *ir.Component) {
	if a.Key == "value" {
		fig.AddSpot(&ir.InputSpot{ParentRef: ref, Identifier: a.Val, Getter: a.Val})
		return
	}
	d.compilePlainDynamicAttribute(fig, ref, internal.Attribute{
		Key:    a.Key,
		Pieces: []internal.ValuePiece{{Kind: internal.ExpressionPiece, Data: a.Val}},
	}, comp)
}

func (d *Driver) compileModifier(fig ir.Figure, ref int, a internal.Attribute, comp *ir.Component) {
	expr := script.ParseExpression(a.Val)
	deps := script.FindDependencies(expr, a.Val)
	comp.Dependencies.AddAll(deps)

	if len(a.Suffix) <= 1 {
		token := a.Key
		if len(a.Suffix) == 1 {
			token = a.Suffix[0].Name
		}
		fig.AddSpot(&ir.ModifierSpot{ParentRef: ref, Attribute: a.Key, Token: token, Condition: a.Val, Dependent: comp.DependsOnUpdated(deps)})
		return
	}

	var entries []ir.ModifierEntry
	for _, s := range a.Suffix {
		entries = append(entries, ir.ModifierEntry{Token: s.Name, Condition: a.Val})
	}
	fig.AddSpot(&ir.ModifiersSpot{ParentRef: ref, Attribute: a.Key, Entries: entries})
}

func (d *Driver) compileAction(fig ir.Figure, ref int, a internal.Attribute, comp *ir.Component) {
	if a.Key == "*" || a.Key == "" {
		fig.AddSpot(&ir.ActionSpot{ParentRef: ref, Body: a.Val})
		return
	}
	var args []string
	if a.Val != "" {
		args = []string{a.Val}
	}
	fig.AddSpot(&ir.ActionSpot{ParentRef: ref, Name: a.Key, Args: args})
}

func (d *Driver) compileBrackets(fig ir.Figure, ref int, a internal.Attribute, comp *ir.Component) {
	literal := a.Kind == internal.LinkAttribute && strings.HasPrefix(a.Key, ".")
	name := strings.TrimLeft(a.Key, ".:=")
	var params []string
	lang := ""
	if parts := strings.Split(a.Val, "|"); len(parts) > 1 {
		params = parts[:len(parts)-1]
		lang = parts[len(parts)-1]
	} else if a.Val != "" {
		params = []string{a.Val}
	}

	attrName := ""
	if a.Kind == internal.TranslateAttribute {
		attrName = a.Key
	}
	fig.AddSpot(&ir.BracketsSpot{ParentRef: ref, Name: attrName, Key: name, Params: params, Lang: lang, Literal: literal})
}

func (d *Driver) compileIf(fig ir.Figure, n *internal.Node, comp *ir.Component) {
	ref := fig.AddReference()
	d.placeholder(fig)

	ifSpot := ir.NewIfSpot(ref, n.Condition)
	d.compileChildren(ifSpot, n, comp)

	for cursor := n.NextSibling; cursor != nil; cursor = cursor.NextSibling {
		switch cursor.Type {
		case internal.ElseIfNode:
			b := ir.NewElseIfSpot(cursor.Condition)
			d.compileChildren(b, cursor, comp)
			ifSpot.AddBranch(b)
		case internal.ElseNode:
			b := ir.NewElseSpot()
			d.compileChildren(b, cursor, comp)
			ifSpot.AddBranch(b)
		default:
			cursor = nil
		}
		if cursor == nil {
			break
		}
	}
	ifSpot.Finalize()
	fig.AddSpot(ifSpot)
	d.openGap(fig)
}

func (d *Driver) compileFor(fig ir.Figure, n *internal.Node, comp *ir.Component) {
	ref := fig.AddReference()
	d.placeholder(fig)

	forSpot := ir.NewForSpot(ref, n.ForValue)
	forSpot.AsName = n.ForAsName
	forSpot.AsFields = n.ForComputed
	forSpot.Index = n.ForIndex
	forSpot.Key = n.ForKey
	forSpot.Numeric = isNumericLiteral(n.ForValue)

	d.compileChildren(forSpot, n, comp)
	fig.AddSpot(forSpot)
	d.openGap(fig)
}

func isNumericLiteral(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// compileSlotDefinition handles a `<slot>` / `<slot name="...">` element:
// its children become the fallback figure rendered when the invocation
// site supplies no matching content (Scenario F, §4.6 SlotSpot).
func (d *Driver) compileSlotDefinition(fig ir.Figure, n *internal.Node, comp *ir.Component) {
	ref := fig.AddReference()
	d.placeholder(fig)
	name := ""
	if a, ok := n.Attribute("name"); ok {
		name = a.Val
	}
	slot := ir.NewSlotSpot(ref, name)
	d.compileChildren(slot, n, comp)
	fig.AddSpot(slot)
	d.openGap(fig)
}

func (d *Driver) compileComponentInvocation(fig ir.Figure, n *internal.Node, comp *ir.Component) {
	ref := fig.AddReference()
	d.placeholder(fig)

	spot := &ir.ComponentSpot{ParentRef: ref, Name: n.Data, Props: map[string]string{}}

	for _, a := range n.Attr {
		if a.Kind == internal.RefAttribute {
			spot.RefIdent = a.Key
			continue
		}
		expr, deps, _ := d.lowerPieces(a.Pieces, comp)
		if len(a.Pieces) == 0 {
			expr = fmt.Sprintf("%q", a.Val)
		}
		spot.Props[a.Key] = expr
		if comp.DependsOnUpdated(deps) {
			spot.DynamicProps = append(spot.DynamicProps, a.Key)
		}
	}

	var defaultSlot *ir.SlotContentSpot
	named := map[string]*ir.SlotContentSpot{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		name := ""
		if a, ok := c.Attribute(slotAttrKey); ok {
			name = a.Val
			c.RemoveAttribute(slotAttrKey)
		}
		if name != "" {
			sc, ok := named[name]
			if !ok {
				sc = ir.NewSlotContentSpot(name)
				named[name] = sc
				spot.Slots = append(spot.Slots, sc)
			}
			d.compileNode(sc, c, comp)
			continue
		}
		if defaultSlot == nil {
			defaultSlot = ir.NewSlotContentSpot("")
			spot.Slots = append(spot.Slots, defaultSlot)
		}
		d.compileNode(defaultSlot, c, comp)
	}

	fig.AddSpot(spot)
	d.openGap(fig)
}
