package ir

import (
	"fmt"
	"sort"
	"strings"
)

// renderSpots joins a figure's non-placeholder spots into the statement
// list the csr factories below splice together. ssr composition instead
// walks Blocks()/Spots() directly to interleave static segments with
// dynamic BlockSpot placeholders (§4.6's block-segmentation rule).
func renderSpots(spots []Spot, c *Component) string {
	var parts []string
	for _, s := range spots {
		if s.Kind() == KindBlock {
			continue
		}
		if out := s.Generate(c); out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, "; ")
}

// renderSSRFigure turns a figure's segmented skeleton plus spot list into
// a sequence of `$parent += ...;` statements (§4.9): ssr has exactly one
// running output per component, so even nested if/for bodies append to
// the same $parent rather than building their own return value — except
// slot content, which genuinely needs an isolated builder (see
// SlotContentSpot.Generate / SlotSpot.Generate below).
func renderSSRFigure(f *figureCore, c *Component) string {
	var b strings.Builder
	if f.blocks[0] != "" {
		fmt.Fprintf(&b, "$parent += %s;", Backtick(f.blocks[0]))
	}
	blockIdx := 0
	for _, s := range f.spots {
		if bs, ok := s.(*BlockSpot); ok {
			blockIdx = bs.Index + 1
			if blockIdx < len(f.blocks) && f.blocks[blockIdx] != "" {
				fmt.Fprintf(&b, "$parent += %s;", Backtick(f.blocks[blockIdx]))
			}
			continue
		}
		out := s.Generate(c)
		if out == "" {
			continue
		}
		switch s.Kind() {
		case KindIf, KindFor:
			// If/For already emit full `if (...) { $parent += ...; }` /
			// `for (...) { $parent += ...; }` statements.
			b.WriteString(out)
		default:
			fmt.Fprintf(&b, "$parent += %s;", out)
		}
	}
	return b.String()
}

// ssrClosureBody wraps a figure's ssr rendering in its own isolated
// $parent builder, for the rare ssr positions — slot content — that must
// produce a standalone string rather than append to the enclosing
// component's output (§4.6 SlotSpot/SlotContentSpot).
func ssrClosureBody(f *figureCore, c *Component) string {
	return fmt.Sprintf(`let $parent = ""; %s return $parent;`, renderSSRFigure(f, c))
}

// branch is the shape shared by the if/elseif/else arms of a chain: its
// own nested figure (skeleton + spots + reference namespace), guarded by
// a condition (empty for the else arm).
type branch struct {
	figureCore
	Condition string
}

// IfSpot is the `if` arm of a conditional chain and, per §4.6, owns the
// whole ordered set of branch sub-figures: itself plus any ElseIfSpot /
// ElseSpot siblings appended via AddBranch. Finalize dedupes by
// Condition and sorts so the else branch (Condition == "") is last,
// preserving relative order otherwise.
type IfSpot struct {
	branch
	ParentRef int
	Branches  []Spot // *ElseIfSpot | *ElseSpot, in encounter order until Finalize
}

func NewIfSpot(parentRef int, condition string) *IfSpot {
	return &IfSpot{branch: branch{figureCore: newFigureCore(), Condition: condition}, ParentRef: parentRef}
}

func (s *IfSpot) AddBranch(b Spot) { s.Branches = append(s.Branches, b) }

// Finalize applies §4.6's branch-ordering invariant. Call once after all
// elseif/else arms have been collected and before Generate.
func (s *IfSpot) Finalize() {
	seen := map[string]bool{}
	deduped := s.Branches[:0]
	for _, b := range s.Branches {
		cond := branchCondition(b)
		if cond != "" && seen[cond] {
			continue
		}
		if cond != "" {
			seen[cond] = true
		}
		deduped = append(deduped, b)
	}
	s.Branches = deduped
	sort.SliceStable(s.Branches, func(i, j int) bool {
		return branchCondition(s.Branches[i]) != "" && branchCondition(s.Branches[j]) == ""
	})
}

func branchCondition(s Spot) string {
	switch b := s.(type) {
	case *ElseIfSpot:
		return b.Condition
	case *ElseSpot:
		return ""
	}
	return ""
}

func branchFigure(s Spot) *figureCore {
	switch b := s.(type) {
	case *ElseIfSpot:
		return &b.figureCore
	case *ElseSpot:
		return &b.figureCore
	}
	return nil
}

func (s *IfSpot) Kind() SpotKind { return KindIf }

func (s *IfSpot) Generate(c *Component) string {
	if c.IsSSR() {
		var b strings.Builder
		b.WriteString(fmt.Sprintf("if (%s) { %s }", s.Condition, renderSSRFigure(&s.figureCore, c)))
		for _, br := range s.Branches {
			cond := branchCondition(br)
			fig := branchFigure(br)
			if cond == "" {
				b.WriteString(fmt.Sprintf(" else { %s }", renderSSRFigure(fig, c)))
			} else {
				b.WriteString(fmt.Sprintf(" else if (%s) { %s }", cond, renderSSRFigure(fig, c)))
			}
		}
		return b.String()
	}

	type arm struct {
		cond string
		fig  *figureCore
	}
	arms := []arm{{cond: s.Condition, fig: &s.figureCore}}
	for _, br := range s.Branches {
		arms = append(arms, arm{cond: branchCondition(br), fig: branchFigure(br)})
	}

	var conds strings.Builder
	var blocks strings.Builder
	for i, a := range arms {
		if i > 0 {
			conds.WriteString(" ")
			blocks.WriteString(", ")
		}
		if a.cond == "" {
			conds.WriteString(fmt.Sprintf("return %d;", i))
		} else {
			conds.WriteString(fmt.Sprintf("if (%s) return %d;", a.cond, i))
		}
		blocks.WriteString(fmt.Sprintf("($%d) => { %s }", s.ParentRef, renderSpots(a.fig.spots, c)))
	}
	return fmt.Sprintf("$.ifBlock($%d, () => { %s }, [%s])", s.ParentRef, conds.String(), blocks.String())
}

// ElseIfSpot is one `elseif` arm, owning its own nested figure.
type ElseIfSpot struct {
	branch
}

func NewElseIfSpot(condition string) *ElseIfSpot {
	return &ElseIfSpot{branch{figureCore: newFigureCore(), Condition: condition}}
}

func (s *ElseIfSpot) Kind() SpotKind { return KindElseIf }

// Generate is never called directly: IfSpot.Generate walks Branches and
// renders each arm's figure itself.
func (s *ElseIfSpot) Generate(c *Component) string { return "" }

// ElseSpot is the closing `else` arm, owning its own nested figure.
type ElseSpot struct {
	branch
}

func NewElseSpot() *ElseSpot {
	return &ElseSpot{branch{figureCore: newFigureCore()}}
}

func (s *ElseSpot) Kind() SpotKind { return KindElse }

func (s *ElseSpot) Generate(c *Component) string { return "" }

// ForSpot is the container for a `for`/`each` loop (§4.6).
type ForSpot struct {
	figureCore
	ParentRef int
	Value     string   // iterable expression
	AsName    string   // destructured item binding
	AsFields  []string // destructured field names, when the binding is an object pattern
	Index     string   // index binding, if any
	Key       string   // key expression, if any
	Numeric   bool        // true when Value is a numeric range rather than a collection
	Empty     *BareFigure // optional empty-state sub-figure
}

func NewForSpot(parentRef int, value string) *ForSpot {
	return &ForSpot{figureCore: newFigureCore(), ParentRef: parentRef, Value: value}
}

func (s *ForSpot) Kind() SpotKind { return KindFor }

// keyFn implements §4.6's dispatch table for how the loop keys each item.
func (s *ForSpot) keyFn() string {
	switch {
	case s.Numeric:
		return "$.noop"
	case s.Key == "" || s.Key == s.AsName:
		return "$.noop"
	case s.Key == s.Index:
		return "(_, $index) => $index"
	default:
		for _, f := range s.AsFields {
			if s.Key == f {
				return fmt.Sprintf("($item) => $item.%s", f)
			}
		}
		return fmt.Sprintf("($item) => (%s)", s.Key)
	}
}

func (s *ForSpot) Generate(c *Component) string {
	if c.IsSSR() {
		body := renderSSRFigure(&s.figureCore, c)
		loop := fmt.Sprintf("for (let %s = 0; %s < (%s).length; %s++) { %s }", s.Index, s.Index, s.Value, s.Index, body)
		if s.Empty != nil {
			empty := renderSSRFigure(&s.Empty.figureCore, c)
			return fmt.Sprintf("if ((%s).length === 0) { %s } else { %s }", s.Value, empty, loop)
		}
		return loop
	}

	itemBlock := fmt.Sprintf("($%d, %s, %s) => { %s }", s.ParentRef, s.AsName, orDefault(s.Index, "$index"), renderSpots(s.spots, c))
	args := []string{fmt.Sprintf("$%d", s.ParentRef), fmt.Sprintf("() => (%s)", s.Value), s.keyFn(), itemBlock}
	if s.Empty != nil {
		args = append(args, fmt.Sprintf("($%d) => { %s }", s.ParentRef, renderSpots(s.Empty.spots, c)))
	}
	return fmt.Sprintf("$.forBlock(%s)", strings.Join(args, ", "))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// SlotSpot resolves a named (or default) slot from the component's
// options, falling back to a placeholder block when absent (§4.6).
type SlotSpot struct {
	figureCore
	ParentRef int
	Name      string // "" means the default slot
	Dynamic   bool
	Props     []string
}

func NewSlotSpot(parentRef int, name string) *SlotSpot {
	return &SlotSpot{figureCore: newFigureCore(), ParentRef: parentRef, Name: name}
}

func (s *SlotSpot) Kind() SpotKind { return KindSlot }

func (s *SlotSpot) Generate(c *Component) string {
	name := s.Name
	if name == "" {
		name = "default"
	}
	if c.IsSSR() {
		return fmt.Sprintf("$.ssrSlot($options, %q, () => { %s })", name, ssrClosureBody(&s.figureCore, c))
	}
	fallback := renderSpots(s.spots, c)
	fn := "slot"
	if s.Dynamic {
		fn = "slotDyn"
	}
	return fmt.Sprintf("$.%s($%d, $options, %q, () => $.makeBlock(%s, ($0) => { %s }))", fn, s.ParentRef, name, Backtick(strings.Join(s.blocks, "")), fallback)
}

// SlotContentSpot captures the markup passed into a named slot at a
// component invocation site, so ComponentSpot can forward it.
type SlotContentSpot struct {
	figureCore
	Name string
}

func NewSlotContentSpot(name string) *SlotContentSpot {
	return &SlotContentSpot{figureCore: newFigureCore(), Name: name}
}

func (s *SlotContentSpot) Kind() SpotKind { return KindSlotContent }

func (s *SlotContentSpot) Generate(c *Component) string {
	if c.IsSSR() {
		return ssrClosureBody(&s.figureCore, c)
	}
	return fmt.Sprintf("$.makeSlot(%s, ($0) => { %s })", Backtick(strings.Join(s.blocks, "")), renderSpots(s.spots, c))
}

// ComponentSpot is a nested component invocation (§4.6).
type ComponentSpot struct {
	ParentRef    int
	Name         string
	Props        map[string]string // attribute name -> value expr
	DynamicProps []string          // subset of Props keys that depend on updatable state
	RefIdent     string
	Slots        []*SlotContentSpot
}

func (s *ComponentSpot) Kind() SpotKind { return KindComponent }

func (s *ComponentSpot) Generate(c *Component) string {
	keys := make([]string, 0, len(s.Props))
	for k := range s.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	propsObj := "{"
	for i, k := range keys {
		if i > 0 {
			propsObj += ", "
		}
		propsObj += fmt.Sprintf("%s: %s", k, s.Props[k])
	}
	propsObj += "}"

	if c.IsSSR() {
		slots := "{"
		for i, sl := range s.Slots {
			if i > 0 {
				slots += ", "
			}
			slots += fmt.Sprintf("%q: () => { %s }", sl.Name, sl.Generate(c))
		}
		slots += "}"
		return fmt.Sprintf("%s.ssr(%s, %s)", s.Name, propsObj, slots)
	}

	call := "call"
	if len(s.DynamicProps) > 0 {
		call = "callDyn"
	}
	refAssign := ""
	if s.RefIdent != "" {
		refAssign = fmt.Sprintf("%s = ", s.RefIdent)
	}
	slots := "{"
	for i, sl := range s.Slots {
		if i > 0 {
			slots += ", "
		}
		slots += fmt.Sprintf("%q: %s", sl.Name, sl.Generate(c))
	}
	slots += "}"
	return fmt.Sprintf("%s$.%s($%d, %s, () => (%s), %s)", refAssign, call, s.ParentRef, s.Name, propsObj, slots)
}
