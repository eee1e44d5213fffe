// Package ir implements the Figure/Spot intermediate representation
// (§4.6): a static skeleton per enclosing scope plus an ordered list of
// dynamic attachment points (spots) that the csr/ssr emitters walk.
package ir

import "github.com/kodla-dev/renit-sub000/internal/script"

// Figure is the contract shared by Component and every container Spot
// (IfSpot, ForSpot, SlotSpot, SlotContentSpot, ComponentSpot): each owns
// its own skeleton and spot list, and its own 0-based reference
// namespace, per §4.6.
type Figure interface {
	AppendBlock(text string)
	StartBlock()
	EndBlock()
	AddReference() int
	AddSpot(s Spot)
	Blocks() []string
	Spots() []Spot
}

// figureCore is the embeddable implementation every Figure shares —
// Go's substitute for the spec's described shared base interface, the
// same embedding posture the teacher applies to Node's shared methods.
type figureCore struct {
	blocks     []string
	spots      []Spot
	references int
}

func newFigureCore() figureCore {
	return figureCore{blocks: []string{""}}
}

// AppendBlock concatenates text onto the current (last) skeleton
// segment.
func (f *figureCore) AppendBlock(text string) {
	f.blocks[len(f.blocks)-1] += text
}

// StartBlock opens a new skeleton segment. Only meaningful for ssr,
// where static text and dynamic spot output interleave; csr figures are
// segmented the same way, but csr output joins the segments back
// together (Component.Block) and skips the BlockSpots.
func (f *figureCore) StartBlock() {
	f.blocks = append(f.blocks, "")
}

// EndBlock records a BlockSpot pointing at the just-closed segment, so
// the emitter knows to splice dynamic output before continuing with the
// next static segment.
func (f *figureCore) EndBlock() {
	f.AddSpot(&BlockSpot{Index: len(f.blocks) - 1})
}

func (f *figureCore) AddReference() int {
	id := f.references
	f.references++
	return id
}

func (f *figureCore) AddSpot(s Spot) { f.spots = append(f.spots, s) }
func (f *figureCore) Blocks() []string { return f.blocks }
func (f *figureCore) Spots() []Spot    { return f.spots }

// BareFigure is a standalone Figure with no Spot kind of its own — used
// for the optional empty-state sub-figures ForSpot/IfSpot-adjacent
// constructs attach (e.g. ForSpot.Empty, §4.6).
type BareFigure struct{ figureCore }

func NewFigure() *BareFigure { return &BareFigure{figureCore: newFigureCore()} }

// ChangedStyle is a class/id rename the CSS pass produced, carried
// through script lowering into the component so literal references can
// be rewritten (§4.4/§4.3).
type ChangedStyle struct {
	Old, New, Type string
}

// Flags mirrors the bit-pack of boolean compile-time states §4.2
// describes for Component.
type Flags struct {
	RootEvent       bool
	Context         bool
	Current         bool
	InsideComponent bool
	HasUpdate       bool
	Default         bool
	Embed           bool
}

// Component is the compilation target for one exported component (§4.2).
type Component struct {
	figureCore

	Name   string
	Target string // "csr" | "ssr"
	Props  []string

	Dependencies         *OrderedSet
	UpdatedDependencies  *OrderedSet
	FunctionDependencies *OrderedSet
	FunctionNames        *OrderedSet

	ChangedStyles []ChangedStyle

	ScriptStatement string
	ExportStatements []string

	Style string

	Flags Flags
}

func NewComponent(name, target string) *Component {
	return &Component{
		figureCore:           newFigureCore(),
		Name:                 name,
		Target:               target,
		Dependencies:         NewOrderedSet(),
		UpdatedDependencies:  NewOrderedSet(),
		FunctionDependencies: NewOrderedSet(),
		FunctionNames:        NewOrderedSet(),
	}
}

func (c *Component) IsSSR() bool { return c.Target == "ssr" }

// DependsOnUpdated reports whether any of deps names a dependency the
// component's script mutates at runtime — the "isLambda" test §4.6's
// AttributeSpot and friends key their producer-closure decision on.
func (c *Component) DependsOnUpdated(deps []string) bool {
	for _, d := range deps {
		if c.UpdatedDependencies.Has(d) || script.CheckDependencies(d, c.UpdatedDependencies.Items()) {
			return true
		}
	}
	return false
}

// Block joins the figure's skeleton segments into one string — the csr
// skeleton, and the full static text for tests regardless of ssr
// segmentation.
func (c *Component) Block() string {
	out := ""
	for _, b := range c.blocks {
		out += b
	}
	return out
}

// ReferenceCount returns how many references this component's own figure
// allocated — the length the emitted `let [$el0,…] = $.reference($parent)`
// destructuring must match (§4.8, testable property 2).
func (c *Component) ReferenceCount() int { return c.references }

// Backtick renders s as a JS template-literal source, escaping the
// characters that would otherwise terminate it or start an
// interpolation early — used by both emitters wherever a skeleton
// segment becomes a `...` literal.
func Backtick(s string) string {
	var b []byte
	b = append(b, '`')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '`', '\\':
			b = append(b, '\\', s[i])
		case '$':
			if i+1 < len(s) && s[i+1] == '{' {
				b = append(b, '\\', '$')
				continue
			}
			b = append(b, '$')
		default:
			b = append(b, s[i])
		}
	}
	b = append(b, '`')
	return string(b)
}
