package style

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	internal "github.com/kodla-dev/renit-sub000/internal"
)

// protectedElements mirrors the teacher's NeverScopedElements/Selectors
// tables: bare tag selectors that must never be renamed because they
// describe the document itself rather than component markup.
var protectedElements = map[string]bool{
	"html": true, "body": true,
}

// customDeclarations maps renit's shorthand declaration names to the
// physical CSS properties they expand into (§4.4's "size/mx/my/px/py"
// rule).
var customDeclarations = map[string][]string{
	"size": {"width", "height"},
	"mx":   {"margin-left", "margin-right"},
	"my":   {"margin-top", "margin-bottom"},
	"px":   {"padding-left", "padding-right"},
	"py":   {"padding-top", "padding-bottom"},
}

var themeAttr = map[string]string{
	"light": `[data-theme="light"]`,
	"dark":  `[data-theme="dark"]`,
	"ltr":   `[dir="ltr"]`,
	"rtl":   `[dir="rtl"]`,
}

// Result is the outcome of Process: the rewritten stylesheet plus the
// renames it minted so the markup pass can apply matching class/id
// substitutions (§4.4).
type Result struct {
	CSS     string
	Renames []Rename
}

// Processor scopes one component's <style> block against a shared
// allocator and rename table, and a process-wide block registry for
// @block/@include (§4.4 step 6).
type Processor struct {
	Allocator *Allocator
	Table     Table   // component-scoped rename table (persists across recompiles of the same file)
	Global    Table   // cross-file :global table, shared process-wide
	Blocks    map[string]string // @block name -> raw declaration body, process-wide
	Component string            // seed prefix so two components' same-named class never collide
	Opts      internal.CSSOptions
}

func NewProcessor(alloc *Allocator, table, global Table, blocks map[string]string, component string, opts internal.CSSOptions) *Processor {
	return &Processor{Allocator: alloc, Table: table, Global: global, Blocks: blocks, Component: component, Opts: opts}
}

// Process scopes src, the raw text of one <style> block, per §4.4.
func (p *Processor) Process(src string) (Result, error) {
	parser := css.NewParser(parse.NewInputString(src), false)
	var out strings.Builder
	var renames []Rename

	isKeyframes := false
	keyframeDepth := 0
	declaration := ""
	var pendingBlock *blockCapture // non-nil while inside @block ... { }

walk:
	for {
		gt, _, data := parser.Next()

		if pendingBlock != nil {
			if done := pendingBlock.feed(gt, data); done {
				p.Blocks[pendingBlock.name] = pendingBlock.body.String()
				pendingBlock = nil
			} else if gt == css.DeclarationGrammar {
				pendingBlock.body.WriteString(valuesText(parser.Values()))
				pendingBlock.body.WriteByte(';')
			}
			continue
		}

		switch gt {
		case css.ErrorGrammar:
			if len(data) > 0 {
				out.Write(data)
			}
			break walk
		case css.CommentGrammar:
			out.Write(data)
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			out.WriteByte('}')
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar, css.DeclarationGrammar, css.QualifiedRuleGrammar:
			prelude := string(data)

			switch gt {
			case css.BeginAtRuleGrammar:
				switch prelude {
				case "@keyframes", "@-webkit-keyframes":
					isKeyframes = true
					keyframeDepth = 0
					out.WriteString(prelude)
				case "@block":
					name := firstIdent(parser.Values())
					pendingBlock = &blockCapture{name: name, depth: 1}
					continue walk
				case "@screen":
					bp := firstIdent(parser.Values())
					out.WriteString(p.screenMediaQuery(bp))
					continue walk
				default:
					out.WriteString(prelude)
					out.WriteString(valuesText(parser.Values()))
					out.WriteByte('{')
					continue walk
				}
			case css.DeclarationGrammar:
				declaration = prelude
				if expansion, ok := customDeclarations[prelude]; ok {
					value := valuesText(parser.Values())
					important := ""
					if strings.Contains(value, "!important") {
						important = " !important"
						value = strings.ReplaceAll(value, "!important", "")
					}
					value = strings.TrimSpace(value)
					for i, prop := range expansion {
						if i > 0 {
							out.WriteByte(';')
						}
						out.WriteString(prop + ":" + value + important)
					}
					out.WriteByte(';')
					continue walk
				}
				out.WriteString(prelude + ":")
			}

			p.scopeSelector(&out, &renames, gt, parser.Values(), &isKeyframes, &keyframeDepth, declaration)

			switch gt {
			case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
				out.WriteByte('{')
			case css.DeclarationGrammar, css.EndRulesetGrammar, css.EndAtRuleGrammar:
				out.WriteByte(';')
			case css.QualifiedRuleGrammar:
				out.WriteByte(',')
			}
			declaration = ""
		default:
			if string(data) == "@include" {
				name := firstIdent(parser.Values())
				out.WriteString(p.Blocks[name])
				continue walk
			}
			out.Write(data)
			for _, v := range parser.Values() {
				if strings.HasPrefix(string(data), "--") {
					out.WriteByte(':')
				}
				out.Write(v.Data)
			}
			out.WriteByte(';')
		}
	}

	return Result{CSS: out.String(), Renames: renames}, nil
}

// scopeSelector walks one grammar's token list rewriting class/id
// selectors to their allocated hash, matching the state machine grounded
// on scope-css.go: paren depth, attribute brackets, :global()/:static(),
// pseudo-state, and element-vs-class tracking.
func (p *Processor) scopeSelector(out *strings.Builder, renames *[]Rename, gt css.GrammarType, values []css.Token, isKeyframes *bool, keyframeDepth *int, declaration string) {
	parenCount := 0
	isGlobal := false
	isStatic := false
	isBracket := false
	isElement := true
	isPseudoState := false
	skipNext := false

	for n, val := range values {
		strVal := string(val.Data)

		if skipNext {
			skipNext = false
			continue
		}

		if *isKeyframes {
			if strVal == "{" {
				*keyframeDepth++
			} else if strVal == "}" {
				*keyframeDepth--
				if *keyframeDepth < 0 {
					*isKeyframes = false
				}
			}
			out.WriteString(strVal)
			continue
		}

		switch strVal {
		case ".", "#":
			isPseudoState = false
			isElement = false
			out.WriteString(strVal)
		case ":":
			isPseudoState = true
			if peek := nextData(values, n); peek == "global(" {
				isGlobal = true
			} else if peek == "static(" {
				isStatic = true
			} else if theme, ok := themeAttr[peek]; ok {
				out.WriteString(theme)
				isPseudoState = false
				skipNext = true
			} else {
				out.WriteString(strVal)
			}
		case "global(", "static(":
			parenCount++
		case "(":
			parenCount++
			out.WriteString(strVal)
			isElement = true
			isPseudoState = false
		case ")":
			parenCount--
			if (!isGlobal && !isStatic) || parenCount != 0 {
				out.WriteString(strVal)
			}
		case "[":
			isBracket = true
			isElement = false
			isPseudoState = false
			out.WriteString(strVal)
		case "]":
			isBracket = false
			out.WriteString(strVal)
		case "{":
			isElement = true
			isPseudoState = false
			out.WriteString(strVal)
		case "}":
			out.WriteString(strVal)
		case "*":
			out.WriteString(strVal)
		default:
			if strings.Contains(strVal, "(") {
				parenCount++
				isElement = true
				isPseudoState = false
			}

			isGlobalElement := isElement && protectedElements[strVal]

			if val.TokenType == css.WhitespaceToken {
				if isGlobal && parenCount == 0 {
					isGlobal = false
				}
				if isStatic && parenCount == 0 {
					isStatic = false
				}
			}

			kind := "class"
			if n > 0 && string(values[n-1].Data) == "#" {
				kind = "id"
			}

			isSelectorToken := (gt == css.BeginRulesetGrammar || gt == css.QualifiedRuleGrammar) &&
				(val.TokenType == css.IdentToken || val.TokenType == css.HashToken)

			if isSelectorToken && !isPseudoState && !isGlobal && !isGlobalElement && !isBracket && parenCount == 0 {
				renamed := p.rename(strVal, kind, isStatic)
				*renames = append(*renames, renamed)
				out.WriteString(renamed.New)
			} else {
				out.WriteString(strVal)
			}

			isElement = true
			isPseudoState = false
		}
	}
}

// rename returns old's allocated hash, minting one on first sight. static
// selectors (§4.4's :static()) reuse the same table so repeated
// compilations keep stable names, same as any other class/id — the only
// difference from a plain selector is that the caller records its Rename
// under a table the markup pass will NOT strip from server-rendered
// output (handled by the compiler driver, not here).
func (p *Processor) rename(old, kind string, static bool) Rename {
	if existing, ok := p.Table.lookup(old, kind); ok {
		return Rename{Old: old, New: existing, Type: kind}
	}
	seed := p.Component + "::" + kind + "::" + old
	hash := p.Allocator.Generate(seed, p.Opts.Hash.Min, p.Opts.Hash.Max)
	p.Table.set(old, kind, hash)
	return Rename{Old: old, New: hash, Type: kind}
}

func (p *Processor) screenMediaQuery(bp string) string {
	size, ok := p.Opts.Breakpoints.Sizes[bp]
	if !ok {
		return "@media screen"
	}
	unit := p.Opts.Breakpoints.Unit
	if unit == "" {
		unit = "px"
	}
	return fmt.Sprintf("@media (min-width: %s%s)", size, unit)
}

// blockCapture accumulates the raw already-scoped declaration text of an
// `@block <name> { ... }` region so a later `@include <name>` can splice
// it back in verbatim.
type blockCapture struct {
	name  string
	body  strings.Builder
	depth int
}

func (b *blockCapture) feed(gt css.GrammarType, data []byte) bool {
	switch gt {
	case css.BeginRulesetGrammar, css.BeginAtRuleGrammar:
		b.depth++
		b.body.Write(data)
		b.body.WriteByte('{')
	case css.EndRulesetGrammar, css.EndAtRuleGrammar:
		b.depth--
		if b.depth == 0 {
			return true // this is @block's own closing brace, not part of the body
		}
		b.body.WriteByte('}')
	case css.DeclarationGrammar:
		b.body.Write(data)
		b.body.WriteByte(':')
	default:
		b.body.Write(data)
	}
	return false
}

func firstIdent(values []css.Token) string {
	for _, v := range values {
		if v.TokenType == css.WhitespaceToken {
			continue
		}
		return strings.Trim(string(v.Data), "()")
	}
	return ""
}

func valuesText(values []css.Token) string {
	var b strings.Builder
	for _, v := range values {
		b.Write(v.Data)
	}
	return b.String()
}

func nextData(values []css.Token, i int) string {
	if i+1 < len(values) {
		return string(values[i+1].Data)
	}
	return ""
}

