// Package session implements C10: the process-wide registry that
// persists across files until the process ends (§4.10) and the
// top-level Compile entry point that wires C1-C9 together in the order
// §2's control flow prescribes. It is the one piece of shared mutable
// state the rest of the pipeline touches — everything else (SourceFile,
// Component, Figure) is created fresh per compilation and discarded
// after (§3's Lifecycles paragraph).
package session

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/iancoleman/strcase"

	astro "github.com/kodla-dev/renit-sub000/internal"
	"github.com/kodla-dev/renit-sub000/internal/compiler"
	"github.com/kodla-dev/renit-sub000/internal/handler"
	"github.com/kodla-dev/renit-sub000/internal/ir"
	"github.com/kodla-dev/renit-sub000/internal/loc"
	"github.com/kodla-dev/renit-sub000/internal/parser"
	"github.com/kodla-dev/renit-sub000/internal/printer"
	"github.com/kodla-dev/renit-sub000/internal/script"
	"github.com/kodla-dev/renit-sub000/internal/source"
	"github.com/kodla-dev/renit-sub000/internal/style"
)

// Result is the generated-program half of §6's output record.
type Result struct {
	JS  string
	CSS string
}

// CompileOutput is the full record §6 describes: a possibly-partial
// Result plus every diagnostic the compilation raised, errors first.
type CompileOutput struct {
	Result Result
	Errors []loc.DiagnosticMessage
}

type fileEntry struct {
	file   *source.File
	output CompileOutput
}

// Session is the process-wide registry (§4.10): per-file cached
// results, the cross-file `:global` style table, and the @block/
// @include and CSS custom-property memos that persist across files
// until process end. Mutation is append-only or update-existing —
// style renames in particular are monotonic, matching §5's "no
// retract" rule — and the whole thing is guarded by a single mutex
// since §5 requires shared state to be safe under concurrent
// compilations.
type Session struct {
	mu sync.Mutex

	files           map[string]*fileEntry
	globalStyles    style.Table
	componentStyles map[string]style.Table
	variables       map[string]string
	atVariables     map[string]string
	blocks          map[string]string
	hashes          *style.Allocator
	scopeHashes     map[string]string
}

func New() *Session {
	return &Session{
		files:           map[string]*fileEntry{},
		globalStyles:    style.Table{},
		componentStyles: map[string]style.Table{},
		variables:       map[string]string{},
		atVariables:     map[string]string{},
		blocks:          map[string]string{},
		hashes:          style.NewAllocator(),
		scopeHashes:     map[string]string{},
	}
}

func (s *Session) componentTable(component string) style.Table {
	t, ok := s.componentStyles[component]
	if !ok {
		t = style.Table{}
		s.componentStyles[component] = t
	}
	return t
}

// scopeHash is the stylesheet identity `$.style(hash, css)` tags its
// injected <style> with — stable per component for the Session's
// lifetime, independent of the class/id rename table.
func (s *Session) scopeHash(component, file string) string {
	if h, ok := s.scopeHashes[component]; ok {
		return h
	}
	h := s.hashes.Generate(component+"::scope::"+file, 6, 8)
	s.scopeHashes[component] = h
	return h
}

// Compile runs the full pipeline for one source file: C2 parses it, C4
// scopes its <style> block, a two-pass C3/C7 collaboration lowers its
// <script> and classifies every dynamic spot, and C8 or C9 emits the
// chosen target (§2). Identical (path, code) pairs short-circuit to the
// previous Result when opts.CacheMemory is set (§4.10, §6 `cache.memory`).
func (s *Session) Compile(path, code string, opts astro.Options) CompileOutput {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.CacheMemory {
		if fe, ok := s.files[path]; ok && fe.file.Code == code {
			fmt.Printf("renit: reusing cached result for %s\n", path)
			return fe.output
		}
	}

	file := source.New(path, code)
	h := handler.New(file)
	doc := parser.Parse(file, h)

	componentName := opts.Component.Name
	if componentName == "" {
		componentName = componentNameFromPath(path)
	}

	scriptRaw, styleRaw := extractScriptStyle(doc)

	css, thisHash, thisKind, changedStyles := s.processStyle(h, componentName, styleRaw, opts)

	ssr := opts.IsSSR()
	driver := compiler.New(opts, h)

	// Pass 1 (discovery): walk the markup once against a throwaway
	// component so PrepareScript (§4.3) has the template's actual
	// dependency set before it decides which script functions mutate a
	// tracked one — the driver can't make that call itself since it
	// needs the *already-lowered* script to know which dependencies are
	// "updated" (compiler_test.go's Driver.Compile takes
	// UpdatedDependencies as a precondition, not an output).
	discovery := ir.NewComponent(componentName, string(opts.Target))
	driver.Compile(discovery, doc, "", "")
	functionDeps := collectFunctionDependencies(doc)

	prepared := script.PrepareScript(scriptRaw, discovery.Dependencies.Items(), functionDeps, changedStyles, ssr)

	// Pass 2 (real): a fresh Component so reference ids, the skeleton,
	// and spot classification all reflect what the script pass found.
	comp := ir.NewComponent(componentName, string(opts.Target))
	comp.UpdatedDependencies.AddAll(prepared.UpdatedDependencies)
	comp.FunctionNames.AddAll(prepared.FunctionNames)
	comp.FunctionDependencies.AddAll(functionDeps)
	comp.Props = extractProps(scriptRaw)
	comp.ScriptStatement = prepared.Raw
	comp.Style = css
	for _, cs := range changedStyles {
		comp.ChangedStyles = append(comp.ChangedStyles, ir.ChangedStyle{Old: cs.Old, New: cs.New, Type: cs.Type})
	}
	comp.Flags.Context = strings.Contains(scriptRaw, "$context")
	comp.Flags.Current = strings.Contains(scriptRaw, "$current")
	comp.Flags.HasUpdate = prepared.HasUpdatedDependencies || prepared.HasComputed || len(comp.Props) > 0
	comp.Flags.RootEvent = rootHasEvent(doc)

	driver.Compile(comp, doc, thisHash, thisKind)
	comp.Dependencies.AddAll(prepared.ComputedDependencies)

	external := opts.CSS.Compile == astro.CSSExternal
	scopeHash := s.scopeHash(componentName, path)

	var js string
	if ssr {
		js = printer.PrintSSR(comp, printer.SSROptions{StyleHash: scopeHash, External: external})
	} else {
		js = printer.PrintCSR(comp, printer.CSROptions{StyleHash: scopeHash, External: external})
	}

	outCSS := ""
	if external {
		outCSS = css
	}
	if opts.ExternalStyle != "" {
		outCSS = css
	}

	out := CompileOutput{Result: Result{JS: js, CSS: outCSS}, Errors: h.Diagnostics()}
	s.files[path] = &fileEntry{file: file, output: out}
	return out
}

// processStyle runs C4 against the component's <style> body, folding any
// `this` selector into (thisHash, thisKind) per §4.4 ("Special name
// `this`... the Document compiler attaches that hash as a class or id
// attribute on the root element") and everything else into the
// changedStyles list C3's PrepareScript needs for literal-rewriting.
func (s *Session) processStyle(h *handler.Handler, component, raw string, opts astro.Options) (css, thisHash, thisKind string, changed []script.ChangedStyle) {
	if raw == "" {
		return "", "", "", nil
	}
	proc := style.NewProcessor(s.hashes, s.componentTable(component), s.globalStyles, s.blocks, component, opts.CSS)
	result, err := proc.Process(raw)
	if err != nil {
		h.AppendWarning(&loc.ErrorWithRange{Code: loc.WARNING_CSS_PARSE, Text: err.Error()})
		return "", "", "", nil
	}
	css = result.CSS
	for _, r := range result.Renames {
		if r.Old == "this" {
			thisHash, thisKind = r.New, r.Type
			continue
		}
		changed = append(changed, script.ChangedStyle{Old: r.Old, New: r.New, Type: r.Type})
	}
	return css, thisHash, thisKind, changed
}

func extractScriptStyle(doc *astro.Node) (scriptRaw, styleRaw string) {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case astro.ScriptNode:
			scriptRaw = textOf(c)
		case astro.StyleNode:
			styleRaw = textOf(c)
		}
	}
	return
}

func textOf(n *astro.Node) string {
	if n.FirstChild != nil {
		return n.FirstChild.Data
	}
	return ""
}

// collectFunctionDependencies finds every event/action handler that
// directly calls a bare top-level function (`@click="inc()"`) and
// returns the called names — the set PrepareScript's step 4 forces a
// `$u()` injection for regardless of what the function body mutates.
func collectFunctionDependencies(doc *astro.Node) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(*astro.Node)
	walk = func(n *astro.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			for _, a := range c.Attr {
				if (a.Kind != astro.EventAttribute && a.Kind != astro.ActionAttribute) || a.Val == "" {
					continue
				}
				e := script.ParseExpression(a.Val)
				if e != nil && e.Kind == script.CallExpr && e.Callee != nil && e.Callee.Kind == script.Identifier {
					if !seen[e.Callee.Name] {
						seen[e.Callee.Name] = true
						names = append(names, e.Callee.Name)
					}
				}
			}
			walk(c)
		}
	}
	walk(doc)
	return names
}

// rootHasEvent reports whether the document's root markup element
// carries a plain DOM event listener directly — the `$.rootEvent($parent)`
// forwarding hook (§4.8) only makes sense when one does.
func rootHasEvent(doc *astro.Node) bool {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == astro.ElementNode || c.Type == astro.ComponentNode {
			for _, a := range c.Attr {
				if a.Kind == astro.EventAttribute {
					return true
				}
			}
			return false
		}
	}
	return false
}

var exportLetRe = regexp.MustCompile(`export\s+let\s+([A-Za-z_$][\w$]*)`)

// extractProps finds `export let name` declarations — the authoring
// convention for a component's external props — so the emitter can
// build the `$option.props` destructuring §4.8 describes.
func extractProps(raw string) []string {
	var props []string
	seen := map[string]bool{}
	for _, m := range exportLetRe.FindAllStringSubmatch(raw, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			props = append(props, m[1])
		}
	}
	return props
}

func componentNameFromPath(path string) string {
	base := path
	if idx := strings.LastIndexByte(base, '/'); idx != -1 {
		base = base[idx+1:]
	}
	if idx := strings.IndexByte(base, '.'); idx != -1 {
		base = base[:idx]
	}
	return strcase.ToCamel(base)
}
