package script

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// ChangedStyle mirrors style.Rename without creating a package dependency
// between script and style (both are leaf packages the compiler driver
// wires together).
type ChangedStyle struct {
	Old, New, Type string
}

// PreparedScript is the result of PrepareScript (§4.3).
type PreparedScript struct {
	Raw                    string
	FunctionNames          []string
	HasComputed            bool
	UpdatedDependencies    []string
	HasUpdatedDependencies bool
	// ComputedDependencies are dependencies discovered while lowering `$:`
	// statements (the right-hand side of `$: id = expr`, per §4.3 step 3)
	// that the caller should fold into the component's dependency set.
	ComputedDependencies []string
}

var labelRe = regexp2.MustCompile(`\$:\s*`, regexp2.None)

// PrepareScript rewrites changedStyles string literals, lowers `$:` labeled
// statements into runtime `computed(...)` calls, and — for csr only —
// injects update-notification calls at the end of functions that mutate a
// tracked dependency. See §4.3 steps 1-5.
func PrepareScript(raw string, dependencies []string, functionDependencies []string, changedStyles []ChangedStyle, ssr bool) PreparedScript {
	out := rewriteChangedStyleLiterals(raw, changedStyles)

	updated := map[string]bool{}
	hasComputed := false
	var computedDeps []string
	out = lowerLabeledStatements(out, &hasComputed, updated, &computedDeps, ssr)

	functionNames := collectFunctionNames(out)

	if !ssr {
		out = injectUpdateCalls(out, dependencies, functionDependencies, functionNames, updated)
	}

	updatedList := make([]string, 0, len(updated))
	for d := range updated {
		updatedList = append(updatedList, d)
	}

	return PreparedScript{
		Raw:                    out,
		FunctionNames:          functionNames,
		HasComputed:            hasComputed,
		UpdatedDependencies:    updatedList,
		HasUpdatedDependencies: len(updatedList) > 0,
		ComputedDependencies:   computedDeps,
	}
}

func rewriteChangedStyleLiterals(raw string, changed []ChangedStyle) string {
	if len(changed) == 0 {
		return raw
	}
	strLit := regexp.MustCompile(`(["'])((?:\\.|[^\\])*?)(["'])`)
	return strLit.ReplaceAllStringFunc(raw, func(m string) string {
		sub := strLit.FindStringSubmatch(m)
		quote, inner := sub[1], sub[2]
		for _, cs := range changed {
			if inner == cs.Old {
				return quote + cs.New + quote
			}
		}
		return m
	})
}

// lowerLabeledStatements finds every `$:` label in order and replaces its
// statement with the csr/ssr lowering described in §4.3 step 3.
func lowerLabeledStatements(src string, hasComputed *bool, updated map[string]bool, computedDeps *[]string, ssr bool) string {
	for {
		m, _ := labelRe.FindStringMatch(src)
		if m == nil {
			break
		}
		labelStart := m.Index
		bodyStart := m.Index + m.Length
		stmtEnd := findStatementEnd(src, bodyStart)
		stmt := src[bodyStart:stmtEnd]

		replacement := lowerOneComputed(stmt, updated, computedDeps, ssr)
		*hasComputed = true

		src = src[:labelStart] + replacement + src[stmtEnd:]
	}
	return src
}

// findStatementEnd walks forward from start, tracking paren/brace/bracket
// depth and quotes, and returns the index just past the terminating `;`
// (or end of line if none is found at depth 0).
func findStatementEnd(src string, start int) int {
	depth := 0
	var quote byte
	i := start
	for i < len(src) {
		c := src[i]
		if quote != 0 {
			if c == '\\' {
				i += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ';':
			if depth <= 0 {
				return i + 1
			}
		case '\n':
			if depth <= 0 {
				return i
			}
		}
		i++
	}
	return len(src)
}

func lowerOneComputed(stmt string, updated map[string]bool, computedDeps *[]string, ssr bool) string {
	trimmed := strings.TrimRight(strings.TrimSpace(stmt), ";")
	body := ParseExpression(trimmed)

	switch body.Kind {
	case SequenceExpr:
		if len(body.Expressions) >= 2 {
			depExpr := body.Expressions[0]
			action := body.Expressions[len(body.Expressions)-1]
			deps := FindDependencies(depExpr, "")
			if len(deps) == 0 {
				if n := memberOrIdentName(depExpr); n != "" {
					deps = []string{n}
				}
			}
			if ssr {
				return sliceSrc(trimmed, action.Start, action.End) + ";"
			}
			depsFn := "() => " + joinDeps(deps)
			return fmt.Sprintf("$.computed(() => (%s), %s);", sliceSrc(trimmed, action.Start, action.End), depsFn)
		}
	case ArrowFunction, FunctionDecl:
		if ssr {
			return sliceSrc(trimmed, body.Body.Start, body.Body.End) + ";"
		}
		return fmt.Sprintf("$.computed(%s);", trimmed)
	case AssignmentExpr:
		name := memberOrIdentName(body.Left)
		if name != "" {
			updated[name] = true
		}
		*computedDeps = append(*computedDeps, FindDependencies(body.Right, "")...)
		if ssr {
			return trimmed + ";"
		}
		return fmt.Sprintf("let %s; $.computed(() => { %s; });", name, trimmed)
	case CallExpr:
		if ssr {
			return trimmed + ";"
		}
		return fmt.Sprintf("$.computed(() => { %s; });", trimmed)
	}
	if ssr {
		return trimmed + ";"
	}
	return fmt.Sprintf("$.computed(() => { %s; });", trimmed)
}

func memberOrIdentName(e *Expr) string {
	if e == nil {
		return ""
	}
	if e.Kind == Identifier || e.Kind == MemberExpr {
		return FlattenMemberPath(e)
	}
	return ""
}

func joinDeps(deps []string) string {
	if len(deps) == 0 {
		return "[]"
	}
	if len(deps) == 1 {
		return deps[0]
	}
	return "[" + strings.Join(deps, ", ") + "]"
}

var funcDeclRe = regexp.MustCompile(`\bfunction\s+([A-Za-z_$][\w$]*)\s*\(`)
var letArrowRe = regexp.MustCompile(`\b(?:let|const|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:\([^)]*\)|[A-Za-z_$][\w$]*)\s*=>`)

// collectFunctionNames gathers declared function names and `let f = (…)=>…`
// bindings, per §4.3 step 5.
func collectFunctionNames(src string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range funcDeclRe.FindAllStringSubmatch(src, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	for _, m := range letArrowRe.FindAllStringSubmatch(src, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// injectUpdateCalls walks each function declaration / arrow-assigned
// function and, if its body mutates an identifier in dependencies (or is
// named in functionDependencies), appends a `$u();` call at the end of the
// body — unless the body already contains a `return` statement, per §4.3
// step 4.
func injectUpdateCalls(src string, dependencies []string, functionDependencies []string, functionNames []string, updated map[string]bool) string {
	forced := map[string]bool{}
	for _, n := range functionDependencies {
		forced[n] = true
	}

	type fnBody struct {
		name       string
		start, end int // body span, exclusive of braces
	}
	var bodies []fnBody

	for _, loc := range funcDeclRe.FindAllStringSubmatchIndex(src, -1) {
		name := src[loc[2]:loc[3]]
		braceStart := strings.IndexByte(src[loc[1]:], '{')
		if braceStart == -1 {
			continue
		}
		braceStart += loc[1]
		end := matchingBrace(src, braceStart)
		if end == -1 {
			continue
		}
		bodies = append(bodies, fnBody{name: name, start: braceStart + 1, end: end})
	}
	for _, loc := range letArrowRe.FindAllStringSubmatchIndex(src, -1) {
		name := src[loc[2]:loc[3]]
		arrowIdx := strings.Index(src[loc[1]:], "=>")
		if arrowIdx == -1 {
			continue
		}
		bodyStart := loc[1] + arrowIdx + 2
		for bodyStart < len(src) && (src[bodyStart] == ' ' || src[bodyStart] == '\t' || src[bodyStart] == '\n') {
			bodyStart++
		}
		if bodyStart >= len(src) || src[bodyStart] != '{' {
			continue // expression-bodied arrow, nothing to inject into safely
		}
		end := matchingBrace(src, bodyStart)
		if end == -1 {
			continue
		}
		bodies = append(bodies, fnBody{name: name, start: bodyStart + 1, end: end})
	}

	// Apply edits back-to-front so earlier offsets stay valid.
	for i := len(bodies) - 1; i >= 0; i-- {
		fb := bodies[i]
		body := src[fb.start:fb.end]
		if strings.Contains(body, "return") {
			continue
		}
		touches := false
		for _, dep := range dependencies {
			if mutatesIdentifier(body, dep) {
				updated[dep] = true
				touches = true
			}
		}
		if forced[fb.name] {
			touches = true
		}
		if !touches {
			continue
		}
		src = src[:fb.end] + "\n$u();" + src[fb.end:]
	}
	return src
}

func matchingBrace(src string, open int) int {
	depth := 0
	var quote byte
	i := open
	for i < len(src) {
		c := src[i]
		if quote != 0 {
			if c == '\\' {
				i += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

var assignTo = func(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*(?:=[^=]|\+\+|--|\+=|-=|\*=|/=)`)
}

func mutatesIdentifier(body, name string) bool {
	return assignTo(name).MatchString(body)
}
