package script

// depCtx accumulates the state FindDependencies needs while walking an
// expression tree, matching the bookkeeping §4.3 describes.
type depCtx struct {
	deps              []string
	seen              map[string]bool
	memberExpressions []string
	memberSeen        map[string]bool
	hasParameters     bool
	isCallee          bool
}

func newDepCtx() *depCtx {
	return &depCtx{seen: map[string]bool{}, memberSeen: map[string]bool{}}
}

func (c *depCtx) addDependency(name string) {
	if name == "" || c.seen[name] {
		return
	}
	c.seen[name] = true
	c.deps = append(c.deps, name)
}

func (c *depCtx) addMember(path string) {
	if path == "" || c.memberSeen[path] {
		return
	}
	c.memberSeen[path] = true
	c.memberExpressions = append(c.memberExpressions, path)
}

func addIfIdentifier(c *depCtx, e *Expr) {
	if e != nil && e.Kind == Identifier {
		c.addDependency(e.Name)
	}
}

func walkDeps(c *depCtx, e *Expr) {
	if e == nil {
		return
	}
	switch e.Kind {
	case Identifier:
		c.addDependency(e.Name)
	case MemberExpr:
		c.addMember(FlattenMemberPath(e))
		// A computed property, e.g. a[b], may itself reference a dependency.
		if e.Computed {
			walkDeps(c, e.Property)
		}
	case CallExpr:
		if e.Callee != nil && e.Callee.Kind == MemberExpr {
			c.isCallee = true
			c.addMember(FlattenMemberPath(e.Callee))
		} else {
			walkDeps(c, e.Callee)
		}
		for _, arg := range e.Arguments {
			walkDeps(c, arg)
		}
	case ArrowFunction:
		if len(e.Params) > 0 {
			c.hasParameters = true
		}
		if e.Body != nil && e.Body.Kind == Identifier {
			c.addDependency(e.Body.Name)
		} else {
			walkDeps(c, e.Body)
		}
	case FunctionDecl:
		if len(e.Params) > 0 {
			c.hasParameters = true
		}
	case AssignmentExpr:
		walkDeps(c, e.Left)
		walkDeps(c, e.Right)
	case SequenceExpr:
		for _, ex := range e.Expressions {
			walkDeps(c, ex)
		}
	case BinaryExpr:
		addIfIdentifier(c, e.Test)
		addIfIdentifier(c, e.Alternate)
		walkDeps(c, e.Test)
		walkDeps(c, e.Alternate)
	case ConditionalExpr:
		addIfIdentifier(c, e.Test)
		walkDeps(c, e.Test)
		walkDeps(c, e.Consequent)
		walkDeps(c, e.Alternate)
	case LabeledStatement:
		walkDeps(c, e.Body)
	}
}

// FindDependencies extracts the unique ordered set of identifier/member-path
// dependencies from an expression tree, per the rules in §4.3. content, if
// given, is the raw source text of the analyzed snippet; a lone dependency
// equal to it is suppressed to avoid the trivial self-reference described
// for `{x}`-shaped attributes.
func FindDependencies(e *Expr, content string) []string {
	c := newDepCtx()
	walkDeps(c, e)

	result := append([]string{}, c.deps...)
	if len(c.memberExpressions) > 0 && !c.hasParameters && !c.isCallee {
		last := c.memberExpressions[len(c.memberExpressions)-1]
		found := false
		for _, d := range result {
			if d == last {
				found = true
				break
			}
		}
		if !found {
			result = append(result, last)
		}
	}

	if len(result) == 1 && result[0] == content {
		return nil
	}
	return result
}

// CheckDependencies reports whether content is, or is rooted at, one of deps
// (`dep`, `dep.`, or `dep[`).
func CheckDependencies(content string, deps []string) bool {
	for _, dep := range deps {
		if content == dep {
			return true
		}
		if len(content) > len(dep) && content[:len(dep)] == dep {
			next := content[len(dep)]
			if next == '.' || next == '[' {
				return true
			}
		}
	}
	return false
}
