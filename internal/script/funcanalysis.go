package script

// FunctionAnalysis is the result of FunctionExpressionAnalysis, used by
// EventSpot to decide whether to wrap a handler expression in a closure
// and whether to emit an update call after it runs (§4.3).
type FunctionAnalysis struct {
	Function   bool
	Assignment bool
	Identifier bool
	Call       bool
	Lambda     bool
	Params     []string
	Arguments  []string
}

func FunctionExpressionAnalysis(e *Expr) FunctionAnalysis {
	var fa FunctionAnalysis
	if e == nil {
		return fa
	}
	switch e.Kind {
	case FunctionDecl:
		fa.Function = true
		for _, p := range e.Params {
			fa.Params = append(fa.Params, p.Name)
		}
	case ArrowFunction:
		fa.Lambda = true
		for _, p := range e.Params {
			fa.Params = append(fa.Params, p.Name)
		}
	case AssignmentExpr:
		fa.Assignment = true
	case Identifier:
		fa.Identifier = true
	case CallExpr:
		fa.Call = true
		for _, arg := range e.Arguments {
			if arg.Kind == Identifier {
				fa.Arguments = append(fa.Arguments, arg.Name)
			}
		}
	}
	return fa
}
