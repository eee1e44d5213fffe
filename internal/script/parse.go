package script

import "strings"

// Parser is a precedence-climbing recursive-descent parser over the
// scanner's token stream. It implements just the expression grammar §3/§4.3
// need: it does not attempt full ECMAScript statement parsing.
type Parser struct {
	toks []token
	pos  int
	src  string
}

func NewParser(src string) *Parser {
	return &Parser{toks: Tokenize(src), src: src}
}

// ParseExpression parses src as of now. Consult a fresh Parser per call.
func ParseExpression(src string) *Expr {
	p := NewParser(src)
	return p.parseSequence()
}

func (p *Parser) cur() token {
	if p.pos >= len(p.toks) {
		return token{kind: tEOF, start: len(p.src), end: len(p.src)}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekText() string { return p.cur().text }

func (p *Parser) advance() token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) at(text string) bool {
	t := p.cur()
	return (t.kind == tPunct || t.kind == tKeyword) && t.text == text
}

func (p *Parser) eat(text string) bool {
	if p.at(text) {
		p.advance()
		return true
	}
	return false
}

// parseSequence handles the top-level comma operator: `(dep, body)`.
func (p *Parser) parseSequence() *Expr {
	first := p.parseAssignment()
	if !p.at(",") {
		return first
	}
	exprs := []*Expr{first}
	for p.eat(",") {
		exprs = append(exprs, p.parseAssignment())
	}
	return &Expr{Kind: SequenceExpr, Expressions: exprs, Start: first.Start, End: p.prevEnd()}
}

func (p *Parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].end
}

var assignOps = map[string]bool{"=": true, "+=": true, "-=": true, "*=": true, "/=": true}

func (p *Parser) parseAssignment() *Expr {
	// Arrow function lookahead: `ident =>` or `(params) =>`.
	if arrow := p.tryParseArrow(); arrow != nil {
		return arrow
	}
	left := p.parseConditional()
	if t := p.cur(); t.kind == tPunct && assignOps[t.text] {
		op := p.advance().text
		right := p.parseAssignment()
		return &Expr{Kind: AssignmentExpr, Left: left, Right: right, Operator: op, Start: left.Start, End: right.End}
	}
	return left
}

func (p *Parser) tryParseArrow() *Expr {
	start := p.pos
	var params []*Expr

	if t := p.cur(); t.kind == tIdent {
		next := p.toks[safeIdx(p.pos+1, len(p.toks))]
		if next.text == "=>" {
			params = []*Expr{{Kind: Identifier, Name: t.text, Start: t.start, End: t.end}}
			p.pos += 2
			body := p.parseArrowBody()
			return &Expr{Kind: ArrowFunction, Params: params, Body: body, Start: t.start, End: p.prevEnd()}
		}
	}
	if p.at("(") {
		save := p.pos
		p.advance()
		ok := true
		for !p.at(")") && p.cur().kind != tEOF {
			if p.cur().kind != tIdent && p.cur().kind != tKeyword {
				ok = false
				break
			}
			params = append(params, &Expr{Kind: Identifier, Name: p.advance().text})
			if !p.eat(",") {
				break
			}
		}
		if ok && p.eat(")") && p.at("=>") {
			p.advance()
			body := p.parseArrowBody()
			return &Expr{Kind: ArrowFunction, Params: params, Body: body, Start: p.toks[start].start, End: p.prevEnd()}
		}
		p.pos = save
	}
	return nil
}

func safeIdx(i, n int) int {
	if i >= n {
		return n - 1
	}
	if n == 0 {
		return 0
	}
	return i
}

func (p *Parser) parseArrowBody() *Expr {
	if p.at("{") {
		return p.parseBracedBlock()
	}
	return p.parseAssignment()
}

// parseBracedBlock captures a `{ ... }` function/arrow body as an opaque
// Other node spanning its source range; statement-level rewriting within
// function bodies is handled textually in prepare.go rather than by
// recursing the expression grammar into full statement parsing.
func (p *Parser) parseBracedBlock() *Expr {
	startTok := p.cur()
	depth := 0
	start := startTok.start
	for {
		t := p.cur()
		if t.kind == tEOF {
			break
		}
		if t.kind == tPunct && t.text == "{" {
			depth++
		}
		if t.kind == tPunct && t.text == "}" {
			depth--
			p.advance()
			if depth == 0 {
				break
			}
			continue
		}
		p.advance()
	}
	end := p.prevEnd()
	return &Expr{Kind: Other, Name: sliceSrc(p.src, start, end), Start: start, End: end}
}

func sliceSrc(src string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(src) {
		end = len(src)
	}
	if start > end {
		return ""
	}
	return src[start:end]
}

func (p *Parser) parseConditional() *Expr {
	test := p.parseBinary(0)
	if p.eat("?") {
		cons := p.parseAssignment()
		p.eat(":")
		alt := p.parseAssignment()
		return &Expr{Kind: ConditionalExpr, Test: test, Consequent: cons, Alternate: alt, Start: test.Start, End: p.prevEnd()}
	}
	return test
}

var binPrec = map[string]int{
	"??": 1, "||": 1, "&&": 2,
	"==": 5, "!=": 5, "===": 5, "!==": 5,
	"<": 6, ">": 6, "<=": 6, ">=": 6,
	"+": 7, "-": 7,
	"*": 8, "/": 8, "%": 8,
}

func (p *Parser) parseBinary(minPrec int) *Expr {
	left := p.parseUnary()
	for {
		t := p.cur()
		op := t.text
		if t.kind == tKeyword && (op == "in" || op == "of") {
			break
		}
		prec, ok := binPrec[op]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		right := p.parseBinary(prec + 1)
		left = &Expr{Kind: BinaryExpr, Test: left, Alternate: right, Operator: op, Start: left.Start, End: right.End}
	}
	return left
}

func (p *Parser) parseUnary() *Expr {
	if t := p.cur(); t.kind == tPunct && (t.text == "!" || t.text == "-" || t.text == "+") || (t.kind == tKeyword && t.text == "typeof") {
		p.advance()
		operand := p.parseUnary()
		return &Expr{Kind: Other, Name: t.text, Right: operand, Start: t.start, End: operand.End}
	}
	return p.parseCallMember(p.parsePrimary())
}

func (p *Parser) parseCallMember(base *Expr) *Expr {
	for {
		if p.eat(".") {
			nameTok := p.advance()
			prop := &Expr{Kind: Identifier, Name: nameTok.text, Start: nameTok.start, End: nameTok.end}
			base = &Expr{Kind: MemberExpr, Object: base, Property: prop, Computed: false, Start: base.Start, End: prop.End}
			continue
		}
		if p.eat("?.") {
			nameTok := p.advance()
			prop := &Expr{Kind: Identifier, Name: nameTok.text, Start: nameTok.start, End: nameTok.end}
			base = &Expr{Kind: MemberExpr, Object: base, Property: prop, Computed: false, Start: base.Start, End: prop.End}
			continue
		}
		if p.eat("[") {
			prop := p.parseSequence()
			p.eat("]")
			base = &Expr{Kind: MemberExpr, Object: base, Property: prop, Computed: true, Start: base.Start, End: p.prevEnd()}
			continue
		}
		if p.at("(") {
			p.advance()
			var args []*Expr
			for !p.at(")") && p.cur().kind != tEOF {
				args = append(args, p.parseAssignment())
				if !p.eat(",") {
					break
				}
			}
			p.eat(")")
			isMemberCallee := base.Kind == MemberExpr
			_ = isMemberCallee
			base = &Expr{Kind: CallExpr, Callee: base, Arguments: args, Start: base.Start, End: p.prevEnd()}
			continue
		}
		break
	}
	return base
}

func (p *Parser) parsePrimary() *Expr {
	t := p.cur()
	switch {
	case t.kind == tIdent:
		p.advance()
		return &Expr{Kind: Identifier, Name: t.text, Start: t.start, End: t.end}
	case t.kind == tKeyword && (t.text == "true" || t.text == "false" || t.text == "null" || t.text == "undefined" || t.text == "this"):
		p.advance()
		return &Expr{Kind: Literal, Name: t.text, Start: t.start, End: t.end}
	case t.kind == tNumber || t.kind == tString || t.kind == tTemplate:
		p.advance()
		return &Expr{Kind: Literal, Name: t.text, Start: t.start, End: t.end}
	case t.kind == tKeyword && t.text == "function":
		return p.parseFunctionExpr()
	case t.kind == tKeyword && t.text == "new":
		p.advance()
		callee := p.parseCallMember(p.parsePrimary())
		return &Expr{Kind: Other, Name: "new", Right: callee, Start: t.start, End: p.prevEnd()}
	case t.kind == tPunct && t.text == "(":
		p.advance()
		inner := p.parseSequence()
		p.eat(")")
		return inner
	case t.kind == tPunct && (t.text == "[" || t.text == "{"):
		return p.parseBracedBlock2(t.text)
	default:
		p.advance()
		return &Expr{Kind: Other, Name: t.text, Start: t.start, End: t.end}
	}
}

// parseBracedBlock2 consumes a balanced [...] or {...} literal as opaque
// text (array/object literals are not decomposed further, and
// FindDependencies does not collect identifiers from inside them).
func (p *Parser) parseBracedBlock2(open string) *Expr {
	close := "]"
	if open == "{" {
		close = "}"
	}
	start := p.cur().start
	depth := 0
	for {
		t := p.cur()
		if t.kind == tEOF {
			break
		}
		if t.text == open {
			depth++
		}
		if t.text == close {
			depth--
			p.advance()
			if depth == 0 {
				break
			}
			continue
		}
		p.advance()
	}
	end := p.prevEnd()
	return &Expr{Kind: Other, Name: sliceSrc(p.src, start, end), Start: start, End: end}
}

func (p *Parser) parseFunctionExpr() *Expr {
	start := p.cur().start
	p.advance() // 'function'
	name := ""
	if p.cur().kind == tIdent {
		name = p.advance().text
	}
	var params []*Expr
	if p.eat("(") {
		for !p.at(")") && p.cur().kind != tEOF {
			if p.cur().kind == tIdent || p.cur().kind == tKeyword {
				params = append(params, &Expr{Kind: Identifier, Name: p.advance().text})
			} else {
				p.advance()
			}
			if !p.eat(",") {
				break
			}
		}
		p.eat(")")
	}
	body := p.parseBracedBlock()
	return &Expr{Kind: FunctionDecl, FuncName: name, Params: params, Body: body, Start: start, End: p.prevEnd()}
}

// ParseLabeledStatement parses a leading `$: <rest>` reactive statement
// (the "computed" form from §4.3). It returns nil if src does not begin
// with the `$:` label after skipping leading whitespace.
func ParseLabeledStatement(src string) *Expr {
	trimmed := strings.TrimLeft(src, " \t\r\n")
	offset := len(src) - len(trimmed)
	if !strings.HasPrefix(trimmed, "$:") {
		return nil
	}
	rest := trimmed[2:]
	restOffset := offset + 2
	p := NewParser(rest)
	var body *Expr
	if p.at("{") {
		body = p.parseBracedBlock()
	} else {
		body = p.parseSequence()
	}
	return &Expr{Kind: LabeledStatement, Label: "$:", Body: body, Start: restOffset, End: restOffset + body.End}
}
