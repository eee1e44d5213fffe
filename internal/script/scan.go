package script

import "unicode"

type tokKind int

const (
	tEOF tokKind = iota
	tIdent
	tNumber
	tString
	tTemplate
	tPunct
	tKeyword
)

type token struct {
	kind  tokKind
	text  string
	start int
	end   int
}

var keywords = map[string]bool{
	"function": true, "let": true, "const": true, "var": true, "return": true,
	"if": true, "else": true, "for": true, "while": true, "new": true,
	"typeof": true, "true": true, "false": true, "null": true, "undefined": true,
	"this": true, "of": true, "in": true,
}

// scanner tokenizes a JS-like snippet. It understands line/block comments,
// single/double-quoted strings, template literals (without nested
// `${}` expression tokenization — treated as opaque, matching the
// teacher's js_scanner posture of treating most literal content as
// black-box text), and the punctuator set the expression grammar needs.
type scanner struct {
	src []byte
	pos int
}

func newScanner(src string) *scanner {
	return &scanner{src: []byte(src)}
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peekByte() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) skipTrivia() {
	for !s.eof() {
		c := s.peekByte()
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			s.pos++
			continue
		}
		if c == '/' && s.pos+1 < len(s.src) {
			if s.src[s.pos+1] == '/' {
				for !s.eof() && s.peekByte() != '\n' {
					s.pos++
				}
				continue
			}
			if s.src[s.pos+1] == '*' {
				s.pos += 2
				for !s.eof() && !(s.peekByte() == '*' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/') {
					s.pos++
				}
				s.pos += 2
				continue
			}
		}
		break
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// next returns the next token, advancing the cursor.
func (s *scanner) next() token {
	s.skipTrivia()
	start := s.pos
	if s.eof() {
		return token{kind: tEOF, start: start, end: start}
	}
	c := rune(s.peekByte())

	if c == '"' || c == '\'' {
		quote := byte(c)
		s.pos++
		for !s.eof() && s.peekByte() != quote {
			if s.peekByte() == '\\' {
				s.pos++
			}
			s.pos++
		}
		if !s.eof() {
			s.pos++
		}
		return token{kind: tString, text: string(s.src[start:s.pos]), start: start, end: s.pos}
	}

	if c == '`' {
		s.pos++
		depth := 0
		for !s.eof() {
			b := s.peekByte()
			if b == '\\' {
				s.pos += 2
				continue
			}
			if b == '`' && depth == 0 {
				s.pos++
				break
			}
			if b == '$' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '{' {
				depth++
				s.pos += 2
				continue
			}
			if b == '}' && depth > 0 {
				depth--
			}
			s.pos++
		}
		return token{kind: tTemplate, text: string(s.src[start:s.pos]), start: start, end: s.pos}
	}

	if isIdentStart(c) {
		for !s.eof() && isIdentPart(rune(s.peekByte())) {
			s.pos++
		}
		text := string(s.src[start:s.pos])
		kind := tIdent
		if keywords[text] {
			kind = tKeyword
		}
		return token{kind: kind, text: text, start: start, end: s.pos}
	}

	if c >= '0' && c <= '9' {
		for !s.eof() && (isDigitByte(s.peekByte()) || s.peekByte() == '.') {
			s.pos++
		}
		return token{kind: tNumber, text: string(s.src[start:s.pos]), start: start, end: s.pos}
	}

	// Multi-byte punctuators, longest-match first.
	for _, p := range []string{"=>", "===", "!==", "==", "!=", "<=", ">=", "&&", "||", "??", "+=", "-=", "*=", "/=", "...", "?."} {
		if s.pos+len(p) <= len(s.src) && string(s.src[s.pos:s.pos+len(p)]) == p {
			s.pos += len(p)
			return token{kind: tPunct, text: p, start: start, end: s.pos}
		}
	}
	s.pos++
	return token{kind: tPunct, text: string(c), start: start, end: s.pos}
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

// Tokenize returns every token in src as a flat stream (the expression
// Parser built by NewParser consumes it).
func Tokenize(src string) []token {
	s := newScanner(src)
	var toks []token
	for {
		t := s.next()
		if t.kind == tEOF {
			break
		}
		toks = append(toks, t)
	}
	return toks
}
