package loc

import "fmt"

// DiagnosticCode enumerates the recognized diagnostic kinds. Numbering
// follows the syntax/reference/internal grouping from §7 of the spec.
type DiagnosticCode int

const (
	ERROR                          DiagnosticCode = 1000
	ERROR_UNCLOSED_TAG             DiagnosticCode = 1001
	ERROR_UNCLOSED_EXPRESSION      DiagnosticCode = 1002
	ERROR_UNMATCHED_BRACKET        DiagnosticCode = 1003
	ERROR_UNKNOWN_SLOT             DiagnosticCode = 1004
	ERROR_INVALID_REFERENCE        DiagnosticCode = 1005
	ERROR_DUPLICATE_SPOT           DiagnosticCode = 1006
	WARNING                        DiagnosticCode = 2000
	WARNING_UNCLOSED_COMMENT       DiagnosticCode = 2001
	WARNING_CSS_PARSE              DiagnosticCode = 2002
	WARNING_UNRESOLVED_REF         DiagnosticCode = 2003
	WARNING_IGNORED_DIRECTIVE      DiagnosticCode = 2004
	INFO                           DiagnosticCode = 3000
	HINT                           DiagnosticCode = 4000
)

type DiagnosticSeverity int

const (
	ErrorType DiagnosticSeverity = iota
	WarningType
	InformationType
	HintType
)

// ErrorWithRange is the diagnostic payload carried by parser/analyzer
// recoverable errors; it is turned into a DiagnosticMessage once the
// enclosing file's line index is known.
type ErrorWithRange struct {
	Code       DiagnosticCode
	Text       string
	Range      Range
	Suggestion string
}

func (e *ErrorWithRange) Error() string {
	return e.Text
}

// DiagnosticMessage is the user-facing, file-position-resolved form of a
// diagnostic, ready to hand back across the compiler's public boundary.
type DiagnosticMessage struct {
	Code       DiagnosticCode
	Severity   DiagnosticSeverity
	Text       string
	Suggestion string
	Line       int
	Column     int
	Highlight  string
}

func (m DiagnosticMessage) String() string {
	return fmt.Sprintf("%d:%d: %s", m.Line, m.Column, m.Text)
}
