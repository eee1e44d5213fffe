package internal

// Target selects which of the two independent outputs a compilation
// produces (§1, §6).
type Target string

const (
	CSR Target = "csr"
	SSR Target = "ssr"
)

// CSSCompileMode selects how the scoped stylesheet reaches the page.
type CSSCompileMode string

const (
	CSSInjected CSSCompileMode = "injected"
	CSSExternal CSSCompileMode = "external"
)

// CSSHashOptions bounds the length of generated scoped-style hashes (§4.5).
type CSSHashOptions struct {
	Min int
	Max int
}

// PatternFunc lets a caller override hash generation; see §6
// `css.pattern({name,min,max,component}) → string`.
type PatternFunc func(name string, min, max int, component string) string

type BreakpointOptions struct {
	Sizes map[string]string
	Unit  string
}

type NtUnitOptions struct {
	Multiplier float64
	Unit       string
}

type CSSOptions struct {
	Compile      CSSCompileMode
	Hash         CSSHashOptions
	Pattern      PatternFunc
	Colors       bool
	Nesting      bool
	MediaQueries bool
	Selectors    bool
	Breakpoints  BreakpointOptions
	NtUnit       NtUnitOptions
}

type ComponentOptions struct {
	File string
	Name string
}

// Options is the frozen per-compilation configuration described in §3 and
// §6. A caller builds one, passes it to Compile, and never mutates it
// afterward — a fresh Options is built per compilation, matching the
// teacher's TransformOptions-by-value convention.
type Options struct {
	Target Target
	CSS    CSSOptions

	// CacheMemory enables C10's skip-if-unchanged compile reuse.
	CacheMemory bool

	Component ComponentOptions

	// ExternalStyle (the `$.external.style` option from §6), when
	// non-empty, makes Compile return the stylesheet in Result.CSS. Its
	// value is not otherwise read; no stylesheet filename is derived.
	ExternalStyle string
}

func (o Options) IsSSR() bool {
	return o.Target == SSR
}

// DefaultCSSHash holds hash length bounds of 6 to 8. When a caller
// supplies no bounds, style.Allocator.Generate uses length 6 for both.
var DefaultCSSHash = CSSHashOptions{Min: 6, Max: 8}
