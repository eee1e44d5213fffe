// Package testutil adapts the teacher's internal/test_utils package for
// this compiler's own output shapes: generated JS (csr/ssr) and scoped
// CSS instead of Astro's JSX, plus a unified-diff helper for the cases
// where a snapshot-style `-want`/`+got` rendering is more useful than a
// single failure string.
package testutil

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/google/go-cmp/cmp"
	"github.com/lithammer/dedent"
	"github.com/pkg/diff"
)

// Dedent strips common leading whitespace and collapses runs of blank
// lines the way hand-indented test fixtures accumulate them.
func Dedent(input string) string {
	return dedent.Dedent(
		strings.ReplaceAll(
			strings.TrimLeft(strings.TrimRight(input, " \n\r"), " \t\r\n"),
			"\n\n\n", "\n\n"),
	)
}

// CmpDiff renders an ANSI-colored structural diff between two values of
// any comparable shape (Component flags, OrderedSet contents, …), for
// assertions where `got != want` alone wouldn't show what differs.
func CmpDiff(x, y interface{}, opts ...cmp.Option) string {
	d := cmp.Diff(x, y, opts...)
	if d == "" {
		return ""
	}
	lines := strings.Split(d, "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "-"):
			lines[i] = "\x1b[31m" + l + "\x1b[0m"
		case strings.HasPrefix(l, "+"):
			lines[i] = "\x1b[32m" + l + "\x1b[0m"
		}
	}
	return strings.Join(lines, "\n")
}

// UnifiedDiff renders a line-based unified diff of two generated-source
// strings — the emitter output is long enough that a plain string
// mismatch is hard to read without one.
func UnifiedDiff(t *testing.T, wantName, gotName, want, got string) string {
	t.Helper()
	var b strings.Builder
	if err := diff.Text(wantName, gotName, want, got, &b); err != nil {
		t.Fatalf("UnifiedDiff: %v", err)
	}
	return b.String()
}

// OutputKind labels what a snapshot's Output field holds, purely for
// the fenced code block language tag in the snapshot file.
type OutputKind int

const (
	JSOutput OutputKind = iota
	CSSOutput
	JSONOutput
)

var outputKind = map[OutputKind]string{
	JSOutput:   "js",
	CSSOutput:  "css",
	JSONOutput: "json",
}

// SnapshotOptions mirrors the teacher's MakeSnapshot input record.
type SnapshotOptions struct {
	Testing      *testing.T
	TestCaseName string
	Input        string
	Output       string
	Kind         OutputKind
	FolderName   string
}

// redactTestName strips characters a filesystem snapshot name can't
// carry, same table the teacher's RedactTestName applies.
func redactTestName(name string) string {
	r := strings.NewReplacer(
		"#", "_", "<", "_", ">", "_", ")", "_", "(", "_", ":", "_",
		" ", "_", "'", "_", "\"", "_", "@", "_", "`", "_", "+", "_",
	)
	return r.Replace(name)
}

// MatchSnapshot records (or verifies against) a fixture file pairing a
// test's input source with the compiler's generated output.
func MatchSnapshot(o *SnapshotOptions) {
	t := o.Testing
	folder := "__snapshots__"
	if o.FolderName != "" {
		folder = o.FolderName
	}

	s := snaps.WithConfig(
		snaps.Filename(redactTestName(o.TestCaseName)),
		snaps.Dir(folder),
	)

	var b strings.Builder
	b.WriteString("## Input\n\n```\n")
	b.WriteString(Dedent(o.Input))
	b.WriteString("\n```\n\n## Output\n\n```")
	b.WriteString(outputKind[o.Kind])
	b.WriteByte('\n')
	b.WriteString(Dedent(o.Output))
	b.WriteString("\n```")

	s.MatchSnapshot(t, b.String())
}
