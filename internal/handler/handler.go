// Package handler accumulates diagnostics raised while compiling a single
// source file. It never panics on recoverable input: parser, analyzer and
// driver all route errors through a Handler and keep going, per §7 of the
// specification. There is no separate abort path for internal invariant
// violations: they are not detected as a distinct kind of error.
package handler

import (
	"github.com/kodla-dev/renit-sub000/internal/loc"
	"github.com/kodla-dev/renit-sub000/internal/source"
)

type Handler struct {
	file     *source.File
	errors   []*loc.ErrorWithRange
	warnings []*loc.ErrorWithRange
	infos    []*loc.ErrorWithRange
	hints    []*loc.ErrorWithRange
}

func New(file *source.File) *Handler {
	return &Handler{file: file}
}

func (h *Handler) HasErrors() bool {
	return len(h.errors) > 0
}

func (h *Handler) AppendError(err *loc.ErrorWithRange) {
	h.errors = append(h.errors, err)
}

func (h *Handler) AppendWarning(err *loc.ErrorWithRange) {
	h.warnings = append(h.warnings, err)
}

func (h *Handler) AppendInfo(err *loc.ErrorWithRange) {
	h.infos = append(h.infos, err)
}

func (h *Handler) AppendHint(err *loc.ErrorWithRange) {
	h.hints = append(h.hints, err)
}

func (h *Handler) toMessage(severity loc.DiagnosticSeverity, err *loc.ErrorWithRange) loc.DiagnosticMessage {
	offset := err.Range.Loc.Start
	msg := loc.DiagnosticMessage{
		Code:       err.Code,
		Severity:   severity,
		Text:       err.Text,
		Suggestion: err.Suggestion,
	}
	if h.file != nil {
		msg.Line = h.file.Lines.Find(offset)
		msg.Column = h.file.Column(offset)
		msg.Highlight = h.file.Lines.Highlight(h.file.Code, offset)
	}
	return msg
}

// Diagnostics returns every recorded diagnostic, errors first, in the
// order §7 prescribes for the result payload.
func (h *Handler) Diagnostics() []loc.DiagnosticMessage {
	msgs := make([]loc.DiagnosticMessage, 0, len(h.errors)+len(h.warnings)+len(h.infos)+len(h.hints))
	for _, e := range h.errors {
		msgs = append(msgs, h.toMessage(loc.ErrorType, e))
	}
	for _, e := range h.warnings {
		msgs = append(msgs, h.toMessage(loc.WarningType, e))
	}
	for _, e := range h.infos {
		msgs = append(msgs, h.toMessage(loc.InformationType, e))
	}
	for _, e := range h.hints {
		msgs = append(msgs, h.toMessage(loc.HintType, e))
	}
	return msgs
}
