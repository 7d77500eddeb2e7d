// errorformatter.go: plugin error enrichment with location and code frames
//
// The byte-offset-to-line/column translation and code-frame windowing are
// modeled on esbuild's internal logger (computeLineAndColumn/detailStruct
// in internal/logger/logger.go), adapted here to enrich errors through
// go-errors instead of esbuild's own Msg type — see DESIGN.md.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
)

// positioned is implemented by an error that carries its own byte offset,
// mirroring a JS Error's pos/position property (spec.md §4.4 rule 3). A
// plugin that throws such an error without calling this.error still gets a
// code frame, because computeLocation probes for this interface when no
// explicit Position was supplied.
type positioned interface {
	Pos() (int, bool)
}

// PositionedError is an error that carries a byte offset into the code it
// was raised against. Plugins that want offset attribution without going
// through PluginContext.Error/Warn can return one directly from a hook.
type PositionedError struct {
	msg    string
	offset int
}

// NewPositionedError constructs a PositionedError for the given message and
// byte offset.
func NewPositionedError(msg string, offset int) *PositionedError {
	return &PositionedError{msg: msg, offset: offset}
}

func (e *PositionedError) Error() string { return e.msg }

// Pos implements positioned.
func (e *PositionedError) Pos() (int, bool) { return e.offset, true }

// errorOffset reports the byte offset embedded in err, if any, per the
// positioned interface.
func errorOffset(err error) (int, bool) {
	var p positioned
	if stderrors.As(err, &p) {
		return p.Pos()
	}
	return 0, false
}

// Position is an error location expressed either as a byte offset into the
// active code, or as an explicit {line, column} pair. Exactly one form
// should be set; Offset takes priority when both are present.
type Position struct {
	HasOffset bool
	Offset    int

	HasLineColumn bool
	Line          int
	Column        int

	// File, when non-empty and different from the active module id,
	// points at a file on disk to read the frame from instead of the
	// active code buffer — e.g. an error raised against a file a plugin
	// read itself rather than the module currently being transformed.
	File string
}

// Loc is a resolved, renderable source location.
type Loc struct {
	File   string
	Line   int
	Column int
	Frame  string
}

// FormattedError is the enriched result of running an error through the
// ErrorFormatter.
type FormattedError struct {
	Cause  error
	Plugin string
	ID     string
	Code   string
	Loc    *Loc

	Message string
}

// codeFrameContextLines is the fixed number of lines of context shown
// above and below the offending line in a generated frame.
const codeFrameContextLines = 2

// ErrorFormatter enriches plugin errors with attribution, location, and a
// code frame, remapping the location through the active transform's
// source-map chain when one is active (spec.md §4.4).
type ErrorFormatter struct{}

// NewErrorFormatter constructs an ErrorFormatter. It is stateless; one
// instance is shared by a container.
func NewErrorFormatter() *ErrorFormatter {
	return &ErrorFormatter{}
}

// Format implements the ordered rule list in spec.md §4.4.
func (f *ErrorFormatter) Format(ctx *PluginContext, e any, pos *Position) FormattedError {
	cause := toError(e)

	// Rule 1: if the incoming error is already a FormattedError-shaped
	// PluginError (has a pluginCode equivalent), return unchanged.
	if already, ok := e.(FormattedError); ok && already.Code != "" {
		return already
	}

	out := FormattedError{
		Cause:   cause,
		Plugin:  ctx.pluginName(),
		ID:      ctx.activeID,
		Code:    ctx.activeCode,
		Message: cause.Error(),
	}

	loc := f.computeLocation(ctx, cause, pos)
	if loc != nil {
		if tc, ok := ctxAsTransform(ctx); ok && loc.Line > 0 {
			tc.remapLocation(loc)
		}
	}
	if loc != nil && (loc.Line != 0 || loc.Column != 0 || loc.File != "") {
		out.Loc = loc
	}

	return out
}

func toError(e any) error {
	switch v := e.(type) {
	case error:
		return v
	case string:
		return fmt.Errorf("%s", v)
	default:
		return fmt.Errorf("%v", v)
	}
}

// computeLocation implements rule 3: numeric offset translation against
// the active code, else a caller-supplied {line, column} (read from the
// referenced file on disk when pos.File points elsewhere), else nothing.
func (f *ErrorFormatter) computeLocation(ctx *PluginContext, cause error, pos *Position) *Loc {
	if pos == nil {
		offset, ok := errorOffset(cause)
		if !ok {
			return nil
		}
		pos = &Position{HasOffset: true, Offset: offset}
	}

	file := ctx.activeID
	contents := ctx.activeCode
	if pos.File != "" && pos.File != ctx.activeID {
		if raw, ok := readFileBestEffort(pos.File); ok {
			file = pos.File
			contents = raw
		} else {
			file = pos.File
		}
	}

	if pos.HasOffset {
		line, column, lineText, ok := computeLineAndColumn(contents, pos.Offset)
		if !ok {
			return nil
		}
		return &Loc{
			File:   file,
			Line:   line,
			Column: column,
			Frame:  renderCodeFrame(contents, line, column, lineText),
		}
	}

	if pos.HasLineColumn {
		lineText := lineAt(contents, pos.Line)
		return &Loc{
			File:   file,
			Line:   pos.Line,
			Column: pos.Column,
			Frame:  renderCodeFrame(contents, pos.Line, pos.Column, lineText),
		}
	}

	_ = cause
	return nil
}

// computeLineAndColumn translates a byte offset into a 1-based line and
// 0-based column, mirroring esbuild's internal logger algorithm.
func computeLineAndColumn(contents string, offset int) (line, column int, lineText string, ok bool) {
	if offset < 0 || offset > len(contents) {
		return 0, 0, "", false
	}

	lineStart := 0
	lineCount := 0
	for i, r := range contents[:offset] {
		if r == '\n' {
			lineStart = i + 1
			lineCount++
		}
	}

	lineEnd := len(contents)
	for i, r := range contents[offset:] {
		if r == '\n' {
			lineEnd = offset + i
			break
		}
	}

	return lineCount + 1, offset - lineStart, contents[lineStart:lineEnd], true
}

func lineAt(contents string, line int) string {
	lines := strings.Split(contents, "\n")
	idx := line - 1
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	return lines[idx]
}

// renderCodeFrame renders a fixed-context-line frame around line/column,
// with a caret marker under the offending column.
func renderCodeFrame(contents string, line, column int, lineText string) string {
	lines := strings.Split(contents, "\n")
	idx := line - 1

	start := idx - codeFrameContextLines
	if start < 0 {
		start = 0
	}
	end := idx + codeFrameContextLines
	if end >= len(lines) {
		end = len(lines) - 1
	}

	var b strings.Builder
	for i := start; i <= end; i++ {
		marker := "  "
		if i == idx {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%d | %s\n", marker, i+1, lines[i])
		if i == idx {
			caret := strings.Repeat(" ", len(marker)+len(fmt.Sprintf("%d | ", i+1))+column) + "^"
			b.WriteString(caret)
			b.WriteByte('\n')
		}
	}
	_ = lineText
	return strings.TrimRight(b.String(), "\n")
}

// readFileBestEffort reads path, swallowing any error; used when an error
// carries a loc that references a file on disk rather than the active
// code buffer.
func readFileBestEffort(path string) (string, bool) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path originates from plugin-supplied error locations, not network input
	if err != nil {
		return "", false
	}
	return string(raw), true
}

func ctxAsTransform(ctx *PluginContext) (*TransformContext, bool) {
	if ctx.transformCtx == nil {
		return nil, false
	}
	return ctx.transformCtx, true
}
