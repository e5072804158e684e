// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

// Package report renders compiler diagnostics with source snippets.
package report

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2"

	"github.com/io7m-com/cedarbridge-sub001/compiler"
	"github.com/io7m-com/cedarbridge-sub001/loader"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

const defaultWidth = 100

// Reporter writes diagnostics for a set of known source files.
type Reporter struct {
	w      io.Writer
	files  map[string]*hcl.File
	width  uint
	color  bool
	errors int
}

func New(w io.Writer) *Reporter {
	return &Reporter{
		w:     w,
		files: make(map[string]*hcl.File),
		width: defaultWidth,
	}
}

// NewWithFiles returns a Reporter that can render snippets of files
// parsed elsewhere, such as a project file.
func NewWithFiles(w io.Writer, files map[string]*hcl.File) *Reporter {
	r := New(w)
	for name, file := range files {
		r.files[name] = file
	}
	return r
}

// SetColor enables terminal colour sequences in the output.
func (r *Reporter) SetColor(color bool) {
	r.color = color
}

// ErrorCount returns the number of error diagnostics written so far.
func (r *Reporter) ErrorCount() int {
	return r.errors
}

func (r *Reporter) addFile(file *syntax.File) {
	if file == nil {
		return
	}
	r.files[file.Name()] = &hcl.File{Bytes: file.Bytes()}
}

func (r *Reporter) Write(diags hcl.Diagnostics) error {
	for _, diag := range diags {
		if diag.Severity == hcl.DiagError {
			r.errors++
		}
	}
	wr := hcl.NewDiagnosticTextWriter(r.w, r.files, r.width, r.color)
	return wr.WriteDiagnostics(diags)
}

// Syntax reports a parse failure in file.
func (r *Reporter) Syntax(file *syntax.File, err *syntax.Error) error {
	r.addFile(file)
	return r.Write(hcl.Diagnostics{SyntaxDiagnostic(file, err)})
}

// Result reports the errors and warnings of one compilation.
func (r *Reporter) Result(file *syntax.File, result compiler.CompileResult) error {
	r.addFile(file)
	return r.Write(ResultDiagnostics(file, result))
}

// Imports reports the failures of imported packages compiled from source.
func (r *Reporter) Imports(failures []*loader.SourceError) error {
	for _, failure := range failures {
		if failure.Syntax != nil {
			if err := r.Syntax(failure.File, failure.Syntax); err != nil {
				return err
			}
			continue
		}
		if err := r.Result(failure.File, failure.Result); err != nil {
			return err
		}
	}
	return nil
}

// Plain reports a failure that has no source location.
func (r *Reporter) Plain(summary string, err error) error {
	return r.Write(hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   err.Error(),
	}})
}

func SyntaxDiagnostic(file *syntax.File, err *syntax.Error) *hcl.Diagnostic {
	span := err.Span()
	subject := sourceRange(file, span)
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  err.Error(),
		Detail:   "At " + file.Pos(span.Start()).String() + ".",
		Subject:  &subject,
	}
}

func ResultDiagnostics(file *syntax.File, result compiler.CompileResult) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, err := range result.Errors {
		subject := sourceRange(file, err.Span())
		detail := fmt.Sprintf("At %s.", err.Pos())
		if related, ok := err.Related(); ok {
			detail += fmt.Sprintf(" See also %s.", related)
		}
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  err.Error(),
			Detail:   detail,
			Subject:  &subject,
		})
	}
	for _, warning := range result.Warnings {
		subject := sourceRange(file, warning.Span())
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  warning.String(),
			Detail:   fmt.Sprintf("At %s.", warning.Pos()),
			Subject:  &subject,
		})
	}
	return diags
}

func sourceRange(file *syntax.File, span syntax.Span) hcl.Range {
	return hcl.Range{
		Filename: file.Name(),
		Start:    hclPos(file.Pos(span.Start())),
		End:      hclPos(file.Pos(span.End())),
	}
}

func hclPos(pos syntax.Pos) hcl.Pos {
	return hcl.Pos{
		Line:   pos.Line,
		Column: pos.Column,
		Byte:   int(pos.Offset),
	}
}
