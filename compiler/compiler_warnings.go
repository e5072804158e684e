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

package compiler

import (
	"fmt"

	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

type Warning struct {
	code    uint32
	message string
	span    syntax.Span
	pos     syntax.Pos
}

func (w *Warning) String() string {
	return fmt.Sprintf("W%d: %s", w.code, w.message)
}

func (w *Warning) Code() uint32 {
	return w.code
}

func (w *Warning) Message() string {
	return w.message
}

func (w *Warning) Span() syntax.Span {
	return w.span
}

func (w *Warning) Pos() syntax.Pos {
	return w.pos
}

func warnUnusedImport(node *syntax.Import) *Warning {
	return &Warning{
		code: 4000,
		message: fmt.Sprintf(
			"Import of package %q (as '%s') is unused",
			node.Package().Get(), node.Short().Get(),
		),
		span: node.Span(),
		pos:  node.Pos(),
	}
}

func warnDuplicateImport(node *syntax.Import, prior syntax.Pos) *Warning {
	return &Warning{
		code: 4001,
		message: fmt.Sprintf(
			"Package %q is also imported at %s",
			node.Package().Get(), prior,
		),
		span: node.Span(),
		pos:  node.Pos(),
	}
}

func warnEmptyProtocol(node *syntax.Protocol) *Warning {
	return &Warning{
		code:    4002,
		message: fmt.Sprintf("Protocol '%s' declares no versions", node.Name().Get()),
		span:    node.Name().Span(),
		pos:     node.Name().Pos(),
	}
}
