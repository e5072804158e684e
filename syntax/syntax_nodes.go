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

package syntax

import (
	"bytes"
	"fmt"
	"iter"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

type Span struct {
	start, len uint32
}

func NewSpan(start, len uint32) Span {
	return Span{start, len}
}

func (s *Span) Start() uint32 {
	return s.start
}

func (s *Span) End() uint32 {
	return s.start + s.len
}

func (s *Span) Len() uint32 {
	return s.len
}

// Pos is a human-facing source location. Lines and columns are 1-based,
// columns count bytes.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset uint32
}

func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		if p.File == "" {
			return "-"
		}
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// File holds a named source buffer and the offsets of its line starts.
type File struct {
	name  string
	src   []byte
	lines []uint32
}

func NewFile(name string, src []byte) *File {
	lines := []uint32{0}
	for ii, c := range src {
		if c == '\n' {
			lines = append(lines, uint32(ii+1))
		}
	}
	return &File{
		name:  name,
		src:   src,
		lines: lines,
	}
}

func (f *File) Name() string {
	return f.name
}

func (f *File) Bytes() []byte {
	return f.src
}

func (f *File) Pos(offset uint32) Pos {
	line := sort.Search(len(f.lines), func(ii int) bool {
		return f.lines[ii] > offset
	})
	return Pos{
		File:   f.name,
		Line:   line,
		Column: int(offset-f.lines[line-1]) + 1,
		Offset: offset,
	}
}

func (f *File) SpanPos(span Span) Pos {
	return f.Pos(span.Start())
}

// SExpr is a node of the bracketed expression tree: a *List, *Symbol,
// *Quoted, or *Integer.
type SExpr interface {
	Span() Span

	ChildNodes() iter.Seq[SExpr]

	UnparseTo(buf *bytes.Buffer)

	isSExpr()
}

func Unparse(node SExpr) string {
	var buf bytes.Buffer
	node.UnparseTo(&buf)
	return buf.String()
}

func Walk(node SExpr, walkFn func(SExpr) bool) {
	if node == nil || !walkFn(node) {
		return
	}
	for child := range node.ChildNodes() {
		Walk(child, walkFn)
	}
	walkFn(nil)
}

type leafNode struct{}

func (*leafNode) ChildNodes() iter.Seq[SExpr] {
	return func(_yield func(SExpr) bool) {}
}

func (*leafNode) isSExpr() {}

type List struct {
	span     Span
	square   bool
	elements []SExpr
}

var _ SExpr = (*List)(nil)

func (n *List) Span() Span {
	return n.span
}

func (n *List) isSExpr() {}

func (n *List) ChildNodes() iter.Seq[SExpr] {
	return func(yield func(SExpr) bool) {
		for _, child := range n.elements {
			if !yield(child) {
				return
			}
		}
	}
}

func (n *List) IsSquare() bool {
	return n.square
}

func (n *List) Len() int {
	return len(n.elements)
}

func (n *List) At(idx int) SExpr {
	return n.elements[idx]
}

func (n *List) Elements() []SExpr {
	return n.elements
}

// Head returns the leading symbol of the list, if it has one.
func (n *List) Head() (*Symbol, bool) {
	if len(n.elements) == 0 {
		return nil, false
	}
	sym, ok := n.elements[0].(*Symbol)
	return sym, ok
}

func (n *List) UnparseTo(buf *bytes.Buffer) {
	open, close := byte('('), byte(')')
	if n.square {
		open, close = '[', ']'
	}
	buf.WriteByte(open)
	for ii, child := range n.elements {
		if ii > 0 {
			buf.WriteByte(' ')
		}
		child.UnparseTo(buf)
	}
	buf.WriteByte(close)
}

type Symbol struct {
	leafNode
	raw   string
	start uint32
}

var _ SExpr = (*Symbol)(nil)

func (n *Symbol) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Symbol) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Symbol) Get() string {
	return n.raw
}

type Quoted struct {
	leafNode
	raw   string
	value string
	start uint32
}

var _ SExpr = (*Quoted)(nil)

func (n *Quoted) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Quoted) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Quoted) Get() string {
	return n.value
}

type Integer struct {
	leafNode
	raw   string
	value uint64
	start uint32
}

var _ SExpr = (*Integer)(nil)

func (n *Integer) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Integer) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Integer) Get() uint64 {
	return n.value
}

func parseInteger(raw string, start uint32) (*Integer, error) {
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, errIntLitTooPositive(raw, start)
	}
	return &Integer{raw: raw, value: value, start: start}, nil
}

func parseQuoted(token string, start uint32, flags uint8) (*Quoted, error) {
	value := token[1 : len(token)-1]
	if flags&tokenFlagTextHasNoEscapes != 0 {
		return &Quoted{raw: token, value: value, start: start}, nil
	}

	var buf bytes.Buffer
	escaped := false
	for len(value) > 0 {
		c := value[0]
		value = value[1:]
		if !escaped {
			if c == '\\' {
				escaped = true
			} else {
				buf.WriteByte(c)
			}
			continue
		}
		escaped = false

		switch c {
		case '"', '\\':
			buf.WriteByte(c)
		case 'n':
			buf.WriteByte('\n')
		case 'r':
			buf.WriteByte('\r')
		case 't':
			buf.WriteByte('\t')
		case 'u':
			end := strings.IndexByte(value, '}')
			if len(value) < 3 || value[0] != '{' || end < 2 {
				return nil, errTextLitInvalid(start, token)
			}
			r, err := strconv.ParseUint(value[1:end], 16, 32)
			if err != nil || !utf8.ValidRune(rune(r)) {
				return nil, errTextLitInvalid(start, token)
			}
			buf.WriteRune(rune(r))
			value = value[end+1:]
		default:
			return nil, errTextLitInvalid(start, token)
		}
	}
	return &Quoted{raw: token, value: buf.String(), start: start}, nil
}
