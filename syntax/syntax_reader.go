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

const maxNestingDepth = 256

// ReadForms reads every top-level expression in src. Comments and
// whitespace are discarded.
func ReadForms(src []byte) ([]SExpr, error) {
	ctx, err := newReadCtx(src)
	if err != nil {
		return nil, err
	}
	return ctx.readAll()
}

type openList struct {
	start    uint32
	square   bool
	elements []SExpr
}

type readCtx struct {
	src    []byte
	tokens *Tokens
	token  Token
	offset uint32
	stack  []*openList
}

func newReadCtx(src []byte) (*readCtx, error) {
	tokens, err := NewTokens(src)
	if err != nil {
		return nil, err
	}
	return &readCtx{
		src:    src,
		tokens: tokens,
	}, nil
}

func (ctx *readCtx) tokenSpan() Span {
	return Span{
		start: ctx.offset,
		len:   uint32(ctx.token.Len),
	}
}

func (ctx *readCtx) push(node SExpr, top *[]SExpr) {
	if len(ctx.stack) == 0 {
		*top = append(*top, node)
		return
	}
	open := ctx.stack[len(ctx.stack)-1]
	open.elements = append(open.elements, node)
}

func (ctx *readCtx) readAll() ([]SExpr, error) {
	var top []SExpr
	for {
		if err := ctx.tokens.Next(&ctx.token); err != nil {
			return nil, err
		}
		raw := string(ctx.src[ctx.offset : ctx.offset+uint32(ctx.token.Len)])

		switch ctx.token.Kind {
		case T_EOF:
			if len(ctx.stack) > 0 {
				open := ctx.stack[len(ctx.stack)-1]
				return nil, errUnterminatedList(Span{open.start, 1})
			}
			return top, nil
		case T_SPACE, T_NEWLINE, T_COMMENT:
		case T_OPEN_SQUARE, T_OPEN_PAREN:
			if len(ctx.stack) >= maxNestingDepth {
				return nil, errNestingTooDeep(ctx.tokenSpan())
			}
			ctx.stack = append(ctx.stack, &openList{
				start:  ctx.offset,
				square: ctx.token.Kind == T_OPEN_SQUARE,
			})
		case T_CLOSE_SQUARE, T_CLOSE_PAREN:
			if len(ctx.stack) == 0 {
				return nil, errUnexpectedClose(raw, ctx.tokenSpan())
			}
			open := ctx.stack[len(ctx.stack)-1]
			square := ctx.token.Kind == T_CLOSE_SQUARE
			if open.square != square {
				want := ")"
				if open.square {
					want = "]"
				}
				return nil, errMismatchedClose(want, raw, ctx.tokenSpan())
			}
			ctx.stack = ctx.stack[:len(ctx.stack)-1]
			ctx.push(&List{
				span:     Span{open.start, ctx.offset + 1 - open.start},
				square:   open.square,
				elements: open.elements,
			}, &top)
		case T_INT_LIT:
			node, err := parseInteger(raw, ctx.offset)
			if err != nil {
				return nil, err
			}
			ctx.push(node, &top)
		case T_TEXT_LIT:
			node, err := parseQuoted(raw, ctx.offset, ctx.token.flags)
			if err != nil {
				return nil, err
			}
			ctx.push(node, &top)
		case T_SYMBOL:
			ctx.push(&Symbol{raw: raw, start: ctx.offset}, &top)
		default:
			panic("unreachable")
		}
		ctx.offset += uint32(ctx.token.Len)
	}
}
