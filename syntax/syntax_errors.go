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
	"fmt"
	"math"
	"unicode/utf8"
)

type Error struct {
	code    uint32
	message string
	span    Span
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Span() Span {
	return err.span
}

func clampLen(n int) uint32 {
	if uint64(n) < math.MaxUint32 {
		return uint32(n)
	}
	return math.MaxUint32
}

// Reader errors (1xxx).

func errSourceTooLong(srcLen int) error {
	return &Error{
		code: 1000,
		message: fmt.Sprintf(
			"Source file size (%d bytes) exceeds maximum (%d bytes)",
			srcLen, maxSrcLen,
		),
		span: Span{0, clampLen(srcLen)},
	}
}

func errInvalidUtf8(src []byte) error {
	var off uint32
	for len(src) > 0 {
		r, size := utf8.DecodeRune(src)
		if r == utf8.RuneError {
			break
		}
		off += uint32(size)
		src = src[size:]
	}
	return &Error{
		code:    1001,
		message: "Source file contains invalid UTF-8",
		span:    Span{off, 1},
	}
}

func errUnexpectedCharacter(start uint32, r rune) error {
	return &Error{
		code:    1002,
		message: fmt.Sprintf("Unexpected character '%s' (U+%04X)", string(r), r),
		span:    Span{start, uint32(utf8.RuneLen(r))},
	}
}

func errForbiddenControlCharacter(start uint32, c byte) error {
	return &Error{
		code:    1003,
		message: fmt.Sprintf("Forbidden control character U+%04X", c),
		span:    Span{start, 1},
	}
}

func errTokenTooLong(start uint32, tokenLen int) error {
	return &Error{
		code: 1004,
		message: fmt.Sprintf(
			"Token size (%d bytes) exceeds maximum (%d bytes)",
			tokenLen, maxTokenLen,
		),
		span: Span{start, clampLen(tokenLen)},
	}
}

func errIntLitInvalid(start uint32, token []byte) error {
	return &Error{
		code:    1005,
		message: fmt.Sprintf("Invalid integer literal %q", token),
		span:    Span{start, clampLen(len(token))},
	}
}

func errTextLitUnterminated(start, tokenLen uint32) error {
	return &Error{
		code:    1006,
		message: "Unterminated text literal",
		span:    Span{start, tokenLen},
	}
}

func errTextLitContainsNewline(start, newlineLen uint32) error {
	return &Error{
		code:    1007,
		message: "Text literal contains unescaped newline",
		span:    Span{start, newlineLen},
	}
}

func errSymbolInvalid(start uint32, token []byte) error {
	return &Error{
		code:    1008,
		message: fmt.Sprintf("Invalid symbol %q", token),
		span:    Span{start, clampLen(len(token))},
	}
}

// Expression errors (2000-2099).

func errUnexpectedClose(gotToken string, span Span) error {
	return &Error{
		code:    2000,
		message: fmt.Sprintf("Unexpected %q with no open list", gotToken),
		span:    span,
	}
}

func errUnterminatedList(span Span) error {
	return &Error{
		code:    2001,
		message: "Unterminated list",
		span:    span,
	}
}

func errMismatchedClose(want, got string, span Span) error {
	return &Error{
		code:    2002,
		message: fmt.Sprintf("Expected %q to close list, got %q", want, got),
		span:    span,
	}
}

func errNestingTooDeep(span Span) error {
	return &Error{
		code:    2003,
		message: fmt.Sprintf("Lists nested deeper than %d levels", maxNestingDepth),
		span:    span,
	}
}

func errIntLitTooPositive(token string, start uint32) error {
	return &Error{
		code: 2004,
		message: fmt.Sprintf(
			"Integer literal too positive (must be <= %d)",
			uint64(math.MaxUint64),
		),
		span: Span{start, clampLen(len(token))},
	}
}

func errTextLitInvalid(start uint32, token string) error {
	return &Error{
		code:    2005,
		message: fmt.Sprintf("Invalid text literal %q", token),
		span:    Span{start, clampLen(len(token))},
	}
}

// Declaration errors (2100-2199).

func errExpectedList(context string, got SExpr) error {
	return &Error{
		code:    2100,
		message: fmt.Sprintf("Expected list in %s, got %s", context, Unparse(got)),
		span:    got.Span(),
	}
}

func errExpectedSymbol(context string, got SExpr) error {
	return &Error{
		code:    2101,
		message: fmt.Sprintf("Expected symbol in %s, got %s", context, Unparse(got)),
		span:    got.Span(),
	}
}

func errUnknownKeyword(context string, keyword *Symbol) error {
	return &Error{
		code:    2102,
		message: fmt.Sprintf("Unknown keyword %q in %s", keyword.Get(), context),
		span:    keyword.Span(),
	}
}

func errMissingPackage() error {
	return &Error{
		code:    2103,
		message: "Source file has no package declaration",
		span:    Span{0, 0},
	}
}

func errDuplicatePackage(span Span) error {
	return &Error{
		code:    2104,
		message: "Source file has more than one package declaration",
		span:    span,
	}
}

func errWrongArgumentCount(keyword string, want string, got int, span Span) error {
	return &Error{
		code: 2105,
		message: fmt.Sprintf(
			"Form %q expects %s argument(s), got %d",
			keyword, want, got,
		),
		span: span,
	}
}

func errInvalidName(kind string, sym *Symbol, reason error) error {
	return &Error{
		code:    2106,
		message: fmt.Sprintf("Invalid %s name %q: %v", kind, sym.Get(), reason),
		span:    sym.Span(),
	}
}

func errExpectedIntLit(context string, got SExpr) error {
	return &Error{
		code:    2107,
		message: fmt.Sprintf("Expected integer in %s, got %s", context, Unparse(got)),
		span:    got.Span(),
	}
}

func errExpectedTextLit(context string, got SExpr) error {
	return &Error{
		code:    2108,
		message: fmt.Sprintf("Expected text in %s, got %s", context, Unparse(got)),
		span:    got.Span(),
	}
}

func errUnsupportedLanguage(name string, major, minor uint64, span Span) error {
	return &Error{
		code: 2109,
		message: fmt.Sprintf(
			"Unsupported language %s %d.%d (supported: %s %d.%d)",
			name, major, minor,
			LanguageName, LanguageMajor, LanguageMinor,
		),
		span: span,
	}
}

func errLanguageNotFirst(span Span) error {
	return &Error{
		code:    2110,
		message: "Language declaration must be the first form in the file",
		span:    span,
	}
}

func errEmptyTypeApplication(span Span) error {
	return &Error{
		code:    2111,
		message: "Type application requires a type and at least one argument",
		span:    span,
	}
}
