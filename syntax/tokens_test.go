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

package syntax_test

import (
	"fmt"
	"testing"

	"github.com/io7m-com/cedarbridge-sub001/internal/testutil"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

func tokenize(t *testing.T, src string) ([]string, error) {
	t.Helper()
	tokens, err := syntax.NewTokens([]byte(src))
	if err != nil {
		return nil, err
	}
	var got []string
	var token syntax.Token
	offset := 0
	for {
		if err := tokens.Next(&token); err != nil {
			return got, err
		}
		if token.Kind == syntax.T_EOF {
			return got, nil
		}
		got = append(got, fmt.Sprintf("%s %q", token.Kind, src[offset:offset+int(token.Len)]))
		offset += int(token.Len)
	}
}

func TestTokensOK(t *testing.T) {
	tests := []struct {
		src    string
		tokens []string
	}{
		{
			src: "[record Person]",
			tokens: []string{
				`OPEN_SQUARE "["`,
				`SYMBOL "record"`,
				`SPACE " "`,
				`SYMBOL "Person"`,
				`CLOSE_SQUARE "]"`,
			},
		},
		{
			src: "(field x cb:String) ; trailing\r\n",
			tokens: []string{
				`OPEN_PAREN "("`,
				`SYMBOL "field"`,
				`SPACE " "`,
				`SYMBOL "x"`,
				`SPACE " "`,
				`SYMBOL "cb:String"`,
				`CLOSE_PAREN ")"`,
				`SPACE " "`,
				`COMMENT "; trailing"`,
				`NEWLINE "\r\n"`,
			},
		},
		{
			src: `[version 10 "text \"quoted\""]`,
			tokens: []string{
				`OPEN_SQUARE "["`,
				`SYMBOL "version"`,
				`SPACE " "`,
				`INT_LIT "10"`,
				`SPACE " "`,
				`TEXT_LIT "\"text \\\"quoted\\\"\""`,
				`CLOSE_SQUARE "]"`,
			},
		},
		{
			src: "types-removed-all\tcom.example.chat",
			tokens: []string{
				`SYMBOL "types-removed-all"`,
				`SPACE "\t"`,
				`SYMBOL "com.example.chat"`,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			got, err := tokenize(t, test.src)
			testutil.AssertNoError(t, err)
			testutil.ExpectSliceEq(t, test.tokens, got)
		})
	}
}

func TestTokensErr(t *testing.T) {
	tests := []struct {
		src   string
		code  uint32
		start uint32
		len   uint32
	}{
		{"[x \xff]", 1001, 3, 1},
		{"[x @]", 1002, 3, 1},
		{"[x \x01]", 1003, 3, 1},
		{"[x 12ab]", 1005, 3, 4},
		{"[x 007]", 1005, 3, 3},
		{`[x "abc`, 1006, 3, 4},
		{"[x \"a\nb\"]", 1007, 5, 1},
		{"[x abc:]", 1008, 3, 4},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%q", test.src), func(t *testing.T) {
			_, err := tokenize(t, test.src)
			testutil.AssertError(t, err)
			synErr := err.(*syntax.Error)
			testutil.ExpectEq(t, test.code, synErr.Code())
			testutil.ExpectEq(t, syntax.NewSpan(test.start, test.len), synErr.Span())
		})
	}
}
