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

// Package names validates the lexical forms of Cedarbridge identifiers.
package names

import (
	"errors"
	"fmt"
	"regexp"
)

const MaxLength = 255

var (
	ErrEmpty   = errors.New("name is empty")
	ErrTooLong = fmt.Errorf("name exceeds %d characters", MaxLength)
)

var (
	packagePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)
	typePattern    = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)
	fieldPattern   = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Kind selects which of the name grammars a value is checked against.
type Kind uint8

const (
	KindPackage Kind = iota
	KindType
	KindTypeParameter
	KindField
	KindCase
	KindProtocol
	KindImportShort
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindType:
		return "type"
	case KindTypeParameter:
		return "type parameter"
	case KindField:
		return "field"
	case KindCase:
		return "variant case"
	case KindProtocol:
		return "protocol"
	case KindImportShort:
		return "import"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) pattern() *regexp.Regexp {
	switch k {
	case KindPackage:
		return packagePattern
	case KindType, KindCase, KindProtocol:
		return typePattern
	case KindTypeParameter, KindField, KindImportShort:
		return fieldPattern
	default:
		panic("unreachable")
	}
}

// Validate reports whether name is a well-formed name of the given kind.
func Validate(kind Kind, name string) error {
	if name == "" {
		return ErrEmpty
	}
	if len(name) > MaxLength {
		return ErrTooLong
	}
	if !kind.pattern().MatchString(name) {
		return fmt.Errorf("must match %s", kind.pattern().String())
	}
	return nil
}

func IsValid(kind Kind, name string) bool {
	return Validate(kind, name) == nil
}

func Package(name string) error       { return Validate(KindPackage, name) }
func Type(name string) error          { return Validate(KindType, name) }
func TypeParameter(name string) error { return Validate(KindTypeParameter, name) }
func Field(name string) error         { return Validate(KindField, name) }
func Case(name string) error          { return Validate(KindCase, name) }
