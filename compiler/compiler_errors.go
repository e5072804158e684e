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

type Error struct {
	code    uint32
	message string
	span    syntax.Span
	pos     syntax.Pos
	related *syntax.Pos
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

func (err *Error) Span() syntax.Span {
	return err.span
}

func (err *Error) Pos() syntax.Pos {
	return err.pos
}

// Related returns a second location relevant to the error, such as the
// earlier declaration in a name conflict.
func (err *Error) Related() (syntax.Pos, bool) {
	if err.related == nil {
		return syntax.Pos{}, false
	}
	return *err.related, true
}

const (
	CodeNameConflict                  uint32 = 3000
	CodeUnknownReference              uint32 = 3001
	CodeArityMismatch                 uint32 = 3002
	CodeProtocolVersionGap            uint32 = 3003
	CodeProtocolVersionFirstRemoval   uint32 = 3004
	CodeProtocolVersionAlreadyPresent uint32 = 3005
	CodeProtocolVersionNotPresent     uint32 = 3006
	CodeProtocolVersionBecameEmpty    uint32 = 3007
	CodeProtocolKindMismatch          uint32 = 3008
	CodeImportFailed                  uint32 = 3009
)

func newError(code uint32, node syntax.Node, message string) *Error {
	return &Error{
		code:    code,
		message: message,
		span:    node.Span(),
		pos:     node.Pos(),
	}
}

func didYouMean(message, suggestion string) string {
	if suggestion == "" {
		return message
	}
	return fmt.Sprintf("%s (did you mean '%s'?)", message, suggestion)
}

func errNameConflict(what string, node *syntax.Name, prior syntax.Pos) *Error {
	err := newError(CodeNameConflict, node, fmt.Sprintf(
		"Duplicate %s '%s' (previously declared at %s)",
		what, node.Get(), prior,
	))
	if prior.IsValid() {
		err.related = &prior
	}
	return err
}

func errUnknownType(node *syntax.Name, suggestion string) *Error {
	return newError(CodeUnknownReference, node, didYouMean(
		fmt.Sprintf("Unknown type '%s'", node.Get()),
		suggestion,
	))
}

func errNotAType(node *syntax.Name, prior syntax.Pos) *Error {
	err := newError(CodeUnknownReference, node, fmt.Sprintf(
		"Name '%s' refers to a protocol, not a type", node.Get(),
	))
	err.related = &prior
	return err
}

func errUnknownImport(node *syntax.Name, suggestion string) *Error {
	return newError(CodeUnknownReference, node, didYouMean(
		fmt.Sprintf("No package imported as '%s'", node.Get()),
		suggestion,
	))
}

func errUnknownImportedType(node *syntax.Name, pkgName string, suggestion string) *Error {
	return newError(CodeUnknownReference, node, didYouMean(
		fmt.Sprintf("Type '%s' not found in package %q", node.Get(), pkgName),
		suggestion,
	))
}

func errPackageNotFound(node *syntax.Name) *Error {
	return newError(CodeUnknownReference, node, fmt.Sprintf(
		"Package %q not found", node.Get(),
	))
}

func errImportFailed(node *syntax.Name, cause error) *Error {
	return newError(CodeImportFailed, node, fmt.Sprintf(
		"Failed to load package %q: %v", node.Get(), cause,
	))
}

func errUnknownDocTarget(node *syntax.Name, suggestion string) *Error {
	return newError(CodeUnknownReference, node, didYouMean(
		fmt.Sprintf("Documentation target '%s' not found", node.Get()),
		suggestion,
	))
}

func errArityMismatch(node syntax.Node, typeName string, want, got int) *Error {
	return newError(CodeArityMismatch, node, fmt.Sprintf(
		"Type '%s' takes %d type argument(s), got %d",
		typeName, want, got,
	))
}

func errParameterApplied(node syntax.Node, paramName string, got int) *Error {
	return newError(CodeArityMismatch, node, fmt.Sprintf(
		"Type parameter '%s' cannot be applied to %d type argument(s)",
		paramName, got,
	))
}

func errProtocolVersionGap(node *syntax.Protocol, missing uint64) *Error {
	return newError(CodeProtocolVersionGap, node.Name(), fmt.Sprintf(
		"Protocol '%s' is missing version %d",
		node.Name().Get(), missing,
	))
}

func errProtocolVersionGapTruncated(node *syntax.Protocol, more uint64) *Error {
	return newError(CodeProtocolVersionGap, node.Name(), fmt.Sprintf(
		"Protocol '%s' is missing %d further versions",
		node.Name().Get(), more,
	))
}

func errProtocolVersionFirstRemoval(version *syntax.Version, protoName string) *Error {
	return newError(CodeProtocolVersionFirstRemoval, version, fmt.Sprintf(
		"Version %d is the first version of protocol '%s' and cannot remove types",
		version.Number(), protoName,
	))
}

func errProtocolVersionAlreadyPresent(ref *syntax.TypeName, number uint64) *Error {
	return newError(CodeProtocolVersionAlreadyPresent, ref, fmt.Sprintf(
		"Type '%s' added in version %d is already present in the protocol",
		ref, number,
	))
}

func errProtocolVersionNotPresent(ref *syntax.TypeName, number uint64) *Error {
	return newError(CodeProtocolVersionNotPresent, ref, fmt.Sprintf(
		"Type '%s' removed in version %d is not present in the protocol",
		ref, number,
	))
}

func errProtocolVersionBecameEmpty(version *syntax.Version, protoName string) *Error {
	return newError(CodeProtocolVersionBecameEmpty, version, fmt.Sprintf(
		"Version %d of protocol '%s' contains no types",
		version.Number(), protoName,
	))
}

func errProtocolKindMismatch(ref *syntax.TypeName, kind string) *Error {
	return newError(CodeProtocolKindMismatch, ref, fmt.Sprintf(
		"Protocol member '%s' must be a record or variant with no type parameters, got %s",
		ref, kind,
	))
}

func errVersionConflict(version *syntax.Version, protoName string, prior syntax.Pos) *Error {
	err := newError(CodeNameConflict, version, fmt.Sprintf(
		"Duplicate version %d in protocol '%s' (previously declared at %s)",
		version.Number(), protoName, prior,
	))
	err.related = &prior
	return err
}
