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

// Package abi holds the types exchanged between the code generator host
// and generator modules. It has no dependency on the WebAssembly runtime
// so generators can import it.
package abi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	ExportAllocate = "cedarbridge_codegen_allocate"
	ExportGenerate = "cedarbridge_codegen_generate"
	ExportMemory   = "memory"
)

var ErrFrame = errors.New("abi: malformed frame")

// Request is the input of a code generator.
type Request struct {
	// Package is the compiled package to generate code for, in the
	// cbpack format.
	Package []byte `msgpack:"package"`

	// Dependencies holds every package reachable through imports, each
	// listed after the packages it imports.
	Dependencies [][]byte `msgpack:"dependencies"`

	Options map[string]string `msgpack:"options"`
}

type Response struct {
	Error string       `msgpack:"error,omitempty"`
	Files []OutputFile `msgpack:"files"`
}

// OutputFile is one generated file. Path is a sequence of path
// components relative to the output directory.
type OutputFile struct {
	Path    []string `msgpack:"path"`
	Content []byte   `msgpack:"content"`
}

// Frame encodes v with msgpack and prefixes it with its length as a
// 32-bit little-endian integer.
func Frame(v any) ([]byte, error) {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) > math.MaxUint32-4 {
		return nil, fmt.Errorf("%w: payload too large (%d bytes)", ErrFrame, len(payload))
	}
	out := make([]byte, 4, 4+len(payload))
	binary.LittleEndian.PutUint32(out, uint32(len(payload)))
	return append(out, payload...), nil
}

// FrameLen returns the payload length stored in the header of buf.
func FrameLen(buf []byte) (uint32, error) {
	if len(buf) < 4 {
		return 0, fmt.Errorf("%w: short header", ErrFrame)
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// Unframe decodes a framed msgpack value from buf into v.
func Unframe(buf []byte, v any) error {
	n, err := FrameLen(buf)
	if err != nil {
		return err
	}
	if uint64(len(buf)-4) < uint64(n) {
		return fmt.Errorf("%w: header claims %d bytes, have %d", ErrFrame, n, len(buf)-4)
	}
	return msgpack.Unmarshal(buf[4:4+int(n)], v)
}
