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

//go:build tinygo

package main

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/io7m-com/cedarbridge-sub001/plugin/abi"
)

var buffers = make(map[*uint8][]uint8)

func main() {}

//go:export cedarbridge_codegen_allocate
func cedarbridgeCodegenAllocate(len uint32) *uint8 {
	if len > math.MaxInt32 {
		return nil
	}
	buf := make([]uint8, int(len))
	ptr := unsafe.SliceData(buf)
	buffers[ptr] = buf
	return ptr
}

//go:export cedarbridge_codegen_generate
func cedarbridgeCodegenGenerate(requestPtr *uint8, responsePtrPtr **uint8) uint8 {
	var resp abi.Response
	rc := uint8(0)

	requestLen, _ := abi.FrameLen(unsafe.Slice(requestPtr, 4))
	requestBuf := unsafe.Slice(requestPtr, 4+int(requestLen))
	var req abi.Request
	if err := abi.Unframe(requestBuf, &req); err != nil {
		resp.Error = fmt.Sprintf("decoding request: %v", err)
		rc = 1
	} else if files, err := generate(&req); err != nil {
		resp.Error = err.Error()
		rc = 1
	} else {
		resp.Files = files
	}

	response, err := abi.Frame(&resp)
	if err != nil {
		response, _ = abi.Frame(&abi.Response{
			Error: fmt.Sprintf("encoding response: %v", err),
		})
		rc = 1
	}
	responsePtr := unsafe.SliceData(response)
	buffers[responsePtr] = response
	*responsePtrPtr = responsePtr
	return rc
}
