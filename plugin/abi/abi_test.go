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

package abi

import (
	"errors"
	"testing"

	"github.com/io7m-com/cedarbridge-sub001/internal/testutil"
)

func TestFrame(t *testing.T) {
	framed, err := Frame(&Response{Error: "boom"})
	testutil.AssertNoError(t, err)

	n, err := FrameLen(framed)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, uint32(len(framed)-4), n)

	// Trailing bytes after the payload are ignored.
	var resp Response
	testutil.AssertNoError(t, Unframe(append(framed, 0xFF, 0xFF), &resp))
	testutil.ExpectEq(t, "boom", resp.Error)
	testutil.ExpectEq(t, 0, len(resp.Files))
}

func TestUnframeErrors(t *testing.T) {
	var resp Response
	err := Unframe([]byte{1, 0}, &resp)
	testutil.ExpectTrue(t, errors.Is(err, ErrFrame))

	err = Unframe([]byte{10, 0, 0, 0, 0x80}, &resp)
	testutil.ExpectTrue(t, errors.Is(err, ErrFrame))
	testutil.ExpectEq(t, "abi: malformed frame: header claims 10 bytes, have 1", err.Error())
}
