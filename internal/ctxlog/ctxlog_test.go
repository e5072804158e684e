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

package ctxlog_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/io7m-com/cedarbridge-sub001/internal/ctxlog"
	"github.com/io7m-com/cedarbridge-sub001/internal/testutil"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := ctxlog.New("debug", "text", &buf)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	ctxlog.FromContext(ctx).Debug("hello", "k", "v")
	testutil.ExpectTrue(t, strings.Contains(buf.String(), "msg=hello k=v"))
}

func TestFromContextMissing(t *testing.T) {
	logger := ctxlog.FromContext(context.Background())
	testutil.ExpectFalse(t, logger.Enabled(context.Background(), 0))
}

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := ctxlog.New("warn", "json", &buf)
	logger.Info("dropped")
	logger.Warn("kept")
	testutil.ExpectFalse(t, strings.Contains(buf.String(), "dropped"))
	testutil.ExpectTrue(t, strings.Contains(buf.String(), `"msg":"kept"`))
}
