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

package loader

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/io7m-com/cedarbridge-sub001/compiler"
	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

// CoreName is the name of the package embedded in every Loader.
const CoreName = "cedarbridge.core"

//go:embed core.cbs
var coreSource []byte

var (
	coreOnce    sync.Once
	corePackage *model.Package
)

// Core returns the compiled core package. The same value is returned on
// every call.
func Core() *model.Package {
	coreOnce.Do(func() {
		corePackage = compileCore()
	})
	return corePackage
}

// CoreSource returns the schema source of the core package.
func CoreSource() []byte {
	return coreSource
}

func compileCore() *model.Package {
	schema, err := syntax.Parse(coreSource, syntax.FileName(CoreName+SourceSuffix))
	if err != nil {
		panic(fmt.Sprintf("loader: core package: %v", err))
	}
	result := compiler.Compile(schema)
	if err := result.Err(); err != nil {
		panic(fmt.Sprintf("loader: core package: %v: %v", err, result.Errors))
	}
	return result.Package()
}
