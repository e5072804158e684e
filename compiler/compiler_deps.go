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
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/io7m-com/cedarbridge-sub001/model"
)

var ErrPackageNotFound = errors.New("package not found")

// Loader resolves package names to compiled packages. A Loader must
// return the same *model.Package for the same name within one
// compilation, and an error wrapping ErrPackageNotFound for unknown
// names.
type Loader interface {
	Resolve(name string) (*model.Package, error)
}

// PackageSet is a Loader over a fixed set of already-compiled packages.
type PackageSet struct {
	packages map[string]*model.Package
}

var _ Loader = (*PackageSet)(nil)

func NewPackageSet(packages ...*model.Package) *PackageSet {
	s := &PackageSet{packages: make(map[string]*model.Package, len(packages))}
	for _, pkg := range packages {
		s.Add(pkg)
	}
	return s
}

// Add registers pkg, replacing any package with the same name.
func (s *PackageSet) Add(pkg *model.Package) {
	s.packages[pkg.Name()] = pkg
}

func (s *PackageSet) Resolve(name string) (*model.Package, error) {
	if pkg, ok := s.packages[name]; ok {
		return pkg, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPackageNotFound, name)
}

func (s *PackageSet) Names() []string {
	return slices.Sorted(maps.Keys(s.packages))
}
