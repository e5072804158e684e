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

package cbpack

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/io7m-com/cedarbridge-sub001/compiler"
	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/names"
)

// Decode reads a compiled package file. Imported packages are resolved
// through loader. The file is checked for the same structural rules the
// compiler enforces on declarations, so a corrupt file yields an error
// wrapping ErrMalformed rather than an inconsistent model.
func Decode(data []byte, loader compiler.Loader) (*model.Package, error) {
	var fp filePackage
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields(true)
	if err := dec.Decode(&fp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if fp.Format != formatName {
		return nil, malformed("unknown format %q", fp.Format)
	}
	if fp.FormatVersion != formatVersion {
		return nil, malformed("unsupported format version %d", fp.FormatVersion)
	}
	if err := names.Package(fp.Name); err != nil {
		return nil, malformed("package name %q: %v", fp.Name, err)
	}

	d := &decoder{
		fp:       &fp,
		b:        model.NewPackageBuilder(fp.Name),
		imports:  make(map[string]*model.Package),
		declared: make(map[string]model.TypeDecl),
	}
	for _, name := range fp.Imports {
		pkg, err := loader.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("cbpack: resolving import %q of %q: %w", name, fp.Name, err)
		}
		d.imports[name] = pkg
		d.b.AddImport(pkg)
	}
	if err := d.decode(); err != nil {
		return nil, err
	}
	return d.b.Build(), nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

type decoder struct {
	fp       *filePackage
	b        *model.PackageBuilder
	imports  map[string]*model.Package
	declared map[string]model.TypeDecl
}

func (d *decoder) decode() error {
	for _, text := range d.fp.Docs {
		d.b.AddDocumentation(text)
	}

	for _, ft := range d.fp.Types {
		if err := names.Type(ft.Name); err != nil {
			return malformed("type name %q: %v", ft.Name, err)
		}
		if _, exists := d.declared[ft.Name]; exists {
			return malformed("duplicate type %q", ft.Name)
		}
		var decl model.TypeDecl
		switch ft.Kind {
		case model.KindRecord:
			decl = d.b.DeclareRecord(ft.Name)
		case model.KindVariant:
			decl = d.b.DeclareVariant(ft.Name)
		case model.KindExternal:
			decl = d.b.DeclareExternal(ft.Name)
		default:
			return malformed("type %q has invalid kind %d", ft.Name, ft.Kind)
		}
		d.declared[ft.Name] = decl
		for _, text := range ft.Docs {
			d.b.Document(decl, text)
		}
	}

	protocols := make(map[string]*model.Protocol)
	for _, fp := range d.fp.Protocols {
		if err := names.Validate(names.KindProtocol, fp.Name); err != nil {
			return malformed("protocol name %q: %v", fp.Name, err)
		}
		if _, exists := d.declared[fp.Name]; exists {
			return malformed("protocol %q conflicts with a type", fp.Name)
		}
		if _, exists := protocols[fp.Name]; exists {
			return malformed("duplicate protocol %q", fp.Name)
		}
		protocols[fp.Name] = d.b.DeclareProtocol(fp.Name)
	}

	for _, ft := range d.fp.Types {
		if err := d.parameters(ft); err != nil {
			return err
		}
	}
	for _, ft := range d.fp.Types {
		if err := d.members(ft); err != nil {
			return err
		}
	}
	for _, fp := range d.fp.Protocols {
		if err := d.protocol(protocols[fp.Name], fp); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) parameters(ft fileType) error {
	decl := d.declared[ft.Name]
	for _, fp := range ft.Parameters {
		if err := names.TypeParameter(fp.Name); err != nil {
			return malformed("parameter %q of type %q: %v", fp.Name, ft.Name, err)
		}
		if _, exists := decl.Parameter(fp.Name); exists {
			return malformed("duplicate parameter %q in type %q", fp.Name, ft.Name)
		}
		param := d.b.AddParameter(decl, fp.Name)
		for _, text := range fp.Docs {
			d.b.Document(param, text)
		}
	}
	return nil
}

func (d *decoder) members(ft fileType) error {
	switch decl := d.declared[ft.Name].(type) {
	case *model.Record:
		if len(ft.Cases) > 0 {
			return malformed("record %q has cases", ft.Name)
		}
		return d.fields(decl, decl, ft.Fields)
	case *model.Variant:
		if len(ft.Fields) > 0 {
			return malformed("variant %q has fields", ft.Name)
		}
		for _, fc := range ft.Cases {
			if err := names.Case(fc.Name); err != nil {
				return malformed("case %q of variant %q: %v", fc.Name, ft.Name, err)
			}
			if _, exists := decl.Case(fc.Name); exists {
				return malformed("duplicate case %q in variant %q", fc.Name, ft.Name)
			}
			c := d.b.AddCase(decl, fc.Name)
			for _, text := range fc.Docs {
				d.b.Document(c, text)
			}
			if err := d.fields(decl, c, fc.Fields); err != nil {
				return err
			}
		}
	case *model.External:
		if len(ft.Fields) > 0 || len(ft.Cases) > 0 {
			return malformed("external type %q has members", ft.Name)
		}
	default:
		panic("unreachable")
	}
	return nil
}

func (d *decoder) fields(scope model.TypeDecl, owner model.FieldOwner, fields []fileField) error {
	seen := make(map[string]bool, len(fields))
	for _, ff := range fields {
		if err := names.Field(ff.Name); err != nil {
			return malformed("field %q of type %q: %v", ff.Name, scope.Name(), err)
		}
		if seen[ff.Name] {
			return malformed("duplicate field %q in type %q", ff.Name, scope.Name())
		}
		seen[ff.Name] = true
		typ, err := d.expr(scope, ff.Type)
		if err != nil {
			return fmt.Errorf("field %q of type %q: %w", ff.Name, scope.Name(), err)
		}
		field := d.b.AddField(owner, ff.Name, typ)
		for _, text := range ff.Docs {
			d.b.Document(field, text)
		}
	}
	return nil
}

func (d *decoder) expr(scope model.TypeDecl, fe fileExpr) (model.TypeExpr, error) {
	switch fe.Kind {
	case exprNamed:
		decl, err := d.lookup(fe.Package, fe.Name)
		if err != nil {
			return nil, err
		}
		if decl.Arity() != 0 {
			return nil, malformed("type %s requires %d type argument(s)", model.QualifiedName(decl), decl.Arity())
		}
		return model.NewNamed(decl), nil
	case exprParameter:
		param, ok := scope.Parameter(fe.Name)
		if !ok {
			return nil, malformed("unknown type parameter %q", fe.Name)
		}
		return model.NewParameterRef(param), nil
	case exprApplication:
		decl, err := d.lookup(fe.Package, fe.Name)
		if err != nil {
			return nil, err
		}
		if len(fe.Arguments) == 0 || len(fe.Arguments) != decl.Arity() {
			return nil, malformed("type %s applied to %d type argument(s), requires %d",
				model.QualifiedName(decl), len(fe.Arguments), decl.Arity())
		}
		args := make([]model.TypeExpr, 0, len(fe.Arguments))
		for _, arg := range fe.Arguments {
			expr, err := d.expr(scope, arg)
			if err != nil {
				return nil, err
			}
			args = append(args, expr)
		}
		return model.NewApplication(model.NewNamed(decl), args...), nil
	}
	return nil, malformed("invalid type expression kind %d", fe.Kind)
}

func (d *decoder) lookup(pkgName, name string) (model.TypeDecl, error) {
	if pkgName == d.fp.Name {
		if decl, ok := d.declared[name]; ok {
			return decl, nil
		}
		return nil, malformed("unknown type %s.%s", pkgName, name)
	}
	pkg, ok := d.imports[pkgName]
	if !ok {
		return nil, malformed("type %s.%s refers to a package that is not imported", pkgName, name)
	}
	decl, ok := pkg.Type(name)
	if !ok {
		return nil, malformed("unknown type %s.%s", pkgName, name)
	}
	return decl, nil
}

func (d *decoder) protocol(proto *model.Protocol, fp fileProtocol) error {
	for _, text := range fp.Docs {
		d.b.Document(proto, text)
	}
	for _, fv := range fp.Versions {
		if _, exists := proto.Version(fv.Number); exists {
			return malformed("duplicate version %d in protocol %q", fv.Number, fp.Name)
		}
		var delta model.VersionDelta
		var err error
		if delta.Types, err = d.refs(fv.Types); err != nil {
			return err
		}
		if delta.Added, err = d.refs(fv.Added); err != nil {
			return err
		}
		if delta.Removed, err = d.refs(fv.Removed); err != nil {
			return err
		}
		d.b.AddVersion(proto, fv.Number, delta)
	}
	return nil
}

func (d *decoder) refs(refs []fileRef) ([]model.TypeDecl, error) {
	out := make([]model.TypeDecl, 0, len(refs))
	for _, ref := range refs {
		decl, err := d.lookup(ref.Package, ref.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, decl)
	}
	return out, nil
}
