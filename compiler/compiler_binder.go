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
	"log/slog"
	"strconv"

	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/syntax"
)

type importInfo struct {
	node *syntax.Import
	pkg  *model.Package
	used bool
}

func (c *compiler) bind() {
	c.log.Debug("binding",
		slog.Int("imports", len(c.schema.Imports())),
		slog.Int("decls", len(c.schema.Decls())))

	pkgScope := c.openScope(scopePackage)
	defer pkgScope.close()

	c.loaded = make(map[string]*model.Package)
	for _, node := range c.schema.Imports() {
		c.bindImport(node)
	}

	// Every top-level name is registered before any body is bound, so
	// declarations may refer to each other regardless of order.
	decls := c.schema.Decls()
	for _, decl := range decls {
		switch decl := decl.(type) {
		case syntax.TypeDecl:
			c.bindType(decl)
		case *syntax.Protocol:
			c.bindProtocol(decl)
		default:
			panic("unreachable")
		}
	}
	for _, decl := range decls {
		switch decl := decl.(type) {
		case *syntax.Record:
			c.bindRecordBody(decl)
		case *syntax.Variant:
			c.bindVariantBody(decl)
		case *syntax.External:
			c.bindExternalBody(decl)
		case *syntax.Protocol:
			c.bindProtocolBody(decl)
		default:
			panic("unreachable")
		}
	}

	for _, doc := range c.schema.Documentation() {
		if doc.Target().Get() == c.currentPackage() {
			continue
		}
		c.bindDocumentation(doc, c.checkTypeOrProtocolBinding)
	}

	for _, imp := range c.imports {
		if imp.pkg != nil && !imp.used {
			c.warn(warnUnusedImport(imp.node))
		}
	}
}

// currentPackage returns the name of the package being compiled.
func (c *compiler) currentPackage() string {
	return c.pkgName
}

// resolvePackage loads a package at most once per compilation.
func (c *compiler) resolvePackage(name *syntax.Name) (*model.Package, bool) {
	if pkg, ok := c.loaded[name.Get()]; ok {
		return pkg, pkg != nil
	}
	pkg, err := c.opts.loader.Resolve(name.Get())
	if err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			c.err(errPackageNotFound(name))
		} else {
			c.err(errImportFailed(name, err))
		}
		c.loaded[name.Get()] = nil
		return nil, false
	}
	c.log.Debug("resolved import", slog.String("import", name.Get()))
	c.loaded[name.Get()] = pkg
	return pkg, true
}

func (c *compiler) bindImport(node *syntax.Import) {
	info := &importInfo{node: node}
	c.imports = append(c.imports, info)

	for _, prior := range c.imports[:len(c.imports)-1] {
		if prior.node.Package().Get() == node.Package().Get() {
			c.warn(warnDuplicateImport(node, prior.node.Pos()))
			break
		}
	}

	pkg, ok := c.resolvePackage(node.Package())
	if !ok {
		return
	}
	info.pkg = pkg
	c.registerPackage(node, pkg)
}

func (c *compiler) registerPackage(node *syntax.Import, pkg *model.Package) {
	binding := &ImportBinding{Import: node, Package: pkg}
	if c.register(classImport, "import", node.Short(), binding) {
		c.bindings.set(node.ID(), binding)
	}
}

func (c *compiler) bindType(decl syntax.TypeDecl) {
	binding := &TypeBinding{Decl: decl}
	if c.register(classType, "type", decl.Name(), binding) {
		c.bindings.set(decl.ID(), binding)
	}
}

func (c *compiler) bindProtocol(decl *syntax.Protocol) {
	binding := &ProtocolBinding{Protocol: decl}
	if c.register(classType, "protocol", decl.Name(), binding) {
		c.bindings.set(decl.ID(), binding)
	}
}

func (c *compiler) bindTypeParameter(owner syntax.TypeDecl, param *syntax.Parameter, index int) {
	binding := &TypeParameterBinding{Param: param, Owner: owner, Index: index}
	if c.register(classType, "type parameter", param.Name(), binding) {
		c.bindings.set(param.ID(), binding)
	}
}

func (c *compiler) bindField(field *syntax.Field) {
	binding := &FieldBinding{Field: field}
	if c.register(classMember, "field", field.Name(), binding) {
		c.bindings.set(field.ID(), binding)
	}
	c.bindTypeExpr(field.Type())
}

func (c *compiler) bindVariantCase(node *syntax.Case) {
	binding := &CaseBinding{Case: node}
	if c.register(classMember, "case", node.Name(), binding) {
		c.bindings.set(node.ID(), binding)
	}

	caseScope := c.openScope(scopeCase)
	defer caseScope.close()

	for _, field := range node.Fields() {
		c.bindField(field)
	}
	for _, doc := range node.Documentation() {
		c.bindDocumentation(doc, c.checkFieldBinding)
	}
}

func (c *compiler) bindProtocolVersion(proto *syntax.Protocol, version *syntax.Version) {
	key := scopeKey{classMember, strconv.FormatUint(version.Number(), 10)}
	current := c.currentScope()
	binding := &VersionBinding{Version: version}
	if prior, exists := current.entries[key]; exists {
		c.err(errVersionConflict(version, proto.Name().Get(), prior.Pos()))
	} else {
		current.entries[key] = binding
		c.bindings.set(version.ID(), binding)
	}

	for _, ref := range version.TypesAdded() {
		c.checkTypeBinding(ref)
	}
	for _, ref := range version.TypesRemoved() {
		c.checkTypeBinding(ref)
	}
}

func (c *compiler) bindParameters(decl syntax.TypeDecl) {
	for ii, param := range decl.Parameters() {
		c.bindTypeParameter(decl, param, ii)
	}
}

func (c *compiler) bindRecordBody(decl *syntax.Record) {
	declScope := c.openScope(scopeTypeDecl)
	defer declScope.close()

	c.bindParameters(decl)
	for _, field := range decl.Fields() {
		c.bindField(field)
	}
	for _, doc := range decl.Documentation() {
		c.bindDocumentation(doc, c.checkTypeParameterOrFieldBinding)
	}
}

func (c *compiler) bindVariantBody(decl *syntax.Variant) {
	declScope := c.openScope(scopeTypeDecl)
	defer declScope.close()

	c.bindParameters(decl)
	for _, node := range decl.Cases() {
		c.bindVariantCase(node)
	}
	for _, doc := range decl.Documentation() {
		c.bindDocumentation(doc, c.checkTypeParameterOrCaseBinding)
	}
}

func (c *compiler) bindExternalBody(decl *syntax.External) {
	declScope := c.openScope(scopeTypeDecl)
	defer declScope.close()

	c.bindParameters(decl)
	for _, doc := range decl.Documentation() {
		c.bindDocumentation(doc, c.checkTypeParameterOrFieldBinding)
	}
}

func (c *compiler) bindProtocolBody(decl *syntax.Protocol) {
	protoScope := c.openScope(scopeProtocol)
	defer protoScope.close()

	if len(decl.Versions()) == 0 {
		c.warn(warnEmptyProtocol(decl))
	}
	for _, version := range decl.Versions() {
		c.bindProtocolVersion(decl, version)
	}
}

func (c *compiler) bindTypeExpr(expr syntax.TypeExpr) {
	switch expr := expr.(type) {
	case *syntax.TypeName:
		c.checkTypeBinding(expr)
	case *syntax.TypeApplication:
		if binding, ok := c.checkTypeBinding(expr.Target()); ok {
			c.bindings.set(expr.ID(), binding)
		}
		for _, arg := range expr.Arguments() {
			c.bindTypeExpr(arg)
		}
	default:
		panic("unreachable")
	}
}

func (c *compiler) bindDocumentation(
	doc *syntax.Documentation,
	check func(*syntax.Name) (Binding, bool),
) {
	if binding, ok := check(doc.Target()); ok {
		c.bindings.set(doc.ID(), binding)
		c.bindings.set(doc.Target().ID(), binding)
	}
}

// checkTypeBinding resolves a type reference. Unqualified names resolve
// innermost-first, so type parameters are found before package types.
func (c *compiler) checkTypeBinding(ref *syntax.TypeName) (Binding, bool) {
	name := ref.Name().Get()

	if short := ref.Scope(); short != nil {
		imp, ok := c.checkPackageBinding(short)
		if !ok {
			return nil, false
		}
		decl, ok := imp.Package.Type(name)
		if !ok {
			var candidates []string
			for _, decl := range imp.Package.Types() {
				candidates = append(candidates, decl.Name())
			}
			c.err(errUnknownImportedType(ref.Name(), imp.Package.Name(), suggest(name, candidates)))
			return nil, false
		}
		binding := &ExternalBinding{Package: imp.Package, Decl: decl}
		c.bindings.set(ref.ID(), binding)
		c.bindings.set(ref.Name().ID(), binding)
		return binding, true
	}

	binding, ok := c.lookup(classType, name)
	if !ok {
		c.err(errUnknownType(ref.Name(), suggest(name, c.visibleNames(classType, false))))
		return nil, false
	}
	if _, isProtocol := binding.(*ProtocolBinding); isProtocol {
		c.err(errNotAType(ref.Name(), binding.Pos()))
		return nil, false
	}
	c.bindings.set(ref.ID(), binding)
	c.bindings.set(ref.Name().ID(), binding)
	return binding, true
}

func (c *compiler) checkPackageBinding(short *syntax.Name) (*ImportBinding, bool) {
	binding, ok := c.lookup(classImport, short.Get())
	if !ok {
		c.err(errUnknownImport(short, suggest(short.Get(), c.visibleNames(classImport, false))))
		return nil, false
	}
	imp := binding.(*ImportBinding)
	for _, info := range c.imports {
		if info.node == imp.Import {
			info.used = true
		}
	}
	c.bindings.set(short.ID(), imp)
	return imp, true
}

// checkLocalBinding resolves a name in the innermost scope, accepting
// only bindings for which accept returns true.
func (c *compiler) checkLocalBinding(
	name *syntax.Name,
	accept func(Binding) bool,
	classes ...nameClass,
) (Binding, bool) {
	var candidates []string
	for _, class := range classes {
		if binding, ok := c.lookupLocal(class, name.Get()); ok && accept(binding) {
			return binding, true
		}
		candidates = append(candidates, c.visibleNames(class, true)...)
	}
	c.err(errUnknownDocTarget(name, suggest(name.Get(), candidates)))
	return nil, false
}

func (c *compiler) checkTypeOrProtocolBinding(name *syntax.Name) (Binding, bool) {
	return c.checkLocalBinding(name, func(b Binding) bool {
		switch b.(type) {
		case *TypeBinding, *ProtocolBinding:
			return true
		}
		return false
	}, classType)
}

func (c *compiler) checkTypeParameterOrFieldBinding(name *syntax.Name) (Binding, bool) {
	return c.checkLocalBinding(name, func(b Binding) bool {
		switch b.(type) {
		case *TypeParameterBinding, *FieldBinding:
			return true
		}
		return false
	}, classType, classMember)
}

func (c *compiler) checkTypeParameterOrCaseBinding(name *syntax.Name) (Binding, bool) {
	return c.checkLocalBinding(name, func(b Binding) bool {
		switch b.(type) {
		case *TypeParameterBinding, *CaseBinding:
			return true
		}
		return false
	}, classType, classMember)
}

func (c *compiler) checkFieldBinding(name *syntax.Name) (Binding, bool) {
	return c.checkLocalBinding(name, func(b Binding) bool {
		_, ok := b.(*FieldBinding)
		return ok
	}, classMember)
}
