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

package syntax

import (
	"errors"
	"fmt"
	"strings"

	"github.com/io7m-com/cedarbridge-sub001/names"
)

const (
	LanguageName  = "cedarbridge"
	LanguageMajor = 1
	LanguageMinor = 0
)

type ParseOption interface {
	apply(*ParseOptions)
}

type parseOptionFunc func(*ParseOptions)

func (fn parseOptionFunc) apply(opts *ParseOptions) {
	fn(opts)
}

// FileName sets the file name reported in node positions.
func FileName(name string) ParseOption {
	return parseOptionFunc(func(opts *ParseOptions) {
		opts.fileName = name
	})
}

func Parse(src []uint8, opts ...ParseOption) (*Schema, error) {
	return NewParseOptions(opts...).ParseSchema(src)
}

type ParseOptions struct {
	fileName string
}

func NewParseOptions(opts ...ParseOption) *ParseOptions {
	parseOpts := &ParseOptions{
		fileName: "<input>",
	}
	for _, opt := range opts {
		opt.apply(parseOpts)
	}
	return parseOpts
}

func (opts *ParseOptions) ParseSchema(src []uint8) (*Schema, error) {
	forms, err := ReadForms(src)
	if err != nil {
		return nil, err
	}
	p := newDeclParser(opts, src)
	return p.schemaFromForms(forms)
}

func (opts *ParseOptions) ParseTypeExpr(src []uint8) (TypeExpr, error) {
	forms, err := ReadForms(src)
	if err != nil {
		return nil, err
	}
	if len(forms) != 1 {
		return nil, errWrongArgumentCount("type expression", "1", len(forms), Span{0, uint32(len(src))})
	}
	p := newDeclParser(opts, src)
	return p.typeExpr(forms[0])
}

type declParser struct {
	file   *File
	schema *Schema
}

func newDeclParser(opts *ParseOptions, src []uint8) *declParser {
	file := NewFile(opts.fileName, src)
	return &declParser{
		file:   file,
		schema: &Schema{file: file},
	}
}

func (p *declParser) base(span Span) nodeBase {
	p.schema.nextID++
	return nodeBase{
		id:   p.schema.nextID,
		span: span,
		pos:  p.file.Pos(span.start),
	}
}

func (p *declParser) schemaFromForms(forms []SExpr) (*Schema, error) {
	schema := p.schema
	for ii, form := range forms {
		list, head, err := p.keywordForm("top-level declaration", form)
		if err != nil {
			return nil, err
		}
		args := list.elements[1:]
		switch head.Get() {
		case "language":
			if ii != 0 {
				return nil, errLanguageNotFirst(list.span)
			}
			schema.language, err = p.language(list, args)
		case "package":
			if schema.pkg != nil {
				return nil, errDuplicatePackage(list.span)
			}
			schema.pkg, err = p.packageDecl(list, args)
		case "import":
			var imp *Import
			if imp, err = p.importDecl(list, args); err == nil {
				schema.imports = append(schema.imports, imp)
			}
		case "documentation":
			var doc *Documentation
			if doc, err = p.documentation(list, args); err == nil {
				schema.docs = append(schema.docs, doc)
			}
		case "record":
			var decl *Record
			if decl, err = p.record(list, args); err == nil {
				schema.decls = append(schema.decls, decl)
			}
		case "variant":
			var decl *Variant
			if decl, err = p.variant(list, args); err == nil {
				schema.decls = append(schema.decls, decl)
			}
		case "external":
			var decl *External
			if decl, err = p.external(list, args); err == nil {
				schema.decls = append(schema.decls, decl)
			}
		case "protocol":
			var decl *Protocol
			if decl, err = p.protocol(list, args); err == nil {
				schema.decls = append(schema.decls, decl)
			}
		default:
			return nil, errUnknownKeyword("top-level declaration", head)
		}
		if err != nil {
			return nil, err
		}
	}
	if schema.pkg == nil {
		return nil, errMissingPackage()
	}
	return schema, nil
}

func (p *declParser) keywordForm(context string, form SExpr) (*List, *Symbol, error) {
	list, ok := form.(*List)
	if !ok {
		return nil, nil, errExpectedList(context, form)
	}
	head, ok := list.Head()
	if !ok {
		return nil, nil, errExpectedSymbol(context, list)
	}
	return list, head, nil
}

func (p *declParser) name(kind names.Kind, context string, form SExpr) (*Name, error) {
	sym, ok := form.(*Symbol)
	if !ok {
		return nil, errExpectedSymbol(context, form)
	}
	if err := names.Validate(kind, sym.raw); err != nil {
		return nil, errInvalidName(kind.String(), sym, err)
	}
	return &Name{
		nodeBase: p.base(sym.Span()),
		value:    sym.raw,
	}, nil
}

func (p *declParser) language(list *List, args []SExpr) (*Language, error) {
	if len(args) != 3 {
		return nil, errWrongArgumentCount("language", "3", len(args), list.span)
	}
	sym, ok := args[0].(*Symbol)
	if !ok {
		return nil, errExpectedSymbol("language", args[0])
	}
	major, ok := args[1].(*Integer)
	if !ok {
		return nil, errExpectedIntLit("language", args[1])
	}
	minor, ok := args[2].(*Integer)
	if !ok {
		return nil, errExpectedIntLit("language", args[2])
	}
	if sym.raw != LanguageName || major.value != LanguageMajor || minor.value != LanguageMinor {
		return nil, errUnsupportedLanguage(sym.raw, major.value, minor.value, list.span)
	}
	return &Language{
		nodeBase: p.base(list.span),
		name:     sym.raw,
		major:    major.value,
		minor:    minor.value,
	}, nil
}

func (p *declParser) packageDecl(list *List, args []SExpr) (*PackageDecl, error) {
	if len(args) != 1 {
		return nil, errWrongArgumentCount("package", "1", len(args), list.span)
	}
	decl := &PackageDecl{nodeBase: p.base(list.span)}
	var err error
	if decl.name, err = p.name(names.KindPackage, "package", args[0]); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *declParser) importDecl(list *List, args []SExpr) (*Import, error) {
	if len(args) != 2 {
		return nil, errWrongArgumentCount("import", "2", len(args), list.span)
	}
	decl := &Import{nodeBase: p.base(list.span)}
	var err error
	if decl.pkg, err = p.name(names.KindPackage, "import", args[0]); err != nil {
		return nil, err
	}
	if decl.short, err = p.name(names.KindImportShort, "import", args[1]); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *declParser) documentation(list *List, args []SExpr) (*Documentation, error) {
	if len(args) != 2 {
		return nil, errWrongArgumentCount("documentation", "2", len(args), list.span)
	}
	target, ok := args[0].(*Symbol)
	if !ok {
		return nil, errExpectedSymbol("documentation", args[0])
	}
	text, ok := args[1].(*Quoted)
	if !ok {
		return nil, errExpectedTextLit("documentation", args[1])
	}
	doc := &Documentation{nodeBase: p.base(list.span)}
	doc.target = &Name{nodeBase: p.base(target.Span()), value: target.raw}
	doc.text = text.value
	return doc, nil
}

func (p *declParser) typeDeclHeader(
	keyword string,
	list *List,
	args []SExpr,
) (typeDeclBase, error) {
	if len(args) < 1 {
		return typeDeclBase{}, errWrongArgumentCount(keyword, "at least 1", len(args), list.span)
	}
	decl := typeDeclBase{nodeBase: p.base(list.span)}
	var err error
	decl.name, err = p.name(names.KindType, keyword, args[0])
	return decl, err
}

func (p *declParser) parameter(list *List, args []SExpr) (*Parameter, error) {
	if len(args) != 1 {
		return nil, errWrongArgumentCount("parameter", "1", len(args), list.span)
	}
	param := &Parameter{nodeBase: p.base(list.span)}
	var err error
	if param.name, err = p.name(names.KindTypeParameter, "parameter", args[0]); err != nil {
		return nil, err
	}
	return param, nil
}

func (p *declParser) field(list *List, args []SExpr) (*Field, error) {
	if len(args) != 2 {
		return nil, errWrongArgumentCount("field", "2", len(args), list.span)
	}
	field := &Field{nodeBase: p.base(list.span)}
	var err error
	if field.name, err = p.name(names.KindField, "field", args[0]); err != nil {
		return nil, err
	}
	if field.typ, err = p.typeExpr(args[1]); err != nil {
		return nil, err
	}
	return field, nil
}

func (p *declParser) record(list *List, args []SExpr) (*Record, error) {
	base, err := p.typeDeclHeader("record", list, args)
	if err != nil {
		return nil, err
	}
	decl := &Record{typeDeclBase: base}
	for _, item := range args[1:] {
		itemList, head, err := p.keywordForm("record", item)
		if err != nil {
			return nil, err
		}
		itemArgs := itemList.elements[1:]
		switch head.Get() {
		case "parameter":
			param, err := p.parameter(itemList, itemArgs)
			if err != nil {
				return nil, err
			}
			decl.params = append(decl.params, param)
		case "field":
			field, err := p.field(itemList, itemArgs)
			if err != nil {
				return nil, err
			}
			decl.fields = append(decl.fields, field)
		case "documentation":
			doc, err := p.documentation(itemList, itemArgs)
			if err != nil {
				return nil, err
			}
			decl.docs = append(decl.docs, doc)
		default:
			return nil, errUnknownKeyword("record", head)
		}
	}
	return decl, nil
}

func (p *declParser) variant(list *List, args []SExpr) (*Variant, error) {
	base, err := p.typeDeclHeader("variant", list, args)
	if err != nil {
		return nil, err
	}
	decl := &Variant{typeDeclBase: base}
	for _, item := range args[1:] {
		itemList, head, err := p.keywordForm("variant", item)
		if err != nil {
			return nil, err
		}
		itemArgs := itemList.elements[1:]
		switch head.Get() {
		case "parameter":
			param, err := p.parameter(itemList, itemArgs)
			if err != nil {
				return nil, err
			}
			decl.params = append(decl.params, param)
		case "case":
			variantCase, err := p.variantCase(itemList, itemArgs)
			if err != nil {
				return nil, err
			}
			decl.cases = append(decl.cases, variantCase)
		case "documentation":
			doc, err := p.documentation(itemList, itemArgs)
			if err != nil {
				return nil, err
			}
			decl.docs = append(decl.docs, doc)
		default:
			return nil, errUnknownKeyword("variant", head)
		}
	}
	return decl, nil
}

func (p *declParser) variantCase(list *List, args []SExpr) (*Case, error) {
	if len(args) < 1 {
		return nil, errWrongArgumentCount("case", "at least 1", len(args), list.span)
	}
	variantCase := &Case{nodeBase: p.base(list.span)}
	var err error
	if variantCase.name, err = p.name(names.KindCase, "case", args[0]); err != nil {
		return nil, err
	}
	for _, item := range args[1:] {
		itemList, head, err := p.keywordForm("case", item)
		if err != nil {
			return nil, err
		}
		itemArgs := itemList.elements[1:]
		switch head.Get() {
		case "field":
			field, err := p.field(itemList, itemArgs)
			if err != nil {
				return nil, err
			}
			variantCase.fields = append(variantCase.fields, field)
		case "documentation":
			doc, err := p.documentation(itemList, itemArgs)
			if err != nil {
				return nil, err
			}
			variantCase.docs = append(variantCase.docs, doc)
		default:
			return nil, errUnknownKeyword("case", head)
		}
	}
	return variantCase, nil
}

func (p *declParser) external(list *List, args []SExpr) (*External, error) {
	base, err := p.typeDeclHeader("external", list, args)
	if err != nil {
		return nil, err
	}
	decl := &External{typeDeclBase: base}
	for _, item := range args[1:] {
		itemList, head, err := p.keywordForm("external", item)
		if err != nil {
			return nil, err
		}
		itemArgs := itemList.elements[1:]
		switch head.Get() {
		case "parameter":
			param, err := p.parameter(itemList, itemArgs)
			if err != nil {
				return nil, err
			}
			decl.params = append(decl.params, param)
		case "documentation":
			doc, err := p.documentation(itemList, itemArgs)
			if err != nil {
				return nil, err
			}
			decl.docs = append(decl.docs, doc)
		default:
			return nil, errUnknownKeyword("external", head)
		}
	}
	return decl, nil
}

func (p *declParser) protocol(list *List, args []SExpr) (*Protocol, error) {
	if len(args) < 1 {
		return nil, errWrongArgumentCount("protocol", "at least 1", len(args), list.span)
	}
	decl := &Protocol{nodeBase: p.base(list.span)}
	var err error
	if decl.name, err = p.name(names.KindProtocol, "protocol", args[0]); err != nil {
		return nil, err
	}
	for _, item := range args[1:] {
		itemList, head, err := p.keywordForm("protocol", item)
		if err != nil {
			return nil, err
		}
		if head.Get() != "version" {
			return nil, errUnknownKeyword("protocol", head)
		}
		version, err := p.version(itemList, itemList.elements[1:])
		if err != nil {
			return nil, err
		}
		decl.versions = append(decl.versions, version)
	}
	return decl, nil
}

func (p *declParser) version(list *List, args []SExpr) (*Version, error) {
	if len(args) < 1 {
		return nil, errWrongArgumentCount("version", "at least 1", len(args), list.span)
	}
	number, ok := args[0].(*Integer)
	if !ok {
		return nil, errExpectedIntLit("version", args[0])
	}
	version := &Version{
		nodeBase: p.base(list.span),
		number:   number.value,
	}
	for _, item := range args[1:] {
		itemList, head, err := p.keywordForm("version", item)
		if err != nil {
			return nil, err
		}
		itemArgs := itemList.elements[1:]
		switch head.Get() {
		case "types-added":
			for _, arg := range itemArgs {
				ref, err := p.typeNameOnly("types-added", arg)
				if err != nil {
					return nil, err
				}
				version.added = append(version.added, ref)
			}
		case "types-removed":
			for _, arg := range itemArgs {
				ref, err := p.typeNameOnly("types-removed", arg)
				if err != nil {
					return nil, err
				}
				version.removed = append(version.removed, ref)
			}
		case "types-removed-all":
			if len(itemArgs) != 0 {
				return nil, errWrongArgumentCount("types-removed-all", "0", len(itemArgs), itemList.span)
			}
			version.removeAll = true
		default:
			return nil, errUnknownKeyword("version", head)
		}
	}
	return version, nil
}

func (p *declParser) typeNameOnly(context string, form SExpr) (*TypeName, error) {
	sym, ok := form.(*Symbol)
	if !ok {
		return nil, errExpectedSymbol(context, form)
	}
	return p.typeName(sym)
}

func (p *declParser) typeExpr(form SExpr) (TypeExpr, error) {
	switch node := form.(type) {
	case *Symbol:
		return p.typeName(node)
	case *List:
		if len(node.elements) < 2 {
			return nil, errEmptyTypeApplication(node.span)
		}
		app := &TypeApplication{nodeBase: p.base(node.span)}
		var err error
		if app.target, err = p.typeNameOnly("type application", node.elements[0]); err != nil {
			return nil, err
		}
		for _, arg := range node.elements[1:] {
			argExpr, err := p.typeExpr(arg)
			if err != nil {
				return nil, err
			}
			app.args = append(app.args, argExpr)
		}
		return app, nil
	default:
		return nil, errExpectedSymbol("type expression", form)
	}
}

var errTooManyColons = errors.New("at most one ':' separates the import name")

func (p *declParser) typeName(sym *Symbol) (*TypeName, error) {
	ref := &TypeName{nodeBase: p.base(sym.Span())}
	raw := sym.raw
	if strings.Count(raw, ":") > 1 {
		return nil, errInvalidName("type", sym, errTooManyColons)
	}

	if short, name, ok := strings.Cut(raw, ":"); ok {
		if err := names.Validate(names.KindImportShort, short); err != nil {
			return nil, errInvalidName(names.KindImportShort.String(), sym, err)
		}
		if err := names.Validate(names.KindType, name); err != nil {
			return nil, errInvalidName(names.KindType.String(), sym, err)
		}
		ref.scope = p.subName(sym, 0, short)
		ref.name = p.subName(sym, uint32(len(short)+1), name)
		return ref, nil
	}

	if !names.IsValid(names.KindType, raw) && !names.IsValid(names.KindTypeParameter, raw) {
		return nil, errInvalidName("type", sym, fmt.Errorf(
			"must be a type name or a type parameter name",
		))
	}
	ref.name = p.subName(sym, 0, raw)
	return ref, nil
}

func (p *declParser) subName(sym *Symbol, offset uint32, value string) *Name {
	return &Name{
		nodeBase: p.base(Span{sym.start + offset, uint32(len(value))}),
		value:    value,
	}
}
