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

package main

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"path"
	"slices"
	"strings"

	"github.com/io7m-com/cedarbridge-sub001/compiler"
	"github.com/io7m-com/cedarbridge-sub001/encoding/cbpack"
	"github.com/io7m-com/cedarbridge-sub001/model"
	"github.com/io7m-com/cedarbridge-sub001/plugin/abi"
)

const corePackage = "cedarbridge.core"

// Option keys understood by the generator.
const (
	optionGoPackage = "go_package"
	optionImport    = "import."
	optionExternal  = "external."
)

var coreScalars = map[string]string{
	"IntegerUnsigned8":  "uint8",
	"IntegerUnsigned16": "uint16",
	"IntegerUnsigned32": "uint32",
	"IntegerUnsigned64": "uint64",
	"IntegerSigned8":    "int8",
	"IntegerSigned16":   "int16",
	"IntegerSigned32":   "int32",
	"IntegerSigned64":   "int64",
	"Float16":           "float32",
	"Float32":           "float32",
	"Float64":           "float64",
	"String":            "string",
	"ByteArray":         "[]byte",
	"UUID":              "[16]byte",
}

// generate decodes the packages of req and renders the requested one as
// a single Go source file.
func generate(req *abi.Request) ([]abi.OutputFile, error) {
	deps := compiler.NewPackageSet()
	for ii, data := range req.Dependencies {
		dep, err := cbpack.Decode(data, deps)
		if err != nil {
			return nil, fmt.Errorf("dependency %d: %w", ii, err)
		}
		deps.Add(dep)
	}
	pkg, err := cbpack.Decode(req.Package, deps)
	if err != nil {
		return nil, fmt.Errorf("package: %w", err)
	}

	c, err := newCodegen(pkg, req.Options)
	if err != nil {
		return nil, err
	}
	if err := c.emitPackage(); err != nil {
		return nil, err
	}
	return []abi.OutputFile{{
		Path:    []string{c.goPackage + ".go"},
		Content: c.output,
	}}, nil
}

type codegen struct {
	pkg       *model.Package
	options   map[string]string
	goPackage string

	imports    map[string]string
	names      map[string]string
	comparable map[*model.TypeParameter]bool

	body   bytes.Buffer
	output []byte
}

func newCodegen(pkg *model.Package, options map[string]string) (*codegen, error) {
	goPackage := options[optionGoPackage]
	if goPackage == "" {
		goPackage = defaultGoPackage(pkg.Name())
	}
	if !token.IsIdentifier(goPackage) {
		return nil, fmt.Errorf("option %s: %q is not a valid Go package name", optionGoPackage, goPackage)
	}
	return &codegen{
		pkg:        pkg,
		options:    options,
		goPackage:  goPackage,
		imports:    make(map[string]string),
		names:      make(map[string]string),
		comparable: comparableParameters(pkg),
	}, nil
}

func defaultGoPackage(pkgName string) string {
	last := pkgName[strings.LastIndexByte(pkgName, '.')+1:]
	return strings.ReplaceAll(last, "_", "")
}

func (c *codegen) printf(format string, args ...any) {
	fmt.Fprintf(&c.body, format, args...)
}

func (c *codegen) emitPackage() error {
	for _, decl := range c.pkg.Types() {
		var err error
		switch decl := decl.(type) {
		case *model.Record:
			err = c.emitRecord(decl)
		case *model.Variant:
			err = c.emitVariant(decl)
		case *model.External:
			err = c.emitExternal(decl)
		default:
			panic("unreachable")
		}
		if err != nil {
			return err
		}
	}
	for _, proto := range c.pkg.Protocols() {
		if err := c.emitProtocol(proto); err != nil {
			return err
		}
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "// Code generated by cedarbridge-codegen-go. DO NOT EDIT.\n")
	fmt.Fprintf(&out, "// Source package: %s\n\n", c.pkg.Name())
	writeDoc(&out, "", c.pkg.Documentation())
	fmt.Fprintf(&out, "package %s\n\n", c.goPackage)
	if len(c.imports) > 0 {
		out.WriteString("import (\n")
		paths := make([]string, 0, len(c.imports))
		for importPath := range c.imports {
			paths = append(paths, importPath)
		}
		slices.Sort(paths)
		for _, importPath := range paths {
			fmt.Fprintf(&out, "\t%s %q\n", c.imports[importPath], importPath)
		}
		out.WriteString(")\n\n")
	}
	out.Write(c.body.Bytes())

	formatted, err := format.Source(out.Bytes())
	if err != nil {
		return fmt.Errorf("formatting generated code: %w", err)
	}
	c.output = formatted
	return nil
}

// claim reserves a top-level Go identifier for the named schema element.
func (c *codegen) claim(goName, what string) error {
	if prior, ok := c.names[goName]; ok {
		return fmt.Errorf("generated name %s for %s conflicts with %s", goName, what, prior)
	}
	c.names[goName] = what
	return nil
}

func (c *codegen) emitRecord(decl *model.Record) error {
	if err := c.claim(decl.Name(), "record "+decl.Name()); err != nil {
		return err
	}
	writeDoc(&c.body, "", decl.Documentation())
	c.printf("type %s%s struct {\n", decl.Name(), c.typeParams(decl))
	if err := c.emitFields(decl.Fields()); err != nil {
		return fmt.Errorf("record %s: %w", decl.Name(), err)
	}
	c.printf("}\n\n")
	return nil
}

func (c *codegen) emitVariant(decl *model.Variant) error {
	if err := c.claim(decl.Name(), "variant "+decl.Name()); err != nil {
		return err
	}
	params := c.typeParams(decl)
	args := typeArgs(decl)
	marker := "is" + decl.Name()

	writeDoc(&c.body, "", decl.Documentation())
	c.printf("type %s%s interface {\n\t%s()\n}\n\n", decl.Name(), params, marker)
	for _, vcase := range decl.Cases() {
		caseName := decl.Name() + vcase.Name()
		if err := c.claim(caseName, fmt.Sprintf("case %s of variant %s", vcase.Name(), decl.Name())); err != nil {
			return err
		}
		writeDoc(&c.body, "", vcase.Documentation())
		c.printf("type %s%s struct {\n", caseName, params)
		if err := c.emitFields(vcase.Fields()); err != nil {
			return fmt.Errorf("variant %s case %s: %w", decl.Name(), vcase.Name(), err)
		}
		c.printf("}\n\n")
		c.printf("func (%s%s) %s() {}\n\n", caseName, args, marker)
	}
	return nil
}

func (c *codegen) emitExternal(decl *model.External) error {
	if err := c.claim(decl.Name(), "external "+decl.Name()); err != nil {
		return err
	}
	if decl.Arity() > 0 {
		return fmt.Errorf("external %s: parameterized externals have no Go mapping", decl.Name())
	}
	goType, err := c.externalType(decl)
	if err != nil {
		return err
	}
	writeDoc(&c.body, "", decl.Documentation())
	c.printf("type %s = %s\n\n", decl.Name(), goType)
	return nil
}

func (c *codegen) emitFields(fields []*model.Field) error {
	seen := make(map[string]string, len(fields))
	for _, field := range fields {
		goName := exportedName(field.Name())
		if prior, ok := seen[goName]; ok {
			return fmt.Errorf("fields %s and %s both map to %s", prior, field.Name(), goName)
		}
		seen[goName] = field.Name()

		goType, err := c.goType(field.Type())
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name(), err)
		}
		writeDoc(&c.body, "\t", field.Documentation())
		c.printf("\t%s %s `cedarbridge:%q`\n", goName, goType, field.Name())
	}
	return nil
}

func (c *codegen) emitProtocol(proto *model.Protocol) error {
	goName := proto.Name() + "Versions"
	if err := c.claim(goName, "protocol "+proto.Name()); err != nil {
		return err
	}
	if docs := proto.Documentation(); len(docs) > 0 {
		writeDoc(&c.body, "", docs)
		c.printf("//\n")
	}
	c.printf("// %s maps each version of protocol %s to the qualified names\n", goName, proto.Name())
	c.printf("// of its member types.\n")
	c.printf("var %s = map[uint64][]string{\n", goName)
	for _, version := range proto.Versions() {
		c.printf("\t%d: {", version.Number())
		for ii, decl := range version.Types() {
			if ii > 0 {
				c.printf(", ")
			}
			c.printf("%q", model.QualifiedName(decl))
		}
		c.printf("},\n")
	}
	c.printf("}\n\n")
	return nil
}

func (c *codegen) typeParams(decl model.TypeDecl) string {
	params := decl.Parameters()
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, param := range params {
		constraint := "any"
		if c.comparable[param] {
			constraint = "comparable"
		}
		parts = append(parts, exportedName(param.Name())+" "+constraint)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func typeArgs(decl model.TypeDecl) string {
	params := decl.Parameters()
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, param := range params {
		parts = append(parts, exportedName(param.Name()))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (c *codegen) goType(expr model.TypeExpr) (string, error) {
	switch expr := expr.(type) {
	case *model.ParameterRef:
		return exportedName(expr.Parameter().Name()), nil
	case *model.Named:
		return c.declRef(expr.Decl(), nil)
	case *model.Application:
		args := make([]string, 0, len(expr.Arguments()))
		for _, arg := range expr.Arguments() {
			goArg, err := c.goType(arg)
			if err != nil {
				return "", err
			}
			args = append(args, goArg)
		}
		return c.declRef(expr.Target().Decl(), args)
	default:
		panic("unreachable")
	}
}

func (c *codegen) declRef(decl model.TypeDecl, args []string) (string, error) {
	owner := decl.Package()
	if owner.Name() == corePackage {
		return coreType(decl, args)
	}

	var argList string
	if len(args) > 0 {
		argList = "[" + strings.Join(args, ", ") + "]"
	}
	if owner == c.pkg {
		return decl.Name() + argList, nil
	}

	key := optionImport + owner.Name()
	importPath := c.options[key]
	if importPath == "" {
		return "", fmt.Errorf("no Go import path for package %s (set option %s)", owner.Name(), key)
	}
	return c.qualifier(importPath) + "." + decl.Name() + argList, nil
}

func coreType(decl model.TypeDecl, args []string) (string, error) {
	if scalar, ok := coreScalars[decl.Name()]; ok {
		return scalar, nil
	}
	switch decl.Name() {
	case "List":
		return "[]" + args[0], nil
	case "Map":
		return "map[" + args[0] + "]" + args[1], nil
	case "Option":
		return "*" + args[0], nil
	}
	return "", fmt.Errorf("no Go mapping for %s", model.QualifiedName(decl))
}

// externalType reads the Go type of an external declared in the current
// package from its option, such as "external.com.example.Timestamp=time.Time".
func (c *codegen) externalType(decl *model.External) (string, error) {
	key := optionExternal + model.QualifiedName(decl)
	value := c.options[key]
	if value == "" {
		return "", fmt.Errorf("no Go type for external %s (set option %s)", decl.Name(), key)
	}
	slash := strings.LastIndexByte(value, '/')
	dot := strings.LastIndexByte(value, '.')
	if dot <= slash {
		return value, nil
	}
	return c.qualifier(value[:dot]) + value[dot:], nil
}

// qualifier registers an import and returns the identifier it is
// imported as.
func (c *codegen) qualifier(importPath string) string {
	if ident, ok := c.imports[importPath]; ok {
		return ident
	}
	base := strings.NewReplacer("-", "", ".", "").Replace(path.Base(importPath))
	ident := base
	for n := 2; c.identTaken(ident); n++ {
		ident = fmt.Sprintf("%s%d", base, n)
	}
	c.imports[importPath] = ident
	return ident
}

func (c *codegen) identTaken(ident string) bool {
	for _, taken := range c.imports {
		if taken == ident {
			return true
		}
	}
	return false
}

// comparableParameters finds the type parameters used as map keys,
// directly or through another declaration of the same package.
func comparableParameters(pkg *model.Package) map[*model.TypeParameter]bool {
	out := make(map[*model.TypeParameter]bool)
	var mark func(expr model.TypeExpr) bool
	mark = func(expr model.TypeExpr) bool {
		app, ok := expr.(*model.Application)
		if !ok {
			return false
		}
		changed := false
		target := app.Target().Decl()
		for ii, arg := range app.Arguments() {
			if mark(arg) {
				changed = true
			}
			ref, ok := arg.(*model.ParameterRef)
			if !ok || out[ref.Parameter()] {
				continue
			}
			isKey := target.Package().Name() == corePackage && target.Name() == "Map" && ii == 0
			if target.Package() == pkg && out[target.Parameters()[ii]] {
				isKey = true
			}
			if isKey {
				out[ref.Parameter()] = true
				changed = true
			}
		}
		return changed
	}

	for {
		changed := false
		for _, decl := range pkg.Types() {
			for _, field := range declFields(decl) {
				if mark(field.Type()) {
					changed = true
				}
			}
		}
		if !changed {
			return out
		}
	}
}

func declFields(decl model.TypeDecl) []*model.Field {
	switch decl := decl.(type) {
	case *model.Record:
		return decl.Fields()
	case *model.Variant:
		var fields []*model.Field
		for _, vcase := range decl.Cases() {
			fields = append(fields, vcase.Fields()...)
		}
		return fields
	}
	return nil
}

// exportedName converts a lower-case schema name such as "first_name"
// into an exported Go identifier ("FirstName").
func exportedName(name string) string {
	var out strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		out.WriteString(strings.ToUpper(part[:1]))
		out.WriteString(part[1:])
	}
	return out.String()
}

func writeDoc(buf *bytes.Buffer, indent string, docs []string) {
	for ii, doc := range docs {
		if ii > 0 {
			fmt.Fprintf(buf, "%s//\n", indent)
		}
		for _, line := range strings.Split(doc, "\n") {
			line = strings.TrimRight(line, " \t")
			if line == "" {
				fmt.Fprintf(buf, "%s//\n", indent)
				continue
			}
			fmt.Fprintf(buf, "%s// %s\n", indent, line)
		}
	}
}
