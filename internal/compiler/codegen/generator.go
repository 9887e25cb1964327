// Package codegen turns an extracted package model into the registration
// file that populates the runtime registry when the package is initialized.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"strings"

	"go.uber.org/zap"

	cerrors "github.com/conduit-lang/tref/internal/compiler/errors"
	"github.com/conduit-lang/tref/internal/compiler/metadata"
)

// Header marks generated files.
const Header = "// Code generated by tref. DO NOT EDIT."

// Generator writes registration code
type Generator struct {
	buf    *bytes.Buffer
	indent int
	logger *zap.Logger
}

// NewGenerator creates a new code generator. A nil logger disables logging.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		buf:    &bytes.Buffer{},
		logger: logger,
	}
}

// Generate renders the registration file for pkg. The output is gofmt'ed and
// depends only on the model, so regenerating unchanged sources is a no-op.
func (g *Generator) Generate(pkg *metadata.Package, output string) ([]byte, error) {
	g.reset()

	g.writeLine(Header)
	g.writeLine("")
	g.writeLine("package %s", pkg.Name)
	g.writeLine("")
	g.writeImports(pkg.Imports)
	g.writeLine("")

	g.writeInit(pkg)

	for _, t := range pkg.Types {
		g.writeLine("")
		g.writeType(t)
	}
	for _, e := range pkg.Enums {
		g.writeLine("")
		g.writeEnum(e)
	}

	g.writeLine("")
	g.writeLine("func trefMust(err error) {")
	g.indent++
	g.writeLine("if err != nil {")
	g.indent++
	g.writeLine("panic(\"tref: \" + err.Error())")
	g.indent--
	g.writeLine("}")
	g.indent--
	g.writeLine("}")

	src, err := format.Source(g.buf.Bytes())
	if err != nil {
		g.logger.Debug("generated source does not parse",
			zap.String("package", pkg.Name),
			zap.Error(err))
		return nil, cerrors.ErrorList{cerrors.NewCodeGenFailed(token.Position{Filename: output}, err.Error()).
			WithContext("", strings.Split(g.buf.String(), "\n"))}
	}

	g.logger.Debug("generated registrations",
		zap.String("package", pkg.Name),
		zap.Int("types", len(pkg.Types)),
		zap.Int("enums", len(pkg.Enums)),
		zap.Int("bytes", len(src)))
	return src, nil
}

// reset clears the generator state
func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
}

// writeLine writes a formatted line with proper indentation
func (g *Generator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}

	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}

	if len(args) > 0 {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

// writeImports writes the import block: stdlib first, then everything else
// with the runtime last.
func (g *Generator) writeImports(imports []metadata.Import) {
	var stdlib, external []metadata.Import
	for _, imp := range imports {
		first, _, _ := strings.Cut(imp.Path, "/")
		if strings.Contains(first, ".") {
			external = append(external, imp)
		} else {
			stdlib = append(stdlib, imp)
		}
	}
	external = append(external, metadata.Import{Name: metadata.RuntimeName, Path: metadata.RuntimePath, Explicit: true})

	g.writeLine("import (")
	g.indent++
	for _, imp := range stdlib {
		g.writeImport(imp)
	}
	if len(stdlib) > 0 {
		g.writeLine("")
	}
	for _, imp := range external {
		g.writeImport(imp)
	}
	g.indent--
	g.writeLine(")")
}

func (g *Generator) writeImport(imp metadata.Import) {
	if imp.Explicit {
		g.writeLine("%s %q", imp.Name, imp.Path)
		return
	}
	g.writeLine("%q", imp.Path)
}

// writeInit calls every register function. Bases register themselves first,
// so the call order only matters for determinism.
func (g *Generator) writeInit(pkg *metadata.Package) {
	g.writeLine("func init() {")
	g.indent++
	for _, t := range pkg.Types {
		if !t.Generic() {
			g.writeLine("%s()", registerFunc(t.Name))
			continue
		}
		for _, args := range t.Instances {
			g.writeLine("%s[%s]()", registerFunc(t.Name), args)
		}
	}
	for _, e := range pkg.Enums {
		g.writeLine("%s()", registerFunc(e.Name))
	}
	g.indent--
	g.writeLine("}")
}

func (g *Generator) writeType(t *metadata.TypeDecl) {
	self := typeExpr(t)
	fn := registerFunc(t.Name)

	if t.External {
		g.writeLine("// %s registers %s on behalf of %s.", fn, t.Name, t.Registrar)
	}
	if t.Generic() {
		params := make([]string, len(t.TypeParams))
		for i, p := range t.TypeParams {
			params[i] = p.Name + " " + p.Constraint
		}
		g.writeLine("func %s[%s]() {", fn, strings.Join(params, ", "))
	} else {
		g.writeLine("func %s() {", fn)
	}
	g.indent++

	g.writeLine("if tref.IsReflected[%s]() {", self)
	g.indent++
	g.writeLine("return")
	g.indent--
	g.writeLine("}")

	if t.Base != nil && t.Base.Local {
		if t.Base.TypeArgs != "" {
			g.writeLine("%s[%s]()", registerFunc(t.Base.Name), t.Base.TypeArgs)
		} else {
			g.writeLine("%s()", registerFunc(t.Base.Name))
		}
	}

	g.writeLine("b := tref.Define[%s](", self)
	g.indent++
	for _, opt := range defineOptions(t, self) {
		g.writeLine("%s,", opt)
	}
	g.indent--
	g.writeLine(")")

	for _, f := range t.Facts {
		g.writeFact(self, f)
	}
	g.writeLine("trefMust(b.Err())")

	g.indent--
	g.writeLine("}")
}

func defineOptions(t *metadata.TypeDecl, self string) []string {
	var opts []string
	switch {
	case t.Root:
		opts = append(opts, "tref.Root()")
	case t.Base != nil:
		ref := "&v." + t.Base.Field
		ret := t.Base.Expr
		if t.Base.Pointer {
			ref = "v." + t.Base.Field
		}
		opts = append(opts, fmt.Sprintf("tref.Base(func(v *%s) *%s { return %s })", self, ret, ref))
	}
	if t.Subtype {
		opts = append(opts, "tref.Subtype()")
	}
	if t.DisplayName != "" {
		opts = append(opts, fmt.Sprintf("tref.Named(%q)", t.DisplayName))
	}
	if t.Meta != "" {
		opts = append(opts, fmt.Sprintf("tref.WithMeta(%s)", t.Meta))
	}
	opts = append(opts, fmt.Sprintf("tref.At(%q, %d)", t.Pos.File, t.Pos.Line))
	return opts
}

func (g *Generator) writeFact(self string, f *metadata.FactDecl) {
	meta := metaExpr(f.Meta)

	switch f.Kind {
	case metadata.FactField:
		if f.Reflective {
			g.writeLine("tref.FieldOf(b, %q, %s)", f.GoName, meta)
			return
		}
		g.writeLine("tref.Field(b, %q, func(v *%s) *%s { return &v.%s }, %s)",
			f.Name, self, f.TypeExpr, f.GoName, meta)

	case metadata.FactMethod:
		recv := self
		expr := self + "." + f.GoName
		if f.PointerRecv {
			recv = "*" + self
			expr = "(*" + self + ")." + f.GoName
		}
		if f.Sig != "" {
			g.writeLine("tref.Method[%s, %s](b, %q, %s, %s)", self, withReceiver(f.Sig, recv), f.Name, expr, meta)
			return
		}
		g.writeLine("tref.Method(b, %q, %s, %s)", f.Name, expr, meta)

	case metadata.FactStatic:
		g.writeLine("tref.Static(b, %q, &%s, %s)", f.Name, f.GoName, meta)

	case metadata.FactMemberType:
		g.writeLine("tref.MemberType[%s](b, %q, %s)", f.TypeExpr, f.Name, meta)
	}
}

func (g *Generator) writeEnum(e *metadata.EnumDecl) {
	g.writeLine("func %s() {", registerFunc(e.Name))
	g.indent++

	g.writeLine("_, err := tref.DefineEnum([]tref.EnumItem[%s]{", e.Name)
	g.indent++
	for _, item := range e.Items {
		if item.Meta != "" {
			g.writeLine("tref.ItemWithMeta[%s](%q, %s, %s),", e.Name, item.Raw, item.GoName, item.Meta)
			continue
		}
		g.writeLine("tref.Item[%s](%q, %s),", e.Name, item.Raw, item.GoName)
	}
	g.indent--

	opts := []string{fmt.Sprintf("tref.At(%q, %d)", e.Pos.File, e.Pos.Line)}
	if e.DisplayName != "" {
		opts = append(opts, fmt.Sprintf("tref.Named(%q)", e.DisplayName))
	}
	if e.Meta != "" {
		opts = append(opts, fmt.Sprintf("tref.WithMeta(%s)", e.Meta))
	}
	g.writeLine("}, %s)", strings.Join(opts, ", "))
	g.writeLine("trefMust(err)")

	g.indent--
	g.writeLine("}")
}

// typeExpr is the type as used inside its own register function.
func typeExpr(t *metadata.TypeDecl) string {
	if !t.Generic() {
		return t.Name
	}
	names := make([]string, len(t.TypeParams))
	for i, p := range t.TypeParams {
		names[i] = p.Name
	}
	return t.Name + "[" + strings.Join(names, ", ") + "]"
}

// registerFunc names the register function of a type or enum.
func registerFunc(name string) string {
	return "trefRegister" + strings.ReplaceAll(name, ".", "_")
}

func metaExpr(meta string) string {
	if meta == "" {
		return "nil"
	}
	return meta
}

// withReceiver inserts recv as the first parameter of a func type.
func withReceiver(sig, recv string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(sig), "func"))
	rest = strings.TrimPrefix(rest, "(")
	if strings.HasPrefix(strings.TrimSpace(rest), ")") {
		return "func(" + recv + rest
	}
	return "func(" + recv + ", " + rest
}
