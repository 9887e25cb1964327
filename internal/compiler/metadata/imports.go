package metadata

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"regexp"
	"sort"
	"strconv"
	"strings"

	cerrors "github.com/conduit-lang/tref/internal/compiler/errors"
)

// RuntimePath is the import path of the runtime registry.
const RuntimePath = "github.com/conduit-lang/tref/runtime/metadata"

// RuntimeName is the name generated code imports the runtime under.
const RuntimeName = "tref"

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

func (x *extraction) exprString(expr ast.Expr) string {
	var buf bytes.Buffer
	if err := format.Node(&buf, x.fset, expr); err != nil {
		return ""
	}
	return buf.String()
}

// fileImports maps the local names of a file's imports to their paths.
func fileImports(f *ast.File) map[string]string {
	out := make(map[string]string, len(f.Imports))
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := ImportName(path)
		if imp.Name != nil {
			name = imp.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		out[name] = path
	}
	return out
}

// ImportName guesses the package name of an import path the way goimports
// does when the package itself is not at hand.
func ImportName(path string) string {
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]
	if majorVersion.MatchString(name) && len(parts) > 1 {
		name = parts[len(parts)-2]
	}
	name = strings.TrimPrefix(name, "go-")
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, "-", "_")
}

// collectImports gathers the imports referenced by every expression the
// generated file will contain.
func (x *extraction) collectImports() {
	for _, t := range x.pkg.Types {
		f := x.typeFiles[t]
		pos := x.declPos(t)

		exprs := []string{t.Meta}
		for _, tp := range t.TypeParams {
			exprs = append(exprs, tp.Constraint)
		}
		for _, inst := range t.Instances {
			exprs = append(exprs, "T["+inst+"]")
		}
		if t.Base != nil {
			exprs = append(exprs, t.Base.Expr)
		}
		if t.Foreign {
			exprs = append(exprs, t.Name)
		}
		x.requireImports(f, pos, exprs...)
	}

	for _, pf := range x.facts {
		exprs := []string{pf.fact.Meta, pf.fact.Sig}
		switch pf.fact.Kind {
		case FactField:
			if !pf.fact.Reflective {
				exprs = append(exprs, pf.fact.TypeExpr)
			}
		case FactMemberType:
			exprs = append(exprs, pf.fact.TypeExpr)
		}
		x.requireImports(pf.file, x.errPos(pf.pos), exprs...)
	}

	for _, en := range x.pkg.Enums {
		f := x.fileOf(en.Pos.File)
		x.requireImports(f, x.declPos(&TypeDecl{Pos: en.Pos}), en.Meta)
		for _, item := range en.Items {
			x.requireImports(x.fileOf(item.Pos.File), x.declPos(&TypeDecl{Pos: item.Pos}), item.Meta)
		}
	}

	x.pkg.Imports = x.pkg.Imports[:0]
	for _, imp := range x.imports {
		x.pkg.Imports = append(x.pkg.Imports, imp)
	}
	sort.Slice(x.pkg.Imports, func(i, j int) bool {
		return x.pkg.Imports[i].Path < x.pkg.Imports[j].Path
	})
}

func (x *extraction) fileOf(name string) *sourceFile {
	for _, f := range x.files {
		if f.name == name {
			return f
		}
	}
	return nil
}

func (x *extraction) requireImports(f *sourceFile, pos token.Position, exprs ...string) {
	if f == nil {
		return
	}
	for _, src := range exprs {
		if src == "" {
			continue
		}
		expr, err := parser.ParseExpr(src)
		if err != nil {
			continue
		}
		ast.Inspect(expr, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			id, ok := sel.X.(*ast.Ident)
			if !ok {
				return true
			}
			if path, ok := f.imports[id.Name]; ok {
				x.require(id.Name, path, pos)
			}
			return true
		})
	}
}

func (x *extraction) require(name, path string, pos token.Position) {
	if name == RuntimeName {
		if path != RuntimePath {
			x.errs = append(x.errs, cerrors.NewImportConflict(pos, name, path, RuntimePath))
		}
		return
	}
	if prev, ok := x.imports[name]; ok {
		if prev.Path != path {
			x.errs = append(x.errs, cerrors.NewImportConflict(pos, name, path, prev.Path))
		}
		return
	}
	x.imports[name] = Import{
		Name:     name,
		Path:     path,
		Explicit: name != ImportName(path),
	}
}

