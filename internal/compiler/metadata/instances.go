package metadata

import (
	"go/ast"
	"go/parser"
	"go/types"
	"strings"

	tref "github.com/conduit-lang/tref/runtime/metadata"
)

// assignIDs computes the IDs the runtime derives from reflect type names.
// A generic type has no runtime identity of its own, so each instantiation
// gets its own ID, named the way reflect spells it.
func (x *extraction) assignIDs() {
	for _, t := range x.pkg.Types {
		t.ID = tref.TypeIDFor(x.pkg.ImportPath, t.Name).String()
	}
	for _, en := range x.pkg.Enums {
		en.ID = tref.TypeIDFor(x.pkg.ImportPath, en.Name).String()
	}

	for _, t := range x.pkg.Types {
		if !t.Generic() || t.Foreign {
			continue
		}
		for _, args := range x.instantiations(t, map[*TypeDecl]bool{}) {
			name := t.Name + "[" + strings.Join(args, ",") + "]"
			t.Instantiations = append(t.Instantiations, Instantiation{
				Name: name,
				ID:   tref.TypeIDFor(x.pkg.ImportPath, name).String(),
			})
		}
	}
}

// instantiations returns the reflect-spelled argument lists t is used with:
// its own instances plus those reached through generic subtypes that pass
// their parameters down, as in Mid[T] embedding Root[T].
func (x *extraction) instantiations(t *TypeDecl, visiting map[*TypeDecl]bool) [][]string {
	if visiting[t] {
		return nil
	}
	visiting[t] = true
	defer delete(visiting, t)

	var out [][]string
	seen := map[string]bool{}
	add := func(args []string) {
		key := strings.Join(args, ",")
		if args == nil || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, args)
	}

	for _, inst := range t.Instances {
		add(x.reflectArgs(inst, x.typeFiles[t], nil))
	}
	for _, sub := range x.pkg.Types {
		if !sub.Generic() || sub.Base == nil || !sub.Base.Local || sub.Base.Name != t.Name || sub.Base.TypeArgs == "" {
			continue
		}
		for _, subArgs := range x.instantiations(sub, visiting) {
			if len(subArgs) != len(sub.TypeParams) {
				continue
			}
			subst := make(map[string]string, len(subArgs))
			for i, tp := range sub.TypeParams {
				subst[tp.Name] = subArgs[i]
			}
			add(x.reflectArgs(sub.Base.TypeArgs, x.typeFiles[sub], subst))
		}
	}
	return out
}

// reflectArgs renders a type argument list the way reflect names the
// instantiated type: package paths instead of package names, no spaces
// between arguments. subst maps type parameters to rendered arguments.
func (x *extraction) reflectArgs(args string, f *sourceFile, subst map[string]string) []string {
	expr, err := parser.ParseExpr("T[" + args + "]")
	if err != nil {
		return nil
	}
	var list []ast.Expr
	switch e := expr.(type) {
	case *ast.IndexExpr:
		list = []ast.Expr{e.Index}
	case *ast.IndexListExpr:
		list = e.Indices
	default:
		return nil
	}

	out := make([]string, len(list))
	for i, a := range list {
		out[i] = x.reflectName(a, f, subst)
	}
	return out
}

func (x *extraction) reflectName(expr ast.Expr, f *sourceFile, subst map[string]string) string {
	switch e := expr.(type) {
	case *ast.Ident:
		if s, ok := subst[e.Name]; ok {
			return s
		}
		switch e.Name {
		case "byte":
			return "uint8"
		case "rune":
			return "int32"
		case "any":
			return "interface {}"
		}
		if _, local := x.named[e.Name]; !local && types.Universe.Lookup(e.Name) != nil {
			return e.Name
		}
		if x.pkg.ImportPath == "" {
			return e.Name
		}
		return x.pkg.ImportPath + "." + e.Name
	case *ast.SelectorExpr:
		if id, ok := e.X.(*ast.Ident); ok {
			return x.importPathOf(id.Name, f) + "." + e.Sel.Name
		}
	case *ast.StarExpr:
		return "*" + x.reflectName(e.X, f, subst)
	case *ast.ParenExpr:
		return x.reflectName(e.X, f, subst)
	case *ast.ArrayType:
		if e.Len == nil {
			return "[]" + x.reflectName(e.Elt, f, subst)
		}
		return "[" + x.exprString(e.Len) + "]" + x.reflectName(e.Elt, f, subst)
	case *ast.MapType:
		return "map[" + x.reflectName(e.Key, f, subst) + "]" + x.reflectName(e.Value, f, subst)
	case *ast.ChanType:
		prefix := "chan "
		switch e.Dir {
		case ast.SEND:
			prefix = "chan<- "
		case ast.RECV:
			prefix = "<-chan "
		}
		return prefix + x.reflectName(e.Value, f, subst)
	case *ast.IndexExpr:
		return x.reflectName(e.X, f, subst) + "[" + x.reflectName(e.Index, f, subst) + "]"
	case *ast.IndexListExpr:
		parts := make([]string, len(e.Indices))
		for i, a := range e.Indices {
			parts[i] = x.reflectName(a, f, subst)
		}
		return x.reflectName(e.X, f, subst) + "[" + strings.Join(parts, ",") + "]"
	case *ast.InterfaceType:
		if e.Methods == nil || len(e.Methods.List) == 0 {
			return "interface {}"
		}
	case *ast.StructType:
		if e.Fields == nil || len(e.Fields.List) == 0 {
			return "struct {}"
		}
	}
	return x.exprString(expr)
}

// importPathOf resolves a package name, preferring the imports of f.
func (x *extraction) importPathOf(name string, f *sourceFile) string {
	if f != nil {
		if path, ok := f.imports[name]; ok {
			return path
		}
	}
	for _, other := range x.files {
		if path, ok := other.imports[name]; ok {
			return path
		}
	}
	return name
}
