package metadata

import (
	"go/ast"
	"go/token"
	"path/filepath"
	"sort"
	"strings"

	cerrors "github.com/conduit-lang/tref/internal/compiler/errors"
	tref "github.com/conduit-lang/tref/runtime/metadata"
)

// embedded is one embedded field of a struct, classified.
type embedded struct {
	name     string // type name without type args, pkg-qualified if foreign
	expr     string
	field    string
	pointer  bool
	typeArgs string
	foreign  bool
}

func (x *extraction) embeddedFields(st *ast.StructType) []embedded {
	var out []embedded
	for _, field := range st.Fields.List {
		if len(field.Names) > 0 {
			continue
		}
		e := embedded{expr: x.exprString(field.Type)}
		typ := field.Type
		if star, ok := typ.(*ast.StarExpr); ok {
			e.pointer = true
			e.expr = x.exprString(star.X)
			typ = star.X
		}
		switch ix := typ.(type) {
		case *ast.IndexExpr:
			e.typeArgs = x.exprString(ix.Index)
			typ = ix.X
		case *ast.IndexListExpr:
			args := make([]string, len(ix.Indices))
			for i, idx := range ix.Indices {
				args[i] = x.exprString(idx)
			}
			e.typeArgs = strings.Join(args, ", ")
			typ = ix.X
		}
		switch id := typ.(type) {
		case *ast.Ident:
			e.name = id.Name
			e.field = id.Name
		case *ast.SelectorExpr:
			e.name = x.exprString(id)
			e.field = id.Sel.Name
			e.foreign = true
		default:
			continue
		}
		out = append(out, e)
	}
	return out
}

// resolveBases picks the base of every reflected type.
func (x *extraction) resolveBases() {
	for _, t := range x.pkg.Types {
		explicit, hasExplicit := x.explicit[t]
		pos := x.declPos(t)

		var base *BaseRef
		switch {
		case t.Foreign:
			if hasExplicit {
				base = x.foreignBase(explicit)
			}
		case hasExplicit:
			base = x.explicitBase(t, explicit, pos)
			if base == nil {
				continue
			}
		case !t.Root:
			base = x.implicitBase(t)
		}

		if base != nil && !t.Root {
			t.Base = base
			if target, ok := x.types[base.Name]; ok && base.TypeArgs != "" && target.Generic() && !t.Generic() {
				target.addInstance(base.TypeArgs)
			}
		}
		if t.Subtype && t.Base == nil {
			x.errs = append(x.errs, cerrors.NewSubtypeWithoutBase(pos, t.Name))
		}
	}
}

func (x *extraction) declPos(t *TypeDecl) token.Position {
	return token.Position{Filename: filepath.Join(x.dir, t.Pos.File), Line: t.Pos.Line, Column: 1}
}

func (x *extraction) explicitBase(t *TypeDecl, want string, pos token.Position) *BaseRef {
	wantName := want
	if i := strings.IndexByte(wantName, '['); i >= 0 {
		wantName = wantName[:i]
	}

	info := x.structs[t.Name]
	for _, e := range x.embeddedFields(info.st) {
		if e.name != wantName && normalizeExpr(e.expr) != normalizeExpr(want) {
			continue
		}
		ref := e.ref()
		if !e.foreign {
			if _, ok := x.types[e.name]; !ok {
				x.errs = append(x.errs, cerrors.NewUnknownBase(pos, t.Name, e.name))
				return nil
			}
			ref.Local = true
		} else if _, ok := x.types[e.name]; ok {
			ref.Local = true
		}
		return ref
	}

	x.errs = append(x.errs, cerrors.NewInvalidBase(pos, t.Name, want))
	return nil
}

func (x *extraction) implicitBase(t *TypeDecl) *BaseRef {
	info, ok := x.structs[t.Name]
	if !ok {
		return nil
	}
	for _, e := range x.embeddedFields(info.st) {
		if _, ok := x.types[e.name]; ok {
			ref := e.ref()
			ref.Local = true
			return ref
		}
	}
	return nil
}

// foreignBase describes the base of a type from another package. Its fields
// are unknown, so the embedded field is assumed to carry the type's name.
func (x *extraction) foreignBase(expr string) *BaseRef {
	expr = normalizeExpr(expr)
	ref := &BaseRef{Name: expr, Expr: expr}
	if strings.HasPrefix(expr, "*") {
		ref.Pointer = true
		ref.Expr = expr[1:]
		ref.Name = ref.Expr
	}
	if i := strings.IndexByte(ref.Name, '['); i >= 0 {
		ref.TypeArgs = strings.TrimSuffix(ref.Name[i+1:], "]")
		ref.Name = ref.Name[:i]
	}
	ref.Field = ref.Name
	if i := strings.LastIndexByte(ref.Field, '.'); i >= 0 {
		ref.Field = ref.Field[i+1:]
	}
	_, ref.Local = x.types[ref.Name]
	return ref
}

func (e embedded) ref() *BaseRef {
	return &BaseRef{
		Name:     e.name,
		Expr:     e.expr,
		Field:    e.field,
		Pointer:  e.pointer,
		TypeArgs: e.typeArgs,
	}
}

func normalizeExpr(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// indexFacts orders facts by source position and assigns their indices,
// rejecting a second registration of a name on the same list.
func (x *extraction) indexFacts() {
	sort.SliceStable(x.facts, func(i, j int) bool {
		return x.facts[i].pos < x.facts[j].pos
	})

	for _, pf := range x.facts {
		key := factKey{owner: pf.owner, category: pf.fact.Category()}
		acc, ok := x.arena[key]
		if !ok {
			acc = &tref.Accumulator[*FactDecl]{}
			x.arena[key] = acc
		}

		var first *FactDecl
		acc.Each(func(_ int, f *FactDecl) bool {
			if f.Name == pf.fact.Name {
				first = f
				return false
			}
			return true
		})
		if first != nil {
			x.errs = append(x.errs, cerrors.NewDuplicateName(
				x.errPos(pf.pos), pf.owner.Name, pf.fact.Name,
				token.Position{Filename: filepath.Join(x.dir, first.Pos.File), Line: first.Pos.Line}))
			continue
		}

		pf.fact.Index = acc.Push(pf.fact) - 1
		pf.owner.Facts = append(pf.owner.Facts, pf.fact)
	}
}

// orderTypes sorts types so that each local base precedes its subtypes,
// keeping source order otherwise.
func (x *extraction) orderTypes() {
	ordered := make([]*TypeDecl, 0, len(x.pkg.Types))
	visited := make(map[*TypeDecl]bool, len(x.pkg.Types))

	var visit func(t *TypeDecl)
	visit = func(t *TypeDecl) {
		if visited[t] {
			return
		}
		visited[t] = true
		if t.Base != nil && t.Base.Local {
			if base, ok := x.types[t.Base.Name]; ok {
				visit(base)
			}
		}
		ordered = append(ordered, t)
	}

	for _, t := range x.pkg.Types {
		visit(t)
	}
	x.pkg.Types = ordered
}
