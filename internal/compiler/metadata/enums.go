package metadata

import (
	"go/ast"
	"go/token"

	"github.com/conduit-lang/tref/internal/compiler/directive"
	cerrors "github.com/conduit-lang/tref/internal/compiler/errors"
)

var integerTypes = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uintptr": true, "byte": true, "rune": true,
}

func (x *extraction) declareEnum(spec *ast.TypeSpec, d *directive.Directive) {
	name := spec.Name.Name
	if prev, ok := x.enums[name]; ok {
		x.errs = append(x.errs, cerrors.NewReflectedTwice(x.errPos(d.Pos), name,
			x.declPos(&TypeDecl{Pos: prev.Pos})))
		return
	}

	underlying := x.exprString(spec.Type)
	id, ok := spec.Type.(*ast.Ident)
	if !ok || !integerTypes[id.Name] || spec.Assign.IsValid() || spec.TypeParams != nil {
		x.errs = append(x.errs, cerrors.NewInvalidEnum(x.errPos(d.Pos), name, underlying))
		return
	}

	meta, ok := x.validMeta(d)
	if !ok {
		return
	}
	en := &EnumDecl{
		Name:        name,
		DisplayName: d.ParamOr("name", ""),
		Underlying:  underlying,
		Meta:        meta,
		Pos:         x.position(spec.Pos()),
	}
	x.enums[name] = en
	x.pkg.Enums = append(x.pkg.Enums, en)
}

// processEnums assigns constants to the reflected enum types they belong to.
// A constant belongs to an enum when it is declared with the enum type, when
// its value converts to or is computed from an item of the enum, or when it
// repeats the previous line of a group implicitly.
func (x *extraction) processEnums() {
	itemOf := make(map[string]*EnumDecl)

	var group ast.Decl
	var current *EnumDecl
	for _, p := range x.constDecls {
		spec := p.spec.(*ast.ValueSpec)
		gd := p.decl.(*ast.GenDecl)
		if p.decl != group {
			group = p.decl
			current = nil
		}

		switch {
		case spec.Type != nil:
			current = nil
			if id, ok := spec.Type.(*ast.Ident); ok {
				current = x.enums[id.Name]
			}
		case len(spec.Values) > 0:
			current = x.enumOfExpr(spec.Values[0], itemOf)
		}

		var groups []*ast.CommentGroup
		if !gd.Lparen.IsValid() {
			groups = append(groups, gd.Doc)
		}
		dirs := x.scan(append(groups, spec.Doc, spec.Comment)...)

		if current == nil {
			x.misplaced(dirs, "a constant that is not an item of a "+directive.Prefix+"enum type")
			continue
		}

		meta := ""
		for _, d := range dirs {
			if d.Verb != directive.VerbItem {
				x.misplaced([]*directive.Directive{d}, "an enum item")
				continue
			}
			if m, ok := x.validMeta(d); ok {
				meta = m
			}
		}

		for i, n := range spec.Names {
			if n.Name == "_" {
				continue
			}
			raw := n.Name
			if i < len(spec.Values) {
				raw += " = " + x.exprString(spec.Values[i])
			}
			current.Items = append(current.Items, &EnumItemDecl{
				GoName: n.Name,
				Raw:    raw,
				Meta:   meta,
				Pos:    x.position(n.Pos()),
			})
			itemOf[n.Name] = current
		}
	}
}

// enumOfExpr reports the enum an untyped constant expression evaluates to.
func (x *extraction) enumOfExpr(expr ast.Expr, itemOf map[string]*EnumDecl) *EnumDecl {
	if call, ok := expr.(*ast.CallExpr); ok {
		if fn, ok := call.Fun.(*ast.Ident); ok {
			if en, ok := x.enums[fn.Name]; ok {
				return en
			}
			if _, isType := x.named[fn.Name]; isType || integerTypes[fn.Name] {
				return nil
			}
		}
	}

	if !integerValued(expr) {
		return nil
	}

	var found *EnumDecl
	ast.Inspect(expr, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		if id, ok := n.(*ast.Ident); ok {
			found = itemOf[id.Name]
		}
		return true
	})
	return found
}

// integerValued rejects expressions whose top level cannot yield an integer:
// comparisons, logical operators and string literals.
func integerValued(expr ast.Expr) bool {
	for {
		p, ok := expr.(*ast.ParenExpr)
		if !ok {
			break
		}
		expr = p.X
	}
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		switch e.Op {
		case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ, token.LAND, token.LOR:
			return false
		}
	case *ast.UnaryExpr:
		return e.Op != token.NOT
	case *ast.BasicLit:
		return e.Kind != token.STRING
	}
	return true
}
