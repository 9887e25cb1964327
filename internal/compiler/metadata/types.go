package metadata

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/conduit-lang/tref/internal/compiler/directive"
	cerrors "github.com/conduit-lang/tref/internal/compiler/errors"
)

func (x *extraction) processTypeDirectives() {
	for _, p := range x.typeDirs {
		spec := p.spec.(*ast.TypeSpec)

		var decl *TypeDecl
		var external *TypeDecl
		for _, d := range p.dirs {
			switch d.Verb {
			case directive.VerbType, directive.VerbRoot, directive.VerbSubtype:
				if decl != nil {
					x.misplaced([]*directive.Directive{d}, "a type that already has "+directive.Prefix+"type")
					continue
				}
				decl = x.declareType(spec, p.file, d)
				external = nil

			case directive.VerbExternal:
				external = x.declareExternal(spec, p.file, d)

			case directive.VerbField, directive.VerbMethod:
				if external == nil {
					x.misplaced([]*directive.Directive{d}, "a type declaration (use it on the field or method)")
					continue
				}
				x.externalMember(external, p.file, d)

			case directive.VerbMemberType:
				owner := external
				if owner == nil {
					owner = decl
				}
				if owner == nil {
					x.misplaced([]*directive.Directive{d}, "a type without "+directive.Prefix+"type")
					continue
				}
				x.memberType(owner, p.file, d)

			case directive.VerbInstantiate:
				if decl == nil || !decl.Generic() {
					x.misplaced([]*directive.Directive{d}, "a non-generic or unreflected type")
					continue
				}
				for _, args := range d.Args {
					if _, err := parser.ParseExpr("T[" + args + "]"); err != nil {
						x.errs = append(x.errs, cerrors.NewMalformedDirective(x.errPos(d.Pos), d.Raw, "bad type arguments "+args))
						continue
					}
					decl.addInstance(args)
				}

			case directive.VerbEnum:
				x.declareEnum(spec, d)

			default:
				x.misplaced([]*directive.Directive{d}, "a type declaration")
			}
		}
	}
}

func (t *TypeDecl) addInstance(args string) {
	args = normalizeTypeArgs(args)
	for _, existing := range t.Instances {
		if existing == args {
			return
		}
	}
	t.Instances = append(t.Instances, args)
}

func normalizeTypeArgs(args string) string {
	parts := strings.Split(args, ",")
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(p), " ")
	}
	return strings.Join(parts, ", ")
}

func (x *extraction) declareType(spec *ast.TypeSpec, f *sourceFile, d *directive.Directive) *TypeDecl {
	name := spec.Name.Name
	if _, ok := spec.Type.(*ast.StructType); !ok {
		x.misplaced([]*directive.Directive{d}, "non-struct type "+name)
		return nil
	}
	if prev, ok := x.types[name]; ok {
		x.errs = append(x.errs, cerrors.NewReflectedTwice(x.errPos(d.Pos), name, x.errPosOf(prev)))
		return nil
	}

	meta, _ := x.validMeta(d)
	t := &TypeDecl{
		Name:        name,
		DisplayName: d.ParamOr("name", ""),
		Root:        d.Verb == directive.VerbRoot,
		Subtype:     d.Verb == directive.VerbSubtype,
		Meta:        meta,
		Pos:         x.position(spec.Pos()),
	}
	if spec.TypeParams != nil {
		for _, field := range spec.TypeParams.List {
			constraint := x.exprString(field.Type)
			for _, n := range field.Names {
				t.TypeParams = append(t.TypeParams, TypeParam{Name: n.Name, Constraint: constraint})
			}
		}
	}
	if base, ok := d.Param("base"); ok {
		if t.Root {
			x.misplaced([]*directive.Directive{d}, "a root type with base=")
		} else {
			x.explicit[t] = base
		}
	}

	x.types[name] = t
	x.typeFiles[t] = f
	x.pkg.Types = append(x.pkg.Types, t)
	return t
}

func (x *extraction) errPosOf(t *TypeDecl) token.Position {
	return token.Position{Filename: t.Pos.File, Line: t.Pos.Line}
}

// declareExternal handles //tref:external Target on a registrar type.
func (x *extraction) declareExternal(spec *ast.TypeSpec, f *sourceFile, d *directive.Directive) *TypeDecl {
	target := d.Arg(0)
	if target == "" {
		x.errs = append(x.errs, cerrors.NewMalformedDirective(x.errPos(d.Pos), d.Raw, "missing target type"))
		return nil
	}

	expr, err := parser.ParseExpr(target)
	if err != nil {
		x.errs = append(x.errs, cerrors.NewMalformedDirective(x.errPos(d.Pos), d.Raw, "bad target type "+target))
		return nil
	}

	meta, _ := x.validMeta(d)
	t := &TypeDecl{
		Name:        target,
		DisplayName: d.ParamOr("name", ""),
		Root:        d.HasFlag(directive.VerbRoot),
		Subtype:     d.HasFlag(directive.VerbSubtype),
		Meta:        meta,
		Pos:         x.position(d.Pos),
		External:    true,
		Registrar:   spec.Name.Name,
	}

	switch e := expr.(type) {
	case *ast.Ident:
		info, ok := x.structs[e.Name]
		if !ok {
			x.errs = append(x.errs, cerrors.NewUnknownBase(x.errPos(d.Pos), spec.Name.Name, target).
				WithSuggestion("The target of "+directive.Prefix+"external must be a struct type"))
			return nil
		}
		if info.spec.TypeParams != nil {
			x.misplaced([]*directive.Directive{d}, "generic target "+target)
			return nil
		}
	case *ast.SelectorExpr:
		pkg, ok := e.X.(*ast.Ident)
		if !ok || f.imports[pkg.Name] == "" {
			x.errs = append(x.errs, cerrors.NewUnknownPackage(x.errPos(d.Pos), target))
			return nil
		}
		t.Foreign = true
		if t.DisplayName == "" {
			t.DisplayName = e.Sel.Name
		}
	default:
		x.errs = append(x.errs, cerrors.NewMalformedDirective(x.errPos(d.Pos), d.Raw, "target must be a type name"))
		return nil
	}

	if prev, ok := x.types[target]; ok {
		x.errs = append(x.errs, cerrors.NewReflectedTwice(x.errPos(d.Pos), target, x.errPosOf(prev)))
		return nil
	}
	if base, ok := d.Param("base"); ok {
		x.explicit[t] = base
	}

	x.types[target] = t
	x.typeFiles[t] = f
	x.pkg.Types = append(x.pkg.Types, t)
	return t
}

// externalMember handles the field and method lines of an external block.
func (x *extraction) externalMember(t *TypeDecl, f *sourceFile, d *directive.Directive) {
	if t == nil {
		return
	}
	goName := d.Arg(0)
	if goName == "" {
		x.errs = append(x.errs, cerrors.NewMalformedDirective(x.errPos(d.Pos), d.Raw, "missing member name"))
		return
	}
	meta, ok := x.validMeta(d)
	if !ok {
		return
	}

	fact := &FactDecl{
		Name:   d.ParamOr("name", goName),
		GoName: goName,
		Meta:   meta,
		Pos:    x.position(d.Pos),
	}

	switch d.Verb {
	case directive.VerbField:
		fact.Kind = FactField
		if t.Foreign {
			// reflective fields are registered under their Go name
			fact.Name = goName
			fact.Reflective = true
			break
		}
		typeExpr, found := x.structField(t.Name, goName)
		if !found {
			x.errs = append(x.errs, cerrors.NewUnknownMember(x.errPos(d.Pos), t.Name, goName))
			return
		}
		fact.TypeExpr = typeExpr

	case directive.VerbMethod:
		fact.Kind = FactMethod
		fact.Sig = d.ParamOr("sig", "")
		if !x.validSig(d, fact.Sig) {
			return
		}
		if t.Foreign {
			fact.PointerRecv = true
			break
		}
		m, found := x.methods[t.Name][goName]
		if !found {
			x.errs = append(x.errs, cerrors.NewUnknownMember(x.errPos(d.Pos), t.Name, goName))
			return
		}
		fact.PointerRecv = m.pointer
	}

	x.facts = append(x.facts, placedFact{owner: t, fact: fact, pos: d.Pos, file: f})
}

func (x *extraction) structField(typeName, goName string) (string, bool) {
	info, ok := x.structs[typeName]
	if !ok {
		return "", false
	}
	for _, field := range info.st.Fields.List {
		for _, n := range field.Names {
			if n.Name == goName {
				return x.exprString(field.Type), true
			}
		}
	}
	return "", false
}

func (x *extraction) memberType(owner *TypeDecl, f *sourceFile, d *directive.Directive) {
	typeExpr := d.Arg(0)
	if typeExpr == "" {
		x.errs = append(x.errs, cerrors.NewMalformedDirective(x.errPos(d.Pos), d.Raw, "missing member type"))
		return
	}
	if _, err := parser.ParseExpr(typeExpr); err != nil {
		x.errs = append(x.errs, cerrors.NewMalformedDirective(x.errPos(d.Pos), d.Raw, "bad member type "+typeExpr))
		return
	}
	meta, ok := x.validMeta(d)
	if !ok {
		return
	}

	name := typeExpr
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}

	x.facts = append(x.facts, placedFact{
		owner: owner,
		fact: &FactDecl{
			Kind:     FactMemberType,
			Name:     d.ParamOr("name", name),
			GoName:   typeExpr,
			TypeExpr: typeExpr,
			Meta:     meta,
			Pos:      x.position(d.Pos),
		},
		pos:  d.Pos,
		file: f,
	})
}

func (x *extraction) validSig(d *directive.Directive, sig string) bool {
	if sig == "" {
		return true
	}
	expr, err := parser.ParseExpr(sig)
	if _, isFunc := expr.(*ast.FuncType); err != nil || !isFunc {
		x.errs = append(x.errs, cerrors.NewMalformedDirective(x.errPos(d.Pos), d.Raw, "sig must be a func type, e.g. sig=\"func(int) error\""))
		return false
	}
	return true
}

// processStructFields registers //tref:field annotated fields of reflected
// types and reports annotations on other structs.
func (x *extraction) processStructFields() {
	for _, f := range x.files {
		for _, decl := range f.ast.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}
				owner := x.types[ts.Name.Name]
				if owner != nil && owner.External {
					owner = nil
				}
				x.structFields(owner, ts.Name.Name, st, f)
			}
		}
	}
}

func (x *extraction) structFields(owner *TypeDecl, typeName string, st *ast.StructType, f *sourceFile) {
	for _, field := range st.Fields.List {
		dirs := x.scan(field.Doc, field.Comment)
		if len(dirs) == 0 {
			continue
		}
		if owner == nil {
			x.misplaced(dirs, "a field of "+typeName+", which has no "+directive.Prefix+"type")
			continue
		}
		if len(field.Names) == 0 {
			x.misplaced(dirs, "an embedded field")
			continue
		}

		for _, d := range dirs {
			if d.Verb != directive.VerbField {
				x.misplaced([]*directive.Directive{d}, "a struct field")
				continue
			}
			meta, ok := x.validMeta(d)
			if !ok {
				continue
			}
			rename, hasName := d.Param("name")
			if hasName && len(field.Names) > 1 {
				x.misplaced([]*directive.Directive{d}, "a multi-name field with name=")
				continue
			}
			typeExpr := x.exprString(field.Type)
			for _, n := range field.Names {
				if n.Name == "_" {
					continue
				}
				name := n.Name
				if hasName {
					name = rename
				}
				x.facts = append(x.facts, placedFact{
					owner: owner,
					fact: &FactDecl{
						Kind:     FactField,
						Name:     name,
						GoName:   n.Name,
						TypeExpr: typeExpr,
						Meta:     meta,
						Pos:      x.position(n.Pos()),
					},
					pos:  n.Pos(),
					file: f,
				})
			}
		}
	}
}

func (x *extraction) processMethods() {
	for _, p := range x.methodDirs {
		fn := p.decl.(*ast.FuncDecl)
		recv, pointer := receiverType(fn.Recv.List[0].Type)
		owner := x.types[recv]
		if owner == nil || owner.External {
			x.misplaced(p.dirs, "a method of "+recv+", which has no "+directive.Prefix+"type")
			continue
		}

		for _, d := range p.dirs {
			if d.Verb != directive.VerbMethod {
				x.misplaced([]*directive.Directive{d}, "a method")
				continue
			}
			meta, ok := x.validMeta(d)
			if !ok {
				continue
			}
			sig := d.ParamOr("sig", "")
			if !x.validSig(d, sig) {
				continue
			}
			x.facts = append(x.facts, placedFact{
				owner: owner,
				fact: &FactDecl{
					Kind:        FactMethod,
					Name:        d.ParamOr("name", fn.Name.Name),
					GoName:      fn.Name.Name,
					Sig:         sig,
					PointerRecv: pointer,
					Meta:        meta,
					Pos:         x.position(fn.Pos()),
				},
				pos:  fn.Pos(),
				file: p.file,
			})
		}
	}
}

func (x *extraction) processStatics() {
	for _, p := range x.varDirs {
		spec := p.spec.(*ast.ValueSpec)
		for _, d := range p.dirs {
			if d.Verb != directive.VerbStatic {
				x.misplaced([]*directive.Directive{d}, "a variable")
				continue
			}
			ownerName := d.Arg(0)
			owner := x.types[ownerName]
			if owner == nil || owner.External {
				x.errs = append(x.errs, cerrors.NewUnknownOwner(x.errPos(d.Pos), spec.Names[0].Name, ownerName))
				continue
			}
			meta, ok := x.validMeta(d)
			if !ok {
				continue
			}
			rename, hasName := d.Param("name")
			if hasName && len(spec.Names) > 1 {
				x.misplaced([]*directive.Directive{d}, "a multi-name variable with name=")
				continue
			}

			typeExpr := ""
			if spec.Type != nil {
				typeExpr = x.exprString(spec.Type)
			}
			for _, n := range spec.Names {
				if n.Name == "_" {
					continue
				}
				name := n.Name
				if hasName {
					name = rename
				}
				x.facts = append(x.facts, placedFact{
					owner: owner,
					fact: &FactDecl{
						Kind:     FactStatic,
						Name:     name,
						GoName:   n.Name,
						TypeExpr: typeExpr,
						Meta:     meta,
						Pos:      x.position(n.Pos()),
					},
					pos:  n.Pos(),
					file: p.file,
				})
			}
		}
	}
}
