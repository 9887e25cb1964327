// Package metadata extracts the reflection model of a Go package from its
// //tref: directives. The model is what the code generator turns into
// registration code and what tref inspect prints.
package metadata

import "fmt"

// Package is the reflection model of one package directory.
type Package struct {
	Name       string `json:"name" yaml:"name"`
	Dir        string `json:"dir" yaml:"dir"`
	ImportPath string `json:"import_path,omitempty" yaml:"import_path,omitempty"`
	// SourceHash covers every scanned file, for change detection.
	SourceHash string   `json:"source_hash" yaml:"source_hash"`
	Files      []string `json:"files" yaml:"files"`
	// Types are ordered so that every base precedes its subtypes.
	Types   []*TypeDecl `json:"types,omitempty" yaml:"types,omitempty"`
	Enums   []*EnumDecl `json:"enums,omitempty" yaml:"enums,omitempty"`
	Imports []Import    `json:"imports,omitempty" yaml:"imports,omitempty"`
}

// Empty reports whether the package has nothing to register.
func (p *Package) Empty() bool {
	return len(p.Types) == 0 && len(p.Enums) == 0
}

// Type returns the declaration of the type called name.
func (p *Package) Type(name string) (*TypeDecl, bool) {
	for _, t := range p.Types {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Enum returns the declaration of the enum called name.
func (p *Package) Enum(name string) (*EnumDecl, bool) {
	for _, e := range p.Enums {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Position is a source position relative to the package directory.
type Position struct {
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Import is an import the generated file needs.
type Import struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	// Explicit is set when the source file used an alias.
	Explicit bool `json:"explicit,omitempty" yaml:"explicit,omitempty"`
}

// TypeParam is one type parameter of a generic type.
type TypeParam struct {
	Name       string `json:"name" yaml:"name"`
	Constraint string `json:"constraint" yaml:"constraint"`
}

// TypeDecl is a reflected struct type.
type TypeDecl struct {
	ID string `json:"id" yaml:"id"`
	// Name is the Go type name, or the target expression for external
	// registrations of types from other packages (pkg.Type).
	Name string `json:"name" yaml:"name"`
	// DisplayName is the registered name when it differs from Name.
	DisplayName string      `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	TypeParams  []TypeParam `json:"type_params,omitempty" yaml:"type_params,omitempty"`
	// Instances are the type argument lists the generic type is used with.
	Instances []string `json:"instances,omitempty" yaml:"instances,omitempty"`
	// Instantiations carry the runtime names and IDs of a generic type's
	// instances, including those registered through generic subtypes.
	Instantiations []Instantiation `json:"instantiations,omitempty" yaml:"instantiations,omitempty"`
	Base      *BaseRef `json:"base,omitempty" yaml:"base,omitempty"`
	Root      bool     `json:"root,omitempty" yaml:"root,omitempty"`
	Subtype   bool     `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	Meta      string   `json:"meta,omitempty" yaml:"meta,omitempty"`
	Pos       Position `json:"pos" yaml:"pos"`
	// External is set for registrations made on behalf of a type through a
	// registrar declaration.
	External  bool        `json:"external,omitempty" yaml:"external,omitempty"`
	Registrar string      `json:"registrar,omitempty" yaml:"registrar,omitempty"`
	Foreign   bool        `json:"foreign,omitempty" yaml:"foreign,omitempty"`
	Facts     []*FactDecl `json:"facts,omitempty" yaml:"facts,omitempty"`
}

// Generic reports whether the type has type parameters.
func (t *TypeDecl) Generic() bool {
	return len(t.TypeParams) > 0
}

// RegisteredName is the name recorded in the runtime metadata.
func (t *TypeDecl) RegisteredName() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.Name
}

// FactsOf returns the facts of one kind group in registration order.
func (t *TypeDecl) FactsOf(kinds ...FactKind) []*FactDecl {
	var out []*FactDecl
	for _, f := range t.Facts {
		for _, k := range kinds {
			if f.Kind == k {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// Instantiation is a generic type with concrete type arguments.
type Instantiation struct {
	// Name is the type name as reflect reports it, e.g. Data[int].
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

// BaseRef names the embedded base of a type.
type BaseRef struct {
	// Name is the base type name without type arguments, qualified for
	// types from other packages.
	Name string `json:"name" yaml:"name"`
	// Expr is the embedded type as written, e.g. Data[int].
	Expr string `json:"expr" yaml:"expr"`
	// Field is the name of the embedded field.
	Field   string `json:"field" yaml:"field"`
	Pointer bool   `json:"pointer,omitempty" yaml:"pointer,omitempty"`
	// TypeArgs is the type argument list of a generic base.
	TypeArgs string `json:"type_args,omitempty" yaml:"type_args,omitempty"`
	// Local is set when the base is declared in the same package.
	Local bool `json:"local" yaml:"local"`
}

// FactKind is the kind of a registration.
type FactKind string

const (
	FactField      FactKind = "field"
	FactMethod     FactKind = "method"
	FactStatic     FactKind = "static"
	FactMemberType FactKind = "membertype"
)

// FactDecl is one registration on a type.
type FactDecl struct {
	// Index is the position among the type's facts of the same category.
	Index int      `json:"index" yaml:"index"`
	Kind  FactKind `json:"kind" yaml:"kind"`
	// Name is the registered name.
	Name string `json:"name" yaml:"name"`
	// GoName is the identifier the registration refers to.
	GoName string `json:"go_name" yaml:"go_name"`
	// TypeExpr is the field, static or member type as written.
	TypeExpr string `json:"type,omitempty" yaml:"type,omitempty"`
	// Sig pins a method signature (without receiver).
	Sig         string `json:"sig,omitempty" yaml:"sig,omitempty"`
	PointerRecv bool   `json:"pointer_recv,omitempty" yaml:"pointer_recv,omitempty"`
	// Reflective fields are resolved by name at run time.
	Reflective bool     `json:"reflective,omitempty" yaml:"reflective,omitempty"`
	Meta       string   `json:"meta,omitempty" yaml:"meta,omitempty"`
	Pos        Position `json:"pos" yaml:"pos"`
}

// Category maps the kind to its runtime list.
func (f *FactDecl) Category() string {
	if f.Kind == FactMemberType {
		return "member_type"
	}
	return "field"
}

// EnumDecl is a reflected enum type.
type EnumDecl struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	DisplayName string          `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Underlying  string          `json:"underlying" yaml:"underlying"`
	Meta        string          `json:"meta,omitempty" yaml:"meta,omitempty"`
	Pos         Position        `json:"pos" yaml:"pos"`
	Items       []*EnumItemDecl `json:"items" yaml:"items"`
}

// EnumItemDecl is one constant of an enum.
type EnumItemDecl struct {
	GoName string `json:"go_name" yaml:"go_name"`
	// Raw is the source text of the enumerator, e.g. "Ban = Ass * 3".
	Raw  string   `json:"raw" yaml:"raw"`
	Meta string   `json:"meta,omitempty" yaml:"meta,omitempty"`
	Pos  Position `json:"pos" yaml:"pos"`
}
