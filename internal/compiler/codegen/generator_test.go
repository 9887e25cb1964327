package codegen

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/conduit-lang/tref/internal/compiler/errors"
	"github.com/conduit-lang/tref/internal/compiler/metadata"
)

func shapesModel() *metadata.Package {
	return &metadata.Package{
		Name: "shapes",
		Imports: []metadata.Import{
			{Name: "cfg", Path: "example.com/config", Explicit: true},
			{Name: "url", Path: "net/url"},
		},
		Types: []*metadata.TypeDecl{
			{
				Name: "Base",
				Root: true,
				Meta: "Range{Min: 0, Max: 1}",
				Pos:  metadata.Position{File: "shapes.go", Line: 10},
				Facts: []*metadata.FactDecl{
					{Kind: metadata.FactField, Name: "z", GoName: "z", TypeExpr: "int"},
				},
			},
			{
				Name:       "Data",
				TypeParams: []metadata.TypeParam{{Name: "T", Constraint: "any"}},
				Instances:  []string{"string", "int"},
				Base:       &metadata.BaseRef{Name: "Base", Expr: "Base", Field: "Base", Local: true},
				Pos:        metadata.Position{File: "shapes.go", Line: 16},
				Facts: []*metadata.FactDecl{
					{Kind: metadata.FactField, Name: "x", GoName: "x", TypeExpr: "T", Meta: "Range{Min: 1, Max: 5}"},
					{Kind: metadata.FactField, Index: 1, Name: "y", GoName: "yy", TypeExpr: "T"},
				},
			},
			{
				Name:    "Child",
				Subtype: true,
				Base:    &metadata.BaseRef{Name: "Data", Expr: "Data[int]", Field: "Data", TypeArgs: "int", Local: true},
				Pos:     metadata.Position{File: "shapes.go", Line: 24},
				Facts: []*metadata.FactDecl{
					{Kind: metadata.FactField, Name: "r", GoName: "r", TypeExpr: "int"},
					{Kind: metadata.FactMethod, Index: 1, Name: "Area", GoName: "Area", PointerRecv: true},
					{Kind: metadata.FactMethod, Index: 2, Name: "Label", GoName: "Label", Sig: "func(string) string", Meta: "cfg.Default"},
					{Kind: metadata.FactStatic, Index: 3, Name: "counter", GoName: "counter", TypeExpr: "int"},
					{Kind: metadata.FactMemberType, Name: "Fruit", GoName: "Fruit", TypeExpr: "Fruit"},
				},
			},
			{
				Name:        "url.URL",
				DisplayName: "URL",
				Root:        true,
				External:    true,
				Foreign:     true,
				Registrar:   "registrar",
				Pos:         metadata.Position{File: "ext.go", Line: 3},
				Facts: []*metadata.FactDecl{
					{Kind: metadata.FactField, Name: "Host", GoName: "Host", Reflective: true},
					{Kind: metadata.FactMethod, Index: 1, Name: "String", GoName: "String", PointerRecv: true},
				},
			},
		},
		Enums: []*metadata.EnumDecl{
			{
				Name:       "Fruit",
				Underlying: "int",
				Meta:       `"fruit"`,
				Pos:        metadata.Position{File: "fruit.go", Line: 4},
				Items: []*metadata.EnumItemDecl{
					{GoName: "Ass", Raw: "Ass = 1"},
					{GoName: "Ban", Raw: "Ban = Ass * 3", Meta: `"yellow"`},
				},
			},
		},
	}
}

func generate(t *testing.T, pkg *metadata.Package) string {
	t.Helper()
	out, err := NewGenerator(nil).Generate(pkg, "tref_gen.go")
	require.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "tref_gen.go", out, parser.ParseComments)
	require.NoError(t, err, "generated code does not parse:\n%s", out)
	return string(out)
}

func TestGenerate_Header(t *testing.T) {
	code := generate(t, shapesModel())

	assert.True(t, strings.HasPrefix(code, Header+"\n\npackage shapes\n"))
	assert.Contains(t, code, "\"net/url\"\n\n\tcfg \"example.com/config\"\n\ttref \"github.com/conduit-lang/tref/runtime/metadata\"\n")
}

func TestGenerate_Init(t *testing.T) {
	code := generate(t, shapesModel())

	want := `func init() {
	trefRegisterBase()
	trefRegisterData[string]()
	trefRegisterData[int]()
	trefRegisterChild()
	trefRegisterurl_URL()
	trefRegisterFruit()
}`
	assert.Contains(t, code, want)
}

func TestGenerate_Types(t *testing.T) {
	code := generate(t, shapesModel())

	tests := []struct {
		name string
		want string
	}{
		{"root option", "tref.Root(),"},
		{"class meta", "tref.WithMeta(Range{Min: 0, Max: 1}),"},
		{"position", `tref.At("shapes.go", 10),`},
		{"generic register", "func trefRegisterData[T any]() {"},
		{"generic guard", "if tref.IsReflected[Data[T]]() {"},
		{"generic field", `tref.Field(b, "x", func(v *Data[T]) *T { return &v.x }, Range{Min: 1, Max: 5})`},
		{"renamed field", `tref.Field(b, "y", func(v *Data[T]) *T { return &v.yy }, nil)`},
		{"base registered first", "trefRegisterData[int]()\n\tb := tref.Define[Child]("},
		{"base accessor", "tref.Base(func(v *Child) *Data[int] { return &v.Data }),"},
		{"subtype", "tref.Subtype(),"},
		{"pointer method", `tref.Method(b, "Area", (*Child).Area, nil)`},
		{"pinned signature", `tref.Method[Child, func(Child, string) string](b, "Label", Child.Label, cfg.Default)`},
		{"static", `tref.Static(b, "counter", &counter, nil)`},
		{"member type", `tref.MemberType[Fruit](b, "Fruit", nil)`},
		{"external comment", "// trefRegisterurl_URL registers url.URL on behalf of registrar."},
		{"foreign define", "b := tref.Define[url.URL]("},
		{"named", `tref.Named("URL"),`},
		{"reflective field", `tref.FieldOf(b, "Host", nil)`},
		{"foreign method", `tref.Method(b, "String", (*url.URL).String, nil)`},
		{"sticky error", "trefMust(b.Err())"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, code, tt.want)
		})
	}
}

func TestGenerate_PointerBase(t *testing.T) {
	pkg := &metadata.Package{
		Name: "shapes",
		Types: []*metadata.TypeDecl{
			{Name: "Top", Pos: metadata.Position{File: "a.go", Line: 3}},
			{
				Name: "Mid",
				Base: &metadata.BaseRef{Name: "Top", Expr: "Top", Field: "Top", Pointer: true, Local: true},
				Pos:  metadata.Position{File: "a.go", Line: 6},
			},
		},
	}
	code := generate(t, pkg)
	assert.Contains(t, code, "tref.Base(func(v *Mid) *Top { return v.Top }),")
	assert.NotContains(t, code, "tref.Root()")
}

func TestGenerate_Enum(t *testing.T) {
	code := generate(t, shapesModel())

	assert.Contains(t, code, "_, err := tref.DefineEnum([]tref.EnumItem[Fruit]{")
	assert.Contains(t, code, `tref.Item[Fruit]("Ass = 1", Ass),`)
	assert.Contains(t, code, `tref.ItemWithMeta[Fruit]("Ban = Ass * 3", Ban, "yellow"),`)
	assert.Contains(t, code, `}, tref.At("fruit.go", 4), tref.WithMeta("fruit"))`)
}

func TestGenerate_Deterministic(t *testing.T) {
	g := NewGenerator(nil)
	first, err := g.Generate(shapesModel(), "tref_gen.go")
	require.NoError(t, err)
	second, err := g.Generate(shapesModel(), "tref_gen.go")
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestGenerate_InvalidMeta(t *testing.T) {
	pkg := &metadata.Package{
		Name: "shapes",
		Types: []*metadata.TypeDecl{
			{Name: "A", Meta: "{{", Pos: metadata.Position{File: "a.go", Line: 1}},
		},
	}

	_, err := NewGenerator(nil).Generate(pkg, "tref_gen.go")
	require.Error(t, err)
	list, ok := err.(cerrors.ErrorList)
	require.True(t, ok)
	assert.Equal(t, []cerrors.ErrorCode{cerrors.ErrCodeGenFailed}, list.Codes())
	assert.Equal(t, "tref_gen.go", list[0].File)
}

func TestWithReceiver(t *testing.T) {
	assert.Equal(t, "func(*T) int", withReceiver("func() int", "*T"))
	assert.Equal(t, "func(T, a int, b string) error", withReceiver("func(a int, b string) error", "T"))
}
