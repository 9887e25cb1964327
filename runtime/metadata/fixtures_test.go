package metadata

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type testBase struct{}

type testData[T any] struct {
	testBase
	t    T
	x, y int
	name string
}

type testChild struct {
	testData[int]
	z int
}

type testChild2 struct {
	testData[string]
	w float64
}

type testSubChild struct {
	testChild
	ff int
}

func (s *testSubChild) Func(a int) int { return a + s.ff }

func (s testSubChild) Sum() int { return s.x + s.y + s.z }

func (s *testSubChild) Join(sep string, parts ...string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

// testOrphan embeds a reflected type without registering as its subclass.
type testOrphan struct {
	testChild
}

type rangeMeta struct{ Min, Max int }

var testCounter = 42

// defineHierarchy builds
//
//	testBase
//	├── testData[int] ── testChild ── testSubChild
//	└── testData[string] ── testChild2
//
// plus testOrphan, which derives from testChild without being a subtype.
func defineHierarchy(t *testing.T, reg *Registry) {
	t.Helper()

	base := Define[testBase](Into(reg), Root(), At("fixtures_test.go", 9))
	require.NoError(t, base.Err())

	di := Define[testData[int]](Into(reg), Subtype(),
		Base(func(d *testData[int]) *testBase { return &d.testBase }))
	Field(di, "t", func(d *testData[int]) *int { return &d.t }, nil)
	Field(di, "x", func(d *testData[int]) *int { return &d.x }, rangeMeta{0, 10})
	Field(di, "y", func(d *testData[int]) *int { return &d.y }, rangeMeta{0, 20})
	Field(di, "name", func(d *testData[int]) *string { return &d.name }, nil)
	require.NoError(t, di.Err())

	ds := Define[testData[string]](Into(reg), Subtype(),
		Base(func(d *testData[string]) *testBase { return &d.testBase }))
	Field(ds, "t", func(d *testData[string]) *string { return &d.t }, nil)
	require.NoError(t, ds.Err())

	child := Define[testChild](Into(reg), Subtype(),
		Base(func(c *testChild) *testData[int] { return &c.testData }))
	Field(child, "z", func(c *testChild) *int { return &c.z }, nil)
	MemberType[rangeMeta](child, "Range", "bounds")
	MemberType[testOrphan](child, "Orphan", nil)
	require.NoError(t, child.Err())

	child2 := Define[testChild2](Into(reg), Subtype(),
		Base(func(c *testChild2) *testData[string] { return &c.testData }))
	Field(child2, "w", func(c *testChild2) *float64 { return &c.w }, nil)
	require.NoError(t, child2.Err())

	sub := Define[testSubChild](Into(reg), Subtype(), WithMeta("sub"),
		Base(func(s *testSubChild) *testChild { return &s.testChild }))
	Field(sub, "ff", func(s *testSubChild) *int { return &s.ff }, nil)
	Method(sub, "Func", (*testSubChild).Func, rangeMeta{1, 2})
	Method[testSubChild, func(testSubChild) int](sub, "Sum", testSubChild.Sum, nil)
	Method(sub, "Join", (*testSubChild).Join, nil)
	Static(sub, "counter", &testCounter, nil)
	require.NoError(t, sub.Err())

	orphan := Define[testOrphan](Into(reg),
		Base(func(o *testOrphan) *testChild { return &o.testChild }))
	require.NoError(t, orphan.Err())
}

func newHierarchy(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	defineHierarchy(t, reg)
	return reg
}

func classOf[T any](t *testing.T, reg *Registry) *ClassMeta {
	t.Helper()
	c, ok := reg.Class(reflect.TypeFor[T]())
	require.True(t, ok, "class not reflected")
	return c
}
