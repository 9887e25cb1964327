package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(t *testing.T, c *ClassMeta, name string) *Fact {
	t.Helper()
	f, ok := c.LookupField(name)
	require.True(t, ok, "no field %q on %s", name, c.Name)
	return f
}

func TestFact_GetSetThroughDescendant(t *testing.T) {
	reg := newHierarchy(t)
	sub := classOf[testSubChild](t, reg)
	obj := &testSubChild{}

	require.NoError(t, field(t, sub, "x").Set(obj, 5))
	require.NoError(t, field(t, sub, "z").Set(obj, 7))
	require.NoError(t, field(t, sub, "name").Set(obj, "hello"))
	assert.Equal(t, 5, obj.x)
	assert.Equal(t, 7, obj.z)
	assert.Equal(t, "hello", obj.name)

	v, err := field(t, sub, "x").Get(obj)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	ptr, err := FieldPtr[int](field(t, sub, "ff"), obj)
	require.NoError(t, err)
	*ptr = 11
	assert.Equal(t, 11, obj.ff)

	_, err = FieldPtr[string](field(t, sub, "ff"), obj)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	require.NoError(t, field(t, sub, "name").Set(obj, nil))
	assert.Empty(t, obj.name)
}

func TestFact_SetRejectsWrongType(t *testing.T) {
	reg := newHierarchy(t)
	sub := classOf[testSubChild](t, reg)

	err := field(t, sub, "x").Set(&testSubChild{}, "five")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFact_UnmarkedDescendantUpcasts(t *testing.T) {
	reg := newHierarchy(t)
	data := classOf[testData[int]](t, reg)
	obj := &testOrphan{}

	require.NoError(t, field(t, data, "y").Set(obj, 3))
	assert.Equal(t, 3, obj.y)
}

func TestFact_InvalidInstances(t *testing.T) {
	reg := newHierarchy(t)
	child := classOf[testChild](t, reg)
	z := field(t, child, "z")

	tests := []struct {
		name string
		obj  any
	}{
		{"nil", nil},
		{"value instead of pointer", testChild{}},
		{"nil pointer", (*testChild)(nil)},
		{"unreflected type", &struct{ A int }{}},
		{"sibling branch", &testChild2{}},
		{"ancestor", &testData[int]{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := z.Get(tt.obj)
			assert.ErrorIs(t, err, ErrInvalidInstance)
		})
	}
}

func TestFact_CallMethods(t *testing.T) {
	reg := newHierarchy(t)
	sub := classOf[testSubChild](t, reg)
	obj := &testSubChild{ff: 2}
	obj.x, obj.y, obj.z = 1, 2, 3

	fn := field(t, sub, "Func")
	assert.Equal(t, KindMethod, fn.Kind)
	assert.True(t, fn.IsMember())
	assert.Equal(t, rangeMeta{1, 2}, fn.Meta)

	out, err := fn.Call(obj, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{5}, out)

	out, err = field(t, sub, "Sum").Call(obj)
	require.NoError(t, err)
	assert.Equal(t, []any{6}, out)

	out, err = field(t, sub, "Join").Call(obj, "-", "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, []any{"a-b-c"}, out)

	_, err = fn.Call(obj)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = fn.Call(obj, "3")
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = field(t, sub, "ff").Call(obj)
	assert.ErrorIs(t, err, ErrNotCallable)
	_, err = fn.Get(obj)
	assert.ErrorIs(t, err, ErrNotAddressable)
}

func TestFact_Static(t *testing.T) {
	reg := newHierarchy(t)
	sub := classOf[testSubChild](t, reg)
	counter := field(t, sub, "counter")

	assert.Equal(t, KindStatic, counter.Kind)
	assert.False(t, counter.IsMember())

	v, err := counter.Get(nil)
	require.NoError(t, err)
	assert.Equal(t, testCounter, v)

	old := testCounter
	t.Cleanup(func() { testCounter = old })
	require.NoError(t, counter.Set(nil, 7))
	assert.Equal(t, 7, testCounter)
}

func TestFact_String(t *testing.T) {
	reg := newHierarchy(t)
	sub := classOf[testSubChild](t, reg)
	assert.Equal(t, "testSubChild.Func (method)", field(t, sub, "Func").String())
	assert.Equal(t, "field", CategoryField.String())
	assert.Equal(t, "member_type", CategoryMemberType.String())
	assert.Equal(t, "static", KindStatic.String())
}
