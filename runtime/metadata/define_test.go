package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefine_Errors(t *testing.T) {
	tests := []struct {
		name string
		run  func(reg *Registry) error
		want error
	}{
		{
			name: "twice",
			run: func(reg *Registry) error {
				return Define[testBase](Into(reg), Root()).Err()
			},
			want: ErrAlreadyDefined,
		},
		{
			name: "not a struct",
			run: func(reg *Registry) error {
				return Define[int](Into(reg)).Err()
			},
			want: ErrNotStruct,
		},
		{
			name: "base is not embedded",
			run: func(reg *Registry) error {
				type indirect struct{ testChild2 }
				return Define[indirect](Into(reg),
					Base(func(v *indirect) *testBase { return &v.testBase })).Err()
			},
			want: ErrInvalidBase,
		},
		{
			name: "accessor for another type",
			run: func(reg *Registry) error {
				type other struct{ testBase }
				type mine struct{ testBase }
				return Define[mine](Into(reg),
					Base(func(v *other) *testBase { return &v.testBase })).Err()
			},
			want: ErrInvalidBase,
		},
		{
			name: "base not reflected",
			run: func(reg *Registry) error {
				type plain struct{}
				type derived struct{ plain }
				return Define[derived](Into(reg),
					Base(func(v *derived) *plain { return &v.plain })).Err()
			},
			want: ErrBaseNotReflected,
		},
		{
			name: "subtype without base",
			run: func(reg *Registry) error {
				type lone struct{}
				return Define[lone](Into(reg), Subtype()).Err()
			},
			want: ErrSubtypeWithoutBase,
		},
		{
			name: "subtype of root",
			run: func(reg *Registry) error {
				type lone struct{ testBase }
				return Define[lone](Into(reg), Root(), Subtype()).Err()
			},
			want: ErrSubtypeWithoutBase,
		},
		{
			name: "duplicate field",
			run: func(reg *Registry) error {
				type dup struct{ a, b int }
				b := Define[dup](Into(reg))
				Field(b, "a", func(v *dup) *int { return &v.a }, nil)
				Field(b, "a", func(v *dup) *int { return &v.b }, nil)
				return b.Err()
			},
			want: ErrDuplicateFact,
		},
		{
			name: "method with foreign receiver",
			run: func(reg *Registry) error {
				type host struct{}
				b := Define[host](Into(reg))
				Method(b, "Func", (*testSubChild).Func, nil)
				return b.Err()
			},
			want: ErrNotMethod,
		},
		{
			name: "method that is not a func",
			run: func(reg *Registry) error {
				type host struct{}
				b := Define[host](Into(reg))
				Method(b, "Func", 3, nil)
				return b.Err()
			},
			want: ErrNotMethod,
		},
		{
			name: "unknown reflective field",
			run: func(reg *Registry) error {
				type host struct{ Name string }
				b := Define[host](Into(reg))
				FieldOf(b, "Missing", nil)
				return b.Err()
			},
			want: ErrUnknownField,
		},
		{
			name: "unexported reflective field",
			run: func(reg *Registry) error {
				type host struct{ name string }
				b := Define[host](Into(reg))
				FieldOf(b, "name", nil)
				return b.Err()
			},
			want: ErrUnknownField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newHierarchy(t)
			err := tt.run(reg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDefine_ErrorsAreSticky(t *testing.T) {
	reg := NewRegistry()
	type host struct{ a, b int }

	b := Define[host](Into(reg))
	Field(b, "a", func(v *host) *int { return &v.a }, nil)
	Field(b, "a", func(v *host) *int { return &v.a }, nil)
	Field(b, "b", func(v *host) *int { return &v.b }, nil)

	assert.ErrorIs(t, b.Err(), ErrDuplicateFact)
	assert.Len(t, b.Class().Fields(), 1, "registrations after the error are skipped")
}

func TestDefine_FailedDefinitionRegistersNothing(t *testing.T) {
	reg := NewRegistry()
	b := Define[testChild](Into(reg),
		Base(func(c *testChild) *testData[int] { return &c.testData }))
	Field(b, "z", func(c *testChild) *int { return &c.z }, nil)

	assert.ErrorIs(t, b.Err(), ErrBaseNotReflected)
	assert.Nil(t, b.Class())
	assert.Equal(t, 0, reg.Len())
}

func TestDefine_Named(t *testing.T) {
	reg := NewRegistry()
	type host struct{ A int }

	b := Define[host](Into(reg), Named("Host"), WithMeta(rangeMeta{1, 2}))
	FieldOf(b, "A", "doc")
	require.NoError(t, b.Err())

	c := b.Class()
	assert.Equal(t, "Host", c.Name)
	assert.Equal(t, rangeMeta{1, 2}, c.Meta)

	obj := &host{}
	require.NoError(t, c.Fields()[0].Set(obj, 4))
	assert.Equal(t, 4, obj.A)
	assert.Equal(t, "doc", c.Fields()[0].Meta)
}

func TestDefine_PointerEmbeddedBase(t *testing.T) {
	reg := NewRegistry()
	type node struct{ id int }
	type leaf struct{ *node }

	nb := Define[node](Into(reg))
	Field(nb, "id", func(n *node) *int { return &n.id }, nil)
	require.NoError(t, nb.Err())

	lb := Define[leaf](Into(reg), Subtype(), Base(func(l *leaf) *node { return l.node }))
	require.NoError(t, lb.Err())

	obj := &leaf{node: &node{}}
	f, ok := lb.Class().LookupField("id")
	require.True(t, ok)
	require.NoError(t, f.Set(obj, 9))
	assert.Equal(t, 9, obj.id)

	_, err := f.Get(&leaf{})
	assert.ErrorIs(t, err, ErrInvalidInstance)
	assert.ErrorIs(t, f.Set(&leaf{}, 1), ErrInvalidInstance)
	_, err = f.Addr(&leaf{})
	assert.ErrorIs(t, err, ErrInvalidInstance)
}
