package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fruit int

const (
	ass fruit = 1
	ban       = ass * 3
)

type level uint8

func defineFruit(t *testing.T, reg *Registry) *EnumMeta[fruit] {
	t.Helper()
	e, err := DefineEnum([]EnumItem[fruit]{
		Item("ass = 1", ass),
		ItemWithMeta("ban = ass * 3", ban, "yellow"),
	}, Into(reg), WithMeta("fruit basket"))
	require.NoError(t, err)
	return e
}

func TestEnumMeta_Mapping(t *testing.T) {
	e := defineFruit(t, NewRegistry())

	assert.Equal(t, "fruit", e.Name)
	assert.Equal(t, "fruit basket", e.Meta)
	require.Len(t, e.Items, 2)
	assert.Equal(t, "ass", e.Items[0].Name)
	assert.Equal(t, fruit(1), e.Items[0].Value)
	assert.Equal(t, "ban", e.Items[1].Name)
	assert.Equal(t, fruit(3), e.Items[1].Value)
	assert.Equal(t, "yellow", e.Items[1].Meta)

	assert.Equal(t, "ban", e.NameOf(3))
	assert.Equal(t, "", e.NameOf(2))
	assert.Equal(t, ass, e.ValueOf("ass", 0))
	assert.Equal(t, fruit(7), e.ValueOf("cherry", 7))
	assert.Equal(t, 1, e.IndexOfValue(3))
	assert.Equal(t, -1, e.IndexOfValue(4))
	assert.Equal(t, 0, e.IndexOfName("ass"))
	assert.Equal(t, -1, e.IndexOfName("Ass"))
}

func TestEnumMeta_DuplicateValuesMatchFirst(t *testing.T) {
	e, err := DefineEnum([]EnumItem[level]{
		Item("Low", level(0)),
		Item("Default = Low", level(0)),
		Item("High", level(2)),
	}, Into(NewRegistry()))
	require.NoError(t, err)

	assert.Equal(t, "Low", e.NameOf(0))
	assert.Equal(t, level(0), e.ValueOf("Default", 9))
}

func TestEnumMeta_EachItem(t *testing.T) {
	e := defineFruit(t, NewRegistry())

	var names []string
	assert.True(t, e.EachItem(func(it EnumItem[fruit], i int) bool {
		names = append(names, it.Name)
		return true
	}))
	assert.Equal(t, []string{"ass", "ban"}, names)

	visited := 0
	assert.False(t, e.EachItem(func(EnumItem[fruit], int) bool {
		visited++
		return false
	}))
	assert.Equal(t, 1, visited)
}

func TestDefineEnum_Twice(t *testing.T) {
	reg := NewRegistry()
	defineFruit(t, reg)
	_, err := DefineEnum([]EnumItem[fruit]{Item("ass", ass)}, Into(reg))
	assert.ErrorIs(t, err, ErrAlreadyDefined)

	got, ok := LookupEnum[fruit](reg)
	require.True(t, ok)
	assert.Len(t, got.Items, 2)

	_, ok = LookupEnum[level](reg)
	assert.False(t, ok)
}

func TestEnum_DefaultRegistry(t *testing.T) {
	t.Cleanup(Default().Reset)
	defineFruit(t, Default())

	assert.Equal(t, "ban", NameOf(ban))
	assert.Equal(t, ass, ValueOf("ass", fruit(0)))
	assert.Equal(t, fruit(-1), ValueOf("kiwi", fruit(-1)))

	count := 0
	EachItem(func(EnumItem[fruit], int) bool {
		count++
		return true
	})
	assert.Equal(t, 2, count)

	// unreflected enums map to the defaults
	assert.Equal(t, "", NameOf(level(1)))
	assert.Equal(t, level(4), ValueOf("High", level(4)))
	assert.True(t, EachItem(func(EnumItem[level], int) bool { return false }))
}

func TestTrimEnumName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Ass", "Ass"},
		{"Ass = 1", "Ass"},
		{"Ass=1", "Ass"},
		{"  Ban = Ass * 3  ", "Ban"},
		{"(Cherry = 4)", "Cherry"},
		{"Damson,", "Damson"},
		{"Elder = (1 << 2)", "Elder"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, TrimEnumName(tt.raw))
		})
	}
}
