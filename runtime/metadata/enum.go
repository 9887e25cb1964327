package metadata

import (
	"fmt"
	"reflect"
	"strings"
)

// Integer is the set of types an enum can be declared on.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// EnumItem is one named value of an enum.
type EnumItem[E Integer] struct {
	Name  string
	Value E
	Meta  any
}

// Item builds an item from its source text, e.g. "Ban = Ass * 3". The name is
// trimmed with TrimEnumName.
func Item[E Integer](raw string, v E) EnumItem[E] {
	return EnumItem[E]{Name: TrimEnumName(raw), Value: v}
}

// ItemWithMeta is Item with per-item metadata.
func ItemWithMeta[E Integer](raw string, v E, meta any) EnumItem[E] {
	it := Item(raw, v)
	it.Meta = meta
	return it
}

// EnumMeta describes a reflected enum. Items keep declaration order.
type EnumMeta[E Integer] struct {
	Name  string
	Size  uintptr
	Type  reflect.Type
	Items []EnumItem[E]
	Meta  any
	File  string
	Line  int
}

// DefineEnum reflects E with the given items.
func DefineEnum[E Integer](items []EnumItem[E], opts ...Option) (*EnumMeta[E], error) {
	cfg := newDefineConfig(opts)
	t := reflect.TypeFor[E]()

	e := &EnumMeta[E]{
		Name:  cfg.name,
		Size:  t.Size(),
		Type:  t,
		Items: append([]EnumItem[E](nil), items...),
		Meta:  cfg.meta,
		File:  cfg.file,
		Line:  cfg.line,
	}
	if e.Name == "" {
		e.Name = TypeName(t)
	}
	if err := cfg.reg.defineEnum(e); err != nil {
		return nil, err
	}
	return e, nil
}

// EachItem visits items in declaration order until fn returns false.
func (e *EnumMeta[E]) EachItem(fn func(item EnumItem[E], index int) bool) bool {
	for i, it := range e.Items {
		if !fn(it, i) {
			return false
		}
	}
	return true
}

// IndexOfValue returns the index of the first item with value v, or -1.
func (e *EnumMeta[E]) IndexOfValue(v E) int {
	for i, it := range e.Items {
		if it.Value == v {
			return i
		}
	}
	return -1
}

// IndexOfName returns the index of the first item called name, or -1.
func (e *EnumMeta[E]) IndexOfName(name string) int {
	for i, it := range e.Items {
		if it.Name == name {
			return i
		}
	}
	return -1
}

// NameOf returns the name of the first item with value v, or "".
func (e *EnumMeta[E]) NameOf(v E) string {
	if i := e.IndexOfValue(v); i >= 0 {
		return e.Items[i].Name
	}
	return ""
}

// ValueOf returns the value of the first item called name, or def.
func (e *EnumMeta[E]) ValueOf(name string, def E) E {
	if i := e.IndexOfName(name); i >= 0 {
		return e.Items[i].Value
	}
	return def
}

func (e *EnumMeta[E]) enumType() reflect.Type {
	return e.Type
}

func (e *EnumMeta[E]) snapshot() EnumSnapshot {
	s := EnumSnapshot{
		ID:     TypeID(e.Type).String(),
		Name:   e.Name,
		GoType: e.Type.String(),
		Size:   e.Size,
		Meta:   metaString(e.Meta),
	}
	for _, it := range e.Items {
		s.Items = append(s.Items, EnumItemSnapshot{
			Name:  it.Name,
			Value: fmt.Sprint(it.Value),
			Meta:  metaString(it.Meta),
		})
	}
	return s
}

// LookupEnum returns the metadata of E in r.
func LookupEnum[E Integer](r *Registry) (*EnumMeta[E], bool) {
	entry, ok := r.enum(reflect.TypeFor[E]())
	if !ok {
		return nil, false
	}
	e, ok := entry.(*EnumMeta[E])
	return e, ok
}

// EnumOf returns the metadata of E in the default registry.
func EnumOf[E Integer]() (*EnumMeta[E], bool) {
	return LookupEnum[E](defaultRegistry)
}

// NameOf maps v to its item name, "" for unknown values or unreflected enums.
func NameOf[E Integer](v E) string {
	e, ok := EnumOf[E]()
	if !ok {
		return ""
	}
	return e.NameOf(v)
}

// ValueOf maps name to its value, def when unknown.
func ValueOf[E Integer](name string, def E) E {
	e, ok := EnumOf[E]()
	if !ok {
		return def
	}
	return e.ValueOf(name, def)
}

// EachItem visits the items of E in declaration order.
func EachItem[E Integer](fn func(item EnumItem[E], index int) bool) bool {
	e, ok := EnumOf[E]()
	if !ok {
		return true
	}
	return e.EachItem(fn)
}

// TrimEnumName reduces an enumerator's source text to its name: one pair of
// enclosing parentheses is dropped, everything from the first '=' is cut and
// surrounding blanks and commas are trimmed.
func TrimEnumName(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if i := strings.IndexByte(s, '='); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, " \t\r\n,")
}
