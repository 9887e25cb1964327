package metadata

import (
	"fmt"
	"reflect"
)

// ClassMeta describes one reflected struct type.
type ClassMeta struct {
	// Name is the declared type name without type arguments.
	Name string
	Size uintptr
	Type reflect.Type
	Meta any
	// File and Line locate the declaration when known.
	File string
	Line int

	base *ClassMeta
	up   func(any) any
	reg  *Registry
}

// HasBase reports whether the class has a reflected base.
func (c *ClassMeta) HasBase() bool {
	return c.base != nil
}

// Base returns the reflected base, or nil for a root.
func (c *ClassMeta) Base() *ClassMeta {
	return c.base
}

// BaseType returns the base's type, or nil for a root.
func (c *ClassMeta) BaseType() reflect.Type {
	if c.base == nil {
		return nil
	}
	return c.base.Type
}

// Root returns the top of the base chain.
func (c *ClassMeta) Root() *ClassMeta {
	cur := c
	for cur.base != nil {
		cur = cur.base
	}
	return cur
}

// DerivesFrom reports whether other is c or one of its ancestors.
func (c *ClassMeta) DerivesFrom(other *ClassMeta) bool {
	for cur := c; cur != nil; cur = cur.base {
		if cur == other {
			return true
		}
	}
	return false
}

func (c *ClassMeta) String() string {
	return c.Name
}

// Fields returns the class's own field-category facts in declaration order.
func (c *ClassMeta) Fields() []*Fact {
	return c.reg.factsOf(c.Type, CategoryField)
}

// MemberTypes returns the class's own member types in declaration order.
func (c *ClassMeta) MemberTypes() []*Fact {
	return c.reg.factsOf(c.Type, CategoryMemberType)
}

// DirectSubclasses returns the explicitly registered subtypes of c in
// registration order.
func (c *ClassMeta) DirectSubclasses() []*ClassMeta {
	entries := c.reg.factsOf(c.Type, CategorySubclass)
	out := make([]*ClassMeta, 0, len(entries))
	for _, e := range entries {
		if sub, ok := c.reg.Class(e.Type); ok {
			out = append(out, sub)
		}
	}
	return out
}

// EachDirectField visits the class's own fields at level 0.
func (c *ClassMeta) EachDirectField(fn func(f *Fact, level int) bool) bool {
	return eachFact(c.Fields(), 0, fn)
}

// EachField visits own fields at level 0, then the base's at level 1, and so
// on up to the root. Returning false stops the whole walk.
func (c *ClassMeta) EachField(fn func(f *Fact, level int) bool) bool {
	level := 0
	for cur := c; cur != nil; cur = cur.base {
		if !eachFact(cur.Fields(), level, fn) {
			return false
		}
		level++
	}
	return true
}

// EachMemberType visits the class's own member types at level 0.
func (c *ClassMeta) EachMemberType(fn func(f *Fact, level int) bool) bool {
	return eachFact(c.MemberTypes(), 0, fn)
}

// EachSubclass walks the subtype tree below c in pre-order. Direct subtypes
// are at depth 1. Returning false aborts the entire walk, including any
// remaining siblings of ancestors.
func (c *ClassMeta) EachSubclass(fn func(sub *ClassMeta, depth int) bool) bool {
	return c.eachSubclass(fn, 1)
}

func (c *ClassMeta) eachSubclass(fn func(*ClassMeta, int) bool, depth int) bool {
	for _, sub := range c.DirectSubclasses() {
		if !fn(sub, depth) {
			return false
		}
		if !sub.eachSubclass(fn, depth+1) {
			return false
		}
	}
	return true
}

func eachFact(facts []*Fact, level int, fn func(*Fact, int) bool) bool {
	for _, f := range facts {
		if !fn(f, level) {
			return false
		}
	}
	return true
}

// AllFields flattens the field facts of the whole chain, root first.
func (c *ClassMeta) AllFields() []*Fact {
	var chain []*ClassMeta
	for cur := c; cur != nil; cur = cur.base {
		chain = append(chain, cur)
	}

	var out []*Fact
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].Fields()...)
	}
	return out
}

// FieldIndex returns the position of name in AllFields, or -1.
func (c *ClassMeta) FieldIndex(name string) int {
	for i, f := range c.AllFields() {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Field returns AllFields()[i]. It panics when i is out of range.
func (c *ClassMeta) Field(i int) *Fact {
	all := c.AllFields()
	if i < 0 || i >= len(all) {
		panic(fmt.Sprintf("metadata: field index %d out of range for %s (%d fields)", i, c.Name, len(all)))
	}
	return all[i]
}

// LookupField finds a field by name anywhere in the chain, own fields first.
func (c *ClassMeta) LookupField(name string) (*Fact, bool) {
	var found *Fact
	c.EachField(func(f *Fact, _ int) bool {
		if f.Name == name {
			found = f
			return false
		}
		return true
	})
	return found, found != nil
}

// Subclasses lists direct subtypes first, followed by the expansion of each
// direct subtype in turn.
func (c *ClassMeta) Subclasses() []*ClassMeta {
	direct := c.DirectSubclasses()
	out := append([]*ClassMeta(nil), direct...)
	for _, sub := range direct {
		out = append(out, sub.Subclasses()...)
	}
	return out
}

// SubclassIndex returns the position of the first subtype called name in
// Subclasses, or -1.
func (c *ClassMeta) SubclassIndex(name string) int {
	for i, sub := range c.Subclasses() {
		if sub.Name == name {
			return i
		}
	}
	return -1
}

// SubclassIndexOf returns the position of t in Subclasses, or -1.
func (c *ClassMeta) SubclassIndexOf(t reflect.Type) int {
	for i, sub := range c.Subclasses() {
		if sub.Type == t {
			return i
		}
	}
	return -1
}

// Subclass returns Subclasses()[i], or nil when i is out of range.
func (c *ClassMeta) Subclass(i int) *ClassMeta {
	subs := c.Subclasses()
	if i < 0 || i >= len(subs) {
		return nil
	}
	return subs[i]
}

// NewSubclass allocates a zero value of the i-th subtype and returns a
// pointer to it, or nil when i is out of range.
func (c *ClassMeta) NewSubclass(i int) any {
	sub := c.Subclass(i)
	if sub == nil {
		return nil
	}
	return reflect.New(sub.Type).Interface()
}

// upcast converts obj, a pointer to c's type or to a reflected descendant, to
// a pointer to c's type by following the registered base accessors.
func (c *ClassMeta) upcast(obj any) (any, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: nil instance for %s", ErrInvalidInstance, c.Name)
	}
	t := reflect.TypeOf(obj)
	if t.Kind() != reflect.Pointer || reflect.ValueOf(obj).IsNil() {
		return nil, fmt.Errorf("%w: %s needs a non-nil pointer, got %s", ErrInvalidInstance, c.Name, t)
	}
	if t.Elem() == c.Type {
		return obj, nil
	}

	from, ok := c.reg.Class(t.Elem())
	if !ok {
		return nil, fmt.Errorf("%w: %s is not reflected", ErrInvalidInstance, t.Elem())
	}
	for cur := from; cur != nil; cur = cur.base {
		if cur == c {
			return obj, nil
		}
		if cur.up == nil {
			break
		}
		obj = cur.up(obj)
		if obj == nil || reflect.ValueOf(obj).IsNil() {
			return nil, fmt.Errorf("%w: embedded %s of %s is nil", ErrInvalidInstance, cur.base.Name, cur.Name)
		}
	}
	return nil, fmt.Errorf("%w: %s does not derive from %s", ErrInvalidInstance, from.Name, c.Name)
}
