package metadata

import "reflect"

// ClassOf returns the metadata of T from the default registry.
//
// Example usage:
//
//	if c, ok := metadata.ClassOf[shapes.Circle](); ok {
//		c.EachField(func(f *metadata.Fact, level int) bool {
//			fmt.Println(level, f.Name)
//			return true
//		})
//	}
func ClassOf[T any]() (*ClassMeta, bool) {
	return defaultRegistry.Class(reflect.TypeFor[T]())
}

// IsReflected reports whether T has been defined.
func IsReflected[T any]() bool {
	_, ok := ClassOf[T]()
	return ok
}

// HasBase reports whether T is reflected and has a reflected base.
func HasBase[T any]() bool {
	c, ok := ClassOf[T]()
	return ok && c.HasBase()
}

// BaseOf returns the base of T, nil for roots and unreflected types.
func BaseOf[T any]() *ClassMeta {
	c, ok := ClassOf[T]()
	if !ok {
		return nil
	}
	return c.Base()
}

// EachField walks the fields of T and its bases. See ClassMeta.EachField.
// Unreflected types have nothing to visit.
func EachField[T any](fn func(f *Fact, level int) bool) bool {
	c, ok := ClassOf[T]()
	if !ok {
		return true
	}
	return c.EachField(fn)
}

// EachSubclass walks the subtype tree of T. See ClassMeta.EachSubclass.
func EachSubclass[T any](fn func(sub *ClassMeta, depth int) bool) bool {
	c, ok := ClassOf[T]()
	if !ok {
		return true
	}
	return c.EachSubclass(fn)
}

// SubclassID returns the index of S among the subclasses of T, or -1.
//
//	id := metadata.SubclassID[Base, SubChild]()
//	obj := metadata.NewSubclass[Base](id).(*SubChild)
func SubclassID[T, S any]() int {
	c, ok := ClassOf[T]()
	if !ok {
		return -1
	}
	return c.SubclassIndexOf(reflect.TypeFor[S]())
}

// NewSubclass allocates the id-th subclass of T, nil for an invalid id.
func NewSubclass[T any](id int) any {
	c, ok := ClassOf[T]()
	if !ok {
		return nil
	}
	return c.NewSubclass(id)
}

// EachFieldWithMeta walks the fields of c and its bases whose metadata is an M.
func EachFieldWithMeta[M any](c *ClassMeta, fn func(f *Fact, meta M, level int) bool) bool {
	return c.EachField(func(f *Fact, level int) bool {
		if m, ok := f.Meta.(M); ok {
			return fn(f, m, level)
		}
		return true
	})
}

// EachMemberTypeWithMeta walks the member types of c whose metadata is an M.
func EachMemberTypeWithMeta[M any](c *ClassMeta, fn func(f *Fact, meta M, level int) bool) bool {
	return c.EachMemberType(func(f *Fact, level int) bool {
		if m, ok := f.Meta.(M); ok {
			return fn(f, m, level)
		}
		return true
	})
}

// EachSubclassWithMeta walks the subtype tree of c, visiting classes whose
// metadata is an M. Skipped classes are still descended into.
func EachSubclassWithMeta[M any](c *ClassMeta, fn func(sub *ClassMeta, meta M, depth int) bool) bool {
	return c.EachSubclass(func(sub *ClassMeta, depth int) bool {
		if m, ok := sub.Meta.(M); ok {
			return fn(sub, m, depth)
		}
		return true
	})
}
