package metadata

import (
	"fmt"
	"reflect"
)

// Category partitions the facts of a type into independent ordered lists.
type Category int

const (
	// CategoryField holds data fields, methods and statics.
	CategoryField Category = iota
	// CategoryMemberType holds nested/associated types.
	CategoryMemberType
	// CategorySubclass holds one entry per explicitly registered subtype.
	CategorySubclass
)

func (c Category) String() string {
	switch c {
	case CategoryField:
		return "field"
	case CategoryMemberType:
		return "member_type"
	case CategorySubclass:
		return "subclass"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Kind tells what a fact's payload refers to.
type Kind int

const (
	// KindField is a data field of the owner.
	KindField Kind = iota
	// KindStatic is a package-level variable associated with the owner.
	KindStatic
	// KindMethod is a method of the owner.
	KindMethod
	// KindType is a type marker (member types and subclass entries).
	KindType
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindStatic:
		return "static"
	case KindMethod:
		return "method"
	case KindType:
		return "type"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Fact is one registered piece of information about a type.
type Fact struct {
	// Index is the 0-based position within the owner's list for Category.
	Index    int
	Name     string
	Category Category
	Kind     Kind
	// Owner is the struct type the fact was registered on.
	Owner reflect.Type
	// Type is the field type, the method's func type, the static's type, or
	// the marked type.
	Type reflect.Type
	// Meta is the user metadata, nil when none was given.
	Meta any

	class  *ClassMeta
	addr   func(owner any) any
	method reflect.Value
	static any
}

// IsMember reports whether the fact needs an instance to be used.
func (f *Fact) IsMember() bool {
	return f.Kind == KindField || f.Kind == KindMethod
}

// HasMeta reports whether metadata was attached.
func (f *Fact) HasMeta() bool {
	return f.Meta != nil
}

// Class returns the class the fact belongs to.
func (f *Fact) Class() *ClassMeta {
	return f.class
}

func (f *Fact) String() string {
	owner := "<nil>"
	if f.class != nil {
		owner = f.class.Name
	}
	return fmt.Sprintf("%s.%s (%s)", owner, f.Name, f.Kind)
}

// Addr returns a pointer to the storage the fact describes. For fields obj
// must point to the owner or to a reflected descendant of it; for statics obj
// is ignored.
func (f *Fact) Addr(obj any) (any, error) {
	switch f.Kind {
	case KindStatic:
		return f.static, nil
	case KindField:
		p, err := f.class.upcast(obj)
		if err != nil {
			return nil, err
		}
		return f.addr(p), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotAddressable, f)
	}
}

// Get returns the current value of a field or static.
func (f *Fact) Get(obj any) (any, error) {
	p, err := f.Addr(obj)
	if err != nil {
		return nil, err
	}
	return reflect.ValueOf(p).Elem().Interface(), nil
}

// Set assigns v to a field or static. v must be assignable to the fact's type;
// nil stores the zero value.
func (f *Fact) Set(obj any, v any) error {
	p, err := f.Addr(obj)
	if err != nil {
		return err
	}
	dst := reflect.ValueOf(p).Elem()
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(v)
	if !src.Type().AssignableTo(dst.Type()) {
		return fmt.Errorf("%w: cannot assign %s to %s", ErrTypeMismatch, src.Type(), f)
	}
	dst.Set(src)
	return nil
}

// Call invokes a method fact on obj and returns its results.
func (f *Fact) Call(obj any, args ...any) ([]any, error) {
	if f.Kind != KindMethod {
		return nil, fmt.Errorf("%w: %s", ErrNotCallable, f)
	}
	p, err := f.class.upcast(obj)
	if err != nil {
		return nil, err
	}

	ft := f.method.Type()
	recv := reflect.ValueOf(p)
	if ft.In(0) != recv.Type() {
		recv = recv.Elem()
	}

	want := ft.NumIn() - 1
	if ft.IsVariadic() {
		if len(args) < want-1 {
			return nil, fmt.Errorf("%w: %s takes at least %d arguments, got %d", ErrTypeMismatch, f, want-1, len(args))
		}
	} else if len(args) != want {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrTypeMismatch, f, want, len(args))
	}

	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, recv)
	for i, a := range args {
		pt := paramType(ft, i+1)
		if a == nil {
			in = append(in, reflect.Zero(pt))
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("%w: argument %d of %s: %s is not %s", ErrTypeMismatch, i, f, v.Type(), pt)
		}
		in = append(in, v)
	}

	out := f.method.Call(in)
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}

func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	return ft.In(i)
}

// FieldPtr returns a typed pointer to a field or static.
func FieldPtr[F any](f *Fact, obj any) (*F, error) {
	p, err := f.Addr(obj)
	if err != nil {
		return nil, err
	}
	ptr, ok := p.(*F)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, f, f.Type)
	}
	return ptr, nil
}
