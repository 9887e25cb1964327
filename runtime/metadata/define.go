package metadata

import (
	"fmt"
	"reflect"
	"strings"
)

// Option configures Define and DefineEnum.
type Option func(*defineConfig)

type defineConfig struct {
	root    bool
	subtype bool
	name    string
	meta    any
	file    string
	line    int
	reg     *Registry

	baseOwner reflect.Type
	baseType  reflect.Type
	up        func(any) any
}

// Root marks the type as having no base.
func Root() Option {
	return func(c *defineConfig) { c.root = true }
}

// Base names the reflected base of T through an accessor that returns the
// embedded base value. The accessor doubles as the upcast used when a field
// of the base is read through a pointer to T.
//
//	metadata.Base(func(c *Child) *Data[int] { return &c.Data })
func Base[T, B any](up func(*T) *B) Option {
	return func(c *defineConfig) {
		c.baseOwner = reflect.TypeFor[T]()
		c.baseType = reflect.TypeFor[B]()
		c.up = func(v any) any { return up(v.(*T)) }
	}
}

// Subtype adds the type to its base's subclass list.
func Subtype() Option {
	return func(c *defineConfig) { c.subtype = true }
}

// Named overrides the recorded name.
func Named(name string) Option {
	return func(c *defineConfig) { c.name = name }
}

// WithMeta attaches class or enum metadata.
func WithMeta(meta any) Option {
	return func(c *defineConfig) { c.meta = meta }
}

// At records the declaration position.
func At(file string, line int) Option {
	return func(c *defineConfig) {
		c.file = file
		c.line = line
	}
}

// Into registers into r instead of the default registry.
func Into(r *Registry) Option {
	return func(c *defineConfig) { c.reg = r }
}

func newDefineConfig(opts []Option) *defineConfig {
	cfg := &defineConfig{reg: defaultRegistry}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Builder collects the registrations of one class. The first error sticks:
// later calls on a failed builder do nothing.
type Builder[T any] struct {
	class *ClassMeta
	reg   *Registry
	err   error
}

// Err returns the first registration error.
func (b *Builder[T]) Err() error {
	return b.err
}

// Class returns the defined class, nil if the definition failed.
func (b *Builder[T]) Class() *ClassMeta {
	return b.class
}

// Define reflects T. T must be a struct type.
func Define[T any](opts ...Option) *Builder[T] {
	cfg := newDefineConfig(opts)
	b := &Builder[T]{reg: cfg.reg}
	t := reflect.TypeFor[T]()

	if t.Kind() != reflect.Struct {
		b.err = fmt.Errorf("%w: %s is a %s", ErrNotStruct, t, t.Kind())
		return b
	}

	c := &ClassMeta{
		Name: cfg.name,
		Size: t.Size(),
		Type: t,
		Meta: cfg.meta,
		File: cfg.file,
		Line: cfg.line,
	}
	if c.Name == "" {
		c.Name = TypeName(t)
	}

	if cfg.root {
		if cfg.subtype {
			b.err = fmt.Errorf("%w: %s is declared root", ErrSubtypeWithoutBase, c.Name)
			return b
		}
	} else if cfg.baseType != nil {
		base, err := resolveBase(cfg, t)
		if err != nil {
			b.err = err
			return b
		}
		c.base = base
		c.up = cfg.up
	}

	if cfg.subtype && c.base == nil {
		b.err = fmt.Errorf("%w: %s", ErrSubtypeWithoutBase, c.Name)
		return b
	}

	if err := cfg.reg.define(c, cfg.subtype); err != nil {
		b.err = err
		return b
	}
	b.class = c
	return b
}

func resolveBase(cfg *defineConfig, t reflect.Type) (*ClassMeta, error) {
	if cfg.baseOwner != t {
		return nil, fmt.Errorf("%w: accessor for %s used to define %s", ErrInvalidBase, cfg.baseOwner, t)
	}
	if !embeds(t, cfg.baseType) {
		return nil, fmt.Errorf("%w: %s does not embed %s", ErrInvalidBase, t, cfg.baseType)
	}
	base, ok := cfg.reg.Class(cfg.baseType)
	if !ok {
		return nil, fmt.Errorf("%w: %s (base of %s)", ErrBaseNotReflected, cfg.baseType, t)
	}
	return base, nil
}

// embeds reports whether t has an embedded field of type base or *base.
func embeds(t, base reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		if f.Type == base || (f.Type.Kind() == reflect.Pointer && f.Type.Elem() == base) {
			return true
		}
	}
	return false
}

// TypeName returns t's declared name without package or type arguments.
func TypeName(t reflect.Type) string {
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return t.String()
	}
	return name
}

func (b *Builder[T]) push(f *Fact) {
	if b.err != nil {
		return
	}
	if b.class == nil {
		b.err = fmt.Errorf("%w: %s", ErrNotReflected, reflect.TypeFor[T]())
		return
	}
	f.Owner = b.class.Type
	if err := b.reg.push(b.class, f); err != nil {
		b.err = err
	}
}

// Field registers a data field through a typed accessor.
//
//	metadata.Field(b, "x", func(v *Data[T]) *int { return &v.x }, nil)
func Field[T, F any](b *Builder[T], name string, get func(*T) *F, meta any) {
	b.push(&Fact{
		Name:     name,
		Category: CategoryField,
		Kind:     KindField,
		Type:     reflect.TypeFor[F](),
		Meta:     meta,
		addr:     func(p any) any { return get(p.(*T)) },
	})
}

// FieldOf registers an exported field by its Go name using reflection. It is
// used when the accessor cannot be spelled out, e.g. for types declared in
// other packages.
func FieldOf[T any](b *Builder[T], goName string, meta any) {
	if b.err != nil {
		return
	}
	sf, ok := reflect.TypeFor[T]().FieldByName(goName)
	if !ok || !sf.IsExported() {
		b.err = fmt.Errorf("%w: %s.%s", ErrUnknownField, reflect.TypeFor[T](), goName)
		return
	}
	index := sf.Index
	b.push(&Fact{
		Name:     goName,
		Category: CategoryField,
		Kind:     KindField,
		Type:     sf.Type,
		Meta:     meta,
		addr: func(p any) any {
			return reflect.ValueOf(p).Elem().FieldByIndex(index).Addr().Interface()
		},
	})
}

// Method registers a method expression. The first parameter of fn must be T
// or *T; callers that need to pin a signature pass F explicitly:
//
//	metadata.Method[Child, func(*Child, int) error](b, "Do", (*Child).Do, nil)
func Method[T, F any](b *Builder[T], name string, fn F, meta any) {
	if b.err != nil {
		return
	}
	v := reflect.ValueOf(fn)
	t := reflect.TypeFor[T]()
	if v.Kind() != reflect.Func || v.IsNil() || v.Type().NumIn() == 0 {
		b.err = fmt.Errorf("%w: %s.%s is %T", ErrNotMethod, t, name, fn)
		return
	}
	recv := v.Type().In(0)
	if recv != t && recv != reflect.PointerTo(t) {
		b.err = fmt.Errorf("%w: %s.%s has receiver %s", ErrNotMethod, t, name, recv)
		return
	}
	b.push(&Fact{
		Name:     name,
		Category: CategoryField,
		Kind:     KindMethod,
		Type:     v.Type(),
		Meta:     meta,
		method:   v,
	})
}

// Static registers a package-level variable under T. It is listed with the
// fields but needs no instance.
func Static[T, V any](b *Builder[T], name string, ptr *V, meta any) {
	b.push(&Fact{
		Name:     name,
		Category: CategoryField,
		Kind:     KindStatic,
		Type:     reflect.TypeFor[V](),
		Meta:     meta,
		static:   ptr,
	})
}

// MemberType registers M as a member type of T.
//
//	metadata.MemberType[Child_Kind](b, "Kind", nil)
func MemberType[M, T any](b *Builder[T], name string, meta any) {
	b.push(&Fact{
		Name:     name,
		Category: CategoryMemberType,
		Kind:     KindType,
		Type:     reflect.TypeFor[M](),
		Meta:     meta,
	})
}
