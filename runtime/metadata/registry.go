package metadata

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry holds the reflected classes and enums of a program.
// Generated init() functions populate the default registry at startup; after
// that it is only read. Visitors run outside the lock, so they may query the
// registry again.
type Registry struct {
	mu sync.RWMutex

	classes   map[reflect.Type]*ClassMeta
	order     []*ClassMeta
	enums     map[reflect.Type]enumEntry
	enumOrder []enumEntry
	facts     map[factKey]*Accumulator[*Fact]

	// generation counts successful registrations of any kind
	generation uint64
}

type factKey struct {
	owner    reflect.Type
	category Category
}

// enumEntry is the type-erased view of an EnumMeta.
type enumEntry interface {
	enumType() reflect.Type
	snapshot() EnumSnapshot
}

var defaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[reflect.Type]*ClassMeta),
		enums:   make(map[reflect.Type]enumEntry),
		facts:   make(map[factKey]*Accumulator[*Fact]),
	}
}

// Default returns the process-wide registry that generated code targets.
func Default() *Registry {
	return defaultRegistry
}

// Reset drops everything. It exists for tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.classes = make(map[reflect.Type]*ClassMeta)
	r.order = nil
	r.enums = make(map[reflect.Type]enumEntry)
	r.enumOrder = nil
	r.facts = make(map[factKey]*Accumulator[*Fact])
	r.generation = 0
}

// Generation returns the number of registrations performed so far.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// Class returns the metadata for t.
func (r *Registry) Class(t reflect.Type) (*ClassMeta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[t]
	return c, ok
}

// ClassByName returns the first class defined with name.
func (r *Registry) ClassByName(name string) (*ClassMeta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.order {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Classes returns every class in definition order.
func (r *Registry) Classes() []*ClassMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ClassMeta, len(r.order))
	copy(out, r.order)
	return out
}

// Roots returns classes without a base in definition order.
func (r *Registry) Roots() []*ClassMeta {
	var out []*ClassMeta
	for _, c := range r.Classes() {
		if !c.HasBase() {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of reflected classes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry) factsOf(owner reflect.Type, cat Category) []*Fact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.facts[factKey{owner, cat}]
	if !ok {
		return nil
	}
	return acc.Items()
}

// define publishes c. When subtype is set, c is also pushed onto its base's
// subclass list.
func (r *Registry) define(c *ClassMeta, subtype bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[c.Type]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyDefined, c.Type)
	}
	if c.base != nil {
		if r.classes[c.base.Type] != c.base {
			return fmt.Errorf("%w: %s (base of %s)", ErrBaseNotReflected, c.base.Type, c.Name)
		}
	}

	c.reg = r
	r.classes[c.Type] = c
	r.order = append(r.order, c)
	r.generation++

	if subtype {
		r.pushLocked(c.base, &Fact{
			Name:     c.Name,
			Category: CategorySubclass,
			Kind:     KindType,
			Owner:    c.base.Type,
			Type:     c.Type,
		})
	}
	return nil
}

// push appends f to the owner's list for f.Category and assigns its index.
func (r *Registry) push(owner *ClassMeta, f *Fact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := factKey{owner.Type, f.Category}
	if acc, ok := r.facts[key]; ok {
		dup := !acc.Each(func(_ int, existing *Fact) bool {
			return existing.Name != f.Name
		})
		if dup {
			return fmt.Errorf("%w: %s.%s (%s)", ErrDuplicateFact, owner.Name, f.Name, f.Category)
		}
	}
	r.pushLocked(owner, f)
	return nil
}

func (r *Registry) pushLocked(owner *ClassMeta, f *Fact) {
	key := factKey{owner.Type, f.Category}
	acc, ok := r.facts[key]
	if !ok {
		acc = &Accumulator[*Fact]{}
		r.facts[key] = acc
	}
	f.class = owner
	f.Index = acc.Push(f) - 1
	r.generation++
}

func (r *Registry) defineEnum(e enumEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := e.enumType()
	if _, exists := r.enums[t]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyDefined, t)
	}
	r.enums[t] = e
	r.enumOrder = append(r.enumOrder, e)
	r.generation++
	return nil
}

func (r *Registry) enum(t reflect.Type) (enumEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[t]
	return e, ok
}

func (r *Registry) enumEntries() []enumEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]enumEntry, len(r.enumOrder))
	copy(out, r.enumOrder)
	return out
}
