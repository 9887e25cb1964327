// Package metadata is the runtime half of tref: a registry of reflected
// struct types and enums that opt in through //tref: directives.
//
// # Overview
//
// The tref generator scans a package and writes tref_gen.go, whose init()
// replays every annotated declaration against this package. After init the
// registry answers questions the Go reflect package cannot: which fields,
// methods and member types a type chose to expose and in what order, which
// type it treats as its base, which types registered themselves as its
// subclasses, and which names the values of an enum carry.
//
// # Facts
//
// Each reflected type owns three independent ordered lists, one per
// Category: fields (data fields, methods and statics), member types and
// subclasses. A list is an Accumulator. Entries are numbered from 0 in
// registration order, which the generator keeps equal to source order.
//
// # Example Usage
//
// Annotated source:
//
//	//tref:type
//	type Data[T any] struct {
//		Base
//
//		//tref:field
//		t T
//		//tref:field meta=Range{Min: 0, Max: 10}
//		x, y int
//	}
//
//	//tref:subtype
//	type Child struct {
//		Data[int]
//
//		//tref:field
//		z int
//	}
//
// Walking the fields of Child and its bases:
//
//	metadata.EachField[Child](func(f *metadata.Fact, level int) bool {
//		fmt.Println(level, f.Name)
//		return true
//	})
//	// 0 z
//	// 1 t
//	// 1 x
//	// 1 y
//
// Enums:
//
//	//tref:enum
//	type Fruit int
//
//	const (
//		Ass Fruit = 1
//		Ban       = Ass * 3
//	)
//
//	metadata.NameOf(Fruit(3))          // "Ban"
//	metadata.ValueOf("Ass", Fruit(0))  // 1
//
// # Manual registration
//
// Generated code only uses the exported API, so types can be registered by
// hand as well:
//
//	b := metadata.Define[Child](
//		metadata.Base(func(c *Child) *Data[int] { return &c.Data }),
//		metadata.Subtype(),
//	)
//	metadata.Field(b, "z", func(c *Child) *int { return &c.z }, nil)
//	if err := b.Err(); err != nil {
//		panic(err)
//	}
//
// # Concurrency
//
// Registration is serialized by the registry. Metadata values are never
// modified after they are published, so concurrent readers need no locking.
package metadata
