package metadata

// Accumulator is an append-only list of facts addressed by slot.
// Slot 0 is the empty state and is never occupied; the n-th pushed fact
// lives in slot n. The zero value is ready to use.
//
// Accumulator does no locking of its own. Registry serializes every Push so
// that reading the count and claiming the next slot happen in one step.
type Accumulator[F any] struct {
	slots []F
}

// Occupied reports whether slot holds a fact.
func (a *Accumulator[F]) Occupied(slot int) bool {
	return slot >= 1 && slot <= len(a.slots)
}

// Count returns the number of occupied slots. It only consults Occupied, so
// the result is derived the same way regardless of how slots are stored.
func (a *Accumulator[F]) Count() int {
	return SearchCount(a.Occupied)
}

// Push stores f in the first free slot and returns that slot.
func (a *Accumulator[F]) Push(f F) int {
	slot := a.Count() + 1
	a.slots = append(a.slots, f)
	return slot
}

// At returns the fact in slot.
func (a *Accumulator[F]) At(slot int) (F, bool) {
	if !a.Occupied(slot) {
		var zero F
		return zero, false
	}
	return a.slots[slot-1], true
}

// Items returns a copy of the facts in slot order.
func (a *Accumulator[F]) Items() []F {
	out := make([]F, len(a.slots))
	copy(out, a.slots)
	return out
}

// Each visits facts in slot order until fn returns false.
// It returns false if the walk was stopped.
func (a *Accumulator[F]) Each(fn func(slot int, f F) bool) bool {
	n := a.Count()
	for slot := 1; slot <= n; slot++ {
		f, _ := a.At(slot)
		if !fn(slot, f) {
			return false
		}
	}
	return true
}

// SearchCount finds the highest occupied slot given only a predicate.
// Occupied slots must form a prefix 1..n. The probe doubles until it finds a
// free slot, then bisects between the last occupied power of two and it.
func SearchCount(occupied func(slot int) bool) int {
	if !occupied(1) {
		return 0
	}

	hi := 2
	for occupied(hi) {
		hi *= 2
	}
	lo := hi / 2

	// invariant: lo occupied, hi free
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if occupied(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
