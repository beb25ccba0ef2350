// Package history keeps the most recent samples in a fixed-size ring.
package history

import "iter"

// Capacity is the number of entries a Ring holds. At the sensor's 30 Hz
// ranging rate this covers two seconds.
const Capacity = 60

// Ring is a fixed-capacity ring buffer. Once full, Push overwrites the oldest
// entry. The zero value is an empty ring ready to use.
type Ring[T any] struct {
	data [Capacity]T
	pos  int
	full bool
}

// Push appends v, dropping the oldest entry when the ring is full.
func (r *Ring[T]) Push(v T) {
	r.data[r.pos] = v
	r.pos++
	if r.pos >= Capacity {
		r.pos = 0
		r.full = true
	}
}

// Len returns the number of entries in the ring.
func (r *Ring[T]) Len() int {
	if r.full {
		return Capacity
	}
	return r.pos
}

// Cap returns the ring capacity.
func (r *Ring[T]) Cap() int {
	return Capacity
}

// At returns the entry offset steps back from the newest one; offset 0 is
// the newest. ok is false when offset is out of range.
func (r *Ring[T]) At(offset int) (v T, ok bool) {
	if offset < 0 || offset >= r.Len() {
		return v, false
	}
	i := r.pos - 1 - offset
	if i < 0 {
		i += Capacity
	}
	return r.data[i], true
}

// Newest returns the most recently pushed entry.
func (r *Ring[T]) Newest() (T, bool) {
	return r.At(0)
}

// Oldest returns the oldest entry still held.
func (r *Ring[T]) Oldest() (T, bool) {
	return r.At(r.Len() - 1)
}

// All yields the entries from oldest to newest.
func (r *Ring[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for off := r.Len() - 1; off >= 0; off-- {
			v, _ := r.At(off)
			if !yield(v) {
				return
			}
		}
	}
}

// Backward yields the entries from newest to oldest together with their
// offset.
func (r *Ring[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		n := r.Len()
		for off := 0; off < n; off++ {
			v, _ := r.At(off)
			if !yield(off, v) {
				return
			}
		}
	}
}

// Slice returns a copy of the contents in insertion order.
func (r *Ring[T]) Slice() []T {
	out := make([]T, 0, r.Len())
	if r.full {
		out = append(out, r.data[r.pos:]...)
	}
	return append(out, r.data[:r.pos]...)
}

// Clear empties the ring. Old entries are zeroed so nothing stale can be
// observed through the backing array.
func (r *Ring[T]) Clear() {
	clear(r.data[:])
	r.pos = 0
	r.full = false
}
