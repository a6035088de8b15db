package ecs

import "fmt"

// ChangeKind classifies a flagged storage event.
type ChangeKind uint8

const (
	Inserted ChangeKind = iota + 1
	Modified
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Change is one recorded storage event.
type Change struct {
	Entity EntityID
	Kind   ChangeKind
}

// Drainable is implemented by flagged stores so the replication system can
// consume their change logs without knowing the component type.
type Drainable interface {
	Keyed
	Drain(tick uint64) []Change
}

// FlaggedStore is a Store that records inserts, modifications and removals
// for replication. Writes must go through Insert, Remove, GetMut or Mut();
// pointers from Get, Each and plain joins are for reading.
type FlaggedStore[T any] struct {
	*Store[T]
	events    []Change
	lastDrain uint64
}

func NewFlaggedStore[T any](w *World) *FlaggedStore[T] {
	s := &FlaggedStore[T]{
		Store:  newStore[T](w.pool),
		events: make([]Change, 0, 128),
	}
	w.registry.Register(s)
	return s
}

func (s *FlaggedStore[T]) flag(id EntityID, kind ChangeKind) {
	s.events = append(s.events, Change{Entity: id, Kind: kind})
}

// Insert records Inserted for a new value and Modified for a replacement.
func (s *FlaggedStore[T]) Insert(id EntityID, v T) (*T, error) {
	prev, err := s.Store.Insert(id, v)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		s.flag(id, Modified)
	} else {
		s.flag(id, Inserted)
	}
	return prev, nil
}

func (s *FlaggedStore[T]) GetMut(id EntityID) (*T, bool) {
	v, ok := s.Store.Get(id)
	if ok {
		s.flag(id, Modified)
	}
	return v, ok
}

func (s *FlaggedStore[T]) Remove(id EntityID) (T, bool) {
	v, ok := s.Store.Remove(id)
	if ok {
		s.flag(id, Removed)
	}
	return v, ok
}

func (s *FlaggedStore[T]) RemoveEntity(id EntityID) { s.Remove(id) }

// Drain returns the events recorded since the previous drain, in order, and
// clears the log. It may run at most once per tick.
func (s *FlaggedStore[T]) Drain(tick uint64) []Change {
	if tick != 0 && tick == s.lastDrain {
		panic(fmt.Sprintf("ecs: %s drained twice in tick %d", s.key, tick))
	}
	s.lastDrain = tick
	out := make([]Change, len(s.events))
	copy(out, s.events)
	s.events = s.events[:0]
	return out
}

// Pending returns the number of undrained events.
func (s *FlaggedStore[T]) Pending() int { return len(s.events) }

// Mut returns a join view that flags every visited value as Modified.
func (s *FlaggedStore[T]) Mut() View[T] { return mutView[T]{s} }

type mutView[T any] struct {
	s *FlaggedStore[T]
}

func (v mutView[T]) Key() Key { return v.s.key }
func (v mutView[T]) Len() int { return v.s.Len() }
func (v mutView[T]) borrow()  { v.s.borrow() }
func (v mutView[T]) release() { v.s.release() }

func (v mutView[T]) Has(id EntityID) bool { return v.s.Has(id) }

func (v mutView[T]) Lookup(id EntityID) (*T, bool) { return v.s.GetMut(id) }

func (v mutView[T]) eachID(fn func(EntityID) bool) { v.s.eachID(fn) }
