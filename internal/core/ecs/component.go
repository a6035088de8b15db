package ecs

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
)

// ErrDeadEntity is returned when inserting a component for an entity that is
// not alive (never created, or already destroyed).
var ErrDeadEntity = errors.New("ecs: entity is not alive")

// Key identifies a component type or resource type in access declarations.
type Key = reflect.Type

// KeyOf returns the Key for T.
func KeyOf[T any]() Key {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Keyed is implemented by every storage so systems can declare access with
// the storage value itself.
type Keyed interface {
	Key() Key
}

// Keys collects the keys of the given storages.
func Keys(ks ...Keyed) []Key {
	out := make([]Key, 0, len(ks))
	for _, k := range ks {
		out = append(out, k.Key())
	}
	return out
}

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Keyed
	RemoveEntity(id EntityID)
}

// View is a joinable read view over a storage.
type View[T any] interface {
	Keyed
	Len() int
	Has(id EntityID) bool
	Lookup(id EntityID) (*T, bool)
	eachID(fn func(EntityID) bool)
	borrow()
	release()
}

// Store is a dense-indexed sparse map: sparse maps an entity index to a slot
// in the dense arrays. Values are held by pointer so references stay valid
// across inserts of other entities.
type Store[T any] struct {
	pool     *EntityPool
	key      Key
	sparse   []int32 // entity index -> dense slot + 1, 0 = absent
	dense    []*T
	entities []EntityID
	borrows  atomic.Int32
}

// NewStore creates a store for T and registers it with the world so the
// entity's value is dropped when the entity is destroyed.
func NewStore[T any](w *World) *Store[T] {
	s := newStore[T](w.pool)
	w.registry.Register(s)
	return s
}

func newStore[T any](pool *EntityPool) *Store[T] {
	return &Store[T]{
		pool:     pool,
		key:      KeyOf[T](),
		sparse:   make([]int32, 0, 256),
		dense:    make([]*T, 0, 64),
		entities: make([]EntityID, 0, 64),
	}
}

func (s *Store[T]) Key() Key { return s.key }

func (s *Store[T]) slot(id EntityID) (int, bool) {
	idx := int(id.Index())
	if idx >= len(s.sparse) {
		return 0, false
	}
	pos := int(s.sparse[idx]) - 1
	if pos < 0 || s.entities[pos] != id {
		return 0, false
	}
	return pos, true
}

// Insert places v for id. When id already had a value it is overwritten in
// place and the previous value is returned.
func (s *Store[T]) Insert(id EntityID, v T) (*T, error) {
	if !s.pool.Alive(id) {
		return nil, ErrDeadEntity
	}
	if pos, ok := s.slot(id); ok {
		old := *s.dense[pos]
		*s.dense[pos] = v
		return &old, nil
	}
	s.mustNotBorrow("insert")
	idx := int(id.Index())
	if idx < len(s.sparse) && s.sparse[idx] != 0 {
		// a value left behind by an older generation of this index
		s.Remove(s.entities[s.sparse[idx]-1])
	}
	for idx >= len(s.sparse) {
		s.sparse = append(s.sparse, 0)
	}
	val := v
	s.dense = append(s.dense, &val)
	s.entities = append(s.entities, id)
	s.sparse[idx] = int32(len(s.dense))
	return nil, nil
}

// Get returns the value for id. Stale or absent ids report false.
func (s *Store[T]) Get(id EntityID) (*T, bool) {
	pos, ok := s.slot(id)
	if !ok {
		return nil, false
	}
	return s.dense[pos], true
}

// GetMut is Get for plain stores; flagged stores override it to record the write.
func (s *Store[T]) GetMut(id EntityID) (*T, bool) {
	return s.Get(id)
}

func (s *Store[T]) Lookup(id EntityID) (*T, bool) { return s.Get(id) }

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.slot(id)
	return ok
}

// Remove deletes id's value and returns it.
func (s *Store[T]) Remove(id EntityID) (T, bool) {
	var zero T
	pos, ok := s.slot(id)
	if !ok {
		return zero, false
	}
	s.mustNotBorrow("remove")
	v := *s.dense[pos]
	last := len(s.dense) - 1
	if pos != last {
		s.dense[pos] = s.dense[last]
		s.entities[pos] = s.entities[last]
		s.sparse[s.entities[pos].Index()] = int32(pos + 1)
	}
	s.dense[last] = nil
	s.dense = s.dense[:last]
	s.entities = s.entities[:last]
	s.sparse[id.Index()] = 0
	return v, true
}

func (s *Store[T]) RemoveEntity(id EntityID) { s.Remove(id) }

func (s *Store[T]) Len() int { return len(s.dense) }

// Each visits every value in dense order. The store must not gain or lose
// entities while Each runs.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	s.borrow()
	defer s.release()
	for i, v := range s.dense {
		fn(s.entities[i], v)
	}
}

// Range is Each with early exit.
func (s *Store[T]) Range(fn func(EntityID, *T) bool) {
	s.borrow()
	defer s.release()
	for i, v := range s.dense {
		if !fn(s.entities[i], v) {
			return
		}
	}
}

func (s *Store[T]) eachID(fn func(EntityID) bool) {
	for _, id := range s.entities {
		if !fn(id) {
			return
		}
	}
}

// Entities returns a copy of the ids holding a value.
func (s *Store[T]) Entities() []EntityID {
	out := make([]EntityID, len(s.entities))
	copy(out, s.entities)
	return out
}

func (s *Store[T]) borrow()  { s.borrows.Add(1) }
func (s *Store[T]) release() { s.borrows.Add(-1) }

func (s *Store[T]) mustNotBorrow(op string) {
	if s.borrows.Load() > 0 {
		panic(fmt.Sprintf("ecs: %s on %s while it is being iterated", op, s.key))
	}
}
