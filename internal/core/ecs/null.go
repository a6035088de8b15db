package ecs

// NullStore holds tag components: presence is the only payload.
type NullStore[T any] struct {
	set *Store[struct{}]
	key Key
}

func NewNullStore[T any](w *World) *NullStore[T] {
	s := &NullStore[T]{set: newStore[struct{}](w.pool), key: KeyOf[T]()}
	w.registry.Register(s)
	return s
}

func (s *NullStore[T]) Key() Key { return s.key }

// Insert tags id. Tagging twice is a no-op.
func (s *NullStore[T]) Insert(id EntityID) error {
	_, err := s.set.Insert(id, struct{}{})
	return err
}

func (s *NullStore[T]) Has(id EntityID) bool { return s.set.Has(id) }

// Remove untags id and reports whether it was tagged.
func (s *NullStore[T]) Remove(id EntityID) bool {
	_, ok := s.set.Remove(id)
	return ok
}

func (s *NullStore[T]) RemoveEntity(id EntityID) { s.set.Remove(id) }

func (s *NullStore[T]) Len() int { return s.set.Len() }

func (s *NullStore[T]) Each(fn func(EntityID)) {
	s.set.Each(func(id EntityID, _ *struct{}) { fn(id) })
}

func (s *NullStore[T]) Lookup(id EntityID) (*struct{}, bool) { return s.set.Get(id) }

func (s *NullStore[T]) Range(fn func(EntityID, *struct{}) bool) { s.set.Range(fn) }

func (s *NullStore[T]) eachID(fn func(EntityID) bool) { s.set.eachID(fn) }

func (s *NullStore[T]) borrow()  { s.set.borrow() }
func (s *NullStore[T]) release() { s.set.release() }
