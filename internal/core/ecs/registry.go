package ecs

// Registry tracks all component stores and supports bulk cleanup on entity destroy.
type Registry struct {
	stores []Removable
	byKey  map[Key]Removable
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Removable, 0, 32),
		byKey:  make(map[Key]Removable, 32),
	}
}

// Register adds a component store to the registry. Two stores for the same
// component type would make access declarations ambiguous, so that panics.
func (r *Registry) Register(store Removable) {
	if _, dup := r.byKey[store.Key()]; dup {
		panic("ecs: duplicate store for " + store.Key().String())
	}
	r.stores = append(r.stores, store)
	r.byKey[store.Key()] = store
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.RemoveEntity(id)
	}
}

// Drainables returns the registered flagged stores in registration order.
func (r *Registry) Drainables() []Drainable {
	var out []Drainable
	for _, s := range r.stores {
		if d, ok := s.(Drainable); ok {
			out = append(out, d)
		}
	}
	return out
}

func (r *Registry) Len() int { return len(r.stores) }
