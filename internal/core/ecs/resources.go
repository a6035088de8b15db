package ecs

import "fmt"

// Resources holds world singletons, one value per Go type.
type Resources struct {
	items map[Key]any
}

func newResources() *Resources {
	return &Resources{items: make(map[Key]any, 16)}
}

// InsertResource stores v as the singleton of type T, replacing any previous one.
func InsertResource[T any](w *World, v *T) {
	w.resources.items[KeyOf[T]()] = v
}

// Resource returns the singleton of type T. A missing resource is a wiring
// bug and panics.
func Resource[T any](w *World) *T {
	v, ok := TryResource[T](w)
	if !ok {
		panic(fmt.Sprintf("ecs: resource %s not inserted", KeyOf[T]()))
	}
	return v
}

func TryResource[T any](w *World) (*T, bool) {
	v, ok := w.resources.items[KeyOf[T]()]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// RemoveResource drops the singleton of type T.
func RemoveResource[T any](w *World) {
	delete(w.resources.items, KeyOf[T]())
}
