package system

import (
	"slices"

	"github.com/voxrpg/server/internal/core/ecs"
)

// Access describes which storages and resources a system reads or writes.
// An Exclusive system conflicts with every other system and therefore runs
// alone with full world access.
type Access struct {
	Reads     []ecs.Key
	Writes    []ecs.Key
	Exclusive bool
}

// Read returns an Access reading the given storages.
func Read(ks ...ecs.Keyed) Access {
	return Access{Reads: ecs.Keys(ks...)}
}

// Write adds written storages to a.
func (a Access) Write(ks ...ecs.Keyed) Access {
	a.Writes = append(slices.Clip(a.Writes), ecs.Keys(ks...)...)
	return a
}

// ReadRes adds read resource types to a.
func (a Access) ReadRes(ks ...ecs.Key) Access {
	a.Reads = append(slices.Clip(a.Reads), ks...)
	return a
}

// WriteRes adds written resource types to a.
func (a Access) WriteRes(ks ...ecs.Key) Access {
	a.Writes = append(slices.Clip(a.Writes), ks...)
	return a
}

// Exclusive is the access of a system that needs the whole world.
func Exclusive() Access {
	return Access{Exclusive: true}
}

// Conflicts reports whether a and other may not run concurrently: one of
// them writes something the other reads or writes.
func (a Access) Conflicts(other Access) bool {
	if a.Exclusive || other.Exclusive {
		return true
	}
	for _, w := range a.Writes {
		if slices.Contains(other.Writes, w) || slices.Contains(other.Reads, w) {
			return true
		}
	}
	for _, r := range a.Reads {
		if slices.Contains(other.Writes, r) {
			return true
		}
	}
	return false
}
