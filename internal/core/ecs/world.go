package ecs

import "sync"

// World is the top-level ECS container. It owns the entity pool, the component
// registry, the resources, and the deferred command and destruction queues
// flushed by Maintain at each tick boundary.
type World struct {
	pool      *EntityPool
	registry  *Registry
	resources *Resources

	mu           sync.Mutex // guards commands and destroyQueue; systems in one layer may queue concurrently
	commands     []func(*World)
	destroyQueue []EntityID
	onDestroy    []func(EntityID)
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		resources:    newResources(),
		commands:     make([]func(*World), 0, 64),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

// CreateEntity allocates an entity immediately. Only call it between ticks or
// from an exclusive system; other systems use Spawn.
func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// OnDestroy registers a hook run for each destroyed entity before its
// components are dropped.
func (w *World) OnDestroy(fn func(EntityID)) {
	w.onDestroy = append(w.onDestroy, fn)
}

// Spawn queues creation of an entity; init runs at the tick boundary with
// the new id so it can insert components.
func (w *World) Spawn(init func(*World, EntityID)) {
	w.Exec(func(w *World) {
		id := w.pool.Create()
		init(w, id)
	})
}

// Exec queues an arbitrary world mutation for the tick boundary.
func (w *World) Exec(fn func(*World)) {
	w.mu.Lock()
	w.commands = append(w.commands, fn)
	w.mu.Unlock()
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.mu.Lock()
	w.destroyQueue = append(w.destroyQueue, id)
	w.mu.Unlock()
}

// Maintain runs queued commands in push order, then destroys all queued
// entities and clears their components. Called by the dispatcher between
// the last logic layer and replication.
func (w *World) Maintain() {
	for {
		w.mu.Lock()
		cmds := w.commands
		w.commands = make([]func(*World), 0, cap(cmds))
		w.mu.Unlock()
		if len(cmds) == 0 {
			break
		}
		for _, fn := range cmds {
			fn(w)
		}
	}
	w.FlushDestroyQueue()
}

// FlushDestroyQueue destroys all queued entities and clears their components.
func (w *World) FlushDestroyQueue() {
	w.mu.Lock()
	queue := w.destroyQueue
	w.destroyQueue = make([]EntityID, 0, cap(queue))
	w.mu.Unlock()

	for _, id := range queue {
		if !w.pool.Alive(id) {
			continue // queued twice, or already gone
		}
		for _, fn := range w.onDestroy {
			fn(id)
		}
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
	}
}
