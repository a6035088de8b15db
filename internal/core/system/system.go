package system

import (
	"time"

	"github.com/voxrpg/server/internal/core/ecs"
)

// Phase defines coarse execution ordering within a single tick. Every system
// of a phase completes before the next phase starts.
type Phase int

const (
	PhaseCreate Phase = iota // 0: drain client inboxes, spawn and despawn
	PhaseLogic               // 1: character behaviour, physics, combat, timers
	PhaseApply               // 2: apply server events, persistence
	PhaseSync                // 3: after Maintain: replication drains change logs
)

func (p Phase) String() string {
	switch p {
	case PhaseCreate:
		return "create"
	case PhaseLogic:
		return "logic"
	case PhaseApply:
		return "apply"
	case PhaseSync:
		return "sync"
	}
	return "unknown"
}

// Origin orders systems inside a phase: shared simulation code runs before
// server-only code.
type Origin int

const (
	OriginCommon Origin = iota
	OriginServer
)

// Tick is the per-tick context handed to every system. Now is sampled once
// at the start of the tick.
type Tick struct {
	Number uint64
	Now    time.Time
	Dt     time.Duration
}

// System is the interface every ECS system implements.
type System interface {
	Name() string
	Origin() Origin
	Phase() Phase
	Access() Access
	Update(t Tick)
}

// DeltaTime is the world resource holding the logical duration of the
// current tick in seconds.
type DeltaTime struct {
	Seconds float64
}

// Clock is the world resource holding the current tick number and instant.
type Clock struct {
	Tick uint64
	Now  time.Time
}

// Install inserts the resources owned by the dispatcher.
func Install(w *ecs.World) {
	ecs.InsertResource(w, &DeltaTime{})
	ecs.InsertResource(w, &Clock{})
}
