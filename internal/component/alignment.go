package component

import "github.com/voxrpg/server/internal/core/ecs"

// AlignmentKind is the faction of an entity.
type AlignmentKind uint8

const (
	AlignWild AlignmentKind = iota
	AlignEnemy
	AlignNpc
	AlignOwned
)

// Alignment decides who an entity fights. Owner is set for AlignOwned.
type Alignment struct {
	Kind  AlignmentKind
	Owner Uid
}

func Owned(owner Uid) Alignment { return Alignment{Kind: AlignOwned, Owner: owner} }

// OwnedBy reports whether a is owned by uid.
func (a Alignment) OwnedBy(uid Uid) bool {
	return a.Kind == AlignOwned && a.Owner == uid
}

// Anchor keeps an entity loaded while the anchoring entity exists.
type Anchor struct {
	Entity ecs.EntityID
}

// Pet is the persisted record of a tamed creature.
type Pet struct {
	DBID    int64  `json:"id,omitempty"`
	Name    string `json:"name"`
	Species string `json:"species"`
}

// Agent is the AI state of a non-player entity.
type Agent struct {
	Target   ecs.EntityID
	Idle     float64 // seconds without a target
	Tameable bool
}
