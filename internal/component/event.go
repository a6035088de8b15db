package component

import "github.com/voxrpg/server/internal/core/ecs"

// Server events are produced by systems during a tick and applied in push
// order by the event-apply system.

// ComboChange adds Change to the combo counter of Entity.
type ComboChange struct {
	Entity ecs.EntityID
	Change int32
}

// AuraChangeKind distinguishes aura creation and removal.
type AuraChangeKind uint8

const (
	AuraAdd AuraChangeKind = iota + 1
	AuraRemove
)

// AuraEvent adds an aura to Entity or removes one by key.
type AuraEvent struct {
	Entity ecs.EntityID
	Kind   AuraChangeKind
	Aura   Aura
	Key    AuraKey
}

// MeleeAttack places a melee hitbox on Entity.
type MeleeAttack struct {
	Entity ecs.EntityID
	Melee  Melee
}

// MeleeEnd removes the hitbox of Entity.
type MeleeEnd struct {
	Entity ecs.EntityID
}

// InventoryManipKind is the kind of bag or loadout change.
type InventoryManipKind uint8

const (
	InvSwap InventoryManipKind = iota + 1
	InvEquip
	InvUnequip
	InvSwapLoadout
)

// InventoryManip changes the inventory of Entity.
type InventoryManip struct {
	Entity ecs.EntityID
	Kind   InventoryManipKind
	A, B   int
	Slot   EquipSlot
}

// InitiateInvite asks Invitee to join the group of Inviter.
type InitiateInvite struct {
	Inviter ecs.EntityID
	Invitee Uid
}

// InviteResponse answers the open invitation of Invitee.
type InviteResponse struct {
	Invitee ecs.EntityID
	Accept  bool
}

// GroupManipKind is a group membership request.
type GroupManipKind uint8

const (
	GroupLeave GroupManipKind = iota + 1
	GroupKick
	GroupAssignLeader
)

// GroupManip changes the group of Entity; Target is used by kick and
// leader assignment.
type GroupManip struct {
	Entity ecs.EntityID
	Kind   GroupManipKind
	Target Uid
}

// TamePet makes Owner the owner of Pet.
type TamePet struct {
	Pet   ecs.EntityID
	Owner ecs.EntityID
}

// Destroy kills Entity. Characters respawn at their waypoint; everything
// else is deleted.
type Destroy struct {
	Entity ecs.EntityID
	Cause  string
}

// SetWaypoint stores the current position of Entity as its waypoint.
type SetWaypoint struct {
	Entity ecs.EntityID
}
