// Package charstate implements the character-state machine: the current
// action of every controlled entity, its per-tick behaviour and its
// reactions to discrete inputs.
package charstate

import (
	"fmt"
	"time"

	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
)

// Kind names a state variant.
type Kind uint8

const (
	KindIdle Kind = iota
	KindWielding
	KindSit
	KindDance
	KindSneak
	KindGlide
	KindGlideWield
	KindBoost
	KindRoll
	KindBasicAura
	KindComboMelee
	KindDashMelee
	KindChargedMelee
	KindLeapMelee
)

var kindNames = [...]string{
	KindIdle:         "idle",
	KindWielding:     "wielding",
	KindSit:          "sit",
	KindDance:        "dance",
	KindSneak:        "sneak",
	KindGlide:        "glide",
	KindGlideWield:   "glide_wield",
	KindBoost:        "boost",
	KindRoll:         "roll",
	KindBasicAura:    "basic_aura",
	KindComboMelee:   "combo_melee",
	KindDashMelee:    "dash_melee",
	KindChargedMelee: "charged_melee",
	KindLeapMelee:    "leap_melee",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	for i, n := range kindNames {
		if n == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown character state %q", b)
}

// StageSection is the phase of a timed action.
type StageSection uint8

const (
	Buildup StageSection = iota
	Swing
	Cast
	Recover
	Charge
	Movement
)

func (s StageSection) String() string {
	switch s {
	case Buildup:
		return "buildup"
	case Swing:
		return "swing"
	case Cast:
		return "cast"
	case Recover:
		return "recover"
	case Charge:
		return "charge"
	case Movement:
		return "movement"
	}
	return fmt.Sprintf("section(%d)", uint8(s))
}

// JoinData is the read-only view of one entity a state works on.
type JoinData struct {
	Entity    ecs.EntityID
	Uid       component.Uid
	State     State
	Pos       component.Pos
	Vel       component.Vel
	Ori       component.Ori
	Physics   *component.PhysicsState
	Inputs    component.Inputs
	Energy    component.Energy
	Inventory *component.Inventory
	Combo     uint32
	Abilities *AbilityTable
	Dt        float64 // seconds
	Now       time.Time
}

func (d *JoinData) dt() time.Duration {
	return time.Duration(d.Dt * float64(time.Second))
}

func (d *JoinData) hasGlider() bool {
	return d.Inventory != nil && d.Inventory.HasGlider()
}

func (d *JoinData) onGround() bool {
	return d.Physics != nil && d.Physics.OnGround
}

func (d *JoinData) submerged() float64 {
	if d.Physics == nil {
		return 0
	}
	return d.Physics.Submerged()
}

// StateUpdate is the patch a state produces for its entity.
type StateUpdate struct {
	Character   State
	Pos         component.Pos
	Vel         component.Vel
	Ori         component.Ori
	Energy      component.Energy
	SwapLoadout bool
}

// NewUpdate returns an update that leaves the entity unchanged.
func NewUpdate(d *JoinData) StateUpdate {
	return StateUpdate{
		Character: d.State,
		Pos:       d.Pos,
		Vel:       d.Vel,
		Ori:       d.Ori,
		Energy:    d.Energy,
	}
}

// OutputEvents collects server events in emission order.
type OutputEvents struct {
	events []any
}

func (o *OutputEvents) Emit(ev any) { o.events = append(o.events, ev) }

func (o *OutputEvents) Events() []any { return o.events }

func (o *OutputEvents) Len() int { return len(o.events) }

// Reset empties the buffer, keeping its allocation.
func (o *OutputEvents) Reset() {
	clear(o.events)
	o.events = o.events[:0]
}

// State is one variant of the character state. Behavior runs once per tick;
// the other methods react to queued control actions.
type State interface {
	Kind() Kind
	Behavior(d *JoinData, out *OutputEvents) StateUpdate

	Wield(d *JoinData, out *OutputEvents) StateUpdate
	Unwield(d *JoinData, out *OutputEvents) StateUpdate
	SwapLoadout(d *JoinData, out *OutputEvents) StateUpdate
	Sit(d *JoinData, out *OutputEvents) StateUpdate
	Stand(d *JoinData, out *OutputEvents) StateUpdate
	Dance(d *JoinData, out *OutputEvents) StateUpdate
	Sneak(d *JoinData, out *OutputEvents) StateUpdate
	GlideWield(d *JoinData, out *OutputEvents) StateUpdate
	ModifyLoadout(d *JoinData, out *OutputEvents, a component.ControlAction) StateUpdate
}

// HandleAction routes a queued control action to the matching handler.
func HandleAction(s State, d *JoinData, out *OutputEvents, a component.ControlAction) StateUpdate {
	switch a.Kind {
	case component.ActionWield:
		return s.Wield(d, out)
	case component.ActionUnwield:
		return s.Unwield(d, out)
	case component.ActionSwapLoadout:
		return s.SwapLoadout(d, out)
	case component.ActionSit:
		return s.Sit(d, out)
	case component.ActionStand:
		return s.Stand(d, out)
	case component.ActionDance:
		return s.Dance(d, out)
	case component.ActionSneak:
		return s.Sneak(d, out)
	case component.ActionGlideWield:
		return s.GlideWield(d, out)
	case component.ActionModifyLoadout:
		return s.ModifyLoadout(d, out, a)
	}
	return NewUpdate(d)
}

// noInput gives a state no-op reactions to every control action.
type noInput struct{}

func (noInput) Wield(d *JoinData, _ *OutputEvents) StateUpdate       { return NewUpdate(d) }
func (noInput) Unwield(d *JoinData, _ *OutputEvents) StateUpdate     { return NewUpdate(d) }
func (noInput) SwapLoadout(d *JoinData, _ *OutputEvents) StateUpdate { return NewUpdate(d) }
func (noInput) Sit(d *JoinData, _ *OutputEvents) StateUpdate         { return NewUpdate(d) }
func (noInput) Stand(d *JoinData, _ *OutputEvents) StateUpdate       { return NewUpdate(d) }
func (noInput) Dance(d *JoinData, _ *OutputEvents) StateUpdate       { return NewUpdate(d) }
func (noInput) Sneak(d *JoinData, _ *OutputEvents) StateUpdate       { return NewUpdate(d) }
func (noInput) GlideWield(d *JoinData, _ *OutputEvents) StateUpdate  { return NewUpdate(d) }
func (noInput) ModifyLoadout(d *JoinData, _ *OutputEvents, _ component.ControlAction) StateUpdate {
	return NewUpdate(d)
}
