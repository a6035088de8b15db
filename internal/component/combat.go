package component

import (
	"fmt"
	"time"

	"github.com/voxrpg/server/internal/core/ecs"
)

// Melee is a live melee hitbox created by a swing.
type Melee struct {
	Range     float64
	MaxAngle  float64 // degrees either side of the look direction
	Damage    float64
	Knockback float64
	Applied   bool
	Hit       []ecs.EntityID
}

// BuffKind is the effect an aura applies to its targets.
type BuffKind uint8

const (
	BuffRegeneration BuffKind = iota + 1
	BuffBurning
)

// Buff is applied every second to each entity inside an aura.
type Buff struct {
	Kind     BuffKind `yaml:"kind" json:"kind"`
	Strength float64  `yaml:"strength" json:"strength"`
}

// GroupTarget selects aura targets relative to the caster's group.
type GroupTarget uint8

const (
	TargetInGroup GroupTarget = iota
	TargetOutOfGroup
)

// Aura is an area effect centred on its owner.
type Aura struct {
	Radius    float64
	Duration  time.Duration
	Target    GroupTarget
	Buff      Buff
	Remaining time.Duration
}

// AuraKey identifies an aura inside Auras.
type AuraKey uint32

// Auras holds the active auras of an entity.
type Auras struct {
	Items map[AuraKey]*Aura
	next  AuraKey
}

// Insert adds a and returns its key.
func (a *Auras) Insert(aura Aura) AuraKey {
	if a.Items == nil {
		a.Items = make(map[AuraKey]*Aura)
	}
	a.next++
	aura.Remaining = aura.Duration
	a.Items[a.next] = &aura
	return a.next
}

func (a *Auras) Remove(k AuraKey) bool {
	if _, ok := a.Items[k]; !ok {
		return false
	}
	delete(a.Items, k)
	return true
}

func (a *Auras) Len() int { return len(a.Items) }

var buffNames = map[string]BuffKind{"regeneration": BuffRegeneration, "burning": BuffBurning}

func (k *BuffKind) UnmarshalText(b []byte) error {
	v, ok := buffNames[string(b)]
	if !ok {
		return fmt.Errorf("unknown buff %q", b)
	}
	*k = v
	return nil
}

func (k BuffKind) MarshalText() ([]byte, error) {
	for n, v := range buffNames {
		if v == k {
			return []byte(n), nil
		}
	}
	return nil, fmt.Errorf("unknown buff %d", k)
}

func (g *GroupTarget) UnmarshalText(b []byte) error {
	switch string(b) {
	case "in_group":
		*g = TargetInGroup
	case "out_of_group":
		*g = TargetOutOfGroup
	default:
		return fmt.Errorf("unknown group target %q", b)
	}
	return nil
}

func (g GroupTarget) MarshalText() ([]byte, error) {
	if g == TargetOutOfGroup {
		return []byte("out_of_group"), nil
	}
	return []byte("in_group"), nil
}
