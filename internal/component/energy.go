package component

import (
	"errors"
	"time"
)

var (
	ErrEnergyUnderflow = errors.New("energy: underflow")
	ErrEnergyOverflow  = errors.New("energy: overflow")
)

// EnergySource tags the cause of an energy change.
type EnergySource uint8

const (
	EnergyUnknown EnergySource = iota
	EnergyAbility
	EnergyClimb
	EnergyLevelUp
	EnergyHitEnemy
	EnergyRegen
	EnergyRevive
)

func (s EnergySource) String() string {
	switch s {
	case EnergyAbility:
		return "ability"
	case EnergyClimb:
		return "climb"
	case EnergyLevelUp:
		return "level_up"
	case EnergyHitEnemy:
		return "hit_enemy"
	case EnergyRegen:
		return "regen"
	case EnergyRevive:
		return "revive"
	}
	return "unknown"
}

// EnergyChange is a signed change request and the record of the last one.
type EnergyChange struct {
	Amount int32
	Source EnergySource
	Time   time.Time
}

// Energy is the stamina pool spent by abilities. Current never exceeds
// Maximum; all writes go through the methods below.
type Energy struct {
	current    uint32
	maximum    uint32
	RegenRate  float32 // energy per second, accumulated by the energy system
	LastChange EnergyChange
}

func NewEnergy(maximum uint32) Energy {
	return Energy{current: maximum, maximum: maximum}
}

func (e *Energy) Current() uint32 { return e.current }
func (e *Energy) Maximum() uint32 { return e.maximum }

// Fraction returns current/maximum, 0 for an empty pool.
func (e *Energy) Fraction() float64 {
	if e.maximum == 0 {
		return 0
	}
	return float64(e.current) / float64(e.maximum)
}

// SetTo sets the current value, clamped to the maximum. Setting the value it
// already has leaves the component untouched.
func (e *Energy) SetTo(amount uint32, source EnergySource, now time.Time) {
	amount = min(amount, e.maximum)
	if amount == e.current {
		return
	}
	e.LastChange = EnergyChange{Amount: int32(int64(amount) - int64(e.current)), Source: source, Time: now}
	e.current = amount
}

// ChangeBy applies a saturating change: the result is clamped to
// [0, maximum]. LastChange records the requested amount.
func (e *Energy) ChangeBy(c EnergyChange) {
	v := int64(e.current) + int64(c.Amount)
	e.current = uint32(max(0, min(v, int64(e.maximum))))
	e.LastChange = c
}

// TryChangeBy applies amount only when the result stays inside
// [0, maximum]; otherwise it returns ErrEnergyUnderflow or ErrEnergyOverflow
// and changes nothing.
func (e *Energy) TryChangeBy(amount int32, source EnergySource, now time.Time) error {
	v := int64(e.current) + int64(amount)
	switch {
	case v < 0:
		return ErrEnergyUnderflow
	case v > int64(e.maximum):
		return ErrEnergyOverflow
	}
	e.current = uint32(v)
	e.LastChange = EnergyChange{Amount: amount, Source: source, Time: now}
	return nil
}

// SetMaximum changes the maximum, lowering current if needed.
func (e *Energy) SetMaximum(maximum uint32) {
	e.maximum = maximum
	e.current = min(e.current, maximum)
}

// Health is the hit point pool.
type Health struct {
	Current uint32
	Maximum uint32
}

func NewHealth(maximum uint32) Health { return Health{Current: maximum, Maximum: maximum} }

// ChangeBy applies a saturating change and reports whether the entity died.
func (h *Health) ChangeBy(amount int32) (died bool) {
	wasAlive := h.Current > 0
	v := int64(h.Current) + int64(amount)
	h.Current = uint32(max(0, min(v, int64(h.Maximum))))
	return wasAlive && h.Current == 0
}

func (h *Health) IsDead() bool { return h.Current == 0 }
