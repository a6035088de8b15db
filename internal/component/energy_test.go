package component

import (
	"errors"
	"testing"
	"time"
)

func energyAt(current, maximum uint32) Energy {
	e := NewEnergy(maximum)
	e.SetTo(current, EnergyUnknown, time.Time{})
	return e
}

func TestEnergy_ChangeBySaturates(t *testing.T) {
	e := energyAt(50, 100)
	e.ChangeBy(EnergyChange{Amount: 200, Source: EnergyRegen})
	if e.Current() != 100 {
		t.Fatalf("current = %d, want 100", e.Current())
	}
	if e.LastChange.Amount != 200 || e.LastChange.Source != EnergyRegen {
		t.Fatalf("last change = %+v", e.LastChange)
	}
	e.ChangeBy(EnergyChange{Amount: -500, Source: EnergyAbility})
	if e.Current() != 0 {
		t.Fatalf("current = %d, want 0", e.Current())
	}
	if e.LastChange.Amount != -500 || e.LastChange.Source != EnergyAbility {
		t.Fatalf("last change = %+v", e.LastChange)
	}
}

func TestEnergy_TryChangeByBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		current uint32
		amount  int32
		want    uint32
		err     error
	}{
		{"reach maximum", 60, 40, 100, nil},
		{"one over maximum", 60, 41, 60, ErrEnergyOverflow},
		{"minus one at zero", 0, -1, 0, ErrEnergyUnderflow},
		{"minus one at one", 1, -1, 0, nil},
		{"exactly to zero", 30, -30, 0, nil},
		{"below zero", 30, -31, 30, ErrEnergyUnderflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := energyAt(tt.current, 100)
			before := e.LastChange
			err := e.TryChangeBy(tt.amount, EnergyAbility, time.Unix(5, 0))
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if e.Current() != tt.want {
				t.Fatalf("current = %d, want %d", e.Current(), tt.want)
			}
			if err != nil && e.LastChange != before {
				t.Fatal("failed change touched last change")
			}
		})
	}
}

func TestEnergy_SetToIdempotent(t *testing.T) {
	e := NewEnergy(100)
	now := time.Unix(10, 0)
	e.SetTo(40, EnergyRevive, now)
	first := e
	e.SetTo(40, EnergyRevive, now.Add(time.Second))
	if e != first {
		t.Fatalf("second SetTo changed state: %+v vs %+v", e, first)
	}
	e.SetTo(500, EnergyLevelUp, now)
	if e.Current() != 100 {
		t.Fatalf("SetTo above maximum: current = %d", e.Current())
	}
}

func TestEnergy_ChangeByZero(t *testing.T) {
	e := energyAt(70, 100)
	e.ChangeBy(EnergyChange{Amount: 0, Source: EnergyClimb})
	if e.Current() != 70 || e.LastChange.Source != EnergyClimb {
		t.Fatalf("state = %+v", e)
	}
}

func TestEnergy_SetMaximumClampsCurrent(t *testing.T) {
	e := NewEnergy(100)
	e.SetMaximum(80)
	if e.Current() != 80 || e.Maximum() != 80 {
		t.Fatalf("energy = %d/%d", e.Current(), e.Maximum())
	}
}

func TestHealth_ChangeByReportsDeath(t *testing.T) {
	h := NewHealth(10)
	if h.ChangeBy(-4) {
		t.Fatal("died early")
	}
	if !h.ChangeBy(-100) || h.Current != 0 {
		t.Fatalf("health = %+v", h)
	}
	if h.ChangeBy(-1) {
		t.Fatal("died twice")
	}
}
