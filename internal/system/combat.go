package system

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	"github.com/voxrpg/server/internal/core/event"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/scripting"
	"github.com/voxrpg/server/internal/world"
)

// MeleeSystem resolves each melee hitbox once: every living target in range
// and inside the swing angle takes damage and knockback.
type MeleeSystem struct {
	base
	world *world.State
}

func NewMeleeSystem(ws *world.State) *MeleeSystem {
	return &MeleeSystem{
		base:  base{name: "melee", origin: coresys.OriginCommon, phase: coresys.PhaseLogic},
		world: ws,
	}
}

func (s *MeleeSystem) Access() coresys.Access {
	ws := s.world
	return coresys.Read(ws.Pos, ws.Ori).
		Write(ws.Melee, ws.Health, ws.Vel).
		ReadRes(groupsKey, aoiKey)
}

func (s *MeleeSystem) Update(_ coresys.Tick) {
	ws := s.world
	ws.Melee.Each(func(attacker ecs.EntityID, m *component.Melee) {
		if m.Applied {
			return
		}
		m.Applied = true
		pos, ok1 := ws.Pos.Get(attacker)
		ori, ok2 := ws.Ori.Get(attacker)
		if !ok1 || !ok2 {
			return
		}
		hits := 0
		for _, target := range ws.Nearby(pos.Vec3, m.Range) {
			if target == attacker || ws.Groups.SameGroup(attacker, target) {
				continue
			}
			tp, ok := ws.Pos.Get(target)
			if !ok || !inSwing(pos.Vec3, ori.Look, tp.Vec3, m.MaxAngle) {
				continue
			}
			if h, ok := ws.Health.Get(target); !ok || h.IsDead() {
				continue
			}
			h, _ := ws.Health.GetMut(target)
			if h.ChangeBy(-int32(math.Round(m.Damage))) {
				event.Emit(ws.Bus, component.Destroy{Entity: target, Cause: "melee"})
			}
			if m.Knockback > 0 {
				if v, ok := ws.Vel.GetMut(target); ok {
					push := horizontal(tp.Sub(pos.Vec3))
					v.Vec3 = v.Add(push.Mul(m.Knockback)).Add(mgl64.Vec3{0, 0, m.Knockback * 0.5})
				}
			}
			m.Hit = append(m.Hit, target)
			hits++
		}
		if hits > 0 {
			event.Emit(ws.Bus, component.ComboChange{Entity: attacker, Change: int32(hits)})
		}
	})
}

// inSwing reports whether target lies within maxAngle degrees of the
// horizontal look direction as seen from attacker.
func inSwing(attacker, look, target mgl64.Vec3, maxAngle float64) bool {
	to := horizontal(target.Sub(attacker))
	dir := horizontal(look)
	if to.Len() == 0 || dir.Len() == 0 {
		return true
	}
	cos := math.Max(-1, math.Min(1, to.Dot(dir)))
	return mgl64.RadToDeg(math.Acos(cos)) <= maxAngle
}

func horizontal(v mgl64.Vec3) mgl64.Vec3 {
	h := mgl64.Vec3{v.X(), v.Y(), 0}
	if h.Len() < 1e-9 {
		return mgl64.Vec3{}
	}
	return h.Normalize()
}

// AuraSystem ticks every active aura: targets inside the radius that match
// the aura's group filter receive its buff, and expired auras are removed.
type AuraSystem struct {
	base
	world    *world.State
	formulas Formulas
}

func NewAuraSystem(ws *world.State, f Formulas) *AuraSystem {
	if f == nil {
		f = goFormulas{}
	}
	return &AuraSystem{
		base:     base{name: "auras", origin: coresys.OriginCommon, phase: coresys.PhaseLogic},
		world:    ws,
		formulas: f,
	}
}

func (s *AuraSystem) Access() coresys.Access {
	ws := s.world
	return coresys.Read(ws.Pos).
		Write(ws.Auras, ws.Health).
		ReadRes(groupsKey, aoiKey)
}

func (s *AuraSystem) Update(t coresys.Tick) {
	ws := s.world
	ws.Auras.Each(func(owner ecs.EntityID, auras *component.Auras) {
		pos, ok := ws.Pos.Get(owner)
		for key, a := range auras.Items {
			before := a.Duration - a.Remaining
			a.Remaining -= t.Dt
			// buffs land once per elapsed second
			if ok && (before+t.Dt)/time.Second > before/time.Second {
				s.apply(owner, pos.Vec3, a)
			}
			if a.Remaining <= 0 {
				delete(auras.Items, key)
			}
		}
	})
}

func (s *AuraSystem) apply(owner ecs.EntityID, center mgl64.Vec3, a *component.Aura) {
	ws := s.world
	name, _ := a.Buff.Kind.MarshalText()
	for _, target := range ws.Nearby(center, a.Radius) {
		grouped := target == owner || ws.Groups.SameGroup(owner, target)
		if grouped != (a.Target == component.TargetInGroup) {
			continue
		}
		if h, ok := ws.Health.Get(target); !ok || h.IsDead() {
			continue
		}
		amount := s.formulas.CalcBuffTick(scripting.BuffTickContext{
			Buff:     string(name),
			Strength: a.Buff.Strength,
			Dt:       1,
		})
		if amount == 0 {
			continue
		}
		h, _ := ws.Health.GetMut(target)
		if h.ChangeBy(amount) {
			event.Emit(ws.Bus, component.Destroy{Entity: target, Cause: string(name)})
		}
	}
}
