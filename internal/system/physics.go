package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxrpg/server/internal/charstate"
	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/world"
)

const (
	groundFriction = 6.0 // per second, horizontal
	liquidDrag     = 2.0
	buoyancy       = charstate.Gravity * 1.1
	floorHeight    = 0.0
)

// PhysicsSystem integrates velocity and position over a flat floor with a
// sea level, recomputes contact state, and keeps the AOI grid current.
type PhysicsSystem struct {
	base
	world *world.State
}

func NewPhysicsSystem(ws *world.State) *PhysicsSystem {
	return &PhysicsSystem{
		base:  base{name: "physics", origin: coresys.OriginCommon, phase: coresys.PhaseLogic},
		world: ws,
	}
}

func (s *PhysicsSystem) Access() coresys.Access {
	ws := s.world
	return coresys.Read(ws.Sticky).
		Write(ws.Pos, ws.Vel, ws.Physics).
		WriteRes(aoiKey)
}

func (s *PhysicsSystem) Update(t coresys.Tick) {
	ws := s.world
	dt := t.Dt.Seconds()
	if dt <= 0 {
		return
	}
	ecs.Join3[component.PhysicsState, component.Pos, component.Vel](ws.Physics, ws.Pos, ws.Vel,
		func(e ecs.EntityID, ph *component.PhysicsState, pos *component.Pos, vel *component.Vel) {
			if ws.Sticky.Has(e) {
				return
			}
			p, v := step(ph, pos.Vec3, vel.Vec3, ws.Opts.SeaLevel, dt)
			if v != vel.Vec3 {
				if w, ok := ws.Vel.GetMut(e); ok {
					w.Vec3 = v
				}
			}
			if p != pos.Vec3 {
				if w, ok := ws.Pos.GetMut(e); ok {
					w.Vec3 = p
				}
				ws.AOI.Update(e, p)
			}
		})
}

// step advances one body by dt seconds and fills ph with the new contacts.
func step(ph *component.PhysicsState, p, v mgl64.Vec3, seaLevel, dt float64) (mgl64.Vec3, mgl64.Vec3) {
	wasOnGround := ph.OnGround
	ph.Reset()

	if depth := seaLevel - p.Z(); depth > 0 {
		ph.InLiquid = &depth
		v[2] += (buoyancy*math.Min(depth, 1) - charstate.Gravity) * dt
		damp := math.Max(0, 1-liquidDrag*dt)
		v = v.Mul(damp)
	} else if !(wasOnGround && p.Z() <= floorHeight && v.Z() <= 0) {
		v[2] -= charstate.Gravity * dt
	}

	p = p.Add(v.Mul(dt))
	if p.Z() <= floorHeight {
		p[2] = floorHeight
		if v.Z() < 0 {
			v[2] = 0
		}
		ph.OnGround = true
		f := math.Max(0, 1-groundFriction*dt)
		v[0] *= f
		v[1] *= f
		if math.Abs(v[0]) < 1e-3 {
			v[0] = 0
		}
		if math.Abs(v[1]) < 1e-3 {
			v[1] = 0
		}
	}
	return p, v
}
