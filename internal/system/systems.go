// Package system holds the game systems scheduled by the dispatcher each
// tick.
package system

import (
	"github.com/voxrpg/server/internal/core/ecs"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/persist"
	"github.com/voxrpg/server/internal/scripting"
	"github.com/voxrpg/server/internal/world"
)

// CharacterUpdater receives character batches for storage. It must not
// block the tick.
type CharacterUpdater interface {
	BatchUpdate(updates []persist.CharacterUpdate)
}

// Formulas are the tunable numbers computed by scripts.
type Formulas interface {
	CalcEnergyRegen(ctx scripting.EnergyRegenContext) int32
	CalcBuffTick(ctx scripting.BuffTickContext) int32
}

// goFormulas is used when no script engine is configured.
type goFormulas struct{}

func (goFormulas) CalcEnergyRegen(ctx scripting.EnergyRegenContext) int32 {
	return scripting.DefaultEnergyRegen(ctx)
}

func (goFormulas) CalcBuffTick(ctx scripting.BuffTickContext) int32 {
	return scripting.DefaultBuffTick(ctx)
}

var (
	groupsKey = ecs.KeyOf[world.GroupManager]()
	aoiKey    = ecs.KeyOf[world.AOIGrid]()
)

// base supplies Name, Origin and Phase for embedding systems.
type base struct {
	name   string
	origin coresys.Origin
	phase  coresys.Phase
}

func (b base) Name() string           { return b.name }
func (b base) Origin() coresys.Origin { return b.origin }
func (b base) Phase() coresys.Phase   { return b.phase }
