package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/persist"
	"github.com/voxrpg/server/internal/world"
)

// PersistenceSystem hands every online character to the updater once per
// interval. Durability and retries belong to the updater.
type PersistenceSystem struct {
	base
	world   *world.State
	updater CharacterUpdater
	sched   *coresys.SysScheduler[PersistenceSystem]
	log     *zap.Logger
}

// NewPersistenceSystem starts the interval at now and publishes the
// scheduler as a world resource.
func NewPersistenceSystem(ws *world.State, updater CharacterUpdater, interval time.Duration, now time.Time, log *zap.Logger) *PersistenceSystem {
	sched := coresys.NewSysScheduler[PersistenceSystem](interval, now)
	ecs.InsertResource(ws.World, sched)
	return &PersistenceSystem{
		base:    base{name: "persistence", origin: coresys.OriginServer, phase: coresys.PhaseApply},
		world:   ws,
		updater: updater,
		sched:   sched,
		log:     log,
	}
}

func (s *PersistenceSystem) Access() coresys.Access {
	ws := s.world
	return coresys.Read(ws.Presence, ws.Skills, ws.Inventory, ws.Waypoint, ws.Anchor, ws.Pet).
		WriteRes(ecs.KeyOf[coresys.SysScheduler[PersistenceSystem]]())
}

func (s *PersistenceSystem) Update(t coresys.Tick) {
	if !s.sched.ShouldRun(t.Now) {
		return
	}
	batch := collectCharacters(s.world)
	s.updater.BatchUpdate(batch)
	s.log.Debug("auto-save queued", zap.Int("characters", len(batch)))
}

// SaveAll queues every online character immediately, for shutdown.
func (s *PersistenceSystem) SaveAll() int {
	batch := collectCharacters(s.world)
	if len(batch) > 0 {
		s.updater.BatchUpdate(batch)
	}
	return len(batch)
}

func collectCharacters(ws *world.State) []persist.CharacterUpdate {
	var batch []persist.CharacterUpdate
	ws.Presence.Each(func(e ecs.EntityID, _ *component.Presence) {
		if u, ok := characterUpdate(ws, e); ok {
			batch = append(batch, u)
		}
	})
	return batch
}

// characterUpdate joins the persisted components of a character entity.
// Spectators and entities missing skills or inventory yield false.
func characterUpdate(ws *world.State, e ecs.EntityID) (persist.CharacterUpdate, bool) {
	p, ok := ws.Presence.Get(e)
	if !ok {
		return persist.CharacterUpdate{}, false
	}
	id, ok := p.CharacterIDOf()
	if !ok {
		return persist.CharacterUpdate{}, false
	}
	skills, ok1 := ws.Skills.Get(e)
	inv, ok2 := ws.Inventory.Get(e)
	if !ok1 || !ok2 {
		return persist.CharacterUpdate{}, false
	}
	// The updater encodes on its own goroutine, so nothing in u may alias
	// live components.
	u := persist.CharacterUpdate{ID: id, Skills: skills.Clone(), Inventory: inv.Clone()}
	if wp, ok := ws.Waypoint.Get(e); ok {
		w := *wp
		u.Waypoint = &w
	}
	for _, pet := range ws.PetsOf(e) {
		if rec, ok := ws.Pet.Get(pet); ok {
			u.Pets = append(u.Pets, *rec)
		}
	}
	return u, true
}
