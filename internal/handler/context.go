package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/core/ecs"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/net"
	"github.com/voxrpg/server/internal/net/packet"
	"github.com/voxrpg/server/internal/persist"
	"github.com/voxrpg/server/internal/world"
)

// CharacterLoader loads a character by name, creating it on first login.
type CharacterLoader interface {
	LoadOrCreate(ctx context.Context, name string) (*persist.Character, error)
}

// Deps holds shared dependencies injected into all message handlers.
// Handlers run inside the input system with exclusive world access.
type Deps struct {
	World       *world.State
	Characters  CharacterLoader
	LoadTimeout time.Duration
	Log         *zap.Logger
}

// RegisterAll registers all message handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	reg.Register(packet.CJoin,
		[]packet.SessionState{packet.StateConnected},
		func(sess any, r *packet.Reader) {
			HandleJoin(sess.(*net.Session), r, deps)
		},
	)

	inGame := []packet.SessionState{packet.StateInGame}

	reg.Register(packet.CController, inGame,
		func(sess any, r *packet.Reader) {
			HandleController(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.CAction, inGame,
		func(sess any, r *packet.Reader) {
			HandleAction(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.CInvite, inGame,
		func(sess any, r *packet.Reader) {
			HandleInvite(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.CInviteResponse, inGame,
		func(sess any, r *packet.Reader) {
			HandleInviteResponse(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.CGroup, inGame,
		func(sess any, r *packet.Reader) {
			HandleGroup(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.CTame, inGame,
		func(sess any, r *packet.Reader) {
			HandleTame(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.CSetWaypoint, inGame,
		func(sess any, r *packet.Reader) {
			HandleSetWaypoint(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.CQuit,
		[]packet.SessionState{packet.StateConnected, packet.StateInGame},
		func(sess any, r *packet.Reader) {
			HandleQuit(sess.(*net.Session), r, deps)
		},
	)
}

// entityOf returns the entity controlled by sess.
func entityOf(sess *net.Session, deps *Deps) (ecs.EntityID, bool) {
	return deps.World.BySession(sess.ID)
}

// now is the instant of the current tick.
func now(deps *Deps) time.Time {
	if c, ok := ecs.TryResource[coresys.Clock](deps.World.World); ok && !c.Now.IsZero() {
		return c.Now
	}
	return time.Now()
}

func notice(sess *net.Session, text string) {
	sess.Send(packet.MustEncode(packet.SNotice, packet.Notice{Text: text}))
}
