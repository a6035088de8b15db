package handler

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/event"
	"github.com/voxrpg/server/internal/net"
	"github.com/voxrpg/server/internal/net/packet"
)

// maxQueuedActions bounds the actions a client can queue between two
// behaviour runs.
const maxQueuedActions = 8

// HandleController overwrites the controller inputs of the session's entity.
func HandleController(sess *net.Session, r *packet.Reader, deps *Deps) {
	var req packet.Controller
	if err := r.Decode(&req); err != nil {
		deps.Log.Debug("bad controller", zap.Uint64("session", sess.ID), zap.Error(err))
		return
	}
	e, ok := entityOf(sess, deps)
	if !ok {
		return
	}
	c, ok := deps.World.Controller.GetMut(e)
	if !ok {
		return
	}
	move := mgl64.Vec2(req.MoveDir)
	if l := move.Len(); l > 1 {
		move = move.Mul(1 / l)
	}
	c.Inputs = component.Inputs{
		MoveDir:   move,
		LookDir:   mgl64.Vec3(req.LookDir),
		Primary:   req.Primary,
		Secondary: req.Secondary,
		Ability1:  req.Ability1,
		Jump:      req.Jump,
		Roll:      req.Roll,
		Fly:       req.Fly,
	}
}

// HandleAction queues a discrete character action.
func HandleAction(sess *net.Session, r *packet.Reader, deps *Deps) {
	var req packet.Action
	if err := r.Decode(&req); err != nil {
		return
	}
	kind, ok := component.ParseAction(req.Kind)
	if !ok {
		deps.Log.Debug("unknown action", zap.String("kind", req.Kind))
		return
	}
	e, ok := entityOf(sess, deps)
	if !ok {
		return
	}
	c, ok := deps.World.Controller.GetMut(e)
	if !ok || len(c.Actions) >= maxQueuedActions {
		return
	}
	c.Actions = append(c.Actions, component.ControlAction{
		Kind: kind,
		Slot: component.EquipSlot(req.Slot),
		Bag:  req.Bag,
	})
}

// HandleSetWaypoint stores the current position as respawn point.
func HandleSetWaypoint(sess *net.Session, _ *packet.Reader, deps *Deps) {
	e, ok := entityOf(sess, deps)
	if !ok || !deps.World.Skills.Has(e) {
		return
	}
	event.Emit(deps.World.Bus, component.SetWaypoint{Entity: e})
}

// HandleQuit closes the session; the input system saves and removes the
// entity once the connection is gone.
func HandleQuit(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Log.Info("quit", zap.Uint64("session", sess.ID), zap.String("name", sess.Name))
	sess.Close()
}
