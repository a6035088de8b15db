package handler

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	"github.com/voxrpg/server/internal/net"
	"github.com/voxrpg/server/internal/net/packet"
	"github.com/voxrpg/server/internal/world"
)

var validName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{1,15}$`)

// HandleJoin spawns the character (or a spectator) of a connected session.
func HandleJoin(sess *net.Session, r *packet.Reader, deps *Deps) {
	var req packet.Join
	if err := r.Decode(&req); err != nil {
		deps.Log.Debug("bad join", zap.Uint64("session", sess.ID), zap.Error(err))
		sess.Close()
		return
	}
	if !validName.MatchString(req.Name) {
		notice(sess, "invalid name")
		sess.Close()
		return
	}
	if nameOnline(deps.World, req.Name) {
		notice(sess, fmt.Sprintf("%s is already online", req.Name))
		sess.Close()
		return
	}

	ws := deps.World
	var (
		e   ecs.EntityID
		err error
		msg packet.Joined
	)
	if req.Spectate {
		e, err = ws.SpawnSpectator(req.Name, sess.ID, sess)
		msg.Spectator = true
	} else {
		timeout := deps.LoadTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		ch, lerr := deps.Characters.LoadOrCreate(ctx, req.Name)
		if lerr != nil {
			deps.Log.Error("load character", zap.String("name", req.Name), zap.Error(lerr))
			notice(sess, "character unavailable")
			sess.Close()
			return
		}
		e, err = ws.SpawnCharacter(world.CharacterData{
			ID:        ch.ID,
			Name:      ch.Name,
			Skills:    ch.Skills,
			Inventory: ch.Inventory,
			Waypoint:  ch.Waypoint,
			Pets:      ch.Pets,
		}, sess.ID, sess, now(deps))
		msg.CharacterID = ch.ID
	}
	if err != nil {
		deps.Log.Error("spawn", zap.String("name", req.Name), zap.Error(err))
		sess.Close()
		return
	}

	sess.Name = req.Name
	sess.SetState(packet.StateInGame)
	ws.ForceUpdate.Insert(e)
	msg.Uid, _ = ws.UidOf(e)
	ws.Send(e, packet.SJoined, msg)

	deps.Log.Info("joined",
		zap.Uint64("session", sess.ID),
		zap.String("name", req.Name),
		zap.Bool("spectator", req.Spectate),
		zap.Stringer("entity", e),
	)
}

func nameOnline(ws *world.State, name string) bool {
	found := false
	ws.Presence.Range(func(_ ecs.EntityID, p *component.Presence) bool {
		found = p.Name == name
		return !found
	})
	return found
}
