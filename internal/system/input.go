package system

import (
	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/core/ecs"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/net"
	"github.com/voxrpg/server/internal/net/packet"
	"github.com/voxrpg/server/internal/persist"
	"github.com/voxrpg/server/internal/world"
)

// SessionSource delivers connected and dead sessions from the gateway.
type SessionSource interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan uint64
}

// InputSystem drains message queues from all sessions and dispatches them
// through the registry. Joins spawn entities, disconnects save and remove
// them. It runs alone with full world access.
type InputSystem struct {
	base
	src        SessionSource
	registry   *packet.Registry
	store      *net.SessionStore
	maxPerTick int
	world      *world.State
	updater    CharacterUpdater
	log        *zap.Logger
}

func NewInputSystem(src SessionSource, registry *packet.Registry, store *net.SessionStore, maxPerTick int,
	ws *world.State, updater CharacterUpdater, log *zap.Logger) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 32
	}
	return &InputSystem{
		base:       base{name: "input", origin: coresys.OriginServer, phase: coresys.PhaseCreate},
		src:        src,
		registry:   registry,
		store:      store,
		maxPerTick: maxPerTick,
		world:      ws,
		updater:    updater,
		log:        log,
	}
}

func (s *InputSystem) Access() coresys.Access { return coresys.Exclusive() }

func (s *InputSystem) Update(_ coresys.Tick) {
	if s.src != nil {
	newSessions:
		for {
			select {
			case sess := <-s.src.NewSessions():
				s.store.Add(sess)
			default:
				break newSessions
			}
		}
	deadSessions:
		for {
			select {
			case id := <-s.src.DeadSessions():
				s.disconnect(id)
			default:
				break deadSessions
			}
		}
	}

	for id, sess := range s.store.Raw() {
		if sess.IsClosed() {
			s.disconnect(id)
			continue
		}
		s.drain(sess)
	}
}

func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
				s.log.Debug("dropping session", zap.Uint64("session", sess.ID), zap.Error(err))
				sess.Close()
				return
			}
			if sess.IsClosed() {
				return
			}
		default:
			return
		}
	}
}

func (s *InputSystem) disconnect(id uint64) {
	if s.store.Get(id) == nil {
		return
	}
	s.store.Remove(id)
	if e, ok := s.world.BySession(id); ok {
		s.Logout(e)
	}
	s.log.Info("client disconnected", zap.Uint64("session", id))
}

// Logout saves the character of e as a one-element batch, then queues e and
// its pets for deletion.
func (s *InputSystem) Logout(e ecs.EntityID) {
	if u, ok := characterUpdate(s.world, e); ok && s.updater != nil {
		s.updater.BatchUpdate([]persist.CharacterUpdate{u})
	}
	for _, pet := range s.world.PetsOf(e) {
		s.world.Delete(pet)
	}
	s.world.Delete(e)
}
