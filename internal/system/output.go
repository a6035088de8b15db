package system

import (
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/net"
)

// OutputSystem flushes the buffered output of every session after
// replication.
type OutputSystem struct {
	base
	store *net.SessionStore
}

func NewOutputSystem(store *net.SessionStore) *OutputSystem {
	return &OutputSystem{
		base:  base{name: "output", origin: coresys.OriginServer, phase: coresys.PhaseSync},
		store: store,
	}
}

func (s *OutputSystem) Access() coresys.Access { return coresys.Exclusive() }

func (s *OutputSystem) Update(_ coresys.Tick) {
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}
