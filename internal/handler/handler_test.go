package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/event"
	"github.com/voxrpg/server/internal/net"
	"github.com/voxrpg/server/internal/net/packet"
	"github.com/voxrpg/server/internal/persist"
	"github.com/voxrpg/server/internal/world"
)

type fakeConn struct{}

func (fakeConn) ReadMessage() (int, []byte, error) { return 0, nil, errors.New("not started") }
func (fakeConn) WriteMessage(int, []byte) error    { return nil }
func (fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (fakeConn) Close() error                      { return nil }

type fakeLoader struct {
	err   error
	calls int
}

func (l *fakeLoader) LoadOrCreate(_ context.Context, name string) (*persist.Character, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return &persist.Character{
		ID:        7,
		Name:      name,
		Skills:    component.NewSkillSet(),
		Inventory: component.NewInventory(persist.DefaultBagSize),
		Waypoint:  &component.Waypoint{Pos: mgl64.Vec3{5, 5, 0}},
	}, nil
}

type fixture struct {
	ws     *world.State
	reg    *packet.Registry
	loader *fakeLoader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ws: world.NewState(world.Options{
			InviteTTL:    5 * time.Second,
			MaxGroupSize: 4,
			TameRange:    5,
		}, nil, zap.NewNop()),
		reg:    packet.NewRegistry(zap.NewNop()),
		loader: &fakeLoader{},
	}
	RegisterAll(f.reg, &Deps{World: f.ws, Characters: f.loader, Log: zap.NewNop()})
	return f
}

func newSession(id uint64) *net.Session {
	return net.NewSession(fakeConn{}, id, "test", net.SessionOptions{InQueueSize: 8, OutQueueSize: 32}, zap.NewNop())
}

func (f *fixture) send(t *testing.T, sess *net.Session, typ string, v any) error {
	t.Helper()
	return f.reg.Dispatch(sess, sess.State(), packet.MustEncode(typ, v))
}

func (f *fixture) join(t *testing.T, id uint64, name string) *net.Session {
	t.Helper()
	sess := newSession(id)
	if err := f.send(t, sess, packet.CJoin, packet.Join{Name: name}); err != nil {
		t.Fatal(err)
	}
	if sess.State() != packet.StateInGame {
		t.Fatalf("%s did not join", name)
	}
	return sess
}

// outbox flushes sess and returns the queued messages.
func outbox(t *testing.T, sess *net.Session) []*packet.Reader {
	t.Helper()
	sess.FlushOutput()
	var out []*packet.Reader
	for {
		select {
		case b := <-sess.OutQueue:
			r, err := packet.NewReader(b)
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, r)
		default:
			return out
		}
	}
}

func noticeTexts(t *testing.T, msgs []*packet.Reader) []string {
	t.Helper()
	var out []string
	for _, r := range msgs {
		if r.Type() != packet.SNotice {
			continue
		}
		var n packet.Notice
		if err := r.Decode(&n); err != nil {
			t.Fatal(err)
		}
		out = append(out, n.Text)
	}
	return out
}

func TestJoin_Character(t *testing.T) {
	f := newFixture(t)
	sess := f.join(t, 1, "alice")

	e, ok := f.ws.BySession(1)
	if !ok {
		t.Fatal("no entity")
	}
	if sess.Name != "alice" || !f.ws.ForceUpdate.Has(e) {
		t.Fatal("join did not finish")
	}
	if p, _ := f.ws.Pos.Get(e); p.Vec3 != (mgl64.Vec3{5, 5, 0}) {
		t.Fatalf("spawned at %v, want waypoint", p.Vec3)
	}
	msgs := outbox(t, sess)
	if len(msgs) != 1 || msgs[0].Type() != packet.SJoined {
		t.Fatalf("messages = %d", len(msgs))
	}
	var joined packet.Joined
	if err := msgs[0].Decode(&joined); err != nil {
		t.Fatal(err)
	}
	if joined.CharacterID != 7 || joined.Uid.IsZero() || joined.Spectator {
		t.Fatalf("joined = %+v", joined)
	}
}

func TestJoin_Spectator(t *testing.T) {
	f := newFixture(t)
	sess := newSession(2)
	if err := f.send(t, sess, packet.CJoin, packet.Join{Name: "watcher", Spectate: true}); err != nil {
		t.Fatal(err)
	}
	e, ok := f.ws.BySession(2)
	if !ok {
		t.Fatal("no entity")
	}
	if p, _ := f.ws.Presence.Get(e); p.Kind != component.PresenceSpectator {
		t.Fatalf("presence = %+v", p)
	}
	if f.loader.calls != 0 {
		t.Fatal("spectator loaded a character")
	}
}

func TestJoin_Rejections(t *testing.T) {
	f := newFixture(t)
	f.join(t, 1, "alice")

	tests := []struct {
		name   string
		join   string
		loader error
		notice string
	}{
		{"bad name", "1abc", nil, "invalid name"},
		{"too short", "a", nil, "invalid name"},
		{"online", "alice", nil, "alice is already online"},
		{"load failure", "bob", errors.New("db down"), "character unavailable"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.loader.err = tt.loader
			sess := newSession(uint64(10 + i))
			if err := f.send(t, sess, packet.CJoin, packet.Join{Name: tt.join}); err != nil {
				t.Fatal(err)
			}
			if !sess.IsClosed() {
				t.Fatal("session left open")
			}
			got := noticeTexts(t, outbox(t, sess))
			if len(got) != 1 || got[0] != tt.notice {
				t.Fatalf("notices = %v", got)
			}
		})
	}
}

func TestController_RequiresJoin(t *testing.T) {
	f := newFixture(t)
	sess := newSession(1)
	if err := f.send(t, sess, packet.CController, packet.Controller{}); err == nil {
		t.Fatal("controller accepted before join")
	}
}

func TestController_ClampsMove(t *testing.T) {
	f := newFixture(t)
	sess := f.join(t, 1, "alice")
	if err := f.send(t, sess, packet.CController, packet.Controller{MoveDir: [2]float64{3, 4}, Jump: true}); err != nil {
		t.Fatal(err)
	}
	e, _ := f.ws.BySession(1)
	c, _ := f.ws.Controller.Get(e)
	if !c.Inputs.Jump || !c.Inputs.MoveDir.ApproxEqual(mgl64.Vec2{0.6, 0.8}) {
		t.Fatalf("inputs = %+v", c.Inputs)
	}
}

func TestAction_QueueIsBounded(t *testing.T) {
	f := newFixture(t)
	sess := f.join(t, 1, "alice")
	for i := 0; i < maxQueuedActions+3; i++ {
		if err := f.send(t, sess, packet.CAction, packet.Action{Kind: "sit"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.send(t, sess, packet.CAction, packet.Action{Kind: "fly_to_moon"}); err != nil {
		t.Fatal(err)
	}
	e, _ := f.ws.BySession(1)
	c, _ := f.ws.Controller.Get(e)
	if len(c.Actions) != maxQueuedActions {
		t.Fatalf("queued = %d", len(c.Actions))
	}
	if c.Actions[0].Kind != component.ActionSit {
		t.Fatalf("action = %+v", c.Actions[0])
	}
}

func TestRequests_BecomeEvents(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 1, "alice")
	f.join(t, 2, "bob")
	ea, _ := f.ws.BySession(1)
	eb, _ := f.ws.BySession(2)
	ub, _ := f.ws.UidOf(eb)

	var (
		invites []component.InitiateInvite
		groups  []component.GroupManip
		marks   []component.SetWaypoint
	)
	event.Subscribe(f.ws.Bus, func(ev component.InitiateInvite) { invites = append(invites, ev) })
	event.Subscribe(f.ws.Bus, func(ev component.GroupManip) { groups = append(groups, ev) })
	event.Subscribe(f.ws.Bus, func(ev component.SetWaypoint) { marks = append(marks, ev) })

	for _, msg := range []struct {
		typ string
		v   any
	}{
		{packet.CInvite, packet.InviteRequest{Target: ub}},
		{packet.CInvite, packet.InviteRequest{}},
		{packet.CGroup, packet.GroupRequest{Kind: "kick", Target: ub}},
		{packet.CGroup, packet.GroupRequest{Kind: "disband_everyone"}},
		{packet.CSetWaypoint, nil},
	} {
		if err := f.send(t, a, msg.typ, msg.v); err != nil {
			t.Fatal(err)
		}
	}
	f.ws.Bus.DispatchAll()

	if len(invites) != 1 || invites[0].Inviter != ea || invites[0].Invitee != ub {
		t.Fatalf("invites = %+v", invites)
	}
	if len(groups) != 1 || groups[0].Kind != component.GroupKick || groups[0].Target != ub {
		t.Fatalf("groups = %+v", groups)
	}
	if len(marks) != 1 || marks[0].Entity != ea {
		t.Fatalf("waypoints = %+v", marks)
	}
}

func TestTame_UnknownTarget(t *testing.T) {
	f := newFixture(t)
	sess := f.join(t, 1, "alice")
	outbox(t, sess)
	if err := f.send(t, sess, packet.CTame, packet.TameRequest{Pet: component.NewUid()}); err != nil {
		t.Fatal(err)
	}
	if got := noticeTexts(t, outbox(t, sess)); len(got) != 1 || got[0] != "nothing to tame" {
		t.Fatalf("notices = %v", got)
	}
	if f.ws.Bus.Len() != 0 {
		t.Fatal("event emitted for unknown pet")
	}
}

func TestQuit_ClosesSession(t *testing.T) {
	f := newFixture(t)
	sess := f.join(t, 1, "alice")
	if err := f.send(t, sess, packet.CQuit, nil); err != nil {
		t.Fatal(err)
	}
	if !sess.IsClosed() {
		t.Fatal("quit did not close the session")
	}
}
