package system

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/core/ecs"
	coresys "github.com/voxrpg/server/internal/core/system"
	"github.com/voxrpg/server/internal/handler"
	"github.com/voxrpg/server/internal/net"
	"github.com/voxrpg/server/internal/net/packet"
	"github.com/voxrpg/server/internal/persist"
	"github.com/voxrpg/server/internal/world"
)

var t0 = time.Unix(1_700_000_000, 0)

type sink struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (s *sink) Send(b []byte) {
	s.mu.Lock()
	s.msgs = append(s.msgs, b)
	s.mu.Unlock()
}

// of returns the payloads of every message of type typ, in order.
func (s *sink) of(t *testing.T, typ string) []*packet.Reader {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*packet.Reader
	for _, m := range s.msgs {
		r, err := packet.NewReader(m)
		if err != nil {
			t.Fatal(err)
		}
		if r.Type() == typ {
			out = append(out, r)
		}
	}
	return out
}

type fakeUpdater struct {
	batches [][]persist.CharacterUpdate
}

func (f *fakeUpdater) BatchUpdate(u []persist.CharacterUpdate) {
	f.batches = append(f.batches, u)
}

func newState(t *testing.T) *world.State {
	t.Helper()
	return world.NewState(world.Options{
		InviteTTL:       5 * time.Second,
		MaxGroupSize:    4,
		TameRange:       5,
		LostPetDistance: 50,
		SeaLevel:        -8,
		ComboDecay:      2 * time.Second,
	}, nil, zap.NewNop())
}

func spawnPlayer(t *testing.T, ws *world.State, name string, session uint64) (ecs.EntityID, *sink) {
	t.Helper()
	out := &sink{}
	e, err := ws.SpawnCharacter(world.CharacterData{ID: int64(session), Name: name}, session, out, t0)
	if err != nil {
		t.Fatal(err)
	}
	return e, out
}

func spawnCreature(t *testing.T, ws *world.State, at mgl64.Vec3) ecs.EntityID {
	t.Helper()
	e, err := ws.SpawnCreature(at, true)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func uidOf(t *testing.T, ws *world.State, e ecs.EntityID) component.Uid {
	t.Helper()
	u, ok := ws.UidOf(e)
	if !ok {
		t.Fatalf("%v has no uid", e)
	}
	return u
}

func tickAt(n uint64, now time.Time, dt time.Duration) coresys.Tick {
	return coresys.Tick{Number: n, Now: now, Dt: dt}
}

func TestInviteTimeout_DeadlineBoundary(t *testing.T) {
	ws := newState(t)
	a, outA := spawnPlayer(t, ws, "alice", 1)
	b, _ := spawnPlayer(t, ws, "bob", 2)
	if err := ws.InitiateInvite(a, uidOf(t, ws, b), t0); err != nil {
		t.Fatal(err)
	}
	sys := NewInviteTimeoutSystem(ws)

	sys.Update(tickAt(1, t0.Add(5*time.Second), 0))
	if !ws.Invite.Has(b) || !ws.PendingInvites.Has(a) {
		t.Fatal("invite expired at its deadline")
	}

	sys.Update(tickAt(2, t0.Add(5*time.Second+time.Millisecond), 0))
	if ws.Invite.Has(b) || ws.PendingInvites.Has(a) {
		t.Fatal("invite survived past its deadline")
	}
	done := outA.of(t, packet.SInviteComplete)
	if len(done) != 1 {
		t.Fatalf("invite_complete messages = %d", len(done))
	}
	var msg packet.InviteComplete
	if err := done[0].Decode(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Answer != packet.InviteTimedOut || msg.Target != uidOf(t, ws, b) {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestInviteTimeout_KeepsLaterInvites(t *testing.T) {
	ws := newState(t)
	a, _ := spawnPlayer(t, ws, "alice", 1)
	b, _ := spawnPlayer(t, ws, "bob", 2)
	c, _ := spawnPlayer(t, ws, "carol", 3)
	if err := ws.InitiateInvite(a, uidOf(t, ws, b), t0); err != nil {
		t.Fatal(err)
	}
	if err := ws.InitiateInvite(a, uidOf(t, ws, c), t0.Add(2*time.Second)); err != nil {
		t.Fatal(err)
	}

	NewInviteTimeoutSystem(ws).Update(tickAt(1, t0.Add(6*time.Second), 0))
	if ws.Invite.Has(b) {
		t.Fatal("expired invite kept")
	}
	if !ws.Invite.Has(c) {
		t.Fatal("live invite dropped")
	}
	p, ok := ws.PendingInvites.Get(a)
	if !ok || p.Len() != 1 || p.Entries[0].Invitee != c {
		t.Fatalf("pending = %+v", p)
	}
}

func TestInviteTimeout_InviteeWithoutUid(t *testing.T) {
	ws := newState(t)
	a, outA := spawnPlayer(t, ws, "alice", 1)
	b := ws.World.CreateEntity()
	ws.Invite.Insert(b, component.Invite{Inviter: a})
	ws.PendingInvites.Insert(a, component.PendingInvites{Entries: []component.PendingInvite{{Invitee: b, Deadline: t0}}})

	NewInviteTimeoutSystem(ws).Update(tickAt(1, t0.Add(time.Second), 0))
	if ws.Invite.Has(b) || ws.PendingInvites.Has(a) {
		t.Fatal("timeout did not take effect")
	}
	if n := len(outA.of(t, packet.SInviteComplete)); n != 0 {
		t.Fatalf("invite_complete messages = %d", n)
	}
}

func TestInviteTimeout_InviterWithoutPending(t *testing.T) {
	ws := newState(t)
	a, outA := spawnPlayer(t, ws, "alice", 1)
	b, _ := spawnPlayer(t, ws, "bob", 2)
	ws.Invite.Insert(b, component.Invite{Inviter: a})

	NewInviteTimeoutSystem(ws).Update(tickAt(1, t0.Add(time.Hour), 0))
	if !ws.Invite.Has(b) {
		t.Fatal("invite without a pending entry was removed")
	}
	if n := len(outA.of(t, packet.SInviteComplete)); n != 0 {
		t.Fatalf("invite_complete messages = %d", n)
	}
}

func TestInviteTimeout_ThroughDispatcher(t *testing.T) {
	ws := newState(t)
	a, outA := spawnPlayer(t, ws, "alice", 1)
	b, _ := spawnPlayer(t, ws, "bob", 2)
	ws.PendingInvites.Insert(a, component.PendingInvites{Entries: []component.PendingInvite{{Invitee: b, Deadline: t0.Add(5 * time.Second)}}})
	ws.Invite.Insert(b, component.Invite{Inviter: a})

	d := coresys.NewDispatcher(ws.World, 50*time.Millisecond, 2, zap.NewNop())
	d.Register(NewInviteTimeoutSystem(ws))
	d.Build()
	d.Tick(t0.Add(6 * time.Second))

	if ws.Invite.Has(b) || ws.PendingInvites.Has(a) {
		t.Fatal("invite survived the tick")
	}
	done := outA.of(t, packet.SInviteComplete)
	if len(done) != 1 {
		t.Fatalf("invite_complete messages = %d", len(done))
	}
	var msg packet.InviteComplete
	if err := done[0].Decode(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Answer != packet.InviteTimedOut || msg.Target != uidOf(t, ws, b) {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestPersistence_Cadence(t *testing.T) {
	ws := newState(t)
	spawnPlayer(t, ws, "alice", 1)
	fu := &fakeUpdater{}
	sys := NewPersistenceSystem(ws, fu, 30*time.Second, t0, zap.NewNop())

	for i, sec := range []int{0, 10, 20, 29, 31} {
		sys.Update(tickAt(uint64(i+1), t0.Add(time.Duration(sec)*time.Second), 0))
	}
	if len(fu.batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(fu.batches))
	}
	sched := ecs.Resource[coresys.SysScheduler[PersistenceSystem]](ws.World)
	if !sched.LastRun().Equal(t0.Add(31 * time.Second)) {
		t.Fatalf("last run = %v", sched.LastRun())
	}
}

func TestPersistence_BatchContents(t *testing.T) {
	ws := newState(t)
	a, _ := spawnPlayer(t, ws, "alice", 1)
	if _, err := ws.SpawnSpectator("watcher", 2, &sink{}); err != nil {
		t.Fatal(err)
	}
	pet := spawnCreature(t, ws, mgl64.Vec3{1, 0, 0})
	if !ws.RestorePet(pet, a, component.Pet{Name: "rex", Species: "wolf"}) {
		t.Fatal("restore pet failed")
	}
	ws.Waypoint.Insert(a, component.Waypoint{Pos: mgl64.Vec3{4, 5, 6}, Time: t0})

	fu := &fakeUpdater{}
	sys := NewPersistenceSystem(ws, fu, time.Second, t0, zap.NewNop())
	sys.Update(tickAt(1, t0.Add(time.Second), 0))

	if len(fu.batches) != 1 || len(fu.batches[0]) != 1 {
		t.Fatalf("batches = %+v", fu.batches)
	}
	u := fu.batches[0][0]
	if u.ID != 1 {
		t.Fatalf("id = %d", u.ID)
	}
	if u.Waypoint == nil || u.Waypoint.Pos != (mgl64.Vec3{4, 5, 6}) {
		t.Fatalf("waypoint = %+v", u.Waypoint)
	}
	if len(u.Pets) != 1 || u.Pets[0].Name != "rex" {
		t.Fatalf("pets = %+v", u.Pets)
	}

	if n := sys.SaveAll(); n != 1 || len(fu.batches) != 2 {
		t.Fatalf("save all = %d, batches = %d", n, len(fu.batches))
	}
}

type fakeConn struct {
	mu     sync.Mutex
	closed bool
}

func (c *fakeConn) ReadMessage() (int, []byte, error) { select {} }
func (c *fakeConn) WriteMessage(int, []byte) error    { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error  { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

type fakeSource struct {
	newCh  chan *net.Session
	deadCh chan uint64
}

func (s *fakeSource) NewSessions() <-chan *net.Session { return s.newCh }
func (s *fakeSource) DeadSessions() <-chan uint64      { return s.deadCh }

type fakeLoader struct{}

func (fakeLoader) LoadOrCreate(_ context.Context, name string) (*persist.Character, error) {
	return &persist.Character{
		ID:        7,
		Name:      name,
		Skills:    component.NewSkillSet(),
		Inventory: component.NewInventory(persist.DefaultBagSize),
	}, nil
}

type inputFixture struct {
	ws    *world.State
	src   *fakeSource
	store *net.SessionStore
	fu    *fakeUpdater
	sys   *InputSystem
}

func newInputFixture(t *testing.T) *inputFixture {
	t.Helper()
	ws := newState(t)
	reg := packet.NewRegistry(zap.NewNop())
	handler.RegisterAll(reg, &handler.Deps{World: ws, Characters: fakeLoader{}, Log: zap.NewNop()})
	f := &inputFixture{
		ws:    ws,
		src:   &fakeSource{newCh: make(chan *net.Session, 4), deadCh: make(chan uint64, 4)},
		store: net.NewSessionStore(),
		fu:    &fakeUpdater{},
	}
	f.sys = NewInputSystem(f.src, reg, f.store, 8, ws, f.fu, zap.NewNop())
	return f
}

func (f *inputFixture) connect(id uint64, msgs ...[]byte) *net.Session {
	sess := net.NewSession(&fakeConn{}, id, "test", net.SessionOptions{InQueueSize: 8, OutQueueSize: 8}, zap.NewNop())
	for _, m := range msgs {
		sess.InQueue <- m
	}
	f.src.newCh <- sess
	return sess
}

func TestInput_JoinAndDisconnect(t *testing.T) {
	f := newInputFixture(t)
	sess := f.connect(1, packet.MustEncode(packet.CJoin, packet.Join{Name: "alice"}))

	f.sys.Update(tickAt(1, t0, 0))
	if sess.State() != packet.StateInGame {
		t.Fatalf("state = %v", sess.State())
	}
	e, ok := f.ws.BySession(1)
	if !ok {
		t.Fatal("no entity for session")
	}
	if p, _ := f.ws.Presence.Get(e); p.CharacterID != 7 {
		t.Fatalf("presence = %+v", p)
	}

	sess.Close()
	f.sys.Update(tickAt(2, t0, 0))
	if f.store.Count() != 0 {
		t.Fatal("closed session kept")
	}
	if len(f.fu.batches) != 1 || len(f.fu.batches[0]) != 1 || f.fu.batches[0][0].ID != 7 {
		t.Fatalf("logout batches = %+v", f.fu.batches)
	}
	f.ws.World.Maintain()
	if f.ws.World.Alive(e) {
		t.Fatal("entity survived logout")
	}
}

func TestInput_DeadSessionChannel(t *testing.T) {
	f := newInputFixture(t)
	f.connect(3, packet.MustEncode(packet.CJoin, packet.Join{Name: "bob", Spectate: true}))
	f.sys.Update(tickAt(1, t0, 0))
	if _, ok := f.ws.BySession(3); !ok {
		t.Fatal("spectator not spawned")
	}

	f.src.deadCh <- 3
	f.sys.Update(tickAt(2, t0, 0))
	if f.store.Get(3) != nil {
		t.Fatal("dead session kept")
	}
	if len(f.fu.batches) != 0 {
		t.Fatal("spectator saved")
	}
}

func TestInput_MalformedMessageClosesSession(t *testing.T) {
	f := newInputFixture(t)
	sess := f.connect(2, []byte("not json"))
	f.sys.Update(tickAt(1, t0, 0))
	if !sess.IsClosed() {
		t.Fatal("session not closed")
	}
}
