package system

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/core/ecs"
)

type pos struct{ X float64 }
type vel struct{ X float64 }
type hp struct{ V int }

type fakeSystem struct {
	name   string
	phase  Phase
	origin Origin
	access Access
	update func(Tick)
}

func (s *fakeSystem) Name() string   { return s.name }
func (s *fakeSystem) Origin() Origin { return s.origin }
func (s *fakeSystem) Phase() Phase   { return s.phase }
func (s *fakeSystem) Access() Access { return s.access }
func (s *fakeSystem) Update(t Tick) {
	if s.update != nil {
		s.update(t)
	}
}

func TestAccess_Conflicts(t *testing.T) {
	w := ecs.NewWorld()
	p := ecs.NewStore[pos](w)
	v := ecs.NewStore[vel](w)
	h := ecs.NewStore[hp](w)

	tests := []struct {
		name string
		a, b Access
		want bool
	}{
		{"disjoint reads", Read(p), Read(p), false},
		{"write vs read", Read(v).Write(p), Read(p), true},
		{"read vs write", Read(p), Read(v).Write(p), true},
		{"write vs write", Read().Write(h), Read().Write(h), true},
		{"disjoint writes", Read(p).Write(v), Read(p).Write(h), false},
		{"exclusive", Exclusive(), Read(), true},
	}
	for _, tt := range tests {
		if got := tt.a.Conflicts(tt.b); got != tt.want {
			t.Errorf("%s: Conflicts = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDispatcher_Layers(t *testing.T) {
	w := ecs.NewWorld()
	p := ecs.NewStore[pos](w)
	v := ecs.NewStore[vel](w)
	h := ecs.NewStore[hp](w)

	d := NewDispatcher(w, 50*time.Millisecond, 4, zap.NewNop())
	d.Register(&fakeSystem{name: "replicate", phase: PhaseSync, access: Read(p, v, h)})
	d.Register(&fakeSystem{name: "physics", phase: PhaseLogic, access: Read(v).Write(p)})
	d.Register(&fakeSystem{name: "regen", phase: PhaseLogic, access: Read().Write(h)})
	d.Register(&fakeSystem{name: "render-pos", phase: PhaseLogic, access: Read(p)})
	d.Register(&fakeSystem{name: "input", phase: PhaseCreate, access: Exclusive()})
	d.Register(&fakeSystem{name: "server-only", phase: PhaseLogic, origin: OriginServer, access: Read(h)})
	d.Build()

	want := [][]string{
		{"input"},
		{"physics", "regen"},
		{"render-pos", "server-only"},
		{"replicate"},
	}
	if got := d.Layers(); !reflect.DeepEqual(got, want) {
		t.Fatalf("layers = %v, want %v", got, want)
	}
}

func TestDispatcher_TickOrderAndMaintain(t *testing.T) {
	w := ecs.NewWorld()
	p := ecs.NewStore[pos](w)
	e := w.CreateEntity()

	var mu sync.Mutex
	var order []string
	record := func(name string) func(Tick) {
		return func(Tick) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	d := NewDispatcher(w, 50*time.Millisecond, 0, zap.NewNop())
	d.Register(&fakeSystem{name: "spawn", phase: PhaseCreate, access: Read().Write(p), update: func(Tick) {
		w.Exec(func(w *ecs.World) { p.Insert(e, pos{X: 1}) })
		record("spawn")(Tick{})
	}})
	d.Register(&fakeSystem{name: "sync", phase: PhaseSync, access: Read(p), update: func(Tick) {
		if !p.Has(e) {
			t.Error("deferred insert not flushed before sync phase")
		}
		record("sync")(Tick{})
	}})
	d.Register(&fakeSystem{name: "apply", phase: PhaseApply, access: Read(p), update: record("apply")})
	d.Build()

	start := time.Unix(1000, 0)
	tk := d.Tick(start)
	if tk.Number != 1 || tk.Dt != 50*time.Millisecond {
		t.Fatalf("tick = %+v", tk)
	}
	if dt := ecs.Resource[DeltaTime](w).Seconds; dt != 0.05 {
		t.Fatalf("DeltaTime = %v", dt)
	}
	if c := ecs.Resource[Clock](w); c.Tick != 1 || !c.Now.Equal(start) {
		t.Fatalf("clock = %+v", c)
	}
	if !reflect.DeepEqual(order, []string{"spawn", "apply", "sync"}) {
		t.Fatalf("order = %v", order)
	}
	for _, tm := range d.Timings() {
		if tm.Nanos < 0 {
			t.Errorf("%s timing = %d", tm.Name, tm.Nanos)
		}
	}
}

func TestDispatcher_ParallelLayerRunsAll(t *testing.T) {
	w := ecs.NewWorld()
	d := NewDispatcher(w, time.Second, 2, zap.NewNop())
	var mu sync.Mutex
	ran := map[string]int{}
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		name := n
		d.Register(&fakeSystem{name: name, phase: PhaseLogic, update: func(Tick) {
			mu.Lock()
			ran[name]++
			mu.Unlock()
		}})
	}
	d.Build()
	if l := d.Layers(); len(l) != 1 || len(l[0]) != 5 {
		t.Fatalf("layers = %v", l)
	}
	now := time.Now()
	d.Tick(now)
	d.Tick(now.Add(time.Second))
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		if ran[n] != 2 {
			t.Fatalf("%s ran %d times", n, ran[n])
		}
	}
}

func TestDispatcher_RegisterAfterBuildPanics(t *testing.T) {
	d := NewDispatcher(ecs.NewWorld(), time.Second, 1, zap.NewNop())
	d.Build()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	d.Register(&fakeSystem{name: "late"})
}

func TestSysTimer_Contract(t *testing.T) {
	t.Run("double start", func(t *testing.T) {
		var tm SysTimer
		tm.Start()
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		tm.Start()
	})
	t.Run("end without start", func(t *testing.T) {
		var tm SysTimer
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		tm.End()
	})
	t.Run("paired", func(t *testing.T) {
		var tm SysTimer
		tm.Start()
		if !tm.Running() {
			t.Fatal("not running after start")
		}
		tm.End()
		if tm.Running() || tm.Nanos() < 0 {
			t.Fatalf("running=%v nanos=%d", tm.Running(), tm.Nanos())
		}
	})
}

type persistence struct{}

func TestSysScheduler_Cadence(t *testing.T) {
	t0 := time.Unix(0, 0)
	s := NewSysScheduler[persistence](30*time.Second, t0)
	runs := 0
	for _, sec := range []int{0, 10, 20, 29, 31} {
		if s.ShouldRun(t0.Add(time.Duration(sec) * time.Second)) {
			runs++
			if sec != 31 {
				t.Fatalf("ran at t=%d", sec)
			}
		}
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
	if !s.LastRun().Equal(t0.Add(31 * time.Second)) {
		t.Fatalf("lastRun = %v", s.LastRun())
	}
	if s.ShouldRun(t0.Add(60 * time.Second)) {
		t.Fatal("interval restarts at the last run")
	}
	if !s.ShouldRun(t0.Add(61 * time.Second)) {
		t.Fatal("elapsed == interval must run")
	}
}

func TestSysScheduler_DefaultInterval(t *testing.T) {
	s := NewSysScheduler[persistence](0, time.Now())
	if s.Interval != DefaultPersistenceInterval {
		t.Fatalf("interval = %v", s.Interval)
	}
}
