package system

import (
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voxrpg/server/internal/core/ecs"
)

type entry struct {
	sys   System
	seq   int
	timer SysTimer
}

// Dispatcher executes systems each tick along a DAG derived from their
// declared access. Systems of one layer run concurrently on at most workers
// goroutines; layers run in order.
type Dispatcher struct {
	world    *ecs.World
	log      *zap.Logger
	tickRate time.Duration
	workers  int

	systems []*entry
	names   map[string]struct{}
	built   bool

	before [][]*entry // layers of Create, Logic and Apply
	after  [][]*entry // layers of Sync, run after Maintain

	tick atomic.Uint64
}

// NewDispatcher creates a dispatcher for w. workers <= 0 means GOMAXPROCS.
func NewDispatcher(w *ecs.World, tickRate time.Duration, workers int, log *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if _, ok := ecs.TryResource[DeltaTime](w); !ok {
		Install(w)
	}
	return &Dispatcher{
		world:    w,
		log:      log,
		tickRate: tickRate,
		workers:  workers,
		systems:  make([]*entry, 0, 16),
		names:    make(map[string]struct{}, 16),
	}
}

// Register adds s. Registration order breaks ties inside a phase and origin.
func (d *Dispatcher) Register(s System) {
	if d.built {
		panic(fmt.Sprintf("system: register %q after Build", s.Name()))
	}
	if _, dup := d.names[s.Name()]; dup {
		panic(fmt.Sprintf("system: duplicate system name %q", s.Name()))
	}
	d.names[s.Name()] = struct{}{}
	d.systems = append(d.systems, &entry{sys: s, seq: len(d.systems)})
}

// Build freezes the system set and computes the layers. Within a phase an
// edge runs from every earlier system to each later one it conflicts with;
// a system's layer is the length of the longest path reaching it.
func (d *Dispatcher) Build() {
	if d.built {
		panic("system: Build called twice")
	}
	d.built = true

	sorted := make([]*entry, len(d.systems))
	copy(sorted, d.systems)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].sys, sorted[j].sys
		if a.Phase() != b.Phase() {
			return a.Phase() < b.Phase()
		}
		if a.Origin() != b.Origin() {
			return a.Origin() < b.Origin()
		}
		return sorted[i].seq < sorted[j].seq
	})

	for start := 0; start < len(sorted); {
		end := start
		for end < len(sorted) && sorted[end].sys.Phase() == sorted[start].sys.Phase() {
			end++
		}
		layers := layer(sorted[start:end])
		if sorted[start].sys.Phase() == PhaseSync {
			d.after = append(d.after, layers...)
		} else {
			d.before = append(d.before, layers...)
		}
		start = end
	}

	for i, l := range d.Layers() {
		d.log.Debug("system layer", zap.Int("layer", i), zap.Strings("systems", l))
	}
}

func layer(group []*entry) [][]*entry {
	depth := make([]int, len(group))
	maxDepth := 0
	for j := range group {
		aj := group[j].sys.Access()
		for i := 0; i < j; i++ {
			if group[i].sys.Access().Conflicts(aj) && depth[i]+1 > depth[j] {
				depth[j] = depth[i] + 1
			}
		}
		if depth[j] > maxDepth {
			maxDepth = depth[j]
		}
	}
	out := make([][]*entry, maxDepth+1)
	for j, e := range group {
		out[depth[j]] = append(out[depth[j]], e)
	}
	return out
}

// Layers returns the system names of each layer in execution order.
func (d *Dispatcher) Layers() [][]string {
	var out [][]string
	for _, layers := range [][][]*entry{d.before, d.after} {
		for _, l := range layers {
			names := make([]string, len(l))
			for i, e := range l {
				names[i] = e.sys.Name()
			}
			out = append(out, names)
		}
	}
	return out
}

// Tick runs one simulation step: update resources, run the pre-maintain
// layers, flush deferred world mutations, then run the sync layers.
func (d *Dispatcher) Tick(now time.Time) Tick {
	if !d.built {
		panic("system: Tick before Build")
	}
	t := Tick{Number: d.tick.Add(1), Now: now, Dt: d.tickRate}

	ecs.Resource[DeltaTime](d.world).Seconds = t.Dt.Seconds()
	clock := ecs.Resource[Clock](d.world)
	clock.Tick = t.Number
	clock.Now = now

	for _, l := range d.before {
		d.runLayer(l, t)
	}
	d.world.Maintain()
	for _, l := range d.after {
		d.runLayer(l, t)
	}

	if elapsed := time.Since(now); elapsed > d.tickRate {
		d.log.Warn("tick overrun",
			zap.Uint64("tick", t.Number),
			zap.Duration("elapsed", elapsed),
			zap.Duration("budget", d.tickRate))
	}
	return t
}

func (d *Dispatcher) runLayer(l []*entry, t Tick) {
	if len(l) == 1 {
		run(l[0], t)
		return
	}
	var g errgroup.Group
	g.SetLimit(d.workers)
	for _, e := range l {
		g.Go(func() error {
			run(e, t)
			return nil
		})
	}
	_ = g.Wait()
}

func run(e *entry, t Tick) {
	e.timer.Start()
	e.sys.Update(t)
	e.timer.End()
}

// Timing is the last run duration of one system.
type Timing struct {
	Name  string
	Phase Phase
	Nanos int64
}

// Timings returns the per-system timers in registration order.
func (d *Dispatcher) Timings() []Timing {
	out := make([]Timing, len(d.systems))
	for i, e := range d.systems {
		out[i] = Timing{Name: e.sys.Name(), Phase: e.sys.Phase(), Nanos: e.timer.Nanos()}
	}
	return out
}

// TickNumber returns the number of the last completed tick.
func (d *Dispatcher) TickNumber() uint64 { return d.tick.Load() }
