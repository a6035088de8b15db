package event

import (
	"reflect"
	"sync"
	"testing"
)

type comboChange struct {
	Entity int
	Change int
}

type auraAdded struct{ Strength float64 }

func TestBus_DeliversInPushOrderAcrossTypes(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(ev comboChange) { got = append(got, "combo") })
	Subscribe(b, func(ev auraAdded) { got = append(got, "aura") })

	Emit(b, comboChange{Entity: 1, Change: -4})
	Emit(b, auraAdded{Strength: 30})
	Emit(b, comboChange{Entity: 2, Change: 1})
	b.EmitAll([]any{auraAdded{}, comboChange{}})

	if n := b.DispatchAll(); n != 5 {
		t.Fatalf("delivered %d, want 5", n)
	}
	want := []string{"combo", "aura", "combo", "aura", "combo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if b.Len() != 0 {
		t.Fatal("queue not empty")
	}
}

func TestBus_HandlerEmitsFollowUp(t *testing.T) {
	b := NewBus()
	var strengths []float64
	Subscribe(b, func(ev comboChange) {
		Emit(b, auraAdded{Strength: float64(-ev.Change)})
	})
	Subscribe(b, func(ev auraAdded) { strengths = append(strengths, ev.Strength) })

	Emit(b, comboChange{Change: -3})
	b.DispatchAll()
	if len(strengths) != 1 || strengths[0] != 3 {
		t.Fatalf("strengths = %v", strengths)
	}
}

func TestBus_ConcurrentEmit(t *testing.T) {
	b := NewBus()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				Emit(b, comboChange{Entity: i})
			}
		}(i)
	}
	wg.Wait()
	count := 0
	Subscribe(b, func(comboChange) { count++ })
	b.DispatchAll()
	if count != 800 {
		t.Fatalf("count = %d", count)
	}
}
