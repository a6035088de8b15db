package component

import (
	"reflect"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxrpg/server/internal/core/ecs"
)

func TestPhysicsState_Reset(t *testing.T) {
	depth := 0.7
	wall := mgl64.Vec3{1, 0, 0}
	p := PhysicsState{
		OnGround:      true,
		OnCeiling:     true,
		OnWall:        &wall,
		TouchEntities: make([]ecs.EntityID, 0, 8),
		InLiquid:      &depth,
		GroundVel:     mgl64.Vec3{2, 0, 0},
	}
	p.TouchEntities = append(p.TouchEntities, 1, 2)
	backing := &p.TouchEntities[:1][0]

	p.Reset()
	if p.OnGround || p.OnCeiling || p.OnWall != nil || p.InLiquid != nil {
		t.Fatalf("contact data survived reset: %+v", p)
	}
	if len(p.TouchEntities) != 0 || cap(p.TouchEntities) != 8 || &p.TouchEntities[:1][0] != backing {
		t.Fatal("touch allocation not reused")
	}
	if p.GroundVel != (mgl64.Vec3{2, 0, 0}) {
		t.Fatalf("ground vel = %v", p.GroundVel)
	}

	once := p
	p.Reset()
	if !reflect.DeepEqual(once, p) {
		t.Fatalf("reset not idempotent: %+v vs %+v", once, p)
	}
}

func TestPhysicsState_OnSurfacePreference(t *testing.T) {
	wall := mgl64.Vec3{0, 1, 0}
	tests := []struct {
		p    PhysicsState
		want mgl64.Vec3
		ok   bool
	}{
		{PhysicsState{OnGround: true, OnCeiling: true, OnWall: &wall}, mgl64.Vec3{0, 0, -1}, true},
		{PhysicsState{OnCeiling: true, OnWall: &wall}, mgl64.Vec3{0, 0, 1}, true},
		{PhysicsState{OnWall: &wall}, wall, true},
		{PhysicsState{}, mgl64.Vec3{}, false},
	}
	for i, tt := range tests {
		got, ok := tt.p.OnSurface()
		if got != tt.want || ok != tt.ok {
			t.Errorf("case %d: OnSurface = %v, %v", i, got, ok)
		}
	}
}

func TestDirectionFromAngle(t *testing.T) {
	tests := []struct {
		deg  float64
		want Direction
	}{
		{0, North},
		{22.4, North},
		{22.5, Northeast},
		{67.5, East},
		{112.4, East},
		{112.5, Southeast},
		{180, South},
		{337.5, North},
		{-10, North},
		{-30, Northwest},
		{270, West},
	}
	for _, tt := range tests {
		if got := DirectionFromAngle(tt.deg); got != tt.want {
			t.Errorf("DirectionFromAngle(%v) = %v, want %v", tt.deg, got, tt.want)
		}
	}
}

func TestDirectionFromVec(t *testing.T) {
	tests := []struct {
		v    mgl64.Vec2
		want Direction
	}{
		{mgl64.Vec2{0, 0}, North},
		{mgl64.Vec2{0, 5}, North},
		{mgl64.Vec2{3, 0}, East},
		{mgl64.Vec2{0, -1}, South},
		{mgl64.Vec2{-1, 0}, West},
		{mgl64.Vec2{1, 1}, Northeast},
		{mgl64.Vec2{-1, -1}, Southwest},
	}
	for _, tt := range tests {
		if got := DirectionFromVec(tt.v); got != tt.want {
			t.Errorf("DirectionFromVec(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestDistanceFromLength(t *testing.T) {
	tests := []struct {
		l    float64
		want Distance
	}{
		{0, NextTo}, {100, NextTo}, {101, Near}, {500, Near}, {501, Ahead},
		{3000, Ahead}, {3001, Far}, {10000, Far}, {10001, VeryFar},
	}
	for _, tt := range tests {
		if got := DistanceFromLength(tt.l); got != tt.want {
			t.Errorf("DistanceFromLength(%v) = %v, want %v", tt.l, got, tt.want)
		}
	}
}

func TestInventory_EquipUnequip(t *testing.T) {
	inv := NewInventory(3)
	inv.Slots[0] = &Item{ID: "sword.iron", Tool: ToolSword, Amount: 1}
	inv.Slots[1] = &Item{ID: "glider.basic", Tool: ToolGlider, Amount: 1}

	if inv.Equip(0, SlotGlider) {
		t.Fatal("sword equipped as glider")
	}
	if !inv.Equip(0, SlotMainHand) || inv.ActiveTool() != ToolSword || inv.Slots[0] != nil {
		t.Fatalf("equip main hand failed: %+v", inv)
	}
	if !inv.Equip(1, SlotGlider) || !inv.HasGlider() {
		t.Fatal("equip glider failed")
	}
	inv.SwapLoadout()
	if inv.ActiveTool() != ToolEmpty || inv.Loadout.OffHand == nil {
		t.Fatal("swap loadout failed")
	}
	if !inv.Unequip(SlotOffHand) || inv.Slots[0] == nil || inv.Slots[0].ID != "sword.iron" {
		t.Fatalf("unequip failed: %+v", inv.Slots)
	}
	if inv.Unequip(SlotOffHand) {
		t.Fatal("unequip of empty slot succeeded")
	}
}

func TestClone_SharesNothing(t *testing.T) {
	inv := NewInventory(2)
	inv.Slots[0] = &Item{ID: "sword", Tool: ToolSword, Amount: 1}
	inv.Loadout.MainHand = &Item{ID: "axe", Tool: ToolAxe, Amount: 1}
	c := inv.Clone()
	inv.Swap(0, 1)
	inv.Loadout.MainHand.Amount = 5
	if c.Slots[0] == nil || c.Slots[0].ID != "sword" || c.Slots[1] != nil {
		t.Fatalf("slots = %+v", c.Slots)
	}
	if c.Loadout.MainHand.Amount != 1 || c.Loadout.OffHand != nil {
		t.Fatalf("loadout = %+v", c.Loadout)
	}

	s := SkillSet{Skills: map[string]uint16{"mining": 2}, Points: 1}
	sc := s.Clone()
	s.Unlock("mining")
	if sc.Skills["mining"] != 2 || sc.Points != 1 {
		t.Fatalf("skills = %+v", sc)
	}
}

func TestPendingInvites_SwapRemove(t *testing.T) {
	now := time.Unix(0, 0)
	p := PendingInvites{Entries: []PendingInvite{{Invitee: 1, Deadline: now}, {Invitee: 2, Deadline: now}, {Invitee: 3, Deadline: now}}}
	i := p.Find(1)
	if i != 0 {
		t.Fatalf("find = %d", i)
	}
	p.SwapRemove(i)
	if p.Len() != 2 || p.Find(1) != -1 || p.Find(3) != 0 {
		t.Fatalf("entries = %+v", p.Entries)
	}
}

func TestCombo_SaturatesAtZero(t *testing.T) {
	var c Combo
	now := time.Unix(1, 0)
	c.Change(4, now)
	c.Change(-10, now)
	if c.Counter() != 0 {
		t.Fatalf("counter = %d", c.Counter())
	}
}

func TestUid_TextRoundTrip(t *testing.T) {
	u := NewUid()
	b, err := u.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var back Uid
	if err := back.UnmarshalText(b); err != nil || back != u {
		t.Fatalf("round trip = %v, %v", back, err)
	}
	if _, err := ParseUid("not-a-uuid"); err == nil {
		t.Fatal("expected parse error")
	}
}
