package persist

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/voxrpg/server/internal/component"
	"github.com/voxrpg/server/internal/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	cfg := config.DatabaseConfig{
		Driver: DriverSQLite,
		DSN:    "file:" + filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := NewDB(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(db.Close)
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRebind(t *testing.T) {
	pg := &DB{Driver: DriverPostgres}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("postgres rebind = %q", got)
	}
	lite := &DB{Driver: DriverSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite rebind = %q", got)
	}
}

func TestBlob_RoundTrip(t *testing.T) {
	inv := component.NewInventory(4)
	inv.Slots[2] = &component.Item{ID: "sword_iron", Tool: component.ToolSword, Amount: 1}
	b, err := encodeBlob(inv)
	if err != nil {
		t.Fatal(err)
	}
	var got component.Inventory
	if err := decodeBlob(b, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Slots) != 4 || got.Slots[2] == nil || got.Slots[2].ID != "sword_iron" {
		t.Fatalf("inventory = %+v", got)
	}
	if err := decodeBlob([]byte("not zstd"), &got); err == nil {
		t.Fatal("garbage blob decoded")
	}
}

func TestCharacterRepo_LoadOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewCharacterRepo(openTestDB(t))

	if _, err := repo.LoadByName(ctx, "ayla"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	c, err := repo.LoadOrCreate(ctx, "ayla")
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == 0 || len(c.Inventory.Slots) != DefaultBagSize || c.Waypoint != nil {
		t.Fatalf("created = %+v", c)
	}
	again, err := repo.LoadOrCreate(ctx, "ayla")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != c.ID {
		t.Fatalf("second login created id %d, first %d", again.ID, c.ID)
	}
}

func TestCharacterRepo_BatchUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewCharacterRepo(openTestDB(t))
	a, _ := repo.LoadOrCreate(ctx, "ayla")
	b, _ := repo.LoadOrCreate(ctx, "bren")

	skills := component.NewSkillSet()
	skills.Points = 2
	skills.Unlock("sword.combo")
	wp := &component.Waypoint{Pos: mgl64.Vec3{10, -4, 3}, Time: time.UnixMilli(1700000000000)}
	pets := []component.Pet{{Name: "Rex", Species: "wolf"}}

	err := repo.BatchUpdate(ctx, []CharacterUpdate{
		{ID: a.ID, Skills: skills, Inventory: a.Inventory, Waypoint: wp, Pets: pets},
		{ID: b.ID, Skills: b.Skills, Inventory: b.Inventory},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.LoadByName(ctx, "ayla")
	if err != nil {
		t.Fatal(err)
	}
	if got.Skills.Level("sword.combo") != 1 || got.Skills.Points != 1 {
		t.Fatalf("skills = %+v", got.Skills)
	}
	if got.Waypoint == nil || got.Waypoint.Pos != wp.Pos || !got.Waypoint.Time.Equal(wp.Time) {
		t.Fatalf("waypoint = %+v", got.Waypoint)
	}
	if len(got.Pets) != 1 || got.Pets[0].Name != "Rex" {
		t.Fatalf("pets = %+v", got.Pets)
	}
	other, _ := repo.LoadByName(ctx, "bren")
	if other.Waypoint != nil || len(other.Pets) != 0 {
		t.Fatalf("bren = %+v", other)
	}
}

type fakeWriter struct {
	mu      sync.Mutex
	batches [][]CharacterUpdate
	err     error
	block   chan struct{}
}

func (f *fakeWriter) BatchUpdate(_ context.Context, updates []CharacterUpdate) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, updates)
	return f.err
}

func TestCharacterUpdater_CloseDrains(t *testing.T) {
	w := &fakeWriter{}
	u := NewCharacterUpdater(w, 8, time.Second, zap.NewNop())
	for i := int64(1); i <= 3; i++ {
		u.BatchUpdate([]CharacterUpdate{{ID: i}})
	}
	u.BatchUpdate(nil)
	u.Close()
	if len(w.batches) != 3 {
		t.Fatalf("written batches = %d, want 3", len(w.batches))
	}
	if u.Pending() != 0 {
		t.Fatalf("pending = %d", u.Pending())
	}
	u.BatchUpdate([]CharacterUpdate{{ID: 9}})
	u.Close()
	if len(w.batches) != 3 {
		t.Fatal("batch accepted after close")
	}
}

func TestCharacterUpdater_FullQueueDrops(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	u := NewCharacterUpdater(w, 1, time.Second, zap.NewNop())
	// The first batch may be taken by the writer goroutine; at most two fit.
	for i := int64(1); i <= 4; i++ {
		u.BatchUpdate([]CharacterUpdate{{ID: i}})
	}
	if u.Failed() < 2 {
		t.Fatalf("failed = %d, want at least 2", u.Failed())
	}
	close(w.block)
	u.Close()
}

func TestCharacterUpdater_WriteErrorCounted(t *testing.T) {
	w := &fakeWriter{err: errors.New("disk full")}
	u := NewCharacterUpdater(w, 4, time.Second, zap.NewNop())
	u.BatchUpdate([]CharacterUpdate{{ID: 1}})
	u.Close()
	if u.Failed() != 1 {
		t.Fatalf("failed = %d", u.Failed())
	}
}
