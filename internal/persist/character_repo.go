package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxrpg/server/internal/component"
)

var ErrNotFound = errors.New("character not found")

// Character is the stored state of one character.
type Character struct {
	ID        int64
	Name      string
	Skills    component.SkillSet
	Inventory component.Inventory
	Waypoint  *component.Waypoint
	Pets      []component.Pet
}

// CharacterUpdate is one element of a batch write.
type CharacterUpdate struct {
	ID        int64
	Skills    component.SkillSet
	Inventory component.Inventory
	Waypoint  *component.Waypoint
	Pets      []component.Pet
}

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

func (r *CharacterRepo) LoadByName(ctx context.Context, name string) (*Character, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(
		`SELECT id, name, skills, inventory, pets,
		        waypoint_x, waypoint_y, waypoint_z, waypoint_at
		 FROM characters WHERE name = ?`), name)

	var (
		c                 Character
		skills, inv, pets []byte
		wx, wy, wz        sql.NullFloat64
		wat               sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.Name, &skills, &inv, &pets, &wx, &wy, &wz, &wat); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := decodeBlob(skills, &c.Skills); err != nil {
		return nil, fmt.Errorf("character %d skills: %w", c.ID, err)
	}
	if err := decodeBlob(inv, &c.Inventory); err != nil {
		return nil, fmt.Errorf("character %d inventory: %w", c.ID, err)
	}
	if err := decodeBlob(pets, &c.Pets); err != nil {
		return nil, fmt.Errorf("character %d pets: %w", c.ID, err)
	}
	if wx.Valid && wy.Valid && wz.Valid {
		c.Waypoint = &component.Waypoint{
			Pos:  mgl64.Vec3{wx.Float64, wy.Float64, wz.Float64},
			Time: time.UnixMilli(wat.Int64),
		}
	}
	return &c, nil
}

// Create inserts a fresh character and returns it.
func (r *CharacterRepo) Create(ctx context.Context, name string, skills component.SkillSet, inv component.Inventory) (*Character, error) {
	sb, err := encodeBlob(skills)
	if err != nil {
		return nil, err
	}
	ib, err := encodeBlob(inv)
	if err != nil {
		return nil, err
	}
	now := time.Now().UnixMilli()
	c := &Character{Name: name, Skills: skills, Inventory: inv}
	err = r.db.SQL.QueryRowContext(ctx, r.db.rebind(
		`INSERT INTO characters (name, skills, inventory, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`),
		name, sb, ib, now, now,
	).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("create character %q: %w", name, err)
	}
	return c, nil
}

// LoadOrCreate returns the character called name, creating it on first login.
func (r *CharacterRepo) LoadOrCreate(ctx context.Context, name string) (*Character, error) {
	c, err := r.LoadByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return r.Create(ctx, name, component.NewSkillSet(), component.NewInventory(DefaultBagSize))
	}
	return c, err
}

// DefaultBagSize is the bag size of a new character.
const DefaultBagSize = 18

// BatchUpdate writes every update in one transaction. Rows of unknown ids
// are skipped.
func (r *CharacterRepo) BatchUpdate(ctx context.Context, updates []CharacterUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("batch begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.db.rebind(
		`UPDATE characters SET
			skills = ?, inventory = ?, pets = ?,
			waypoint_x = ?, waypoint_y = ?, waypoint_z = ?, waypoint_at = ?,
			updated_at = ?
		 WHERE id = ?`))
	if err != nil {
		return fmt.Errorf("batch prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for i := range updates {
		u := &updates[i]
		sb, err := encodeBlob(u.Skills)
		if err != nil {
			return err
		}
		ib, err := encodeBlob(u.Inventory)
		if err != nil {
			return err
		}
		var pb []byte
		if len(u.Pets) > 0 {
			if pb, err = encodeBlob(u.Pets); err != nil {
				return err
			}
		}
		var wx, wy, wz sql.NullFloat64
		var wat sql.NullInt64
		if u.Waypoint != nil {
			wx = sql.NullFloat64{Float64: u.Waypoint.Pos.X(), Valid: true}
			wy = sql.NullFloat64{Float64: u.Waypoint.Pos.Y(), Valid: true}
			wz = sql.NullFloat64{Float64: u.Waypoint.Pos.Z(), Valid: true}
			wat = sql.NullInt64{Int64: u.Waypoint.Time.UnixMilli(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, sb, ib, pb, wx, wy, wz, wat, now, u.ID); err != nil {
			return fmt.Errorf("update character %d: %w", u.ID, err)
		}
	}
	return tx.Commit()
}
