package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/voxrpg/server/internal/core/ecs"
)

// CellSize is the edge length in blocks of one AOI cell.
const CellSize = 32.0

type cellKey struct {
	cx int32
	cy int32
}

func toCell(p mgl64.Vec3) cellKey {
	return cellKey{cx: int32(math.Floor(p.X() / CellSize)), cy: int32(math.Floor(p.Y() / CellSize))}
}

// AOIGrid buckets positioned entities into vertical columns of cells so
// range queries only visit nearby cells. The physics system keeps it current;
// other systems only read it.
type AOIGrid struct {
	cells map[cellKey]map[ecs.EntityID]struct{}
	at    map[ecs.EntityID]cellKey
}

func NewAOIGrid() *AOIGrid {
	return &AOIGrid{
		cells: make(map[cellKey]map[ecs.EntityID]struct{}),
		at:    make(map[ecs.EntityID]cellKey),
	}
}

// Update places id at p, moving it between cells when needed.
func (g *AOIGrid) Update(id ecs.EntityID, p mgl64.Vec3) {
	k := toCell(p)
	if old, ok := g.at[id]; ok {
		if old == k {
			return
		}
		g.removeFrom(id, old)
	}
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
	g.at[id] = k
}

// Remove takes id out of the grid.
func (g *AOIGrid) Remove(id ecs.EntityID) {
	if k, ok := g.at[id]; ok {
		g.removeFrom(id, k)
	}
}

func (g *AOIGrid) removeFrom(id ecs.EntityID, k cellKey) {
	delete(g.at, id)
	if cell := g.cells[k]; cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Nearby returns the entities in every cell overlapping the square of
// half-width radius around p. Callers filter by exact distance.
func (g *AOIGrid) Nearby(p mgl64.Vec3, radius float64) []ecs.EntityID {
	c := toCell(p)
	span := int32(math.Ceil(radius / CellSize))
	var out []ecs.EntityID
	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			for id := range g.cells[cellKey{cx: c.cx + dx, cy: c.cy + dy}] {
				out = append(out, id)
			}
		}
	}
	return out
}

func (g *AOIGrid) Len() int { return len(g.at) }
