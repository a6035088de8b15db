package component

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Combo counts chained successful hits.
type Combo struct {
	counter    uint32
	LastChange time.Time
}

func (c *Combo) Counter() uint32 { return c.counter }

// Change applies a signed delta, saturating at zero.
func (c *Combo) Change(delta int32, now time.Time) {
	c.counter = uint32(max(0, int64(c.counter)+int64(delta)))
	c.LastChange = now
}

// Reset drops the counter to zero.
func (c *Combo) Reset(now time.Time) {
	c.Change(-int32(c.counter), now)
}

// SkillSet holds unlocked skill levels and unspent points.
type SkillSet struct {
	Skills map[string]uint16 `json:"skills"`
	Points uint16            `json:"points"`
}

func NewSkillSet() SkillSet {
	return SkillSet{Skills: map[string]uint16{}}
}

// Clone returns a copy with its own skill map.
func (s *SkillSet) Clone() SkillSet {
	out := SkillSet{Points: s.Points}
	if s.Skills != nil {
		out.Skills = make(map[string]uint16, len(s.Skills))
		for k, v := range s.Skills {
			out.Skills[k] = v
		}
	}
	return out
}

func (s *SkillSet) Level(skill string) uint16 { return s.Skills[skill] }

// Unlock spends one point to raise skill by a level.
func (s *SkillSet) Unlock(skill string) bool {
	if s.Points == 0 {
		return false
	}
	if s.Skills == nil {
		s.Skills = map[string]uint16{}
	}
	s.Points--
	s.Skills[skill]++
	return true
}

// Waypoint is where a character respawns.
type Waypoint struct {
	Pos  mgl64.Vec3 `json:"pos"`
	Time time.Time  `json:"time"`
}
