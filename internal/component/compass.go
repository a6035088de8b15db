package component

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Direction is an 8-way compass heading.
type Direction uint8

const (
	North Direction = iota
	Northeast
	East
	Southeast
	South
	Southwest
	West
	Northwest
)

var directionNames = [...]string{"north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}

func (d Direction) String() string { return directionNames[d%8] }

// DirectionFromAngle maps an angle in degrees, clockwise from north, to its
// sector. Each sector spans 45 degrees with the upper bound belonging to the
// next sector.
func DirectionFromAngle(deg float64) Direction {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return Direction(int(math.Floor((deg+22.5)/45)) % 8)
}

// DirectionFromVec maps a horizontal vector, +y being north and +x east, to
// a heading. The zero vector is North.
func DirectionFromVec(v mgl64.Vec2) Direction {
	if v.X() == 0 && v.Y() == 0 {
		return North
	}
	return DirectionFromAngle(mgl64.RadToDeg(math.Atan2(v.X(), v.Y())))
}

// Distance is a coarse distance bucket.
type Distance uint8

const (
	NextTo Distance = iota
	Near
	Ahead
	Far
	VeryFar
)

var distanceNames = [...]string{"next to", "near", "ahead", "far", "very far"}

func (d Distance) String() string { return distanceNames[d] }

// DistanceFromLength buckets a distance in blocks.
func DistanceFromLength(l float64) Distance {
	switch {
	case l <= 100:
		return NextTo
	case l <= 500:
		return Near
	case l <= 3000:
		return Ahead
	case l <= 10000:
		return Far
	}
	return VeryFar
}
