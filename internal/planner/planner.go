package planner

import "smartcab-rl/internal/traffic"

// Point is a grid position or a unit heading. Headings use screen
// coordinates: east is (1,0) and south is (0,1).
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	East  = Point{X: 1}
	West  = Point{X: -1}
	North = Point{Y: -1}
	South = Point{Y: 1}
)

// Headings lists the four unit headings.
var Headings = [...]Point{East, South, West, North}

// TurnRight returns the heading after a right turn.
func (p Point) TurnRight() Point { return Point{X: -p.Y, Y: p.X} }

// TurnLeft returns the heading after a left turn.
func (p Point) TurnLeft() Point { return Point{X: p.Y, Y: -p.X} }

// Wrap maps p onto a grid of the given dimensions.
func (p Point) Wrap(dims Point) Point {
	return Point{X: mod(p.X, dims.X), Y: mod(p.Y, dims.Y)}
}

// Add returns p+o.
func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }

// Manhattan is the plain (non-wrapping) L1 distance between p and o.
func (p Point) Manhattan(o Point) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

func mod(a, b int) int {
	if b <= 0 {
		return a
	}
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Delta returns the shortest signed displacement from pos to dest on a
// toroidal grid, per axis. When both directions around an axis are the same
// length, the heading decides: keep going if it already runs along the
// axis, otherwise take the direction a right turn would face.
func Delta(pos, heading, dest, dims Point) Point {
	return Point{
		X: axisDelta(pos.X, dest.X, dims.X, heading.X, -heading.Y),
		Y: axisDelta(pos.Y, dest.Y, dims.Y, heading.Y, heading.X),
	}
}

// axisDelta resolves one axis. along is the heading component on this axis,
// right is the sign a right turn would travel in on this axis.
func axisDelta(loc, dest, size, along, right int) int {
	// up travels toward increasing coordinates, down toward decreasing ones.
	var up, down int
	if dest > loc {
		up, down = dest-loc, loc+size-dest
	} else {
		up, down = dest+size-loc, loc-dest
	}
	switch {
	case up == down:
		if along != 0 {
			return up * along
		}
		return up * right
	case up < down:
		return up
	default:
		return -down
	}
}

// NextAction computes the heading-relative move toward dest. It never
// returns traffic.None: on arrival both deltas are zero and the result is a
// deterministic left.
func NextAction(pos, heading, dest, dims Point) traffic.Action {
	d := Delta(pos, heading, dest, dims)
	if heading.X != 0 {
		if d.X*heading.X > 0 {
			return traffic.Forward
		}
		if d.Y*heading.X > 0 {
			return traffic.Right
		}
		return traffic.Left
	}
	if d.Y*heading.Y > 0 {
		return traffic.Forward
	}
	if d.X*heading.Y < 0 {
		return traffic.Right
	}
	return traffic.Left
}

// Locator exposes the geometry the planner needs from the world.
type Locator interface {
	Location() Point
	Heading() Point
	Dims() Point
}

// Planner tracks a destination for one agent and proposes waypoints.
type Planner struct {
	loc         Locator
	destination Point
	routed      bool
}

func New(loc Locator) *Planner {
	return &Planner{loc: loc}
}

// RouteTo sets the destination for the current trip.
func (p *Planner) RouteTo(dest Point) {
	p.destination = dest
	p.routed = true
}

// NextWaypoint returns the next move toward the destination. Without a
// destination it proposes forward.
func (p *Planner) NextWaypoint() traffic.Action {
	if !p.routed {
		return traffic.Forward
	}
	return NextAction(p.loc.Location(), p.loc.Heading(), p.destination, p.loc.Dims())
}
