// geometry.go implements movement on the wrapped Ants map.

package game

import "fmt"

type Direction byte

const (
	North Direction = 'n'
	East  Direction = 'e'
	South Direction = 's'
	West  Direction = 'w'
)

// AllDirections is in the order the server documents them.
var AllDirections = []Direction{North, East, South, West}

func (d Direction) String() string {
	return string(d)
}

func (d Direction) Valid() bool {
	switch d {
	case North, East, South, West:
		return true
	}
	return false
}

func (d Direction) delta() (dr, dc int) {
	switch d {
	case North:
		return -1, 0
	case South:
		return 1, 0
	case East:
		return 0, 1
	case West:
		return 0, -1
	}
	panic(fmt.Sprintf("invalid direction %q", byte(d)))
}

// Destination is the square reached by one step from p. The map wraps
// at every edge.
func (s *State) Destination(p Point, d Direction) Point {
	dr, dc := d.delta()
	return Point{
		Row: wrap(p.Row+dr, s.Config.Height),
		Col: wrap(p.Col+dc, s.Config.Width),
	}
}

// Distance is the squared euclidean distance between a and b, taking the
// shorter way round each axis. Compare it with the *Radius2 settings.
func (s *State) Distance(a, b Point) int {
	dr := axisDelta(a.Row, b.Row, s.Config.Height)
	dc := axisDelta(a.Col, b.Col, s.Config.Width)
	return dr*dr + dc*dc
}

// Directions lists the moves that bring a closer to b, vertical first.
func (s *State) Directions(a, b Point) []Direction {
	var out []Direction
	h, w := s.Config.Height, s.Config.Width
	if a.Row != b.Row {
		down := wrap(b.Row-a.Row, h)
		if down <= h/2 {
			out = append(out, South)
		} else {
			out = append(out, North)
		}
	}
	if a.Col != b.Col {
		right := wrap(b.Col-a.Col, w)
		if right <= w/2 {
			out = append(out, East)
		} else {
			out = append(out, West)
		}
	}
	return out
}

func (s *State) Passable(p Point) bool {
	return !s.IsWater(p)
}

// Unoccupied reports whether an ant may step onto p this turn.
func (s *State) Unoccupied(p Point) bool {
	if !s.Passable(p) {
		return false
	}
	_, taken := s.ants[p]
	return !taken
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func axisDelta(a, b, n int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if n-d < d {
		return n - d
	}
	return d
}
