package game

import (
	"fmt"
	"strings"
)

// maxDumpSize keeps Dump readable in logs; larger maps only get the summary.
const maxDumpSize = 80

// Dump renders the state as text for diagnostics and test logs.
//
// Grid legend: '%' water, '*' food, 'a'-'j' ants by owner, 'A'-'J' hills
// (an ant standing on a hill shows as the ant), '.' land.
func (s *State) Dump() string {
	if s == nil {
		return "<nil state>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Turn=%d Size=%dx%d Ants=%d Food=%d Water=%d Hills=%d Orders=%d\n",
		s.Turn, s.Config.Height, s.Config.Width, len(s.ants), len(s.food), len(s.water), len(s.hills), len(s.orders))

	h, w := s.Config.Height, s.Config.Width
	if h <= 0 || w <= 0 || h > maxDumpSize || w > maxDumpSize {
		return b.String()
	}

	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			p := Point{Row: r, Col: c}
			b.WriteByte(s.cell(p))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (s *State) cell(p Point) byte {
	if owner, ok := s.ants[p]; ok {
		return ownerChar('a', owner)
	}
	if owner, ok := s.hills[p]; ok {
		return ownerChar('A', owner)
	}
	if _, ok := s.food[p]; ok {
		return '*'
	}
	if _, ok := s.water[p]; ok {
		return '%'
	}
	return '.'
}

func ownerChar(base byte, owner int) byte {
	if owner < 0 || owner > 9 {
		return '?'
	}
	return base + byte(owner)
}
