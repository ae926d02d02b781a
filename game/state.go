// Package game defines the game state types for the Ants protocol.
//
// A State is created once, after the setup phase, and then mutated in
// place by the engine at the start of every turn. Strategies receive the
// same pointer for the duration of a single call and must not keep it.
package game

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Me is the owner id the server assigns to the local player.
const Me = 0

// ErrOutOfBounds is returned by mutators for coordinates outside the map.
var ErrOutOfBounds = errors.New("coordinate out of bounds")

// Point is a map coordinate. (0,0) is the top-left square.
type Point struct {
	Row int
	Col int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Ant is a live ant seen this turn.
type Ant struct {
	Point
	Owner int
}

// Hill is an ant hill seen this turn.
type Hill struct {
	Point
	Owner int
}

// Config holds the game settings sent during setup. It never changes
// after the State is built.
type Config struct {
	Width         int
	Height        int
	Turns         int
	TurnTime      int // milliseconds
	LoadTime      int // milliseconds
	ViewRadius2   int
	AttackRadius2 int
	SpawnRadius2  int
	PlayerSeed    int64
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid map dimensions: %dx%d", c.Width, c.Height)
	}
	return nil
}

func (c Config) TurnDuration() time.Duration {
	return time.Duration(c.TurnTime) * time.Millisecond
}

func (c Config) LoadDuration() time.Duration {
	return time.Duration(c.LoadTime) * time.Millisecond
}

// State is the snapshot of everything visible to the bot.
type State struct {
	Config Config
	Turn   int

	ants   map[Point]int
	dead   []Ant
	food   map[Point]struct{}
	water  map[Point]struct{}
	hills  map[Point]int
	orders []Order
	moved  map[Point]struct{}
}

func NewState(cfg Config) *State {
	return &State{
		Config: cfg,
		ants:   make(map[Point]int),
		food:   make(map[Point]struct{}),
		water:  make(map[Point]struct{}),
		hills:  make(map[Point]int),
		moved:  make(map[Point]struct{}),
	}
}

// StartNewTurn drops everything that is only valid for one turn of
// visibility. Water is static and survives.
func (s *State) StartNewTurn() {
	clear(s.ants)
	clear(s.food)
	clear(s.hills)
	clear(s.moved)
	s.dead = s.dead[:0]
	s.orders = s.orders[:0]
}

func (s *State) SetTurn(turn int) {
	s.Turn = turn
}

func (s *State) InBounds(p Point) bool {
	return p.Row >= 0 && p.Row < s.Config.Height && p.Col >= 0 && p.Col < s.Config.Width
}

func (s *State) check(p Point) error {
	if !s.InBounds(p) {
		return fmt.Errorf("%w: %s on %dx%d map", ErrOutOfBounds, p, s.Config.Height, s.Config.Width)
	}
	return nil
}

func (s *State) AddAnt(p Point, owner int) error {
	if err := s.check(p); err != nil {
		return err
	}
	s.ants[p] = owner
	return nil
}

// DeadAnt removes the live ant at p, if any, and remembers the death for
// the rest of the turn.
func (s *State) DeadAnt(p Point, owner int) error {
	if err := s.check(p); err != nil {
		return err
	}
	delete(s.ants, p)
	s.dead = append(s.dead, Ant{Point: p, Owner: owner})
	return nil
}

func (s *State) AddFood(p Point) error {
	if err := s.check(p); err != nil {
		return err
	}
	s.food[p] = struct{}{}
	return nil
}

func (s *State) RemoveFood(p Point) error {
	if err := s.check(p); err != nil {
		return err
	}
	delete(s.food, p)
	return nil
}

func (s *State) AddWater(p Point) error {
	if err := s.check(p); err != nil {
		return err
	}
	s.water[p] = struct{}{}
	return nil
}

func (s *State) AddHill(p Point, owner int) error {
	if err := s.check(p); err != nil {
		return err
	}
	s.hills[p] = owner
	return nil
}

// AntAt returns the owner of the ant at p.
func (s *State) AntAt(p Point) (owner int, ok bool) {
	owner, ok = s.ants[p]
	return owner, ok
}

func (s *State) HasFood(p Point) bool {
	_, ok := s.food[p]
	return ok
}

func (s *State) IsWater(p Point) bool {
	_, ok := s.water[p]
	return ok
}

func (s *State) WaterCount() int { return len(s.water) }

// Ants returns every live ant, sorted by position.
func (s *State) Ants() []Ant {
	out := make([]Ant, 0, len(s.ants))
	for p, owner := range s.ants {
		out = append(out, Ant{Point: p, Owner: owner})
	}
	sortAnts(out)
	return out
}

func (s *State) MyAnts() []Ant {
	return filterAnts(s.Ants(), func(a Ant) bool { return a.Owner == Me })
}

func (s *State) EnemyAnts() []Ant {
	return filterAnts(s.Ants(), func(a Ant) bool { return a.Owner != Me })
}

// DeadAnts lists the deaths reported this turn in the order received.
func (s *State) DeadAnts() []Ant {
	out := make([]Ant, len(s.dead))
	copy(out, s.dead)
	return out
}

func (s *State) Food() []Point { return sortedPoints(s.food) }

func (s *State) Water() []Point { return sortedPoints(s.water) }

func (s *State) Hills() []Hill {
	out := make([]Hill, 0, len(s.hills))
	for p, owner := range s.hills {
		out = append(out, Hill{Point: p, Owner: owner})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].Point, out[j].Point) })
	return out
}

func (s *State) MyHills() []Hill {
	var out []Hill
	for _, h := range s.Hills() {
		if h.Owner == Me {
			out = append(out, h)
		}
	}
	return out
}

func (s *State) EnemyHills() []Hill {
	var out []Hill
	for _, h := range s.Hills() {
		if h.Owner != Me {
			out = append(out, h)
		}
	}
	return out
}

func less(a, b Point) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}

func sortAnts(ants []Ant) {
	sort.Slice(ants, func(i, j int) bool { return less(ants[i].Point, ants[j].Point) })
}

func filterAnts(ants []Ant, keep func(Ant) bool) []Ant {
	out := ants[:0]
	for _, a := range ants {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func sortedPoints(set map[Point]struct{}) []Point {
	out := make([]Point, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
