package game

import (
	"errors"
	"testing"
)

func newTestState() *State {
	return NewState(Config{Width: 10, Height: 8, Turns: 500, ViewRadius2: 77, AttackRadius2: 5, SpawnRadius2: 1})
}

func TestStartNewTurn_KeepsWaterClearsRest(t *testing.T) {
	s := newTestState()
	must(t, s.AddAnt(Point{1, 1}, Me))
	must(t, s.AddFood(Point{2, 2}))
	must(t, s.AddHill(Point{3, 3}, 1))
	must(t, s.AddWater(Point{4, 4}))
	must(t, s.DeadAnt(Point{5, 5}, 1))
	must(t, s.IssueOrder(Point{1, 1}, East))
	s.SetTurn(3)

	s.StartNewTurn()
	t.Logf("after new turn:\n%s", s.Dump())

	if n := len(s.Ants()); n != 0 {
		t.Errorf("ants: expected 0, got %d", n)
	}
	if n := len(s.Food()); n != 0 {
		t.Errorf("food: expected 0, got %d", n)
	}
	if n := len(s.Hills()); n != 0 {
		t.Errorf("hills: expected 0, got %d", n)
	}
	if n := len(s.DeadAnts()); n != 0 {
		t.Errorf("dead: expected 0, got %d", n)
	}
	if n := len(s.Orders()); n != 0 {
		t.Errorf("orders: expected 0, got %d", n)
	}
	if !s.IsWater(Point{4, 4}) || s.WaterCount() != 1 {
		t.Errorf("water should persist, got %v", s.Water())
	}
	if s.Turn != 3 {
		t.Errorf("turn should be untouched, got %d", s.Turn)
	}
}

func TestDeadAntRemovesAnt(t *testing.T) {
	s := newTestState()
	p := Point{3, 4}
	must(t, s.AddAnt(p, 2))
	must(t, s.DeadAnt(p, 2))

	if _, ok := s.AntAt(p); ok {
		t.Fatalf("ant at %s should be gone", p)
	}
	dead := s.DeadAnts()
	if len(dead) != 1 || dead[0].Point != p || dead[0].Owner != 2 {
		t.Fatalf("unexpected dead list %+v", dead)
	}
}

func TestRemoveFood(t *testing.T) {
	s := newTestState()
	p := Point{5, 5}
	must(t, s.AddFood(p))
	must(t, s.RemoveFood(p))
	if s.HasFood(p) {
		t.Fatalf("food at %s should be gone", p)
	}
}

func TestResightingIsIdempotent(t *testing.T) {
	s := newTestState()
	p := Point{2, 7}
	must(t, s.AddAnt(p, Me))
	must(t, s.AddAnt(p, Me))
	if n := len(s.Ants()); n != 1 {
		t.Fatalf("expected 1 ant, got %d", n)
	}

	// A later sighting wins.
	must(t, s.AddAnt(p, 3))
	if owner, _ := s.AntAt(p); owner != 3 {
		t.Fatalf("expected owner 3, got %d", owner)
	}
	must(t, s.AddHill(p, 1))
	must(t, s.AddHill(p, 2))
	if hills := s.Hills(); len(hills) != 1 || hills[0].Owner != 2 {
		t.Fatalf("unexpected hills %+v", hills)
	}
}

func TestWaterIsMonotonic(t *testing.T) {
	s := newTestState()
	prev := 0
	for turn, pts := range [][]Point{{{0, 0}}, {{0, 0}, {0, 1}}, {}, {{7, 9}}} {
		s.StartNewTurn()
		for _, p := range pts {
			must(t, s.AddWater(p))
		}
		if s.WaterCount() < prev {
			t.Fatalf("turn %d: water shrank from %d to %d", turn, prev, s.WaterCount())
		}
		prev = s.WaterCount()
	}
	if prev != 3 {
		t.Fatalf("expected 3 water squares, got %d", prev)
	}
}

func TestOutOfBounds(t *testing.T) {
	s := newTestState()
	cases := []Point{{-1, 0}, {0, -1}, {8, 0}, {0, 10}}
	for _, p := range cases {
		if err := s.AddFood(p); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("AddFood(%s): expected ErrOutOfBounds, got %v", p, err)
		}
	}
	if err := s.AddAnt(Point{7, 9}, Me); err != nil {
		t.Errorf("corner should be in bounds: %v", err)
	}
}

func TestMyAndEnemyAnts(t *testing.T) {
	s := newTestState()
	must(t, s.AddAnt(Point{1, 1}, Me))
	must(t, s.AddAnt(Point{0, 5}, 1))
	must(t, s.AddAnt(Point{0, 2}, Me))
	must(t, s.AddHill(Point{6, 6}, Me))
	must(t, s.AddHill(Point{6, 1}, 2))

	mine := s.MyAnts()
	if len(mine) != 2 || mine[0].Point != (Point{0, 2}) || mine[1].Point != (Point{1, 1}) {
		t.Errorf("unexpected my ants %+v", mine)
	}
	if enemy := s.EnemyAnts(); len(enemy) != 1 || enemy[0].Owner != 1 {
		t.Errorf("unexpected enemy ants %+v", enemy)
	}
	if h := s.MyHills(); len(h) != 1 || h[0].Point != (Point{6, 6}) {
		t.Errorf("unexpected my hills %+v", h)
	}
	if h := s.EnemyHills(); len(h) != 1 || h[0].Owner != 2 {
		t.Errorf("unexpected enemy hills %+v", h)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Width: 0, Height: 4}).Validate(); err == nil {
		t.Error("expected error for zero width")
	}
	if err := (Config{Width: 4, Height: 4}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	cfg := Config{TurnTime: 1000, LoadTime: 3000}
	if cfg.TurnDuration().Seconds() != 1 || cfg.LoadDuration().Seconds() != 3 {
		t.Errorf("unexpected durations %v %v", cfg.TurnDuration(), cfg.LoadDuration())
	}
}

func TestDump(t *testing.T) {
	s := NewState(Config{Width: 4, Height: 2})
	must(t, s.AddAnt(Point{0, 0}, Me))
	must(t, s.AddHill(Point{0, 1}, 1))
	must(t, s.AddFood(Point{1, 2}))
	must(t, s.AddWater(Point{1, 3}))

	want := "Turn=0 Size=2x4 Ants=1 Food=1 Water=1 Hills=1 Orders=0\naB..\n..*%\n"
	if got := s.Dump(); got != want {
		t.Fatalf("dump mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
