package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brensch/antsbot/game"
)

func TestRecorder_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewRecorder(dir, "g1")
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	if err := rec.OnSetup(game.Config{Width: 8, Height: 6, Turns: 10, PlayerSeed: 7}); err != nil {
		t.Fatalf("OnSetup: %v", err)
	}

	s := game.NewState(game.Config{Width: 8, Height: 6})

	// Turn 1: one of our ants, a food, two water squares, an order.
	s.StartNewTurn()
	s.SetTurn(1)
	mustNil(t, s.AddAnt(game.Point{Row: 2, Col: 3}, game.Me))
	mustNil(t, s.AddFood(game.Point{Row: 4, Col: 4}))
	mustNil(t, s.AddWater(game.Point{Row: 0, Col: 0}))
	mustNil(t, s.AddWater(game.Point{Row: 0, Col: 1}))
	mustNil(t, s.IssueOrder(game.Point{Row: 2, Col: 3}, game.South))
	mustNil(t, rec.OnTurn(s))

	// Turn 2: an enemy hill, a death, one more water square.
	s.StartNewTurn()
	s.SetTurn(2)
	mustNil(t, s.AddHill(game.Point{Row: 5, Col: 7}, 1))
	mustNil(t, s.DeadAnt(game.Point{Row: 3, Col: 3}, game.Me))
	mustNil(t, s.AddWater(game.Point{Row: 0, Col: 1}))
	mustNil(t, s.AddWater(game.Point{Row: 1, Col: 1}))
	mustNil(t, rec.OnTurn(s))

	path, err := rec.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if path != filepath.Join(dir, "g1.parquet") {
		t.Fatalf("unexpected path %s", path)
	}
	if _, err := os.Stat(filepath.Join(dir, "tmp", "g1.parquet")); !os.IsNotExist(err) {
		t.Fatalf("tmp file should be gone, stat err=%v", err)
	}

	rows, err := ReadTurns(path)
	if err != nil {
		t.Fatalf("ReadTurns: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	r1, r2 := rows[0], rows[1]
	if r1.GameID != "g1" || r1.Turn != 1 || r1.Width != 8 || r1.Height != 6 {
		t.Errorf("unexpected header %+v", r1)
	}
	if len(r1.AntRow) != 1 || r1.AntRow[0] != 2 || r1.AntCol[0] != 3 || r1.AntOwner[0] != 0 {
		t.Errorf("unexpected ants %v %v %v", r1.AntRow, r1.AntCol, r1.AntOwner)
	}
	if len(r1.NewWaterRow) != 2 {
		t.Errorf("expected 2 new water squares on turn 1, got %d", len(r1.NewWaterRow))
	}
	if r1.OrderDir != "s" || len(r1.OrderRow) != 1 {
		t.Errorf("unexpected orders %v %q", r1.OrderRow, r1.OrderDir)
	}

	if len(r2.NewWaterRow) != 1 || r2.NewWaterRow[0] != 1 || r2.NewWaterCol[0] != 1 {
		t.Errorf("turn 2 should only store (1,1) as new water, got %v %v", r2.NewWaterRow, r2.NewWaterCol)
	}
	if len(r2.HillOwner) != 1 || r2.HillOwner[0] != 1 {
		t.Errorf("unexpected hills %v", r2.HillOwner)
	}
	if len(r2.DeadRow) != 1 || len(r2.AntRow) != 0 || r2.OrderDir != "" {
		t.Errorf("unexpected turn 2 row %+v", r2)
	}
}

func TestRecorder_EmptyGameLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewRecorder(dir, "empty")
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	path, err := rec.Finalize()
	if err != nil || path != "" {
		t.Fatalf("path=%q err=%v", path, err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "tmp"))
	if len(entries) != 0 {
		t.Fatalf("tmp dir should be empty, has %d entries", len(entries))
	}
	// A second Finalize is a no-op.
	if _, err := rec.Finalize(); err != nil {
		t.Fatalf("second Finalize: %v", err)
	}
}

func TestTranscript_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "game.txt")
	tr, err := OpenTranscript(path)
	if err != nil {
		t.Fatalf("OpenTranscript: %v", err)
	}
	lines := []string{"cols 10", "rows 10", "ready", "", "turn 1", "go", "end"}
	for _, l := range lines {
		mustNil(t, tr.Append(l))
	}
	if tr.Lines() != len(lines) {
		t.Fatalf("Lines() = %d", tr.Lines())
	}
	mustNil(t, tr.Close())
	if err := tr.Append("late"); err == nil {
		t.Fatal("append after close should fail")
	}

	got, err := ReadTranscript(path)
	if err != nil {
		t.Fatalf("ReadTranscript: %v", err)
	}
	if len(got) != len(lines) {
		t.Fatalf("got %d lines, want %d: %q", len(got), len(lines), got)
	}
	for i := range lines {
		if got[i] != lines[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], lines[i])
		}
	}
}

func mustNil(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
