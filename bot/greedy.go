// Package bot holds example strategies for the engine.
package bot

import (
	"log/slog"
	"math/rand"

	"github.com/brensch/antsbot/game"
	"github.com/brensch/antsbot/logging"
)

// Greedy sends each ant toward the closest food nobody else is chasing
// and otherwise wanders. It never sends two ants to the same square.
type Greedy struct {
	Log *slog.Logger

	rng *rand.Rand
}

func NewGreedy(log *slog.Logger) *Greedy {
	if log == nil {
		log = logging.NewNop()
	}
	return &Greedy{Log: log}
}

func (g *Greedy) Initialize(state *game.State) error {
	// Seeding from the server keeps replays of a game deterministic.
	g.rng = rand.New(rand.NewSource(state.Config.PlayerSeed))
	g.Log.Info("greedy bot ready", "seed", state.Config.PlayerSeed)
	return nil
}

func (g *Greedy) TakeTurn(state *game.State) error {
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(state.Config.PlayerSeed))
	}

	claimed := make(map[game.Point]struct{})
	targeted := make(map[game.Point]struct{})
	food := state.Food()

	for _, ant := range state.MyAnts() {
		dir, ok := g.chase(state, ant.Point, food, claimed, targeted)
		if !ok {
			dir, ok = g.wander(state, ant.Point, claimed)
		}
		if !ok {
			continue
		}
		if err := state.IssueOrder(ant.Point, dir); err != nil {
			g.Log.Debug("order rejected", "ant", ant.Point.String(), "dir", dir.String(), "error", err)
			continue
		}
		claimed[state.Destination(ant.Point, dir)] = struct{}{}
	}
	return nil
}

func (g *Greedy) chase(state *game.State, from game.Point, food []game.Point, claimed, targeted map[game.Point]struct{}) (game.Direction, bool) {
	best, bestDist := game.Point{}, -1
	for _, f := range food {
		if _, ok := targeted[f]; ok {
			continue
		}
		if d := state.Distance(from, f); bestDist < 0 || d < bestDist {
			best, bestDist = f, d
		}
	}
	if bestDist < 0 {
		return 0, false
	}
	for _, dir := range state.Directions(from, best) {
		if free(state, state.Destination(from, dir), claimed) {
			targeted[best] = struct{}{}
			return dir, true
		}
	}
	return 0, false
}

func (g *Greedy) wander(state *game.State, from game.Point, claimed map[game.Point]struct{}) (game.Direction, bool) {
	for _, i := range g.rng.Perm(len(game.AllDirections)) {
		dir := game.AllDirections[i]
		if free(state, state.Destination(from, dir), claimed) {
			return dir, true
		}
	}
	return 0, false
}

func free(state *game.State, p game.Point, claimed map[game.Point]struct{}) bool {
	if _, ok := claimed[p]; ok {
		return false
	}
	return state.Unoccupied(p)
}
