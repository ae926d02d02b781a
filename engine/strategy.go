package engine

import "github.com/brensch/antsbot/game"

// Strategy is the bot logic driven by the engine.
//
// Initialize runs once, right after setup. TakeTurn runs once per turn
// after all updates are applied. The state is only valid for the duration
// of the call. A returned error ends the session like a protocol error.
type Strategy interface {
	Initialize(state *game.State) error
	TakeTurn(state *game.State) error
}

// StrategyFuncs adapts plain functions to Strategy. Nil fields are no-ops.
type StrategyFuncs struct {
	InitializeFunc func(state *game.State) error
	TakeTurnFunc   func(state *game.State) error
}

func (f StrategyFuncs) Initialize(state *game.State) error {
	if f.InitializeFunc == nil {
		return nil
	}
	return f.InitializeFunc(state)
}

func (f StrategyFuncs) TakeTurn(state *game.State) error {
	if f.TakeTurnFunc == nil {
		return nil
	}
	return f.TakeTurnFunc(state)
}

// Observer sees the state after setup and after every turn, e.g. to
// record it. Observer errors are logged and otherwise ignored.
type Observer interface {
	OnSetup(cfg game.Config) error
	OnTurn(state *game.State) error
}
