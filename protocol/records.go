// Package protocol turns raw Ants input lines into typed records.
//
// Every line is classified exactly once into a tagged record (a kind plus
// its payload). Nothing in this package touches IO; the engine feeds it
// lines that are already trimmed and lower-cased.
package protocol

import "github.com/brensch/antsbot/game"

// Phase terminators.
const (
	Ready = "ready"
	Go    = "go"
	End   = "end"
)

type SetupKey int

const (
	SetupCols SetupKey = iota
	SetupRows
	SetupTurn
	SetupTurns
	SetupTurnTime
	SetupLoadTime
	SetupViewRadius2
	SetupAttackRadius2
	SetupSpawnRadius2
	SetupPlayerSeed
)

var setupKeys = map[string]SetupKey{
	"cols":          SetupCols,
	"rows":          SetupRows,
	"turn":          SetupTurn,
	"turns":         SetupTurns,
	"turntime":      SetupTurnTime,
	"loadtime":      SetupLoadTime,
	"viewradius2":   SetupViewRadius2,
	"attackradius2": SetupAttackRadius2,
	"spawnradius2":  SetupSpawnRadius2,
	"player_seed":   SetupPlayerSeed,
}

func (k SetupKey) String() string {
	for name, key := range setupKeys {
		if key == k {
			return name
		}
	}
	return "unknown"
}

// Setup is one "<key> <int>" line of the setup phase.
type Setup struct {
	Key   SetupKey
	Value int64
}

// apply stores the value in the matching Config field. SetupTurn carries
// nothing during setup and is dropped.
func (s Setup) apply(cfg *game.Config) {
	v := int(s.Value)
	switch s.Key {
	case SetupCols:
		cfg.Width = v
	case SetupRows:
		cfg.Height = v
	case SetupTurns:
		cfg.Turns = v
	case SetupTurnTime:
		cfg.TurnTime = v
	case SetupLoadTime:
		cfg.LoadTime = v
	case SetupViewRadius2:
		cfg.ViewRadius2 = v
	case SetupAttackRadius2:
		cfg.AttackRadius2 = v
	case SetupSpawnRadius2:
		cfg.SpawnRadius2 = v
	case SetupPlayerSeed:
		cfg.PlayerSeed = s.Value
	}
}

type UpdateKind int

const (
	UpdateTurn UpdateKind = iota
	UpdateAnt
	UpdateFood
	UpdateRemoveFood
	UpdateWater
	UpdateDeadAnt
	UpdateHill
)

var updateTokens = map[string]UpdateKind{
	"a": UpdateAnt,
	"f": UpdateFood,
	"r": UpdateRemoveFood,
	"w": UpdateWater,
	"d": UpdateDeadAnt,
	"h": UpdateHill,
}

// needsOwner marks the events whose owner token is mandatory.
var needsOwner = map[UpdateKind]bool{
	UpdateAnt:  true,
	UpdateHill: true,
}

func (k UpdateKind) String() string {
	switch k {
	case UpdateTurn:
		return "turn"
	case UpdateAnt:
		return "ant"
	case UpdateFood:
		return "food"
	case UpdateRemoveFood:
		return "remove_food"
	case UpdateWater:
		return "water"
	case UpdateDeadAnt:
		return "dead_ant"
	case UpdateHill:
		return "hill"
	}
	return "unknown"
}

// Update is one line of an update phase. Point and Owner are set for
// entity events, Turn for UpdateTurn. Owner is -1 when a dead-ant event
// does not name one.
type Update struct {
	Kind  UpdateKind
	Point game.Point
	Owner int
	Turn  int
}
