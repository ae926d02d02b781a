package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brensch/antsbot/game"
)

// ClassifySetup parses one setup line. ok is false for blank lines.
func ClassifySetup(line string) (rec Setup, ok bool, err error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Setup{}, false, nil
	}

	key, known := setupKeys[tokens[0]]
	if !known {
		return Setup{}, false, &LineError{Kind: ErrUnknownSetupKey, Line: line, Token: tokens[0]}
	}
	if key == SetupTurn {
		return Setup{Key: key}, true, nil
	}
	if len(tokens) < 2 {
		return Setup{}, false, malformed(line, fmt.Errorf("%s needs a value", tokens[0]))
	}

	v, err := strconv.ParseInt(tokens[1], 10, 64)
	if err != nil {
		return Setup{}, false, malformed(line, err)
	}
	return Setup{Key: key, Value: v}, true, nil
}

// ParseSetup folds the setup phase into a Config. A key that appears more
// than once keeps its last value.
func ParseSetup(lines []string) (game.Config, error) {
	var cfg game.Config
	for _, line := range lines {
		rec, ok, err := ClassifySetup(line)
		if err != nil {
			return game.Config{}, err
		}
		if ok {
			rec.apply(&cfg)
		}
	}
	if err := cfg.Validate(); err != nil {
		return game.Config{}, malformed("", err)
	}
	return cfg, nil
}

// ClassifyUpdate parses one update line. ok is false for blank lines.
func ClassifyUpdate(line string) (rec Update, ok bool, err error) {
	tokens := strings.Fields(line)
	switch {
	case len(tokens) == 0:
		return Update{}, false, nil

	case len(tokens) >= 3:
		kind, known := updateTokens[tokens[0]]
		if !known {
			return Update{}, false, &LineError{Kind: ErrUnknownUpdateToken, Line: line, Token: tokens[0]}
		}
		if len(tokens) < 4 && needsOwner[kind] {
			return Update{}, false, malformed(line, fmt.Errorf("%s event needs an owner", kind))
		}
		// Only ants, hills and dead ants carry an owner. Extra tokens on
		// other events are ignored.
		n := 2
		if len(tokens) >= 4 && (needsOwner[kind] || kind == UpdateDeadAnt) {
			n = 3
		}
		ints, err := atoiAll(tokens[1 : 1+n])
		if err != nil {
			return Update{}, false, malformed(line, err)
		}
		rec = Update{Kind: kind, Point: game.Point{Row: ints[0], Col: ints[1]}, Owner: -1}
		if n == 3 {
			rec.Owner = ints[2]
		}
		return rec, true, nil

	case len(tokens) == 2 && tokens[0] == "turn":
		n, err := strconv.Atoi(tokens[1])
		if err != nil {
			return Update{}, false, malformed(line, err)
		}
		return Update{Kind: UpdateTurn, Turn: n}, true, nil
	}

	return Update{}, false, &LineError{Kind: ErrUnknownUpdateToken, Line: line}
}

// ParseUpdates classifies a whole update phase, stopping at the first
// bad line.
func ParseUpdates(lines []string) ([]Update, error) {
	out := make([]Update, 0, len(lines))
	for _, line := range lines {
		rec, ok, err := ClassifyUpdate(line)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Apply performs a single update on the state.
func Apply(s *game.State, u Update) error {
	var err error
	switch u.Kind {
	case UpdateTurn:
		s.SetTurn(u.Turn)
	case UpdateAnt:
		err = s.AddAnt(u.Point, u.Owner)
	case UpdateFood:
		err = s.AddFood(u.Point)
	case UpdateRemoveFood:
		err = s.RemoveFood(u.Point)
	case UpdateWater:
		err = s.AddWater(u.Point)
	case UpdateDeadAnt:
		err = s.DeadAnt(u.Point, u.Owner)
	case UpdateHill:
		err = s.AddHill(u.Point, u.Owner)
	default:
		err = fmt.Errorf("unhandled update kind %d", u.Kind)
	}
	if err != nil {
		return malformed(u.String(), err)
	}
	return nil
}

// String renders the update back into its wire form.
func (u Update) String() string {
	if u.Kind == UpdateTurn {
		return fmt.Sprintf("turn %d", u.Turn)
	}
	var token string
	for t, k := range updateTokens {
		if k == u.Kind {
			token = t
		}
	}
	if u.Owner >= 0 {
		return fmt.Sprintf("%s %d %d %d", token, u.Point.Row, u.Point.Col, u.Owner)
	}
	return fmt.Sprintf("%s %d %d", token, u.Point.Row, u.Point.Col)
}

func atoiAll(tokens []string) ([]int, error) {
	out := make([]int, len(tokens))
	for i, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
