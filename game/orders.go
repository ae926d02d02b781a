package game

import (
	"errors"
	"fmt"
)

var (
	ErrNotMyAnt       = errors.New("no ant of ours at position")
	ErrAlreadyMoved   = errors.New("ant already has an order this turn")
	ErrBadDirection   = errors.New("invalid direction")
	ErrBlockedByWater = errors.New("destination is water")
)

// Order moves one of our ants a single square.
type Order struct {
	From      Point
	Direction Direction
}

// String renders the order in wire form: "o <row> <col> <dir>".
func (o Order) String() string {
	return fmt.Sprintf("o %d %d %s", o.From.Row, o.From.Col, o.Direction)
}

// IssueOrder queues a move for the ant at p. Orders are written out by
// the engine just before it signals the end of the turn.
func (s *State) IssueOrder(p Point, d Direction) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %q", ErrBadDirection, byte(d))
	}
	if owner, ok := s.ants[p]; !ok || owner != Me {
		return fmt.Errorf("%w %s", ErrNotMyAnt, p)
	}
	if _, ok := s.moved[p]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyMoved, p)
	}
	if !s.Passable(s.Destination(p, d)) {
		return fmt.Errorf("%w: %s %s", ErrBlockedByWater, p, d)
	}
	s.moved[p] = struct{}{}
	s.orders = append(s.orders, Order{From: p, Direction: d})
	return nil
}

// Orders returns the orders issued this turn, oldest first.
func (s *State) Orders() []Order {
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}
