// Package engine runs the Ants protocol loop.
//
// The engine reads the input line by line, buffers each phase until its
// terminator arrives, applies the phase to the single game.State it owns
// and hands that state to the Strategy. After every "ready" and "go" it
// writes the strategy's orders followed by a "go" line. Any malformed input
// ends the session: nothing more is written and Run returns the error.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/brensch/antsbot/game"
	"github.com/brensch/antsbot/logging"
	"github.com/brensch/antsbot/protocol"
)

// ErrUnexpectedEOF is returned when the input closes before "end".
var ErrUnexpectedEOF = errors.New("input closed before end")

// LineSink receives every raw input line before it is interpreted.
type LineSink interface {
	Append(line string) error
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithDiagnostics(d Diagnostics) Option {
	return func(e *Engine) { e.diag = d }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

func WithTranscript(s LineSink) Option {
	return func(e *Engine) { e.transcript = s }
}

// Stats counts what the engine has processed so far.
type Stats struct {
	Lines  int
	Turns  int
	Orders int
}

type Engine struct {
	in  *bufio.Reader
	out *bufio.Writer

	log        *slog.Logger
	diag       Diagnostics
	observers  []Observer
	transcript LineSink

	state  *game.State
	buffer []string
	stats  Stats
}

func New(r io.Reader, w io.Writer, opts ...Option) *Engine {
	e := &Engine{
		in:   bufio.NewReader(r),
		out:  bufio.NewWriter(w),
		log:  logging.NewNop(),
		diag: NopDiagnostics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Stats() Stats { return e.stats }

// State returns the state built at setup, or nil before "ready".
func (e *Engine) State() *game.State { return e.state }

// Run drives the session until "end" (nil error), the input closes, the
// context is cancelled or a line fails to parse. Errors are reported to
// the diagnostics sink before being returned.
func (e *Engine) Run(ctx context.Context, strategy Strategy) error {
	err := e.loop(ctx, strategy)
	if err != nil {
		e.log.Error("session aborted", "error", err, "turn", e.turn(), "lines", e.stats.Lines)
		e.diag.Report(err, e.state)
		return err
	}
	e.log.Info("session ended", "turns", e.stats.Turns, "lines", e.stats.Lines)
	return nil
}

func (e *Engine) loop(ctx context.Context, strategy Strategy) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := e.readLine()
		if err != nil {
			return err
		}

		switch line {
		case protocol.Ready:
			if err := e.setup(strategy); err != nil {
				return err
			}
		case protocol.Go:
			if err := e.update(strategy); err != nil {
				return err
			}
		case protocol.End:
			return nil
		default:
			e.buffer = append(e.buffer, line)
		}
	}
}

// readLine returns the next normalised line. A final line without a
// trailing newline is still returned; the read after it reports EOF.
func (e *Engine) readLine() (string, error) {
	raw, err := e.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && raw != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrUnexpectedEOF
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	e.stats.Lines++
	if e.transcript != nil {
		if err := e.transcript.Append(strings.TrimRight(raw, "\r\n")); err != nil {
			e.log.Warn("transcript append failed", "error", err)
		}
	}
	return strings.ToLower(strings.TrimSpace(raw)), nil
}

func (e *Engine) setup(strategy Strategy) error {
	if e.state != nil {
		return fmt.Errorf("setup: %w", &protocol.LineError{
			Kind: protocol.ErrMalformedLine,
			Line: protocol.Ready,
			Err:  errors.New("ready received twice"),
		})
	}
	start := time.Now()
	cfg, err := protocol.ParseSetup(e.buffer)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	e.state = game.NewState(cfg)
	e.log.Info("setup complete",
		"rows", cfg.Height, "cols", cfg.Width, "turns", cfg.Turns,
		"turntime", cfg.TurnDuration(), "loadtime", cfg.LoadDuration())

	if err := strategy.Initialize(e.state); err != nil {
		return fmt.Errorf("initialize strategy: %w", err)
	}
	for _, o := range e.observers {
		if err := o.OnSetup(cfg); err != nil {
			e.log.Warn("observer setup failed", "error", err)
		}
	}

	e.buffer = e.buffer[:0]
	e.log.Debug("setup phase done", "elapsed", time.Since(start))
	return e.finishTurn()
}

func (e *Engine) update(strategy Strategy) error {
	if e.state == nil {
		return fmt.Errorf("update: %w", &protocol.LineError{
			Kind: protocol.ErrMalformedLine,
			Line: protocol.Go,
			Err:  errors.New("go received before ready"),
		})
	}
	start := time.Now()

	e.state.StartNewTurn()
	updates, err := protocol.ParseUpdates(e.buffer)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	for _, u := range updates {
		if err := protocol.Apply(e.state, u); err != nil {
			return fmt.Errorf("update: %w", err)
		}
	}

	if err := strategy.TakeTurn(e.state); err != nil {
		return fmt.Errorf("turn %d: strategy: %w", e.state.Turn, err)
	}
	e.stats.Turns++
	for _, o := range e.observers {
		if err := o.OnTurn(e.state); err != nil {
			e.log.Warn("observer turn failed", "turn", e.state.Turn, "error", err)
		}
	}

	e.buffer = e.buffer[:0]
	e.log.Debug("turn done",
		"turn", e.state.Turn, "updates", len(updates), "my_ants", len(e.state.MyAnts()),
		"orders", len(e.state.Orders()), "elapsed", time.Since(start))
	return e.finishTurn()
}

// finishTurn writes pending orders and the go signal, then flushes: the
// server waits for "go" before sending the next phase.
func (e *Engine) finishTurn() error {
	if e.state != nil {
		for _, o := range e.state.Orders() {
			if _, err := fmt.Fprintln(e.out, o.String()); err != nil {
				return fmt.Errorf("write order: %w", err)
			}
			e.stats.Orders++
		}
	}
	if _, err := e.out.WriteString(protocol.Go + "\n"); err != nil {
		return fmt.Errorf("write go: %w", err)
	}
	if err := e.out.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func (e *Engine) turn() int {
	if e.state == nil {
		return 0
	}
	return e.state.Turn
}
