// Command replay feeds a recorded transcript back through the engine and
// the greedy bot, showing progress in the terminal. It is the quickest
// way to reproduce a crash report from a tournament game.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/antsbot/bot"
	"github.com/brensch/antsbot/engine"
	"github.com/brensch/antsbot/game"
	"github.com/brensch/antsbot/logging"
	"github.com/brensch/antsbot/store"
)

func main() {
	transcriptPath := flag.String("transcript", "", "Transcript file written by antsbot -transcript")
	delay := flag.Duration("delay", 0, "Pause after each turn (e.g. 50ms) to watch the replay")
	recordDir := flag.String("record-dir", "", "If set, also write a parquet recording of the replay")
	noTUI := flag.Bool("no-tui", false, "Log progress lines instead of the interactive view")
	flag.Parse()

	if *transcriptPath == "" {
		log.Fatalf("-transcript is required")
	}
	lines, err := store.ReadTranscript(*transcriptPath)
	if err != nil {
		log.Fatalf("Failed to read transcript: %v", err)
	}
	log.Printf("Loaded %d lines from %s", len(lines), *transcriptPath)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	updates := make(chan TurnUpdate, 64)
	finished := make(chan struct{})
	var result DoneMsg

	opts := []engine.Option{engine.WithObserver(&progressObserver{ctx: ctx, updates: updates, delay: *delay})}
	var rec *store.Recorder
	if *recordDir != "" {
		rec, err = store.NewRecorder(*recordDir, "replay_"+strings.TrimSuffix(baseName(*transcriptPath), ".txt"))
		if err != nil {
			log.Fatalf("Failed to open recorder: %v", err)
		}
		opts = append(opts, engine.WithObserver(rec))
	}

	out := &goCounter{}
	e := engine.New(strings.NewReader(strings.Join(lines, "\n")+"\n"), out, opts...)
	go func() {
		runErr := e.Run(ctx, bot.NewGreedy(logging.NewNop()))
		close(updates)
		result = DoneMsg{Err: runErr, Stats: e.Stats(), Signals: out.signals}
		close(finished)
	}()

	if *noTUI {
		for u := range updates {
			log.Printf("Turn %d: ants=%d enemy=%d food=%d orders=%d", u.Turn, u.MyAnts, u.EnemyAnts, u.Food, u.Orders)
		}
	} else {
		p := tea.NewProgram(initialModel(updates, finished, &result))
		if _, err := p.Run(); err != nil {
			log.Fatal(err)
		}
		// Quitting early stops the engine; drain so it can finish.
		cancel()
		for range updates {
		}
	}
	<-finished

	if rec != nil {
		if path, err := rec.Finalize(); err != nil {
			log.Printf("Recording failed: %v", err)
		} else if path != "" {
			log.Printf("Recording written to: %s", path)
		}
	}

	log.Printf("Replay finished: turns=%d lines=%d go_signals=%d", result.Stats.Turns, result.Stats.Lines, result.Signals)
	switch {
	case result.Err == nil:
	case errors.Is(result.Err, context.Canceled):
		log.Printf("Interrupted")
	default:
		log.Printf("Replay aborted: %v", result.Err)
		os.Exit(1)
	}
}

// TurnUpdate summarises one replayed turn for the view.
type TurnUpdate struct {
	Turn      int
	MyAnts    int
	EnemyAnts int
	Food      int
	Water     int
	Orders    int
}

type DoneMsg struct {
	Err     error
	Stats   engine.Stats
	Signals int
}

type progressObserver struct {
	ctx     context.Context
	updates chan<- TurnUpdate
	delay   time.Duration
}

func (p *progressObserver) OnSetup(game.Config) error { return nil }

func (p *progressObserver) OnTurn(s *game.State) error {
	u := TurnUpdate{
		Turn:      s.Turn,
		MyAnts:    len(s.MyAnts()),
		EnemyAnts: len(s.EnemyAnts()),
		Food:      len(s.Food()),
		Water:     s.WaterCount(),
		Orders:    len(s.Orders()),
	}
	select {
	case p.updates <- u:
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return nil
}

// goCounter swallows engine output, counting go signals.
type goCounter struct {
	signals int
}

func (g *goCounter) Write(p []byte) (int, error) {
	g.signals += strings.Count(string(p), "go\n")
	return len(p), nil
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

type model struct {
	startTime time.Time
	latest    TurnUpdate
	turns     int
	peakAnts  int
	recent    []string
	updates   <-chan TurnUpdate
	finished  <-chan struct{}
	result    *DoneMsg
	done      *DoneMsg
}

func initialModel(updates <-chan TurnUpdate, finished <-chan struct{}, result *DoneMsg) model {
	return model{
		startTime: time.Now(),
		updates:   updates,
		finished:  finished,
		result:    result,
	}
}

type updatesClosedMsg struct{}

func waitForUpdate(updates <-chan TurnUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return u
	}
}

// waitForDone reads result only after finished is closed.
func waitForDone(finished <-chan struct{}, result *DoneMsg) tea.Cmd {
	return func() tea.Msg {
		<-finished
		return *result
	}
}

func (m model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TurnUpdate:
		m.latest = msg
		m.turns++
		if msg.MyAnts > m.peakAnts {
			m.peakAnts = msg.MyAnts
		}
		line := fmt.Sprintf("Turn %3d: ants %d vs %d, food %d, orders %d", msg.Turn, msg.MyAnts, msg.EnemyAnts, msg.Food, msg.Orders)
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > 10 {
			m.recent = m.recent[:10]
		}
		return m, waitForUpdate(m.updates)
	case updatesClosedMsg:
		return m, waitForDone(m.finished, m.result)
	case DoneMsg:
		m.done = &msg
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	turnsPerSec := float64(m.turns) / duration.Seconds()
	if duration.Seconds() < 1 {
		turnsPerSec = 0
	}

	s := fmt.Sprintf("Turn:        %d\n", m.latest.Turn)
	s += fmt.Sprintf("Turns Seen:  %d\n", m.turns)
	s += fmt.Sprintf("My Ants:     %d (peak %d)\n", m.latest.MyAnts, m.peakAnts)
	s += fmt.Sprintf("Enemy Ants:  %d\n", m.latest.EnemyAnts)
	s += fmt.Sprintf("Water Known: %d\n", m.latest.Water)
	s += fmt.Sprintf("Turns/Sec:   %.2f\n\n", turnsPerSec)

	s += "Recent Turns:\n"
	for _, r := range m.recent {
		s += r + "\n"
	}

	if m.done != nil {
		if m.done.Err != nil {
			s += fmt.Sprintf("\nAborted: %v\n", m.done.Err)
		} else {
			s += "\nReplay complete.\n"
		}
	}
	s += "\nPress q to quit.\n"
	return s
}
