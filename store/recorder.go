package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/antsbot/game"
)

const turnSchema = "ants_turn_v1"

// TurnRow is one (game, turn) snapshot of what the bot could see, plus the
// orders it gave. Coordinates are stored as parallel row/col columns.
type TurnRow struct {
	GameID string `parquet:"game_id,dict"`
	Turn   int32  `parquet:"turn"`
	Width  int32  `parquet:"width"`
	Height int32  `parquet:"height"`

	AntRow   []int32 `parquet:"ant_row"`
	AntCol   []int32 `parquet:"ant_col"`
	AntOwner []int32 `parquet:"ant_owner"`

	DeadRow []int32 `parquet:"dead_row"`
	DeadCol []int32 `parquet:"dead_col"`

	FoodRow []int32 `parquet:"food_row"`
	FoodCol []int32 `parquet:"food_col"`

	HillRow   []int32 `parquet:"hill_row"`
	HillCol   []int32 `parquet:"hill_col"`
	HillOwner []int32 `parquet:"hill_owner"`

	// Water is cumulative, so only the squares first seen this turn are stored.
	NewWaterRow []int32 `parquet:"new_water_row"`
	NewWaterCol []int32 `parquet:"new_water_col"`

	OrderRow []int32 `parquet:"order_row"`
	OrderCol []int32 `parquet:"order_col"`
	OrderDir string  `parquet:"order_dir"`

	RecordedNs int64 `parquet:"recorded_ns"`
}

// Recorder is an engine observer that writes a TurnRow per turn to a
// parquet file. Rows go to <outDir>/tmp and the file is renamed into
// outDir by Finalize, so readers never see a half-written game.
type Recorder struct {
	gameID string
	outDir string

	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[TurnRow]

	seenWater map[game.Point]struct{}
	rows      int
	now       func() time.Time
}

func NewRecorder(outDir, gameID string) (*Recorder, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	if gameID == "" {
		gameID = fmt.Sprintf("game_%d", time.Now().UnixNano())
	}

	absOut, err := filepath.Abs(outDir)
	if err != nil {
		absOut = outDir
	}
	tmpDir := filepath.Join(absOut, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	name := gameID + ".parquet"
	tmpPath := filepath.Join(tmpDir, name)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[TurnRow](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", turnSchema)
	w.SetKeyValueMetadata("game_id", gameID)

	return &Recorder{
		gameID:    gameID,
		outDir:    absOut,
		tmpPath:   tmpPath,
		outPath:   filepath.Join(absOut, name),
		file:      f,
		writer:    w,
		seenWater: make(map[game.Point]struct{}),
		now:       time.Now,
	}, nil
}

func (r *Recorder) GameID() string  { return r.gameID }
func (r *Recorder) OutPath() string { return r.outPath }
func (r *Recorder) Rows() int       { return r.rows }

func (r *Recorder) OnSetup(cfg game.Config) error {
	r.writer.SetKeyValueMetadata("turns", fmt.Sprint(cfg.Turns))
	r.writer.SetKeyValueMetadata("player_seed", fmt.Sprint(cfg.PlayerSeed))
	return nil
}

func (r *Recorder) OnTurn(s *game.State) error {
	if r.writer == nil {
		return fmt.Errorf("recorder is closed")
	}
	row := r.snapshot(s)
	if _, err := r.writer.Write([]TurnRow{row}); err != nil {
		return fmt.Errorf("write turn %d: %w", s.Turn, err)
	}
	r.rows++
	return nil
}

func (r *Recorder) snapshot(s *game.State) TurnRow {
	row := TurnRow{
		GameID:     r.gameID,
		Turn:       int32(s.Turn),
		Width:      int32(s.Config.Width),
		Height:     int32(s.Config.Height),
		RecordedNs: r.now().UnixNano(),
	}
	for _, a := range s.Ants() {
		row.AntRow = append(row.AntRow, int32(a.Row))
		row.AntCol = append(row.AntCol, int32(a.Col))
		row.AntOwner = append(row.AntOwner, int32(a.Owner))
	}
	for _, a := range s.DeadAnts() {
		row.DeadRow = append(row.DeadRow, int32(a.Row))
		row.DeadCol = append(row.DeadCol, int32(a.Col))
	}
	for _, p := range s.Food() {
		row.FoodRow = append(row.FoodRow, int32(p.Row))
		row.FoodCol = append(row.FoodCol, int32(p.Col))
	}
	for _, h := range s.Hills() {
		row.HillRow = append(row.HillRow, int32(h.Row))
		row.HillCol = append(row.HillCol, int32(h.Col))
		row.HillOwner = append(row.HillOwner, int32(h.Owner))
	}
	for _, p := range s.Water() {
		if _, ok := r.seenWater[p]; ok {
			continue
		}
		r.seenWater[p] = struct{}{}
		row.NewWaterRow = append(row.NewWaterRow, int32(p.Row))
		row.NewWaterCol = append(row.NewWaterCol, int32(p.Col))
	}
	dirs := make([]byte, 0, len(s.Orders()))
	for _, o := range s.Orders() {
		row.OrderRow = append(row.OrderRow, int32(o.From.Row))
		row.OrderCol = append(row.OrderCol, int32(o.From.Col))
		dirs = append(dirs, byte(o.Direction))
	}
	row.OrderDir = string(dirs)
	return row
}

// Finalize closes the parquet writer and moves the file out of tmp/.
// If no turns were recorded the tmp file is removed and "" is returned.
func (r *Recorder) Finalize() (string, error) {
	if r.writer == nil && r.file == nil {
		return "", nil
	}

	var closeErr error
	if r.writer != nil {
		closeErr = r.writer.Close()
		r.writer = nil
	}
	var fileErr error
	if r.file != nil {
		_ = r.file.Sync()
		fileErr = r.file.Close()
		r.file = nil
	}
	if closeErr != nil {
		return "", fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return "", fmt.Errorf("close parquet file: %w", fileErr)
	}

	if r.rows == 0 {
		_ = os.Remove(r.tmpPath)
		return "", nil
	}
	if err := os.Rename(r.tmpPath, r.outPath); err != nil {
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return r.outPath, nil
}

// ReadTurns loads every row of a recorded game.
func ReadTurns(path string) ([]TurnRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := parquet.NewGenericReader[TurnRow](f)
	defer reader.Close()

	rows := make([]TurnRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && n < len(rows) {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows[:n], nil
}
