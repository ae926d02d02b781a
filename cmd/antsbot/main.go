// Command antsbot plays one game of Ants.
//
// By default it speaks the protocol on stdin/stdout, which is how the
// tournament runner starts bots. With -ws it dials a websocket game server
// instead. Logs go to stderr; stdout carries nothing but protocol output.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brensch/antsbot/bot"
	"github.com/brensch/antsbot/engine"
	"github.com/brensch/antsbot/logging"
	"github.com/brensch/antsbot/store"
	"github.com/brensch/antsbot/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	logLevel := flag.String("log-level", getEnvOrDefault("ANTS_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", getEnvOrDefault("ANTS_LOG_FORMAT", logging.FormatText), "Log format: text, json, pretty")
	recordDir := flag.String("record-dir", getEnvOrDefault("ANTS_RECORD_DIR", ""), "If set, write a parquet file of every turn into this directory")
	transcriptPath := flag.String("transcript", getEnvOrDefault("ANTS_TRANSCRIPT", ""), "If set, copy all server input to this file for replay")
	diagDir := flag.String("diag-dir", getEnvOrDefault("ANTS_DIAG_DIR", ""), "If set, write an error report here when the game aborts")
	wsURL := flag.String("ws", getEnvOrDefault("ANTS_WS_URL", ""), "Play against a websocket game server instead of stdin/stdout")
	wsTimeout := flag.Duration("ws-connect-timeout", getEnvDurationOrDefault("ANTS_WS_CONNECT_TIMEOUT", 10*time.Second), "Websocket handshake timeout")
	gameID := flag.String("game-id", getEnvOrDefault("ANTS_GAME_ID", ""), "Name for recorded files (default: timestamp)")
	quiet := flag.Bool("quiet", getEnvBoolOrDefault("ANTS_QUIET", false), "Only log warnings and errors")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Printf("%v", err)
		return 2
	}
	if *quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	logger, err := logging.New(os.Stderr, level, *logFormat)
	if err != nil {
		log.Printf("%v", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// The engine only sees ctx between lines, so a blocked stdin read
	// ignores the first signal. Restore default handling after it so a
	// second signal kills the process.
	releaseOnDone(ctx, stop)

	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	if *wsURL != "" {
		cfg := transport.DefaultConfig()
		cfg.ConnectTimeout = *wsTimeout
		conn, err := transport.Dial(ctx, *wsURL, cfg)
		if err != nil {
			logger.Error("websocket dial failed", "url", *wsURL, "error", err)
			return 1
		}
		defer conn.Close()
		in, out = conn, conn
		logger.Info("connected", "url", *wsURL)
	}

	id := *gameID
	if id == "" {
		id = fmt.Sprintf("game_%s", time.Now().Format("20060102_150405"))
	}

	opts := []engine.Option{engine.WithLogger(logger)}

	if *diagDir != "" {
		opts = append(opts, engine.WithDiagnostics(engine.FileDiagnostics{Dir: *diagDir}))
	}

	if *transcriptPath != "" {
		tr, err := store.OpenTranscript(*transcriptPath)
		if err != nil {
			logger.Error("open transcript", "error", err)
			return 1
		}
		defer func() {
			if err := tr.Close(); err != nil {
				logger.Warn("close transcript", "error", err)
			}
		}()
		opts = append(opts, engine.WithTranscript(tr))
	}

	if *recordDir != "" {
		rec, err := store.NewRecorder(*recordDir, id)
		if err != nil {
			logger.Error("open recorder", "error", err)
			return 1
		}
		defer func() {
			path, err := rec.Finalize()
			if err != nil {
				logger.Warn("finalize recording", "error", err)
				return
			}
			if path != "" {
				logger.Info("game recorded", "path", path, "turns", rec.Rows())
			}
		}()
		opts = append(opts, engine.WithObserver(rec))
	}

	e := engine.New(in, out, opts...)
	if err := e.Run(ctx, bot.NewGreedy(logger.With("bot", "greedy"))); err != nil {
		// The engine has already logged and reported the error. Nothing
		// else may reach stdout; the server sees a timeout.
		return 1
	}
	return 0
}

// releaseOnDone calls stop once ctx is done.
func releaseOnDone(ctx context.Context, stop context.CancelFunc) {
	go func() {
		<-ctx.Done()
		stop()
	}()
}

// Environment variable helpers
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
