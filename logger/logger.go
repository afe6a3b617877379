// Package logger holds the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once sync.Once
	log  = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Config selects level, destination and format.
type Config struct {
	Level  string // debug, info, warn, error; unknown values fall back to info
	Output string // "stdout", "stderr" (default) or a file path
	Pretty bool   // human-readable console output
}

// Init configures the logger. Only the first call has an effect.
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		level, perr := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if perr != nil || cfg.Level == "" {
			level = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var out io.Writer
		out, err = openOutput(cfg.Output)
		if err != nil {
			out = os.Stderr
		}
		if cfg.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05"}
		}
		log = zerolog.New(out).With().Timestamp().Logger()
		zerolog.DefaultContextLogger = &log
	})
	return err
}

func openOutput(dest string) (io.Writer, error) {
	switch dest {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logger: create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", dest, err)
	}
	return f, nil
}

// Get returns the configured logger.
func Get() *zerolog.Logger {
	return &log
}

func Debug() *zerolog.Event { return log.Debug() }
func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }
