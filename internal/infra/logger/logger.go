// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Config selects where log lines go and how verbose they are.
type Config struct {
	Output string // "stdout", "stderr" or "file"
	Level  string // "debug", "info", "warn", "error"
	File   string // log file path, used when Output is "file"
}

// Init configures the global logger. Console output is colored and carries
// the caller at debug level; file output is JSON. The returned closer
// releases the log file and is a no-op for console output.
func Init(cfg Config) (io.Closer, error) {
	level := parseLevel(cfg.Level)

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.TimeOnly
	zerolog.CallerMarshalFunc = shortCaller

	var (
		logger zerolog.Logger
		closer io.Closer = nopCloser{}
	)
	switch output := strings.ToLower(cfg.Output); output {
	case "stdout", "stderr", "":
		out := os.Stdout
		if output == "stderr" {
			out = os.Stderr
		}
		writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
		if level <= zerolog.DebugLevel {
			writer.PartsOrder = []string{"time", "level", "message", "caller"}
			writer.FormatCaller = func(i any) string {
				s, _ := i.(string)
				return "(" + s + ")"
			}
		}
		logger = zerolog.New(writer).With().Timestamp().Logger()

	default:
		if cfg.File == "" {
			return nil, errors.New("log file path is required for file output")
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open log file")
		}
		logger = zerolog.New(f).With().Timestamp().Logger()
		closer = f
	}

	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	zlog.Logger = logger
	return closer, nil
}

// parseLevel parses a level name. Unknown names fall back to info.
func parseLevel(level string) zerolog.Level {
	if strings.EqualFold(level, "warning") {
		return zerolog.WarnLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// shortCaller trims a caller path to its package directory and file.
func shortCaller(_ uintptr, file string, line int) string {
	parts := strings.Split(file, string(filepath.Separator))
	if len(parts) > 1 {
		file = filepath.Join(parts[len(parts)-2:]...)
	} else {
		file = filepath.Base(file)
	}
	return file + ":" + strconv.Itoa(line)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
