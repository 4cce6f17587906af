package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano
	Setup("info", "console")
}

// Setup builds the global logger. format is "json" or "console"; anything else
// falls back to console. The zerolog/log package logger is replaced too so
// packages logging through it share the configuration.
func Setup(levelStr, format string) {
	Log = New(os.Stdout, format).Level(parseLevel(levelStr))
	log.Logger = Log
	zerolog.SetGlobalLevel(Log.GetLevel())
}

// New returns a timestamped logger with caller info writing to out.
func New(out io.Writer, format string) zerolog.Logger {
	if !strings.EqualFold(format, "json") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "2006-01-02 15:04:05",
		}
	}
	return zerolog.New(out).
		With().
		Timestamp().
		Caller().
		Logger()
}

// SetLevel sets the log level
func SetLevel(levelStr string) {
	level := parseLevel(levelStr)
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
	log.Logger = Log
}

func parseLevel(levelStr string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(levelStr))
	level, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		return zerolog.InfoLevel
	}
	return level
}
