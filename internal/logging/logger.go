package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a config level string onto a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Setup configures the global zerolog logger. DEV gets a coloured console writer, anything else JSON.
func Setup(level, env string) {
	Configure(os.Stderr, level, env)
}

// Configure is Setup with an explicit destination.
func Configure(w io.Writer, level, env string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := w
	if strings.EqualFold(env, "DEV") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// TokenFingerprint gives a loggable handle for a bearer token without leaking it.
func TokenFingerprint(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return "..." + token[len(token)-6:]
}
