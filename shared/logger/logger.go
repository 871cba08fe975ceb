package logger

import (
	"io"
	"os"
	"rms/config"
	"rms/shared/constant"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defectKey    = "defect"
	defaultLevel = zerolog.InfoLevel
)

// InitLogger installs a human readable console logger at trace level. It runs before
// configuration is loaded so config loading itself is logged.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	log.Logger = zerolog.New(console(os.Stdout)).With().Timestamp().Logger()
}

func console(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
}

// SetLogLevel applies the configured level. Production switches to JSON lines with the
// app name on every entry. An unknown level falls back to info.
func SetLogLevel(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = defaultLevel
	}

	if cfg.Server.Env == constant.ServerEnvProduction {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("app", cfg.App.Name).Logger()
	}

	zerolog.SetGlobalLevel(level)
	log.Debug().Str("level", level.String()).Msg("Log level applied")
}

// ErrorWithStack logs err with the stack of the caller.
func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

// Defect logs an inconsistency in data handed over by a collaborator.
// Defects are never returned to callers.
func Defect(kind string, fields map[string]any) {
	log.Error().
		Str(defectKey, kind).
		Fields(fields).
		Msg("inconsistent snapshot detected")
}
