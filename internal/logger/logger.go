package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"visor/internal/domain"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zerolog with a level that can change at runtime.
type Logger interface {
	Log() *zerolog.Event
	Fatal() *zerolog.Event
	Err(err error) *zerolog.Event
	Error() *zerolog.Event
	Warn() *zerolog.Event
	Info() *zerolog.Event
	Trace() *zerolog.Event
	Debug() *zerolog.Event
	With() zerolog.Context
	Logger() zerolog.Logger
	SetLogLevel(level string)
}

type DefaultLogger struct {
	log     zerolog.Logger
	level   zerolog.Level
	writers []io.Writer
}

func New(cfg *domain.Config) Logger {
	l := &DefaultLogger{
		writers: make([]io.Writer, 0),
		level:   zerolog.DebugLevel,
	}

	// set log level
	l.level = parseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(l.level)

	// setup console writer
	l.writers = append(l.writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime})

	// add rotating file writer if a log path is configured
	if cfg.LogPath != "" {
		l.writers = append(l.writers,
			&lumberjack.Logger{
				Filename:   cfg.LogPath,
				MaxSize:    cfg.LogMaxSize, // megabytes
				MaxBackups: cfg.LogMaxBackups,
			},
		)
	}

	l.log = zerolog.New(io.MultiWriter(l.writers...)).With().Timestamp().Logger()

	return l
}

func (l *DefaultLogger) SetLogLevel(level string) {
	l.level = parseLevel(level)
	zerolog.SetGlobalLevel(l.level)
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.DebugLevel
	}
}

func (l *DefaultLogger) Log() *zerolog.Event {
	return l.log.Log().Timestamp()
}

func (l *DefaultLogger) Fatal() *zerolog.Event {
	return l.log.Fatal().Timestamp()
}

func (l *DefaultLogger) Err(err error) *zerolog.Event {
	if err != nil {
		return l.log.Error().Timestamp().Err(err)
	}
	return l.log.Info().Timestamp()
}

func (l *DefaultLogger) Error() *zerolog.Event {
	return l.log.Error().Timestamp()
}

func (l *DefaultLogger) Warn() *zerolog.Event {
	return l.log.Warn().Timestamp()
}

func (l *DefaultLogger) Info() *zerolog.Event {
	return l.log.Info().Timestamp()
}

func (l *DefaultLogger) Trace() *zerolog.Event {
	return l.log.Trace().Timestamp()
}

func (l *DefaultLogger) Debug() *zerolog.Event {
	return l.log.Debug().Timestamp()
}

func (l *DefaultLogger) With() zerolog.Context {
	return l.log.With()
}

// Logger returns the underlying zerolog logger for packages that take one directly.
func (l *DefaultLogger) Logger() zerolog.Logger {
	return l.log
}
