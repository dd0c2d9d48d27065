package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. It writes to stdout until Init is called.
var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

type Config struct {
	Level      string
	JSONOutput bool
	Output     io.Writer
}

func Init(cfg Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Log = zerolog.New(output).With().Timestamp().Logger()
		return
	}
	Log = zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(component string) zerolog.Logger {
	return Log.With().Str("component", component).Logger()
}

func Info(format string, v ...interface{}) {
	Log.Info().Msg(fmt.Sprintf(format, v...))
}

func Error(format string, v ...interface{}) {
	Log.Error().Msg(fmt.Sprintf(format, v...))
}

func Debug(format string, v ...interface{}) {
	Log.Debug().Msg(fmt.Sprintf(format, v...))
}

func Warn(format string, v ...interface{}) {
	Log.Warn().Msg(fmt.Sprintf(format, v...))
}

func Fatal(format string, v ...interface{}) {
	Log.Fatal().Msg(fmt.Sprintf(format, v...))
}
