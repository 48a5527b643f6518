package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var Logger = log.NewWithOptions(os.Stderr, log.Options{
	Level:           log.InfoLevel,
	ReportTimestamp: false,
	Prefix:          "rabbitmq",
})

// SetLevel accepts debug, info, warn, error or fatal. Unknown levels fall back to info.
func SetLevel(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		Logger.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	Logger.SetLevel(lvl)
	Logger.SetReportTimestamp(lvl == log.DebugLevel)
}

func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

func Debug(msg string, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}
