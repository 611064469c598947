package orbitronica

import (
	"io"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger returns a logfmt logger filtered at the provided level ("debug", "info", "warn" or
// "error"; anything else is info). When file is set, logs are also written to that file, rotated.
func NewLogger(lvl, file string) kitlog.Logger {
	var w io.Writer = os.Stderr
	if file != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    32, // MB
			MaxBackups: 3,
			Compress:   true,
		})
	}
	return newLogger(w, lvl)
}

func newLogger(w io.Writer, lvl string) kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	return level.NewFilter(logger, levelOption(lvl))
}

func levelOption(lvl string) level.Option {
	switch lvl {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	}
	return level.AllowInfo()
}
