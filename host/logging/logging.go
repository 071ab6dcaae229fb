// Package logging builds the charmbracelet logger used by the host tools and
// bridges the core debug writer into it.
package logging

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"ppmpad/core"
	"ppmpad/host/config"
)

// New returns a logger writing to w, or to a rotated file when cfg.File is
// set. The returned closer is never nil.
func New(cfg config.Log, w io.Writer, prefix string) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		w = rotated
		closer = rotated
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
	})
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// BridgeCore routes core.DebugPrintln and core.DebugAsync into logger at
// debug level. Call once.
func BridgeCore(logger *log.Logger) {
	core.SetDebugWriter(func(msg string) {
		logger.Debug(msg)
	})
	core.SetDebugEnabled(logger.GetLevel() <= log.DebugLevel)
	core.InitAsyncDebug()
}

// DumpEvents logs the core event ring, oldest first
func DumpEvents(logger *log.Logger) {
	events := core.Events()
	if len(events) == 0 {
		return
	}
	logger.Info("event ring", "count", len(events))
	for _, evt := range events {
		logger.Info(core.EventName(evt.EventType),
			"ch", evt.Channel,
			"clock", evt.Clock,
			"v1", evt.Value1,
			"v2", evt.Value2)
	}
}
