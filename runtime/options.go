package runtime

import (
	"io"
	"log/slog"
)

// Options configures a Dispatcher, mirroring the teacher's DMLConfig /
// DefaultDMLConfig struct-of-options pattern.
type Options struct {
	Logger *slog.Logger
}

// DefaultOptions returns an Options with a discard logger.
func DefaultOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
