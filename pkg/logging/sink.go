package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/relayops/fleetbridge/pkg/constants"
)

// AttachFileSink reconfigures the default logger so every event is also
// appended, as JSON, to the operational log at path. The console/stderr
// behavior of the default logger is preserved. Returns a close function for
// the underlying file.
func AttachFileSink(path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return nil, err
	}

	var console io.Writer = os.Stderr
	if isatty() && os.Getenv("LOG_FORMAT") != "json" {
		console = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(console, f)).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()

	SetDefault(logger)

	return f.Close, nil
}
