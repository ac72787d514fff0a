package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Log source tags used in structured logger contexts.
const (
	SourceApp       = "app"
	SourcePDF       = "pdf"
	SourceRetrieval = "retrieval"
	SourceLLM       = "llm"
	SourceTUI       = "tui"
)

var (
	mu         sync.RWMutex
	baseLogger = newBase(os.Stderr, log.InfoLevel)
)

func newBase(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		TimeFunction:    log.NowUTC,
		TimeFormat:      time.RFC3339Nano,
		Level:           level,
		ReportTimestamp: true,
		Formatter:       log.LogfmtFormatter,
	})
}

// Init replaces the base logger. An empty level means info.
func Init(w io.Writer, level string) error {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return err
		}
		lvl = parsed
	}
	mu.Lock()
	defer mu.Unlock()
	baseLogger = newBase(w, lvl)
	return nil
}

// Logger returns a logfmt logger tagged with the provided source.
func Logger(source string) *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return baseLogger.With("source", source)
}

// OpenFile opens path for appending log output. An empty path discards logs.
func OpenFile(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{io.Discard}, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
