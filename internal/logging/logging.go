// Package logging configures structured slog logging.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config selects the log level, format and destination.
type Config struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stderr stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_if=Output file,required_if=Output both"`
	// Buffer is the queue length of the asynchronous sink; 0 writes synchronously.
	Buffer int `yaml:"buffer" envconfig:"BUFFER" validate:"gte=0"`
}

// DefaultConfig returns text logging to stderr through an asynchronous sink.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Format:   "text",
		Output:   "stderr",
		FilePath: "logs/nanion.log",
		Buffer:   1024,
	}
}

// Init configures the global slog default from cfg. The returned closer
// flushes the asynchronous sink and closes any log file.
func Init(cfg Config, w ...io.Writer) (io.Closer, error) {
	handler, closer, err := NewHandler(cfg, w...)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(handler))
	return closer, nil
}

// NewHandler builds the handler described by cfg. If w is given it
// replaces the console destination.
func NewHandler(cfg Config, w ...io.Writer) (slog.Handler, io.Closer, error) {
	var console io.Writer = os.Stderr
	if strings.EqualFold(cfg.Output, "stdout") {
		console = os.Stdout
	}
	if len(w) > 0 && w[0] != nil {
		console = w[0]
	}

	var (
		writer io.Writer
		file   *os.File
	)
	switch strings.ToLower(cfg.Output) {
	case "file", "both":
		var err error
		file, err = openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writer = file
		if strings.EqualFold(cfg.Output, "both") {
			writer = io.MultiWriter(console, file)
		}
	default:
		writer = console
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	closers := multiCloser{}
	if cfg.Buffer > 0 {
		async := NewAsyncHandler(handler, cfg.Buffer)
		handler = async
		closers = append(closers, async)
	}
	if file != nil {
		closers = append(closers, file)
	}
	return handler, closers, nil
}

// New returns a logger with a "component" attribute for module-scoped logging.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// multiCloser closes in order and returns the first error.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
