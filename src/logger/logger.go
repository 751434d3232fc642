// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/H0llyW00dzZ/ct-cert-checker/src/internal/helper/gc"
)

// Logger defines the interface for logging operations.
//
// The checker and the command-line front end log through this interface, so
// the same code can write human-readable lines to a terminal or JSON lines
// to a log collector.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
// This is suitable for user-facing CLI output.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stdout, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// JSONLogger implements Logger by writing one JSON object per line.
//
// Library code gets a silent JSONLogger unless the caller injects another
// Logger, so embedding the checker in a service never writes to its stdout.
//
// JSONLogger is safe for concurrent use by multiple goroutines.
type JSONLogger struct {
	sink      *sink
	silent    bool
	component string
}

// sink is the writer shared by a JSONLogger and the loggers derived from it.
type sink struct {
	mu     sync.Mutex
	writer io.Writer
}

type entry struct {
	Level     string `json:"level"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// NewJSONLogger creates a new JSON lines logger writing to writer.
// A nil writer discards output. When silent is true nothing is written
// until the logger is replaced.
func NewJSONLogger(writer io.Writer, silent bool) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{
		sink:   &sink{writer: writer},
		silent: silent,
	}
}

// WithComponent returns a logger that tags every line with component. It
// shares the output of m, including later SetOutput calls on either logger.
func (m *JSONLogger) WithComponent(component string) *JSONLogger {
	return &JSONLogger{
		sink:      m.sink,
		silent:    m.silent,
		component: component,
	}
}

// Printf formats and logs a structured message in JSON format.
// Output is suppressed if silent mode is enabled.
func (m *JSONLogger) Printf(format string, v ...any) {
	if m.silent {
		return
	}
	m.write(fmt.Sprintf(format, v...))
}

// Println logs a structured message in JSON format.
// Output is suppressed if silent mode is enabled.
func (m *JSONLogger) Println(v ...any) {
	if m.silent {
		return
	}
	m.write(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (m *JSONLogger) write(msg string) {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	// Encode appends the trailing newline.
	if err := json.NewEncoder(buf).Encode(entry{Level: "info", Component: m.component, Message: msg}); err != nil {
		return
	}

	m.sink.mu.Lock()
	_, _ = buf.WriteTo(m.sink.writer)
	m.sink.mu.Unlock()
}

// SetOutput sets the output destination for the JSON logger.
// A nil writer discards output.
//
// SetOutput is safe for concurrent use by multiple goroutines.
func (m *JSONLogger) SetOutput(w io.Writer) {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()

	if w == nil {
		m.sink.writer = io.Discard
	} else {
		m.sink.writer = w
	}
}
