// Package logging provides the structured logger shared by the toolhost
// packages. Log lines carry a level, a timestamp and key=value fields so the
// server's request log and the tool handlers produce a uniform stream.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// ParseLevel maps a configuration string onto a Level, defaulting to INFO.
func ParseLevel(value string) Level {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// F builds a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is implemented by all loggers handed to toolhost components.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	With(fields ...Field) Logger
}

// Discard drops every entry. Useful in tests.
type Discard struct{}

func (Discard) Debug(string, ...Field)        {}
func (Discard) Info(string, ...Field)         {}
func (Discard) Warn(string, ...Field)         {}
func (Discard) Error(string, error, ...Field) {}
func (d Discard) With(...Field) Logger        { return d }

// Writer logs formatted entries at or above a minimum level to an io.Writer.
type Writer struct {
	fields   []Field
	minLevel Level
	out      *log.Logger
}

// NewWriter creates a Writer logger. A nil destination discards everything.
func NewWriter(minLevel Level, destination io.Writer) *Writer {
	if destination == nil {
		destination = io.Discard
	}
	return &Writer{
		minLevel: minLevel,
		out:      log.New(destination, "", 0),
	}
}

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

func (w *Writer) emit(level Level, msg string, err error, fields []Field) {
	if levelRank[level] < levelRank[w.minLevel] {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(string(level))
	b.WriteString("] ")
	b.WriteString(msg)
	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}
	for _, f := range w.fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	w.out.Println(b.String())
}

func (w *Writer) Debug(msg string, fields ...Field) { w.emit(LevelDebug, msg, nil, fields) }
func (w *Writer) Info(msg string, fields ...Field)  { w.emit(LevelInfo, msg, nil, fields) }
func (w *Writer) Warn(msg string, fields ...Field)  { w.emit(LevelWarn, msg, nil, fields) }
func (w *Writer) Error(msg string, err error, fields ...Field) {
	w.emit(LevelError, msg, err, fields)
}

func (w *Writer) With(fields ...Field) Logger {
	combined := make([]Field, 0, len(w.fields)+len(fields))
	combined = append(combined, w.fields...)
	combined = append(combined, fields...)
	return &Writer{fields: combined, minLevel: w.minLevel, out: w.out}
}
