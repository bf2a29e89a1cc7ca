// Package logger provides the structured logging abstraction used across the scoring service.
// Implementations live in the infrastructure layer (zap); this package only carries the interface and field helpers.
package logger

import (
	"context"
	"time"
)

// Logger is the structured, context-aware logger used by every layer.
// Request and trace ids are read from ctx by the implementation.
type Logger interface {
	Debug(ctx context.Context, message string, fields ...Field)
	Info(ctx context.Context, message string, fields ...Field)
	Warn(ctx context.Context, message string, fields ...Field)
	// Error attaches err as the "error" field.
	Error(ctx context.Context, message string, err error, fields ...Field)
	// Fatal logs and exits the process.
	Fatal(ctx context.Context, message string, err error, fields ...Field)

	WithFields(fields ...Field) Logger
	// WithComponent 为指定组件创建子 logger
	WithComponent(component string) Logger
}

// Field is one key-value pair of a structured log entry.
type Field struct {
	Key   string
	Value interface{}
}

func String(key string, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration is logged in its String form, e.g. "1.5ms".
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Artifact fields share one set of keys so reloads and scores can be joined in log search.

// Source describes where artifacts were read from, e.g. "file:./artifacts".
func Source(desc string) Field { return String("source", desc) }

// Fingerprint identifies one transform + model pair.
func Fingerprint(fp string) Field { return String("fingerprint", fp) }

func ModelVersion(v string) Field { return String("model_version", v) }

func TransformVersion(v string) Field { return String("transform_version", v) }

//Personal.AI order the ending
