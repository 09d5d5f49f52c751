package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Level is the severity of a log entry. Levels are ordered.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l >= LevelDebug && l <= LevelFatal {
		return levelNames[l]
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel accepts the level names case-insensitively ("warning" is an alias of WARN)
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	}
	return LevelDebug, fmt.Errorf("unknown log level %q", s)
}

// MarshalJSON encodes the level by name
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts either the level name or its numeric value
func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParseLevel(name)
		if err != nil {
			return err
		}
		*l = parsed
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("log level must be a string or number: %w", err)
	}
	if n < int(LevelDebug) || n > int(LevelFatal) {
		return fmt.Errorf("log level %d out of range", n)
	}
	*l = Level(n)
	return nil
}

// slogLevel maps a Level onto the slog scale; FATAL sits above ERROR
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelError + 4
	}
}

// Metadata is the free-form key/value bag attached to an entry
type Metadata map[string]any

// LogEntry is a single immutable log record
type LogEntry struct {
	Timestamp string   `json:"timestamp" bson:"timestamp"`
	Level     Level    `json:"level" bson:"level"`
	Message   string   `json:"message" bson:"message"`
	Context   string   `json:"context,omitempty" bson:"context,omitempty"`
	Metadata  Metadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Stack     string   `json:"stack,omitempty" bson:"stack,omitempty"`
	SessionID string   `json:"sessionId" bson:"sessionId"`
	UserID    string   `json:"userId,omitempty" bson:"userId,omitempty"`
	RequestID string   `json:"requestId,omitempty" bson:"requestId,omitempty"`
	UserAgent string   `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	IP        string   `json:"ip,omitempty" bson:"ip,omitempty"`
}

// Sink receives entries forwarded by the logger's remote flush
type Sink interface {
	Send(ctx context.Context, entry LogEntry) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, entry LogEntry) error

func (f SinkFunc) Send(ctx context.Context, entry LogEntry) error {
	return f(ctx, entry)
}

// Context keys
type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserAgentKey contextKey = "user_agent"
	ClientIPKey  contextKey = "client_ip"
)

// WithRequestID returns a context carrying the request id stamped on entries
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithClient returns a context carrying the caller's user agent and ip
func WithClient(ctx context.Context, userAgent, ip string) context.Context {
	if userAgent != "" {
		ctx = context.WithValue(ctx, UserAgentKey, userAgent)
	}
	if ip != "" {
		ctx = context.WithValue(ctx, ClientIPKey, ip)
	}
	return ctx
}

// RequestIDFromContext returns the request id carried by ctx, if any
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
