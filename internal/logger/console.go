package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// Console formats
const (
	FormatJSON = "json"
	FormatText = "text"
)

const consoleTimeFormat = "15:04:05.000"

// NewConsoleHandler builds the console handler for format. "json" writes one
// structured JSON object per line; "text" writes colored lines through tint.
// Level filtering happens in Logger, so the handler accepts every level.
func NewConsoleHandler(w io.Writer, format, serviceName, environment string) slog.Handler {
	if format == FormatText || format == "pretty" {
		return tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: consoleTimeFormat,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.LevelKey && len(groups) == 0 {
					if lvl, ok := a.Value.Any().(slog.Level); ok && lvl > slog.LevelError {
						return slog.String(slog.LevelKey, "FTL")
					}
				}
				return a
			},
		})
	}
	return &StructuredJSONHandler{
		writer:      w,
		serviceName: serviceName,
		environment: environment,
		mu:          &sync.Mutex{},
	}
}

// structuredLine is the JSON console format
type structuredLine struct {
	Timestamp   string         `json:"timestamp"`
	Level       string         `json:"level"`
	Message     string         `json:"message"`
	Service     string         `json:"service,omitempty"`
	Environment string         `json:"environment,omitempty"`
	Context     string         `json:"context,omitempty"`
	SessionID   string         `json:"sessionId,omitempty"`
	UserID      string         `json:"userId,omitempty"`
	RequestID   string         `json:"requestId,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Stack       string         `json:"stack,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// StructuredJSONHandler implements a custom JSON handler for our structured format
type StructuredJSONHandler struct {
	writer      io.Writer
	serviceName string
	environment string
	attrs       []slog.Attr
	mu          *sync.Mutex
}

func (h *StructuredJSONHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *StructuredJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *StructuredJSONHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *StructuredJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	line := structuredLine{
		Timestamp:   r.Time.UTC().Format(timestampFormat),
		Level:       slogLevelName(r.Level),
		Message:     r.Message,
		Service:     h.serviceName,
		Environment: h.environment,
	}

	route := func(a slog.Attr) bool {
		switch a.Key {
		case "context":
			line.Context = a.Value.String()
		case "sessionId":
			line.SessionID = a.Value.String()
		case "userId":
			line.UserID = a.Value.String()
		case "requestId":
			line.RequestID = a.Value.String()
		case "stack":
			line.Stack = a.Value.String()
		case "metadata":
			if md, ok := a.Value.Any().(map[string]any); ok {
				line.Metadata = md
			}
		default:
			if line.Attributes == nil {
				line.Attributes = make(map[string]any)
			}
			line.Attributes[a.Key] = attrValue(a.Value)
		}
		return true
	}
	for _, a := range h.attrs {
		route(a)
	}
	r.Attrs(route)

	data, err := json.Marshal(line)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = fmt.Fprintln(h.writer, string(data))
	return err
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().Milliseconds()
	default:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	}
}

func slogLevelName(l slog.Level) string {
	switch {
	case l > slog.LevelError:
		return LevelFatal.String()
	case l >= slog.LevelError:
		return LevelError.String()
	case l >= slog.LevelWarn:
		return LevelWarn.String()
	case l >= slog.LevelInfo:
		return LevelInfo.String()
	default:
		return LevelDebug.String()
	}
}

// entryRecord converts an entry into an slog record for the console handler
func entryRecord(entry LogEntry, at time.Time) slog.Record {
	r := slog.NewRecord(at, entry.Level.slogLevel(), entry.Message, 0)
	if entry.Context != "" {
		r.AddAttrs(slog.String("context", entry.Context))
	}
	r.AddAttrs(slog.String("sessionId", entry.SessionID))
	if entry.UserID != "" {
		r.AddAttrs(slog.String("userId", entry.UserID))
	}
	if entry.RequestID != "" {
		r.AddAttrs(slog.String("requestId", entry.RequestID))
	}
	if len(entry.Metadata) > 0 {
		r.AddAttrs(slog.Any("metadata", map[string]any(entry.Metadata)))
	}
	if entry.Stack != "" {
		r.AddAttrs(slog.String("stack", entry.Stack))
	}
	return r
}
