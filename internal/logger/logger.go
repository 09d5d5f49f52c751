package logger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/aashari/go-content-dashboard/internal/utils"
)

// timestampFormat is ISO-8601 with millisecond precision, always UTC
const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Config for the structured logger
type Config struct {
	Level          Level
	EnableConsole  bool
	EnableRemote   bool
	RemoteEndpoint string
	Format         string // console format: "json" or "text"
	MaxLogSize     int    // buffer bound, oldest entries evicted first
	BufferSize     int    // remote flush threshold
	SendTimeout    time.Duration
	ServiceName    string
	Environment    string
	MaskSensitive  bool
	// RepanicOnRecover makes Recover re-raise the panic after logging it
	RepanicOnRecover bool
}

// DefaultConfig returns the defaults for the given environment. Production
// logs WARN and above and ships entries remotely; development logs everything.
func DefaultConfig(production bool) Config {
	cfg := Config{
		Level:         LevelDebug,
		EnableConsole: true,
		EnableRemote:  production,
		Format:        FormatJSON,
		MaxLogSize:    1000,
		BufferSize:    50,
		SendTimeout:   5 * time.Second,
		ServiceName:   "content-dashboard",
		Environment:   "development",
		MaskSensitive: true,
	}
	if production {
		cfg.Level = LevelWarn
		cfg.Environment = "production"
	}
	return cfg
}

// Option customizes a Logger
type Option func(*Logger)

// WithSink sets the remote sink. It takes precedence over Config.RemoteEndpoint.
func WithSink(sink Sink) Option {
	return func(l *Logger) { l.sink = sink }
}

// WithConsoleHandler replaces the console handler built from Config.Format
func WithConsoleHandler(h slog.Handler) Option {
	return func(l *Logger) { l.console = h }
}

// WithClock sets the time source used for timestamps and timers
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// WithSendObserver registers a callback invoked after each remote send
func WithSendObserver(fn func(err error)) Option {
	return func(l *Logger) { l.observe = fn }
}

// WithSessionID overrides the generated session id
func WithSessionID(id string) Option {
	return func(l *Logger) { l.sessionID = id }
}

// Logger is a buffered structured logger. Entries are kept in a bounded
// in-memory buffer, echoed to the console and shipped to a remote sink in
// batches. All methods are safe for concurrent use.
type Logger struct {
	cfg       Config
	sessionID string
	console   slog.Handler
	fallback  slog.Handler
	sink      Sink
	masker    *utils.SensitiveDataMasker
	now       func() time.Time
	observe   func(err error)

	mu     sync.Mutex
	buffer []LogEntry
	userID string
	closed bool

	flushes sync.WaitGroup
}

// New creates a logger
func New(cfg Config, opts ...Option) *Logger {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 5 * time.Second
	}

	l := &Logger{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.sessionID == "" {
		l.sessionID = utils.GenerateSessionID()
	}
	if l.console == nil {
		l.console = NewConsoleHandler(os.Stdout, cfg.Format, cfg.ServiceName, cfg.Environment)
	}
	l.fallback = l.console
	if !cfg.EnableConsole {
		l.fallback = NewConsoleHandler(os.Stderr, cfg.Format, cfg.ServiceName, cfg.Environment)
	}
	if l.sink == nil && cfg.RemoteEndpoint != "" {
		l.sink = NewHTTPSink(cfg.RemoteEndpoint, nil)
	}
	if cfg.MaskSensitive {
		l.masker = utils.NewSensitiveDataMasker()
	}
	return l
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Default returns the process-wide logger, creating a development logger on first use
func Default() *Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New(DefaultConfig(utils.IsProduction()))
	}
	return defaultLogger
}

// SetDefault installs l as the process-wide logger
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// SessionID returns the id stamped on every entry of this logger
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Config returns the configuration the logger was built with
func (l *Logger) Config() Config {
	return l.cfg
}

// Log records an entry. It is a no-op below the configured level.
func (l *Logger) Log(ctx context.Context, level Level, message, component string, metadata Metadata, err error) {
	if level < l.cfg.Level {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	at := l.now()
	entry := LogEntry{
		Timestamp: at.UTC().Format(timestampFormat),
		Level:     level,
		Message:   message,
		Context:   component,
		Metadata:  l.copyMetadata(metadata, err),
		SessionID: l.sessionID,
		RequestID: stringValue(ctx, RequestIDKey),
		UserAgent: stringValue(ctx, UserAgentKey),
		IP:        stringValue(ctx, ClientIPKey),
	}
	if err != nil {
		entry.Stack = stackOf(err)
	}

	l.mu.Lock()
	entry.UserID = l.userID
	l.buffer = append(l.buffer, entry)
	if over := len(l.buffer) - l.cfg.MaxLogSize; l.cfg.MaxLogSize > 0 && over > 0 {
		l.buffer = slices.Delete(l.buffer, 0, over)
	}
	var batch []LogEntry
	if l.remoteEnabled() && !l.closed && len(l.buffer) >= l.cfg.BufferSize {
		batch = l.buffer
		l.buffer = nil
		l.flushes.Add(1)
	}
	l.mu.Unlock()

	if l.cfg.EnableConsole {
		_ = l.console.Handle(ctx, entryRecord(entry, at))
	}

	if batch != nil {
		sendCtx := context.WithoutCancel(ctx)
		go func() {
			defer l.flushes.Done()
			_ = l.send(sendCtx, batch)
		}()
	}
}

func (l *Logger) Debug(ctx context.Context, message, component string, metadata Metadata) {
	l.Log(ctx, LevelDebug, message, component, metadata, nil)
}

func (l *Logger) Info(ctx context.Context, message, component string, metadata Metadata) {
	l.Log(ctx, LevelInfo, message, component, metadata, nil)
}

func (l *Logger) Warn(ctx context.Context, message, component string, metadata Metadata) {
	l.Log(ctx, LevelWarn, message, component, metadata, nil)
}

func (l *Logger) Error(ctx context.Context, message, component string, metadata Metadata, err error) {
	l.Log(ctx, LevelError, message, component, metadata, err)
}

// Fatal records a FATAL entry. It does not terminate the process.
func (l *Logger) Fatal(ctx context.Context, message, component string, metadata Metadata, err error) {
	l.Log(ctx, LevelFatal, message, component, metadata, err)
}

// SetUserID stamps userID on entries created from now on
func (l *Logger) SetUserID(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.userID = userID
}

// ClearUserID stops stamping a user id on new entries
func (l *Logger) ClearUserID() {
	l.SetUserID("")
}

// Logs returns a snapshot of the buffered entries, oldest first. Each
// entry's metadata is copied, so changes to the snapshot leave the buffer
// untouched.
func (l *Logger) Logs() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	logs := slices.Clone(l.buffer)
	for i := range logs {
		logs[i].Metadata = maps.Clone(logs[i].Metadata)
	}
	return logs
}

// Export renders the buffered entries as indented JSON
func (l *Logger) Export() ([]byte, error) {
	logs := l.Logs()
	if logs == nil {
		logs = []LogEntry{}
	}
	return json.MarshalIndent(logs, "", "  ")
}

// Flush drains the buffer and forwards each entry to the remote sink, one
// send per entry, in order. The buffer is emptied even when no sink is set.
func (l *Logger) Flush(ctx context.Context) error {
	l.mu.Lock()
	batch := l.buffer
	l.buffer = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return l.send(ctx, batch)
}

// Close waits for in-flight batch flushes, then flushes what remains.
// No further asynchronous flushes start after Close.
func (l *Logger) Close(ctx context.Context) error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.flushes.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for log flushes: %w", ctx.Err())
	}
	return l.Flush(ctx)
}

func (l *Logger) remoteEnabled() bool {
	return l.cfg.EnableRemote && l.sink != nil
}

// send forwards entries sequentially. Every entry is attempted; failures go
// to the console only, never back into the buffer.
func (l *Logger) send(ctx context.Context, batch []LogEntry) error {
	if !l.remoteEnabled() {
		return nil
	}

	var errs []error
	for _, entry := range batch {
		sendCtx, cancel := context.WithTimeout(ctx, l.cfg.SendTimeout)
		err := l.sink.Send(sendCtx, entry)
		cancel()

		if l.observe != nil {
			l.observe(err)
		}
		if err != nil {
			errs = append(errs, err)
			l.reportSendFailure(ctx, err)
		}
	}
	return errors.Join(errs...)
}

func (l *Logger) reportSendFailure(ctx context.Context, err error) {
	r := slog.NewRecord(l.now(), slog.LevelError, "Failed to send log to remote endpoint", 0)
	r.AddAttrs(
		slog.String("context", ComponentNames.Logger),
		slog.String("sessionId", l.sessionID),
		slog.Any("metadata", map[string]any{"error": err.Error()}),
	)
	_ = l.fallback.Handle(ctx, r)
}

// copyMetadata copies the caller's bag so the entry cannot change later
func (l *Logger) copyMetadata(metadata Metadata, err error) Metadata {
	if len(metadata) == 0 && err == nil {
		return nil
	}

	var md Metadata
	if l.masker != nil {
		md = l.masker.MaskFields(metadata)
	} else if metadata != nil {
		md = make(Metadata, len(metadata))
		for k, v := range metadata {
			md[k] = v
		}
	}
	if md == nil {
		md = Metadata{}
	}
	if err != nil {
		if _, ok := md["error"]; !ok {
			md["error"] = err.Error()
		}
	}
	return md
}

// stackTracer is implemented by errors that captured a stack at creation
type stackTracer interface {
	StackTrace() string
}

func stackOf(err error) string {
	var st stackTracer
	if errors.As(err, &st) {
		if s := st.StackTrace(); s != "" {
			return s
		}
	}
	return err.Error() + "\n" + string(debug.Stack())
}
