package logger

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
)

// PanicError wraps a recovered panic value
type PanicError struct {
	Value any
	stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) StackTrace() string {
	return e.stack
}

// Recover logs a recovered panic as FATAL. It must be deferred directly:
//
//	defer log.Recover(ctx, "worker")
func (l *Logger) Recover(ctx context.Context, where string) {
	r := recover()
	if r == nil {
		return
	}

	perr := &PanicError{Value: r, stack: string(debug.Stack())}
	l.Fatal(ctx, "Uncaught Error", ComponentNames.GlobalHandler, Metadata{
		"where":   where,
		"message": fmt.Sprint(r),
	}, perr)

	if l.cfg.RepanicOnRecover {
		panic(r)
	}
}

// Go runs fn in a new goroutine guarded by Recover
func (l *Logger) Go(ctx context.Context, where string, fn func(ctx context.Context)) {
	go func() {
		defer l.Recover(ctx, where)
		fn(ctx)
	}()
}

// StdLogger returns a standard library logger whose lines become ERROR
// entries, suitable for http.Server.ErrorLog.
func (l *Logger) StdLogger(component string) *log.Logger {
	return log.New(stdWriter{logger: l, component: component}, "", 0)
}

type stdWriter struct {
	logger    *Logger
	component string
}

func (w stdWriter) Write(p []byte) (int, error) {
	w.logger.Error(context.Background(), strings.TrimSpace(string(p)), w.component, nil, nil)
	return len(p), nil
}
