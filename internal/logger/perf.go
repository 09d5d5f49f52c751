package logger

import (
	"context"
	"fmt"
	"time"
)

// FormatDuration renders d as milliseconds with two decimals, e.g. "12.34ms"
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
}

// StartTimer starts a timer. Calling the returned func logs the elapsed time at INFO.
func (l *Logger) StartTimer(label string) func() {
	start := l.now()
	return func() {
		l.Info(context.Background(), "Timer: "+label, ComponentNames.Performance, Metadata{
			"duration": FormatDuration(l.now().Sub(start)),
		})
	}
}

// Measure runs fn and logs its duration. A failure is logged at ERROR and the
// original error is returned unchanged.
func (l *Logger) Measure(ctx context.Context, label string, fn func(context.Context) error) error {
	_, err := MeasureValue(ctx, l, label, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// MeasureValue is Measure for operations that produce a value
func MeasureValue[T any](ctx context.Context, l *Logger, label string, fn func(context.Context) (T, error)) (T, error) {
	start := l.now()
	result, err := fn(ctx)
	duration := FormatDuration(l.now().Sub(start))

	if err != nil {
		l.Error(ctx, "Async Operation Failed: "+label, ComponentNames.Performance, Metadata{
			"duration": duration,
			"success":  false,
		}, err)
		return result, err
	}

	l.Info(ctx, "Async Operation: "+label, ComponentNames.Performance, Metadata{
		"duration": duration,
		"success":  true,
	})
	return result, nil
}
