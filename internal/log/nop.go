package log

import (
	"context"

	"github.com/driftsentry/driftsentry/internal/core/ports"
)

type nopLogger struct{}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() ports.Logger {
	return nopLogger{}
}

func (nopLogger) Debugf(ctx context.Context, format string, args ...any)           {}
func (nopLogger) Infof(ctx context.Context, format string, args ...any)            {}
func (nopLogger) Warnf(ctx context.Context, format string, args ...any)            {}
func (nopLogger) Errorf(ctx context.Context, err error, format string, args ...any) {}
func (n nopLogger) WithFields(fields map[string]any) ports.Logger                  { return n }
