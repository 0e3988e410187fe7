package walletsig

import (
	"context"

	"github.com/cometbft/cometbft/libs/log"
)

type contextKey int // local to the walletsig package

const (
	contextKeyLogger contextKey = iota
)

// DefaultLogger is used for all contexts that have not set anything
// themselves.
var DefaultLogger = log.NewNopLogger()

// WithLogger sets the logger for this context.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another context like
// this, after passing all the keyvals to the Logger.
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	return WithLogger(ctx, GetLogger(ctx).With(keyvals...))
}

// GetLogger returns the currently set logger, or DefaultLogger if none was
// set.
func GetLogger(ctx context.Context) log.Logger {
	if l, ok := ctx.Value(contextKeyLogger).(log.Logger); ok && l != nil {
		return l
	}
	return DefaultLogger
}
