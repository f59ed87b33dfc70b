// Package tlog keeps a zap logger in a context.Context.
//
// Every context passed around in this module is expected to carry a logger,
// and Get panics otherwise. Components add their own fields with With so
// that the fields end up in every message logged downstream.
package tlog

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKey struct{}

// Get returns the logger stored in ctx
func Get(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*zap.Logger)
	if !ok {
		panic("tlog: context carries no logger")
	}
	return logger
}

// WithLogger returns a context carrying logger, replacing any previous one
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// With returns a context whose logger adds fields to every message
func With(ctx context.Context, fields ...zapcore.Field) context.Context {
	return WithLogger(ctx, Get(ctx).With(fields...))
}
