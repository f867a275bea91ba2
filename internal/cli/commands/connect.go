// Package commands implements the fbdialect subcommands.
package commands

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/fbdialect/internal/config"
	"github.com/leapstack-labs/fbdialect/pkg/adapters/firebird"
)

// newAdapter builds the adapter commands connect with. Tests swap it for one
// over a mock transport.
var newAdapter = func(logger *slog.Logger) *firebird.Adapter {
	return firebird.New(logger)
}

// connect opens an adapter from the loaded configuration. Transient
// failures are retried up to cfg.ConnectAttempts times.
func connect(ctx context.Context, cfg *config.Config) (*firebird.Adapter, error) {
	logger := config.GetLogger(ctx)
	a := newAdapter(logger)
	a.ConnectAttempts = cfg.ConnectAttempts

	if err := a.ConnectWith(ctx, cfg.Target, cfg.Options()); err != nil {
		return nil, err
	}
	logger.Debug("connected", slog.String("target", cfg.Target.WithDefaults().String()))
	return a, nil
}

// withAdapter connects, runs fn and disconnects.
func withAdapter(ctx context.Context, fn func(*firebird.Adapter) error) error {
	a, err := connect(ctx, config.FromContext(ctx))
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			config.GetLogger(ctx).Warn("disconnect failed", slog.String("error", err.Error()))
		}
	}()
	return fn(a)
}
