// Package svcctx provides service context for dependency injection via context.
// Commands pull what they need from the context instead of building clients.
package svcctx

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jackzampolin/loopctl/internal/cloud"
	"github.com/jackzampolin/loopctl/internal/config"
	"github.com/jackzampolin/loopctl/internal/function"
	"github.com/jackzampolin/loopctl/internal/home"
	"github.com/jackzampolin/loopctl/internal/humanloop"
	"github.com/jackzampolin/loopctl/internal/outputs"
)

// Services holds all core services that flow through context.
// AWS clients are created on first use so offline commands never need
// credentials or a region.
type Services struct {
	Config *config.Manager
	Logger *slog.Logger
	Home   *home.Dir

	once    sync.Once
	clients *cloud.Clients
	err     error
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}

// ConfigFrom extracts the current configuration from context.
func ConfigFrom(ctx context.Context) *config.Config {
	if s := ServicesFrom(ctx); s != nil && s.Config != nil {
		return s.Config.Get()
	}
	return config.DefaultConfig()
}

// Clients returns the AWS clients, loading them on first call.
func (s *Services) Clients(ctx context.Context) (*cloud.Clients, error) {
	s.once.Do(func() {
		s.clients, s.err = cloud.Load(ctx, s.Config.Get().AWS)
		if s.err == nil {
			s.Logger.Debug("loaded aws clients", "region", s.clients.Region())
		}
	})
	return s.clients, s.err
}

// Review returns a review service client.
func (s *Services) Review(ctx context.Context) (*humanloop.Client, error) {
	c, err := s.Clients(ctx)
	if err != nil {
		return nil, err
	}
	return humanloop.NewClient(c.SageMaker, c.Runtime, humanloop.WithLogger(s.Logger)), nil
}

// Patcher returns a function environment patcher.
func (s *Services) Patcher(ctx context.Context) (*function.Patcher, error) {
	c, err := s.Clients(ctx)
	if err != nil {
		return nil, err
	}
	return function.NewPatcher(c.Lambda, function.WithLogger(s.Logger)), nil
}

// Outputs returns the review output store.
func (s *Services) Outputs(ctx context.Context) (*outputs.Store, error) {
	c, err := s.Clients(ctx)
	if err != nil {
		return nil, err
	}
	return outputs.NewStore(c.S3), nil
}
