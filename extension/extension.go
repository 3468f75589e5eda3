// Package extension provides a Forge extension entry point for the access
// matrix.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/accessmatrix"
	"github.com/xraph/accessmatrix/api"
	"github.com/xraph/accessmatrix/cache"
	"github.com/xraph/accessmatrix/plugin"
	"github.com/xraph/accessmatrix/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "accessmatrix"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Role and user access matrix over named modules"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the access matrix Service as a Forge extension.
type Extension struct {
	config      Config
	svc         *accessmatrix.Service
	apiHandler  *api.API
	logger      *slog.Logger
	serviceOpts []accessmatrix.Option
	plugins     []plugin.Plugin
}

// New creates an access matrix Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{config: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Service returns the underlying access matrix service.
func (e *Extension) Service() *accessmatrix.Service { return e.svc }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It builds the service, registers it
// in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	if err := vessel.Provide(fapp.Container(), func() (*accessmatrix.Service, error) {
		return e.svc, nil
	}); err != nil {
		return fmt.Errorf("accessmatrix: register service in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	svc, err := e.buildService(func() (store.Store, error) {
		return forge.Inject[store.Store](fapp.Container())
	})
	if err != nil {
		return err
	}
	e.svc = svc

	e.apiHandler = api.New(svc, fapp.Router())

	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("accessmatrix: register routes: %w", err)
		}
	}

	return nil
}

// buildService assembles the service options in precedence order: logger,
// config, container store, caller options, cache, plugins.
func (e *Extension) buildService(injectStore func() (store.Store, error)) (*accessmatrix.Service, error) {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := make([]accessmatrix.Option, 0, len(e.serviceOpts)+len(e.plugins)+4)
	opts = append(opts,
		accessmatrix.WithLogger(logger),
		accessmatrix.WithConfig(e.config.Service),
	)

	// Try to resolve the store from the DI container; an option-provided
	// store appended below takes precedence.
	if injectStore != nil {
		if s, err := injectStore(); err == nil && s != nil {
			opts = append(opts, accessmatrix.WithStore(s))
		}
	}

	opts = append(opts, e.serviceOpts...)

	if e.config.CacheDecisions {
		ttl := e.config.Service.CacheTTL
		if ttl <= 0 {
			ttl = accessmatrix.DefaultConfig().CacheTTL
		}
		opts = append(opts, accessmatrix.WithCache(cache.NewMemory(cache.WithTTL(ttl))))
	}

	for _, x := range e.plugins {
		opts = append(opts, accessmatrix.WithPlugin(x))
	}

	svc, err := accessmatrix.NewService(opts...)
	if err != nil {
		return nil, fmt.Errorf("accessmatrix: create service: %w", err)
	}
	return svc, nil
}

// Start runs migrations if enabled and starts the service.
func (e *Extension) Start(ctx context.Context) error {
	if e.svc == nil {
		return errors.New("accessmatrix: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.svc.Store().Migrate(ctx); err != nil {
			return fmt.Errorf("accessmatrix: migration failed: %w", err)
		}
	}

	return e.svc.Start(ctx)
}

// Stop gracefully shuts down the service.
func (e *Extension) Stop(ctx context.Context) error {
	if e.svc == nil {
		return nil
	}
	return e.svc.Stop(ctx)
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.svc == nil {
		return errors.New("accessmatrix: extension not initialized")
	}
	return e.svc.Store().Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all access matrix API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
