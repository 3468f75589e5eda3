package accessmatrix

import (
	"log/slog"

	"github.com/xraph/accessmatrix/directory"
	"github.com/xraph/accessmatrix/plugin"
	"github.com/xraph/accessmatrix/store"
)

// Option is a functional option for the Service.
type Option func(*Service)

// WithStore sets the composite store. Unless WithRoleDirectory or
// WithUserDirectory is given, in any order, the store also serves as both
// directories.
func WithStore(s store.Store) Option {
	return func(svc *Service) { svc.store = s }
}

// WithRoleDirectory sets the directory role subjects are resolved against.
func WithRoleDirectory(d directory.RoleDirectory) Option {
	return func(svc *Service) { svc.roles = d }
}

// WithUserDirectory sets the directory user subjects are resolved against.
func WithUserDirectory(d directory.UserDirectory) Option {
	return func(svc *Service) { svc.users = d }
}

// WithCache sets the access decision cache.
func WithCache(c Cache) Option { return func(svc *Service) { svc.cache = c } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(svc *Service) { svc.logger = l } }

// WithConfig sets the service configuration.
func WithConfig(c Config) Option { return func(svc *Service) { svc.config = c } }

// WithPlugin registers a plugin with the service.
func WithPlugin(x plugin.Plugin) Option {
	return func(svc *Service) {
		if svc.plugins == nil {
			svc.plugins = plugin.NewRegistry(svc.logger)
		}
		svc.plugins.Register(x)
	}
}
