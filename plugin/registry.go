package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/accessmatrix/rule"
)

// Named entry types pair a hook with the plugin name for logging.

type ruleGrantedEntry struct {
	name string
	hook RuleGranted
}
type ruleRevokedEntry struct {
	name string
	hook RuleRevoked
}
type accessCheckedEntry struct {
	name string
	hook AccessChecked
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	ruleGranted   []ruleGrantedEntry
	ruleRevoked   []ruleRevokedEntry
	accessChecked []accessCheckedEntry
	shutdown      []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(RuleGranted); ok {
		r.ruleGranted = append(r.ruleGranted, ruleGrantedEntry{name, h})
	}
	if h, ok := p.(RuleRevoked); ok {
		r.ruleRevoked = append(r.ruleRevoked, ruleRevokedEntry{name, h})
	}
	if h, ok := p.(AccessChecked); ok {
		r.accessChecked = append(r.accessChecked, accessCheckedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// EmitRuleGranted notifies all plugins that implement RuleGranted.
func (r *Registry) EmitRuleGranted(ctx context.Context, rl *rule.Rule) {
	for _, e := range r.ruleGranted {
		if err := e.hook.OnRuleGranted(ctx, rl); err != nil {
			r.logHookError("OnRuleGranted", e.name, err)
		}
	}
}

// EmitRuleRevoked notifies all plugins that implement RuleRevoked.
func (r *Registry) EmitRuleRevoked(ctx context.Context, rl *rule.Rule) {
	for _, e := range r.ruleRevoked {
		if err := e.hook.OnRuleRevoked(ctx, rl); err != nil {
			r.logHookError("OnRuleRevoked", e.name, err)
		}
	}
}

// EmitAccessChecked notifies all plugins that implement AccessChecked.
func (r *Registry) EmitAccessChecked(ctx context.Context, c Check) {
	for _, e := range r.accessChecked {
		if err := e.hook.OnAccessChecked(ctx, c); err != nil {
			r.logHookError("OnAccessChecked", e.name, err)
		}
	}
}

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
