// Package api provides HTTP handlers for the access matrix.
package api

import (
	"net/http"
	"sync"

	"github.com/xraph/forge"

	"github.com/xraph/accessmatrix"
)

// API wires all access matrix HTTP handlers together.
type API struct {
	svc    *accessmatrix.Service
	router forge.Router

	mu         sync.Mutex
	registered map[forge.Router]bool
}

// New creates an API from a Service and a Forge router.
func New(svc *accessmatrix.Service, router forge.Router) *API {
	return &API{svc: svc, router: router}
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	if err := a.RegisterRoutes(a.router); err != nil {
		panic("accessmatrix: register routes: " + err.Error())
	}
	return a.router.Handler()
}

// RegisterRoutes registers all API routes into the given Forge router.
// Registering into the same router again is a no-op.
func (a *API) RegisterRoutes(router forge.Router) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.registered[router] {
		return nil
	}

	registerers := []func(forge.Router) error{
		a.registerRuleRoutes,
		a.registerCheckRoutes,
		a.registerSubjectRoutes,
	}
	for _, fn := range registerers {
		if err := fn(router); err != nil {
			return err
		}
	}
	if a.registered == nil {
		a.registered = make(map[forge.Router]bool)
	}
	a.registered[router] = true
	return nil
}
