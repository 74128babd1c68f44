package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
	// Guard builds access middlewares once the dependencies are known.
	Guard func(d deps.Deps) []Middleware
)

type entry struct {
	reg    Registrar
	guards []Guard
}

var registry []entry

// Register a registrar behind optional guards.
func Register(reg Registrar, guards ...Guard) {
	registry = append(registry, entry{reg: reg, guards: guards})
}

// LocalOnly admits the allowed client IPs (everyone when the list is empty).
func LocalOnly(d deps.Deps) []Middleware {
	return []Middleware{mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)}
}

// Restricted adds the Host allow-list to LocalOnly.
func Restricted(d deps.Deps) []Middleware {
	return append(LocalOnly(d), mw.EnforceHost(d.AllowedHosts, d.Logger))
}

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		var mws []Middleware
		for _, g := range e.guards {
			mws = append(mws, g(d)...)
		}
		if len(mws) == 0 {
			e.reg(r, d)
			continue
		}
		e.reg(r.With(mws...), d)
	}
}
