package relay

import (
	"github.com/go-chi/chi/v5"
)

// ApplyRouter mounts the push channel endpoint.
func ApplyRouter(r *Relay) func(chi.Router) {
	return func(router chi.Router) {
		router.Get("/", r.ServeWS)
	}
}
