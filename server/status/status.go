package status

import (
	"github.com/go-chi/chi/v5"
)

func ApplyRouter(executable, downloadPath string) func(chi.Router) {
	s := NewService(executable, downloadPath)

	return func(r chi.Router) {
		r.Get("/", handler(s))
	}
}
