package rest

import (
	"github.com/go-chi/chi/v5"
)

func ApplyRouter(args *ContainerArgs) func(chi.Router) {
	h := NewHandler(NewService(args))

	return func(r chi.Router) {
		routes(r, h)
	}
}

func routes(r chi.Router, h *Handler) {
	r.Get("/video-info", h.VideoInfo())
	r.Post("/download", h.Download())
	r.Get("/files", h.Files())
	r.Delete("/files/{filename}", h.DeleteFile())
}
