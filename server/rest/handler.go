package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/marcopiovanello/tubedrop/server/internal"
	"github.com/marcopiovanello/tubedrop/server/internal/errs"
)

type Handler struct {
	service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{service: svc}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("err", err))
	}
}

func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.InvalidInput:
		return http.StatusBadRequest
	case errs.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) VideoInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meta, err := h.service.VideoInfo(r.Context(), r.URL.Query().Get("url"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, meta)
	}
}

func (h *Handler) Download() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req internal.DownloadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, r, errs.Wrap(errs.InvalidInput, err))
			return
		}

		res, err := h.service.Download(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func (h *Handler) Files() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := h.service.Files(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, filesResponse{Files: files})
	}
}

func (h *Handler) DeleteFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, err := filenameParam(r)
		if err != nil {
			writeError(w, r, errs.E(errs.InvalidInput, "Invalid file path"))
			return
		}

		if err := h.service.Delete(r.Context(), filename); err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, deleteResponse{
			Success: true,
			Message: "File deleted successfully",
		})
	}
}

// filenameParam decodes the {filename} segment exactly once. chi routes on
// RawPath when the request carries one, leaving the segment escaped.
func filenameParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}
