package rest

import (
	"github.com/marcopiovanello/tubedrop/server/filebrowser"
	"github.com/marcopiovanello/tubedrop/server/internal"
	"github.com/marcopiovanello/tubedrop/server/internal/downloaders"
	"github.com/marcopiovanello/tubedrop/server/internal/metadata"
	"github.com/marcopiovanello/tubedrop/server/metrics"
)

// ObserverSource hands out a progress observer bound to a push connection.
type ObserverSource interface {
	Observer(connID string) internal.ProgressObserver
}

type ContainerArgs struct {
	Store      *filebrowser.Store
	Relay      ObserverSource
	Fetcher    metadata.Fetcher
	Downloader downloaders.Downloader
	Metrics    *metrics.Metrics
}

type errorResponse struct {
	Error string `json:"error"`
}

type filesResponse struct {
	Files []internal.StoredFile `json:"files"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
