package internal

import (
	"strings"
	"time"
)

type Quality string

const (
	QualityHighest Quality = "HIGHEST"
	QualityHigh    Quality = "HIGH"
	QualityMedium  Quality = "MEDIUM"
	QualityLow     Quality = "LOW"
)

// ParseQuality maps the selector sent by the UI to a known Quality. Matching
// ignores case and surrounding spaces, so "medium" is QualityMedium. Anything
// unrecognised falls back to QualityHighest.
func ParseQuality(s string) Quality {
	switch q := Quality(strings.ToUpper(strings.TrimSpace(s))); q {
	case QualityHighest, QualityHigh, QualityMedium, QualityLow:
		return q
	default:
		return QualityHighest
	}
}

type Author struct {
	Name string `json:"name"`
}

// Metadata of a single video, fetched on demand and never persisted.
type VideoMetadata struct {
	VideoID       string `json:"videoId,omitempty"`
	Title         string `json:"title"`
	Author        Author `json:"author"`
	LengthSeconds int64  `json:"lengthSeconds"`
	Description   string `json:"description"`
	Thumbnail     string `json:"thumbnail,omitempty"`
}

// Body of POST /api/download.
type DownloadRequest struct {
	URL       string `json:"url"`
	Quality   string `json:"quality"`
	AudioOnly bool   `json:"audioOnly"`
	SocketID  string `json:"socketId"`
}

type DownloadResult struct {
	Success     bool   `json:"success"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	DownloadURL string `json:"downloadUrl"`
}

// What the extraction library is asked to produce.
type DownloadOutput struct {
	Path      string
	Filename  string
	Format    string
	AudioOnly bool
}

type ProgressEvent struct {
	Percent     int     `json:"percent"`
	Transferred int64   `json:"transferred"`
	Total       int64   `json:"total"`
	Speed       float64 `json:"speed"`
}

// ProgressObserver is registered per download and receives every event
// reported by the extraction library.
type ProgressObserver interface {
	OnProgress(ProgressEvent)
}

// ProgressFunc adapts a plain function to a ProgressObserver.
type ProgressFunc func(ProgressEvent)

func (f ProgressFunc) OnProgress(e ProgressEvent) { f(e) }

// NopObserver discards every event.
var NopObserver ProgressObserver = ProgressFunc(func(ProgressEvent) {})

type StoredFile struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
