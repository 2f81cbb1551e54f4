package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"

	"github.com/kkdai/youtube/v2"
	"github.com/lrstanley/go-ytdlp"
	"github.com/marcopiovanello/tubedrop/server/internal"
	"github.com/marcopiovanello/tubedrop/server/internal/errs"
)

// Fetcher resolves the metadata of a single video.
type Fetcher func(ctx context.Context, url string) (*internal.VideoMetadata, error)

var youtubeHosts = []string{
	"youtube.com",
	"youtu.be",
	"youtube-nocookie.com",
}

// ValidateURL checks that rawURL is an http(s) link to a single YouTube video
// and returns its video id.
func ValidateURL(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", errs.E(errs.InvalidInput, "URL is required")
	}

	rawURL = strings.TrimSpace(rawURL)

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || !isYoutubeHost(u.Hostname()) {
		return "", errs.E(errs.InvalidInput, "Invalid YouTube URL")
	}

	id, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return "", errs.E(errs.InvalidInput, "Invalid YouTube URL")
	}

	return id, nil
}

func isYoutubeHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range youtubeHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// NativeFetcher resolves metadata in-process, without spawning yt-dlp.
func NativeFetcher() Fetcher {
	client := &youtube.Client{}

	return func(ctx context.Context, url string) (*internal.VideoMetadata, error) {
		slog.Info("retrieving metadata", slog.String("url", url), slog.String("backend", "native"))

		video, err := client.GetVideoContext(ctx, url)
		if err != nil {
			return nil, errs.Wrap(errs.Upstream, err)
		}

		meta := &internal.VideoMetadata{
			VideoID:       video.ID,
			Title:         video.Title,
			Author:        internal.Author{Name: video.Author},
			LengthSeconds: int64(video.Duration.Seconds()),
			Description:   video.Description,
		}
		if n := len(video.Thumbnails); n > 0 {
			meta.Thumbnail = video.Thumbnails[n-1].URL
		}

		return meta, nil
	}
}

// subset of the yt-dlp info dict
type ytdlpInfo struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Uploader    string  `json:"uploader"`
	Channel     string  `json:"channel"`
	Duration    float64 `json:"duration"`
	Description string  `json:"description"`
	Thumbnail   string  `json:"thumbnail"`
}

// YtdlpFetcher runs yt-dlp -J against the url. An empty executable lets the
// library pick the binary it installed or the one found in PATH.
func YtdlpFetcher(executable string) Fetcher {
	return func(ctx context.Context, url string) (*internal.VideoMetadata, error) {
		dl := ytdlp.New().
			NoPlaylist().
			SkipDownload().
			DumpSingleJSON()

		if executable != "" {
			dl.SetExecutable(executable)
		}

		slog.Info("retrieving metadata", slog.String("url", url), slog.String("backend", "ytdlp"))

		res, err := dl.Run(ctx, url)
		if err != nil {
			return nil, errs.Wrap(errs.Upstream, err)
		}

		var info ytdlpInfo
		if err := json.Unmarshal([]byte(res.Stdout), &info); err != nil {
			return nil, errs.Wrap(errs.Upstream, fmt.Errorf("failed to decode yt-dlp metadata: %w", err))
		}

		author := info.Uploader
		if author == "" {
			author = info.Channel
		}

		return &internal.VideoMetadata{
			VideoID:       info.ID,
			Title:         info.Title,
			Author:        internal.Author{Name: author},
			LengthSeconds: int64(math.Max(0, info.Duration)),
			Description:   info.Description,
			Thumbnail:     info.Thumbnail,
		}, nil
	}
}

// ForBackend picks the fetcher configured under extractor.metadata_backend.
func ForBackend(backend, executable string) Fetcher {
	if backend == "ytdlp" {
		return YtdlpFetcher(executable)
	}
	return NativeFetcher()
}
