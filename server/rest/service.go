package rest

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/marcopiovanello/tubedrop/server/filebrowser"
	"github.com/marcopiovanello/tubedrop/server/internal"
	"github.com/marcopiovanello/tubedrop/server/internal/downloaders"
	"github.com/marcopiovanello/tubedrop/server/internal/errs"
	"github.com/marcopiovanello/tubedrop/server/internal/metadata"
	"github.com/marcopiovanello/tubedrop/server/metrics"
)

type Service struct {
	store      *filebrowser.Store
	relay      ObserverSource
	fetch      metadata.Fetcher
	downloader downloaders.Downloader
	metrics    *metrics.Metrics
}

func NewService(args *ContainerArgs) *Service {
	return &Service{
		store:      args.Store,
		relay:      args.Relay,
		fetch:      args.Fetcher,
		downloader: args.Downloader,
		metrics:    args.Metrics,
	}
}

func (s *Service) VideoInfo(ctx context.Context, url string) (*internal.VideoMetadata, error) {
	if _, err := metadata.ValidateURL(url); err != nil {
		return nil, err
	}

	meta, err := s.fetch(ctx, strings.TrimSpace(url))
	if err != nil {
		return nil, asUpstream(err)
	}

	return meta, nil
}

// Download blocks until the file is in the store. Progress is pushed to the
// connection named in the request, if any.
func (s *Service) Download(ctx context.Context, req internal.DownloadRequest) (*internal.DownloadResult, error) {
	if _, err := metadata.ValidateURL(req.URL); err != nil {
		return nil, err
	}

	// a client hanging up does not abort a running download
	ctx = context.WithoutCancel(ctx)
	url := strings.TrimSpace(req.URL)

	meta, err := s.fetch(ctx, url)
	if err != nil {
		return nil, asUpstream(err)
	}

	var (
		quality = internal.ParseQuality(req.Quality)
		out     = downloaders.BuildOutput(s.store.Root(), meta.Title, quality, req.AudioOnly)
		kind    = metrics.Kind(req.AudioOnly)
	)

	var observer internal.ProgressObserver = internal.NopObserver
	if s.relay != nil {
		observer = s.relay.Observer(req.SocketID)
	}

	s.metrics.DownloadStarted()
	start := time.Now()

	path, err := s.downloader.Download(ctx, url, out, observer)
	if err != nil {
		s.metrics.DownloadFinished(kind, err, time.Since(start), 0)
		return nil, asUpstream(err)
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	s.metrics.DownloadFinished(kind, nil, time.Since(start), size)

	slog.Info("download stored",
		slog.String("title", meta.Title),
		slog.String("file", out.Filename),
		slog.String("quality", string(quality)),
		slog.Bool("audio_only", req.AudioOnly),
	)

	return &internal.DownloadResult{
		Success:     true,
		Filename:    out.Filename,
		Title:       meta.Title,
		DownloadURL: filebrowser.ServePrefix + out.Filename,
	}, nil
}

func (s *Service) Files(ctx context.Context) ([]internal.StoredFile, error) {
	files, err := s.store.List(ctx)
	if err != nil {
		return nil, asUpstream(err)
	}
	return files, nil
}

func (s *Service) Delete(ctx context.Context, filename string) error {
	if err := s.store.Delete(ctx, filename); err != nil {
		return err
	}

	s.metrics.FileDeleted()
	slog.Info("file deleted", slog.String("file", filename))

	return nil
}

func asUpstream(err error) error {
	if errs.KindOf(err) == errs.Unknown {
		return errs.Wrap(errs.Upstream, err)
	}
	return err
}
