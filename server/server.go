// a stupid package name...
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/marcopiovanello/tubedrop/server/config"
	"github.com/marcopiovanello/tubedrop/server/filebrowser"
	"github.com/marcopiovanello/tubedrop/server/internal/downloaders"
	"github.com/marcopiovanello/tubedrop/server/internal/metadata"
	"github.com/marcopiovanello/tubedrop/server/logging"
	"github.com/marcopiovanello/tubedrop/server/metrics"
	middlewares "github.com/marcopiovanello/tubedrop/server/middleware"
	"github.com/marcopiovanello/tubedrop/server/relay"
	"github.com/marcopiovanello/tubedrop/server/rest"
	"github.com/marcopiovanello/tubedrop/server/status"
	"github.com/marcopiovanello/tubedrop/server/updater"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type RunConfig struct {
	App fs.FS
}

type serverConfig struct {
	frontend   fs.FS
	baseURL    string
	executable string
	store      *filebrowser.Store
	relay      *relay.Relay
	fetcher    metadata.Fetcher
	downloader downloaders.Downloader
	metrics    *metrics.Metrics
}

func Run(ctx context.Context, rc *RunConfig) error {
	conf := config.Instance()

	closeLog, err := logging.Setup(ctx, conf.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := filebrowser.NewStore(conf.Paths.DownloadPath)
	if err != nil {
		return err
	}
	if err := store.Ensure(); err != nil {
		return err
	}

	executable, err := updater.EnsureExecutable(ctx, conf.Paths)
	if err != nil {
		slog.Warn("downloads will fail until yt-dlp is available",
			slog.String("path", executable),
			slog.Any("err", err),
		)
	}

	var m *metrics.Metrics
	if conf.Metrics.Enabled {
		m = metrics.New()
	}

	rl := relay.New(m)

	srv := newServer(serverConfig{
		frontend:   rc.App,
		baseURL:    strings.TrimSuffix(conf.Server.BaseURL, "/"),
		executable: executable,
		store:      store,
		relay:      rl,
		fetcher:    metadata.ForBackend(conf.Extractor.MetadataBackend, executable),
		downloader: downloaders.NewGenericDownloader(executable),
		metrics:    m,
	})

	var (
		network = "tcp"
		address = fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port)
	)

	// support unix sockets
	if strings.HasPrefix(conf.Server.Host, "/") {
		network = "unix"
		address = conf.Server.Host
	}

	listener, err := net.Listen(network, address)
	if err != nil {
		slog.Error("failed to listen", slog.String("err", err.Error()))
		return err
	}

	slog.Info("tubedrop started",
		slog.String("address", address),
		slog.String("downloads", store.Root()),
		slog.String("backend", conf.Extractor.MetadataBackend),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")

		rl.Close()

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

func newServer(c serverConfig) *http.Server {
	return &http.Server{Handler: newRouter(c)}
}

func newRouter(c serverConfig) http.Handler {
	r := chi.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	r.Use(middlewares.RequestID)
	r.Use(middlewares.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware.Handler)

	// UI entry document and assets
	if c.frontend != nil {
		r.Mount("/", http.FileServerFS(c.frontend))
	}

	// stored files
	r.Handle(filebrowser.ServePrefix+"*", c.store.FileServer())

	r.Route("/api", func(r chi.Router) {
		r.Route("/status", status.ApplyRouter(c.executable, c.store.Root()))

		rest.ApplyRouter(&rest.ContainerArgs{
			Store:      c.store,
			Relay:      c.relay,
			Fetcher:    c.fetcher,
			Downloader: c.downloader,
			Metrics:    c.metrics,
		})(r)
	})

	// progress push channel
	r.Route("/socket", relay.ApplyRouter(c.relay))

	if c.metrics != nil {
		r.Handle("/metrics", c.metrics.Handler())
	}

	if c.baseURL == "" {
		return r
	}

	root := chi.NewRouter()
	root.Mount(c.baseURL, http.StripPrefix(c.baseURL, r))
	return root
}
