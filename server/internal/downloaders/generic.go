package downloaders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lrstanley/go-ytdlp"
	"github.com/marcopiovanello/tubedrop/server/internal"
	"github.com/marcopiovanello/tubedrop/server/internal/errs"
)

const progressInterval = 250 * time.Millisecond

// GenericDownloader drives yt-dlp through go-ytdlp.
type GenericDownloader struct {
	executable string
}

// NewGenericDownloader returns a downloader using the yt-dlp binary at
// executable. An empty path lets go-ytdlp resolve it.
func NewGenericDownloader(executable string) *GenericDownloader {
	return &GenericDownloader{executable: executable}
}

func (g *GenericDownloader) Download(
	ctx context.Context,
	url string,
	out internal.DownloadOutput,
	observer internal.ProgressObserver,
) (string, error) {
	if observer == nil {
		observer = internal.NopObserver
	}

	target := filepath.Join(out.Path, out.Filename)
	base := strings.TrimSuffix(out.Filename, filepath.Ext(out.Filename))

	dl := ytdlp.New().
		NoPlaylist().
		ForceOverwrites().
		Format(out.Format).
		Output(filepath.Join(out.Path, base+".%(ext)s"))

	if out.AudioOnly {
		dl.ExtractAudio().AudioFormat(audioExt).AudioQuality("0")
	} else {
		dl.MergeOutputFormat(videoExt).RemuxVideo(videoExt)
	}

	if g.executable != "" {
		dl.SetExecutable(g.executable)
	}

	dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		observer.OnProgress(toEvent(
			update.Percent(),
			int64(update.DownloadedBytes),
			int64(update.TotalBytes),
			update.Started,
			time.Now(),
		))
	})

	slog.Info("requesting download",
		slog.String("url", url),
		slog.String("format", out.Format),
		slog.String("output", target),
	)

	if _, err := dl.Run(ctx, url); err != nil {
		slog.Error("yt-dlp process error", slog.String("url", url), slog.Any("err", err))
		return "", errs.Wrap(errs.Upstream, err)
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errs.Wrap(errs.Upstream, fmt.Errorf("download finished but %s was not produced", out.Filename))
		}
		return "", errs.Wrap(errs.Upstream, err)
	}

	slog.Info("download completed",
		slog.String("url", url),
		slog.String("file", out.Filename),
		slog.String("size", humanize.Bytes(uint64(info.Size()))),
	)

	return target, nil
}
