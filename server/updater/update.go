package updater

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"

	"github.com/lrstanley/go-ytdlp"
	"github.com/marcopiovanello/tubedrop/server/config"
)

// ErrExecutableNotFound is returned when yt-dlp is neither installed nor
// allowed to be installed.
var ErrExecutableNotFound = errors.New("yt-dlp executable not found")

var install = func(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", err
	}
	slog.Info("yt-dlp installed", slog.String("path", resolved.Executable), slog.String("version", resolved.Version))
	return resolved.Executable, nil
}

// EnsureExecutable resolves the yt-dlp binary, downloading a managed copy when
// auto install is enabled and none can be found.
func EnsureExecutable(ctx context.Context, paths config.PathsConfig) (string, error) {
	if p, err := exec.LookPath(paths.DownloaderPath); err == nil {
		return p, nil
	}

	if !paths.AutoInstall {
		return paths.DownloaderPath, ErrExecutableNotFound
	}

	slog.Info("yt-dlp not found, installing", slog.String("configured", paths.DownloaderPath))
	return install(ctx)
}

// UpdateExecutable uses the builtin self-update of yt-dlp.
func UpdateExecutable(ctx context.Context, executable string) error {
	cmd := exec.CommandContext(ctx, executable, "-U")

	out, err := cmd.CombinedOutput()
	slog.Info("yt-dlp update", slog.String("output", string(out)))

	return err
}
