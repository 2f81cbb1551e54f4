package updater

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/marcopiovanello/tubedrop/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func script(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script executable")
	}

	path := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestEnsureExecutableFound(t *testing.T) {
	exe := script(t, "exit 0")

	p, err := EnsureExecutable(context.Background(), config.PathsConfig{DownloaderPath: exe})
	require.NoError(t, err)
	assert.Equal(t, exe, p)
}

func TestEnsureExecutableMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "yt-dlp")

	p, err := EnsureExecutable(context.Background(), config.PathsConfig{DownloaderPath: missing})
	assert.ErrorIs(t, err, ErrExecutableNotFound)
	assert.Equal(t, missing, p)
}

func TestEnsureExecutableInstalls(t *testing.T) {
	orig := install
	t.Cleanup(func() { install = orig })

	install = func(ctx context.Context) (string, error) { return "/cache/yt-dlp", nil }

	p, err := EnsureExecutable(context.Background(), config.PathsConfig{
		DownloaderPath: filepath.Join(t.TempDir(), "yt-dlp"),
		AutoInstall:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "/cache/yt-dlp", p)
}

func TestUpdateExecutable(t *testing.T) {
	assert.NoError(t, UpdateExecutable(context.Background(), script(t, `[ "$1" = "-U" ]`)))
	assert.Error(t, UpdateExecutable(context.Background(), script(t, "exit 1")))
}
