package downloaders

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/marcopiovanello/tubedrop/server/internal"
	"github.com/marcopiovanello/tubedrop/server/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const progressLine = `progress:{"info":{"id":"dQw4w9WgXcQ"},"progress":{"status":"downloading","total_bytes":1000,"downloaded_bytes":250,"filename":"part"}}`

// fakeYtdlp writes a shell script standing in for yt-dlp. It records its
// arguments, prints one progress line and, when produce is set, writes the
// --output target with the extension yt-dlp would pick.
func fakeYtdlp(t *testing.T, produce bool, exitCode int) (exe, argsFile string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script executable")
	}

	dir := t.TempDir()
	exe = filepath.Join(dir, "yt-dlp")
	argsFile = filepath.Join(dir, "args")

	write := ""
	if produce {
		write = `target=$(printf '%s' "$out" | sed "s/%(ext)s/$ext/")
printf 'media' > "$target"`
	}

	script := fmt.Sprintf(`#!/bin/sh
: > '%s'
out=''
ext=mp4
prev=''
for a in "$@"; do
  printf '%%s\n' "$a" >> '%s'
  [ "$prev" = "--output" ] && out="$a"
  [ "$a" = "--extract-audio" ] && ext=mp3
  prev="$a"
done
echo '%s'
%s
exit %d
`, argsFile, argsFile, progressLine, write, exitCode)

	require.NoError(t, os.WriteFile(exe, []byte(script), 0755))
	return exe, argsFile
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func flagValue(args []string, flag string) string {
	if i := slices.Index(args, flag); i >= 0 && i+1 < len(args) {
		return args[i+1]
	}
	return ""
}

type recorder struct {
	mu     sync.Mutex
	events []internal.ProgressEvent
}

func (r *recorder) OnProgress(ev internal.ProgressEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

const videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestGenericDownloaderAudio(t *testing.T) {
	exe, argsFile := fakeYtdlp(t, true, 0)
	dir := t.TempDir()
	out := BuildOutput(dir, "Song: x", internal.QualityLow, true)
	obs := &recorder{}

	path, err := NewGenericDownloader(exe).Download(context.Background(), videoURL, out, obs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Song_ x_audio.mp3"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "media", string(data))

	args := readArgs(t, argsFile)
	assert.Equal(t, "bestaudio/best", flagValue(args, "--format"))
	assert.Equal(t, filepath.Join(dir, "Song_ x_audio.%(ext)s"), flagValue(args, "--output"))
	assert.Equal(t, "mp3", flagValue(args, "--audio-format"))
	assert.Equal(t, "0", flagValue(args, "--audio-quality"))
	assert.Contains(t, args, "--extract-audio")
	assert.Contains(t, args, "--no-playlist")
	assert.Contains(t, args, "--force-overwrites")
	assert.NotContains(t, args, "--remux-video")
	assert.Equal(t, videoURL, args[len(args)-1])

	require.Len(t, obs.events, 1)
	assert.Equal(t, 25, obs.events[0].Percent)
	assert.Equal(t, int64(250), obs.events[0].Transferred)
	assert.Equal(t, int64(1000), obs.events[0].Total)
}

func TestGenericDownloaderVideo(t *testing.T) {
	exe, argsFile := fakeYtdlp(t, true, 0)
	dir := t.TempDir()
	out := BuildOutput(dir, "Clip", internal.QualityHigh, false)

	path, err := NewGenericDownloader(exe).Download(context.Background(), videoURL, out, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Clip_HIGH.mp4"), path)

	args := readArgs(t, argsFile)
	assert.Equal(t, FormatFor(internal.QualityHigh), flagValue(args, "--format"))
	assert.Equal(t, "mp4", flagValue(args, "--merge-output-format"))
	assert.Equal(t, "mp4", flagValue(args, "--remux-video"))
	assert.NotContains(t, args, "--extract-audio")
}

func TestGenericDownloaderExitCode(t *testing.T) {
	exe, _ := fakeYtdlp(t, false, 1)
	out := BuildOutput(t.TempDir(), "Clip", internal.QualityHighest, false)

	_, err := NewGenericDownloader(exe).Download(context.Background(), videoURL, out, nil)
	require.Error(t, err)
	assert.Equal(t, errs.Upstream, errs.KindOf(err))
}

func TestGenericDownloaderNoOutput(t *testing.T) {
	exe, _ := fakeYtdlp(t, false, 0)
	out := BuildOutput(t.TempDir(), "Clip", internal.QualityHighest, false)

	_, err := NewGenericDownloader(exe).Download(context.Background(), videoURL, out, nil)
	require.Error(t, err)
	assert.Equal(t, errs.Upstream, errs.KindOf(err))
	assert.Contains(t, err.Error(), "Clip_HIGHEST.mp4 was not produced")
}
