package status

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/marcopiovanello/tubedrop/server/sys"
)

// Version of the server, overridden at build time with -ldflags.
var Version = "1.0.0"

const versionTimeout = 10 * time.Second

type Status struct {
	Version        string `json:"version"`
	YtdlpVersion   string `json:"ytdlpVersion"`
	FreeSpace      uint64 `json:"freeSpace"`
	FreeSpaceHuman string `json:"freeSpaceHuman"`
}

type Service struct {
	executable   string
	downloadPath string
}

func NewService(executable, downloadPath string) *Service {
	return &Service{
		executable:   executable,
		downloadPath: downloadPath,
	}
}

// Status never fails: parts that cannot be determined are left empty.
func (s *Service) Status(ctx context.Context) *Status {
	st := &Status{Version: Version}

	v, err := s.YtdlpVersion(ctx)
	if err != nil {
		slog.Warn("failed to read yt-dlp version", slog.Any("err", err))
	}
	st.YtdlpVersion = v

	free, err := sys.FreeSpace(s.downloadPath)
	if err != nil {
		slog.Warn("failed to read free space", slog.String("path", s.downloadPath), slog.Any("err", err))
	}
	st.FreeSpace = free
	st.FreeSpaceHuman = humanize.Bytes(free)

	return st
}

func (s *Service) YtdlpVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	result := make(chan string, 1)
	failure := make(chan error, 1)

	cmd := exec.CommandContext(ctx, s.executable, "--version")
	go func() {
		stdout, err := cmd.Output()
		if err != nil {
			failure <- err
			return
		}
		result <- strings.TrimSpace(string(stdout))
	}()

	select {
	case <-ctx.Done():
		return "", errors.New("requesting yt-dlp version took too long")
	case err := <-failure:
		return "", err
	case res := <-result:
		return res, nil
	}
}
