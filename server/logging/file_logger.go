package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RotableLogger is an io.WriteCloser over a log file that can be moved aside
// and reopened while the process keeps writing.
type RotableLogger struct {
	path string

	mu sync.Mutex
	fd *os.File
}

func NewRotableLogger(path string) (*RotableLogger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	fd, err := openLog(path)
	if err != nil {
		return nil, err
	}

	return &RotableLogger{path: path, fd: fd}, nil
}

func openLog(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func (l *RotableLogger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fd == nil {
		return 0, os.ErrClosed
	}
	return l.fd.Write(p)
}

// Rotate renames the current file with a timestamp suffix and starts a new one.
func (l *RotableLogger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fd == nil {
		return os.ErrClosed
	}

	if err := l.fd.Close(); err != nil {
		return err
	}

	rotated := fmt.Sprintf("%s.%s", l.path, time.Now().Format("2006-01-02T15-04-05"))
	if err := os.Rename(l.path, rotated); err != nil {
		return err
	}

	fd, err := openLog(l.path)
	if err != nil {
		l.fd = nil
		return err
	}
	l.fd = fd

	return nil
}

func (l *RotableLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fd == nil {
		return nil
	}

	err := l.fd.Close()
	l.fd = nil
	return err
}
