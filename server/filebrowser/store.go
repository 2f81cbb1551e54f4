// Package filebrowser is the download store: a flat directory whose listing
// is the only record of completed downloads.
package filebrowser

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/marcopiovanello/tubedrop/server/internal"
	"github.com/marcopiovanello/tubedrop/server/internal/errs"
)

// ServePrefix is the URL prefix stored files are served under.
const ServePrefix = "/downloads/"

type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve download path %q: %w", root, err)
	}
	return &Store{root: abs}, nil
}

// Root is the absolute path of the store directory.
func (s *Store) Root() string { return s.root }

// Ensure creates the store directory if it is missing.
func (s *Store) Ensure() error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	return nil
}

// List scans the directory, newest first. Hidden entries and directories are
// skipped. A missing directory yields an empty list.
func (s *Store) List(ctx context.Context) ([]internal.StoredFile, error) {
	files := []internal.StoredFile{}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return files, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}

		files = append(files, internal.StoredFile{
			Name:      name,
			Path:      ServePrefix + name,
			Size:      info.Size(),
			CreatedAt: createdAt(filepath.Join(s.root, name), info),
		})
	}

	slices.SortStableFunc(files, func(a, b internal.StoredFile) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return files, nil
}

// Resolve returns the absolute path of filename, which must lie strictly
// inside the store root.
func (s *Store) Resolve(filename string) (string, error) {
	p, err := filepath.Abs(filepath.Join(s.root, filename))
	if err != nil {
		return "", errs.E(errs.InvalidInput, "Invalid file path")
	}

	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errs.E(errs.InvalidInput, "Invalid file path")
	}

	return p, nil
}

func (s *Store) Delete(ctx context.Context, filename string) error {
	p, err := s.Resolve(filename)
	if err != nil {
		slog.Warn("rejected delete outside download directory", slog.String("filename", filename))
		return err
	}

	info, err := os.Lstat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errs.E(errs.NotFound, "File not found")
		}
		return err
	}
	if info.IsDir() {
		return errs.E(errs.InvalidInput, "Invalid file path")
	}

	if err := os.Remove(p); err != nil {
		return err
	}

	slog.Info("deleted file", slog.String("filename", filename))
	return nil
}

// FileServer serves stored files. Directory listings are not exposed.
func (s *Store) FileServer() http.Handler {
	fs := http.StripPrefix(strings.TrimSuffix(ServePrefix, "/"), http.FileServer(http.Dir(s.root)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
