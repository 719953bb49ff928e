package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

var ErrUnsupportedFormat = errors.New("unsupported raster format")

// Supported reports whether the file name has a readable extension
func Supported(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".asc") ||
		strings.HasSuffix(lower, ".asc.gz") ||
		strings.HasSuffix(lower, ".zip")
}

// multiCloser closes an inner reader and then the file beneath it
type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var errs []error
	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// open returns a reader over the grid text and the name used for kind
// detection (the archive member for zip files).
func open(path string) (io.ReadCloser, string, error) {
	lower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(lower, ".zip"):
		return openZip(path)

	case strings.HasSuffix(lower, ".asc.gz"):
		f, err := os.Open(path)
		if err != nil {
			return nil, "", err
		}
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, "", fmt.Errorf("gzip: %w", err)
		}
		return &multiCloser{Reader: zr, closers: []io.Closer{zr, f}}, path, nil

	case strings.HasSuffix(lower, ".asc"):
		f, err := os.Open(path)
		if err != nil {
			return nil, "", err
		}
		return f, path, nil
	}

	return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// openZip opens the first .asc member of a zip archive
func openZip(path string) (io.ReadCloser, string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("zip: %w", err)
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(filepath.Base(f.Name), ".") {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(f.Name), ".asc") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			r.Close()
			return nil, "", fmt.Errorf("zip member %s: %w", f.Name, err)
		}
		return &multiCloser{Reader: rc, closers: []io.Closer{rc, r}}, path + "/" + f.Name, nil
	}

	r.Close()
	return nil, "", fmt.Errorf("%w: no .asc member in %s", ErrUnsupportedFormat, filepath.Base(path))
}

// Expand replaces directories with the supported files they contain,
// sorted by name. Other paths pass through untouched so that their
// failures are reported per file.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		var files []string
		for _, e := range entries {
			if !e.IsDir() && Supported(e.Name()) {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(files)
		out = append(out, files...)
	}
	return out, nil
}
