// Package loader decodes raster files off the UI goroutine and hands
// finished samplers back over a channel.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"rasterscope/internal/debug"
	"rasterscope/internal/raster"
)

// DefaultConcurrency is the number of files decoded at once
const DefaultConcurrency = 4

var ErrAlreadyLoading = errors.New("already loading")

// Result is the outcome of loading one path. Exactly one of Sampler and
// Err is set.
type Result struct {
	Path    string
	Name    string
	Sampler *raster.Sampler
	Err     error
}

// Options configures a Loader
type Options struct {
	Concurrency    int
	Calibrations   map[string]raster.Range
	ImageCacheSize int
}

// Loader decodes raster files with bounded concurrency. A path is never
// decoded twice at the same time.
type Loader struct {
	opts Options

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New creates a loader
func New(opts Options) *Loader {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Loader{
		opts:     opts,
		inFlight: make(map[string]struct{}),
	}
}

func key(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (l *Loader) claim(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key(path)
	if _, ok := l.inFlight[k]; ok {
		return false
	}
	l.inFlight[k] = struct{}{}
	return true
}

func (l *Loader) release(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, key(path))
}

// Loading reports whether path is currently being decoded
func (l *Loader) Loading(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.inFlight[key(path)]
	return ok
}

// Load decodes paths in the background. One Result is delivered per path,
// in completion order, and the channel is closed once all are done. Paths
// already being decoded get ErrAlreadyLoading.
func (l *Loader) Load(ctx context.Context, paths []string) <-chan Result {
	out := make(chan Result, len(paths))

	// Claim everything up front so duplicates within one call are
	// rejected no matter how fast the first copy finishes.
	claimed := make([]bool, len(paths))
	for i, p := range paths {
		claimed[i] = l.claim(p)
	}

	go func() {
		defer close(out)

		var g errgroup.Group
		g.SetLimit(l.opts.Concurrency)

		for i, p := range paths {
			p := p // per-iteration copy (go 1.21 loop semantics)
			name := filepath.Base(p)
			if !claimed[i] {
				out <- Result{Path: p, Name: name, Err: ErrAlreadyLoading}
				continue
			}

			g.Go(func() error {
				defer l.release(p)

				s, err := l.LoadFile(ctx, p)
				out <- Result{Path: p, Name: name, Sampler: s, Err: err}
				return nil
			})
		}

		g.Wait()
	}()

	return out
}

// LoadFile decodes one file synchronously
func (l *Loader) LoadFile(ctx context.Context, path string) (*raster.Sampler, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	rc, name, err := open(path)
	if err != nil {
		debug.Warn("open failed", slog.String("path", path), slog.Any("err", err))
		return nil, err
	}
	defer rc.Close()

	h, grid, err := ParseASC(ctx, rc)
	if err != nil {
		debug.Warn("decode failed", slog.String("path", path), slog.Any("err", err))
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	kind := DetectKind(name)
	decodeGrid(kind, grid, h)

	gt := h.GeoTransform()
	opts := []raster.Option{raster.WithKind(kind)}
	if l.opts.Calibrations != nil {
		opts = append(opts, raster.WithCalibrations(l.opts.Calibrations))
	}
	if l.opts.ImageCacheSize > 0 {
		opts = append(opts, raster.WithImageCacheSize(l.opts.ImageCacheSize))
	}
	s := raster.NewSampler(grid, h.Extent(), &gt, opts...)

	lo, hi, _ := s.ValueRange()
	debug.Info("raster loaded",
		slog.String("path", path),
		slog.String("kind", kind),
		slog.Int("cols", h.Cols),
		slog.Int("rows", h.Rows),
		slog.Float64("min", lo),
		slog.Float64("max", hi),
		slog.Duration("elapsed", time.Since(start)))

	return s, nil
}
