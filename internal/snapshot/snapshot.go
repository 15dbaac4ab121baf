package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/b3view/internal/chart"
	"github.com/guttosm/b3view/internal/domain/models"
	"github.com/guttosm/b3view/internal/logger"
)

const maxParallelCap = 16

// Source is the slice of the market API a snapshot run needs.
type Source interface {
	ListTickers(ctx context.Context, limit int) ([]string, error)
	GetHistory(ctx context.Context, ticker string) ([]models.Record, error)
}

// Options configures a snapshot run.
//
//   - Tickers: tickers to render; empty means the whole directory.
//   - DirectoryLimit: ?limit= used when the directory is fetched.
//   - Mode: display mode of every chart.
//   - Dir: output directory, created when missing.
//   - Parallel: concurrent renders (0 = auto, min(NumCPU, 16)).
//   - Width, Height: PNG size in pixels.
//   - Force: overwrite files that already exist.
type Options struct {
	Tickers        []string
	DirectoryLimit int
	Mode           models.DisplayMode
	Dir            string
	Parallel       int
	Width          int
	Height         int
	Force          bool
}

// Result lists what a run produced, sorted by ticker.
type Result struct {
	Written []string
	Skipped []string
}

// Run renders one PNG per ticker into opts.Dir, named like the dashboard's
// export ("grafico_{TICKER}_{mode}.png").
//
// Behavior:
//   - Renders concurrently, bounded by opts.Parallel.
//   - The first failure cancels the remaining work and is returned.
//   - Existing files are kept unless opts.Force is set.
func Run(ctx context.Context, src Source, opts Options) (Result, error) {
	if opts.Mode == "" {
		opts.Mode = models.DefaultMode
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return Result{}, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir %s: %w", opts.Dir, err)
	}

	tickers, err := resolveTickers(ctx, src, opts)
	if err != nil {
		return Result{}, err
	}
	if len(tickers) == 0 {
		return Result{}, errors.New("no tickers to render")
	}

	maxParallel := parallelism(opts.Parallel)
	logger.L().Info().
		Int("tickers", len(tickers)).
		Str("mode", opts.Mode.String()).
		Str("dir", opts.Dir).
		Int("max_parallel", maxParallel).
		Msg("snapshot start")

	var (
		mu  sync.Mutex
		res Result
	)

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

loop:
	for i, ticker := range tickers {
		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			break loop
		}

		idx, t := i, ticker
		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()

			path, written, err := renderOne(gctx, src, t, opts)
			if err != nil {
				logger.L().Error().Str("ticker", t).Dur("elapsed", time.Since(start)).Err(err).Msg("snapshot failed")
				return fmt.Errorf("ticker %s: %w", t, err)
			}

			mu.Lock()
			if written {
				res.Written = append(res.Written, path)
			} else {
				res.Skipped = append(res.Skipped, path)
			}
			mu.Unlock()

			logger.L().Info().
				Int("idx", idx+1).
				Int("total", len(tickers)).
				Str("ticker", t).
				Bool("skipped", !written).
				Dur("elapsed", time.Since(start)).
				Msg("snapshot done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	sort.Strings(res.Written)
	sort.Strings(res.Skipped)
	return res, nil
}

func resolveTickers(ctx context.Context, src Source, opts Options) ([]string, error) {
	raw := opts.Tickers
	if len(raw) == 0 {
		all, err := src.ListTickers(ctx, opts.DirectoryLimit)
		if err != nil {
			return nil, fmt.Errorf("load directory: %w", err)
		}
		raw = all
	}

	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}

// renderOne returns the target path and whether it was (re)written.
func renderOne(ctx context.Context, src Source, ticker string, opts Options) (string, bool, error) {
	path := filepath.Join(opts.Dir, chart.ExportFilename(ticker, opts.Mode))
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return path, false, nil
		}
	}

	records, err := src.GetHistory(ctx, ticker)
	if err != nil {
		return path, false, err
	}
	series, err := chart.Build(ticker, opts.Mode, records)
	if err != nil {
		return path, false, err
	}

	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, series, chart.FullViewport(series.Len()), opts.Width, opts.Height); err != nil {
		return path, false, fmt.Errorf("render: %w", err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return path, false, err
	}
	return path, true, nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over path, so readers never see a half written image.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.png")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// parallelism defaults to min(NumCPU, maxParallelCap) and clamps explicit
// values to [1, maxParallelCap].
func parallelism(n int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > maxParallelCap {
		n = maxParallelCap
	}
	if n < 1 {
		n = 1
	}
	return n
}
