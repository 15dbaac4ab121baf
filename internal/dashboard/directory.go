package dashboard

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/guttosm/b3view/internal/logger"
)

// DirectorySource lists the tickers known to the backend.
type DirectorySource interface {
	ListTickers(ctx context.Context, limit int) ([]string, error)
}

// Directory is the process-wide ticker list. It is fetched once; a failed
// fetch is logged and leaves the list empty, without retry.
type Directory struct {
	src   DirectorySource
	limit int
	log   zerolog.Logger

	mu      sync.Mutex
	done    bool
	err     error
	tickers []string
}

func NewDirectory(src DirectorySource, limit int) *Directory {
	return &Directory{src: src, limit: limit, log: logger.Component("directory")}
}

// Load fetches the directory on the first call. Later calls return the
// outcome of that first fetch.
func (d *Directory) Load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return d.err
	}
	d.done = true

	tickers, err := d.src.ListTickers(ctx, d.limit)
	if err != nil {
		d.err = err
		d.log.Error().Err(err).Msg("failed to load ticker directory")
		return err
	}
	d.tickers = tickers
	d.log.Info().Int("tickers", len(tickers)).Msg("ticker directory loaded")
	return nil
}

// Tickers returns a copy of the directory (empty before or after a failed Load).
func (d *Directory) Tickers() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.tickers))
	copy(out, d.tickers)
	return out
}

// Ready reports whether Load ran and succeeded.
func (d *Directory) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done && d.err == nil
}
