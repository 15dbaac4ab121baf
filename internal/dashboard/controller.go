package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/guttosm/b3view/internal/chart"
	"github.com/guttosm/b3view/internal/domain/models"
	"github.com/guttosm/b3view/internal/logger"
)

// CanvasID is the id of the canvas element the chart is drawn on.
const CanvasID = "mainChart"

var (
	// ErrSuperseded is returned by SelectTicker when a newer selection was
	// made while the request was in flight. Its response is discarded.
	ErrSuperseded = errors.New("selection superseded by a newer one")

	ErrEmptyTicker = errors.New("ticker is required")
)

// HistorySource fetches the record history of one ticker.
type HistorySource interface {
	GetHistory(ctx context.Context, ticker string) ([]models.Record, error)
}

// View is the page section currently shown.
type View string

const (
	ViewWelcome   View = "welcome"
	ViewDashboard View = "dashboard"
)

// ViewState is a snapshot of a Controller.
type ViewState struct {
	View       View
	Directory  []string
	Query      string
	Visible    []string
	Ticker     string
	Mode       models.DisplayMode
	Records    int
	HasChart   bool
	Viewport   *chart.Viewport
	Generation uint64
}

// Options sizes the PNG produced by the export trigger.
type Options struct {
	ExportWidth  int
	ExportHeight int
}

// Controller owns the view state of one dashboard: the directory filter,
// the selected ticker, its cached records, the display mode, the chart slot
// and the export trigger bound to the chart currently on the canvas.
//
// Network calls run outside the lock. Every selection bumps a generation
// counter and cancels the previous request, so a late response for an older
// selection can never overwrite a newer one.
type Controller struct {
	src  HistorySource
	slot *chart.Slot
	opts Options
	log  zerolog.Logger

	mu         sync.Mutex
	directory  []string
	query      string
	visible    []string
	view       View
	ticker     string
	mode       models.DisplayMode
	loaded     string // ticker the cached records belong to
	records    []models.Record
	generation uint64
	cancel     context.CancelFunc
	export     func() (chart.Export, error)
}

// NewController starts in the welcome view with the full directory visible.
func NewController(src HistorySource, directory []string, opts Options) *Controller {
	dir := make([]string, len(directory))
	copy(dir, directory)
	return &Controller{
		src:       src,
		slot:      chart.NewSlot(chart.NewCanvas(CanvasID)),
		opts:      opts,
		log:       logger.Component("dashboard"),
		directory: dir,
		visible:   FilterTickers(dir, ""),
		view:      ViewWelcome,
		mode:      models.DefaultMode,
	}
}

// Filter narrows the visible ticker list to those containing query.
func (c *Controller) Filter(query string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = query
	c.visible = FilterTickers(c.directory, query)
	return append([]string(nil), c.visible...)
}

// SelectTicker switches to the dashboard view, fetches the history of
// ticker and renders it in the current mode.
//
// On failure the error is logged and returned; the view stays on the
// dashboard with whatever chart was there before.
func (c *Controller) SelectTicker(ctx context.Context, ticker string) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return ErrEmptyTicker
	}

	c.mu.Lock()
	c.view = ViewDashboard
	c.ticker = ticker
	c.generation++
	gen := c.generation
	if c.cancel != nil {
		c.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	records, err := c.src.GetHistory(reqCtx, ticker)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Debug().Str("ticker", ticker).Uint64("generation", gen).Msg("discarding superseded response")
		return ErrSuperseded
	}
	c.cancel = nil

	if err != nil {
		c.log.Error().Err(err).Str("ticker", ticker).Msg("failed to load asset")
		return fmt.Errorf("load %s: %w", ticker, err)
	}

	c.records = records
	c.loaded = ticker
	c.log.Info().Str("ticker", ticker).Int("records", len(records)).Msg("asset loaded")
	return c.renderLocked()
}

// SetMode makes mode the active display mode and redraws from the cached
// records. It never touches the network.
func (c *Controller) SetMode(mode string) error {
	m, err := models.ParseDisplayMode(mode)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
	return c.renderLocked()
}

// Render redraws the chart from the cached state.
func (c *Controller) Render() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

// renderLocked is a no-op until a load succeeded. An empty record list
// clears the canvas. Otherwise it replaces the chart instance and rebinds
// the export trigger to the new one. A series that cannot be built leaves
// the canvas empty.
func (c *Controller) renderLocked() error {
	if c.loaded == "" {
		return nil
	}
	if len(c.records) == 0 {
		c.slot.Clear()
		c.export = nil
		return nil
	}

	series, err := chart.Build(c.loaded, c.mode, c.records)
	if err != nil {
		c.slot.Clear()
		c.export = nil
		c.log.Warn().Err(err).Str("ticker", c.loaded).Str("mode", c.mode.String()).Msg("cannot render chart")
		return err
	}

	inst, err := c.slot.Replace(series)
	if err != nil {
		c.export = nil
		return fmt.Errorf("replace chart: %w", err)
	}
	c.bindExport(inst)

	c.log.Debug().
		Str("ticker", series.Ticker).
		Str("mode", series.Mode.String()).
		Str("type", series.Type()).
		Str("instance", inst.ID()).
		Msg("chart rendered")
	return nil
}

// bindExport points the export trigger at inst. The closure captures the
// instance itself, so the file name and pixels always match what was drawn.
func (c *Controller) bindExport(inst *chart.Instance) {
	w, h := c.opts.ExportWidth, c.opts.ExportHeight
	c.export = func() (chart.Export, error) {
		return chart.ExportInstance(inst, w, h)
	}
}

// Export runs the export trigger bound by the last render.
func (c *Controller) Export() (chart.Export, error) {
	c.mu.Lock()
	fn := c.export
	c.mu.Unlock()
	if fn == nil {
		return chart.Export{}, chart.ErrNoChart
	}
	return fn()
}

// Chart returns the Chart.js configuration of the live chart.
func (c *Controller) Chart() (chart.Config, error) {
	inst := c.slot.Current()
	if inst == nil {
		return chart.Config{}, chart.ErrNoChart
	}
	return inst.Config(), nil
}

// Pan moves the visible window by delta points.
func (c *Controller) Pan(delta int) (chart.Viewport, error) {
	return c.withInstance(func(i *chart.Instance) (chart.Viewport, error) { return i.Pan(delta) })
}

// Zoom scales the visible window around its center.
func (c *Controller) Zoom(factor float64) (chart.Viewport, error) {
	return c.withInstance(func(i *chart.Instance) (chart.Viewport, error) { return i.Zoom(factor) })
}

// ZoomTo shows the [from, to] label range.
func (c *Controller) ZoomTo(from, to int) (chart.Viewport, error) {
	return c.withInstance(func(i *chart.Instance) (chart.Viewport, error) { return i.ZoomTo(from, to) })
}

// SetViewport stores the window reported by the page's zoom plugin.
func (c *Controller) SetViewport(v chart.Viewport) (chart.Viewport, error) {
	return c.withInstance(func(i *chart.Instance) (chart.Viewport, error) { return i.SetViewport(v) })
}

// ResetZoom shows all points again.
func (c *Controller) ResetZoom() (chart.Viewport, error) {
	return c.withInstance(func(i *chart.Instance) (chart.Viewport, error) { return i.ResetZoom() })
}

func (c *Controller) withInstance(fn func(*chart.Instance) (chart.Viewport, error)) (chart.Viewport, error) {
	inst := c.slot.Current()
	if inst == nil {
		return chart.Viewport{}, chart.ErrNoChart
	}
	return fn(inst)
}

// Canvas exposes the canvas the controller draws on.
func (c *Controller) Canvas() *chart.Canvas { return c.slot.Canvas() }

// State returns a snapshot of the view state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := ViewState{
		View:       c.view,
		Directory:  append([]string(nil), c.directory...),
		Query:      c.query,
		Visible:    append([]string(nil), c.visible...),
		Ticker:     c.ticker,
		Mode:       c.mode,
		Records:    len(c.records),
		Generation: c.generation,
	}
	if inst := c.slot.Current(); inst != nil {
		v := inst.Viewport()
		st.HasChart = true
		st.Viewport = &v
	}
	return st
}

// Close cancels any request in flight and destroys the chart.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.slot.Clear()
	c.export = nil
}
