package dashboard

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guttosm/b3view/internal/chart"
	"github.com/guttosm/b3view/internal/domain/models"
)

// --- fakes ---

type fakeHistory struct {
	mu    sync.Mutex
	calls int32
	data  map[string][]models.Record
	err   error
	// gates, when set for a ticker, blocks GetHistory until closed
	gates map[string]chan struct{}
}

func (f *fakeHistory) GetHistory(ctx context.Context, ticker string) ([]models.Record, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	gate := f.gates[ticker]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.data[ticker], nil
}

func (f *fakeHistory) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

type fakeDirectory struct {
	calls   int
	tickers []string
	err     error
}

func (f *fakeDirectory) ListTickers(ctx context.Context, limit int) ([]string, error) {
	f.calls++
	return f.tickers, f.err
}

func records(n int) []models.Record {
	out := make([]models.Record, n)
	for i := range out {
		out[i] = models.Record{
			Date: "2025-01-" + []string{"02", "03", "06", "07", "08", "09"}[i%6],
			Fields: map[string]float64{
				"fechamento": 10 + float64(i),
				"abertura":   9 + float64(i),
				"volume":     1000 * float64(i+1),
			},
		}
	}
	return out
}

func newTestController(src HistorySource) *Controller {
	return NewController(src, []string{"PETR4", "VALE3", "ITUB4"}, Options{ExportWidth: 400, ExportHeight: 200})
}

// --- filter ---

func TestFilterTickers(t *testing.T) {
	dir := []string{"PETR4", "VALE3", "ITUB4"}
	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{"substring", "ETR", []string{"PETR4"}},
		{"case insensitive", "vale", []string{"VALE3"}},
		{"blank", "", dir},
		{"whitespace", "   ", dir},
		{"digit", "4", []string{"PETR4", "ITUB4"}},
		{"no match", "XYZ", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterTickers(dir, tc.query)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("FilterTickers(%q) = %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestFilterTickers_SubsetInOrder(t *testing.T) {
	dir := []string{"ABEV3", "BBAS3", "BBDC4", "PETR3", "PETR4", "B3SA3"}
	for _, q := range []string{"B", "BB", "3", "PETR", "a3"} {
		got := FilterTickers(dir, q)
		j := 0
		for _, tk := range got {
			if !strings.Contains(tk, strings.ToUpper(q)) {
				t.Fatalf("query %q: %q does not match", q, tk)
			}
			for j < len(dir) && dir[j] != tk {
				j++
			}
			if j == len(dir) {
				t.Fatalf("query %q: result %v is not an ordered subset", q, got)
			}
			j++
		}
	}
}

func TestFilterTickers_BlankReturnsCopy(t *testing.T) {
	dir := []string{"PETR4"}
	got := FilterTickers(dir, "")
	got[0] = "X"
	if dir[0] != "PETR4" {
		t.Fatal("blank filter must not alias the directory")
	}
}

// --- directory ---

func TestDirectory_LoadsOnce(t *testing.T) {
	src := &fakeDirectory{tickers: []string{"PETR4", "VALE3"}}
	d := NewDirectory(src, 500)

	if d.Ready() {
		t.Fatal("ready before load")
	}
	for i := 0; i < 3; i++ {
		if err := d.Load(context.Background()); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected one fetch, got %d", src.calls)
	}
	if !d.Ready() || !reflect.DeepEqual(d.Tickers(), []string{"PETR4", "VALE3"}) {
		t.Fatalf("ready=%v tickers=%v", d.Ready(), d.Tickers())
	}
}

func TestDirectory_FailureLeavesEmptyList(t *testing.T) {
	src := &fakeDirectory{err: errors.New("connection refused")}
	d := NewDirectory(src, 500)

	if err := d.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if err := d.Load(context.Background()); err == nil {
		t.Fatal("expected cached error")
	}
	if src.calls != 1 {
		t.Fatalf("failure must not be retried, got %d calls", src.calls)
	}
	if d.Ready() || len(d.Tickers()) != 0 {
		t.Fatalf("ready=%v tickers=%v", d.Ready(), d.Tickers())
	}
}

// --- controller ---

func TestController_StartsOnWelcome(t *testing.T) {
	c := newTestController(&fakeHistory{})
	st := c.State()
	if st.View != ViewWelcome || st.HasChart || st.Mode != models.ModeFechamento {
		t.Fatalf("unexpected initial state: %+v", st)
	}
	if len(st.Visible) != 3 {
		t.Fatalf("visible=%v", st.Visible)
	}
	if _, err := c.Export(); !errors.Is(err, chart.ErrNoChart) {
		t.Fatalf("expected ErrNoChart, got %v", err)
	}
}

func TestController_FilterUpdatesVisible(t *testing.T) {
	c := newTestController(&fakeHistory{})
	if got := c.Filter("etr"); !reflect.DeepEqual(got, []string{"PETR4"}) {
		t.Fatalf("Filter = %v", got)
	}
	st := c.State()
	if st.Query != "etr" || !reflect.DeepEqual(st.Visible, []string{"PETR4"}) {
		t.Fatalf("state=%+v", st)
	}
	if got := c.Filter(""); len(got) != 3 {
		t.Fatalf("blank filter = %v", got)
	}
}

func TestController_SelectTickerRenders(t *testing.T) {
	src := &fakeHistory{data: map[string][]models.Record{"PETR4": records(6)}}
	c := newTestController(src)

	if err := c.SelectTicker(context.Background(), " petr4 "); err != nil {
		t.Fatalf("SelectTicker: %v", err)
	}
	st := c.State()
	if st.View != ViewDashboard || st.Ticker != "PETR4" || st.Records != 6 || !st.HasChart {
		t.Fatalf("state=%+v", st)
	}
	cfg, err := c.Chart()
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if cfg.Type != chart.TypeLine || len(cfg.Data.Labels) != 6 || cfg.Data.Labels[0] != "02/01/2025" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestController_EmptyTicker(t *testing.T) {
	src := &fakeHistory{}
	c := newTestController(src)
	if err := c.SelectTicker(context.Background(), "  "); !errors.Is(err, ErrEmptyTicker) {
		t.Fatalf("expected ErrEmptyTicker, got %v", err)
	}
	if src.Calls() != 0 || c.State().View != ViewWelcome {
		t.Fatal("empty ticker must not change anything")
	}
}

func TestController_SetModeUsesCache(t *testing.T) {
	src := &fakeHistory{data: map[string][]models.Record{"VALE3": records(4)}}
	c := newTestController(src)
	if err := c.SelectTicker(context.Background(), "VALE3"); err != nil {
		t.Fatalf("SelectTicker: %v", err)
	}
	calls := src.Calls()

	if err := c.SetMode("volume"); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	cfg, _ := c.Chart()
	if cfg.Type != chart.TypeBar {
		t.Fatalf("volume should be a bar chart, got %q", cfg.Type)
	}
	if err := c.SetMode("abertura"); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	cfg, _ = c.Chart()
	if cfg.Type != chart.TypeLine || cfg.Data.Datasets[0].Data[0] != 9 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if src.Calls() != calls {
		t.Fatalf("mode switch made %d network calls", src.Calls()-calls)
	}
}

func TestController_SetModeInvalid(t *testing.T) {
	c := newTestController(&fakeHistory{})
	if err := c.SetMode("candles"); !errors.Is(err, models.ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if c.State().Mode != models.ModeFechamento {
		t.Fatal("mode changed on invalid input")
	}
}

func TestController_SetModeBeforeSelection(t *testing.T) {
	c := newTestController(&fakeHistory{})
	if err := c.SetMode("maximo"); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	st := c.State()
	if st.Mode != models.ModeMaximo || st.HasChart {
		t.Fatalf("state=%+v", st)
	}
}

func TestController_MissingFieldClearsChart(t *testing.T) {
	src := &fakeHistory{data: map[string][]models.Record{"PETR4": records(3)}}
	c := newTestController(src)
	if err := c.SelectTicker(context.Background(), "PETR4"); err != nil {
		t.Fatalf("SelectTicker: %v", err)
	}
	// fixtures carry no "minimo"
	if err := c.SetMode("minimo"); !errors.Is(err, chart.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if c.State().HasChart || c.Canvas().Live() != 0 {
		t.Fatal("chart should be cleared")
	}
	if _, err := c.Export(); !errors.Is(err, chart.ErrNoChart) {
		t.Fatalf("export should be unbound, got %v", err)
	}
}

func TestController_FailureKeepsDashboard(t *testing.T) {
	src := &fakeHistory{data: map[string][]models.Record{"PETR4": records(3)}}
	c := newTestController(src)
	if err := c.SelectTicker(context.Background(), "PETR4"); err != nil {
		t.Fatalf("SelectTicker: %v", err)
	}

	src.err = errors.New("upstream down")
	err := c.SelectTicker(context.Background(), "VALE3")
	if err == nil || !strings.Contains(err.Error(), "VALE3") {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	st := c.State()
	if st.View != ViewDashboard || st.Ticker != "VALE3" {
		t.Fatalf("state=%+v", st)
	}
	// previous chart stays, still labeled with its own ticker
	exp, err := c.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exp.Filename != "grafico_PETR4_fechamento.png" {
		t.Fatalf("filename=%q", exp.Filename)
	}
}

func TestController_EmptyLoadClearsPreviousChart(t *testing.T) {
	src := &fakeHistory{data: map[string][]models.Record{
		"PETR4": records(3),
		"VALE3": {},
	}}
	c := newTestController(src)
	if err := c.SelectTicker(context.Background(), "PETR4"); err != nil {
		t.Fatalf("SelectTicker PETR4: %v", err)
	}
	if err := c.SelectTicker(context.Background(), "VALE3"); err != nil {
		t.Fatalf("SelectTicker VALE3: %v", err)
	}

	st := c.State()
	if st.Ticker != "VALE3" || st.Records != 0 || st.HasChart {
		t.Fatalf("state=%+v", st)
	}
	if c.Canvas().Bound() != nil {
		t.Fatal("canvas still hosts the PETR4 chart")
	}
	if _, err := c.Export(); !errors.Is(err, chart.ErrNoChart) {
		t.Fatalf("export should be unbound, got %v", err)
	}

	// a mode switch on the empty list stays empty
	if err := c.SetMode("volume"); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if c.State().HasChart {
		t.Fatal("no chart expected after mode switch")
	}
}

func TestSessions_TransientIsNotRegistered(t *testing.T) {
	s := NewSessions(0, func() *Controller { return newTestController(&fakeHistory{}) })
	defer s.Close()

	if s.Transient() == nil || s.Len() != 0 {
		t.Fatalf("transient controller must not be registered, len=%d", s.Len())
	}
	if s.Transient() == s.Transient() {
		t.Fatal("each call must build a fresh controller")
	}
}

func TestController_StaleResponseDiscarded(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeHistory{
		data:  map[string][]models.Record{"PETR4": records(3), "VALE3": records(5)},
		gates: map[string]chan struct{}{"PETR4": gate},
	}
	c := newTestController(src)

	slow := make(chan error, 1)
	go func() { slow <- c.SelectTicker(context.Background(), "PETR4") }()

	// wait until the slow request is in flight
	deadline := time.Now().Add(2 * time.Second)
	for src.Calls() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow request never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := c.SelectTicker(context.Background(), "VALE3"); err != nil {
		t.Fatalf("SelectTicker(VALE3): %v", err)
	}
	close(gate)

	if err := <-slow; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	st := c.State()
	if st.Ticker != "VALE3" || st.Records != 5 {
		t.Fatalf("stale response leaked into state: %+v", st)
	}
	exp, err := c.Export()
	if err != nil || exp.Filename != "grafico_VALE3_fechamento.png" {
		t.Fatalf("export=%q err=%v", exp.Filename, err)
	}
}

func TestController_OneLiveInstance(t *testing.T) {
	src := &fakeHistory{data: map[string][]models.Record{"PETR4": records(6), "VALE3": records(4)}}
	c := newTestController(src)

	steps := []func() error{
		func() error { return c.SelectTicker(context.Background(), "PETR4") },
		func() error { return c.SetMode("volume") },
		func() error { return c.SelectTicker(context.Background(), "VALE3") },
		func() error { return c.SetMode("fechamento") },
		func() error { return c.Render() },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if live := c.Canvas().Live(); live != 1 {
			t.Fatalf("step %d: %d live instances", i, live)
		}
	}
	if binds := c.Canvas().Binds(); binds != len(steps) {
		t.Fatalf("expected %d binds, got %d", len(steps), binds)
	}
}

func TestController_ExportFollowsLatestChart(t *testing.T) {
	src := &fakeHistory{data: map[string][]models.Record{"PETR4": records(6)}}
	c := newTestController(src)
	if err := c.SelectTicker(context.Background(), "PETR4"); err != nil {
		t.Fatalf("SelectTicker: %v", err)
	}
	if err := c.SetMode("volume"); err != nil {
		t.Fatalf("SetMode: %v", err)
	}

	exp, err := c.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exp.Filename != "grafico_PETR4_volume.png" {
		t.Fatalf("filename=%q", exp.Filename)
	}
	if len(exp.PNG) < 8 || string(exp.PNG[1:4]) != "PNG" {
		t.Fatal("export is not a PNG")
	}
	if !strings.HasPrefix(exp.DataURL(), "data:image/png;base64,") {
		t.Fatal("bad data url")
	}
}

func TestController_ViewportOps(t *testing.T) {
	src := &fakeHistory{data: map[string][]models.Record{"PETR4": records(20)}}
	c := newTestController(src)

	if _, err := c.Pan(1); !errors.Is(err, chart.ErrNoChart) {
		t.Fatalf("expected ErrNoChart before render, got %v", err)
	}
	if err := c.SelectTicker(context.Background(), "PETR4"); err != nil {
		t.Fatalf("SelectTicker: %v", err)
	}

	v, err := c.ZoomTo(5, 9)
	if err != nil || v != (chart.Viewport{Min: 5, Max: 9}) {
		t.Fatalf("ZoomTo = %+v, %v", v, err)
	}
	v, err = c.Pan(3)
	if err != nil || v != (chart.Viewport{Min: 8, Max: 12}) {
		t.Fatalf("Pan = %+v, %v", v, err)
	}
	if _, err := c.SetViewport(chart.Viewport{Min: 3, Max: 40}); !errors.Is(err, chart.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	v, err = c.ResetZoom()
	if err != nil || v != (chart.Viewport{Min: 0, Max: 19}) {
		t.Fatalf("ResetZoom = %+v, %v", v, err)
	}

	// a new render starts fully zoomed out
	if _, err := c.ZoomTo(2, 4); err != nil {
		t.Fatal(err)
	}
	if err := c.SetMode("volume"); err != nil {
		t.Fatal(err)
	}
	if st := c.State(); st.Viewport == nil || *st.Viewport != (chart.Viewport{Min: 0, Max: 19}) {
		t.Fatalf("viewport=%+v", st.Viewport)
	}
}

func TestController_Close(t *testing.T) {
	src := &fakeHistory{data: map[string][]models.Record{"PETR4": records(3)}}
	c := newTestController(src)
	if err := c.SelectTicker(context.Background(), "PETR4"); err != nil {
		t.Fatal(err)
	}
	c.Close()
	if c.Canvas().Live() != 0 {
		t.Fatal("Close must destroy the chart")
	}
	if _, err := c.Export(); !errors.Is(err, chart.ErrNoChart) {
		t.Fatalf("expected ErrNoChart, got %v", err)
	}
}

// --- sessions ---

func TestSessions_GetCreatesOnce(t *testing.T) {
	built := 0
	s := NewSessions(0, func() *Controller {
		built++
		return newTestController(&fakeHistory{})
	})
	defer s.Close()

	a := s.Get("a")
	if s.Get("a") != a {
		t.Fatal("same id must return the same controller")
	}
	if s.Get("b") == a {
		t.Fatal("different ids must not share controllers")
	}
	if built != 2 || s.Len() != 2 {
		t.Fatalf("built=%d len=%d", built, s.Len())
	}
	s.Drop("a")
	if s.Len() != 1 {
		t.Fatalf("len=%d after drop", s.Len())
	}
}

func TestSessions_SweepClosesIdle(t *testing.T) {
	src := &fakeHistory{data: map[string][]models.Record{"PETR4": records(3)}}
	s := NewSessions(time.Hour, func() *Controller { return newTestController(src) })
	defer s.Close()

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	idle := s.Get("idle")
	if err := idle.SelectTicker(context.Background(), "PETR4"); err != nil {
		t.Fatal(err)
	}

	now = now.Add(50 * time.Minute)
	s.Get("active")

	now = now.Add(20 * time.Minute)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if s.Len() != 1 {
		t.Fatalf("len=%d", s.Len())
	}
	if idle.Canvas().Live() != 0 {
		t.Fatal("expired session must destroy its chart")
	}
}

func TestSessions_CloseIsIdempotent(t *testing.T) {
	s := NewSessions(time.Minute, func() *Controller { return newTestController(&fakeHistory{}) })
	s.Get("x")
	s.Close()
	s.Close()
	if s.Len() != 0 {
		t.Fatalf("len=%d after close", s.Len())
	}
}
