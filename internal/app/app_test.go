package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guttosm/b3view/config"
	_ "github.com/guttosm/b3view/docs"
	"github.com/guttosm/b3view/internal/domain/dto"
	"github.com/guttosm/b3view/internal/marketapi"
	"github.com/guttosm/b3view/internal/middleware"
)

// fakeBackend mimics the market API.
func fakeBackend(t *testing.T, directoryStatus int) (*httptest.Server, *int32) {
	t.Helper()
	var detailCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/ativos", func(w http.ResponseWriter, r *http.Request) {
		if directoryStatus != http.StatusOK {
			http.Error(w, "down", directoryStatus)
			return
		}
		if r.URL.Query().Get("limit") != "50" {
			t.Errorf("limit=%q", r.URL.Query().Get("limit"))
		}
		_, _ = w.Write([]byte(`{"ativos":["PETR4","VALE3","ITUB4"],"total":3}`))
	})
	mux.HandleFunc("/ativos/PETR4", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&detailCalls, 1)
		_, _ = w.Write([]byte(`[
			{"data_pregao":"2025-01-02","ticker":"PETR4","abertura":37.1,"fechamento":37.5,"maximo":38,"minimo":36.9,"volume":1000},
			{"data_pregao":"2025-01-03","ticker":"PETR4","abertura":37.4,"fechamento":37.9,"maximo":38.2,"minimo":37.2,"volume":1500},
			{"data_pregao":"2025-01-06","ticker":"PETR4","abertura":37.8,"fechamento":36.8,"maximo":37.9,"minimo":36.5,"volume":2100}
		]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &detailCalls
}

func useConfig(t *testing.T, url string) {
	t.Helper()
	old := config.AppConfig
	t.Cleanup(func() { config.AppConfig = old })
	config.AppConfig = config.Config{
		Server:  config.ServerConfig{Port: "0", RateLimit: 0},
		Market:  config.MarketConfig{URL: url, Timeout: 2 * time.Second, DirectoryLimit: 50},
		Chart:   config.ChartConfig{Width: 480, Height: 240},
		Session: config.SessionConfig{TTL: time.Hour},
	}
}

func TestInitMarketClient(t *testing.T) {
	cases := []struct {
		url     string
		wantErr bool
	}{
		{url: "http://127.0.0.1:8000"},
		{url: "https://api.example.com"},
		{url: "127.0.0.1:8000", wantErr: true},
		{url: "ftp://host", wantErr: true},
		{url: "http://", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			_, err := InitMarketClient(config.Config{Market: config.MarketConfig{URL: tc.url, Timeout: time.Second}})
			if (err != nil) != tc.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestInitializeApp_MarketClientFailure(t *testing.T) {
	useConfig(t, "not a url")
	r, cleanup, err := InitializeApp()
	if err == nil || r != nil || cleanup != nil {
		if cleanup != nil {
			cleanup()
		}
		t.Fatalf("expected error from InitializeApp with invalid API_URL")
	}
}

func TestInitializeApp_OpenerError(t *testing.T) {
	old := marketOpener
	marketOpener = func(config.Config) (*marketapi.Client, error) { return nil, errors.New("boom") }
	t.Cleanup(func() { marketOpener = old })

	if _, _, err := InitializeApp(); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err=%v", err)
	}
}

func TestInitializeApp_DirectoryDown(t *testing.T) {
	srv, _ := fakeBackend(t, http.StatusInternalServerError)
	useConfig(t, srv.URL)

	router, cleanup, err := InitializeApp()
	if err != nil {
		t.Fatalf("InitializeApp: %v", err)
	}
	defer cleanup()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/directory", nil))
	var dir dto.DirectoryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &dir)
	if w.Code != http.StatusOK || dir.Total != 0 {
		t.Fatalf("directory: code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestInitializeApp_HappyPath(t *testing.T) {
	srv, detailCalls := fakeBackend(t, http.StatusOK)
	useConfig(t, srv.URL+"/")

	router, cleanup, err := InitializeApp()
	if err != nil || router == nil || cleanup == nil {
		t.Fatalf("InitializeApp failed: err=%v", err)
	}
	defer cleanup()

	for _, p := range []string{"/healthz", "/readyz", "/", "/swagger/doc.json"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s status=%d", p, w.Code)
		}
	}

	var cookie *http.Cookie
	send := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		for _, c := range w.Result().Cookies() {
			if c.Name == middleware.SessionCookie {
				cookie = c
			}
		}
		return w
	}

	w := send(http.MethodGet, "/api/v1/directory?q=etr")
	var dir dto.DirectoryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &dir)
	if dir.Total != 1 || dir.Tickers[0] != "PETR4" {
		t.Fatalf("directory=%+v", dir)
	}

	if w := send(http.MethodPost, "/api/v1/assets/PETR4"); w.Code != http.StatusOK {
		t.Fatalf("select status=%d body=%s", w.Code, w.Body.String())
	}
	for _, m := range []string{"volume", "maximo", "minimo", "abertura", "fechamento"} {
		if w := send(http.MethodPost, "/api/v1/mode/"+m); w.Code != http.StatusOK {
			t.Fatalf("mode %s status=%d body=%s", m, w.Code, w.Body.String())
		}
	}
	if n := atomic.LoadInt32(detailCalls); n != 1 {
		t.Fatalf("mode switches must reuse cached records, got %d detail calls", n)
	}

	if w := send(http.MethodPost, "/api/v1/assets/NOPE3"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown ticker status=%d", w.Code)
	}

	w = send(http.MethodGet, "/api/v1/chart/export")
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), "grafico_PETR4_fechamento.png") {
		t.Fatalf("export: code=%d cd=%q", w.Code, w.Header().Get("Content-Disposition"))
	}
}
