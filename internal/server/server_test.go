package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"

	"whomortality/internal/catalog"
	"whomortality/internal/config"
	"whomortality/internal/memstore"
	"whomortality/internal/metrics"
	"whomortality/internal/mortality"
	"whomortality/internal/testutil"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, db pinger) *Server {
	t.Helper()

	store := testutil.FactStore()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	resolver := mortality.NewScopeResolver(nil, store)
	engine := mortality.NewEngine(store, resolver, mortality.WithRecorder(m))

	cfg := &config.Config{
		Env:          "test",
		BaseURL:      "http://localhost:3000",
		RateLimitMax: 1000,
		MaxCauses:    10,
		SiteTitle:    "Test Mortality",
		ViewsDir:     "../../views",
	}
	s := New(cfg, nil)
	s.RegisterRoutes(Dependencies{
		Engine:   engine,
		Catalog:  catalog.New(store, resolver, nil, 0, m),
		DB:       db,
		Gatherer: reg,
	})
	return s
}

func do(t *testing.T, s *Server, method, target, body string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, data
}

type envelope struct {
	Status string          `json:"status"`
	Kind   string          `json:"kind"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

func decode(t *testing.T, data []byte) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("invalid JSON %s: %v", data, err)
	}
	return env
}

func TestProbes(t *testing.T) {
	s := newTestServer(t, pinger{})
	if resp, body := do(t, s, "GET", "/healthz", ""); resp.StatusCode != 200 {
		t.Errorf("/healthz = %d: %s", resp.StatusCode, body)
	}
	if resp, body := do(t, s, "GET", "/readyz", ""); resp.StatusCode != 200 {
		t.Errorf("/readyz = %d: %s", resp.StatusCode, body)
	}

	down := newTestServer(t, pinger{err: errors.New("connection refused")})
	if resp, _ := do(t, down, "GET", "/readyz", ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("/readyz with database down = %d, want 503", resp.StatusCode)
	}
}

func TestDataEndpoint(t *testing.T) {
	s := newTestServer(t, pinger{})

	resp, body := do(t, s, "POST", "/api/data", `{"country":"mexico","causes":["01::A10","104::C34","bogus"]}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}

	var data struct {
		Scope  string `json:"scope"`
		Series []struct {
			Year        int      `json:"Year"`
			TotalDeaths int64    `json:"TotalDeaths"`
			Rate        *float64 `json:"Tasa_Mortalidad_x_100k"`
		} `json:"series"`
		Breakdown []mortality.CauseYearBreakdown `json:"breakdown"`
	}
	if err := json.Unmarshal(decode(t, body).Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if data.Scope != "mexico" {
		t.Errorf("scope = %q", data.Scope)
	}
	if len(data.Series) != 2 || data.Series[0].TotalDeaths != 8 || data.Series[1].TotalDeaths != 6 {
		t.Errorf("series = %+v", data.Series)
	}
	if data.Series[0].Rate == nil || *data.Series[0].Rate != 4 {
		t.Errorf("2010 rate = %v, want 4", data.Series[0].Rate)
	}
	if len(data.Breakdown) != 2 {
		t.Errorf("breakdown = %+v", data.Breakdown)
	}
}

func TestDataEndpointErrors(t *testing.T) {
	s := newTestServer(t, pinger{})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		kind   string
	}{
		{"invalid json", "/api/data", `{"country":`, 400, ""},
		{"missing scope", "/api/data", `{"causes":["01::A10"]}`, 400, ""},
		{"no causes", "/api/data", `{"country":"Mexico","causes":[]}`, 400, "no_causes_selected"},
		{"only malformed causes", "/api/data", `{"country":"Mexico","causes":["A10"]}`, 400, "no_causes_selected"},
		{"too many causes", "/api/data", `{"country":"Mexico","causes":["1","2","3","4","5","6","7","8","9","10","11"]}`, 400, "no_causes_selected"},
		{"unknown scope", "/api/stats", `{"country":"Atlantis","causes":["01::A10"]}`, 404, "scope_not_found"},
		{"no data", "/api/stats", `{"scope":"Chile","causes":["104::C34"]}`, 404, "no_data_for_scope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, s, "POST", tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			env := decode(t, body)
			if env.Status != "error" || env.Error == "" {
				t.Errorf("envelope = %+v", env)
			}
			if env.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", env.Kind, tt.kind)
			}
		})
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t, pinger{})

	resp, body := do(t, s, "POST", "/api/stats", `{"country":"Mexico","causes":["01::A10","104::C34"]}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}

	var data struct {
		Summary mortality.SummaryStats `json:"summary"`
		Top     []mortality.TopCause   `json:"top_causes_by_year"`
	}
	if err := json.Unmarshal(decode(t, body).Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if data.Summary.StartYear != 2010 || data.Summary.EndYear != 2011 || data.Summary.MaxDeathsYear != 2010 {
		t.Errorf("summary = %+v", data.Summary)
	}
	if len(data.Top) != 2 || data.Top[0].Year != 2011 {
		t.Errorf("top causes = %+v", data.Top)
	}
}

func TestExportEndpoint(t *testing.T) {
	s := newTestServer(t, pinger{})

	resp, body := do(t, s, "POST", "/api/export", `{"country":"Mexico","causes":["01::A10"]}`)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "mortality_mexico.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	want := "Year,TotalDeaths,TotalPopulation,Porcentaje_Uso,Tasa_Mortalidad_x_100k\n2010,8,200000,45.70,4.0000\n"
	if string(body) != want {
		t.Errorf("body = %q, want %q", body, want)
	}

	resp, body = do(t, s, "POST", "/api/export", `{"country":"Chile","causes":["104::C34"]}`)
	if resp.StatusCode != 200 {
		t.Fatalf("empty export status = %d: %s", resp.StatusCode, body)
	}
	if string(body) != "Year,TotalDeaths,TotalPopulation,Porcentaje_Uso,Tasa_Mortalidad_x_100k\n" {
		t.Errorf("empty export body = %q", body)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t, pinger{})

	resp, body := do(t, s, "GET", "/api/causes", "")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var causes struct {
		Scope  string          `json:"scope"`
		Causes []catalog.Entry `json:"causes"`
	}
	if err := json.Unmarshal(decode(t, body).Data, &causes); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if causes.Scope != "global" || len(causes.Causes) != 2 {
		t.Fatalf("causes = %+v", causes)
	}
	if causes.Causes[0].Description != "Cholera (2010-2010, 2 countries)" {
		t.Errorf("description = %q", causes.Causes[0].Description)
	}

	resp, body = do(t, s, "GET", "/api/causes?country=Chile", "")
	if resp.StatusCode != 200 || !strings.Contains(string(body), `"Cholera (2010-2010)"`) {
		t.Errorf("scoped causes = %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, s, "GET", "/api/causes?country=Atlantis", "")
	if resp.StatusCode != 404 {
		t.Errorf("unknown scope causes = %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, s, "GET", "/api/countries", "")
	if resp.StatusCode != 200 || !strings.Contains(string(body), `["Chile","Mexico"]`) {
		t.Errorf("countries = %d: %s", resp.StatusCode, body)
	}
}

func TestCountriesPage(t *testing.T) {
	s := newTestServer(t, pinger{})

	resp, body := do(t, s, "GET", "/countries", "")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	page := string(body)
	for _, want := range []string{"Test Mortality", "Mexico", "/api/causes?country=Chile"} {
		if !strings.Contains(page, want) {
			t.Errorf("page does not contain %q", want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, pinger{})
	do(t, s, "POST", "/api/data", `{"country":"Mexico","causes":["01::A10"]}`)

	resp, body := do(t, s, "GET", "/metrics", "")
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "whomortality_operation_duration_seconds") {
		t.Errorf("metrics output missing operation histogram:\n%s", body)
	}
}

// stalledStore never answers the deaths read before the request deadline.
type stalledStore struct{ *memstore.Store }

func (s stalledStore) DeathsByYear(ctx context.Context, _ mortality.FilterContext) ([]mortality.YearCount, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestQueryTimeout(t *testing.T) {
	store := stalledStore{testutil.FactStore()}
	resolver := mortality.NewScopeResolver(nil, store)

	s := New(&config.Config{
		BaseURL:      "http://localhost:3000",
		RateLimitMax: 1000,
		MaxCauses:    10,
		QueryTimeout: 20 * time.Millisecond,
		ViewsDir:     "../../views",
	}, nil)
	s.RegisterRoutes(Dependencies{
		Engine:   mortality.NewEngine(store, resolver),
		Catalog:  catalog.New(store, resolver, nil, 0, nil),
		DB:       pinger{},
		Gatherer: prometheus.NewRegistry(),
	})

	resp, body := do(t, s, "POST", "/api/export", `{"country":"Mexico","causes":["01::A10"]}`)
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504: %s", resp.StatusCode, body)
	}
	if env := decode(t, body); env.Error != "query timed out" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestBuildTLSConfig(t *testing.T) {
	cfg, err := buildTLSConfig(&config.Config{TLSEnabled: true})
	if err != nil {
		t.Fatalf("buildTLSConfig() error = %v", err)
	}
	if cfg.ClientCAs != nil || cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("plain TLS config = %+v", cfg)
	}

	dir := t.TempDir()
	if _, err := buildTLSConfig(&config.Config{TLSEnabled: true, TLSCAFile: filepath.Join(dir, "missing.pem")}); err == nil {
		t.Error("missing CA file should fail")
	}

	garbage := filepath.Join(dir, "garbage.pem")
	if err := os.WriteFile(garbage, []byte("not a certificate"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := buildTLSConfig(&config.Config{TLSEnabled: true, TLSCAFile: garbage}); err == nil {
		t.Error("CA file without certificates should fail")
	}
}

func TestCORSOrigins(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want []string
	}{
		{"base url", config.Config{BaseURL: "http://localhost:3000"}, []string{"http://localhost:3000"}},
		{"explicit list", config.Config{BaseURL: "http://localhost:3000", CORSOrigins: "https://a.example, https://b.example,"}, []string{"https://a.example", "https://b.example"}},
		{"blank list falls back", config.Config{BaseURL: "http://localhost:3000", CORSOrigins: " "}, []string{"http://localhost:3000"}},
		{"nothing configured", config.Config{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := corsOrigins(&tt.cfg)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("corsOrigins() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewWithoutOrigins(t *testing.T) {
	s := New(&config.Config{RateLimitMax: 1000, ViewsDir: "../../views"}, nil)
	s.App.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString("pong")
	})

	resp, body := do(t, s, "GET", "/ping", "")
	if resp.StatusCode != 200 || string(body) != "pong" {
		t.Errorf("GET /ping = %d %q", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want none", got)
	}
}
