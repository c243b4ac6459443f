package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pricestick/internal/application/usecase/monitor"
	"pricestick/internal/domain"
)

type mockStatus struct{ st monitor.Status }

func (m mockStatus) Status() monitor.Status { return m.st }

type mockBroker struct{ up bool }

func (m mockBroker) IsConnected() bool { return m.up }

func newTestServer(t *testing.T, st monitor.Status) (*Server, *domain.AssetTable) {
	t.Helper()
	table, err := domain.NewAssetTable([]domain.AssetRecord{
		domain.NewAssetRecord(domain.LookupInstrument("BTC"), "CAD", domain.GroupCrypto, ""),
		domain.NewAssetRecord(domain.LookupInstrument("MSFT"), "USD", domain.GroupEquity, domain.MarketClosed),
	})
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	reg := prometheus.NewRegistry()
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "pricestick_test_gauge", Help: "test"})
	reg.MustRegister(g)
	g.Set(1)
	return New(Deps{Table: table, Status: mockStatus{st}, Broker: mockBroker{true}, Gatherer: reg}), table
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	s, _ := newTestServer(t, monitor.Status{Cycles: 1, LastFetch: now, LastSuccess: now})

	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Assets != 2 || body.MQTTConnected == nil || !*body.MQTTConnected {
		t.Errorf("body = %+v", body)
	}
}

func TestHealthDegraded(t *testing.T) {
	s, _ := newTestServer(t, monitor.Status{Cycles: 3, LastError: "API Key invalid or expired"})
	var body healthResponse
	_ = json.Unmarshal(get(t, s, "/healthz").Body.Bytes(), &body)
	if body.Status != "degraded" || body.Loop == nil || body.Loop.LastError == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestAssets(t *testing.T) {
	s, table := newTestServer(t, monitor.Status{})
	_ = table.ApplyQuotes(map[string]domain.Quote{"BTC": {Price: 1234567.891, Timestamp: "t"}})

	rec := get(t, s, "/api/assets")
	var body []assetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("assets = %+v", body)
	}
	btc := body[0]
	if btc.PriceText != "1,234,567.89" || btc.Price != 1234567.89 || !btc.Loaded || btc.Group != "crypto" {
		t.Errorf("BTC = %+v", btc)
	}
	if msft := body[1]; msft.Loaded || msft.Trend != "unknown" || msft.LastUpdated != domain.MarketClosed {
		t.Errorf("MSFT = %+v", msft)
	}
}

func TestMetrics(t *testing.T) {
	s, _ := newTestServer(t, monitor.Status{})
	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "pricestick_test_gauge 1") {
		t.Errorf("metrics = %d %s", rec.Code, rec.Body.String())
	}
}
