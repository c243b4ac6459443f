package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"pricestick/internal/domain"
)

func newPublisher(b *mockBroker) *PublishService {
	return NewPublishService(PublishDeps{
		Broker:          b,
		DiscoveryPrefix: "homeassistant",
		TopicPrefix:     "m5crypto",
		Device: Device{
			ID:           "m5crypto_display",
			Name:         "Crypto Price Display",
			Model:        "M5StickC Plus2",
			Manufacturer: "M5Stack",
			SWVersion:    "2.2",
		},
	})
}

func TestTopics(t *testing.T) {
	p := newPublisher(&mockBroker{})
	if got := p.DiscoveryTopic("BTC"); got != "homeassistant/sensor/m5crypto_btc/config" {
		t.Errorf("discovery topic = %s", got)
	}
	if got := p.StateTopic("MSFT"); got != "m5crypto/msft/state" {
		t.Errorf("state topic = %s", got)
	}
	if got := p.AvailabilityTopic(); got != "m5crypto/status" {
		t.Errorf("availability topic = %s", got)
	}
}

func TestBuildDiscovery(t *testing.T) {
	p := newPublisher(&mockBroker{})
	rec, _ := testTable().Get(0)
	raw, err := json.Marshal(p.BuildDiscovery(rec))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	_ = json.Unmarshal(raw, &got)

	want := map[string]string{
		"name":                  "Bitcoin Price",
		"unique_id":             "m5crypto_btc_price",
		"state_topic":           "m5crypto/btc/state",
		"value_template":        "{{ value_json.price }}",
		"unit_of_measurement":   "CAD",
		"icon":                  "mdi:bitcoin",
		"state_class":           "measurement",
		"availability_topic":    "m5crypto/status",
		"json_attributes_topic": "m5crypto/btc/state",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %s", k, got[k], v)
		}
	}
	dev, _ := got["device"].(map[string]any)
	ids, _ := dev["identifiers"].([]any)
	if len(ids) != 1 || ids[0] != "m5crypto_display" || dev["sw_version"] != "2.2" {
		t.Errorf("device = %v", dev)
	}
	if tmpl, _ := got["json_attributes_template"].(string); !strings.Contains(tmpl, "value_json.trend") {
		t.Errorf("attributes template = %q", tmpl)
	}
}

func TestRoundPrice(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.123456, 0.1235},
		{12.34567, 12.346},
		{1234.5678, 1234.57},
		{100, 100},
		{99.99949, 99.999},
	}
	for _, tt := range tests {
		if got := RoundPrice(tt.in); got != tt.want {
			t.Errorf("RoundPrice(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildStateTrend(t *testing.T) {
	rec := domain.NewAssetRecord(domain.LookupInstrument("ETH"), "CAD", domain.GroupCrypto, "")
	if s := BuildState(rec); s.Trend != "unknown" {
		t.Errorf("first trend = %s", s.Trend)
	}
	rec.Apply(domain.Quote{Price: 10, Timestamp: "a"})
	rec.Apply(domain.Quote{Price: 9.87654, Timestamp: "b"})
	s := BuildState(rec)
	if s.Trend != "down" || s.Price != 9.877 || s.Updated != "b" {
		t.Errorf("state = %+v", s)
	}
}

func TestPublishDiscoveryRetriesUntilSent(t *testing.T) {
	b := &mockBroker{}
	p := newPublisher(b)
	recs := testTable().Snapshot()

	if err := p.PublishDiscovery(context.Background(), recs); err == nil {
		t.Fatalf("expected error while disconnected")
	}
	b.connected = true
	b.failTopic = "homeassistant/sensor/m5crypto_eth/config"
	if err := p.PublishDiscovery(context.Background(), recs); err == nil || !p.DiscoveryPending() {
		t.Fatalf("discovery should stay pending after a failed publish")
	}
	b.failTopic = ""
	b.msgs = nil
	if err := p.PublishDiscovery(context.Background(), recs); err != nil {
		t.Fatalf("PublishDiscovery: %v", err)
	}
	if p.DiscoveryPending() || len(b.msgs) != len(recs) {
		t.Errorf("pending=%v msgs=%d", p.DiscoveryPending(), len(b.msgs))
	}
	for _, m := range b.msgs {
		if !m.retained {
			t.Errorf("discovery %s not retained", m.topic)
		}
	}

	b.msgs = nil
	_ = p.PublishDiscovery(context.Background(), recs)
	if len(b.msgs) != 0 {
		t.Errorf("discovery sent twice")
	}
}

func TestPublishStatesIncludesUnpriced(t *testing.T) {
	b := &mockBroker{connected: true}
	p := newPublisher(b)
	table := testTable()
	_ = p.PublishDiscovery(context.Background(), table.Snapshot())
	b.msgs = nil

	_ = table.ApplyQuotes(map[string]domain.Quote{"BTC": {Price: 90000.123, Timestamp: "t"}})
	if err := p.PublishStates(context.Background(), table.Snapshot()); err != nil {
		t.Fatalf("PublishStates: %v", err)
	}
	if len(b.msgs) != table.Len() {
		t.Fatalf("msgs = %d, want %d", len(b.msgs), table.Len())
	}
	byTopic := map[string]published{}
	for _, m := range b.msgs {
		if m.retained {
			t.Errorf("state message retained: %+v", m)
		}
		byTopic[m.topic] = m
	}
	if got := byTopic["m5crypto/btc/state"].payload; got != `{"price":90000.12,"trend":"down","updated":"t"}` {
		t.Errorf("BTC payload = %s", got)
	}

	var msft StatePayload
	if err := json.Unmarshal([]byte(byTopic["m5crypto/msft/state"].payload), &msft); err != nil {
		t.Fatalf("MSFT payload: %v", err)
	}
	if msft.Trend != "unknown" || msft.Price != 0 {
		t.Errorf("MSFT state = %+v", msft)
	}
}
