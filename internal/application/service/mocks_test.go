package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"pricestick/internal/domain"
)

type mockSource struct {
	name  string
	body  []byte
	err   error
	calls int
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Fetch(ctx context.Context) ([]byte, error) {
	m.calls++
	return m.body, m.err
}

type mockLink struct {
	up         bool
	reconnects int
	fixOnRetry bool
}

func (m *mockLink) Connected(ctx context.Context) bool { return m.up }

func (m *mockLink) Reconnect(ctx context.Context) error {
	m.reconnects++
	if m.fixOnRetry {
		m.up = true
		return nil
	}
	return errors.New("timeout")
}

type published struct {
	topic    string
	payload  string
	retained bool
}

type mockBroker struct {
	mu        sync.Mutex
	connected bool
	failTopic string
	msgs      []published
}

func (m *mockBroker) Connect(ctx context.Context) error { return nil }
func (m *mockBroker) IsConnected() bool                 { return m.connected }
func (m *mockBroker) Close()                            {}

func (m *mockBroker) Publish(ctx context.Context, topic string, payload []byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if topic == m.failTopic {
		return errors.New("publish refused")
	}
	m.msgs = append(m.msgs, published{topic: topic, payload: string(payload), retained: retained})
	return nil
}

type mockRepository struct {
	saved  map[string]domain.AssetRecord
	loaded []domain.AssetRecord
}

func (m *mockRepository) UpsertAsset(ctx context.Context, rec domain.AssetRecord, ts int64) error {
	m.saved[rec.Symbol] = rec
	return nil
}

func (m *mockRepository) LoadAssets(ctx context.Context) ([]domain.AssetRecord, error) {
	return m.loaded, nil
}

func (m *mockRepository) Close() error { return nil }

type mockMetrics struct {
	fetches map[string]int
	failed  map[string]int
	prices  map[string]float64
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{fetches: map[string]int{}, failed: map[string]int{}, prices: map[string]float64{}}
}

func (m *mockMetrics) ObserveFetch(group string, err error, took time.Duration) {
	if err != nil {
		m.failed[group]++
		return
	}
	m.fetches[group]++
}
func (m *mockMetrics) SetPrice(symbol string, price float64) { m.prices[symbol] = price }
func (m *mockMetrics) PublishFailed(kind string)             { m.failed[kind]++ }

func testTable() *domain.AssetTable {
	t, _ := domain.NewAssetTable([]domain.AssetRecord{
		domain.NewAssetRecord(domain.LookupInstrument("BTC"), "CAD", domain.GroupCrypto, ""),
		domain.NewAssetRecord(domain.LookupInstrument("ETH"), "CAD", domain.GroupCrypto, ""),
		domain.NewAssetRecord(domain.LookupInstrument("XRP"), "CAD", domain.GroupCrypto, ""),
		domain.NewAssetRecord(domain.LookupInstrument("MSFT"), "USD", domain.GroupEquity, domain.MarketClosed),
	})
	return t
}
