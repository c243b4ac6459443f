package port

import "time"

// Metrics receives fetch and publish outcomes.
type Metrics interface {
	ObserveFetch(group string, err error, took time.Duration)
	SetPrice(symbol string, price float64)
	PublishFailed(kind string)
}

type nopMetrics struct{}

// NopMetrics discards everything.
func NopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) ObserveFetch(string, error, time.Duration) {}
func (nopMetrics) SetPrice(string, float64)                  {}
func (nopMetrics) PublishFailed(string)                      {}
