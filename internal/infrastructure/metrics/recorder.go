package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pricestick/internal/domain"
)

// Recorder implements port.Metrics using Prometheus.
type Recorder struct {
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	lastPrice     *prometheus.GaugeVec
	publishErrors *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricestick_fetch_total",
				Help: "Fetch attempts per asset group and outcome",
			},
			[]string{"group", "result"},
		),
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricestick_fetch_duration_seconds",
				Help:    "Duration of one group fetch including decode",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"group"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pricestick_last_price",
				Help: "Last decoded price for a symbol",
			},
			[]string{"symbol"},
		),
		publishErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricestick_mqtt_publish_errors_total",
				Help: "Failed MQTT publishes by message kind",
			},
			[]string{"kind"},
		),
	}
}

func (r *Recorder) ObserveFetch(group string, err error, took time.Duration) {
	r.fetchTotal.WithLabelValues(group, result(err)).Inc()
	r.fetchDuration.WithLabelValues(group).Observe(took.Seconds())
}

func (r *Recorder) SetPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) PublishFailed(kind string) {
	r.publishErrors.WithLabelValues(kind).Inc()
}

// result maps a fetch error to a low-cardinality label.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrLink):
		return "link"
	case errors.Is(err, domain.ErrAuth):
		return "auth"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrTransport):
		return "transport"
	case errors.Is(err, domain.ErrMalformedPayload), errors.Is(err, domain.ErrMissingField):
		return "decode"
	default:
		return "error"
	}
}
