package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pricestick/internal/application/port"
	"pricestick/internal/domain"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Device describes the physical display in the Home Assistant registry.
type Device struct {
	ID           string
	Name         string
	Model        string
	Manufacturer string
	SWVersion    string
}

type PublishDeps struct {
	Broker          port.Broker
	Metrics         port.Metrics
	DiscoveryPrefix string // e.g. "homeassistant"
	TopicPrefix     string // e.g. "m5crypto"
	Device          Device
	Timeout         time.Duration
}

// PublishService mirrors the asset table to Home Assistant over MQTT.
// Failures are logged and never reach the display loop.
type PublishService struct {
	deps             PublishDeps
	discoveryPending bool
}

func NewPublishService(deps PublishDeps) *PublishService {
	if deps.Metrics == nil {
		deps.Metrics = port.NopMetrics()
	}
	if deps.Timeout <= 0 {
		deps.Timeout = 5 * time.Second
	}
	return &PublishService{deps: deps, discoveryPending: true}
}

type discoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	SWVersion    string   `json:"sw_version"`
}

// DiscoveryConfig is the retained Home Assistant sensor config payload.
type DiscoveryConfig struct {
	Name                   string          `json:"name"`
	UniqueID               string          `json:"unique_id"`
	StateTopic             string          `json:"state_topic"`
	ValueTemplate          string          `json:"value_template"`
	UnitOfMeasurement      string          `json:"unit_of_measurement"`
	Icon                   string          `json:"icon"`
	StateClass             string          `json:"state_class"`
	AvailabilityTopic      string          `json:"availability_topic"`
	Device                 discoveryDevice `json:"device"`
	JSONAttributesTopic    string          `json:"json_attributes_topic"`
	JSONAttributesTemplate string          `json:"json_attributes_template"`
}

// StatePayload is the per-asset state message.
type StatePayload struct {
	Price   float64 `json:"price"`
	Trend   string  `json:"trend"`
	Updated string  `json:"updated"`
}

func (s *PublishService) DiscoveryTopic(symbol string) string {
	return fmt.Sprintf("%s/sensor/%s_%s/config", s.deps.DiscoveryPrefix, s.deps.TopicPrefix, strings.ToLower(symbol))
}

func (s *PublishService) StateTopic(symbol string) string {
	return fmt.Sprintf("%s/%s/state", s.deps.TopicPrefix, strings.ToLower(symbol))
}

func (s *PublishService) AvailabilityTopic() string {
	return s.deps.TopicPrefix + "/status"
}

func (s *PublishService) BuildDiscovery(rec domain.AssetRecord) DiscoveryConfig {
	sym := strings.ToLower(rec.Symbol)
	state := s.StateTopic(rec.Symbol)
	icon := rec.Icon
	if icon == "" {
		icon = domain.FallbackIcon
	}
	d := s.deps.Device
	return DiscoveryConfig{
		Name:              rec.DisplayName + " Price",
		UniqueID:          s.deps.TopicPrefix + "_" + sym + "_price",
		StateTopic:        state,
		ValueTemplate:     "{{ value_json.price }}",
		UnitOfMeasurement: rec.Currency,
		Icon:              icon,
		StateClass:        "measurement",
		AvailabilityTopic: s.AvailabilityTopic(),
		Device: discoveryDevice{
			Identifiers:  []string{d.ID},
			Name:         d.Name,
			Model:        d.Model,
			Manufacturer: d.Manufacturer,
			SWVersion:    d.SWVersion,
		},
		JSONAttributesTopic:    state,
		JSONAttributesTemplate: "{{ {'trend': value_json.trend, 'updated': value_json.updated} | tojson }}",
	}
}

func BuildState(rec domain.AssetRecord) StatePayload {
	return StatePayload{
		Price:   RoundPrice(rec.Price),
		Trend:   rec.Trend().String(),
		Updated: rec.LastUpdated,
	}
}

// RoundPrice keeps 2 decimals from 100 up, 3 from 1 up and 4 below that.
func RoundPrice(p float64) float64 {
	d := decimal.NewFromFloat(p)
	var places int32
	switch {
	case p >= 100:
		places = 2
	case p >= 1:
		places = 3
	default:
		places = 4
	}
	return d.Round(places).InexactFloat64()
}

// DiscoveryPending reports whether discovery still has to be sent.
func (s *PublishService) DiscoveryPending() bool {
	return s.discoveryPending
}

// PublishDiscovery sends the retained sensor configs once. On failure the
// publish stays pending and the next call retries.
func (s *PublishService) PublishDiscovery(ctx context.Context, recs []domain.AssetRecord) error {
	if !s.discoveryPending {
		return nil
	}
	if !s.deps.Broker.IsConnected() {
		return errNotConnected
	}
	var errs []error
	for _, r := range recs {
		payload, err := json.Marshal(s.BuildDiscovery(r))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.publish(ctx, s.DiscoveryTopic(r.Symbol), payload, true); err != nil {
			s.deps.Metrics.PublishFailed("discovery")
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Warn().Err(err).Msg("discovery publish failed, will retry")
		return err
	}
	s.discoveryPending = false
	log.Info().Int("assets", len(recs)).Msg("home assistant discovery published")
	return nil
}

// PublishStates sends one state message per asset. Assets without a price yet
// go out with trend "unknown".
func (s *PublishService) PublishStates(ctx context.Context, recs []domain.AssetRecord) error {
	if !s.deps.Broker.IsConnected() {
		log.Debug().Msg("mqtt not connected, skipping state publish")
		return errNotConnected
	}
	if s.discoveryPending {
		_ = s.PublishDiscovery(ctx, recs)
	}
	var errs []error
	for _, r := range recs {
		payload, err := json.Marshal(BuildState(r))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.publish(ctx, s.StateTopic(r.Symbol), payload, false); err != nil {
			s.deps.Metrics.PublishFailed("state")
			errs = append(errs, err)
			continue
		}
		log.Debug().Str("symbol", r.Symbol).Float64("price", r.Price).Str("currency", r.Currency).Msg("state published")
	}
	if err := errors.Join(errs...); err != nil {
		log.Warn().Err(err).Msg("state publish failed")
		return err
	}
	return nil
}

func (s *PublishService) publish(ctx context.Context, topic string, payload []byte, retained bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()
	return s.deps.Broker.Publish(ctx, topic, payload, retained)
}

var errNotConnected = errors.New("mqtt broker not connected")
