package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pricestick/internal/application/port"
	"pricestick/internal/domain"

	"github.com/rs/zerolog/log"
)

// FetchGroup binds one asset group to its upstream source and decoder.
type FetchGroup struct {
	Group  domain.Group
	Source port.QuoteSource
	Decode port.Decoder
}

type FetchDeps struct {
	Table   *domain.AssetTable
	Link    port.Link
	Groups  []FetchGroup // fetched in order
	Market  domain.MarketHours
	Clock   func() time.Time
	Metrics port.Metrics

	// MaxLinkFailures is the number of consecutive cycles that may fail
	// only on the link before Irrecoverable reports true. Zero disables it.
	MaxLinkFailures int
}

// GroupResult is the outcome of one group within a cycle.
type GroupResult struct {
	Group  domain.Group
	Source string
	Err    error
}

// CycleResult aggregates the per-group outcomes of one fetch cycle.
type CycleResult struct {
	Groups []GroupResult
}

// OK reports whether at least one group updated.
func (r CycleResult) OK() bool {
	for _, g := range r.Groups {
		if g.Err == nil {
			return true
		}
	}
	return false
}

// LastError returns the message of the last failed group, or "".
func (r CycleResult) LastError() string {
	for i := len(r.Groups) - 1; i >= 0; i-- {
		if r.Groups[i].Err != nil {
			return r.Groups[i].Err.Error()
		}
	}
	return ""
}

// LinkDown reports whether every group failed because the link was down.
func (r CycleResult) LinkDown() bool {
	if len(r.Groups) == 0 {
		return false
	}
	for _, g := range r.Groups {
		if !errors.Is(g.Err, domain.ErrLink) {
			return false
		}
	}
	return true
}

// FetchService runs fetch cycles against the asset table. A failed group
// leaves its records untouched.
type FetchService struct {
	deps         FetchDeps
	linkFailures int
}

func NewFetchService(deps FetchDeps) *FetchService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Metrics == nil {
		deps.Metrics = port.NopMetrics()
	}
	return &FetchService{deps: deps}
}

// linkAttempt limits reconnection to one attempt per cycle.
type linkAttempt struct {
	tried bool
	err   error
}

// RunCycle fetches every group in order. It never panics or returns early on
// a group failure.
func (s *FetchService) RunCycle(ctx context.Context) CycleResult {
	var res CycleResult
	var la linkAttempt

	for _, g := range s.deps.Groups {
		symbols := s.deps.Table.Symbols(g.Group)
		if len(symbols) == 0 {
			continue
		}
		start := time.Now()
		err := s.ensureLink(ctx, &la)
		if err == nil {
			err = s.fetchGroup(ctx, g, symbols)
		}
		s.deps.Metrics.ObserveFetch(g.Group.String(), err, time.Since(start))
		res.Groups = append(res.Groups, GroupResult{Group: g.Group, Source: g.Source.Name(), Err: err})

		if err != nil {
			ev := log.Warn()
			if !domain.Retryable(err) {
				ev = log.Error()
			}
			ev.Err(err).Str("group", g.Group.String()).Str("source", g.Source.Name()).
				Msg("fetch failed, keeping cached values")
			continue
		}
		log.Info().Str("group", g.Group.String()).Int("assets", len(symbols)).Msg("quotes updated")
	}

	if res.LinkDown() {
		s.linkFailures++
	} else {
		s.linkFailures = 0
	}
	return res
}

// Irrecoverable reports whether the link has been down for too many
// consecutive cycles.
func (s *FetchService) Irrecoverable() bool {
	return s.deps.MaxLinkFailures > 0 && s.linkFailures >= s.deps.MaxLinkFailures
}

func (s *FetchService) ensureLink(ctx context.Context, la *linkAttempt) error {
	if s.deps.Link == nil || s.deps.Link.Connected(ctx) {
		return nil
	}
	if la.tried {
		if la.err != nil {
			return la.err
		}
		return fmt.Errorf("%w: WiFi not connected", domain.ErrLink)
	}
	la.tried = true
	log.Info().Msg("link down, reconnecting")
	if err := s.deps.Link.Reconnect(ctx); err != nil {
		if !errors.Is(err, domain.ErrLink) {
			err = fmt.Errorf("%w: %v", domain.ErrLink, err)
		}
		la.err = err
		return err
	}
	return nil
}

func (s *FetchService) fetchGroup(ctx context.Context, g FetchGroup, symbols []string) error {
	raw, err := g.Source.Fetch(ctx)
	if err != nil {
		return err
	}
	quotes, err := g.Decode(raw, symbols)
	if err != nil {
		return err
	}
	if g.Group == domain.GroupEquity && !s.deps.Market.IsOpen(s.deps.Clock()) {
		for sym, q := range quotes {
			q.Timestamp = domain.MarketClosed
			quotes[sym] = q
		}
	}
	if err := s.deps.Table.ApplyQuotes(quotes); err != nil {
		return err
	}
	for sym, q := range quotes {
		s.deps.Metrics.SetPrice(sym, q.Price)
		log.Debug().Str("symbol", sym).Float64("price", q.Price).Str("updated", q.Timestamp).Msg("quote")
	}
	return nil
}
