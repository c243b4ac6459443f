package network

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"

	"pricestick/internal/application/port"
	"pricestick/internal/domain"
)

const (
	defaultProbeAddr      = "1.1.1.1:53"
	defaultConnectTimeout = 20 * time.Second
	probeTimeout          = 3 * time.Second
	retryEvery            = 500 * time.Millisecond
)

// Link checks the uplink by opening a TCP connection to a well-known address.
// On a host the OS owns the WiFi association, so reconnecting means waiting
// for the route to come back within the connect timeout.
type Link struct {
	addr    string
	timeout time.Duration
	dial    func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewLink builds a Link probing addr.
func NewLink(addr string, connectTimeout time.Duration) *Link {
	if addr == "" {
		addr = defaultProbeAddr
	}
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	d := &net.Dialer{Timeout: probeTimeout}
	return &Link{addr: addr, timeout: connectTimeout, dial: d.DialContext}
}

func (l *Link) Connected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	conn, err := l.dial(ctx, "tcp", l.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func (l *Link) Reconnect(ctx context.Context) error {
	log.Info().Str("probe", l.addr).Dur("timeout", l.timeout).Msg("waiting for network link")

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	ticker := time.NewTicker(retryEvery)
	defer ticker.Stop()
	for {
		if l.Connected(ctx) {
			log.Info().Str("probe", l.addr).Msg("network link up")
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: WiFi connection failed: Timeout or unknown error", domain.ErrLink)
		case <-ticker.C:
		}
	}
}

var _ port.Link = (*Link)(nil)
