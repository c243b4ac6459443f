package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	defaultPort        = 1883
	defaultRetry       = 5 * time.Second
	defaultWaitTimeout = 10 * time.Second
	statusOnline       = "online"
	statusOffline      = "offline"
)

// Options configures the broker session. StatusTopic is both the last-will
// topic and the target of the retained online/offline messages.
type Options struct {
	Host          string
	Port          int
	ClientID      string
	Username      string
	Password      string
	StatusTopic   string
	RetryInterval time.Duration
}

// Client is a paho-backed broker session with automatic reconnect.
type Client struct {
	opts Options
	cli  paho.Client
}

func New(o Options) *Client {
	if o.Port <= 0 {
		o.Port = defaultPort
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = defaultRetry
	}

	po := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", o.Host, o.Port)).
		SetClientID(o.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(o.RetryInterval).
		SetMaxReconnectInterval(o.RetryInterval).
		SetWill(o.StatusTopic, statusOffline, 0, true)
	if o.Username != "" {
		po.SetUsername(o.Username)
		po.SetPassword(o.Password)
	}

	c := &Client{opts: o}
	po.SetOnConnectHandler(func(pc paho.Client) {
		log.Info().Str("broker", o.Host).Str("client_id", o.ClientID).Msg("mqtt connected")
		tok := pc.Publish(o.StatusTopic, 0, true, statusOnline)
		if tok.WaitTimeout(defaultWaitTimeout) && tok.Error() != nil {
			log.Warn().Err(tok.Error()).Msg("mqtt online status publish failed")
		}
	})
	po.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost, retrying")
	})
	po.SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
		log.Debug().Str("broker", o.Host).Msg("mqtt reconnecting")
	})

	c.cli = paho.NewClient(po)
	return c
}

// Connect starts the session. With connect retry enabled paho keeps trying in
// the background, so a timeout here is not fatal.
func (c *Client) Connect(ctx context.Context) error {
	tok := c.cli.Connect()
	if !waitToken(ctx, tok) {
		log.Warn().Str("broker", c.opts.Host).Msg("mqtt broker not reachable yet, retrying in background")
		return nil
	}
	return tok.Error()
}

func (c *Client) IsConnected() bool {
	return c.cli.IsConnectionOpen()
}

// Publish sends payload at QoS 0 and waits for the write until ctx is done.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte, retained bool) error {
	if !c.cli.IsConnectionOpen() {
		return ErrNotConnected
	}
	tok := c.cli.Publish(topic, 0, retained, payload)
	if !waitToken(ctx, tok) {
		return fmt.Errorf("mqtt publish %s: %w", topic, context.DeadlineExceeded)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

// Close publishes the retained offline status and disconnects.
func (c *Client) Close() {
	if c.cli.IsConnectionOpen() {
		tok := c.cli.Publish(c.opts.StatusTopic, 0, true, statusOffline)
		tok.WaitTimeout(2 * time.Second)
	}
	c.cli.Disconnect(250)
	log.Info().Msg("mqtt disconnected")
}

// ErrNotConnected is returned by Publish while the session is down.
var ErrNotConnected = errors.New("mqtt not connected")

func waitToken(ctx context.Context, tok paho.Token) bool {
	wait := defaultWaitTimeout
	if dl, ok := ctx.Deadline(); ok {
		wait = time.Until(dl)
	}
	if wait <= 0 {
		return false
	}
	select {
	case <-tok.Done():
		return true
	case <-ctx.Done():
		return false
	case <-time.After(wait):
		return false
	}
}
