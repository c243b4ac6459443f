package port

import "context"

// Broker is the MQTT transport used by the publisher.
type Broker interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	Publish(ctx context.Context, topic string, payload []byte, retained bool) error
	Close()
}
