package transport

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/wireflow/wireflow/internal/runtime/config"
	newtransport "github.com/wireflow/wireflow/transport"

	// Import all transport packages to register them.
	_ "github.com/wireflow/wireflow/transport/aws"
	_ "github.com/wireflow/wireflow/transport/channel"
	_ "github.com/wireflow/wireflow/transport/http"
	iotransport "github.com/wireflow/wireflow/transport/io"
	_ "github.com/wireflow/wireflow/transport/jetstream"
	_ "github.com/wireflow/wireflow/transport/kafka"
	natstransport "github.com/wireflow/wireflow/transport/nats"
	_ "github.com/wireflow/wireflow/transport/postgres"
	rabbitmqtransport "github.com/wireflow/wireflow/transport/rabbitmq"
	_ "github.com/wireflow/wireflow/transport/sqlite"
)

// The io, nats and rabbitmq packages have no init of their own; register them here.
func init() {
	iotransport.Register()
	natstransport.Register()
	rabbitmqtransport.Register()
}

// Transport combines a publisher and subscriber pair produced by a factory.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// Factory abstracts how Wireflow initialises message transports.
type Factory interface {
	Build(ctx context.Context, conf *config.Config, logger watermill.LoggerAdapter) (Transport, error)
}

// DefaultFactory returns the built-in transport factory that uses the
// modular transport registry.
func DefaultFactory() Factory {
	return defaultFactory{}
}

type defaultFactory struct{}

func (defaultFactory) Build(ctx context.Context, conf *config.Config, logger watermill.LoggerAdapter) (Transport, error) {
	if conf == nil {
		return Transport{}, fmt.Errorf("config is required")
	}

	// Use the new transport registry to build the transport.
	t, err := newtransport.Build(ctx, conf, logger)
	if err != nil {
		return Transport{}, err
	}

	return Transport{
		Publisher:  t.Publisher,
		Subscriber: t.Subscriber,
	}, nil
}
