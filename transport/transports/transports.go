// Package transports imports all built-in transports for auto-registration.
// Import this package to have all transports registered with the default registry.
package transports

import (
	// Import all transports for side-effect registration
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
