// Package wireflow is a sans-I/O pipeline core with a Watermill-backed
// ambient layer wired around it: Handler/Pipeline/Builder describe how
// bytes become application messages and back with no I/O of their own,
// while Service wires routers, publishers, subscribers, and middleware
// around Watermill-native handlers. DriveService, from internal/drive, is
// the bridge between the two: RegisterPipelineHandler registers a built
// Pipeline on a DriveService, which feeds the Pipeline's HandleRead from an
// incoming transport message and republishes whatever PollWrite drains from
// it, recovering a handler-downcast panic into an error Retry/PoisonQueue
// middleware can act on.
//
// It reads the target transport (Kafka, RabbitMQ, AWS SNS/SQS, NATS, HTTP, I/O,
// SQLite, PostgreSQL, or Go Channels) from Config, bootstraps the Watermill router, and
// registers the default middleware chain for correlation IDs, logging, validation,
// outbox persistence, tracing, retries, and poison queue forwarding.
//
// Service hosts the router and exposes typed helpers: RegisterProtoHandler
// and RegisterJSONHandler take care of marshaling, metadata cloning, and
// optional protobuf validation, while Service.PublishProto lets HTTP/RPC
// handlers emit events without touching low-level Watermill APIs. A minimal
// setup therefore involves filling Config, creating a Service, registering
// handlers, and calling Start.
//
// # Pipeline core
//
// NewBuilder starts a typed.Builder; AddBack appends a Handler and proves at
// compile time that its Rin/Wout line up with the chain built so far; Build
// finalizes it into a Pipeline. A Pipeline is parameterized by its two
// boundary types: R, what the transport feeds in and reads back out, and W,
// what the application writes and receives. internal/executor's
// LocalExecutor/Future/SpawnLocal is the companion single-threaded
// cooperative scheduler a Handler's longer-running work re-enters the
// pipeline through; see internal/demo for worked examples composing both.
//
// # Transports
//
// Wireflow supports 10 message transports out of the box:
//   - channel: In-memory Go channels for testing
//   - kafka: High-throughput streaming with consumer groups
//   - rabbitmq: AMQP-based durable queues
//   - aws: AWS SNS/SQS with LocalStack support
//   - nats: High-performance messaging
//   - nats-jetstream: NATS JetStream streams
//   - http: Request/response messaging
//   - io: File-based persistence
//   - sqlite: Embedded persistent queue with delayed messages and DLQ management
//   - postgres: Production-ready PostgreSQL queue with SKIP LOCKED and DLQ
//
// # Middleware
//
// The default middleware chain includes correlation ID injection, structured logging,
// protobuf validation, outbox persistence, OpenTelemetry tracing, Prometheus metrics,
// retry with exponential backoff, poison queue forwarding, and panic recovery. It
// applies to pipeline-backed handlers exactly as it does to Watermill-native ones,
// since RegisterPipelineHandler ultimately registers through the same
// RegisterMessageHandler path every other handler uses. Custom middleware can be
// added via ServiceDependencies.Middlewares.
//
// # Job Hooks
//
// JobHooksMiddleware provides OnJobStart, OnJobDone, and OnJobError callbacks for
// custom logging, metrics collection, and alerting around handler execution.
//
// When you need more control, ServiceDependencies exposes well-scoped hooks:
// bring your own OutboxStore, ProtoValidator, middleware registrations, or even
// an entire TransportFactory to plug in custom brokers.
package wireflow
