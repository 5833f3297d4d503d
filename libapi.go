package wireflow

import (
	"time"

	corehandler "github.com/wireflow/wireflow/internal/handler"
	coreexecutor "github.com/wireflow/wireflow/internal/executor"
	corepipeline "github.com/wireflow/wireflow/internal/pipeline"
	coretyped "github.com/wireflow/wireflow/internal/typed"
	drivepkg "github.com/wireflow/wireflow/internal/drive"
	envelopepkg "github.com/wireflow/wireflow/internal/drive/envelope"
	runtimepkg "github.com/wireflow/wireflow/internal/runtime"
	ce "github.com/wireflow/wireflow/internal/runtime/cloudevents"
	configpkg "github.com/wireflow/wireflow/internal/runtime/config"
	errspkg "github.com/wireflow/wireflow/internal/runtime/errors"
	handlerpkg "github.com/wireflow/wireflow/internal/runtime/handlers"
	idspkg "github.com/wireflow/wireflow/internal/runtime/ids"
	jsoncodec "github.com/wireflow/wireflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/wireflow/wireflow/internal/runtime/logging"
	metadatapkg "github.com/wireflow/wireflow/internal/runtime/metadata"
	transportpkg "github.com/wireflow/wireflow/internal/runtime/transport"
	newtransport "github.com/wireflow/wireflow/transport"
	"google.golang.org/protobuf/proto"
)

type (
	Config              = configpkg.Config
	Service             = runtimepkg.Service
	ServiceDependencies = runtimepkg.ServiceDependencies
	ProtoValidator      = runtimepkg.ProtoValidator
	OutboxStore         = runtimepkg.OutboxStore
	Transport           = transportpkg.Transport
	TransportFactory    = transportpkg.Factory

	MessageHandlerRegistration                = runtimepkg.MessageHandlerRegistration
	JSONHandlerRegistration[T any, O any]     = handlerpkg.JSONHandlerRegistration[T, O]
	JSONMessageContext[T any]                 = handlerpkg.JSONMessageContext[T]
	JSONMessageOutput[T any]                  = handlerpkg.JSONMessageOutput[T]
	JSONMessageHandler[T any, O any]          = handlerpkg.JSONMessageHandler[T, O]
	ProtoHandlerRegistration[T proto.Message] = handlerpkg.ProtoHandlerRegistration[T]
	ProtoHandlerOption                        = handlerpkg.ProtoHandlerOption
	ProtoMessageContext[T proto.Message]      = handlerpkg.ProtoMessageContext[T]
	ProtoMessageOutput                        = handlerpkg.ProtoMessageOutput
	ProtoMessageHandler[T proto.Message]      = handlerpkg.ProtoMessageHandler[T]
	MessageContextBase                        = handlerpkg.MessageContextBase

	MiddlewareBuilder      = runtimepkg.MiddlewareBuilder
	MiddlewareRegistration = runtimepkg.MiddlewareRegistration
	RetryMiddlewareConfig  = runtimepkg.RetryMiddlewareConfig

	Producer = runtimepkg.Producer

	Metadata = metadatapkg.Metadata

	LogFields                 = loggingpkg.LogFields
	ServiceLogger             = loggingpkg.ServiceLogger
	EntryLogger               = loggingpkg.EntryLogger
	EntryLoggerAdapter[T any] = loggingpkg.EntryLoggerAdapter[T]

	UnprocessableEventError = runtimepkg.UnprocessableEventError

	HandlerInfo           = runtimepkg.HandlerInfo
	HandlerStats          = runtimepkg.HandlerStats
	ConfigValidationError = errspkg.ConfigValidationError

	// Job lifecycle hooks
	JobContext = runtimepkg.JobContext
	JobHooks   = runtimepkg.JobHooks

	// DLQ metrics
	DLQMetrics         = runtimepkg.DLQMetrics
	DLQTopicMetrics    = runtimepkg.DLQTopicMetrics
	DLQMetricsSnapshot = runtimepkg.DLQMetricsSnapshot

	// Error classification
	ErrorClassifier = runtimepkg.ErrorClassifier
	ErrorCategory   = runtimepkg.ErrorCategory

	// CloudEvents types
	Event                          = ce.Event
	EventHandler                   = runtimepkg.EventHandler
	PublishOption                  = runtimepkg.PublishOption
	CloudEventsHandlerRegistration = runtimepkg.CloudEventsHandlerRegistration

	// Transport capabilities
	Capabilities = transportpkg.Capabilities

	// Modular transport types (new package structure)
	TransportBuilder         = newtransport.Builder
	TransportConfig          = newtransport.Config
	TransportRegistry        = newtransport.Registry
	TransportCapabilities    = newtransport.Capabilities
	TransportDLQManager      = newtransport.DLQManager
	TransportQueueIntrospect = newtransport.QueueIntrospector
	TransportDelayedPub      = newtransport.DelayedPublisher

	// Pipeline core: a Handler is one stage; Pipeline is the frozen,
	// ordered chain; Builder proves chain adjacency at compile time. See
	// SPEC_FULL.md §4-5.
	Handler[Rin, Rout, Win, Wout any]          = corehandler.Handler[Rin, Rout, Win, Wout]
	HandlerContext                             = corehandler.Context
	HandlerBase                                = corehandler.Base
	EarliestTimeout                            = corehandler.EarliestTimeout
	Pipeline[R, W any]                          = corepipeline.Pipeline[R, W]
	Builder[R, W, NextRin, NextWinTarget any]   = coretyped.Builder[R, W, NextRin, NextWinTarget]
	FrontBuilder[R, W, PrevRout, PrevWin any]   = coretyped.FrontBuilder[R, W, PrevRout, PrevWin]

	// Driver layer: DriveService wraps a Service with dispatch through a
	// built pipeline, the bridge spec.md §1 leaves to "the enclosing
	// transport loop." See SPEC_FULL.md §2-§3.
	DriveService                   = drivepkg.Service
	PipelineRegistration[R, W any] = drivepkg.Registration[R, W]
	PipelineHooks                  = drivepkg.PipelineHooks
	PipelineStats                  = drivepkg.PipelineStats
	Envelope                       = envelopepkg.Envelope

	// Single-threaded cooperative executor for work a Handler spawns off
	// the pipeline's own dispatch path. See DESIGN.md's internal/executor section.
	Future[T any]        = coreexecutor.Future[T]
	FutureFunc[T any]    = coreexecutor.FutureFunc[T]
	Poll[T any]          = coreexecutor.Poll[T]
	Waker                = coreexecutor.Waker
	ExecutorContext      = coreexecutor.Context
	ExecutorWorker       = coreexecutor.Worker
	LocalExecutor        = coreexecutor.LocalExecutor
	LocalExecutorBuilder = coreexecutor.LocalExecutorBuilder
	TaskHandle[T any]    = coreexecutor.TaskHandle[T]
	Outcome[T any]       = coreexecutor.Outcome[T]
)

var (
	NewService     = runtimepkg.NewService
	TryNewService  = runtimepkg.TryNewService
	ValidateConfig = configpkg.ValidateConfig

	RegisterMessageHandler  = runtimepkg.RegisterMessageHandler
	WithPublishMessageTypes = handlerpkg.WithPublishMessageTypes

	DefaultMiddlewares      = runtimepkg.DefaultMiddlewares
	CorrelationIDMiddleware = runtimepkg.CorrelationIDMiddleware
	LogMessagesMiddleware   = runtimepkg.LogMessagesMiddleware
	ProtoValidateMiddleware = runtimepkg.ProtoValidateMiddleware
	OutboxMiddleware        = runtimepkg.OutboxMiddleware
	TracerMiddleware        = runtimepkg.TracerMiddleware
	MetricsMiddleware       = runtimepkg.MetricsMiddleware
	RetryMiddleware         = runtimepkg.RetryMiddleware
	PoisonQueueMiddleware   = runtimepkg.PoisonQueueMiddleware
	RecovererMiddleware     = runtimepkg.RecovererMiddleware

	// Job lifecycle hooks
	JobHooksMiddleware = runtimepkg.JobHooksMiddleware
	LoggingHooks       = runtimepkg.LoggingHooks
	MetricsHooks       = runtimepkg.MetricsHooks
	AlertingHooks      = runtimepkg.AlertingHooks

	// DLQ metrics
	NewDLQMetrics = runtimepkg.NewDLQMetrics

	// CloudEvents constructors and helpers
	NewCloudEvent       = ce.New
	NewCloudEventWithID = ce.NewWithID

	// CloudEvents extension helpers
	GetAttempt          = ce.GetAttempt
	SetAttempt          = ce.SetAttempt
	GetMaxAttempts      = ce.GetMaxAttempts
	SetMaxAttempts      = ce.SetMaxAttempts
	IncrementAttempt    = ce.IncrementAttempt
	ExceedsMaxAttempts  = ce.ExceedsMaxAttempts
	GetNextAttemptAt    = ce.GetNextAttemptAt
	SetNextAttemptAt    = ce.SetNextAttemptAt
	SetNextAttemptAfter = ce.SetNextAttemptAfter
	IsDeadLetter        = ce.IsDeadLetter
	SetDeadLetter       = ce.SetDeadLetter
	GetOriginalTopic    = ce.GetOriginalTopic
	SetOriginalTopic    = ce.SetOriginalTopic
	GetErrorMessage     = ce.GetErrorMessage
	SetErrorMessage     = ce.SetErrorMessage
	GetTraceID          = ce.GetTraceID
	SetTraceID          = ce.SetTraceID
	GetParentID         = ce.GetParentID
	SetParentID         = ce.SetParentID
	GetCorrelationID    = ce.GetCorrelationID
	SetCorrelationID    = ce.SetCorrelationID
	GetDelayMs          = ce.GetDelayMs
	SetDelayMs          = ce.SetDelayMs
	GetDelay            = ce.GetDelay
	SetDelay            = ce.SetDelay
	GetEventVersion     = ce.GetEventVersion
	SetEventVersion     = ce.SetEventVersion
	PrepareForRetry     = ce.PrepareForRetry
	PrepareForDLQ       = ce.PrepareForDLQ
	DLQTopic            = ce.DLQTopic
	CopyTracingContext  = ce.CopyTracingContext

	// CloudEvents error types
	ErrRetry                = ce.ErrRetry
	ErrDeadLetter           = ce.ErrDeadLetter
	ErrSkip                 = ce.ErrSkip
	ErrUnprocessable        = ce.ErrUnprocessable
	ErrRetryAfter           = ce.ErrRetryAfter
	ErrDeadLetterWithReason = ce.ErrDeadLetterWithReason
	ClassifyError           = ce.ClassifyError
	IsRetryable             = ce.IsRetryable
	ShouldDeadLetter        = ce.ShouldDeadLetter

	// CloudEvents API
	RegisterCloudEventsHandler = runtimepkg.RegisterCloudEventsHandler

	// Transport capabilities
	GetCapabilities = transportpkg.GetCapabilities

	// Modular transport registry (new package structure)
	// Use RegisterTransport and BuildTransport to work with the modular transport packages.
	// Import individual transports via: _ "github.com/wireflow/wireflow/transport/kafka"
	DefaultTransportRegistry = newtransport.DefaultRegistry
	RegisterTransport        = newtransport.Register
	BuildTransport           = newtransport.Build

	// Publish options
	WithSubject         = runtimepkg.WithSubject
	WithDataContentType = runtimepkg.WithDataContentType
	WithDataSchema      = runtimepkg.WithDataSchema
	WithExtension       = runtimepkg.WithExtension
	WithMaxAttempts     = runtimepkg.WithMaxAttempts
	WithTracing         = runtimepkg.WithTracing
	WithCorrelationID   = runtimepkg.WithCorrelationID

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal
	Encode        = jsoncodec.Encode
	Decode        = jsoncodec.Decode

	ErrServiceRequired             = errspkg.ErrServiceRequired
	ErrHandlerRequired             = errspkg.ErrHandlerRequired
	ErrConsumeQueueRequired        = errspkg.ErrConsumeQueueRequired
	ErrHandlerNameRequired         = errspkg.ErrHandlerNameRequired
	ErrConsumeMessageTypeRequired  = errspkg.ErrConsumeMessageTypeRequired
	ErrConsumeMessagePointerNeeded = errspkg.ErrConsumeMessagePointerNeeded
	ErrPublisherRequired           = errspkg.ErrPublisherRequired
	ErrTopicRequired               = errspkg.ErrTopicRequired
	ErrConfigRequired              = errspkg.ErrConfigRequired
	ErrLoggerRequired              = errspkg.ErrLoggerRequired
	ErrEventPayloadRequired        = errspkg.ErrEventPayloadRequired

	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger

	NewMetadata = metadatapkg.New

	CreateULID = idspkg.CreateULID

	// NewEventID generates a unique event ID using ULID.
	NewEventID = runtimepkg.NewEventID

	// ErrSpawnOutsideWorker is returned by SpawnLocal for a Context not
	// obtained from a running worker's Poll call.
	ErrSpawnOutsideWorker = coreexecutor.ErrSpawnOutsideWorker
)

// Metadata keys - use these constants for standard metadata fields.
const (
	MetadataKeyCorrelationID = handlerpkg.MetadataKeyCorrelationID
	MetadataKeyEventSchema   = handlerpkg.MetadataKeyEventSchema
	MetadataKeyQueueDepth    = handlerpkg.MetadataKeyQueueDepth
	MetadataKeyEnqueuedAt    = handlerpkg.MetadataKeyEnqueuedAt
	MetadataKeyTraceID       = handlerpkg.MetadataKeyTraceID
	MetadataKeySpanID        = handlerpkg.MetadataKeySpanID

	// MetadataKeyDelay is used by SQLite and PostgreSQL transports for delayed message processing.
	// Set to a duration string like "30s", "5m", "1h".
	MetadataKeyDelay = "wireflow_delay"
)

// CloudEvents extension keys for wireflow reliability semantics.
const (
	// ExtAttempt is the current retry attempt number (1-based).
	ExtAttempt = ce.ExtAttempt

	// ExtMaxAttempts is the maximum number of retry attempts allowed.
	ExtMaxAttempts = ce.ExtMaxAttempts

	// ExtNextAttemptAt is the RFC3339 timestamp for the next retry.
	ExtNextAttemptAt = ce.ExtNextAttemptAt

	// ExtDeadLetter indicates the event has been moved to DLQ.
	ExtDeadLetter = ce.ExtDeadLetter

	// ExtTraceID is the distributed trace ID (W3C traceparent compatible).
	ExtTraceID = ce.ExtTraceID

	// ExtParentID is the parent span ID for trace correlation.
	ExtParentID = ce.ExtParentID

	// ExtDelayMs is the delay in milliseconds before processing.
	ExtDelayMs = ce.ExtDelayMs

	// ExtEventVersion is an optional version number for the event schema.
	ExtEventVersion = ce.ExtEventVersion

	// ExtOriginalTopic stores the original topic when moved to DLQ.
	ExtOriginalTopic = ce.ExtOriginalTopic

	// ExtErrorMessage stores the last error message when moved to DLQ.
	ExtErrorMessage = ce.ExtErrorMessage

	// ExtCorrelationID is a correlation identifier for request tracing.
	ExtCorrelationID = ce.ExtCorrelationID
)

// Error category constants for ErrorClassifier.
const (
	ErrorCategoryNone       = runtimepkg.ErrorCategoryNone
	ErrorCategoryValidation = runtimepkg.ErrorCategoryValidation
	ErrorCategoryTransport  = runtimepkg.ErrorCategoryTransport
	ErrorCategoryDownstream = runtimepkg.ErrorCategoryDownstream
	ErrorCategoryOther      = runtimepkg.ErrorCategoryOther
)

func RegisterJSONHandler[T any, O any](svc *Service, cfg JSONHandlerRegistration[T, O]) error {
	return runtimepkg.RegisterJSONHandler(svc, cfg)
}

func RegisterProtoHandler[T proto.Message](svc *Service, cfg ProtoHandlerRegistration[T]) error {
	return runtimepkg.RegisterProtoHandler(svc, cfg)
}

func NewProtoMessage[T proto.Message]() (T, error) {
	return runtimepkg.NewProtoMessage[T]()
}

func MustProtoMessage[T proto.Message]() T {
	return runtimepkg.MustProtoMessage[T]()
}

func NewEntryServiceLogger[T EntryLoggerAdapter[T]](entry T) ServiceLogger {
	return loggingpkg.NewEntryServiceLogger(entry)
}

// WithDelay returns a Metadata with the wireflow_delay key set for delayed message processing.
// This is a convenience wrapper for SQLite and PostgreSQL transports' delayed message feature.
// Example: wireflow.NewMetadata().WithAll(wireflow.WithDelay(30 * time.Second))
func WithDelay(delay time.Duration) Metadata {
	return Metadata{MetadataKeyDelay: delay.String()}
}

// NewPipeline creates an empty, unbuilt Pipeline. Prefer NewBuilder unless
// you need AddFront or another operation the typed builder doesn't expose.
func NewPipeline[R, W any]() *Pipeline[R, W] {
	return corepipeline.New[R, W]()
}

// NewBuilder starts a typed.Builder for a pipeline whose transport boundary
// reads R and writes W.
func NewBuilder[R, W any]() *Builder[R, W, R, R] {
	return coretyped.New[R, W]()
}

// AddBack appends a handler to the back of the pipeline under construction,
// proving at compile time that its Rin/Wout match the chain built so far.
func AddBack[R, W, NextRin, NextWinTarget, Rout, Win any](
	b *Builder[R, W, NextRin, NextWinTarget],
	h Handler[NextRin, Rout, Win, NextWinTarget],
) *Builder[R, W, Rout, Win] {
	return coretyped.AddBack[R, W, NextRin, NextWinTarget, Rout, Win](b, h)
}

// BuildPipeline finalizes a Builder into a Pipeline, requiring the last
// appended handler to land exactly on the pipeline's outbound boundary.
func BuildPipeline[R, W any](b *Builder[R, W, W, W]) *Pipeline[R, W] {
	return coretyped.Build[R, W](b)
}

// NewExecutorBuilder configures a LocalExecutor before it runs.
func NewExecutorBuilder() *LocalExecutorBuilder {
	return coreexecutor.NewBuilder()
}

// RunOnExecutor dedicates the calling OS thread to ex and drives fut (and
// every task it spawns) to completion, returning fut's output.
func RunOnExecutor[T any](ex *LocalExecutor, fut Future[T]) T {
	return coreexecutor.Run[T](ex, fut)
}

// SpawnLocal schedules fut as a new task on cx's worker.
func SpawnLocal[T any](cx *ExecutorContext, fut Future[T]) (TaskHandle[T], error) {
	return coreexecutor.SpawnLocal[T](cx, fut)
}

// ReadyPoll wraps a completed Future value.
func ReadyPoll[T any](v T) Poll[T] {
	return coreexecutor.Ready[T](v)
}

// PendingPoll reports that a Future has not produced a value on this poll.
func PendingPoll[T any]() Poll[T] {
	return coreexecutor.Pending[T]()
}

// NewDriveService wraps an already-constructed Service with pipeline
// dispatch, the bridge spec.md §1 leaves to "the enclosing transport loop."
func NewDriveService(svc *Service, hooks PipelineHooks) *DriveService {
	return drivepkg.NewService(svc, hooks)
}

// RegisterPipelineHandler registers cfg.Pipeline on svc's router, bridging
// inbound/outbound transport bytes to the sans-I/O pipeline core.
func RegisterPipelineHandler[R, W any](svc *DriveService, cfg PipelineRegistration[R, W]) error {
	return drivepkg.RegisterPipeline[R, W](svc, cfg)
}

// NewEnvelope wraps a freshly constructed CloudEvent as an Envelope, a
// pipeline boundary value carrying retry/DLQ bookkeeping alongside its
// payload.
func NewEnvelope(eventType, source string, data any) Envelope {
	return envelopepkg.New(eventType, source, data)
}

// NewFrontBuilder starts a FrontBuilder for a pipeline whose transport
// boundary reads R and writes W, growing the chain from the head backwards.
func NewFrontBuilder[R, W any]() *FrontBuilder[R, W, W, W] {
	return coretyped.NewFront[R, W]()
}

// AddFront prepends a handler to the front of the pipeline under
// construction, the symmetric counterpart to AddBack.
func AddFront[R, W, PrevRout, PrevWin, Rin, Wout any](
	b *FrontBuilder[R, W, PrevRout, PrevWin],
	h Handler[Rin, PrevRout, PrevWin, Wout],
) *FrontBuilder[R, W, Rin, Wout] {
	return coretyped.AddFront[R, W, PrevRout, PrevWin, Rin, Wout](b, h)
}

// BuildFrontPipeline finalizes a FrontBuilder into a Pipeline, requiring the
// frontmost (head) handler to land exactly on the pipeline's inbound
// boundary.
func BuildFrontPipeline[R, W any](b *FrontBuilder[R, W, R, R]) *Pipeline[R, W] {
	return coretyped.BuildFront[R, W](b)
}
