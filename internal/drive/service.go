package drive

import (
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/wireflow/wireflow/internal/pipeline"
	runtimepkg "github.com/wireflow/wireflow/internal/runtime"
	errspkg "github.com/wireflow/wireflow/internal/runtime/errors"
	idspkg "github.com/wireflow/wireflow/internal/runtime/ids"
)

// pipelineHandle is the subset of *pipeline.Pipeline[R, W] Service needs to
// introspect and tear down a registered pipeline without knowing its
// boundary types — every method here already exists on pipeline.Pipeline,
// so no wrapper type is needed to satisfy it.
type pipelineHandle interface {
	Built() bool
	Active() bool
	Dropped() uint64
	TransportInactive()
	Close()
}

// Service drives one or more built pipelines against a runtime.Service's
// Watermill transport. runtime.Service already knows how to dispatch a bare
// Watermill handler function; Service is the one place that turns that into
// dispatch through a pipeline chain instead, the bridge spec.md §1 leaves to
// "the enclosing transport loop."
type Service struct {
	rt    *runtimepkg.Service
	hooks PipelineHooks

	mu        sync.RWMutex
	pipelines map[string]pipelineHandle
}

// NewService wraps an already-constructed runtime.Service with pipeline
// dispatch. hooks fire around every registered pipeline's lifecycle
// transitions and recovered dispatch panics; pass PipelineHooks{} for none.
func NewService(rt *runtimepkg.Service, hooks PipelineHooks) *Service {
	return &Service{
		rt:        rt,
		hooks:     hooks,
		pipelines: make(map[string]pipelineHandle),
	}
}

// Runtime returns the underlying runtime.Service, for callers that need
// Start, RegisterHTTPHandler, or another ambient-layer operation that
// Service itself doesn't expose.
func (s *Service) Runtime() *runtimepkg.Service { return s.rt }

// Registration wires a built pipeline.Pipeline[R, W] to a Watermill
// consume/publish queue pair. Pipeline itself never touches bytes or a
// transport: a message arrives, DecodeRead turns its payload into R,
// HandleRead walks the chain, and whatever the chain hands back to
// PollWrite is encoded and republished.
type Registration[R, W any] struct {
	Name         string
	ConsumeQueue string
	PublishQueue string
	Pipeline     *pipeline.Pipeline[R, W]
	DecodeRead   func([]byte) (R, error)
	EncodeWrite  func(R) ([]byte, error)
	Subscriber   message.Subscriber
	Publisher    message.Publisher
}

// RegisterPipeline registers cfg.Pipeline on svc's underlying runtime
// service router. The pipeline is finalized (if it hasn't been already) and
// transitioned to active before the first message is processed; every
// inbound message is fed to HandleRead, and every message the chain
// produces before HandleRead returns is drained with PollWrite and
// published as a separate outgoing message, preserving the chain's own
// notion of how many (if any) responses one inbound message yields.
//
// A handler-downcast panic (spec.md §7.5) is recovered here, reported
// through svc's hooks, and converted into an error so the runtime's Retry
// and PoisonQueue middleware can act on it — the handler that panicked has
// already aborted its own dispatch per spec.md, but the transport loop
// keeps running.
func RegisterPipeline[R, W any](svc *Service, cfg Registration[R, W]) error {
	if svc == nil {
		return errspkg.ErrServiceRequired
	}
	if cfg.Pipeline == nil {
		return errspkg.ErrHandlerRequired
	}
	if cfg.DecodeRead == nil || cfg.EncodeWrite == nil {
		return errspkg.ErrHandlerRequired
	}

	p := cfg.Pipeline
	p.Finalize()
	if !p.Active() {
		p.TransportActive()
		svc.fireTransportActive(cfg.Name)
	}

	handlerFunc := message.HandlerFunc(func(msg *message.Message) (out []*message.Message, dispatchErr error) {
		defer func() {
			if r := recover(); r != nil {
				svc.fireDispatchPanic(cfg.Name, r)
				dispatchErr = fmt.Errorf("drive: %s dispatch panic: %v", cfg.Name, r)
			}
		}()

		in, err := cfg.DecodeRead(msg.Payload)
		if err != nil {
			p.ReadException(err)
			return nil, err
		}

		p.HandleRead(in)

		for {
			v, ok := p.PollWrite()
			if !ok {
				break
			}
			payload, err := cfg.EncodeWrite(v)
			if err != nil {
				return out, err
			}
			out = append(out, message.NewMessage(idspkg.CreateULID(), payload))
		}
		return out, nil
	})

	svc.mu.Lock()
	svc.pipelines[cfg.Name] = p
	svc.mu.Unlock()

	return runtimepkg.RegisterMessageHandler(svc.rt, runtimepkg.MessageHandlerRegistration{
		Name:         cfg.Name,
		ConsumeQueue: cfg.ConsumeQueue,
		PublishQueue: cfg.PublishQueue,
		Subscriber:   cfg.Subscriber,
		Publisher:    cfg.Publisher,
		Handler:      handlerFunc,
	})
}

// Close runs TransportInactive then Close on every pipeline svc has
// registered, firing hooks around each transition. Call it after the
// underlying runtime.Service's Start returns, during shutdown.
func (s *Service) Close() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for name, p := range s.pipelines {
		p.TransportInactive()
		s.fireTransportInactive(name)
		p.Close()
		s.fireClose(name)
	}
}

func (s *Service) fireTransportActive(name string) {
	if s.hooks.OnTransportActive != nil {
		s.hooks.OnTransportActive(name)
	}
}

func (s *Service) fireTransportInactive(name string) {
	if s.hooks.OnTransportInactive != nil {
		s.hooks.OnTransportInactive(name)
	}
}

func (s *Service) fireClose(name string) {
	if s.hooks.OnClose != nil {
		s.hooks.OnClose(name)
	}
}

func (s *Service) fireDispatchPanic(name string, recovered any) {
	if s.hooks.OnDispatchPanic != nil {
		s.hooks.OnDispatchPanic(name, recovered)
	}
}
