package drive

import (
	"fmt"

	loggingpkg "github.com/wireflow/wireflow/internal/runtime/logging"
)

// PipelineHooks are callbacks fired around a registered pipeline's own
// lifecycle transitions, supplementing spec.md §4.2's bare
// TransportActive/TransportInactive/Close operations with observable side
// effects — the same role the teacher's JobHooks plays around a bare
// Watermill handler's start/done/error, adapted to pipeline lifecycle
// rather than per-message lifecycle. All hooks are optional.
type PipelineHooks struct {
	// OnTransportActive fires once, the first time RegisterPipeline
	// transitions a pipeline active.
	OnTransportActive func(name string)

	// OnTransportInactive fires when Service.Close tears a pipeline down.
	OnTransportInactive func(name string)

	// OnClose fires after a pipeline's Close has released its handlers'
	// resources.
	OnClose func(name string)

	// OnDispatchPanic fires when RegisterPipeline's handler func recovers
	// from a handler-downcast panic (spec.md §7.5) before converting it
	// into an error for the runtime's Retry/PoisonQueue middleware.
	OnDispatchPanic func(name string, recovered any)
}

// Merge combines two PipelineHooks, creating a new PipelineHooks that calls
// both. h's hooks run before other's.
func (h PipelineHooks) Merge(other PipelineHooks) PipelineHooks {
	return PipelineHooks{
		OnTransportActive:   chainNamedHook(h.OnTransportActive, other.OnTransportActive),
		OnTransportInactive: chainNamedHook(h.OnTransportInactive, other.OnTransportInactive),
		OnClose:             chainNamedHook(h.OnClose, other.OnClose),
		OnDispatchPanic:     chainPanicHook(h.OnDispatchPanic, other.OnDispatchPanic),
	}
}

func chainNamedHook(a, b func(string)) func(string) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(name string) {
		a(name)
		b(name)
	}
}

func chainPanicHook(a, b func(string, any)) func(string, any) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(name string, recovered any) {
		a(name, recovered)
		b(name, recovered)
	}
}

// LoggingPipelineHooks returns hooks that log pipeline lifecycle
// transitions and recovered dispatch panics through logger, mirroring the
// teacher's LoggingHooks.
func LoggingPipelineHooks(logger loggingpkg.ServiceLogger) PipelineHooks {
	return PipelineHooks{
		OnTransportActive: func(name string) {
			logger.Info("pipeline transport active", loggingpkg.LogFields{"pipeline": name})
		},
		OnTransportInactive: func(name string) {
			logger.Info("pipeline transport inactive", loggingpkg.LogFields{"pipeline": name})
		},
		OnClose: func(name string) {
			logger.Info("pipeline closed", loggingpkg.LogFields{"pipeline": name})
		},
		OnDispatchPanic: func(name string, recovered any) {
			logger.Error("pipeline dispatch panic", fmt.Errorf("%v", recovered), loggingpkg.LogFields{"pipeline": name})
		},
	}
}

// MetricsPipelineHooks returns hooks that forward lifecycle transitions and
// dispatch panic counts to caller-supplied callbacks, mirroring the
// teacher's MetricsHooks.
func MetricsPipelineHooks(onActive, onInactive func(name string), onPanic func(name string)) PipelineHooks {
	return PipelineHooks{
		OnTransportActive: func(name string) {
			if onActive != nil {
				onActive(name)
			}
		},
		OnTransportInactive: func(name string) {
			if onInactive != nil {
				onInactive(name)
			}
		},
		OnDispatchPanic: func(name string, _ any) {
			if onPanic != nil {
				onPanic(name)
			}
		},
	}
}
