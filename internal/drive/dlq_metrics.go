package drive

import (
	"github.com/prometheus/client_golang/prometheus"

	runtimepkg "github.com/wireflow/wireflow/internal/runtime"
)

// NewDLQMetrics constructs and registers a runtime.DLQMetrics collector.
// The teacher's DLQMetrics is already keyed by arbitrary topic/handler
// strings, so it needs no reimplementation here — a pipeline's ConsumeQueue
// name slots in as the topic label without change.
func NewDLQMetrics(registerer prometheus.Registerer) (*runtimepkg.DLQMetrics, error) {
	m := runtimepkg.NewDLQMetrics(registerer)
	if err := m.Register(); err != nil {
		return nil, err
	}
	return m, nil
}

// DLQHook returns a PipelineHooks that records every dispatch panic svc
// recovers as a message routed to queue's dead letter queue in m. Wire it
// alongside svc's other PipelineHooks via Merge.
func DLQHook(m *runtimepkg.DLQMetrics, queue string) PipelineHooks {
	return PipelineHooks{
		OnDispatchPanic: func(name string, _ any) {
			m.RecordMessageToDLQ(queue, name, 0, 0)
		},
	}
}
