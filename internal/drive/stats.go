package drive

import (
	runtimepkg "github.com/wireflow/wireflow/internal/runtime"
)

// PipelineStats is a point-in-time snapshot of one registered pipeline,
// combining the per-handler Watermill dispatch stats runtime.Service
// already tracks (keyed by the Registration's Name, the same key the
// pipeline is stored under) with the pipeline's own lifecycle counters. Exposed
// read-only; nothing here mutates a built pipeline.
type PipelineStats struct {
	Name     string                   `json:"name"`
	Active   bool                     `json:"active"`
	Built    bool                     `json:"built"`
	Dropped  uint64                   `json:"dropped"`
	Dispatch *runtimepkg.HandlerStats `json:"dispatch,omitempty"`
}

// Stats returns a snapshot of every pipeline svc has registered.
func (s *Service) Stats() []PipelineStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dispatch := make(map[string]*runtimepkg.HandlerStats, len(s.pipelines))
	for _, info := range s.rt.Handlers() {
		dispatch[info.Name] = info.Stats
	}

	out := make([]PipelineStats, 0, len(s.pipelines))
	for name, p := range s.pipelines {
		out = append(out, PipelineStats{
			Name:     name,
			Active:   p.Active(),
			Built:    p.Built(),
			Dropped:  p.Dropped(),
			Dispatch: dispatch[name],
		})
	}
	return out
}
