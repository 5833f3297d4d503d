package drive

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	runtimepkg "github.com/wireflow/wireflow/internal/runtime"
)

// StartWebUI registers a go-chi router exposing svc's pipeline stats (and,
// if dlq is non-nil, DLQ metrics) as JSON on the underlying runtime
// service's configured WebUI port, mirroring the teacher's WebUI but
// reporting on registered pipelines instead of bare Watermill handlers.
// A no-op if the runtime service's WebUI is disabled.
func (s *Service) StartWebUI(dlq *runtimepkg.DLQMetrics) {
	conf := s.rt.Conf
	if conf == nil || !conf.WebUIEnabled {
		return
	}

	port := conf.WebUIPort
	if port == 0 {
		port = 8081
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/pipelines", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, s.Stats())
	})

	if dlq != nil {
		r.Get("/api/pipelines/dlq", func(w http.ResponseWriter, req *http.Request) {
			render.JSON(w, req, dlq.GetSnapshot())
		})
	}

	s.rt.RegisterHTTPHandler(port, "/api/pipelines/", r)
}
