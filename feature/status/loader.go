package status

import (
	"dialog-collator/core/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service  *Service
	handler  *Handler
	metrics  metrics.Config
	gatherer prometheus.Gatherer
}

// NewFeature creates the operations API feature. The metrics route is
// mounted when mcfg.Enabled and gatherer is not nil.
func NewFeature(deps Deps, mcfg metrics.Config, gatherer prometheus.Gatherer, logger *zap.Logger) *Feature {
	svc := NewService(deps, logger)
	return &Feature{service: svc, handler: NewHandler(svc), metrics: mcfg, gatherer: gatherer}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "status"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	if f.metrics.Enabled && f.gatherer != nil {
		app.Get(f.metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(f.gatherer, promhttp.HandlerOpts{})))
	}
	f.handler.RegisterRoutes(app)
	return nil
}
