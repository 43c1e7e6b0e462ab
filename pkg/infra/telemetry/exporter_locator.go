package telemetry

import (
	"fmt"

	"github.com/NeuralTrust/TrustGuard/pkg/config"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/telemetry"
)

type ExporterLocator struct {
	exporters map[string]telemetry.Exporter
}

func NewExporterLocator(opts ...ExporterLocatorOption) *ExporterLocator {
	el := &ExporterLocator{
		exporters: make(map[string]telemetry.Exporter),
	}
	for _, opt := range opts {
		opt(el)
	}
	return el
}

func (p *ExporterLocator) GetExporter(exporter config.ExporterConfig) (telemetry.Exporter, error) {
	base, ok := p.exporters[exporter.Name]
	if !ok {
		return nil, fmt.Errorf("unknown exporter: %s", exporter.Name)
	}
	if err := base.ValidateConfig(exporter.Settings); err != nil {
		return nil, err
	}
	return base.WithSettings(exporter.Settings)
}

// Build configures every exporter; on failure the already built ones are
// closed.
func (p *ExporterLocator) Build(cfgs []config.ExporterConfig) ([]telemetry.Exporter, error) {
	built := make([]telemetry.Exporter, 0, len(cfgs))
	for _, cfg := range cfgs {
		exp, err := p.GetExporter(cfg)
		if err != nil {
			for _, b := range built {
				b.Close()
			}
			return nil, fmt.Errorf("exporter %s: %w", cfg.Name, err)
		}
		built = append(built, exp)
	}
	return built, nil
}
