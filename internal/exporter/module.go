package exporter

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"node-linker/internal/config"
	"node-linker/internal/domain"
	"node-linker/internal/exporter/uptimekuma"
)

// Module exports the exporter module
var Module = fx.Options(
	fx.Provide(NewManager),
	fx.Provide(func(m *Manager) domain.Dispatcher { return m }),
)

// Manager routes checks to exporters. Exporters without a watch list
// receive every node.
type Manager struct {
	exporters map[domain.NodeName][]domain.Exporter
	wildcard  []domain.Exporter
	logger    *zap.Logger
}

func NewManager(cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	manager := &Manager{
		exporters: make(map[domain.NodeName][]domain.Exporter),
		logger:    logger.With(zap.String("component", "exporter")),
	}

	for i := range cfg.Exporters {
		expCfg := &cfg.Exporters[i]
		exporter, err := createExporter(expCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create exporter %s: %w", expCfg.Type, err)
		}
		manager.Add(exporter, expCfg.Watches...)
	}

	return manager, nil
}

// Add registers exporter for the given nodes, or for all nodes when none
// are named.
func (m *Manager) Add(exporter domain.Exporter, watches ...domain.NodeName) {
	if len(watches) == 0 {
		m.wildcard = append(m.wildcard, exporter)
		return
	}
	for _, watch := range watches {
		m.exporters[watch] = append(m.exporters[watch], exporter)
	}
}

// Exporters returns the exporters that receive checks of name.
func (m *Manager) Exporters(name domain.NodeName) []domain.Exporter {
	out := make([]domain.Exporter, 0, len(m.wildcard)+len(m.exporters[name]))
	out = append(out, m.wildcard...)
	return append(out, m.exporters[name]...)
}

func (m *Manager) Dispatch(check domain.Check) {
	for _, exporter := range m.Exporters(check.Link.Name) {
		if err := exporter.Export(check); err != nil {
			m.logger.Error("failed to export check",
				zap.String("link", string(check.Link.Name)),
				zap.String("status", check.Status),
				zap.Error(err),
			)
		}
	}
}

func createExporter(cfg *config.ExporterConfig) (domain.Exporter, error) {
	switch cfg.Type {
	case config.ExporterTypeUptimeKuma:
		return uptimekuma.New(cfg.Raw)
	default:
		return nil, fmt.Errorf("unknown exporter type: %s", cfg.Type)
	}
}
