package xray

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"node-linker/internal/config"
	"node-linker/internal/domain"
)

const (
	configFileName   = "unified-config.json"
	defaultStartPort = 10800
	inboundListen    = "127.0.0.1"
)

var Module = fx.Options(
	fx.Provide(NewService),
	fx.Invoke(func(*Service) {}),
)

// Service renders one socks inbound and one outbound per node into a
// single xray config.
type Service struct {
	logger     *zap.Logger
	configPath string
	links      []domain.ParsedLink
	proxyPorts map[domain.NodeName]int
}

func NewService(
	lc fx.Lifecycle,
	cfg *config.Config,
	links []domain.ParsedLink,
	logger *zap.Logger,
) (*Service, error) {
	service, err := newService(cfg.XrayConfigsDir, defaultStartPort, links, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := service.WriteConfig(); err != nil {
				return fmt.Errorf("failed to generate config: %w", err)
			}
			return nil
		},
	})

	return service, nil
}

func newService(dir string, startPort int, links []domain.ParsedLink, logger *zap.Logger) (*Service, error) {
	if startPort <= 0 || startPort > 65535 {
		return nil, fmt.Errorf("invalid proxy start port: %d", startPort)
	}

	// Validate if there's enough ports available
	if maxPort := startPort + len(links) - 1; maxPort > 65535 {
		return nil, fmt.Errorf("not enough available ports for all links: need %d ports starting from %d",
			len(links), startPort)
	}

	proxyPorts := make(map[domain.NodeName]int, len(links))
	for i, link := range links {
		if link.Name == "" {
			return nil, fmt.Errorf("link name cannot be empty")
		}
		if _, exists := proxyPorts[link.Name]; exists {
			return nil, fmt.Errorf("duplicate link name found: %s", link.Name)
		}
		proxyPorts[link.Name] = startPort + i
	}

	return &Service{
		logger:     logger.With(zap.String("component", "xray")),
		configPath: filepath.Join(dir, configFileName),
		links:      links,
		proxyPorts: proxyPorts,
	}, nil
}

// ConfigPath is where WriteConfig puts the rendered config.
func (s *Service) ConfigPath() string {
	return s.configPath
}

// GetProxyConfig returns the local socks address for a given link
func (s *Service) GetProxyConfig(name domain.NodeName) (string, int, error) {
	if name == "" {
		return "", 0, fmt.Errorf("link name cannot be empty")
	}

	port, exists := s.proxyPorts[name]
	if !exists {
		return "", 0, fmt.Errorf("no proxy configuration found for link: %s", name)
	}

	return inboundListen, port, nil
}

// Render builds the config. Nodes without an xray outbound are logged and
// left out.
func (s *Service) Render() (*Config, error) {
	cfg := &Config{
		Log: LogConfig{
			LogLevel: "warning",
		},
		Inbounds:  make([]InboundConfig, 0, len(s.links)),
		Outbounds: getDefaultOutbounds(),
		Routing: RoutingConfig{
			Rules: make([]RoutingRule, 0, len(s.links)),
		},
	}

	for _, l := range s.links {
		// Use sanitized names for tags
		inboundTag := fmt.Sprintf("inbound-%s", url.QueryEscape(string(l.Name)))
		outboundTag := fmt.Sprintf("outbound-%s", url.QueryEscape(string(l.Name)))

		outbound, err := generateOutbound(l, outboundTag)
		if errors.Is(err, ErrNoOutbound) {
			s.logger.Warn("skipping link without xray outbound",
				zap.String("link", string(l.Name)),
				zap.String("protocol", string(l.Protocol())))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to generate outbound for %s: %w", l.Name, err)
		}

		cfg.Inbounds = append(cfg.Inbounds, InboundConfig{
			Tag:      inboundTag,
			Listen:   inboundListen,
			Port:     s.proxyPorts[l.Name],
			Protocol: "socks",
			Sniffing: SniffingConfig{
				Enabled:      true,
				DestOverride: []string{"http", "tls", "quic"},
				RouteOnly:    true,
			},
		})
		cfg.Outbounds = append(cfg.Outbounds, outbound)
		cfg.Routing.Rules = append(cfg.Routing.Rules, RoutingRule{
			Type:        "field",
			InboundTag:  inboundTag,
			OutboundTag: outboundTag,
		})
	}

	return cfg, nil
}

// WriteConfig renders the config and writes it to ConfigPath.
func (s *Service) WriteConfig() error {
	cfg, err := s.Render()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(s.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	s.logger.Info("wrote xray config",
		zap.String("path", s.configPath),
		zap.Int("outbounds", len(cfg.Inbounds)))
	s.logger.Debug("generated xray config", zap.String("config", string(data)))

	return nil
}
