package link

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"node-linker/internal/config"
	"node-linker/internal/domain"
)

var Module = fx.Options(
	fx.Provide(NewSource),
	fx.Provide(ProvideParsedLinks),
)

// ProvideParsedLinks decodes the configured links once at startup. A broken
// configured link fails startup; broken entries of the links file are only
// logged since that file may be edited while running.
func ProvideParsedLinks(cfg *config.Config, source *Source, logger *zap.Logger) ([]domain.ParsedLink, error) {
	links := make([]domain.ParsedLink, 0, len(cfg.Links))
	seen := make(map[domain.NodeName]struct{})

	for _, rawLink := range cfg.Links {
		parsed, err := Parse(rawLink)
		if err != nil {
			return nil, fmt.Errorf("failed to parse link %s: %w", rawLink.Name, err)
		}
		if _, dup := seen[parsed.Name]; dup {
			return nil, fmt.Errorf("duplicate link name found: %s", parsed.Name)
		}
		seen[parsed.Name] = struct{}{}
		links = append(links, *parsed)
	}

	if cfg.LinksFile == "" {
		return links, nil
	}

	all, err := source.Load()
	if err != nil {
		logger.Warn("links file unavailable at startup", zap.Error(err))
		return links, nil
	}
	for _, rawLink := range all[len(cfg.Links):] {
		parsed, err := Parse(rawLink)
		if err != nil {
			logger.Warn("skipping link from links file",
				zap.String("link", string(rawLink.Name)),
				zap.Error(err))
			continue
		}
		if _, dup := seen[parsed.Name]; dup {
			logger.Warn("skipping duplicate link name", zap.String("link", string(parsed.Name)))
			continue
		}
		seen[parsed.Name] = struct{}{}
		links = append(links, *parsed)
	}

	return links, nil
}
