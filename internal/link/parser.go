package link

import (
	"fmt"
	"strings"

	"node-linker/internal/domain"
	"node-linker/internal/node"
)

// Parse decodes a configured link into its node record. The record's
// display name is used when the configuration gives none.
func Parse(raw domain.RawLink) (*domain.ParsedLink, error) {
	link := strings.TrimSpace(raw.URL)
	if link == "" {
		return nil, fmt.Errorf("link URL is required")
	}

	record, err := node.Decode(link)
	if err != nil {
		return nil, fmt.Errorf("error parsing link: %w", err)
	}

	name := raw.Name
	if name == "" {
		name = domain.NodeName(record.DisplayName())
	}
	if name == "" {
		return nil, fmt.Errorf("link has no name and no display name")
	}

	return &domain.ParsedLink{
		Name:   name,
		Link:   link,
		Record: record,
	}, nil
}
