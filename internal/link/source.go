package link

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"node-linker/internal/config"
	"node-linker/internal/domain"
	"node-linker/internal/node"
)

// Source yields the links to check: the configured ones followed by the
// entries of the links file, which is re-read on every Load.
type Source struct {
	links     []domain.RawLink
	linksFile string
}

func NewSource(cfg *config.Config) *Source {
	return &Source{
		links:     cfg.Links,
		linksFile: cfg.LinksFile,
	}
}

func (s *Source) Load() ([]domain.RawLink, error) {
	links := make([]domain.RawLink, 0, len(s.links))
	links = append(links, s.links...)

	if s.linksFile == "" {
		return links, nil
	}

	data, err := os.ReadFile(s.linksFile)
	if err != nil {
		return links, fmt.Errorf("failed to read links file: %w", err)
	}

	fileLinks, err := ParseLinksFile(data)
	if err != nil {
		return links, fmt.Errorf("failed to parse links file %s: %w", s.linksFile, err)
	}
	return append(links, fileLinks...), nil
}

// ParseLinksFile reads one link per line, optionally prefixed with
// "name|". Blank lines and lines starting with '#' are skipped. Unnamed
// links are named after their fragment, or their line number.
func ParseLinksFile(data []byte) ([]domain.RawLink, error) {
	var links []domain.RawLink

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var name, url string
		if before, after, found := strings.Cut(line, "|"); found && !strings.Contains(before, "://") {
			name, url = strings.TrimSpace(before), strings.TrimSpace(after)
		} else {
			url = line
		}

		if name == "" {
			name = fallbackName(url, lineNo)
		}
		links = append(links, domain.RawLink{Name: domain.NodeName(name), URL: url})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return links, nil
}

func fallbackName(url string, lineNo int) string {
	if record, err := node.Decode(url); err == nil && record.DisplayName() != "" {
		return record.DisplayName()
	}
	return fmt.Sprintf("line-%d", lineNo)
}
