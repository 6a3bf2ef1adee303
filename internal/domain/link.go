package domain

import "node-linker/internal/node"

type NodeName string

type RawLink struct {
	Name NodeName `json:"name" validate:"required"`
	URL  string   `json:"url" validate:"required,protocol"`
}

type ParsedLink struct {
	Name   NodeName
	Link   string
	Record node.Record
}

func (l ParsedLink) Protocol() node.Protocol {
	if l.Record == nil {
		return ""
	}
	return l.Record.Protocol()
}
