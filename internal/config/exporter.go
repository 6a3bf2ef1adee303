package config

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"node-linker/internal/domain"
)

const (
	ExporterTypeUptimeKuma = "uptime-kuma"
)

// ExporterConfig selects an exporter and the nodes it watches. An empty
// Watches list means every node. Raw keeps the whole section for the
// exporter's own settings.
type ExporterConfig struct {
	Type    string            `json:"type" validate:"required,exporterType"`
	Watches []domain.NodeName `json:"watches" validate:"omitempty,dive,required"`
	Raw     json.RawMessage   `json:"-"`
}

func validateExporterType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case ExporterTypeUptimeKuma:
		return true
	default:
		return false
	}
}

func (e *ExporterConfig) UnmarshalJSON(data []byte) error {
	e.Raw = append(json.RawMessage(nil), data...)

	// Define an alias type to avoid recursion
	type alias ExporterConfig
	if err := json.Unmarshal(data, (*alias)(e)); err != nil {
		return fmt.Errorf("failed to unmarshal exporter config: %w", err)
	}

	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("invalid exporter config: %w", err)
	}

	return nil
}

// WatchesAll reports whether the exporter applies to every node.
func (e *ExporterConfig) WatchesAll() bool {
	return len(e.Watches) == 0
}

// Ensure required interfaces are implemented
var _ json.Unmarshaler = (*ExporterConfig)(nil)
