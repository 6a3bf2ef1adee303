package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"node-linker/internal/domain"
	"node-linker/internal/duration"
	"node-linker/internal/node"
)

const defaultJobTimeout = 10 * time.Second

var validate *validator.Validate

type Config struct {
	XrayConfigsDir string           `json:"xray_configs_dir" validate:"required,dir"`
	Links          []domain.RawLink `json:"links" validate:"required_without=LinksFile,dive"`
	LinksFile      string           `json:"links_file" validate:"omitempty,file"`
	Workers        Workers          `json:"workers" validate:"required"`
	Metrics        Metrics          `json:"metrics"`
	Exporters      []ExporterConfig `json:"exporters" validate:"dive"`
}

type Workers struct {
	Count int `json:"count" validate:"min=1"`
	// CheckInterval and JobTimeout are compound durations such as "1m30s".
	CheckInterval string `json:"check_interval" validate:"required,duration"`
	JobTimeout    string `json:"job_timeout" validate:"omitempty,duration"`
}

type Metrics struct {
	Listen string `json:"listen" validate:"omitempty,hostname_port"`
}

// Interval returns the scheduler period.
func (w Workers) Interval() time.Duration {
	return duration.Parse(w.CheckInterval).Duration()
}

// Timeout returns the per job deadline, 10s when unset.
func (w Workers) Timeout() time.Duration {
	if w.JobTimeout == "" {
		return defaultJobTimeout
	}
	return duration.Parse(w.JobTimeout).Duration()
}

// NewConfig creates a new Config instance from the environment
func NewConfig() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	return Load(configPath)
}

// Load reads a JSON config, or YAML when the file ends in .yaml or .yml.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("error parsing config: %w", err)
		}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Validate link names in configuration
	for _, link := range cfg.Links {
		if link.Name == "" {
			return nil, fmt.Errorf("link name is required in configuration")
		}
		if link.URL == "" {
			return nil, fmt.Errorf("URL is required for link %s", link.Name)
		}
	}

	// Create required directories if they don't exist
	if err := ensureDirectories(&cfg); err != nil {
		return nil, fmt.Errorf("failed to create required directories: %w", err)
	}

	// Validate the configuration
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return nil, formatValidationErrors(validationErrors)
		}
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// yamlToJSON lets YAML configs share the JSON decoding path, including the
// raw exporter sections.
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v == nil {
		v = map[string]any{}
	}
	return json.Marshal(v)
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *Config) error {
	dirs := []struct {
		path string
		name string
	}{
		{cfg.XrayConfigsDir, "xray configs"},
	}

	for _, dir := range dirs {
		if dir.path == "" {
			continue
		}
		if err := os.MkdirAll(dir.path, 0755); err != nil {
			return fmt.Errorf("failed to create %s directory at %s: %w",
				dir.name, dir.path, err)
		}
	}

	return nil
}

func init() {
	validate = validator.New()

	for tag, fn := range map[string]validator.Func{
		"dir":          validateDir,
		"duration":     validateDuration,
		"protocol":     validateProtocol,
		"exporterType": validateExporterType,
	} {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

func validateDir(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if info, err := os.Stat(path); err != nil {
		return false
	} else {
		return info.IsDir()
	}
}

// validateDuration accepts strings that add up to a positive duration.
func validateDuration(fl validator.FieldLevel) bool {
	return duration.Parse(fl.Field().String()).Duration() > 0
}

// validateProtocol accepts links whose scheme has a codec.
func validateProtocol(fl validator.FieldLevel) bool {
	p, err := node.SchemeOf(fl.Field().String())
	if err != nil {
		return false
	}
	_, err = node.Lookup(p)
	return err == nil
}

// formatValidationErrors formats validation errors into a user-friendly error message
func formatValidationErrors(errors validator.ValidationErrors) error {
	var errMsgs []string
	for _, err := range errors {
		errMsgs = append(errMsgs, fmt.Sprintf(
			"field '%s' failed validation: %s",
			err.Field(),
			err.Tag(),
		))
	}
	return fmt.Errorf("validation errors: %v", errMsgs)
}
