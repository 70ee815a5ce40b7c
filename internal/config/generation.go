package config

import (
	"fmt"
	"net/url"

	"github.com/goccy/go-yaml"
)

// ResponseFormat selects how the upstream model is asked to shape its reply.
type ResponseFormat string

const (
	// ResponseFormatJSONObject asks for any JSON object.
	ResponseFormatJSONObject ResponseFormat = "json_object"

	// ResponseFormatJSONSchema asks for JSON conforming to the points schema.
	ResponseFormatJSONSchema ResponseFormat = "json_schema"
)

// Validate checks whether the value is a known ResponseFormat and replaces an
// empty value with ResponseFormatJSONObject.
func (f *ResponseFormat) Validate() error {
	switch *f {
	case "":
		*f = ResponseFormatJSONObject
		return nil
	case ResponseFormatJSONObject, ResponseFormatJSONSchema:
		return nil
	default:
		return fmt.Errorf(
			"bad response format %q: must be empty or one of %q, %q",
			string(*f),
			string(ResponseFormatJSONObject),
			string(ResponseFormatJSONSchema),
		)
	}
}

func unmarshalResponseFormatYAML(value *ResponseFormat, data []byte) error {
	var format string

	if err := yaml.Unmarshal(data, &format); err != nil {
		return err
	}

	*value = ResponseFormat(format)

	return value.Validate()
}

// GenerationConfig tunes the upstream completion call.
type GenerationConfig struct {
	// DefaultModel is used when a request names no model.
	DefaultModel string `yaml:"default_model"`

	// Temperature is the sampling temperature, 0..2.
	Temperature float32 `yaml:"temperature"`

	// ResponseFormat is json_object (default) or json_schema.
	ResponseFormat ResponseFormat `yaml:"response_format"`

	// BaseURL overrides the upstream API root, e.g. for a compatible gateway.
	BaseURL string `yaml:"base_url,omitempty"`
}

// DefaultGenerationConfig returns the settings used when no config file is present.
func DefaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		DefaultModel:   "gpt-4o-mini",
		Temperature:    0.6,
		ResponseFormat: ResponseFormatJSONObject,
	}
}

// Validate fills defaults and checks ranges.
func (cfg *GenerationConfig) Validate() error {
	defaults := DefaultGenerationConfig()

	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaults.DefaultModel
	}

	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", cfg.Temperature)
	}

	if err := cfg.ResponseFormat.Validate(); err != nil {
		return err
	}

	if cfg.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			return fmt.Errorf("bad base_url: %w", err)
		}
	}

	return nil
}

// unmarshalGenerationConfig implements a custom YAML unmarshaler for GenerationConfig.
// Unset keys keep their defaults and the value is validated after unmarshaling.
func unmarshalGenerationConfig(value *GenerationConfig, data []byte) error {
	type Aux GenerationConfig
	aux := Aux(*DefaultGenerationConfig())

	if err := yaml.Unmarshal(data, &aux); err != nil {
		return err
	}

	*value = GenerationConfig(aux)

	return value.Validate()
}

func init() {
	yaml.RegisterCustomUnmarshaler[ResponseFormat](unmarshalResponseFormatYAML)
	yaml.RegisterCustomUnmarshaler[GenerationConfig](unmarshalGenerationConfig)
}
