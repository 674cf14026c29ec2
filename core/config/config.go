// Package config loads the settings applied to bindings.
//
// A configuration can be read from JSON:
//
//	{
//	    "fieldFallback": true,
//	    "indexerName": "Item",
//	    "serviceName": "automation",
//	    "telemetry": {"endpoint": "localhost:4318"}
//	}
//
// or from LATEBINDING_* environment variables with FromEnv.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/anoideaopen/latebinding/core/dispatch"
	"github.com/anoideaopen/latebinding/version"
)

// Environment variables read by FromEnv.
const (
	EnvFieldFallback     = "LATEBINDING_FIELD_FALLBACK"
	EnvIndexerName       = "LATEBINDING_INDEXER_NAME"
	EnvTelemetryEndpoint = "LATEBINDING_TELEMETRY_ENDPOINT"
	EnvTelemetryCACerts  = "LATEBINDING_TELEMETRY_CA_CERTS"
)

var (
	ErrCfgBytesEmpty    = errors.New("config bytes is empty")
	ErrIndexerNameEmpty = errors.New("'indexerName' is empty")
	ErrEndpointEmpty    = errors.New("'telemetry.endpoint' is empty")
)

// CollectorEndpoint locates the OTLP/HTTP trace collector.
type CollectorEndpoint struct {
	Endpoint string `json:"endpoint"`
	// CACerts holds base64 encoded PEM certificates. Plain HTTP is used
	// when it is empty.
	CACerts string `json:"caCerts,omitempty"`
}

// GetEndpoint returns the collector address, or "" for a nil endpoint.
func (e *CollectorEndpoint) GetEndpoint() string {
	if e == nil {
		return ""
	}
	return e.Endpoint
}

// GetCACerts returns the collector certificates, or "" for a nil endpoint.
func (e *CollectorEndpoint) GetCACerts() string {
	if e == nil {
		return ""
	}
	return e.CACerts
}

// Config holds the settings of a binding.
type Config struct {
	// FieldFallback retries a property access as a field access when no
	// property of that name exists.
	FieldFallback bool `json:"fieldFallback"`
	// IndexerName is the member name used for indexer access.
	IndexerName string `json:"indexerName"`
	// ServiceName is reported in the trace resource.
	ServiceName string `json:"serviceName"`
	// Telemetry is nil when tracing is disabled.
	Telemetry *CollectorEndpoint `json:"telemetry,omitempty"`
}

// Default returns the configuration used when none is supplied.
func Default() *Config {
	return &Config{
		IndexerName: dispatch.IndexerName,
		ServiceName: version.ServiceName(),
	}
}

// FromBytes parses the provided byte slice containing JSON-encoded
// configuration. Missing settings keep their default values.
func FromBytes(cfgBytes []byte) (*Config, error) {
	if len(bytes.TrimSpace(cfgBytes)) == 0 {
		return nil, ErrCfgBytesEmpty
	}

	cfg := Default()

	dec := json.NewDecoder(bytes.NewReader(cfgBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads the configuration from LATEBINDING_* environment variables.
func FromEnv() (*Config, error) {
	cfg := Default()

	if v := os.Getenv(EnvFieldFallback); v != "" {
		fallback, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvFieldFallback, err)
		}
		cfg.FieldFallback = fallback
	}

	if v := os.Getenv(EnvIndexerName); v != "" {
		cfg.IndexerName = v
	}

	if v := os.Getenv(EnvTelemetryEndpoint); v != "" {
		cfg.Telemetry = &CollectorEndpoint{
			Endpoint: v,
			CACerts:  os.Getenv(EnvTelemetryCACerts),
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.IndexerName == "" {
		return ErrIndexerNameEmpty
	}

	if c.Telemetry != nil && c.Telemetry.Endpoint == "" {
		return ErrEndpointEmpty
	}

	return nil
}
