package config

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/quantex-lab/snapex/pkg/errors"
)

// PartialFallbackPolicy controls what happens when the external pricing
// fallback resolves factors for only a subset of the requested instruments.
type PartialFallbackPolicy string

const (
	// PartialAccept proceeds with whatever subset resolved (best-effort fallback).
	PartialAccept PartialFallbackPolicy = "accept"
	// PartialReject fails the factor resolution when the fallback is partial.
	PartialReject PartialFallbackPolicy = "reject"
)

// FallbackConfig configures the external pricing fallback for adjustment factors.
type FallbackConfig struct {
	Enabled       bool                  `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,description=Whether the external pricing fallback is consulted for missing factors"`
	PolygonAPIKey string                `yaml:"polygon_api_key" json:"polygon_api_key" jsonschema:"title=Polygon API Key,description=API key for the external pricing provider" validate:"required_if=Enabled true"`
	PartialPolicy PartialFallbackPolicy `yaml:"partial_policy" json:"partial_policy" jsonschema:"title=Partial Policy,description=Policy when the fallback resolves only some instruments,enum=accept,enum=reject" validate:"omitempty,oneof=accept reject"`
}

// UnitConfig describes the storage units of the relational store's bar tables.
type UnitConfig struct {
	PriceDivisor   float64 `yaml:"price_divisor" json:"price_divisor" jsonschema:"title=Price Divisor,description=Divisor converting minor-currency-unit integer prices to currency units,minimum=1" validate:"required,gt=0"`
	LotSize        float64 `yaml:"lot_size" json:"lot_size" jsonschema:"title=Lot Size,description=Shares per stored volume lot,minimum=1" validate:"required,gt=0"`
	PricePrecision int32   `yaml:"price_precision" json:"price_precision" jsonschema:"title=Price Precision,description=Decimal places kept in the snapshot files,minimum=0,maximum=10" validate:"min=0,max=10"`
}

// ExportConfig is the top-level configuration of the export pipeline.
type ExportConfig struct {
	DatabasePath string         `yaml:"database_path" json:"database_path" jsonschema:"title=Database Path,description=Path to the DuckDB time-series store" validate:"required"`
	SnapshotRoot string         `yaml:"snapshot_root" json:"snapshot_root" jsonschema:"title=Snapshot Root,description=Directory under which snapshot directories are written" validate:"required"`
	Market       string         `yaml:"market" json:"market" jsonschema:"title=Market,description=Market identifier recorded in snapshot manifests (e.g. SSE)" validate:"required"`
	Units        UnitConfig     `yaml:"units" json:"units" jsonschema:"title=Units" validate:"required"`
	Fallback     FallbackConfig `yaml:"fallback" json:"fallback" jsonschema:"title=Fallback"`
}

// Default returns a config pre-filled with the conventional storage units:
// prices in thousandths of a currency unit, 100-share lots, 4 decimal places.
func Default() ExportConfig {
	return ExportConfig{
		DatabasePath: "data/market.duckdb",
		SnapshotRoot: "snapshots",
		Market:       "SSE",
		Units: UnitConfig{
			PriceDivisor:   1000,
			LotSize:        100,
			PricePrecision: 4,
		},
		Fallback: FallbackConfig{
			Enabled:       false,
			PolygonAPIKey: "",
			PartialPolicy: PartialAccept,
		},
	}
}

// Load reads and validates a YAML configuration file. Missing required
// settings abort before any I/O is attempted.
func Load(path string) (ExportConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ExportConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return ExportConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return ExportConfig{}, err
	}

	return cfg, nil
}

// Validate checks the config against its validation tags.
func (c *ExportConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid export configuration", err)
	}

	if c.Fallback.PartialPolicy == "" {
		c.Fallback.PartialPolicy = PartialAccept
	}

	return nil
}

// GenerateSchema generates a JSON schema for the ExportConfig.
func (c *ExportConfig) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
	}

	schema := reflector.Reflect(c)
	schema.Title = "snapex-export-config"
	schema.Description = "Configuration schema for the snapshot export pipeline"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the ExportConfig.
func (c *ExportConfig) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
