package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/habitgrid/habitgrid/pkg/habit"
	"github.com/habitgrid/habitgrid/pkg/store"
)

// Parser is the interface for settings-file parsers.
type Parser interface {
	// Parse parses the settings from bytes
	Parse(ctx context.Context, data []byte) (*File, error)

	// CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var parsers []Parser

// Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// File is the optional settings bootstrap file. It seeds the durable
// settings slots; credentials remain user-supplied at runtime.
type File struct {
	APIKey      string `yaml:"api_key" hcl:"api_key,optional"`
	ClientID    string `yaml:"client_id" hcl:"client_id,optional"`
	ResourceID  string `yaml:"resource_id" hcl:"resource_id,optional"`
	SyncEnabled bool   `yaml:"sync_enabled,omitempty" hcl:"sync_enabled,optional"`
	MonthlyGoal int    `yaml:"monthly_goal,omitempty" hcl:"monthly_goal,optional"`
}

// Load loads settings from a file, picking a parser by extension.
func Load(ctx context.Context, path string) (*File, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading settings file")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading settings file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing settings: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating settings: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings for nonsense values.
func (f *File) Validate() error {
	if f.MonthlyGoal < 0 {
		return errors.Errorf("monthly_goal must be non-negative, got %d", f.MonthlyGoal)
	}
	if f.SyncEnabled && (f.APIKey == "" || f.ClientID == "" || f.ResourceID == "") {
		return errors.New("sync_enabled requires api_key, client_id and resource_id")
	}
	return nil
}

// Apply layers the file's values over the stored settings, leaving slots
// the file does not set untouched.
func (f *File) Apply(ctx context.Context, gw *store.Gateway) error {
	current, err := gw.Settings(ctx)
	if err != nil {
		return errors.Errorf("loading stored settings: %w", err)
	}

	merged := habit.Settings{
		APIKey:      firstNonEmpty(f.APIKey, current.APIKey),
		ClientID:    firstNonEmpty(f.ClientID, current.ClientID),
		ResourceID:  firstNonEmpty(f.ResourceID, current.ResourceID),
		SyncEnabled: f.SyncEnabled || current.SyncEnabled,
		MonthlyGoal: current.MonthlyGoal,
	}
	if f.MonthlyGoal > 0 {
		merged.MonthlyGoal = f.MonthlyGoal
	}

	if err := gw.SetSettings(ctx, merged); err != nil {
		return errors.Errorf("storing settings: %w", err)
	}
	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*File, error) {
	var cfg File
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "settings.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg File
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &cfg, nil
}
