// Package config loads resolver settings from an HCL file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem-resolver/sdk/solver"
)

// Config is the fully defaulted configuration used by the CLI.
type Config struct {
	Resolver  solver.Config
	Heuristic solver.HeuristicConfig
	Table     TableSettings
	Seed      int64
}

// TableSettings describes the stakes new hands are dealt with.
type TableSettings struct {
	StartingChips int
	SmallBlind    int
}

// BigBlind is twice the small blind.
func (t TableSettings) BigBlind() int {
	return 2 * t.SmallBlind
}

// fileConfig mirrors the HCL layout. Every block and attribute is optional.
type fileConfig struct {
	Resolver  *resolverBlock  `hcl:"resolver,block"`
	Heuristic *heuristicBlock `hcl:"heuristic,block"`
	Table     *tableBlock     `hcl:"table,block"`
	Seed      int64           `hcl:"seed,optional"`
}

type resolverBlock struct {
	Iterations     int     `hcl:"iterations,optional"`
	MaxRaises      *int    `hcl:"max_raises,optional"`
	ChanceBranches int     `hcl:"chance_branches,optional"`
	ReferencePot   float64 `hcl:"reference_pot,optional"`
	TimeBudget     string  `hcl:"time_budget,optional"`
	ResolveFrom    string  `hcl:"resolve_from,optional"`
}

type heuristicBlock struct {
	Rollouts       int     `hcl:"rollouts,optional"`
	RiskAverseness float64 `hcl:"risk_averseness,optional"`
}

type tableBlock struct {
	StartingChips int `hcl:"starting_chips,optional"`
	SmallBlind    int `hcl:"small_blind,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Resolver:  solver.DefaultConfig(),
		Heuristic: solver.DefaultHeuristicConfig(),
		Table: TableSettings{
			StartingChips: 100,
			SmallBlind:    5,
		},
		Seed: 1,
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file)
}

// Parse decodes configuration from HCL source held in memory.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file)
}

func decode(file *hcl.File) (*Config, error) {
	var raw fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	cfg := Default()
	if raw.Seed != 0 {
		cfg.Seed = raw.Seed
	}
	cfg.Resolver.Seed = cfg.Seed

	if r := raw.Resolver; r != nil {
		if r.Iterations != 0 {
			cfg.Resolver.Iterations = r.Iterations
		}
		if r.MaxRaises != nil {
			cfg.Resolver.MaxRaises = *r.MaxRaises
		}
		if r.ChanceBranches != 0 {
			cfg.Resolver.ChanceBranches = r.ChanceBranches
		}
		if r.ReferencePot != 0 {
			cfg.Resolver.ReferencePot = r.ReferencePot
		}
		if r.TimeBudget != "" {
			d, err := time.ParseDuration(r.TimeBudget)
			if err != nil {
				return nil, fmt.Errorf("invalid time_budget: %w", err)
			}
			cfg.Resolver.TimeBudget = d
		}
		if r.ResolveFrom != "" {
			street, err := solver.ParseStreet(r.ResolveFrom)
			if err != nil {
				return nil, fmt.Errorf("invalid resolve_from: %w", err)
			}
			cfg.Resolver.ResolveFrom = street
		}
	}

	if h := raw.Heuristic; h != nil {
		if h.Rollouts != 0 {
			cfg.Heuristic.Rollouts = h.Rollouts
		}
		if h.RiskAverseness != 0 {
			cfg.Heuristic.RiskAverseness = h.RiskAverseness
		}
	}

	if t := raw.Table; t != nil {
		if t.StartingChips != 0 {
			cfg.Table.StartingChips = t.StartingChips
		}
		if t.SmallBlind != 0 {
			cfg.Table.SmallBlind = t.SmallBlind
		}
	}

	return cfg, nil
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.Resolver.Validate(); err != nil {
		return fmt.Errorf("resolver: %w", err)
	}
	if err := c.Heuristic.Validate(); err != nil {
		return fmt.Errorf("heuristic: %w", err)
	}
	if c.Table.SmallBlind <= 0 {
		return errors.New("table: small blind must be positive")
	}
	if c.Table.StartingChips <= c.Table.BigBlind() {
		return errors.New("table: starting chips must exceed the big blind")
	}
	return nil
}
