package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-resolver/sdk/solver"
)

const fullConfig = `
resolver {
  iterations      = 50
  max_raises      = 0
  chance_branches = 3
  reference_pot   = 40
  time_budget     = "1500ms"
  resolve_from    = "turn"
}

heuristic {
  rollouts        = 2000
  risk_averseness = 0.8
}

table {
  starting_chips = 200
  small_blind    = 10
}

seed = 42
`

func TestParseFullConfig(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(fullConfig), "full.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, solver.Config{
		Iterations:     50,
		MaxRaises:      0,
		ChanceBranches: 3,
		ReferencePot:   40,
		TimeBudget:     1500 * time.Millisecond,
		ResolveFrom:    solver.StreetTurn,
		Seed:           42,
	}, cfg.Resolver)
	assert.Equal(t, solver.HeuristicConfig{Rollouts: 2000, RiskAverseness: 0.8}, cfg.Heuristic)
	assert.Equal(t, TableSettings{StartingChips: 200, SmallBlind: 10}, cfg.Table)
	assert.Equal(t, 20, cfg.Table.BigBlind())
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestParseAppliesDefaults(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		want func(*Config)
	}{
		{
			name: "empty file",
			src:  "",
			want: func(*Config) {},
		},
		{
			name: "partial resolver block",
			src:  "resolver {\n  iterations = 10\n}\n",
			want: func(c *Config) { c.Resolver.Iterations = 10 },
		},
		{
			name: "seed only",
			src:  "seed = 7\n",
			want: func(c *Config) {
				c.Seed = 7
				c.Resolver.Seed = 7
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.src), "test.hcl")
			require.NoError(t, err)
			want := Default()
			tt.want(want)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", "resolver {"},
		{"unknown attribute", "colour = \"red\"\n"},
		{"bad duration", "resolver {\n  time_budget = \"soon\"\n}\n"},
		{"bad street", "resolver {\n  resolve_from = \"showdown\"\n}\n"},
		{"wrong type", "heuristic {\n  rollouts = \"many\"\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, Default().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no iterations", func(c *Config) { c.Resolver.Iterations = 0 }},
		{"no rollouts", func(c *Config) { c.Heuristic.Rollouts = 0 }},
		{"risk neutral", func(c *Config) { c.Heuristic.RiskAverseness = 1 }},
		{"no small blind", func(c *Config) { c.Table.SmallBlind = 0 }},
		{"short stack", func(c *Config) { c.Table.StartingChips = 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(dir, "resolver.hcl")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Resolver.Iterations)

	bad := filepath.Join(dir, "bad.hcl")
	require.NoError(t, os.WriteFile(bad, []byte("resolver {"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}
