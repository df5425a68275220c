package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-resolver/sdk/config"
)

// version is set by ldflags during build
var version = "dev"

const defaultConfigPath = "resolver.hcl"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Debug   bool             `help:"Enable debug logging"`
	JSON    bool             `name:"json" help:"Emit structured JSON logs"`
	Config  string           `short:"c" type:"path" help:"HCL configuration file (falls back to HOLDEM_RESOLVER_CONFIG, then resolver.hcl)"`

	Equity  EquityCmd  `cmd:"" help:"Estimate the win probability of a holding"`
	Export  ExportCmd  `cmd:"" help:"Write a preflop equity table as CSV"`
	Resolve ResolveCmd `cmd:"" help:"Re-solve a heads-up decision and print the strategy"`
	Utility UtilityCmd `cmd:"" help:"Build the showdown utility matrix for a board"`
}

// env carries what every command needs once flags have been parsed.
type env struct {
	ctx    context.Context
	logger zerolog.Logger
	cfg    *config.Config
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem-resolver"),
		kong.Description("Continual-resolving decision engine for no-limit hold'em"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	logger := setupLogger(cli.Debug, cli.JSON)

	cfg, err := config.LoadFromEnv(cli.Config, defaultConfigPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	runCtx, cancel := signalContext(logger)
	defer cancel()

	err = ctx.Run(&env{ctx: runCtx, logger: logger, cfg: cfg})
	ctx.FatalIfErrorf(err)
}
