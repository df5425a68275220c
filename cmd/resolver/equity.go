package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lox/holdem-resolver/internal/fileutil"
	"github.com/lox/holdem-resolver/poker"
	"github.com/lox/holdem-resolver/sdk/analysis"
)

type EquityCmd struct {
	Holding   string `arg:"" help:"Hole cards, e.g. AsKs"`
	Board     string `short:"b" help:"Community cards, e.g. Td7s8h"`
	Opponents int    `short:"o" help:"Number of random opponents" default:"1"`
	Rollouts  int    `short:"r" help:"Monte Carlo rollouts (0 uses heuristic.rollouts)" default:"0"`
	Workers   int    `short:"w" help:"Worker goroutines (0 uses min(NumCPU, 8))" default:"0"`
}

func (c *EquityCmd) Run(e *env) error {
	holding, board, err := parseSpot(c.Holding, c.Board)
	if err != nil {
		return err
	}
	rollouts := c.Rollouts
	if rollouts == 0 {
		rollouts = e.cfg.Heuristic.Rollouts
	}

	est := newEstimator(e, c.Workers)
	start := time.Now()
	res, err := est.EstimateWinProbability(e.ctx, holding, board, c.Opponents, rollouts)
	if err != nil {
		return fmt.Errorf("estimate equity: %w", err)
	}
	e.logger.Debug().Dur("elapsed", time.Since(start)).Uint32("rollouts", res.Rollouts).Msg("Equity estimated")

	return printEquity(os.Stdout, holding, board, c.Opponents, res)
}

func printEquity(out io.Writer, holding, board poker.Hand, opponents int, res analysis.EquityResult) error {
	lo, hi := res.ConfidenceInterval()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "holding\t%s\n", holding)
	if board != 0 {
		fmt.Fprintf(w, "board\t%s\n", board)
	}
	fmt.Fprintf(w, "opponents\t%d\n", opponents)
	fmt.Fprintf(w, "rollouts\t%d\n", res.Rollouts)
	fmt.Fprintf(w, "equity\t%.4f\t(95%% CI %.4f-%.4f)\n", res.Equity(), lo, hi)
	fmt.Fprintf(w, "win\t%.4f\n", res.WinRate())
	fmt.Fprintf(w, "tie\t%.4f\n", res.TieRate())
	return w.Flush()
}

type ExportCmd struct {
	Out       string `arg:"" type:"path" help:"CSV file to write"`
	Table     string `short:"t" help:"Table kind" enum:"class,pair" default:"class"`
	Opponents int    `short:"o" help:"Number of random opponents" default:"1"`
	Rollouts  int    `short:"r" help:"Rollouts per row (0 uses heuristic.rollouts)" default:"0"`
	Workers   int    `short:"w" help:"Worker goroutines (0 uses min(NumCPU, 8))" default:"0"`
}

func (c *ExportCmd) Run(e *env) error {
	rollouts := c.Rollouts
	if rollouts == 0 {
		rollouts = e.cfg.Heuristic.Rollouts
	}
	est := newEstimator(e, c.Workers)
	start := time.Now()

	var write func(w io.Writer) error
	var rows int
	switch c.Table {
	case "pair":
		table, err := analysis.GeneratePairTable(e.ctx, est, c.Opponents, rollouts, nil)
		if err != nil {
			return err
		}
		rows = len(table)
		write = func(w io.Writer) error { return analysis.WritePairCSV(w, table) }
	default:
		table, err := analysis.GenerateClassTable(e.ctx, est, c.Opponents, rollouts)
		if err != nil {
			return err
		}
		rows = len(table)
		write = func(w io.Writer) error { return analysis.WriteClassCSV(w, table) }
	}

	if err := fileutil.WriteAtomic(c.Out, 0o644, write); err != nil {
		return fmt.Errorf("write %s: %w", c.Out, err)
	}
	e.logger.Info().
		Str("path", c.Out).
		Str("table", c.Table).
		Int("rows", rows).
		Int("rollouts", rollouts).
		Dur("elapsed", time.Since(start)).
		Msg("Equity table written")
	return nil
}

func newEstimator(e *env, workers int) *analysis.Estimator {
	return analysis.NewEstimator(
		analysis.WithSeed(e.cfg.Seed),
		analysis.WithWorkers(workers),
		analysis.WithLogger(e.logger),
	)
}

// parseSpot parses a two-card holding and an optional board of up to five
// cards that does not overlap it.
func parseSpot(holdingStr, boardStr string) (poker.Hand, poker.Hand, error) {
	holding, err := poker.ParseHand(holdingStr)
	if err != nil {
		return 0, 0, fmt.Errorf("parse holding: %w", err)
	}
	if holding.CountCards() != 2 {
		return 0, 0, fmt.Errorf("%w: holding needs 2 cards, got %d", analysis.ErrInvalidHolding, holding.CountCards())
	}
	board, err := poker.ParseHand(boardStr)
	if err != nil {
		return 0, 0, fmt.Errorf("parse board: %w", err)
	}
	if board.CountCards() > 5 {
		return 0, 0, fmt.Errorf("board cannot have more than 5 cards, got %d", board.CountCards())
	}
	if holding.Overlaps(board) {
		return 0, 0, fmt.Errorf("%w: %s shares a card with board %s", analysis.ErrInvalidHolding, holding, board)
	}
	return holding, board, nil
}
