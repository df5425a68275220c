package main

import (
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/lox/holdem-resolver/poker"
	"github.com/lox/holdem-resolver/sdk/analysis"
	"github.com/lox/holdem-resolver/sdk/solver"
)

type UtilityCmd struct {
	Board   string   `arg:"" help:"Community cards (3 to 5), e.g. TsJsQs2h3d"`
	Workers int      `short:"w" help:"Worker goroutines (0 uses NumCPU)" default:"0"`
	Hands   []string `short:"H" help:"Holdings to report against a uniform opponent range"`
}

func (c *UtilityCmd) Run(e *env) error {
	board, err := poker.ParseHand(c.Board)
	if err != nil {
		return fmt.Errorf("parse board: %w", err)
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	m, err := solver.BuildUtilityMatrix(e.ctx, board, workers)
	if err != nil {
		return err
	}
	e.logger.Debug().Str("board", board.String()).Dur("elapsed", time.Since(start)).Msg("Utility matrix built")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "board\t%s\n", board)
	fmt.Fprintf(w, "live holdings\t%d\n", len(m.Live()))
	fmt.Fprintf(w, "build time\t%s\n", time.Since(start).Round(time.Millisecond))

	if len(c.Hands) > 0 {
		uniform := analysis.UniformRange(board)
		value := m.MulVec(uniform)
		fmt.Fprintln(w)
		for _, s := range c.Hands {
			h, err := poker.ParseHand(s)
			if err != nil {
				return fmt.Errorf("parse holding %q: %w", s, err)
			}
			idx := poker.HoldingIndex(h)
			if idx < 0 || h.Overlaps(board) {
				return fmt.Errorf("%w: %s with board %s", analysis.ErrInvalidHolding, h, board)
			}
			fmt.Fprintf(w, "%s\t%+.4f\n", h, value[idx])
		}
	}
	return w.Flush()
}
