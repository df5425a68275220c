package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lox/holdem-resolver/poker"
	"github.com/lox/holdem-resolver/sdk/analysis"
	"github.com/lox/holdem-resolver/sdk/solver"
)

type ResolveCmd struct {
	Holding    string        `arg:"" help:"Hole cards of the acting player, e.g. AsKs"`
	Board      string        `short:"b" help:"Community cards, e.g. TsJsQs2h3d"`
	Pot        int           `short:"p" help:"Chips collected on earlier streets (0 uses two big blinds)" default:"0"`
	Stack      int           `short:"s" help:"Chips behind for each player (0 uses table.starting_chips)" default:"0"`
	Facing     int           `short:"f" help:"Chips the opponent has already bet this round" default:"0"`
	Seat       int           `help:"Acting seat (0 or 1)" default:"0"`
	Range      string        `help:"Acting player's range in standard notation (default uniform)"`
	Opponent   string        `help:"Opponent range in standard notation (default uniform)"`
	Iterations int           `short:"i" help:"CFR iterations (0 uses resolver.iterations)" default:"0"`
	Budget     time.Duration `help:"Wall-clock budget (0 uses resolver.time_budget)" default:"0"`
	Report     string        `type:"path" help:"Write a JSON resolve report to this path"`
	Heuristic  bool          `help:"Also score each action with the rollout heuristic"`
}

func (c *ResolveCmd) Run(e *env) error {
	holding, board, err := parseSpot(c.Holding, c.Board)
	if err != nil {
		return err
	}
	state, err := c.state(e, board)
	if err != nil {
		return err
	}

	self, err := rangeFrom(c.Range, board)
	if err != nil {
		return fmt.Errorf("own range: %w", err)
	}
	if self.Weight(holding) == 0 {
		e.logger.Warn().Str("holding", holding.String()).Msg("Holding is outside the acting player's range")
	}
	opp, err := rangeFrom(c.Opponent, board|holding)
	if err != nil {
		return fmt.Errorf("opponent range: %w", err)
	}

	cfg := e.cfg.Resolver
	if c.Iterations > 0 {
		cfg.Iterations = c.Iterations
	}
	if c.Budget > 0 {
		cfg.TimeBudget = c.Budget
	}
	every := max(1, cfg.Iterations/10)
	cfr, err := solver.NewCFRResolver(cfg, solver.NewUtilityCache(e.logger),
		solver.WithLogger(e.logger),
		solver.WithProgress(func(p solver.Progress) {
			if p.Iteration%every == 0 {
				e.logger.Info().Int("iteration", p.Iteration).Dur("elapsed", p.Elapsed).Msg("Resolving")
			}
		}),
	)
	if err != nil {
		return err
	}

	res, err := cfr.Resolve(e.ctx, state, c.Seat, holding, self, opp)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}
	if err := printResult(os.Stdout, state, holding, res); err != nil {
		return err
	}

	if c.Heuristic {
		if err := c.printHeuristic(e, state, holding); err != nil {
			return err
		}
	}

	if c.Report != "" {
		report := solver.NewReport(state, holding, self, res, time.Now().UTC())
		if err := report.Save(c.Report); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		e.logger.Info().Str("path", c.Report).Int("holdings", len(report.Strategies)).Msg("Report written")
	}
	return nil
}

// state builds the heads-up round described by the flags.
func (c *ResolveCmd) state(e *env, board poker.Hand) (solver.RoundState, error) {
	bb := e.cfg.Table.BigBlind()
	pot := c.Pot
	if pot == 0 {
		pot = 2 * bb
	}
	stack := c.Stack
	if stack == 0 {
		stack = e.cfg.Table.StartingChips
	}
	if c.Seat != 0 && c.Seat != 1 {
		return solver.RoundState{}, fmt.Errorf("%w: seat %d", solver.ErrIllegalAction, c.Seat)
	}
	if c.Facing < 0 || c.Facing > stack {
		return solver.RoundState{}, fmt.Errorf("%w: facing %d with stack %d", solver.ErrIllegalAction, c.Facing, stack)
	}

	state := solver.NewHeadsUpState(board, pot, bb, stack)
	state.Acting = c.Seat
	opp := &state.Players[1-c.Seat]
	opp.Chips -= c.Facing
	opp.Committed = c.Facing
	return state, state.Validate()
}

func (c *ResolveCmd) printHeuristic(e *env, state solver.RoundState, holding poker.Hand) error {
	est := newEstimator(e, 0)
	h, err := solver.NewHeuristicResolver(e.cfg.Heuristic, est, e.logger)
	if err != nil {
		return err
	}
	eq, err := est.EstimateWinProbability(e.ctx, holding, state.Board, 1, e.cfg.Heuristic.Rollouts)
	if err != nil {
		return fmt.Errorf("estimate equity: %w", err)
	}
	choice, err := h.ChooseAction(e.ctx, state, c.Seat, holding)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\nheuristic\t%s\t(equity %.4f)\n", choice, eq.Equity())
	for _, u := range h.Utilities(state, c.Seat, eq.Equity()) {
		fmt.Fprintf(w, "  %s\t%.4f\n", u.Action, u.Utility)
	}
	return w.Flush()
}

func printResult(out io.Writer, state solver.RoundState, holding poker.Hand, res solver.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "state\t%s\n", state)
	fmt.Fprintf(w, "holding\t%s\n", holding)
	fmt.Fprintf(w, "action\t%s\n", res.Action)
	fmt.Fprintf(w, "iterations\t%d\t(%s)\n", res.Iterations, res.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "tree\t%d decisions, %d chance, %d terminals, depth %d\n",
		res.Stats.Decisions, res.Stats.Chances, res.Stats.Terminals, res.Stats.MaxDepth)
	probs := res.Probabilities(holding)
	for _, a := range res.Actions {
		fmt.Fprintf(w, "  %s\t%.4f\n", a, probs[a])
	}
	return w.Flush()
}

// rangeFrom parses notation into a normalised range without holdings that
// touch known. An empty notation means uniform.
func rangeFrom(notation string, known poker.Hand) (analysis.HoleRange, error) {
	if notation == "" {
		return analysis.UniformRange(known), nil
	}
	return analysis.PriorFromNotation(notation, known)
}
