package analysis

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/lox/holdem-resolver/poker"
)

// ClassEquity is the estimated equity of one suit-isomorphic hole class.
type ClassEquity struct {
	Class  poker.HoleClass
	Equity float64
}

// PairEquity is the estimated equity of one literal holding.
type PairEquity struct {
	Holding poker.Hand
	Equity  float64
}

// GenerateClassTable estimates the preflop equity of all 169 hole classes
// against the given number of random opponents.
func GenerateClassTable(ctx context.Context, est *Estimator, opponents, rollouts int) ([]ClassEquity, error) {
	classes := poker.AllClasses()
	rows := make([]ClassEquity, 0, len(classes))
	for _, c := range classes {
		res, err := est.EstimateWinProbability(ctx, c.Representative(), 0, opponents, rollouts)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", c, err)
		}
		rows = append(rows, ClassEquity{Class: c, Equity: res.Equity()})
	}
	return rows, nil
}

// GeneratePairTable estimates preflop equity for each literal holding. A nil
// holdings slice means all 1326 holdings.
func GeneratePairTable(ctx context.Context, est *Estimator, opponents, rollouts int, holdings []poker.Hand) ([]PairEquity, error) {
	if holdings == nil {
		holdings = poker.Holdings()
	}
	rows := make([]PairEquity, 0, len(holdings))
	for _, h := range holdings {
		res, err := est.EstimateWinProbability(ctx, h, 0, opponents, rollouts)
		if err != nil {
			return nil, fmt.Errorf("holding %s: %w", h, err)
		}
		rows = append(rows, PairEquity{Holding: h, Equity: res.Equity()})
	}
	return rows, nil
}

func formatProb(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}

// WriteClassCSV writes rows as "rank-high,rank-low,tag,probability" with no header.
func WriteClassCSV(w io.Writer, rows []ClassEquity) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		record := []string{
			string(poker.RankChar(row.Class.High)),
			string(poker.RankChar(row.Class.Low)),
			row.Class.Kind.String(),
			formatProb(row.Equity),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePairCSV writes rows as "pair,probability" with no header.
func WritePairCSV(w io.Writer, rows []PairEquity) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write([]string{row.Holding.String(), formatProb(row.Equity)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadClassCSV parses the output of WriteClassCSV.
func ReadClassCSV(r io.Reader) ([]ClassEquity, error) {
	records, err := readRecords(r, 4)
	if err != nil {
		return nil, err
	}
	rows := make([]ClassEquity, 0, len(records))
	for i, rec := range records {
		high, okHigh := parseRankField(rec[0])
		low, okLow := parseRankField(rec[1])
		if !okHigh || !okLow {
			return nil, fmt.Errorf("line %d: invalid ranks %q,%q", i+1, rec[0], rec[1])
		}
		kind, err := poker.ParseClassKind(rec[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		p, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		rows = append(rows, ClassEquity{Class: poker.HoleClass{High: high, Low: low, Kind: kind}, Equity: p})
	}
	return rows, nil
}

// ReadPairCSV parses the output of WritePairCSV.
func ReadPairCSV(r io.Reader) ([]PairEquity, error) {
	records, err := readRecords(r, 2)
	if err != nil {
		return nil, err
	}
	rows := make([]PairEquity, 0, len(records))
	for i, rec := range records {
		h, err := poker.ParseHand(rec[0])
		if err != nil || h.CountCards() != 2 {
			return nil, fmt.Errorf("line %d: invalid pair %q", i+1, rec[0])
		}
		p, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		rows = append(rows, PairEquity{Holding: h, Equity: p})
	}
	return rows, nil
}

func readRecords(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields
	var out [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func parseRankField(s string) (uint8, bool) {
	if len(s) != 1 {
		return 0, false
	}
	return poker.ParseRank(s[0])
}
