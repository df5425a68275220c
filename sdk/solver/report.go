package solver

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/lox/holdem-resolver/internal/fileutil"
	"github.com/lox/holdem-resolver/poker"
	"github.com/lox/holdem-resolver/sdk/analysis"
)

const reportFileVersion = 1

// Report captures one resolve so the averaged root strategy can be
// inspected offline.
type Report struct {
	Version     int                  `json:"version"`
	GeneratedAt time.Time            `json:"generated_at"`
	State       RoundState           `json:"state"`
	Holding     poker.Hand           `json:"holding"`
	Action      string               `json:"action"`
	Iterations  int                  `json:"iterations"`
	Stats       TreeStats            `json:"stats"`
	Actions     []string             `json:"actions"`
	Strategies  map[string][]float64 `json:"strategies"`
}

// NewReport builds a report from a resolve result. Only holdings carrying
// mass in self are recorded.
func NewReport(state RoundState, holding poker.Hand, self analysis.HoleRange, res Result, now time.Time) *Report {
	names := make([]string, len(res.Actions))
	for i, a := range res.Actions {
		names[i] = a.String()
	}
	strategies := make(map[string][]float64)
	if res.AverageStrategy != nil {
		for i := 0; i < poker.NumHoldings; i++ {
			h := poker.HoldingAt(i)
			if self[i] <= 0 && h != holding {
				continue
			}
			strategies[h.String()] = append([]float64(nil), res.AverageStrategy.Row(i)...)
		}
	}
	return &Report{
		Version:     reportFileVersion,
		GeneratedAt: now.UTC(),
		State:       state.Clone(),
		Holding:     holding,
		Action:      res.Action.String(),
		Iterations:  res.Iterations,
		Stats:       res.Stats,
		Actions:     names,
		Strategies:  strategies,
	}
}

// Save writes the report to disk in JSON format.
func (r *Report) Save(path string) error {
	if r == nil {
		return errors.New("nil report")
	}
	if path == "" {
		return errors.New("destination path is required")
	}
	return fileutil.WriteAtomic(path, 0o644, r.Encode)
}

// Encode writes indented JSON to w.
func (r *Report) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// LoadReport reads a report from disk.
func LoadReport(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r Report
	if err := json.NewDecoder(f).Decode(&r); err != nil {
		return nil, err
	}
	if r.Version != reportFileVersion {
		return nil, errors.New("unsupported report version")
	}
	return &r, nil
}

// Strategy returns the stored average strategy for holding.
func (r *Report) Strategy(holding poker.Hand) ([]float64, bool) {
	if r == nil {
		return nil, false
	}
	strat, ok := r.Strategies[holding.String()]
	return strat, ok
}
