package buffer

import (
	"sort"

	"smartcab-rl/internal/agent"
)

// TrialPenalties counts the penalised steps of one trial of one run.
type TrialPenalties struct {
	RunID     string `json:"run_id"`
	Trial     int    `json:"trial"`
	Penalties int    `json:"penalties"`
	// Clear counts penalties taken with no oncoming or left traffic, i.e.
	// mistakes that no other car provoked.
	Clear int `json:"clear"`
}

// RunPenalties sums the penalties of one simulation run.
type RunPenalties struct {
	RunID            string `json:"run_id"`
	Penalties        int    `json:"penalties"`
	Clear            int    `json:"clear"`
	LastPenaltyTrial int    `json:"last_penalty"`
	// LastClearTrial is -1 when the run never took a clear penalty.
	LastClearTrial int `json:"last_clear_penalty"`
}

type PenaltyReport struct {
	Runs   []RunPenalties   `json:"runs"`
	Trials []TrialPenalties `json:"trials"`
	Total  int              `json:"total"`
	Clear  int              `json:"clear"`
}

type trialKey struct {
	run   string
	trial int
}

// Report groups the penalised steps in items by run and trial. Runs keep
// the order in which they first appear; trials are sorted within a run.
func Report(items []Item) PenaltyReport {
	var (
		report   PenaltyReport
		runIndex = make(map[string]int)
		byTrial  = make(map[trialKey]*TrialPenalties)
	)
	for _, item := range items {
		s := item.Step
		if !s.Penalty() {
			continue
		}
		ri, ok := runIndex[s.RunID]
		if !ok {
			ri = len(report.Runs)
			runIndex[s.RunID] = ri
			report.Runs = append(report.Runs, RunPenalties{RunID: s.RunID, LastClearTrial: -1})
		}
		run := &report.Runs[ri]

		key := trialKey{run: s.RunID, trial: s.Trial}
		tp, ok := byTrial[key]
		if !ok {
			tp = &TrialPenalties{RunID: s.RunID, Trial: s.Trial}
			byTrial[key] = tp
		}

		tp.Penalties++
		run.Penalties++
		report.Total++
		if s.Trial > run.LastPenaltyTrial {
			run.LastPenaltyTrial = s.Trial
		}
		if s.Inputs.Clear() {
			tp.Clear++
			run.Clear++
			report.Clear++
			if s.Trial > run.LastClearTrial {
				run.LastClearTrial = s.Trial
			}
		}
	}
	for _, tp := range byTrial {
		report.Trials = append(report.Trials, *tp)
	}
	sort.Slice(report.Trials, func(i, j int) bool {
		a, b := report.Trials[i], report.Trials[j]
		if ra, rb := runIndex[a.RunID], runIndex[b.RunID]; ra != rb {
			return ra < rb
		}
		return a.Trial < b.Trial
	})
	return report
}

type DequeueResponse struct {
	Steps []agent.Step `json:"steps"`
}
