package trial

import (
	"context"
	"errors"
	"fmt"
)

// Aggregate averages the metrics of several simulations.
type Aggregate struct {
	Sims                int     `json:"sims"`
	RewardSum           float64 `json:"reward_sum"`
	DiscountedRewardSum float64 `json:"disc_reward_sum"`
	DestinationsReached float64 `json:"n_dest_reached"`
	LastFailedTrial     float64 `json:"last_dest_fail"`
	SumTimeLeft         float64 `json:"sum_time_left"`
	Penalties           float64 `json:"n_penalties"`
	LastPenaltyTrial    float64 `json:"last_penalty"`
	ClearPenalties      float64 `json:"n_clear_penalties"`
	TableSize           float64 `json:"len_qvals"`
}

func aggregate(sums []Summary) Aggregate {
	agg := Aggregate{Sims: len(sums)}
	if len(sums) == 0 {
		return agg
	}
	for _, s := range sums {
		agg.RewardSum += s.RewardSum
		agg.DiscountedRewardSum += s.DiscountedRewardSum
		agg.DestinationsReached += float64(s.DestinationsReached)
		agg.LastFailedTrial += float64(s.LastFailedTrial)
		agg.SumTimeLeft += float64(s.SumTimeLeft)
		agg.Penalties += float64(s.Penalties)
		agg.LastPenaltyTrial += float64(s.LastPenaltyTrial)
		agg.ClearPenalties += float64(s.ClearPenalties)
		agg.TableSize += float64(s.TableSize)
	}
	n := float64(len(sums))
	agg.RewardSum /= n
	agg.DiscountedRewardSum /= n
	agg.DestinationsReached /= n
	agg.LastFailedTrial /= n
	agg.SumTimeLeft /= n
	agg.Penalties /= n
	agg.LastPenaltyTrial /= n
	agg.ClearPenalties /= n
	agg.TableSize /= n
	return agg
}

// RunMany runs sims independent simulations configured like base. The i-th
// simulation is seeded with base.Seed+i and gets its own run ID.
func RunMany(ctx context.Context, base Runner, sims int) ([]Summary, Aggregate, error) {
	if sims <= 0 {
		return nil, Aggregate{}, errors.New("sims must be > 0")
	}
	out := make([]Summary, 0, sims)
	for i := 0; i < sims; i++ {
		r := base
		r.RunID = ""
		r.Seed = base.Seed + int64(i)
		s, err := r.Run(ctx)
		if err != nil {
			return out, aggregate(out), err
		}
		out = append(out, s)
	}
	return out, aggregate(out), nil
}

var (
	// DefaultRateKs are the learning-rate multipliers swept for "rate".
	DefaultRateKs = []float64{1, 0.5, 0.3, 0.1, 0.05, 0.03, 0.01, 0.005, 0.003, 0.001}
	// DefaultEpsilons are the decay steps swept for "eps-random".
	DefaultEpsilons = []float64{0.01, 0.005, 0.002, 0.001, 0.0005}
)

type SweepResult struct {
	Label     string    `json:"label"`
	Value     float64   `json:"value"`
	Summaries []Summary `json:"summaries,omitempty"`
	Aggregate Aggregate `json:"aggregate"`
}

// Sweep runs RunMany for each value of the strategy parameter. strategy is
// "rate" (values are k) or "eps-random" (values are epsilon).
func Sweep(ctx context.Context, base Runner, strategy string, values []float64, sims int) ([]SweepResult, error) {
	if len(values) == 0 {
		switch strategy {
		case "rate":
			values = DefaultRateKs
		case "eps-random":
			values = DefaultEpsilons
		}
	}
	results := make([]SweepResult, 0, len(values))
	for _, v := range values {
		r := base
		r.Strategy.Name = strategy
		switch strategy {
		case "rate":
			r.Strategy.RateK = v
		case "eps-random":
			r.Strategy.Epsilon = v
		default:
			return results, fmt.Errorf("cannot sweep strategy %q", strategy)
		}
		sums, agg, err := RunMany(ctx, r, sims)
		if err != nil {
			return results, fmt.Errorf("sweep %s=%g: %w", strategy, v, err)
		}
		results = append(results, SweepResult{
			Label:     SweepLabel(strategy, v),
			Value:     v,
			Summaries: sums,
			Aggregate: agg,
		})
	}
	return results, nil
}

// SweepLabel names one point of a sweep, e.g. "rate_0.5".
func SweepLabel(strategy string, v float64) string {
	return fmt.Sprintf("%s_%g", strategy, v)
}
