package agent

// Metrics accumulate over every trip an agent drives.
type Metrics struct {
	RewardSum           float64 `json:"reward_sum"`
	DiscountedRewardSum float64 `json:"disc_reward_sum"`
	Penalties           int     `json:"n_penalties"`
	ClearPenalties      int     `json:"n_clear_penalties"`
	LastPenaltyTrial    int     `json:"last_penalty"`
	LastClearPenalty    int     `json:"last_clear_penalty"`
	DestinationsReached int     `json:"n_dest_reached"`
	LastFailedTrial     int     `json:"last_dest_fail"`
	SumTimeLeft         int     `json:"sum_time_left"`
	TableSize           int     `json:"len_qvals"`
}

// Discount weights a reward earned at decision t.
func Discount(t int) float64 {
	return 1 / (1 + float64(t)/100.0)
}

func (m *Metrics) observe(s Step) {
	m.RewardSum += s.Reward
	m.DiscountedRewardSum += s.Reward * Discount(s.Time)
	if !s.Penalty() {
		return
	}
	m.Penalties++
	m.LastPenaltyTrial = s.Trial
	if s.Inputs.Clear() {
		m.ClearPenalties++
		m.LastClearPenalty = s.Trial
	}
}
