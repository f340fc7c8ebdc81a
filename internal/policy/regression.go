package policy

import (
	"fmt"
	"log"

	"smartcab-rl/internal/qtable"
	"smartcab-rl/internal/traffic"
)

// Regressor learns a mapping from numeric features to a value.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) float64
}

func regressorFactory(name string, ridge float64) (func() Regressor, error) {
	switch name {
	case "", "tree":
		return func() Regressor { return &TreeRegressor{} }, nil
	case "linear":
		if ridge <= 0 {
			return nil, fmt.Errorf("linear regressor: ridge must be > 0, got %v", ridge)
		}
		return func() Regressor { return &LinearRegressor{Ridge: ridge} }, nil
	default:
		return nil, fmt.Errorf("unknown regressor %q", name)
	}
}

// Regression generalizes across states with a model fitted to the whole
// value table. Below MinSamples stored pairs it acts at random. The model
// is refitted from scratch whenever the table has changed since the last
// fit, so selection always reflects the full accumulated table.
type Regression struct {
	MinSamples int

	newModel   func() Regressor
	model      Regressor
	fitTable   *qtable.Table
	fitVersion uint64
}

func NewRegression(minSamples int, newModel func() Regressor) *Regression {
	if newModel == nil {
		newModel = func() Regressor { return &TreeRegressor{} }
	}
	return &Regression{MinSamples: minSamples, newModel: newModel}
}

func (*Regression) Name() string { return "regression" }

func (r *Regression) Select(m *Memory, s traffic.State) traffic.Action {
	if m.Values.Len() < r.MinSamples || m.Values.Len() == 0 {
		return choose(m.rng(), nil)
	}
	if err := r.refit(m.Values); err != nil {
		log.Printf("regression fit failed, acting randomly: %v", err)
		return choose(m.rng(), nil)
	}
	actions := best(func(a traffic.Action) float64 {
		return r.model.Predict(traffic.Numeric(s, a))
	})
	return choose(m.rng(), actions)
}

func (r *Regression) Update(m *Memory, s traffic.State, a traffic.Action, reward float64) {
	learn(m, InverseTime, s, a, reward)
}

func (r *Regression) refit(tbl *qtable.Table) error {
	if r.model != nil && r.fitTable == tbl && r.fitVersion == tbl.Version() {
		return nil
	}
	entries := tbl.Entries()
	X := make([][]float64, len(entries))
	y := make([]float64, len(entries))
	for i, e := range entries {
		X[i] = traffic.Numeric(e.State, e.Action)
		y[i] = e.Value
	}
	model := r.newModel()
	if err := model.Fit(X, y); err != nil {
		return err
	}
	r.model, r.fitTable, r.fitVersion = model, tbl, tbl.Version()
	return nil
}
