package policy

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"smartcab-rl/internal/traffic"
)

// Per action: one bias plus a one-hot block of codeRange entries for each
// state position.
const (
	codeRange     = 4
	actionBlock   = 1 + traffic.StateSize*codeRange
	linearFeature = len(traffic.Actions) * actionBlock
)

// LinearRegressor is ridge regression on one-hot features crossed with the
// action, so every action gets its own additive model of the state.
type LinearRegressor struct {
	Ridge   float64
	weights *mat.VecDense
}

// expand maps a numeric (state, action) vector onto the crossed one-hot
// feature space. Codes outside [0, codeRange) contribute nothing.
func expand(x []float64) []float64 {
	out := make([]float64, linearFeature)
	act := int(x[traffic.StateSize])
	if act < 0 || act >= len(traffic.Actions) {
		return out
	}
	base := act * actionBlock
	out[base] = 1
	for f := 0; f < traffic.StateSize; f++ {
		c := int(x[f])
		if c >= 0 && c < codeRange {
			out[base+1+f*codeRange+c] = 1
		}
	}
	return out
}

func (l *LinearRegressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("linear regressor: no samples")
	}
	if len(X) != len(y) {
		return errors.New("linear regressor: X and y lengths differ")
	}
	design := mat.NewDense(len(X), linearFeature, nil)
	for i, x := range X {
		design.SetRow(i, expand(x))
	}
	target := mat.NewVecDense(len(y), append([]float64(nil), y...))

	// (XᵀX + λI) w = Xᵀy
	var gram mat.Dense
	gram.Mul(design.T(), design)
	for i := 0; i < linearFeature; i++ {
		gram.Set(i, i, gram.At(i, i)+l.Ridge)
	}
	var rhs mat.VecDense
	rhs.MulVec(design.T(), target)

	var w mat.VecDense
	if err := w.SolveVec(&gram, &rhs); err != nil {
		return fmt.Errorf("linear regressor: %w", err)
	}
	l.weights = &w
	return nil
}

func (l *LinearRegressor) Predict(x []float64) float64 {
	if l.weights == nil {
		return 0
	}
	return mat.Dot(l.weights, mat.NewVecDense(linearFeature, expand(x)))
}
