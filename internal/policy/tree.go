package policy

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const maxTreeDepth = 32

// TreeRegressor is a CART regression tree. Nodes split on the feature and
// threshold that minimize the summed squared error of the two children and
// keep splitting until a node's targets are identical or its samples can no
// longer be separated. Ties between splits go to the lowest feature index
// and then the lowest threshold, so fitting is deterministic.
type TreeRegressor struct {
	root *treeNode
}

type treeNode struct {
	value       float64
	feature     int
	threshold   float64
	left, right *treeNode
}

func (n *treeNode) leaf() bool { return n.left == nil }

func (t *TreeRegressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("tree regressor: no samples")
	}
	if len(X) != len(y) {
		return errors.New("tree regressor: X and y lengths differ")
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	t.root = grow(X, y, idx, 0)
	return nil
}

func (t *TreeRegressor) Predict(x []float64) float64 {
	n := t.root
	if n == nil {
		return 0
	}
	for !n.leaf() {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func grow(X [][]float64, y []float64, idx []int, depth int) *treeNode {
	ys := gather(y, idx)
	mean, variance := stat.PopMeanVariance(ys, nil)
	node := &treeNode{value: mean}
	if len(idx) < 2 || variance == 0 || depth >= maxTreeDepth {
		return node
	}

	bestSSE := variance * float64(len(idx))
	found := false
	for f := range X[idx[0]] {
		for _, th := range thresholds(X, idx, f) {
			l, r := partition(X, idx, f, th)
			cost := sse(y, l) + sse(y, r)
			if !found || cost < bestSSE {
				bestSSE, found = cost, true
				node.feature, node.threshold = f, th
			}
		}
	}
	if !found {
		return node
	}
	l, r := partition(X, idx, node.feature, node.threshold)
	node.left = grow(X, y, l, depth+1)
	node.right = grow(X, y, r, depth+1)
	return node
}

// thresholds returns the midpoints between consecutive distinct values of
// feature f.
func thresholds(X [][]float64, idx []int, f int) []float64 {
	vals := make([]float64, 0, len(idx))
	for _, i := range idx {
		vals = append(vals, X[i][f])
	}
	sort.Float64s(vals)
	var out []float64
	for i := 1; i < len(vals); i++ {
		if vals[i] != vals[i-1] {
			out = append(out, (vals[i]+vals[i-1])/2)
		}
	}
	return out
}

func partition(X [][]float64, idx []int, f int, th float64) (left, right []int) {
	for _, i := range idx {
		if X[i][f] <= th {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func sse(y []float64, idx []int) float64 {
	_, v := stat.PopMeanVariance(gather(y, idx), nil)
	return v * float64(len(idx))
}

func gather(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = y[i]
	}
	return out
}
