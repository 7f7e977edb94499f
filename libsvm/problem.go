package libsvm

import "fmt"

// Problem is a training set: L examples X with targets Y
type Problem struct {
	L int
	Y []float64
	X [][]FeatureNode
}

// NewProblem constructs a Problem
func NewProblem(l int, y []float64, x [][]FeatureNode) *Problem {
	return &Problem{
		L: l,
		Y: y,
		X: x,
	}
}

// Validate checks the array lengths and the index ordering of every vector
func (prob *Problem) Validate() error {
	if prob.L <= 0 {
		return fmt.Errorf("problem has no examples")
	}
	if prob.L != len(prob.Y) || prob.L != len(prob.X) {
		return fmt.Errorf("problem size mismatch: l=%d, len(y)=%d, len(x)=%d", prob.L, len(prob.Y), len(prob.X))
	}

	for i, nodes := range prob.X {
		indexBefore := -1
		for _, n := range nodes {
			if n.index <= indexBefore {
				return fmt.Errorf("example %d: feature nodes must be sorted by index in ascending order", i+1)
			}
			indexBefore = n.index
		}
	}

	return nil
}

// MaxIndex returns the largest feature index found in the problem
func (prob *Problem) MaxIndex() int {
	maxIndex := 0
	for _, nodes := range prob.X {
		if len(nodes) > 0 && nodes[len(nodes)-1].index > maxIndex {
			maxIndex = nodes[len(nodes)-1].index
		}
	}
	return maxIndex
}

// subProblem gathers the examples perm[from:to] except the ones in [skipFrom, skipTo)
func (prob *Problem) subProblem(perm []int, skipFrom int, skipTo int) *Problem {
	l := len(perm) - (skipTo - skipFrom)
	sub := NewProblem(l, make([]float64, l), make([][]FeatureNode, l))

	k := 0
	for j := 0; j < skipFrom; j++ {
		sub.X[k] = prob.X[perm[j]]
		sub.Y[k] = prob.Y[perm[j]]
		k++
	}

	for j := skipTo; j < len(perm); j++ {
		sub.X[k] = prob.X[perm[j]]
		sub.Y[k] = prob.Y[perm[j]]
		k++
	}

	return sub
}
