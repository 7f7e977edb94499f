package libsvm

import "fmt"

// FeatureNode is one (index, value) entry of a sparse vector
type FeatureNode struct {
	index int
	value float64
}

// NewFeatureNode returns a new FeatureNode
func NewFeatureNode(index int, value float64) FeatureNode {
	return FeatureNode{
		index: index,
		value: value,
	}
}

// GetIndex does just that
func (f FeatureNode) GetIndex() int {
	return f.index
}

// GetValue does just that
func (f FeatureNode) GetValue() float64 {
	return f.value
}

// String formats the node the way it appears in data and model files
func (f FeatureNode) String() string {
	return fmt.Sprintf("%d:%.17g", f.index, f.value)
}

// NewSparseVector builds a sparse vector from parallel index and value slices.
// Zero values are kept; indices must be strictly increasing.
func NewSparseVector(indices []int, values []float64) ([]FeatureNode, error) {
	if len(indices) != len(values) {
		return nil, fmt.Errorf("indices and values differ in length: %d != %d", len(indices), len(values))
	}

	x := make([]FeatureNode, len(indices))
	prev := -1
	for i, idx := range indices {
		if idx <= prev {
			return nil, fmt.Errorf("feature nodes must be sorted by index in ascending order, got %d after %d", idx, prev)
		}
		prev = idx
		x[i] = NewFeatureNode(idx, values[i])
	}

	return x, nil
}

// NewDenseVector builds a sparse vector with indices 1..len(values), skipping zeros
func NewDenseVector(values []float64) []FeatureNode {
	x := make([]FeatureNode, 0, len(values))
	for i, v := range values {
		if v != 0 {
			x = append(x, NewFeatureNode(i+1, v))
		}
	}
	return x
}
