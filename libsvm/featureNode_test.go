package libsvm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorHappy(t *testing.T) {
	fn := NewFeatureNode(25, 27.39)
	assert.Equal(t, 25, fn.GetIndex())
	assert.Equal(t, 27.39, fn.GetValue())

	fn = NewFeatureNode(1, -0.22222)
	assert.Equal(t, 1, fn.GetIndex())
	assert.Equal(t, -0.22222, fn.GetValue())
	assert.Equal(t, "1:-0.22222", fn.String())
}

func TestNewSparseVectorRejectsUnsortedIndices(t *testing.T) {
	_, err := NewSparseVector([]int{1, 3, 2}, []float64{1, 1, 1})
	assert.Error(t, err)

	_, err = NewSparseVector([]int{1, 1}, []float64{1, 1})
	assert.Error(t, err)

	_, err = NewSparseVector([]int{1}, []float64{1, 2})
	assert.Error(t, err)

	x, err := NewSparseVector([]int{2, 5}, []float64{0.5, -1})
	require.NoError(t, err)
	assert.Equal(t, []FeatureNode{{2, 0.5}, {5, -1}}, x)
}

func TestNewDenseVectorSkipsZeros(t *testing.T) {
	x := NewDenseVector([]float64{0, 1.5, 0, -2})
	assert.Equal(t, []FeatureNode{{2, 1.5}, {4, -2}}, x)
}

func TestSparseOperators(t *testing.T) {
	x := []FeatureNode{{1, 1}, {3, 2}, {4, -1}}
	y := []FeatureNode{{2, 5}, {3, 3}, {6, 1}}

	assert.Equal(t, 6.0, SparseOperatorNrm2Sq(x))
	assert.Equal(t, 6.0, SparseOperatorDot(x, y))
	assert.Equal(t, 0.0, SparseOperatorDot(x, nil))

	// |x|^2 + |y|^2 - 2 x.y
	assert.InDelta(t, 6.0+35.0-12.0, SparseOperatorDistSq(x, y), 1e-12)
	assert.Equal(t, 0.0, SparseOperatorDistSq(x, x))
}

func TestPowi(t *testing.T) {
	for _, base := range []float64{-2, 0.5, 3} {
		for times := 0; times < 8; times++ {
			assert.InDelta(t, math.Pow(base, float64(times)), powi(base, times), 1e-12)
		}
	}
}
