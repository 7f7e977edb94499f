package libsvm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kernelTestParam(kernelType *KernelType) *Parameter {
	param := DefaultParameter()
	param.KernelType = kernelType
	param.Gamma = 0.5
	param.Coef0 = 1
	param.Degree = 2
	return param
}

func TestKernelMatchesKFunction(t *testing.T) {
	prob := separableProblem()
	prob.X[1] = append(prob.X[1], NewFeatureNode(5, 3))

	for _, kernelType := range []*KernelType{LINEAR, POLY, RBF, SIGMOID} {
		param := kernelTestParam(kernelType)
		k := newKernel(prob.L, prob.X, param)

		for i := 0; i < prob.L; i++ {
			for j := 0; j < prob.L; j++ {
				assert.InDelta(t, KFunction(prob.X[i], prob.X[j], param), k.kernelFunction(i, j), 1e-12,
					"kernel %v at (%d, %d)", kernelType, i, j)
			}
		}
	}
}

func TestKernelValues(t *testing.T) {
	x := NewDenseVector([]float64{1, 2})
	y := NewDenseVector([]float64{3, 0, 1})

	assert.Equal(t, 3.0, KFunction(x, y, kernelTestParam(LINEAR)))
	assert.InDelta(t, math.Pow(0.5*3+1, 2), KFunction(x, y, kernelTestParam(POLY)), 1e-12)
	// |x-y|^2 = 4 + 4 + 1
	assert.InDelta(t, math.Exp(-0.5*9), KFunction(x, y, kernelTestParam(RBF)), 1e-12)
	assert.InDelta(t, math.Tanh(0.5*3+1), KFunction(x, y, kernelTestParam(SIGMOID)), 1e-12)
}

func TestKernelPrecomputed(t *testing.T) {
	x := []FeatureNode{NewFeatureNode(0, 1), NewFeatureNode(1, 4), NewFeatureNode(2, 7)}
	sv := []FeatureNode{NewFeatureNode(0, 2)}

	assert.Equal(t, 7.0, KFunction(x, sv, kernelTestParam(PRECOMPUTED)))
}

func TestKernelSwapIndex(t *testing.T) {
	prob := separableProblem()
	param := kernelTestParam(RBF)
	k := newKernel(prob.L, prob.X, param)

	before := k.kernelFunction(0, 4)
	k.swapIndex(0, 3)
	assert.InDelta(t, before, k.kernelFunction(3, 4), 1e-12)

	// the problem keeps its order
	assert.Equal(t, NewDenseVector([]float64{-2, -2}), prob.X[0])
}

func TestSVCQSign(t *testing.T) {
	prob := separableProblem()
	param := kernelTestParam(RBF)
	y := []int8{-1, -1, -1, 1, 1, 1}
	q := newSVCQ(prob, param, y)

	qi := q.getQ(0, prob.L)
	qj := q.getQ(4, prob.L)
	for j := 0; j < prob.L; j++ {
		want := float64(y[0]) * float64(y[j]) * KFunction(prob.X[0], prob.X[j], param)
		assert.InDelta(t, want, float64(qi[j]), 1e-6)
	}
	// both rows stay readable
	assert.InDelta(t, -KFunction(prob.X[4], prob.X[0], param), float64(qj[0]), 1e-6)
	assert.InDelta(t, 1.0, float64(qi[0]), 1e-6)

	for i, d := range q.getQD() {
		assert.InDelta(t, 1.0, d, 1e-12, "diagonal %d", i)
	}
}

func TestSVCQSwapIndex(t *testing.T) {
	prob := separableProblem()
	param := kernelTestParam(LINEAR)
	y := []int8{-1, -1, -1, 1, 1, 1}
	q := newSVCQ(prob, param, y)

	before := q.getQ(1, prob.L)
	want := append([]float32(nil), before...)

	q.swapIndex(1, 4)
	after := q.getQ(4, prob.L)
	want[1], want[4] = want[4], want[1]
	assert.Equal(t, want, after)
	assert.Equal(t, int8(1), q.y[1])
	assert.Equal(t, int8(-1), q.y[4])
}

func TestSVRQ(t *testing.T) {
	prob := linearRegressionProblem()
	param := kernelTestParam(LINEAR)
	l := prob.L
	q := newSVRQ(prob, param)

	require.Len(t, q.getQD(), 2*l)

	row := append([]float32(nil), q.getQ(2, 2*l)...)
	mirror := q.getQ(2+l, 2*l)
	for j := 0; j < 2*l; j++ {
		kv := KFunction(prob.X[2], prob.X[j%l], param)
		sign := 1.0
		if j >= l {
			sign = -1
		}
		assert.InDelta(t, sign*kv, float64(row[j]), 1e-6)
		assert.InDelta(t, -sign*kv, float64(mirror[j]), 1e-6)
	}

	q.swapIndex(0, l)
	assert.Equal(t, int8(-1), q.sign[0])
	assert.Equal(t, 0, q.index[0])
}

func TestOneClassQ(t *testing.T) {
	prob := separableProblem()
	param := kernelTestParam(POLY)
	q := newOneClassQ(prob, param)

	row := q.getQ(5, prob.L)
	for j := 0; j < prob.L; j++ {
		assert.InDelta(t, KFunction(prob.X[5], prob.X[j], param), float64(row[j]), 1e-4)
	}
	assert.Equal(t, 1, q.cacheStats().misses)

	q.getQ(5, prob.L)
	assert.Equal(t, 1, q.cacheStats().hits)
}
