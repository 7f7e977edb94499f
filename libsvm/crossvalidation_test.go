package libsvm

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveOneOutFoldIsolation(t *testing.T) {
	prob := threeClassProblem()
	// tag every example with a unique target
	for i := range prob.Y {
		prob.Y[i] = float64(100 + i)
	}
	l := prob.L

	for _, svmType := range []*SvmType{C_SVC, EPSILON_SVR} {
		param := DefaultParameter()
		param.SvmType = svmType

		perm, foldStart := foldPermutation(prob, param, l)
		require.Len(t, foldStart, l+1)

		for i := 0; i < l; i++ {
			begin, end := foldStart[i], foldStart[i+1]
			require.Equal(t, 1, end-begin)

			heldOut := prob.Y[perm[begin]]
			sub := prob.subProblem(perm, begin, end)
			assert.Equal(t, l-1, sub.L)
			assert.NotContains(t, sub.Y, heldOut)
		}
	}
}

func TestStratifiedFoldsArePartition(t *testing.T) {
	prob := CreateRandomProblem(3)
	if prob.L < 5 {
		prob = threeClassProblem()
	}
	param := DefaultParameter()
	nrFold := 4
	if nrFold >= prob.L {
		nrFold = prob.L - 1
	}

	perm, foldStart := foldPermutation(prob, param, nrFold)

	assert.Equal(t, 0, foldStart[0])
	assert.Equal(t, prob.L, foldStart[nrFold])

	seen := append([]int(nil), perm...)
	sort.Ints(seen)
	for i, v := range seen {
		assert.Equal(t, i, v)
	}
}

func TestCrossValidation(t *testing.T) {
	prob := CreateRandomProblem(4)
	for prob.L < 10 {
		prob = CreateRandomProblem(4)
	}
	param := NewParameter(C_SVC, RBF, 10, 0.5, 1e-3)

	target, err := CrossValidation(prob, param, 10)
	require.NoError(t, err)
	require.Len(t, target, prob.L)

	labels := map[float64]bool{}
	for _, y := range prob.Y {
		labels[y] = true
	}
	for _, v := range target {
		assert.True(t, labels[v])
	}
}

func TestCrossValidationSeparable(t *testing.T) {
	prob := threeClassProblem()
	param := NewParameter(C_SVC, LINEAR, 1, 0, 1e-3)

	target, err := CrossValidation(prob, param, 3)
	require.NoError(t, err)

	score := ScoreCrossValidation(prob, param, target)
	assert.Equal(t, 9, score.Total)
	assert.Equal(t, 1.0, score.Accuracy)
}

func TestCrossValidationProbability(t *testing.T) {
	prob := threeClassProblem()
	param := NewParameter(C_SVC, LINEAR, 1, 0, 1e-3)
	param.Probability = true

	target, err := CrossValidation(prob, param, 3)
	require.NoError(t, err)
	for _, v := range target {
		assert.Contains(t, []float64{1, 2, 3}, v)
	}
}

func TestCrossValidationFoldCount(t *testing.T) {
	prob := separableProblem()
	param := NewParameter(C_SVC, LINEAR, 1, 0, 1e-3)

	_, err := CrossValidation(prob, param, 1)
	assert.Error(t, err)

	// more folds than examples falls back to leave-one-out
	target, err := CrossValidation(prob, param, 50)
	require.NoError(t, err)
	assert.Len(t, target, prob.L)
}

func TestCrossValidationChecksParameters(t *testing.T) {
	cases := map[string]func(p *Parameter){
		"negative C":     func(p *Parameter) { p.C = -1 },
		"nil kernel":     func(p *Parameter) { p.KernelType = nil },
		"nil svm type":   func(p *Parameter) { p.SvmType = nil },
		"infeasible nu":  func(p *Parameter) { p.SvmType = NU_SVC; p.Nu = 0.9 },
		"zero cache":     func(p *Parameter) { p.CacheSize = 0 },
		"one-class prob": func(p *Parameter) { p.SvmType = ONE_CLASS; p.Probability = true },
	}

	// four examples of class 1, two of class 2
	prob := denseProblem([][]float64{{1}, {2}, {3}, {4}, {8}, {9}}, []float64{1, 1, 1, 1, 2, 2})
	for name, modify := range cases {
		t.Run(name, func(t *testing.T) {
			param := NewParameter(C_SVC, LINEAR, 1, 0, 1e-3)
			modify(param)

			target, err := CrossValidation(prob, param, 3)
			assert.Nil(t, target)
			assert.True(t, errors.Is(err, ErrInvalidParameter), "%v", err)

			_, err = FindParameters(prob, param, 3, []float64{0}, nil)
			assert.True(t, errors.Is(err, ErrInvalidParameter), "%v", err)
		})
	}

	_, err := CrossValidation(NewProblem(0, nil, nil), DefaultParameter(), 2)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestScoreCrossValidationRegression(t *testing.T) {
	prob := denseProblem([][]float64{{1}, {2}, {3}, {4}}, []float64{1, 2, 3, 4})
	param := DefaultParameter()
	param.SvmType = EPSILON_SVR

	score := ScoreCrossValidation(prob, param, []float64{2, 3, 4, 5})
	assert.InDelta(t, 1.0, score.MeanSquaredError, 1e-12)
	assert.InDelta(t, 1.0, score.SquaredCorrelationCoeff, 1e-12)
}

func TestFindParameters(t *testing.T) {
	prob := threeClassProblem()
	param := NewParameter(C_SVC, RBF, 1, 0, 1e-3)

	result, err := FindParameters(prob, param, 3, Log2Range(-1, 3, 2), Log2Range(-3, -1, 1))
	require.NoError(t, err)

	assert.Contains(t, []float64{0.5, 2, 8}, result.GetBestC())
	assert.Contains(t, []float64{0.125, 0.25, 0.5}, result.GetBestGamma())
	assert.True(t, result.GetBestRate() > 0 && result.GetBestRate() <= 1)

	// the search does not touch the caller's parameter
	assert.Equal(t, 1.0, param.C)
}

func TestFindParametersRegression(t *testing.T) {
	prob := linearRegressionProblem()
	param := NewParameter(EPSILON_SVR, LINEAR, 1, 0, 1e-3)

	result, err := FindParameters(prob, param, 5, Log2Range(0, 4, 2), nil)
	require.NoError(t, err)
	assert.Contains(t, []float64{1, 4, 16}, result.GetBestC())
	assert.True(t, result.GetBestRate() >= 0)

	_, err = FindParameters(prob, param, 5, nil, nil)
	assert.Error(t, err)
}

func TestLog2Range(t *testing.T) {
	assert.Equal(t, []float64{-5, -3, -1, 1}, Log2Range(-5, 1, 2))
	assert.Equal(t, []float64{3, 1, -1}, Log2Range(3, -1, -2))
	assert.Equal(t, []float64{4}, Log2Range(4, 10, 0))
	assert.Nil(t, Log2Range(2, 1, 1))
}
