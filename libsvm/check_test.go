package libsvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckParameter(t *testing.T) {
	prob := separableProblem()

	cases := []struct {
		name   string
		modify func(p *Parameter)
		reason string
	}{
		{"valid", func(p *Parameter) {}, ""},
		{"nil svm type", func(p *Parameter) { p.SvmType = nil }, "unknown svm type"},
		{"foreign svm type", func(p *Parameter) { p.SvmType = NewSvmType(9, "c_svc", true, false, false) }, "unknown svm type"},
		{"nil kernel", func(p *Parameter) { p.KernelType = nil }, "unknown kernel type"},
		{"gamma", func(p *Parameter) { p.Gamma = -1 }, "gamma < 0"},
		{"gamma linear", func(p *Parameter) { p.KernelType = LINEAR; p.Gamma = -1 }, "gamma < 0"},
		{"degree", func(p *Parameter) { p.Degree = -1 }, "degree of polynomial kernel < 0"},
		{"cache", func(p *Parameter) { p.CacheSize = 0 }, "cache_size <= 0"},
		{"eps", func(p *Parameter) { p.Eps = 0 }, "eps <= 0"},
		{"C", func(p *Parameter) { p.C = 0 }, "C <= 0"},
		{"C unused by nu-svc", func(p *Parameter) { p.SvmType = NU_SVC; p.C = 0 }, ""},
		{"C svr", func(p *Parameter) { p.SvmType = NU_SVR; p.C = -1 }, "C <= 0"},
		{"nu zero", func(p *Parameter) { p.SvmType = ONE_CLASS; p.Nu = 0 }, "nu <= 0 or nu > 1"},
		{"nu above one", func(p *Parameter) { p.SvmType = NU_SVR; p.Nu = 1.5 }, "nu <= 0 or nu > 1"},
		{"p", func(p *Parameter) { p.SvmType = EPSILON_SVR; p.P = -0.1 }, "p < 0"},
		{"p unused by c-svc", func(p *Parameter) { p.P = -0.1 }, ""},
		{"weights", func(p *Parameter) { p.Weight = []float64{1}; p.WeightLabel = nil }, "weight and weight_label differ in length"},
		{"one-class probability", func(p *Parameter) { p.SvmType = ONE_CLASS; p.Probability = true }, "one-class SVM probability output not supported yet"},
		{"nu of one on balanced classes", func(p *Parameter) { p.SvmType = NU_SVC; p.Nu = 1 }, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			param := DefaultParameter()
			tc.modify(param)

			err := CheckParameter(prob, param)
			if tc.reason == "" {
				assert.NoError(t, err)
			} else if assert.Error(t, err) {
				assert.Equal(t, tc.reason, err.Error())
			}
		})
	}
}

func TestCheckParameterNuFeasibility(t *testing.T) {
	prob := denseProblem([][]float64{{1}, {2}, {3}, {4}, {5}}, []float64{1, 1, 1, 1, 2})
	param := DefaultParameter()
	param.SvmType = NU_SVC

	param.Nu = 0.4
	assert.NoError(t, CheckParameter(prob, param))

	// nu * (4 + 1) / 2 > min(4, 1)
	param.Nu = 0.5
	assert.EqualError(t, CheckParameter(prob, param), "specified nu is infeasible")
}

func TestCheckProbabilityModel(t *testing.T) {
	model := &Model{Param: DefaultParameter()}
	assert.False(t, CheckProbabilityModel(model))

	model.ProbA = []float64{1}
	assert.False(t, CheckProbabilityModel(model))
	model.ProbB = []float64{1}
	assert.True(t, CheckProbabilityModel(model))

	model = &Model{Param: DefaultParameter(), ProbA: []float64{0.5}}
	model.Param.SvmType = NU_SVR
	assert.True(t, CheckProbabilityModel(model))

	model.Param.SvmType = ONE_CLASS
	assert.False(t, CheckProbabilityModel(model))
}

func TestTypeLookups(t *testing.T) {
	for _, svmType := range SvmTypeValues() {
		assert.Equal(t, svmType, GetSvmTypeByID(svmType.ID()))
		assert.Equal(t, svmType, GetSvmTypeByName(svmType.Name()))
	}
	for _, kernelType := range KernelTypeValues() {
		assert.Equal(t, kernelType, GetKernelTypeByID(kernelType.ID()))
		assert.Equal(t, kernelType, GetKernelTypeByName(kernelType.Name()))
	}
	assert.Nil(t, GetSvmTypeByName("l2r_lr"))
	assert.Nil(t, GetKernelTypeByID(5))

	assert.True(t, NU_SVR.IsRegression() && NU_SVR.IsNu())
	assert.True(t, C_SVC.IsClassification() && !C_SVC.IsNu())
	assert.False(t, ONE_CLASS.IsClassification() || ONE_CLASS.IsRegression())
	assert.True(t, POLY.UsesDegree() && POLY.UsesCoef0())
	assert.False(t, LINEAR.UsesGamma())
}

func TestGroupClasses(t *testing.T) {
	prob := denseProblem([][]float64{{1}, {2}, {3}, {4}, {5}, {6}}, []float64{3, 1, 3, 2, 1, 3})
	perm := make([]int, prob.L)

	group := groupClasses(prob, perm)

	assert.Equal(t, 3, group.nrClass)
	assert.Equal(t, []int{3, 1, 2}, group.label)
	assert.Equal(t, []int{3, 2, 1}, group.count)
	assert.Equal(t, []int{0, 3, 5}, group.start)
	assert.Equal(t, []int{0, 2, 5, 1, 4, 3}, perm)
}
