package libsvm

import (
	"fmt"
	"math"
	"time"
)

// decisionFunction is the solution of one binary problem
type decisionFunction struct {
	alpha []float64
	rho   float64
}

func solveCSVC(prob *Problem, param *Parameter, alpha []float64, si *SolutionInfo, cp float64, cn float64) QMatrix {
	l := prob.L
	minusOnes := make([]float64, l)
	y := make([]int8, l)

	for i := 0; i < l; i++ {
		alpha[i] = 0
		minusOnes[i] = -1
		if prob.Y[i] > 0 {
			y[i] = +1
		} else {
			y[i] = -1
		}
	}

	q := newSVCQ(prob, param, y)
	newSolver(false).solve(l, q, minusOnes, y, alpha, cp, cn, param.Eps, si, param.Shrinking)

	if cp == cn {
		var sumAlpha float64
		for i := 0; i < l; i++ {
			sumAlpha += alpha[i]
		}
		logger.Info().Float64("nu", sumAlpha/(cp*float64(l))).Msg("c_svc solved")
	}

	for i := 0; i < l; i++ {
		alpha[i] *= float64(y[i])
	}

	return q
}

func solveNuSVC(prob *Problem, param *Parameter, alpha []float64, si *SolutionInfo) QMatrix {
	l := prob.L
	nu := param.Nu

	y := make([]int8, l)
	for i := 0; i < l; i++ {
		if prob.Y[i] > 0 {
			y[i] = +1
		} else {
			y[i] = -1
		}
	}

	sumPos := nu * float64(l) / 2
	sumNeg := nu * float64(l) / 2

	for i := 0; i < l; i++ {
		if y[i] == +1 {
			alpha[i] = math.Min(1.0, sumPos)
			sumPos -= alpha[i]
		} else {
			alpha[i] = math.Min(1.0, sumNeg)
			sumNeg -= alpha[i]
		}
	}

	zeros := make([]float64, l)

	q := newSVCQ(prob, param, y)
	newSolver(true).solve(l, q, zeros, y, alpha, 1.0, 1.0, param.Eps, si, param.Shrinking)
	r := si.R

	logger.Info().Float64("C", 1/r).Msg("nu_svc solved")

	for i := 0; i < l; i++ {
		alpha[i] *= float64(y[i]) / r
	}

	si.Rho /= r
	si.Obj /= (r * r)
	si.UpperBoundP = 1 / r
	si.UpperBoundN = 1 / r

	return q
}

func solveOneClass(prob *Problem, param *Parameter, alpha []float64, si *SolutionInfo) QMatrix {
	l := prob.L
	zeros := make([]float64, l)
	ones := make([]int8, l)

	n := int(param.Nu * float64(l)) // # of alpha's at upper bound

	for i := 0; i < n; i++ {
		alpha[i] = 1
	}
	if n < l {
		alpha[n] = param.Nu*float64(l) - float64(n)
	}
	for i := n + 1; i < l; i++ {
		alpha[i] = 0
	}

	for i := 0; i < l; i++ {
		zeros[i] = 0
		ones[i] = 1
	}

	q := newOneClassQ(prob, param)
	newSolver(false).solve(l, q, zeros, ones, alpha, 1.0, 1.0, param.Eps, si, param.Shrinking)

	return q
}

func solveEpsilonSVR(prob *Problem, param *Parameter, alpha []float64, si *SolutionInfo) QMatrix {
	l := prob.L
	alpha2 := make([]float64, 2*l)
	linearTerm := make([]float64, 2*l)
	y := make([]int8, 2*l)

	for i := 0; i < l; i++ {
		alpha2[i] = 0
		linearTerm[i] = param.P - prob.Y[i]
		y[i] = 1

		alpha2[i+l] = 0
		linearTerm[i+l] = param.P + prob.Y[i]
		y[i+l] = -1
	}

	q := newSVRQ(prob, param)
	newSolver(false).solve(2*l, q, linearTerm, y, alpha2, param.C, param.C, param.Eps, si, param.Shrinking)

	var sumAlpha float64
	for i := 0; i < l; i++ {
		alpha[i] = alpha2[i] - alpha2[i+l]
		sumAlpha += math.Abs(alpha[i])
	}
	logger.Info().Float64("nu", sumAlpha/(param.C*float64(l))).Msg("epsilon_svr solved")

	return q
}

func solveNuSVR(prob *Problem, param *Parameter, alpha []float64, si *SolutionInfo) QMatrix {
	l := prob.L
	c := param.C
	alpha2 := make([]float64, 2*l)
	linearTerm := make([]float64, 2*l)
	y := make([]int8, 2*l)

	sum := c * param.Nu * float64(l) / 2
	for i := 0; i < l; i++ {
		alpha2[i] = math.Min(sum, c)
		alpha2[i+l] = alpha2[i]
		sum -= alpha2[i]

		linearTerm[i] = -prob.Y[i]
		y[i] = 1

		linearTerm[i+l] = prob.Y[i]
		y[i+l] = -1
	}

	q := newSVRQ(prob, param)
	newSolver(true).solve(2*l, q, linearTerm, y, alpha2, c, c, param.Eps, si, param.Shrinking)

	logger.Info().Float64("epsilon", -si.R).Msg("nu_svr solved")

	for i := 0; i < l; i++ {
		alpha[i] = alpha2[i] - alpha2[i+l]
	}

	return q
}

// trainOne solves a single dual problem
func trainOne(prob *Problem, param *Parameter, cp float64, cn float64) (*decisionFunction, error) {
	alpha := make([]float64, prob.L)
	si := &SolutionInfo{}

	var q QMatrix
	switch param.SvmType {
	case C_SVC:
		q = solveCSVC(prob, param, alpha, si, cp, cn)
	case NU_SVC:
		q = solveNuSVC(prob, param, alpha, si)
	case ONE_CLASS:
		q = solveOneClass(prob, param, alpha, si)
	case EPSILON_SVR:
		q = solveEpsilonSVR(prob, param, alpha, si)
	case NU_SVR:
		q = solveNuSVR(prob, param, alpha, si)
	default:
		return nil, fmt.Errorf("%w: unknown svm type", ErrInvalidParameter)
	}
	recordSolve(param.SvmType, si, q.cacheStats())

	logger.Info().Float64("obj", si.Obj).Float64("rho", si.Rho).Msg("solution")

	// output SVs
	nSV, nBSV := 0, 0
	for i := 0; i < prob.L; i++ {
		if math.Abs(alpha[i]) > 0 {
			nSV++
			if prob.Y[i] > 0 {
				if math.Abs(alpha[i]) >= si.UpperBoundP {
					nBSV++
				}
			} else {
				if math.Abs(alpha[i]) >= si.UpperBoundN {
					nBSV++
				}
			}
		}
	}

	logger.Info().Int("nSV", nSV).Int("nBSV", nBSV).Msg("support vectors")

	if !si.Converged && param.Strict {
		return nil, fmt.Errorf("%w after %d iterations", ErrNotConverged, si.Iterations)
	}

	return &decisionFunction{alpha: alpha, rho: si.Rho}, nil
}

// Train validates the parameters and builds a model from the problem
func Train(prob *Problem, param *Parameter) (*Model, error) {
	if err := prob.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if err := CheckParameter(prob, param); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	defer recordTrain(param.SvmType, time.Now())
	return train(prob, param)
}

func train(prob *Problem, param *Parameter) (*Model, error) {
	model := &Model{Param: param.Clone()}

	if !param.SvmType.IsClassification() {
		return trainSingle(prob, param, model)
	}

	// classification
	l := prob.L
	perm := make([]int, l)

	// group training data of the same class
	group := groupClasses(prob, perm)
	nrClass := group.nrClass
	label := group.label
	start := group.start
	count := group.count

	if nrClass == 1 {
		logger.Warn().Msg("training data in only one class")
	}

	x := make([][]FeatureNode, l)
	for i := 0; i < l; i++ {
		x[i] = prob.X[perm[i]]
	}

	// calculate weighted C
	weightedC := make([]float64, nrClass)
	for i := 0; i < nrClass; i++ {
		weightedC[i] = param.C
	}
	for i := 0; i < param.GetNumWeights(); i++ {
		j := 0
		for j = 0; j < nrClass; j++ {
			if param.WeightLabel[i] == label[j] {
				break
			}
		}
		if j == nrClass {
			logger.Warn().Int("label", param.WeightLabel[i]).Msg("class label specified in weight is not found")
		} else {
			weightedC[j] *= param.Weight[i]
		}
	}

	// train k*(k-1)/2 models
	nonzero := make([]bool, l)
	nrPairs := nrClass * (nrClass - 1) / 2
	f := make([]*decisionFunction, nrPairs)

	var probA, probB []float64
	if param.Probability {
		probA = make([]float64, nrPairs)
		probB = make([]float64, nrPairs)
	}

	p := 0
	for i := 0; i < nrClass; i++ {
		for j := i + 1; j < nrClass; j++ {
			si, sj := start[i], start[j]
			ci, cj := count[i], count[j]
			subProb := NewProblem(ci+cj, make([]float64, ci+cj), make([][]FeatureNode, ci+cj))
			for k := 0; k < ci; k++ {
				subProb.X[k] = x[si+k]
				subProb.Y[k] = +1
			}
			for k := 0; k < cj; k++ {
				subProb.X[ci+k] = x[sj+k]
				subProb.Y[ci+k] = -1
			}

			if param.Probability {
				a, b, err := binarySvcProbability(subProb, param, weightedC[i], weightedC[j])
				if err != nil {
					return nil, err
				}
				probA[p], probB[p] = a, b
			}

			df, err := trainOne(subProb, param, weightedC[i], weightedC[j])
			if err != nil {
				return nil, fmt.Errorf("class pair (%d, %d): %w", label[i], label[j], err)
			}
			f[p] = df

			for k := 0; k < ci; k++ {
				if !nonzero[si+k] && math.Abs(df.alpha[k]) > 0 {
					nonzero[si+k] = true
				}
			}
			for k := 0; k < cj; k++ {
				if !nonzero[sj+k] && math.Abs(df.alpha[ci+k]) > 0 {
					nonzero[sj+k] = true
				}
			}
			p++
		}
	}

	// build output
	model.NumClass = nrClass
	model.Label = append([]int(nil), label...)

	model.Rho = make([]float64, nrPairs)
	for i := 0; i < nrPairs; i++ {
		model.Rho[i] = f[i].rho
	}

	if param.Probability {
		model.ProbA = probA
		model.ProbB = probB
	}

	nnz := 0
	nzCount := make([]int, nrClass)
	model.NSV = make([]int, nrClass)
	for i := 0; i < nrClass; i++ {
		nSV := 0
		for j := 0; j < count[i]; j++ {
			if nonzero[start[i]+j] {
				nSV++
				nnz++
			}
		}
		model.NSV[i] = nSV
		nzCount[i] = nSV
	}

	logger.Info().Int("nSV", nnz).Msg("total support vectors")

	model.L = nnz
	model.SV = make([][]FeatureNode, nnz)
	model.SvIndices = make([]int, nnz)
	p = 0
	for i := 0; i < l; i++ {
		if nonzero[i] {
			model.SV[p] = x[i]
			model.SvIndices[p] = perm[i] + 1
			p++
		}
	}

	nzStart := make([]int, nrClass)
	for i := 1; i < nrClass; i++ {
		nzStart[i] = nzStart[i-1] + nzCount[i-1]
	}

	model.SvCoef = make([][]float64, maxInt(nrClass-1, 0))
	for i := range model.SvCoef {
		model.SvCoef[i] = make([]float64, nnz)
	}

	p = 0
	for i := 0; i < nrClass; i++ {
		for j := i + 1; j < nrClass; j++ {
			// classifier (i,j): coefficients with
			// i are in sv_coef[j-1][nz_start[i]...],
			// j are in sv_coef[i][nz_start[j]...]
			si, sj := start[i], start[j]
			ci, cj := count[i], count[j]

			q := nzStart[i]
			for k := 0; k < ci; k++ {
				if nonzero[si+k] {
					model.SvCoef[j-1][q] = f[p].alpha[k]
					q++
				}
			}
			q = nzStart[j]
			for k := 0; k < cj; k++ {
				if nonzero[sj+k] {
					model.SvCoef[i][q] = f[p].alpha[ci+k]
					q++
				}
			}
			p++
		}
	}

	return model, nil
}

// trainSingle handles one-class and regression, which need a single solve
func trainSingle(prob *Problem, param *Parameter, model *Model) (*Model, error) {
	model.NumClass = 2

	if param.Probability && param.SvmType.IsRegression() {
		sigma, err := svrProbability(prob, param)
		if err != nil {
			return nil, err
		}
		model.ProbA = []float64{sigma}
	}

	f, err := trainOne(prob, param, 0, 0)
	if err != nil {
		return nil, err
	}
	model.Rho = []float64{f.rho}

	nSV := 0
	for i := 0; i < prob.L; i++ {
		if math.Abs(f.alpha[i]) > 0 {
			nSV++
		}
	}

	model.L = nSV
	model.SV = make([][]FeatureNode, nSV)
	model.SvCoef = [][]float64{make([]float64, nSV)}
	model.SvIndices = make([]int, nSV)

	j := 0
	for i := 0; i < prob.L; i++ {
		if math.Abs(f.alpha[i]) > 0 {
			model.SV[j] = prob.X[i]
			model.SvCoef[0][j] = f.alpha[i]
			model.SvIndices[j] = i + 1
			j++
		}
	}

	return model, nil
}

func maxInt(a int, b int) int {
	if a > b {
		return a
	}
	return b
}
