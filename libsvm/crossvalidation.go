package libsvm

import (
	"fmt"
	"math"
)

// CrossValidation trains on nrFold-1 folds and predicts the remaining one,
// returning the prediction of every example in its original order. Folds are
// stratified by class for C_SVC and NU_SVC.
func CrossValidation(prob *Problem, param *Parameter, nrFold int) ([]float64, error) {
	if err := prob.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if err := CheckParameter(prob, param); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return crossValidation(prob, param, nrFold)
}

// crossValidation runs the folds on parameters that were already checked
func crossValidation(prob *Problem, param *Parameter, nrFold int) ([]float64, error) {
	l := prob.L
	if l < 2 {
		return nil, fmt.Errorf("cross validation needs at least two examples, got %d", l)
	}
	if nrFold < 2 {
		return nil, fmt.Errorf("n-fold cross validation: n must be >= 2, got %d", nrFold)
	}
	if nrFold > l {
		nrFold = l
		logger.Warn().Msg("# folds > # data. Will use # folds = # data instead (i.e., leave-one-out cross validation)")
	}

	target := make([]float64, l)
	perm, foldStart := foldPermutation(prob, param, nrFold)

	for i := 0; i < nrFold; i++ {
		begin := foldStart[i]
		end := foldStart[i+1]

		subProb := prob.subProblem(perm, begin, end)
		subModel, err := train(subProb, param)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i+1, err)
		}

		if param.Probability && param.SvmType.IsClassification() {
			probEstimates := make([]float64, subModel.NumClass)
			for j := begin; j < end; j++ {
				if target[perm[j]], err = PredictProbability(subModel, prob.X[perm[j]], probEstimates); err != nil {
					return nil, err
				}
			}
		} else {
			for j := begin; j < end; j++ {
				target[perm[j]] = Predict(subModel, prob.X[perm[j]])
			}
		}
	}

	return target, nil
}

// foldPermutation orders the examples so that fold i is perm[foldStart[i]:foldStart[i+1]]
func foldPermutation(prob *Problem, param *Parameter, nrFold int) ([]int, []int) {
	l := prob.L
	perm := make([]int, l)
	foldStart := make([]int, nrFold+1)

	// stratified cv may not give leave-one-out rate
	// Each class to l folds -> some folds may have zero elements
	if param.SvmType.IsClassification() && nrFold < l {
		group := groupClasses(prob, perm)
		nrClass := group.nrClass
		start := group.start
		count := group.count

		// random shuffle and then data grouped by fold using the array perm
		foldCount := make([]int, nrFold)
		index := append([]int(nil), perm...)
		for c := 0; c < nrClass; c++ {
			for i := 0; i < count[c]; i++ {
				j := i + random.Intn(count[c]-i)
				index[start[c]+j], index[start[c]+i] = index[start[c]+i], index[start[c]+j]
			}
		}
		for i := 0; i < nrFold; i++ {
			foldCount[i] = 0
			for c := 0; c < nrClass; c++ {
				foldCount[i] += (i+1)*count[c]/nrFold - i*count[c]/nrFold
			}
		}

		foldStart[0] = 0
		for i := 1; i <= nrFold; i++ {
			foldStart[i] = foldStart[i-1] + foldCount[i-1]
		}
		for c := 0; c < nrClass; c++ {
			for i := 0; i < nrFold; i++ {
				begin := start[c] + i*count[c]/nrFold
				end := start[c] + (i+1)*count[c]/nrFold
				for j := begin; j < end; j++ {
					perm[foldStart[i]] = index[j]
					foldStart[i]++
				}
			}
		}

		foldStart[0] = 0
		for i := 1; i <= nrFold; i++ {
			foldStart[i] = foldStart[i-1] + foldCount[i-1]
		}
		return perm, foldStart
	}

	for i := 0; i < l; i++ {
		perm[i] = i
	}
	for i := 0; i < l; i++ {
		j := i + random.Intn(l-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	for i := 0; i <= nrFold; i++ {
		foldStart[i] = i * l / nrFold
	}

	return perm, foldStart
}

// CrossValidationScore summarizes CrossValidation predictions: accuracy for
// classification, mean squared error and squared correlation otherwise
type CrossValidationScore struct {
	Accuracy                float64
	MeanSquaredError        float64
	SquaredCorrelationCoeff float64
	Correct                 int
	Total                   int
}

// ScoreCrossValidation compares the predictions with the problem targets
func ScoreCrossValidation(prob *Problem, param *Parameter, target []float64) CrossValidationScore {
	score := CrossValidationScore{Total: prob.L}

	if param.SvmType.IsRegression() {
		var totalError, sumv, sumy, sumvv, sumyy, sumvy float64
		for i := 0; i < prob.L; i++ {
			y := prob.Y[i]
			v := target[i]
			totalError += (v - y) * (v - y)
			sumv += v
			sumy += y
			sumvv += v * v
			sumyy += y * y
			sumvy += v * y
		}
		l := float64(prob.L)
		score.MeanSquaredError = totalError / l
		score.SquaredCorrelationCoeff = ((l*sumvy - sumv*sumy) * (l*sumvy - sumv*sumy)) /
			((l*sumvv - sumv*sumv) * (l*sumyy - sumy*sumy))
		return score
	}

	for i := 0; i < prob.L; i++ {
		if target[i] == prob.Y[i] {
			score.Correct++
		}
	}
	score.Accuracy = float64(score.Correct) / float64(prob.L)
	return score
}

// FindParameters runs a grid search over log2(C) and log2(gamma) with
// cross validation and keeps the first best point. Kernels without gamma
// only search C. Regression types are ranked by mean squared error.
func FindParameters(prob *Problem, param *Parameter, nrFold int, log2C []float64, log2Gamma []float64) (*ParameterSearchResult, error) {
	if err := prob.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if err := CheckParameter(prob, param); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if len(log2C) == 0 {
		return nil, fmt.Errorf("empty C grid")
	}
	if !param.KernelType.UsesGamma() || len(log2Gamma) == 0 {
		log2Gamma = []float64{math.Log2(math.Max(param.Gamma, math.SmallestNonzeroFloat64))}
	}

	regression := param.SvmType.IsRegression()
	result := NewParameterSearchResult(math.NaN(), math.NaN(), math.Inf(-1))
	if regression {
		result.bestRate = math.Inf(1)
	}

	search := param.Clone()
	for _, lc := range log2C {
		for _, lg := range log2Gamma {
			search.C = math.Exp2(lc)
			if param.KernelType.UsesGamma() {
				search.Gamma = math.Exp2(lg)
			}

			if err := CheckParameter(prob, search); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
			}

			target, err := crossValidation(prob, search, nrFold)
			if err != nil {
				return nil, err
			}
			score := ScoreCrossValidation(prob, search, target)

			if regression {
				logger.Info().Float64("log2c", lc).Float64("log2g", lg).Float64("mse", score.MeanSquaredError).Msg("grid point")
				if score.MeanSquaredError < result.bestRate {
					result = NewParameterSearchResult(search.C, search.Gamma, score.MeanSquaredError)
				}
			} else {
				logger.Info().Float64("log2c", lc).Float64("log2g", lg).Float64("rate", 100.0*score.Accuracy).Msg("grid point")
				if score.Accuracy > result.bestRate {
					result = NewParameterSearchResult(search.C, search.Gamma, score.Accuracy)
				}
			}
		}
	}

	return result, nil
}

// Log2Range returns begin, begin+step, ... up to and including end
func Log2Range(begin float64, end float64, step float64) []float64 {
	var values []float64
	if step == 0 {
		return []float64{begin}
	}
	for v := begin; (step > 0 && v <= end+1e-9) || (step < 0 && v >= end-1e-9); v += step {
		values = append(values, v)
	}
	return values
}
