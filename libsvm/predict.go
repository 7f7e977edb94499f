package libsvm

import "fmt"

// Predict uses the model to predict the label or value of x
func Predict(model *Model, x []FeatureNode) float64 {
	decValues := make([]float64, maxInt(model.numDecisionValues(), 1))
	return PredictValues(model, x, decValues)
}

// PredictValues predicts x and writes the decision values into decValues:
// one value for one-class and regression, k*(k-1)/2 pairwise values otherwise
func PredictValues(model *Model, x []FeatureNode, decValues []float64) float64 {
	param := model.Param

	if !param.SvmType.IsClassification() {
		svCoef := model.SvCoef[0]
		var sum float64
		for i := 0; i < model.L; i++ {
			sum += svCoef[i] * KFunction(x, model.SV[i], param)
		}
		sum -= model.Rho[0]
		decValues[0] = sum

		if param.SvmType == ONE_CLASS {
			if sum > 0 {
				return 1
			}
			return -1
		}
		return sum
	}

	nrClass := model.NumClass
	l := model.L

	kvalue := make([]float64, l)
	for i := 0; i < l; i++ {
		kvalue[i] = KFunction(x, model.SV[i], param)
	}

	start := make([]int, nrClass)
	for i := 1; i < nrClass; i++ {
		start[i] = start[i-1] + model.NSV[i-1]
	}

	vote := make([]int, nrClass)

	p := 0
	for i := 0; i < nrClass; i++ {
		for j := i + 1; j < nrClass; j++ {
			var sum float64
			si := start[i]
			sj := start[j]
			ci := model.NSV[i]
			cj := model.NSV[j]

			coef1 := model.SvCoef[j-1]
			coef2 := model.SvCoef[i]
			for k := 0; k < ci; k++ {
				sum += coef1[si+k] * kvalue[si+k]
			}
			for k := 0; k < cj; k++ {
				sum += coef2[sj+k] * kvalue[sj+k]
			}
			sum -= model.Rho[p]
			decValues[p] = sum

			if decValues[p] > 0 {
				vote[i]++
			} else {
				vote[j]++
			}
			p++
		}
	}

	voteMaxIdx := 0
	for i := 1; i < nrClass; i++ {
		if vote[i] > vote[voteMaxIdx] {
			voteMaxIdx = i
		}
	}

	return float64(model.Label[voteMaxIdx])
}

// PredictProbability predicts x and writes one probability per class into
// probEstimates. Models without classification probabilities fall back to Predict.
func PredictProbability(model *Model, x []FeatureNode, probEstimates []float64) (float64, error) {
	if !model.Param.SvmType.IsClassification() || model.ProbA == nil || model.ProbB == nil {
		return Predict(model, x), nil
	}

	nrClass := model.NumClass
	if len(probEstimates) < nrClass {
		return 0, fmt.Errorf("probability estimates need %d entries, got %d", nrClass, len(probEstimates))
	}

	decValues := make([]float64, nrClass*(nrClass-1)/2)
	PredictValues(model, x, decValues)

	pairwiseProb := make([][]float64, nrClass)
	for i := range pairwiseProb {
		pairwiseProb[i] = make([]float64, nrClass)
	}

	k := 0
	for i := 0; i < nrClass; i++ {
		for j := i + 1; j < nrClass; j++ {
			prob := sigmoidPredict(decValues[k], model.ProbA[k], model.ProbB[k])
			pairwiseProb[i][j] = prob
			pairwiseProb[j][i] = 1 - prob
			k++
		}
	}
	multiclassProbability(nrClass, pairwiseProb, probEstimates)

	probMaxIdx := 0
	for i := 1; i < nrClass; i++ {
		if probEstimates[i] > probEstimates[probMaxIdx] {
			probMaxIdx = i
		}
	}

	return float64(model.Label[probMaxIdx]), nil
}
