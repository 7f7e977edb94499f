package libsvm

import (
	"math"
	"sort"
)

func round(val float64, roundOn float64, places int) (newVal float64) {
	var round float64
	pow := math.Pow(10, float64(places))
	digit := pow * val
	_, div := math.Modf(digit)
	if div >= roundOn {
		round = math.Ceil(digit)
	} else {
		round = math.Floor(digit)
	}
	newVal = round / pow
	return
}

// CreateRandomModel builds a three class rbf model with random coefficients
func CreateRandomModel() *Model {
	label := []int{1, math.MaxInt32, 2}
	nSV := []int{2, 3, 1}
	l := 6
	nrClass := len(label)
	nrPairs := nrClass * (nrClass - 1) / 2

	param := NewParameter(C_SVC, RBF, 1, 0.25, 1e-3)
	model := &Model{
		Param:    param,
		NumClass: nrClass,
		L:        l,
		Label:    label,
		NSV:      nSV,
		Rho:      make([]float64, nrPairs),
		ProbA:    make([]float64, nrPairs),
		ProbB:    make([]float64, nrPairs),
		SvCoef:   make([][]float64, nrClass-1),
		SV:       make([][]FeatureNode, l),
	}

	for i := 0; i < nrPairs; i++ {
		model.Rho[i] = round(random.Float64()*100000, 0, 0) / 10000
		model.ProbA[i] = -random.Float64()
		model.ProbB[i] = random.NormFloat64()
	}
	for k := range model.SvCoef {
		model.SvCoef[k] = make([]float64, l)
		for i := range model.SvCoef[k] {
			model.SvCoef[k][i] = random.NormFloat64()
		}
	}
	model.SvCoef[0][random.Intn(l)] = 0.0

	for i := 0; i < l; i++ {
		model.SV[i] = randomVector(10)
	}

	return model
}

// CreateRandomProblem builds a problem with labels 0..numClasses-1
func CreateRandomProblem(numClasses int) *Problem {
	var l = random.Intn(100) + 1
	var n = random.Intn(100) + 1
	prob := NewProblem(l, make([]float64, l), make([][]FeatureNode, l))

	for i := 0; i < prob.L; i++ {
		prob.Y[i] = float64(random.Intn(numClasses))
		prob.X[i] = randomVector(n)
	}

	return prob
}

func randomVector(n int) []FeatureNode {
	randomNumbers := make(map[int]struct{})
	num := random.Intn(n) + 1
	for j := 0; j < num; j++ {
		randomNumbers[random.Intn(n)+1] = struct{}{}
	}

	var randomIndices []int
	for k := range randomNumbers {
		randomIndices = append(randomIndices, k)
	}
	sort.Ints(randomIndices)

	x := make([]FeatureNode, len(randomIndices))
	for j := 0; j < len(randomIndices); j++ {
		x[j] = NewFeatureNode(randomIndices[j], random.Float64())
	}
	return x
}
