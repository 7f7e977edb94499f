package libsvm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	sigmoidMaxIter = 100   // Maximal number of iterations
	sigmoidMinStep = 1e-10 // Minimal step taken in line search
	sigmoidSigma   = 1e-12 // For numerically strict PD of Hessian
	sigmoidEps     = 1e-5

	probabilityFolds = 5
	minProbability   = 1e-7
)

// sigmoidFunc is the negative log likelihood of Platt's sigmoid
// 1/(1+exp(A*f+B)) over w = (A, B) with smoothed targets
type sigmoidFunc struct {
	decValues []float64
	target    []float64
}

func newSigmoidFunc(decValues []float64, labels []float64) *sigmoidFunc {
	var prior1, prior0 float64
	for _, label := range labels {
		if label > 0 {
			prior1++
		} else {
			prior0++
		}
	}

	hiTarget := (prior1 + 1.0) / (prior1 + 2.0)
	loTarget := 1 / (prior0 + 2.0)
	target := make([]float64, len(labels))
	for i, label := range labels {
		if label > 0 {
			target[i] = hiTarget
		} else {
			target[i] = loTarget
		}
	}

	return &sigmoidFunc{decValues: decValues, target: target}
}

func (sf *sigmoidFunc) getNrVariable() int {
	return 2
}

func (sf *sigmoidFunc) fun(w []float64) float64 {
	var fval float64
	for i, dec := range sf.decValues {
		fApB := dec*w[0] + w[1]
		if fApB >= 0 {
			fval += sf.target[i]*fApB + math.Log(1+math.Exp(-fApB))
		} else {
			fval += (sf.target[i]-1)*fApB + math.Log(1+math.Exp(fApB))
		}
	}
	return fval
}

// pq returns p = 1/(1+exp(fApB)) and q = 1-p without overflow
func pq(fApB float64) (float64, float64) {
	if fApB >= 0 {
		e := math.Exp(-fApB)
		return e / (1.0 + e), 1.0 / (1.0 + e)
	}
	e := math.Exp(fApB)
	return 1.0 / (1.0 + e), e / (1.0 + e)
}

func (sf *sigmoidFunc) grad(w []float64, g []float64) {
	g[0], g[1] = 0, 0
	for i, dec := range sf.decValues {
		p, _ := pq(dec*w[0] + w[1])
		d1 := sf.target[i] - p
		g[0] += dec * d1
		g[1] += d1
	}
}

func (sf *sigmoidFunc) hessian(w []float64, h []float64) {
	var h11, h22, h21 float64
	for _, dec := range sf.decValues {
		p, q := pq(dec*w[0] + w[1])
		d2 := p * q
		h11 += dec * dec * d2
		h22 += d2
		h21 += dec * d2
	}
	h[0], h[1], h[2], h[3] = h11, h21, h21, h22
}

// sigmoidTrain fits Platt's (A, B) to decision values and +1/-1 labels
func sigmoidTrain(decValues []float64, labels []float64) (float64, float64) {
	fn := newSigmoidFunc(decValues, labels)

	var prior1, prior0 float64
	for _, label := range labels {
		if label > 0 {
			prior1++
		} else {
			prior0++
		}
	}

	// initial point
	w := []float64{0.0, math.Log((prior0 + 1.0) / (prior1 + 1.0))}

	iter, failed := NewNewton(fn, sigmoidEps, sigmoidMaxIter, sigmoidMinStep, sigmoidSigma).minimize(w)
	if failed {
		logger.Info().Msg("line search fails in two-class probability estimates")
	} else if iter >= sigmoidMaxIter {
		logger.Info().Msg("reaching maximal iterations in two-class probability estimates")
	}

	return w[0], w[1]
}

// sigmoidPredict evaluates 1/(1+exp(A*f+B)), kept inside [minProbability, 1-minProbability]
func sigmoidPredict(decisionValue float64, a float64, b float64) float64 {
	fApB := decisionValue*a + b
	// 1-p used later; avoid catastrophic cancellation
	var p float64
	if fApB >= 0 {
		p = math.Exp(-fApB) / (1.0 + math.Exp(-fApB))
	} else {
		p = 1.0 / (1 + math.Exp(fApB))
	}
	// exp under/overflows to exactly 0 or 1 for large |fApB|
	return math.Min(math.Max(p, minProbability), 1-minProbability)
}

// multiclassProbability couples the pairwise estimates r into p (method 2 of Wu, Lin and Weng)
func multiclassProbability(k int, r [][]float64, p []float64) {
	maxIter := k
	if maxIter < 100 {
		maxIter = 100
	}
	eps := 0.005 / float64(k)

	q := mat.NewSymDense(k, nil)
	pv := mat.NewVecDense(k, p[:k])
	qpv := mat.NewVecDense(k, nil)

	for t := 0; t < k; t++ {
		p[t] = 1.0 / float64(k) // Valid if k = 1
		var qtt float64
		for j := 0; j < k; j++ {
			if j != t {
				qtt += r[j][t] * r[j][t]
			}
			if j > t {
				q.SetSym(t, j, -r[j][t]*r[t][j])
			}
		}
		q.SetSym(t, t, qtt)
	}

	qp := qpv.RawVector().Data
	iter := 0
	for iter = 0; iter < maxIter; iter++ {
		// stopping condition, recalculate QP,pQP for numerical accuracy
		qpv.MulVec(q, pv)
		pQp := mat.Dot(pv, qpv)

		var maxError float64
		for t := 0; t < k; t++ {
			if e := math.Abs(qp[t] - pQp); e > maxError {
				maxError = e
			}
		}
		if maxError < eps {
			break
		}

		for t := 0; t < k; t++ {
			qtt := q.At(t, t)
			diff := (-qp[t] + pQp) / qtt
			p[t] += diff
			pQp = (pQp + diff*(diff*qtt+2*qp[t])) / (1 + diff) / (1 + diff)
			for j := 0; j < k; j++ {
				qp[j] = (qp[j] + diff*q.At(t, j)) / (1 + diff)
			}
			floats.Scale(1/(1+diff), p[:k])
		}
	}

	if iter >= maxIter {
		logger.Info().Msg("exceeds max_iter in multiclass_prob")
	}
}

// binarySvcProbability runs an internal cross validation to fit the sigmoid of one class pair
func binarySvcProbability(prob *Problem, param *Parameter, cp float64, cn float64) (float64, float64, error) {
	l := prob.L
	perm := make([]int, l)
	decValues := make([]float64, l)

	// random shuffle
	for i := 0; i < l; i++ {
		perm[i] = i
	}
	for i := 0; i < l; i++ {
		j := i + random.Intn(l-i)
		perm[i], perm[j] = perm[j], perm[i]
	}

	for i := 0; i < probabilityFolds; i++ {
		begin := i * l / probabilityFolds
		end := (i + 1) * l / probabilityFolds

		subProb := prob.subProblem(perm, begin, end)

		pCount, nCount := 0, 0
		for _, y := range subProb.Y {
			if y > 0 {
				pCount++
			} else {
				nCount++
			}
		}

		switch {
		case pCount == 0 && nCount == 0:
			for j := begin; j < end; j++ {
				decValues[perm[j]] = 0
			}
		case pCount > 0 && nCount == 0:
			for j := begin; j < end; j++ {
				decValues[perm[j]] = 1
			}
		case pCount == 0 && nCount > 0:
			for j := begin; j < end; j++ {
				decValues[perm[j]] = -1
			}
		default:
			subParam := param.Clone()
			subParam.Probability = false
			subParam.C = 1.0
			subParam.WeightLabel = []int{+1, -1}
			subParam.Weight = []float64{cp, cn}

			subModel, err := train(subProb, subParam)
			if err != nil {
				return 0, 0, err
			}
			for j := begin; j < end; j++ {
				dec := make([]float64, 1)
				PredictValues(subModel, prob.X[perm[j]], dec)
				// ensure +1 -1 order; reason not using CV subroutine
				decValues[perm[j]] = dec[0] * float64(subModel.Label[0])
			}
		}
	}

	a, b := sigmoidTrain(decValues, prob.Y)
	return a, b, nil
}

// svrProbability estimates the scale of a Laplace distribution for the residuals
func svrProbability(prob *Problem, param *Parameter) (float64, error) {
	l := prob.L

	newParam := param.Clone()
	newParam.Probability = false
	ymv, err := crossValidation(prob, newParam, probabilityFolds)
	if err != nil {
		return 0, err
	}

	var mae float64
	for i := 0; i < l; i++ {
		ymv[i] = prob.Y[i] - ymv[i]
		mae += math.Abs(ymv[i])
	}
	mae /= float64(l)

	std := math.Sqrt(2 * mae * mae)
	count := 0
	mae = 0
	for i := 0; i < l; i++ {
		if math.Abs(ymv[i]) > 5*std {
			count++
		} else {
			mae += math.Abs(ymv[i])
		}
	}
	mae /= float64(l - count)

	logger.Info().Float64("sigma", mae).Msg("prob. model for test data: target value = predicted value + z, z: Laplace distribution e^(-|z|/sigma)/(2sigma)")
	return mae, nil
}
