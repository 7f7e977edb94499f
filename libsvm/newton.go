package libsvm

import (
	"math"

	"github.com/tevino/abool"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Newton is a damped Newton method with backtracking line search
type Newton struct {
	funObj  Function
	eps     float64 // stop when every |g_i| < eps
	maxIter int
	minStep float64
	sigma   float64 // added to the Hessian diagonal
}

// NewNewton returns a Newton optimizer for funObj
func NewNewton(funObj Function, eps float64, maxIter int, minStep float64, sigma float64) *Newton {
	return &Newton{
		funObj:  funObj,
		eps:     eps,
		maxIter: maxIter,
		minStep: minStep,
		sigma:   sigma,
	}
}

// minimize improves w in place. It returns the number of iterations and
// whether the line search gave up before convergence.
func (nt *Newton) minimize(w []float64) (int, bool) {
	n := nt.funObj.getNrVariable()

	g := make([]float64, n)
	h := make([]float64, n*n)
	d := mat.NewVecDense(n, nil)
	wNew := make([]float64, n)

	var lineSearchFailed = abool.New()

	f := nt.funObj.fun(w)

	iter := 0
	for iter = 0; iter < nt.maxIter; iter++ {
		nt.funObj.grad(w, g)

		// stopping criteria
		converged := true
		for _, gi := range g {
			if math.Abs(gi) >= nt.eps {
				converged = false
				break
			}
		}
		if converged {
			break
		}

		nt.funObj.hessian(w, h)
		for i := 0; i < n; i++ {
			h[i*n+i] += nt.sigma
		}

		// Newton direction: -inv(H) * g
		// an ill-conditioned H still yields a direction; the line search rejects bad ones
		if err := d.SolveVec(mat.NewDense(n, n, h), mat.NewVecDense(n, g)); err != nil {
			if _, ok := err.(mat.Condition); !ok {
				logger.Warn().Err(err).Msg("cannot solve the Newton system")
				lineSearchFailed.Set()
				break
			}
		}
		dir := d.RawVector().Data
		floats.Scale(-1, dir)
		gd := floats.Dot(g, dir)

		// line search
		stepSize := 1.0
		for stepSize >= nt.minStep {
			copy(wNew, w)
			floats.AddScaled(wNew, stepSize, dir)
			newf := nt.funObj.fun(wNew)

			// check sufficient decrease
			if newf < f+0.0001*stepSize*gd {
				copy(w, wNew)
				f = newf
				break
			}
			stepSize /= 2.0
		}

		if stepSize < nt.minStep {
			lineSearchFailed.Set()
			break
		}
	}

	return iter, lineSearchFailed.IsSet()
}
