package libsvm

import (
	"math"

	"github.com/tevino/abool"
)

// tau floors the curvature of the two-variable subproblem
const tau = 1e-12

type alphaStatus int8

const (
	lowerBound alphaStatus = iota
	upperBound
	free
)

// iterationCap bounds the SMO loop: max(10^7, 100*l)
var iterationCap = func(l int) int {
	if l > math.MaxInt32/100 {
		return math.MaxInt32
	}
	return maxInt(10000000, 100*l)
}

// SolutionInfo describes one dual solve
type SolutionInfo struct {
	Obj         float64
	Rho         float64
	UpperBoundP float64
	UpperBoundN float64
	R           float64 // for the nu variant
	Iterations  int
	Converged   bool
}

// solver is the SMO decomposition method in the fashion of Fan, Chen and Lin
// (2005), using second order information for working set selection. It solves
//
//	min 0.5(\alpha^T Q \alpha) + p^T \alpha
//	    y^T \alpha = \delta
//	    y_i = +1 or -1
//	    0 <= alpha_i <= Cp for y_i = 1
//	    0 <= alpha_i <= Cn for y_i = -1
//
// With nu set it solves the variant with the additional constraint e^T \alpha = const.
type solver struct {
	nu bool

	activeSize  int
	l           int
	y           []int8
	g           []float64 // gradient of objective function
	gBar        []float64 // gradient, if we treat free as 0
	alphaStatus []alphaStatus
	alpha       []float64
	q           QMatrix
	qd          []float64
	eps         float64
	cp, cn      float64
	p           []float64
	activeSet   []int
	unshrink    *abool.AtomicBool
	si          *SolutionInfo
}

func newSolver(nu bool) *solver {
	return &solver{nu: nu, unshrink: abool.New()}
}

func (s *solver) getC(i int) float64 {
	if s.y[i] > 0 {
		return s.cp
	}
	return s.cn
}

func (s *solver) updateAlphaStatus(i int) {
	switch {
	case s.alpha[i] >= s.getC(i):
		s.alphaStatus[i] = upperBound
	case s.alpha[i] <= 0:
		s.alphaStatus[i] = lowerBound
	default:
		s.alphaStatus[i] = free
	}
}

func (s *solver) isUpperBound(i int) bool { return s.alphaStatus[i] == upperBound }
func (s *solver) isLowerBound(i int) bool { return s.alphaStatus[i] == lowerBound }
func (s *solver) isFree(i int) bool       { return s.alphaStatus[i] == free }

// swapIndex keeps every per-example array aligned with the Q matrix
func (s *solver) swapIndex(i int, j int) {
	s.q.swapIndex(i, j)
	s.y[i], s.y[j] = s.y[j], s.y[i]
	s.g[i], s.g[j] = s.g[j], s.g[i]
	s.alphaStatus[i], s.alphaStatus[j] = s.alphaStatus[j], s.alphaStatus[i]
	s.alpha[i], s.alpha[j] = s.alpha[j], s.alpha[i]
	s.p[i], s.p[j] = s.p[j], s.p[i]
	s.activeSet[i], s.activeSet[j] = s.activeSet[j], s.activeSet[i]
	s.gBar[i], s.gBar[j] = s.gBar[j], s.gBar[i]
}

// reconstructGradient rebuilds G for the inactive elements from gBar and the free variables
func (s *solver) reconstructGradient() {
	if s.activeSize == s.l {
		return
	}

	nrFree := 0
	for j := s.activeSize; j < s.l; j++ {
		s.g[j] = s.gBar[j] + s.p[j]
	}

	for j := 0; j < s.activeSize; j++ {
		if s.isFree(j) {
			nrFree++
		}
	}

	if 2*nrFree < s.activeSize {
		logger.Debug().Msg("using -h 0 may be faster")
	}

	if nrFree*s.l > 2*s.activeSize*(s.l-s.activeSize) {
		for i := s.activeSize; i < s.l; i++ {
			qi := s.q.getQ(i, s.activeSize)
			for j := 0; j < s.activeSize; j++ {
				if s.isFree(j) {
					s.g[i] += s.alpha[j] * float64(qi[j])
				}
			}
		}
	} else {
		for i := 0; i < s.activeSize; i++ {
			if s.isFree(i) {
				qi := s.q.getQ(i, s.l)
				alphaI := s.alpha[i]
				for j := s.activeSize; j < s.l; j++ {
					s.g[j] += alphaI * float64(qi[j])
				}
			}
		}
	}
}

// solve optimizes alpha in place and fills si
func (s *solver) solve(l int, q QMatrix, p []float64, y []int8, alpha []float64, cp float64, cn float64, eps float64, si *SolutionInfo, shrinking bool) {
	s.l = l
	s.q = q
	s.qd = q.getQD()
	s.p = append([]float64(nil), p...)
	s.y = append([]int8(nil), y...)
	s.alpha = append([]float64(nil), alpha...)
	s.cp = cp
	s.cn = cn
	s.eps = eps
	s.si = si
	s.unshrink.UnSet()

	// initialize alpha_status
	s.alphaStatus = make([]alphaStatus, l)
	for i := 0; i < l; i++ {
		s.updateAlphaStatus(i)
	}

	// initialize active set (for shrinking)
	s.activeSet = make([]int, l)
	for i := 0; i < l; i++ {
		s.activeSet[i] = i
	}
	s.activeSize = l

	// initialize gradient
	s.g = make([]float64, l)
	s.gBar = make([]float64, l)
	copy(s.g, s.p)
	for i := 0; i < l; i++ {
		if !s.isLowerBound(i) {
			qi := q.getQ(i, l)
			alphaI := s.alpha[i]
			for j := 0; j < l; j++ {
				s.g[j] += alphaI * float64(qi[j])
			}
			if s.isUpperBound(i) {
				ci := s.getC(i)
				for j := 0; j < l; j++ {
					s.gBar[j] += ci * float64(qi[j])
				}
			}
		}
	}

	// optimization step
	iter := 0
	maxIter := iterationCap(l)
	counter := minInt(l, 1000) + 1

	for iter < maxIter {
		// show progress and do shrinking
		counter--
		if counter == 0 {
			counter = minInt(l, 1000)
			if shrinking {
				s.doShrinking()
			}
			logger.Debug().Int("iter", iter).Int("active", s.activeSize).Msg("shrinking")
		}

		i, j, optimal := s.selectWorkingSet()
		if optimal {
			// reconstruct the whole gradient
			s.reconstructGradient()
			// reset active set size and check
			s.activeSize = l
			i, j, optimal = s.selectWorkingSet()
			if optimal {
				break
			}
			// do shrinking next iteration
			counter = 1
		}

		iter++

		// update alpha[i] and alpha[j], handle bounds carefully
		qi := q.getQ(i, s.activeSize)
		qj := q.getQ(j, s.activeSize)

		ci := s.getC(i)
		cj := s.getC(j)

		oldAlphaI := s.alpha[i]
		oldAlphaJ := s.alpha[j]

		if s.y[i] != s.y[j] {
			quadCoef := s.qd[i] + s.qd[j] + 2*float64(qi[j])
			if quadCoef <= 0 {
				quadCoef = tau
			}
			delta := (-s.g[i] - s.g[j]) / quadCoef
			diff := s.alpha[i] - s.alpha[j]
			s.alpha[i] += delta
			s.alpha[j] += delta

			if diff > 0 {
				if s.alpha[j] < 0 {
					s.alpha[j] = 0
					s.alpha[i] = diff
				}
			} else {
				if s.alpha[i] < 0 {
					s.alpha[i] = 0
					s.alpha[j] = -diff
				}
			}
			if diff > ci-cj {
				if s.alpha[i] > ci {
					s.alpha[i] = ci
					s.alpha[j] = ci - diff
				}
			} else {
				if s.alpha[j] > cj {
					s.alpha[j] = cj
					s.alpha[i] = cj + diff
				}
			}
		} else {
			quadCoef := s.qd[i] + s.qd[j] - 2*float64(qi[j])
			if quadCoef <= 0 {
				quadCoef = tau
			}
			delta := (s.g[i] - s.g[j]) / quadCoef
			sum := s.alpha[i] + s.alpha[j]
			s.alpha[i] -= delta
			s.alpha[j] += delta

			if sum > ci {
				if s.alpha[i] > ci {
					s.alpha[i] = ci
					s.alpha[j] = sum - ci
				}
			} else {
				if s.alpha[j] < 0 {
					s.alpha[j] = 0
					s.alpha[i] = sum
				}
			}
			if sum > cj {
				if s.alpha[j] > cj {
					s.alpha[j] = cj
					s.alpha[i] = sum - cj
				}
			} else {
				if s.alpha[i] < 0 {
					s.alpha[i] = 0
					s.alpha[j] = sum
				}
			}
		}

		// update G
		deltaAlphaI := s.alpha[i] - oldAlphaI
		deltaAlphaJ := s.alpha[j] - oldAlphaJ

		for k := 0; k < s.activeSize; k++ {
			s.g[k] += float64(qi[k])*deltaAlphaI + float64(qj[k])*deltaAlphaJ
		}

		// update alpha_status and G_bar
		ui := s.isUpperBound(i)
		uj := s.isUpperBound(j)
		s.updateAlphaStatus(i)
		s.updateAlphaStatus(j)

		if ui != s.isUpperBound(i) {
			qi = q.getQ(i, l)
			if ui {
				for k := 0; k < l; k++ {
					s.gBar[k] -= ci * float64(qi[k])
				}
			} else {
				for k := 0; k < l; k++ {
					s.gBar[k] += ci * float64(qi[k])
				}
			}
		}

		if uj != s.isUpperBound(j) {
			qj = q.getQ(j, l)
			if uj {
				for k := 0; k < l; k++ {
					s.gBar[k] -= cj * float64(qj[k])
				}
			} else {
				for k := 0; k < l; k++ {
					s.gBar[k] += cj * float64(qj[k])
				}
			}
		}
	}

	si.Converged = true
	if iter >= maxIter {
		if s.activeSize < l {
			// reconstruct the whole gradient to calculate objective value
			s.reconstructGradient()
			s.activeSize = l
		}
		si.Converged = false
		logger.Warn().Int("iter", iter).Msg("reaching max number of iterations")
	}

	// calculate rho
	si.Rho = s.calculateRho()

	// calculate objective value
	var v float64
	for i := 0; i < l; i++ {
		v += s.alpha[i] * (s.g[i] + s.p[i])
	}
	si.Obj = v / 2

	// put back the solution
	for i := 0; i < l; i++ {
		alpha[s.activeSet[i]] = s.alpha[i]
	}

	si.UpperBoundP = cp
	si.UpperBoundN = cn
	si.Iterations = iter

	logger.Info().Int("iter", iter).Msg("optimization finished")
}

func (s *solver) selectWorkingSet() (int, int, bool) {
	if s.nu {
		return s.selectWorkingSetNu()
	}

	// return i,j such that
	// i: maximizes -y_i * grad(f)_i, i in I_up(\alpha)
	// j: minimizes the decrease of obj value
	//    (if quadratic coefficient <= 0, replace it with tau)
	//    -y_j*grad(f)_j < -y_i*grad(f)_i, j in I_low(\alpha)
	gMax := math.Inf(-1)
	gMax2 := math.Inf(-1)
	gMaxIdx := -1
	gMinIdx := -1
	objDiffMin := math.Inf(1)

	for t := 0; t < s.activeSize; t++ {
		if s.y[t] == +1 {
			if !s.isUpperBound(t) && -s.g[t] >= gMax {
				gMax = -s.g[t]
				gMaxIdx = t
			}
		} else {
			if !s.isLowerBound(t) && s.g[t] >= gMax {
				gMax = s.g[t]
				gMaxIdx = t
			}
		}
	}

	i := gMaxIdx
	var qi []float32
	if i != -1 {
		// null qi not accessed: gMax=-INF if i=-1
		qi = s.q.getQ(i, s.activeSize)
	}

	for j := 0; j < s.activeSize; j++ {
		if s.y[j] == +1 {
			if !s.isLowerBound(j) {
				gradDiff := gMax + s.g[j]
				if s.g[j] >= gMax2 {
					gMax2 = s.g[j]
				}
				if gradDiff > 0 {
					quadCoef := s.qd[i] + s.qd[j] - 2.0*float64(s.y[i])*float64(qi[j])
					objDiff := objectiveDiff(gradDiff, quadCoef)
					if objDiff <= objDiffMin {
						gMinIdx = j
						objDiffMin = objDiff
					}
				}
			}
		} else {
			if !s.isUpperBound(j) {
				gradDiff := gMax - s.g[j]
				if -s.g[j] >= gMax2 {
					gMax2 = -s.g[j]
				}
				if gradDiff > 0 {
					quadCoef := s.qd[i] + s.qd[j] + 2.0*float64(s.y[i])*float64(qi[j])
					objDiff := objectiveDiff(gradDiff, quadCoef)
					if objDiff <= objDiffMin {
						gMinIdx = j
						objDiffMin = objDiff
					}
				}
			}
		}
	}

	if gMax+gMax2 < s.eps || gMinIdx == -1 {
		return 0, 0, true
	}

	return gMaxIdx, gMinIdx, false
}

func objectiveDiff(gradDiff float64, quadCoef float64) float64 {
	if quadCoef > 0 {
		return -(gradDiff * gradDiff) / quadCoef
	}
	return -(gradDiff * gradDiff) / tau
}

func (s *solver) beShrunk(i int, gMax1 float64, gMax2 float64) bool {
	if s.isUpperBound(i) {
		if s.y[i] == +1 {
			return -s.g[i] > gMax1
		}
		return -s.g[i] > gMax2
	} else if s.isLowerBound(i) {
		if s.y[i] == +1 {
			return s.g[i] > gMax2
		}
		return s.g[i] > gMax1
	}
	return false
}

func (s *solver) doShrinking() {
	if s.nu {
		s.doShrinkingNu()
		return
	}

	gMax1 := math.Inf(-1) // max { -y_i * grad(f)_i | i in I_up(\alpha) }
	gMax2 := math.Inf(-1) // max { y_i * grad(f)_i | i in I_low(\alpha) }

	// find maximal violating pair first
	for i := 0; i < s.activeSize; i++ {
		if s.y[i] == +1 {
			if !s.isUpperBound(i) && -s.g[i] >= gMax1 {
				gMax1 = -s.g[i]
			}
			if !s.isLowerBound(i) && s.g[i] >= gMax2 {
				gMax2 = s.g[i]
			}
		} else {
			if !s.isUpperBound(i) && -s.g[i] >= gMax2 {
				gMax2 = -s.g[i]
			}
			if !s.isLowerBound(i) && s.g[i] >= gMax1 {
				gMax1 = s.g[i]
			}
		}
	}

	if !s.unshrink.IsSet() && gMax1+gMax2 <= s.eps*10 {
		s.unshrink.Set()
		s.reconstructGradient()
		s.activeSize = s.l
		logger.Debug().Msg("unshrinking")
	}

	for i := 0; i < s.activeSize; i++ {
		if s.beShrunk(i, gMax1, gMax2) {
			s.activeSize--
			for s.activeSize > i {
				if !s.beShrunk(s.activeSize, gMax1, gMax2) {
					s.swapIndex(i, s.activeSize)
					break
				}
				s.activeSize--
			}
		}
	}
}

func (s *solver) calculateRho() float64 {
	if s.nu {
		return s.calculateRhoNu()
	}

	var r float64
	nrFree := 0
	ub := math.Inf(1)
	lb := math.Inf(-1)
	var sumFree float64

	for i := 0; i < s.activeSize; i++ {
		yG := float64(s.y[i]) * s.g[i]

		if s.isUpperBound(i) {
			if s.y[i] == -1 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		} else if s.isLowerBound(i) {
			if s.y[i] == +1 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		} else {
			nrFree++
			sumFree += yG
		}
	}

	if nrFree > 0 {
		r = sumFree / float64(nrFree)
	} else {
		r = (ub + lb) / 2
	}

	return r
}

// selectWorkingSetNu picks i and j from the same label class
func (s *solver) selectWorkingSetNu() (int, int, bool) {
	// return i,j such that y_i = y_j and
	// i: maximizes -y_i * grad(f)_i, i in I_up(\alpha)
	// j: minimizes the decrease of obj value
	//    (if quadratic coefficient <= 0, replace it with tau)
	//    -y_j*grad(f)_j < -y_i*grad(f)_i, j in I_low(\alpha)
	gMaxp := math.Inf(-1)
	gMaxp2 := math.Inf(-1)
	gMaxpIdx := -1

	gMaxn := math.Inf(-1)
	gMaxn2 := math.Inf(-1)
	gMaxnIdx := -1

	gMinIdx := -1
	objDiffMin := math.Inf(1)

	for t := 0; t < s.activeSize; t++ {
		if s.y[t] == +1 {
			if !s.isUpperBound(t) && -s.g[t] >= gMaxp {
				gMaxp = -s.g[t]
				gMaxpIdx = t
			}
		} else {
			if !s.isLowerBound(t) && s.g[t] >= gMaxn {
				gMaxn = s.g[t]
				gMaxnIdx = t
			}
		}
	}

	ip := gMaxpIdx
	in := gMaxnIdx
	var qip, qin []float32
	if ip != -1 {
		// null qip not accessed: gMaxp=-INF if ip=-1
		qip = s.q.getQ(ip, s.activeSize)
	}
	if in != -1 {
		qin = s.q.getQ(in, s.activeSize)
	}

	for j := 0; j < s.activeSize; j++ {
		if s.y[j] == +1 {
			if !s.isLowerBound(j) {
				gradDiff := gMaxp + s.g[j]
				if s.g[j] >= gMaxp2 {
					gMaxp2 = s.g[j]
				}
				if gradDiff > 0 {
					quadCoef := s.qd[ip] + s.qd[j] - 2*float64(qip[j])
					objDiff := objectiveDiff(gradDiff, quadCoef)
					if objDiff <= objDiffMin {
						gMinIdx = j
						objDiffMin = objDiff
					}
				}
			}
		} else {
			if !s.isUpperBound(j) {
				gradDiff := gMaxn - s.g[j]
				if -s.g[j] >= gMaxn2 {
					gMaxn2 = -s.g[j]
				}
				if gradDiff > 0 {
					quadCoef := s.qd[in] + s.qd[j] - 2*float64(qin[j])
					objDiff := objectiveDiff(gradDiff, quadCoef)
					if objDiff <= objDiffMin {
						gMinIdx = j
						objDiffMin = objDiff
					}
				}
			}
		}
	}

	if math.Max(gMaxp+gMaxp2, gMaxn+gMaxn2) < s.eps || gMinIdx == -1 {
		return 0, 0, true
	}

	if s.y[gMinIdx] == +1 {
		return gMaxpIdx, gMinIdx, false
	}
	return gMaxnIdx, gMinIdx, false
}

func (s *solver) beShrunkNu(i int, gMax1 float64, gMax2 float64, gMax3 float64, gMax4 float64) bool {
	if s.isUpperBound(i) {
		if s.y[i] == +1 {
			return -s.g[i] > gMax1
		}
		return -s.g[i] > gMax4
	} else if s.isLowerBound(i) {
		if s.y[i] == +1 {
			return s.g[i] > gMax2
		}
		return s.g[i] > gMax3
	}
	return false
}

func (s *solver) doShrinkingNu() {
	gMax1 := math.Inf(-1) // max { -y_i * grad(f)_i | y_i = +1, i in I_up(\alpha) }
	gMax2 := math.Inf(-1) // max { y_i * grad(f)_i | y_i = +1, i in I_low(\alpha) }
	gMax3 := math.Inf(-1) // max { -y_i * grad(f)_i | y_i = -1, i in I_up(\alpha) }
	gMax4 := math.Inf(-1) // max { y_i * grad(f)_i | y_i = -1, i in I_low(\alpha) }

	// find maximal violating pair first
	for i := 0; i < s.activeSize; i++ {
		if !s.isUpperBound(i) {
			if s.y[i] == +1 {
				if -s.g[i] > gMax1 {
					gMax1 = -s.g[i]
				}
			} else if -s.g[i] > gMax4 {
				gMax4 = -s.g[i]
			}
		}
		if !s.isLowerBound(i) {
			if s.y[i] == +1 {
				if s.g[i] > gMax2 {
					gMax2 = s.g[i]
				}
			} else if s.g[i] > gMax3 {
				gMax3 = s.g[i]
			}
		}
	}

	if !s.unshrink.IsSet() && math.Max(gMax1+gMax2, gMax3+gMax4) <= s.eps*10 {
		s.unshrink.Set()
		s.reconstructGradient()
		s.activeSize = s.l
	}

	for i := 0; i < s.activeSize; i++ {
		if s.beShrunkNu(i, gMax1, gMax2, gMax3, gMax4) {
			s.activeSize--
			for s.activeSize > i {
				if !s.beShrunkNu(s.activeSize, gMax1, gMax2, gMax3, gMax4) {
					s.swapIndex(i, s.activeSize)
					break
				}
				s.activeSize--
			}
		}
	}
}

func (s *solver) calculateRhoNu() float64 {
	nrFree1, nrFree2 := 0, 0
	ub1, ub2 := math.Inf(1), math.Inf(1)
	lb1, lb2 := math.Inf(-1), math.Inf(-1)
	var sumFree1, sumFree2 float64

	for i := 0; i < s.activeSize; i++ {
		if s.y[i] == +1 {
			if s.isUpperBound(i) {
				lb1 = math.Max(lb1, s.g[i])
			} else if s.isLowerBound(i) {
				ub1 = math.Min(ub1, s.g[i])
			} else {
				nrFree1++
				sumFree1 += s.g[i]
			}
		} else {
			if s.isUpperBound(i) {
				lb2 = math.Max(lb2, s.g[i])
			} else if s.isLowerBound(i) {
				ub2 = math.Min(ub2, s.g[i])
			} else {
				nrFree2++
				sumFree2 += s.g[i]
			}
		}
	}

	var r1, r2 float64
	if nrFree1 > 0 {
		r1 = sumFree1 / float64(nrFree1)
	} else {
		r1 = (ub1 + lb1) / 2
	}

	if nrFree2 > 0 {
		r2 = sumFree2 / float64(nrFree2)
	} else {
		r2 = (ub2 + lb2) / 2
	}

	s.si.R = (r1 + r2) / 2
	return (r1 - r2) / 2
}

func minInt(a int, b int) int {
	if a < b {
		return a
	}
	return b
}
