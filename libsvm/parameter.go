package libsvm

import (
	"errors"
	"fmt"
)

// Parameter holds the training configuration
type Parameter struct {
	SvmType    *SvmType
	KernelType *KernelType
	Degree     int     // for poly
	Gamma      float64 // for poly/rbf/sigmoid
	Coef0      float64 // for poly/sigmoid

	CacheSize   float64 // in MB
	Eps         float64 // stopping criteria
	C           float64 // for C_SVC, EPSILON_SVR and NU_SVR
	Nu          float64 // for NU_SVC, ONE_CLASS, and NU_SVR
	P           float64 // for EPSILON_SVR
	Shrinking   bool
	Probability bool
	WeightLabel []int     // for C_SVC
	Weight      []float64 // for C_SVC

	// Strict turns an exhausted iteration budget into ErrNotConverged
	Strict bool
}

// NewParameter constructs a Parameter with the remaining fields at their defaults
func NewParameter(svmType *SvmType, kernelType *KernelType, c float64, gamma float64, eps float64) *Parameter {
	param := DefaultParameter()
	param.SvmType = svmType
	param.KernelType = kernelType
	param.C = c
	param.Gamma = gamma
	param.Eps = eps

	return param
}

// DefaultParameter mirrors the svm-train defaults. Gamma 0 is replaced by
// 1/num_features by the training driver.
func DefaultParameter() *Parameter {
	return &Parameter{
		SvmType:    C_SVC,
		KernelType: RBF,
		Degree:     3,
		Gamma:      0,
		Coef0:      0,
		CacheSize:  100,
		Eps:        1e-3,
		C:          1,
		Nu:         0.5,
		P:          0.1,
		Shrinking:  true,
	}
}

// Clone returns a copy that does not share the weight slices
func (p *Parameter) Clone() *Parameter {
	clone := *p
	clone.WeightLabel = p.GetWeightLabels()
	clone.Weight = p.GetWeights()
	return &clone
}

// GetNumWeights gets the number of class weights
func (p *Parameter) GetNumWeights() int {
	if p.Weight == nil {
		return 0
	}
	return len(p.Weight)
}

// SetWeights sets the per-class multipliers of C
func (p *Parameter) SetWeights(weights []float64, weightLabels []int) error {
	if len(weights) != len(weightLabels) {
		return fmt.Errorf("'weight' and 'weightLabel' must have the same length: %d != %d", len(weights), len(weightLabels))
	}
	p.Weight = append([]float64(nil), weights...)
	p.WeightLabel = append([]int(nil), weightLabels...)
	return nil
}

// GetWeights returns a copy of the class weights
func (p *Parameter) GetWeights() []float64 {
	if p.Weight == nil {
		return nil
	}
	return append([]float64(nil), p.Weight...)
}

// GetWeightLabels returns a copy of the weighted class labels
func (p *Parameter) GetWeightLabels() []int {
	if p.WeightLabel == nil {
		return nil
	}
	return append([]int(nil), p.WeightLabel...)
}

// SetC sets the cost, which must be positive
func (p *Parameter) SetC(c float64) error {
	if c <= 0 {
		return errors.New("C must not be <= 0")
	}
	p.C = c
	return nil
}

// SetEps sets the stopping tolerance, which must be positive
func (p *Parameter) SetEps(eps float64) error {
	if eps <= 0 {
		return errors.New("eps must not be <= 0")
	}
	p.Eps = eps
	return nil
}

// SetNu sets nu, which must lie in (0, 1]
func (p *Parameter) SetNu(nu float64) error {
	if nu <= 0 || nu > 1 {
		return errors.New("nu must be in (0, 1]")
	}
	p.Nu = nu
	return nil
}

// SetP sets the epsilon of the SVR loss, which must not be negative
func (p *Parameter) SetP(value float64) error {
	if value < 0 {
		return errors.New("p must not be less than 0")
	}
	p.P = value
	return nil
}

// SetCacheSize sets the kernel cache size in MB
func (p *Parameter) SetCacheSize(megabytes float64) error {
	if megabytes <= 0 {
		return errors.New("cache size must not be <= 0")
	}
	p.CacheSize = megabytes
	return nil
}

// SetSvmType does just that
func (p *Parameter) SetSvmType(svmType *SvmType) error {
	if svmType == nil {
		return errors.New("svm type must not be nil")
	}
	p.SvmType = svmType
	return nil
}

// SetKernelType does just that
func (p *Parameter) SetKernelType(kernelType *KernelType) error {
	if kernelType == nil {
		return errors.New("kernel type must not be nil")
	}
	p.KernelType = kernelType
	return nil
}
