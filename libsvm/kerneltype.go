package libsvm

import "math"

// LINEAR : u'*v
var LINEAR = NewKernelType(0, "linear", false, false, false, func(x, y []FeatureNode, param *Parameter) float64 {
	return SparseOperatorDot(x, y)
})

// POLY : (gamma*u'*v + coef0)^degree
var POLY = NewKernelType(1, "polynomial", true, true, true, func(x, y []FeatureNode, param *Parameter) float64 {
	return powi(param.Gamma*SparseOperatorDot(x, y)+param.Coef0, param.Degree)
})

// RBF : exp(-gamma*|u-v|^2)
var RBF = NewKernelType(2, "rbf", false, true, false, func(x, y []FeatureNode, param *Parameter) float64 {
	return math.Exp(-param.Gamma * SparseOperatorDistSq(x, y))
})

// SIGMOID : tanh(gamma*u'*v + coef0)
var SIGMOID = NewKernelType(3, "sigmoid", false, true, true, func(x, y []FeatureNode, param *Parameter) float64 {
	return math.Tanh(param.Gamma*SparseOperatorDot(x, y) + param.Coef0)
})

// PRECOMPUTED : kernel values in the training file, y carries 0:serial
var PRECOMPUTED = NewKernelType(4, "precomputed", false, false, false, func(x, y []FeatureNode, param *Parameter) float64 {
	return x[int(y[0].value)].value
})

var kernelTypeValues = []*KernelType{
	LINEAR,
	POLY,
	RBF,
	SIGMOID,
	PRECOMPUTED,
}

// KernelFunc evaluates a kernel between two sparse vectors
type KernelFunc func(x, y []FeatureNode, param *Parameter) float64

// KernelType is one kernel variant with its evaluation function
type KernelType struct {
	name       string
	id         int
	usesDegree bool
	usesGamma  bool
	usesCoef0  bool
	evaluate   KernelFunc
}

// NewKernelType returns a new KernelType based on input fields
func NewKernelType(id int, name string, usesDegree bool, usesGamma bool, usesCoef0 bool, evaluate KernelFunc) *KernelType {
	return &KernelType{
		id:         id,
		name:       name,
		usesDegree: usesDegree,
		usesGamma:  usesGamma,
		usesCoef0:  usesCoef0,
		evaluate:   evaluate,
	}
}

// KernelTypeValues gives a list of KernelTypes
func KernelTypeValues() []*KernelType {
	return kernelTypeValues
}

// GetKernelTypeByID returns the KernelType for the numeric -t option, nil if unknown
func GetKernelTypeByID(id int) *KernelType {
	for _, kernelType := range kernelTypeValues {
		if kernelType.id == id {
			return kernelType
		}
	}
	return nil
}

// GetKernelTypeByName returns the KernelType named as in model files, nil if unknown
func GetKernelTypeByName(name string) *KernelType {
	for _, kernelType := range kernelTypeValues {
		if kernelType.name == name {
			return kernelType
		}
	}
	return nil
}

// Name is the model file name of the kernel
func (kernelType *KernelType) Name() string {
	return kernelType.name
}

// ID is the numeric -t option of the kernel
func (kernelType *KernelType) ID() int {
	return kernelType.id
}

// UsesDegree reports whether the degree parameter affects this kernel
func (kernelType *KernelType) UsesDegree() bool {
	return kernelType.usesDegree
}

// UsesGamma reports whether the gamma parameter affects this kernel
func (kernelType *KernelType) UsesGamma() bool {
	return kernelType.usesGamma
}

// UsesCoef0 reports whether the coef0 parameter affects this kernel
func (kernelType *KernelType) UsesCoef0() bool {
	return kernelType.usesCoef0
}

func (kernelType *KernelType) String() string {
	return kernelType.name
}
