package libsvm

import "math"

// kernel evaluates K(i,j) over the training vectors. Its vectors are a private
// copy of the example order so they can be permuted with the solver.
type kernel struct {
	x       [][]FeatureNode
	xSquare []float64

	kernelType *KernelType
	degree     int
	gamma      float64
	coef0      float64

	kernelFunction func(i, j int) float64
}

func newKernel(l int, x [][]FeatureNode, param *Parameter) *kernel {
	k := &kernel{
		x:          append([][]FeatureNode(nil), x[:l]...),
		kernelType: param.KernelType,
		degree:     param.Degree,
		gamma:      param.Gamma,
		coef0:      param.Coef0,
	}

	switch k.kernelType {
	case LINEAR:
		k.kernelFunction = k.linear
	case POLY:
		k.kernelFunction = k.poly
	case RBF:
		k.xSquare = make([]float64, l)
		for i := 0; i < l; i++ {
			k.xSquare[i] = SparseOperatorNrm2Sq(k.x[i])
		}
		k.kernelFunction = k.rbf
	case SIGMOID:
		k.kernelFunction = k.sigmoid
	case PRECOMPUTED:
		k.kernelFunction = k.precomputed
	default:
		panic("unknown kernel type " + k.kernelType.Name())
	}

	return k
}

func (k *kernel) swapIndex(i int, j int) {
	k.x[i], k.x[j] = k.x[j], k.x[i]
	if k.xSquare != nil {
		k.xSquare[i], k.xSquare[j] = k.xSquare[j], k.xSquare[i]
	}
}

func (k *kernel) linear(i int, j int) float64 {
	return SparseOperatorDot(k.x[i], k.x[j])
}

func (k *kernel) poly(i int, j int) float64 {
	return powi(k.gamma*SparseOperatorDot(k.x[i], k.x[j])+k.coef0, k.degree)
}

func (k *kernel) rbf(i int, j int) float64 {
	return math.Exp(-k.gamma * (k.xSquare[i] + k.xSquare[j] - 2*SparseOperatorDot(k.x[i], k.x[j])))
}

func (k *kernel) sigmoid(i int, j int) float64 {
	return math.Tanh(k.gamma*SparseOperatorDot(k.x[i], k.x[j]) + k.coef0)
}

func (k *kernel) precomputed(i int, j int) float64 {
	return k.x[i][int(k.x[j][0].value)].value
}

// KFunction evaluates the kernel between two arbitrary vectors, as used at prediction time
func KFunction(x []FeatureNode, y []FeatureNode, param *Parameter) float64 {
	return param.KernelType.evaluate(x, y, param)
}
