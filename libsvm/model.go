package libsvm

// Model is a struct containing the data of a trained model
type Model struct {
	Param    *Parameter      // parameter
	NumClass int             // number of classes, = 2 in regression/one class svm
	L        int             // total #SV
	SV       [][]FeatureNode // SVs (SV[l])
	SvCoef   [][]float64     // coefficients for SVs in decision functions (sv_coef[k-1][l])
	Rho      []float64       // constants in decision functions (rho[k*(k-1)/2])
	ProbA    []float64       // pairwise probability information
	ProbB    []float64

	// 1-based indices of the SVs in the training set; not persisted
	SvIndices []int

	// for classification only
	Label []int // label of each class (label[k])
	NSV   []int // number of SVs for each class (nSV[k])
}

// GetSvmType does just that
func (model *Model) GetSvmType() *SvmType {
	return model.Param.SvmType
}

// GetNumClass does just that
func (model *Model) GetNumClass() int {
	return model.NumClass
}

// GetLabels returns a copy of the class labels, nil for one-class and regression
func (model *Model) GetLabels() []int {
	if model.Label == nil {
		return nil
	}
	return append([]int(nil), model.Label...)
}

// GetSvIndices returns the 1-based training indices of the support vectors
func (model *Model) GetSvIndices() []int {
	if model.SvIndices == nil {
		return nil
	}
	return append([]int(nil), model.SvIndices...)
}

// GetNumSV returns the total number of support vectors
func (model *Model) GetNumSV() int {
	return model.L
}

// GetSvrProbability returns the Laplace scale of a regression model trained
// with probability estimates, 0 otherwise
func (model *Model) GetSvrProbability() float64 {
	if model.Param.SvmType.IsRegression() && model.ProbA != nil {
		return model.ProbA[0]
	}
	logger.Warn().Msg("model doesn't contain information for SVR probability inference")
	return 0
}

// IsProbabilityModel reports whether the model carries probability information
func (model *Model) IsProbabilityModel() bool {
	return CheckProbabilityModel(model)
}

// numDecisionValues is the number of values filled by PredictValues
func (model *Model) numDecisionValues() int {
	if !model.Param.SvmType.IsClassification() {
		return 1
	}
	return model.NumClass * (model.NumClass - 1) / 2
}
