package libsvm

import "errors"

// CheckParameter returns nil if the parameters are feasible for the problem,
// otherwise an error whose text explains why
func CheckParameter(prob *Problem, param *Parameter) error {
	if param == nil {
		return errors.New("parameter is nil")
	}

	// svm_type
	svmType := param.SvmType
	if svmType == nil || GetSvmTypeByID(svmType.id) != svmType {
		return errors.New("unknown svm type")
	}

	// kernel_type, degree
	kernelType := param.KernelType
	if kernelType == nil || GetKernelTypeByID(kernelType.id) != kernelType {
		return errors.New("unknown kernel type")
	}

	if param.Gamma < 0 {
		return errors.New("gamma < 0")
	}

	if param.Degree < 0 {
		return errors.New("degree of polynomial kernel < 0")
	}

	// cache_size, eps, C, nu, p
	if param.CacheSize <= 0 {
		return errors.New("cache_size <= 0")
	}

	if param.Eps <= 0 {
		return errors.New("eps <= 0")
	}

	if svmType == C_SVC || svmType == EPSILON_SVR || svmType == NU_SVR {
		if param.C <= 0 {
			return errors.New("C <= 0")
		}
	}

	if svmType.nu {
		if param.Nu <= 0 || param.Nu > 1 {
			return errors.New("nu <= 0 or nu > 1")
		}
	}

	if svmType == EPSILON_SVR {
		if param.P < 0 {
			return errors.New("p < 0")
		}
	}

	if len(param.Weight) != len(param.WeightLabel) {
		return errors.New("weight and weight_label differ in length")
	}

	if param.Probability && svmType == ONE_CLASS {
		return errors.New("one-class SVM probability output not supported yet")
	}

	// check whether nu-svc is feasible
	if svmType == NU_SVC && prob != nil {
		_, count, _ := countClasses(prob)
		for i := 0; i < len(count); i++ {
			n1 := count[i]
			for j := i + 1; j < len(count); j++ {
				n2 := count[j]
				if param.Nu*float64(n1+n2)/2 > float64(minInt(n1, n2)) {
					return errors.New("specified nu is infeasible")
				}
			}
		}
	}

	return nil
}

// CheckProbabilityModel reports whether the model can produce probability estimates
func CheckProbabilityModel(model *Model) bool {
	svmType := model.Param.SvmType
	return (svmType.IsClassification() && model.ProbA != nil && model.ProbB != nil) ||
		(svmType.IsRegression() && model.ProbA != nil)
}
