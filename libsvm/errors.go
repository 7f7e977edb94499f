package libsvm

import "errors"

var (
	// ErrInvalidParameter wraps every CheckParameter failure returned by Train
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotConverged is returned in strict mode when the solver exhausts its iterations
	ErrNotConverged = errors.New("reached max number of iterations")

	// ErrModelFormat wraps every model file parsing failure
	ErrModelFormat = errors.New("invalid model file")

	// ErrNotProbabilityModel is returned when probability estimates are requested from a model without them
	ErrNotProbabilityModel = errors.New("model does not support probability estimates")
)
