package libsvm

// ParameterSearchResult stores the result of the parameter search
type ParameterSearchResult struct {
	bestC     float64
	bestGamma float64
	bestRate  float64 // accuracy, or mean squared error for regression
}

// NewParameterSearchResult returns a new instance of this struct
func NewParameterSearchResult(bestC float64, bestGamma float64, bestRate float64) *ParameterSearchResult {
	return &ParameterSearchResult{
		bestC:     bestC,
		bestGamma: bestGamma,
		bestRate:  bestRate,
	}
}

// GetBestC does just that
func (r *ParameterSearchResult) GetBestC() float64 {
	return r.bestC
}

// GetBestGamma does just that
func (r *ParameterSearchResult) GetBestGamma() float64 {
	return r.bestGamma
}

// GetBestRate is the cross validation accuracy, or the mean squared error for regression
func (r *ParameterSearchResult) GetBestRate() float64 {
	return r.bestRate
}
