package libsvm

// SparseOperatorNrm2Sq is the squared euclidean norm of a sparse vector
func SparseOperatorNrm2Sq(x []FeatureNode) float64 {
	var ret float64

	for _, feature := range x {
		ret += feature.value * feature.value
	}

	return ret
}

// SparseOperatorDot merges two index-sorted sparse vectors into their dot product
func SparseOperatorDot(x []FeatureNode, y []FeatureNode) float64 {
	var ret float64
	var i, j int

	for i < len(x) && j < len(y) {
		switch {
		case x[i].index == y[j].index:
			ret += x[i].value * y[j].value
			i++
			j++
		case x[i].index > y[j].index:
			j++
		default:
			i++
		}
	}

	return ret
}

// SparseOperatorDistSq is the squared euclidean distance between two sparse vectors
func SparseOperatorDistSq(x []FeatureNode, y []FeatureNode) float64 {
	var sum float64
	var i, j int

	for i < len(x) && j < len(y) {
		switch {
		case x[i].index == y[j].index:
			d := x[i].value - y[j].value
			sum += d * d
			i++
			j++
		case x[i].index > y[j].index:
			sum += y[j].value * y[j].value
			j++
		default:
			sum += x[i].value * x[i].value
			i++
		}
	}

	for ; i < len(x); i++ {
		sum += x[i].value * x[i].value
	}

	for ; j < len(y); j++ {
		sum += y[j].value * y[j].value
	}

	return sum
}

// powi raises base to a non-negative integer power by repeated squaring
func powi(base float64, times int) float64 {
	tmp, ret := base, 1.0

	for t := times; t > 0; t /= 2 {
		if t%2 == 1 {
			ret *= tmp
		}
		tmp *= tmp
	}

	return ret
}
