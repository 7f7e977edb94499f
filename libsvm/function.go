package libsvm

// Function is a twice differentiable objective minimized by Newton
type Function interface {
	fun(w []float64) float64

	grad(w []float64, g []float64)

	// hessian writes the row-major n*n Hessian into h
	hessian(w []float64, h []float64)

	getNrVariable() int
}
