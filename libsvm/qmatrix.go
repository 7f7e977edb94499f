package libsvm

// QMatrix is the quadratic form of the dual problem as seen by the solver
type QMatrix interface {
	// getQ returns the first length entries of column i; the slice stays
	// valid across one further getQ call
	getQ(i int, length int) []float32
	getQD() []float64
	swapIndex(i int, j int)
	cacheStats() cacheStats
}

// rowBuffers alternates between two scratch rows so that the rows of the two
// working set variables are readable at the same time
type rowBuffers struct {
	buffer     [2][]float32
	nextBuffer int
}

func newRowBuffers(size int) rowBuffers {
	return rowBuffers{buffer: [2][]float32{make([]float32, size), make([]float32, size)}}
}

func (b *rowBuffers) next() []float32 {
	buf := b.buffer[b.nextBuffer]
	b.nextBuffer = 1 - b.nextBuffer
	return buf
}

func cacheBytes(param *Parameter) int64 {
	return int64(param.CacheSize * (1 << 20))
}

// svcQ : Q_ij = y_i y_j K(i,j); raw kernel values are cached
type svcQ struct {
	k     *kernel
	cache *cache
	y     []int8
	qd    []float64
	rows  rowBuffers
}

func newSVCQ(prob *Problem, param *Parameter, y []int8) *svcQ {
	l := prob.L
	q := &svcQ{
		k:     newKernel(l, prob.X, param),
		cache: newCache(l, cacheBytes(param)),
		y:     append([]int8(nil), y...),
		qd:    make([]float64, l),
		rows:  newRowBuffers(l),
	}

	for i := 0; i < l; i++ {
		q.qd[i] = q.k.kernelFunction(i, i)
	}

	return q
}

func (q *svcQ) getQ(i int, length int) []float32 {
	data, start := q.cache.getData(i, length)
	for j := start; j < length; j++ {
		data[j] = float32(q.k.kernelFunction(i, j))
	}

	buf := q.rows.next()
	for j := 0; j < length; j++ {
		if q.y[i] == q.y[j] {
			buf[j] = data[j]
		} else {
			buf[j] = -data[j]
		}
	}
	return buf
}

func (q *svcQ) getQD() []float64 {
	return q.qd
}

func (q *svcQ) swapIndex(i int, j int) {
	q.cache.swapIndex(i, j)
	q.k.swapIndex(i, j)
	q.y[i], q.y[j] = q.y[j], q.y[i]
	q.qd[i], q.qd[j] = q.qd[j], q.qd[i]
}

func (q *svcQ) cacheStats() cacheStats {
	return q.cache.stats
}

// oneClassQ : Q_ij = K(i,j)
type oneClassQ struct {
	k     *kernel
	cache *cache
	qd    []float64
}

func newOneClassQ(prob *Problem, param *Parameter) *oneClassQ {
	l := prob.L
	q := &oneClassQ{
		k:     newKernel(l, prob.X, param),
		cache: newCache(l, cacheBytes(param)),
		qd:    make([]float64, l),
	}

	for i := 0; i < l; i++ {
		q.qd[i] = q.k.kernelFunction(i, i)
	}

	return q
}

func (q *oneClassQ) getQ(i int, length int) []float32 {
	data, start := q.cache.getData(i, length)
	for j := start; j < length; j++ {
		data[j] = float32(q.k.kernelFunction(i, j))
	}
	return data
}

func (q *oneClassQ) getQD() []float64 {
	return q.qd
}

func (q *oneClassQ) swapIndex(i int, j int) {
	q.cache.swapIndex(i, j)
	q.k.swapIndex(i, j)
	q.qd[i], q.qd[j] = q.qd[j], q.qd[i]
}

func (q *oneClassQ) cacheStats() cacheStats {
	return q.cache.stats
}

// svrQ exposes 2l variables: index k < l with sign +1 and k+l with sign -1,
// both backed by the cached kernel column of example k
type svrQ struct {
	l     int
	k     *kernel
	cache *cache
	sign  []int8
	index []int
	qd    []float64
	rows  rowBuffers
}

func newSVRQ(prob *Problem, param *Parameter) *svrQ {
	l := prob.L
	q := &svrQ{
		l:     l,
		k:     newKernel(l, prob.X, param),
		cache: newCache(l, cacheBytes(param)),
		sign:  make([]int8, 2*l),
		index: make([]int, 2*l),
		qd:    make([]float64, 2*l),
		rows:  newRowBuffers(2 * l),
	}

	for k := 0; k < l; k++ {
		q.sign[k] = 1
		q.sign[k+l] = -1
		q.index[k] = k
		q.index[k+l] = k
		q.qd[k] = q.k.kernelFunction(k, k)
		q.qd[k+l] = q.qd[k]
	}

	return q
}

func (q *svrQ) getQ(i int, length int) []float32 {
	realI := q.index[i]
	data, start := q.cache.getData(realI, q.l)
	for j := start; j < q.l; j++ {
		data[j] = float32(q.k.kernelFunction(realI, j))
	}

	// reorder and copy
	buf := q.rows.next()
	si := float32(q.sign[i])
	for j := 0; j < length; j++ {
		buf[j] = si * float32(q.sign[j]) * data[q.index[j]]
	}
	return buf
}

func (q *svrQ) getQD() []float64 {
	return q.qd
}

func (q *svrQ) swapIndex(i int, j int) {
	q.sign[i], q.sign[j] = q.sign[j], q.sign[i]
	q.index[i], q.index[j] = q.index[j], q.index[i]
	q.qd[i], q.qd[j] = q.qd[j], q.qd[i]
}

func (q *svrQ) cacheStats() cacheStats {
	return q.cache.stats
}
