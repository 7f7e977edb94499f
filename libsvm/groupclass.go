package libsvm

// GroupClassesReturn result of a group of classes
type GroupClassesReturn struct {
	count   []int
	label   []int
	nrClass int
	start   []int
}

func newGroupClassesReturn(nrClass int, label []int, start []int, count []int) *GroupClassesReturn {
	return &GroupClassesReturn{
		nrClass: nrClass,
		label:   label,
		start:   start,
		count:   count,
	}
}

// countClasses lists the labels in order of first occurrence with their sizes
// and the class index of every example
func countClasses(prob *Problem) (label []int, count []int, dataLabel []int) {
	dataLabel = make([]int, prob.L)

	for i := 0; i < prob.L; i++ {
		thisLabel := int(prob.Y[i])
		j := 0
		for j = 0; j < len(label); j++ {
			if thisLabel == label[j] {
				count[j]++
				break
			}
		}
		dataLabel[i] = j
		if j == len(label) {
			label = append(label, thisLabel)
			count = append(count, 1)
		}
	}

	return label, count, dataLabel
}

// groupClasses orders the examples by class into perm. Labels keep the order
// of their first occurrence in the training set.
func groupClasses(prob *Problem, perm []int) *GroupClassesReturn {
	label, count, dataLabel := countClasses(prob)
	nrClass := len(label)

	start := make([]int, nrClass)
	if nrClass == 0 {
		return newGroupClassesReturn(0, label, start, count)
	}

	start[0] = 0
	for i := 1; i < nrClass; i++ {
		start[i] = start[i-1] + count[i-1]
	}
	for i := 0; i < prob.L; i++ {
		perm[start[dataLabel[i]]] = i
		start[dataLabel[i]]++
	}

	start[0] = 0
	for i := 1; i < nrClass; i++ {
		start[i] = start[i-1] + count[i-1]
	}

	return newGroupClassesReturn(nrClass, label, start, count)
}
