package libsvm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

const maxModelLineSize = 64 * 1024 * 1024

// SaveModel writes the model in the LIBSVM text format
func SaveModel(writer io.Writer, model *Model) error {
	w := bufio.NewWriter(writer)
	param := model.Param
	kernelType := param.KernelType

	fmt.Fprintf(w, "svm_type %s\n", param.SvmType.Name())
	fmt.Fprintf(w, "kernel_type %s\n", kernelType.Name())

	if kernelType.UsesDegree() {
		fmt.Fprintf(w, "degree %d\n", param.Degree)
	}
	if kernelType.UsesGamma() {
		fmt.Fprintf(w, "gamma %s\n", formatFloat(param.Gamma))
	}
	if kernelType.UsesCoef0() {
		fmt.Fprintf(w, "coef0 %s\n", formatFloat(param.Coef0))
	}

	nrClass := model.NumClass
	l := model.L
	nrPairs := nrClass * (nrClass - 1) / 2
	fmt.Fprintf(w, "nr_class %d\n", nrClass)
	fmt.Fprintf(w, "total_sv %d\n", l)

	writeFloats(w, "rho", model.Rho, nrPairs)

	if model.Label != nil {
		w.WriteString("label")
		for i := 0; i < nrClass; i++ {
			fmt.Fprintf(w, " %d", model.Label[i])
		}
		w.WriteString("\n")
	}

	// regression has probA only
	if model.ProbA != nil {
		writeFloats(w, "probA", model.ProbA, nrPairs)
	}
	if model.ProbB != nil {
		writeFloats(w, "probB", model.ProbB, nrPairs)
	}

	if model.NSV != nil {
		w.WriteString("nr_sv")
		for i := 0; i < nrClass; i++ {
			fmt.Fprintf(w, " %d", model.NSV[i])
		}
		w.WriteString("\n")
	}

	w.WriteString("SV\n")
	for i := 0; i < l; i++ {
		for j := 0; j < nrClass-1; j++ {
			w.WriteString(formatFloat(model.SvCoef[j][i]))
			w.WriteString(" ")
		}

		sv := model.SV[i]
		if kernelType == PRECOMPUTED {
			fmt.Fprintf(w, "0:%d", int(sv[0].value))
		} else {
			for _, node := range sv {
				fmt.Fprintf(w, "%d:%s ", node.index, formatFloat(node.value))
			}
		}
		w.WriteString("\n")
	}

	return w.Flush()
}

func writeFloats(w *bufio.Writer, name string, values []float64, n int) {
	w.WriteString(name)
	for i := 0; i < n; i++ {
		w.WriteString(" ")
		w.WriteString(formatFloat(values[i]))
	}
	w.WriteString("\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}

// LoadModel reads a model written by SaveModel
func LoadModel(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxModelLineSize)

	param := DefaultParameter()
	model := &Model{Param: param}
	lineNr := 0

header:
	for {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrModelFormat, err)
			}
			return nil, fmt.Errorf("%w: missing SV section", ErrModelFormat)
		}
		lineNr++
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: unknown text in model file: [%s]", ErrModelFormat, line)
		}
		args := fields[1:]

		var err error
		switch fields[0] {
		case "svm_type":
			if len(args) != 1 || GetSvmTypeByName(args[0]) == nil {
				return nil, fmt.Errorf("%w: unknown svm type [%s]", ErrModelFormat, line)
			}
			param.SvmType = GetSvmTypeByName(args[0])

		case "kernel_type":
			if len(args) != 1 || GetKernelTypeByName(args[0]) == nil {
				return nil, fmt.Errorf("%w: unknown kernel function [%s]", ErrModelFormat, line)
			}
			param.KernelType = GetKernelTypeByName(args[0])

		case "degree":
			param.Degree, err = parseIntArg(args)

		case "gamma":
			param.Gamma, err = parseFloatArg(args)

		case "coef0":
			param.Coef0, err = parseFloatArg(args)

		case "nr_class":
			model.NumClass, err = parseIntArg(args)

		case "total_sv":
			model.L, err = parseIntArg(args)

		case "rho":
			model.Rho, err = parseFloats(args, model.NumClass*(model.NumClass-1)/2)

		case "label":
			model.Label, err = parseInts(args, model.NumClass)

		case "probA":
			model.ProbA, err = parseFloats(args, model.NumClass*(model.NumClass-1)/2)

		case "probB":
			model.ProbB, err = parseFloats(args, model.NumClass*(model.NumClass-1)/2)

		case "nr_sv":
			model.NSV, err = parseInts(args, model.NumClass)

		case "SV":
			break header

		default:
			return nil, fmt.Errorf("%w: unknown text in model file: [%s]", ErrModelFormat, line)
		}

		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrModelFormat, lineNr, err)
		}
	}

	if model.Rho == nil {
		return nil, fmt.Errorf("%w: missing rho", ErrModelFormat)
	}
	if err := checkModelHeader(model); err != nil {
		return nil, err
	}

	m := maxInt(model.NumClass-1, 0)
	l := model.L
	model.SvCoef = make([][]float64, m)
	for k := range model.SvCoef {
		model.SvCoef[k] = make([]float64, l)
	}
	model.SV = make([][]FeatureNode, l)

	for i := 0; i < l; i++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrModelFormat, err)
			}
			return nil, fmt.Errorf("%w: expected %d support vectors, got %d", ErrModelFormat, l, i)
		}
		lineNr++

		tokens := strings.Fields(scanner.Text())
		if len(tokens) < m {
			return nil, fmt.Errorf("%w: line %d: missing coefficients", ErrModelFormat, lineNr)
		}
		for k := 0; k < m; k++ {
			v, err := strconv.ParseFloat(tokens[k], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrModelFormat, lineNr, err)
			}
			model.SvCoef[k][i] = v
		}

		sv := make([]FeatureNode, 0, len(tokens)-m)
		for _, token := range tokens[m:] {
			node, err := parseFeatureNode(token)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrModelFormat, lineNr, err)
			}
			sv = append(sv, node)
		}
		model.SV[i] = sv
	}

	return model, nil
}

// checkModelHeader verifies that the per-class and per-pair arrays agree with
// nr_class and total_sv, so that a loaded model can always predict
func checkModelHeader(model *Model) error {
	nrClass := model.NumClass
	if model.L < 0 {
		return fmt.Errorf("%w: total_sv %d", ErrModelFormat, model.L)
	}

	nrPairs := 1
	if model.Param.SvmType.IsClassification() {
		if nrClass < 1 || (nrClass < 2 && model.L > 0) {
			return fmt.Errorf("%w: nr_class %d", ErrModelFormat, nrClass)
		}
		nrPairs = nrClass * (nrClass - 1) / 2

		if len(model.Label) != nrClass {
			return fmt.Errorf("%w: expected %d labels, got %d", ErrModelFormat, nrClass, len(model.Label))
		}
		if len(model.NSV) != nrClass {
			return fmt.Errorf("%w: expected %d nr_sv values, got %d", ErrModelFormat, nrClass, len(model.NSV))
		}
		total := 0
		for _, n := range model.NSV {
			if n < 0 {
				return fmt.Errorf("%w: negative nr_sv %d", ErrModelFormat, n)
			}
			total += n
		}
		if total != model.L {
			return fmt.Errorf("%w: nr_sv adds up to %d, total_sv is %d", ErrModelFormat, total, model.L)
		}
		if (model.ProbA == nil) != (model.ProbB == nil) {
			return fmt.Errorf("%w: probA and probB must be given together", ErrModelFormat)
		}
	} else if nrClass != 2 {
		return fmt.Errorf("%w: nr_class %d, expected 2 for %s", ErrModelFormat, nrClass, model.Param.SvmType.Name())
	}

	if len(model.Rho) != nrPairs {
		return fmt.Errorf("%w: expected %d rho values, got %d", ErrModelFormat, nrPairs, len(model.Rho))
	}
	if model.ProbA != nil && len(model.ProbA) != nrPairs {
		return fmt.Errorf("%w: expected %d probA values, got %d", ErrModelFormat, nrPairs, len(model.ProbA))
	}
	if model.ProbB != nil && len(model.ProbB) != nrPairs {
		return fmt.Errorf("%w: expected %d probB values, got %d", ErrModelFormat, nrPairs, len(model.ProbB))
	}

	return nil
}

func parseFeatureNode(token string) (FeatureNode, error) {
	keyVal := strings.Split(token, ":")
	if len(keyVal) != 2 {
		return FeatureNode{}, fmt.Errorf("token format is incorrect %q", token)
	}
	index, err := strconv.Atoi(keyVal[0])
	if err != nil {
		return FeatureNode{}, err
	}
	value, err := strconv.ParseFloat(keyVal[1], 64)
	if err != nil {
		return FeatureNode{}, err
	}
	return NewFeatureNode(index, value), nil
}

func parseIntArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one value, got %d", len(args))
	}
	return strconv.Atoi(args[0])
}

func parseFloatArg(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one value, got %d", len(args))
	}
	return strconv.ParseFloat(args[0], 64)
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(args))
	}
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func parseInts(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(args))
	}
	values := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

type jsonFeatureNode struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

type jsonModel struct {
	SvmType    string              `json:"svm_type"`
	KernelType string              `json:"kernel_type"`
	Degree     int                 `json:"degree"`
	Gamma      float64             `json:"gamma"`
	Coef0      float64             `json:"coef0"`
	NrClass    int                 `json:"nr_class"`
	TotalSV    int                 `json:"total_sv"`
	Rho        []float64           `json:"rho"`
	Label      []int               `json:"label,omitempty"`
	ProbA      []float64           `json:"probA,omitempty"`
	ProbB      []float64           `json:"probB,omitempty"`
	NrSV       []int               `json:"nr_sv,omitempty"`
	SvCoef     [][]float64         `json:"sv_coef"`
	SV         [][]jsonFeatureNode `json:"SV"`
}

// WriteModelJSON writes the model as a JSON document
func WriteModelJSON(w io.Writer, model *Model) error {
	doc := jsonModel{
		SvmType:    model.Param.SvmType.Name(),
		KernelType: model.Param.KernelType.Name(),
		Degree:     model.Param.Degree,
		Gamma:      model.Param.Gamma,
		Coef0:      model.Param.Coef0,
		NrClass:    model.NumClass,
		TotalSV:    model.L,
		Rho:        model.Rho,
		Label:      model.Label,
		ProbA:      model.ProbA,
		ProbB:      model.ProbB,
		NrSV:       model.NSV,
		SvCoef:     model.SvCoef,
		SV:         make([][]jsonFeatureNode, len(model.SV)),
	}
	for i, sv := range model.SV {
		nodes := make([]jsonFeatureNode, len(sv))
		for j, node := range sv {
			nodes[j] = jsonFeatureNode{Index: node.index, Value: node.value}
		}
		doc.SV[i] = nodes
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// ReadModelJSON reads a model written by WriteModelJSON
func ReadModelJSON(r io.Reader) (*Model, error) {
	var doc jsonModel
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFormat, err)
	}

	svmType := GetSvmTypeByName(doc.SvmType)
	if svmType == nil {
		return nil, fmt.Errorf("%w: unknown svm type %q", ErrModelFormat, doc.SvmType)
	}
	kernelType := GetKernelTypeByName(doc.KernelType)
	if kernelType == nil {
		return nil, fmt.Errorf("%w: unknown kernel function %q", ErrModelFormat, doc.KernelType)
	}
	if len(doc.SV) != doc.TotalSV || len(doc.SvCoef) != maxInt(doc.NrClass-1, 0) {
		return nil, fmt.Errorf("%w: inconsistent support vector data", ErrModelFormat)
	}
	for _, coef := range doc.SvCoef {
		if len(coef) != doc.TotalSV {
			return nil, fmt.Errorf("%w: expected %d coefficients per row, got %d", ErrModelFormat, doc.TotalSV, len(coef))
		}
	}

	param := DefaultParameter()
	param.SvmType = svmType
	param.KernelType = kernelType
	param.Degree = doc.Degree
	param.Gamma = doc.Gamma
	param.Coef0 = doc.Coef0

	model := &Model{
		Param:    param,
		NumClass: doc.NrClass,
		L:        doc.TotalSV,
		SvCoef:   doc.SvCoef,
		Rho:      doc.Rho,
		ProbA:    doc.ProbA,
		ProbB:    doc.ProbB,
		Label:    doc.Label,
		NSV:      doc.NrSV,
		SV:       make([][]FeatureNode, len(doc.SV)),
	}
	if err := checkModelHeader(model); err != nil {
		return nil, err
	}

	for i, nodes := range doc.SV {
		sv := make([]FeatureNode, len(nodes))
		for j, node := range nodes {
			sv[j] = NewFeatureNode(node.Index, node.Value)
		}
		model.SV[i] = sv
	}

	return model, nil
}
