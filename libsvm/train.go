package libsvm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Training holds the state of one svm-train run
type Training struct {
	CrossValidation bool
	FindParameters  bool
	InputFilename   string
	ModelFilename   string
	NrFold          int
	Param           *Parameter
	Prob            *Problem
}

// NewTraining creates a new training type
func NewTraining(crossValidation bool, findParameters bool, inputFile string, outputFile string, nrFold int, param *Parameter) *Training {
	return &Training{CrossValidation: crossValidation, FindParameters: findParameters, InputFilename: inputFile, ModelFilename: outputFile, NrFold: nrFold, Param: param}
}

// DoFindParameters searches the log2 C / log2 gamma grid with cross validation
func (t *Training) DoFindParameters(log2C []float64, log2Gamma []float64) (*ParameterSearchResult, error) {
	logger.Info().Int("folds", t.NrFold).Msg("doing parameter search with cross validation")

	result, err := FindParameters(t.Prob, t.Param, t.NrFold, log2C, log2Gamma)
	if err != nil {
		return nil, err
	}

	if t.Param.SvmType.IsRegression() {
		logger.Info().Float64("C", result.bestC).Float64("gamma", result.bestGamma).Float64("mse", result.bestRate).Msg("best parameters")
	} else {
		logger.Info().Float64("C", result.bestC).Float64("gamma", result.bestGamma).Float64("accuracy", 100.0*result.bestRate).Msg("best parameters")
	}
	return result, nil
}

// DoCrossValidation does just that
func (t *Training) DoCrossValidation() (CrossValidationScore, error) {
	start := time.Now()
	target, err := CrossValidation(t.Prob, t.Param, t.NrFold)
	if err != nil {
		return CrossValidationScore{}, err
	}
	logger.Debug().Dur("time", time.Since(start)).Msg("cross validation done")

	return ScoreCrossValidation(t.Prob, t.Param, target), nil
}

// DoTrain trains a model on the whole problem
func (t *Training) DoTrain() (*Model, error) {
	return Train(t.Prob, t.Param)
}

// ReadProblem reads the input file into the training problem field
func (t *Training) ReadProblem() error {
	f, err := os.Open(t.InputFilename)
	if err != nil {
		return fmt.Errorf("can't open input file %s: %w", t.InputFilename, err)
	}
	defer f.Close()

	t.Prob, err = ReadProblem(f, t.Param)
	return err
}

// ReadProblem parses LIBSVM formatted data. A zero gamma is replaced by
// 1/max_index, and precomputed kernels require a valid 0:serial first column.
func ReadProblem(inputStream io.Reader, param *Parameter) (*Problem, error) {
	scanner := bufio.NewScanner(inputStream)
	scanner.Buffer(make([]byte, 0, 64*1024), maxModelLineSize)

	vy := make([]float64, 0)
	vx := make([][]FeatureNode, 0)
	maxIndex := 0
	lineNr := 0

	for scanner.Scan() {
		lineNr++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		y, x, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("wrong input format at line %d: %w", lineNr, err)
		}
		if len(x) > 0 && x[len(x)-1].index > maxIndex {
			maxIndex = x[len(x)-1].index
		}
		vy = append(vy, y)
		vx = append(vx, x)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read input: %w", err)
	}

	prob := NewProblem(len(vy), vy, vx)

	if param.Gamma == 0 && maxIndex > 0 {
		param.Gamma = 1.0 / float64(maxIndex)
	}

	if param.KernelType == PRECOMPUTED {
		for i := 0; i < prob.L; i++ {
			if len(prob.X[i]) == 0 || prob.X[i][0].index != 0 {
				return nil, fmt.Errorf("wrong kernel matrix: first column must be 0:sample_serial_number")
			}
			serial := int(prob.X[i][0].value)
			if serial <= 0 || serial > maxIndex {
				return nil, fmt.Errorf("wrong input format: sample_serial_number out of range")
			}
		}
	}

	return prob, nil
}

// ParseLine parses one "label index:value ..." line. Indices must be ascending.
func ParseLine(line string) (float64, []FeatureNode, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return 0, nil, fmt.Errorf("empty line")
	}

	y, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid label %q: %w", tokens[0], err)
	}

	x := make([]FeatureNode, 0, len(tokens)-1)
	prev := -1
	for _, token := range tokens[1:] {
		node, err := parseFeatureNode(token)
		if err != nil {
			return 0, nil, err
		}
		if node.index <= prev {
			return 0, nil, fmt.Errorf("feature indices must be ascending, got %d after %d", node.index, prev)
		}
		prev = node.index
		x = append(x, node)
	}

	return y, x, nil
}
