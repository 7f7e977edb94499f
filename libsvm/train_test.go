package libsvm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limhan.info/libsvm-go/test"
)

func TestParseLine(t *testing.T) {
	y, x, err := ParseLine("+1 1:0.5 3:-2 10:1e-3")
	require.NoError(t, err)
	assert.Equal(t, 1.0, y)
	assert.Equal(t, []FeatureNode{NewFeatureNode(1, 0.5), NewFeatureNode(3, -2), NewFeatureNode(10, 1e-3)}, x)

	y, x, err = ParseLine("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, y)
	assert.Empty(t, x)

	for _, line := range []string{"", "a 1:1", "1 1:1 1:2", "1 2:1 1:1", "1 1", "1 x:1", "1 1:y"} {
		_, _, err := ParseLine(line)
		assert.Error(t, err, line)
	}
}

func TestReadProblem(t *testing.T) {
	param := DefaultParameter()
	prob, err := ReadProblem(strings.NewReader("1 1:1 4:2\n\n-1 2:3\n"), param)
	require.NoError(t, err)

	assert.Equal(t, 2, prob.L)
	assert.Equal(t, []float64{1, -1}, prob.Y)
	assert.Equal(t, 4, prob.MaxIndex())
	// gamma defaults to 1/num_features
	assert.Equal(t, 0.25, param.Gamma)

	param = DefaultParameter()
	param.Gamma = 2
	_, err = ReadProblem(strings.NewReader("1 1:1 4:2\n"), param)
	require.NoError(t, err)
	assert.Equal(t, 2.0, param.Gamma)

	_, err = ReadProblem(strings.NewReader("1 1:1\nfoo\n"), DefaultParameter())
	assert.Error(t, err)
}

func TestReadProblemPrecomputed(t *testing.T) {
	param := DefaultParameter()
	param.KernelType = PRECOMPUTED

	prob, err := ReadProblem(strings.NewReader("1 0:1 1:4 2:1\n-1 0:2 1:1 2:9\n"), param)
	require.NoError(t, err)
	assert.Equal(t, 2, prob.L)

	_, err = ReadProblem(strings.NewReader("1 1:4 2:1\n"), param)
	assert.Error(t, err)

	_, err = ReadProblem(strings.NewReader("1 0:3 1:4 2:1\n"), param)
	assert.Error(t, err)
}

func TestTrainingFromFile(t *testing.T) {
	path := test.WriteTempFile(t, "train.txt", []string{
		"1 1:1 2:1",
		"1 1:1.5 2:1",
		"1 1:1 2:1.5",
		"2 1:10 2:1",
		"2 1:10.5 2:1",
		"2 1:10 2:1.5",
		"3 1:1 2:10",
		"3 1:1.5 2:10",
		"3 1:1 2:10.5",
	})

	param := NewParameter(C_SVC, LINEAR, 1, 0, 1e-3)
	training := NewTraining(true, false, path, path+".model", 3, param)
	require.NoError(t, training.ReadProblem())
	assert.Equal(t, 9, training.Prob.L)

	score, err := training.DoCrossValidation()
	require.NoError(t, err)
	assert.Equal(t, 1.0, score.Accuracy)

	model, err := training.DoTrain()
	require.NoError(t, err)
	assert.Equal(t, 3, model.NumClass)

	result, err := training.DoFindParameters([]float64{0, 1}, nil)
	require.NoError(t, err)
	assert.Contains(t, []float64{1, 2}, result.GetBestC())

	missing := NewTraining(false, false, path+".missing", "", 5, param)
	assert.Error(t, missing.ReadProblem())
}

func TestReadProblemTestdata(t *testing.T) {
	for _, name := range []string{"separable.txt", "three_class.txt", "regression.txt"} {
		training := NewTraining(false, false, "../testdata/"+name, "", 5, DefaultParameter())
		require.NoError(t, training.ReadProblem(), name)
		assert.NoError(t, training.Prob.Validate())
	}

	param := DefaultParameter()
	param.KernelType = PRECOMPUTED
	training := NewTraining(false, false, "../testdata/precomputed.txt", "", 5, param)
	require.NoError(t, training.ReadProblem())

	model, err := training.DoTrain()
	require.NoError(t, err)
	for i, x := range training.Prob.X {
		assert.Equal(t, training.Prob.Y[i], Predict(model, x))
	}
}
