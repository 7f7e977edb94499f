package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"limhan.info/libsvm-go/config"
	"limhan.info/libsvm-go/libsvm"
)

func runWithArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(newTrainCommand(&out), append([]string{"-q"}, args...))
	return out.String(), err
}

func TestTrainWritesModel(t *testing.T) {
	modelFile := filepath.Join(t.TempDir(), "separable.model")

	_, err := runWithArgs(t, "-t", "0", "-c", "1", "../../testdata/separable.txt", modelFile)
	require.NoError(t, err)

	f, err := os.Open(modelFile)
	require.NoError(t, err)
	defer f.Close()

	model, err := libsvm.LoadModel(f)
	require.NoError(t, err)
	assert.Equal(t, libsvm.C_SVC, model.GetSvmType())
	assert.Equal(t, libsvm.LINEAR, model.Param.KernelType)
	assert.Equal(t, 2, model.GetNumClass())
}

func TestTrainWritesJSONModel(t *testing.T) {
	modelFile := filepath.Join(t.TempDir(), "three_class.json")

	_, err := runWithArgs(t, "-json", "-b", "1", "-g", "0.5", "../../testdata/three_class.txt", modelFile)
	require.NoError(t, err)

	f, err := os.Open(modelFile)
	require.NoError(t, err)
	defer f.Close()

	model, err := libsvm.ReadModelJSON(f)
	require.NoError(t, err)
	assert.Equal(t, 3, model.GetNumClass())
	assert.True(t, model.IsProbabilityModel())
	assert.Equal(t, 0.5, model.Param.Gamma)
}

func TestTrainCrossValidation(t *testing.T) {
	out, err := runWithArgs(t, "-t", "0", "-v", "3", "../../testdata/three_class.txt")
	require.NoError(t, err)
	assert.Equal(t, "Cross Validation Accuracy = 100%\n", out)

	out, err = runWithArgs(t, "-s", "3", "-t", "0", "-c", "10", "-v", "5", "../../testdata/regression.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Cross Validation Mean squared error = ")
	assert.Contains(t, out, "Cross Validation Squared correlation coefficient = ")
}

func TestTrainGridSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
grid:
  c_begin: -1
  c_end: 1
  c_step: 2
  gamma_begin: -1
  gamma_end: -3
  gamma_step: -2
`), 0o600))

	out, err := runWithArgs(t, "-config", path, "-grid", "-v", "3", "../../testdata/separable.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Best C = "), out)
	assert.Contains(t, out, "CV rate = ")
}

func TestTrainDumpConfig(t *testing.T) {
	t.Setenv("LIBSVM_CACHE_SIZE", "40")

	out, err := runWithArgs(t, "-dump-config", "-s", "4", "-t", "1", "-w", "1:2", "-w", "2:3,3:4")
	require.NoError(t, err)
	assert.Contains(t, out, "svm_type: nu_svr")
	assert.Contains(t, out, "kernel_type: polynomial")

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 40.0, cfg.CacheSize)
	assert.Equal(t, []string{"1:2", "2:3", "3:4"}, cfg.Weights)
}

func TestTrainInvalidArguments(t *testing.T) {
	cases := map[string][]string{
		"no input":         {},
		"too many files":   {"a", "b", "c"},
		"unknown svm type": {"-s", "7", "../../testdata/separable.txt"},
		"unknown kernel":   {"-t", "9", "../../testdata/separable.txt"},
		"single fold":      {"-v", "1", "../../testdata/separable.txt"},
		"bad weight":       {"-w", "1", "../../testdata/separable.txt"},
		"nu out of range":  {"-s", "1", "-n", "2", "../../testdata/separable.txt"},
		"missing input":    {filepath.Join(os.TempDir(), "does-not-exist.txt")},
		"unknown flag":     {"-x", "../../testdata/separable.txt"},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := runWithArgs(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestTrainStrictConverges(t *testing.T) {
	modelFile := filepath.Join(t.TempDir(), "strict.model")

	_, err := runWithArgs(t, "-strict", "-t", "0", "../../testdata/separable.txt", modelFile)
	require.NoError(t, err)
	assert.FileExists(t, modelFile)
}

func TestWeightList(t *testing.T) {
	var w weightList
	require.NoError(t, w.Set("1:2"))
	require.NoError(t, w.Set(" 2:3 , ,3:4"))
	assert.Equal(t, weightList{"1:2", "2:3", "3:4"}, w)
	assert.Equal(t, "1:2,2:3,3:4", w.String())
}
