// Package config loads svm-train settings from built-in defaults, an optional
// YAML file and LIBSVM_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"limhan.info/libsvm-go/libsvm"
)

// EnvPrefix is the prefix of every environment variable read by Load
const EnvPrefix = "LIBSVM_"

// GridConfig is the log2 search range of FindParameters
type GridConfig struct {
	CBegin     float64 `koanf:"c_begin" yaml:"c_begin"`
	CEnd       float64 `koanf:"c_end" yaml:"c_end"`
	CStep      float64 `koanf:"c_step" yaml:"c_step" validate:"ne=0"`
	GammaBegin float64 `koanf:"gamma_begin" yaml:"gamma_begin"`
	GammaEnd   float64 `koanf:"gamma_end" yaml:"gamma_end"`
	GammaStep  float64 `koanf:"gamma_step" yaml:"gamma_step" validate:"ne=0"`
}

// Config holds every svm-train setting
type Config struct {
	SvmType     string   `koanf:"svm_type" yaml:"svm_type" validate:"oneof=c_svc nu_svc one_class epsilon_svr nu_svr"`
	KernelType  string   `koanf:"kernel_type" yaml:"kernel_type" validate:"oneof=linear polynomial rbf sigmoid precomputed"`
	Degree      int      `koanf:"degree" yaml:"degree" validate:"gte=0"`
	Gamma       float64  `koanf:"gamma" yaml:"gamma" validate:"gte=0"` // 0 means 1/num_features
	Coef0       float64  `koanf:"coef0" yaml:"coef0"`
	CacheSize   float64  `koanf:"cache_size" yaml:"cache_size" validate:"gt=0"` // in MB
	Eps         float64  `koanf:"eps" yaml:"eps" validate:"gt=0"`
	C           float64  `koanf:"c" yaml:"c" validate:"gt=0"`
	Nu          float64  `koanf:"nu" yaml:"nu" validate:"gt=0,lte=1"`
	P           float64  `koanf:"p" yaml:"p" validate:"gte=0"`
	Shrinking   bool     `koanf:"shrinking" yaml:"shrinking"`
	Probability bool     `koanf:"probability" yaml:"probability"`
	Strict      bool     `koanf:"strict" yaml:"strict"`
	Weights     []string `koanf:"weights" yaml:"weights" validate:"dive,contains=:"` // label:weight
	NrFold      int      `koanf:"nr_fold" yaml:"nr_fold" validate:"eq=0|gte=2"`    // 0 disables cross validation
	Seed        int64    `koanf:"seed" yaml:"seed"`

	Grid GridConfig `koanf:"grid" yaml:"grid"`
}

// defaultConfig mirrors the svm-train defaults
func defaultConfig() *Config {
	return &Config{
		SvmType:    libsvm.C_SVC.Name(),
		KernelType: libsvm.RBF.Name(),
		Degree:     3,
		Gamma:      0,
		Coef0:      0,
		CacheSize:  100,
		Eps:        1e-3,
		C:          1,
		Nu:         0.5,
		P:          0.1,
		Shrinking:  true,
		Weights:    []string{},
		Grid: GridConfig{
			CBegin:     -5,
			CEnd:       15,
			CStep:      2,
			GammaBegin: 3,
			GammaEnd:   -15,
			GammaStep:  -2,
		},
	}
}

// Default returns the built-in configuration
func Default() *Config {
	return defaultConfig()
}

// Load layers the defaults, the YAML file at path (skipped when empty) and
// the LIBSVM_* environment, then validates the result
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// LIBSVM_KERNEL_TYPE -> kernel_type, LIBSVM_GRID_C_BEGIN -> grid.c_begin
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	switch key {
	case "loglevel", "logformat":
		// read by the logger package
		return ""
	}
	if strings.HasPrefix(key, "grid_") {
		return "grid." + strings.TrimPrefix(key, "grid_")
	}
	return key
}

// processSliceFields splits comma separated values coming from the environment
func processSliceFields(k *koanf.Koanf) error {
	val, ok := k.Get("weights").(string)
	if !ok {
		return nil
	}

	parts := strings.Split(val, ",")
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			trimmed = append(trimmed, p)
		}
	}
	return k.Set("weights", trimmed)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the field ranges and the weight list
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		messages := make([]string, len(validationErrs))
		for i, fe := range validationErrs {
			messages[i] = translateError(fe)
		}
		return errors.New(strings.Join(messages, "; "))
	}

	if _, _, err := c.parseWeights(); err != nil {
		return err
	}
	return nil
}

var errorMessageWithParam = map[string]string{
	"oneof":    "%s must be one of: %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"gt":       "%s must be greater than %s",
	"ne":       "%s must not be %s",
	"contains": "%s must contain %q",
}

func translateError(fe validator.FieldError) string {
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Namespace(), fe.Param())
	}
	return fmt.Sprintf("%s failed on the '%s' validation", fe.Namespace(), fe.Tag())
}

func (c *Config) parseWeights() ([]float64, []int, error) {
	weights := make([]float64, 0, len(c.Weights))
	labels := make([]int, 0, len(c.Weights))
	for _, w := range c.Weights {
		labelWeight := strings.SplitN(w, ":", 2)
		if len(labelWeight) != 2 {
			return nil, nil, fmt.Errorf("weight %q must be label:weight", w)
		}
		label, err := strconv.Atoi(strings.TrimSpace(labelWeight[0]))
		if err != nil {
			return nil, nil, fmt.Errorf("weight %q has an invalid label: %w", w, err)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(labelWeight[1]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("weight %q has an invalid value: %w", w, err)
		}
		labels = append(labels, label)
		weights = append(weights, weight)
	}
	return weights, labels, nil
}

// ToParameter converts the configuration into training parameters
func (c *Config) ToParameter() (*libsvm.Parameter, error) {
	svmType := libsvm.GetSvmTypeByName(c.SvmType)
	if svmType == nil {
		return nil, fmt.Errorf("unknown svm type %q", c.SvmType)
	}
	kernelType := libsvm.GetKernelTypeByName(c.KernelType)
	if kernelType == nil {
		return nil, fmt.Errorf("unknown kernel type %q", c.KernelType)
	}

	param := libsvm.DefaultParameter()
	param.SvmType = svmType
	param.KernelType = kernelType
	param.Degree = c.Degree
	param.Gamma = c.Gamma
	param.Coef0 = c.Coef0
	param.CacheSize = c.CacheSize
	param.Eps = c.Eps
	param.C = c.C
	param.Nu = c.Nu
	param.P = c.P
	param.Shrinking = c.Shrinking
	param.Probability = c.Probability
	param.Strict = c.Strict

	weights, labels, err := c.parseWeights()
	if err != nil {
		return nil, err
	}
	if len(weights) > 0 {
		if err := param.SetWeights(weights, labels); err != nil {
			return nil, err
		}
	}

	return param, nil
}

// Log2CRange lists the log2(C) values of the grid search
func (c *Config) Log2CRange() []float64 {
	return libsvm.Log2Range(c.Grid.CBegin, c.Grid.CEnd, c.Grid.CStep)
}

// Log2GammaRange lists the log2(gamma) values of the grid search
func (c *Config) Log2GammaRange() []float64 {
	return libsvm.Log2Range(c.Grid.GammaBegin, c.Grid.GammaEnd, c.Grid.GammaStep)
}

// Dump writes the effective configuration as YAML
func (c *Config) Dump(w io.Writer) error {
	encoder := yamlv3.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return encoder.Close()
}
