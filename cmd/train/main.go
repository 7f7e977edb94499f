package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gonuts/commander"
	"github.com/rs/zerolog"

	"limhan.info/libsvm-go/config"
	"limhan.info/libsvm-go/libsvm"
	svmlog "limhan.info/libsvm-go/logger"
)

var log = svmlog.NewLogger("svm-train")

// weightList collects repeated -w label:weight flags
type weightList []string

func (w *weightList) String() string {
	return strings.Join(*w, ",")
}

func (w *weightList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*w = append(*w, part)
		}
	}
	return nil
}

type trainOptions struct {
	svmType     int
	kernelType  int
	degree      int
	gamma       float64
	coef0       float64
	c           float64
	nu          float64
	p           float64
	cacheSize   float64
	eps         float64
	shrinking   int
	probability int
	weights     weightList
	nrFold      int
	seed        int64
	quiet       bool
	strict      bool
	json        bool
	grid        bool
	dumpConfig  bool
	configFile  string

	out io.Writer
}

func newTrainCommand(out io.Writer) *commander.Command {
	opts := &trainOptions{out: out}
	defaults := config.Default()

	cmd := &commander.Command{
		UsageLine: "svm-train [options] training_set_file [model_file]",
		Short:     "train a support vector machine",
		Long: `
train a support vector machine on a LIBSVM formatted data set

	$ svm-train -s 0 -t 2 -c 1 -g 0.5 train.txt train.model
	$ svm-train -v 5 train.txt
	$ svm-train -grid -v 5 train.txt

Settings are layered: defaults, -config YAML file, LIBSVM_* environment
variables, then command line flags.
`,
		Flag: *flag.NewFlagSet("svm-train", flag.ContinueOnError),
	}
	cmd.Run = func(cmd *commander.Command, args []string) error {
		return runTrain(cmd, opts, args)
	}

	cmd.Flag.IntVar(&opts.svmType, "s", libsvm.C_SVC.ID(), "svm type: 0 C-SVC, 1 nu-SVC, 2 one-class SVM, 3 epsilon-SVR, 4 nu-SVR")
	cmd.Flag.IntVar(&opts.kernelType, "t", libsvm.RBF.ID(), "kernel type: 0 linear, 1 polynomial, 2 radial basis function, 3 sigmoid, 4 precomputed")
	cmd.Flag.IntVar(&opts.degree, "d", defaults.Degree, "degree in kernel function")
	cmd.Flag.Float64Var(&opts.gamma, "g", defaults.Gamma, "gamma in kernel function (default 1/num_features)")
	cmd.Flag.Float64Var(&opts.coef0, "r", defaults.Coef0, "coef0 in kernel function")
	cmd.Flag.Float64Var(&opts.c, "c", defaults.C, "parameter C of C-SVC, epsilon-SVR, and nu-SVR")
	cmd.Flag.Float64Var(&opts.nu, "n", defaults.Nu, "parameter nu of nu-SVC, one-class SVM, and nu-SVR")
	cmd.Flag.Float64Var(&opts.p, "p", defaults.P, "epsilon in loss function of epsilon-SVR")
	cmd.Flag.Float64Var(&opts.cacheSize, "m", defaults.CacheSize, "cache memory size in MB")
	cmd.Flag.Float64Var(&opts.eps, "e", defaults.Eps, "tolerance of termination criterion")
	cmd.Flag.IntVar(&opts.shrinking, "h", 1, "whether to use the shrinking heuristics, 0 or 1")
	cmd.Flag.IntVar(&opts.probability, "b", 0, "whether to train a SVC or SVR model for probability estimates, 0 or 1")
	cmd.Flag.Var(&opts.weights, "w", "label:weight, sets C of class label to weight*C (repeatable)")
	cmd.Flag.IntVar(&opts.nrFold, "v", 0, "n-fold cross validation mode")
	cmd.Flag.Int64Var(&opts.seed, "seed", defaults.Seed, "seed of the fold shuffling")
	cmd.Flag.BoolVar(&opts.quiet, "q", false, "quiet mode (no outputs)")
	cmd.Flag.BoolVar(&opts.strict, "strict", false, "fail when the solver reaches the iteration limit")
	cmd.Flag.BoolVar(&opts.json, "json", false, "write the model as JSON")
	cmd.Flag.BoolVar(&opts.grid, "grid", false, "search log2(C) and log2(gamma) with cross validation")
	cmd.Flag.BoolVar(&opts.dumpConfig, "dump-config", false, "print the effective configuration as YAML and exit")
	cmd.Flag.StringVar(&opts.configFile, "config", "", "YAML configuration file")

	return cmd
}

// effectiveConfig loads the configuration layers and applies the flags that
// were set explicitly on the command line
func effectiveConfig(cmd *commander.Command, opts *trainOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	var flagErr error
	cmd.Flag.Visit(func(f *flag.Flag) {
		if flagErr != nil {
			return
		}
		switch f.Name {
		case "s":
			svmType := libsvm.GetSvmTypeByID(opts.svmType)
			if svmType == nil {
				flagErr = fmt.Errorf("unknown svm type %d", opts.svmType)
				return
			}
			cfg.SvmType = svmType.Name()
		case "t":
			kernelType := libsvm.GetKernelTypeByID(opts.kernelType)
			if kernelType == nil {
				flagErr = fmt.Errorf("unknown kernel type %d", opts.kernelType)
				return
			}
			cfg.KernelType = kernelType.Name()
		case "d":
			cfg.Degree = opts.degree
		case "g":
			cfg.Gamma = opts.gamma
		case "r":
			cfg.Coef0 = opts.coef0
		case "c":
			cfg.C = opts.c
		case "n":
			cfg.Nu = opts.nu
		case "p":
			cfg.P = opts.p
		case "m":
			cfg.CacheSize = opts.cacheSize
		case "e":
			cfg.Eps = opts.eps
		case "h":
			cfg.Shrinking = opts.shrinking != 0
		case "b":
			cfg.Probability = opts.probability != 0
		case "w":
			cfg.Weights = append(cfg.Weights, opts.weights...)
		case "v":
			if opts.nrFold < 2 {
				flagErr = fmt.Errorf("n-fold cross validation: n must be >= 2")
				return
			}
			cfg.NrFold = opts.nrFold
		case "seed":
			cfg.Seed = opts.seed
		case "strict":
			cfg.Strict = opts.strict
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTrain(cmd *commander.Command, opts *trainOptions, args []string) error {
	cfg, err := effectiveConfig(cmd, opts)
	if err != nil {
		return err
	}

	if opts.dumpConfig {
		return cfg.Dump(opts.out)
	}

	if len(args) < 1 || len(args) > 2 {
		cmd.Flag.PrintDefaults()
		return fmt.Errorf("usage: %s", cmd.UsageLine)
	}

	if opts.quiet {
		libsvm.SetLogger(zerolog.Nop())
		log = zerolog.Nop()
	}
	libsvm.SetSeed(cfg.Seed)

	param, err := cfg.ToParameter()
	if err != nil {
		return err
	}

	inputFile := args[0]
	modelFile := filepath.Base(inputFile) + ".model"
	if len(args) == 2 {
		modelFile = args[1]
	}

	nrFold := cfg.NrFold
	if opts.grid && nrFold == 0 {
		nrFold = 5
	}

	training := libsvm.NewTraining(nrFold > 0, opts.grid, inputFile, modelFile, nrFold, param)
	if err := training.ReadProblem(); err != nil {
		return err
	}
	log.Info().Str("input", inputFile).Int("examples", training.Prob.L).Msg("read problem")

	switch {
	case training.FindParameters:
		result, err := training.DoFindParameters(cfg.Log2CRange(), cfg.Log2GammaRange())
		if err != nil {
			return err
		}
		if param.SvmType.IsRegression() {
			fmt.Fprintf(opts.out, "Best C = %g gamma = %g CV MSE = %g\n", result.GetBestC(), result.GetBestGamma(), result.GetBestRate())
		} else {
			fmt.Fprintf(opts.out, "Best C = %g gamma = %g CV rate = %g%%\n", result.GetBestC(), result.GetBestGamma(), 100.0*result.GetBestRate())
		}
		return nil

	case training.CrossValidation:
		score, err := training.DoCrossValidation()
		if err != nil {
			return err
		}
		if param.SvmType.IsRegression() {
			fmt.Fprintf(opts.out, "Cross Validation Mean squared error = %g\n", score.MeanSquaredError)
			fmt.Fprintf(opts.out, "Cross Validation Squared correlation coefficient = %g\n", score.SquaredCorrelationCoeff)
		} else {
			fmt.Fprintf(opts.out, "Cross Validation Accuracy = %g%%\n", 100.0*score.Accuracy)
		}
		return nil
	}

	model, err := training.DoTrain()
	if err != nil {
		return err
	}
	return writeModel(training.ModelFilename, model, opts.json)
}

func writeModel(path string, model *libsvm.Model, asJSON bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can't save model to file %s: %w", path, err)
	}

	if asJSON {
		err = libsvm.WriteModelJSON(f, model)
	} else {
		err = libsvm.SaveModel(f, model)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("can't save model to file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("can't save model to file %s: %w", path, err)
	}

	log.Info().Str("model", path).Int("nr_sv", model.GetNumSV()).Msg("saved model")
	return nil
}

// execute parses the flags and runs the command with the remaining arguments
func execute(cmd *commander.Command, args []string) error {
	if err := cmd.Flag.Parse(args); err != nil {
		return err
	}
	return cmd.Run(cmd, cmd.Flag.Args())
}

func main() {
	svmlog.SetupLogging()
	if err := execute(newTrainCommand(os.Stdout), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "**err**: %v\n", err)
		os.Exit(1)
	}
}
