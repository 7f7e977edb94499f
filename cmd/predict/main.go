package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gonuts/commander"
	"github.com/rs/zerolog"

	"limhan.info/libsvm-go/libsvm"
	svmlog "limhan.info/libsvm-go/logger"
)

var log = svmlog.NewLogger("svm-predict")

// predictionStats accumulates the agreement between predictions and targets
type predictionStats struct {
	correct, total                  int
	errorSum                        float64
	sump, sumt, sumpp, sumtt, sumpt float64
}

func (s *predictionStats) add(predicted, target float64) {
	if predicted == target {
		s.correct++
	}
	s.errorSum += (predicted - target) * (predicted - target)
	s.sump += predicted
	s.sumt += target
	s.sumpp += predicted * predicted
	s.sumtt += target * target
	s.sumpt += predicted * target
	s.total++
}

func (s *predictionStats) accuracy() float64 {
	return float64(s.correct) / float64(s.total)
}

func (s *predictionStats) meanSquaredError() float64 {
	return s.errorSum / float64(s.total)
}

func (s *predictionStats) squaredCorrelation() float64 {
	n := float64(s.total)
	return ((n*s.sumpt - s.sump*s.sumt) * (n*s.sumpt - s.sump*s.sumt)) /
		((n*s.sumpp - s.sump*s.sump) * (n*s.sumtt - s.sumt*s.sumt))
}

// DoPredict reads LIBSVM formatted examples from reader and writes one
// prediction per line to writer
func DoPredict(reader io.Reader, writer io.Writer, model *libsvm.Model, probability bool) (*predictionStats, error) {
	svmType := model.GetSvmType()
	nrClass := model.GetNumClass()

	var probEstimates []float64
	if probability {
		if !libsvm.CheckProbabilityModel(model) {
			return nil, libsvm.ErrNotProbabilityModel
		}
		if svmType.IsRegression() {
			log.Info().Float64("sigma", model.GetSvrProbability()).
				Msg("Prob. model for test data: target value = predicted value + z, z: Laplace distribution e^(-|z|/sigma)/(2sigma)")
		} else {
			probEstimates = make([]float64, nrClass)
			labels := model.GetLabels()
			header := make([]string, len(labels))
			for i, label := range labels {
				header[i] = fmt.Sprintf("%d", label)
			}
			if _, err := fmt.Fprintf(writer, "labels %s\n", strings.Join(header, " ")); err != nil {
				return nil, err
			}
		}
	} else if model.IsProbabilityModel() {
		log.Info().Msg("Model supports probability estimates, but disabled in prediction.")
	}

	stats := &predictionStats{}
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	lineNr := 0
	for scanner.Scan() {
		lineNr++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		target, x, err := libsvm.ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("wrong input format at line %d: %w", lineNr, err)
		}

		if probEstimates != nil {
			predicted, err := libsvm.PredictProbability(model, x, probEstimates)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(writer, "%g", predicted)
			for _, p := range probEstimates {
				fmt.Fprintf(writer, " %g", p)
			}
			if _, err := fmt.Fprintln(writer); err != nil {
				return nil, err
			}
			stats.add(predicted, target)
			continue
		}

		predicted := libsvm.Predict(model, x)
		if _, err := fmt.Fprintf(writer, "%g\n", predicted); err != nil {
			return nil, err
		}
		stats.add(predicted, target)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read input: %w", err)
	}

	if stats.total == 0 {
		return stats, nil
	}
	if svmType.IsRegression() {
		log.Info().Msgf("Mean squared error = %g (regression)", stats.meanSquaredError())
		log.Info().Msgf("Squared correlation coefficient = %g (regression)", stats.squaredCorrelation())
	} else {
		log.Info().Msgf("Accuracy = %g%% (%d/%d) (classification)", 100.0*stats.accuracy(), stats.correct, stats.total)
	}
	return stats, nil
}

type predictOptions struct {
	probability int
	quiet       bool
	json        bool
}

func newPredictCommand() *commander.Command {
	opts := &predictOptions{}

	cmd := &commander.Command{
		UsageLine: "svm-predict [options] test_file model_file output_file",
		Short:     "predict with a trained support vector machine",
		Long: `
predict the examples of a LIBSVM formatted test file

	$ svm-predict test.txt train.model test.out
	$ svm-predict -b 1 test.txt train.model test.out
`,
		Flag: *flag.NewFlagSet("svm-predict", flag.ContinueOnError),
	}
	cmd.Run = func(cmd *commander.Command, args []string) error {
		return runPredict(cmd, opts, args)
	}

	cmd.Flag.IntVar(&opts.probability, "b", 0, "whether to predict probability estimates, 0 or 1; one-class SVM not supported yet")
	cmd.Flag.BoolVar(&opts.quiet, "q", false, "quiet mode (no outputs)")
	cmd.Flag.BoolVar(&opts.json, "json", false, "read a JSON model")

	return cmd
}

func readModel(path string, asJSON bool) (*libsvm.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open model file %s: %w", path, err)
	}
	defer f.Close()

	if asJSON {
		return libsvm.ReadModelJSON(f)
	}
	return libsvm.LoadModel(f)
}

func runPredict(cmd *commander.Command, opts *predictOptions, args []string) error {
	if len(args) != 3 {
		cmd.Flag.PrintDefaults()
		return fmt.Errorf("usage: %s", cmd.UsageLine)
	}
	if opts.quiet {
		libsvm.SetLogger(zerolog.Nop())
		log = zerolog.Nop()
	}

	input, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("can't open input file %s: %w", args[0], err)
	}
	defer input.Close()

	model, err := readModel(args[1], opts.json)
	if err != nil {
		return err
	}

	output, err := os.Create(args[2])
	if err != nil {
		return fmt.Errorf("can't open output file %s: %w", args[2], err)
	}

	w := bufio.NewWriter(output)
	if _, err := DoPredict(input, w, model, opts.probability != 0); err != nil {
		output.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		output.Close()
		return err
	}
	return output.Close()
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
	if err := execute(newPredictCommand(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "**err**: %v\n", err)
		os.Exit(1)
	}
}
