package multilabel

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/core/model"
	"github.com/YuminosukeSato/multilabelcv/core/parallel"
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
	"github.com/YuminosukeSato/multilabelcv/pkg/log"
)

// DefaultMinPositives is the smallest number of positive training examples a
// label needs before a classifier is fitted for it.
const DefaultMinPositives = 2

// PerLabelTrainer fits one binary classifier per label on a fold's training
// features and writes each label's positive-class probabilities into its
// column of the prediction matrix.
type PerLabelTrainer struct {
	// NewClassifier returns a fresh classifier for every (fold, label) pair.
	NewClassifier model.ClassifierFactory
	// MinPositives below which a label is skipped and predicted all-negative.
	MinPositives int
	// Workers is how many labels train concurrently: 0 and 1 train
	// sequentially, a negative value uses one worker per CPU core.
	Workers int
	Logger  log.Logger
}

// NewPerLabelTrainer returns a sequential trainer with the default skip policy.
func NewPerLabelTrainer(factory model.ClassifierFactory, logger log.Logger) *PerLabelTrainer {
	if logger == nil {
		logger = log.Nop()
	}
	return &PerLabelTrainer{
		NewClassifier: factory,
		MinPositives:  DefaultMinPositives,
		Workers:       1,
		Logger:        logger,
	}
}

// FitPredict trains every label of fold on (XTrain, yTrain) and predicts
// XTest. The returned matrix has one row per test sample and one column per
// label; skipped labels leave their column at zero and produce a warning.
//
// Labels are independent: the feature matrices are only read and each label
// writes only its own column, so labels may train concurrently.
func (t *PerLabelTrainer) FitPredict(ctx context.Context, fold int, XTrain, yTrain, XTest mat.Matrix, labelNames []string) (*mat.Dense, []*errors.DegenerateLabelWarning, error) {
	if t.NewClassifier == nil {
		return nil, nil, errors.NewValidationError("NewClassifier", "classifier factory is required", nil)
	}
	nTrain, nLabels := yTrain.Dims()
	if nTrain == 0 {
		return nil, nil, errors.NewModelError("PerLabelTrainer.FitPredict", "empty training partition", errors.ErrEmptyData)
	}
	if xr, _ := XTrain.Dims(); xr != nTrain {
		return nil, nil, errors.NewDimensionError("PerLabelTrainer.FitPredict", nTrain, xr, 0)
	}
	if len(labelNames) != nLabels {
		return nil, nil, errors.NewDimensionError("PerLabelTrainer.FitPredict", nLabels, len(labelNames), 1)
	}
	_, trainFeatures := XTrain.Dims()
	nTest, testFeatures := XTest.Dims()
	if nTest == 0 {
		return nil, nil, errors.NewModelError("PerLabelTrainer.FitPredict", "empty test partition", errors.ErrEmptyData)
	}
	if testFeatures != trainFeatures {
		return nil, nil, errors.NewDimensionError("PerLabelTrainer.FitPredict", trainFeatures, testFeatures, 1)
	}

	logger := t.logger().With(log.FoldKey, fold)
	minPositives := t.MinPositives
	if minPositives < 1 {
		minPositives = DefaultMinPositives
	}

	pred := mat.NewDense(nTest, nLabels, nil)
	skipped := make([]*errors.DegenerateLabelWarning, nLabels)

	err := parallel.ForEach(ctx, nLabels, t.workers(), func(_ context.Context, j int) error {
		name := labelNames[j]
		y := mat.Col(nil, j, yTrain)
		positives := 0
		for _, v := range y {
			if v != 0 {
				positives++
			}
		}
		if positives < minPositives {
			skipped[j] = errors.NewDegenerateLabelWarning(fold, name, positives, minPositives)
			logger.Warn("Skipping label with too few positive training examples",
				log.LabelKey, name,
				log.PositivesKey, positives,
			)
			return nil
		}

		start := time.Now()
		var proba []float64
		err := errors.SafeExecute("fit "+name, func() error {
			clf := t.NewClassifier()
			if err := clf.Fit(XTrain, y); err != nil {
				return err
			}
			var err error
			proba, err = clf.PredictProba(XTest)
			return err
		})
		if err != nil {
			return errors.NewModelError("PerLabelTrainer.FitPredict", "label "+name, err)
		}
		if len(proba) != nTest {
			return errors.NewDimensionError("PerLabelTrainer.FitPredict", nTest, len(proba), 0)
		}

		pred.SetCol(j, proba)

		logger.Debug("Label trained",
			log.LabelKey, name,
			log.PositivesKey, positives,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []*errors.DegenerateLabelWarning
	for _, w := range skipped {
		if w != nil {
			warnings = append(warnings, w)
		}
	}
	return pred, warnings, nil
}

func (t *PerLabelTrainer) workers() int {
	if t.Workers == 0 {
		return 1
	}
	return t.Workers
}

func (t *PerLabelTrainer) logger() log.Logger {
	if t.Logger == nil {
		return log.Nop()
	}
	return t.Logger
}
