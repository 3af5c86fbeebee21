// Package ensemble implements gradient-boosted decision trees for binary
// classification, configured the way XGBoost's binary:logistic booster is.
//
// The trees are grown on quantile histograms. Sparse inputs (such as the
// TF-IDF matrices produced by sklearn/feature_extraction) are binned without
// materializing their zeros.
//
// Example:
//
//	clf := ensemble.NewGBDTClassifier(ensemble.WithMaxDepth(6), ensemble.WithNumRounds(100))
//	if err := clf.Fit(X, y); err != nil {
//	    return err
//	}
//	proba, err := clf.PredictProba(XTest)
package ensemble

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/core/model"
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
	"github.com/YuminosukeSato/multilabelcv/pkg/log"
)

// GBDTClassifier is a binary gradient boosting classifier.
type GBDTClassifier struct {
	state  *model.StateManager
	params TrainingParams
	logger log.Logger

	model *Model
}

// GBDTOption is a functional option for GBDTClassifier
type GBDTOption func(*GBDTClassifier)

// NewGBDTClassifier creates a classifier with DefaultTrainingParams.
func NewGBDTClassifier(opts ...GBDTOption) *GBDTClassifier {
	c := &GBDTClassifier{
		state:  model.NewStateManager(),
		params: DefaultTrainingParams(),
		logger: log.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFactory returns a ClassifierFactory producing classifiers with opts.
func NewFactory(opts ...GBDTOption) model.ClassifierFactory {
	return func() model.BinaryClassifier {
		return NewGBDTClassifier(opts...)
	}
}

// WithParams replaces every training parameter.
func WithParams(params TrainingParams) GBDTOption {
	return func(c *GBDTClassifier) {
		c.params = params
	}
}

// WithNumRounds sets the number of boosting rounds.
func WithNumRounds(n int) GBDTOption {
	return func(c *GBDTClassifier) {
		c.params.NumRounds = n
	}
}

// WithMaxDepth sets the maximum tree depth.
func WithMaxDepth(depth int) GBDTOption {
	return func(c *GBDTClassifier) {
		c.params.MaxDepth = depth
	}
}

// WithLearningRate sets eta.
func WithLearningRate(eta float64) GBDTOption {
	return func(c *GBDTClassifier) {
		c.params.LearningRate = eta
	}
}

// WithLambda sets the L2 regularization on leaf weights.
func WithLambda(lambda float64) GBDTOption {
	return func(c *GBDTClassifier) {
		c.params.Lambda = lambda
	}
}

// WithMinChildWeight sets the minimum hessian sum per child.
func WithMinChildWeight(w float64) GBDTOption {
	return func(c *GBDTClassifier) {
		c.params.MinChildWeight = w
	}
}

// WithBaseScore sets the initial probability.
func WithBaseScore(p float64) GBDTOption {
	return func(c *GBDTClassifier) {
		c.params.BaseScore = p
	}
}

// WithMaxBin sets the histogram resolution.
func WithMaxBin(n int) GBDTOption {
	return func(c *GBDTClassifier) {
		c.params.MaxBin = n
	}
}

// WithNThread sets how many goroutines bin the features. Values below 1 use
// every CPU.
func WithNThread(n int) GBDTOption {
	return func(c *GBDTClassifier) {
		c.params.NThread = n
	}
}

// WithLogger sets the logger used for training progress. Progress is only
// logged when verbosity is positive.
func WithLogger(logger log.Logger, verbosity int) GBDTOption {
	return func(c *GBDTClassifier) {
		if logger != nil {
			c.logger = logger
		}
		c.params.Verbosity = verbosity
	}
}

// Fit trains the classifier. y must contain only 0 and 1.
func (c *GBDTClassifier) Fit(X mat.Matrix, y []float64) error {
	rows, _ := X.Dims()
	if rows != len(y) {
		return errors.NewDimensionError("GBDTClassifier.Fit", rows, len(y), 0)
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return errors.NewValidationError("y", "binary:logistic needs 0/1 targets",
				map[string]interface{}{"index": i, "value": v})
		}
	}

	c.state.Reset()
	m, err := NewTrainer(c.params, c.logger).Fit(X, y)
	if err != nil {
		return err
	}
	c.model = m
	c.state.SetFitted(m.NumFeatures, rows)
	return nil
}

// PredictProba returns the positive-class probability for every row of X.
func (c *GBDTClassifier) PredictProba(X mat.Matrix) ([]float64, error) {
	if err := c.state.RequireFitted("GBDTClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	_, cols := X.Dims()
	if nFeatures, _ := c.state.Dimensions(); cols != nFeatures {
		return nil, errors.NewDimensionError("GBDTClassifier.PredictProba", nFeatures, cols, 1)
	}

	proba := c.model.Predict(X)
	for i, p := range proba {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, errors.NewNumericalInstabilityError("GBDTClassifier.PredictProba", proba[i:i+1], len(c.model.Trees))
		}
	}
	return proba, nil
}

// Model returns the trained ensemble, or nil before Fit.
func (c *GBDTClassifier) Model() *Model {
	return c.model
}

// GetParams implements model.ParameterGetter.
func (c *GBDTClassifier) GetParams() map[string]interface{} {
	return c.params.ToMap()
}

var (
	_ model.BinaryClassifier = (*GBDTClassifier)(nil)
	_ model.ParameterGetter  = (*GBDTClassifier)(nil)
)
