// Package linear_model provides an L2-regularized logistic regression usable as
// the per-label classifier of the cross-validation engine.
package linear_model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/core/model"
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// LogisticRegression is a binary logistic regression fitted by full-batch
// gradient descent. Sparse inputs implementing mat.RowNonZeroDoer are walked
// over their non-zeros only.
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	C            float64 // Inverse regularization strength (1/alpha)
	fitIntercept bool
	maxIter      int
	tol          float64 // Stop when every gradient component is below tol

	coef      []float64
	intercept float64
	nIter     int
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression with C=1, 100
// iterations and tol=1e-4.
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		C:            1.0,
		fitIntercept: true,
		maxIter:      100,
		tol:          1e-4,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// NewFactory returns a ClassifierFactory producing fresh LogisticRegressions
// configured with opts.
func NewFactory(opts ...LogisticRegressionOption) model.ClassifierFactory {
	return func() model.BinaryClassifier {
		return NewLogisticRegression(opts...)
	}
}

// WithC sets the inverse regularization strength
func WithC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithFitIntercept sets whether to fit intercept
func WithFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithMaxIter sets the maximum number of iterations
func WithMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithTol sets the tolerance for stopping criteria
func WithTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// Fit trains the model on 0/1 targets y.
func (lr *LogisticRegression) Fit(X mat.Matrix, y []float64) error {
	nSamples, nFeatures := X.Dims()
	if nSamples != len(y) {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, len(y), 0)
	}
	if nSamples == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if lr.C <= 0 {
		return errors.NewValidationError("C", "must be positive", lr.C)
	}
	if lr.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", lr.maxIter)
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return errors.NewValidationError("y", "logistic regression needs 0/1 targets",
				map[string]interface{}{"index": i, "value": v})
		}
	}

	lr.state.Reset()
	lr.coef = make([]float64, nFeatures)
	lr.intercept = 0
	lr.nIter = 0

	margins := make([]float64, nSamples)
	gradWeights := make([]float64, nFeatures)
	lambda := 1.0 / lr.C
	baseLearningRate := 1.0

	for iter := 0; iter < lr.maxIter; iter++ {
		lr.margins(X, margins)

		for j := range gradWeights {
			gradWeights[j] = 0
		}
		gradIntercept := 0.0
		for i := 0; i < nSamples; i++ {
			residual := sigmoid(margins[i]) - y[i]
			gradIntercept += residual
			forRow(X, i, func(j int, v float64) {
				gradWeights[j] += residual * v
			})
		}

		n := float64(nSamples)
		gradIntercept /= n
		maxGrad := 0.0
		if lr.fitIntercept {
			maxGrad = math.Abs(gradIntercept)
		}
		for j := range gradWeights {
			gradWeights[j] = gradWeights[j]/n + lambda*lr.coef[j]
			if g := math.Abs(gradWeights[j]); g > maxGrad {
				maxGrad = g
			}
		}

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range lr.coef {
			lr.coef[j] -= learningRate * gradWeights[j]
		}
		if lr.fitIntercept {
			lr.intercept -= learningRate * gradIntercept
		}
		lr.nIter = iter + 1

		if math.IsNaN(maxGrad) || math.IsInf(maxGrad, 0) {
			return errors.NewNumericalInstabilityError("LogisticRegression.Fit", []float64{maxGrad}, iter)
		}
		if maxGrad < lr.tol {
			break
		}
	}

	lr.state.SetFitted(nFeatures, nSamples)
	return nil
}

// PredictProba returns the positive-class probability for every row of X.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) ([]float64, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "PredictProba"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if nFeatures, _ := lr.state.Dimensions(); cols != nFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", nFeatures, cols, 1)
	}
	proba := make([]float64, rows)
	lr.margins(X, proba)
	for i, m := range proba {
		proba[i] = sigmoid(m)
	}
	return proba, nil
}

// Coef returns the fitted coefficients.
func (lr *LogisticRegression) Coef() []float64 {
	return lr.coef
}

// Intercept returns the fitted intercept.
func (lr *LogisticRegression) Intercept() float64 {
	return lr.intercept
}

// NIter returns the number of iterations run by the last Fit.
func (lr *LogisticRegression) NIter() int {
	return lr.nIter
}

// GetParams implements model.ParameterGetter.
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
	}
}

func (lr *LogisticRegression) margins(X mat.Matrix, dst []float64) {
	for i := range dst {
		z := lr.intercept
		forRow(X, i, func(j int, v float64) {
			z += v * lr.coef[j]
		})
		dst[i] = z
	}
}

// forRow calls fn for the entries of row i, skipping zeros of sparse inputs.
func forRow(X mat.Matrix, i int, fn func(j int, v float64)) {
	if sp, ok := X.(mat.RowNonZeroDoer); ok {
		sp.DoRowNonZero(i, func(_, j int, v float64) { fn(j, v) })
		return
	}
	_, cols := X.Dims()
	for j := 0; j < cols; j++ {
		if v := X.At(i, j); v != 0 {
			fn(j, v)
		}
	}
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1.0 + e)
}

var (
	_ model.BinaryClassifier = (*LogisticRegression)(nil)
	_ model.ParameterGetter  = (*LogisticRegression)(nil)
)
