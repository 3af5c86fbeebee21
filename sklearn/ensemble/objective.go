package ensemble

import (
	"math"

	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// ObjectiveFunction defines the interface for boosting objectives. Predictions
// passed in are raw margins.
type ObjectiveFunction interface {
	// Gradient returns the first and second derivative of the loss with
	// respect to the margin.
	Gradient(margin, target float64) (grad, hess float64)

	// Loss returns the evaluation metric contribution of one sample.
	Loss(margin, target float64) float64

	// InitMargin returns the margin every sample starts from.
	InitMargin() float64

	// Transform maps a margin to the output scale.
	Transform(margin float64) float64

	// Name returns the name of the objective.
	Name() string
}

// hessian floor used by XGBoost's logistic objective
const minHessian = 1e-16

// probability clamp for logloss evaluation
const logLossEps = 1e-15

// BinaryLogistic implements binary:logistic with the logloss metric.
type BinaryLogistic struct {
	baseScore float64
}

// NewBinaryLogistic creates the objective. baseScore is the initial
// probability and must lie in (0, 1).
func NewBinaryLogistic(baseScore float64) *BinaryLogistic {
	return &BinaryLogistic{baseScore: baseScore}
}

// Gradient implements ObjectiveFunction.
func (o *BinaryLogistic) Gradient(margin, target float64) (float64, float64) {
	p := sigmoid(margin)
	return p - target, math.Max(p*(1-p), minHessian)
}

// Loss implements ObjectiveFunction.
func (o *BinaryLogistic) Loss(margin, target float64) float64 {
	p := errors.ClipValue(sigmoid(margin), logLossEps, 1-logLossEps)
	return -(target*math.Log(p) + (1-target)*math.Log(1-p))
}

// InitMargin implements ObjectiveFunction.
func (o *BinaryLogistic) InitMargin() float64 {
	return math.Log(o.baseScore / (1 - o.baseScore))
}

// Transform implements ObjectiveFunction.
func (o *BinaryLogistic) Transform(margin float64) float64 {
	return sigmoid(margin)
}

// Name implements ObjectiveFunction.
func (o *BinaryLogistic) Name() string {
	return ObjectiveBinaryLogistic
}

// CreateObjectiveFunction returns the objective named in params.
func CreateObjectiveFunction(params TrainingParams) (ObjectiveFunction, error) {
	switch params.Objective {
	case ObjectiveBinaryLogistic:
		return NewBinaryLogistic(params.BaseScore), nil
	default:
		return nil, errors.NewValidationError("objective", "unsupported objective", params.Objective)
	}
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + errors.StabilizeExp(-x))
	}
	e := errors.StabilizeExp(x)
	return e / (1 + e)
}
