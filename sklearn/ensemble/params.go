package ensemble

import (
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// Objective and metric names accepted by TrainingParams.
const (
	ObjectiveBinaryLogistic = "binary:logistic"
	MetricLogLoss           = "logloss"
)

// TrainingParams contains all training hyperparameters. Names follow the
// XGBoost parameter set the evaluation pipeline was tuned with.
type TrainingParams struct {
	// Basic parameters
	NumRounds    int     `json:"num_boost_round" yaml:"num_rounds"`
	LearningRate float64 `json:"eta" yaml:"learning_rate"`
	MaxDepth     int     `json:"max_depth" yaml:"max_depth"`

	// Regularization
	Lambda         float64 `json:"lambda" yaml:"lambda"`
	Gamma          float64 `json:"gamma" yaml:"gamma"`
	MinChildWeight float64 `json:"min_child_weight" yaml:"min_child_weight"`

	// Histogram parameters
	MaxBin int `json:"max_bin" yaml:"max_bin"`

	// Objective
	Objective  string  `json:"objective" yaml:"objective"`
	EvalMetric string  `json:"eval_metric" yaml:"eval_metric"`
	BaseScore  float64 `json:"base_score" yaml:"base_score"`

	// Other
	NThread   int `json:"nthread" yaml:"nthread"` // Goroutines used to bin features; below 1 uses every CPU
	Verbosity int `json:"verbosity" yaml:"verbosity"`
}

// DefaultTrainingParams returns max_depth=6, 100 rounds, binary:logistic,
// logloss and base_score=0.5, with XGBoost defaults for the rest. Binning runs
// on one goroutine since labels already train concurrently.
func DefaultTrainingParams() TrainingParams {
	return TrainingParams{
		NumRounds:      100,
		LearningRate:   0.3,
		MaxDepth:       6,
		Lambda:         1,
		Gamma:          0,
		MinChildWeight: 1,
		MaxBin:         256,
		Objective:      ObjectiveBinaryLogistic,
		EvalMetric:     MetricLogLoss,
		BaseScore:      0.5,
		NThread:        1,
	}
}

// Validate checks parameter ranges.
func (p TrainingParams) Validate() error {
	switch {
	case p.NumRounds < 1:
		return errors.NewValidationError("num_rounds", "must be at least 1", p.NumRounds)
	case p.LearningRate <= 0 || p.LearningRate > 1:
		return errors.NewValidationError("learning_rate", "must be in (0, 1]", p.LearningRate)
	case p.MaxDepth < 1:
		return errors.NewValidationError("max_depth", "must be at least 1", p.MaxDepth)
	case p.Lambda < 0:
		return errors.NewValidationError("lambda", "must be non-negative", p.Lambda)
	case p.Gamma < 0:
		return errors.NewValidationError("gamma", "must be non-negative", p.Gamma)
	case p.MinChildWeight < 0:
		return errors.NewValidationError("min_child_weight", "must be non-negative", p.MinChildWeight)
	case p.MaxBin < 2 || p.MaxBin > 65536:
		return errors.NewValidationError("max_bin", "must be in [2, 65536]", p.MaxBin)
	case p.BaseScore <= 0 || p.BaseScore >= 1:
		return errors.NewValidationError("base_score", "must be in (0, 1) for binary:logistic", p.BaseScore)
	case p.Objective != ObjectiveBinaryLogistic:
		return errors.NewValidationError("objective", "unsupported objective", p.Objective)
	case p.EvalMetric != MetricLogLoss:
		return errors.NewValidationError("eval_metric", "unsupported metric", p.EvalMetric)
	}
	return nil
}

// ToMap returns the parameters under their XGBoost names.
func (p TrainingParams) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"num_boost_round":  p.NumRounds,
		"eta":              p.LearningRate,
		"max_depth":        p.MaxDepth,
		"lambda":           p.Lambda,
		"gamma":            p.Gamma,
		"min_child_weight": p.MinChildWeight,
		"max_bin":          p.MaxBin,
		"objective":        p.Objective,
		"eval_metric":      p.EvalMetric,
		"base_score":       p.BaseScore,
		"nthread":          p.NThread,
	}
}
