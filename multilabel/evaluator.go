package multilabel

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/metrics"
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// DefaultThreshold turns a probability into a positive prediction when p >= 0.5.
const DefaultThreshold = 0.5

// FoldEvaluator binarizes a fold's probabilities and scores them against the
// test labels.
type FoldEvaluator struct {
	Threshold float64
}

// NewFoldEvaluator returns an evaluator with the default threshold.
func NewFoldEvaluator() FoldEvaluator {
	return FoldEvaluator{Threshold: DefaultThreshold}
}

// Score binarizes pred with p >= Threshold and returns the per-label and
// averaged scores against yTest.
func (e FoldEvaluator) Score(pred, yTest mat.Matrix, labelNames []string) (*metrics.ClassificationReport, error) {
	if math.IsNaN(e.Threshold) || e.Threshold < 0 || e.Threshold > 1 {
		return nil, errors.NewValidationError("threshold", "must be in [0, 1]", e.Threshold)
	}
	if pred == nil || yTest == nil {
		return nil, errors.NewValidationError("pred", "prediction and truth matrices are required", nil)
	}
	pr, pc := pred.Dims()
	tr, tc := yTest.Dims()
	if pr != tr {
		return nil, errors.NewDimensionError("FoldEvaluator.Score", tr, pr, 0)
	}
	if pc != tc {
		return nil, errors.NewDimensionError("FoldEvaluator.Score", tc, pc, 1)
	}
	if err := errors.CheckMatrix("FoldEvaluator.Score", pred, pr, pc); err != nil {
		return nil, err
	}
	return metrics.MultilabelReport(yTest, metrics.Binarize(pred, e.Threshold), labelNames)
}

// LabelRanking holds the threshold-free scores of one label in one fold.
type LabelRanking struct {
	AUC     float64 `json:"auc"`
	LogLoss float64 `json:"log_loss"`
}

// Rank returns ROC AUC and log loss of the raw probabilities for every label
// that was trained and has both classes in yTest. Other labels are absent from
// the result.
func (e FoldEvaluator) Rank(pred, yTest mat.Matrix, labelNames, skipped []string) (map[string]LabelRanking, error) {
	pr, pc := pred.Dims()
	tr, tc := yTest.Dims()
	if pr != tr || pc != tc || pc != len(labelNames) {
		return nil, errors.NewDimensionError("FoldEvaluator.Rank", tc, pc, 1)
	}
	skip := make(map[string]struct{}, len(skipped))
	for _, name := range skipped {
		skip[name] = struct{}{}
	}

	out := make(map[string]LabelRanking, pc)
	proba := make([]float64, pr)
	truth := make([]float64, pr)
	for j, name := range labelNames {
		if _, ok := skip[name]; ok {
			continue
		}
		pos := 0
		for i := 0; i < pr; i++ {
			proba[i] = pred.At(i, j)
			truth[i] = yTest.At(i, j)
			if truth[i] != 0 {
				pos++
			}
		}
		if pos == 0 || pos == pr {
			continue
		}
		auc, err := metrics.AUC(truth, proba)
		if err != nil {
			return nil, err
		}
		loss, err := metrics.BinaryLogLoss(truth, proba)
		if err != nil {
			return nil, err
		}
		out[name] = LabelRanking{AUC: auc, LogLoss: loss}
	}
	return out, nil
}
