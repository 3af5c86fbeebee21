package metrics

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// logLossEps clips probabilities away from 0 and 1
const logLossEps = 1e-15

func checkBinaryTargets(op string, yTrue, yScore []float64) error {
	if len(yTrue) == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if len(yTrue) != len(yScore) {
		return errors.NewDimensionError(op, len(yTrue), len(yScore), 0)
	}
	for _, v := range yTrue {
		if v != 0 && v != 1 {
			return errors.NewValidationError("y_true", "must contain only 0 and 1", v)
		}
	}
	return nil
}

// BinaryLogLoss returns the mean negative log-likelihood of 0/1 targets under
// predicted positive-class probabilities.
func BinaryLogLoss(yTrue, yProba []float64) (float64, error) {
	if err := checkBinaryTargets("BinaryLogLoss", yTrue, yProba); err != nil {
		return 0, err
	}
	sum := 0.0
	for i, y := range yTrue {
		p := errors.ClipValue(yProba[i], logLossEps, 1-logLossEps)
		sum -= y*math.Log(p) + (1-y)*math.Log(1-p)
	}
	return sum / float64(len(yTrue)), nil
}

// AUC returns the area under the ROC curve, with ties counted as one half.
// When only one class is present the area is undefined and 0.5 is returned.
func AUC(yTrue, yScore []float64) (float64, error) {
	if err := checkBinaryTargets("AUC", yTrue, yScore); err != nil {
		return 0, err
	}

	idx := make([]int, len(yScore))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return yScore[idx[a]] < yScore[idx[b]] })

	// rank-sum (Mann-Whitney U) with average ranks for ties
	var nPos, nNeg, rankSum float64
	for start := 0; start < len(idx); {
		end := start
		for end < len(idx) && yScore[idx[end]] == yScore[idx[start]] {
			end++
		}
		avgRank := float64(start+end+1) / 2
		for _, i := range idx[start:end] {
			if yTrue[i] == 1 {
				nPos++
				rankSum += avgRank
			} else {
				nNeg++
			}
		}
		start = end
	}
	if nPos == 0 || nNeg == 0 {
		return 0.5, nil
	}
	return (rankSum - nPos*(nPos+1)/2) / (nPos * nNeg), nil
}
