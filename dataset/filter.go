package dataset

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// DefaultMinCount is the minimum number of positive examples a label needs to
// stay in the catalogue.
const DefaultMinCount = 20

// PositiveCounts returns the number of positive entries in each column.
func PositiveCounts(labels mat.Matrix) []int {
	if labels == nil {
		return nil
	}
	rows, cols := labels.Dims()
	counts := make([]int, cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			if labels.At(i, j) != 0 {
				counts[j]++
			}
		}
	}
	return counts
}

// MinPositiveCount returns the smallest column positive count, or 0 for an
// empty label matrix.
func MinPositiveCount(labels mat.Matrix) int {
	counts := PositiveCounts(labels)
	if len(counts) == 0 {
		return 0
	}
	min := math.MaxInt
	for _, c := range counts {
		if c < min {
			min = c
		}
	}
	return min
}

// FilterLabels keeps the label columns with at least minCount positives,
// preserving their order. It fails with EmptyLabelSetError instead of returning
// an empty matrix, and is idempotent for a fixed minCount.
func FilterLabels(labels mat.Matrix, names []string, minCount int) (*mat.Dense, []string, error) {
	if minCount < 1 {
		return nil, nil, errors.NewValidationError("min_count", "must be at least 1", minCount)
	}
	if labels == nil {
		return nil, nil, errors.NewEmptyLabelSetError(minCount, 0)
	}
	rows, cols := labels.Dims()
	if len(names) != cols {
		return nil, nil, errors.NewDimensionError("FilterLabels", cols, len(names), 1)
	}

	counts := PositiveCounts(labels)
	var keep []int
	for j, c := range counts {
		if c >= minCount {
			keep = append(keep, j)
		}
	}
	if len(keep) == 0 {
		return nil, nil, errors.NewEmptyLabelSetError(minCount, cols)
	}

	out := mat.NewDense(rows, len(keep), nil)
	kept := make([]string, len(keep))
	for k, j := range keep {
		kept[k] = names[j]
		for i := 0; i < rows; i++ {
			out.Set(i, k, labels.At(i, j))
		}
	}
	return out, kept, nil
}

// FilterLabels returns a new Dataset restricted to the labels with at least
// minCount positives. The texts are shared with the receiver.
func (d *Dataset) FilterLabels(minCount int) (*Dataset, error) {
	if d.Labels == nil {
		if minCount < 1 {
			return nil, errors.NewValidationError("min_count", "must be at least 1", minCount)
		}
		return nil, errors.NewEmptyLabelSetError(minCount, 0)
	}
	labels, names, err := FilterLabels(d.Labels, d.LabelNames, minCount)
	if err != nil {
		return nil, err
	}
	return &Dataset{Texts: d.Texts, Labels: labels, LabelNames: names}, nil
}
