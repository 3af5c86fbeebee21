// Package dataset holds the labeled sample set: documents, their binary label
// matrix and the ordered label catalogue. It also owns loading from CSV and the
// LabelFilter that drops rare labels.
package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// Dataset is an ordered set of N documents with an N×L binary label matrix.
// Every row has exactly L labels in the order given by LabelNames.
type Dataset struct {
	Texts      []string
	Labels     *mat.Dense
	LabelNames []string
}

// New validates and assembles a Dataset. labels may be nil only when there are
// no label columns.
func New(texts []string, labels *mat.Dense, labelNames []string) (*Dataset, error) {
	if len(texts) == 0 {
		return nil, errors.NewModelError("dataset.New", "no samples", errors.ErrEmptyData)
	}
	if labels == nil {
		if len(labelNames) != 0 {
			return nil, errors.NewValueError("dataset.New", "label names given without a label matrix")
		}
		return &Dataset{Texts: texts, LabelNames: []string{}}, nil
	}

	rows, cols := labels.Dims()
	if rows != len(texts) {
		return nil, errors.NewDimensionError("dataset.New", len(texts), rows, 0)
	}
	if cols != len(labelNames) {
		return nil, errors.NewDimensionError("dataset.New", len(labelNames), cols, 1)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := labels.At(i, j); v != 0 && v != 1 {
				return nil, errors.NewValidationError("labels",
					fmt.Sprintf("label %q of sample %d must be 0 or 1", labelNames[j], i), v)
			}
		}
	}
	return &Dataset{Texts: texts, Labels: labels, LabelNames: labelNames}, nil
}

// NSamples returns N.
func (d *Dataset) NSamples() int {
	return len(d.Texts)
}

// NLabels returns L.
func (d *Dataset) NLabels() int {
	return len(d.LabelNames)
}

// Subset materializes the texts and label rows at indices, in index order.
func (d *Dataset) Subset(indices []int) ([]string, *mat.Dense) {
	texts := make([]string, len(indices))
	for i, idx := range indices {
		texts[i] = d.Texts[idx]
	}
	return texts, SelectRows(d.Labels, indices)
}

// SelectRows copies the given rows of m into a new matrix. An empty selection
// yields nil because gonum does not allow zero-sized matrices.
func SelectRows(m mat.Matrix, indices []int) *mat.Dense {
	if len(indices) == 0 {
		return nil
	}
	_, cols := m.Dims()
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			out.Set(i, j, m.At(idx, j))
		}
	}
	return out
}
