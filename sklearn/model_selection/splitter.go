// Package model_selection provides the partitioning strategies used by the
// cross-validation engine: plain K-fold and iterative multilabel-stratified
// K-fold. Both are deterministic for a fixed (n_splits, shuffle, seed).
package model_selection

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// Splitter kinds accepted by NewSplitter.
const (
	KindKFold                = "kfold"
	KindMultilabelStratified = "multilabel-stratified-kfold"
)

// Kinds lists the accepted splitter kinds.
func Kinds() []string {
	return []string{KindKFold, KindMultilabelStratified}
}

// Fold represents a single fold in cross-validation. Both index slices are
// sorted ascending.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// Overlaps reports whether any index appears in both partitions.
func (f Fold) Overlaps() bool {
	test := make(map[int]struct{}, len(f.TestIndices))
	for _, i := range f.TestIndices {
		test[i] = struct{}{}
	}
	for _, i := range f.TrainIndices {
		if _, ok := test[i]; ok {
			return true
		}
	}
	return false
}

// Splitter defines interface for cross-validation splitters. Split receives
// the N×L label matrix; N is taken from its rows.
type Splitter interface {
	Split(Y mat.Matrix) ([]Fold, error)
	NSplits() int
	Name() string
}

// NewSplitter creates the splitter named by kind.
func NewSplitter(kind string, nSplits int, shuffle bool, seed int) (Splitter, error) {
	if nSplits < 2 {
		return nil, errors.NewValidationError("n_splits", "must be at least 2", nSplits)
	}
	switch kind {
	case KindKFold:
		return NewKFold(nSplits, shuffle, seed), nil
	case KindMultilabelStratified:
		return NewMultilabelStratifiedKFold(nSplits, shuffle, seed), nil
	default:
		return nil, errors.NewValidationError("splitter", "unknown splitter kind", kind)
	}
}

func newRand(seed int) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// foldsFromAssignment turns a sample→fold mapping into folds.
func foldsFromAssignment(assign []int, nSplits int) []Fold {
	folds := make([]Fold, nSplits)
	for k := range folds {
		folds[k] = Fold{TrainIndices: []int{}, TestIndices: []int{}}
	}
	for i, k := range assign {
		for j := range folds {
			if j == k {
				folds[j].TestIndices = append(folds[j].TestIndices, i)
			} else {
				folds[j].TrainIndices = append(folds[j].TrainIndices, i)
			}
		}
	}
	for k := range folds {
		sort.Ints(folds[k].TestIndices)
		sort.Ints(folds[k].TrainIndices)
	}
	return folds
}

func checkLabels(Y mat.Matrix) (int, int, error) {
	if Y == nil {
		return 0, 0, errors.NewValidationError("Y", "label matrix is required", nil)
	}
	n, l := Y.Dims()
	return n, l, nil
}
