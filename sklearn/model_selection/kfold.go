package model_selection

import (
	"gonum.org/v1/gonum/mat"
)

// KFold implements k-fold cross-validation splitter. With Shuffle the sample
// order is permuted once with a PCG source seeded by RandomSeed, then cut into
// contiguous test blocks; the first n%k blocks get one extra sample.
type KFold struct {
	nSplits    int
	Shuffle    bool
	RandomSeed int
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, randomSeed int) *KFold {
	return &KFold{
		nSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// NSplits returns the number of splits
func (kf *KFold) NSplits() int {
	return kf.nSplits
}

// Name returns KindKFold.
func (kf *KFold) Name() string {
	return KindKFold
}

// Split generates train/test indices for each fold. When there are fewer
// samples than folds, the trailing folds have empty test partitions.
func (kf *KFold) Split(Y mat.Matrix) ([]Fold, error) {
	nSamples, _, err := checkLabels(Y)
	if err != nil {
		return nil, err
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := newRand(kf.RandomSeed)
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	assign := make([]int, nSamples)
	foldSize := nSamples / kf.nSplits
	remainder := nSamples % kf.nSplits
	current := 0
	for k := 0; k < kf.nSplits; k++ {
		testSize := foldSize
		if k < remainder {
			testSize++
		}
		for _, idx := range indices[current : current+testSize] {
			assign[idx] = k
		}
		current += testSize
	}

	return foldsFromAssignment(assign, kf.nSplits), nil
}
