package model_selection

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// MultilabelStratifiedKFold implements iterative stratification for
// multi-label data (Sechidis, Tsoumakas and Vlahavas, 2011). Labels are
// processed rarest first; each sample carrying the current label goes to the
// fold that most wants that label, then the fold that wants the most samples.
type MultilabelStratifiedKFold struct {
	nSplits    int
	Shuffle    bool
	RandomSeed int
}

// NewMultilabelStratifiedKFold creates the splitter.
func NewMultilabelStratifiedKFold(nSplits int, shuffle bool, randomSeed int) *MultilabelStratifiedKFold {
	return &MultilabelStratifiedKFold{
		nSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// NSplits returns the number of splits
func (s *MultilabelStratifiedKFold) NSplits() int {
	return s.nSplits
}

// Name returns KindMultilabelStratified.
func (s *MultilabelStratifiedKFold) Name() string {
	return KindMultilabelStratified
}

// Split assigns every sample to exactly one test partition.
func (s *MultilabelStratifiedKFold) Split(Y mat.Matrix) ([]Fold, error) {
	nSamples, nLabels, err := checkLabels(Y)
	if err != nil {
		return nil, err
	}
	k := s.nSplits

	var rng *rand.Rand
	order := make([]int, nSamples)
	for i := range order {
		order[i] = i
	}
	if s.Shuffle {
		rng = newRand(s.RandomSeed)
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	labelsOf := make([][]int, nSamples)
	byLabel := make([][]int, nLabels)
	remaining := make([]int, nLabels)
	for _, i := range order {
		for l := 0; l < nLabels; l++ {
			if Y.At(i, l) != 0 {
				labelsOf[i] = append(labelsOf[i], l)
				byLabel[l] = append(byLabel[l], i)
				remaining[l]++
			}
		}
	}

	// desired sample and per-label counts for each fold
	wantSamples := make([]float64, k)
	wantLabel := make([][]float64, k)
	for f := 0; f < k; f++ {
		wantSamples[f] = float64(nSamples) / float64(k)
		wantLabel[f] = make([]float64, nLabels)
		for l := 0; l < nLabels; l++ {
			wantLabel[f][l] = float64(remaining[l]) / float64(k)
		}
	}

	assign := make([]int, nSamples)
	for i := range assign {
		assign[i] = -1
	}
	place := func(i, f int) {
		assign[i] = f
		wantSamples[f]--
		for _, l := range labelsOf[i] {
			wantLabel[f][l]--
			remaining[l]--
		}
	}

	for {
		label := -1
		for l := 0; l < nLabels; l++ {
			if remaining[l] > 0 && (label < 0 || remaining[l] < remaining[label]) {
				label = l
			}
		}
		if label < 0 {
			break
		}
		for _, i := range byLabel[label] {
			if assign[i] >= 0 {
				continue
			}
			place(i, chooseFold(wantLabel, label, wantSamples, rng))
		}
	}

	// samples without any positive label
	for _, i := range order {
		if assign[i] < 0 {
			place(i, chooseFold(nil, -1, wantSamples, rng))
		}
	}

	return foldsFromAssignment(assign, k), nil
}

// chooseFold picks the fold with the largest remaining demand for label, then
// for samples. Remaining ties go to a random fold when rng is set, else to the
// lowest index.
func chooseFold(wantLabel [][]float64, label int, wantSamples []float64, rng *rand.Rand) int {
	var candidates []int
	for f := range wantSamples {
		if len(candidates) == 0 {
			candidates = append(candidates, f)
			continue
		}
		c := candidates[0]
		cmp := 0
		if label >= 0 {
			cmp = compare(wantLabel[f][label], wantLabel[c][label])
		}
		if cmp == 0 {
			cmp = compare(wantSamples[f], wantSamples[c])
		}
		switch {
		case cmp > 0:
			candidates = append(candidates[:0], f)
		case cmp == 0:
			candidates = append(candidates, f)
		}
	}
	if rng == nil || len(candidates) == 1 {
		return candidates[0]
	}
	return candidates[rng.IntN(len(candidates))]
}

func compare(a, b float64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}
