package ensemble

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/core/parallel"
)

// featureBins holds the quantized nonzero entries of one feature. Zero entries
// are not stored; their statistics are recovered from node totals.
type featureBins struct {
	// bounds are ascending cut points. Bin b holds values v with
	// bounds[b-1] < v <= bounds[b].
	bounds  []float64
	zeroBin int

	// nonzero entries ordered by bin, then by row
	rows []int32
	bins []uint16
}

// splittable reports whether the feature has at least two bins.
func (f *featureBins) splittable() bool {
	return len(f.bounds) > 0
}

// binOf returns the bin index of v.
func (f *featureBins) binOf(v float64) int {
	return sort.SearchFloat64s(f.bounds, v)
}

// binnedData is the quantized training matrix.
type binnedData struct {
	nSamples int
	features []featureBins
}

type entry struct {
	row int32
	val float64
}

// newBinnedData quantizes X into at most maxBin bins per feature. Sparse
// inputs implementing mat.NonZeroDoer are read without visiting zeros.
func newBinnedData(X mat.Matrix, maxBin, nThread int) *binnedData {
	rows, cols := X.Dims()
	perFeature := make([][]entry, cols)

	collect := func(i, j int, v float64) {
		if v != 0 {
			perFeature[j] = append(perFeature[j], entry{row: int32(i), val: v})
		}
	}
	if nz, ok := X.(mat.NonZeroDoer); ok {
		nz.DoNonZero(collect)
	} else {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				collect(i, j, X.At(i, j))
			}
		}
	}

	data := &binnedData{nSamples: rows, features: make([]featureBins, cols)}
	parallel.Parallelize(cols, nThread, func(start, end int) {
		for j := start; j < end; j++ {
			data.features[j] = quantize(perFeature[j], rows, maxBin)
		}
	})
	return data
}

// quantize builds equal-frequency bins over the distinct values of a feature,
// counting the implicit zeros.
func quantize(entries []entry, nSamples, maxBin int) featureBins {
	nZeros := nSamples - len(entries)

	counts := make(map[float64]int, len(entries)+1)
	for _, e := range entries {
		counts[e.val]++
	}
	if nZeros > 0 {
		counts[0] += nZeros
	}
	distinct := make([]float64, 0, len(counts))
	for v := range counts {
		distinct = append(distinct, v)
	}
	sort.Float64s(distinct)

	fb := featureBins{}
	if len(distinct) < 2 {
		return fb
	}

	if len(distinct) <= maxBin {
		fb.bounds = make([]float64, len(distinct)-1)
		for k := 0; k < len(distinct)-1; k++ {
			fb.bounds[k] = (distinct[k] + distinct[k+1]) / 2
		}
	} else {
		perBin := float64(nSamples) / float64(maxBin)
		acc := 0
		next := perBin
		for k := 0; k < len(distinct)-1 && len(fb.bounds) < maxBin-1; k++ {
			acc += counts[distinct[k]]
			if float64(acc) >= next {
				fb.bounds = append(fb.bounds, (distinct[k]+distinct[k+1])/2)
				for next <= float64(acc) {
					next += perBin
				}
			}
		}
		if len(fb.bounds) == 0 {
			fb.bounds = []float64{(distinct[0] + distinct[1]) / 2}
		}
	}

	fb.zeroBin = fb.binOf(0)
	fb.rows = make([]int32, len(entries))
	fb.bins = make([]uint16, len(entries))

	order := make([]int, len(entries))
	binOfEntry := make([]int, len(entries))
	for k, e := range entries {
		order[k] = k
		binOfEntry[k] = fb.binOf(e.val)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return binOfEntry[order[a]] < binOfEntry[order[b]]
	})
	for k, idx := range order {
		fb.rows[k] = entries[idx].row
		fb.bins[k] = uint16(binOfEntry[idx])
	}
	return fb
}
