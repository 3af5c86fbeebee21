package model_selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

func checkPartition(t *testing.T, folds []Fold, n int) {
	t.Helper()
	seen := make([]int, n)
	for k, f := range folds {
		assert.False(t, f.Overlaps(), "fold %d overlaps", k)
		assert.Equal(t, n, len(f.TrainIndices)+len(f.TestIndices), "fold %d", k)
		assert.IsIncreasing(t, append([]int{-1}, f.TestIndices...))
		assert.IsIncreasing(t, append([]int{-1}, f.TrainIndices...))
		for _, i := range f.TestIndices {
			seen[i]++
		}
	}
	for i, c := range seen {
		assert.Equal(t, 1, c, "sample %d tested %d times", i, c)
	}
}

// rareLabels has 60 samples; label 0 on every 3rd, label 1 on 10 samples,
// label 2 on 5 samples.
func rareLabels() *mat.Dense {
	Y := mat.NewDense(60, 3, nil)
	for i := 0; i < 60; i++ {
		if i%3 == 0 {
			Y.Set(i, 0, 1)
		}
		if i < 10 {
			Y.Set(i, 1, 1)
		}
		if i >= 55 {
			Y.Set(i, 2, 1)
		}
	}
	return Y
}

func TestKFold(t *testing.T) {
	Y := mat.NewDense(23, 1, nil)

	t.Run("partition", func(t *testing.T) {
		folds, err := NewKFold(5, true, 30).Split(Y)
		require.NoError(t, err)
		require.Len(t, folds, 5)
		checkPartition(t, folds, 23)
		sizes := []int{}
		for _, f := range folds {
			sizes = append(sizes, len(f.TestIndices))
		}
		assert.Equal(t, []int{5, 5, 5, 4, 4}, sizes)
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := NewKFold(5, true, 30).Split(Y)
		require.NoError(t, err)
		b, err := NewKFold(5, true, 30).Split(Y)
		require.NoError(t, err)
		assert.Equal(t, a, b)

		c, err := NewKFold(5, true, 31).Split(Y)
		require.NoError(t, err)
		assert.NotEqual(t, a, c)
	})

	t.Run("no shuffle is contiguous", func(t *testing.T) {
		folds, err := NewKFold(4, false, 0).Split(mat.NewDense(8, 1, nil))
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, folds[0].TestIndices)
		assert.Equal(t, []int{6, 7}, folds[3].TestIndices)
		assert.Equal(t, []int{2, 3, 4, 5, 6, 7}, folds[0].TrainIndices)
	})

	t.Run("more folds than samples", func(t *testing.T) {
		folds, err := NewKFold(5, false, 0).Split(mat.NewDense(3, 1, nil))
		require.NoError(t, err)
		assert.Empty(t, folds[3].TestIndices)
		assert.Empty(t, folds[4].TestIndices)
		checkPartition(t, folds, 3)
	})
}

func TestMultilabelStratifiedKFold(t *testing.T) {
	Y := rareLabels()

	t.Run("partition", func(t *testing.T) {
		folds, err := NewMultilabelStratifiedKFold(5, true, 30).Split(Y)
		require.NoError(t, err)
		checkPartition(t, folds, 60)
	})

	t.Run("rare labels spread across folds", func(t *testing.T) {
		for _, shuffle := range []bool{true, false} {
			folds, err := NewMultilabelStratifiedKFold(5, shuffle, 7).Split(Y)
			require.NoError(t, err)
			for k, f := range folds {
				var c0, c1, c2 int
				for _, i := range f.TestIndices {
					c0 += int(Y.At(i, 0))
					c1 += int(Y.At(i, 1))
					c2 += int(Y.At(i, 2))
				}
				assert.Equal(t, 1, c2, "fold %d label 2", k)
				assert.Equal(t, 2, c1, "fold %d label 1", k)
				assert.Equal(t, 4, c0, "fold %d label 0", k)
				assert.Equal(t, 12, len(f.TestIndices), "fold %d size", k)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := NewMultilabelStratifiedKFold(5, true, 30).Split(Y)
		require.NoError(t, err)
		b, err := NewMultilabelStratifiedKFold(5, true, 30).Split(Y)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestNewSplitter(t *testing.T) {
	s, err := NewSplitter(KindKFold, 5, true, 30)
	require.NoError(t, err)
	assert.Equal(t, "kfold", s.Name())
	assert.Equal(t, 5, s.NSplits())

	s, err = NewSplitter(KindMultilabelStratified, 3, false, 0)
	require.NoError(t, err)
	assert.Equal(t, "multilabel-stratified-kfold", s.Name())

	var ve *errors.ValidationError
	_, err = NewSplitter("leave-one-out", 5, true, 0)
	assert.True(t, errors.As(err, &ve))
	_, err = NewSplitter(KindKFold, 1, true, 0)
	assert.True(t, errors.As(err, &ve))

	_, err = NewKFold(2, false, 0).Split(nil)
	assert.True(t, errors.As(err, &ve))
}

func TestFoldOverlaps(t *testing.T) {
	assert.False(t, Fold{TrainIndices: []int{0, 1}, TestIndices: []int{2}}.Overlaps())
	assert.True(t, Fold{TrainIndices: []int{0, 1}, TestIndices: []int{1}}.Overlaps())
}
