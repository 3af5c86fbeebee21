package metrics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

func TestBinaryScores(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		yPred []float64
		want  ClassScores
	}{
		{
			name:  "Perfect predictions",
			yTrue: []float64{0, 1, 1, 0},
			yPred: []float64{0, 1, 1, 0},
			want:  ClassScores{Precision: 1, Recall: 1, F1: 1, Support: 2},
		},
		{
			name:  "Typical case",
			yTrue: []float64{1, 1, 1, 0, 0},
			yPred: []float64{1, 0, 1, 1, 0},
			want:  ClassScores{Precision: 2.0 / 3, Recall: 2.0 / 3, F1: 2.0 / 3, Support: 3},
		},
		{
			name:  "No predicted positives",
			yTrue: []float64{1, 0, 1},
			yPred: []float64{0, 0, 0},
			want:  ClassScores{Precision: 0, Recall: 0, F1: 0, Support: 2},
		},
		{
			name:  "No true positives",
			yTrue: []float64{0, 0},
			yPred: []float64{1, 0},
			want:  ClassScores{Precision: 0, Recall: 0, F1: 0, Support: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BinaryScores(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Precision, got.Precision, 1e-12)
			assert.InDelta(t, tt.want.Recall, got.Recall, 1e-12)
			assert.InDelta(t, tt.want.F1, got.F1, 1e-12)
			assert.Equal(t, tt.want.Support, got.Support)
			assert.False(t, math.IsNaN(got.F1))
		})
	}

	_, err := BinaryScores([]float64{1}, []float64{1, 0})
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}

func TestBinarize(t *testing.T) {
	proba := mat.NewDense(2, 2, []float64{0.5, 0.49, 0.9, 0})
	got := Binarize(proba, 0.5)
	assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{1, 0, 1, 0}), got))
}

func TestMultilabelReport(t *testing.T) {
	// label a: tp=2 fp=0 fn=0; label b: tp=1 fp=1 fn=1; label c: no support, one fp
	yTrue := mat.NewDense(4, 3, []float64{
		1, 1, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 0,
	})
	yPred := mat.NewDense(4, 3, []float64{
		1, 1, 0,
		1, 1, 0,
		0, 0, 1,
		0, 0, 0,
	})

	rep, err := MultilabelReport(yTrue, yPred, []string{"a", "b", "c"})
	require.NoError(t, err)

	a, ok := rep.Label("a")
	require.True(t, ok)
	assert.Equal(t, ClassScores{Precision: 1, Recall: 1, F1: 1, Support: 2}, a)

	b, _ := rep.Label("b")
	assert.InDelta(t, 0.5, b.F1, 1e-12)

	c, _ := rep.Label("c")
	assert.Equal(t, 0, c.Support)
	assert.Equal(t, 0.0, c.F1)

	// macro over a and b only
	assert.Equal(t, 2, rep.ScoredLabels())
	assert.True(t, rep.HasMacro())
	assert.InDelta(t, 0.75, rep.MacroF1(), 1e-12)
	assert.Equal(t, 4, rep.MacroAvg().Support)

	// micro: tp=3 fp=2 fn=1
	micro := rep.MicroAvg()
	assert.InDelta(t, 3.0/5, micro.Precision, 1e-12)
	assert.InDelta(t, 3.0/4, micro.Recall, 1e-12)

	// weighted by support 2 and 2
	assert.InDelta(t, 0.75, rep.WeightedAvg().F1, 1e-12)

	got, ok := rep.Get(MacroAvg)
	require.True(t, ok)
	assert.Equal(t, rep.MacroAvg(), got)
	assert.Equal(t, []string{"a", "b", "c", MicroAvg, MacroAvg, WeightedAvg}, rep.Keys())
	_, ok = rep.Get("missing")
	assert.False(t, ok)
}

func TestMultilabelReportNoSupport(t *testing.T) {
	yTrue := mat.NewDense(2, 2, nil)
	yPred := mat.NewDense(2, 2, []float64{1, 0, 0, 0})
	rep, err := MultilabelReport(yTrue, yPred, []string{"a", "b"})
	require.NoError(t, err)
	assert.False(t, rep.HasMacro())
	assert.Equal(t, 0.0, rep.MacroF1())
}

func TestMultilabelReportErrors(t *testing.T) {
	var de *errors.DimensionError
	_, err := MultilabelReport(mat.NewDense(2, 2, nil), mat.NewDense(3, 2, nil), []string{"a", "b"})
	assert.True(t, errors.As(err, &de))
	_, err = MultilabelReport(mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil), []string{"a"})
	assert.True(t, errors.As(err, &de))

	var ve *errors.ValidationError
	_, err = MultilabelReport(nil, mat.NewDense(2, 2, nil), []string{"a", "b"})
	assert.True(t, errors.As(err, &ve))
}

func TestClassificationReportJSON(t *testing.T) {
	rep, err := MultilabelReport(
		mat.NewDense(2, 1, []float64{1, 0}),
		mat.NewDense(2, 1, []float64{1, 0}),
		[]string{"racism"},
	)
	require.NoError(t, err)

	raw, err := json.Marshal(rep)
	require.NoError(t, err)

	var decoded map[string]map[string]float64
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 1.0, decoded["racism"]["f1-score"])
	assert.Equal(t, 1.0, decoded["macro avg"]["support"])
	assert.Contains(t, decoded, "weighted avg")
}

func TestBinaryLogLoss(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "Perfect predictions",
			yTrue: []float64{0, 0, 1, 1},
			yPred: []float64{0, 0, 1, 1},
			want:  0.0,
		},
		{
			name:  "Typical case",
			yTrue: []float64{0, 0, 1, 1},
			yPred: []float64{0.1, 0.2, 0.8, 0.9},
			want:  0.164252,
		},
		{
			name:  "Worst predictions",
			yTrue: []float64{0, 0, 1, 1},
			yPred: []float64{0.9, 0.9, 0.1, 0.1},
			want:  2.3025851,
		},
		{
			name:    "Non-binary labels",
			yTrue:   []float64{0, 0.5, 1},
			yPred:   []float64{0.1, 0.5, 0.9},
			wantErr: true,
		},
		{
			name:    "Empty vectors",
			yTrue:   []float64{},
			yPred:   []float64{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BinaryLogLoss(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Errorf("BinaryLogLoss() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-4 {
				t.Errorf("BinaryLogLoss() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAUC(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "Perfect classifier",
			yTrue: []float64{0, 0, 0, 1, 1, 1},
			yPred: []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9},
			want:  1.0,
		},
		{
			name:  "Worst classifier",
			yTrue: []float64{0, 0, 0, 1, 1, 1},
			yPred: []float64{0.9, 0.8, 0.7, 0.3, 0.2, 0.1},
			want:  0.0,
		},
		{
			name:  "Constant scores",
			yTrue: []float64{0, 1, 0, 1},
			yPred: []float64{0.5, 0.5, 0.5, 0.5},
			want:  0.5,
		},
		{
			name:  "Typical case",
			yTrue: []float64{0, 0, 1, 1},
			yPred: []float64{0.1, 0.4, 0.35, 0.8},
			want:  0.75,
		},
		{
			name:  "All negative labels",
			yTrue: []float64{0, 0, 0, 0},
			yPred: []float64{0.1, 0.4, 0.35, 0.8},
			want:  0.5,
		},
		{
			name:    "Dimension mismatch",
			yTrue:   []float64{0, 1},
			yPred:   []float64{0.1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AUC(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Errorf("AUC() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AUC() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{0.6, 0.6, 0.6, 0.6, 0.6})
	assert.InDelta(t, 0.6, s.Mean, 1e-12)
	assert.InDelta(t, 0.0, s.Std, 1e-12)
	assert.Equal(t, 5, s.N)

	s = Summarize([]float64{0.5, 0.7})
	assert.InDelta(t, 0.6, s.Mean, 1e-12)
	assert.InDelta(t, 0.1, s.Std, 1e-12) // population, not sample
	assert.Equal(t, 0.5, s.Min)
	assert.Equal(t, 0.7, s.Max)

	s = Summarize(nil)
	assert.Equal(t, 0, s.N)
	assert.True(t, math.IsNaN(s.Mean))
}

func TestSummaryJSON(t *testing.T) {
	raw, err := json.Marshal(Summarize(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"mean":null,"std":null,"min":null,"max":null,"n":0}`, string(raw))

	raw, err = json.Marshal(Summarize([]float64{0.5}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"mean":0.5,"std":0,"min":0.5,"max":0.5,"n":1}`, string(raw))
}
