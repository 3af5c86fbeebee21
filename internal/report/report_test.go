package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/metrics"
	"github.com/YuminosukeSato/multilabelcv/multilabel"
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

func sampleReport(t *testing.T) *multilabel.AggregateReport {
	t.Helper()
	names := []string{"homophobia", "racism"}
	yTrue := mat.NewDense(4, 2, []float64{
		1, 0,
		1, 1,
		0, 1,
		0, 0,
	})
	perfect, err := metrics.MultilabelReport(yTrue, yTrue, names)
	require.NoError(t, err)
	partial, err := metrics.MultilabelReport(yTrue, mat.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		0, 0,
		0, 0,
	}), names)
	require.NoError(t, err)

	return &multilabel.AggregateReport{
		Splitter:   "kfold",
		NSplits:    2,
		NSamples:   8,
		LabelNames: names,
		FoldReports: []*multilabel.FoldReport{
			multilabel.NewFoldReport(1, 4, 4, perfect, nil, time.Millisecond),
			multilabel.NewFoldReport(2, 4, 4, partial, []string{"racism"}, time.Millisecond),
		},
		MacroF1s:         []float64{perfect.MacroF1(), partial.MacroF1()},
		MeanMacroF1:      0.8333,
		StdMacroF1:       0.1667,
		MinPositiveCount: 4,
		Warnings: []error{
			errors.NewDegenerateLabelWarning(2, "racism", 1, 2),
		},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport(t)))
	out := buf.String()

	assert.Contains(t, out, "Fold 1 (train 4, test 4)")
	assert.Contains(t, out, "precision")
	assert.Contains(t, out, "homophobia")
	assert.Contains(t, out, "macro avg")
	assert.Contains(t, out, "weighted avg")
	assert.Contains(t, out, "skipped labels: [racism]")
	assert.Contains(t, out, "fold 1 macro F1: 1.0000")
	assert.Contains(t, out, "Mean macro F1: 0.8333 ± 0.1667 (2 valid folds)")
	assert.Contains(t, out, "Minimum positive count across labels: 4")
	assert.Contains(t, out, `label "racism" skipped in fold 2`)
	assert.NotContains(t, out, "cancelled")
}

func TestWriteTextLabelSummaries(t *testing.T) {
	rep := sampleReport(t)
	rep.Labels = []multilabel.LabelSummary{
		{
			Name:      "homophobia",
			Positives: 4,
			F1:        metrics.Summarize([]float64{1, 0.6667}),
			AUC:       metrics.Summarize([]float64{1, 0.75}),
			LogLoss:   metrics.Summarize([]float64{0.1, 0.3}),
		},
		{
			Name:      "racism",
			Positives: 4,
			F1:        metrics.Summarize([]float64{1}),
			AUC:       metrics.Summarize(nil),
			LogLoss:   metrics.Summarize(nil),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, rep))
	out := buf.String()
	assert.Contains(t, out, "Per-label summary")
	assert.Contains(t, out, "auc mean")
	assert.Contains(t, out, "0.8750")
	assert.Contains(t, out, "0.2000")
	assert.Regexp(t, `racism\s+4\s+1\.0000\s+0\.0000\s+-\s+-\s+1`, out)
}

func TestWriteTextCancelled(t *testing.T) {
	rep := &multilabel.AggregateReport{Splitter: "kfold", NSplits: 5, Cancelled: true}
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, rep))
	assert.Contains(t, buf.String(), "no valid folds")
	assert.Contains(t, buf.String(), "run cancelled")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport(t)))

	var decoded struct {
		Splitter string            `json:"splitter"`
		MacroF1s []float64         `json:"macro_f1s"`
		Warnings []string          `json:"warnings"`
		Folds    []json.RawMessage `json:"folds"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "kfold", decoded.Splitter)
	assert.Len(t, decoded.MacroF1s, 2)
	assert.Len(t, decoded.Folds, 2)
	require.Len(t, decoded.Warnings, 1)
	assert.Contains(t, decoded.Warnings[0], "racism")

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, SaveJSON(path, sampleReport(t)))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, buf.String(), string(raw))
}

func TestSavePlot(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"folds.png", "folds.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SavePlot(path, sampleReport(t)))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	assert.Error(t, SavePlot(filepath.Join(dir, "folds.unknown"), sampleReport(t)))

	_, err := NewPlot(&multilabel.AggregateReport{})
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))
}
