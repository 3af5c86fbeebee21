package multilabel

import (
	"encoding/json"
	"time"

	"github.com/YuminosukeSato/multilabelcv/metrics"
)

// FoldReport is the immutable result of one valid fold.
type FoldReport struct {
	fold          int
	trainSize     int
	testSize      int
	report        *metrics.ClassificationReport
	skippedLabels []string
	ranking       map[string]LabelRanking
	duration      time.Duration
}

// NewFoldReport wraps the classification report of a scored fold.
func NewFoldReport(fold, trainSize, testSize int, report *metrics.ClassificationReport, skippedLabels []string, duration time.Duration) *FoldReport {
	return &FoldReport{
		fold:          fold,
		trainSize:     trainSize,
		testSize:      testSize,
		report:        report,
		skippedLabels: append([]string(nil), skippedLabels...),
		duration:      duration,
	}
}

// Fold returns the 1-based fold number.
func (f *FoldReport) Fold() int { return f.fold }

// TrainSize returns the number of training samples.
func (f *FoldReport) TrainSize() int { return f.trainSize }

// TestSize returns the number of test samples.
func (f *FoldReport) TestSize() int { return f.testSize }

// Report returns the fold's classification report.
func (f *FoldReport) Report() *metrics.ClassificationReport { return f.report }

// MacroF1 returns the fold's macro-averaged F1.
func (f *FoldReport) MacroF1() float64 { return f.report.MacroF1() }

// SkippedLabels returns the labels predicted all-negative for lack of
// positive training examples.
func (f *FoldReport) SkippedLabels() []string {
	return append([]string(nil), f.skippedLabels...)
}

// Ranking returns the AUC and log loss of label, if the fold could rank it.
func (f *FoldReport) Ranking(label string) (LabelRanking, bool) {
	r, ok := f.ranking[label]
	return r, ok
}

// Duration returns the wall time spent on the fold.
func (f *FoldReport) Duration() time.Duration { return f.duration }

// MarshalJSON implements json.Marshaler.
func (f *FoldReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Fold          int                           `json:"fold"`
		TrainSize     int                           `json:"train_size"`
		TestSize      int                           `json:"test_size"`
		MacroF1       float64                       `json:"macro_f1"`
		SkippedLabels []string                      `json:"skipped_labels,omitempty"`
		DurationMs    int64                         `json:"duration_ms"`
		Report        *metrics.ClassificationReport `json:"report"`
		Ranking       map[string]LabelRanking       `json:"ranking,omitempty"`
	}{
		Fold:          f.fold,
		TrainSize:     f.trainSize,
		TestSize:      f.testSize,
		MacroF1:       f.MacroF1(),
		SkippedLabels: f.skippedLabels,
		DurationMs:    f.duration.Milliseconds(),
		Report:        f.report,
		Ranking:       f.ranking,
	})
}

// LabelSummary describes one label across the valid folds in which it had
// test support.
type LabelSummary struct {
	Name      string          `json:"name"`
	Positives int             `json:"positives"` // across the whole dataset
	Precision metrics.Summary `json:"precision"`
	Recall    metrics.Summary `json:"recall"`
	F1        metrics.Summary `json:"f1"`
	// AUC and LogLoss cover the folds where the label was trained and had
	// both classes in the test partition.
	AUC     metrics.Summary `json:"auc"`
	LogLoss metrics.Summary `json:"log_loss"`
}

// AggregateReport is the outcome of a cross-validation run.
type AggregateReport struct {
	Splitter   string   `json:"splitter"`
	NSplits    int      `json:"n_splits"`
	NSamples   int      `json:"n_samples"`
	LabelNames []string `json:"labels"`

	FoldReports []*FoldReport `json:"folds"`
	// MacroF1s holds one macro F1 per valid fold, in fold order. Mean and
	// std are undefined without valid folds; JSON then carries null.
	MacroF1s    []float64 `json:"macro_f1s"`
	MeanMacroF1 float64   `json:"mean_macro_f1"`
	StdMacroF1  float64   `json:"std_macro_f1"` // population (ddof=0)

	// MinPositiveCount is the smallest total positive count of any label in
	// the evaluated label set. Diagnostic only.
	MinPositiveCount int `json:"min_positive_count"`

	Labels []LabelSummary `json:"label_summaries"`

	// Warnings lists skipped folds and labels in the order they occurred.
	Warnings []error `json:"-"`

	// Cancelled is set when the context ended before every fold ran.
	Cancelled bool          `json:"cancelled"`
	Duration  time.Duration `json:"-"`
}

// ValidFolds returns the number of folds that entered the statistics.
func (a *AggregateReport) ValidFolds() int { return len(a.MacroF1s) }

// MacroF1Summary summarizes the per-fold macro F1 values.
func (a *AggregateReport) MacroF1Summary() metrics.Summary {
	return metrics.Summarize(a.MacroF1s)
}

// MarshalJSON implements json.Marshaler. Warnings are rendered as messages.
// Mean and std are null when no fold was valid.
func (a *AggregateReport) MarshalJSON() ([]byte, error) {
	type plain AggregateReport
	warnings := make([]string, len(a.Warnings))
	for i, w := range a.Warnings {
		warnings[i] = w.Error()
	}
	var mean, std *float64
	if a.ValidFolds() > 0 {
		mean, std = &a.MeanMacroF1, &a.StdMacroF1
	}
	return json.Marshal(struct {
		plain
		MeanMacroF1 *float64 `json:"mean_macro_f1"`
		StdMacroF1  *float64 `json:"std_macro_f1"`
		Warnings    []string `json:"warnings"`
		DurationMs  int64    `json:"duration_ms"`
	}{plain(*a), mean, std, warnings, a.Duration.Milliseconds()})
}

// summarize fills the fold statistics and per-label summaries from the fold
// reports collected so far.
func (a *AggregateReport) summarize(positives []int) {
	a.MacroF1s = make([]float64, len(a.FoldReports))
	for i, f := range a.FoldReports {
		a.MacroF1s[i] = f.MacroF1()
	}
	if len(a.MacroF1s) > 0 {
		s := metrics.Summarize(a.MacroF1s)
		a.MeanMacroF1, a.StdMacroF1 = s.Mean, s.Std
	}

	a.Labels = make([]LabelSummary, len(a.LabelNames))
	for j, name := range a.LabelNames {
		var p, r, f1, auc, loss []float64
		for _, f := range a.FoldReports {
			if rk, ok := f.ranking[name]; ok {
				auc = append(auc, rk.AUC)
				loss = append(loss, rk.LogLoss)
			}
			s := f.report.At(j)
			if s.Support == 0 {
				continue
			}
			p = append(p, s.Precision)
			r = append(r, s.Recall)
			f1 = append(f1, s.F1)
		}
		a.Labels[j] = LabelSummary{
			Name:      name,
			Positives: positives[j],
			Precision: metrics.Summarize(p),
			Recall:    metrics.Summarize(r),
			F1:        metrics.Summarize(f1),
			AUC:       metrics.Summarize(auc),
			LogLoss:   metrics.Summarize(loss),
		}
	}
}
