// Package report renders an AggregateReport for people (aligned text), for
// machines (JSON) and as a chart of the per-fold macro F1.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/YuminosukeSato/multilabelcv/metrics"
	"github.com/YuminosukeSato/multilabelcv/multilabel"
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// WriteText writes the per-fold classification reports, the macro F1 of each
// fold, mean ± std and the warnings.
func WriteText(w io.Writer, rep *multilabel.AggregateReport) error {
	ew := &errWriter{w: w}

	for _, f := range rep.FoldReports {
		ew.printf("Fold %d (train %d, test %d)\n", f.Fold(), f.TrainSize(), f.TestSize())
		if skipped := f.SkippedLabels(); len(skipped) > 0 {
			ew.printf("  skipped labels: %v\n", skipped)
		}
		writeClassificationReport(ew, f.Report())
		ew.printf("  macro F1: %.4f\n\n", f.MacroF1())
	}

	ew.printf("Cross-validation (%s, %d splits)\n", rep.Splitter, rep.NSplits)
	for _, f := range rep.FoldReports {
		ew.printf("  fold %d macro F1: %.4f\n", f.Fold(), f.MacroF1())
	}
	if rep.ValidFolds() > 0 {
		ew.printf("  Mean macro F1: %.4f ± %.4f (%d valid folds)\n", rep.MeanMacroF1, rep.StdMacroF1, rep.ValidFolds())
	} else {
		ew.printf("  no valid folds\n")
	}
	ew.printf("  Minimum positive count across labels: %d\n", rep.MinPositiveCount)
	if rep.Cancelled {
		ew.printf("  run cancelled: statistics cover completed folds only\n")
	}
	if rep.ValidFolds() > 0 && len(rep.Labels) > 0 {
		ew.printf("\nPer-label summary over folds with test support:\n")
		writeLabelSummaries(ew, rep.Labels)
	}

	if len(rep.Warnings) > 0 {
		ew.printf("\nWarnings:\n")
		for _, warning := range rep.Warnings {
			ew.printf("  - %v\n", warning)
		}
	}
	return ew.err
}

func writeClassificationReport(ew *errWriter, cr *metrics.ClassificationReport) {
	if ew.err != nil {
		return
	}
	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\tprecision\trecall\tf1-score\tsupport\t\n")
	for _, key := range cr.Keys() {
		if key == metrics.MicroAvg {
			fmt.Fprintf(tw, "\t\t\t\t\t\n")
		}
		s, _ := cr.Get(key)
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%d\t\n", key, s.Precision, s.Recall, s.F1, s.Support)
	}
	if err := tw.Flush(); err != nil && ew.err == nil {
		ew.err = err
	}
}

func writeLabelSummaries(ew *errWriter, labels []multilabel.LabelSummary) {
	if ew.err != nil {
		return
	}
	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\tpositives\tf1 mean\tf1 std\tauc mean\tlog loss\tfolds\t\n")
	for _, l := range labels {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%d\t\n", l.Name, l.Positives,
			fmtStat(l.F1.Mean), fmtStat(l.F1.Std), fmtStat(l.AUC.Mean), fmtStat(l.LogLoss.Mean), l.F1.N)
	}
	if err := tw.Flush(); err != nil && ew.err == nil {
		ew.err = err
	}
}

// fmtStat prints "-" for statistics over no folds.
func fmtStat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep *multilabel.AggregateReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// SaveJSON writes rep as JSON to path.
func SaveJSON(path string, rep *multilabel.AggregateReport) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteJSON(f, rep)
}

// errWriter remembers the first write error so the report can be written
// without checking every call.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
