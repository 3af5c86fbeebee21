// Package metrics implements the per-label and averaged classification scores
// of a cross-validation fold, with scikit-learn's zero_division=0 convention:
// a ratio with a zero denominator is 0, never NaN.
package metrics

import (
	"encoding/json"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// Average names as they appear in a ClassificationReport.
const (
	MacroAvg    = "macro avg"
	MicroAvg    = "micro avg"
	WeightedAvg = "weighted avg"
)

// ClassScores are the scores of one label or one average.
type ClassScores struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// confusion counts for the positive class
type confusion struct {
	tp, fp, fn int
}

func (c confusion) scores() ClassScores {
	p := errors.SafeDivide(float64(c.tp), float64(c.tp+c.fp))
	r := errors.SafeDivide(float64(c.tp), float64(c.tp+c.fn))
	return ClassScores{
		Precision: p,
		Recall:    r,
		F1:        errors.SafeDivide(2*p*r, p+r),
		Support:   c.tp + c.fn,
	}
}

// BinaryScores returns precision, recall, F1 and support of the positive class
// for 0/1 vectors.
func BinaryScores(yTrue, yPred []float64) (ClassScores, error) {
	if len(yTrue) != len(yPred) {
		return ClassScores{}, errors.NewDimensionError("BinaryScores", len(yTrue), len(yPred), 0)
	}
	var c confusion
	for i := range yTrue {
		c.add(yTrue[i] != 0, yPred[i] != 0)
	}
	return c.scores(), nil
}

func (c *confusion) add(truth, pred bool) {
	switch {
	case truth && pred:
		c.tp++
	case pred:
		c.fp++
	case truth:
		c.fn++
	}
}

// Binarize maps every probability p to 1 when p >= threshold, else 0.
func Binarize(proba mat.Matrix, threshold float64) *mat.Dense {
	r, c := proba.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if proba.At(i, j) >= threshold {
				out.Set(i, j, 1)
			}
		}
	}
	return out
}

// ClassificationReport is an immutable per-fold report: one entry per label
// plus macro, micro and weighted averages.
type ClassificationReport struct {
	labels   []string
	perLabel []ClassScores
	macro    ClassScores
	micro    ClassScores
	weighted ClassScores
	// number of labels with nonzero support, the macro denominator
	scored int
}

// MultilabelReport scores binary predictions against the truth column by
// column. The macro average covers only labels with nonzero test support; the
// micro and weighted averages follow scikit-learn.
func MultilabelReport(yTrue, yPred mat.Matrix, labelNames []string) (*ClassificationReport, error) {
	if yTrue == nil || yPred == nil {
		return nil, errors.NewValidationError("y", "label matrices are required", nil)
	}
	rt, ct := yTrue.Dims()
	rp, cp := yPred.Dims()
	if rt != rp {
		return nil, errors.NewDimensionError("MultilabelReport", rt, rp, 0)
	}
	if ct != cp {
		return nil, errors.NewDimensionError("MultilabelReport", ct, cp, 1)
	}
	if len(labelNames) != ct {
		return nil, errors.NewDimensionError("MultilabelReport", ct, len(labelNames), 1)
	}

	rep := &ClassificationReport{
		labels:   append([]string(nil), labelNames...),
		perLabel: make([]ClassScores, ct),
	}
	var total confusion
	var macroP, macroR, macroF, wP, wR, wF float64
	support := 0
	for j := 0; j < ct; j++ {
		var c confusion
		for i := 0; i < rt; i++ {
			c.add(yTrue.At(i, j) != 0, yPred.At(i, j) != 0)
		}
		s := c.scores()
		rep.perLabel[j] = s

		total.tp += c.tp
		total.fp += c.fp
		total.fn += c.fn
		support += s.Support

		if s.Support > 0 {
			rep.scored++
			macroP += s.Precision
			macroR += s.Recall
			macroF += s.F1
		}
		w := float64(s.Support)
		wP += w * s.Precision
		wR += w * s.Recall
		wF += w * s.F1
	}

	n := float64(rep.scored)
	rep.macro = ClassScores{
		Precision: errors.SafeDivide(macroP, n),
		Recall:    errors.SafeDivide(macroR, n),
		F1:        errors.SafeDivide(macroF, n),
		Support:   support,
	}
	rep.micro = total.scores()
	rep.micro.Support = support
	rep.weighted = ClassScores{
		Precision: errors.SafeDivide(wP, float64(support)),
		Recall:    errors.SafeDivide(wR, float64(support)),
		F1:        errors.SafeDivide(wF, float64(support)),
		Support:   support,
	}
	return rep, nil
}

// Labels returns the label names in report order.
func (r *ClassificationReport) Labels() []string {
	return append([]string(nil), r.labels...)
}

// Label returns the scores of one label.
func (r *ClassificationReport) Label(name string) (ClassScores, bool) {
	for j, l := range r.labels {
		if l == name {
			return r.perLabel[j], true
		}
	}
	return ClassScores{}, false
}

// At returns the scores of the j-th label.
func (r *ClassificationReport) At(j int) ClassScores {
	return r.perLabel[j]
}

// Get returns a label or an average by its report key.
func (r *ClassificationReport) Get(key string) (ClassScores, bool) {
	switch key {
	case MacroAvg:
		return r.macro, true
	case MicroAvg:
		return r.micro, true
	case WeightedAvg:
		return r.weighted, true
	}
	return r.Label(key)
}

// Keys returns every report key: labels first, then the averages.
func (r *ClassificationReport) Keys() []string {
	return append(r.Labels(), MicroAvg, MacroAvg, WeightedAvg)
}

// MacroAvg returns the macro average over labels with test support.
func (r *ClassificationReport) MacroAvg() ClassScores { return r.macro }

// MicroAvg returns the micro average.
func (r *ClassificationReport) MicroAvg() ClassScores { return r.micro }

// WeightedAvg returns the support-weighted average.
func (r *ClassificationReport) WeightedAvg() ClassScores { return r.weighted }

// MacroF1 is shorthand for MacroAvg().F1.
func (r *ClassificationReport) MacroF1() float64 { return r.macro.F1 }

// ScoredLabels returns how many labels entered the macro average.
func (r *ClassificationReport) ScoredLabels() int { return r.scored }

// HasMacro reports whether the macro average is defined, that is whether at
// least one label has test support.
func (r *ClassificationReport) HasMacro() bool { return r.scored > 0 }

// MarshalJSON renders the report as scikit-learn's output_dict form.
func (r *ClassificationReport) MarshalJSON() ([]byte, error) {
	out := make(map[string]ClassScores, len(r.labels)+3)
	for j, l := range r.labels {
		out[l] = r.perLabel[j]
	}
	out[MacroAvg] = r.macro
	out[MicroAvg] = r.micro
	out[WeightedAvg] = r.weighted
	return json.Marshal(out)
}
