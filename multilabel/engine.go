// Package multilabel runs K-fold cross-validation of a one-vs-rest multi-label
// text classifier.
//
// For every fold the engine fits a fresh vectorizer on the training texts only,
// trains one binary classifier per label, scores the thresholded predictions,
// and finally reports the mean and population standard deviation of the
// per-fold macro F1. Folds that cannot be scored are skipped with a warning and
// never enter the statistics.
//
// Example:
//
//	engine := multilabel.NewEngine(
//	    multilabel.WithSeed(30),
//	    multilabel.WithLogger(logger),
//	)
//	report, err := engine.Evaluate(ctx, ds, model_selection.KindKFold, 5)
package multilabel

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/core/model"
	"github.com/YuminosukeSato/multilabelcv/dataset"
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
	"github.com/YuminosukeSato/multilabelcv/pkg/log"
	"github.com/YuminosukeSato/multilabelcv/sklearn/ensemble"
	"github.com/YuminosukeSato/multilabelcv/sklearn/feature_extraction"
	"github.com/YuminosukeSato/multilabelcv/sklearn/model_selection"
)

// FoldEvent is passed to the OnFold callback after every fold, valid or not.
type FoldEvent struct {
	Fold    int // 1-based
	NSplits int
	// Report is nil when the fold was skipped.
	Report *FoldReport
	// Skipped carries the reason a fold was skipped.
	Skipped *errors.DegenerateFoldWarning
}

// Engine evaluates a Dataset by cross-validation.
type Engine struct {
	newVectorizer model.VectorizerFactory
	trainer       *PerLabelTrainer
	evaluator     FoldEvaluator
	shuffle       bool
	seed          int
	onFold        func(FoldEvent)
	logs          log.LoggerProvider
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// NewEngine returns an engine with the default pipeline: a TF-IDF vectorizer
// limited to 5000 terms, a depth-6 GBDT per label, threshold 0.5 and shuffled
// splits with seed 30.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		newVectorizer: func() model.TextVectorizer {
			return feature_extraction.NewTfidfVectorizer()
		},
		trainer:   NewPerLabelTrainer(ensemble.NewFactory(), log.Nop()),
		evaluator: NewFoldEvaluator(),
		shuffle:   true,
		seed:      30,
		logs:      log.NewProvider(log.Nop()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.trainer.Logger = e.logs.GetLoggerWithName("multilabel.trainer")
	return e
}

// WithVectorizer sets the factory called once per fold.
func WithVectorizer(factory model.VectorizerFactory) EngineOption {
	return func(e *Engine) {
		e.newVectorizer = factory
	}
}

// WithClassifier sets the factory called once per (fold, label).
func WithClassifier(factory model.ClassifierFactory) EngineOption {
	return func(e *Engine) {
		e.trainer.NewClassifier = factory
	}
}

// WithMinPositives sets the training-positive count below which a label is
// skipped in a fold.
func WithMinPositives(n int) EngineOption {
	return func(e *Engine) {
		e.trainer.MinPositives = n
	}
}

// WithWorkers sets how many labels of a fold train concurrently.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.trainer.Workers = n
	}
}

// WithThreshold sets the probability at or above which a label is predicted.
func WithThreshold(threshold float64) EngineOption {
	return func(e *Engine) {
		e.evaluator.Threshold = threshold
	}
}

// WithShuffle controls whether samples are shuffled before splitting.
func WithShuffle(shuffle bool) EngineOption {
	return func(e *Engine) {
		e.shuffle = shuffle
	}
}

// WithSeed sets the split seed.
func WithSeed(seed int) EngineOption {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithOnFold registers a callback invoked after every fold.
func WithOnFold(fn func(FoldEvent)) EngineOption {
	return func(e *Engine) {
		e.onFold = fn
	}
}

// WithLogger sets the base logger the engine and its trainer derive their
// component loggers from.
func WithLogger(logger log.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logs = log.NewProvider(logger)
		}
	}
}

// WithLoggerProvider sets the provider handing out component loggers.
func WithLoggerProvider(p log.LoggerProvider) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.logs = p
		}
	}
}

// Evaluate splits ds with the named splitter kind into nSplits folds and
// cross-validates it. See EvaluateSplitter.
func (e *Engine) Evaluate(ctx context.Context, ds *dataset.Dataset, kind string, nSplits int) (*AggregateReport, error) {
	splitter, err := model_selection.NewSplitter(kind, nSplits, e.shuffle, e.seed)
	if err != nil {
		return nil, err
	}
	return e.EvaluateSplitter(ctx, ds, splitter)
}

// EvaluateSplitter cross-validates ds over the folds produced by splitter.
//
// A fold is skipped with a DegenerateFoldWarning when its training or test
// partition is empty, when every prediction is zero, or when no label has a
// positive test example. If every fold is skipped the result is a
// NoValidFoldsError. When ctx is cancelled the remaining folds are abandoned
// and the report over the completed folds is returned with Cancelled set.
func (e *Engine) EvaluateSplitter(ctx context.Context, ds *dataset.Dataset, splitter model_selection.Splitter) (*AggregateReport, error) {
	if ds == nil {
		return nil, errors.NewValidationError("dataset", "dataset is required", nil)
	}
	if ds.NLabels() == 0 {
		return nil, errors.NewEmptyLabelSetError(0, 0)
	}
	if e.newVectorizer == nil {
		return nil, errors.NewValidationError("vectorizer", "vectorizer factory is required", nil)
	}

	start := time.Now()
	logger := e.logs.GetLoggerWithName("multilabel.engine")
	folds, err := splitter.Split(ds.Labels)
	if err != nil {
		return nil, errors.Wrap(err, "split dataset")
	}

	positives := dataset.PositiveCounts(ds.Labels)
	agg := &AggregateReport{
		Splitter:         splitter.Name(),
		NSplits:          len(folds),
		NSamples:         ds.NSamples(),
		LabelNames:       append([]string(nil), ds.LabelNames...),
		MinPositiveCount: dataset.MinPositiveCount(ds.Labels),
	}
	logger.Info("Starting cross-validation",
		log.SplitterKey, agg.Splitter,
		log.NSplitsKey, agg.NSplits,
		log.SamplesKey, agg.NSamples,
		log.LabelsKey, ds.NLabels(),
	)

	for k, fold := range folds {
		if ctx.Err() != nil {
			agg.Cancelled = true
			break
		}
		foldNo := k + 1
		report, skip, labelWarnings, err := e.runFold(ctx, foldNo, fold, ds, logger.With(log.FoldKey, foldNo))
		for _, w := range labelWarnings {
			agg.Warnings = append(agg.Warnings, w)
		}
		if err != nil {
			if ctx.Err() != nil {
				agg.Cancelled = true
				break
			}
			return nil, err
		}
		if skip != nil {
			agg.Warnings = append(agg.Warnings, skip)
			logger.Warn("Fold skipped", log.FoldKey, foldNo, "reason", skip.Reason)
		} else {
			agg.FoldReports = append(agg.FoldReports, report)
			logger.Info("Fold completed",
				log.FoldKey, foldNo,
				log.MacroF1Key, report.MacroF1(),
				log.DurationMsKey, report.Duration().Milliseconds(),
			)
		}
		if e.onFold != nil {
			e.onFold(FoldEvent{Fold: foldNo, NSplits: len(folds), Report: report, Skipped: skip})
		}
	}

	agg.summarize(positives)
	agg.Duration = time.Since(start)

	if agg.Cancelled {
		logger.Warn("Cross-validation cancelled",
			"completed_folds", agg.ValidFolds(),
		)
		return agg, nil
	}
	if len(agg.FoldReports) == 0 {
		return nil, errors.NewNoValidFoldsError(len(folds), agg.Warnings)
	}

	logger.Info("Cross-validation finished",
		log.MacroF1Key, agg.MeanMacroF1,
		log.StdF1Key, agg.StdMacroF1,
		"min_positive_count", agg.MinPositiveCount,
	)
	return agg, nil
}

// runFold fits and scores one fold. Exactly one of report and skip is non-nil
// when err is nil.
func (e *Engine) runFold(ctx context.Context, foldNo int, fold model_selection.Fold, ds *dataset.Dataset, logger log.Logger) (*FoldReport, *errors.DegenerateFoldWarning, []*errors.DegenerateLabelWarning, error) {
	start := time.Now()
	if fold.Overlaps() {
		return nil, nil, nil, errors.NewValidationError("fold", "training and test indices overlap", foldNo)
	}
	if len(fold.TrainIndices) == 0 {
		return nil, errors.NewDegenerateFoldWarning(foldNo, "empty training partition"), nil, nil
	}
	if len(fold.TestIndices) == 0 {
		return nil, errors.NewDegenerateFoldWarning(foldNo, "empty test partition"), nil, nil
	}

	trainTexts, yTrain := ds.Subset(fold.TrainIndices)
	testTexts, yTest := ds.Subset(fold.TestIndices)
	logger.Debug("Fold partitions",
		log.TrainSizeKey, len(trainTexts),
		log.TestSizeKey, len(testTexts),
	)

	// The vectorizer only ever sees training texts.
	vec := e.newVectorizer()
	if err := vec.Fit(trainTexts); err != nil {
		return nil, nil, nil, errors.NewModelError("Engine.Evaluate", "fit vectorizer", err)
	}
	XTrain, err := vec.Transform(trainTexts)
	if err != nil {
		return nil, nil, nil, errors.NewModelError("Engine.Evaluate", "transform training texts", err)
	}
	XTest, err := vec.Transform(testTexts)
	if err != nil {
		return nil, nil, nil, errors.NewModelError("Engine.Evaluate", "transform test texts", err)
	}
	_, nFeatures := XTrain.Dims()
	logger.Debug("Vectorizer fitted", log.FeaturesKey, nFeatures)

	pred, labelWarnings, err := e.trainer.FitPredict(ctx, foldNo, XTrain, yTrain, XTest, ds.LabelNames)
	if err != nil {
		return nil, nil, labelWarnings, err
	}
	if allZero(pred) {
		return nil, errors.NewDegenerateFoldWarning(foldNo, "all predictions are zero"), labelWarnings, nil
	}

	rep, err := e.evaluator.Score(pred, yTest, ds.LabelNames)
	if err != nil {
		return nil, nil, labelWarnings, err
	}
	if !rep.HasMacro() {
		return nil, errors.NewDegenerateFoldWarning(foldNo, "no label has a positive test example"), labelWarnings, nil
	}

	skipped := make([]string, len(labelWarnings))
	for i, w := range labelWarnings {
		skipped[i] = w.Label
	}
	ranking, err := e.evaluator.Rank(pred, yTest, ds.LabelNames, skipped)
	if err != nil {
		return nil, nil, labelWarnings, err
	}
	fr := NewFoldReport(foldNo, len(trainTexts), len(testTexts), rep, skipped, time.Since(start))
	fr.ranking = ranking
	return fr, nil, labelWarnings, nil
}

func allZero(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}
