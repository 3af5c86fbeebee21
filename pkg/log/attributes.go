// Standard attribute keys for cross-validation logging.
//
// Keys follow a hierarchical naming convention ("cv.fold", "data.samples") so
// that JSON log output can be filtered per fold or per label.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type, e.g. "GBDTClassifier", "TfidfVectorizer".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed, e.g. "fit", "predict_proba".
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging, e.g. "multilabel.engine".
	ComponentKey = "ml.component"

	// RunIDKey correlates every line of one evaluation run.
	RunIDKey = "run.id"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) after vectorization.
	FeaturesKey = "data.features"

	// LabelsKey indicates the number of label columns.
	LabelsKey = "data.labels"

	// PathKey is the dataset path being loaded.
	PathKey = "data.path"
)

// Cross-validation Context
const (
	// FoldKey is the 1-based fold number.
	FoldKey = "cv.fold"

	// NSplitsKey is the configured number of folds.
	NSplitsKey = "cv.n_splits"

	// SplitterKey is the split strategy name.
	SplitterKey = "cv.splitter"

	// LabelKey is the label name a message refers to.
	LabelKey = "cv.label"

	// PositivesKey is a positive-example count for a label.
	PositivesKey = "cv.positives"

	// TrainSizeKey and TestSizeKey are partition sizes of one fold.
	TrainSizeKey = "cv.train_size"
	TestSizeKey  = "cv.test_size"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// MacroF1Key records the macro-averaged F1 of a fold or the mean across folds.
	MacroF1Key = "metrics.macro_f1"

	// StdF1Key records the standard deviation of macro F1 across folds.
	StdF1Key = "metrics.std_f1"

	// LossKey records a loss value (training logloss for boosted trees).
	LossKey = "metrics.loss"

	// IterationKey records the boosting round.
	IterationKey = "training.iteration"

	// ThresholdKey records the decision threshold.
	ThresholdKey = "preds.threshold"

	// RandomSeedKey records the split seed.
	RandomSeedKey = "config.random_seed"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides a hint for resolving an issue.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationTransform    = "transform"
	OperationPredictProba = "predict_proba"
	OperationScore        = "score"
	OperationSplit        = "split"

	ErrorDataLoad      = "DATA_LOAD"
	ErrorEmptyLabelSet = "EMPTY_LABEL_SET"
	ErrorNoValidFolds  = "NO_VALID_FOLDS"
	ErrorDegenerate    = "DEGENERATE"
)
