// Package config holds the run configuration of the multilabelcv command.
//
// Values start from Default, which reproduces the reference experiment, are
// overlaid by an optional YAML file and finally by command-line flags.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/multilabelcv/dataset"
	"github.com/YuminosukeSato/multilabelcv/multilabel"
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
	"github.com/YuminosukeSato/multilabelcv/sklearn/ensemble"
	"github.com/YuminosukeSato/multilabelcv/sklearn/feature_extraction"
	"github.com/YuminosukeSato/multilabelcv/sklearn/model_selection"
)

// DataConfig describes the input CSV.
type DataConfig struct {
	Path       string   `yaml:"path"`
	TextColumn string   `yaml:"text_column"`
	Labels     []string `yaml:"labels"`
	Delimiter  string   `yaml:"delimiter"`
	// MinCount drops labels with fewer positive examples.
	MinCount int `yaml:"min_count"`
	// Clean applies the Portuguese text cleaner to every document.
	Clean bool `yaml:"clean"`
}

// VectorizerConfig configures the TF-IDF vectorizer.
type VectorizerConfig struct {
	MaxFeatures int  `yaml:"max_features"`
	Lowercase   bool `yaml:"lowercase"`
}

// CVConfig configures the fold splitter.
type CVConfig struct {
	Splitter string `yaml:"splitter"`
	NSplits  int    `yaml:"n_splits"`
	Shuffle  bool   `yaml:"shuffle"`
	Seed     int    `yaml:"seed"`
}

// Classifier kinds accepted by trainer.classifier.
const (
	ClassifierGBDT     = "gbdt"
	ClassifierLogistic = "logistic"
)

// LogisticConfig configures the logistic regression classifier.
type LogisticConfig struct {
	C       float64 `yaml:"c"`
	MaxIter int     `yaml:"max_iter"`
	Tol     float64 `yaml:"tol"`
}

// TrainerConfig configures per-label training.
type TrainerConfig struct {
	// Classifier is gbdt or logistic.
	Classifier   string                  `yaml:"classifier"`
	MinPositives int                     `yaml:"min_positives"`
	Workers      int                     `yaml:"workers"`
	Params       ensemble.TrainingParams `yaml:"params"`
	Logistic     LogisticConfig          `yaml:"logistic"`
}

// EvaluationConfig configures fold scoring.
type EvaluationConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// OutputConfig names the optional output files.
type OutputConfig struct {
	JSON     string `yaml:"json"`
	Plot     string `yaml:"plot"`
	DB       string `yaml:"db"`
	Progress bool   `yaml:"progress"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the complete run configuration.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	CV         CVConfig         `yaml:"cv"`
	Trainer    TrainerConfig    `yaml:"trainer"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
}

// Default returns the configuration of the reference experiment: labels with
// at least 20 positives, shuffled 5-fold with seed 30, TF-IDF over 5000 terms
// and a depth-6 boosted tree per label.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			TextColumn: dataset.DefaultTextColumn,
			Delimiter:  ",",
			MinCount:   dataset.DefaultMinCount,
			Clean:      true,
		},
		Vectorizer: VectorizerConfig{
			MaxFeatures: feature_extraction.DefaultMaxFeatures,
			Lowercase:   true,
		},
		CV: CVConfig{
			Splitter: model_selection.KindKFold,
			NSplits:  5,
			Shuffle:  true,
			Seed:     30,
		},
		Trainer: TrainerConfig{
			Classifier:   ClassifierGBDT,
			MinPositives: multilabel.DefaultMinPositives,
			Workers:      1,
			Params:       ensemble.DefaultTrainingParams(),
			Logistic: LogisticConfig{
				C:       1.0,
				MaxIter: 100,
				Tol:     1e-4,
			},
		},
		Evaluation: EvaluationConfig{
			Threshold: multilabel.DefaultThreshold,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and returns the first problem as a
// ValidationError.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return errors.NewValidationError("data.path", "is required", c.Data.Path)
	}
	if c.Data.TextColumn == "" {
		return errors.NewValidationError("data.text_column", "must not be empty", c.Data.TextColumn)
	}
	if len([]rune(c.Data.Delimiter)) != 1 {
		return errors.NewValidationError("data.delimiter", "must be a single character", c.Data.Delimiter)
	}
	if c.Data.MinCount < 1 {
		return errors.NewValidationError("data.min_count", "must be at least 1", c.Data.MinCount)
	}
	if c.Vectorizer.MaxFeatures < 1 {
		return errors.NewValidationError("vectorizer.max_features", "must be at least 1", c.Vectorizer.MaxFeatures)
	}
	if !validSplitter(c.CV.Splitter) {
		return errors.NewValidationError("cv.splitter", fmt.Sprintf("must be one of %v", model_selection.Kinds()), c.CV.Splitter)
	}
	if c.CV.NSplits < 2 {
		return errors.NewValidationError("cv.n_splits", "must be at least 2", c.CV.NSplits)
	}
	if c.Trainer.MinPositives < 1 {
		return errors.NewValidationError("trainer.min_positives", "must be at least 1", c.Trainer.MinPositives)
	}
	switch c.Trainer.Classifier {
	case ClassifierGBDT:
		if err := c.Trainer.Params.Validate(); err != nil {
			return err
		}
	case ClassifierLogistic:
		if c.Trainer.Logistic.C <= 0 {
			return errors.NewValidationError("trainer.logistic.c", "must be positive", c.Trainer.Logistic.C)
		}
		if c.Trainer.Logistic.MaxIter < 1 {
			return errors.NewValidationError("trainer.logistic.max_iter", "must be at least 1", c.Trainer.Logistic.MaxIter)
		}
	default:
		return errors.NewValidationError("trainer.classifier", "must be gbdt or logistic", c.Trainer.Classifier)
	}
	if t := c.Evaluation.Threshold; t < 0 || t > 1 {
		return errors.NewValidationError("evaluation.threshold", "must be in [0, 1]", t)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.NewValidationError("log.format", "must be console or json", c.Log.Format)
	}
	return nil
}

// Comma returns the delimiter as a rune.
func (c *Config) Comma() rune {
	return []rune(c.Data.Delimiter)[0]
}

func validSplitter(kind string) bool {
	for _, k := range model_selection.Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}
