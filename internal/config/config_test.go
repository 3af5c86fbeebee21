package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "text", cfg.Data.TextColumn)
	assert.Equal(t, 20, cfg.Data.MinCount)
	assert.Equal(t, 5000, cfg.Vectorizer.MaxFeatures)
	assert.Equal(t, "kfold", cfg.CV.Splitter)
	assert.Equal(t, 5, cfg.CV.NSplits)
	assert.Equal(t, 30, cfg.CV.Seed)
	assert.True(t, cfg.CV.Shuffle)
	assert.Equal(t, 6, cfg.Trainer.Params.MaxDepth)
	assert.Equal(t, 100, cfg.Trainer.Params.NumRounds)
	assert.Equal(t, ClassifierGBDT, cfg.Trainer.Classifier)
	assert.Equal(t, 0.5, cfg.Evaluation.Threshold)
	assert.Equal(t, ',', cfg.Comma())

	// only the data path is missing
	var ve *errors.ValidationError
	require.True(t, errors.As(cfg.Validate(), &ve))
	assert.Equal(t, "data.path", ve.ParamName)

	cfg.Data.Path = "data.csv"
	assert.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
data:
  path: told.csv
  labels: [homophobia, racism]
  min_count: 5
cv:
  splitter: multilabel-stratified-kfold
  n_splits: 3
trainer:
  classifier: logistic
  workers: 4
  logistic:
    c: 4
  params:
    max_depth: 3
    num_rounds: 50
log:
  format: json
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "told.csv", cfg.Data.Path)
	assert.Equal(t, []string{"homophobia", "racism"}, cfg.Data.Labels)
	assert.Equal(t, 5, cfg.Data.MinCount)
	assert.Equal(t, "multilabel-stratified-kfold", cfg.CV.Splitter)
	assert.Equal(t, 3, cfg.CV.NSplits)
	assert.Equal(t, 4, cfg.Trainer.Workers)
	assert.Equal(t, ClassifierLogistic, cfg.Trainer.Classifier)
	assert.Equal(t, 4.0, cfg.Trainer.Logistic.C)
	assert.Equal(t, 100, cfg.Trainer.Logistic.MaxIter)
	assert.Equal(t, 3, cfg.Trainer.Params.MaxDepth)
	assert.Equal(t, 50, cfg.Trainer.Params.NumRounds)

	// untouched values keep their defaults
	assert.Equal(t, 30, cfg.CV.Seed)
	assert.Equal(t, 0.3, cfg.Trainer.Params.LearningRate)
	assert.Equal(t, "text", cfg.Data.TextColumn)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte("cv:\n  folds: 3\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		param  string
	}{
		{"delimiter", func(c *Config) { c.Data.Delimiter = ";;" }, "data.delimiter"},
		{"min count", func(c *Config) { c.Data.MinCount = 0 }, "data.min_count"},
		{"max features", func(c *Config) { c.Vectorizer.MaxFeatures = 0 }, "vectorizer.max_features"},
		{"splitter", func(c *Config) { c.CV.Splitter = "shuffle-split" }, "cv.splitter"},
		{"n splits", func(c *Config) { c.CV.NSplits = 1 }, "cv.n_splits"},
		{"min positives", func(c *Config) { c.Trainer.MinPositives = 0 }, "trainer.min_positives"},
		{"max depth", func(c *Config) { c.Trainer.Params.MaxDepth = 0 }, "max_depth"},
		{"classifier", func(c *Config) { c.Trainer.Classifier = "svm" }, "trainer.classifier"},
		{"logistic c", func(c *Config) {
			c.Trainer.Classifier = ClassifierLogistic
			c.Trainer.Logistic.C = 0
		}, "trainer.logistic.c"},
		{"threshold", func(c *Config) { c.Evaluation.Threshold = 1.2 }, "evaluation.threshold"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Data.Path = "data.csv"
			tt.modify(cfg)

			var ve *errors.ValidationError
			require.True(t, errors.As(cfg.Validate(), &ve))
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  path: a.csv\n  delimiter: \";\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a.csv", cfg.Data.Path)
	assert.Equal(t, ';', cfg.Comma())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
