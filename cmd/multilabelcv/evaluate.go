package main

import (
	"context"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/YuminosukeSato/multilabelcv/core/model"
	"github.com/YuminosukeSato/multilabelcv/dataset"
	"github.com/YuminosukeSato/multilabelcv/internal/config"
	"github.com/YuminosukeSato/multilabelcv/internal/report"
	"github.com/YuminosukeSato/multilabelcv/internal/store"
	"github.com/YuminosukeSato/multilabelcv/multilabel"
	"github.com/YuminosukeSato/multilabelcv/pkg/log"
	"github.com/YuminosukeSato/multilabelcv/preprocessing"
	"github.com/YuminosukeSato/multilabelcv/sklearn/ensemble"
	"github.com/YuminosukeSato/multilabelcv/sklearn/feature_extraction"
	"github.com/YuminosukeSato/multilabelcv/sklearn/linear_model"
)

// stderr receives logs and the progress bar.
var stderr io.Writer = os.Stderr

func evaluate(c *cli.Context) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := log.SetupLogger(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	runID := uuid.New().String()
	logger = logger.With(log.RunIDKey, runID)
	defer func() {
		if err != nil {
			logger.Error("Evaluation failed", err)
		}
	}()

	opts := dataset.LoadOptions{
		TextColumn:   cfg.Data.TextColumn,
		LabelColumns: cfg.Data.Labels,
		Comma:        cfg.Comma(),
	}
	if cfg.Data.Clean {
		opts.Normalize = preprocessing.NewPortugueseCleaner().Clean
	}
	ds, err := dataset.LoadCSV(cfg.Data.Path, opts)
	if err != nil {
		return err
	}
	nLabels := ds.NLabels()
	ds, err = ds.FilterLabels(cfg.Data.MinCount)
	if err != nil {
		return err
	}
	logger.Info("Dataset loaded",
		"path", cfg.Data.Path,
		log.SamplesKey, ds.NSamples(),
		log.LabelsKey, ds.NLabels(),
		"dropped_labels", nLabels-ds.NLabels(),
	)

	var bar *foldProgress
	if cfg.Output.Progress {
		bar = newFoldProgress(stderr, cfg.CV.NSplits)
		bar.Start()
	}

	engine := multilabel.NewEngine(
		multilabel.WithVectorizer(func() model.TextVectorizer {
			return feature_extraction.NewTfidfVectorizer(
				feature_extraction.WithMaxFeatures(cfg.Vectorizer.MaxFeatures),
				feature_extraction.WithLowercase(cfg.Vectorizer.Lowercase),
			)
		}),
		multilabel.WithClassifier(classifierFactory(cfg, logger)),
		multilabel.WithMinPositives(cfg.Trainer.MinPositives),
		multilabel.WithWorkers(cfg.Trainer.Workers),
		multilabel.WithThreshold(cfg.Evaluation.Threshold),
		multilabel.WithShuffle(cfg.CV.Shuffle),
		multilabel.WithSeed(cfg.CV.Seed),
		multilabel.WithLogger(logger),
		multilabel.WithOnFold(func(ev multilabel.FoldEvent) {
			if bar != nil {
				bar.Done(ev)
			}
		}),
	)

	rep, err := engine.Evaluate(c.Context, ds, cfg.CV.Splitter, cfg.CV.NSplits)
	if bar != nil {
		bar.Stop()
	}
	if err != nil {
		return err
	}

	if err := report.WriteText(os.Stdout, rep); err != nil {
		return err
	}
	if cfg.Output.JSON != "" {
		if err := report.SaveJSON(cfg.Output.JSON, rep); err != nil {
			return err
		}
		logger.Info("Report written", "path", cfg.Output.JSON)
	}
	if cfg.Output.Plot != "" {
		if err := report.SavePlot(cfg.Output.Plot, rep); err != nil {
			// A cancelled run may have nothing to draw.
			logger.Warn("Plot not written", "error", err)
		} else {
			logger.Info("Plot written", "path", cfg.Output.Plot)
		}
	}
	if cfg.Output.DB != "" {
		if err := recordRun(c, cfg, runID, rep, logger); err != nil {
			return err
		}
	}
	return nil
}

func classifierFactory(cfg *config.Config, logger log.Logger) model.ClassifierFactory {
	if cfg.Trainer.Classifier == config.ClassifierLogistic {
		return linear_model.NewFactory(
			linear_model.WithC(cfg.Trainer.Logistic.C),
			linear_model.WithMaxIter(cfg.Trainer.Logistic.MaxIter),
			linear_model.WithTol(cfg.Trainer.Logistic.Tol),
		)
	}
	return ensemble.NewFactory(
		ensemble.WithParams(cfg.Trainer.Params),
		ensemble.WithLogger(logger, cfg.Trainer.Params.Verbosity),
	)
}

func recordRun(c *cli.Context, cfg *config.Config, runID string, rep *multilabel.AggregateReport, logger log.Logger) error {
	s, err := store.NewStore(cfg.Output.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	meta := store.RunMeta{
		RunID:       runID,
		DatasetPath: cfg.Data.Path,
		Seed:        cfg.CV.Seed,
		Config:      cfg,
	}
	// The ledger write must survive an interrupted evaluation.
	ctx := c.Context
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if _, err := s.SaveRun(ctx, meta, rep); err != nil {
		return err
	}
	logger.Info("Run recorded", "db", cfg.Output.DB)
	return nil
}

// loadConfig starts from the defaults, overlays the YAML file when given and
// then every flag that was set explicitly.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if c.IsSet("data") {
		cfg.Data.Path = c.String("data")
	}
	if c.IsSet("text-column") {
		cfg.Data.TextColumn = c.String("text-column")
	}
	if c.IsSet("label") {
		cfg.Data.Labels = c.StringSlice("label")
	}
	if c.IsSet("min-count") {
		cfg.Data.MinCount = c.Int("min-count")
	}
	if c.Bool("no-clean") {
		cfg.Data.Clean = false
	}
	if c.IsSet("splitter") {
		cfg.CV.Splitter = c.String("splitter")
	}
	if c.IsSet("splits") {
		cfg.CV.NSplits = c.Int("splits")
	}
	if c.IsSet("seed") {
		cfg.CV.Seed = c.Int("seed")
	}
	if c.Bool("no-shuffle") {
		cfg.CV.Shuffle = false
	}
	if c.IsSet("threshold") {
		cfg.Evaluation.Threshold = c.Float64("threshold")
	}
	if c.IsSet("classifier") {
		cfg.Trainer.Classifier = c.String("classifier")
	}
	if c.IsSet("workers") {
		cfg.Trainer.Workers = c.Int("workers")
	}
	if c.IsSet("max-features") {
		cfg.Vectorizer.MaxFeatures = c.Int("max-features")
	}
	if c.IsSet("json") {
		cfg.Output.JSON = c.String("json")
	}
	if c.IsSet("plot") {
		cfg.Output.Plot = c.String("plot")
	}
	if c.IsSet("db") {
		cfg.Output.DB = c.String("db")
	}
	if c.Bool("progress") {
		cfg.Output.Progress = true
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
