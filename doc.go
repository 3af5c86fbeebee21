// Package multilabelcv evaluates multi-label text classifiers by K-fold
// cross-validation, built for the Portuguese hate-speech corpus where every
// document may carry any subset of labels such as insult, racism or
// homophobia.
//
// Each fold fits a TF-IDF vectorizer on its training texts only, trains one
// binary gradient-boosted tree classifier per label, thresholds the predicted
// probabilities and scores them with per-label, micro, macro and weighted
// precision, recall and F1. The run reports the mean and standard deviation of
// the per-fold macro F1.
//
// # Quick Start
//
//	ds, err := dataset.LoadCSV("told.csv", dataset.LoadOptions{
//	    Normalize: preprocessing.NewPortugueseCleaner().Clean,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ds, err = ds.FilterLabels(dataset.DefaultMinCount)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine := multilabel.NewEngine(multilabel.WithSeed(30))
//	rep, err := engine.Evaluate(ctx, ds, model_selection.KindKFold, 5)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("macro F1 %.4f ± %.4f\n", rep.MeanMacroF1, rep.StdMacroF1)
//
// # Packages
//
//   - dataset: CSV loading, label filtering and row subsets
//   - preprocessing: Portuguese text cleaning
//   - sklearn/feature_extraction: TF-IDF vectorizer with sparse output
//   - sklearn/ensemble: binary gradient-boosted trees
//   - sklearn/model_selection: KFold and multi-label stratified splitters
//   - metrics: classification reports and fold statistics
//   - multilabel: the cross-validation engine
//   - pkg/errors, pkg/log: typed errors and structured logging
//
// The multilabelcv command in cmd/multilabelcv wraps all of this with YAML
// configuration, JSON and chart output and an SQLite run ledger.
package multilabelcv
