// Command multilabelcv cross-validates a one-vs-rest text classifier on a
// multi-label CSV corpus and reports the mean macro F1 across folds.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// Exit codes. Anything not listed exits with 1.
const (
	exitDataLoad      = 3
	exitEmptyLabelSet = 4
	exitNoValidFolds  = 5
)

func main() {
	app := cli.NewApp()
	app.Name = "multilabelcv"
	app.Usage = "K-fold cross-validation of a multi-label text classifier"
	app.Flags = evaluateFlags()
	app.Action = evaluate
	app.Commands = []*cli.Command{
		{
			Name:   "evaluate",
			Usage:  "run cross-validation (default command)",
			Flags:  evaluateFlags(),
			Action: evaluate,
		},
		{
			Name:  "runs",
			Usage: "list runs recorded in a ledger database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "db",
					Usage:    "path to the SQLite run ledger",
					EnvVars:  []string{"MLCV_DB"},
					Required: true,
				},
				&cli.IntFlag{
					Name:  "limit",
					Usage: "maximum number of runs to list (0 lists all)",
					Value: 20,
				},
			},
			Action: listRuns,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var (
		loadErr  *errors.DataLoadError
		emptyErr *errors.EmptyLabelSetError
		foldsErr *errors.NoValidFoldsError
	)
	switch {
	case errors.As(err, &loadErr):
		return exitDataLoad
	case errors.As(err, &emptyErr):
		return exitEmptyLabelSet
	case errors.As(err, &foldsErr):
		return exitNoValidFolds
	default:
		return 1
	}
}

func evaluateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a YAML configuration file",
			EnvVars: []string{"MLCV_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "path to the CSV corpus",
			EnvVars: []string{"MLCV_DATA"},
		},
		&cli.StringFlag{
			Name:  "text-column",
			Usage: "header of the document column",
		},
		&cli.StringSliceFlag{
			Name:  "label",
			Usage: "label column to evaluate (repeatable, default all non-text columns)",
		},
		&cli.IntFlag{
			Name:  "min-count",
			Usage: "drop labels with fewer positive examples",
		},
		&cli.BoolFlag{
			Name:  "no-clean",
			Usage: "skip Portuguese text cleaning",
		},
		&cli.StringFlag{
			Name:  "splitter",
			Usage: "fold splitter: kfold or multilabel-stratified-kfold",
		},
		&cli.IntFlag{
			Name:    "splits",
			Aliases: []string{"k"},
			Usage:   "number of folds",
		},
		&cli.IntFlag{
			Name:    "seed",
			Usage:   "seed of the split shuffle",
			EnvVars: []string{"MLCV_SEED"},
		},
		&cli.BoolFlag{
			Name:  "no-shuffle",
			Usage: "split in file order",
		},
		&cli.Float64Flag{
			Name:  "threshold",
			Usage: "probability at or above which a label is predicted",
		},
		&cli.StringFlag{
			Name:  "classifier",
			Usage: "per-label classifier: gbdt or logistic",
		},
		&cli.IntFlag{
			Name:    "workers",
			Usage:   "labels trained concurrently per fold (negative uses every CPU)",
			EnvVars: []string{"MLCV_WORKERS"},
		},
		&cli.IntFlag{
			Name:  "max-features",
			Usage: "TF-IDF vocabulary size",
		},
		&cli.StringFlag{
			Name:  "json",
			Usage: "write the aggregate report as JSON to this path",
		},
		&cli.StringFlag{
			Name:  "plot",
			Usage: "write a per-fold macro F1 chart to this path (.png, .svg, .pdf)",
		},
		&cli.StringFlag{
			Name:    "db",
			Usage:   "record the run in this SQLite ledger",
			EnvVars: []string{"MLCV_DB"},
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "show a fold progress bar on stderr",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn or error",
			EnvVars: []string{"MLCV_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "console or json",
			EnvVars: []string{"MLCV_LOG_FORMAT"},
		},
	}
}
