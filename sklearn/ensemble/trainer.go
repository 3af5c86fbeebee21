package ensemble

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
	"github.com/YuminosukeSato/multilabelcv/pkg/log"
)

// Trainer implements histogram gradient boosting for one binary target.
type Trainer struct {
	params TrainingParams
	logger log.Logger
}

// NewTrainer creates a trainer. A nil logger discards output.
func NewTrainer(params TrainingParams, logger log.Logger) *Trainer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Trainer{params: params, logger: logger}
}

// Fit trains a model on X and 0/1 targets y.
func (t *Trainer) Fit(X mat.Matrix, y []float64) (*Model, error) {
	if err := t.params.Validate(); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError("Trainer.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != rows {
		return nil, errors.NewDimensionError("Trainer.Fit", rows, len(y), 0)
	}

	objective, err := CreateObjectiveFunction(t.params)
	if err != nil {
		return nil, err
	}

	data := newBinnedData(X, t.params.MaxBin, t.params.NThread)
	builder := newTreeBuilder(data, t.params)

	base := objective.InitMargin()
	margins := make([]float64, rows)
	for i := range margins {
		margins[i] = base
	}
	grad := make([]float64, rows)
	hess := make([]float64, rows)

	model := &Model{
		BaseMargin:  base,
		NumFeatures: cols,
		Params:      t.params,
		Trees:       make([]Tree, 0, t.params.NumRounds),
		EvalHistory: make([]float64, 0, t.params.NumRounds),
		objective:   objective,
	}

	for round := 0; round < t.params.NumRounds; round++ {
		for i := range margins {
			grad[i], hess[i] = objective.Gradient(margins[i], y[i])
		}

		tree, leafOf := builder.build(grad, hess)
		for i, leaf := range leafOf {
			margins[i] += tree.Nodes[leaf].LeafValue
		}
		model.Trees = append(model.Trees, tree)

		loss := 0.0
		for i := range margins {
			loss += objective.Loss(margins[i], y[i])
		}
		loss /= float64(rows)
		if err := errors.CheckNumericalStability("Trainer.Fit", []float64{loss}, round); err != nil {
			return nil, err
		}
		model.EvalHistory = append(model.EvalHistory, loss)

		if t.params.Verbosity > 0 && round%10 == 0 {
			t.logger.Debug("Training progress",
				log.IterationKey, round,
				log.LossKey, loss,
				"leaves", tree.NumLeaves(),
			)
		}
	}

	return model, nil
}
