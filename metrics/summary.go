package metrics

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a sequence of per-fold values.
type Summary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"` // population standard deviation (ddof=0)
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	N    int     `json:"n"`
}

// Summarize returns the mean and population standard deviation of values. An
// empty input yields NaN statistics and N == 0.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Max: nan}
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	return Summary{
		Mean: mean,
		Std:  std,
		Min:  floats.Min(values),
		Max:  floats.Max(values),
		N:    len(values),
	}
}

// MarshalJSON writes undefined statistics as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mean *float64 `json:"mean"`
		Std  *float64 `json:"std"`
		Min  *float64 `json:"min"`
		Max  *float64 `json:"max"`
		N    int      `json:"n"`
	}{finite(s.Mean), finite(s.Std), finite(s.Min), finite(s.Max), s.N})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
