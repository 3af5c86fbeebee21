package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "GBDTClassifier.Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "multilabelcv: GBDTClassifier.Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "PredictProba",
			kind:    "not fitted",
			wantMsg: "multilabelcv: PredictProba: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
			if tt.err != nil && !Is(err, tt.err) {
				t.Error("Wrapped error should be reachable with Is")
			}
		})
	}
}

func TestTaxonomyErrors(t *testing.T) {
	t.Run("DataLoadError", func(t *testing.T) {
		cause := fmt.Errorf("open data.csv: no such file or directory")
		err := NewDataLoadError("data.csv", "file not found", cause)

		var target *DataLoadError
		if !As(err, &target) {
			t.Fatalf("expected *DataLoadError, got %T", err)
		}
		if target.Path != "data.csv" {
			t.Errorf("Path = %q", target.Path)
		}
		if !Is(err, cause) {
			t.Error("cause should be unwrapped")
		}
		if !strings.Contains(err.Error(), "no usable dataset") {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("EmptyLabelSetError", func(t *testing.T) {
		err := NewEmptyLabelSetError(20, 3)
		var target *EmptyLabelSetError
		if !As(err, &target) {
			t.Fatalf("expected *EmptyLabelSetError, got %T", err)
		}
		if target.MinCount != 20 || target.Candidates != 3 {
			t.Errorf("unexpected fields: %+v", target)
		}
	})

	t.Run("NoValidFoldsError", func(t *testing.T) {
		warnings := []error{NewDegenerateFoldWarning(1, "empty test partition")}
		err := NewNoValidFoldsError(5, warnings)
		var target *NoValidFoldsError
		if !As(err, &target) {
			t.Fatalf("expected *NoValidFoldsError, got %T", err)
		}
		if len(target.Warnings) != 1 {
			t.Errorf("expected 1 warning, got %d", len(target.Warnings))
		}
		var empty *EmptyLabelSetError
		if As(err, &empty) {
			t.Error("NoValidFoldsError must be distinct from EmptyLabelSetError")
		}
	})

	t.Run("warnings", func(t *testing.T) {
		fw := NewDegenerateFoldWarning(2, "all predictions are zero")
		if fw.Error() != "fold 2 skipped: all predictions are zero" {
			t.Errorf("unexpected fold warning: %s", fw.Error())
		}
		lw := NewDegenerateLabelWarning(3, "racism", 1, 2)
		if !strings.Contains(lw.Error(), `label "racism" skipped in fold 3`) {
			t.Errorf("unexpected label warning: %s", lw.Error())
		}
	})
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logger.Warn().Object("warning", NewDegenerateLabelWarning(1, "sexism", 0, 2)).Msg("label skipped")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}
	obj, ok := entry["warning"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected warning object, got %v", entry["warning"])
	}
	if obj["label"] != "sexism" || obj["type"] != "DegenerateLabelWarning" {
		t.Errorf("unexpected object: %v", obj)
	}
}

func TestDimensionError(t *testing.T) {
	err := NewDimensionError("FoldEvaluator.Score", 10, 8, 0)
	if !strings.Contains(err.Error(), "axis 0 (rows). Expected 10, got 8") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestNumericalHelpers(t *testing.T) {
	if got := SafeDivide(1, 0); got != 0 {
		t.Errorf("SafeDivide(1, 0) = %v, want 0", got)
	}
	if got := SafeDivide(3, 4); got != 0.75 {
		t.Errorf("SafeDivide(3, 4) = %v, want 0.75", got)
	}
	if got := ClipValue(1.5, 0, 1); got != 1 {
		t.Errorf("ClipValue = %v, want 1", got)
	}
	if err := CheckNumericalStability("loss", []float64{0.1, math.NaN()}, 3); err == nil {
		t.Error("expected instability error for NaN")
	}
	if err := CheckNumericalStability("loss", []float64{0.1, 0.2}, 3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got := StabilizeExp(1000); math.IsInf(got, 0) {
		t.Error("StabilizeExp should not overflow")
	}
}
