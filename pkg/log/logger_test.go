package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

// TestZerologLogger checks level filtering and structured fields
func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.Info("Fold completed", FoldKey, 2, MacroF1Key, 0.5, LabelsKey, 3)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e["message"] != "Fold completed" {
		t.Errorf("unexpected message: %v", e["message"])
	}
	if e[FoldKey] != 2.0 || e[MacroF1Key] != 0.5 {
		t.Errorf("unexpected fields: %v", e)
	}
	if e["level"] != "info" {
		t.Errorf("unexpected level: %v", e["level"])
	}
}

// TestZerologLoggerError checks that a leading error gets a stack trace
func TestZerologLoggerError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	logger.Error("Evaluation failed", errors.New("no valid folds"), NSplitsKey, 5)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e[ErrAttrKey] != "no valid folds" {
		t.Errorf("error field = %v", e[ErrAttrKey])
	}
	st, _ := e[StacktraceAttrKey].(string)
	if !strings.Contains(st, "logger_test.go") {
		t.Errorf("expected stack trace pointing at the test, got %q", st)
	}
}

// TestZerologLoggerWith checks context fields
func TestZerologLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	base := NewZerologLogger(&buf, LevelDebug)
	provider := NewProvider(base)

	logger := provider.GetLoggerWithName("multilabel.trainer").With(FoldKey, 4)
	logger.Debug("Training label", LabelKey, "insult")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e[ComponentKey] != "multilabel.trainer" || e[FoldKey] != 4.0 || e[LabelKey] != "insult" {
		t.Errorf("unexpected entry: %v", e)
	}
	if provider.GetLogger() != Logger(base) {
		t.Error("GetLogger should return the base logger")
	}
}

func TestLoggerEnabled(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelWarn)

	if logger.Enabled(ctx, LevelInfo) {
		t.Error("Info should be disabled at Warn level")
	}
	if !logger.Enabled(ctx, LevelError) {
		t.Error("Error should be enabled at Warn level")
	}
	if Nop().Enabled(ctx, LevelError) {
		t.Error("Nop logger should be disabled")
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	if _, err := SetupLogger(&buf, "verbose", "json"); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := SetupLogger(&buf, "info", "xml"); err == nil {
		t.Error("expected error for invalid format")
	}
	logger, err := SetupLogger(&buf, "debug", "console")
	if err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}
	logger.Info("console line", FoldKey, 1)
	if !strings.Contains(buf.String(), "console line") {
		t.Errorf("console output missing message: %q", buf.String())
	}
}

// TestTestLogger exercises the capture helpers
func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelInfo)

	testLogger.Debug("debug message")
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", LabelKey, "racism")
	testLogger.Error("error message", fmt.Errorf("test error"), ErrorCodeKey, ErrorDegenerate)

	if buffer.Len() == 0 {
		t.Fatal("Expected log output")
	}
	if testLogger.ContainsMessage("debug message") {
		t.Error("Debug message should be filtered at Info level")
	}
	for _, msg := range []string{"info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found", msg)
		}
	}
	if !testLogger.ContainsField(ErrAttrKey, "test error") {
		t.Error("leading error should be logged under the error key")
	}
	if got := testLogger.CountLevel(LevelWarn); got != 1 {
		t.Errorf("CountLevel(Warn) = %d, want 1", got)
	}

	child := testLogger.With(ComponentKey, "engine")
	child.Info("child message")
	if !testLogger.ContainsField(ComponentKey, "engine") {
		t.Error("With fields should be written through the shared sink")
	}

	testLogger.Clear()
	if buffer.Len() != 0 {
		t.Error("Clear should empty the buffer")
	}
}

// TestConcurrentLogging checks the TestLogger under concurrent writers
func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	const goroutines, perGoroutine = 4, 25
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				testLogger.Info("label trained", "worker", id, "n", j)
			}
		}(g)
	}
	wg.Wait()

	entries, err := testLogger.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != goroutines*perGoroutine {
		t.Errorf("Expected %d entries, got %d", goroutines*perGoroutine, len(entries))
	}
}

func BenchmarkZerologLogger(b *testing.B) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo).With(ComponentKey, "benchmark")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", FoldKey, i, MacroF1Key, 0.5)
	}
}
