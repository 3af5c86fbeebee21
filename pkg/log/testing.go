package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// TestLogger captures records as JSON lines in memory so tests can assert on
// what a component logged. It is safe for concurrent use because the
// per-label trainer may log from several goroutines.
type TestLogger struct {
	sink   *testSink
	level  Level
	fields map[string]interface{}
}

type testSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewTestLogger creates a TestLogger with the given minimum level and returns
// the buffer holding the captured output.
//
//	logger, buf := log.NewTestLogger(log.LevelDebug)
//	engine := multilabel.NewEngine(multilabel.WithLogger(logger))
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	sink := &testSink{}
	return &TestLogger{sink: sink, level: level, fields: map[string]interface{}{}}, &sink.buf
}

// Debug implements Logger.Debug.
func (t *TestLogger) Debug(msg string, fields ...any) { t.write(LevelDebug, msg, fields) }

// Info implements Logger.Info.
func (t *TestLogger) Info(msg string, fields ...any) { t.write(LevelInfo, msg, fields) }

// Warn implements Logger.Warn.
func (t *TestLogger) Warn(msg string, fields ...any) { t.write(LevelWarn, msg, fields) }

// Error implements Logger.Error.
func (t *TestLogger) Error(msg string, fields ...any) {
	t.write(LevelError, msg, leadingError(fields))
}

// With implements Logger.With.
func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]interface{}, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	addFields(merged, fields)
	return &TestLogger{sink: t.sink, level: t.level, fields: merged}
}

// Enabled implements Logger.Enabled.
func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return t.level <= level
}

func (t *TestLogger) write(level Level, msg string, fields []any) {
	if level < t.level {
		return
	}
	entry := map[string]interface{}{
		"level":   level.String(),
		"message": msg,
	}
	for k, v := range t.fields {
		entry[k] = v
	}
	addFields(entry, fields)

	line, err := json.Marshal(entry)
	if err != nil {
		line = []byte(fmt.Sprintf(`{"level":%q,"message":%q,"marshal_error":%q}`, level.String(), msg, err.Error()))
	}

	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.buf.Write(line)
	t.sink.buf.WriteByte('\n')
}

func addFields(dst map[string]interface{}, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			dst[key] = err.Error()
			continue
		}
		dst[key] = fields[i+1]
	}
}

// Entries parses the captured output into one map per record.
func (t *TestLogger) Entries() ([]map[string]interface{}, error) {
	t.sink.mu.Lock()
	raw := t.sink.buf.String()
	t.sink.mu.Unlock()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ContainsMessage reports whether any record's message contains message.
func (t *TestLogger) ContainsMessage(message string) bool {
	entries, err := t.Entries()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if m, ok := e["message"].(string); ok && strings.Contains(m, message) {
			return true
		}
	}
	return false
}

// ContainsField reports whether any record has key == value. Numbers come back
// from JSON as float64.
func (t *TestLogger) ContainsField(key string, value interface{}) bool {
	entries, err := t.Entries()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if v, ok := e[key]; ok && v == value {
			return true
		}
	}
	return false
}

// CountLevel returns how many records were written at level.
func (t *TestLogger) CountLevel(level Level) int {
	entries, err := t.Entries()
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e["level"] == level.String() {
			n++
		}
	}
	return n
}

// Clear drops everything captured so far.
func (t *TestLogger) Clear() {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.buf.Reset()
}
