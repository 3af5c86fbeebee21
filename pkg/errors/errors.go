// Package errors はmultilabelcv全体のエラー型と警告型を提供します。
// 致命的なエラー（データ読み込み失敗、ラベル集合が空、有効なfoldなし）と、
// fold単位・ラベル単位で回復される警告を型で区別します。
package errors

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	実行を止めるエラー型
//
// ===========================================================================

// DataLoadError は入力ファイルが存在しない、または形式が不正な場合のエラーです。
type DataLoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("multilabelcv: no usable dataset at %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("multilabelcv: no usable dataset at %q: %s", e.Path, e.Reason)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DataLoadError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("reason", e.Reason).
		Str("type", "DataLoadError")
}

// NewDataLoadError は新しいDataLoadErrorを作成し、スタックトレースを付与します。
func NewDataLoadError(path, reason string, err error) error {
	return errors.WithStack(&DataLoadError{Path: path, Reason: reason, Err: err})
}

// EmptyLabelSetError はラベルフィルタリングで全てのラベルが除外された場合のエラーです。
type EmptyLabelSetError struct {
	MinCount   int
	Candidates int // フィルタ前のラベル数
}

func (e *EmptyLabelSetError) Error() string {
	return fmt.Sprintf("multilabelcv: label filtering with min_count=%d removed all %d labels", e.MinCount, e.Candidates)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *EmptyLabelSetError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("min_count", e.MinCount).
		Int("candidates", e.Candidates).
		Str("type", "EmptyLabelSetError")
}

// NewEmptyLabelSetError は新しいEmptyLabelSetErrorを作成し、スタックトレースを付与します。
func NewEmptyLabelSetError(minCount, candidates int) error {
	return errors.WithStack(&EmptyLabelSetError{MinCount: minCount, Candidates: candidates})
}

// NoValidFoldsError は全てのfoldが縮退していて集計統計を計算できない場合のエラーです。
type NoValidFoldsError struct {
	NSplits  int
	Warnings []error // 各foldがスキップされた理由
}

func (e *NoValidFoldsError) Error() string {
	return fmt.Sprintf("multilabelcv: no valid folds out of %d; aggregate metrics cannot be computed", e.NSplits)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NoValidFoldsError) MarshalZerologObject(event *zerolog.Event) {
	reasons := make([]string, 0, len(e.Warnings))
	for _, w := range e.Warnings {
		reasons = append(reasons, w.Error())
	}
	event.Int("n_splits", e.NSplits).
		Strs("warnings", reasons).
		Str("type", "NoValidFoldsError")
}

// NewNoValidFoldsError は新しいNoValidFoldsErrorを作成し、スタックトレースを付与します。
func NewNoValidFoldsError(nSplits int, warnings []error) error {
	return errors.WithStack(&NoValidFoldsError{NSplits: nSplits, Warnings: warnings})
}

// ===========================================================================
//
//	fold・ラベル単位の警告型
//
// ===========================================================================

// DegenerateFoldWarning はfoldがスキップされたことを示す警告です。
// 訓練側またはテスト側が空、予測行列が全て0、などが理由になります。
type DegenerateFoldWarning struct {
	Fold   int // 1始まり
	Reason string
}

func (w *DegenerateFoldWarning) Error() string {
	return fmt.Sprintf("fold %d skipped: %s", w.Fold, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DegenerateFoldWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("fold", w.Fold).
		Str("reason", w.Reason).
		Str("type", "DegenerateFoldWarning")
}

// NewDegenerateFoldWarning は新しいDegenerateFoldWarningを作成します。
func NewDegenerateFoldWarning(fold int, reason string) *DegenerateFoldWarning {
	return &DegenerateFoldWarning{Fold: fold, Reason: reason}
}

// DegenerateLabelWarning はあるfoldで陽性の訓練例が足りずラベルの学習を省略したことを示す警告です。
// そのラベルの予測列は全て0（常に陰性）になります。
type DegenerateLabelWarning struct {
	Fold         int
	Label        string
	Positives    int
	MinPositives int
}

func (w *DegenerateLabelWarning) Error() string {
	return fmt.Sprintf("label %q skipped in fold %d: %d positive training examples (need %d)",
		w.Label, w.Fold, w.Positives, w.MinPositives)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DegenerateLabelWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("fold", w.Fold).
		Str("label", w.Label).
		Int("positives", w.Positives).
		Int("min_positives", w.MinPositives).
		Str("type", "DegenerateLabelWarning")
}

// NewDegenerateLabelWarning は新しいDegenerateLabelWarningを作成します。
func NewDegenerateLabelWarning(fold int, label string, positives, minPositives int) *DegenerateLabelWarning {
	return &DegenerateLabelWarning{Fold: fold, Label: label, Positives: positives, MinPositives: minPositives}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `PredictProba` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("multilabelcv: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0: 行, 1: 列
}

func (e *DimensionError) Error() string {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("multilabelcv: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("multilabelcv: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError は引数の値が不適切な場合のエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("multilabelcv: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError は分類器や変換器の学習・予測で発生した一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("multilabelcv: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("multilabelcv: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError は予測値や損失にNaN・Infが現れた場合のエラーです。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	parts := make([]string, 0, 6)
	for i, v := range e.Values {
		if i >= 5 {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, fmt.Sprintf("%.6g", v))
	}
	return fmt.Sprintf("multilabelcv: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, strings.Join(parts, ", "))
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{Operation: operation, Values: values, Iteration: iteration})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")
)
