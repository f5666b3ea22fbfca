// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// レシピの組み立てはすべて設定検証の段階で失敗し、レシピの実行は1レシピ単位で
// 隔離されるという方針に沿って、構造化されたエラー情報を提供します。
package errors

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("souschef-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// これにより、ConvergenceWarningなどのカスタム警告の処理方法を制御できます。
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	設定検証時のエラー型（レシピ実行前に必ず検出される）
//
// ===========================================================================

// UnknownAlgorithmError はステップに存在しないアルゴリズムキーが指定された場合のエラーです。
type UnknownAlgorithmError struct {
	Step  string
	Key   string
	Known []string
}

func (e *UnknownAlgorithmError) Error() string {
	known := append([]string(nil), e.Known...)
	sort.Strings(known)
	return fmt.Sprintf("souschef: unknown algorithm %q for step %q (known: %s)",
		e.Key, e.Step, strings.Join(known, ", "))
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnknownAlgorithmError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("step", e.Step).
		Str("key", e.Key).
		Strs("known", e.Known).
		Str("type", "UnknownAlgorithmError")
}

// NewUnknownAlgorithmError は新しいUnknownAlgorithmErrorを作成し、スタックトレースを付与します。
func NewUnknownAlgorithmError(step, key string, known []string) error {
	err := &UnknownAlgorithmError{Step: step, Key: key, Known: known}
	return errors.WithStack(err)
}

// MalformedParameterError はハイパーパラメータのトークン列が解釈できない場合のエラーです。
// 1トークンは固定値、2トークンは探索範囲を意味し、3トークン以上は常に不正です。
type MalformedParameterError struct {
	Param  string
	Tokens []string
	Reason string
}

func (e *MalformedParameterError) Error() string {
	return fmt.Sprintf("souschef: malformed parameter %q (tokens: %v): %s",
		e.Param, e.Tokens, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *MalformedParameterError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param", e.Param).
		Strs("tokens", e.Tokens).
		Str("reason", e.Reason).
		Str("type", "MalformedParameterError")
}

// NewMalformedParameterError は新しいMalformedParameterErrorを作成し、スタックトレースを付与します。
func NewMalformedParameterError(param string, tokens []string, reason string) error {
	err := &MalformedParameterError{Param: param, Tokens: tokens, Reason: reason}
	return errors.WithStack(err)
}

// UnknownMetricError は評価指標の名前が登録されていない場合のエラーです。
// 実行途中ではなく設定検証の段階で検出されます。
type UnknownMetricError struct {
	Metric string
	Known  []string
}

func (e *UnknownMetricError) Error() string {
	known := append([]string(nil), e.Known...)
	sort.Strings(known)
	return fmt.Sprintf("souschef: unknown metric %q (known: %s)",
		e.Metric, strings.Join(known, ", "))
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnknownMetricError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("metric", e.Metric).
		Strs("known", e.Known).
		Str("type", "UnknownMetricError")
}

// NewUnknownMetricError は新しいUnknownMetricErrorを作成し、スタックトレースを付与します。
func NewUnknownMetricError(metric string, known []string) error {
	err := &UnknownMetricError{Metric: metric, Known: known}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	レシピ実行時のエラー型（1レシピ単位で隔離される）
//
// ===========================================================================

// StepFitError はレシピ内のステップが学習（fit）に失敗した場合のエラーです。
// Recipe Executorが捕捉し、兄弟レシピの実行は継続されます。
type StepFitError struct {
	Step string
	Key  string
	Err  error
}

func (e *StepFitError) Error() string {
	return fmt.Sprintf("souschef: step %s/%s failed to fit: %v", e.Step, e.Key, e.Err)
}

func (e *StepFitError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *StepFitError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("step", e.Step).
		Str("key", e.Key).
		AnErr("cause", e.Err).
		Str("type", "StepFitError")
}

// NewStepFitError は新しいStepFitErrorを作成し、スタックトレースを付与します。
func NewStepFitError(step, key string, err error) error {
	fitErr := &StepFitError{Step: step, Key: key, Err: err}
	return errors.WithStack(fitErr)
}

// StepTransformError はレシピ内のステップが変換（transform）に失敗した場合のエラーです。
type StepTransformError struct {
	Step      string
	Key       string
	Partition string
	Err       error
}

func (e *StepTransformError) Error() string {
	return fmt.Sprintf("souschef: step %s/%s failed to transform partition %q: %v",
		e.Step, e.Key, e.Partition, e.Err)
}

func (e *StepTransformError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *StepTransformError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("step", e.Step).
		Str("key", e.Key).
		Str("partition", e.Partition).
		AnErr("cause", e.Err).
		Str("type", "StepTransformError")
}

// NewStepTransformError は新しいStepTransformErrorを作成し、スタックトレースを付与します。
func NewStepTransformError(step, key, partition string, err error) error {
	trErr := &StepTransformError{Step: step, Key: key, Partition: partition, Err: err}
	return errors.WithStack(trErr)
}

// EmptyResultsError はすべてのレシピが失敗し、比較可能な結果が存在しない場合のエラーです。
type EmptyResultsError struct {
	Metric string
}

func (e *EmptyResultsError) Error() string {
	return fmt.Sprintf("souschef: no successful recipe to select best %q from", e.Metric)
}

// NewEmptyResultsError は新しいEmptyResultsErrorを作成し、スタックトレースを付与します。
func NewEmptyResultsError(metric string) error {
	err := &EmptyResultsError{Metric: metric}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	アダプタ共通のエラー型
//
// ===========================================================================

// NotFittedError はアダプタが未学習の状態で `Transform` や `Predict` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("souschef: %s: this adapter is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("souschef: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("souschef: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ValidationError は設定パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("souschef: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
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
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ConvergenceWarning は最適化アルゴリズムが収束しなかった場合に発生する警告です。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or adjusting parameters.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// UndefinedMetricWarning は評価指標が計算できない場合に発生する警告です。
// 例えば、陽性クラスが一つも存在しないデータでAUCを計算しようとした場合など。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
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
//	数値計算のエラー型
//
// ===========================================================================

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf、オーバーフロー、アンダーフローなどを検出します。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "gradient_update", "loss_calculation"）
	Values    []float64 // 問題のある値
	Iteration int       // 発生したイテレーション番号
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("souschef: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
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

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")

	// ErrNoPartition は要求されたパーティションが存在しない場合のエラーです。
	ErrNoPartition = New("partition does not exist")
)
