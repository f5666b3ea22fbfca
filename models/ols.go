// Package models provides the model-step adapters a recipe can end with:
// ordinary least squares, ridge regression, and binary logistic regression.
package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/core/model"
	"github.com/souschef-ml/souschef/core/parallel"
	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/pkg/params"
)

// OLS は正規方程式による線形回帰モデル
type OLS struct {
	model.BaseAdapter

	// Weights は学習された係数
	Weights *mat.VecDense

	// Intercept は学習された切片
	Intercept float64

	// NFeatures は特徴量の数
	NFeatures int
}

// NewOLS は新しい線形回帰モデルを作成する
func NewOLS() *OLS {
	return &OLS{}
}

// NewOLSFromParams はハイパーパラメータマップからOLSを作成する
func NewOLSFromParams(_ map[string]any) (model.Adapter, error) {
	return NewOLS(), nil
}

// Name はアルゴリズムキーを返す
func (m *OLS) Name() string { return "ols" }

// Fit はモデルを訓練データで学習させる
// 正規方程式 w = (X^T * X)^(-1) * X^T * y を使用
func (m *OLS) Fit(X mat.Matrix, y *mat.VecDense) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "OLS.Fit")
	}
	if y == nil {
		return errors.NewValueError("OLS.Fit", "regression requires labels")
	}
	if y.Len() != r {
		return errors.NewDimensionError("OLS.Fit", r, y.Len(), 0)
	}

	m.NFeatures = c

	// 切片項のために X に 1 の列を追加
	XWithIntercept := mat.NewDense(r, c+1, nil)

	// 並列処理の閾値（この値以下の行数では逐次処理を使用）
	const parallelThreshold = 1000

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			XWithIntercept.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				XWithIntercept.Set(i, j+1, X.At(i, j))
			}
		}
	})

	var xtx mat.Dense
	xtx.Mul(XWithIntercept.T(), XWithIntercept)

	var xty mat.VecDense
	xty.MulVec(XWithIntercept.T(), y)

	weights := mat.NewVecDense(c+1, nil)
	if err := weights.SolveVec(&xtx, &xty); err != nil {
		return errors.Wrap(errors.ErrSingularMatrix, "OLS.Fit")
	}

	// 切片と重みを分離
	m.Intercept = weights.AtVec(0)
	m.Weights = mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		m.Weights.SetVec(i, weights.AtVec(i+1))
	}

	m.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
func (m *OLS) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("OLS", "Predict")
	}
	return linearPredict(X, m.Weights, m.Intercept, m.NFeatures, "OLS.Predict")
}

// Score はモデルの決定係数（R²）を計算する
func (m *OLS) Score(X mat.Matrix, y *mat.VecDense) (float64, error) {
	if !m.IsFitted() {
		return 0, errors.NewNotFittedError("OLS", "Score")
	}
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	return r2(y, pred)
}

// FeatureImportances は係数の絶対値を重要度として返す
func (m *OLS) FeatureImportances() []float64 {
	return absWeights(m.Weights)
}

// GetParams はモデルのパラメータを取得する
func (m *OLS) GetParams() map[string]interface{} {
	return map[string]interface{}{}
}

// Ridge はL2正則化付き線形回帰モデル
// 正規方程式 w = (X^T * X + alpha * I)^(-1) * X^T * y を解く。切片は正則化されない
type Ridge struct {
	model.BaseAdapter

	// Alpha は正則化強度
	Alpha float64

	// Weights は学習された係数
	Weights *mat.VecDense

	// Intercept は学習された切片
	Intercept float64

	// NFeatures は特徴量の数
	NFeatures int
}

// NewRidge は新しいリッジ回帰モデルを作成する
func NewRidge(alpha float64) (*Ridge, error) {
	if alpha < 0 {
		return nil, errors.NewValidationError("alpha", "must be non-negative", alpha)
	}
	return &Ridge{Alpha: alpha}, nil
}

// NewRidgeFromParams はハイパーパラメータマップからRidgeを作成する
func NewRidgeFromParams(p map[string]any) (model.Adapter, error) {
	alpha, err := params.Float(p, "alpha", 1.0)
	if err != nil {
		return nil, err
	}
	return NewRidge(alpha)
}

// Name はアルゴリズムキーを返す
func (m *Ridge) Name() string { return "ridge" }

// Fit はモデルを訓練データで学習させる
func (m *Ridge) Fit(X mat.Matrix, y *mat.VecDense) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "Ridge.Fit")
	}
	if y == nil {
		return errors.NewValueError("Ridge.Fit", "regression requires labels")
	}
	if y.Len() != r {
		return errors.NewDimensionError("Ridge.Fit", r, y.Len(), 0)
	}

	m.NFeatures = c

	XWithIntercept := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		XWithIntercept.Set(i, 0, 1.0)
		for j := 0; j < c; j++ {
			XWithIntercept.Set(i, j+1, X.At(i, j))
		}
	}

	var xtx mat.Dense
	xtx.Mul(XWithIntercept.T(), XWithIntercept)

	// 切片（列0）は正則化しない
	for j := 1; j <= c; j++ {
		xtx.Set(j, j, xtx.At(j, j)+m.Alpha)
	}

	var xty mat.VecDense
	xty.MulVec(XWithIntercept.T(), y)

	weights := mat.NewVecDense(c+1, nil)
	if err := weights.SolveVec(&xtx, &xty); err != nil {
		return errors.Wrap(errors.ErrSingularMatrix, "Ridge.Fit")
	}

	m.Intercept = weights.AtVec(0)
	m.Weights = mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		m.Weights.SetVec(i, weights.AtVec(i+1))
	}

	m.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
func (m *Ridge) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("Ridge", "Predict")
	}
	return linearPredict(X, m.Weights, m.Intercept, m.NFeatures, "Ridge.Predict")
}

// Score はモデルの決定係数（R²）を計算する
func (m *Ridge) Score(X mat.Matrix, y *mat.VecDense) (float64, error) {
	if !m.IsFitted() {
		return 0, errors.NewNotFittedError("Ridge", "Score")
	}
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	return r2(y, pred)
}

// FeatureImportances は係数の絶対値を重要度として返す
func (m *Ridge) FeatureImportances() []float64 {
	return absWeights(m.Weights)
}

// GetParams はモデルのパラメータを取得する
func (m *Ridge) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha": m.Alpha,
	}
}

// linearPredict は y = X * w + b を計算する
func linearPredict(X mat.Matrix, w *mat.VecDense, b float64, nFeatures int, op string) (*mat.VecDense, error) {
	r, c := X.Dims()
	if c != nFeatures {
		return nil, errors.NewDimensionError(op, nFeatures, c, 1)
	}
	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		pred := b
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * w.AtVec(j)
		}
		out.SetVec(i, pred)
	}
	return out, nil
}

// r2 は決定係数を計算する
func r2(y, pred *mat.VecDense) (float64, error) {
	if y == nil || y.Len() != pred.Len() {
		return 0, errors.NewValueError("r2", "labels and predictions disagree")
	}
	n := y.Len()
	var mean float64
	for i := 0; i < n; i++ {
		mean += y.AtVec(i)
	}
	mean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		d := y.AtVec(i) - mean
		tss += d * d
		e := y.AtVec(i) - pred.AtVec(i)
		rss += e * e
	}
	if tss == 0 {
		return 0, errors.Newf("total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}

// absWeights は係数の絶対値スライスを返す
func absWeights(w *mat.VecDense) []float64 {
	if w == nil {
		return nil
	}
	out := make([]float64, w.Len())
	for i := range out {
		v := w.AtVec(i)
		if v < 0 {
			v = -v
		}
		out[i] = v
	}
	return out
}
