package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/core/model"
	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/pkg/params"
)

// defaultMaxCategories は列をカテゴリカルとみなすユニーク値数の上限
const defaultMaxCategories = 10

// categoricalColumns は訓練データからカテゴリカル列を検出する。
// ユニーク値数がmaxCategories以下の列をカテゴリカルとして扱い、
// 列ごとにソート済みのユニーク値を返す。
func categoricalColumns(X mat.Matrix, maxCategories int) map[int][]float64 {
	r, c := X.Dims()
	out := make(map[int][]float64)
	for j := 0; j < c; j++ {
		seen := make(map[float64]struct{})
		small := true
		for i := 0; i < r; i++ {
			seen[X.At(i, j)] = struct{}{}
			if len(seen) > maxCategories {
				small = false
				break
			}
		}
		if !small {
			continue
		}
		vals := make([]float64, 0, len(seen))
		for v := range seen {
			vals = append(vals, v)
		}
		sort.Float64s(vals)
		out[j] = vals
	}
	return out
}

// OrdinalEncoder はカテゴリカル列の値を密な整数コードに写像する。
// コードは訓練データのユニーク値の昇順で割り当てられ、未知の値は-1になる。
type OrdinalEncoder struct {
	model.BaseAdapter

	// MaxCategories はカテゴリカル列とみなすユニーク値数の上限
	MaxCategories int

	// codes は列インデックスごとの値→コード表
	codes map[int]map[float64]float64

	nFeatures int
}

// NewOrdinalEncoder は新しいOrdinalEncoderを作成する
func NewOrdinalEncoder(maxCategories int) *OrdinalEncoder {
	return &OrdinalEncoder{MaxCategories: maxCategories}
}

// NewOrdinalEncoderFromParams はハイパーパラメータマップからOrdinalEncoderを作成する
func NewOrdinalEncoderFromParams(p map[string]any) (model.Adapter, error) {
	maxCat, err := params.Int(p, "max_categories", defaultMaxCategories)
	if err != nil {
		return nil, err
	}
	return NewOrdinalEncoder(maxCat), nil
}

// Name はアルゴリズムキーを返す
func (e *OrdinalEncoder) Name() string { return "ordinal" }

// Fit は訓練データからカテゴリカル列とコード表を学習する
func (e *OrdinalEncoder) Fit(X mat.Matrix, _ *mat.VecDense) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "OrdinalEncoder.Fit")
	}

	e.nFeatures = c
	e.codes = make(map[int]map[float64]float64)
	for j, vals := range categoricalColumns(X, e.MaxCategories) {
		m := make(map[float64]float64, len(vals))
		for code, v := range vals {
			m[v] = float64(code)
		}
		e.codes[j] = m
	}

	e.SetFitted()
	return nil
}

// Transform は学習済みのコード表で値を置き換える
func (e *OrdinalEncoder) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OrdinalEncoder", "Transform")
	}
	r, c := X.Dims()
	if c != e.nFeatures {
		return nil, errors.NewDimensionError("OrdinalEncoder.Transform", e.nFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if m, ok := e.codes[j]; ok {
				if code, ok := m[v]; ok {
					v = code
				} else {
					v = -1
				}
			}
			result.Set(i, j, v)
		}
	}
	return result, nil
}

// GetParams はエンコーダーのパラメータを取得する
func (e *OrdinalEncoder) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_categories": e.MaxCategories,
	}
}

// DummyEncoder はカテゴリカル列をone-hot指示変数列に展開する。
// 非カテゴリカル列はそのまま通過する。
type DummyEncoder struct {
	model.BaseAdapter

	// MaxCategories はカテゴリカル列とみなすユニーク値数の上限
	MaxCategories int

	// DropFirst は各カテゴリカル列の先頭カテゴリを落とすかどうか
	DropFirst bool

	// categories は列インデックスごとの学習済みカテゴリ値（昇順）
	categories map[int][]float64

	nFeatures int
}

// NewDummyEncoder は新しいDummyEncoderを作成する
func NewDummyEncoder(maxCategories int, dropFirst bool) *DummyEncoder {
	return &DummyEncoder{MaxCategories: maxCategories, DropFirst: dropFirst}
}

// NewDummyEncoderFromParams はハイパーパラメータマップからDummyEncoderを作成する
func NewDummyEncoderFromParams(p map[string]any) (model.Adapter, error) {
	maxCat, err := params.Int(p, "max_categories", defaultMaxCategories)
	if err != nil {
		return nil, err
	}
	dropFirst, err := params.Bool(p, "drop_first", false)
	if err != nil {
		return nil, err
	}
	return NewDummyEncoder(maxCat, dropFirst), nil
}

// Name はアルゴリズムキーを返す
func (e *DummyEncoder) Name() string { return "dummy" }

// Fit は訓練データからカテゴリカル列とカテゴリ集合を学習する
func (e *DummyEncoder) Fit(X mat.Matrix, _ *mat.VecDense) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "DummyEncoder.Fit")
	}

	e.nFeatures = c
	e.categories = categoricalColumns(X, e.MaxCategories)

	e.SetFitted()
	return nil
}

// outputCategories は出力列を生成するカテゴリ値を返す（DropFirst適用済み）
func (e *DummyEncoder) outputCategories(j int) []float64 {
	vals := e.categories[j]
	if e.DropFirst && len(vals) > 0 {
		return vals[1:]
	}
	return vals
}

// Transform はカテゴリカル列を指示変数列に展開する
func (e *DummyEncoder) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("DummyEncoder", "Transform")
	}
	r, c := X.Dims()
	if c != e.nFeatures {
		return nil, errors.NewDimensionError("DummyEncoder.Transform", e.nFeatures, c, 1)
	}

	outCols := 0
	for j := 0; j < c; j++ {
		if _, ok := e.categories[j]; ok {
			outCols += len(e.outputCategories(j))
		} else {
			outCols++
		}
	}

	result := mat.NewDense(r, outCols, nil)
	for i := 0; i < r; i++ {
		k := 0
		for j := 0; j < c; j++ {
			if _, ok := e.categories[j]; !ok {
				result.Set(i, k, X.At(i, j))
				k++
				continue
			}
			v := X.At(i, j)
			for _, cat := range e.outputCategories(j) {
				if v == cat {
					result.Set(i, k, 1)
				}
				k++
			}
		}
	}
	return result, nil
}

// MapColumns は展開後の列名を返す
func (e *DummyEncoder) MapColumns(in []string) []string {
	out := make([]string, 0, len(in))
	for j, name := range in {
		if _, ok := e.categories[j]; !ok {
			out = append(out, name)
			continue
		}
		for _, cat := range e.outputCategories(j) {
			out = append(out, fmt.Sprintf("%s=%g", name, cat))
		}
	}
	return out
}

// GetParams はエンコーダーのパラメータを取得する
func (e *DummyEncoder) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_categories": e.MaxCategories,
		"drop_first":     e.DropFirst,
	}
}

// TargetEncoder はカテゴリカル列の値をカテゴリ別ラベル平均で置き換える。
// 平滑化により低頻度カテゴリを全体平均に寄せる。未知の値は全体平均になる。
type TargetEncoder struct {
	model.BaseAdapter

	// MaxCategories はカテゴリカル列とみなすユニーク値数の上限
	MaxCategories int

	// Smoothing は平滑化の強さ（カテゴリ件数に加算される擬似件数）
	Smoothing float64

	// encodings は列インデックスごとの値→エンコード値表
	encodings map[int]map[float64]float64

	// globalMean は訓練ラベルの全体平均
	globalMean float64

	nFeatures int
}

// NewTargetEncoder は新しいTargetEncoderを作成する
func NewTargetEncoder(maxCategories int, smoothing float64) *TargetEncoder {
	return &TargetEncoder{MaxCategories: maxCategories, Smoothing: smoothing}
}

// NewTargetEncoderFromParams はハイパーパラメータマップからTargetEncoderを作成する
func NewTargetEncoderFromParams(p map[string]any) (model.Adapter, error) {
	maxCat, err := params.Int(p, "max_categories", defaultMaxCategories)
	if err != nil {
		return nil, err
	}
	smoothing, err := params.Float(p, "smoothing", 1.0)
	if err != nil {
		return nil, err
	}
	return NewTargetEncoder(maxCat, smoothing), nil
}

// Name はアルゴリズムキーを返す
func (e *TargetEncoder) Name() string { return "target" }

// Fit は訓練データとラベルからカテゴリ別のエンコード値を学習する
func (e *TargetEncoder) Fit(X mat.Matrix, y *mat.VecDense) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "TargetEncoder.Fit")
	}
	if y == nil {
		return errors.NewValueError("TargetEncoder.Fit", "target encoding requires labels")
	}
	if y.Len() != r {
		return errors.NewDimensionError("TargetEncoder.Fit", r, y.Len(), 0)
	}

	sum := 0.0
	for i := 0; i < r; i++ {
		sum += y.AtVec(i)
	}
	e.globalMean = sum / float64(r)

	e.nFeatures = c
	e.encodings = make(map[int]map[float64]float64)
	for j := range categoricalColumns(X, e.MaxCategories) {
		sums := make(map[float64]float64)
		counts := make(map[float64]float64)
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			sums[v] += y.AtVec(i)
			counts[v]++
		}
		enc := make(map[float64]float64, len(sums))
		for v, n := range counts {
			// 平滑化: (sum + smoothing*globalMean) / (n + smoothing)
			enc[v] = (sums[v] + e.Smoothing*e.globalMean) / (n + e.Smoothing)
		}
		e.encodings[j] = enc
	}

	e.SetFitted()
	return nil
}

// Transform は学習済みのエンコード値で値を置き換える
func (e *TargetEncoder) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("TargetEncoder", "Transform")
	}
	r, c := X.Dims()
	if c != e.nFeatures {
		return nil, errors.NewDimensionError("TargetEncoder.Transform", e.nFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if enc, ok := e.encodings[j]; ok {
				if ev, ok := enc[v]; ok {
					v = ev
				} else {
					v = e.globalMean
				}
			}
			result.Set(i, j, v)
		}
	}
	return result, nil
}

// GetParams はエンコーダーのパラメータを取得する
func (e *TargetEncoder) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_categories": e.MaxCategories,
		"smoothing":      e.Smoothing,
	}
}
