package preprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/core/model"
	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/pkg/params"
)

// selector は学習済みの保持列インデックスで射影する共通実装
type selector struct {
	model.BaseAdapter

	// keep は保持する列インデックス（昇順）
	keep []int

	nFeatures int
}

// SelectedIndices は保持された列インデックスを返す
func (s *selector) SelectedIndices() []int {
	out := make([]int, len(s.keep))
	copy(out, s.keep)
	return out
}

func (s *selector) transform(op string, X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError(op, "Transform")
	}
	r, c := X.Dims()
	if c != s.nFeatures {
		return nil, errors.NewDimensionError(op+".Transform", s.nFeatures, c, 1)
	}

	result := mat.NewDense(r, len(s.keep), nil)
	for i := 0; i < r; i++ {
		for k, j := range s.keep {
			result.Set(i, k, X.At(i, j))
		}
	}
	return result, nil
}

// MapColumns は保持された列の名前を返す
func (s *selector) MapColumns(in []string) []string {
	out := make([]string, 0, len(s.keep))
	for _, j := range s.keep {
		if j < len(in) {
			out = append(out, in[j])
		}
	}
	return out
}

// VarianceSelector は分散が閾値以下の列を落とすセレクター
type VarianceSelector struct {
	selector

	// Threshold は保持に必要な最小分散 (デフォルト: 0)
	Threshold float64
}

// NewVarianceSelector は新しいVarianceSelectorを作成する
func NewVarianceSelector(threshold float64) *VarianceSelector {
	return &VarianceSelector{Threshold: threshold}
}

// NewVarianceSelectorFromParams はハイパーパラメータマップからVarianceSelectorを作成する
func NewVarianceSelectorFromParams(p map[string]any) (model.Adapter, error) {
	threshold, err := params.Float(p, "threshold", 0.0)
	if err != nil {
		return nil, err
	}
	return NewVarianceSelector(threshold), nil
}

// Name はアルゴリズムキーを返す
func (s *VarianceSelector) Name() string { return "variance" }

// Fit は訓練データから分散が閾値を超える列を選ぶ
func (s *VarianceSelector) Fit(X mat.Matrix, _ *mat.VecDense) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "VarianceSelector.Fit")
	}

	s.nFeatures = c
	s.keep = s.keep[:0]
	for j := 0; j < c; j++ {
		if columnVariance(X, j) > s.Threshold {
			s.keep = append(s.keep, j)
		}
	}
	if len(s.keep) == 0 {
		return errors.NewValueError("VarianceSelector.Fit", "no feature exceeds the variance threshold")
	}

	s.SetFitted()
	return nil
}

// Transform は選ばれた列だけを残す
func (s *VarianceSelector) Transform(X mat.Matrix) (mat.Matrix, error) {
	return s.transform("VarianceSelector", X)
}

// GetParams はセレクターのパラメータを取得する
func (s *VarianceSelector) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"threshold": s.Threshold,
	}
}

// KBestSelector はラベルとの関連度スコア上位k列を残すセレクター。
// スコアにはラベルとの絶対ピアソン相関を使う。
type KBestSelector struct {
	selector

	// K は保持する列数
	K int

	// Scores は各入力列のスコア
	Scores []float64
}

// NewKBestSelector は新しいKBestSelectorを作成する
func NewKBestSelector(k int) (*KBestSelector, error) {
	if k < 1 {
		return nil, errors.NewValidationError("k", "must be positive", k)
	}
	return &KBestSelector{K: k}, nil
}

// NewKBestSelectorFromParams はハイパーパラメータマップからKBestSelectorを作成する
func NewKBestSelectorFromParams(p map[string]any) (model.Adapter, error) {
	k, err := params.Int(p, "k", 10)
	if err != nil {
		return nil, err
	}
	return NewKBestSelector(k)
}

// Name はアルゴリズムキーを返す
func (s *KBestSelector) Name() string { return "kbest" }

// Fit はラベルとの相関スコア上位K列を選ぶ
func (s *KBestSelector) Fit(X mat.Matrix, y *mat.VecDense) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "KBestSelector.Fit")
	}
	if y == nil {
		return errors.NewValueError("KBestSelector.Fit", "kbest selection requires labels")
	}
	if y.Len() != r {
		return errors.NewDimensionError("KBestSelector.Fit", r, y.Len(), 0)
	}

	s.nFeatures = c
	s.Scores = make([]float64, c)
	for j := 0; j < c; j++ {
		s.Scores[j] = math.Abs(columnCorrelation(X, j, y))
	}

	s.keep = topKIndices(s.Scores, s.K)
	s.SetFitted()
	return nil
}

// Transform は選ばれた列だけを残す
func (s *KBestSelector) Transform(X mat.Matrix) (mat.Matrix, error) {
	return s.transform("KBestSelector", X)
}

// GetParams はセレクターのパラメータを取得する
func (s *KBestSelector) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"k": s.K,
	}
}

// ImportanceSelector はリッジ回帰の係数絶対値を重要度として上位k列を残すセレクター。
// 列は内部で標準化してから回帰するため、係数はスケールに依存しない。
type ImportanceSelector struct {
	selector

	// K は保持する列数
	K int

	// Alpha は内部リッジ回帰の正則化強度
	Alpha float64

	// Importances は各入力列の重要度
	Importances []float64
}

// NewImportanceSelector は新しいImportanceSelectorを作成する
func NewImportanceSelector(k int, alpha float64) (*ImportanceSelector, error) {
	if k < 1 {
		return nil, errors.NewValidationError("k", "must be positive", k)
	}
	if alpha < 0 {
		return nil, errors.NewValidationError("alpha", "must be non-negative", alpha)
	}
	return &ImportanceSelector{K: k, Alpha: alpha}, nil
}

// NewImportanceSelectorFromParams はハイパーパラメータマップからImportanceSelectorを作成する
func NewImportanceSelectorFromParams(p map[string]any) (model.Adapter, error) {
	k, err := params.Int(p, "k", 10)
	if err != nil {
		return nil, err
	}
	alpha, err := params.Float(p, "alpha", 1.0)
	if err != nil {
		return nil, err
	}
	return NewImportanceSelector(k, alpha)
}

// Name はアルゴリズムキーを返す
func (s *ImportanceSelector) Name() string { return "importance" }

// Fit は標準化した特徴量でリッジ回帰を解き、係数絶対値上位K列を選ぶ
func (s *ImportanceSelector) Fit(X mat.Matrix, y *mat.VecDense) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "ImportanceSelector.Fit")
	}
	if y == nil {
		return errors.NewValueError("ImportanceSelector.Fit", "importance selection requires labels")
	}
	if y.Len() != r {
		return errors.NewDimensionError("ImportanceSelector.Fit", r, y.Len(), 0)
	}

	scaler := NewStandardScaler(true, true)
	if err := scaler.Fit(X, nil); err != nil {
		return err
	}
	Z, err := scaler.Transform(X)
	if err != nil {
		return err
	}

	// (Z^T Z + alpha I) w = Z^T y
	var ztz mat.Dense
	ztz.Mul(Z.T(), Z)
	for j := 0; j < c; j++ {
		ztz.Set(j, j, ztz.At(j, j)+s.Alpha)
	}
	var zty mat.VecDense
	zty.MulVec(Z.T(), y)

	var w mat.VecDense
	if err := w.SolveVec(&ztz, &zty); err != nil {
		return errors.Wrap(errors.ErrSingularMatrix, "ImportanceSelector.Fit")
	}

	s.nFeatures = c
	s.Importances = make([]float64, c)
	for j := 0; j < c; j++ {
		s.Importances[j] = math.Abs(w.AtVec(j))
	}

	s.keep = topKIndices(s.Importances, s.K)
	s.SetFitted()
	return nil
}

// Transform は選ばれた列だけを残す
func (s *ImportanceSelector) Transform(X mat.Matrix) (mat.Matrix, error) {
	return s.transform("ImportanceSelector", X)
}

// FeatureImportances は各入力列の重要度を返す
func (s *ImportanceSelector) FeatureImportances() []float64 {
	out := make([]float64, len(s.Importances))
	copy(out, s.Importances)
	return out
}

// GetParams はセレクターのパラメータを取得する
func (s *ImportanceSelector) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"k":     s.K,
		"alpha": s.Alpha,
	}
}

// columnVariance は列jの母分散を返す
func columnVariance(X mat.Matrix, j int) float64 {
	r, _ := X.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		sum += X.At(i, j)
	}
	mean := sum / float64(r)
	ss := 0.0
	for i := 0; i < r; i++ {
		d := X.At(i, j) - mean
		ss += d * d
	}
	return ss / float64(r)
}

// columnCorrelation は列jとyのピアソン相関を返す。定数列は0になる
func columnCorrelation(X mat.Matrix, j int, y *mat.VecDense) float64 {
	r, _ := X.Dims()
	var sx, sy float64
	for i := 0; i < r; i++ {
		sx += X.At(i, j)
		sy += y.AtVec(i)
	}
	mx, my := sx/float64(r), sy/float64(r)

	var cov, vx, vy float64
	for i := 0; i < r; i++ {
		dx := X.At(i, j) - mx
		dy := y.AtVec(i) - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx < 1e-12 || vy < 1e-12 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// topKIndices はスコア上位k個のインデックスを昇順で返す。
// 同点は小さいインデックスを優先する
func topKIndices(scores []float64, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	if k > len(idx) {
		k = len(idx)
	}
	keep := idx[:k]
	sort.Ints(keep)
	return keep
}
