package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/core/model"
	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/pkg/params"
)

// interactionOp は2つの特徴量から交互作用項を作る二項演算
type interactionOp struct {
	name  string
	sep   string
	apply func(a, b float64) float64
}

// Interactor は全特徴量ペアの交互作用項を元の列の後ろに追加する。
// polynomial(積)、sum、difference、quotientの4種をキーで選択する。
type Interactor struct {
	model.BaseAdapter

	op        interactionOp
	nFeatures int
}

var interactionOps = map[string]interactionOp{
	"polynomial": {name: "polynomial", sep: "*", apply: func(a, b float64) float64 { return a * b }},
	"sum":        {name: "sum", sep: "+", apply: func(a, b float64) float64 { return a + b }},
	"difference": {name: "difference", sep: "-", apply: func(a, b float64) float64 { return a - b }},
	"quotient":   {name: "quotient", sep: "/", apply: errors.SafeDivide},
}

// NewInteractor は指定した演算の交互作用トランスフォーマーを作成する
func NewInteractor(op string) (*Interactor, error) {
	o, ok := interactionOps[op]
	if !ok {
		return nil, errors.NewValidationError("op", "unknown interaction operation", op)
	}
	return &Interactor{op: o}, nil
}

// NewInteractorFromParams は指定キーのInteractorコンストラクタを返す
func NewInteractorFromParams(op string) func(map[string]any) (model.Adapter, error) {
	return func(_ map[string]any) (model.Adapter, error) {
		return NewInteractor(op)
	}
}

// Name はアルゴリズムキーを返す
func (t *Interactor) Name() string { return t.op.name }

// Fit は特徴量数を記録する
func (t *Interactor) Fit(X mat.Matrix, _ *mat.VecDense) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "Interactor.Fit")
	}
	t.nFeatures = c
	t.SetFitted()
	return nil
}

// Transform は元の列に全ペアの交互作用列を追加する
func (t *Interactor) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("Interactor", "Transform")
	}
	r, c := X.Dims()
	if c != t.nFeatures {
		return nil, errors.NewDimensionError("Interactor.Transform", t.nFeatures, c, 1)
	}

	pairs := c * (c - 1) / 2
	result := mat.NewDense(r, c+pairs, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j))
		}
		k := c
		for a := 0; a < c; a++ {
			for b := a + 1; b < c; b++ {
				result.Set(i, k, t.op.apply(X.At(i, a), X.At(i, b)))
				k++
			}
		}
	}
	return result, nil
}

// MapColumns は交互作用列の名前を追加した列名を返す
func (t *Interactor) MapColumns(in []string) []string {
	out := make([]string, 0, len(in)+len(in)*(len(in)-1)/2)
	out = append(out, in...)
	for a := 0; a < len(in); a++ {
		for b := a + 1; b < len(in); b++ {
			out = append(out, fmt.Sprintf("%s%s%s", in[a], t.op.sep, in[b]))
		}
	}
	return out
}

// GetParams はトランスフォーマーのパラメータを取得する
func (t *Interactor) GetParams() map[string]interface{} {
	return map[string]interface{}{}
}

// PolynomialExpander は各特徴量の累乗列を追加するトランスフォーマー。
// degree=2なら元の列に2乗列を追加する。
type PolynomialExpander struct {
	model.BaseAdapter

	// Degree は展開する最大次数 (デフォルト: 2)
	Degree int

	nFeatures int
}

// NewPolynomialExpander は新しいPolynomialExpanderを作成する
func NewPolynomialExpander(degree int) (*PolynomialExpander, error) {
	if degree < 2 {
		return nil, errors.NewValidationError("degree", "must be at least 2", degree)
	}
	return &PolynomialExpander{Degree: degree}, nil
}

// NewPolynomialExpanderFromParams はハイパーパラメータマップからPolynomialExpanderを作成する
func NewPolynomialExpanderFromParams(p map[string]any) (model.Adapter, error) {
	degree, err := params.Int(p, "degree", 2)
	if err != nil {
		return nil, err
	}
	return NewPolynomialExpander(degree)
}

// Name はアルゴリズムキーを返す
func (t *PolynomialExpander) Name() string { return "power" }

// Fit は特徴量数を記録する
func (t *PolynomialExpander) Fit(X mat.Matrix, _ *mat.VecDense) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "PolynomialExpander.Fit")
	}
	t.nFeatures = c
	t.SetFitted()
	return nil
}

// Transform は元の列に各次数の累乗列を追加する
func (t *PolynomialExpander) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("PolynomialExpander", "Transform")
	}
	r, c := X.Dims()
	if c != t.nFeatures {
		return nil, errors.NewDimensionError("PolynomialExpander.Transform", t.nFeatures, c, 1)
	}

	result := mat.NewDense(r, c*(t.Degree-1)+c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			result.Set(i, j, v)
			p := v
			for d := 2; d <= t.Degree; d++ {
				p *= v
				result.Set(i, c*(d-1)+j, p)
			}
		}
	}
	return result, nil
}

// MapColumns は累乗列の名前を追加した列名を返す
func (t *PolynomialExpander) MapColumns(in []string) []string {
	out := make([]string, 0, len(in)*t.Degree)
	out = append(out, in...)
	for d := 2; d <= t.Degree; d++ {
		for _, name := range in {
			out = append(out, fmt.Sprintf("%s^%d", name, d))
		}
	}
	return out
}

// GetParams はトランスフォーマーのパラメータを取得する
func (t *PolynomialExpander) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"degree": t.Degree,
	}
}
