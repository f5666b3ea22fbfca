package preprocessing

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/core/model"
	"github.com/souschef-ml/souschef/dataset"
	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/pkg/params"
)

// 再標本化はtrainパーティションだけを書き換える。test、validation、fullは
// 評価の分布を保つため手を付けない。

// classIndices はラベル値ごとの行インデックスを返す
func classIndices(y *mat.VecDense) map[float64][]int {
	out := make(map[float64][]int)
	for i := 0; i < y.Len(); i++ {
		v := y.AtVec(i)
		out[v] = append(out[v], i)
	}
	return out
}

// sortedClasses はラベル値を昇順で返す
func sortedClasses(classes map[float64][]int) []float64 {
	keys := make([]float64, 0, len(classes))
	for k := range classes {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

// trainXY はtrainパーティションの特徴量とラベルを取り出す
func trainXY(ds *dataset.Dataset, op string) (*mat.Dense, *mat.VecDense, error) {
	X, err := ds.X(dataset.Train)
	if err != nil {
		return nil, nil, err
	}
	y, err := ds.Y(dataset.Train)
	if err != nil {
		return nil, nil, err
	}
	if y == nil {
		return nil, nil, errors.NewValueError(op, "resampling requires labels")
	}
	return X, y, nil
}

// rebuildTrain は行インデックス列からtrainパーティションを作り直す
func rebuildTrain(ds *dataset.Dataset, X *mat.Dense, y *mat.VecDense, rows []int) {
	_, c := X.Dims()
	outX := mat.NewDense(len(rows), c, nil)
	outY := mat.NewVecDense(len(rows), nil)
	for i, idx := range rows {
		for j := 0; j < c; j++ {
			outX.Set(i, j, X.At(idx, j))
		}
		outY.SetVec(i, y.AtVec(idx))
	}
	ds.SetX(dataset.Train, outX)
	ds.SetY(dataset.Train, outY)
}

// RandomOversampler は少数クラスの行を復元抽出で複製し、
// 全クラスの件数を最大クラスに揃える
type RandomOversampler struct {
	// Seed は乱数シード
	Seed int64
}

// NewRandomOversamplerFromParams はハイパーパラメータマップからRandomOversamplerを作成する
func NewRandomOversamplerFromParams(p map[string]any) (model.Adapter, error) {
	seed, err := params.Int(p, "seed", 42)
	if err != nil {
		return nil, err
	}
	return &RandomOversampler{Seed: int64(seed)}, nil
}

// Name はアルゴリズムキーを返す
func (o *RandomOversampler) Name() string { return "oversample" }

// Apply はtrainパーティションをオーバーサンプリングする
func (o *RandomOversampler) Apply(ds *dataset.Dataset) error {
	X, y, err := trainXY(ds, "RandomOversampler.Apply")
	if err != nil {
		return err
	}

	classes := classIndices(y)
	maxCount := 0
	for _, rows := range classes {
		if len(rows) > maxCount {
			maxCount = len(rows)
		}
	}

	r := rand.New(rand.NewPCG(uint64(o.Seed), uint64(o.Seed)))
	var rows []int
	for _, cls := range sortedClasses(classes) {
		members := classes[cls]
		rows = append(rows, members...)
		for n := len(members); n < maxCount; n++ {
			rows = append(rows, members[r.IntN(len(members))])
		}
	}

	rebuildTrain(ds, X, y, rows)
	return nil
}

// GetParams はサンプラーのパラメータを取得する
func (o *RandomOversampler) GetParams() map[string]interface{} {
	return map[string]interface{}{"seed": o.Seed}
}

// RandomUndersampler は多数クラスの行を非復元抽出で間引き、
// 全クラスの件数を最小クラスに揃える
type RandomUndersampler struct {
	// Seed は乱数シード
	Seed int64
}

// NewRandomUndersamplerFromParams はハイパーパラメータマップからRandomUndersamplerを作成する
func NewRandomUndersamplerFromParams(p map[string]any) (model.Adapter, error) {
	seed, err := params.Int(p, "seed", 42)
	if err != nil {
		return nil, err
	}
	return &RandomUndersampler{Seed: int64(seed)}, nil
}

// Name はアルゴリズムキーを返す
func (u *RandomUndersampler) Name() string { return "undersample" }

// Apply はtrainパーティションをアンダーサンプリングする
func (u *RandomUndersampler) Apply(ds *dataset.Dataset) error {
	X, y, err := trainXY(ds, "RandomUndersampler.Apply")
	if err != nil {
		return err
	}

	classes := classIndices(y)
	minCount := math.MaxInt
	for _, rows := range classes {
		if len(rows) < minCount {
			minCount = len(rows)
		}
	}

	r := rand.New(rand.NewPCG(uint64(u.Seed), uint64(u.Seed)))
	var rows []int
	for _, cls := range sortedClasses(classes) {
		members := append([]int(nil), classes[cls]...)
		r.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})
		rows = append(rows, members[:minCount]...)
	}
	sort.Ints(rows)

	rebuildTrain(ds, X, y, rows)
	return nil
}

// GetParams はサンプラーのパラメータを取得する
func (u *RandomUndersampler) GetParams() map[string]interface{} {
	return map[string]interface{}{"seed": u.Seed}
}

// SMOTESampler は少数クラスの近傍補間で合成サンプルを生成し、
// trainパーティションのクラス件数を最大クラスに揃える
type SMOTESampler struct {
	// K は補間相手を選ぶ近傍数 (デフォルト: 5)
	K int

	// Seed は乱数シード
	Seed int64
}

// NewSMOTESamplerFromParams はハイパーパラメータマップからSMOTESamplerを作成する
func NewSMOTESamplerFromParams(p map[string]any) (model.Adapter, error) {
	k, err := params.Int(p, "k", 5)
	if err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, errors.NewValidationError("k", "must be positive", k)
	}
	seed, err := params.Int(p, "seed", 42)
	if err != nil {
		return nil, err
	}
	return &SMOTESampler{K: k, Seed: int64(seed)}, nil
}

// Name はアルゴリズムキーを返す
func (s *SMOTESampler) Name() string { return "smote" }

// Apply はtrainパーティションに合成サンプルを追加する
func (s *SMOTESampler) Apply(ds *dataset.Dataset) error {
	X, y, err := trainXY(ds, "SMOTESampler.Apply")
	if err != nil {
		return err
	}
	_, c := X.Dims()

	classes := classIndices(y)
	maxCount := 0
	for _, rows := range classes {
		if len(rows) > maxCount {
			maxCount = len(rows)
		}
	}

	r := rand.New(rand.NewPCG(uint64(s.Seed), uint64(s.Seed)))

	var synthX [][]float64
	var synthY []float64
	for _, cls := range sortedClasses(classes) {
		members := classes[cls]
		need := maxCount - len(members)
		if need == 0 || len(members) < 2 {
			continue
		}
		for n := 0; n < need; n++ {
			base := members[r.IntN(len(members))]
			nb := s.nearestNeighbor(X, members, base, r)
			frac := r.Float64()
			row := make([]float64, c)
			for j := 0; j < c; j++ {
				a := X.At(base, j)
				b := X.At(nb, j)
				row[j] = a + frac*(b-a)
			}
			synthX = append(synthX, row)
			synthY = append(synthY, cls)
		}
	}

	if len(synthX) == 0 {
		return nil
	}

	rTrain, _ := X.Dims()
	outX := mat.NewDense(rTrain+len(synthX), c, nil)
	outY := mat.NewVecDense(rTrain+len(synthX), nil)
	for i := 0; i < rTrain; i++ {
		for j := 0; j < c; j++ {
			outX.Set(i, j, X.At(i, j))
		}
		outY.SetVec(i, y.AtVec(i))
	}
	for i, row := range synthX {
		for j := 0; j < c; j++ {
			outX.Set(rTrain+i, j, row[j])
		}
		outY.SetVec(rTrain+i, synthY[i])
	}

	ds.SetX(dataset.Train, outX)
	ds.SetY(dataset.Train, outY)
	return nil
}

// nearestNeighbor は同クラスのK近傍から補間相手を1つ選ぶ
func (s *SMOTESampler) nearestNeighbor(X *mat.Dense, members []int, base int, r *rand.Rand) int {
	type cand struct {
		idx  int
		dist float64
	}
	_, c := X.Dims()
	cands := make([]cand, 0, len(members)-1)
	for _, m := range members {
		if m == base {
			continue
		}
		d := 0.0
		for j := 0; j < c; j++ {
			diff := X.At(base, j) - X.At(m, j)
			d += diff * diff
		}
		cands = append(cands, cand{idx: m, dist: d})
	}
	sort.Slice(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })

	k := s.K
	if k > len(cands) {
		k = len(cands)
	}
	return cands[r.IntN(k)].idx
}

// GetParams はサンプラーのパラメータを取得する
func (s *SMOTESampler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"k":    s.K,
		"seed": s.Seed,
	}
}
