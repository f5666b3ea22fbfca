package preprocessing

import (
	"github.com/souschef-ml/souschef/core/model"
	"github.com/souschef-ml/souschef/dataset"
	"github.com/souschef-ml/souschef/pkg/params"
)

// TrainTestSplitter はfullパーティションをtrainとtestに分割するステップ
type TrainTestSplitter struct {
	// TestSize はtestに割り当てる比率 (デフォルト: 0.25)
	TestSize float64

	// Seed はシャッフルの乱数シード
	Seed int64
}

// NewTrainTestSplitterFromParams はハイパーパラメータマップからTrainTestSplitterを作成する
func NewTrainTestSplitterFromParams(p map[string]any) (model.Adapter, error) {
	testSize, err := params.Float(p, "test_size", 0.25)
	if err != nil {
		return nil, err
	}
	seed, err := params.Int(p, "seed", 42)
	if err != nil {
		return nil, err
	}
	return &TrainTestSplitter{TestSize: testSize, Seed: int64(seed)}, nil
}

// Name はアルゴリズムキーを返す
func (s *TrainTestSplitter) Name() string { return "train_test" }

// Apply はデータセットを分割する
func (s *TrainTestSplitter) Apply(ds *dataset.Dataset) error {
	return ds.SplitTrainTest(s.TestSize, s.Seed)
}

// GetParams はスプリッターのパラメータを取得する
func (s *TrainTestSplitter) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"test_size": s.TestSize,
		"seed":      s.Seed,
	}
}

// TrainTestValSplitter はfullをtrain、test、validationの3つに分割するステップ。
// validationはtrainから切り出される
type TrainTestValSplitter struct {
	// TestSize はtestに割り当てる比率 (デフォルト: 0.25)
	TestSize float64

	// ValSize は分割後のtrainからvalidationに割り当てる比率 (デフォルト: 0.25)
	ValSize float64

	// Seed はシャッフルの乱数シード
	Seed int64
}

// NewTrainTestValSplitterFromParams はハイパーパラメータマップからTrainTestValSplitterを作成する
func NewTrainTestValSplitterFromParams(p map[string]any) (model.Adapter, error) {
	testSize, err := params.Float(p, "test_size", 0.25)
	if err != nil {
		return nil, err
	}
	valSize, err := params.Float(p, "val_size", 0.25)
	if err != nil {
		return nil, err
	}
	seed, err := params.Int(p, "seed", 42)
	if err != nil {
		return nil, err
	}
	return &TrainTestValSplitter{TestSize: testSize, ValSize: valSize, Seed: int64(seed)}, nil
}

// Name はアルゴリズムキーを返す
func (s *TrainTestValSplitter) Name() string { return "train_test_val" }

// Apply はデータセットを3分割する
func (s *TrainTestValSplitter) Apply(ds *dataset.Dataset) error {
	if err := ds.SplitTrainTest(s.TestSize, s.Seed); err != nil {
		return err
	}
	return ds.SplitValidation(s.ValSize, s.Seed+1)
}

// GetParams はスプリッターのパラメータを取得する
func (s *TrainTestValSplitter) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"test_size": s.TestSize,
		"val_size":  s.ValSize,
		"seed":      s.Seed,
	}
}
