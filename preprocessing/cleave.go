package preprocessing

import (
	"github.com/souschef-ml/souschef/core/model"
	"github.com/souschef-ml/souschef/dataset"
	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/pkg/params"
)

// Cleaver は登録済みの列グループ1つに全パーティションを絞り込むステップ。
// グループは設定ファイルで宣言されるか、先行ステップが登録する
type Cleaver struct {
	// GroupName は絞り込む対象のグループ名
	GroupName string
}

// NewCleaver は新しいCleaverを作成する
func NewCleaver(group string) (*Cleaver, error) {
	if group == "" {
		return nil, errors.NewValidationError("group", "must name a registered column group", group)
	}
	return &Cleaver{GroupName: group}, nil
}

// NewCleaverFromParams はハイパーパラメータマップからCleaverを作成する
func NewCleaverFromParams(p map[string]any) (model.Adapter, error) {
	group, err := params.String(p, "group", "")
	if err != nil {
		return nil, err
	}
	return NewCleaver(group)
}

// Name はアルゴリズムキーを返す
func (c *Cleaver) Name() string { return "cleave" }

// Apply は全パーティションをグループの列に絞り込む
func (c *Cleaver) Apply(ds *dataset.Dataset) error {
	cols, err := ds.Group(c.GroupName)
	if err != nil {
		return err
	}
	return ds.SelectColumns(cols)
}

// GetParams はCleaverのパラメータを取得する
func (c *Cleaver) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"group": c.GroupName,
	}
}
