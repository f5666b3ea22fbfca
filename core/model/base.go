package model

// AdapterState はアダプタの学習状態を表す
type AdapterState int

const (
	// NotFitted はアダプタが未学習の状態
	NotFitted AdapterState = iota
	// Fitted はアダプタが学習済みの状態
	Fitted
)

// BaseAdapter は全てのアダプタの基底となる構造体
type BaseAdapter struct {
	state AdapterState
}

// IsFitted はアダプタが学習済みかどうかを返す
func (a *BaseAdapter) IsFitted() bool {
	return a.state == Fitted
}

// SetFitted はアダプタを学習済み状態に設定する
func (a *BaseAdapter) SetFitted() {
	a.state = Fitted
}

// Reset はアダプタを初期状態にリセットする
func (a *BaseAdapter) Reset() {
	a.state = NotFitted
}
