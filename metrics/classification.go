package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/pkg/errors"
)

// Accuracy は正解率を計算する。予測値は0.5を閾値として二値化される。
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if binarize(yPred.AtVec(i)) == binarize(yTrue.AtVec(i)) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassificationError は誤分類率（1 - Accuracy）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// Precision は適合率 TP/(TP+FP) を計算する。
// 陽性の予測が一つもない場合は警告を発して0を返す。
func Precision(yTrue, yPred *mat.VecDense) (float64, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if cm.TP+cm.FP == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no positive predictions", 0))
		return 0, nil
	}
	return float64(cm.TP) / float64(cm.TP+cm.FP), nil
}

// Recall は再現率 TP/(TP+FN) を計算する。
func Recall(yTrue, yPred *mat.VecDense) (float64, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if cm.TP+cm.FN == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no positive labels", 0))
		return 0, nil
	}
	return float64(cm.TP) / float64(cm.TP+cm.FN), nil
}

// F1 は適合率と再現率の調和平均を計算する。
func F1(yTrue, yPred *mat.VecDense) (float64, error) {
	p, err := Precision(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	r, err := Recall(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if p+r == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("f1", "precision and recall are both zero", 0))
		return 0, nil
	}
	return 2 * p * r / (p + r), nil
}

// AUC はROC曲線の下面積を計算する。yPredにはスコアまたは確率を渡す。
// 同スコアはランクの平均で処理される（Mann-Whitney U統計量と等価）。
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yPred.Len(), 0)
	}

	nPos, nNeg := 0, 0
	for i := 0; i < n; i++ {
		if binarize(yTrue.AtVec(i)) == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, errors.NewValueError("AUC", "need both positive and negative labels")
	}

	// スコア順にランク付けし、同点は平均ランクを割り当てる
	type scored struct {
		score float64
		pos   bool
	}
	items := make([]scored, n)
	for i := 0; i < n; i++ {
		items[i] = scored{score: yPred.AtVec(i), pos: binarize(yTrue.AtVec(i)) == 1}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].score < items[j].score })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && items[j].score == items[i].score {
			j++
		}
		avgRank := float64(i+j+1) / 2 // 1-based average rank of the tie group
		for k := i; k < j; k++ {
			ranks[k] = avgRank
		}
		i = j
	}

	var posRankSum float64
	for i, item := range items {
		if item.pos {
			posRankSum += ranks[i]
		}
	}

	u := posRankSum - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}

// BinaryLogLoss は二値分類の対数損失を計算する。確率は[ε, 1-ε]にクリップされる。
func BinaryLogLoss(yTrue, yProb *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("BinaryLogLoss", "empty vector")
	}
	if yProb.Len() != n {
		return 0, errors.NewDimensionError("BinaryLogLoss", n, yProb.Len(), 0)
	}

	const eps = 1e-15
	var sum float64
	for i := 0; i < n; i++ {
		p := errors.ClipValue(yProb.AtVec(i), eps, 1-eps)
		if binarize(yTrue.AtVec(i)) == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(n), nil
}

// ConfusionMatrix は二値分類の混同行列
type ConfusionMatrix struct {
	TP, FP, TN, FN int
}

// NewConfusionMatrix は予測を0.5で二値化して混同行列を作成する
func NewConfusionMatrix(yTrue, yPred *mat.VecDense) (*ConfusionMatrix, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError("NewConfusionMatrix", "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("NewConfusionMatrix", n, yPred.Len(), 0)
	}

	cm := &ConfusionMatrix{}
	for i := 0; i < n; i++ {
		truth := binarize(yTrue.AtVec(i))
		pred := binarize(yPred.AtVec(i))
		switch {
		case truth == 1 && pred == 1:
			cm.TP++
		case truth == 0 && pred == 1:
			cm.FP++
		case truth == 0 && pred == 0:
			cm.TN++
		default:
			cm.FN++
		}
	}
	return cm, nil
}

func binarize(v float64) int {
	if v >= 0.5 {
		return 1
	}
	return 0
}

// Precision は陽性クラスの適合率を返す。
func (cm *ConfusionMatrix) Precision() float64 {
	return errors.SafeDivide(float64(cm.TP), float64(cm.TP+cm.FP))
}

// Recall は陽性クラスの再現率を返す。
func (cm *ConfusionMatrix) Recall() float64 {
	return errors.SafeDivide(float64(cm.TP), float64(cm.TP+cm.FN))
}

// Report はクラスごとの適合率・再現率・F1値・件数をまとめたテキストを返す。
func (cm *ConfusionMatrix) Report() string {
	rows := []struct {
		label          string
		tp, fp, fn, n  int
	}{
		{"0", cm.TN, cm.FN, cm.FP, cm.TN + cm.FP},
		{"1", cm.TP, cm.FP, cm.FN, cm.TP + cm.FN},
	}

	var b strings.Builder
	b.WriteString("class  precision  recall  f1      support\n")
	for _, r := range rows {
		p := errors.SafeDivide(float64(r.tp), float64(r.tp+r.fp))
		rec := errors.SafeDivide(float64(r.tp), float64(r.tp+r.fn))
		f1 := errors.SafeDivide(2*p*rec, p+rec)
		fmt.Fprintf(&b, "%-5s  %.4f     %.4f  %.4f  %d\n", r.label, p, rec, f1, r.n)
	}
	return b.String()
}
