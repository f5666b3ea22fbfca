// Package search resolves hyperparameter ranges into concrete values by
// evaluating candidate settings against an objective, typically a k-fold
// cross-validation score on the train partition.
package search

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/pkg/errors"
)

// CVFold holds the row indices of a single cross-validation fold.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold splits rows into k folds, optionally shuffling first.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int64
}

// NewKFold creates a k-fold splitter. Fewer than 2 splits falls back to 5.
func NewKFold(nSplits int, shuffle bool, randomSeed int64) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// Split generates train/test indices for each fold.
func (kf *KFold) Split(nSamples int) []CVFold {
	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.RandomSeed), uint64(kf.RandomSeed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	cur := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		test := make([]int, testSize)
		copy(test, indices[cur:cur+testSize])

		train := make([]int, 0, nSamples-testSize)
		train = append(train, indices[:cur]...)
		train = append(train, indices[cur+testSize:]...)

		folds[i] = CVFold{TrainIndices: train, TestIndices: test}
		cur += testSize
	}
	return folds
}

// FoldEvalFunc trains on one fold's train rows and scores its test rows.
type FoldEvalFunc func(trainX *mat.Dense, trainY *mat.VecDense, testX *mat.Dense, testY *mat.VecDense) (float64, error)

// Score runs eval on every fold and returns the mean score.
func (kf *KFold) Score(X *mat.Dense, y *mat.VecDense, eval FoldEvalFunc) (float64, error) {
	n, _ := X.Dims()
	if n < kf.NSplits {
		return 0, errors.NewValueError("KFold.Score", "fewer samples than folds")
	}

	total := 0.0
	for _, fold := range kf.Split(n) {
		trainX, trainY := takeRows(X, y, fold.TrainIndices)
		testX, testY := takeRows(X, y, fold.TestIndices)
		score, err := eval(trainX, trainY, testX, testY)
		if err != nil {
			return 0, err
		}
		total += score
	}
	return total / float64(kf.NSplits), nil
}

func takeRows(X *mat.Dense, y *mat.VecDense, indices []int) (*mat.Dense, *mat.VecDense) {
	_, c := X.Dims()
	outX := mat.NewDense(len(indices), c, nil)
	var outY *mat.VecDense
	if y != nil {
		outY = mat.NewVecDense(len(indices), nil)
	}
	for i, idx := range indices {
		for j := 0; j < c; j++ {
			outX.Set(i, j, X.At(idx, j))
		}
		if outY != nil {
			outY.SetVec(i, y.AtVec(idx))
		}
	}
	return outX, outY
}
