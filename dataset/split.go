package dataset

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/pkg/errors"
)

// SplitTrainTest divides the full partition into train and test partitions.
// Rows are shuffled with a PCG seeded from seed so identical configurations
// reproduce identical splits.
func (d *Dataset) SplitTrainTest(testSize float64, seed int64) error {
	if testSize <= 0 || testSize >= 1 {
		return errors.NewValueError("dataset.SplitTrainTest",
			"test_size must be in (0, 1)")
	}
	X, err := d.X(Full)
	if err != nil {
		return err
	}
	y := d.y[Full]

	n, _ := X.Dims()
	nTest := int(float64(n) * testSize)
	if nTest < 1 || nTest >= n {
		return errors.NewValueError("dataset.SplitTrainTest",
			"test_size leaves an empty partition")
	}

	indices := shuffledIndices(n, seed)
	testIdx := indices[:nTest]
	trainIdx := indices[nTest:]

	d.SetX(Train, takeRows(X, trainIdx))
	d.SetX(Test, takeRows(X, testIdx))
	if y != nil {
		d.SetY(Train, takeVec(y, trainIdx))
		d.SetY(Test, takeVec(y, testIdx))
	}
	return nil
}

// SplitValidation carves a validation partition out of the train partition.
// SplitTrainTest must have been applied first.
func (d *Dataset) SplitValidation(valSize float64, seed int64) error {
	if valSize <= 0 || valSize >= 1 {
		return errors.NewValueError("dataset.SplitValidation",
			"val_size must be in (0, 1)")
	}
	X, err := d.X(Train)
	if err != nil {
		return err
	}
	y := d.y[Train]

	n, _ := X.Dims()
	nVal := int(float64(n) * valSize)
	if nVal < 1 || nVal >= n {
		return errors.NewValueError("dataset.SplitValidation",
			"val_size leaves an empty partition")
	}

	indices := shuffledIndices(n, seed)
	valIdx := indices[:nVal]
	trainIdx := indices[nVal:]

	d.SetX(Validation, takeRows(X, valIdx))
	d.SetX(Train, takeRows(X, trainIdx))
	if y != nil {
		d.SetY(Validation, takeVec(y, valIdx))
		d.SetY(Train, takeVec(y, trainIdx))
	}
	return nil
}

func shuffledIndices(n int, seed int64) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	return indices
}

func takeRows(m *mat.Dense, indices []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(indices), c, nil)
	for i, idx := range indices {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(idx, j))
		}
	}
	return out
}

func takeVec(v *mat.VecDense, indices []int) *mat.VecDense {
	out := mat.NewVecDense(len(indices), nil)
	for i, idx := range indices {
		out.SetVec(i, v.AtVec(idx))
	}
	return out
}
