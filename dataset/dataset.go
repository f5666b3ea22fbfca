// Package dataset holds the tabular data a recipe runs against, organized as
// named partitions (full, train, test, validation) plus a label vector per
// partition. Steps treat partitions asymmetrically: anything that learns
// state fits against train only, then transforms every partition that exists.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/pkg/errors"
)

// Partition names one of the dataset views a step can be applied to.
type Partition string

const (
	// Full is the undivided dataset.
	Full Partition = "full"
	// Train is the partition adapters fit against.
	Train Partition = "train"
	// Test is the held-out partition used for scoring.
	Test Partition = "test"
	// Validation is the optional second held-out partition.
	Validation Partition = "validation"
)

// allPartitions fixes the canonical iteration order.
var allPartitions = []Partition{Full, Train, Test, Validation}

// Valid reports whether p is one of the named partitions.
func (p Partition) Valid() bool {
	for _, known := range allPartitions {
		if p == known {
			return true
		}
	}
	return false
}

// Dataset is the mutable tabular state threaded through a recipe's steps.
// One Dataset instance is owned by exactly one recipe execution; parallel
// workers each operate on their own Clone.
type Dataset struct {
	columns []string
	label   string
	x       map[Partition]*mat.Dense
	y       map[Partition]*mat.VecDense
	groups  map[string][]string
}

// New creates a Dataset whose full partition is (X, y). Column names must
// match the width of X; the label name is retained for reporting only.
func New(columns []string, X *mat.Dense, y *mat.VecDense, label string) (*Dataset, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.New")
	}
	if len(columns) != c {
		return nil, errors.NewDimensionError("dataset.New", c, len(columns), 1)
	}
	if y != nil && y.Len() != r {
		return nil, errors.NewDimensionError("dataset.New", r, y.Len(), 0)
	}
	d := &Dataset{
		columns: append([]string(nil), columns...),
		label:   label,
		x:       map[Partition]*mat.Dense{Full: X},
		y:       map[Partition]*mat.VecDense{},
		groups:  map[string][]string{},
	}
	if y != nil {
		d.y[Full] = y
	}
	return d, nil
}

// Columns returns a copy of the current column names.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// SetColumns replaces the column names after a schema-changing transform.
func (d *Dataset) SetColumns(columns []string) {
	d.columns = append([]string(nil), columns...)
}

// NumFeatures returns the current column count.
func (d *Dataset) NumFeatures() int {
	return len(d.columns)
}

// ColumnIndex returns the index of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, col := range d.columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Label returns the label column name.
func (d *Dataset) Label() string {
	return d.label
}

// Has reports whether a partition exists.
func (d *Dataset) Has(p Partition) bool {
	_, ok := d.x[p]
	return ok
}

// Partitions returns the existing partitions in canonical order.
func (d *Dataset) Partitions() []Partition {
	var out []Partition
	for _, p := range allPartitions {
		if d.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// X returns the feature matrix of a partition.
func (d *Dataset) X(p Partition) (*mat.Dense, error) {
	m, ok := d.x[p]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNoPartition, "dataset.X: %s", p)
	}
	return m, nil
}

// Y returns the label vector of a partition, or nil if the dataset is
// unlabeled.
func (d *Dataset) Y(p Partition) (*mat.VecDense, error) {
	if !d.Has(p) {
		return nil, errors.Wrapf(errors.ErrNoPartition, "dataset.Y: %s", p)
	}
	return d.y[p], nil
}

// SetX replaces the feature matrix of a partition.
func (d *Dataset) SetX(p Partition, X *mat.Dense) {
	d.x[p] = X
}

// SetY replaces the label vector of a partition.
func (d *Dataset) SetY(p Partition, y *mat.VecDense) {
	if y == nil {
		delete(d.y, p)
		return
	}
	d.y[p] = y
}

// Drop removes a partition.
func (d *Dataset) Drop(p Partition) {
	delete(d.x, p)
	delete(d.y, p)
}

// RegisterGroup records a named column subset. This is the mutation hook the
// cleave step uses: groups are declared in configuration or derived by
// feature-construction steps, then a cleave adapter narrows every partition
// to one group.
func (d *Dataset) RegisterGroup(name string, columns []string) error {
	for _, col := range columns {
		if d.ColumnIndex(col) < 0 {
			return errors.NewValueError("dataset.RegisterGroup",
				"column "+col+" not present in dataset")
		}
	}
	d.groups[name] = append([]string(nil), columns...)
	return nil
}

// Group returns the columns of a registered group.
func (d *Dataset) Group(name string) ([]string, error) {
	cols, ok := d.groups[name]
	if !ok {
		return nil, errors.NewValueError("dataset.Group", "no group named "+name)
	}
	return append([]string(nil), cols...), nil
}

// GroupNames returns the names of all registered groups.
func (d *Dataset) GroupNames() []string {
	var names []string
	for name := range d.groups {
		names = append(names, name)
	}
	return names
}

// Clone returns a deep copy. Fitted state never lives on the dataset, so a
// clone is a safe starting point for executing another recipe.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		columns: append([]string(nil), d.columns...),
		label:   d.label,
		x:       make(map[Partition]*mat.Dense, len(d.x)),
		y:       make(map[Partition]*mat.VecDense, len(d.y)),
		groups:  make(map[string][]string, len(d.groups)),
	}
	for p, m := range d.x {
		out.x[p] = mat.DenseCopyOf(m)
	}
	for p, v := range d.y {
		cp := mat.NewVecDense(v.Len(), nil)
		cp.CopyVec(v)
		out.y[p] = cp
	}
	for name, cols := range d.groups {
		out.groups[name] = append([]string(nil), cols...)
	}
	return out
}

// SelectColumns narrows every existing partition to the named columns, in the
// given order. It is the primitive behind cleave and reduce steps.
func (d *Dataset) SelectColumns(columns []string) error {
	indices := make([]int, len(columns))
	for i, col := range columns {
		idx := d.ColumnIndex(col)
		if idx < 0 {
			return errors.NewValueError("dataset.SelectColumns",
				"column "+col+" not present in dataset")
		}
		indices[i] = idx
	}
	for _, p := range d.Partitions() {
		m := d.x[p]
		r, _ := m.Dims()
		narrowed := mat.NewDense(r, len(indices), nil)
		for j, idx := range indices {
			for i := 0; i < r; i++ {
				narrowed.Set(i, j, m.At(i, idx))
			}
		}
		d.x[p] = narrowed
	}
	d.columns = append([]string(nil), columns...)
	return nil
}
