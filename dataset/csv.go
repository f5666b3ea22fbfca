package dataset

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/pkg/errors"
)

// LoadCSV reads a headered CSV file into a Dataset. Values that parse as
// numbers are taken as-is; the remaining columns are treated as categorical
// and mapped to deterministic integer codes (sorted unique values), leaving
// the encode step free to re-encode them properly. The label column is
// removed from the feature matrix and becomes the label vector.
func LoadCSV(path, label string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "dataset.LoadCSV")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "dataset.LoadCSV")
	}
	if len(records) < 2 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.LoadCSV")
	}

	header := records[0]
	rows := records[1:]

	labelIdx := -1
	for i, name := range header {
		if name == label {
			labelIdx = i
			break
		}
	}
	if label != "" && labelIdx < 0 {
		return nil, errors.NewValueError("dataset.LoadCSV",
			"label column "+label+" not found in header")
	}

	// Detect categorical columns and build their code tables up front so
	// codes do not depend on row order.
	numeric := make([]bool, len(header))
	for j := range header {
		numeric[j] = true
		for _, row := range rows {
			if _, err := strconv.ParseFloat(row[j], 64); err != nil {
				numeric[j] = false
				break
			}
		}
	}
	codes := make([]map[string]float64, len(header))
	for j := range header {
		if numeric[j] {
			continue
		}
		seen := map[string]bool{}
		for _, row := range rows {
			seen[row[j]] = true
		}
		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)
		codes[j] = make(map[string]float64, len(values))
		for code, v := range values {
			codes[j][v] = float64(code)
		}
	}

	var columns []string
	for j, name := range header {
		if j != labelIdx {
			columns = append(columns, name)
		}
	}

	X := mat.NewDense(len(rows), len(columns), nil)
	var y *mat.VecDense
	if labelIdx >= 0 {
		y = mat.NewVecDense(len(rows), nil)
	}
	for i, row := range rows {
		col := 0
		for j, raw := range row {
			var v float64
			if numeric[j] {
				v, _ = strconv.ParseFloat(raw, 64)
			} else {
				v = codes[j][raw]
			}
			if j == labelIdx {
				y.SetVec(i, v)
				continue
			}
			X.Set(i, col, v)
			col++
		}
	}

	return New(columns, X, y, label)
}

// SaveCSV writes one partition's feature matrix, plus the label column when
// present, to a headered CSV file.
func (d *Dataset) SaveCSV(p Partition, path string) error {
	X, err := d.X(p)
	if err != nil {
		return errors.Wrap(err, "dataset.SaveCSV")
	}
	y, _ := d.Y(p)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "dataset.SaveCSV")
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := d.Columns()
	if y != nil {
		header = append(header, d.Label())
	}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "dataset.SaveCSV")
	}

	r, c := X.Dims()
	record := make([]string, 0, len(header))
	for i := 0; i < r; i++ {
		record = record[:0]
		for j := 0; j < c; j++ {
			record = append(record, strconv.FormatFloat(X.At(i, j), 'g', -1, 64))
		}
		if y != nil {
			record = append(record, strconv.FormatFloat(y.AtVec(i), 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, "dataset.SaveCSV")
		}
	}

	w.Flush()
	return errors.Wrap(w.Error(), "dataset.SaveCSV")
}
