package metrics

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "all correct",
			yTrue: []float64{0, 1, 1, 0},
			yPred: []float64{0, 1, 1, 0},
			want:  1.0,
		},
		{
			name:  "half correct",
			yTrue: []float64{0, 1, 1, 0},
			yPred: []float64{0, 1, 0, 1},
			want:  0.5,
		},
		{
			name:  "probabilities binarized at 0.5",
			yTrue: []float64{0, 1, 1},
			yPred: []float64{0.2, 0.8, 0.6},
			want:  1.0,
		},
		{
			name:    "empty",
			yTrue:   nil,
			yPred:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var yTrue, yPred *mat.VecDense
			if len(tt.yTrue) > 0 {
				yTrue = mat.NewVecDense(len(tt.yTrue), tt.yTrue)
				yPred = mat.NewVecDense(len(tt.yPred), tt.yPred)
			} else {
				yTrue, yPred = &mat.VecDense{}, &mat.VecDense{}
			}

			got, err := Accuracy(yTrue, yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrecisionRecallF1(t *testing.T) {
	// TP=2, FP=1, FN=1, TN=1
	yTrue := mat.NewVecDense(5, []float64{1, 1, 1, 0, 0})
	yPred := mat.NewVecDense(5, []float64{1, 1, 0, 1, 0})

	p, err := Precision(yTrue, yPred)
	if err != nil {
		t.Fatalf("Precision() error = %v", err)
	}
	if math.Abs(p-2.0/3.0) > 1e-10 {
		t.Errorf("Precision() = %v, want 2/3", p)
	}

	r, err := Recall(yTrue, yPred)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if math.Abs(r-2.0/3.0) > 1e-10 {
		t.Errorf("Recall() = %v, want 2/3", r)
	}

	f1, err := F1(yTrue, yPred)
	if err != nil {
		t.Fatalf("F1() error = %v", err)
	}
	if math.Abs(f1-2.0/3.0) > 1e-10 {
		t.Errorf("F1() = %v, want 2/3", f1)
	}
}

func TestPrecisionNoPositivePredictions(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 0, 1})
	yPred := mat.NewVecDense(3, []float64{0, 0, 0})

	p, err := Precision(yTrue, yPred)
	if err != nil {
		t.Fatalf("Precision() error = %v", err)
	}
	if p != 0 {
		t.Errorf("Precision() = %v, want 0 for no positive predictions", p)
	}
}

func TestAUC(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect separation",
			yTrue: []float64{0, 0, 1, 1},
			yPred: []float64{0.1, 0.2, 0.8, 0.9},
			want:  1.0,
		},
		{
			name:  "worst separation",
			yTrue: []float64{1, 1, 0, 0},
			yPred: []float64{0.1, 0.2, 0.8, 0.9},
			want:  0.0,
		},
		{
			name:  "random ordering",
			yTrue: []float64{0, 1, 0, 1},
			yPred: []float64{0.5, 0.5, 0.5, 0.5},
			want:  0.5,
		},
		{
			name:    "single class",
			yTrue:   []float64{1, 1, 1},
			yPred:   []float64{0.1, 0.5, 0.9},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yTrue := mat.NewVecDense(len(tt.yTrue), tt.yTrue)
			yPred := mat.NewVecDense(len(tt.yPred), tt.yPred)

			got, err := AUC(yTrue, yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AUC() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("AUC() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBinaryLogLoss(t *testing.T) {
	yTrue := mat.NewVecDense(2, []float64{1, 0})
	yProb := mat.NewVecDense(2, []float64{0.9, 0.1})

	got, err := BinaryLogLoss(yTrue, yProb)
	if err != nil {
		t.Fatalf("BinaryLogLoss() error = %v", err)
	}
	want := -math.Log(0.9) // both terms equal
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("BinaryLogLoss() = %v, want %v", got, want)
	}
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := mat.NewVecDense(6, []float64{1, 1, 1, 0, 0, 0})
	yPred := mat.NewVecDense(6, []float64{1, 1, 0, 1, 0, 0})

	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("NewConfusionMatrix() error = %v", err)
	}
	if cm.TP != 2 || cm.FN != 1 || cm.FP != 1 || cm.TN != 2 {
		t.Errorf("confusion matrix = %+v, want TP=2 FN=1 FP=1 TN=2", cm)
	}
}

func TestConfusionMatrixReport(t *testing.T) {
	cm := &ConfusionMatrix{TP: 2, FN: 1, FP: 1, TN: 2}

	if got := cm.Precision(); math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("Precision() = %v, want 2/3", got)
	}
	if got := cm.Recall(); math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("Recall() = %v, want 2/3", got)
	}

	report := cm.Report()
	for _, want := range []string{"class", "0", "1", "0.6667"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
