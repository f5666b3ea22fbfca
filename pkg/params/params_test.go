package params

import (
	"testing"

	"github.com/souschef-ml/souschef/pkg/errors"
)

func TestFloat(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]any
		want    float64
		wantErr bool
	}{
		{"float value", map[string]any{"alpha": 0.5}, 0.5, false},
		{"int64 promoted", map[string]any{"alpha": int64(2)}, 2.0, false},
		{"int promoted", map[string]any{"alpha": 3}, 3.0, false},
		{"absent uses default", map[string]any{}, 1.0, false},
		{"string rejected", map[string]any{"alpha": "big"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Float(tt.params, "alpha", 1.0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Float() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Float() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInt(t *testing.T) {
	if got, err := Int(map[string]any{"k": int64(5)}, "k", 0); err != nil || got != 5 {
		t.Errorf("Int() = %v, %v, want 5", got, err)
	}
	if got, err := Int(map[string]any{"k": 5.0}, "k", 0); err != nil || got != 5 {
		t.Errorf("Int() whole float = %v, %v, want 5", got, err)
	}
	if _, err := Int(map[string]any{"k": 5.5}, "k", 0); err == nil {
		t.Error("fractional float accepted as int")
	}

	_, err := Int(map[string]any{"k": "five"}, "k", 0)
	var ve *errors.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestBoolAndString(t *testing.T) {
	if got, err := Bool(map[string]any{"f": true}, "f", false); err != nil || !got {
		t.Errorf("Bool() = %v, %v, want true", got, err)
	}
	if got, err := Bool(nil, "f", true); err != nil || !got {
		t.Errorf("Bool() default = %v, %v, want true", got, err)
	}
	if _, err := Bool(map[string]any{"f": 1}, "f", false); err == nil {
		t.Error("numeric accepted as bool")
	}

	if got, err := String(map[string]any{"s": "grid"}, "s", ""); err != nil || got != "grid" {
		t.Errorf("String() = %q, %v, want grid", got, err)
	}
	if _, err := String(map[string]any{"s": 1.0}, "s", ""); err == nil {
		t.Error("numeric accepted as string")
	}
}
