// Package params provides typed accessors for the hyperparameter maps passed
// to step adapter constructors. Values arrive as the concrete Go types the
// parameter resolver produced (int64, float64, bool, string); these helpers
// coerce between the numeric kinds and fall back to a default when the key is
// absent.
package params

import (
	"github.com/souschef-ml/souschef/pkg/errors"
)

// Float は浮動小数点ハイパーパラメータを取り出す。整数値は昇格される。
func Float(p map[string]any, key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	}
	return 0, errors.NewValidationError(key, "expected a numeric value", v)
}

// Int は整数ハイパーパラメータを取り出す。
func Int(p map[string]any, key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case int64:
		return int(x), nil
	case int:
		return x, nil
	case float64:
		if x == float64(int(x)) {
			return int(x), nil
		}
	}
	return 0, errors.NewValidationError(key, "expected an integer value", v)
}

// Bool は真偽値ハイパーパラメータを取り出す。
func Bool(p map[string]any, key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, errors.NewValidationError(key, "expected a boolean value", v)
}

// String は文字列ハイパーパラメータを取り出す。
func String(p map[string]any, key string, def string) (string, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", errors.NewValidationError(key, "expected a string value", v)
}
