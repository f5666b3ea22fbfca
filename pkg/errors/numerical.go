package errors

import "math"

// CheckNumericalStability は値の集合にNaNやInfが含まれていないか検査します。
// 問題がある場合はNumericalInstabilityErrorを返します。
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values, iteration)
		}
	}
	return nil
}

// CheckScalar は単一の値の数値的安定性を検査します。
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}

// SafeDivide はゼロ除算を避けた除算を行います。
func SafeDivide(numerator, denominator float64) float64 {
	if math.Abs(denominator) < 1e-15 {
		if denominator >= 0 {
			denominator = 1e-15
		} else {
			denominator = -1e-15
		}
	}
	return numerator / denominator
}

// ClipValue は値を[min, max]の範囲に収めます。
func ClipValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// StabilizeLog はlog(0)を避けるため、入力を小さな正の値でクリップしてから対数を取ります。
func StabilizeLog(value float64) float64 {
	const eps = 1e-15
	if value < eps {
		value = eps
	}
	return math.Log(value)
}

// StabilizeExp はオーバーフローを避けるため、入力をクリップしてから指数を取ります。
func StabilizeExp(value float64) float64 {
	const maxExp = 700.0
	if value > maxExp {
		value = maxExp
	} else if value < -maxExp {
		value = -maxExp
	}
	return math.Exp(value)
}
