package recipe

import (
	"strconv"
	"strings"

	"github.com/souschef-ml/souschef/pkg/errors"
)

// ParamKind distinguishes a fixed hyperparameter from a searchable range.
type ParamKind int

const (
	// Fixed is a single concrete value.
	Fixed ParamKind = iota
	// Range is a low/high pair intended for search.
	Range
)

// NumericType records how a Range's bounds parse.
type NumericType int

const (
	// Integer ranges draw whole numbers from [Low, High] inclusive.
	Integer NumericType = iota
	// Real ranges draw floats from [Low, High).
	Real
)

// ParamSpec is one resolved hyperparameter: either a fixed value or a range.
type ParamSpec struct {
	Name  string
	Kind  ParamKind
	Value any // set when Kind is Fixed

	Low, High float64 // set when Kind is Range
	Numeric   NumericType
}

// ResolveParams classifies raw configuration tokens into ParameterSpecs.
//
// One token resolves to Fixed with the value parsed as bool, integer, float,
// or string, in that order. Two tokens resolve to a Range whose numeric type
// is Integer when both bounds parse as integers, Real otherwise; a range with
// equal bounds collapses to Fixed. More than two tokens is malformed.
func ResolveParams(raw map[string][]string) (map[string]ParamSpec, error) {
	out := make(map[string]ParamSpec, len(raw))
	for name, tokens := range raw {
		spec, err := resolveParam(name, tokens)
		if err != nil {
			return nil, err
		}
		out[name] = spec
	}
	return out, nil
}

func resolveParam(name string, tokens []string) (ParamSpec, error) {
	trimmed := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t != "" {
			trimmed = append(trimmed, t)
		}
	}

	switch len(trimmed) {
	case 0:
		return ParamSpec{}, errors.NewMalformedParameterError(name, tokens, "no tokens given")

	case 1:
		return ParamSpec{Name: name, Kind: Fixed, Value: parseToken(trimmed[0])}, nil

	case 2:
		loInt, loIntOK := parseInt(trimmed[0])
		hiInt, hiIntOK := parseInt(trimmed[1])
		if loIntOK && hiIntOK {
			if loInt == hiInt {
				return ParamSpec{Name: name, Kind: Fixed, Value: loInt}, nil
			}
			if loInt > hiInt {
				return ParamSpec{}, errors.NewMalformedParameterError(name, tokens, "range low exceeds high")
			}
			return ParamSpec{
				Name: name, Kind: Range,
				Low: float64(loInt), High: float64(hiInt),
				Numeric: Integer,
			}, nil
		}

		lo, loOK := parseFloat(trimmed[0])
		hi, hiOK := parseFloat(trimmed[1])
		if !loOK || !hiOK {
			return ParamSpec{}, errors.NewMalformedParameterError(name, tokens, "range bounds must be numeric")
		}
		if lo == hi {
			return ParamSpec{Name: name, Kind: Fixed, Value: lo}, nil
		}
		if lo > hi {
			return ParamSpec{}, errors.NewMalformedParameterError(name, tokens, "range low exceeds high")
		}
		return ParamSpec{
			Name: name, Kind: Range,
			Low: lo, High: hi,
			Numeric: Real,
		}, nil
	}

	return ParamSpec{}, errors.NewMalformedParameterError(name, tokens, "more than two tokens")
}

// parseToken converts a single token to its most specific Go value.
func parseToken(token string) any {
	switch token {
	case "True", "true":
		return true
	case "False", "false":
		return false
	}
	if v, ok := parseInt(token); ok {
		return v
	}
	if v, ok := parseFloat(token); ok {
		return v
	}
	return token
}

func parseInt(token string) (int64, bool) {
	v, err := strconv.ParseInt(token, 10, 64)
	return v, err == nil
}

func parseFloat(token string) (float64, bool) {
	v, err := strconv.ParseFloat(token, 64)
	return v, err == nil
}

// CollapseRanges rewrites every Range spec to Fixed(low). Used when
// hyperparameter search is disabled so runs stay deterministic.
func CollapseRanges(specs map[string]ParamSpec) map[string]ParamSpec {
	out := make(map[string]ParamSpec, len(specs))
	for name, spec := range specs {
		if spec.Kind == Range {
			var v any
			if spec.Numeric == Integer {
				v = int64(spec.Low)
			} else {
				v = spec.Low
			}
			spec = ParamSpec{Name: name, Kind: Fixed, Value: v}
		}
		out[name] = spec
	}
	return out
}

// FixedValues extracts the concrete values of all Fixed specs.
func FixedValues(specs map[string]ParamSpec) map[string]any {
	out := make(map[string]any)
	for name, spec := range specs {
		if spec.Kind == Fixed {
			out[name] = spec.Value
		}
	}
	return out
}

// HasRange reports whether any spec is an unresolved Range.
func HasRange(specs map[string]ParamSpec) bool {
	for _, spec := range specs {
		if spec.Kind == Range {
			return true
		}
	}
	return false
}
