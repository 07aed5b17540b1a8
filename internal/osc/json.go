package osc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
)

// PayloadFromJSON converts values decoded by encoding/json into payload
// arguments for tags, ready for NewMessage.
//
// Numbers may arrive as float64 or json.Number. Integer tags reject
// fractional or out-of-range numbers. Blobs are base64 strings. T, F, N and I
// take no value.
func PayloadFromJSON(tags string, values []any) ([]any, error) {
	out := make([]any, 0, len(values))
	k := 0
	for i := 0; i < len(tags); i++ {
		tag := tags[i]
		if isPayloadless(tag) {
			continue
		}
		if k >= len(values) {
			return nil, fmt.Errorf("%w: tags %q need more than %d values", ErrArgMismatch, tags, len(values))
		}
		v, err := fromJSON(tag, values[k])
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", k, err)
		}
		out = append(out, v)
		k++
	}
	if k != len(values) {
		return nil, fmt.Errorf("%w: tags %q take %d values, got %d", ErrArgMismatch, tags, k, len(values))
	}
	return out, nil
}

func fromJSON(tag byte, v any) (any, error) {
	switch tag {
	case TagString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: want string, got %T", ErrArgMismatch, v)
		}
		return s, nil

	case TagBlob:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: want base64 string, got %T", ErrArgMismatch, v)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrArgMismatch, err)
		}
		return b, nil

	case TagInt32, TagInt64, TagFloat32, TagFloat64:
		f, err := jsonNumber(v)
		if err != nil {
			return nil, err
		}
		switch tag {
		case TagFloat32:
			return float32(f), nil
		case TagFloat64:
			return f, nil
		case TagInt32:
			if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
				return nil, fmt.Errorf("%w: %v is not an int32", ErrArgMismatch, f)
			}
			return int32(f), nil
		default:
			if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
				return nil, fmt.Errorf("%w: %v is not an int64", ErrArgMismatch, f)
			}
			return int64(f), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedTag, tag)
}

func jsonNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrArgMismatch, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: want number, got %T", ErrArgMismatch, v)
}
