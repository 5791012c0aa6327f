package nav

import (
	"encoding/json"
	"fmt"
)

// NormalizePosition converts the position shapes upstream producers emit
// into a Vec3. Accepted shapes:
//
//   - Vec3 (already canonical)
//   - []float64 of length 2 or 3
//   - []any of length 2 or 3 with numeric elements (decoded JSON arrays)
//   - map[string]any / map[string]float64 with numeric x, y and optional z
//
// Legacy 2D positions are upgraded to 3D with z = 0; the second return
// value reports that upgrade so backward-compat paths can assert on it.
// Non-finite or malformed input fails with *InvalidPositionError rather
// than being coerced.
func NormalizePosition(raw any) (Vec3, bool, error) {
	switch v := raw.(type) {
	case Vec3:
		if !v.IsFinite() {
			return Vec3{}, false, &InvalidPositionError{Reason: "non-finite coordinate"}
		}
		return v, false, nil
	case *Vec3:
		if v == nil {
			return Vec3{}, false, &InvalidPositionError{Reason: "nil position"}
		}
		return NormalizePosition(*v)
	case []float64:
		return fromCoords(anySlice(v))
	case []any:
		return fromCoords(v)
	case map[string]float64:
		m := make(map[string]any, len(v))
		for k, f := range v {
			m[k] = f
		}
		return fromObject(m)
	case map[string]any:
		return fromObject(v)
	case nil:
		return Vec3{}, false, &InvalidPositionError{Reason: "nil position"}
	default:
		return Vec3{}, false, &InvalidPositionError{Reason: fmt.Sprintf("unsupported shape %T", raw)}
	}
}

func anySlice(v []float64) []any {
	out := make([]any, len(v))
	for i, f := range v {
		out[i] = f
	}
	return out
}

func fromCoords(coords []any) (Vec3, bool, error) {
	if len(coords) != 2 && len(coords) != 3 {
		return Vec3{}, false, &InvalidPositionError{Reason: fmt.Sprintf("array length %d, want 2 or 3", len(coords))}
	}
	vals := make([]float64, len(coords))
	for i, c := range coords {
		f, ok := asFloat(c)
		if !ok || !isFinite(f) {
			return Vec3{}, false, &InvalidPositionError{Reason: fmt.Sprintf("coordinate %d not a finite number", i)}
		}
		vals[i] = f
	}
	if len(vals) == 2 {
		return Vec3{X: vals[0], Y: vals[1]}, true, nil
	}
	return Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, false, nil
}

func fromObject(m map[string]any) (Vec3, bool, error) {
	x, okX := asFloat(m["x"])
	y, okY := asFloat(m["y"])
	if !okX || !okY {
		return Vec3{}, false, &InvalidPositionError{Reason: "object missing numeric x or y"}
	}
	upgraded := false
	z := 0.0
	if zv, present := m["z"]; present {
		f, ok := asFloat(zv)
		if !ok {
			return Vec3{}, false, &InvalidPositionError{Reason: "object z not a number"}
		}
		z = f
	} else {
		upgraded = true
	}
	pos := Vec3{X: x, Y: y, Z: z}
	if !pos.IsFinite() {
		return Vec3{}, false, &InvalidPositionError{Reason: "non-finite coordinate"}
	}
	return pos, upgraded, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
