package wasm

import (
	"math"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"
)

// FormatResults renders raw call results using their declared value types:
// integers as signed decimals, floats the way JavaScript prints numbers,
// multiple values separated by a space. Functions without results render as "".
func FormatResults(types []api.ValueType, results []uint64) string {
	parts := make([]string, 0, len(results))
	for idx, raw := range results {
		var t api.ValueType = api.ValueTypeI64
		if idx < len(types) {
			t = types[idx]
		}
		parts = append(parts, formatValue(t, raw))
	}
	return strings.Join(parts, " ")
}

func formatValue(t api.ValueType, raw uint64) string {
	switch t {
	case api.ValueTypeI32:
		return strconv.FormatInt(int64(api.DecodeI32(raw)), 10)
	case api.ValueTypeI64:
		return strconv.FormatInt(int64(raw), 10)
	case api.ValueTypeF32:
		// f32 results are widened to f64 before printing.
		return formatNumber(float64(api.DecodeF32(raw)))
	case api.ValueTypeF64:
		return formatNumber(api.DecodeF64(raw))
	default:
		// externref and funcref are opaque handles.
		return strconv.FormatUint(raw, 10)
	}
}

// formatNumber prints the shortest round-tripping decimal, switching to
// exponent notation outside [1e-6, 1e21).
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	if a := math.Abs(v); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	// Go pads the exponent to two digits ("1e-07").
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
	return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}
