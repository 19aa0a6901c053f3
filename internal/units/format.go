// Package units renders byte and bit-rate quantities with a scaled unit suffix.
package units

import (
	"math"
	"strconv"
)

const (
	DefaultDecimals = 2
	DefaultBase     = 1000
)

var (
	ByteUnits    = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}
	BitRateUnits = []string{"bps", "Kbps", "Mbps", "Gbps", "Tbps", "Pbps", "Ebps", "Zbps", "Ybps"}
)

// FormatDataUnits scales v by base until the mantissa falls in [1, base) and
// appends the matching entry of display. Zero or negative decimals fall back to
// DefaultDecimals, a base below 2 to DefaultBase and an empty display to ByteUnits.
// Trailing zeros of the rounded mantissa are dropped. Negative and NaN inputs
// render as "".
func FormatDataUnits(v float64, decimals int, display []string, base float64) string {
	if math.IsNaN(v) || v < 0 {
		return ""
	}
	if decimals <= 0 {
		decimals = DefaultDecimals
	}
	if base < 2 {
		base = DefaultBase
	}
	if len(display) == 0 {
		display = ByteUnits
	}
	if v == 0 {
		return "0" + display[0]
	}
	if math.IsInf(v, 1) {
		return "Inf" + display[len(display)-1]
	}

	last := len(display) - 1
	i := int(math.Floor(math.Log(v) / math.Log(base)))
	// log rounding can land one step off at exact powers of base
	for i < last && v/math.Pow(base, float64(i+1)) >= 1 {
		i++
	}
	for i > 0 && v/math.Pow(base, float64(i)) < 1 {
		i--
	}
	if i < 0 {
		i = 0
	}
	if i > last {
		i = last
	}

	m := round(v/math.Pow(base, float64(i)), decimals)
	if m >= base && i < last {
		i++
		m = round(v/math.Pow(base, float64(i)), decimals)
	}
	return strconv.FormatFloat(m, 'f', -1, 64) + display[i]
}

// FormatBitsPS formats a bit rate using BitRateUnits.
func FormatBitsPS(bits float64, decimals int, base float64) string {
	return FormatDataUnits(bits, decimals, BitRateUnits, base)
}

// FormatBytes formats a byte count with the default settings.
func FormatBytes(b float64) string {
	return FormatDataUnits(b, DefaultDecimals, ByteUnits, DefaultBase)
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return math.Round(v*p) / p
	}
	return r
}
