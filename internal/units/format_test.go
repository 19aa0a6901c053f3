package units

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDataUnits(t *testing.T) {
	cases := []struct {
		name     string
		v        float64
		decimals int
		base     float64
		want     string
	}{
		{"zero", 0, 2, 1000, "0Bytes"},
		{"one", 1, 2, 1000, "1Bytes"},
		{"below base", 999, 2, 1000, "999Bytes"},
		{"exact kilo", 1000, 2, 1000, "1KB"},
		{"fraction trimmed", 1500, 2, 1000, "1.5KB"},
		{"rounded", 1234567, 2, 1000, "1.23MB"},
		{"three decimals", 1234567, 3, 1000, "1.235MB"},
		{"binary base", 2048, 2, 1024, "2KB"},
		{"rounds up into next unit", 999999, 2, 1000, "1MB"},
		{"yotta", 1e24, 2, 1000, "1YB"},
		{"past the table", 1e27, 2, 1000, "1000YB"},
		{"defaults when unset", 1500, 0, 0, "1.5KB"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatDataUnits(tc.v, tc.decimals, nil, tc.base))
		})
	}
}

func TestFormatDataUnits_Invalid(t *testing.T) {
	assert.Equal(t, "", FormatDataUnits(-1, 2, nil, 1000))
	assert.Equal(t, "", FormatDataUnits(math.NaN(), 2, nil, 1000))
}

func TestFormatBitsPS(t *testing.T) {
	assert.Equal(t, "0bps", FormatBitsPS(0, 2, 1000))
	assert.Equal(t, "1.5Mbps", FormatBitsPS(1_500_000, 2, 1000))
	assert.Equal(t, "10Gbps", FormatBitsPS(10e9, 2, 1000))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512Bytes", FormatBytes(512))
	assert.Equal(t, "1.23MB", FormatBytes(1_234_567))
}

func TestFormatDataUnits_MantissaInRange(t *testing.T) {
	for e := 0; e < 24; e++ {
		for _, f := range []float64{1, 1.7, 3.14159, 42, 123.456, 999.4} {
			v := f * math.Pow(10, float64(e))
			out := FormatDataUnits(v, 2, nil, 1000)

			unit := ""
			for i := len(ByteUnits) - 1; i >= 0; i-- {
				if strings.HasSuffix(out, ByteUnits[i]) {
					unit = ByteUnits[i]
					break
				}
			}
			require.NotEmpty(t, unit, "no unit in %q", out)

			m, err := strconv.ParseFloat(strings.TrimSuffix(out, unit), 64)
			require.NoError(t, err, out)
			assert.GreaterOrEqual(t, m, 1.0, out)
			assert.Less(t, m, 1000.0, out)
		}
	}
}
