package numwords

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumberWithCommas(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		system System
		want   string
	}{
		{"international", "1234567", International, "1,234,567"},
		{"indian", "1234567", Indian, "12,34,567"},
		{"short international", "999", International, "999"},
		{"short indian", "999", Indian, "999"},
		{"thousand indian", "1000", Indian, "1,000"},
		{"crore", "100000000", Indian, "10,00,00,000"},
		{"exact triplets", "123456", International, "123,456"},
		{"fraction kept", "1234.5678", International, "1,234.5678"},
		{"fraction indian", "123456.7", Indian, "1,23,456.7"},
		{"trailing dot", "1234.", International, "1,234."},
		{"leading dot", ".5", International, ".5"},
		{"regroups", "1,234,567", Indian, "12,34,567"},
		{"negative", "-1234567", Indian, "-12,34,567"},
		{"blank", "   ", International, ""},
		{"empty", "", Indian, ""},
		{"not a number", "12+3", International, "12+3"},
		{"partial word", "Err", Indian, "Err"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatNumberWithCommas(tc.in, tc.system))
		})
	}
}

func TestFormatIsIdempotent(t *testing.T) {
	inputs := []string{"1", "12", "1234", "1234567", "9876543210.125", "100000000000"}
	for _, system := range []System{International, Indian} {
		for _, in := range inputs {
			once := FormatNumberWithCommas(in, system)
			twice := FormatNumberWithCommas(once, system)
			assert.Equal(t, once, twice, "%s %s", system, in)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, system := range []System{International, Indian} {
		for n := 0; n < 2000000; n += 7919 {
			in := fmt.Sprintf("%d.%d", n, n%100)
			formatted := FormatNumberWithCommas(in, system)

			want, err := strconv.ParseFloat(in, 64)
			require.NoError(t, err)
			got, err := strconv.ParseFloat(strings.ReplaceAll(formatted, ",", ""), 64)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}

func TestFormatExpression(t *testing.T) {
	assert.Equal(t, "1,234,567+1,000", FormatExpression("1234567+1000", International))
	assert.Equal(t, "12,34,567×3.14159", FormatExpression("1234567×3.14159", Indian))
	assert.Equal(t, "1,000-", FormatExpression("1,000-", International))
	assert.Equal(t, "Error", FormatExpression("Error", International))
	assert.Equal(t, "", FormatExpression("", International))
}
