package numwords

import (
	"regexp"
	"strings"
)

// numbers inside an expression, possibly already grouped
var numericRun = regexp.MustCompile(`[0-9,]+(?:\.[0-9]*)?`)

// FormatNumberWithCommas groups the integer digits of numStr for display:
// "1234567" becomes "1,234,567" in the international system and "12,34,567" in
// the Indian system. Existing commas are discarded first, the fractional part is
// kept as typed, and input that is not a number comes back unchanged so partial
// input is never mangled.
func FormatNumberWithCommas(numStr string, system System) string {
	if strings.TrimSpace(numStr) == "" {
		return ""
	}
	clean := stripCommas(numStr)

	sign := ""
	if strings.HasPrefix(clean, "-") || strings.HasPrefix(clean, "+") {
		sign, clean = clean[:1], clean[1:]
	}
	if !isDecimalLiteral(clean) {
		return numStr
	}

	integerPart, fraction, hasDot := strings.Cut(clean, ".")
	if hasDot {
		fraction = "." + fraction
	}

	switch system {
	case Indian:
		integerPart = groupIndian(integerPart)
	default:
		integerPart = groupEvery(integerPart, 3)
	}
	return sign + integerPart + fraction
}

// groupEvery inserts a comma before every size digits, counting from the right.
func groupEvery(digits string, size int) string {
	if len(digits) <= size {
		return digits
	}
	var b strings.Builder
	head := len(digits) % size
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += size {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+size])
	}
	return b.String()
}

// groupIndian keeps the last three digits together and pairs the rest.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	lastThree := digits[len(digits)-3:]
	others := digits[:len(digits)-3]
	return groupEvery(others, 2) + "," + lastThree
}

// FormatExpression groups every number inside an arithmetic expression and
// leaves the operators untouched, e.g. "1234567+1000" becomes "12,34,567+1,000"
// in the Indian system.
func FormatExpression(expr string, system System) string {
	if expr == "" {
		return ""
	}
	return numericRun.ReplaceAllStringFunc(expr, func(match string) string {
		return FormatNumberWithCommas(stripCommas(match), system)
	})
}
