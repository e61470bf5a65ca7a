package numwords

import (
	"strconv"
	"strings"
)

// ErrorToken is the literal an evaluator failure is displayed and spoken as.
// The spellers pass it through verbatim.
const ErrorToken = "Error"

// NumberToWords converts a numeric string such as "1,23,456.07" into words using
// the grouping rules of the given system. Grouping commas are ignored.
//
// Decimals are spelled one digit at a time after the word "point". Input that is
// not a plain decimal literal yields an empty string, meaning there is nothing
// to say.
func NumberToWords(numStr string, system System) string {
	clean := stripCommas(numStr)
	if clean == ErrorToken {
		return ErrorToken
	}
	if clean == "0" {
		return "zero"
	}
	if !isDecimalLiteral(clean) {
		return ""
	}

	integerPart, decimalPart, _ := strings.Cut(clean, ".")

	integerWords := ""
	if digits := strings.TrimLeft(integerPart, "0"); digits != "" {
		integerWords = integerToWords(digits, system)
		if integerWords == "" {
			// more groups than the system has scale words
			return ""
		}
	}

	decimalWords := ""
	if decimalPart != "" {
		decimalWords = spellDigits(decimalPart)
	}

	switch {
	case integerWords != "" && decimalWords != "":
		return integerWords + " " + decimalWords
	case decimalWords != "":
		return decimalWords
	case integerWords != "":
		return integerWords
	}

	// Only zeros, e.g. "000" or "0.". Read as "zero", the same as "0".
	return "zero"
}

// integerToWords spells a string of decimal digits with no leading zeros,
// cutting groups from the right. The first group always spans three digits;
// later groups use the system's step width. It returns "" when the number needs
// a scale word beyond the system's table.
func integerToWords(digits string, system System) string {
	g := system.grouping()

	var groups []string
	width := g.first
	for idx := 0; digits != ""; idx++ {
		if idx >= len(g.scales) {
			return ""
		}
		cut := max(len(digits)-width, 0)
		part := digits[cut:]
		digits = digits[:cut]
		width = g.step

		value, _ := strconv.Atoi(part)
		// nothing to say for an empty group, and no scale word either
		if value == 0 {
			continue
		}
		words := SpellTriplet(value)
		if scale := g.scales[idx]; scale != "" {
			words += " " + scale
		}
		groups = append(groups, words)
	}

	// groups were collected lowest first
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}
	return strings.Join(groups, " ")
}

func spellDigits(digits string) string {
	words := make([]string, 0, len(digits)+1)
	words = append(words, "point")
	for _, d := range digits {
		words = append(words, slcDigits[d-'0'])
	}
	return strings.Join(words, " ")
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

// isDecimalLiteral reports whether s is digits with at most one decimal point
// and at least one digit: "12", "12.5", ".5" and "12." all qualify.
func isDecimalLiteral(s string) bool {
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}
