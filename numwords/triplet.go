package numwords

import "strings"

// SpellTriplet converts an integer in [0, 999] into words.
// Zero and values outside the range yield an empty string.
func SpellTriplet(n int) string {
	if n <= 0 || n >= tripletRadix {
		return ""
	}
	words := make([]string, 0, 4)

	if n >= hundred {
		words = append(words, slcUnits[n/hundred], "hundred")
		n %= hundred
	}

	// teens are never split into tens + units
	if n >= ten && n < 20 {
		words = append(words, slcTeens[n-ten])
		return strings.Join(words, " ")
	}

	if n >= 20 {
		words = append(words, slcTens[n/ten])
		n %= ten
	}
	if n > 0 {
		words = append(words, slcUnits[n])
	}
	return strings.Join(words, " ")
}
