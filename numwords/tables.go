// Package numwords converts numbers and arithmetic expressions into English words
// and formats numeric strings with digit grouping, in either the international
// (thousand/million/billion) or the Indian (thousand/lakh/crore) numbering system.
package numwords

import "strings"

// System selects the digit grouping convention and its scale words.
type System int

const (
	International System = iota
	Indian
)

// strings at index 0 are not spoken, they keep
// the indexing aligned with digit values
var slcUnits = []string{"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}
var slcTens = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}
var slcTeens = []string{"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}

// digit words used when spelling decimals one digit at a time
var slcDigits = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

// Indian multipliers: thousand is 10^3, every later step is 10^2
var indianMultipliers = []string{"", "thousand", "lakh", "crore", "arab", "kharab", "neel", "padma", "shankh", "mahashankh"}

// International multipliers: every step is 10^3
var englishMegas = []string{"", "thousand", "million", "billion", "trillion", "quadrillion", "quintillion", "sextillion"}

const (
	tripletRadix = 1000
	hundred      = 100
	ten          = 10

	// digits in the lowest (units/hundreds) group of both systems
	tripletDigits = 3
	// digits in every Indian group above the units/hundreds
	indianPairDigits = 2
)

// grouping describes how the digits of an integer are cut into spoken groups,
// counting from the right.
type grouping struct {
	first  int
	step   int
	scales []string
}

var groupings = map[System]grouping{
	International: {first: tripletDigits, step: tripletDigits, scales: englishMegas},
	Indian:        {first: tripletDigits, step: indianPairDigits, scales: indianMultipliers},
}

func (s System) grouping() grouping {
	if g, ok := groupings[s]; ok {
		return g
	}
	return groupings[International]
}

// String returns the lowercase name of the system.
func (s System) String() string {
	switch s {
	case Indian:
		return "indian"
	default:
		return "international"
	}
}

// ParseSystem maps "international" or "indian" (case-insensitive) to a System.
func ParseSystem(name string) (System, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "international":
		return International, true
	case "indian":
		return Indian, true
	}
	return International, false
}

// ScaleWords returns a copy of the scale table used by the system.
// Index 0 is the unscaled units group and holds an empty string.
func ScaleWords(s System) []string {
	scales := s.grouping().scales
	out := make([]string, len(scales))
	copy(out, scales)
	return out
}
