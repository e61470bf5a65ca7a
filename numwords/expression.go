package numwords

import "strings"

// operator phrases spoken in place of the operator characters
var operatorWords = map[string]string{
	"+": "added by",
	"-": "subtracted by",
	"−": "subtracted by",
	"×": "multiplied by",
	"*": "multiplied by",
	"/": "divided by",
	"%": "percent",
}

// IsOperator reports whether r is one of the expression operator characters.
func IsOperator(r rune) bool {
	_, ok := operatorWords[string(r)]
	return ok
}

// Tokenize splits an expression into operands and operators, keeping every
// operator as its own token and dropping empty operands. No attempt is made to
// check that operands and operators alternate.
func Tokenize(expr string) []string {
	var tokens []string
	var operand strings.Builder

	flush := func() {
		if operand.Len() > 0 {
			tokens = append(tokens, operand.String())
			operand.Reset()
		}
	}
	for _, r := range expr {
		if IsOperator(r) {
			flush()
			tokens = append(tokens, string(r))
			continue
		}
		operand.WriteRune(r)
	}
	flush()
	return tokens
}

// ExpressionToWords renders an arithmetic expression such as "12+7" as words,
// "twelve added by seven". Operands are spelled with NumberToWords; an operand
// that cannot be spelled contributes nothing.
func ExpressionToWords(expr string, system System) string {
	tokens := Tokenize(expr)
	words := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if phrase, ok := operatorWords[token]; ok {
			words = append(words, phrase)
			continue
		}
		words = append(words, NumberToWords(token, system))
	}
	return strings.Join(strings.Fields(strings.Join(words, " ")), " ")
}
