// Package transcript builds what the calculator shows and speaks for an
// expression: the grouped display line, the result and the spoken sentence.
package transcript

import (
	"strconv"
	"strings"

	"github.com/remiges-tech/numspeak/calc"
	"github.com/remiges-tech/numspeak/numwords"
)

// Evaluator computes the value of an expression. Any error is reported to the
// user as the literal numwords.ErrorToken.
type Evaluator interface {
	Evaluate(expr string) (float64, error)
}

// Transcript is the rendered state of one calculation.
type Transcript struct {
	Expression string `json:"expression"`
	Display    string `json:"display"`
	Result     string `json:"result,omitempty"`
	Words      string `json:"words"`
	Evaluated  bool   `json:"evaluated"`
	Failed     bool   `json:"failed,omitempty"`
}

// Live renders an expression while it is being typed, without evaluating it.
func Live(expr string, system numwords.System) Transcript {
	clean := strings.ReplaceAll(expr, ",", "")
	t := Transcript{
		Expression: clean,
		Display:    numwords.FormatExpression(clean, system),
		Words:      "zero",
	}
	if clean != "" && clean != "0" {
		t.Words = numwords.ExpressionToWords(clean, system)
	}
	return t
}

// Build evaluates expr with ev and renders the result as
// "<expression words> is <result words>". An expression that ends in a binary
// operator is not evaluated and is rendered as Live would render it.
func Build(expr string, system numwords.System, ev Evaluator) Transcript {
	t := Live(expr, system)
	if t.Expression == "" || endsWithBinaryOperator(t.Expression) {
		return t
	}

	t.Evaluated = true
	value, err := ev.Evaluate(t.Expression)
	if err != nil {
		t.Failed = true
		t.Result = numwords.ErrorToken
		t.Words = numwords.ErrorToken
		return t
	}

	t.Result = calc.FormatResult(value)
	t.Display = t.Display + " = " + numwords.FormatNumberWithCommas(t.Result, system)
	t.Words = numwords.ExpressionToWords(t.Expression, system)
	if spoken := SpellResult(t.Result, system); spoken != "" {
		t.Words = strings.TrimSpace(t.Words + " is " + spoken)
	}
	return t
}

// SpellResult spells a formatted result, saying "minus" for a negative value.
// Exponent forms such as "1e-07" are spelled from their plain decimal digits.
// It returns "" when the result is too large for the system's scale words.
func SpellResult(result string, system numwords.System) string {
	if strings.ContainsAny(result, "eE") {
		v, err := strconv.ParseFloat(result, 64)
		if err != nil {
			return ""
		}
		result = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if rest, ok := strings.CutPrefix(result, "-"); ok {
		if words := numwords.NumberToWords(rest, system); words != "" {
			return "minus " + words
		}
		return ""
	}
	return numwords.NumberToWords(result, system)
}

func endsWithBinaryOperator(expr string) bool {
	if expr == "" {
		return false
	}
	last := []rune(expr)
	r := last[len(last)-1]
	return r != '%' && numwords.IsOperator(r)
}
