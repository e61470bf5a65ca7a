package calc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want float64
	}{
		{"addition", "12+7", 19},
		{"precedence", "2+3*4", 14},
		{"left associative", "10-4-3", 3},
		{"division", "7/2", 3.5},
		{"display glyphs", "6×7−2", 40},
		{"grouping commas", "1,000,000/1,000", 1000},
		{"percent", "50%", 0.5},
		{"percent of product", "200*15%", 30},
		{"decimal percent", "12.5%", 0.125},
		{"unary minus", "-5+2", -3},
		{"double minus", "5--3", 8},
		{"parentheses", "(2+3)*4", 20},
		{"nested parentheses", "((1+1)*(2+2))/8", 1},
		{"leading dot", ".5*4", 2},
		{"trailing dot", "5.*2", 10},
		{"spaces", " 1 + 2 ", 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.expr)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want error
	}{
		{"empty", "", ErrEmpty},
		{"only commas", ",,", ErrEmpty},
		{"letters", "2+a", ErrInvalidCharacter},
		{"exponent", "2^3", ErrInvalidCharacter},
		{"trailing operator", "12+", ErrSyntax},
		{"double star", "2**3", ErrSyntax},
		{"unbalanced", "(1+2", ErrSyntax},
		{"stray closing", "1+2)", ErrSyntax},
		{"two dots", "1.2.3", ErrSyntax},
		{"lone dot", ".+1", ErrSyntax},
		{"percent after group", "(50)%", ErrSyntax},
		{"division by zero", "1/0", ErrNotFinite},
		{"zero by zero", "0/0", ErrNotFinite},
		{"huge literal", strings.Repeat("9", 400), ErrNotFinite},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Evaluate(tc.expr)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{19, "19"},
		{0.1 + 0.2, "0.3"},
		{3.5, "3.5"},
		{-3, "-3"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{0.000001, "0.000001"},
		{1.0 / 3.0, "0.333333333333333"},
		{2.0 / 3.0, "0.666666666666667"},
		{0, "0"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatResult(tc.in))
	}
}

func TestEvaluatorSatisfiesCollaborator(t *testing.T) {
	var ev interface {
		Evaluate(string) (float64, error)
	} = Evaluator{}
	v, err := ev.Evaluate("1+1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestLex(t *testing.T) {
	tokens, err := lex("1.5*(2+3)%")
	require.NoError(t, err)
	types := make([]TokenType, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		TOKEN_NUMBER, TOKEN_STAR, TOKEN_LPAREN, TOKEN_NUMBER, TOKEN_PLUS,
		TOKEN_NUMBER, TOKEN_RPAREN, TOKEN_PERCENT, TOKEN_EOF,
	}, types)
	assert.Equal(t, "1.5", tokens[0].Literal)
}
