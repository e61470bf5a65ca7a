package calc

import "fmt"

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TOKEN_NUMBER TokenType = iota
	TOKEN_PLUS
	TOKEN_MINUS
	TOKEN_STAR
	TOKEN_SLASH
	TOKEN_PERCENT
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_EOF
)

// Token represents a single lexer token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // byte offset in the normalised input
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%d, %q, %d)", t.Type, t.Literal, t.Pos)
}

var singleCharTokens = map[byte]TokenType{
	'+': TOKEN_PLUS,
	'-': TOKEN_MINUS,
	'*': TOKEN_STAR,
	'/': TOKEN_SLASH,
	'%': TOKEN_PERCENT,
	'(': TOKEN_LPAREN,
	')': TOKEN_RPAREN,
}

// lex splits a normalised expression into tokens. Number literals are digits
// with at most one decimal point.
func lex(input string) ([]Token, error) {
	var tokens []Token
	for i := 0; i < len(input); {
		c := input[i]
		if tt, ok := singleCharTokens[c]; ok {
			tokens = append(tokens, Token{Type: tt, Literal: string(c), Pos: i})
			i++
			continue
		}
		if isDigit(c) || c == '.' {
			start, dots := i, 0
			for i < len(input) && (isDigit(input[i]) || input[i] == '.') {
				if input[i] == '.' {
					dots++
				}
				i++
			}
			literal := input[start:i]
			if dots > 1 || literal == "." {
				return nil, fmt.Errorf("%w: malformed number %q at %d", ErrSyntax, literal, start)
			}
			tokens = append(tokens, Token{Type: TOKEN_NUMBER, Literal: literal, Pos: start})
			continue
		}
		return nil, fmt.Errorf("%w: %q at %d", ErrInvalidCharacter, c, i)
	}
	tokens = append(tokens, Token{Type: TOKEN_EOF, Pos: len(input)})
	return tokens, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
