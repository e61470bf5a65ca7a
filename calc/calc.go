// Package calc evaluates the arithmetic expressions typed into the calculator:
// decimal numbers, + - * / with the usual precedence, unary signs, parentheses
// and a postfix percent that divides the preceding number by one hundred.
//
// The display glyphs × and − are accepted as * and -, and grouping commas are
// ignored, so an expression can be evaluated exactly as it is shown.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrEmpty            = errors.New("empty expression")
	ErrInvalidCharacter = errors.New("invalid character in expression")
	ErrSyntax           = errors.New("malformed expression")
	ErrNotFinite        = errors.New("result is not a finite number")
)

// SignificantDigits is the precision results are rounded to before display.
const SignificantDigits = 15

var glyphs = strings.NewReplacer("×", "*", "−", "-", ",", "", " ", "")

// Evaluator evaluates calculator expressions. It holds no state and is safe
// for concurrent use.
type Evaluator struct{}

// Evaluate implements the evaluator collaborator used by the transcript builder.
func (Evaluator) Evaluate(expr string) (float64, error) {
	return Evaluate(expr)
}

// Evaluate parses and computes expr.
func Evaluate(expr string) (float64, error) {
	normalised := glyphs.Replace(expr)
	if normalised == "" {
		return 0, ErrEmpty
	}

	tokens, err := lex(normalised)
	if err != nil {
		return 0, err
	}
	p := &parser{tokens: tokens}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if tok := p.peek(); tok.Type != TOKEN_EOF {
		return 0, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.Literal, tok.Pos)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrNotFinite
	}
	return value, nil
}

// FormatResult rounds v to SignificantDigits significant digits and renders the
// shortest decimal string for the rounded value, e.g. 0.1+0.2 renders "0.3".
// Magnitudes outside [1e-6, 1e21) use exponent notation.
func FormatResult(v float64) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', SignificantDigits, 64), 64)
	if err != nil {
		rounded = v
	}
	if rounded == 0 {
		// also folds negative zero
		return "0"
	}
	abs := math.Abs(rounded)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(rounded, 'e', -1, 64)
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// parser is a recursive-descent parser over the token slice:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | postfix
//	postfix = primary [ "%" ]
//	primary = NUMBER | "(" expr ")"
type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TOKEN_EOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek().Type {
		case TOKEN_PLUS:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case TOKEN_MINUS:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek().Type {
		case TOKEN_STAR:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case TOKEN_SLASH:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	switch p.peek().Type {
	case TOKEN_PLUS:
		p.next()
		return p.parseUnary()
	case TOKEN_MINUS:
		p.next()
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (float64, error) {
	isLiteral := p.peek().Type == TOKEN_NUMBER
	v, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if p.peek().Type == TOKEN_PERCENT {
		tok := p.next()
		// percent binds to a number literal only
		if !isLiteral {
			return 0, fmt.Errorf("%w: percent must follow a number at %d", ErrSyntax, tok.Pos)
		}
		v /= 100
	}
	return v, nil
}

func (p *parser) parsePrimary() (float64, error) {
	tok := p.next()
	switch tok.Type {
	case TOKEN_NUMBER:
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrNotFinite
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return v, nil
	case TOKEN_LPAREN:
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if closing := p.next(); closing.Type != TOKEN_RPAREN {
			return 0, fmt.Errorf("%w: missing closing parenthesis at %d", ErrSyntax, closing.Pos)
		}
		return v, nil
	case TOKEN_EOF:
		return 0, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	default:
		return 0, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.Literal, tok.Pos)
	}
}
