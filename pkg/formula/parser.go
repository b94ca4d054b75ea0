package formula

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// The evaluator is a restricted tokenizer plus recursive-descent parser over
// `+ - * / ( )` and numeric literals. Expressions are never handed to any
// general evaluation facility; the grammar itself is the security boundary.

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
)

type token struct {
	kind  tokenKind
	value float64
	raw   string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++
		case ch == '+':
			tokens = append(tokens, token{kind: tokenPlus, raw: "+"})
			i++
		case ch == '-':
			tokens = append(tokens, token{kind: tokenMinus, raw: "-"})
			i++
		case ch == '*':
			tokens = append(tokens, token{kind: tokenStar, raw: "*"})
			i++
		case ch == '/':
			tokens = append(tokens, token{kind: tokenSlash, raw: "/"})
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case ch >= '0' && ch <= '9' || ch == '.':
			start := i
			for i < len(input) && (input[i] >= '0' && input[i] <= '9' || input[i] == '.') {
				i++
			}
			raw := input[start:i]
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("formula: invalid number %q", raw)
			}
			tokens = append(tokens, token{kind: tokenNumber, value: value, raw: raw})
		default:
			return nil, fmt.Errorf("formula: forbidden character %q", string(ch))
		}
	}
	return tokens, nil
}

type tokenStream struct {
	tokens []token
	pos    int
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) peek() (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	return s.tokens[s.pos], true
}

// evaluateExpression parses and evaluates a whitelisted arithmetic string in
// one pass. Division by zero and non-finite results are parse-level errors.
func evaluateExpression(input string) (float64, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, errors.New("formula: empty expression")
	}

	stream := &tokenStream{tokens: tokens}
	value, err := parseSum(stream)
	if err != nil {
		return 0, err
	}
	if stream.pos < len(stream.tokens) {
		return 0, fmt.Errorf("formula: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, errors.New("formula: result is not a finite number")
	}
	return value, nil
}

func parseSum(stream *tokenStream) (float64, error) {
	left, err := parseProduct(stream)
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case stream.match(tokenPlus):
			right, err := parseProduct(stream)
			if err != nil {
				return 0, err
			}
			left += right
		case stream.match(tokenMinus):
			right, err := parseProduct(stream)
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func parseProduct(stream *tokenStream) (float64, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case stream.match(tokenStar):
			right, err := parseUnary(stream)
			if err != nil {
				return 0, err
			}
			left *= right
		case stream.match(tokenSlash):
			right, err := parseUnary(stream)
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, errors.New("formula: division by zero")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func parseUnary(stream *tokenStream) (float64, error) {
	if stream.match(tokenMinus) {
		value, err := parseUnary(stream)
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	if stream.match(tokenPlus) {
		return parseUnary(stream)
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (float64, error) {
	if stream.match(tokenLParen) {
		value, err := parseSum(stream)
		if err != nil {
			return 0, err
		}
		if !stream.match(tokenRParen) {
			return 0, errors.New("formula: missing closing ')'")
		}
		return value, nil
	}

	tok, ok := stream.peek()
	if !ok {
		return 0, errors.New("formula: unexpected end of expression")
	}
	if tok.kind != tokenNumber {
		return 0, fmt.Errorf("formula: expected number, got %q", tok.raw)
	}
	stream.pos++
	return tok.value, nil
}
