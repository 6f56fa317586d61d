package filter

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
	tokEq
	tokNe
	tokMatch
	tokGT
	tokGE
	tokLT
	tokLE
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits an expression into tokens. The keywords and/or/not are
// case-insensitive alternatives to &&, || and !. Identifiers may carry
// '-' so raw attribute names like msDS-Behavior-Version lex as one
// token.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '&':
			if i+1 < len(src) && src[i+1] == '&' {
				toks = append(toks, token{tokAnd, "&&", i})
				i += 2
				continue
			}
			return nil, fmt.Errorf("unexpected '&' at offset %d", i)
		case c == '|':
			if i+1 < len(src) && src[i+1] == '|' {
				toks = append(toks, token{tokOr, "||", i})
				i += 2
				continue
			}
			return nil, fmt.Errorf("unexpected '|' at offset %d", i)
		case c == '!':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{tokNe, "!=", i})
				i += 2
				continue
			}
			toks = append(toks, token{tokNot, "!", i})
			i++
		case c == '=':
			switch {
			case i+1 < len(src) && src[i+1] == '=':
				toks = append(toks, token{tokEq, "==", i})
				i += 2
			case i+1 < len(src) && src[i+1] == '~':
				toks = append(toks, token{tokMatch, "=~", i})
				i += 2
			default:
				return nil, fmt.Errorf("unexpected '=' at offset %d (use '==')", i)
			}
		case c == '>':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{tokGE, ">=", i})
				i += 2
				continue
			}
			toks = append(toks, token{tokGT, ">", i})
			i++
		case c == '<':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{tokLE, "<=", i})
				i += 2
				continue
			}
			toks = append(toks, token{tokLT, "<", i})
			i++
		case c == '\'' || c == '"':
			text, next, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{tokString, text, i})
			i = next
		case c >= '0' && c <= '9' || (c == '-' && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9'):
			text, next := lexNumber(src, i)
			toks = append(toks, token{tokNumber, text, i})
			i = next
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			word := src[i:j]
			kind := tokIdent
			switch strings.ToLower(word) {
			case "and":
				kind = tokAnd
			case "or":
				kind = tokOr
			case "not":
				kind = tokNot
			}
			toks = append(toks, token{kind, word, i})
			i = j
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d", string(c), i)
		}
	}
	toks = append(toks, token{tokEOF, "", len(src)})
	return toks, nil
}

// lexString reads a quoted literal starting at i, returning its unquoted
// text and the offset past the closing quote. Backslash escapes the next
// character.
func lexString(src string, i int) (string, int, error) {
	quote := src[i]
	var b strings.Builder
	j := i + 1
	for j < len(src) {
		c := src[j]
		switch {
		case c == '\\' && j+1 < len(src):
			b.WriteByte(src[j+1])
			j += 2
		case c == quote:
			return b.String(), j + 1, nil
		default:
			b.WriteByte(c)
			j++
		}
	}
	return "", 0, fmt.Errorf("unterminated string at offset %d", i)
}

func lexNumber(src string, i int) (string, int) {
	j := i
	if src[j] == '-' {
		j++
	}
	for j < len(src) && src[j] >= '0' && src[j] <= '9' {
		j++
	}
	if j < len(src) && src[j] == '.' {
		j++
		for j < len(src) && src[j] >= '0' && src[j] <= '9' {
			j++
		}
	}
	return src[i:j], j
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9' || c == '-'
}
