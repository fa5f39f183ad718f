package store

import (
	"strings"
	"unicode"
)

// clauseEnd ends a FROM list.
var clauseEnd = map[string]bool{
	"where": true, "group": true, "order": true, "limit": true, "having": true,
	"union": true, "except": true, "intersect": true, "offset": true, "fetch": true,
	"window": true, "for": true, "select": true,
}

type sqlFrame struct {
	query       bool
	inFrom      bool
	expectTable bool
}

// referencedTables returns every table named in a FROM list or JOIN clause,
// lowercased and without schema or quotes. Parentheses that do not open a
// subquery are function arguments, so EXTRACT(YEAR FROM col) names no table.
func referencedTables(query string) []string {
	tokens := tokenizeSQL(query)
	stack := []*sqlFrame{{query: true}}
	var tables []string

	for i, tok := range tokens {
		cur := stack[len(stack)-1]
		switch tok {
		case "(":
			next := ""
			if i+1 < len(tokens) {
				next = tokens[i+1]
			}
			frame := &sqlFrame{query: next == "select" || next == "with"}
			if cur.query && cur.expectTable && !frame.query {
				// parenthesized join tree: FROM (a JOIN b ON ...)
				frame.query, frame.inFrom, frame.expectTable = true, true, true
			}
			cur.expectTable = false
			stack = append(stack, frame)
			continue
		case ")":
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			continue
		}
		if !cur.query {
			continue
		}

		switch {
		case tok == "from":
			cur.inFrom, cur.expectTable = true, true
		case tok == "join":
			cur.expectTable = true
		case tok == "on" || tok == "using":
			cur.expectTable = false
		case tok == ",":
			if cur.inFrom {
				cur.expectTable = true
			}
		case clauseEnd[tok]:
			cur.inFrom, cur.expectTable = false, false
		case cur.expectTable:
			if tok == "lateral" || tok == "only" {
				continue
			}
			if !isIdentifier(tok) {
				cur.expectTable = false
				continue
			}
			parts := strings.Split(tok, ".")
			tables = append(tables, strings.Trim(parts[len(parts)-1], `"`))
			cur.expectTable = false
		}
	}
	return tables
}

// tokenizeSQL splits a query into lowercased identifiers and single-character
// punctuation. String literals and comments are dropped.
func tokenizeSQL(query string) []string {
	var tokens []string
	runes := []rune(query)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i += 2
		case r == '\'':
			i++
			for i < len(runes) && runes[i] != '\'' {
				i++
			}
			i++
		case isIdentRune(r):
			start := i
			for i < len(runes) && isIdentRune(runes[i]) {
				i++
			}
			tokens = append(tokens, strings.ToLower(string(runes[start:i])))
		default:
			tokens = append(tokens, string(r))
			i++
		}
	}
	return tokens
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || r == '"' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentifier(tok string) bool {
	r := []rune(tok)
	return len(r) > 0 && (r[0] == '_' || r[0] == '"' || unicode.IsLetter(r[0]))
}
