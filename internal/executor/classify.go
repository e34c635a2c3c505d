package executor

import (
	"strings"
	"unicode"
)

// Statement is the classification of a SQL text.
type Statement int

const (
	// StatementOther covers DDL and anything without a defined row count.
	StatementOther Statement = iota
	// StatementQuery returns rows.
	StatementQuery
	// StatementUpdate modifies rows and reports how many.
	StatementUpdate
)

// String returns the statement class name.
func (s Statement) String() string {
	switch s {
	case StatementQuery:
		return "query"
	case StatementUpdate:
		return "update"
	default:
		return "other"
	}
}

var queryKeywords = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"VALUES":   true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"DESCRIBE": true,
	"DESC":     true,
	"PRAGMA":   true,
	"TABLE":    true,
	"CALL":     true,
}

var updateKeywords = map[string]bool{
	"INSERT":  true,
	"UPDATE":  true,
	"DELETE":  true,
	"MERGE":   true,
	"REPLACE": true,
	"UPSERT":  true,
}

// Classify inspects the leading keyword of a statement.
// Leading whitespace, comments and opening parentheses are skipped.
// A statement opening with a WITH clause is classified by the first keyword
// after its common table expressions. An update carrying a RETURNING clause
// produces rows and is a query.
func Classify(sql string) Statement {
	keyword := strings.ToUpper(firstWord(sql))
	if keyword == "WITH" {
		keyword = mainKeyword(sql)
	}

	switch {
	case queryKeywords[keyword]:
		return StatementQuery
	case updateKeywords[keyword]:
		if hasTopLevelWord(sql, "RETURNING") {
			return StatementQuery
		}
		return StatementUpdate
	default:
		return StatementOther
	}
}

// mainKeyword returns the first query or update keyword that follows a
// leading WITH at the outermost nesting level. CTE bodies sit inside
// parentheses, so their keywords are never picked up.
func mainKeyword(sql string) string {
	seenWith := false
	for _, tok := range scan(skipNoise(sql)) {
		if tok.depth > 0 {
			continue
		}
		word := strings.ToUpper(tok.word)
		if !seenWith {
			seenWith = word == "WITH"
			continue
		}
		if queryKeywords[word] || updateKeywords[word] {
			return word
		}
	}
	return "WITH"
}

// Keyword returns the upper-cased leading keyword of a statement, or "".
func Keyword(sql string) string {
	return strings.ToUpper(firstWord(sql))
}

// firstWord returns the first identifier-like token outside comments.
func firstWord(sql string) string {
	rest := skipNoise(sql)
	end := strings.IndexFunc(rest, func(r rune) bool { return !isWordRune(r) })
	if end == -1 {
		return rest
	}
	return rest[:end]
}

// skipNoise drops whitespace, -- and /* */ comments and '(' from the front.
func skipNoise(s string) string {
	for {
		trimmed := strings.TrimLeftFunc(s, func(r rune) bool {
			return unicode.IsSpace(r) || r == '('
		})
		switch {
		case strings.HasPrefix(trimmed, "--"):
			nl := strings.IndexByte(trimmed, '\n')
			if nl == -1 {
				return ""
			}
			s = trimmed[nl+1:]
		case strings.HasPrefix(trimmed, "/*"):
			end := strings.Index(trimmed[2:], "*/")
			if end == -1 {
				return ""
			}
			s = trimmed[2+end+2:]
		default:
			return trimmed
		}
	}
}

// hasTopLevelWord reports whether word appears as a bare token outside
// parentheses, string literals, quoted identifiers and comments.
// Matching is case-insensitive.
func hasTopLevelWord(sql, word string) bool {
	for _, tok := range scan(skipNoise(sql)) {
		if tok.depth <= 0 && strings.EqualFold(tok.word, word) {
			return true
		}
	}
	return false
}

// token is a bare word and its parenthesis depth.
// Depth is relative to the start of the text and may go negative.
type token struct {
	word  string
	depth int
}

// scan splits sql into bare words outside quoted text and comments.
func scan(sql string) []token {
	var (
		out   []token
		start = -1
		depth int
	)
	flush := func(i int) {
		if start >= 0 {
			out = append(out, token{word: sql[start:i], depth: depth})
			start = -1
		}
	}

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			flush(i)
			i = skipQuoted(sql, i, c)
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			flush(i)
			nl := strings.IndexByte(sql[i:], '\n')
			if nl == -1 {
				return out
			}
			i += nl
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			flush(i)
			end := strings.Index(sql[i+2:], "*/")
			if end == -1 {
				return out
			}
			i += 2 + end + 1
		case isWordByte(c):
			if start < 0 {
				start = i
			}
		case c == '(':
			flush(i)
			depth++
		case c == ')':
			flush(i)
			depth--
		default:
			flush(i)
		}
	}
	flush(len(sql))
	return out
}

// skipQuoted returns the index of the closing quote, honoring doubled quotes.
func skipQuoted(s string, open int, q byte) int {
	for i := open + 1; i < len(s); i++ {
		if s[i] != q {
			continue
		}
		if i+1 < len(s) && s[i+1] == q {
			i++
			continue
		}
		return i
	}
	return len(s)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
