package hashing

import "unicode"

// Term weighting table. Ranking tests depend only on consistent
// application of these values, not on the values themselves.
const (
	keywordWeight    = 3.0
	identifierWeight = 2.0
	proseWeight      = 1.0
)

// programmingKeywords covers the shared reserved-word surface of the
// languages the classifier recognises (Go, Python, JavaScript/
// TypeScript, C-family, Rust, Ruby, shell, SQL). Matching is
// case-insensitive on the lowercased token.
var programmingKeywords = map[string]struct{}{
	// control flow
	"if": {}, "else": {}, "elif": {}, "for": {}, "while": {}, "do": {},
	"switch": {}, "case": {}, "default": {}, "break": {}, "continue": {},
	"return": {}, "goto": {}, "match": {}, "loop": {}, "yield": {},
	// declarations
	"func": {}, "function": {}, "def": {}, "fn": {}, "lambda": {},
	"var": {}, "let": {}, "const": {}, "type": {}, "struct": {},
	"class": {}, "interface": {}, "enum": {}, "trait": {}, "impl": {},
	"package": {}, "module": {}, "import": {}, "from": {}, "export": {},
	"public": {}, "private": {}, "protected": {}, "static": {},
	// values and operators
	"nil": {}, "null": {}, "none": {}, "true": {}, "false": {},
	"new": {}, "delete": {}, "defer": {}, "go": {}, "chan": {},
	"async": {}, "await": {}, "try": {}, "catch": {}, "except": {},
	"finally": {}, "raise": {}, "throw": {}, "panic": {}, "recover": {},
	"range": {}, "map": {}, "in": {}, "not": {}, "and": {}, "or": {},
	// sql
	"select": {}, "insert": {}, "update": {}, "where": {}, "join": {},
	"table": {}, "index": {}, "create": {}, "drop": {}, "alter": {},
	// shell
	"echo": {}, "exec": {}, "exit": {}, "then": {}, "fi": {}, "esac": {},
}

// termWeight returns the weight accumulated into the token's hash
// bucket. Keywords rank above identifiers, identifiers above prose.
func termWeight(token string) float64 {
	lower := lowerASCII(token)
	if _, ok := programmingKeywords[lower]; ok {
		return keywordWeight
	}
	if looksLikeIdentifier(token) {
		return identifierWeight
	}
	return proseWeight
}

// looksLikeIdentifier recognises snake_case, camelCase and tokens
// mixing letters with digits - shapes that rarely occur in prose.
// An uppercase rune only counts when it appears after the first
// position, so sentence-initial capitalisation stays prose.
func looksLikeIdentifier(token string) bool {
	var hasInnerUpper, hasLower, hasDigit, hasUnderscore, hasLetter bool
	for i, r := range token {
		switch {
		case r == '_':
			hasUnderscore = true
		case unicode.IsUpper(r):
			hasLetter = true
			if i > 0 {
				hasInnerUpper = true
			}
		case unicode.IsLower(r):
			hasLower = true
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if hasUnderscore && hasLetter {
		return true
	}
	if hasInnerUpper && hasLower {
		return true
	}
	return hasDigit && hasLetter
}

func lowerASCII(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
