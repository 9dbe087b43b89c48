package format

import "slices"

// Rule is one spacing rewrite. Apply receives a single line and must return
// it unchanged when the line is already spaced the way the rule wants.
type Rule struct {
	Name  string
	Apply func(line string) string
}

// Rules are applied in this order; multi-byte operators are handled inside
// binary-operator, so no later rule can split them.
var rules = []Rule{
	{Name: "binary-operator", Apply: spaceOperators},
	{Name: "keyword-paren", Apply: spaceKeywordParen},
	{Name: "brace-space", Apply: spaceBeforeBrace},
	{Name: "comma", Apply: spaceCommas},
	{Name: "semicolon", Apply: spaceSemicolons},
	{Name: "type-colon", Apply: spaceTypeColons},
}

// Rules returns the ordered spacing rule table.
func Rules() []Rule {
	return slices.Clone(rules)
}

// binaryOperators lists the operators spaced on both sides. Runs of operator
// bytes that are not listed here (++, **, <=>, =>, ->) are left alone.
var binaryOperators = map[string]bool{
	"==": true, "!=": true, "<=": true, ">=": true,
	"&&": true, "||": true,
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"=": true, "<": true, ">": true,
	"+": true, "-": true, "*": true, "/": true, "%": true,
}

// unarySigns may directly follow a binary operator, as in "x=-1".
var unarySigns = map[byte]bool{'-': true, '+': true, '!': true}

// controlKeywords get a space before an opening parenthesis.
var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "forall": true, "coforall": true,
}

// unaryAfter are keywords after which "+" and "-" start an operand.
var unaryAfter = map[string]bool{
	"return": true, "yield": true, "in": true, "then": true, "else": true,
	"do": true, "by": true, "when": true, "if": true, "while": true,
	"align": true, "with": true,
}

func isOperatorByte(b byte) bool {
	switch b {
	case '=', '!', '<', '>', '+', '-', '*', '/', '%', '&', '|':
		return true
	}
	return false
}
