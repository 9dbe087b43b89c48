// Package lexer finds the parts of a source line that formatting must not
// touch: double-quoted string literals and "//" line comments.
//
// The scanner works on one line at a time and never fails; unterminated
// strings simply run to the end of the line.
package lexer
