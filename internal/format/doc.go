// Package format contains the text formatting passes for Chapel-style sources:
// whitespace normalization, token spacing and brace indentation, plus a
// read-only checker that reports raw-text problems.
//
// Назначение: best-effort форматирование любого текста без AST, идемпотентно.
// Не делает: синтаксической валидации, переноса комментариев, IO.
// Зависимости: internal/lexer.
package format
