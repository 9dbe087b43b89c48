// Package fuzztests houses Go fuzz harnesses for the formatter: the literal
// scanner, the three formatting layers and the checker.
//
// Назначение: гонять произвольные байты через lexer.Scan, format.Format и
// format.Check и проверять, что ничего не паникует, а результат стабилен.
//
// Не делает: запись файлов, кэш, выполнение CLI.
//
// Зависимости: internal/lexer, internal/format, internal/driver (Verify).

package fuzztests
