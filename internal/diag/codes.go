package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Форматирование: проблемы сырого текста (format.Check)
	FmtTrailingWhitespace  Code = 1001
	FmtMissingFinalNewline Code = 1002
	FmtTabCharacter        Code = 1003
	FmtCarriageReturn      Code = 1004
	// файл изменится после форматирования
	FmtNeedsFormatting Code = 1100
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		FmtTrailingWhitespace:  "Trailing whitespace",
		FmtMissingFinalNewline: "Missing final newline",
		FmtTabCharacter:        "Contains tab character",
		FmtCarriageReturn:      "Carriage return line ending",
		FmtNeedsFormatting:     "File is not formatted",
	}
)

func (c Code) ID() string {
	if ic := int(c); ic >= 1000 && ic < 2000 {
		return fmt.Sprintf("FMT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
