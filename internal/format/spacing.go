package format

// ApplySpacing is the second formatting layer: every rule of the table runs
// over every line in order. Bytes inside string literals and comments are
// never touched.
func ApplySpacing(text string) string {
	lines := splitLines(text)
	for i, line := range lines {
		lines[i] = SpaceLine(line)
	}
	return joinLines(lines)
}

// SpaceLine applies the spacing rules to a single line.
func SpaceLine(line string) string {
	if line == "" {
		return line
	}
	for _, r := range rules {
		line = r.Apply(line)
	}
	return line
}

func spaceOperators(line string) string {
	return newLineEditor(line).run(func(e *lineEditor) bool {
		if !isOperatorByte(e.src[e.pos]) {
			return false
		}
		end := e.pos + 1
		for end < len(e.src) && isOperatorByte(e.src[end]) && !e.literalAt(end) {
			end++
		}
		run := e.src[e.pos:end]

		op := run
		if !binaryOperators[op] {
			op = splitUnary(run)
		}
		if op != "" && e.binaryAt(op, e.pos+len(op)) {
			e.trimOut()
			e.write(" " + op + " ")
			// хвостовой унарный знак (x=-1) обработается следующим шагом
			e.pos = e.blanksFrom(e.pos + len(op))
			return true
		}

		e.write(run)
		e.pos = end
		return true
	})
}

// splitUnary splits runs like "=-" or "&&!" into a binary operator followed
// by a unary sign. It returns the operator part, or "" when run is not such a
// pair. "++" and "--" never split.
func splitUnary(run string) string {
	if len(run) < 2 {
		return ""
	}
	sign := run[len(run)-1]
	head := run[:len(run)-1]
	if !unarySigns[sign] || !binaryOperators[head] {
		return ""
	}
	if head[len(head)-1] == sign {
		return ""
	}
	return head
}

// binaryAt decides whether op, whose text ends right before after, sits
// between two operands.
func (e *lineEditor) binaryAt(op string, after int) bool {
	left := e.lastCode()
	if !isWordByte(left) && left != ')' && left != ']' && left != '"' && left != '\'' {
		return false
	}
	if op == "+" || op == "-" {
		if unaryAfter[e.trailingWord(true)] {
			return false
		}
		// 1e-5: знак экспоненты, не оператор
		if !isBlank(e.lastByte()) {
			w := e.trailingWord(false)
			if w != "" && isDigit(w[0]) && (w[len(w)-1] == 'e' || w[len(w)-1] == 'E') {
				return false
			}
		}
	}

	j := e.blanksFrom(after)
	if j >= len(e.src) || e.commentAt(j) {
		return false
	}
	switch e.src[j] {
	case ';', ',', ')', ']':
		return false
	}
	return true
}

func spaceKeywordParen(line string) string {
	return newLineEditor(line).run(func(e *lineEditor) bool {
		if !isWordByte(e.src[e.pos]) {
			return false
		}
		end := e.pos
		for end < len(e.src) && isWordByte(e.src[end]) {
			end++
		}
		word := e.src[e.pos:end]
		e.write(word)
		if controlKeywords[word] && e.byteAt(end) == '(' {
			e.write(" ")
		}
		e.pos = end
		return true
	})
}

func spaceBeforeBrace(line string) string {
	return newLineEditor(line).run(func(e *lineEditor) bool {
		if e.src[e.pos] != '{' {
			return false
		}
		if prev := e.lastByte(); prev == ')' || isWordByte(prev) {
			e.write(" ")
		}
		e.write("{")
		e.pos++
		return true
	})
}

func spaceCommas(line string) string {
	return newLineEditor(line).run(func(e *lineEditor) bool {
		if e.src[e.pos] != ',' {
			return false
		}
		e.trimOut()
		e.write(",")

		j := e.blanksFrom(e.pos + 1)
		switch {
		case j >= len(e.src):
			e.pos = j
		case e.commentAt(j):
			// отступ перед комментарием оставляем как есть
			e.pos++
		case e.src[j] == ')' || e.src[j] == ']' || e.src[j] == ',':
			e.pos = j
		default:
			e.write(" ")
			e.pos = j
		}
		return true
	})
}

func spaceSemicolons(line string) string {
	return newLineEditor(line).run(func(e *lineEditor) bool {
		if e.src[e.pos] != ';' {
			return false
		}
		e.trimOut()
		e.write(";")
		e.pos++
		return true
	})
}

func spaceTypeColons(line string) string {
	return newLineEditor(line).run(func(e *lineEditor) bool {
		if e.src[e.pos] != ':' {
			return false
		}
		if next := e.byteAt(e.pos + 1); next == ':' || next == '=' || e.byteAt(e.pos-1) == ':' {
			return false
		}
		left := e.lastCode()
		if !isWordByte(left) && left != ')' && left != ']' {
			return false
		}
		e.trimOut()
		e.write(":")

		j := e.blanksFrom(e.pos + 1)
		switch {
		case j >= len(e.src):
			e.pos = j
		case e.commentAt(j):
			e.pos++
		default:
			e.write(" ")
			e.pos = j
		}
		return true
	})
}
