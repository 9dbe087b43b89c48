package format

import "testing"

func TestNormalizeWhitespace(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trailing spaces", "var x = 1;   \n", "var x = 1;\n"},
		{"several lines", "var x = 1;  \nvar y = 2;    \n", "var x = 1;\nvar y = 2;\n"},
		{"leading tab", "\tvar x = 1;\n", "  var x = 1;\n"},
		{"mid-line tab", "var\tx = 1;\n", "var  x = 1;\n"},
		{"final newline added", "var x = 1;", "var x = 1;\n"},
		{"final newline kept", "var x = 1;\n", "var x = 1;\n"},
		{"extra final newlines collapsed", "var x = 1;\n\n\n", "var x = 1;\n"},
		{"crlf", "var x = 1;\r\nvar y = 2;\r\n", "var x = 1;\nvar y = 2;\n"},
		{"lone cr", "var x = 1;\rvar y = 2;\r", "var x = 1;\nvar y = 2;\n"},
		{"blank lines kept", "var x = 1;\n\nvar y = 2;\n", "var x = 1;\n\nvar y = 2;\n"},
		{"blank line with spaces", "a;\n   \nb;\n", "a;\n\nb;\n"},
		{"empty", "", ""},
		{"only whitespace", "   \n  \n", ""},
		{"only tabs and crs", "\t\r\n\r", ""},
		{"only form feed", "\f\n", ""},
		{"vertical tab among spaces", "  \v \n", ""},
		{"only no-break space", "\u00a0\n", ""},
		{"form feed without newline", " \f", ""},
		{"form feed next to code kept", "\fx;\n", "\fx;\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeWhitespace(tc.in); got != tc.want {
				t.Fatalf("NormalizeWhitespace(%q):\nwant %q\ngot  %q", tc.in, tc.want, got)
			}
		})
	}
}

func TestNormalizeWhitespaceIdempotent(t *testing.T) {
	inputs := []string{
		"a  \r\n\tb\r\n\n",
		"x",
		"\n\nx\n\n",
		"  \t  ",
	}
	for _, in := range inputs {
		once := NormalizeWhitespace(in)
		if twice := NormalizeWhitespace(once); twice != once {
			t.Fatalf("not idempotent for %q:\nonce  %q\ntwice %q", in, once, twice)
		}
	}
}

func TestFormatUnicodeWhitespaceOnly(t *testing.T) {
	for _, in := range []string{"\f\n", "  \v \n", "\u00a0\n", " \f", "\n\u2003\n"} {
		if got := Format(in); got != "" {
			t.Errorf("Format(%q) = %q, want empty output", in, got)
		}
	}
}
