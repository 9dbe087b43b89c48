package format

import "testing"

func TestSpaceLine(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		// operators
		{"var x=1;", "var x = 1;"},
		{"var x = 1+2;", "var x = 1 + 2;"},
		{"var x = 3-1;", "var x = 3 - 1;"},
		{"var x = 2*3;", "var x = 2 * 3;"},
		{"var x = 6/2;", "var x = 6 / 2;"},
		{"var x = 7%3;", "var x = 7 % 3;"},
		{"if x==1 {", "if x == 1 {"},
		{"if x!=1 {", "if x != 1 {"},
		{"if x<1 {", "if x < 1 {"},
		{"if x>1 {", "if x > 1 {"},
		{"if a&&b {", "if a && b {"},
		{"if a||b {", "if a || b {"},
		{"x  =   y;", "x = y;"},
		{"x<=y", "x <= y"},
		{"total+=step;", "total += step;"},
		{"this.value=val;", "this.value = val;"},
		{"f(x)*g(y)", "f(x) * g(y)"},
		{"a[i]-1", "a[i] - 1"},

		// unary and non-operator runs
		{"x=-1;", "x = -1;"},
		{"x = -1;", "x = -1;"},
		{"return -1;", "return -1;"},
		{"f(-x)", "f(-x)"},
		{"ok = a&&!b;", "ok = a && !b;"},
		{"i++;", "i++;"},
		{"i--;", "i--;"},
		{"a <=> b;", "a <=> b;"},
		{"for i in 1..10 do", "for i in 1..10 do"},
		{"for i in 0..<n do", "for i in 0..<n do"},
		{"var eps = 1e-5;", "var eps = 1e-5;"},
		{"var eps = 2.5E+3;", "var eps = 2.5E+3;"},
		{"x = a**2;", "x = a**2;"},
		{"x =", "x ="},
		{"x = ;", "x =;"},

		// оператор в конце строки: продолжение на следующей, не трогаем
		{"x = a+", "x = a+"},
		{"total = a  *", "total = a  *"},
		{"ok = a&&  // more below", "ok = a&&  // more below"},
		{"y=b-", "y = b-"},

		// keywords
		{"if(x == 1) {", "if (x == 1) {"},
		{"for(i in 1..10) {", "for (i in 1..10) {"},
		{"while(x > 0) {", "while (x > 0) {"},
		{"forall(a, b) in zip(A, B) {", "forall (a, b) in zip(A, B) {"},
		{"elif(x)", "elif(x)"},
		{"verify(x)", "verify(x)"},

		// braces
		{"if (x == 1){", "if (x == 1) {"},
		{"module Test{", "module Test {"},
		{"var t = {1, 2};", "var t = {1, 2};"},

		// commas, semicolons, colons
		{"proc test(a: int,b: int) {", "proc test(a: int, b: int) {"},
		{"f(a ,b ,  c)", "f(a, b, c)"},
		{"var t = (1,);", "var t = (1,);"},
		{"f(a, )", "f(a,)"},
		{"var x = 1 ;", "var x = 1;"},
		{"var x:int;", "var x: int;"},
		{"var x : int;", "var x: int;"},
		{"proc test(a:int,b:int):int {", "proc test(a: int, b: int): int {"},
		{"x::y", "x::y"},
		{"a:=b", "a:=b"},

		// literals and comments are untouched
		{`var msg = "Hello  World";`, `var msg = "Hello  World";`},
		{`var expr = "x=1+2";`, `var expr = "x=1+2";`},
		{`var msg = "Line 1\nLine 2";`, `var msg = "Line 1\nLine 2";`},
		{`var q = "say \"a=b\" ok";`, `var q = "say \"a=b\" ok";`},
		{`x="a"+"b";`, `x = "a" + "b";`},
		{"// a=b,c;d:e", "// a=b,c;d:e"},
		{"x=1; // y=2", "x = 1; // y=2"},
		{"f(a,   // first", "f(a,   // first"},
		{`s = "unterminated a=b`, `s = "unterminated a=b`},

		// indentation of the line is kept
		{"    x=1;", "    x = 1;"},
		{"  , b", "  , b"},
	}

	for _, tc := range cases {
		if got := SpaceLine(tc.in); got != tc.want {
			t.Errorf("SpaceLine(%q):\nwant %q\ngot  %q", tc.in, tc.want, got)
		}
	}
}

func TestRulesIdempotentInIsolation(t *testing.T) {
	lines := []string{
		"var x=1;",
		"if(a&&b){",
		"proc f(a:int,b:int):int {",
		"x = y ,z ;",
		`s = "a , b" ;`,
		"x=-1+2*3;",
		"var t = (1,);",
	}
	for _, r := range Rules() {
		for _, line := range lines {
			once := r.Apply(line)
			if twice := r.Apply(once); twice != once {
				t.Errorf("rule %s not idempotent on %q:\nonce  %q\ntwice %q", r.Name, line, once, twice)
			}
		}
	}
}

func TestRulesOrder(t *testing.T) {
	want := []string{"binary-operator", "keyword-paren", "brace-space", "comma", "semicolon", "type-colon"}
	got := Rules()
	if len(got) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(got))
	}
	for i, r := range got {
		if r.Name != want[i] {
			t.Fatalf("rule %d: want %s, got %s", i, want[i], r.Name)
		}
	}
}

func TestApplySpacing(t *testing.T) {
	in := "var x=1;\n\nif(x==1){\n"
	want := "var x = 1;\n\nif (x == 1) {\n"
	if got := ApplySpacing(in); got != want {
		t.Fatalf("ApplySpacing mismatch:\nwant %q\ngot  %q", want, got)
	}
	if got := ApplySpacing(""); got != "" {
		t.Fatalf("ApplySpacing(\"\") = %q", got)
	}
}
