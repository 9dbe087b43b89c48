package fuzztests

import (
	"testing"
)

const maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса

// chapelSeeds covers the shapes the formatter rewrites: operators, keyword
// parens, braces, literals with operator-looking content and broken input.
var chapelSeeds = []string{
	"",
	"var x=1;\n",
	"module Test {\n  proc foo(a: int, b: int): int {\n    var x = 1 + 2;\n    return a + b;\n  }\n}\n",
	"class C{\nvar a:int;var b:real;\nproc f(x:int,y:int){return x*y-1;}\n}\n",
	"if(a&&!b){\nx=-1;\n}else{\ny+=2;\n}\n",
	"for(i in 1..10){\nwriteln(\"i = \", i);\n}\n",
	"var eps=1e-5, big=2.5E+3;\n",
	"f(a ,b ,  c) ; // trailing , comment\n",
	"writeln(\"a=b,c\");  // x=1\n",
	"\tvar s = \"tab\there\";\n",
	"var s = \"unterminated {\n}\n",
	"}}}\n{{{\nx;\n",
	"\t\tvar\tx\t=\t1;\t\r\n",
	"a<=b; c>=d; e!=f; g==h;\n",
	"var q = \"say \\\"a=b\\\" ok\";\n",
	"var переменная=1;\n",
	"\x00\xff{\x01}\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, seed := range chapelSeeds {
		f.Add(clampSeed([]byte(seed)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
