package lexer

import (
	"testing"

	"cstrict/internal/diag"
	"cstrict/internal/source"
	"cstrict/internal/token"
)

func lexSource(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte(src))
	bag := diag.NewBag(100)
	toks := Tokenize(fs.Get(id), diag.BagReporter{Bag: bag})
	return toks, bag
}

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Kind)
	}
	return out
}

func TestTokenizeSimpleFunction(t *testing.T) {
	toks, bag := lexSource(t, "int main(void)\n{\n    return 0;\n}\n")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}

	want := []token.Kind{
		token.KwInt, token.Ident, token.LParen, token.KwVoid, token.RParen,
		token.LBrace, token.KwReturn, token.IntLit, token.Semicolon,
		token.RBrace, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCommentsAreTokens(t *testing.T) {
	toks, _ := lexSource(t, "// leading\nint x; /* mid */\n")
	if toks[0].Kind != token.LineComment || toks[0].Text != "// leading" {
		t.Fatalf("line comment not tokenized: %v %q", toks[0].Kind, toks[0].Text)
	}
	found := false
	for _, tok := range toks {
		if tok.Kind == token.BlockComment && tok.Text == "/* mid */" {
			found = true
		}
	}
	if !found {
		t.Fatalf("block comment missing from stream")
	}
}

func TestDirectiveToken(t *testing.T) {
	toks, _ := lexSource(t, "#include <stdio.h>\n#define MAX \\\n    10\nint x;\n")
	if toks[0].Kind != token.Directive || toks[0].Text != "#include <stdio.h>" {
		t.Fatalf("include directive: %v %q", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Kind != token.Directive {
		t.Fatalf("define directive: %v %q", toks[1].Kind, toks[1].Text)
	}
	if toks[1].Text != "#define MAX \\\n    10" {
		t.Fatalf("continuation not folded into directive: %q", toks[1].Text)
	}
}

func TestHashInsideLineIsNotDirective(t *testing.T) {
	toks, _ := lexSource(t, "int a; # stray\n")
	// '#' after a statement on the same line is not a directive start.
	for _, tok := range toks[:3] {
		if tok.Kind == token.Directive {
			t.Fatalf("stray # treated as directive")
		}
	}
}

func TestUnterminatedStringRecovers(t *testing.T) {
	toks, bag := lexSource(t, "char *s = \"oops;\nint y;\n")
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	if bag.Items()[0].Code != diag.LexUnterminatedString {
		t.Fatalf("wrong code %s", bag.Items()[0].Code)
	}
	// Lexing continued: int y; still tokenized.
	sawInt := false
	for _, tok := range toks {
		if tok.Kind == token.KwInt {
			sawInt = true
		}
	}
	if !sawInt {
		t.Fatalf("lexer did not recover after unterminated string")
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte("int x;\n/* never closed\nint y;\n"))
	bag := diag.NewBag(100)
	Tokenize(fs.Get(id), diag.BagReporter{Bag: bag})

	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexUnterminatedBlockComment {
		t.Fatalf("expected unterminated block comment diagnostic")
	}
	start, _ := fs.Resolve(bag.Items()[0].Primary)
	if start.Line != 2 || start.Col != 1 {
		t.Fatalf("reported at %d:%d, want 2:1", start.Line, start.Col)
	}
}

func TestNumberForms(t *testing.T) {
	toks, bag := lexSource(t, "0x1Fu 077 42UL 3.14 1e9 2.5f\n")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics")
	}
	want := []token.Kind{
		token.IntLit, token.IntLit, token.IntLit,
		token.FloatLit, token.FloatLit, token.FloatLit, token.EOF,
	}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d (%q): got %s, want %s", i, toks[i].Text, got[i], want[i])
		}
	}
}

func TestRoundTrip(t *testing.T) {
	sources := []string{
		"int main(void)\n{\n\treturn 0;\n}\n",
		"#define DEBUG3(x) x\n/* block */ // line\nchar c = 'a';\n",
		"int a = 1; /* unterminated\n",
		"\t  \nweird \\\n spacing\r\n",
	}
	for _, src := range sources {
		fs := source.NewFileSet()
		id := fs.Add("rt.c", []byte(src), source.FileVirtual)
		toks := Tokenize(fs.Get(id), diag.NopReporter{})
		back := Reconstruct(toks)
		if string(back) != src {
			t.Fatalf("round trip mismatch:\n src=%q\nback=%q", src, back)
		}
	}
}
