package idl

import "testing"

func TestLexerKeywordsAndPunctuation(t *testing.T) {
	src := `module a { struct B { unsigned long x; sequence<octet, 4> y; }; };`
	l := NewLexer(src, "test.idl")
	var types []TokenType
	for {
		tok := l.Next()
		types = append(types, tok.Type)
		if tok.Type == TokenEOF {
			break
		}
	}
	want := []TokenType{
		TokenModule, TokenIdent, TokenLBrace,
		TokenStruct, TokenIdent, TokenLBrace,
		TokenUnsigned, TokenLong, TokenIdent, TokenSemicolon,
		TokenSequence, TokenLAngle, TokenOctet, TokenComma, TokenInt, TokenRAngle, TokenIdent, TokenSemicolon,
		TokenRBrace, TokenSemicolon,
		TokenRBrace, TokenSemicolon,
		TokenEOF,
	}
	if len(types) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(types), len(want), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, types[i], want[i])
		}
	}
}

func TestLexerComments(t *testing.T) {
	src := "// line comment\n/* block\ncomment */ struct\n# include directive\nA"
	l := NewLexer(src, "t")
	tok := l.Next()
	if tok.Type != TokenStruct {
		t.Fatalf("got %v, want TokenStruct", tok.Type)
	}
	tok = l.Next()
	if tok.Type != TokenIdent || tok.Text != "A" {
		t.Fatalf("got %+v, want ident A", tok)
	}
}

func TestLexerStringEscapes(t *testing.T) {
	l := NewLexer(`"hello\nworld"`, "t")
	tok := l.Next()
	if tok.Type != TokenString || tok.Text != "hello\nworld" {
		t.Fatalf("got %+v", tok)
	}
}

func TestLexerScopeOperator(t *testing.T) {
	l := NewLexer("a::b::c", "t")
	want := []TokenType{TokenIdent, TokenScope, TokenIdent, TokenScope, TokenIdent, TokenEOF}
	for i, w := range want {
		tok := l.Next()
		if tok.Type != w {
			t.Fatalf("token %d: got %v, want %v", i, tok.Type, w)
		}
	}
}

func TestLexerHexLiteral(t *testing.T) {
	l := NewLexer("0xFF", "t")
	tok := l.Next()
	if tok.Type != TokenInt || tok.Text != "0xFF" {
		t.Fatalf("got %+v", tok)
	}
}
