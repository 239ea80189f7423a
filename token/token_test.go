package token

import "testing"

func TestKindName(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{EOF, "EOF"},
		{Identifier, "IDENTIFIER"},
		{Punctuator, "PUNCTUATOR"},
		{Kind("WORD"), "WORD"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.Name(); got != tt.want {
				t.Errorf("Kind.Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenIs(t *testing.T) {
	tok := Token{Type: Kind("WORD"), Value: "foo"}
	if !tok.Is(Kind("WORD")) {
		t.Error("expected token to be a WORD")
	}
	if tok.Is(Identifier) {
		t.Error("expected token not to be an IDENTIFIER")
	}
	if tok.IsEOF() {
		t.Error("expected token not to be EOF")
	}
	if !NewEOF(3, 1, 4).IsEOF() {
		t.Error("expected NewEOF to build an EOF token")
	}
}

func TestTokenFlags(t *testing.T) {
	tests := []struct {
		name      string
		flags     Flags
		included  bool
		generated bool
	}{
		{"none", 0, false, false},
		{"included", FromInclude, true, false},
		{"generated", Generated, false, true},
		{"both", FromInclude | Generated, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := Token{Type: Identifier, Flags: tt.flags}
			if tok.IsIncluded() != tt.included {
				t.Errorf("IsIncluded() = %v, want %v", tok.IsIncluded(), tt.included)
			}
			if tok.IsGenerated() != tt.generated {
				t.Errorf("IsGenerated() = %v, want %v", tok.IsGenerated(), tt.generated)
			}
		})
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Type: Kind("WORD"), Value: "Foo", Line: 1, Column: 14}
	if got, want := tok.String(), `1:14 WORD "Foo"`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
