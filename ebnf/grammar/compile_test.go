package grammar

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/dhamidi/recognizer/ebnflex"
	"github.com/dhamidi/recognizer/input"
	"github.com/dhamidi/recognizer/parse"
)

const javaGrammar = `
JavaClassDefinition = "public" ( "class" | "interface" ) WORD [ "implements" WORD { "," WORD } ] [ Body ] .
Body = "{" { Member } "}" .
Member = WORD WORD ";" .
WORD = letter { letter | digit } .
WS = ( " " | "\t" | "\r" | "\n" ) { " " | "\t" | "\r" | "\n" } .
letter = "a" … "z" | "A" … "Z" .
digit = "0" … "9" .
`

func compile(t *testing.T, src, start string) *Compiled {
	t.Helper()
	g, err := ebnflex.ParseGrammar("test.ebnf", strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseGrammar(): %v", err)
	}
	c, err := Compile(g, start)
	if err != nil {
		t.Fatalf("Compile(): %v", err)
	}
	return c
}

func TestCompileDefinitions(t *testing.T) {
	c := compile(t, `
JavaClassDefinition = "public" ( "class" | "interface" ) [ "implements" WORD { "," WORD } ] .
WORD = "a" … "z" { "a" … "z" } .
`, "JavaClassDefinition")

	want := `JavaClassDefinition.is(and("public", or("class", "interface"), opt(and("implements", WORD, o2n(and(",", WORD))))))`
	if got := c.Start.Definition(); got != want {
		t.Errorf("Definition() = %s\nwant %s", got, want)
	}
}

func TestCompileRuleOrder(t *testing.T) {
	c := compile(t, javaGrammar, "JavaClassDefinition")
	var names []string
	for _, r := range c.Grammar.Rules() {
		names = append(names, r.Name())
	}
	want := []string{"JavaClassDefinition", "Body", "Member"}
	if !slices.Equal(names, want) {
		t.Errorf("rules = %v, want %v", names, want)
	}
	if undef := c.Grammar.Undefined(); len(undef) != 0 {
		t.Errorf("undefined rules: %v", undef)
	}
	if got := c.Grammar.Definitions(); !strings.Contains(got, `Body.is(and("{", o2n(Member), "}"))`) {
		t.Errorf("Definitions() = %s", got)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		start string
		want  string
	}{
		{"missing start", `A = "a" .`, "B", "no production B"},
		{"token start", `WORD = "a" .`, "WORD", "lexical production"},
		{"range in syntax", `A = "a" … "z" .`, "A", "character range"},
		{"lexical reference", "A = letter .\nletter = \"a\" .", "A", "refers to lexical production letter"},
		{"undefined reference", `A = B .`, "A", "missing production B"},
		{"unreachable rule", "A = \"a\" .\nB = \"b\" .", "A", "B is unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ebnflex.ParseGrammar("test.ebnf", strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("ParseGrammar(): %v", err)
			}
			_, err = Compile(g, tt.start)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCompileRejectsNonTerminatingRules(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		start string
		want  error
		msg   string
	}{
		{
			"direct left recursion",
			"Expr = Expr \"+\" NUM | NUM .\nNUM = \"0\" … \"9\" .",
			"Expr", ErrLeftRecursion, "left recursion: Expr -> Expr",
		},
		{
			"left recursion through a nullable prefix",
			"A = B \"x\" | \"y\" .\nB = [ \"z\" ] A .",
			"A", ErrLeftRecursion, "left recursion: A -> B -> A",
		},
		{
			"left recursion through a nullable rule",
			"A = Empty A \"x\" | \"y\" .\nEmpty = [ \"e\" ] .",
			"A", ErrLeftRecursion, "left recursion: A -> A",
		},
		{
			"optional repetition body",
			"A = \"a\" { [ \"b\" ] } .",
			"A", ErrNullableRepetition, "repetition body can match empty input in A",
		},
		{
			"nullable rule repeated",
			"A = \"a\" { B } .\nB = { \"b\" } .",
			"A", ErrNullableRepetition, "repetition body can match empty input in A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ebnflex.ParseGrammar("test.ebnf", strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("ParseGrammar(): %v", err)
			}
			_, err = Compile(g, tt.start)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Compile() error = %v, want %v", err, tt.want)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestCompileAcceptsGuardedRecursion(t *testing.T) {
	c := compile(t, "Expr = \"(\" Expr \")\" | NUM { \"+\" NUM } .\nNUM = \"0\" … \"9\" .", "Expr")
	toks, err := c.Tokenize(input.NewString("((1+2))"), "expr.txt")
	if err != nil {
		t.Fatalf("Tokenize(): %v", err)
	}
	node, err := c.Parser().Parse(toks)
	if err != nil {
		t.Fatalf("Parse(): %v", err)
	}
	if got, want := node.TokenValues(), []string{"(", "(", "1", "+", "2", ")", ")"}; !slices.Equal(got, want) {
		t.Errorf("TokenValues() = %v, want %v", got, want)
	}
}

func TestCompileStartError(t *testing.T) {
	g, err := ebnflex.ParseGrammar("test.ebnf", strings.NewReader(`A = "a" .`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Compile(g, "Missing"); !errors.Is(err, ErrStart) {
		t.Errorf("got %v, want ErrStart", err)
	}
}

func TestParsePublicClassFoo(t *testing.T) {
	c := compile(t, javaGrammar, "JavaClassDefinition")
	toks, err := c.Tokenize(input.NewString("public class Foo"), "Foo.java", "WS")
	if err != nil {
		t.Fatalf("Tokenize(): %v", err)
	}
	node, err := c.Parser().Parse(toks)
	if err != nil {
		t.Fatalf("Parse(): %v", err)
	}
	if got, want := node.TokenValues(), []string{"public", "class", "Foo"}; !slices.Equal(got, want) {
		t.Errorf("TokenValues() = %v, want %v", got, want)
	}
}

func TestParseWithPolicy(t *testing.T) {
	c := compile(t, javaGrammar, "JavaClassDefinition")
	body, _ := c.Grammar.Lookup("Body")
	member, _ := c.Grammar.Lookup("Member")
	if err := c.Apply(Policy{Skip: []string{"Body"}}); err != nil {
		t.Fatal(err)
	}

	src := "public class Foo implements Bar, Baz {\n  int x;\n  int y;\n}"
	toks, err := c.Tokenize(input.NewString(src), "Foo.java", "WS")
	if err != nil {
		t.Fatal(err)
	}
	node, err := c.Parser().Parse(toks)
	if err != nil {
		t.Fatalf("Parse(): %v", err)
	}
	if node.HasChildren(body) {
		t.Error("Body is skipped")
	}
	members := node.FindDirectChildren(member)
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2:\n%s", len(members), node.Dump())
	}
	if got := members[1].TokenValues(); !slices.Equal(got, []string{"int", "y", ";"}) {
		t.Errorf("second member = %v", got)
	}
	if members[1].TokenLine() != 3 {
		t.Errorf("second member on line %d, want 3", members[1].TokenLine())
	}
}

func TestParseReportsDeepestFailure(t *testing.T) {
	c := compile(t, javaGrammar, "JavaClassDefinition")
	toks, err := c.Tokenize(input.NewString("public class Foo {\n  int x\n}"), "Foo.java", "WS")
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Parser().Parse(toks)
	var re *parse.RecognitionError
	if !errors.As(err, &re) {
		t.Fatalf("expected a recognition error, got %v", err)
	}
	if want := `3:1: expected ";" but got "}" in Member`; re.Error() != want {
		t.Errorf("Error() = %q, want %q", re.Error(), want)
	}
}

func TestApplyUnknownRule(t *testing.T) {
	c := compile(t, javaGrammar, "JavaClassDefinition")
	if err := c.Apply(Policy{SkipIfOneChild: []string{"Nope"}}); err == nil {
		t.Error("expected an error for an unknown rule")
	}
	if err := c.Apply(Policy{Recover: []string{"Member"}}); err != nil {
		t.Fatal(err)
	}
	member, _ := c.Grammar.Lookup("Member")
	if member.State() != parse.RuleRecovering {
		t.Errorf("State() = %v, want recovering", member.State())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "java.ebnf")
	if err := os.WriteFile(path, []byte(javaGrammar), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path, "JavaClassDefinition")
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if c.Start.Name() != "JavaClassDefinition" {
		t.Errorf("Start = %s", c.Start.Name())
	}
}
