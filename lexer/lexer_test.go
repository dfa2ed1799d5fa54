package lexer

import (
	"testing"

	"github.com/defrex/just-bash/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func literalWord(t *testing.T, tok Token) string {
	t.Helper()
	require.NotNil(t, tok.Word, "token %v has no word", tok)
	var s string
	for _, p := range tok.Word.Parts {
		if lit, ok := p.(ast.Literal); ok {
			s += lit.Value
		}
	}
	return s
}

func TestLexSimpleCommand(t *testing.T) {
	toks, err := Lex("echo hello world")
	require.NoError(t, err)
	require.Len(t, toks, 4) // echo, hello, world, EOF
	assert.Equal(t, "echo", literalWord(t, toks[0]))
	assert.Equal(t, EOF, toks[3].Type)
}

func TestLexOperators(t *testing.T) {
	toks, err := Lex("a && b || c | d ; e")
	require.NoError(t, err)
	var ops []string
	for _, tok := range toks {
		if tok.Type == OPERATOR {
			ops = append(ops, tok.Op)
		}
	}
	assert.Equal(t, []string{"&&", "||", "|", ";"}, ops)
}

func TestLexSingleQuote(t *testing.T) {
	toks, err := Lex(`echo 'a $b c'`)
	require.NoError(t, err)
	assert.Equal(t, "a $b c", literalWord(t, toks[1]))
}

func TestLexUnterminatedQuote(t *testing.T) {
	_, err := Lex(`echo 'unterminated`)
	assert.Error(t, err)
}

func TestLexAssignment(t *testing.T) {
	toks, err := Lex("FOO=bar echo hi")
	require.NoError(t, err)
	assert.Equal(t, ASSIGNMENT_WORD, toks[0].Type)
	assert.Equal(t, "FOO", toks[0].Name)
}

func TestLexEscapedParens(t *testing.T) {
	toks, err := Lex(`find . \( -name a -o -name b \)`)
	require.NoError(t, err)
	var words []string
	for _, tok := range toks {
		if tok.Type == WORD {
			words = append(words, literalWord(t, tok))
		}
	}
	assert.Equal(t, []string{"find", ".", "(", "-name", "a", "-o", "-name", "b", ")"}, words)
}

func TestLexDollarParam(t *testing.T) {
	toks, err := Lex(`echo "$X"`)
	require.NoError(t, err)
	w := toks[1].Word
	require.Len(t, w.Parts, 1)
	pe, ok := w.Parts[0].(ast.ParamExpansion)
	require.True(t, ok)
	assert.Equal(t, "X", pe.Name)
}

func TestLexIONumber(t *testing.T) {
	toks, err := Lex("cmd 2>/dev/null")
	require.NoError(t, err)
	foundIO := false
	for _, tok := range toks {
		if tok.Type == IO_NUMBER && tok.Number == 2 {
			foundIO = true
		}
	}
	assert.True(t, foundIO, "no IO_NUMBER token found: %+v", toks)
}
