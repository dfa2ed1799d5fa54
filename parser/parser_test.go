package parser

import (
	"testing"

	"github.com/defrex/just-bash/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleCommand(t *testing.T) {
	node, err := Parse("echo hello")
	require.NoError(t, err)
	cmd, ok := node.(*ast.Command)
	require.True(t, ok)
	assert.Len(t, cmd.Words, 2)
}

func TestParsePipeline(t *testing.T) {
	node, err := Parse("echo hi | cat")
	require.NoError(t, err)
	pipe, ok := node.(*ast.Pipeline)
	require.True(t, ok)
	assert.Len(t, pipe.Stages, 2)
}

func TestParseAndOr(t *testing.T) {
	node, err := Parse("true && echo yes || echo no")
	require.NoError(t, err)
	list, ok := node.(*ast.List)
	require.True(t, ok)
	assert.Equal(t, "||", list.Op)
	inner, ok := list.Left.(*ast.List)
	require.True(t, ok)
	assert.Equal(t, "&&", inner.Op)
}

func TestParseIf(t *testing.T) {
	node, err := Parse("if true; then echo yes; else echo no; fi")
	require.NoError(t, err)
	ifNode, ok := node.(*ast.If)
	require.True(t, ok)
	assert.NotNil(t, ifNode.Else)
}

func TestParseWhile(t *testing.T) {
	node, err := Parse("while true; do echo x; done")
	require.NoError(t, err)
	w, ok := node.(*ast.While)
	require.True(t, ok)
	assert.False(t, w.UntilFlag)
}

func TestParseFor(t *testing.T) {
	node, err := Parse("for x in a b c; do echo $x; done")
	require.NoError(t, err)
	f, ok := node.(*ast.For)
	require.True(t, ok)
	assert.Equal(t, "x", f.Var)
	assert.Len(t, f.Words, 3)
}

func TestParseCase(t *testing.T) {
	node, err := Parse("case $x in a) echo A;; b|c) echo BC;; *) echo other;; esac")
	require.NoError(t, err)
	c, ok := node.(*ast.Case)
	require.True(t, ok)
	require.Len(t, c.Clauses, 3)
	assert.Len(t, c.Clauses[1].Patterns, 2)
}

func TestParseFunctionDef(t *testing.T) {
	node, err := Parse("greet() { echo hi; }")
	require.NoError(t, err)
	fn, ok := node.(*ast.FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "greet", fn.Name)
}

func TestParseSubshell(t *testing.T) {
	node, err := Parse("(echo hi)")
	require.NoError(t, err)
	_, ok := node.(*ast.Subshell)
	assert.True(t, ok)
}

func TestParseRedirection(t *testing.T) {
	node, err := Parse("cat > out.txt")
	require.NoError(t, err)
	cmd, ok := node.(*ast.Command)
	require.True(t, ok)
	require.Len(t, cmd.Redirects, 1)
	assert.Equal(t, ">", cmd.Redirects[0].Op)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("| echo hi")
	assert.Error(t, err)
}

func TestParseAssignmentOnly(t *testing.T) {
	node, err := Parse("FOO=bar")
	require.NoError(t, err)
	cmd, ok := node.(*ast.Command)
	require.True(t, ok)
	assert.Len(t, cmd.Assignments, 1)
	assert.Empty(t, cmd.Words)
}

func TestParseAssignmentAfterCommandWordIsArgument(t *testing.T) {
	node, err := Parse("echo FOO=bar")
	require.NoError(t, err)
	cmd, ok := node.(*ast.Command)
	require.True(t, ok)
	assert.Empty(t, cmd.Assignments)
	require.Len(t, cmd.Words, 2)
}
