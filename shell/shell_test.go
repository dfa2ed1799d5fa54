package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoRoundTrip(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`echo "$X"; X=1; echo "$X"`)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "\n1\n", res.Stdout)
}

func TestSubshellVariableIsolation(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`export A=1; (A=2); echo $A`)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "1\n", res.Stdout)
}

func TestIdenticalScriptTwiceOnFreshShells(t *testing.T) {
	script := `for i in 1 2 3; do echo $i; done`
	a := New(Config{}).Exec(script)
	b := New(Config{}).Exec(script)
	assert.Equal(t, a, b)
}

func TestPipeline(t *testing.T) {
	s := New(Config{Files: map[string]string{"/f.txt": "b\na\nc\n"}})
	res := s.Exec(`cat /f.txt | wc -l`)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "3")
}

func TestLogicalAndOr(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`true && echo yes || echo no`)
	assert.Equal(t, "yes\n", res.Stdout)

	res = s.Exec(`false && echo yes || echo no`)
	assert.Equal(t, "no\n", res.Stdout)
}

func TestIfElifElse(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`x=2; if [ $x -eq 1 ]; then echo one; elif [ $x -eq 2 ]; then echo two; else echo other; fi`)
	assert.Equal(t, "two\n", res.Stdout)
}

func TestWhileLoop(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`i=0; while [ "$i" != "done" ]; do echo $i; i=done; done`)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "0\n", res.Stdout)
}

func TestArithmeticExpansion(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`i=0; i=$((i+1)); i=$((i+1)); echo $i`)
	assert.Equal(t, "2\n", res.Stdout)
}

func TestForLoop(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`for x in a b c; do echo $x; done`)
	assert.Equal(t, "a\nb\nc\n", res.Stdout)
}

func TestCaseStatement(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`x=foo.txt; case $x in *.txt) echo text;; *.md) echo markdown;; esac`)
	assert.Equal(t, "text\n", res.Stdout)
}

func TestBreakContinueLevels(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`for i in 1 2 3; do for j in a b c; do if [ "$j" = "b" ]; then break 2; fi; echo $i-$j; done; done`)
	assert.Equal(t, "1-a\n", res.Stdout)
}

func TestFunctionRecursionDepthAbort(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`recurse() { recurse; }; recurse`)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Stderr, "maximum recursion depth exceeded")
}

func TestWhileTrueTooManyIterations(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`while true; do echo x; done`)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Stderr, "too many iterations")
}

func TestFunctionReturnValue(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`f() { return 7; }; f; echo $?`)
	assert.Equal(t, "7\n", res.Stdout)
}

func TestLocalScoping(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`x=outer; f() { local x=inner; echo $x; }; f; echo $x`)
	assert.Equal(t, "inner\nouter\n", res.Stdout)
}

func TestRedirectOutput(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`echo hi > /out.txt; cat /out.txt`)
	assert.Equal(t, "hi\n", res.Stdout)
}

func TestRedirectAppend(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`echo a > /out.txt; echo b >> /out.txt; cat /out.txt`)
	assert.Equal(t, "a\nb\n", res.Stdout)
}

func TestRedirectStderr(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`cat /missing.txt 2> /err.txt; cat /err.txt`)
	assert.Contains(t, res.Stdout, "cat:")
}

func TestHereString(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`cat <<< "hello there"`)
	assert.Equal(t, "hello there\n", res.Stdout)
}

func TestCommandSubstitution(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`echo "result: $(echo inner)"`)
	assert.Equal(t, "result: inner\n", res.Stdout)
}

func TestCommandSubstitutionSharesBudget(t *testing.T) {
	s := New(Config{})
	res := s.Exec("x=$(echo a); y=$(echo b); echo $x$y")
	require.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "ab\n", res.Stdout)
}

func TestAssignmentWordAsPlainArgument(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`echo A=1`)
	assert.Equal(t, "A=1\n", res.Stdout)
	_, ok := s.Get("A")
	assert.False(t, ok)
}

func TestLeadingAssignmentIsTemporary(t *testing.T) {
	s := New(Config{})
	s.Exec(`FOO=bar true`)
	// FOO must not leak into shell state after a command-prefixed assignment.
	_, ok := s.Get("FOO")
	assert.False(t, ok)
}

func TestExportPersistsAcrossCalls(t *testing.T) {
	s := New(Config{})
	s.Exec(`export GREETING=hi`)
	res := s.Exec(`echo $GREETING`)
	assert.Equal(t, "hi\n", res.Stdout)
}

func TestUnsetClearsVariable(t *testing.T) {
	s := New(Config{})
	s.Exec(`X=1`)
	s.Exec(`unset X`)
	res := s.Exec(`echo "[$X]"`)
	assert.Equal(t, "[]\n", res.Stdout)
}

func TestCdChangesDirectory(t *testing.T) {
	s := New(Config{Files: map[string]string{"/dir/f.txt": "hi\n"}})
	res := s.Exec(`cd /dir && cat f.txt`)
	assert.Equal(t, "hi\n", res.Stdout)
}

func TestTestBuiltin(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`[ 1 -eq 1 ] && echo eq`)
	assert.Equal(t, "eq\n", res.Stdout)
}

func TestReadBuiltin(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`echo "a b c" | { read x y z; echo "$z-$y-$x"; }`)
	assert.Equal(t, "c-b-a\n", res.Stdout)
}

func TestParseErrorShortCircuits(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`if [ 1 -eq 1 ]; then echo hi`)
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "", res.Stdout)
	assert.NotEmpty(t, res.Stderr)
}

func TestCommandNotFound(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`this_does_not_exist`)
	assert.Equal(t, 127, res.ExitCode)
	assert.Contains(t, res.Stderr, "command not found")
}

func TestPathScriptExecution(t *testing.T) {
	s := New(Config{Files: map[string]string{"/usr/local/bin/greet": "echo hello $1\n"}})
	res := s.Exec(`greet world`)
	assert.Equal(t, "hello world\n", res.Stdout)
}

func TestHeredocPreservesNewlinesAndIndentation(t *testing.T) {
	s := New(Config{})
	res := s.Exec("cat <<EOF\nline1\n  line2\nline3\nEOF\n")
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "line1\n  line2\nline3\n", res.Stdout)
}

func TestHeredocDashStripsLeadingTabs(t *testing.T) {
	s := New(Config{})
	res := s.Exec("cat <<-EOF\n\tline1\n\t\tline2\nEOF\n")
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "line1\n\tline2\n", res.Stdout)
}

func TestHereStringStillWordSplitsAndJoins(t *testing.T) {
	s := New(Config{})
	res := s.Exec(`X="one   two"; cat <<< $X`)
	assert.Equal(t, "one two\n", res.Stdout)
}
