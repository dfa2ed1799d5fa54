package find

import (
	"bytes"
	"strings"
	"testing"

	"github.com/defrex/just-bash/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() vfs.FileSystem {
	return vfs.NewMemFS(map[string]string{
		"/project/README.md":     "readme",
		"/project/package.json":  "{}",
		"/project/tsconfig.json": "{}",
		"/project/src/a.ts":      "a",
		"/project/src/b.ts":      "b",
		"/project/tests/c.ts":    "c",
		"/project/tests/d.ts":    "d",
	})
}

func run(t *testing.T, fs vfs.FileSystem, paths []string, exprArgs []string, execFn ExecFunc) (string, string, int) {
	t.Helper()
	expr, maxDepth, hasAction, err := Parse(exprArgs)
	require.NoError(t, err)
	var stdout, stderr bytes.Buffer
	w := &Walker{FS: fs, Stdout: &stdout, Stderr: &stderr, Exec: execFn, NoImplicitPrint: hasAction}
	code := w.Run(paths, expr, maxDepth)
	return stdout.String(), stderr.String(), code
}

func TestFindNoPredicates(t *testing.T) {
	out, _, code := run(t, testFS(), []string{"/project/src"}, nil, nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"/project/src", "/project/src/a.ts", "/project/src/b.ts"}, lines)
}

func TestFindNameType(t *testing.T) {
	out, _, code := run(t, testFS(), []string{"/project"}, []string{"-name", "*.ts", "-type", "f"}, nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, 0, code)
	assert.Len(t, lines, 4)
}

func TestFindOr(t *testing.T) {
	out, _, _ := run(t, testFS(), []string{"/project"}, []string{"-name", "*.md", "-o", "-name", "*.json"}, nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := map[string]bool{"/project/README.md": true, "/project/package.json": true, "/project/tsconfig.json": true}
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.True(t, want[l], "unexpected match %q", l)
	}
}

func TestFindMissingPath(t *testing.T) {
	out, errOut, code := run(t, testFS(), []string{"/nonexistent"}, nil, nil)
	assert.Empty(t, out)
	assert.Equal(t, "find: /nonexistent: No such file or directory\n", errOut)
	assert.Equal(t, 1, code)
}

func TestFindExec(t *testing.T) {
	var invoked [][]string
	execFn := func(args []string) (string, int) {
		invoked = append(invoked, args)
		return "", 0
	}
	_, _, code := run(t, testFS(), []string{"/project"}, []string{
		"-type", "f", "(", "-name", "*.md", "-o", "-name", "*.json", ")", "-exec", "cat", "{}", ";",
	}, execFn)
	assert.Equal(t, 0, code)
	assert.Len(t, invoked, 3)
}

// TestFindExecSuppressesImplicitPrint pins spec §8 scenario 4: an
// expression naming "-exec" must not also auto-print the matched path,
// so stdout is exactly the concatenation of the executed commands'
// output, not each match's path plus that output.
func TestFindExecSuppressesImplicitPrint(t *testing.T) {
	fs := testFS()
	execFn := func(args []string) (string, int) {
		data, err := fs.Read(args[len(args)-1])
		if err != nil {
			return "", 1
		}
		return data, 0
	}
	out, _, code := run(t, fs, []string{"/project"}, []string{
		"-type", "f", "(", "-name", "*.md", "-o", "-name", "*.json", ")", "-exec", "cat", "{}", ";",
	}, execFn)
	assert.Equal(t, 0, code)
	assert.NotContains(t, out, "/project/")
	assert.Equal(t, "readme{}{}", out)
}

func TestFindUnknownPredicate(t *testing.T) {
	_, _, _, err := Parse([]string{"-bogus"})
	assert.Error(t, err)
}

func TestFindUnknownType(t *testing.T) {
	_, _, _, err := Parse([]string{"-type", "x"})
	assert.Error(t, err)
}

func TestFindMaxDepth(t *testing.T) {
	out, _, _ := run(t, testFS(), []string{"/project"}, []string{"-maxdepth", "0"}, nil)
	assert.Equal(t, "/project", strings.TrimRight(out, "\n"))
}

func TestFindNot(t *testing.T) {
	out, _, _ := run(t, testFS(), []string{"/project/src"}, []string{"!", "-name", "a.ts"}, nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	for _, l := range lines {
		assert.False(t, strings.HasSuffix(l, "a.ts"), "should not match a.ts: %v", lines)
	}
}
