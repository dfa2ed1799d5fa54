package registry

import (
	"testing"

	"github.com/defrex/just-bash/vfs"
	"github.com/stretchr/testify/assert"
)

func newCtx(files map[string]string) *CommandContext {
	return &CommandContext{
		FS:  vfs.NewMemFS(files),
		Cwd: "/",
		Env: map[string]string{},
	}
}

func TestEcho(t *testing.T) {
	res := Echo([]string{"echo", "hello", "world"}, newCtx(nil))
	assert.Equal(t, "hello world\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}

func TestEchoNoNewline(t *testing.T) {
	res := Echo([]string{"echo", "-n", "hi"}, newCtx(nil))
	assert.Equal(t, "hi", res.Stdout)
}

func TestEchoEscapes(t *testing.T) {
	res := Echo([]string{"echo", "-e", `a\tb`}, newCtx(nil))
	assert.Equal(t, "a\tb\n", res.Stdout)
}

func TestCatMissing(t *testing.T) {
	res := Cat([]string{"cat", "/nope.txt"}, newCtx(nil))
	assert.NotEqual(t, 0, res.ExitCode)
	assert.Contains(t, res.Stderr, "cat:")
}

func TestCatFile(t *testing.T) {
	res := Cat([]string{"cat", "/foo.txt"}, newCtx(map[string]string{"/foo.txt": "hello\n"}))
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}

func TestLsHidesDotfiles(t *testing.T) {
	ctx := newCtx(map[string]string{
		"/project/a.txt":  "",
		"/project/.git/x": "",
	})
	res := Ls([]string{"ls", "/project"}, ctx)
	assert.NotContains(t, res.Stdout, ".git")
	assert.Contains(t, res.Stdout, "a.txt")
}

func TestLsShowAll(t *testing.T) {
	ctx := newCtx(map[string]string{
		"/project/a.txt": "",
		"/project/.env":  "",
	})
	res := Ls([]string{"ls", "-a", "/project"}, ctx)
	assert.Contains(t, res.Stdout, ".env")
}

func TestWcCounts(t *testing.T) {
	ctx := newCtx(map[string]string{"/f.txt": "a b\nc\n"})
	res := Wc([]string{"wc", "/f.txt"}, ctx)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "/f.txt")
}

func TestHeadDefault(t *testing.T) {
	ctx := &CommandContext{FS: vfs.NewMemFS(nil), Cwd: "/", Stdin: "1\n2\n3\n"}
	res := Head([]string{"head"}, ctx)
	assert.Equal(t, "1\n2\n3\n", res.Stdout)
}

func TestHeadLimit(t *testing.T) {
	ctx := &CommandContext{FS: vfs.NewMemFS(nil), Cwd: "/", Stdin: "1\n2\n3\n4\n"}
	res := Head([]string{"head", "-n", "2"}, ctx)
	assert.Equal(t, "1\n2\n", res.Stdout)
}

func TestPrintf(t *testing.T) {
	res := Printf([]string{"printf", "%s is %d\\n", "x", "5"}, newCtx(nil))
	assert.Equal(t, "x is 5\n", res.Stdout)
}

func TestFindCommand(t *testing.T) {
	ctx := newCtx(map[string]string{
		"/project/README.md": "",
		"/project/src/a.ts":  "",
	})
	res := Find([]string{"find", "/project", "-name", "*.ts"}, ctx)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "/project/src/a.ts")
}

func TestFindCommandUnknownPredicate(t *testing.T) {
	ctx := newCtx(nil)
	res := Find([]string{"find", "/", "-bogus"}, ctx)
	assert.Equal(t, 1, res.ExitCode)
}

func TestRegistryLookup(t *testing.T) {
	r := New()
	fn, ok := r.Lookup("echo")
	assert.True(t, ok)
	assert.NotNil(t, fn)
	_, ok = r.Lookup("nonexistent")
	assert.False(t, ok)
}
