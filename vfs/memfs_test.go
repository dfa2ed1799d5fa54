package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemFSReadWrite(t *testing.T) {
	fs := NewMemFS(map[string]string{
		"/project/README.md": "hello\n",
	})

	data, err := fs.Read("/project/README.md")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", data)

	require.NoError(t, fs.Write("/project/new.txt", "world"))
	data, err = fs.Read("/project/new.txt")
	require.NoError(t, err)
	assert.Equal(t, "world", data)

	names, err := fs.List("/project")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestMemFSResolvePath(t *testing.T) {
	fs := NewMemFS(nil)
	cases := map[[2]string]string{
		{"/a/b", "c"}:    "/a/b/c",
		{"/a/b", "/c"}:   "/c",
		{"/a/b", "../c"}: "/a/c",
		{"/a/b", "."}:    "/a/b",
		{"/", ""}:        "/",
	}
	for in, want := range cases {
		assert.Equal(t, want, fs.ResolvePath(in[0], in[1]))
	}
}

func TestMemFSStatDir(t *testing.T) {
	fs := NewMemFS(map[string]string{
		"/project/src/main.go": "package main\n",
	})
	info, err := fs.Stat("/project/src")
	require.NoError(t, err)
	assert.True(t, info.IsDir)
}
