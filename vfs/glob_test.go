package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		pattern string
		name    string
		match   bool
	}{
		{"*.ts", "index.ts", true},
		{"*.ts", "index.tsx", false},
		{"README.md", "README.md", true},
		{"?oo", "foo", true},
		{"?oo", "fooo", false},
		{"[a-c]at", "bat", true},
		{"[a-c]at", "dat", false},
		{"[!a-c]at", "dat", true},
		{"*", "anything", true},
	}

	for _, tc := range cases {
		t.Run(tc.pattern+"/"+tc.name, func(t *testing.T) {
			assert.Equal(t, tc.match, MatchGlob(tc.pattern, tc.name, true))
		})
	}
}

func TestMatchGlobPathAnchored(t *testing.T) {
	assert.False(t, MatchGlob("*", "a/b", false), "unanchored * should not cross /")
	assert.True(t, MatchGlob("*", "a/b", true), "anchored * should cross /")
}
