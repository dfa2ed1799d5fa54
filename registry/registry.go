// Package registry implements the command registry of spec §4.7: a
// name -> implementation map plus the concrete non-mutating utilities
// ("echo", "cat", "ls", "wc", "printf", "head") and the in-scope "find"
// command body. Registry entries receive an immutable CommandContext
// snapshot and cannot mutate shell state — state-mutating built-ins
// (cd, export, unset, set, ":") live in the shell package instead
// (§4.7). Structurally grounded on the teacher's commands package
// (AllCommands map, SimpleCommand, BytesToHuman) adapted from
// *os.File-based I/O to vfs.FileSystem-based I/O.
package registry

import (
	"github.com/defrex/just-bash/vfs"
)

// ExecResult is the result of running a registry command (spec §6).
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandContext is the immutable snapshot registry commands receive
// (spec §4.7, §6). Exec lets a command invoke a sub-command under the
// current state (e.g. find's -exec). The shell sets it for every
// command it runs; a context built without it leaves it nil.
type CommandContext struct {
	FS    vfs.FileSystem
	Cwd   string
	Env   map[string]string
	Stdin string
	Exec  func(args []string) ExecResult
}

func (c *CommandContext) Getenv(name string) string {
	if c.Env == nil {
		return ""
	}
	return c.Env[name]
}

// CommandFunc is the shape every registry entry implements (spec §6's
// "execute(args, ctx) -> {stdout, stderr, exitCode}").
type CommandFunc func(args []string, ctx *CommandContext) ExecResult

// Registry maps command names to implementations.
type Registry struct {
	commands map[string]CommandFunc
}

// New builds a Registry pre-populated with this module's default
// utility set (spec §4.9).
func New() *Registry {
	r := &Registry{commands: make(map[string]CommandFunc)}
	r.Register("echo", Echo)
	r.Register("cat", Cat)
	r.Register("ls", Ls)
	r.Register("wc", Wc)
	r.Register("printf", Printf)
	r.Register("head", Head)
	r.Register("find", Find)
	return r
}

func (r *Registry) Register(name string, fn CommandFunc) {
	r.commands[name] = fn
}

// Lookup returns the command registered under name, if any.
func (r *Registry) Lookup(name string) (CommandFunc, bool) {
	fn, ok := r.commands[name]
	return fn, ok
}

// Names returns every registered command name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	return names
}
