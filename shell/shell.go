// Package shell implements the façade of spec §4.8: the public
// exec(line) -> ExecResult entry point, the evaluator that walks the
// parsed AST (§4.4), and the state-mutating built-ins (§4.7) that the
// registry cannot host because registry commands only ever see an
// immutable snapshot. Structurally grounded on the teacher's
// core/shell.go (the Shell struct owning persistent state across
// calls) and core/shell_builtins.go (the ShellBuiltin/AllBuiltins
// table), generalized from a readline REPL loop into a single
// re-entrant Exec method.
package shell

import (
	"strconv"
	"strings"

	"github.com/defrex/just-bash/ast"
	"github.com/defrex/just-bash/expand"
	"github.com/defrex/just-bash/parser"
	"github.com/defrex/just-bash/registry"
	"github.com/defrex/just-bash/vfs"
)

const (
	maxCommands       = 10000
	maxRecursionDepth = 100
	maxLoopIterations = 10000
)

// ExecResult is the result of a top-level Exec call (spec §6).
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Config seeds a new Shell (spec §6's façade constructor contract).
type Config struct {
	Files map[string]string // seeds an in-memory vfs.FileSystem via vfs.NewMemFS
	FS    vfs.FileSystem    // overrides Files when set
	Cwd   string
	Env   map[string]string
}

// variable is one shell variable's value plus its export flag (§3).
type variable struct {
	value    string
	exported bool
}

// budget holds the counters spec §4.4/§5 charge against a single
// top-level exec call. Subshells and command substitutions share their
// parent's budget pointer rather than getting a fresh one, so a script
// cannot bypass the caps by hiding runaway work inside "$(...)" or
// "(...)" — only a genuine top-level Exec call resets it.
type budget struct {
	commands  int
	recursion int
}

// Shell holds the persistent state of one façade instance (spec §3).
// Variables and functions persist across Exec calls; budget counters
// are reset at the start of each top-level call.
type Shell struct {
	fs        vfs.FileSystem
	cwd       string
	vars      map[string]*variable
	functions map[string]*ast.FunctionDef
	registry  *registry.Registry

	lastExitCode int
	positional   []string
	funcName     string

	budget      *budget
	inCondition bool
	localStack  []*localFrame

	stdout strings.Builder
	stderr strings.Builder
}

// localFrame remembers the pre-call value of every name a function
// invocation's "local" declarations shadowed, so it can be restored
// on return (spec §3.1 supplement).
type localFrame struct {
	saved map[string]*variable
}

// New constructs a Shell seeded per cfg (spec §6).
func New(cfg Config) *Shell {
	fs := cfg.FS
	if fs == nil {
		fs = vfs.NewMemFS(cfg.Files)
	}
	cwd := cfg.Cwd
	if cwd == "" {
		cwd = "/"
	}

	s := &Shell{
		fs:        fs,
		cwd:       cwd,
		vars:      make(map[string]*variable),
		functions: make(map[string]*ast.FunctionDef),
		registry:  registry.New(),
		budget:    &budget{},
	}

	for name, val := range cfg.Env {
		s.vars[name] = &variable{value: val, exported: true}
	}
	if _, ok := s.vars["HOME"]; !ok {
		s.vars["HOME"] = &variable{value: "/root", exported: true}
	}
	if _, ok := s.vars["PATH"]; !ok {
		s.vars["PATH"] = &variable{value: "/usr/local/bin:/usr/bin:/bin", exported: true}
	}
	if _, ok := s.vars["IFS"]; !ok {
		s.vars["IFS"] = &variable{value: " \t\n", exported: false}
	}
	return s
}

// Exec lexes, parses and evaluates line, returning the aggregated
// buffers (spec §4.8). Budget counters are reset on entry. A parse
// error short-circuits evaluation entirely, matching §4.8's contract.
func (s *Shell) Exec(line string) ExecResult {
	s.budget.commands = 0
	s.budget.recursion = 0
	s.stdout.Reset()
	s.stderr.Reset()

	node, err := parser.Parse(line)
	if err != nil {
		return ExecResult{Stderr: err.Error() + "\n", ExitCode: 2}
	}
	if node == nil {
		return ExecResult{ExitCode: s.lastExitCode}
	}

	io := &ioCtx{stdout: &s.stdout, stderr: &s.stderr}
	res := s.eval(node, io, 0)
	s.lastExitCode = res.code
	if res.kind == kindAbort {
		s.stderr.WriteString(res.reason + "\n")
		s.lastExitCode = 1
	}
	return ExecResult{Stdout: s.stdout.String(), Stderr: s.stderr.String(), ExitCode: s.lastExitCode}
}

// Get implements the expand.Env interface the expander consumes,
// resolving the special parameters ($?, $#, $@, $*, $0, $1...) as well
// as ordinary variables.
func (s *Shell) Get(name string) (string, bool) {
	switch name {
	case "?":
		return strconv.Itoa(s.lastExitCode), true
	case "#":
		return strconv.Itoa(len(s.positional)), true
	case "@", "*":
		return strings.Join(s.positional, " "), true
	case "0":
		if s.funcName != "" {
			return s.funcName, true
		}
		return "bash", true
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 1 {
		if n <= len(s.positional) {
			return s.positional[n-1], true
		}
		return "", false
	}
	v, ok := s.vars[name]
	if !ok {
		return "", false
	}
	return v.value, true
}

func (s *Shell) setVar(name, value string) {
	if v, ok := s.vars[name]; ok {
		v.value = value
		return
	}
	s.vars[name] = &variable{value: value}
}

func (s *Shell) expandContext() expand.Context {
	home, _ := s.Get("HOME")
	ifs, ok := s.Get("IFS")
	if !ok {
		ifs = " \t\n"
	}
	return expand.Context{
		Env:  s,
		FS:   s.fs,
		Cwd:  s.cwd,
		Home: home,
		IFS:  ifs,
		ExecSubst: func(script string) (string, int, error) {
			sub := s.cloneState()
			node, err := parser.Parse(script)
			if err != nil {
				return "", 2, err
			}
			if node == nil {
				return "", s.lastExitCode, nil
			}
			var out strings.Builder
			io := &ioCtx{stdout: &out, stderr: &out}
			res := sub.eval(node, io, 0)
			code := res.code
			if res.kind == kindAbort {
				out.WriteString(res.reason + "\n")
				code = 1
			}
			s.adoptSubExit(code)
			return out.String(), code, nil
		},
	}
}

func (s *Shell) adoptSubExit(code int) { s.lastExitCode = code }

// cloneState builds a state snapshot for a subshell or command
// substitution: variables and functions are copied by value, so
// mutations inside the clone never escape (spec §3/§4.4 "Subshell").
// The budget counters are shared via pointer, not copied, since spec
// §4.4/§5 charge them against the whole top-level exec call regardless
// of how deeply nested inside subshells or substitutions the work is.
func (s *Shell) cloneState() *Shell {
	clone := &Shell{
		fs:           s.fs,
		cwd:          s.cwd,
		vars:         make(map[string]*variable, len(s.vars)),
		functions:    make(map[string]*ast.FunctionDef, len(s.functions)),
		registry:     s.registry,
		lastExitCode: s.lastExitCode,
		positional:   append([]string(nil), s.positional...),
		funcName:     s.funcName,
		budget:       s.budget,
	}
	for k, v := range s.vars {
		clone.vars[k] = &variable{value: v.value, exported: v.exported}
	}
	for k, v := range s.functions {
		clone.functions[k] = v
	}
	return clone
}
