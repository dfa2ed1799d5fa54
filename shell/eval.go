package shell

import (
	"fmt"
	"strings"

	"github.com/defrex/just-bash/ast"
	"github.com/defrex/just-bash/expand"
	"github.com/defrex/just-bash/parser"
	"github.com/defrex/just-bash/registry"
	"github.com/defrex/just-bash/vfs"
)

func expandAll(words []*ast.Word, ctx expand.Context) ([]string, error) {
	return expand.Words(words, ctx)
}

// resultKind tags the control-flow variant an eval call returns (spec
// §9: "Normal{code}, Break{n}, Continue{n}, Return{code}, Abort{reason}").
type resultKind int

const (
	kindNormal resultKind = iota
	kindBreak
	kindContinue
	kindReturn
	kindAbort
)

type evalResult struct {
	kind   resultKind
	code   int
	n      int    // remaining levels for Break/Continue
	reason string // diagnostic for Abort
}

func normal(code int) evalResult { return evalResult{kind: kindNormal, code: code} }

// propagates reports whether result must unwind past the current
// list/loop/if frame without running whatever would come next.
func (r evalResult) propagates() bool { return r.kind != kindNormal }

// ioCtx threads the current stage's stdin and the buffers its output
// is appended to. Pipelines give every stage but the last its own
// stdout buffer (spec §4.4 "Pipeline"), and each simple command
// collects its output in buffers of its own so that redirections can
// divert it before it reaches the caller's.
type ioCtx struct {
	stdin  string
	stdout *strings.Builder
	stderr *strings.Builder
}

func (s *Shell) eval(node ast.Node, io *ioCtx, depth int) evalResult {
	switch n := node.(type) {
	case *ast.Command:
		return s.evalCommand(n, io, depth)
	case *ast.Pipeline:
		return s.evalPipeline(n, io, depth)
	case *ast.List:
		return s.evalList(n, io, depth)
	case *ast.Subshell:
		return s.evalSubshell(n, io, depth)
	case *ast.Group:
		return s.eval(n.Body, io, depth)
	case *ast.If:
		return s.evalIf(n, io, depth)
	case *ast.While:
		return s.evalWhile(n, io, depth)
	case *ast.For:
		return s.evalFor(n, io, depth)
	case *ast.Case:
		return s.evalCase(n, io, depth)
	case *ast.FunctionDef:
		s.functions[n.Name] = n
		return normal(0)
	default:
		return evalResult{kind: kindAbort, reason: fmt.Sprintf("unhandled node %T", node)}
	}
}

// evalCondition evaluates the condition of an if/while/until without
// charging it against commandCount, so a tight `while true; do …;
// done` budget-aborts via loopIterations rather than commandCount
// (see DESIGN.md's resolution of spec §4.4's counting rule for
// condition checks).
func (s *Shell) evalCondition(node ast.Node, io *ioCtx, depth int) evalResult {
	prev := s.inCondition
	s.inCondition = true
	res := s.eval(node, io, depth)
	s.inCondition = prev
	return res
}

func (s *Shell) evalList(n *ast.List, io *ioCtx, depth int) evalResult {
	left := s.eval(n.Left, io, depth)
	if left.propagates() {
		return left
	}
	if n.Right == nil {
		return left
	}
	switch n.Op {
	case ";":
		return s.eval(n.Right, io, depth)
	case "&&":
		if left.code == 0 {
			return s.eval(n.Right, io, depth)
		}
		return left
	case "||":
		if left.code != 0 {
			return s.eval(n.Right, io, depth)
		}
		return left
	default:
		return left
	}
}

func (s *Shell) evalPipeline(n *ast.Pipeline, io *ioCtx, depth int) evalResult {
	stdin := io.stdin
	var last evalResult
	for i, stage := range n.Stages {
		var out *strings.Builder
		if i == len(n.Stages)-1 {
			out = io.stdout
		} else {
			out = &strings.Builder{}
		}
		stageIO := &ioCtx{stdin: stdin, stdout: out, stderr: io.stderr}
		last = s.eval(stage, stageIO, depth)
		if last.propagates() {
			return last
		}
		if i < len(n.Stages)-1 {
			stdin = out.String()
		}
	}
	if n.Negate {
		code := 1
		if last.code != 0 {
			code = 0
		}
		return normal(code)
	}
	return last
}

func (s *Shell) evalSubshell(n *ast.Subshell, io *ioCtx, depth int) evalResult {
	clone := s.cloneState()
	res := clone.eval(n.Body, io, depth)
	s.lastExitCode = res.code
	if res.kind == kindAbort {
		return res
	}
	return normal(res.code)
}

func (s *Shell) evalIf(n *ast.If, io *ioCtx, depth int) evalResult {
	cond := s.evalCondition(n.Cond, io, depth)
	if cond.propagates() {
		return cond
	}
	if cond.code == 0 {
		return s.eval(n.Then, io, depth)
	}
	for _, elif := range n.Elifs {
		c := s.evalCondition(elif.Cond, io, depth)
		if c.propagates() {
			return c
		}
		if c.code == 0 {
			return s.eval(elif.Body, io, depth)
		}
	}
	if n.Else != nil {
		return s.eval(n.Else, io, depth)
	}
	return normal(0)
}

func (s *Shell) evalWhile(n *ast.While, io *ioCtx, depth int) evalResult {
	iterations := 0
	code := 0
	for {
		cond := s.evalCondition(n.Cond, io, depth)
		if cond.propagates() {
			return cond
		}
		truth := cond.code == 0
		if n.UntilFlag {
			truth = !truth
		}
		if !truth {
			break
		}

		iterations++
		if iterations > maxLoopIterations {
			return evalResult{kind: kindAbort, reason: "too many iterations"}
		}

		res := s.eval(n.Body, io, depth)
		switch res.kind {
		case kindBreak:
			if res.n > 1 {
				res.n--
				return res
			}
			return normal(code)
		case kindContinue:
			if res.n > 1 {
				res.n--
				return res
			}
			continue
		case kindReturn, kindAbort:
			return res
		}
		code = res.code
	}
	return normal(code)
}

func (s *Shell) evalFor(n *ast.For, io *ioCtx, depth int) evalResult {
	words, err := s.expandWords(n.Words)
	if err != nil {
		return evalResult{kind: kindAbort, reason: err.Error()}
	}

	iterations := len(words)
	if iterations > maxLoopIterations {
		return evalResult{kind: kindAbort, reason: "too many iterations"}
	}

	code := 0
	for _, w := range words {
		s.setVar(n.Var, w)

		iterations++
		if iterations > maxLoopIterations {
			return evalResult{kind: kindAbort, reason: "too many iterations"}
		}

		res := s.eval(n.Body, io, depth)
		switch res.kind {
		case kindBreak:
			if res.n > 1 {
				res.n--
				return res
			}
			return normal(code)
		case kindContinue:
			if res.n > 1 {
				res.n--
				return res
			}
			continue
		case kindReturn, kindAbort:
			return res
		}
		code = res.code
	}
	return normal(code)
}

func (s *Shell) evalCase(n *ast.Case, io *ioCtx, depth int) evalResult {
	subjects, err := s.expandWords([]*ast.Word{n.Subject})
	if err != nil {
		return evalResult{kind: kindAbort, reason: err.Error()}
	}
	subject := strings.Join(subjects, " ")

	for _, clause := range n.Clauses {
		for _, patWord := range clause.Patterns {
			pats, err := s.expandWords([]*ast.Word{patWord})
			if err != nil {
				continue
			}
			for _, pat := range pats {
				if vfs.MatchGlob(pat, subject, true) {
					if clause.Body == nil {
						return normal(0)
					}
					return s.eval(clause.Body, io, depth)
				}
			}
		}
	}
	return normal(0)
}

func (s *Shell) expandWords(words []*ast.Word) ([]string, error) {
	ctx := s.expandContext()
	return expandAll(words, ctx)
}

// evalCommand expands and dispatches one simple command (spec §4.4).
// Assignment-only commands take effect on the current state;
// otherwise assignments are scoped to this invocation only.
func (s *Shell) evalCommand(cmd *ast.Command, io *ioCtx, depth int) evalResult {
	if !s.inCondition {
		s.budget.commands++
		if s.budget.commands > maxCommands {
			return evalResult{kind: kindAbort, reason: "too many commands"}
		}
	}

	ctx := s.expandContext()

	if len(cmd.Words) == 0 {
		for _, a := range cmd.Assignments {
			val, err := s.expandAssignmentValue(a, ctx)
			if err != nil {
				return evalResult{kind: kindAbort, reason: err.Error()}
			}
			s.setVar(a.Name, val)
		}
		return normal(0)
	}

	var restore []func()
	for _, a := range cmd.Assignments {
		val, err := s.expandAssignmentValue(a, ctx)
		if err != nil {
			return evalResult{kind: kindAbort, reason: err.Error()}
		}
		old, existed := s.vars[a.Name]
		s.vars[a.Name] = &variable{value: val, exported: existed && old.exported}
		name := a.Name
		if existed {
			prior := *old
			restore = append(restore, func() { s.vars[name] = &prior })
		} else {
			restore = append(restore, func() { delete(s.vars, name) })
		}
	}
	defer func() {
		for _, r := range restore {
			r()
		}
	}()

	words, err := expandAll(cmd.Words, ctx)
	if err != nil {
		return evalResult{kind: kindAbort, reason: err.Error()}
	}
	if len(words) == 0 {
		return normal(0)
	}

	stageIO := &ioCtx{stdin: io.stdin, stdout: &strings.Builder{}, stderr: &strings.Builder{}}
	if res, handled := s.applyRedirects(cmd.Redirects, stageIO, ctx); handled {
		io.stdout.WriteString(stageIO.stdout.String())
		io.stderr.WriteString(stageIO.stderr.String())
		return res
	}

	result := s.dispatch(words, stageIO, depth)
	s.lastExitCode = result.code

	s.flushRedirected(cmd.Redirects, stageIO, io)
	return result
}

func (s *Shell) expandAssignmentValue(a ast.Assignment, ctx expand.Context) (string, error) {
	if a.Value == nil {
		return "", nil
	}
	fs, err := expand.Word(a.Value, ctx)
	if err != nil {
		return "", err
	}
	return strings.Join(fs, " "), nil
}

// dispatch resolves name in lookup order function -> builtin ->
// registry -> PATH search (spec §4.4).
func (s *Shell) dispatch(words []string, io *ioCtx, depth int) evalResult {
	name := words[0]
	args := words

	if fn, ok := s.functions[name]; ok {
		return s.callFunction(fn, args, io, depth)
	}
	if b, ok := shellBuiltins[name]; ok {
		return b(s, args, io)
	}
	if cmd, ok := s.registry.Lookup(name); ok {
		return s.runRegistryCommand(cmd, args, io)
	}
	if scriptPath, content, ok := s.lookPathScript(name); ok {
		return s.runScript(scriptPath, content, args, io, depth)
	}
	fmt.Fprintf(io.stderr, "%s: command not found\n", name)
	return normal(127)
}

func (s *Shell) runRegistryCommand(cmd registry.CommandFunc, args []string, io *ioCtx) evalResult {
	env := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		if v.exported {
			env[k] = v.value
		}
	}
	ctx := &registry.CommandContext{
		FS:    s.fs,
		Cwd:   s.cwd,
		Env:   env,
		Stdin: io.stdin,
		Exec: func(subArgs []string) registry.ExecResult {
			subIO := &ioCtx{stdout: &strings.Builder{}, stderr: &strings.Builder{}}
			r := s.dispatch(subArgs, subIO, 0)
			res := registry.ExecResult{Stdout: subIO.stdout.String(), Stderr: subIO.stderr.String(), ExitCode: r.code}
			return res
		},
	}
	res := cmd(args, ctx)
	io.stdout.WriteString(res.Stdout)
	io.stderr.WriteString(res.Stderr)
	return normal(res.ExitCode)
}

// callFunction invokes fn with args as its positional parameters,
// tracking recursion depth (spec §4.4 "Functions").
func (s *Shell) callFunction(fn *ast.FunctionDef, args []string, io *ioCtx, depth int) evalResult {
	s.budget.recursion++
	if s.budget.recursion > maxRecursionDepth {
		s.budget.recursion--
		return evalResult{kind: kindAbort, reason: fmt.Sprintf("%s: maximum recursion depth exceeded", fn.Name)}
	}

	savedPositional := s.positional
	savedFuncName := s.funcName
	s.positional = args[1:]
	s.funcName = fn.Name
	s.localStack = append(s.localStack, &localFrame{saved: map[string]*variable{}})

	res := s.eval(fn.Body, io, depth+1)

	frame := s.localStack[len(s.localStack)-1]
	s.localStack = s.localStack[:len(s.localStack)-1]
	for name, old := range frame.saved {
		if old == nil {
			delete(s.vars, name)
		} else {
			s.vars[name] = old
		}
	}

	s.positional = savedPositional
	s.funcName = savedFuncName
	s.budget.recursion--

	if res.kind == kindReturn {
		return normal(res.code)
	}
	if res.kind == kindAbort {
		return res
	}
	return normal(res.code)
}

// lookPathScript searches PATH for a file named name, mirroring the
// teacher's core/exec.go LookPath. A match is read and executed as a
// nested script, since the virtual filesystem has no native
// executable format.
func (s *Shell) lookPathScript(name string) (path string, content string, ok bool) {
	if strings.Contains(name, "/") {
		abs := s.fs.ResolvePath(s.cwd, name)
		if data, err := s.fs.Read(abs); err == nil {
			return abs, data, true
		}
		return "", "", false
	}
	pathVar, _ := s.Get("PATH")
	for _, dir := range strings.Split(pathVar, ":") {
		if dir == "" {
			dir = "."
		}
		candidate := s.fs.ResolvePath(s.cwd, dir+"/"+name)
		if data, err := s.fs.Read(candidate); err == nil {
			return candidate, data, true
		}
	}
	return "", "", false
}

func (s *Shell) runScript(path, content string, args []string, io *ioCtx, depth int) evalResult {
	node, err := parser.Parse(content)
	if err != nil {
		fmt.Fprintf(io.stderr, "%s: %s\n", path, err.Error())
		return normal(2)
	}
	if node == nil {
		return normal(0)
	}

	s.budget.recursion++
	if s.budget.recursion > maxRecursionDepth {
		s.budget.recursion--
		return evalResult{kind: kindAbort, reason: fmt.Sprintf("%s: maximum recursion depth exceeded", path)}
	}
	savedPositional := s.positional
	savedFuncName := s.funcName
	s.positional = args[1:]
	s.funcName = path

	res := s.eval(node, io, depth+1)

	s.positional = savedPositional
	s.funcName = savedFuncName
	s.budget.recursion--

	if res.kind == kindAbort {
		return res
	}
	return normal(res.code)
}
