package shell

import (
	"fmt"
	"strconv"
	"strings"
)

// builtinFunc is the shape of a state-mutating built-in (spec §4.7):
// unlike registry.CommandFunc, it runs against the live Shell and may
// return any evalResult variant (break/continue/return included).
// Grounded on the teacher's core/shell_builtins.go ShellBuiltinFunc
// pattern, generalized from "int exit code" to the full evalResult set
// this shell's control-flow constructs need.
type builtinFunc func(s *Shell, args []string, io *ioCtx) evalResult

var shellBuiltins = map[string]builtinFunc{
	"cd":       biCd,
	"export":   biExport,
	"unset":    biUnset,
	"set":      biSet,
	":":        biColon,
	"true":     biTrue,
	"false":    biFalse,
	"test":     biTest,
	"[":        biBracket,
	"read":     biRead,
	"local":    biLocal,
	"break":    biBreak,
	"continue": biContinue,
	"return":   biReturn,
}

func biTrue(s *Shell, args []string, io *ioCtx) evalResult  { return normal(0) }
func biFalse(s *Shell, args []string, io *ioCtx) evalResult { return normal(1) }
func biColon(s *Shell, args []string, io *ioCtx) evalResult { return normal(0) }

// biCd implements "cd [dir]", grounded on core/shell_builtins.go's Cd:
// no argument defaults to $HOME, exactly two arguments change
// directory, more is an error.
func biCd(s *Shell, args []string, io *ioCtx) evalResult {
	switch len(args) {
	case 1:
		home, _ := s.Get("HOME")
		args = append(args, home)
		fallthrough
	case 2:
		target := s.fs.ResolvePath(s.cwd, args[1])
		info, err := s.fs.Stat(target)
		if err != nil {
			fmt.Fprintf(io.stderr, "cd: %s: %v\n", args[1], err)
			return normal(1)
		}
		if !info.IsDir {
			fmt.Fprintf(io.stderr, "cd: %s: Not a directory\n", args[1])
			return normal(1)
		}
		s.cwd = target
		s.setVar("PWD", target)
	default:
		fmt.Fprintf(io.stderr, "cd: too many arguments\n")
		return normal(1)
	}
	return normal(0)
}

// biExport implements "export [NAME[=VALUE]]...", marking each named
// variable's exported flag (spec §3).
func biExport(s *Shell, args []string, io *ioCtx) evalResult {
	for _, arg := range args[1:] {
		name, value, hasValue := strings.Cut(arg, "=")
		v, ok := s.vars[name]
		if !ok {
			v = &variable{}
			s.vars[name] = v
		}
		if hasValue {
			v.value = value
		}
		v.exported = true
	}
	return normal(0)
}

// biUnset implements "unset NAME...", clearing both the value and the
// exported flag (spec §3: "unsetting clears both flags").
func biUnset(s *Shell, args []string, io *ioCtx) evalResult {
	for _, name := range args[1:] {
		delete(s.vars, name)
	}
	return normal(0)
}

// biSet accepts and ignores every argument, so scripts that toggle
// shell options still run; no option changes behaviour (this module
// enforces its own execution budgets regardless of "set -e"
// semantics).
func biSet(s *Shell, args []string, io *ioCtx) evalResult {
	return normal(0)
}

func biBreak(s *Shell, args []string, io *ioCtx) evalResult {
	n := 1
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil && v > 0 {
			n = v
		}
	}
	return evalResult{kind: kindBreak, n: n}
}

func biContinue(s *Shell, args []string, io *ioCtx) evalResult {
	n := 1
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil && v > 0 {
			n = v
		}
	}
	return evalResult{kind: kindContinue, n: n}
}

func biReturn(s *Shell, args []string, io *ioCtx) evalResult {
	code := s.lastExitCode
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			code = v
		}
	}
	return evalResult{kind: kindReturn, code: code}
}

// biLocal implements "local name[=value]...": inside a function call
// it shadows the named variable for the remainder of the call,
// restoring the prior value (or absence) on return (spec §3.1
// supplement). Outside any function call it behaves like a plain
// assignment, since there is no frame to pop.
func biLocal(s *Shell, args []string, io *ioCtx) evalResult {
	for _, arg := range args[1:] {
		name, value, _ := strings.Cut(arg, "=")
		if len(s.localStack) > 0 {
			frame := s.localStack[len(s.localStack)-1]
			if _, recorded := frame.saved[name]; !recorded {
				if old, ok := s.vars[name]; ok {
					saved := *old
					frame.saved[name] = &saved
				} else {
					frame.saved[name] = nil
				}
			}
		}
		s.setVar(name, value)
	}
	return normal(0)
}

// biRead implements "read NAME...": consumes one line from the
// current stage's stdin and splits it across the named variables on
// IFS, the trailing variable absorbing any remainder.
func biRead(s *Shell, args []string, io *ioCtx) evalResult {
	names := args[1:]
	if len(names) == 0 {
		names = []string{"REPLY"}
	}

	line, rest, found := strings.Cut(io.stdin, "\n")
	io.stdin = rest
	if !found && line == "" {
		return normal(1)
	}

	ifs, ok := s.Get("IFS")
	if !ok {
		ifs = " \t\n"
	}
	fields := strings.FieldsFunc(line, func(r rune) bool { return strings.ContainsRune(ifs, r) })

	for i, name := range names {
		switch {
		case i == len(names)-1 && i < len(fields):
			s.setVar(name, strings.Join(fields[i:], " "))
		case i < len(fields):
			s.setVar(name, fields[i])
		default:
			s.setVar(name, "")
		}
	}
	return normal(0)
}

// biTest implements the POSIX "test"/"[" predicate subset: file
// existence/type checks, string comparison and emptiness, and integer
// comparison, plus "!" negation of a single primary.
func biTest(s *Shell, args []string, io *ioCtx) evalResult {
	return normal(evalTest(s, args[1:]))
}

func biBracket(s *Shell, args []string, io *ioCtx) evalResult {
	a := args[1:]
	if len(a) == 0 || a[len(a)-1] != "]" {
		fmt.Fprintln(io.stderr, "[: missing closing ']'")
		return normal(2)
	}
	return normal(evalTest(s, a[:len(a)-1]))
}

func evalTest(s *Shell, args []string) int {
	negate := false
	if len(args) > 0 && args[0] == "!" {
		negate = true
		args = args[1:]
	}

	code := runTest(s, args)
	if negate {
		if code == 0 {
			return 1
		}
		return 0
	}
	return code
}

func runTest(s *Shell, args []string) int {
	boolToCode := func(b bool) int {
		if b {
			return 0
		}
		return 1
	}

	switch len(args) {
	case 0:
		return 1

	case 1:
		return boolToCode(args[0] != "")

	case 2:
		switch args[0] {
		case "-z":
			return boolToCode(args[1] == "")
		case "-n":
			return boolToCode(args[1] != "")
		case "-e":
			_, err := s.fs.Stat(s.fs.ResolvePath(s.cwd, args[1]))
			return boolToCode(err == nil)
		case "-f":
			info, err := s.fs.Stat(s.fs.ResolvePath(s.cwd, args[1]))
			return boolToCode(err == nil && !info.IsDir)
		case "-d":
			info, err := s.fs.Stat(s.fs.ResolvePath(s.cwd, args[1]))
			return boolToCode(err == nil && info.IsDir)
		}
		return 1

	case 3:
		a, op, b := args[0], args[1], args[2]
		switch op {
		case "=", "==":
			return boolToCode(a == b)
		case "!=":
			return boolToCode(a != b)
		case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
			ai, aerr := strconv.Atoi(a)
			bi, berr := strconv.Atoi(b)
			if aerr != nil || berr != nil {
				return 2
			}
			switch op {
			case "-eq":
				return boolToCode(ai == bi)
			case "-ne":
				return boolToCode(ai != bi)
			case "-lt":
				return boolToCode(ai < bi)
			case "-le":
				return boolToCode(ai <= bi)
			case "-gt":
				return boolToCode(ai > bi)
			case "-ge":
				return boolToCode(ai >= bi)
			}
		}
		return 1

	default:
		return 1
	}
}
