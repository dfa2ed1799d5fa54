package find

import (
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/defrex/just-bash/vfs"
)

// ExecFunc invokes a command (the "{}" substitution in args happens
// before this is called) and returns its stdout and exit code,
// mirroring spec §4.5's -exec predicate.
type ExecFunc func(args []string) (stdout string, exitCode int)

// Walker performs the pre-order DFS traversal of spec §4.5/§4.6 and
// evaluates expr at each visited node.
type Walker struct {
	FS     vfs.FileSystem
	Exec   ExecFunc
	Stdout io.Writer
	Stderr io.Writer

	// NoImplicitPrint suppresses the auto-print of a matched path,
	// mirroring POSIX find: the implicit "-print" only applies when the
	// expression has no action predicate of its own (e.g. "-exec").
	NoImplicitPrint bool
}

// Run walks each root in paths, in order, emitting matches to Stdout.
// It returns the aggregate exit code: 1 if any root was missing, 0
// otherwise (predicate errors are reported by the caller before Run is
// invoked — see registry/find.go).
func (w *Walker) Run(paths []string, expr Expr, maxDepth int) int {
	exitCode := 0
	for _, root := range paths {
		if _, err := w.FS.Stat(root); err != nil {
			fmt.Fprintf(w.Stderr, "find: %s: No such file or directory\n", root)
			exitCode = 1
			continue
		}
		w.walk(root, 0, expr, maxDepth)
	}
	return exitCode
}

func (w *Walker) walk(p string, depth int, expr Expr, maxDepth int) {
	ok, _ := w.eval(expr, p, depth)
	if ok && !w.NoImplicitPrint {
		fmt.Fprintln(w.Stdout, p)
	}

	info, err := w.FS.Stat(p)
	if err != nil || !info.IsDir {
		return
	}
	if maxDepth >= 0 && depth >= maxDepth {
		return
	}

	names, err := w.FS.List(p)
	if err != nil {
		return
	}
	sort.Strings(names)
	for _, name := range names {
		w.walk(path.Join(p, name), depth+1, expr, maxDepth)
	}
}

func (w *Walker) eval(expr Expr, p string, depth int) (bool, error) {
	switch e := expr.(type) {
	case True:
		return true, nil

	case And:
		left, err := w.eval(e.Left, p, depth)
		if err != nil || !left {
			return false, err
		}
		return w.eval(e.Right, p, depth)

	case Or:
		left, err := w.eval(e.Left, p, depth)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return w.eval(e.Right, p, depth)

	case Not:
		v, err := w.eval(e.X, p, depth)
		return !v, err

	case Name:
		return vfs.MatchGlob(e.Pattern, path.Base(p), true), nil

	case Type:
		info, err := w.FS.Stat(p)
		if err != nil {
			return false, err
		}
		if e.Kind == 'f' {
			return !info.IsDir, nil
		}
		return info.IsDir, nil

	case MaxDepth:
		return true, nil

	case Exec:
		if w.Exec == nil {
			return false, fmt.Errorf("find: -exec is not supported")
		}
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			if a == "{}" {
				args[i] = p
			} else {
				args[i] = a
			}
		}
		stdout, code := w.Exec(args)
		if stdout != "" {
			fmt.Fprint(w.Stdout, stdout)
		}
		return code == 0, nil

	default:
		return false, fmt.Errorf("find: unhandled predicate %T", expr)
	}
}
