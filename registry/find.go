package registry

import (
	"strings"

	"github.com/defrex/just-bash/find"
)

var predicateTokens = map[string]bool{
	"-name": true, "-type": true, "-maxdepth": true, "-exec": true,
	"(": true, ")": true, "!": true,
	"-o": true, "-or": true, "-a": true, "-and": true, "-not": true,
}

// Find implements the "find <path>... [expr]" command body (spec
// §4.5/§4.6/§6), in scope per this repository's purpose statement.
// It delegates the expression grammar and traversal to the find
// package and only handles argv splitting and exit-code mapping here.
func Find(args []string, ctx *CommandContext) ExecResult {
	rest := args[1:]

	var paths []string
	i := 0
	for i < len(rest) && !predicateTokens[rest[i]] && !(len(rest[i]) > 1 && strings.HasPrefix(rest[i], "-")) {
		paths = append(paths, rest[i])
		i++
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for pi, p := range paths {
		paths[pi] = ctx.FS.ResolvePath(ctx.Cwd, p)
	}

	expr, maxDepth, hasAction, err := find.Parse(rest[i:])
	if err != nil {
		msg := err.Error()
		code := 2
		if strings.Contains(msg, "unknown predicate") || strings.Contains(msg, "Unknown argument to -type") {
			code = 1
		}
		return ExecResult{Stderr: msg + "\n", ExitCode: code}
	}

	var stdout, stderr strings.Builder
	w := &find.Walker{
		FS:              ctx.FS,
		Stdout:          &stdout,
		Stderr:          &stderr,
		NoImplicitPrint: hasAction,
		Exec: func(a []string) (string, int) {
			if ctx.Exec == nil {
				return "", 1
			}
			res := ctx.Exec(a)
			return res.Stdout, res.ExitCode
		},
	}
	code := w.Run(paths, expr, maxDepth)
	return ExecResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}
