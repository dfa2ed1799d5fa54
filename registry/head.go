package registry

import (
	"strings"

	getopt "github.com/pborman/getopt/v2"
)

// Head implements "head [-n N] [FILE]...".
func Head(args []string, ctx *CommandContext) ExecResult {
	opts := getopt.New()
	n := opts.IntLong("lines", 'n', 10, "print the first N lines")
	if err := opts.Getopt(args, nil); err != nil {
		return errResult("head: %v", err)
	}

	firstN := func(data string) string {
		lines := strings.SplitAfter(data, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		if len(lines) > *n {
			lines = lines[:*n]
		}
		return strings.Join(lines, "")
	}

	paths := opts.Args()
	var out, errs strings.Builder
	exitCode := 0

	if len(paths) == 0 {
		return ExecResult{Stdout: firstN(ctx.Stdin)}
	}

	showNames := len(paths) > 1
	for i, p := range paths {
		abs := ctx.FS.ResolvePath(ctx.Cwd, p)
		data, err := ctx.FS.Read(abs)
		if err != nil {
			errs.WriteString("head: " + p + ": " + err.Error() + "\n")
			exitCode = 1
			continue
		}
		if showNames {
			if i > 0 {
				out.WriteString("\n")
			}
			out.WriteString("==> " + p + " <==\n")
		}
		out.WriteString(firstN(data))
	}
	return ExecResult{Stdout: out.String(), Stderr: errs.String(), ExitCode: exitCode}
}
