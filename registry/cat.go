package registry

import "strings"

// Cat implements "cat [FILE]...", grounded on commands/cat.go.
func Cat(args []string, ctx *CommandContext) ExecResult {
	paths := args[1:]
	if len(paths) == 0 {
		return ExecResult{Stdout: ctx.Stdin}
	}

	var out, errs strings.Builder
	exitCode := 0
	for _, p := range paths {
		if p == "-" {
			out.WriteString(ctx.Stdin)
			continue
		}
		abs := ctx.FS.ResolvePath(ctx.Cwd, p)
		data, err := ctx.FS.Read(abs)
		if err != nil {
			errs.WriteString("cat: " + p + ": " + err.Error() + "\n")
			exitCode = 1
			continue
		}
		out.WriteString(data)
	}
	return ExecResult{Stdout: out.String(), Stderr: errs.String(), ExitCode: exitCode}
}
