package registry

import (
	"fmt"
	"strings"

	getopt "github.com/pborman/getopt/v2"
)

// Wc implements "wc [-l] [-w] [-c] [FILE]...", new but shaped after
// the teacher's getopt-based flag parsing convention (commands/base.go,
// ls.go).
func Wc(args []string, ctx *CommandContext) ExecResult {
	opts := getopt.New()
	lines := opts.Bool('l', "print the newline count")
	words := opts.Bool('w', "print the word count")
	bytesFlag := opts.Bool('c', "print the byte count")
	if err := opts.Getopt(args, nil); err != nil {
		return errResult("wc: %v", err)
	}

	showAll := !*lines && !*words && !*bytesFlag

	count := func(name, data string) string {
		nl := strings.Count(data, "\n")
		nw := len(strings.Fields(data))
		nb := len(data)
		var fields []string
		if showAll || *lines {
			fields = append(fields, fmt.Sprintf("%7d", nl))
		}
		if showAll || *words {
			fields = append(fields, fmt.Sprintf("%7d", nw))
		}
		if showAll || *bytesFlag {
			fields = append(fields, fmt.Sprintf("%7d", nb))
		}
		line := strings.Join(fields, " ")
		if name != "" {
			line += " " + name
		}
		return line
	}

	paths := opts.Args()
	var out, errs strings.Builder
	exitCode := 0

	if len(paths) == 0 {
		out.WriteString(count("", ctx.Stdin) + "\n")
		return ExecResult{Stdout: out.String()}
	}

	for _, p := range paths {
		abs := ctx.FS.ResolvePath(ctx.Cwd, p)
		data, err := ctx.FS.Read(abs)
		if err != nil {
			errs.WriteString(fmt.Sprintf("wc: %s: %v\n", p, err))
			exitCode = 1
			continue
		}
		out.WriteString(count(p, data) + "\n")
	}
	return ExecResult{Stdout: out.String(), Stderr: errs.String(), ExitCode: exitCode}
}
