package shell

import (
	"strings"

	"github.com/defrex/just-bash/ast"
	"github.com/defrex/just-bash/expand"
)

// applyRedirects resolves input redirections into stageIO.stdin
// before dispatch (spec §4.4 "Redirection": applied after expansion,
// before dispatch). Output redirections are recorded for
// flushRedirected to act on once the command has produced output.
// The returned bool is true only when resolving a redirect itself
// failed badly enough to short-circuit the command (e.g. a missing
// input file).
func (s *Shell) applyRedirects(redirects []ast.Redirect, io *ioCtx, ctx expand.Context) (evalResult, bool) {
	for _, r := range redirects {
		switch r.Op {
		case "<":
			path, err := s.redirectTargetPath(r, ctx)
			if err != nil {
				return errResultFor(r, err, io), true
			}
			data, err := s.fs.Read(path)
			if err != nil {
				io.stderr.WriteString("bash: " + path + ": " + err.Error() + "\n")
				return normal(1), true
			}
			io.stdin = data

		case "<<", "<<-":
			words, err := expand.Word(r.Target, ctx)
			if err != nil {
				return normal(1), true
			}
			io.stdin = strings.Join(words, "")

		case "<<<":
			words, err := expand.Word(r.Target, ctx)
			if err != nil {
				return normal(1), true
			}
			io.stdin = strings.Join(words, " ") + "\n"
		}
	}
	return evalResult{}, false
}

func (s *Shell) redirectTargetPath(r ast.Redirect, ctx expand.Context) (string, error) {
	words, err := expand.Word(r.Target, ctx)
	if err != nil {
		return "", err
	}
	target := ""
	if len(words) > 0 {
		target = words[0]
	}
	return s.fs.ResolvePath(s.cwd, target), nil
}

func errResultFor(r ast.Redirect, err error, io *ioCtx) evalResult {
	io.stderr.WriteString("bash: " + err.Error() + "\n")
	return normal(1)
}

// flushRedirected appends stageIO's captured output to parentIO,
// diverting it to files instead wherever an output redirect named a
// target (spec §4.4: ">" truncates then writes at end, ">>" appends,
// "2>" diverts stderr, "&>" diverts both).
func (s *Shell) flushRedirected(redirects []ast.Redirect, stageIO, parentIO *ioCtx) {
	ctx := s.expandContext()

	stdoutDiverted := false
	stderrDiverted := false

	for _, r := range redirects {
		switch {
		case (r.Op == ">" || r.Op == ">>") && r.FD == 2:
			path, err := s.redirectTargetPath(r, ctx)
			if err != nil {
				continue
			}
			s.writeFile(path, stageIO.stderr.String(), r.Op == ">>")
			stderrDiverted = true

		case r.Op == ">" || r.Op == ">>":
			path, err := s.redirectTargetPath(r, ctx)
			if err != nil {
				continue
			}
			s.writeFile(path, stageIO.stdout.String(), r.Op == ">>")
			stdoutDiverted = true

		case r.Op == "&>":
			path, err := s.redirectTargetPath(r, ctx)
			if err != nil {
				continue
			}
			s.writeFile(path, stageIO.stdout.String()+stageIO.stderr.String(), false)
			stdoutDiverted = true
			stderrDiverted = true
		}
	}

	if !stdoutDiverted {
		parentIO.stdout.WriteString(stageIO.stdout.String())
	}
	if !stderrDiverted {
		parentIO.stderr.WriteString(stageIO.stderr.String())
	}
}

func (s *Shell) writeFile(path, data string, appendMode bool) {
	if appendMode {
		s.fs.Append(path, data)
		return
	}
	s.fs.Write(path, data)
}
