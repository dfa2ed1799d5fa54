package registry

import (
	"regexp"
	"strconv"
	"strings"
)

// Grounded on commands/echo.go's unescape helpers.
var (
	unescapeOctal   = regexp.MustCompile(`\\0[0-7][0-7]?[0-7]?`)
	unescapeHex     = regexp.MustCompile(`\\x[0-9a-fA-F][0-9a-fA-F]?`)
	unescapeReplace = strings.NewReplacer(
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
		`\\`, `\`,
		`\b`, "\b",
		`\a`, "\a",
		`\f`, "\f",
		`\v`, "\v",
	)
)

func unescape(s string) string {
	s = unescapeReplace.Replace(s)
	s = unescapeOctal.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.ParseInt(m[2:], 8, 16)
		if err != nil {
			return m
		}
		return string(rune(n))
	})
	s = unescapeHex.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.ParseInt(m[2:], 16, 16)
		if err != nil {
			return m
		}
		return string(rune(n))
	})
	return s
}

// Echo implements the "echo [-e] [-n] [ARG]..." builtin.
func Echo(args []string, ctx *CommandContext) ExecResult {
	interpretEscapes := false
	noNewline := false

	i := 1
	for ; i < len(args); i++ {
		switch args[i] {
		case "-e":
			interpretEscapes = true
		case "-n":
			noNewline = true
		case "-en", "-ne":
			interpretEscapes = true
			noNewline = true
		default:
			goto doneFlags
		}
	}
doneFlags:
	words := args[i:]
	if interpretEscapes {
		for j, w := range words {
			words[j] = unescape(w)
		}
	}

	out := strings.Join(words, " ")
	if !noNewline {
		out += "\n"
	}
	return ExecResult{Stdout: out}
}
