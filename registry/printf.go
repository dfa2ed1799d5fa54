package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// Printf implements a POSIX-minimal "printf FORMAT [ARG]...": %s, %d,
// %%, plus echo's \n-family escapes in the format string (grounded on
// commands/echo.go's unescape).
func Printf(args []string, ctx *CommandContext) ExecResult {
	if len(args) < 2 {
		return errResult("printf: usage: printf format [arguments]")
	}
	format := unescape(args[1])
	argv := args[2:]

	var out strings.Builder
	ai := 0
	nextArg := func() string {
		if ai < len(argv) {
			v := argv[ai]
			ai++
			return v
		}
		return ""
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			out.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case '%':
			out.WriteByte('%')
		case 's':
			out.WriteString(nextArg())
		case 'd':
			v := nextArg()
			n, err := strconv.Atoi(v)
			if err != nil {
				n = 0
			}
			fmt.Fprintf(&out, "%d", n)
		default:
			out.WriteByte('%')
			out.WriteByte(format[i])
		}
	}

	return ExecResult{Stdout: out.String()}
}
