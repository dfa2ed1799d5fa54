package registry

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	fcolor "github.com/fatih/color"
	getopt "github.com/pborman/getopt/v2"

	"github.com/defrex/just-bash/vfs"
)

// Ls implements "ls [-a] [-l] [-h] [--color=WHEN] [PATH]...", adapted
// from commands/ls.go. The teacher's long-listing uid/gid resolution
// (syscall.Stat_t / tar.Header / mem.FileInfo type-switch) has no
// analogue here since vfs.FileInfo carries no ownership metadata, so
// the long-listing form is simplified to mode/size/mtime/name.
func Ls(args []string, ctx *CommandContext) ExecResult {
	opts := getopt.New()
	listAll := opts.Bool('a', "don't ignore entries starting with .")
	longListing := opts.Bool('l', "use a long listing format")
	humanSize := opts.BoolLong("human-readable", 'h', "print human readable sizes")
	colorMode := opts.StringLong("color", 0, "auto", "colorize output: always, auto, or never")
	helpOpt := opts.BoolLong("help", '?', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil {
		return errResult("ls: %v", err)
	}
	if *helpOpt {
		var w strings.Builder
		w.WriteString("Usage: ls [OPTION]... [FILE]...\n")
		return ExecResult{Stdout: w.String()}
	}

	dirs := opts.Args()
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	sort.Strings(dirs)

	shouldColor := *colorMode == "always"
	sizeFmt := func(n int64) string { return fmt.Sprintf("%d", n) }
	if *humanSize {
		sizeFmt = BytesToHuman
	}

	var out, errs strings.Builder
	exitCode := 0
	showNames := len(dirs) > 1

	for _, d := range dirs {
		abs := ctx.FS.ResolvePath(ctx.Cwd, d)
		info, err := ctx.FS.Stat(abs)
		if err != nil {
			errs.WriteString(fmt.Sprintf("ls: %s: %v\n", d, err))
			exitCode = 1
			continue
		}

		var entries []vfs.FileInfo
		if info.IsDir {
			names, err := ctx.FS.List(abs)
			if err != nil {
				errs.WriteString(fmt.Sprintf("ls: %s: %v\n", d, err))
				exitCode = 1
				continue
			}
			for _, name := range names {
				if !*listAll && strings.HasPrefix(name, ".") {
					continue
				}
				childInfo, err := ctx.FS.Stat(abs + "/" + name)
				if err != nil {
					continue
				}
				entries = append(entries, childInfo)
			}
		} else {
			entries = append(entries, info)
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

		if showNames {
			out.WriteString(d + ":\n")
		}

		if *longListing {
			for _, e := range entries {
				modTime := e.ModTime.Format("Jan _2 2006")
				if e.ModTime.Year() >= time.Now().Year() {
					modTime = e.ModTime.Format("Jan _2 15:04")
				}
				name := e.Name
				if shouldColor {
					name = colorFor(e).Sprint(name)
				}
				fmt.Fprintf(&out, "%s\t%s\t%s\t%s\n", fs.FileMode(e.Mode).String(), sizeFmt(e.Size), modTime, name)
			}
		} else {
			names := make([]string, len(entries))
			for i, e := range entries {
				if shouldColor {
					names[i] = colorFor(e).Sprint(e.Name)
				} else {
					names[i] = e.Name
				}
			}
			out.WriteString(strings.Join(names, "  "))
			if len(names) > 0 {
				out.WriteString("\n")
			}
		}
	}

	return ExecResult{Stdout: out.String(), Stderr: errs.String(), ExitCode: exitCode}
}

// colorFor mirrors commands/ls.go's Dircolor: directories bold blue,
// executables bold green, everything else high-intensity white.
func colorFor(info vfs.FileInfo) *fcolor.Color {
	switch {
	case info.IsDir:
		return fcolor.New(fcolor.FgBlue, fcolor.Bold)
	case fs.FileMode(info.Mode).Perm()&0111 != 0:
		return fcolor.New(fcolor.FgGreen, fcolor.Bold)
	default:
		return fcolor.New(fcolor.FgHiWhite)
	}
}
