// Package expand implements the eight-phase word expansion engine of
// spec §4.3: brace expansion, tilde expansion, parameter/variable
// expansion, command substitution, arithmetic expansion, word
// splitting and pathname expansion. It has no direct teacher analogue
// (the teacher ships no shell expander at all — see DESIGN.md); the
// glob half is grounded on rcarmo-go-busybox's find.go matching
// approach, generalized into vfs.MatchGlob, and the rest is built
// directly from spec.md's phase ordering.
package expand

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/defrex/just-bash/ast"
	"github.com/defrex/just-bash/vfs"
)

// Env supplies variable lookups to the expander. The shell façade's
// state implements this.
type Env interface {
	Get(name string) (string, bool)
}

// Context bundles everything expansion needs beyond the word itself.
type Context struct {
	Env Env
	FS  vfs.FileSystem
	Cwd string
	Home string
	IFS  string
	// ExecSubst re-enters the evaluator for $(...) / `...` substitution.
	// Injected by the shell package to avoid a circular import.
	ExecSubst func(script string) (stdout string, exitCode int, err error)
}

// Word expands w into zero or more final argument strings.
func Word(w *ast.Word, ctx Context) ([]string, error) {
	if ctx.IFS == "" {
		ctx.IFS = " \t\n"
	}

	alternatives := expandBraces(w)

	var fields []string
	for _, alt := range alternatives {
		segs, err := resolveParts(alt.Parts, ctx)
		if err != nil {
			return nil, err
		}
		if lit, ok := alt.Parts[0].(ast.Literal); ok && !lit.Quoted {
			segs = expandTilde(segs, ctx)
		}
		for _, f := range splitFields(segs, ctx.IFS) {
			fields = append(fields, expandPathname(f, ctx)...)
		}
	}
	return fields, nil
}

// Words expands a slice of words in order, flattening the results.
func Words(ws []*ast.Word, ctx Context) ([]string, error) {
	var out []string
	for _, w := range ws {
		fs, err := Word(w, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}
	return out, nil
}

// segment is one piece of a word's expanded value, tagged with
// whether it originated from quoted source text (suppressing word
// splitting and pathname expansion per spec §4.3's last bullet).
type segment struct {
	text   string
	quoted bool
}

func resolveParts(parts []ast.WordPart, ctx Context) ([]segment, error) {
	var segs []segment
	for _, part := range parts {
		switch p := part.(type) {
		case ast.Literal:
			segs = append(segs, segment{text: p.Value, quoted: p.Quoted})

		case ast.ParamExpansion:
			val := resolveParam(p, ctx)
			segs = append(segs, segment{text: val, quoted: p.Quoted})

		case ast.CommandSubst:
			if ctx.ExecSubst == nil {
				return nil, fmt.Errorf("command substitution unsupported")
			}
			out, _, err := ctx.ExecSubst(p.Raw)
			if err != nil {
				return nil, err
			}
			out = strings.TrimRight(out, "\n")
			segs = append(segs, segment{text: out, quoted: p.Quoted})

		case ast.ArithExpansion:
			val, err := EvalArith(p.Expr, ctx.Env)
			if err != nil {
				return nil, err
			}
			segs = append(segs, segment{text: fmt.Sprintf("%d", val), quoted: p.Quoted})

		default:
			return nil, fmt.Errorf("unknown word part %T", part)
		}
	}
	return segs, nil
}

func resolveParam(p ast.ParamExpansion, ctx Context) string {
	val, ok := ctx.Env.Get(p.Name)

	switch p.Op {
	case "#":
		return fmt.Sprintf("%d", len(val))
	case ":-":
		if !ok || val == "" {
			if p.Word == nil {
				return ""
			}
			fs, err := Word(p.Word, ctx)
			if err != nil || len(fs) == 0 {
				return ""
			}
			return strings.Join(fs, string(ctx.IFS[0]))
		}
		return val
	case ":+":
		if ok && val != "" {
			if p.Word == nil {
				return ""
			}
			fs, err := Word(p.Word, ctx)
			if err != nil || len(fs) == 0 {
				return ""
			}
			return strings.Join(fs, string(ctx.IFS[0]))
		}
		return ""
	default:
		return val
	}
}

// expandTilde rewrites a leading unquoted "~" segment into ctx.Home.
// Only bare "~" and "~/..." are supported (no "~user" lookups, since
// there is no user database in this in-process model).
func expandTilde(segs []segment, ctx Context) []segment {
	if len(segs) == 0 || segs[0].quoted {
		return segs
	}
	t := segs[0].text
	if t == "~" {
		segs[0].text = ctx.Home
	} else if strings.HasPrefix(t, "~/") {
		segs[0].text = ctx.Home + t[1:]
	}
	return segs
}

// splitFields performs IFS word splitting over unquoted segments,
// leaving quoted segments intact as part of whatever field they fall
// into (spec §4.3: quoted segments are not subject to splitting).
func splitFields(segs []segment, ifs string) []field {
	var fields []field
	var cur strings.Builder
	curHasContent := false
	curGlobbable := false

	flush := func() {
		if curHasContent {
			fields = append(fields, field{text: cur.String(), globbable: curGlobbable})
		}
		cur.Reset()
		curHasContent = false
		curGlobbable = false
	}

	for _, s := range segs {
		if s.quoted {
			cur.WriteString(s.text)
			curHasContent = true
			continue
		}
		start := 0
		for i := 0; i < len(s.text); i++ {
			if strings.IndexByte(ifs, s.text[i]) >= 0 {
				if i > start {
					cur.WriteString(s.text[start:i])
					curHasContent = true
					curGlobbable = true
				}
				flush()
				start = i + 1
			}
		}
		if start < len(s.text) {
			cur.WriteString(s.text[start:])
			curHasContent = true
			curGlobbable = true
		}
	}
	flush()

	if len(fields) == 0 {
		fields = append(fields, field{text: "", globbable: false})
	}
	return fields
}

type field struct {
	text      string
	globbable bool // came from at least one unquoted segment
}

// expandPathname performs pathname (glob) expansion for a field that
// contains unquoted glob metacharacters. Non-matching patterns remain
// literal (spec §4.3).
func expandPathname(f field, ctx Context) []string {
	if !f.globbable || !vfs.HasMeta(f.text) || ctx.FS == nil {
		return []string{f.text}
	}

	dir, base := path.Split(f.text)
	searchDir := dir
	if searchDir == "" {
		searchDir = "."
	}
	absDir := ctx.FS.ResolvePath(ctx.Cwd, searchDir)
	names, err := ctx.FS.List(absDir)
	if err != nil {
		return []string{f.text}
	}

	var matches []string
	for _, name := range names {
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		if vfs.MatchGlob(base, name, true) {
			matches = append(matches, dir+name)
		}
	}
	if len(matches) == 0 {
		return []string{f.text}
	}
	sort.Strings(matches)
	return matches
}

// expandBraces expands {a,b,c} and {n..m} patterns appearing in a
// word's unquoted literal parts. Every group inside one literal part is
// expanded, nested groups and several groups in a row included; a
// group that spans more than one part (across a quoted segment or an
// expansion) is not.
func expandBraces(w *ast.Word) []*ast.Word {
	for i, part := range w.Parts {
		lit, ok := part.(ast.Literal)
		if !ok || lit.Quoted {
			continue
		}
		alts, ok := braceAlternatives(lit.Value)
		if !ok {
			continue
		}
		var out []*ast.Word
		for _, alt := range alts {
			clone := cloneWord(w)
			clone.Parts[i] = ast.Literal{Value: alt}
			out = append(out, expandBraces(clone)...)
		}
		return out
	}
	return []*ast.Word{w}
}

func cloneWord(w *ast.Word) *ast.Word {
	parts := make([]ast.WordPart, len(w.Parts))
	copy(parts, w.Parts)
	return &ast.Word{Parts: parts}
}

func braceAlternatives(s string) ([]string, bool) {
	open := strings.IndexByte(s, '{')
	if open < 0 {
		return nil, false
	}
	depth := 0
	close := -1
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				close = i
			}
		}
		if close >= 0 {
			break
		}
	}
	if close < 0 {
		return nil, false
	}
	prefix, body, suffix := s[:open], s[open+1:close], s[close+1:]

	if lo, hi, ok := parseRange(body); ok {
		var alts []string
		if lo <= hi {
			for v := lo; v <= hi; v++ {
				alts = append(alts, fmt.Sprintf("%s%d%s", prefix, v, suffix))
			}
		} else {
			for v := lo; v >= hi; v-- {
				alts = append(alts, fmt.Sprintf("%s%d%s", prefix, v, suffix))
			}
		}
		return alts, true
	}

	parts := splitTopLevelCommas(body)
	if len(parts) < 2 {
		return nil, false
	}
	var alts []string
	for _, p := range parts {
		alts = append(alts, prefix+p+suffix)
	}
	return alts, true
}

func parseRange(body string) (lo, hi int, ok bool) {
	idx := strings.Index(body, "..")
	if idx < 0 {
		return 0, 0, false
	}
	a, b := body[:idx], body[idx+2:]
	loVal, err1 := parseInt(a)
	hiVal, err2 := parseInt(b)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return loVal, hiVal, true
}

func parseInt(s string) (int, error) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a number")
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

func splitTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
