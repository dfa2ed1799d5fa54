// Package lexer turns a shell command string into a token stream,
// honoring quoting, escapes and operators per spec §4.1. There is no
// teacher lexer to adapt — core/shell/parser.go, the teacher's would-be
// home for this, is an empty stub, and the teacher's own REPL instead
// delegates to the off-the-shelf anmitsu/go-shlex package, which has no
// concept of shell operators or redirections and is too coarse for a
// real POSIX lexer (see DESIGN.md). This hand-rolled tokenizer follows
// the shape of rcarmo-go-busybox's ash.go tokenizer (quote-aware rune
// scanning, word accumulation until an operator or whitespace boundary)
// generalized to the full token set spec.md requires.
package lexer

import (
	"fmt"
	"strings"

	"github.com/defrex/just-bash/ast"
)

// TokenType distinguishes the kinds of tokens spec §4.1 enumerates.
type TokenType int

const (
	WORD TokenType = iota
	ASSIGNMENT_WORD
	OPERATOR
	NEWLINE
	IO_NUMBER
	EOF
)

func (t TokenType) String() string {
	switch t {
	case WORD:
		return "WORD"
	case ASSIGNMENT_WORD:
		return "ASSIGNMENT_WORD"
	case OPERATOR:
		return "OPERATOR"
	case NEWLINE:
		return "NEWLINE"
	case IO_NUMBER:
		return "IO_NUMBER"
	case EOF:
		return "EOF"
	}
	return "UNKNOWN"
}

// Token is one lexical unit.
type Token struct {
	Type TokenType
	// Op holds the operator text for OPERATOR tokens.
	Op string
	// Word holds the parsed word parts for WORD/ASSIGNMENT_WORD tokens.
	Word *ast.Word
	// Name holds the variable name for ASSIGNMENT_WORD tokens.
	Name string
	// Number holds the descriptor for IO_NUMBER tokens.
	Number int
	// Raw is the original source text, used for diagnostics.
	Raw string
}

// operators recognized, longest first so greedy matching works.
var multiCharOps = []string{"<<<", "&&", "||", ">>", "<<", "&>"}

const operatorChars = "|&;()<>{}"

// Lex tokenizes input and returns the token stream, always ending in an
// EOF token. It returns an error for unterminated quotes, matching
// spec §4.1's failure mode.
func Lex(input string) ([]Token, error) {
	l := &lexState{input: input}
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

type lexState struct {
	input   string
	pos     int
	pending []Token
}

func (l *lexState) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexState) peekAt(off int) byte {
	if l.pos+off >= len(l.input) {
		return 0
	}
	return l.input[l.pos+off]
}

func (l *lexState) next() (Token, error) {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok, nil
	}

	l.skipBlanksAndComments()

	if l.pos >= len(l.input) {
		return Token{Type: EOF}, nil
	}

	c := l.peek()

	if c == '\n' {
		l.pos++
		return Token{Type: NEWLINE, Raw: "\n"}, nil
	}

	if strings.IndexByte(operatorChars, c) >= 0 {
		return l.lexOperator()
	}

	return l.lexWord()
}

func (l *lexState) skipBlanksAndComments() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t':
			l.pos++
		case c == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexState) lexOperator() (Token, error) {
	if strings.HasPrefix(l.input[l.pos:], "<<") && l.peekAt(2) != '<' {
		return l.lexHeredocOp()
	}
	for _, op := range multiCharOps {
		if strings.HasPrefix(l.input[l.pos:], op) {
			l.pos += len(op)
			return Token{Type: OPERATOR, Op: op, Raw: op}, nil
		}
	}
	c := l.input[l.pos]
	l.pos++
	return Token{Type: OPERATOR, Op: string(c), Raw: string(c)}, nil
}

// lexHeredocOp handles "<<" and "<<-": it reads the delimiter word,
// then scans raw source for the matching terminator line and queues
// the heredoc body as a WORD token to follow the operator token,
// mirroring the shape of an ordinary redirect (operator, then target
// word) so the parser needs no special case for heredocs.
func (l *lexState) lexHeredocOp() (Token, error) {
	l.pos += 2 // "<<"
	stripTabs := false
	if l.peek() == '-' {
		stripTabs = true
		l.pos++
	}
	for l.peek() == ' ' || l.peek() == '\t' {
		l.pos++
	}

	delimTok, err := l.lexWord()
	if err != nil {
		return Token{}, err
	}
	delim := rawWordText(delimTok.Word)

	// Advance past the rest of the current line to the heredoc body.
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.pos++
	}
	if l.pos < len(l.input) {
		l.pos++ // consume the newline
	}

	var body strings.Builder
	for l.pos < len(l.input) {
		lineStart := l.pos
		for l.pos < len(l.input) && l.input[l.pos] != '\n' {
			l.pos++
		}
		line := l.input[lineStart:l.pos]
		if l.pos < len(l.input) {
			l.pos++ // consume newline
		}
		cmp := line
		if stripTabs {
			cmp = strings.TrimLeft(line, "\t")
		}
		if cmp == delim {
			break
		}
		if stripTabs {
			line = strings.TrimLeft(line, "\t")
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}

	// Quoted so downstream expansion's IFS word splitting (expand.go's
	// splitFields) leaves the body's newlines and internal whitespace
	// intact; only <<<here-strings are meant to undergo splitting.
	l.pending = append(l.pending, Token{
		Type: WORD,
		Word: &ast.Word{Parts: []ast.WordPart{ast.Literal{Value: body.String(), Quoted: true}}},
	})

	op := "<<"
	if stripTabs {
		op = "<<-"
	}
	return Token{Type: OPERATOR, Op: op, Raw: op}, nil
}

func rawWordText(w *ast.Word) string {
	var sb strings.Builder
	for _, p := range w.Parts {
		if lit, ok := p.(ast.Literal); ok {
			sb.WriteString(lit.Value)
		}
	}
	return sb.String()
}

// lexWord consumes one WORD/ASSIGNMENT_WORD/IO_NUMBER token.
func (l *lexState) lexWord() (Token, error) {
	start := l.pos

	// IO_NUMBER: a run of digits immediately followed by '<' or '>'.
	if isDigit(l.peek()) {
		j := l.pos
		for j < len(l.input) && isDigit(l.input[j]) {
			j++
		}
		if j < len(l.input) && (l.input[j] == '<' || l.input[j] == '>') {
			num := 0
			for _, d := range l.input[l.pos:j] {
				num = num*10 + int(d-'0')
			}
			l.pos = j
			return Token{Type: IO_NUMBER, Number: num, Raw: l.input[start:j]}, nil
		}
	}

	// Detect an assignment prefix: bare NAME= at the start of the word.
	name := ""
	if id := identifierPrefix(l.input[l.pos:]); id != "" && l.peekAt(len(id)) == '=' {
		name = id
		l.pos += len(id) + 1 // skip name and '='
	}

	word, err := l.lexWordParts()
	if err != nil {
		return Token{}, err
	}

	raw := l.input[start:l.pos]
	if name != "" {
		return Token{Type: ASSIGNMENT_WORD, Name: name, Word: word, Raw: raw}, nil
	}
	return Token{Type: WORD, Word: word, Raw: raw}, nil
}

func identifierPrefix(s string) string {
	if len(s) == 0 || !isIdentStart(s[0]) {
		return ""
	}
	i := 1
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	return s[:i]
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// lexWordParts accumulates word parts until an unquoted whitespace or
// operator boundary is hit.
func (l *lexState) lexWordParts() (*ast.Word, error) {
	w := &ast.Word{}
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			w.Parts = append(w.Parts, ast.Literal{Value: lit.String()})
			lit.Reset()
		}
	}

	for l.pos < len(l.input) {
		c := l.input[l.pos]

		if c == ' ' || c == '\t' || c == '\n' || strings.IndexByte(operatorChars, c) >= 0 {
			break
		}

		switch c {
		case '\'':
			flush()
			val, err := l.lexSingleQuoted()
			if err != nil {
				return nil, err
			}
			w.Parts = append(w.Parts, ast.Literal{Value: val, Quoted: true})

		case '"':
			flush()
			parts, err := l.lexDoubleQuoted()
			if err != nil {
				return nil, err
			}
			w.Parts = append(w.Parts, parts...)

		case '\\':
			l.pos++
			if l.pos >= len(l.input) {
				return nil, fmt.Errorf("syntax error: unexpected end of input")
			}
			next := l.input[l.pos]
			l.pos++
			if next == '\n' {
				continue // line continuation
			}
			lit.WriteByte(next)

		case '$':
			flush()
			part, err := l.lexDollar(false)
			if err != nil {
				return nil, err
			}
			w.Parts = append(w.Parts, part)

		case '`':
			flush()
			part, err := l.lexBacktick(false)
			if err != nil {
				return nil, err
			}
			w.Parts = append(w.Parts, part)

		default:
			lit.WriteByte(c)
			l.pos++
		}
	}

	flush()
	if len(w.Parts) == 0 {
		w.Parts = append(w.Parts, ast.Literal{Value: ""})
	}
	return w, nil
}

func (l *lexState) lexSingleQuoted() (string, error) {
	l.pos++ // opening '
	start := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '\'' {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return "", fmt.Errorf("syntax error: unexpected end of input")
	}
	val := l.input[start:l.pos]
	l.pos++ // closing '
	return val, nil
}

// lexDoubleQuoted returns the word parts inside a double-quoted
// segment: expansions remain active, but the resulting parts are
// marked Quoted so expansion suppresses word splitting and pathname
// expansion on them.
func (l *lexState) lexDoubleQuoted() ([]ast.WordPart, error) {
	l.pos++ // opening "
	var parts []ast.WordPart
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, ast.Literal{Value: lit.String(), Quoted: true})
			lit.Reset()
		}
	}

	for {
		if l.pos >= len(l.input) {
			return nil, fmt.Errorf("syntax error: unexpected end of input")
		}
		c := l.input[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		switch c {
		case '\\':
			l.pos++
			if l.pos >= len(l.input) {
				return nil, fmt.Errorf("syntax error: unexpected end of input")
			}
			next := l.input[l.pos]
			l.pos++
			switch next {
			case '"', '\\', '$', '`':
				lit.WriteByte(next)
			case '\n':
				// line continuation
			default:
				lit.WriteByte('\\')
				lit.WriteByte(next)
			}
		case '$':
			flush()
			part, err := l.lexDollar(true)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		case '`':
			flush()
			part, err := l.lexBacktick(true)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		default:
			lit.WriteByte(c)
			l.pos++
		}
	}

	flush()
	if len(parts) == 0 {
		parts = append(parts, ast.Literal{Value: "", Quoted: true})
	}
	return parts, nil
}

// lexDollar handles $name, ${...}, $(...), and $((...)).
func (l *lexState) lexDollar(quoted bool) (ast.WordPart, error) {
	l.pos++ // '$'
	if l.pos >= len(l.input) {
		return ast.Literal{Value: "$", Quoted: quoted}, nil
	}

	switch l.input[l.pos] {
	case '(':
		if l.peekAt(1) == '(' {
			expr, err := l.lexBalanced("((", "))")
			if err != nil {
				return nil, err
			}
			return ast.ArithExpansion{Expr: expr, Quoted: quoted}, nil
		}
		raw, err := l.lexBalanced("(", ")")
		if err != nil {
			return nil, err
		}
		return ast.CommandSubst{Raw: raw, Quoted: quoted}, nil

	case '{':
		l.pos++
		start := l.pos
		depth := 1
		for l.pos < len(l.input) && depth > 0 {
			switch l.input[l.pos] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					break
				}
			}
			if depth > 0 {
				l.pos++
			}
		}
		if l.pos >= len(l.input) {
			return nil, fmt.Errorf("syntax error: unexpected end of input")
		}
		body := l.input[start:l.pos]
		l.pos++ // '}'
		return parseParamBody(body, quoted)

	default:
		id := identifierPrefix(l.input[l.pos:])
		if id == "" {
			if isDigit(l.input[l.pos]) || l.input[l.pos] == '?' || l.input[l.pos] == '#' ||
				l.input[l.pos] == '@' || l.input[l.pos] == '*' || l.input[l.pos] == '$' || l.input[l.pos] == '!' {
				name := string(l.input[l.pos])
				l.pos++
				return ast.ParamExpansion{Name: name, Quoted: quoted}, nil
			}
			return ast.Literal{Value: "$", Quoted: quoted}, nil
		}
		l.pos += len(id)
		return ast.ParamExpansion{Name: id, Quoted: quoted}, nil
	}
}

// parseParamBody parses the inside of ${...}: name, name:-word,
// name:+word, #name.
func parseParamBody(body string, quoted bool) (ast.WordPart, error) {
	if strings.HasPrefix(body, "#") {
		return ast.ParamExpansion{Name: body[1:], Op: "#", Quoted: quoted}, nil
	}
	for _, op := range []string{":-", ":+"} {
		if idx := strings.Index(body, op); idx >= 0 {
			name := body[:idx]
			wordSrc := body[idx+len(op):]
			toks, err := Lex(wordSrc)
			if err != nil {
				return nil, err
			}
			var word *ast.Word
			if len(toks) > 0 && toks[0].Type == WORD {
				word = toks[0].Word
			} else {
				word = &ast.Word{Parts: []ast.WordPart{ast.Literal{Value: ""}}}
			}
			return ast.ParamExpansion{Name: name, Op: op, Word: word, Quoted: quoted}, nil
		}
	}
	return ast.ParamExpansion{Name: body, Quoted: quoted}, nil
}

// lexBalanced consumes from the current position (which must start
// with openTok) through the matching closeTok, respecting nested
// parens/quotes, and returns the text strictly between them.
func (l *lexState) lexBalanced(openTok, closeTok string) (string, error) {
	l.pos += len(openTok)
	start := l.pos
	depth := 1
	for l.pos < len(l.input) {
		switch {
		case l.input[l.pos] == '\'':
			l.pos++
			for l.pos < len(l.input) && l.input[l.pos] != '\'' {
				l.pos++
			}
			if l.pos >= len(l.input) {
				return "", fmt.Errorf("syntax error: unexpected end of input")
			}
			l.pos++
		case l.input[l.pos] == '"':
			l.pos++
			for l.pos < len(l.input) && l.input[l.pos] != '"' {
				if l.input[l.pos] == '\\' {
					l.pos++
				}
				l.pos++
			}
			if l.pos >= len(l.input) {
				return "", fmt.Errorf("syntax error: unexpected end of input")
			}
			l.pos++
		case strings.HasPrefix(l.input[l.pos:], openTok) && openTok != closeTok:
			depth++
			l.pos += len(openTok)
		case strings.HasPrefix(l.input[l.pos:], closeTok):
			depth--
			if depth == 0 {
				body := l.input[start:l.pos]
				l.pos += len(closeTok)
				return body, nil
			}
			l.pos += len(closeTok)
		default:
			l.pos++
		}
	}
	return "", fmt.Errorf("syntax error: unexpected end of input")
}

func (l *lexState) lexBacktick(quoted bool) (ast.WordPart, error) {
	l.pos++ // opening `
	start := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '`' {
		if l.input[l.pos] == '\\' {
			l.pos++
		}
		l.pos++
	}
	if l.pos >= len(l.input) {
		return nil, fmt.Errorf("syntax error: unexpected end of input")
	}
	body := l.input[start:l.pos]
	l.pos++ // closing `
	return ast.CommandSubst{Raw: body, Quoted: quoted}, nil
}
