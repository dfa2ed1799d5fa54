// Package parser implements the recursive-descent parser of spec §4.2:
// token stream -> ast.Node. As with the lexer, there is no teacher
// parser to adapt (core/shell/parser.go is an empty stub); the overall
// shape — a hand-written recursive-descent parser walking a flat token
// slice with an index cursor — follows rcarmo-go-busybox's ash.go
// command-splitting functions, generalized to the full grammar spec.md
// names: lists, pipelines, simple commands with assignments and
// redirections, and the compound commands (if/while/until/for/case,
// subshells, groups, function definitions).
package parser

import (
	"fmt"

	"github.com/defrex/just-bash/ast"
	"github.com/defrex/just-bash/lexer"
)

// ParseError is returned for a malformed token stream, matching
// spec §4.2's "syntax error near unexpected token '<tok>'" diagnostic.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

// Parse lexes and parses a complete command line into a single AST
// node (a *ast.List chain when the line holds several commands, the
// lone command's own node otherwise, or nil for blank/comment-only
// input).
func Parse(input string) (ast.Node, error) {
	toks, err := lexer.Lex(input)
	if err != nil {
		return nil, &ParseError{Msg: "syntax error: " + err.Error()}
	}
	p := &parser{toks: toks}
	node, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return node, nil
}

type parser struct {
	toks []lexer.Token
	pos  int
}

func (p *parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peekN(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.toks[idx]
}

func (p *parser) advance() lexer.Token {
	tok := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func unexpected(tok lexer.Token) error {
	text := tok.Raw
	if tok.Type == lexer.EOF {
		text = ""
	}
	return &ParseError{Msg: fmt.Sprintf("syntax error near unexpected token '%s'", text)}
}

func (p *parser) skipSeparators() {
	for p.cur().Type == lexer.NEWLINE || (p.cur().Type == lexer.OPERATOR && p.cur().Op == ";") {
		p.advance()
	}
}

func (p *parser) atEnd() bool {
	return p.cur().Type == lexer.EOF
}

func (p *parser) parseProgram() (ast.Node, error) {
	p.skipSeparators()
	if p.atEnd() {
		return nil, nil
	}
	node, err := p.parseList()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	if !p.atEnd() {
		return nil, unexpected(p.cur())
	}
	return node, nil
}

// parseList parses a ';'/newline-separated chain of andor lists.
func (p *parser) parseList() (ast.Node, error) {
	left, err := p.parseAndOr()
	if err != nil {
		return nil, err
	}
	for p.isSeparator() {
		p.advance()
		p.skipSeparators()
		if p.atEnd() || p.isListTerminator() {
			return left, nil
		}
		right, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		left = &ast.List{Op: ";", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) isSeparator() bool {
	return p.cur().Type == lexer.NEWLINE || (p.cur().Type == lexer.OPERATOR && p.cur().Op == ";")
}

func (p *parser) isListTerminator() bool {
	if p.cur().Type != lexer.WORD {
		return p.cur().Type == lexer.OPERATOR && (p.cur().Op == ")" || p.cur().Op == "}")
	}
	switch wordLiteral(p.cur()) {
	case "then", "else", "elif", "fi", "do", "done", "esac":
		return true
	}
	return false
}

// parseAndOr parses a left-associative &&/|| chain.
func (p *parser) parseAndOr() (ast.Node, error) {
	left, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == lexer.OPERATOR && (p.cur().Op == "&&" || p.cur().Op == "||") {
		op := p.advance().Op
		p.skipNewlines()
		right, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		left = &ast.List{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) skipNewlines() {
	for p.cur().Type == lexer.NEWLINE {
		p.advance()
	}
}

// parsePipeline parses ['!'] command ('|' command)*.
func (p *parser) parsePipeline() (ast.Node, error) {
	negate := false
	if p.cur().Type == lexer.WORD && wordLiteral(p.cur()) == "!" {
		negate = true
		p.advance()
	}

	first, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	stages := []ast.Node{first}
	for p.cur().Type == lexer.OPERATOR && p.cur().Op == "|" {
		p.advance()
		p.skipNewlines()
		stage, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	if len(stages) == 1 && !negate {
		return stages[0], nil
	}
	return &ast.Pipeline{Stages: stages, Negate: negate}, nil
}

func wordLiteral(tok lexer.Token) string {
	if tok.Word == nil {
		return ""
	}
	s := ""
	for _, part := range tok.Word.Parts {
		if lit, ok := part.(ast.Literal); ok {
			s += lit.Value
		} else {
			return "" // not a plain literal, can't be a reserved word
		}
	}
	return s
}

var reservedWords = map[string]bool{
	"if": true, "then": true, "elif": true, "else": true, "fi": true,
	"while": true, "until": true, "do": true, "done": true,
	"for": true, "in": true, "case": true, "esac": true, "function": true,
}

// parseCommand parses one pipeline stage: a compound command, function
// definition, or simple command.
func (p *parser) parseCommand() (ast.Node, error) {
	tok := p.cur()

	if tok.Type == lexer.OPERATOR && tok.Op == "(" {
		return p.parseSubshell()
	}
	if tok.Type == lexer.OPERATOR && tok.Op == "{" {
		return p.parseGroup()
	}

	if tok.Type == lexer.WORD {
		switch wordLiteral(tok) {
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile(false)
		case "until":
			return p.parseWhile(true)
		case "for":
			return p.parseFor()
		case "case":
			return p.parseCase()
		case "function":
			return p.parseFunctionDef(true)
		}
		// name() compound form.
		if p.peekN(1).Type == lexer.OPERATOR && p.peekN(1).Op == "(" &&
			p.peekN(2).Type == lexer.OPERATOR && p.peekN(2).Op == ")" {
			return p.parseFunctionDef(false)
		}
	}

	return p.parseSimpleCommand()
}

func (p *parser) parseSubshell() (ast.Node, error) {
	p.advance() // "("
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != lexer.OPERATOR || p.cur().Op != ")" {
		return nil, unexpected(p.cur())
	}
	p.advance()
	return &ast.Subshell{Body: body}, nil
}

func (p *parser) parseGroup() (ast.Node, error) {
	p.advance() // "{"
	p.skipSeparators()
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	if p.cur().Type != lexer.OPERATOR || p.cur().Op != "}" {
		return nil, unexpected(p.cur())
	}
	p.advance()
	return &ast.Group{Body: body}, nil
}

func (p *parser) expectWord(lit string) error {
	if p.cur().Type != lexer.WORD || wordLiteral(p.cur()) != lit {
		return unexpected(p.cur())
	}
	p.advance()
	return nil
}

func (p *parser) parseIf() (ast.Node, error) {
	p.advance() // "if"
	cond, err := p.parseList()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	if err := p.expectWord("then"); err != nil {
		return nil, err
	}
	p.skipSeparators()
	thenBody, err := p.parseList()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()

	node := &ast.If{Cond: cond, Then: thenBody}
	cursor := node
	for p.cur().Type == lexer.WORD && wordLiteral(p.cur()) == "elif" {
		p.advance()
		econd, err := p.parseList()
		if err != nil {
			return nil, err
		}
		p.skipSeparators()
		if err := p.expectWord("then"); err != nil {
			return nil, err
		}
		p.skipSeparators()
		ebody, err := p.parseList()
		if err != nil {
			return nil, err
		}
		p.skipSeparators()
		cursor.Elifs = append(cursor.Elifs, ast.ElifClause{Cond: econd, Body: ebody})
	}
	if p.cur().Type == lexer.WORD && wordLiteral(p.cur()) == "else" {
		p.advance()
		p.skipSeparators()
		elseBody, err := p.parseList()
		if err != nil {
			return nil, err
		}
		p.skipSeparators()
		cursor.Else = elseBody
	}
	if err := p.expectWord("fi"); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) parseWhile(untilFlag bool) (ast.Node, error) {
	p.advance() // "while"/"until"
	cond, err := p.parseList()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	if err := p.expectWord("do"); err != nil {
		return nil, err
	}
	p.skipSeparators()
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	if err := p.expectWord("done"); err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body, UntilFlag: untilFlag}, nil
}

func (p *parser) parseFor() (ast.Node, error) {
	p.advance() // "for"
	if p.cur().Type != lexer.WORD {
		return nil, unexpected(p.cur())
	}
	varName := wordLiteral(p.cur())
	p.advance()
	p.skipSeparators()

	var words []*ast.Word
	if p.cur().Type == lexer.WORD && wordLiteral(p.cur()) == "in" {
		p.advance()
		for p.cur().Type == lexer.WORD {
			words = append(words, p.cur().Word)
			p.advance()
		}
		if !p.isSeparator() {
			return nil, unexpected(p.cur())
		}
	}
	p.skipSeparators()
	if err := p.expectWord("do"); err != nil {
		return nil, err
	}
	p.skipSeparators()
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	if err := p.expectWord("done"); err != nil {
		return nil, err
	}
	return &ast.For{Var: varName, Words: words, Body: body}, nil
}

func (p *parser) parseCase() (ast.Node, error) {
	p.advance() // "case"
	if p.cur().Type != lexer.WORD {
		return nil, unexpected(p.cur())
	}
	subject := p.cur().Word
	p.advance()
	p.skipSeparators()
	if err := p.expectWord("in"); err != nil {
		return nil, err
	}
	p.skipSeparators()

	node := &ast.Case{Subject: subject}
	for !(p.cur().Type == lexer.WORD && wordLiteral(p.cur()) == "esac") {
		if p.cur().Type == lexer.OPERATOR && p.cur().Op == "(" {
			p.advance() // optional leading "("
		}
		var patterns []*ast.Word
		for {
			if p.cur().Type != lexer.WORD {
				return nil, unexpected(p.cur())
			}
			patterns = append(patterns, p.cur().Word)
			p.advance()
			if p.cur().Type == lexer.OPERATOR && p.cur().Op == "|" {
				p.advance()
				continue
			}
			break
		}
		if p.cur().Type != lexer.OPERATOR || p.cur().Op != ")" {
			return nil, unexpected(p.cur())
		}
		p.advance()
		p.skipSeparators()

		var body ast.Node
		if !(p.cur().Type == lexer.OPERATOR && p.cur().Op == ";") &&
			!(p.cur().Type == lexer.WORD && wordLiteral(p.cur()) == "esac") {
			b, err := p.parseCaseBody()
			if err != nil {
				return nil, err
			}
			body = b
		}
		node.Clauses = append(node.Clauses, ast.CaseClause{Patterns: patterns, Body: body})

		p.skipSeparators()
	}
	p.advance() // "esac"
	return node, nil
}

// parseCaseBody parses a case clause's body: an andor-list chain
// terminated by ";;" (two adjacent ";" tokens, since the lexer has no
// single ";;" token) or by "esac".
func (p *parser) parseCaseBody() (ast.Node, error) {
	left, err := p.parseAndOr()
	if err != nil {
		return nil, err
	}
	for {
		if p.cur().Type == lexer.NEWLINE {
			p.advance()
			continue
		}
		if p.cur().Type == lexer.OPERATOR && p.cur().Op == ";" {
			if p.peekN(1).Type == lexer.OPERATOR && p.peekN(1).Op == ";" {
				return left, nil
			}
			p.advance()
			for p.cur().Type == lexer.NEWLINE {
				p.advance()
			}
			if p.cur().Type == lexer.WORD && wordLiteral(p.cur()) == "esac" {
				return left, nil
			}
			right, err := p.parseAndOr()
			if err != nil {
				return nil, err
			}
			left = &ast.List{Op: ";", Left: left, Right: right}
			continue
		}
		return left, nil
	}
}

func (p *parser) parseFunctionDef(keyword bool) (ast.Node, error) {
	if keyword {
		p.advance() // "function"
	}
	if p.cur().Type != lexer.WORD {
		return nil, unexpected(p.cur())
	}
	name := wordLiteral(p.cur())
	p.advance()
	if p.cur().Type == lexer.OPERATOR && p.cur().Op == "(" {
		p.advance()
		if p.cur().Type != lexer.OPERATOR || p.cur().Op != ")" {
			return nil, unexpected(p.cur())
		}
		p.advance()
	}
	p.skipSeparators()
	body, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDef{Name: name, Body: body}, nil
}

var redirOps = map[string]int{
	"<": 0, ">": 1, ">>": 1, "<<": 0, "<<-": 0, "<<<": 0, "&>": 1,
}

func (p *parser) parseSimpleCommand() (ast.Node, error) {
	cmd := &ast.Command{}

	for p.cur().Type == lexer.ASSIGNMENT_WORD {
		tok := p.advance()
		cmd.Assignments = append(cmd.Assignments, ast.Assignment{Name: tok.Name, Value: tok.Word})
	}

	sawWord := false
	for {
		tok := p.cur()
		switch {
		case tok.Type == lexer.WORD:
			cmd.Words = append(cmd.Words, tok.Word)
			sawWord = true
			p.advance()

		case tok.Type == lexer.ASSIGNMENT_WORD:
			// Only a leading run of these names an environment
			// override; once a command word has been seen, "NAME=value"
			// is just an ordinary argument (e.g. "echo A=1"). tok.Word
			// only holds the parts after '=', so restore the "NAME="
			// prefix as a literal part.
			w := &ast.Word{Parts: append([]ast.WordPart{ast.Literal{Value: tok.Name + "="}}, tok.Word.Parts...)}
			cmd.Words = append(cmd.Words, w)
			sawWord = true
			p.advance()

		case tok.Type == lexer.IO_NUMBER:
			p.advance()
			opTok := p.cur()
			if opTok.Type != lexer.OPERATOR || redirOpFD(opTok.Op) < 0 {
				return nil, unexpected(opTok)
			}
			p.advance()
			target := p.cur()
			if target.Type != lexer.WORD {
				return nil, unexpected(target)
			}
			p.advance()
			cmd.Redirects = append(cmd.Redirects, ast.Redirect{FD: tok.Number, Op: opTok.Op, Target: target.Word})

		case tok.Type == lexer.OPERATOR:
			if fd, ok := redirOps[tok.Op]; ok {
				p.advance()
				target := p.cur()
				if target.Type != lexer.WORD {
					return nil, unexpected(target)
				}
				p.advance()
				cmd.Redirects = append(cmd.Redirects, ast.Redirect{FD: fd, Op: tok.Op, Target: target.Word})
				continue
			}
			if len(cmd.Words) == 0 && len(cmd.Assignments) == 0 && len(cmd.Redirects) == 0 {
				return nil, unexpected(tok)
			}
			goto done

		default:
			goto done
		}
	}
done:
	if !sawWord && len(cmd.Assignments) == 0 && len(cmd.Redirects) == 0 {
		return nil, unexpected(p.cur())
	}
	return cmd, nil
}

func redirOpFD(op string) int {
	if fd, ok := redirOps[op]; ok {
		return fd
	}
	return -1
}
