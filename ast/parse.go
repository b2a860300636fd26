package ast

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rubiojr/fastpy/scanner"
)

// logicalLine is one or more physical lines folded together by bracket
// continuation, backslash continuation or an open triple-quoted string.
type logicalLine struct {
	text   string // verbatim, internal newlines kept, no trailing newline
	line   int    // 1-based number of the first physical line
	indent string // leading whitespace of the first physical line
	width  int    // indent width, tab stops of 8
	code   bool   // false for blank and comment-only lines
}

// Parser provides Python source parsing into a Module tree.
type Parser struct{}

// ParseFile reads a Python source file and parses it into a Module.
func (p *Parser) ParseFile(filename string) (*Module, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return p.Parse(string(src), filename)
}

// Parse parses raw Python source into a Module tree. The name parameter
// is used for error messages. The tree is structural: function and class
// definitions, decorator stacks and compound-statement bodies are modeled,
// everything else is kept as verbatim logical lines.
func (p *Parser) Parse(source, name string) (*Module, error) {
	lines, err := foldLines(source, name)
	if err != nil {
		return nil, err
	}
	t := &treeParser{name: name, lines: lines}
	body, err := t.parseBlock(0, []int{0})
	if err != nil {
		return nil, err
	}
	return &Module{
		Body:         body,
		SourceFile:   name,
		RawSource:    source,
		FinalNewline: strings.HasSuffix(source, "\n"),
	}, nil
}

// foldLines splits source into logical lines, joining physical lines that
// continue through open brackets, trailing backslashes or triple-quoted
// strings.
func foldLines(src, name string) ([]logicalLine, error) {
	var lines []logicalLine
	emit := func(text string, line int) {
		indent := leadingWhitespace(firstPhysical(text))
		trimmed := strings.TrimSpace(firstPhysical(text))
		lines = append(lines, logicalLine{
			text:   text,
			line:   line,
			indent: indent,
			width:  indentWidth(indent),
			code:   trimmed != "" && !strings.HasPrefix(trimmed, "#"),
		})
	}

	sc := scanner.New(src)
	start := 0
	startLine := 1
	contBackslash := false
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if sc.Depth() < 0 {
			return nil, fmt.Errorf("%s:%d: unmatched '%c'", name, sc.Line(), ch)
		}
		if ch == '\n' {
			switch {
			case sc.EscapedByte():
				// escaped newline inside a string literal, keep folding
			case sc.InShortString():
				return nil, fmt.Errorf("%s:%d: unterminated string literal", name, sc.Line()-1)
			case sc.InTripleString(), sc.Depth() > 0, contBackslash:
				// logical line continues
			default:
				emit(src[start:sc.Pos()], startLine)
				start = sc.Pos() + 1
				startLine = sc.Line()
			}
		}
		contBackslash = ch == '\\' && sc.InCode() && !sc.Escaped()
	}

	switch {
	case sc.InShortString():
		return nil, fmt.Errorf("%s:%d: unterminated string literal", name, sc.Line())
	case sc.InTripleString():
		return nil, fmt.Errorf("%s:%d: unterminated triple-quoted string literal", name, startLine)
	case sc.Depth() > 0:
		return nil, fmt.Errorf("%s:%d: unclosed bracket at end of file", name, startLine)
	}
	if start < len(src) {
		emit(src[start:], startLine)
	}
	return lines, nil
}

func firstPhysical(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

func leadingWhitespace(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}

// indentWidth computes the indentation column with tab stops of 8,
// matching the tokenizer's default tab size.
func indentWidth(indent string) int {
	w := 0
	for i := 0; i < len(indent); i++ {
		if indent[i] == '\t' {
			w = w/8*8 + 8
		} else {
			w++
		}
	}
	return w
}

var (
	defRe   = regexp.MustCompile(`^(async[ \t]+)?def[ \t]+([A-Za-z_][A-Za-z0-9_]*)`)
	classRe = regexp.MustCompile(`^class[ \t]+([A-Za-z_][A-Za-z0-9_]*)`)
	bareRe  = regexp.MustCompile(`^@[ \t]*([A-Za-z_][A-Za-z0-9_]*)[ \t]*$`)
)

// treeParser folds a flat list of logical lines into an indentation tree.
type treeParser struct {
	name  string
	lines []logicalLine
	pos   int
}

func (t *treeParser) peek() *logicalLine {
	if t.pos >= len(t.lines) {
		return nil
	}
	return &t.lines[t.pos]
}

func (t *treeParser) errf(line int, format string, args ...any) error {
	return fmt.Errorf("%s:%d: %s", t.name, line, fmt.Sprintf(format, args...))
}

// parseBlock parses statements indented exactly at width, stopping at the
// first code line with a smaller indent. enclosing lists the widths of all
// open blocks, used to validate dedents.
func (t *treeParser) parseBlock(width int, enclosing []int) ([]Stmt, error) {
	var body []Stmt
	for {
		ln := t.peek()
		if ln == nil {
			return body, nil
		}
		if !ln.code {
			body = append(body, &LineStmt{BaseStmt{ln.line}, ln.text})
			t.pos++
			continue
		}
		if ln.width < width {
			ok := false
			for _, w := range enclosing {
				if w == ln.width {
					ok = true
					break
				}
			}
			if !ok {
				return nil, t.errf(ln.line, "unindent does not match any outer indentation level")
			}
			return body, nil
		}
		if ln.width > width {
			return nil, t.errf(ln.line, "unexpected indent")
		}
		stmt, err := t.parseStmt(width, enclosing)
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
}

// parseStmt parses one statement whose header sits at the current position.
func (t *treeParser) parseStmt(width int, enclosing []int) (Stmt, error) {
	ln := t.peek()
	trimmed := strings.TrimSpace(ln.text)

	if strings.HasPrefix(trimmed, "@") {
		return t.parseDecorated(width, enclosing)
	}
	if m := defRe.FindStringSubmatch(trimmed); m != nil {
		body, err := t.parseSuite(ln, width, enclosing)
		if err != nil {
			return nil, err
		}
		return &FuncDef{
			BaseStmt: BaseStmt{ln.line},
			Name:     m[2],
			Async:    m[1] != "",
			Indent:   ln.indent,
			Header:   ln.text,
			Body:     body,
		}, nil
	}
	if m := classRe.FindStringSubmatch(trimmed); m != nil {
		body, err := t.parseSuite(ln, width, enclosing)
		if err != nil {
			return nil, err
		}
		return &ClassDef{
			BaseStmt: BaseStmt{ln.line},
			Name:     m[1],
			Indent:   ln.indent,
			Header:   ln.text,
			Body:     body,
		}, nil
	}
	if opensBlock(ln.text) {
		body, err := t.parseSuite(ln, width, enclosing)
		if err != nil {
			return nil, err
		}
		return &BlockStmt{BaseStmt{ln.line}, ln.text, body}, nil
	}
	t.pos++
	return &LineStmt{BaseStmt{ln.line}, ln.text}, nil
}

// parseSuite consumes the header line at the current position and, when the
// header ends with a colon, the indented body that must follow it. Headers
// with an inline suite (def f(): return 1) have an empty Body.
func (t *treeParser) parseSuite(header *logicalLine, width int, enclosing []int) ([]Stmt, error) {
	t.pos++
	if !opensBlock(header.text) {
		return nil, nil
	}
	nxt := t.peekCode()
	if nxt == nil || nxt.width <= width {
		return nil, t.errf(header.line, "expected an indented block")
	}
	return t.parseBlock(nxt.width, append(enclosing, nxt.width))
}

// peekCode returns the next code line without consuming anything, or nil.
func (t *treeParser) peekCode() *logicalLine {
	for i := t.pos; i < len(t.lines); i++ {
		if t.lines[i].code {
			return &t.lines[i]
		}
	}
	return nil
}

// parseDecorated collects a decorator stack (including interleaved blank
// and comment lines, kept verbatim) and the def or class it applies to.
func (t *treeParser) parseDecorated(width int, enclosing []int) (Stmt, error) {
	var decs []Decorator
	last := t.peek().line
	for {
		ln := t.peek()
		if ln == nil {
			return nil, t.errf(last, "decorator is not followed by a function or class definition")
		}
		if !ln.code {
			decs = append(decs, Decorator{Text: ln.text})
			t.pos++
			continue
		}
		trimmed := strings.TrimSpace(ln.text)
		if strings.HasPrefix(trimmed, "@") {
			if ln.width != width {
				return nil, t.errf(ln.line, "unexpected indent")
			}
			decs = append(decs, Decorator{Text: ln.text, Name: bareName(ln.text)})
			last = ln.line
			t.pos++
			continue
		}
		if ln.width != width || !defRe.MatchString(trimmed) && !classRe.MatchString(trimmed) {
			return nil, t.errf(ln.line, "decorator is not followed by a function or class definition")
		}
		stmt, err := t.parseStmt(width, enclosing)
		if err != nil {
			return nil, err
		}
		switch s := stmt.(type) {
		case *FuncDef:
			s.Decorators = decs
		case *ClassDef:
			s.Decorators = decs
		}
		return stmt, nil
	}
}

// opensBlock reports whether a logical line is a compound-statement header,
// i.e. its code (comments stripped) ends with a colon. The line may span
// several physical lines with comments after bracket continuations.
func opensBlock(text string) bool {
	var b strings.Builder
	sc := scanner.New(text)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if !sc.InComment() {
			b.WriteByte(ch)
		}
	}
	return strings.HasSuffix(strings.TrimSpace(b.String()), ":")
}

// bareName extracts the identifier of a bare-name decorator line, or ""
// when the decorator is a call, an attribute reference or anything else.
func bareName(text string) string {
	m := bareRe.FindStringSubmatch(strings.TrimSpace(scanner.StripComment(text)))
	if m == nil {
		return ""
	}
	return m[1]
}
