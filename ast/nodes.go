package ast

// Node is the interface for all tree nodes.
type Node interface {
	node()
}

// Stmt is the interface for statement nodes. Every statement owns the
// verbatim physical lines it was parsed from, so rendering an untouched
// statement reproduces its source bytes exactly.
type Stmt interface {
	Node
	stmt()
	StmtLine() int
}

// BaseStmt provides common fields for all statements.
type BaseStmt struct {
	SourceLine int // 1-based start line in the original source
}

func (b BaseStmt) StmtLine() int { return b.SourceLine }

// Module is the root node.
type Module struct {
	Body         []Stmt
	SourceFile   string // display path used in diagnostics
	RawSource    string // original source text
	FinalNewline bool   // whether the source ended with a newline
}

func (m *Module) node() {}

// Decorator is one @-line attached to a function or class definition.
// Comment and blank lines interleaved with a decorator stack are kept in
// the stack as entries with an empty Name so the stack renders verbatim.
type Decorator struct {
	Text string // verbatim line, including leading whitespace
	Name string // bare identifier when the decorator is a plain name, else ""
}

// FuncDef represents def name(...): (or async def) with its decorator
// stack and nested body.
type FuncDef struct {
	BaseStmt
	Name       string
	Async      bool
	Indent     string // leading whitespace of the def line
	Decorators []Decorator
	Header     string // verbatim logical line of the def header
	Body       []Stmt
}

func (f *FuncDef) node() {}
func (f *FuncDef) stmt() {}

// ClassDef represents class name(...): with its decorator stack and
// nested body.
type ClassDef struct {
	BaseStmt
	Name       string
	Indent     string
	Decorators []Decorator
	Header     string
	Body       []Stmt
}

func (c *ClassDef) node() {}
func (c *ClassDef) stmt() {}

// BlockStmt represents any other compound statement (if, for, while, with,
// try, elif, else, except, finally, match, case): a header line ending in
// a colon plus a nested body.
type BlockStmt struct {
	BaseStmt
	Header string
	Body   []Stmt
}

func (b *BlockStmt) node() {}
func (b *BlockStmt) stmt() {}

// LineStmt is a verbatim logical line: a simple statement, a blank line or
// a comment line. It may span several physical lines through bracket or
// backslash continuation.
type LineStmt struct {
	BaseStmt
	Text string
}

func (l *LineStmt) node() {}
func (l *LineStmt) stmt() {}
