package ast

import "strings"

// Render converts a module tree back to source text. Statements render
// their verbatim lines in order, so an untouched tree reproduces the
// original source byte-for-byte.
func Render(m *Module) string {
	var b strings.Builder
	renderBody(&b, m.Body)
	out := b.String()
	if !m.FinalNewline {
		out = strings.TrimSuffix(out, "\n")
	}
	return out
}

func renderBody(b *strings.Builder, body []Stmt) {
	for _, s := range body {
		renderStmt(b, s)
	}
}

func renderStmt(b *strings.Builder, s Stmt) {
	switch s := s.(type) {
	case *LineStmt:
		b.WriteString(s.Text)
		b.WriteByte('\n')
	case *BlockStmt:
		b.WriteString(s.Header)
		b.WriteByte('\n')
		renderBody(b, s.Body)
	case *FuncDef:
		renderDecorated(b, s.Decorators, s.Header, s.Body)
	case *ClassDef:
		renderDecorated(b, s.Decorators, s.Header, s.Body)
	}
}

func renderDecorated(b *strings.Builder, decs []Decorator, header string, body []Stmt) {
	for _, d := range decs {
		b.WriteString(d.Text)
		b.WriteByte('\n')
	}
	b.WriteString(header)
	b.WriteByte('\n')
	renderBody(b, body)
}
