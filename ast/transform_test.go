package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChainEmpty(t *testing.T) {
	mod := &Module{SourceFile: "test.py"}
	result := Chain().Transform(mod)
	assert.Same(t, mod, result, "empty chain returns same module")
}

func TestChainSingle(t *testing.T) {
	called := false
	transform := TransformFunc{
		N: "test",
		F: func(mod *Module) *Module {
			called = true
			return &Module{SourceFile: "modified"}
		},
	}
	mod := &Module{SourceFile: "original"}
	result := Chain(transform).Transform(mod)
	assert.True(t, called, "transform was called")
	assert.Equal(t, "modified", result.SourceFile)
}

func TestChainOrdering(t *testing.T) {
	var order []string
	mark := func(name string) Transform {
		return TransformFunc{
			N: name,
			F: func(mod *Module) *Module {
				order = append(order, name)
				return mod
			},
		}
	}
	mod := &Module{}
	Chain(mark("first"), mark("second"), mark("third")).Transform(mod)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestChainPipeline(t *testing.T) {
	// Each transform appends to SourceFile to verify chaining
	appendTransform := func(name, suffix string) Transform {
		return TransformFunc{
			N: name,
			F: func(mod *Module) *Module {
				return &Module{SourceFile: mod.SourceFile + suffix}
			},
		}
	}
	mod := &Module{SourceFile: "start"}
	result := Chain(
		appendTransform("a", "+a"),
		appendTransform("b", "+b"),
	).Transform(mod)
	assert.Equal(t, "start+a+b", result.SourceFile)
}

func TestMapSliceNoChange(t *testing.T) {
	stmts := []Stmt{
		&LineStmt{BaseStmt{1}, "x = 1"},
		&LineStmt{BaseStmt{2}, "y = 2"},
	}
	out, changed := mapSlice(stmts, func(s Stmt) Stmt { return s })
	assert.False(t, changed)
	assert.True(t, &out[0] == &stmts[0], "unchanged slice is returned as-is")
}

func TestMapSlicePartialChange(t *testing.T) {
	a := &LineStmt{BaseStmt{1}, "a"}
	b := &LineStmt{BaseStmt{2}, "b"}
	repl := &LineStmt{BaseStmt{2}, "B"}
	out, changed := mapSlice([]Stmt{a, b}, func(s Stmt) Stmt {
		if s == Stmt(b) {
			return repl
		}
		return s
	})
	assert.True(t, changed)
	assert.Same(t, a, out[0])
	assert.Same(t, repl, out[1])
}
