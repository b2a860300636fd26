package ast

import "fmt"

// AddDecorator returns a transform that inserts @name as the topmost
// decorator of every synchronous function definition that does not already
// carry it as a bare-name decorator. Decorators written as calls or
// attribute references never match, so @name is inserted above them.
// Async definitions are left alone, but their bodies are still visited.
func AddDecorator(name string) Transform {
	return TransformFunc{
		N: "add-decorator:" + name,
		F: func(mod *Module) *Module {
			body, changed := decorateBody(mod.Body, name)
			if !changed {
				return mod
			}
			cp := *mod
			cp.Body = body
			return &cp
		},
	}
}

func decorateBody(body []Stmt, name string) ([]Stmt, bool) {
	return mapSlice(body, func(s Stmt) Stmt {
		return decorateStmt(s, name)
	})
}

func decorateStmt(s Stmt, name string) Stmt {
	switch s := s.(type) {
	case *FuncDef:
		body, bodyChanged := decorateBody(s.Body, name)
		needs := !s.Async && !hasDecorator(s.Decorators, name)
		if !needs && !bodyChanged {
			return s
		}
		cp := *s
		cp.Body = body
		if needs {
			decs := make([]Decorator, 0, len(s.Decorators)+1)
			decs = append(decs, Decorator{Text: s.Indent + "@" + name, Name: name})
			decs = append(decs, s.Decorators...)
			cp.Decorators = decs
		}
		return &cp
	case *ClassDef:
		body, changed := decorateBody(s.Body, name)
		if !changed {
			return s
		}
		cp := *s
		cp.Body = body
		return &cp
	case *BlockStmt:
		body, changed := decorateBody(s.Body, name)
		if !changed {
			return s
		}
		cp := *s
		cp.Body = body
		return &cp
	default:
		return s
	}
}

func hasDecorator(decs []Decorator, name string) bool {
	for _, d := range decs {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Decorate parses source, inserts the decorator on every synchronous
// function definition missing it and renders the tree back to text. On
// parse failure the input is returned unchanged together with the error;
// the same applies if the rendered result no longer parses.
func Decorate(source, name, decorator string) (string, error) {
	p := &Parser{}
	mod, err := p.Parse(source, name)
	if err != nil {
		return source, err
	}
	out := Render(AddDecorator(decorator).Transform(mod))
	if _, err := p.Parse(out, name); err != nil {
		return source, fmt.Errorf("rendered source does not parse: %w", err)
	}
	return out, nil
}
