package ast

// Transform rewrites a module tree. Implementations must not mutate the
// input module.
type Transform interface {
	Name() string
	Transform(mod *Module) *Module
}

// TransformFunc adapts a named function to the Transform interface.
type TransformFunc struct {
	N string
	F func(*Module) *Module
}

func (t TransformFunc) Name() string                  { return t.N }
func (t TransformFunc) Transform(mod *Module) *Module { return t.F(mod) }

// Chain composes transforms left-to-right into a single Transform.
// Each transform receives the output of the previous one.
func Chain(transforms ...Transform) Transform {
	return TransformFunc{
		N: "chain",
		F: func(mod *Module) *Module {
			for _, t := range transforms {
				mod = t.Transform(mod)
			}
			return mod
		},
	}
}

// --- Copy-on-write traversal helpers ---
// These are used by transform passes to walk statement slices, only
// allocating a new slice when at least one element changes.

// mapSlice applies fn to each element. Returns (newSlice, true) if any
// element changed, or (original, false) if all elements are identical.
func mapSlice[T any](items []T, fn func(T) T) ([]T, bool) {
	var out []T
	modified := false
	for i, item := range items {
		newItem := fn(item)
		if any(newItem) != any(item) {
			if !modified {
				out = make([]T, len(items))
				copy(out[:i], items[:i])
				modified = true
			}
		}
		if modified {
			out[i] = newItem
		}
	}
	if !modified {
		return items, false
	}
	return out, true
}
