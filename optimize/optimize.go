// Package optimize holds the catalog of source rewrites fastpy can apply
// to a Python file. Four of them prepend fixed banner comments; numba and
// cache additionally insert a decorator into every function definition
// through a tree rewrite.
package optimize

import (
	"fmt"
	"strconv"
	"strings"
)

// Optimization is one entry in the rewrite catalog.
type Optimization struct {
	ID    int
	Name  string // stable name usable instead of the numeric ID
	Label string // menu label
	apply func(code string) (string, []string)
}

// Apply rewrites code. Warnings report recoverable conditions (a tree
// rewrite that degraded to a no-op because the source does not parse);
// the returned text is always usable.
func (o Optimization) Apply(code string) (out string, warnings []string) {
	return o.apply(code)
}

// catalog is fixed at startup and read-only afterwards.
var catalog = []Optimization{
	{1, "multiprocessing", "Multiprocessing support", multiprocessing},
	{2, "translate", "Translation to C/C++", translate},
	{3, "numba", "Numba JIT optimization", numba},
	{4, "cython", "Cython preparation", cython},
	{5, "cache", "Caching with lru_cache", cache},
	{6, "vectorize", "Vectorized operations (NumPy)", vectorize},
}

// All returns the catalog in menu order.
func All() []Optimization {
	return catalog
}

// Lookup resolves a mode selector: either the decimal ID ("1".."6") or a
// case-insensitive optimization name ("cache", "numba", ...).
func Lookup(selector string) (Optimization, error) {
	selector = strings.TrimSpace(selector)
	if n, err := strconv.Atoi(selector); err == nil {
		for _, o := range catalog {
			if o.ID == n {
				return o, nil
			}
		}
		return Optimization{}, fmt.Errorf("invalid optimization %d: expected 1-%d", n, len(catalog))
	}
	for _, o := range catalog {
		if strings.EqualFold(o.Name, selector) {
			return o, nil
		}
	}
	return Optimization{}, fmt.Errorf("unknown optimization %q: expected 1-%d or a name like %q", selector, len(catalog), "cache")
}
