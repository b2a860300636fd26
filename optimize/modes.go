package optimize

import (
	"strings"

	"github.com/rubiojr/fastpy/ast"
)

// mainGuard is the block synthesized by the multiprocessing mode when the
// input has no __main__ guard of its own.
const mainGuard = "def main():\n" +
	"    # Main function of the program\n" +
	"    pass\n\n" +
	"if __name__ == '__main__':\n" +
	"    import multiprocessing\n" +
	"    p = multiprocessing.Process(target=main)\n" +
	"    p.start()\n" +
	"    p.join()\n\n"

func multiprocessing(code string) (string, []string) {
	out := "# [OPTIMIZATION: Multiprocessing]\n" + code
	if !strings.Contains(code, "if __name__") {
		out = mainGuard + out
	} else {
		out = "# Note: Please ensure that the multiprocessing block in __main__ is correct.\n" + out
	}
	return out, nil
}

func translate(code string) (string, []string) {
	out := "# [OPTIMIZATION: Translated to a C/C++ version using pybind11]\n" + code
	out += "\n# Note: For an actual translation, you need to manually configure tools such as Cython or pybind11.\n"
	return out, nil
}

func numba(code string) (string, []string) {
	return decorated(code, "from numba import njit", "njit",
		"# [OPTIMIZATION: Numba JIT applied]")
}

func cython(code string) (string, []string) {
	out := "# [OPTIMIZATION: Prepared for Cython]\n# cython: language_level=3\n" + code
	out += "\n# Note: To compile with Cython, change the file extension to .pyx and apply further configurations.\n"
	return out, nil
}

func cache(code string) (string, []string) {
	return decorated(code, "from functools import lru_cache", "lru_cache",
		"# [OPTIMIZATION: Caching with lru_cache applied]")
}

func vectorize(code string) (string, []string) {
	// The numpy import goes above the banner unconditionally: the presence
	// check runs against the banner text, never against the user's code.
	out := "# [OPTIMIZATION: Vectorized operations with NumPy]\n"
	out = ensureImport(out, "import numpy as np")
	out += "\n" + code
	out += "\n# Note: It is recommended to convert loops into numpy operations for better performance.\n"
	return out, nil
}

// decorated implements the two tree-rewriting modes: ensure the import
// line, insert the decorator on every function definition, prepend the
// banner. A parse failure degrades the decorator step to a no-op and is
// reported as a warning; import and banner are still applied.
func decorated(code, importLine, decorator, banner string) (string, []string) {
	code = ensureImport(code, importLine)
	out, err := ast.Decorate(code, "<input>", decorator)
	var warnings []string
	if err != nil {
		warnings = append(warnings, err.Error())
	}
	return banner + "\n" + out, warnings
}

// ensureImport prepends the import line unless it already occurs somewhere
// in the code.
func ensureImport(code, importLine string) string {
	if !strings.Contains(code, importLine) {
		return importLine + "\n" + code
	}
	return code
}
