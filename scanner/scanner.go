// Package scanner provides string-boundary-aware scanning of Python source
// text. It encapsulates the tracking of short ('...', "...") and
// triple-quoted ('''...''', """...""") string literals, string prefixes,
// escape sequences, comments and bracket depth, eliminating the need for
// every caller to re-implement this state machine.
package scanner

import "strings"

// closingKind tracks which type of literal was just closed.
type closingKind byte

const (
	noClosing closingKind = iota
	closingShort
	closingTriple
)

// CodeScanner iterates byte-by-byte over source text, tracking Python
// string literal boundaries, escape sequences, comments and bracket depth.
// Callers check InString()/InComment() instead of maintaining their own
// quote/escape/hash flags.
//
// InString() returns true for the entire string span including both
// opening and closing delimiters.
type CodeScanner struct {
	src        string
	pos        int
	line       int
	quote      byte // active short-string delimiter, 0 when none
	triple     byte // active triple-string delimiter, 0 when none
	raw        bool // active string carries an r/R prefix
	escaped    bool
	wasEscaped bool // last byte was consumed by a backslash escape
	inComment  bool
	depth      int
	closing    closingKind // set when a closing delimiter is processed
}

// New creates a CodeScanner for the given source text.
// Call Next() to advance to the first byte.
func New(src string) *CodeScanner {
	return &CodeScanner{src: src, pos: -1, line: 1}
}

// Next advances to the next byte, updating string/comment/bracket state.
// Returns the byte and true, or (0, false) at end of input.
func (s *CodeScanner) Next() (byte, bool) {
	s.closing = noClosing
	s.wasEscaped = false
	s.pos++
	if s.pos >= len(s.src) {
		return 0, false
	}
	ch := s.src[s.pos]
	if ch == '\n' {
		s.line++
		s.inComment = false
	}

	if s.inComment {
		return ch, true
	}
	if s.escaped {
		s.escaped = false
		s.wasEscaped = true
		return ch, true
	}
	if ch == '\\' && (s.quote != 0 || s.triple != 0) && !s.raw {
		s.escaped = true
		return ch, true
	}

	switch {
	case s.triple != 0:
		if ch == s.triple && s.LookingAt(strings.Repeat(string(ch), 3)) {
			s.pos += 2
			s.triple = 0
			s.raw = false
			s.closing = closingTriple
		}
	case s.quote != 0:
		if ch == s.quote {
			s.quote = 0
			s.raw = false
			s.closing = closingShort
		}
	case ch == '\'' || ch == '"':
		s.raw = s.rawPrefix()
		if s.LookingAt(strings.Repeat(string(ch), 3)) {
			s.triple = ch
			s.pos += 2
		} else {
			s.quote = ch
		}
	case ch == '#':
		s.inComment = true
	case IsOpenBracket(ch):
		s.depth++
	case IsCloseBracket(ch):
		s.depth--
	}

	return ch, true
}

// rawPrefix reports whether the quote at the current position is preceded
// by a string prefix containing r or R (r"...", rb'...', fr"""...""").
func (s *CodeScanner) rawPrefix() bool {
	raw := false
	i := s.pos - 1
	for n := 0; i >= 0 && n < 2 && isPrefixByte(s.src[i]); n++ {
		if s.src[i] == 'r' || s.src[i] == 'R' {
			raw = true
		}
		i--
	}
	// The prefix only counts when it is not the tail of a longer identifier.
	if raw && i >= 0 && isIdentByte(s.src[i]) {
		return false
	}
	return raw
}

func isPrefixByte(ch byte) bool {
	switch ch {
	case 'r', 'R', 'b', 'B', 'f', 'F', 'u', 'U':
		return true
	}
	return false
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch >= '0' && ch <= '9' ||
		ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

// InString reports whether the current position is inside a string literal,
// including both opening and closing delimiters.
func (s *CodeScanner) InString() bool {
	return s.quote != 0 || s.triple != 0 || s.closing != noClosing
}

// InShortString reports whether the current position is inside a
// single-line ('...' or "...") string literal.
func (s *CodeScanner) InShortString() bool {
	return s.quote != 0 || s.closing == closingShort
}

// InTripleString reports whether the current position is inside a
// triple-quoted string literal.
func (s *CodeScanner) InTripleString() bool {
	return s.triple != 0 || s.closing == closingTriple
}

// InComment reports whether the current position is inside a # comment.
func (s *CodeScanner) InComment() bool { return s.inComment }

// InCode reports whether the current position is outside all string
// literals and comments.
func (s *CodeScanner) InCode() bool { return !s.InString() && !s.inComment }

// Escaped reports whether the next byte is consumed by the backslash at
// the current position.
func (s *CodeScanner) Escaped() bool { return s.escaped }

// EscapedByte reports whether the last byte returned by Next was itself
// consumed by a preceding backslash escape.
func (s *CodeScanner) EscapedByte() bool { return s.wasEscaped }

// Depth returns the current bracket nesting depth ((), [], {}). Negative
// depth means an unbalanced closing bracket was seen.
func (s *CodeScanner) Depth() int { return s.depth }

// Pos returns the current byte offset (the position of the last byte
// returned by Next). Returns -1 before the first call to Next.
func (s *CodeScanner) Pos() int { return s.pos }

// Line returns the current 1-based line number.
func (s *CodeScanner) Line() int { return s.line }

// Src returns the full source text being scanned.
func (s *CodeScanner) Src() string { return s.src }

// Peek returns the next byte without advancing, or (0, false) at end.
func (s *CodeScanner) Peek() (byte, bool) {
	if s.pos+1 >= len(s.src) {
		return 0, false
	}
	return s.src[s.pos+1], true
}

// LookingAt checks if src[pos:] starts with the given prefix.
func (s *CodeScanner) LookingAt(prefix string) bool {
	return strings.HasPrefix(s.src[s.pos:], prefix)
}

// IsOpenBracket reports whether ch is an opening bracket/paren/brace.
func IsOpenBracket(ch byte) bool {
	return ch == '(' || ch == '[' || ch == '{'
}

// IsCloseBracket reports whether ch is a closing bracket/paren/brace.
func IsCloseBracket(ch byte) bool {
	return ch == ')' || ch == ']' || ch == '}'
}

// CommentIndex scans a logical line and returns the byte offset of the
// first # that starts a comment, or -1 when the line has none.
func CommentIndex(line string) int {
	sc := New(line)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if ch == '#' && sc.InComment() {
			return sc.Pos()
		}
	}
	return -1
}

// StripComment returns the line with any trailing comment removed.
// Whitespace before the comment is kept.
func StripComment(line string) string {
	if i := CommentIndex(line); i >= 0 {
		return line[:i]
	}
	return line
}
