package method

import "strings"

// LinesOfCode counts the lines of source holding code: blank lines and
// lines covered only by comments are skipped. String literals are
// respected when looking for comment markers.
func LinesOfCode(source string) int {
	if strings.TrimSpace(source) == "" {
		return 0
	}
	var (
		count   int
		inBlock bool
	)
	for _, line := range strings.Split(source, "\n") {
		code, stillInBlock := stripComments(strings.TrimSpace(line), inBlock)
		inBlock = stillInBlock
		if strings.TrimSpace(code) != "" {
			count++
		}
	}
	return count
}

// stripComments removes comments from one line. inBlock is true when the
// line starts inside a block comment; the result reports whether the line
// ends inside one.
func stripComments(line string, inBlock bool) (string, bool) {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		var next byte
		if i+1 < len(line) {
			next = line[i+1]
		}
		switch {
		case inBlock:
			if c == '*' && next == '/' {
				inBlock = false
				i++
			}
		case quote != 0:
			b.WriteByte(c)
			if c == '\\' && next != 0 {
				b.WriteByte(next)
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			b.WriteByte(c)
		case c == '/' && next == '*':
			inBlock = true
			i++
		case c == '/' && next == '/':
			return b.String(), false
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), inBlock
}
