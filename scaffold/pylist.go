package scaffold

import "strings"

// closingBracket returns the index of the bracket closing the one at open, skipping string
// literals and comments, or -1 when src ends first.
func closingBracket(src string, open int) int {
	depth := 0

	for i := open; i < len(src); i++ {
		switch c := src[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--

			if depth == 0 {
				return i
			}
		case '#':
			nl := strings.IndexByte(src[i:], '\n')
			if nl < 0 {
				return -1
			}

			i += nl
		case '\'', '"':
			end := stringEnd(src, i)
			if end < 0 {
				return -1
			}

			i = end
		}
	}

	return -1
}

// stringEnd returns the index of the last quote of the literal starting at i.
func stringEnd(src string, i int) int {
	q := src[i]

	if strings.HasPrefix(src[i:], strings.Repeat(string(q), 3)) {
		end := strings.Index(src[i+3:], strings.Repeat(string(q), 3))
		if end < 0 {
			return -1
		}

		return i + 3 + end + 2
	}

	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case q:
			return j
		case '\n':
			return -1
		}
	}

	return -1
}

// appendItems adds items, one per line, to the end of the list spanning src[open:end+1].
func appendItems(src string, open, end int, items []string) string {
	body := src[open+1 : end]
	trimmed := strings.TrimRight(body, " \t\r\n")

	tail := body[len(trimmed):]
	if !strings.Contains(tail, "\n") {
		tail = "\n"
	}

	var b strings.Builder

	b.WriteString(src[:open+1])
	b.WriteString(trimmed)

	if t := strings.TrimSpace(trimmed); t != "" && !strings.HasSuffix(t, ",") {
		b.WriteString(",")
	}

	for _, item := range items {
		b.WriteString("\n    ")
		b.WriteString(item)
		b.WriteString(",")
	}

	b.WriteString(tail)
	b.WriteString(src[end:])

	return b.String()
}

func ensureTrailingNewline(src string) string {
	if src == "" || strings.HasSuffix(src, "\n") {
		return src
	}

	return src + "\n"
}

// appendBlock appends a new bracketed statement opened by head and holding items.
func appendBlock(src, head string, items []string) string {
	var b strings.Builder

	b.WriteString(ensureTrailingNewline(src))
	b.WriteString("\n")
	b.WriteString(head)

	for _, item := range items {
		b.WriteString("\n    ")
		b.WriteString(item)
		b.WriteString(",")
	}

	b.WriteString("\n]\n")

	return b.String()
}
