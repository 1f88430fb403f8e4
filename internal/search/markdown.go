package search

import (
	"bufio"
	"strings"
)

// block is a passage candidate with the heading it appeared under.
type block struct {
	heading string
	text    string
}

// splitMarkdown turns Markdown into passage candidates:
//
//   - "#" headings are not passages; they label the blocks below them
//   - each table row becomes its own block (separator rows are skipped)
//   - each list item becomes its own block
//   - other consecutive lines are joined into one paragraph block
func splitMarkdown(src string) []block {
	var (
		out     []block
		heading string
		para    []string
	)
	flush := func() {
		if len(para) > 0 {
			out = append(out, block{heading: heading, text: strings.Join(para, " ")})
			para = para[:0]
		}
	}

	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "#"):
			flush()
			heading = strings.TrimSpace(strings.TrimLeft(line, "#"))
		case strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|"):
			flush()
			if row := tableRow(line); row != "" {
				out = append(out, block{heading: heading, text: row})
			}
		case isListItem(line):
			flush()
			out = append(out, block{heading: heading, text: strings.TrimSpace(line[2:])})
		default:
			para = append(para, line)
		}
	}
	flush()
	return out
}

// tableRow joins the non-empty cells of a Markdown table row, or returns ""
// for separator rows such as "|---|:--:|".
func tableRow(line string) string {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	kept := make([]string, 0, len(cells))
	sep := true
	for _, c := range cells {
		c = strings.TrimSpace(c)
		if strings.Trim(c, ":- ") != "" {
			sep = false
		}
		if c != "" {
			kept = append(kept, c)
		}
	}
	if sep {
		return ""
	}
	return strings.Join(kept, " ")
}

func isListItem(line string) bool {
	return len(line) > 2 && (line[0] == '-' || line[0] == '*' || line[0] == '+') && line[1] == ' '
}
