// Package formatter renders the markdown digest of the published feed.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"newsdesk/pkg/metadata"
)

// minColumnWidth keeps separator cells at least "---".
const minColumnWidth = 3

// FormatMarkdown aligns every table in content by display width. Any metadata
// block is dropped; callers sign the result again.
func FormatMarkdown(content string) string {
	_, clean := metadata.Extract(content)

	var (
		out   []string
		table []string
	)

	flush := func() {
		if len(table) > 0 {
			out = append(out, alignTable(table)...)
			table = nil
		}
	}

	for _, line := range strings.Split(clean, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			table = append(table, line)
			continue
		}

		flush()

		out = append(out, line)
	}

	flush()

	return strings.Join(out, "\n")
}

// splitRow returns the trimmed cells of a "| a | b |" row.
func splitRow(row string) []string {
	parts := strings.Split(strings.TrimSpace(row), "|")
	if len(parts) >= 2 {
		parts = parts[1 : len(parts)-1]
	}

	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}

	return cells
}

// isSeparatorRow reports whether every cell is made of dashes and colons.
func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}

	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" || !strings.Contains(c, "-") {
			return false
		}
	}

	return true
}

// alignTable pads the cells of a table so columns line up on screen, counting
// wide runes as two columns. Tables without a separator row are left alone.
func alignTable(rows []string) []string {
	if len(rows) < 2 {
		return rows
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = splitRow(row)
	}

	if !isSeparatorRow(cells[1]) {
		return rows
	}

	cols := 0
	for _, r := range cells {
		cols = max(cols, len(r))
	}

	widths := make([]int, cols)
	for i := range widths {
		widths[i] = minColumnWidth
	}

	for i, r := range cells {
		if i == 1 {
			continue
		}

		for j, c := range r {
			widths[j] = max(widths[j], runewidth.StringWidth(c))
		}
	}

	out := make([]string, len(cells))

	for i, r := range cells {
		var sb strings.Builder

		sb.WriteString("|")

		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(r) {
				cell = r[j]
			}

			sb.WriteString(" ")

			if i == 1 {
				sb.WriteString(strings.Repeat("-", widths[j]))
			} else {
				sb.WriteString(runewidth.FillRight(cell, widths[j]))
			}

			sb.WriteString(" |")
		}

		out[i] = sb.String()
	}

	return out
}
