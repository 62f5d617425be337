package ocr

import (
	"regexp"
	"strings"
)

// columnGap matches the boundaries pdftotext -layout leaves between
// table columns: a tab or a run of two or more spaces.
var columnGap = regexp.MustCompile(`\t+| {2,}`)

// Rows converts extracted document text into tabular rows for the rent
// roll parser. Layout-preserving text splits on column gaps; markdown
// tables from OCR providers split on pipes.
func Rows(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(strings.TrimRight(line, "\r"))
		if trimmed == "" {
			continue
		}

		var cells []string
		if strings.HasPrefix(trimmed, "|") {
			cells = markdownCells(trimmed)
		} else {
			cells = columnGap.Split(trimmed, -1)
		}
		if !hasContent(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	return rows
}

// markdownCells splits a markdown table row into cells. Separator rows
// such as |---|---| return nil.
func markdownCells(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	if isSeparatorRow(cells) {
		return nil
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

func hasContent(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}
