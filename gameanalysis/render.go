package gameanalysis

import (
	"fmt"
	"strings"
)

const (
	labelWidth = 30
	valueWidth = 28
)

// RenderText renders the report as a fixed-width two column table.
func (r *Report) RenderText() string {
	var sb strings.Builder
	width := labelWidth + 2*valueWidth

	if r.Title != "" {
		sb.WriteString(r.Title + "\n")
		sb.WriteString(strings.Repeat("=", width))
		sb.WriteString("\n\n")
	}
	sb.WriteString(fmt.Sprintf("%-*s%-*s%-*s\n", labelWidth, "Player",
		valueWidth, r.Players[0], valueWidth, r.Players[1]))

	for _, s := range r.Sections {
		sb.WriteString("\n")
		sb.WriteString(s.Title + "\n")
		sb.WriteString(strings.Repeat("-", width))
		sb.WriteString("\n")
		for _, row := range s.Rows {
			sb.WriteString(fmt.Sprintf("%-*s%-*s%-*s\n", labelWidth, row.Label,
				valueWidth, row.Values[0], valueWidth, row.Values[1]))
		}
	}
	return sb.String()
}
