package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column; numeric columns align right.
type column struct {
	title   string
	numeric bool
}

var (
	trackColumns = []column{
		{title: "ID", numeric: true},
		{title: "Codec"},
		{title: "Language"},
		{title: "Name"},
		{title: "Default"},
	}
	styleColumns = []column{
		{title: "Line", numeric: true},
		{title: "Name"},
		{title: "Font"},
		{title: "Size", numeric: true},
	}
	toolColumns      = []column{{title: "Tool"}, {title: "Path"}, {title: "Status"}, {title: "Version"}}
	containerColumns = []column{{title: "Container"}, {title: "Extensions"}, {title: "Status"}}
)

// renderTable draws rows under cols; short rows are padded with blanks.
func renderTable(cols []column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(cols))
	configs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		header = append(header, c.title)
		if c.numeric {
			configs = append(configs, table.ColumnConfig{
				Number:      i + 1,
				Align:       text.AlignRight,
				AlignHeader: text.AlignLeft,
			})
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
